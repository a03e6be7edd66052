package services

import (
	"context"
	"errors"
	"testing"

	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPayoutSweep(t *testing.T) {
	ctx := context.Background()

	settlement := func(price, shipping, commission string) *repository.Settlement {
		return &repository.Settlement{
			Item: models.OrderItem{
				ID:           uuid.New(),
				OrderID:      uuid.New(),
				Price:        decimal.RequireFromString(price),
				Quantity:     1,
				ShippingCost: decimal.RequireFromString(shipping),
				Commission:   decimal.RequireFromString(commission),
			},
			SellerAccountID: "acct_seller",
		}
	}

	t.Run("Transfer amount is payout minus commission in pence", func(t *testing.T) {
		payouts := new(MockPayoutRepo)
		gateway := new(MockGateway)
		svc := NewPayoutService(payouts, gateway, zap.NewNop(), "gbp")

		// 50.00 + 5.00 shipping - 5.00 commission = 50.00 => 5000 pence.
		s := settlement("50.00", "5.00", "5.00")

		payouts.On("SweepUnsettled", ctx, 100, mock.Anything).
			Run(func(args mock.Arguments) {
				transfer := args.Get(2).(repository.TransferFunc)
				id, err := transfer(s)
				assert.NoError(t, err)
				assert.Equal(t, "tr_123", id)
			}).Return(1, nil).Once()
		gateway.On("CreateTransfer", int64(5000), "gbp", "acct_seller", s.Item.OrderID.String(), "payout-"+s.Item.ID.String()).
			Return("tr_123", nil).Once()

		settled, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, settled)
		gateway.AssertExpectations(t)
	})

	t.Run("Transfer failure surfaces to the repository", func(t *testing.T) {
		payouts := new(MockPayoutRepo)
		gateway := new(MockGateway)
		svc := NewPayoutService(payouts, gateway, zap.NewNop(), "gbp")

		s := settlement("20.00", "0.00", "2.00")

		payouts.On("SweepUnsettled", ctx, 100, mock.Anything).
			Run(func(args mock.Arguments) {
				transfer := args.Get(2).(repository.TransferFunc)
				_, err := transfer(s)
				assert.Error(t, err)
			}).Return(0, nil).Once()
		gateway.On("CreateTransfer", int64(1800), "gbp", "acct_seller", s.Item.OrderID.String(), "payout-"+s.Item.ID.String()).
			Return("", errors.New("insufficient platform balance")).Once()

		settled, err := svc.Sweep(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, settled)
	})

	t.Run("Retried settlement reuses the same idempotency key", func(t *testing.T) {
		payouts := new(MockPayoutRepo)
		gateway := new(MockGateway)
		svc := NewPayoutService(payouts, gateway, zap.NewNop(), "gbp")

		s := settlement("40.00", "4.00", "4.00")

		// Two passes over the same item, as happens when the settled mark was
		// lost: the gateway must see an identical key both times.
		payouts.On("SweepUnsettled", ctx, 100, mock.Anything).
			Run(func(args mock.Arguments) {
				transfer := args.Get(2).(repository.TransferFunc)
				_, err := transfer(s)
				assert.NoError(t, err)
				_, err = transfer(s)
				assert.NoError(t, err)
			}).Return(1, nil).Once()
		gateway.On("CreateTransfer", int64(4000), "gbp", "acct_seller", s.Item.OrderID.String(), "payout-"+s.Item.ID.String()).
			Return("tr_456", nil).Twice()

		_, err := svc.Sweep(ctx)
		require.NoError(t, err)
		gateway.AssertExpectations(t)
	})

	t.Run("Sweep error is returned", func(t *testing.T) {
		payouts := new(MockPayoutRepo)
		gateway := new(MockGateway)
		svc := NewPayoutService(payouts, gateway, zap.NewNop(), "gbp")

		payouts.On("SweepUnsettled", ctx, 100, mock.Anything).
			Return(0, errors.New("db down")).Once()

		_, err := svc.Sweep(ctx)
		assert.Error(t, err)
	})
}
