package services

import (
	"context"
	"time"

	"github.com/sellyourtackle/tackle-backend/models"
	"github.com/sellyourtackle/tackle-backend/repository"

	"go.uber.org/zap"
)

// PayoutService distributes settled funds to sellers. Transfers only ever
// happen here, never on the checkout path: the sweep is idempotent and
// survives partial failures, a crashed run simply leaves items for the next.
type PayoutService struct {
	payouts   repository.PayoutRepository
	gateway   PaymentGateway
	logger    *zap.Logger
	currency  string
	batchSize int
}

func NewPayoutService(payouts repository.PayoutRepository, gateway PaymentGateway, logger *zap.Logger, currency string) *PayoutService {
	return &PayoutService{
		payouts:   payouts,
		gateway:   gateway,
		logger:    logger,
		currency:  currency,
		batchSize: 100,
	}
}

// Sweep transfers the seller payout for every unsettled item of a paid order.
// Individual transfer failures are logged and retried on the next pass.
func (s *PayoutService) Sweep(ctx context.Context) (int, error) {
	settled, err := s.payouts.SweepUnsettled(ctx, s.batchSize, func(settlement *repository.Settlement) (string, error) {
		item := settlement.Item
		amount := models.MinorUnits(item.SellerPayout())

		// Keyed on the item id: if the settled mark is lost after a
		// successful transfer, the retried call cannot pay the seller twice.
		transferID, err := s.gateway.CreateTransfer(amount, s.currency, settlement.SellerAccountID, item.OrderID.String(), "payout-"+item.ID.String())
		if err != nil {
			s.logger.Warn("Transfer failed, leaving item for next sweep",
				zap.String("order_item_id", item.ID.String()),
				zap.String("order_id", item.OrderID.String()),
				zap.Int64("amount", amount),
				zap.Error(err),
			)
			return "", err
		}

		s.logger.Info("Seller payout transferred",
			zap.String("order_item_id", item.ID.String()),
			zap.String("transfer_id", transferID),
			zap.Int64("amount", amount),
		)
		return transferID, nil
	})
	if err != nil {
		s.logger.Error("Payout sweep failed", zap.Error(err))
		return settled, err
	}
	if settled > 0 {
		s.logger.Info("Payout sweep completed", zap.Int("items_settled", settled))
	}
	return settled, nil
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *PayoutService) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.Sweep(ctx); err != nil {
				// Logged in Sweep; keep ticking.
				continue
			}
		}
	}
}
