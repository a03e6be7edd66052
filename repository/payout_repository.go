package repository

import (
	"context"
	"errors"
	"time"

	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Settlement pairs an unsettled order item with its seller's connected
// payout account.
type Settlement struct {
	Item            models.OrderItem
	SellerAccountID string
}

// TransferFunc requests the fund transfer for one settlement and returns the
// gateway's transfer id.
type TransferFunc func(s *Settlement) (string, error)

type PayoutRepository interface {
	// SweepUnsettled settles the unsettled items of paid orders. Each item is
	// claimed, transferred and marked settled in its own transaction, so a
	// storage failure on one item can never unwind the settled marks of items
	// whose transfers already went out. A failed transfer leaves its item
	// unclaimed for the next pass. Returns the number settled.
	SweepUnsettled(ctx context.Context, limit int, transfer TransferFunc) (int, error)
}

type gormPayoutRepo struct {
	db *gorm.DB
}

func NewGormPayoutRepo(db *gorm.DB) PayoutRepository {
	return &gormPayoutRepo{db: db}
}

func (r *gormPayoutRepo) SweepUnsettled(ctx context.Context, limit int, transfer TransferFunc) (int, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.status = ? AND orders.payment_status = ?", models.OrderStatusPaid, models.PaymentStatusCompleted).
		Where("order_items.settled_at IS NULL AND order_items.seller_id IS NOT NULL").
		Limit(limit).
		Pluck("order_items.id", &ids).Error; err != nil {
		return 0, err
	}

	settled := 0
	for _, id := range ids {
		ok, err := r.settleOne(ctx, id, transfer)
		if err != nil {
			// Items settled before this one stay committed; this item is
			// retried on the next pass.
			return settled, err
		}
		if ok {
			settled++
		}
	}
	return settled, nil
}

// settleOne claims, transfers and marks a single item inside one short
// transaction. Money moves at the transfer call, so the settled mark for this
// item must never share a transaction with any other item's.
func (r *gormPayoutRepo) settleOne(ctx context.Context, id uuid.UUID, transfer TransferFunc) (bool, error) {
	settled := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var item models.OrderItem
		// SKIP LOCKED lets overlapping sweep runs claim disjoint items, and
		// the settled_at recheck drops items another run finished first.
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE", Options: "SKIP LOCKED"}).
			Where("id = ? AND settled_at IS NULL", id).
			First(&item).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return err
		}

		var seller models.User
		if err := tx.First(&seller, "id = ?", item.SellerID).Error; err != nil {
			return nil
		}
		if seller.StripeAccountID == nil || !seller.IsStripeVerified {
			return nil
		}

		transferID, err := transfer(&Settlement{Item: item, SellerAccountID: *seller.StripeAccountID})
		if err != nil {
			// Left unsettled; the next sweep retries it.
			return nil
		}

		now := time.Now()
		if err := tx.Model(&models.OrderItem{}).
			Where("id = ?", item.ID).
			Updates(map[string]interface{}{
				"transfer_id": transferID,
				"settled_at":  &now,
			}).Error; err != nil {
			return err
		}
		settled = true
		return nil
	})
	return settled, err
}
