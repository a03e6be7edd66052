package repository

import (
	"context"

	"github.com/sellyourtackle/tackle-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderRepository interface {
	// CreateCheckout persists the order, its addresses and its items in one
	// transaction so a partial checkout never survives a failure.
	CreateCheckout(ctx context.Context, order *models.Order, items []models.OrderItem, billing *models.Address, shipping *models.Address) error
	SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error)
	ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error)
	ListSalesBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error)
	// MarkPaid applies the paid/completed transition and flips every item's
	// product to sold inside one transaction.
	MarkPaid(ctx context.Context, orderID uuid.UUID) error
	MarkFailed(ctx context.Context, orderID uuid.UUID) error
	MarkRefunded(ctx context.Context, orderID uuid.UUID) error
	MarkRefundFailed(ctx context.Context, orderID uuid.UUID) error
	MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, trackingCompany string) error
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) OrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) CreateCheckout(ctx context.Context, order *models.Order, items []models.OrderItem, billing *models.Address, shipping *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(billing).Error; err != nil {
			return err
		}
		order.BillingAddressID = &billing.ID

		if shipping != nil {
			if err := tx.Create(shipping).Error; err != nil {
				return err
			}
			order.ShippingAddressID = &shipping.ID
		} else {
			// Shipping aliases billing when the buyer didn't opt in to a
			// separate shipping address.
			order.ShippingAddressID = &billing.ID
		}

		if err := tx.Create(order).Error; err != nil {
			return err
		}

		for i := range items {
			items[i].OrderID = order.ID
		}
		if err := tx.Create(&items).Error; err != nil {
			return err
		}
		order.Items = items
		return nil
	})
}

func (r *gormOrderRepo) SetPaymentIntentID(ctx context.Context, orderID uuid.UUID, intentID string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_intent_id", intentID).Error
}

func (r *gormOrderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").Preload("BillingAddress").Preload("ShippingAddress").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) GetByPaymentIntentID(ctx context.Context, intentID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_intent_id = ?", intentID).
		First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) ListByUser(ctx context.Context, userID uuid.UUID, page, limit int) ([]models.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.Order{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	if err := query.Preload("Items").Order("created_at DESC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

func (r *gormOrderRepo) ListSalesBySeller(ctx context.Context, sellerID uuid.UUID) ([]models.OrderItem, error) {
	var items []models.OrderItem
	if err := r.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *gormOrderRepo) MarkPaid(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Order{}).Where("id = ?", orderID).Updates(map[string]interface{}{
			"status":         models.OrderStatusPaid,
			"payment_status": models.PaymentStatusCompleted,
		}).Error; err != nil {
			return err
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", orderID).Find(&items).Error; err != nil {
			return err
		}
		productIDs := make([]uuid.UUID, 0, len(items))
		for _, item := range items {
			productIDs = append(productIDs, item.ProductID)
		}
		if len(productIDs) == 0 {
			return nil
		}
		return tx.Model(&models.Product{}).
			Where("id IN ?", productIDs).
			Update("financial_status", models.FinancialStatusSold).Error
	})
}

func (r *gormOrderRepo) MarkFailed(ctx context.Context, orderID uuid.UUID) error {
	return r.setStatuses(ctx, orderID, models.OrderStatusFailed, models.PaymentStatusFailed)
}

func (r *gormOrderRepo) MarkRefunded(ctx context.Context, orderID uuid.UUID) error {
	return r.setStatuses(ctx, orderID, models.OrderStatusRefunded, models.PaymentStatusRefunded)
}

func (r *gormOrderRepo) MarkRefundFailed(ctx context.Context, orderID uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("payment_status", models.PaymentStatusRefundFailed).Error
}

func (r *gormOrderRepo) MarkShipped(ctx context.Context, orderID uuid.UUID, trackingNumber, trackingCompany string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":           models.OrderStatusShipped,
			"tracking_number":  trackingNumber,
			"tracking_company": trackingCompany,
		}).Error
}

func (r *gormOrderRepo) setStatuses(ctx context.Context, orderID uuid.UUID, status, paymentStatus string) error {
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("id = ?", orderID).
		Updates(map[string]interface{}{
			"status":         status,
			"payment_status": paymentStatus,
		}).Error
}
