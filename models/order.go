package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Order struct {
	ID                uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID            *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	ProductCost       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"product_cost"`
	ShippingCost      decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	TotalAmount       decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"total_amount"`
	Status            string          `gorm:"type:varchar(10);not null;default:'pending'" json:"status"`
	PaymentStatus     string          `gorm:"type:varchar(15);not null;default:'pending'" json:"payment_status"`
	PaymentIntentID   *string         `gorm:"uniqueIndex" json:"-"`
	BillingAddressID  *uuid.UUID      `gorm:"type:uuid" json:"billing_address_id,omitempty"`
	ShippingAddressID *uuid.UUID      `gorm:"type:uuid" json:"shipping_address_id,omitempty"`
	BillingAddress    *Address        `gorm:"foreignKey:BillingAddressID;constraint:OnDelete:SET NULL" json:"billing_address,omitempty"`
	ShippingAddress   *Address        `gorm:"foreignKey:ShippingAddressID;constraint:OnDelete:SET NULL" json:"shipping_address,omitempty"`
	TrackingNumber    *string         `gorm:"type:varchar(255)" json:"tracking_number,omitempty"`
	TrackingCompany   *string         `gorm:"type:varchar(255)" json:"tracking_company,omitempty"`
	Items             []OrderItem     `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt         time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt  `gorm:"index" json:"-"`
}

type OrderItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID      uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID    uuid.UUID       `gorm:"type:uuid;not null" json:"product_id"`
	SellerID     *uuid.UUID      `gorm:"type:uuid;index" json:"seller_id,omitempty"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Quantity     int             `gorm:"not null;default:1" json:"quantity"`
	ShippingCost decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping_cost"`
	Commission   decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"commission"`
	TransferID   *string         `gorm:"type:varchar(255)" json:"-"`
	SettledAt    *time.Time      `gorm:"index" json:"settled_at,omitempty"`
	CreatedAt    time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// Subtotal is the item price times quantity, before shipping.
func (i *OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// TotalWithShipping is the item subtotal plus its shipping cost.
func (i *OrderItem) TotalWithShipping() decimal.Decimal {
	return i.Subtotal().Add(i.ShippingCost)
}

// SellerPayout is what the seller receives once the platform keeps its
// commission: subtotal plus shipping, minus the frozen commission amount.
func (i *OrderItem) SellerPayout() decimal.Decimal {
	return i.TotalWithShipping().Sub(i.Commission)
}
