package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	FinancialStatusUnsold = "unsold"
	FinancialStatusSold   = "sold"

	VisibilityDraft = "draft"
	VisibilityLive  = "live"
)

// Condition values a seller can pick from when listing.
var Conditions = []string{"Perfect", "Excellent", "Good", "Fair"}

type Product struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SellerID        uuid.UUID       `gorm:"type:uuid;not null;index" json:"seller_id"`
	Brand           string          `gorm:"type:varchar(200);not null" json:"brand"`
	Category        string          `gorm:"type:varchar(200);not null" json:"category"`
	Name            string          `gorm:"type:varchar(200);not null" json:"name"`
	Slug            string          `gorm:"type:varchar(210);uniqueIndex;not null" json:"slug"`
	Condition       string          `gorm:"type:varchar(100);not null" json:"condition"`
	Description     *string         `json:"description,omitempty"`
	Price           decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"price"`
	Shipping        decimal.Decimal `gorm:"type:decimal(10,2);not null;default:0" json:"shipping"`
	FinancialStatus string          `gorm:"type:varchar(10);not null;default:'unsold'" json:"financial_status"`
	Visibility      string          `gorm:"type:varchar(5);not null;default:'draft'" json:"visibility"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt       gorm.DeletedAt  `gorm:"index" json:"-"`
}

// InStock reports whether the product can still be added to a cart.
func (p *Product) InStock() bool {
	return p.FinancialStatus == FinancialStatusUnsold
}
