package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type User struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email            string          `gorm:"uniqueIndex;not null" json:"email"`
	FirstName        string          `gorm:"type:varchar(100)" json:"first_name"`
	LastName         string          `gorm:"type:varchar(100)" json:"last_name"`
	PasswordHash     string          `gorm:"not null" json:"-"`
	IsActive         bool            `gorm:"default:true" json:"is_active"`
	IsAdmin          bool            `gorm:"default:false" json:"-"`
	StripeAccountID  *string         `gorm:"uniqueIndex" json:"-"`
	IsStripeVerified bool            `gorm:"default:false" json:"is_stripe_verified"`
	Balance          decimal.Decimal `gorm:"type:decimal(10,2);default:0" json:"balance"`
	CreatedAt        time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time       `gorm:"autoUpdateTime" json:"-"`
	DeletedAt        gorm.DeletedAt  `gorm:"index" json:"-"`
}
