package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	AddressTypeBilling  = "billing"
	AddressTypeShipping = "shipping"
)

type Address struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID       uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	AddressType  string    `gorm:"type:varchar(10);not null" json:"address_type"`
	FirstName    string    `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName     string    `gorm:"type:varchar(100);not null" json:"last_name"`
	Email        *string   `json:"email,omitempty"`
	PhoneNumber  *string   `gorm:"type:varchar(15)" json:"phone_number,omitempty"`
	AddressLine1 string    `gorm:"type:varchar(255);not null" json:"address_line1"`
	AddressLine2 *string   `gorm:"type:varchar(255)" json:"address_line2,omitempty"`
	City         string    `gorm:"type:varchar(100);not null" json:"city"`
	State        string    `gorm:"type:varchar(100);not null" json:"state"`
	PostalCode   string    `gorm:"type:varchar(10);not null" json:"postal_code"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}
