package models

import (
	"time"

	"github.com/google/uuid"
)

// WebhookLog is an append-only audit record of every inbound gateway call,
// written before signature verification so malformed requests can still be
// replayed for forensics.
type WebhookLog struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Payload         string     `gorm:"type:text" json:"payload"`
	Header          string     `gorm:"type:text" json:"header"`
	EventType       string     `gorm:"type:varchar(100);index" json:"event_type"`
	PaymentIntentID *string    `gorm:"type:varchar(255);index" json:"payment_intent_id,omitempty"`
	OrderID         *uuid.UUID `gorm:"type:uuid" json:"order_id,omitempty"`
	Status          string     `gorm:"type:varchar(100);not null" json:"status"`
	CreatedAt       time.Time  `gorm:"autoCreateTime" json:"created_at"`
}

// WebhookEvent deduplicates gateway deliveries by event id. A row is inserted
// before any side effect runs; a unique-constraint hit means the event was
// already processed. A handler that fails transiently deletes its row again
// so the gateway's redelivery is not swallowed.
type WebhookEvent struct {
	EventID   string    `gorm:"type:varchar(255);primaryKey"`
	EventType string    `gorm:"type:varchar(100);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
