package models

import "time"

// OrderEvent is the message published to the order-events topic whenever a
// webhook moves an order into a terminal payment state or a seller dispatches.
type OrderEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id,omitempty"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}
