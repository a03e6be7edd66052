package models

// Order fulfilment statuses.
const (
	OrderStatusPending   = "pending"
	OrderStatusPaid      = "paid"
	OrderStatusShipped   = "shipped"
	OrderStatusDelivered = "delivered"
	OrderStatusRefunded  = "refunded"
	OrderStatusFailed    = "failed"
)

// Payment statuses.
const (
	PaymentStatusPending      = "pending"
	PaymentStatusCompleted    = "completed"
	PaymentStatusFailed       = "failed"
	PaymentStatusRefunded     = "refunded"
	PaymentStatusRefundFailed = "refund_failed"
)

// StatusPair is a joint (status, payment_status) state. Orders only move
// between pairs listed in validTransitions; anything else is rejected so the
// two columns can never drift apart.
type StatusPair struct {
	Status        string
	PaymentStatus string
}

var validTransitions = map[StatusPair][]StatusPair{
	{OrderStatusPending, PaymentStatusPending}: {
		{OrderStatusPaid, PaymentStatusCompleted},
		{OrderStatusFailed, PaymentStatusFailed},
	},
	{OrderStatusPaid, PaymentStatusCompleted}: {
		{OrderStatusShipped, PaymentStatusCompleted},
		{OrderStatusRefunded, PaymentStatusRefunded},
		{OrderStatusPaid, PaymentStatusRefundFailed},
	},
	{OrderStatusShipped, PaymentStatusCompleted}: {
		{OrderStatusDelivered, PaymentStatusCompleted},
		{OrderStatusRefunded, PaymentStatusRefunded},
		{OrderStatusShipped, PaymentStatusRefundFailed},
	},
	{OrderStatusDelivered, PaymentStatusCompleted}: {
		{OrderStatusRefunded, PaymentStatusRefunded},
	},
	// Failed payments may be retried with a fresh intent.
	{OrderStatusFailed, PaymentStatusFailed}: {
		{OrderStatusPaid, PaymentStatusCompleted},
	},
	// A refund that the gateway later reports as failed: money moved once, so
	// this is distinct from a failed payment.
	{OrderStatusRefunded, PaymentStatusRefunded}: {
		{OrderStatusRefunded, PaymentStatusRefundFailed},
	},
}

// CanTransition reports whether an order may move from one joint state to
// another. A transition to the current state is allowed so webhook replays
// are no-ops rather than errors.
func CanTransition(from, to StatusPair) bool {
	if from == to {
		return true
	}
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CurrentPair returns the order's joint state.
func (o *Order) CurrentPair() StatusPair {
	return StatusPair{Status: o.Status, PaymentStatus: o.PaymentStatus}
}
