package models

import "time"

// Gateway result event types consumed from the payment-results topic and
// the gateway webhook.
const (
	PaymentEventSucceeded = "payment_succeeded"
	PaymentEventFailed    = "payment_failed"
)

// PaymentResultEvent is the inbound notification of a mobile-money charge
// outcome. TransactionID is the idempotency key.
type PaymentResultEvent struct {
	Type               string    `json:"type"` // "payment_succeeded" | "payment_failed"
	TransactionID      string    `json:"transaction_id"`
	ExternalPaymentRef string    `json:"external_payment_ref,omitempty"`
	ErrorDetail        string    `json:"error_detail,omitempty"`
	Timestamp          time.Time `json:"timestamp,omitempty"`
}

// ReceiptEvent asks the receipt printer bridge to print a settled
// transaction.
type ReceiptEvent struct {
	Event         string    `json:"event"` // "receipt.print"
	TransactionID string    `json:"transaction_id"`
	Reference     string    `json:"reference"`
	TerminalID    string    `json:"terminal_id"`
	TotalAmount   int64     `json:"total_amount"`
	Timestamp     time.Time `json:"timestamp"`
}
