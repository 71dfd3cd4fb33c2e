package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TransactionStatus string

const (
	TransactionStatusProcessing TransactionStatus = "processing"
	TransactionStatusCompleted  TransactionStatus = "completed"
	TransactionStatusFailed     TransactionStatus = "failed"
)

// IsTerminal reports whether the status admits no further transitions.
func (s TransactionStatus) IsTerminal() bool {
	return s == TransactionStatusCompleted || s == TransactionStatusFailed
}

func (s TransactionStatus) String() string {
	return string(s)
}

type TransactionKind string

const (
	TransactionKindService TransactionKind = "service"
	TransactionKindProduct TransactionKind = "product"
	TransactionKindMixed   TransactionKind = "mixed"
)

// CheckoutTransaction is the durable record snapshotted from a cart at
// submission time. Monetary fields never change after creation; only
// PaymentStatus, ExternalPaymentRef and FailureDetail move, and only
// through the checkout state machine.
type CheckoutTransaction struct {
	ID                uuid.UUID         `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Reference         string            `gorm:"uniqueIndex;not null" json:"reference"`
	BranchID          string            `gorm:"type:varchar(64);not null;index" json:"branch_id"`
	TerminalID        string            `gorm:"type:varchar(64);not null;index" json:"terminal_id"`
	StaffID           string            `gorm:"type:varchar(64);not null" json:"staff_id"`
	CustomerID        *string           `gorm:"type:varchar(64)" json:"customer_id,omitempty"`
	CustomerPhone     *string           `gorm:"type:varchar(32)" json:"customer_phone,omitempty"`
	Kind              TransactionKind   `gorm:"type:varchar(16);not null" json:"kind"`
	Subtotal          int64             `gorm:"not null" json:"subtotal"` // minor units
	DiscountAmount    int64             `gorm:"not null" json:"discount_amount"`
	TaxAmount         int64             `gorm:"not null" json:"tax_amount"`
	TipAmount         int64             `gorm:"not null" json:"tip_amount"`
	TotalAmount       int64             `gorm:"not null" json:"total_amount"`
	PaymentMethod     PaymentMethod     `gorm:"type:varchar(20);not null" json:"payment_method"`
	PaymentStatus     TransactionStatus `gorm:"type:varchar(20);not null;index" json:"payment_status"`
	ExternalPaymentRef *string          `gorm:"type:varchar(128)" json:"external_payment_ref,omitempty"`
	FailureDetail     *string           `gorm:"type:varchar(512)" json:"failure_detail,omitempty"`
	CompletedAt       *time.Time        `json:"completed_at,omitempty"`
	FailedAt          *time.Time        `json:"failed_at,omitempty"`
	CreatedAt         time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt         gorm.DeletedAt    `gorm:"index" json:"-"`
	LineItems         []TransactionLineItem `gorm:"foreignKey:TransactionID;constraint:OnDelete:CASCADE" json:"line_items"`
}

// TransactionLineItem is an immutable snapshot of one cart line.
type TransactionLineItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TransactionID   uuid.UUID `gorm:"type:uuid;not null;index" json:"transaction_id"`
	Kind            ItemKind  `gorm:"type:varchar(16);not null" json:"kind"`
	ItemID          string    `gorm:"type:varchar(64);not null" json:"item_id"`
	Name            string    `gorm:"type:varchar(255);not null" json:"name"`
	UnitPrice       int64     `gorm:"not null" json:"unit_price"`
	Quantity        int       `gorm:"not null" json:"quantity"`
	AssignedStaffID *string   `gorm:"type:varchar(64)" json:"assigned_staff_id,omitempty"`
	DurationMinutes int       `json:"duration_minutes,omitempty"`
}
