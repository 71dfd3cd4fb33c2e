package models

import "time"

type ItemKind string

const (
	ItemKindService ItemKind = "service"
	ItemKindProduct ItemKind = "product"
)

type PaymentMethod string

const (
	PaymentMethodCash        PaymentMethod = "cash"
	PaymentMethodMobileMoney PaymentMethod = "mobile_money"
)

// CartLine is one sellable entry in a terminal's cart. Service lines are
// never stacked (quantity stays 1); product lines carry quantity >= 1.
type CartLine struct {
	LineID          string   `json:"line_id"` // "<kind>:<item_id>", unique within the cart
	Kind            ItemKind `json:"kind"`
	ItemID          string   `json:"item_id"`
	Name            string   `json:"name"`
	UnitPrice       int64    `json:"unit_price"` // minor units
	Quantity        int      `json:"quantity"`
	AssignedStaffID string   `json:"assigned_staff_id,omitempty"`
	DurationMinutes int      `json:"duration_minutes,omitempty"`
}

type CustomerInfo struct {
	CustomerID string `json:"customer_id,omitempty"` // empty for walk-ins
	Name       string `json:"name,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// Cart is the mutable aggregate for one terminal session. Line order is
// insertion order. Derived totals are recomputed after every mutation that
// affects price.
type Cart struct {
	TerminalID      string        `json:"terminal_id"`
	BranchID        string        `json:"branch_id"`
	Lines           []CartLine    `json:"lines"`
	Customer        CustomerInfo  `json:"customer"`
	SelectedStaffID string        `json:"selected_staff_id,omitempty"`
	PaymentMethod   PaymentMethod `json:"payment_method"`
	DiscountAmount  int64         `json:"discount_amount"`
	TipAmount       int64         `json:"tip_amount"`
	Subtotal        int64         `json:"subtotal"`
	TaxAmount       int64         `json:"tax_amount"`
	TotalAmount     int64         `json:"total_amount"`
	UpdatedAt       time.Time     `json:"updated_at"`
}

// CartLineID builds the composite line key for an item.
func CartLineID(kind ItemKind, itemID string) string {
	return string(kind) + ":" + itemID
}

// FindLine returns the index of the line with the given id, or -1.
func (c *Cart) FindLine(lineID string) int {
	for i := range c.Lines {
		if c.Lines[i].LineID == lineID {
			return i
		}
	}
	return -1
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.Lines) == 0
}
