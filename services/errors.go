package services

import "errors"

var (
	// ErrEmptyCart is returned when checkout is submitted with no lines.
	ErrEmptyCart = errors.New("cart is empty")
	// ErrStaffRequired is returned when checkout is submitted with no staff
	// member selected.
	ErrStaffRequired = errors.New("no staff member selected")
	// ErrItemNotFound is returned when a catalog lookup comes back empty.
	ErrItemNotFound = errors.New("item not found in catalog")
	// ErrCustomerPhoneRequired is returned when a mobile money checkout has
	// no customer phone number to charge.
	ErrCustomerPhoneRequired = errors.New("customer phone number required for mobile money")
)
