package models

// ServiceInfo is the catalog view of a bookable salon service.
type ServiceInfo struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Category        string `json:"category,omitempty"`
	Price           int64  `json:"price"` // minor units
	DurationMinutes int    `json:"duration_minutes"`
	Active          bool   `json:"active"`
}

// ProductInfo is the catalog view of a retail product.
type ProductInfo struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Category     string `json:"category,omitempty"`
	SellingPrice int64  `json:"selling_price"` // minor units
	Stock        int    `json:"stock"`
	Available    bool   `json:"available"`
}

// StaffInfo is one active staff member at a branch.
type StaffInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Role   string `json:"role,omitempty"`
	Active bool   `json:"active"`
}
