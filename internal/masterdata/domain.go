// Package masterdata holds the tenant catalog: halls, menu items and
// customers. Bookings price against this catalog but own no part of it.
package masterdata

import "time"

// Hall is a bookable venue.
type Hall struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	Amenities   []string  `json:"amenities"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// MenuItem is a priced catalog entry; add-ons share the table and are
// flagged rather than modelled separately.
type MenuItem struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenant_id,omitempty"`
	Name        string    `json:"name"`
	Category    string    `json:"category"`
	Price       float64   `json:"price_per_plate"`
	PricingType string    `json:"pricing_type"`
	Description string    `json:"description"`
	IsAddon     bool      `json:"is_addon"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
}

// Customer is a booking counterparty.
type Customer struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateHallInput carries a hall-create request.
type CreateHallInput struct {
	Name        string   `json:"name" validate:"required"`
	Capacity    int      `json:"capacity" validate:"gt=0"`
	Description string   `json:"description"`
	Amenities   []string `json:"amenities"`
}

// CreateMenuItemInput carries a menu-item-create request.
type CreateMenuItemInput struct {
	Name        string  `json:"name" validate:"required"`
	Category    string  `json:"category"`
	Price       float64 `json:"price_per_plate" validate:"gte=0"`
	PricingType string  `json:"pricing_type" validate:"omitempty,oneof=per_plate fixed"`
	Description string  `json:"description"`
	IsAddon     bool    `json:"is_addon"`
}

// CreateCustomerInput carries a customer-create request.
type CreateCustomerInput struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Phone   string `json:"phone" validate:"required"`
	Address string `json:"address"`
}
