package booking

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// SlotType identifies one of the two fixed daily booking windows.
type SlotType string

const (
	SlotDay   SlotType = "day"
	SlotNight SlotType = "night"
)

// Times returns the fixed wall-clock window for the slot. The night slot
// crosses midnight.
func (s SlotType) Times() (start, end string) {
	if s == SlotNight {
		return "20:00", "01:00"
	}
	return "10:00", "17:00"
}

// Valid reports whether the slot is a known value.
func (s SlotType) Valid() bool {
	return s == SlotDay || s == SlotNight
}

// Status enumerates booking lifecycle states.
type Status string

const (
	StatusEnquiry   Status = "enquiry"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// PaymentStatus enumerates the payment state machine states.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPartial PaymentStatus = "partial"
	PaymentPaid    PaymentStatus = "paid"
)

// PaymentMode enumerates accepted payment modes.
type PaymentMode string

const (
	ModeCash   PaymentMode = "cash"
	ModeCredit PaymentMode = "credit"
	ModeUPI    PaymentMode = "upi"
)

// Booking is one reservation of one hall for one date and slot.
type Booking struct {
	ID              string             `json:"id"`
	Number          string             `json:"booking_number"`
	TenantID        string             `json:"tenant_id,omitempty"`
	CustomerID      string             `json:"customer_id"`
	HallID          string             `json:"hall_id"`
	EventType       string             `json:"event_type"`
	EventDate       string             `json:"event_date"`
	Slot            SlotType           `json:"slot"`
	StartTime       string             `json:"start_time"`
	EndTime         string             `json:"end_time"`
	GuestCount      int                `json:"guest_count"`
	MenuItems       []string           `json:"menu_items"`
	Addons          []string           `json:"addons"`
	SpecialRequests string             `json:"special_requests"`
	PriceOverrides  map[string]float64 `json:"custom_menu_prices"`

	FoodCharge     float64 `json:"food_charge"`
	AddonCharge    float64 `json:"addon_charge"`
	Subtotal       float64 `json:"subtotal"`
	DiscountType   string  `json:"discount_type"`
	DiscountValue  float64 `json:"discount_value"`
	DiscountAmount float64 `json:"discount_amount"`
	GSTOption      string  `json:"gst_option"`
	GSTCustomPct   float64 `json:"custom_gst_percent"`
	GSTPercent     float64 `json:"gst_percent"`
	GSTAmount      float64 `json:"gst_amount"`
	TotalAmount    float64 `json:"total_amount"`

	AdvancePaid   float64       `json:"advance_paid"`
	BalanceDue    float64       `json:"balance_due"`
	PaymentCash   float64       `json:"payment_cash"`
	PaymentCredit float64       `json:"payment_credit"`
	PaymentUPI    float64       `json:"payment_upi"`
	PaymentStatus PaymentStatus `json:"payment_status"`

	Status    Status    `json:"status"`
	IsDeleted bool      `json:"is_deleted"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Payment is an immutable record of money received against a booking.
type Payment struct {
	ID          string      `json:"id"`
	TenantID    string      `json:"tenant_id,omitempty"`
	BookingID   string      `json:"booking_id"`
	Amount      float64     `json:"amount"`
	Mode        PaymentMode `json:"payment_mode"`
	Notes       string      `json:"notes"`
	RecordedBy  string      `json:"recorded_by"`
	PaymentDate string      `json:"payment_date"`
	CreatedAt   time.Time   `json:"created_at"`
}

// PaymentSplit is one method/amount pair supplied at booking creation.
type PaymentSplit struct {
	Method string  `json:"method" validate:"required,oneof=cash credit upi"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// NewNumber generates a human-readable booking reference.
func NewNumber(now time.Time) string {
	suffix := strings.ToUpper(uuid.NewString()[:6])
	return "MSB-" + now.Format("20060102") + "-" + suffix
}

// derivePaymentState applies the creation-time payment rules: paid when the
// advance covers a positive total, partial when anything has been paid,
// pending otherwise.
func derivePaymentState(advancePaid, totalAmount float64) (PaymentStatus, float64) {
	balance := totalAmount - advancePaid
	switch {
	case advancePaid >= totalAmount && totalAmount > 0:
		return PaymentPaid, balance
	case advancePaid > 0:
		return PaymentPartial, balance
	default:
		return PaymentPending, balance
	}
}

// --- Input DTOs ---

// CreateInput carries a booking-create request.
type CreateInput struct {
	CustomerID      string             `json:"customer_id" validate:"required"`
	HallID          string             `json:"hall_id" validate:"required"`
	EventType       string             `json:"event_type" validate:"required"`
	EventDate       string             `json:"event_date" validate:"required,datetime=2006-01-02"`
	Slot            SlotType           `json:"slot" validate:"omitempty,oneof=day night"`
	GuestCount      int                `json:"guest_count" validate:"required,gt=0"`
	MenuItems       []string           `json:"menu_items"`
	Addons          []string           `json:"addons"`
	SpecialRequests string             `json:"special_requests"`
	PriceOverrides  map[string]float64 `json:"custom_menu_prices"`
	GSTOption       string             `json:"gst_option" validate:"omitempty,oneof=on off custom"`
	GSTCustomPct    float64            `json:"custom_gst_percent" validate:"gte=0"`
	DiscountType    string             `json:"discount_type" validate:"omitempty,oneof=percent fixed"`
	DiscountValue   float64            `json:"discount_value" validate:"gte=0"`
	PaymentSplits   []PaymentSplit     `json:"payment_splits" validate:"dive"`

	// Legacy single-advance fields, honoured when no splits are given.
	PaymentReceived bool    `json:"payment_received"`
	AdvanceAmount   float64 `json:"advance_amount" validate:"gte=0"`
	PaymentMethod   string  `json:"payment_method"`
}

// UpdateInput carries a booking-update request; nil fields are left unchanged.
type UpdateInput struct {
	HallID          *string             `json:"hall_id"`
	EventType       *string             `json:"event_type"`
	EventDate       *string             `json:"event_date"`
	Slot            *SlotType           `json:"slot"`
	GuestCount      *int                `json:"guest_count"`
	MenuItems       *[]string           `json:"menu_items"`
	Addons          *[]string           `json:"addons"`
	SpecialRequests *string             `json:"special_requests"`
	PriceOverrides  *map[string]float64 `json:"custom_menu_prices"`
	GSTOption       *string             `json:"gst_option"`
	GSTCustomPct    *float64            `json:"custom_gst_percent"`
	DiscountType    *string             `json:"discount_type"`
	DiscountValue   *float64            `json:"discount_value"`
	Status          *Status             `json:"status"`
}

// RecordPaymentInput carries a payment-record request.
type RecordPaymentInput struct {
	BookingID   string      `json:"booking_id" validate:"required"`
	Amount      float64     `json:"amount" validate:"required,gt=0"`
	Mode        PaymentMode `json:"payment_mode" validate:"omitempty,oneof=cash credit upi"`
	Notes       string      `json:"notes"`
	RecordedBy  string      `json:"recorded_by"`
	PaymentDate string      `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
}

// ListRequest filters booking lists.
type ListRequest struct {
	Status Status
	HallID string
	Limit  int
}
