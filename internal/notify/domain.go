// Package notify renders and logs customer-facing messages. Actual delivery
// over WhatsApp or SMS is left to a gateway integration; this package owns
// templates, message assembly and the send log.
package notify

import "time"

// Kind enumerates message kinds.
type Kind string

const (
	KindBookingConfirmation Kind = "booking_confirmation"
	KindPaymentReminder     Kind = "payment_reminder"
	KindEventReminder       Kind = "event_reminder"
)

// Valid reports whether the kind is known.
func (k Kind) Valid() bool {
	switch k {
	case KindBookingConfirmation, KindPaymentReminder, KindEventReminder:
		return true
	}
	return false
}

// Template is a reusable message shape for one kind and channel.
type Template struct {
	ID       string `json:"id"`
	Kind     Kind   `json:"notification_type"`
	Channel  string `json:"channel"`
	Template string `json:"template"`
	IsActive bool   `json:"is_active"`
}

// Log is one rendered message, recorded whether or not a gateway delivered it.
type Log struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	BookingID string    `json:"booking_id"`
	Kind      Kind      `json:"notification_type"`
	Channel   string    `json:"channel"`
	Recipient string    `json:"recipient"`
	Message   string    `json:"message"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// SendInput carries a send request.
type SendInput struct {
	BookingID string `json:"booking_id" validate:"required"`
	Kind      Kind   `json:"notification_type" validate:"required,oneof=booking_confirmation payment_reminder event_reminder"`
}

// defaultTemplates are served until the tenant customises their own.
func defaultTemplates() []Template {
	return []Template{
		{
			ID:       "t1",
			Kind:     KindBookingConfirmation,
			Channel:  "whatsapp",
			Template: "Dear {customer_name}, your booking #{booking_number} for {event_type} on {event_date} at {hall_name} is confirmed! Total: ₹{total_amount}",
			IsActive: true,
		},
		{
			ID:       "t2",
			Kind:     KindPaymentReminder,
			Channel:  "whatsapp",
			Template: "Reminder: ₹{balance_due} is pending for your event on {event_date}. Booking: #{booking_number}",
			IsActive: true,
		},
		{
			ID:       "t3",
			Kind:     KindEventReminder,
			Channel:  "whatsapp",
			Template: "Your {event_type} at {hall_name} is tomorrow! We look forward to hosting you.",
			IsActive: true,
		},
	}
}
