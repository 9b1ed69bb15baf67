package notify

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/utsav-erp/utsav-erp/internal/booking"
)

// inr renders rupee amounts with Indian-audience thousands separators.
var inr = message.NewPrinter(language.English)

// rupees formats a whole-rupee amount with grouping, e.g. 12,500.
func rupees(amount float64) string {
	return inr.Sprintf("%.0f", amount)
}

// Render builds the message body for a booking. Customer and hall names fall
// back to neutral placeholders when the catalog rows are gone.
func Render(kind Kind, b booking.Booking, customerName, hallName string) string {
	if customerName == "" {
		customerName = "Customer"
	}
	if hallName == "" {
		hallName = "venue"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] Dear %s, ", strings.ToUpper(string(kind)), customerName)
	switch kind {
	case KindBookingConfirmation:
		fmt.Fprintf(&sb, "your booking #%s for %s on %s at %s is confirmed! Total: ₹%s",
			b.Number, b.EventType, b.EventDate, hallName, rupees(b.TotalAmount))
	case KindPaymentReminder:
		fmt.Fprintf(&sb, "reminder: ₹%s is pending for your event on %s.",
			rupees(b.BalanceDue), b.EventDate)
	case KindEventReminder:
		fmt.Fprintf(&sb, "your %s at %s is tomorrow! We look forward to hosting you.",
			b.EventType, hallName)
	}
	return sb.String()
}
