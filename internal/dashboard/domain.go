package dashboard

// RecentBooking is one row of the recent-activity list, enriched with the
// customer and hall names.
type RecentBooking struct {
	ID            string  `json:"id"`
	Number        string  `json:"booking_number"`
	CustomerName  string  `json:"customer_name"`
	HallName      string  `json:"hall_name"`
	EventType     string  `json:"event_type"`
	EventDate     string  `json:"event_date"`
	Slot          string  `json:"slot"`
	TotalAmount   float64 `json:"total_amount"`
	PaymentStatus string  `json:"payment_status"`
	Status        string  `json:"status"`
}

// Stats is the headline dashboard block.
type Stats struct {
	TotalBookings   int             `json:"total_bookings"`
	UpcomingEvents  int             `json:"upcoming_events"`
	MonthlyRevenue  float64         `json:"monthly_revenue"`
	PendingPayments int             `json:"pending_payments"`
	RecentBookings  []RecentBooking `json:"recent_bookings"`
}

// MonthRevenue is one bar of the revenue chart.
type MonthRevenue struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

// EventTypeCount is one slice of the event distribution.
type EventTypeCount struct {
	EventType string `json:"event_type"`
	Count     int    `json:"count"`
}
