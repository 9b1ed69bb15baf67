// Package partyplan owns execution planning for a booked event: vendor and
// staff lineups, the run-of-show timeline, readiness scoring and the profit
// snapshot. A plan captures the booking's key fields at creation time and
// flags drift when the booking later changes.
package partyplan

import "time"

// Task statuses on the run-of-show timeline.
const (
	TaskPending = "pending"
	TaskDone    = "done"
	TaskSkipped = "skipped"
)

// StaffAssignment is one staffed role on the plan. Charge contribution is
// Count times Wage.
type StaffAssignment struct {
	Name          string   `json:"name,omitempty"`
	Role          string   `json:"role"`
	Count         int      `json:"count"`
	WageType      string   `json:"wage_type"`
	Wage          float64  `json:"wage"`
	ShiftStart    string   `json:"shift_start"`
	ShiftEnd      string   `json:"shift_end"`
	AssignedNames []string `json:"assigned_names"`
	Attendance    string   `json:"attendance"`
}

// TimelineTask is one run-of-show entry.
type TimelineTask struct {
	ID        string `json:"id"`
	Time      string `json:"time"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	OwnerType string `json:"owner_type"`
	Status    string `json:"status"`
	Notes     string `json:"notes"`
}

// Document is an attachment reference on the plan.
type Document struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Type       string `json:"type"`
	URL        string `json:"url"`
	UploadedAt string `json:"uploaded_at"`
}

// ActivityEntry is one line of the plan's audit trail.
type ActivityEntry struct {
	ID        string         `json:"id"`
	Action    string         `json:"action"`
	User      string         `json:"user"`
	Timestamp time.Time      `json:"timestamp"`
	Details   map[string]any `json:"details"`
}

// Snapshot captures the booking fields the plan was built against. Drift
// between the snapshot and the live booking triggers change warnings.
type Snapshot struct {
	EventDate   string  `json:"event_date"`
	Slot        string  `json:"slot"`
	GuestCount  int     `json:"guest_count"`
	HallID      string  `json:"hall_id"`
	EventType   string  `json:"event_type"`
	TotalAmount float64 `json:"total_amount"`
}

// Breakdown itemises the readiness checks. Each satisfied check is worth
// twenty points.
type Breakdown struct {
	VendorConfirmed    bool `json:"vendor_confirmed"`
	StaffScheduled     bool `json:"staff_scheduled"`
	ChecklistComplete  bool `json:"checklist_complete"`
	DepositReceived    bool `json:"deposit_received"`
	InventoryConfirmed bool `json:"inventory_confirmed"`
	RunsheetGenerated  bool `json:"runsheet_generated"`
}

// Plan is the execution plan for one booking. One plan per booking.
type Plan struct {
	ID        string `json:"id"`
	TenantID  string `json:"tenant_id,omitempty"`
	BookingID string `json:"booking_id"`

	DJVendorID       string   `json:"dj_vendor_id,omitempty"`
	DecorVendorID    string   `json:"decor_vendor_id,omitempty"`
	CateringVendorID string   `json:"catering_vendor_id,omitempty"`
	CustomVendors    []string `json:"custom_vendors"`

	StaffAssignments  []StaffAssignment `json:"staff_assignments"`
	TotalStaffCharges float64           `json:"total_staff_charges"`

	TimelineTasks []TimelineTask `json:"timeline_tasks"`

	Inventory     map[string]any  `json:"inventory"`
	SetupNotes    string          `json:"setup_notes"`
	MenuExecution map[string]any  `json:"menu_execution"`
	Documents     []Document      `json:"documents"`
	ActivityLog   []ActivityEntry `json:"activity_log"`

	ReadinessScore     int       `json:"readiness_score"`
	ReadinessBreakdown Breakdown `json:"readiness_breakdown"`

	BookingSnapshot Snapshot `json:"booking_snapshot"`
	BookingChanged  bool     `json:"booking_changed"`
	ChangeWarnings  []string `json:"change_warnings"`

	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Expense is one cost item booked against an event.
type Expense struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenant_id,omitempty"`
	BookingID string    `json:"booking_id"`
	Name      string    `json:"expense_name"`
	Amount    float64   `json:"amount"`
	Notes     string    `json:"notes"`
	VendorID  string    `json:"vendor_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// PlanView pairs the plan with its booking for the planning screen.
type PlanView struct {
	Booking any   `json:"booking"`
	Plan    *Plan `json:"plan"`
	HasPlan bool  `json:"has_plan"`
}

// Alert is one advisory on the profit snapshot.
type Alert struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ExpenseLine is one row of the snapshot's expense breakdown.
type ExpenseLine struct {
	Name   string  `json:"expense_name"`
	Amount float64 `json:"amount"`
}

// ProfitSnapshot summarises money in versus money out for one event.
type ProfitSnapshot struct {
	BookingRevenue   float64       `json:"booking_revenue"`
	PaymentsReceived float64       `json:"payments_received"`
	PendingAmount    float64       `json:"pending_amount"`
	TotalExpenses    float64       `json:"total_expenses"`
	StaffCosts       float64       `json:"staff_costs"`
	EstimatedProfit  float64       `json:"estimated_profit"`
	ProfitMargin     float64       `json:"profit_margin"`
	Alerts           []Alert       `json:"alerts"`
	ExpenseBreakdown []ExpenseLine `json:"expense_breakdown"`
}

// totalStaffCharges folds staffed roles into a single figure. A zero count
// is treated as one person.
func totalStaffCharges(assignments []StaffAssignment) float64 {
	var total float64
	for _, a := range assignments {
		count := a.Count
		if count == 0 {
			count = 1
		}
		total += float64(count) * a.Wage
	}
	return total
}

// --- Input DTOs ---

// PlanInput carries a plan create or update request.
type PlanInput struct {
	DJVendorID       string   `json:"dj_vendor_id"`
	DecorVendorID    string   `json:"decor_vendor_id"`
	CateringVendorID string   `json:"catering_vendor_id"`
	CustomVendors    []string `json:"custom_vendors"`

	StaffAssignments []StaffAssignment `json:"staff_assignments" validate:"dive"`
	TimelineTasks    []TimelineTask    `json:"timeline_tasks" validate:"dive"`

	Inventory     map[string]any `json:"inventory"`
	SetupNotes    string         `json:"setup_notes"`
	MenuExecution map[string]any `json:"menu_execution"`
	Documents     []Document     `json:"documents"`
	Notes         string         `json:"notes"`
}

// CreatePlanInput wraps PlanInput with the booking reference.
type CreatePlanInput struct {
	BookingID string `json:"booking_id" validate:"required"`
	PlanInput
}

// CreateExpenseInput carries an expense-create request.
type CreateExpenseInput struct {
	BookingID string  `json:"booking_id" validate:"required"`
	Name      string  `json:"expense_name" validate:"required"`
	Amount    float64 `json:"amount" validate:"required,gt=0"`
	Notes     string  `json:"notes"`
	VendorID  string  `json:"vendor_id"`
}

// UpdateTaskInput carries a timeline task status change.
type UpdateTaskInput struct {
	Status string `json:"status" validate:"required,oneof=pending done skipped"`
}
