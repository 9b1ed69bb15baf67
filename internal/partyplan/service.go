package partyplan

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

var (
	// ErrNotFound indicates the plan or its booking is absent.
	ErrNotFound = errors.New("partyplan: not found")
	// ErrPlanExists indicates a plan already exists for the booking.
	ErrPlanExists = errors.New("partyplan: plan already exists for this booking")
	// ErrBookingCancelled indicates the plan's booking was cancelled; plans
	// on cancelled bookings are read-only.
	ErrBookingCancelled = errors.New("partyplan: booking is cancelled")
	// ErrTaskNotFound indicates a timeline task id is unknown.
	ErrTaskNotFound = errors.New("partyplan: timeline task not found")
)

const autoExpenseName = "Staff wages from party planning"

// BookingReader is the slice of the booking service the planner needs.
type BookingReader interface {
	GetBooking(ctx context.Context, id string) (booking.Booking, error)
	ListPayments(ctx context.Context, bookingID string) ([]booking.Payment, error)
}

// Service exposes party-planning operations.
type Service struct {
	repo     Repository
	bookings BookingReader
	now      func() time.Time
	// inr renders rupee figures with thousands separators for alert text.
	inr *message.Printer
}

// NewService constructs a Service.
func NewService(repo Repository, bookings BookingReader) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		now:      func() time.Time { return time.Now().UTC() },
		inr:      message.NewPrinter(language.English),
	}
}

// CreatePlan builds the execution plan for a booking: one plan per booking,
// seeded with a default timeline when none is supplied, snapshotting the
// booking for drift tracking.
func (s *Service) CreatePlan(ctx context.Context, input CreatePlanInput) (Plan, error) {
	if err := shared.Validate(input); err != nil {
		return Plan{}, err
	}
	tenantID := shared.TenantFromContext(ctx)

	b, err := s.bookings.GetBooking(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return Plan{}, fmt.Errorf("booking %s: %w", input.BookingID, ErrNotFound)
		}
		return Plan{}, err
	}
	if b.Status == booking.StatusCancelled {
		return Plan{}, ErrBookingCancelled
	}
	if _, err := s.repo.GetPlanByBooking(ctx, tenantID, input.BookingID); err == nil {
		return Plan{}, ErrPlanExists
	} else if !errors.Is(err, ErrNotFound) {
		return Plan{}, err
	}

	now := s.now()
	timeline := input.TimelineTasks
	if len(timeline) == 0 {
		timeline = DefaultTimeline(b.EventType, b.Slot, b.GuestCount)
	}
	staffCharges := totalStaffCharges(input.StaffAssignments)

	p := Plan{
		ID:                uuid.NewString(),
		TenantID:          tenantID,
		BookingID:         input.BookingID,
		DJVendorID:        normaliseVendorID(input.DJVendorID),
		DecorVendorID:     normaliseVendorID(input.DecorVendorID),
		CateringVendorID:  normaliseVendorID(input.CateringVendorID),
		CustomVendors:     input.CustomVendors,
		StaffAssignments:  input.StaffAssignments,
		TotalStaffCharges: staffCharges,
		TimelineTasks:     timeline,
		Inventory:         input.Inventory,
		SetupNotes:        input.SetupNotes,
		MenuExecution:     input.MenuExecution,
		Documents:         input.Documents,
		ActivityLog: []ActivityEntry{{
			ID:        uuid.NewString(),
			Action:    "Plan created",
			User:      shared.ActorFromContext(ctx),
			Timestamp: now,
			Details:   map[string]any{},
		}},
		BookingSnapshot: snapshotOf(b),
		ChangeWarnings:  []string{},
		Notes:           input.Notes,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	totalPaid, err := s.totalPaid(ctx, input.BookingID)
	if err != nil {
		return Plan{}, err
	}
	p.ReadinessScore, p.ReadinessBreakdown = scoreReadiness(p, totalPaid)

	if err := s.repo.CreatePlan(ctx, p); err != nil {
		return Plan{}, err
	}
	if staffCharges > 0 {
		if err := s.createStaffExpense(ctx, tenantID, input.BookingID, staffCharges); err != nil {
			return Plan{}, err
		}
	}
	return p, nil
}

// UpdatePlan replaces the plan's editable sections, re-derives staff charges
// and readiness, and re-checks snapshot drift.
func (s *Service) UpdatePlan(ctx context.Context, bookingID string, input PlanInput) (Plan, error) {
	if err := shared.Validate(input); err != nil {
		return Plan{}, err
	}
	tenantID := shared.TenantFromContext(ctx)

	p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return Plan{}, err
	}
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return Plan{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return Plan{}, err
	}
	if b.Status == booking.StatusCancelled {
		return Plan{}, ErrBookingCancelled
	}

	now := s.now()
	staffCharges := totalStaffCharges(input.StaffAssignments)

	p.DJVendorID = normaliseVendorID(input.DJVendorID)
	p.DecorVendorID = normaliseVendorID(input.DecorVendorID)
	p.CateringVendorID = normaliseVendorID(input.CateringVendorID)
	p.CustomVendors = input.CustomVendors
	p.StaffAssignments = input.StaffAssignments
	p.TotalStaffCharges = staffCharges
	if len(input.TimelineTasks) > 0 {
		p.TimelineTasks = input.TimelineTasks
	}
	if input.Inventory != nil {
		p.Inventory = input.Inventory
	}
	if input.SetupNotes != "" {
		p.SetupNotes = input.SetupNotes
	}
	if input.MenuExecution != nil {
		p.MenuExecution = input.MenuExecution
	}
	if input.Documents != nil {
		p.Documents = input.Documents
	}
	p.Notes = input.Notes

	p.BookingChanged, p.ChangeWarnings = driftSince(p.BookingSnapshot, b, false)
	p.ActivityLog = append(p.ActivityLog, ActivityEntry{
		ID:        uuid.NewString(),
		Action:    "Plan updated",
		User:      shared.ActorFromContext(ctx),
		Timestamp: now,
		Details:   map[string]any{"staff_charges": staffCharges},
	})

	totalPaid, err := s.totalPaid(ctx, bookingID)
	if err != nil {
		return Plan{}, err
	}
	p.ReadinessScore, p.ReadinessBreakdown = scoreReadiness(p, totalPaid)
	p.UpdatedAt = now

	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return Plan{}, err
	}

	// Replace the auto-generated staff expense with the fresh figure.
	if err := s.repo.DeleteAutoStaffExpenses(ctx, tenantID, bookingID); err != nil {
		return Plan{}, err
	}
	if staffCharges > 0 {
		if err := s.createStaffExpense(ctx, tenantID, bookingID, staffCharges); err != nil {
			return Plan{}, err
		}
	}
	return p, nil
}

// ListPlans lists the tenant's plans, newest first.
func (s *Service) ListPlans(ctx context.Context) ([]Plan, error) {
	return s.repo.ListPlans(ctx, shared.TenantFromContext(ctx))
}

// GetPlan fetches the plan for one booking.
func (s *Service) GetPlan(ctx context.Context, bookingID string) (Plan, error) {
	return s.repo.GetPlanByBooking(ctx, shared.TenantFromContext(ctx), bookingID)
}

// PlanForBooking returns the booking alongside its plan, with detailed drift
// warnings when the booking moved after the plan snapshot was taken.
func (s *Service) PlanForBooking(ctx context.Context, bookingID string) (PlanView, error) {
	tenantID := shared.TenantFromContext(ctx)

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return PlanView{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return PlanView{}, err
	}

	p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID)
	if errors.Is(err, ErrNotFound) {
		return PlanView{Booking: b, Plan: nil, HasPlan: false}, nil
	}
	if err != nil {
		return PlanView{}, err
	}

	if changed, warnings := driftSince(p.BookingSnapshot, b, true); changed {
		p.BookingChanged = true
		p.ChangeWarnings = warnings
	}
	return PlanView{Booking: b, Plan: &p, HasPlan: true}, nil
}

// AcknowledgeChanges overwrites the plan's snapshot with the booking's
// current state and clears the drift flags.
func (s *Service) AcknowledgeChanges(ctx context.Context, bookingID string) (Snapshot, error) {
	tenantID := shared.TenantFromContext(ctx)

	p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return Snapshot{}, err
	}
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return Snapshot{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return Snapshot{}, err
	}

	old := p.BookingSnapshot
	p.BookingSnapshot = snapshotOf(b)
	p.BookingChanged = false
	p.ChangeWarnings = []string{}
	p.ActivityLog = append(p.ActivityLog, ActivityEntry{
		ID:        uuid.NewString(),
		Action:    "Acknowledged booking changes",
		User:      shared.ActorFromContext(ctx),
		Timestamp: s.now(),
		Details:   map[string]any{"old_snapshot": old, "new_snapshot": p.BookingSnapshot},
	})
	p.UpdatedAt = s.now()

	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return Snapshot{}, err
	}
	return p.BookingSnapshot, nil
}

// SuggestStaffFor sizes a crew for the booking's event type and guest count.
func (s *Service) SuggestStaffFor(ctx context.Context, bookingID string) ([]StaffAssignment, error) {
	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return nil, err
	}
	return SuggestStaff(b.EventType, b.GuestCount), nil
}

// GenerateTimeline rebuilds the default run-of-show for a booking and, if a
// plan exists, stores it on the plan.
func (s *Service) GenerateTimeline(ctx context.Context, bookingID string) ([]TimelineTask, error) {
	tenantID := shared.TenantFromContext(ctx)

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return nil, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return nil, err
	}
	timeline := DefaultTimeline(b.EventType, b.Slot, b.GuestCount)

	p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID)
	if errors.Is(err, ErrNotFound) {
		return timeline, nil
	}
	if err != nil {
		return nil, err
	}

	p.TimelineTasks = timeline
	p.ActivityLog = append(p.ActivityLog, ActivityEntry{
		ID:        uuid.NewString(),
		Action:    "Timeline regenerated",
		User:      shared.ActorFromContext(ctx),
		Timestamp: s.now(),
		Details:   map[string]any{},
	})
	p.UpdatedAt = s.now()
	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return nil, err
	}
	return timeline, nil
}

// UpdateTimelineTask flips one task's status and re-scores readiness.
func (s *Service) UpdateTimelineTask(ctx context.Context, bookingID, taskID string, input UpdateTaskInput) (int, error) {
	if err := shared.Validate(input); err != nil {
		return 0, err
	}
	tenantID := shared.TenantFromContext(ctx)

	p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID)
	if err != nil {
		return 0, err
	}
	found := false
	for i := range p.TimelineTasks {
		if p.TimelineTasks[i].ID == taskID {
			p.TimelineTasks[i].Status = input.Status
			found = true
			break
		}
	}
	if !found {
		return 0, ErrTaskNotFound
	}

	totalPaid, err := s.totalPaid(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	p.ReadinessScore, p.ReadinessBreakdown = scoreReadiness(p, totalPaid)
	p.UpdatedAt = s.now()
	if err := s.repo.UpdatePlan(ctx, p); err != nil {
		return 0, err
	}
	return p.ReadinessScore, nil
}

// CreateExpense records a cost item against the event.
func (s *Service) CreateExpense(ctx context.Context, input CreateExpenseInput) (Expense, error) {
	if err := shared.Validate(input); err != nil {
		return Expense{}, err
	}
	e := Expense{
		ID:        uuid.NewString(),
		TenantID:  shared.TenantFromContext(ctx),
		BookingID: input.BookingID,
		Name:      input.Name,
		Amount:    input.Amount,
		Notes:     input.Notes,
		VendorID:  input.VendorID,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return Expense{}, err
	}
	return e, nil
}

// ListExpenses lists the event's expenses.
func (s *Service) ListExpenses(ctx context.Context, bookingID string) ([]Expense, error) {
	return s.repo.ListExpenses(ctx, shared.TenantFromContext(ctx), bookingID)
}

// Profit summarises revenue against receipts and expenses for one event and
// raises advisory alerts on thin margins, large outstanding balances and
// applied discounts.
func (s *Service) Profit(ctx context.Context, bookingID string) (ProfitSnapshot, error) {
	tenantID := shared.TenantFromContext(ctx)

	b, err := s.bookings.GetBooking(ctx, bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return ProfitSnapshot{}, fmt.Errorf("booking %s: %w", bookingID, ErrNotFound)
		}
		return ProfitSnapshot{}, err
	}

	totalPaid, err := s.totalPaid(ctx, bookingID)
	if err != nil {
		return ProfitSnapshot{}, err
	}
	expenses, err := s.repo.ListExpenses(ctx, tenantID, bookingID)
	if err != nil {
		return ProfitSnapshot{}, err
	}
	var totalExpenses float64
	lines := make([]ExpenseLine, 0, len(expenses))
	for _, e := range expenses {
		totalExpenses += e.Amount
		lines = append(lines, ExpenseLine{Name: e.Name, Amount: e.Amount})
	}

	var staffCosts float64
	if p, err := s.repo.GetPlanByBooking(ctx, tenantID, bookingID); err == nil {
		staffCosts = p.TotalStaffCharges
	} else if !errors.Is(err, ErrNotFound) {
		return ProfitSnapshot{}, err
	}

	revenue := b.TotalAmount
	pending := revenue - totalPaid
	profit := revenue - totalExpenses
	margin := 0.0
	if revenue > 0 {
		margin = profit / revenue * 100
	}
	margin = math.Round(margin*10) / 10

	var alerts []Alert
	if margin < 20 {
		alerts = append(alerts, Alert{Type: "warning", Message: fmt.Sprintf("Low profit margin: %.1f%%", margin)})
	}
	if pending > revenue*0.5 {
		alerts = append(alerts, Alert{Type: "warning", Message: s.inr.Sprintf("High pending amount: ₹%.0f", pending)})
	}
	if b.DiscountValue > 0 {
		alerts = append(alerts, Alert{Type: "info", Message: fmt.Sprintf("Discount applied: %s %g", b.DiscountType, b.DiscountValue)})
	}

	return ProfitSnapshot{
		BookingRevenue:   revenue,
		PaymentsReceived: totalPaid,
		PendingAmount:    pending,
		TotalExpenses:    totalExpenses,
		StaffCosts:       staffCosts,
		EstimatedProfit:  profit,
		ProfitMargin:     margin,
		Alerts:           alerts,
		ExpenseBreakdown: lines,
	}, nil
}

func (s *Service) totalPaid(ctx context.Context, bookingID string) (float64, error) {
	payments, err := s.bookings.ListPayments(ctx, bookingID)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range payments {
		total += p.Amount
	}
	return total, nil
}

func (s *Service) createStaffExpense(ctx context.Context, tenantID, bookingID string, amount float64) error {
	return s.repo.CreateExpense(ctx, Expense{
		ID:        uuid.NewString(),
		TenantID:  tenantID,
		BookingID: bookingID,
		Name:      autoExpenseName,
		Amount:    amount,
		Notes:     "Auto-generated from party planning",
		CreatedAt: s.now(),
	})
}

func snapshotOf(b booking.Booking) Snapshot {
	return Snapshot{
		EventDate:   b.EventDate,
		Slot:        string(b.Slot),
		GuestCount:  b.GuestCount,
		HallID:      b.HallID,
		EventType:   b.EventType,
		TotalAmount: b.TotalAmount,
	}
}

// driftSince compares the snapshot against the live booking. With detailed
// set, warnings spell out the old and new values.
func driftSince(snap Snapshot, b booking.Booking, detailed bool) (bool, []string) {
	var warnings []string
	if snap.EventDate != b.EventDate {
		if detailed {
			warnings = append(warnings, fmt.Sprintf("Event date changed from %s to %s", snap.EventDate, b.EventDate))
		} else {
			warnings = append(warnings, "Event date changed")
		}
	}
	if snap.Slot != string(b.Slot) {
		if detailed {
			warnings = append(warnings, fmt.Sprintf("Slot changed from %s to %s", snap.Slot, b.Slot))
		} else {
			warnings = append(warnings, "Slot changed")
		}
	}
	if snap.GuestCount != b.GuestCount {
		if detailed {
			warnings = append(warnings, fmt.Sprintf("Guest count changed from %d to %d", snap.GuestCount, b.GuestCount))
		} else {
			warnings = append(warnings, "Guest count changed")
		}
	}
	if snap.HallID != b.HallID {
		warnings = append(warnings, "Hall/Venue changed")
	}
	return len(warnings) > 0, warnings
}

// normaliseVendorID treats the UI's "none" marker as empty.
func normaliseVendorID(id string) string {
	if id == "none" {
		return ""
	}
	return id
}
