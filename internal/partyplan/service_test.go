package partyplan

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

type memRepo struct {
	plans    map[string]Plan // keyed by booking id
	expenses []Expense
}

func newMemRepo() *memRepo {
	return &memRepo{plans: map[string]Plan{}}
}

func (m *memRepo) CreatePlan(_ context.Context, p Plan) error {
	m.plans[p.BookingID] = p
	return nil
}

func (m *memRepo) GetPlanByBooking(_ context.Context, tenantID, bookingID string) (Plan, error) {
	p, ok := m.plans[bookingID]
	if !ok || p.TenantID != tenantID {
		return Plan{}, ErrNotFound
	}
	return p, nil
}

func (m *memRepo) ListPlans(_ context.Context, tenantID string) ([]Plan, error) {
	var out []Plan
	for _, p := range m.plans {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memRepo) UpdatePlan(_ context.Context, p Plan) error {
	if _, ok := m.plans[p.BookingID]; !ok {
		return ErrNotFound
	}
	m.plans[p.BookingID] = p
	return nil
}

func (m *memRepo) CreateExpense(_ context.Context, e Expense) error {
	m.expenses = append(m.expenses, e)
	return nil
}

func (m *memRepo) ListExpenses(_ context.Context, tenantID, bookingID string) ([]Expense, error) {
	var out []Expense
	for _, e := range m.expenses {
		if e.TenantID == tenantID && e.BookingID == bookingID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *memRepo) DeleteAutoStaffExpenses(_ context.Context, tenantID, bookingID string) error {
	kept := m.expenses[:0]
	for _, e := range m.expenses {
		if e.TenantID == tenantID && e.BookingID == bookingID && e.Name == autoExpenseName {
			continue
		}
		kept = append(kept, e)
	}
	m.expenses = kept
	return nil
}

type stubBookings struct {
	bookings map[string]booking.Booking
	payments map[string][]booking.Payment
}

func (s *stubBookings) GetBooking(_ context.Context, id string) (booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

func (s *stubBookings) ListPayments(_ context.Context, bookingID string) ([]booking.Payment, error) {
	return s.payments[bookingID], nil
}

const testTenant = "tenant-1"

func testContext() context.Context {
	ctx := shared.ContextWithTenant(context.Background(), testTenant)
	return shared.ContextWithActor(ctx, "planner@example.com")
}

func newTestService(t *testing.T) (*Service, *memRepo, *stubBookings) {
	t.Helper()
	repo := newMemRepo()
	bookings := &stubBookings{
		bookings: map[string]booking.Booking{
			"bk-1": {
				ID: "bk-1", Number: "MSB-20260301-AAAAAA", HallID: "hall-1",
				EventType: "wedding", EventDate: "2026-06-15", Slot: booking.SlotNight,
				GuestCount: 250, TotalAmount: 50000, Status: booking.StatusConfirmed,
			},
			"bk-cancelled": {
				ID: "bk-cancelled", Status: booking.StatusCancelled,
			},
		},
		payments: map[string][]booking.Payment{},
	}
	svc := NewService(repo, bookings)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc, repo, bookings
}

func TestCreatePlanSeedsTimelineAndSnapshot(t *testing.T) {
	svc, _, _ := newTestService(t)

	p, err := svc.CreatePlan(testContext(), CreatePlanInput{BookingID: "bk-1"})
	require.NoError(t, err)

	// Wedding timeline: 4 common tasks plus 7 event-specific ones.
	require.Len(t, p.TimelineTasks, 11)
	require.Equal(t, "16:00", p.TimelineTasks[0].Time) // setup starts 2h before the night slot base
	require.Equal(t, "17:30", p.TimelineTasks[2].Time)
	require.Equal(t, TaskPending, p.TimelineTasks[0].Status)

	require.Equal(t, "2026-06-15", p.BookingSnapshot.EventDate)
	require.Equal(t, "night", p.BookingSnapshot.Slot)
	require.Equal(t, 250, p.BookingSnapshot.GuestCount)
	require.InDelta(t, 50000.0, p.BookingSnapshot.TotalAmount, 0.001)
	require.False(t, p.BookingChanged)

	require.Len(t, p.ActivityLog, 1)
	require.Equal(t, "Plan created", p.ActivityLog[0].Action)
}

func TestCreatePlanRejectsDuplicatesAndCancelled(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	_, err := svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-1"})
	require.NoError(t, err)

	_, err = svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-1"})
	require.ErrorIs(t, err, ErrPlanExists)

	_, err = svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-cancelled"})
	require.ErrorIs(t, err, ErrBookingCancelled)

	_, err = svc.CreatePlan(ctx, CreatePlanInput{BookingID: "missing"})
	require.ErrorIs(t, err, ErrNotFound)
}

// racingRepo simulates a competing create winning the insert between the
// service's existence check and its own insert, the way the database unique
// constraint reports it.
type racingRepo struct {
	*memRepo
}

func (r *racingRepo) CreatePlan(_ context.Context, _ Plan) error {
	return ErrPlanExists
}

func TestCreatePlanConcurrentDuplicate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	svc.repo = &racingRepo{memRepo: repo}

	_, err := svc.CreatePlan(testContext(), CreatePlanInput{BookingID: "bk-1"})
	require.ErrorIs(t, err, ErrPlanExists)
}

func TestStaffChargesCreateExpense(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := testContext()

	input := CreatePlanInput{BookingID: "bk-1"}
	input.StaffAssignments = []StaffAssignment{
		{Role: "waiter", Count: 10, Wage: 500},
		{Role: "supervisor", Count: 1, Wage: 1000},
	}
	p, err := svc.CreatePlan(ctx, input)
	require.NoError(t, err)
	require.InDelta(t, 6000.0, p.TotalStaffCharges, 0.001)

	expenses, err := repo.ListExpenses(ctx, testTenant, "bk-1")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.Equal(t, autoExpenseName, expenses[0].Name)
	require.InDelta(t, 6000.0, expenses[0].Amount, 0.001)

	// Updating the plan replaces the auto expense rather than stacking it.
	update := PlanInput{StaffAssignments: []StaffAssignment{{Role: "waiter", Count: 4, Wage: 500}}}
	p, err = svc.UpdatePlan(ctx, "bk-1", update)
	require.NoError(t, err)
	require.InDelta(t, 2000.0, p.TotalStaffCharges, 0.001)

	expenses, err = repo.ListExpenses(ctx, testTenant, "bk-1")
	require.NoError(t, err)
	require.Len(t, expenses, 1)
	require.InDelta(t, 2000.0, expenses[0].Amount, 0.001)
}

func TestReadinessScoring(t *testing.T) {
	svc, _, bookings := newTestService(t)
	ctx := testContext()

	// Bare plan: only the generated runsheet (3+ tasks) counts.
	p, err := svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-1"})
	require.NoError(t, err)
	require.Equal(t, 20, p.ReadinessScore)
	require.True(t, p.ReadinessBreakdown.RunsheetGenerated)
	require.False(t, p.ReadinessBreakdown.DepositReceived)

	// Vendors, staff, inventory and a deposit bring four more checks in.
	bookings.payments["bk-1"] = []booking.Payment{{Amount: 10000}}
	update := PlanInput{
		DJVendorID:       "vendor-dj",
		StaffAssignments: []StaffAssignment{{Role: "waiter", Count: 2, Wage: 500}},
		Inventory:        map[string]any{"chairs": 250},
	}
	p, err = svc.UpdatePlan(ctx, "bk-1", update)
	require.NoError(t, err)
	require.Equal(t, 100, p.ReadinessScore)
	require.False(t, p.ReadinessBreakdown.ChecklistComplete)

	// Completing over half the timeline flips the checklist check.
	for i := 0; i < (len(p.TimelineTasks)+1)/2+1; i++ {
		_, err = svc.UpdateTimelineTask(ctx, "bk-1", p.TimelineTasks[i].ID, UpdateTaskInput{Status: TaskDone})
		require.NoError(t, err)
	}
	got, err := svc.GetPlan(ctx, "bk-1")
	require.NoError(t, err)
	require.True(t, got.ReadinessBreakdown.ChecklistComplete)
	require.Equal(t, 120, got.ReadinessScore)
}

func TestDriftDetectionAndAcknowledge(t *testing.T) {
	svc, _, bookings := newTestService(t)
	ctx := testContext()

	_, err := svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-1"})
	require.NoError(t, err)

	// Move the event after the plan snapshot was taken.
	b := bookings.bookings["bk-1"]
	b.EventDate = "2026-06-20"
	b.HallID = "hall-2"
	bookings.bookings["bk-1"] = b

	view, err := svc.PlanForBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.True(t, view.HasPlan)
	require.True(t, view.Plan.BookingChanged)
	require.Contains(t, view.Plan.ChangeWarnings, "Event date changed from 2026-06-15 to 2026-06-20")
	require.Contains(t, view.Plan.ChangeWarnings, "Hall/Venue changed")

	snapshot, err := svc.AcknowledgeChanges(ctx, "bk-1")
	require.NoError(t, err)
	require.Equal(t, "2026-06-20", snapshot.EventDate)
	require.Equal(t, "hall-2", snapshot.HallID)

	view, err = svc.PlanForBooking(ctx, "bk-1")
	require.NoError(t, err)
	require.False(t, view.Plan.BookingChanged)
	require.Empty(t, view.Plan.ChangeWarnings)

	got, err := svc.GetPlan(ctx, "bk-1")
	require.NoError(t, err)
	last := got.ActivityLog[len(got.ActivityLog)-1]
	require.Equal(t, "Acknowledged booking changes", last.Action)
	require.Contains(t, last.Details, "old_snapshot")
	require.Contains(t, last.Details, "new_snapshot")
}

func TestPlanForBookingWithoutPlan(t *testing.T) {
	svc, _, _ := newTestService(t)

	view, err := svc.PlanForBooking(testContext(), "bk-1")
	require.NoError(t, err)
	require.False(t, view.HasPlan)
	require.Nil(t, view.Plan)
}

func TestStaffSuggestions(t *testing.T) {
	svc, _, _ := newTestService(t)

	// Wedding with 250 guests: 10 waiters, 1 supervisor, 2 helpers, 1 chef.
	suggestions, err := svc.SuggestStaffFor(testContext(), "bk-1")
	require.NoError(t, err)
	require.Len(t, suggestions, 4)
	byRole := map[string]StaffAssignment{}
	for _, s := range suggestions {
		byRole[s.Role] = s
	}
	require.Equal(t, 10, byRole["waiter"].Count)
	require.Equal(t, 1, byRole["supervisor"].Count)
	require.Equal(t, 2, byRole["helper"].Count)
	require.Equal(t, 1, byRole["chef"].Count)
}

func TestTimelineTaskStatusUpdate(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	p, err := svc.CreatePlan(ctx, CreatePlanInput{BookingID: "bk-1"})
	require.NoError(t, err)

	_, err = svc.UpdateTimelineTask(ctx, "bk-1", p.TimelineTasks[0].ID, UpdateTaskInput{Status: TaskDone})
	require.NoError(t, err)

	_, err = svc.UpdateTimelineTask(ctx, "bk-1", "missing-task", UpdateTaskInput{Status: TaskDone})
	require.ErrorIs(t, err, ErrTaskNotFound)
}

func TestProfitSnapshot(t *testing.T) {
	svc, _, bookings := newTestService(t)
	ctx := testContext()

	input := CreatePlanInput{BookingID: "bk-1"}
	input.StaffAssignments = []StaffAssignment{{Role: "waiter", Count: 10, Wage: 500}}
	_, err := svc.CreatePlan(ctx, input)
	require.NoError(t, err)

	bookings.payments["bk-1"] = []booking.Payment{{Amount: 10000}, {Amount: 5000}}
	_, err = svc.CreateExpense(ctx, CreateExpenseInput{BookingID: "bk-1", Name: "Flower decoration", Amount: 8000})
	require.NoError(t, err)

	snapshot, err := svc.Profit(ctx, "bk-1")
	require.NoError(t, err)
	require.InDelta(t, 50000.0, snapshot.BookingRevenue, 0.001)
	require.InDelta(t, 15000.0, snapshot.PaymentsReceived, 0.001)
	require.InDelta(t, 35000.0, snapshot.PendingAmount, 0.001)
	require.InDelta(t, 13000.0, snapshot.TotalExpenses, 0.001) // staff wages + flowers
	require.InDelta(t, 5000.0, snapshot.StaffCosts, 0.001)
	require.InDelta(t, 37000.0, snapshot.EstimatedProfit, 0.001)
	require.InDelta(t, 74.0, snapshot.ProfitMargin, 0.001)
	require.Len(t, snapshot.ExpenseBreakdown, 2)

	// Pending above half the revenue raises an advisory.
	var pendingAlert bool
	for _, a := range snapshot.Alerts {
		if a.Type == "warning" {
			pendingAlert = true
		}
	}
	require.True(t, pendingAlert)
}
