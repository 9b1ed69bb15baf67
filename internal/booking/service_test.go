package booking

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/pricing"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

type memRepo struct {
	bookings map[string]Booking
	payments []Payment
}

func newMemRepo() *memRepo {
	return &memRepo{bookings: map[string]Booking{}}
}

func (m *memRepo) CreateBooking(_ context.Context, b Booking) error {
	m.bookings[b.ID] = b
	return nil
}

func (m *memRepo) GetBooking(_ context.Context, tenantID, id string) (Booking, error) {
	b, ok := m.bookings[id]
	if !ok || b.TenantID != tenantID {
		return Booking{}, ErrNotFound
	}
	return b, nil
}

func (m *memRepo) ListBookings(_ context.Context, tenantID string, req ListRequest) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.TenantID != tenantID || b.IsDeleted {
			continue
		}
		if req.Status != "" && b.Status != req.Status {
			continue
		}
		if req.HallID != "" && b.HallID != req.HallID {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (m *memRepo) UpdateBooking(_ context.Context, b Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	m.bookings[b.ID] = b
	return nil
}

func (m *memRepo) FindActiveBySlot(_ context.Context, tenantID, hallID, eventDate string, slot SlotType, excludeID string) (Booking, error) {
	for _, b := range m.bookings {
		if b.TenantID != tenantID || b.HallID != hallID || b.EventDate != eventDate || b.Slot != slot {
			continue
		}
		if b.Status == StatusCancelled || b.IsDeleted {
			continue
		}
		if excludeID != "" && b.ID == excludeID {
			continue
		}
		return b, nil
	}
	return Booking{}, ErrNotFound
}

func (m *memRepo) RecordPayment(_ context.Context, p Payment, b Booking) error {
	if _, ok := m.bookings[b.ID]; !ok {
		return ErrNotFound
	}
	m.payments = append(m.payments, p)
	m.bookings[b.ID] = b
	return nil
}

func (m *memRepo) ListPayments(_ context.Context, tenantID, bookingID string) ([]Payment, error) {
	var out []Payment
	for _, p := range m.payments {
		if p.TenantID != tenantID {
			continue
		}
		if bookingID != "" && p.BookingID != bookingID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (m *memRepo) ListOutstanding(_ context.Context) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.BalanceDue > 0 && !b.IsDeleted && b.Status != StatusCancelled && b.Status != StatusCompleted {
			out = append(out, b)
		}
	}
	return out, nil
}

func (m *memRepo) ListByEventDate(_ context.Context, eventDate string) ([]Booking, error) {
	var out []Booking
	for _, b := range m.bookings {
		if b.EventDate == eventDate && !b.IsDeleted && b.Status != StatusCancelled && b.Status != StatusCompleted {
			out = append(out, b)
		}
	}
	return out, nil
}

type memCatalog struct {
	halls map[string]masterdata.Hall
	items map[string]masterdata.MenuItem
}

func newMemCatalog() *memCatalog {
	return &memCatalog{halls: map[string]masterdata.Hall{}, items: map[string]masterdata.MenuItem{}}
}

func (m *memCatalog) CreateHall(_ context.Context, h masterdata.Hall) error {
	m.halls[h.ID] = h
	return nil
}

func (m *memCatalog) GetHall(_ context.Context, tenantID, id string) (masterdata.Hall, error) {
	h, ok := m.halls[id]
	if !ok || h.TenantID != tenantID {
		return masterdata.Hall{}, masterdata.ErrNotFound
	}
	return h, nil
}

func (m *memCatalog) ListHalls(_ context.Context, tenantID string) ([]masterdata.Hall, error) {
	var out []masterdata.Hall
	for _, h := range m.halls {
		if h.TenantID == tenantID {
			out = append(out, h)
		}
	}
	return out, nil
}

func (m *memCatalog) CreateMenuItem(_ context.Context, item masterdata.MenuItem) error {
	m.items[item.ID] = item
	return nil
}

func (m *memCatalog) ListMenuItems(_ context.Context, tenantID string) ([]masterdata.MenuItem, error) {
	var out []masterdata.MenuItem
	for _, item := range m.items {
		if item.TenantID == tenantID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memCatalog) MenuItemsByIDs(_ context.Context, tenantID string, ids []string, isAddon bool) ([]masterdata.MenuItem, error) {
	var out []masterdata.MenuItem
	for _, id := range ids {
		item, ok := m.items[id]
		if ok && item.TenantID == tenantID && item.IsAddon == isAddon {
			out = append(out, item)
		}
	}
	return out, nil
}

func (m *memCatalog) CreateCustomer(_ context.Context, _ masterdata.Customer) error { return nil }

func (m *memCatalog) GetCustomer(_ context.Context, _, _ string) (masterdata.Customer, error) {
	return masterdata.Customer{}, masterdata.ErrNotFound
}

func (m *memCatalog) ListCustomers(_ context.Context, _ string) ([]masterdata.Customer, error) {
	return nil, nil
}

const testTenant = "tenant-1"

func testContext() context.Context {
	ctx := shared.ContextWithTenant(context.Background(), testTenant)
	return shared.ContextWithActor(ctx, "user-1")
}

func newTestService(t *testing.T) (*Service, *memRepo, *memCatalog) {
	t.Helper()
	repo := newMemRepo()
	catalog := newMemCatalog()
	svc := NewService(repo, masterdata.NewService(catalog), nil, nil)
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, catalog.CreateHall(context.Background(), masterdata.Hall{
		ID: "hall-1", TenantID: testTenant, Name: "Grand Hall", Capacity: 500, IsActive: true,
	}))
	require.NoError(t, catalog.CreateMenuItem(context.Background(), masterdata.MenuItem{
		ID: "menu-1", TenantID: testTenant, Name: "Royal Thali", Price: 150,
		PricingType: pricing.PricingPerPlate, IsActive: true,
	}))
	require.NoError(t, catalog.CreateMenuItem(context.Background(), masterdata.MenuItem{
		ID: "addon-1", TenantID: testTenant, Name: "DJ Setup", Price: 5000,
		PricingType: pricing.PricingFixed, IsAddon: true, IsActive: true,
	}))
	return svc, repo, catalog
}

func baseCreateInput() CreateInput {
	return CreateInput{
		CustomerID: "cust-1",
		HallID:     "hall-1",
		EventType:  "wedding",
		EventDate:  "2026-06-15",
		Slot:       SlotDay,
		GuestCount: 100,
		MenuItems:  []string{"menu-1"},
		GSTOption:  pricing.GSTOn,
	}
}

func TestCreateBookingDerivesCharges(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := baseCreateInput()
	input.Addons = []string{"addon-1"}
	input.DiscountType = pricing.DiscountPercent
	input.DiscountValue = 10

	b, err := svc.CreateBooking(testContext(), input)
	require.NoError(t, err)

	require.True(t, strings.HasPrefix(b.Number, "MSB-20260301-"))
	require.InDelta(t, 15000.0, b.FoodCharge, 0.001)
	require.InDelta(t, 5000.0, b.AddonCharge, 0.001)
	require.InDelta(t, 20000.0, b.Subtotal, 0.001)
	require.InDelta(t, 2000.0, b.DiscountAmount, 0.001)
	require.InDelta(t, 900.0, b.GSTAmount, 0.001)
	require.InDelta(t, 18900.0, b.TotalAmount, 0.001)
	require.Equal(t, StatusConfirmed, b.Status)
	require.Equal(t, PaymentPending, b.PaymentStatus)
	require.InDelta(t, 18900.0, b.BalanceDue, 0.001)
	require.Equal(t, "10:00", b.StartTime)
	require.Equal(t, "17:00", b.EndTime)
}

func TestCreateBookingPaymentSplits(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := baseCreateInput()
	input.PaymentSplits = []PaymentSplit{
		{Method: "cash", Amount: 3000},
		{Method: "upi", Amount: 2000},
	}

	b, err := svc.CreateBooking(testContext(), input)
	require.NoError(t, err)
	require.InDelta(t, 5000.0, b.AdvancePaid, 0.001)
	require.InDelta(t, 3000.0, b.PaymentCash, 0.001)
	require.InDelta(t, 2000.0, b.PaymentUPI, 0.001)
	require.Equal(t, PaymentPartial, b.PaymentStatus)
	require.InDelta(t, b.TotalAmount-5000, b.BalanceDue, 0.001)
}

func TestCreateBookingLegacyAdvance(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := baseCreateInput()
	input.PaymentReceived = true
	input.AdvanceAmount = 15750
	input.PaymentMethod = "upi"

	b, err := svc.CreateBooking(testContext(), input)
	require.NoError(t, err)
	require.InDelta(t, 15750.0, b.AdvancePaid, 0.001)
	require.InDelta(t, 15750.0, b.PaymentUPI, 0.001)
	require.Equal(t, PaymentPaid, b.PaymentStatus)
	require.InDelta(t, 0.0, b.BalanceDue, 0.001)
}

func TestCreateBookingSlotConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	_, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, baseCreateInput())
	require.ErrorIs(t, err, ErrSlotConflict)

	// The other slot of the same day stays open.
	night := baseCreateInput()
	night.Slot = SlotNight
	b, err := svc.CreateBooking(ctx, night)
	require.NoError(t, err)
	require.Equal(t, "20:00", b.StartTime)
	require.Equal(t, "01:00", b.EndTime)
}

func TestCancelledBookingReleasesSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	first, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)

	_, err = svc.CancelBooking(ctx, first.ID)
	require.NoError(t, err)

	_, err = svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)
}

func TestDeletedBookingReleasesSlot(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	first, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)
	require.NoError(t, svc.DeleteBooking(ctx, first.ID))

	_, err = svc.GetBooking(ctx, first.ID)
	require.NoError(t, err) // soft delete keeps the row readable

	_, err = svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)
}

func TestCreateBookingUnknownHall(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := baseCreateInput()
	input.HallID = "no-such-hall"
	_, err := svc.CreateBooking(testContext(), input)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestRecordPaymentProgression(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	b, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)
	require.InDelta(t, 15750.0, b.TotalAmount, 0.001)

	_, b, err = svc.RecordPayment(ctx, RecordPaymentInput{BookingID: b.ID, Amount: 5000, Mode: ModeUPI})
	require.NoError(t, err)
	require.Equal(t, PaymentPartial, b.PaymentStatus)
	require.InDelta(t, 10750.0, b.BalanceDue, 0.001)
	require.InDelta(t, 5000.0, b.PaymentUPI, 0.001)

	// Overshooting the balance clamps it to zero and marks the booking paid.
	_, b, err = svc.RecordPayment(ctx, RecordPaymentInput{BookingID: b.ID, Amount: 12000})
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, b.PaymentStatus)
	require.InDelta(t, 0.0, b.BalanceDue, 0.001)
	require.InDelta(t, 12000.0, b.PaymentCash, 0.001)
	require.InDelta(t, 17000.0, b.AdvancePaid, 0.001)

	payments, err := svc.ListPayments(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	require.Equal(t, "2026-03-01", payments[0].PaymentDate)
}

func TestRecordPaymentZeroTotalBooking(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	input := baseCreateInput()
	input.MenuItems = nil
	b, err := svc.CreateBooking(ctx, input)
	require.NoError(t, err)
	require.InDelta(t, 0.0, b.TotalAmount, 0.001)
	require.Equal(t, PaymentPending, b.PaymentStatus)

	// A payment against a zero-total booking settles it outright: the
	// balance is already zero, so the status moves straight to paid.
	_, b, err = svc.RecordPayment(ctx, RecordPaymentInput{BookingID: b.ID, Amount: 500})
	require.NoError(t, err)
	require.InDelta(t, 0.0, b.BalanceDue, 0.001)
	require.Equal(t, PaymentPaid, b.PaymentStatus)
}

func TestRecordPaymentUnknownBooking(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, _, err := svc.RecordPayment(testContext(), RecordPaymentInput{BookingID: "missing", Amount: 100})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateBookingRecomputesCharges(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	input := baseCreateInput()
	input.PaymentSplits = []PaymentSplit{{Method: "cash", Amount: 15750}}
	b, err := svc.CreateBooking(ctx, input)
	require.NoError(t, err)
	require.Equal(t, PaymentPaid, b.PaymentStatus)

	// Doubling the guest count doubles the food charge and drops the paid
	// booking back to partial against the larger total.
	guests := 200
	b, err = svc.UpdateBooking(ctx, b.ID, UpdateInput{GuestCount: &guests})
	require.NoError(t, err)
	require.InDelta(t, 30000.0, b.FoodCharge, 0.001)
	require.InDelta(t, 31500.0, b.TotalAmount, 0.001)
	require.Equal(t, PaymentPartial, b.PaymentStatus)
	require.InDelta(t, 15750.0, b.BalanceDue, 0.001)
}

func TestUpdateBookingSlotMoveGuarded(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	first, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)

	night := baseCreateInput()
	night.Slot = SlotNight
	second, err := svc.CreateBooking(ctx, night)
	require.NoError(t, err)

	day := SlotDay
	_, err = svc.UpdateBooking(ctx, second.ID, UpdateInput{Slot: &day})
	require.ErrorIs(t, err, ErrSlotConflict)

	// Re-saving a booking on its own slot does not trip the guard.
	otherType := "reception"
	updated, err := svc.UpdateBooking(ctx, first.ID, UpdateInput{EventType: &otherType})
	require.NoError(t, err)
	require.Equal(t, "reception", updated.EventType)
}

func TestAvailability(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := testContext()

	_, err := svc.CreateBooking(ctx, baseCreateInput())
	require.NoError(t, err)

	slots, err := svc.Availability(ctx, "hall-1", "2026-06-15")
	require.NoError(t, err)
	require.Len(t, slots, 2)

	bySlot := map[SlotType]SlotAvailability{}
	for _, s := range slots {
		bySlot[s.Slot] = s
	}
	require.False(t, bySlot[SlotDay].Available)
	require.True(t, bySlot[SlotNight].Available)

	free, err := svc.Availability(ctx, "hall-1", "2026-06-16")
	require.NoError(t, err)
	for _, s := range free {
		require.True(t, s.Available)
	}
}

func TestTenantIsolation(t *testing.T) {
	svc, _, _ := newTestService(t)

	b, err := svc.CreateBooking(testContext(), baseCreateInput())
	require.NoError(t, err)

	otherCtx := shared.ContextWithTenant(context.Background(), "tenant-2")
	_, err = svc.GetBooking(otherCtx, b.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestValidationRejectsBadInput(t *testing.T) {
	svc, _, _ := newTestService(t)

	input := baseCreateInput()
	input.GuestCount = 0
	_, err := svc.CreateBooking(testContext(), input)
	require.Error(t, err)
	require.False(t, errors.Is(err, ErrNotFound))
}
