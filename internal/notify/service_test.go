package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

type memRepo struct {
	templates map[string]Template
	logs      []Log
}

func newMemRepo() *memRepo {
	return &memRepo{templates: make(map[string]Template)}
}

func (m *memRepo) ListTemplates(_ context.Context, _ string) ([]Template, error) {
	var out []Template
	for _, t := range m.templates {
		out = append(out, t)
	}
	return out, nil
}

func (m *memRepo) UpsertTemplate(_ context.Context, _ string, t Template) error {
	m.templates[t.ID] = t
	return nil
}

func (m *memRepo) CreateLog(_ context.Context, l Log) error {
	m.logs = append(m.logs, l)
	return nil
}

func (m *memRepo) ListLogs(_ context.Context, tenantID, bookingID string) ([]Log, error) {
	var out []Log
	for _, l := range m.logs {
		if l.TenantID != tenantID {
			continue
		}
		if bookingID != "" && l.BookingID != bookingID {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

type stubBookings struct {
	bookings map[string]booking.Booking
}

func (s *stubBookings) GetBooking(_ context.Context, id string) (booking.Booking, error) {
	b, ok := s.bookings[id]
	if !ok {
		return booking.Booking{}, booking.ErrNotFound
	}
	return b, nil
}

type stubCatalog struct {
	customers map[string]masterdata.Customer
	halls     map[string]masterdata.Hall
}

func (s *stubCatalog) GetCustomer(_ context.Context, id string) (masterdata.Customer, error) {
	c, ok := s.customers[id]
	if !ok {
		return masterdata.Customer{}, masterdata.ErrNotFound
	}
	return c, nil
}

func (s *stubCatalog) GetHall(_ context.Context, id string) (masterdata.Hall, error) {
	h, ok := s.halls[id]
	if !ok {
		return masterdata.Hall{}, masterdata.ErrNotFound
	}
	return h, nil
}

func testContext() context.Context {
	ctx := shared.ContextWithTenant(context.Background(), "tenant-1")
	return shared.ContextWithActor(ctx, "user-1")
}

func fixtureBooking() booking.Booking {
	return booking.Booking{
		ID:          "bk-1",
		Number:      "MSB-20260615-AAAAAA",
		CustomerID:  "cust-1",
		HallID:      "hall-1",
		EventType:   "wedding",
		EventDate:   "2026-06-15",
		TotalAmount: 157500,
		AdvancePaid: 50000,
		BalanceDue:  107500,
	}
}

func newTestService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	bookings := &stubBookings{bookings: map[string]booking.Booking{"bk-1": fixtureBooking()}}
	catalog := &stubCatalog{
		customers: map[string]masterdata.Customer{"cust-1": {ID: "cust-1", Name: "Anita Sharma", Phone: "+919876543210"}},
		halls:     map[string]masterdata.Hall{"hall-1": {ID: "hall-1", Name: "Grand Pavilion"}},
	}
	svc := NewService(repo, bookings, catalog)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc, repo
}

func TestRenderBookingConfirmation(t *testing.T) {
	msg := Render(KindBookingConfirmation, fixtureBooking(), "Anita Sharma", "Grand Pavilion")
	require.Equal(t,
		"[BOOKING_CONFIRMATION] Dear Anita Sharma, your booking #MSB-20260615-AAAAAA for wedding on 2026-06-15 at Grand Pavilion is confirmed! Total: ₹157,500",
		msg)
}

func TestRenderPaymentReminderGroupsRupees(t *testing.T) {
	msg := Render(KindPaymentReminder, fixtureBooking(), "Anita Sharma", "Grand Pavilion")
	require.Equal(t,
		"[PAYMENT_REMINDER] Dear Anita Sharma, reminder: ₹107,500 is pending for your event on 2026-06-15.",
		msg)
}

func TestRenderEventReminder(t *testing.T) {
	msg := Render(KindEventReminder, fixtureBooking(), "Anita Sharma", "Grand Pavilion")
	require.Equal(t,
		"[EVENT_REMINDER] Dear Anita Sharma, your wedding at Grand Pavilion is tomorrow! We look forward to hosting you.",
		msg)
}

func TestRenderFallsBackWhenCatalogRowsMissing(t *testing.T) {
	msg := Render(KindEventReminder, fixtureBooking(), "", "")
	require.Equal(t,
		"[EVENT_REMINDER] Dear Customer, your wedding at venue is tomorrow! We look forward to hosting you.",
		msg)
}

func TestSendRecordsLog(t *testing.T) {
	svc, repo := newTestService(t)
	ctx := testContext()

	l, err := svc.Send(ctx, SendInput{BookingID: "bk-1", Kind: KindPaymentReminder})
	require.NoError(t, err)
	require.Equal(t, "whatsapp", l.Channel)
	require.Equal(t, "sent", l.Status)
	require.Equal(t, "+919876543210", l.Recipient)
	require.Contains(t, l.Message, "₹107,500")
	require.Equal(t, time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC), l.CreatedAt)

	require.Len(t, repo.logs, 1)
	require.Equal(t, "tenant-1", repo.logs[0].TenantID)
	require.Equal(t, "bk-1", repo.logs[0].BookingID)
}

func TestSendUnknownBooking(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(testContext(), SendInput{BookingID: "missing", Kind: KindEventReminder})
	require.ErrorIs(t, err, ErrNotFound)
}

func TestSendRejectsUnknownKind(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Send(testContext(), SendInput{BookingID: "bk-1", Kind: Kind("carrier_pigeon")})
	require.Error(t, err)
}

func TestTemplatesFallBackToDefaults(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext()

	templates, err := svc.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 3)
	require.Equal(t, KindBookingConfirmation, templates[0].Kind)
	require.Equal(t, "whatsapp", templates[0].Channel)

	custom := Template{ID: "t2", Kind: KindPaymentReminder, Channel: "whatsapp", Template: "Pay up: ₹{balance_due}", IsActive: true}
	require.NoError(t, svc.UpdateTemplate(ctx, custom))

	templates, err = svc.Templates(ctx)
	require.NoError(t, err)
	require.Len(t, templates, 1)
	require.Equal(t, "Pay up: ₹{balance_due}", templates[0].Template)
}

func TestLogsScopedToBooking(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := testContext()

	_, err := svc.Send(ctx, SendInput{BookingID: "bk-1", Kind: KindBookingConfirmation})
	require.NoError(t, err)
	_, err = svc.Send(ctx, SendInput{BookingID: "bk-1", Kind: KindEventReminder})
	require.NoError(t, err)

	logs, err := svc.Logs(ctx, "bk-1")
	require.NoError(t, err)
	require.Len(t, logs, 2)

	logs, err = svc.Logs(ctx, "other")
	require.NoError(t, err)
	require.Empty(t, logs)
}
