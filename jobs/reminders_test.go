package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	jobmetrics "github.com/utsav-erp/utsav-erp/internal/jobs"
	"github.com/utsav-erp/utsav-erp/internal/notify"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

type stubBookings struct {
	outstanding []booking.Booking
	byDate      map[string][]booking.Booking
}

func (s *stubBookings) ListOutstanding(_ context.Context) ([]booking.Booking, error) {
	return s.outstanding, nil
}

func (s *stubBookings) ListByEventDate(_ context.Context, eventDate string) ([]booking.Booking, error) {
	return s.byDate[eventDate], nil
}

type sentReminder struct {
	tenantID  string
	bookingID string
	kind      notify.Kind
}

type stubSender struct {
	sent    []sentReminder
	failFor string
}

func (s *stubSender) Send(ctx context.Context, input notify.SendInput) (notify.Log, error) {
	if input.BookingID == s.failFor {
		return notify.Log{}, errors.New("gateway unavailable")
	}
	s.sent = append(s.sent, sentReminder{
		tenantID:  shared.TenantFromContext(ctx),
		bookingID: input.BookingID,
		kind:      input.Kind,
	})
	return notify.Log{ID: "log-" + input.BookingID}, nil
}

func newTestJob(bookings *stubBookings, sender *stubSender) *ReminderJob {
	job := NewReminderJob(bookings, sender, slog.New(slog.NewTextHandler(io.Discard, nil)), jobmetrics.NewMetrics(prometheus.NewRegistry()))
	job.clock = func() time.Time { return time.Date(2026, 6, 14, 8, 0, 0, 0, time.UTC) }
	return job
}

func TestHandlePaymentReminders(t *testing.T) {
	bookings := &stubBookings{outstanding: []booking.Booking{
		{ID: "bk-1", TenantID: "tenant-1", BalanceDue: 5000},
		{ID: "bk-2", TenantID: "tenant-2", BalanceDue: 12000},
	}}
	sender := &stubSender{}
	job := newTestJob(bookings, sender)

	task, err := NewPaymentRemindersTask(ReminderSweepPayload{})
	require.NoError(t, err)
	require.NoError(t, job.HandlePaymentReminders(context.Background(), task))

	require.Len(t, sender.sent, 2)
	require.Equal(t, sentReminder{tenantID: "tenant-1", bookingID: "bk-1", kind: notify.KindPaymentReminder}, sender.sent[0])
	require.Equal(t, "tenant-2", sender.sent[1].tenantID)
}

func TestHandlePaymentRemindersSkipsFailedSend(t *testing.T) {
	bookings := &stubBookings{outstanding: []booking.Booking{
		{ID: "bk-1", TenantID: "tenant-1", BalanceDue: 5000},
		{ID: "bk-2", TenantID: "tenant-1", BalanceDue: 8000},
	}}
	sender := &stubSender{failFor: "bk-1"}
	job := newTestJob(bookings, sender)

	task, err := NewPaymentRemindersTask(ReminderSweepPayload{})
	require.NoError(t, err)
	require.NoError(t, job.HandlePaymentReminders(context.Background(), task))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "bk-2", sender.sent[0].bookingID)
}

func TestHandleEventRemindersTargetsTomorrow(t *testing.T) {
	bookings := &stubBookings{byDate: map[string][]booking.Booking{
		"2026-06-15": {{ID: "bk-1", TenantID: "tenant-1", EventDate: "2026-06-15"}},
		"2026-06-16": {{ID: "bk-9", TenantID: "tenant-1", EventDate: "2026-06-16"}},
	}}
	sender := &stubSender{}
	job := newTestJob(bookings, sender)

	task, err := NewEventRemindersTask(ReminderSweepPayload{})
	require.NoError(t, err)
	require.NoError(t, job.HandleEventReminders(context.Background(), task))

	require.Len(t, sender.sent, 1)
	require.Equal(t, sentReminder{tenantID: "tenant-1", bookingID: "bk-1", kind: notify.KindEventReminder}, sender.sent[0])
}

func TestHandleEventRemindersHonoursAsOf(t *testing.T) {
	bookings := &stubBookings{byDate: map[string][]booking.Booking{
		"2026-06-16": {{ID: "bk-9", TenantID: "tenant-1", EventDate: "2026-06-16"}},
	}}
	sender := &stubSender{}
	job := newTestJob(bookings, sender)

	task, err := NewEventRemindersTask(ReminderSweepPayload{AsOf: "2026-06-15"})
	require.NoError(t, err)
	require.NoError(t, job.HandleEventReminders(context.Background(), task))

	require.Len(t, sender.sent, 1)
	require.Equal(t, "bk-9", sender.sent[0].bookingID)
}

func TestHandleEventRemindersRejectsBadPayload(t *testing.T) {
	job := newTestJob(&stubBookings{}, &stubSender{})

	err := job.HandleEventReminders(context.Background(), asynq.NewTask(TaskEventReminders, []byte("{not json")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}
