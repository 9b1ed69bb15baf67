package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	jobmetrics "github.com/utsav-erp/utsav-erp/internal/jobs"
	"github.com/utsav-erp/utsav-erp/internal/notify"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Sender dispatches a notification for one booking.
type Sender interface {
	Send(ctx context.Context, input notify.SendInput) (notify.Log, error)
}

// BookingSource lists bookings for reminder sweeps.
type BookingSource interface {
	ListOutstanding(ctx context.Context) ([]booking.Booking, error)
	ListByEventDate(ctx context.Context, eventDate string) ([]booking.Booking, error)
}

// ReminderJob sweeps bookings and sends payment and event reminders. Sweeps
// span all tenants; each send runs under the booking's own tenant.
type ReminderJob struct {
	Bookings BookingSource
	Notify   Sender
	Logger   *slog.Logger
	Metrics  *jobmetrics.Metrics
	clock    func() time.Time
}

// NewReminderJob wires dependencies for the reminder handlers.
func NewReminderJob(bookings BookingSource, sender Sender, logger *slog.Logger, metrics *jobmetrics.Metrics) *ReminderJob {
	return &ReminderJob{
		Bookings: bookings,
		Notify:   sender,
		Logger:   logger,
		Metrics:  metrics,
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// HandlePaymentReminders processes TaskPaymentReminders tasks. A booking with
// a positive balance gets one payment reminder per sweep.
func (j *ReminderJob) HandlePaymentReminders(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("payment reminders: handler not configured")
	}
	var payload ReminderSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskPaymentReminders)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger(TaskPaymentReminders)
	logger.Info("starting payment reminder sweep")

	bookings, err := j.Bookings.ListOutstanding(ctx)
	if err != nil {
		resultErr = err
		logger.Error("list outstanding bookings", slog.Any("error", err))
		return resultErr
	}

	sent := j.sendAll(ctx, logger, bookings, notify.KindPaymentReminder)
	j.metrics().AddReminders(string(notify.KindPaymentReminder), sent)
	logger.Info("completed payment reminder sweep", slog.Int("candidates", len(bookings)), slog.Int("sent", sent))
	return resultErr
}

// HandleEventReminders processes TaskEventReminders tasks, targeting bookings
// whose event is the day after the sweep date.
func (j *ReminderJob) HandleEventReminders(ctx context.Context, t *asynq.Task) error {
	if j == nil {
		return errors.New("event reminders: handler not configured")
	}
	var payload ReminderSweepPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}

	tracker := j.metrics().Track(TaskEventReminders)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	asOf := j.now()
	if payload.AsOf != "" {
		parsed, err := time.Parse("2006-01-02", payload.AsOf)
		if err != nil {
			return asynq.SkipRetry
		}
		asOf = parsed
	}
	tomorrow := asOf.AddDate(0, 0, 1).Format("2006-01-02")

	logger := j.logger(TaskEventReminders).With(slog.String("event_date", tomorrow))
	logger.Info("starting event reminder sweep")

	bookings, err := j.Bookings.ListByEventDate(ctx, tomorrow)
	if err != nil {
		resultErr = err
		logger.Error("list bookings by event date", slog.Any("error", err))
		return resultErr
	}

	sent := j.sendAll(ctx, logger, bookings, notify.KindEventReminder)
	j.metrics().AddReminders(string(notify.KindEventReminder), sent)
	logger.Info("completed event reminder sweep", slog.Int("candidates", len(bookings)), slog.Int("sent", sent))
	return resultErr
}

// sendAll dispatches one notification per booking. A failed send is logged
// and skipped so one bad row cannot stall the whole sweep.
func (j *ReminderJob) sendAll(ctx context.Context, logger *slog.Logger, bookings []booking.Booking, kind notify.Kind) int {
	sent := 0
	for _, b := range bookings {
		tenantCtx := shared.ContextWithTenant(ctx, b.TenantID)
		if _, err := j.Notify.Send(tenantCtx, notify.SendInput{BookingID: b.ID, Kind: kind}); err != nil {
			logger.Warn("send reminder",
				slog.String("booking_id", b.ID),
				slog.String("tenant_id", b.TenantID),
				slog.Any("error", err))
			continue
		}
		sent++
	}
	return sent
}

func (j *ReminderJob) logger(job string) *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", job))
	}
	return slog.Default().With(slog.String("job", job))
}

func (j *ReminderJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}

func (j *ReminderJob) now() time.Time {
	if j.clock != nil {
		return j.clock()
	}
	return time.Now().UTC()
}
