package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskPaymentReminders sweeps bookings with an outstanding balance and
	// sends each customer a payment reminder.
	TaskPaymentReminders = "notify:payment_reminders"
	// TaskEventReminders notifies customers whose event is tomorrow.
	TaskEventReminders = "notify:event_reminders"
)

// ReminderSweepPayload scopes a reminder sweep. AsOf overrides the sweep date
// (YYYY-MM-DD) and defaults to today when empty.
type ReminderSweepPayload struct {
	AsOf string `json:"as_of,omitempty"`
}

// NewPaymentRemindersTask constructs a payment-reminder sweep task.
func NewPaymentRemindersTask(payload ReminderSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPaymentReminders, data), nil
}

// NewEventRemindersTask constructs an event-reminder sweep task.
func NewEventRemindersTask(payload ReminderSweepPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskEventReminders, data), nil
}
