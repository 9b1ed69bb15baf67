package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/hibiken/asynq"

	"github.com/utsav-erp/utsav-erp/internal/app"
	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/notify"
	"github.com/utsav-erp/utsav-erp/internal/platform/db"
	"github.com/utsav-erp/utsav-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	masterdataRepo := masterdata.NewRepository(pool)
	masterdataService := masterdata.NewService(masterdataRepo)

	bookingRepo := booking.NewRepository(pool)
	bookingService := booking.NewService(bookingRepo, masterdataService, nil, nil)

	notifyRepo := notify.NewRepository(pool)
	notifyService := notify.NewService(notifyRepo, bookingService, masterdataService)

	reminderJob := jobs.NewReminderJob(bookingRepo, notifyService, logger, nil)

	paymentTask, err := jobs.NewPaymentRemindersTask(jobs.ReminderSweepPayload{})
	if err != nil {
		logger.Error("build payment reminder task", slog.Any("error", err))
		os.Exit(1)
	}
	eventTask, err := jobs.NewEventRemindersTask(jobs.ReminderSweepPayload{})
	if err != nil {
		logger.Error("build event reminder task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Reminders: reminderJob,
		Cron: []jobs.CronRegistration{
			{Spec: cfg.PaymentReminderCron, Task: paymentTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.EventReminderCron, Task: eventTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
