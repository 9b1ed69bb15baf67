package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/utsav-erp/utsav-erp/internal/app"
	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/dashboard"
	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/notify"
	"github.com/utsav-erp/utsav-erp/internal/observability"
	"github.com/utsav-erp/utsav-erp/internal/partyplan"
	"github.com/utsav-erp/utsav-erp/internal/platform/cache"
	"github.com/utsav-erp/utsav-erp/internal/platform/db"
	"github.com/utsav-erp/utsav-erp/internal/shared"
	"github.com/utsav-erp/utsav-erp/internal/vendor"
	"github.com/utsav-erp/utsav-erp/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
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

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	auditLogger := shared.NewAuditLogger(dbpool)

	masterdataRepo := masterdata.NewRepository(dbpool)
	masterdataService := masterdata.NewService(masterdataRepo)
	masterdataHandler := masterdata.NewHandler(logger, masterdataService)

	dashboardRepo := dashboard.NewRepository(dbpool)
	dashboardCache := dashboard.NewCache(redisClient, cfg.DashboardCacheTTL)
	dashboardService := dashboard.NewService(dashboardRepo, dashboardCache)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

	bookingRepo := booking.NewRepository(dbpool)
	bookingService := booking.NewService(bookingRepo, masterdataService, auditLogger, dashboardService)
	bookingHandler := booking.NewHandler(logger, bookingService)

	vendorRepo := vendor.NewRepository(dbpool)
	vendorService := vendor.NewService(vendorRepo, bookingService)
	vendorHandler := vendor.NewHandler(logger, vendorService)

	partyplanRepo := partyplan.NewRepository(dbpool)
	partyplanService := partyplan.NewService(partyplanRepo, bookingService)
	partyplanHandler := partyplan.NewHandler(logger, partyplanService)

	notifyRepo := notify.NewRepository(dbpool)
	notifyService := notify.NewService(notifyRepo, bookingService, masterdataService)
	notifyHandler := notify.NewHandler(logger, notifyService)

	metrics := observability.NewMetrics()

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:            logger,
		Config:            cfg,
		MasterDataHandler: masterdataHandler,
		BookingHandler:    bookingHandler,
		VendorHandler:     vendorHandler,
		PartyPlanHandler:  partyplanHandler,
		DashboardHandler:  dashboardHandler,
		NotifyHandler:     notifyHandler,
		JobHandler:        jobHandler,
		Metrics:           metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
