package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/dashboard"
	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/notify"
	"github.com/utsav-erp/utsav-erp/internal/observability"
	"github.com/utsav-erp/utsav-erp/internal/partyplan"
	"github.com/utsav-erp/utsav-erp/internal/vendor"
	"github.com/utsav-erp/utsav-erp/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger            *slog.Logger
	Config            *Config
	MasterDataHandler *masterdata.Handler
	BookingHandler    *booking.Handler
	VendorHandler     *vendor.Handler
	PartyPlanHandler  *partyplan.Handler
	DashboardHandler  *dashboard.Handler
	NotifyHandler     *notify.Handler
	JobHandler        *jobs.Handler
	Metrics           *observability.Metrics
}

// NewRouter constructs the chi.Router with application defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.MasterDataHandler != nil {
		params.MasterDataHandler.MountRoutes(r)
	}
	if params.BookingHandler != nil {
		params.BookingHandler.MountRoutes(r)
	}
	if params.VendorHandler != nil {
		params.VendorHandler.MountRoutes(r)
	}
	if params.PartyPlanHandler != nil {
		params.PartyPlanHandler.MountRoutes(r)
	}
	if params.DashboardHandler != nil {
		params.DashboardHandler.MountRoutes(r)
	}
	if params.NotifyHandler != nil {
		params.NotifyHandler.MountRoutes(r)
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
