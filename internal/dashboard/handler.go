package dashboard

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utsav-erp/utsav-erp/internal/platform/httpx"
)

// Handler manages dashboard endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers dashboard routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Get("/stats", h.stats)
		r.Get("/revenue-chart", h.revenueChart)
		r.Get("/event-distribution", h.eventDistribution)
	})
}

func (h *Handler) stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.logger.Error("dashboard stats failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, stats)
}

func (h *Handler) revenueChart(w http.ResponseWriter, r *http.Request) {
	chart, err := h.service.RevenueChart(r.Context())
	if err != nil {
		h.logger.Error("dashboard revenue chart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, chart)
}

func (h *Handler) eventDistribution(w http.ResponseWriter, r *http.Request) {
	dist, err := h.service.EventDistribution(r.Context())
	if err != nil {
		h.logger.Error("dashboard event distribution failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, dist)
}
