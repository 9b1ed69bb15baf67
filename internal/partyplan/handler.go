package partyplan

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/utsav-erp/utsav-erp/internal/platform/httpx"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// Handler manages party-planning endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers party-plan routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/party-plans", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/by-booking/{bookingID}", h.byBooking)
		r.Get("/suggest-staff/{bookingID}", h.suggestStaff)
		r.Get("/{bookingID}", h.get)
		r.Put("/{bookingID}", h.update)
		r.Post("/{bookingID}/acknowledge-changes", h.acknowledge)
		r.Post("/{bookingID}/generate-timeline", h.generateTimeline)
		r.Put("/{bookingID}/timeline/{taskID}", h.updateTask)
		r.Get("/{bookingID}/profit-snapshot", h.profit)
	})
	r.Route("/party-expenses", func(r chi.Router) {
		r.Get("/", h.listExpenses)
		r.Post("/", h.createExpense)
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrTaskNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrPlanExists), errors.Is(err, ErrBookingCancelled):
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		h.logger.Error("party plan request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	plans, err := h.service.ListPlans(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plans)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreatePlanInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	plan, err := h.service.CreatePlan(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, plan)
}

func (h *Handler) byBooking(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.PlanForBooking(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, view)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	plan, err := h.service.GetPlan(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plan)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input PlanInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	plan, err := h.service.UpdatePlan(r.Context(), chi.URLParam(r, "bookingID"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, plan)
}

func (h *Handler) acknowledge(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.AcknowledgeChanges(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "changes acknowledged", "new_snapshot": snapshot})
}

func (h *Handler) suggestStaff(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.service.SuggestStaffFor(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suggestions": suggestions})
}

func (h *Handler) generateTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := h.service.GenerateTimeline(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"timeline": timeline})
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var input UpdateTaskInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	score, err := h.service.UpdateTimelineTask(r.Context(), chi.URLParam(r, "bookingID"), chi.URLParam(r, "taskID"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"message": "task updated", "readiness_score": score})
}

func (h *Handler) profit(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.service.Profit(r.Context(), chi.URLParam(r, "bookingID"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, snapshot)
}

func (h *Handler) createExpense(w http.ResponseWriter, r *http.Request) {
	var input CreateExpenseInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	expense, err := h.service.CreateExpense(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, expense)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	bookingID := r.URL.Query().Get("booking_id")
	if bookingID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "booking_id query parameter is required")
		return
	}
	expenses, err := h.service.ListExpenses(r.Context(), bookingID)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, expenses)
}
