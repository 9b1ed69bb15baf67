package booking

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/go-playground/validator/v10"

	"github.com/utsav-erp/utsav-erp/internal/platform/httpx"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// Handler manages booking and payment endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers booking routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/bookings", func(r chi.Router) {
		r.Get("/", h.list)
		r.Post("/", h.create)
		r.Get("/{id}", h.get)
		r.Put("/{id}", h.update)
		r.Post("/{id}/cancel", h.cancel)
		r.Delete("/{id}", h.remove)
	})
	r.Route("/payments", func(r chi.Router) {
		r.Get("/", h.listPayments)
		r.Post("/", h.recordPayment)
	})
	r.Get("/halls/{id}/availability", h.availability)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	case errors.Is(err, ErrSlotConflict):
		httpx.Problem(w, http.StatusConflict, "Slot Conflict", err.Error())
	default:
		h.logger.Error("booking request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var input CreateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	b, err := h.service.CreateBooking(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, b)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListRequest{
		Status: Status(r.URL.Query().Get("status")),
		HallID: r.URL.Query().Get("hall_id"),
	}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "limit must be an integer")
			return
		}
		req.Limit = limit
	}
	bookings, err := h.service.ListBookings(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, bookings)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.GetBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var input UpdateInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	b, err := h.service.UpdateBooking(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	b, err := h.service.CancelBooking(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, b)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteBooking(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "booking deleted"})
}

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var input RecordPaymentInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	payment, b, err := h.service.RecordPayment(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"payment": payment, "booking": b})
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.ListPayments(r.Context(), r.URL.Query().Get("booking_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, payments)
}

func (h *Handler) availability(w http.ResponseWriter, r *http.Request) {
	date := r.URL.Query().Get("date")
	if date == "" {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "date query parameter is required")
		return
	}
	slots, err := h.service.Availability(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"date": date, "slots": slots})
}
