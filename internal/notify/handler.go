package notify

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/utsav-erp/utsav-erp/internal/platform/httpx"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// Handler manages notification endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers notification routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/notifications", func(r chi.Router) {
		r.Get("/templates", h.templates)
		r.Put("/templates/{id}", h.updateTemplate)
		r.Post("/send", h.send)
		r.Get("/logs", h.logs)
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	var vErrs validator.ValidationErrors
	switch {
	case errors.As(err, &vErrs):
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
	case errors.Is(err, ErrNotFound):
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
	default:
		h.logger.Error("notification request failed", slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}

func (h *Handler) templates(w http.ResponseWriter, r *http.Request) {
	templates, err := h.service.Templates(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, templates)
}

func (h *Handler) updateTemplate(w http.ResponseWriter, r *http.Request) {
	var t Template
	if err := httpx.DecodeJSON(r, &t); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	t.ID = chi.URLParam(r, "id")
	if err := h.service.UpdateTemplate(r.Context(), t); err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"message": "template updated"})
}

func (h *Handler) send(w http.ResponseWriter, r *http.Request) {
	var input SendInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	l, err := h.service.Send(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"message": "notification sent", "log_id": l.ID})
}

func (h *Handler) logs(w http.ResponseWriter, r *http.Request) {
	logs, err := h.service.Logs(r.Context(), r.URL.Query().Get("booking_id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, logs)
}
