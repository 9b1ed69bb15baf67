package masterdata

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utsav-erp/utsav-erp/internal/platform/httpx"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// Handler manages catalog endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/halls", func(r chi.Router) {
		r.Get("/", h.listHalls)
		r.Post("/", h.createHall)
		r.Get("/{id}", h.getHall)
	})
	r.Route("/menu", func(r chi.Router) {
		r.Get("/", h.listMenuItems)
		r.Post("/", h.createMenuItem)
	})
	r.Route("/customers", func(r chi.Router) {
		r.Get("/", h.listCustomers)
		r.Post("/", h.createCustomer)
		r.Get("/{id}", h.getCustomer)
	})
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, ErrNotFound) {
		httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
		return
	}
	h.logger.Error("masterdata request failed", slog.Any("error", err))
	httpx.RespondError(w, err)
}

func (h *Handler) listHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.service.ListHalls(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, halls)
}

func (h *Handler) createHall(w http.ResponseWriter, r *http.Request) {
	var input CreateHallInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := shared.Validate(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
		return
	}
	hall, err := h.service.CreateHall(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, hall)
}

func (h *Handler) getHall(w http.ResponseWriter, r *http.Request) {
	hall, err := h.service.GetHall(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, hall)
}

func (h *Handler) listMenuItems(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListMenuItems(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) createMenuItem(w http.ResponseWriter, r *http.Request) {
	var input CreateMenuItemInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := shared.Validate(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
		return
	}
	item, err := h.service.CreateMenuItem(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, item)
}

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.service.ListCustomers(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customers)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var input CreateCustomerInput
	if err := httpx.DecodeJSON(r, &input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	}
	if err := shared.Validate(input); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", shared.ValidationMessage(err))
		return
	}
	customer, err := h.service.CreateCustomer(r.Context(), input)
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, customer)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	customer, err := h.service.GetCustomer(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, customer)
}
