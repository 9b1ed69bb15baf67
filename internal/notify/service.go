package notify

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/utsav-erp/utsav-erp/internal/booking"
	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// ErrNotFound indicates the booking behind a notification is absent.
var ErrNotFound = errors.New("notify: not found")

// BookingReader resolves bookings for message assembly.
type BookingReader interface {
	GetBooking(ctx context.Context, id string) (booking.Booking, error)
}

// CatalogReader resolves customer and hall names for message assembly.
type CatalogReader interface {
	GetCustomer(ctx context.Context, id string) (masterdata.Customer, error)
	GetHall(ctx context.Context, id string) (masterdata.Hall, error)
}

// Service renders, logs and lists notifications.
type Service struct {
	repo     Repository
	bookings BookingReader
	catalog  CatalogReader
	now      func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, bookings BookingReader, catalog CatalogReader) *Service {
	return &Service{repo: repo, bookings: bookings, catalog: catalog, now: func() time.Time { return time.Now().UTC() }}
}

// Templates returns the tenant's templates, falling back to the defaults
// when none have been customised.
func (s *Service) Templates(ctx context.Context) ([]Template, error) {
	templates, err := s.repo.ListTemplates(ctx, shared.TenantFromContext(ctx))
	if err != nil {
		return nil, err
	}
	if len(templates) == 0 {
		return defaultTemplates(), nil
	}
	return templates, nil
}

// UpdateTemplate stores a customised template body for the tenant.
func (s *Service) UpdateTemplate(ctx context.Context, t Template) error {
	return s.repo.UpsertTemplate(ctx, shared.TenantFromContext(ctx), t)
}

// Send assembles the message for a booking and records it in the send log.
// Delivery is the gateway's problem; the log row is the source of truth for
// what was said to whom.
func (s *Service) Send(ctx context.Context, input SendInput) (Log, error) {
	if err := shared.Validate(input); err != nil {
		return Log{}, err
	}

	b, err := s.bookings.GetBooking(ctx, input.BookingID)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			return Log{}, fmt.Errorf("booking %s: %w", input.BookingID, ErrNotFound)
		}
		return Log{}, err
	}

	var customerName, recipient string
	if c, err := s.catalog.GetCustomer(ctx, b.CustomerID); err == nil {
		customerName = c.Name
		recipient = c.Phone
	}
	var hallName string
	if h, err := s.catalog.GetHall(ctx, b.HallID); err == nil {
		hallName = h.Name
	}

	l := Log{
		ID:        uuid.NewString(),
		TenantID:  shared.TenantFromContext(ctx),
		BookingID: b.ID,
		Kind:      input.Kind,
		Channel:   "whatsapp",
		Recipient: recipient,
		Message:   Render(input.Kind, b, customerName, hallName),
		Status:    "sent",
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateLog(ctx, l); err != nil {
		return Log{}, err
	}
	return l, nil
}

// Logs lists sent notifications, optionally scoped to one booking.
func (s *Service) Logs(ctx context.Context, bookingID string) ([]Log, error) {
	return s.repo.ListLogs(ctx, shared.TenantFromContext(ctx), bookingID)
}
