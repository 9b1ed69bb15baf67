// Package booking owns the reservation lifecycle: slot occupancy, charge
// derivation and the payment ledger attached to each booking.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/utsav-erp/utsav-erp/internal/masterdata"
	"github.com/utsav-erp/utsav-erp/internal/pricing"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

var (
	// ErrNotFound indicates a booking is absent or outside the tenant.
	ErrNotFound = errors.New("booking: not found")
	// ErrSlotConflict indicates the hall is already taken for the date and slot.
	ErrSlotConflict = errors.New("booking: hall already booked for this date and slot")
)

// Auditor records domain events; a nil auditor disables auditing.
type Auditor interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Invalidator drops cached aggregates after a booking write; a nil
// invalidator disables invalidation.
type Invalidator interface {
	Invalidate(ctx context.Context) error
}

// Service exposes booking operations.
type Service struct {
	repo    Repository
	catalog *masterdata.Service
	audit   Auditor
	cache   Invalidator
	now     func() time.Time
}

// NewService constructs a Service.
func NewService(repo Repository, catalog *masterdata.Service, audit Auditor, cache Invalidator) *Service {
	return &Service{repo: repo, catalog: catalog, audit: audit, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

// SlotAvailability reports whether one slot of a hall is free on a date.
type SlotAvailability struct {
	Slot      SlotType `json:"slot"`
	Available bool     `json:"available"`
	StartTime string   `json:"start_time"`
	EndTime   string   `json:"end_time"`
}

// CreateBooking validates the request, guards the slot, derives charges from
// the catalog and persists the booking with its initial payment state.
func (s *Service) CreateBooking(ctx context.Context, input CreateInput) (Booking, error) {
	if err := shared.Validate(input); err != nil {
		return Booking{}, err
	}
	tenantID := shared.TenantFromContext(ctx)

	slot := input.Slot
	if slot == "" {
		slot = SlotDay
	}

	if _, err := s.catalog.GetHall(ctx, input.HallID); err != nil {
		if errors.Is(err, masterdata.ErrNotFound) {
			return Booking{}, fmt.Errorf("hall %s: %w", input.HallID, ErrNotFound)
		}
		return Booking{}, err
	}

	if err := s.guardSlot(ctx, tenantID, input.HallID, input.EventDate, slot, ""); err != nil {
		return Booking{}, err
	}

	charges, err := s.computeCharges(ctx, input.MenuItems, input.Addons, input.GuestCount,
		input.DiscountType, input.DiscountValue, input.GSTOption, input.GSTCustomPct, input.PriceOverrides)
	if err != nil {
		return Booking{}, err
	}

	advance, cash, credit, upi := initialAdvance(input)
	paymentStatus, balance := derivePaymentState(advance, charges.TotalAmount)

	now := s.now()
	start, end := slot.Times()
	gstOption := input.GSTOption
	if gstOption == "" {
		gstOption = pricing.GSTOn
	}

	b := Booking{
		ID:              uuid.NewString(),
		Number:          NewNumber(now),
		TenantID:        tenantID,
		CustomerID:      input.CustomerID,
		HallID:          input.HallID,
		EventType:       input.EventType,
		EventDate:       input.EventDate,
		Slot:            slot,
		StartTime:       start,
		EndTime:         end,
		GuestCount:      input.GuestCount,
		MenuItems:       input.MenuItems,
		Addons:          input.Addons,
		SpecialRequests: input.SpecialRequests,
		PriceOverrides:  input.PriceOverrides,
		FoodCharge:      charges.FoodCharge,
		AddonCharge:     charges.AddonCharge,
		Subtotal:        charges.Subtotal,
		DiscountType:    input.DiscountType,
		DiscountValue:   input.DiscountValue,
		DiscountAmount:  charges.DiscountAmount,
		GSTOption:       gstOption,
		GSTCustomPct:    input.GSTCustomPct,
		GSTPercent:      charges.GSTPercent,
		GSTAmount:       charges.GSTAmount,
		TotalAmount:     charges.TotalAmount,
		AdvancePaid:     advance,
		BalanceDue:      balance,
		PaymentCash:     cash,
		PaymentCredit:   credit,
		PaymentUPI:      upi,
		PaymentStatus:   paymentStatus,
		Status:          StatusConfirmed,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.CreateBooking(ctx, b); err != nil {
		return Booking{}, err
	}
	s.recordAudit(ctx, "booking.created", b.ID, map[string]any{"booking_number": b.Number, "total_amount": b.TotalAmount})
	s.invalidate(ctx)
	return b, nil
}

// GetBooking fetches one booking.
func (s *Service) GetBooking(ctx context.Context, id string) (Booking, error) {
	return s.repo.GetBooking(ctx, shared.TenantFromContext(ctx), id)
}

// ListBookings lists the tenant's bookings with optional filters.
func (s *Service) ListBookings(ctx context.Context, req ListRequest) ([]Booking, error) {
	return s.repo.ListBookings(ctx, shared.TenantFromContext(ctx), req)
}

// UpdateBooking merges the supplied fields, re-guards the slot if it moved,
// recomputes charges when pricing inputs change and re-derives the payment
// state against the new total.
func (s *Service) UpdateBooking(ctx context.Context, id string, input UpdateInput) (Booking, error) {
	tenantID := shared.TenantFromContext(ctx)
	b, err := s.repo.GetBooking(ctx, tenantID, id)
	if err != nil {
		return Booking{}, err
	}

	slotMoved := false
	repriced := false

	if input.HallID != nil && *input.HallID != b.HallID {
		if _, err := s.catalog.GetHall(ctx, *input.HallID); err != nil {
			if errors.Is(err, masterdata.ErrNotFound) {
				return Booking{}, fmt.Errorf("hall %s: %w", *input.HallID, ErrNotFound)
			}
			return Booking{}, err
		}
		b.HallID = *input.HallID
		slotMoved = true
	}
	if input.EventDate != nil && *input.EventDate != b.EventDate {
		b.EventDate = *input.EventDate
		slotMoved = true
	}
	if input.Slot != nil && *input.Slot != b.Slot {
		if !input.Slot.Valid() {
			return Booking{}, fmt.Errorf("invalid slot %q", *input.Slot)
		}
		b.Slot = *input.Slot
		b.StartTime, b.EndTime = b.Slot.Times()
		slotMoved = true
	}
	if input.EventType != nil {
		b.EventType = *input.EventType
	}
	if input.GuestCount != nil {
		b.GuestCount = *input.GuestCount
		repriced = true
	}
	if input.MenuItems != nil {
		b.MenuItems = *input.MenuItems
		repriced = true
	}
	if input.Addons != nil {
		b.Addons = *input.Addons
		repriced = true
	}
	if input.SpecialRequests != nil {
		b.SpecialRequests = *input.SpecialRequests
	}
	if input.PriceOverrides != nil {
		b.PriceOverrides = *input.PriceOverrides
		repriced = true
	}
	if input.DiscountType != nil {
		b.DiscountType = *input.DiscountType
		repriced = true
	}
	if input.DiscountValue != nil {
		b.DiscountValue = *input.DiscountValue
		repriced = true
	}
	if input.GSTOption != nil {
		b.GSTOption = *input.GSTOption
		repriced = true
	}
	if input.GSTCustomPct != nil {
		b.GSTCustomPct = *input.GSTCustomPct
		repriced = true
	}
	if input.Status != nil {
		b.Status = *input.Status
	}

	if slotMoved && b.Status != StatusCancelled {
		if err := s.guardSlot(ctx, tenantID, b.HallID, b.EventDate, b.Slot, b.ID); err != nil {
			return Booking{}, err
		}
	}

	if repriced {
		charges, err := s.computeCharges(ctx, b.MenuItems, b.Addons, b.GuestCount,
			b.DiscountType, b.DiscountValue, b.GSTOption, b.GSTCustomPct, b.PriceOverrides)
		if err != nil {
			return Booking{}, err
		}
		b.FoodCharge = charges.FoodCharge
		b.AddonCharge = charges.AddonCharge
		b.Subtotal = charges.Subtotal
		b.DiscountAmount = charges.DiscountAmount
		b.GSTPercent = charges.GSTPercent
		b.GSTAmount = charges.GSTAmount
		b.TotalAmount = charges.TotalAmount
		// The advance already received stays put; only the status and
		// balance move with the new total.
		b.PaymentStatus, b.BalanceDue = derivePaymentState(b.AdvancePaid, b.TotalAmount)
	}

	b.UpdatedAt = s.now()
	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return Booking{}, err
	}
	s.recordAudit(ctx, "booking.updated", b.ID, map[string]any{"booking_number": b.Number})
	s.invalidate(ctx)
	return b, nil
}

// CancelBooking marks the booking cancelled, releasing its slot. Ledger
// figures are retained.
func (s *Service) CancelBooking(ctx context.Context, id string) (Booking, error) {
	tenantID := shared.TenantFromContext(ctx)
	b, err := s.repo.GetBooking(ctx, tenantID, id)
	if err != nil {
		return Booking{}, err
	}
	b.Status = StatusCancelled
	b.UpdatedAt = s.now()
	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return Booking{}, err
	}
	s.recordAudit(ctx, "booking.cancelled", b.ID, map[string]any{"booking_number": b.Number})
	s.invalidate(ctx)
	return b, nil
}

// DeleteBooking soft-deletes the booking. Deleted bookings release their slot
// and drop out of every listing.
func (s *Service) DeleteBooking(ctx context.Context, id string) error {
	tenantID := shared.TenantFromContext(ctx)
	b, err := s.repo.GetBooking(ctx, tenantID, id)
	if err != nil {
		return err
	}
	b.IsDeleted = true
	b.UpdatedAt = s.now()
	if err := s.repo.UpdateBooking(ctx, b); err != nil {
		return err
	}
	s.recordAudit(ctx, "booking.deleted", b.ID, map[string]any{"booking_number": b.Number})
	s.invalidate(ctx)
	return nil
}

// RecordPayment appends a payment record and folds it into the booking's
// running totals. A payment that overshoots the balance clamps it to zero and
// marks the booking paid.
func (s *Service) RecordPayment(ctx context.Context, input RecordPaymentInput) (Payment, Booking, error) {
	if err := shared.Validate(input); err != nil {
		return Payment{}, Booking{}, err
	}
	tenantID := shared.TenantFromContext(ctx)
	b, err := s.repo.GetBooking(ctx, tenantID, input.BookingID)
	if err != nil {
		return Payment{}, Booking{}, err
	}

	now := s.now()
	mode := input.Mode
	if mode == "" {
		mode = ModeCash
	}
	paymentDate := input.PaymentDate
	if paymentDate == "" {
		paymentDate = now.Format("2006-01-02")
	}

	p := Payment{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		BookingID:   b.ID,
		Amount:      input.Amount,
		Mode:        mode,
		Notes:       input.Notes,
		RecordedBy:  input.RecordedBy,
		PaymentDate: paymentDate,
		CreatedAt:   now,
	}

	b.AdvancePaid += input.Amount
	switch mode {
	case ModeCredit:
		b.PaymentCredit += input.Amount
	case ModeUPI:
		b.PaymentUPI += input.Amount
	default:
		b.PaymentCash += input.Amount
	}
	b.BalanceDue = b.TotalAmount - b.AdvancePaid
	if b.BalanceDue < 0 {
		b.BalanceDue = 0
	}
	switch {
	case b.BalanceDue == 0:
		b.PaymentStatus = PaymentPaid
	case b.AdvancePaid > 0:
		b.PaymentStatus = PaymentPartial
	default:
		b.PaymentStatus = PaymentPending
	}
	b.UpdatedAt = now
	if err := s.repo.RecordPayment(ctx, p, b); err != nil {
		return Payment{}, Booking{}, err
	}
	s.recordAudit(ctx, "payment.recorded", p.ID, map[string]any{"booking_id": b.ID, "amount": p.Amount, "mode": string(mode)})
	s.invalidate(ctx)
	return p, b, nil
}

// ListPayments lists payments, optionally scoped to one booking.
func (s *Service) ListPayments(ctx context.Context, bookingID string) ([]Payment, error) {
	return s.repo.ListPayments(ctx, shared.TenantFromContext(ctx), bookingID)
}

// Availability reports slot occupancy for a hall on a date.
func (s *Service) Availability(ctx context.Context, hallID, eventDate string) ([]SlotAvailability, error) {
	tenantID := shared.TenantFromContext(ctx)
	if _, err := s.catalog.GetHall(ctx, hallID); err != nil {
		if errors.Is(err, masterdata.ErrNotFound) {
			return nil, fmt.Errorf("hall %s: %w", hallID, ErrNotFound)
		}
		return nil, err
	}

	out := make([]SlotAvailability, 0, 2)
	for _, slot := range []SlotType{SlotDay, SlotNight} {
		_, err := s.repo.FindActiveBySlot(ctx, tenantID, hallID, eventDate, slot, "")
		taken := err == nil
		if err != nil && !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		start, end := slot.Times()
		out = append(out, SlotAvailability{Slot: slot, Available: !taken, StartTime: start, EndTime: end})
	}
	return out, nil
}

func (s *Service) guardSlot(ctx context.Context, tenantID, hallID, eventDate string, slot SlotType, excludeID string) error {
	_, err := s.repo.FindActiveBySlot(ctx, tenantID, hallID, eventDate, slot, excludeID)
	if err == nil {
		return ErrSlotConflict
	}
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

func (s *Service) computeCharges(ctx context.Context, menuIDs, addonIDs []string, guestCount int,
	discountType string, discountValue float64, gstOption string, gstCustomPct float64,
	overrides map[string]float64) (pricing.Charges, error) {

	menuItems, err := s.catalog.PricedItems(ctx, menuIDs, false)
	if err != nil {
		return pricing.Charges{}, err
	}
	addons, err := s.catalog.PricedItems(ctx, addonIDs, true)
	if err != nil {
		return pricing.Charges{}, err
	}
	if gstOption == "" {
		gstOption = pricing.GSTOn
	}
	return pricing.Compute(menuItems, addons, guestCount,
		pricing.Discount{Type: discountType, Value: discountValue},
		pricing.GST{Option: gstOption, CustomPercent: gstCustomPct},
		overrides), nil
}

// initialAdvance folds creation-time payment splits, falling back to the
// single legacy advance when no splits are supplied.
func initialAdvance(input CreateInput) (advance, cash, credit, upi float64) {
	if len(input.PaymentSplits) > 0 {
		for _, split := range input.PaymentSplits {
			advance += split.Amount
			switch PaymentMode(split.Method) {
			case ModeCredit:
				credit += split.Amount
			case ModeUPI:
				upi += split.Amount
			default:
				cash += split.Amount
			}
		}
		return advance, cash, credit, upi
	}
	if input.PaymentReceived && input.AdvanceAmount > 0 {
		advance = input.AdvanceAmount
		switch PaymentMode(input.PaymentMethod) {
		case ModeCredit:
			credit = advance
		case ModeUPI:
			upi = advance
		default:
			cash = advance
		}
	}
	return advance, cash, credit, upi
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx)
}

func (s *Service) recordAudit(ctx context.Context, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{
		TenantID: shared.TenantFromContext(ctx),
		ActorID:  shared.ActorFromContext(ctx),
		Action:   action,
		Entity:   "booking",
		EntityID: entityID,
		Meta:     meta,
		At:       s.now(),
	})
}
