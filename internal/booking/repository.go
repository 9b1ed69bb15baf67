package booking

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/utsav-erp/utsav-erp/internal/platform/db"
)

// Repository defines booking data access.
type Repository interface {
	CreateBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, tenantID, id string) (Booking, error)
	ListBookings(ctx context.Context, tenantID string, req ListRequest) ([]Booking, error)
	UpdateBooking(ctx context.Context, b Booking) error
	// FindActiveBySlot returns the non-cancelled, non-deleted booking
	// occupying (hall, date, slot), excluding excludeID when non-empty.
	FindActiveBySlot(ctx context.Context, tenantID, hallID, eventDate string, slot SlotType, excludeID string) (Booking, error)

	// RecordPayment inserts the payment and persists the booking's updated
	// running totals in one transaction.
	RecordPayment(ctx context.Context, p Payment, b Booking) error
	ListPayments(ctx context.Context, tenantID, bookingID string) ([]Payment, error)
	// ListOutstanding returns bookings with a positive balance across all
	// tenants, for the reminder worker.
	ListOutstanding(ctx context.Context) ([]Booking, error)
	// ListByEventDate returns active bookings on the given date across all
	// tenants, for the event-reminder worker.
	ListByEventDate(ctx context.Context, eventDate string) ([]Booking, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const bookingColumns = `id, booking_number, tenant_id, customer_id, hall_id, event_type, event_date, slot,
	start_time, end_time, guest_count, menu_items, addons, special_requests, price_overrides,
	food_charge, addon_charge, subtotal, discount_type, discount_value, discount_amount,
	gst_option, gst_custom_percent, gst_percent, gst_amount, total_amount,
	advance_paid, balance_due, payment_cash, payment_credit, payment_upi, payment_status,
	status, is_deleted, created_at, updated_at`

func (r *pgRepository) CreateBooking(ctx context.Context, b Booking) error {
	menuJSON, _ := json.Marshal(b.MenuItems)
	addonJSON, _ := json.Marshal(b.Addons)
	overrideJSON, _ := json.Marshal(b.PriceOverrides)

	_, err := r.pool.Exec(ctx, `
		INSERT INTO bookings (`+bookingColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
			$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26,
			$27, $28, $29, $30, $31, $32, $33, $34, $35, $36)`,
		b.ID, b.Number, b.TenantID, b.CustomerID, b.HallID, b.EventType, b.EventDate, b.Slot,
		b.StartTime, b.EndTime, b.GuestCount, menuJSON, addonJSON, b.SpecialRequests, overrideJSON,
		b.FoodCharge, b.AddonCharge, b.Subtotal, b.DiscountType, b.DiscountValue, b.DiscountAmount,
		b.GSTOption, b.GSTCustomPct, b.GSTPercent, b.GSTAmount, b.TotalAmount,
		b.AdvancePaid, b.BalanceDue, b.PaymentCash, b.PaymentCredit, b.PaymentUPI, b.PaymentStatus,
		b.Status, b.IsDeleted, b.CreatedAt, b.UpdatedAt)
	if isUniqueViolation(err) {
		// The partial unique index on (tenant, hall, date, slot) closes the
		// check-then-act window between conflict lookup and insert.
		return ErrSlotConflict
	}
	return err
}

func (r *pgRepository) GetBooking(ctx context.Context, tenantID, id string) (Booking, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1 AND tenant_id = $2`, id, tenantID)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

func (r *pgRepository) ListBookings(ctx context.Context, tenantID string, req ListRequest) ([]Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE tenant_id = $1 AND NOT is_deleted`
	args := []any{tenantID}
	if req.Status != "" {
		args = append(args, req.Status)
		query += fmt.Sprintf(" AND status = $%d", len(args))
	}
	if req.HallID != "" {
		args = append(args, req.HallID)
		query += fmt.Sprintf(" AND hall_id = $%d", len(args))
	}
	query += " ORDER BY event_date DESC"
	limit := req.Limit
	if limit <= 0 {
		limit = 1000
	}
	args = append(args, limit)
	query += fmt.Sprintf(" LIMIT $%d", len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *pgRepository) UpdateBooking(ctx context.Context, b Booking) error {
	menuJSON, _ := json.Marshal(b.MenuItems)
	addonJSON, _ := json.Marshal(b.Addons)
	overrideJSON, _ := json.Marshal(b.PriceOverrides)

	tag, err := r.pool.Exec(ctx, `
		UPDATE bookings SET
			customer_id = $3, hall_id = $4, event_type = $5, event_date = $6, slot = $7,
			start_time = $8, end_time = $9, guest_count = $10, menu_items = $11, addons = $12,
			special_requests = $13, price_overrides = $14,
			food_charge = $15, addon_charge = $16, subtotal = $17,
			discount_type = $18, discount_value = $19, discount_amount = $20,
			gst_option = $21, gst_custom_percent = $22, gst_percent = $23, gst_amount = $24, total_amount = $25,
			advance_paid = $26, balance_due = $27, payment_cash = $28, payment_credit = $29, payment_upi = $30,
			payment_status = $31, status = $32, is_deleted = $33, updated_at = $34
		WHERE id = $1 AND tenant_id = $2`,
		b.ID, b.TenantID, b.CustomerID, b.HallID, b.EventType, b.EventDate, b.Slot,
		b.StartTime, b.EndTime, b.GuestCount, menuJSON, addonJSON,
		b.SpecialRequests, overrideJSON,
		b.FoodCharge, b.AddonCharge, b.Subtotal,
		b.DiscountType, b.DiscountValue, b.DiscountAmount,
		b.GSTOption, b.GSTCustomPct, b.GSTPercent, b.GSTAmount, b.TotalAmount,
		b.AdvancePaid, b.BalanceDue, b.PaymentCash, b.PaymentCredit, b.PaymentUPI,
		b.PaymentStatus, b.Status, b.IsDeleted, b.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrSlotConflict
	}
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) FindActiveBySlot(ctx context.Context, tenantID, hallID, eventDate string, slot SlotType, excludeID string) (Booking, error) {
	query := `SELECT ` + bookingColumns + ` FROM bookings
		WHERE tenant_id = $1 AND hall_id = $2 AND event_date = $3 AND slot = $4
		AND status <> 'cancelled' AND NOT is_deleted`
	args := []any{tenantID, hallID, eventDate, slot}
	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	query += " LIMIT 1"

	row := r.pool.QueryRow(ctx, query, args...)
	b, err := scanBooking(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

func (r *pgRepository) RecordPayment(ctx context.Context, p Payment, b Booking) error {
	return db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO payments (id, tenant_id, booking_id, amount, payment_mode, notes, recorded_by, payment_date, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			p.ID, p.TenantID, p.BookingID, p.Amount, p.Mode, p.Notes, p.RecordedBy, p.PaymentDate, p.CreatedAt); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `
			UPDATE bookings SET
				advance_paid = $3, balance_due = $4, payment_cash = $5, payment_credit = $6,
				payment_upi = $7, payment_status = $8, updated_at = $9
			WHERE id = $1 AND tenant_id = $2`,
			b.ID, b.TenantID, b.AdvancePaid, b.BalanceDue, b.PaymentCash, b.PaymentCredit,
			b.PaymentUPI, b.PaymentStatus, b.UpdatedAt)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	})
}

func (r *pgRepository) ListPayments(ctx context.Context, tenantID, bookingID string) ([]Payment, error) {
	query := `SELECT id, tenant_id, booking_id, amount, payment_mode, notes, recorded_by, payment_date, created_at
		FROM payments WHERE tenant_id = $1`
	args := []any{tenantID}
	if bookingID != "" {
		args = append(args, bookingID)
		query += fmt.Sprintf(" AND booking_id = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Payment
	for rows.Next() {
		var p Payment
		if err := rows.Scan(&p.ID, &p.TenantID, &p.BookingID, &p.Amount, &p.Mode, &p.Notes, &p.RecordedBy, &p.PaymentDate, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListOutstanding(ctx context.Context) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE balance_due > 0 AND status IN ('enquiry', 'confirmed') AND NOT is_deleted
		ORDER BY event_date ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *pgRepository) ListByEventDate(ctx context.Context, eventDate string) ([]Booking, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
		WHERE event_date = $1 AND status IN ('enquiry', 'confirmed') AND NOT is_deleted
		ORDER BY tenant_id, start_time`, eventDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b            Booking
		menuJSON     []byte
		addonJSON    []byte
		overrideJSON []byte
	)
	err := row.Scan(
		&b.ID, &b.Number, &b.TenantID, &b.CustomerID, &b.HallID, &b.EventType, &b.EventDate, &b.Slot,
		&b.StartTime, &b.EndTime, &b.GuestCount, &menuJSON, &addonJSON, &b.SpecialRequests, &overrideJSON,
		&b.FoodCharge, &b.AddonCharge, &b.Subtotal, &b.DiscountType, &b.DiscountValue, &b.DiscountAmount,
		&b.GSTOption, &b.GSTCustomPct, &b.GSTPercent, &b.GSTAmount, &b.TotalAmount,
		&b.AdvancePaid, &b.BalanceDue, &b.PaymentCash, &b.PaymentCredit, &b.PaymentUPI, &b.PaymentStatus,
		&b.Status, &b.IsDeleted, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return Booking{}, err
	}
	_ = json.Unmarshal(menuJSON, &b.MenuItems)
	_ = json.Unmarshal(addonJSON, &b.Addons)
	_ = json.Unmarshal(overrideJSON, &b.PriceOverrides)
	return b, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
