package dashboard

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines the aggregate queries behind the dashboard.
type Repository interface {
	CountBookingsSince(ctx context.Context, tenantID string, since time.Time) (int, error)
	CountUpcoming(ctx context.Context, tenantID, fromDate string) (int, error)
	// RevenueBetween sums advances received on non-cancelled bookings
	// created inside [from, to).
	RevenueBetween(ctx context.Context, tenantID string, from, to time.Time) (float64, error)
	CountPendingPayments(ctx context.Context, tenantID string) (int, error)
	RecentBookings(ctx context.Context, tenantID string, limit int) ([]RecentBooking, error)
	EventDistribution(ctx context.Context, tenantID string) ([]EventTypeCount, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) CountBookingsSince(ctx context.Context, tenantID string, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings
		WHERE tenant_id = $1 AND created_at >= $2 AND NOT is_deleted`, tenantID, since).Scan(&count)
	return count, err
}

func (r *pgRepository) CountUpcoming(ctx context.Context, tenantID, fromDate string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings
		WHERE tenant_id = $1 AND event_date >= $2
		AND status IN ('enquiry', 'confirmed') AND NOT is_deleted`, tenantID, fromDate).Scan(&count)
	return count, err
}

func (r *pgRepository) RevenueBetween(ctx context.Context, tenantID string, from, to time.Time) (float64, error) {
	var revenue float64
	err := r.pool.QueryRow(ctx, `SELECT COALESCE(SUM(advance_paid), 0) FROM bookings
		WHERE tenant_id = $1 AND created_at >= $2 AND created_at < $3
		AND status <> 'cancelled' AND NOT is_deleted`, tenantID, from, to).Scan(&revenue)
	return revenue, err
}

func (r *pgRepository) CountPendingPayments(ctx context.Context, tenantID string) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM bookings
		WHERE tenant_id = $1 AND payment_status IN ('pending', 'partial')
		AND status <> 'cancelled' AND NOT is_deleted`, tenantID).Scan(&count)
	return count, err
}

func (r *pgRepository) RecentBookings(ctx context.Context, tenantID string, limit int) ([]RecentBooking, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT b.id, b.booking_number, COALESCE(c.name, 'Unknown'), COALESCE(h.name, 'Unknown'),
			b.event_type, b.event_date, b.slot, b.total_amount, b.payment_status, b.status
		FROM bookings b
		LEFT JOIN customers c ON c.id = b.customer_id AND c.tenant_id = b.tenant_id
		LEFT JOIN halls h ON h.id = b.hall_id AND h.tenant_id = b.tenant_id
		WHERE b.tenant_id = $1 AND b.status <> 'cancelled' AND NOT b.is_deleted
		ORDER BY b.created_at DESC LIMIT $2`, tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RecentBooking
	for rows.Next() {
		var rb RecentBooking
		if err := rows.Scan(&rb.ID, &rb.Number, &rb.CustomerName, &rb.HallName,
			&rb.EventType, &rb.EventDate, &rb.Slot, &rb.TotalAmount, &rb.PaymentStatus, &rb.Status); err != nil {
			return nil, err
		}
		out = append(out, rb)
	}
	return out, rows.Err()
}

func (r *pgRepository) EventDistribution(ctx context.Context, tenantID string) ([]EventTypeCount, error) {
	rows, err := r.pool.Query(ctx, `SELECT event_type, COUNT(*) FROM bookings
		WHERE tenant_id = $1 AND status <> 'cancelled' AND NOT is_deleted
		GROUP BY event_type ORDER BY COUNT(*) DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventTypeCount
	for rows.Next() {
		var e EventTypeCount
		if err := rows.Scan(&e.EventType, &e.Count); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
