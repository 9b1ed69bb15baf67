package notify

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines notification data access.
type Repository interface {
	ListTemplates(ctx context.Context, tenantID string) ([]Template, error)
	UpsertTemplate(ctx context.Context, tenantID string, t Template) error
	CreateLog(ctx context.Context, l Log) error
	ListLogs(ctx context.Context, tenantID, bookingID string) ([]Log, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) ListTemplates(ctx context.Context, tenantID string) ([]Template, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, notification_type, channel, template, is_active
		FROM notification_templates WHERE tenant_id = $1 ORDER BY id`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Template
	for rows.Next() {
		var t Template
		if err := rows.Scan(&t.ID, &t.Kind, &t.Channel, &t.Template, &t.IsActive); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *pgRepository) UpsertTemplate(ctx context.Context, tenantID string, t Template) error {
	if t.ID == "" {
		return errors.New("notify: template id required")
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_templates (id, tenant_id, notification_type, channel, template, is_active)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id, tenant_id) DO UPDATE SET template = EXCLUDED.template, is_active = EXCLUDED.is_active`,
		t.ID, tenantID, t.Kind, t.Channel, t.Template, t.IsActive)
	return err
}

func (r *pgRepository) CreateLog(ctx context.Context, l Log) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO notification_logs (id, tenant_id, booking_id, notification_type, channel, recipient, message, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		l.ID, l.TenantID, l.BookingID, l.Kind, l.Channel, l.Recipient, l.Message, l.Status, l.CreatedAt)
	return err
}

func (r *pgRepository) ListLogs(ctx context.Context, tenantID, bookingID string) ([]Log, error) {
	query := `SELECT id, tenant_id, booking_id, notification_type, channel, recipient, message, status, created_at
		FROM notification_logs WHERE tenant_id = $1`
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

	var out []Log
	for rows.Next() {
		var l Log
		if err := rows.Scan(&l.ID, &l.TenantID, &l.BookingID, &l.Kind, &l.Channel, &l.Recipient, &l.Message, &l.Status, &l.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
