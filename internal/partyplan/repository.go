package partyplan

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines party-plan data access.
type Repository interface {
	CreatePlan(ctx context.Context, p Plan) error
	GetPlanByBooking(ctx context.Context, tenantID, bookingID string) (Plan, error)
	ListPlans(ctx context.Context, tenantID string) ([]Plan, error)
	UpdatePlan(ctx context.Context, p Plan) error

	CreateExpense(ctx context.Context, e Expense) error
	ListExpenses(ctx context.Context, tenantID, bookingID string) ([]Expense, error)
	// DeleteAutoStaffExpenses removes the auto-generated staff wage expense
	// so a plan update can re-create it from fresh figures.
	DeleteAutoStaffExpenses(ctx context.Context, tenantID, bookingID string) error
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

const planColumns = `id, tenant_id, booking_id, dj_vendor_id, decor_vendor_id, catering_vendor_id,
	custom_vendors, staff_assignments, total_staff_charges, timeline_tasks, inventory, setup_notes,
	menu_execution, documents, activity_log, readiness_score, readiness_breakdown,
	booking_snapshot, booking_changed, change_warnings, notes, created_at, updated_at`

func (r *pgRepository) CreatePlan(ctx context.Context, p Plan) error {
	cols := marshalPlan(p)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO party_plans (`+planColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23)`,
		p.ID, p.TenantID, p.BookingID, p.DJVendorID, p.DecorVendorID, p.CateringVendorID,
		cols.customVendors, cols.staff, p.TotalStaffCharges, cols.timeline, cols.inventory, p.SetupNotes,
		cols.menuExecution, cols.documents, cols.activityLog, p.ReadinessScore, cols.breakdown,
		cols.snapshot, p.BookingChanged, cols.warnings, p.Notes, p.CreatedAt, p.UpdatedAt)
	if isUniqueViolation(err) {
		// The UNIQUE (tenant_id, booking_id) constraint closes the
		// check-then-act window between the existence lookup and insert.
		return ErrPlanExists
	}
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func (r *pgRepository) GetPlanByBooking(ctx context.Context, tenantID, bookingID string) (Plan, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+planColumns+` FROM party_plans
		WHERE booking_id = $1 AND tenant_id = $2`, bookingID, tenantID)
	p, err := scanPlan(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Plan{}, ErrNotFound
	}
	return p, err
}

func (r *pgRepository) ListPlans(ctx context.Context, tenantID string) ([]Plan, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+planColumns+` FROM party_plans
		WHERE tenant_id = $1 ORDER BY created_at DESC`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Plan
	for rows.Next() {
		p, err := scanPlan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *pgRepository) UpdatePlan(ctx context.Context, p Plan) error {
	cols := marshalPlan(p)
	tag, err := r.pool.Exec(ctx, `
		UPDATE party_plans SET dj_vendor_id = $3, decor_vendor_id = $4, catering_vendor_id = $5,
			custom_vendors = $6, staff_assignments = $7, total_staff_charges = $8, timeline_tasks = $9,
			inventory = $10, setup_notes = $11, menu_execution = $12, documents = $13, activity_log = $14,
			readiness_score = $15, readiness_breakdown = $16, booking_snapshot = $17,
			booking_changed = $18, change_warnings = $19, notes = $20, updated_at = $21
		WHERE booking_id = $1 AND tenant_id = $2`,
		p.BookingID, p.TenantID, p.DJVendorID, p.DecorVendorID, p.CateringVendorID,
		cols.customVendors, cols.staff, p.TotalStaffCharges, cols.timeline,
		cols.inventory, p.SetupNotes, cols.menuExecution, cols.documents, cols.activityLog,
		p.ReadinessScore, cols.breakdown, cols.snapshot,
		p.BookingChanged, cols.warnings, p.Notes, p.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *pgRepository) CreateExpense(ctx context.Context, e Expense) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO party_expenses (id, tenant_id, booking_id, expense_name, amount, notes, vendor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.TenantID, e.BookingID, e.Name, e.Amount, e.Notes, e.VendorID, e.CreatedAt)
	return err
}

func (r *pgRepository) ListExpenses(ctx context.Context, tenantID, bookingID string) ([]Expense, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tenant_id, booking_id, expense_name, amount, notes, vendor_id, created_at
		FROM party_expenses WHERE tenant_id = $1 AND booking_id = $2 ORDER BY created_at`, tenantID, bookingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Expense
	for rows.Next() {
		var e Expense
		if err := rows.Scan(&e.ID, &e.TenantID, &e.BookingID, &e.Name, &e.Amount, &e.Notes, &e.VendorID, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *pgRepository) DeleteAutoStaffExpenses(ctx context.Context, tenantID, bookingID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM party_expenses
		WHERE tenant_id = $1 AND booking_id = $2
		AND expense_name LIKE 'Staff wages%' AND notes LIKE '%party planning%'`, tenantID, bookingID)
	return err
}

type planJSON struct {
	customVendors, staff, timeline, inventory, menuExecution,
	documents, activityLog, breakdown, snapshot, warnings []byte
}

func marshalPlan(p Plan) planJSON {
	var cols planJSON
	cols.customVendors, _ = json.Marshal(p.CustomVendors)
	cols.staff, _ = json.Marshal(p.StaffAssignments)
	cols.timeline, _ = json.Marshal(p.TimelineTasks)
	cols.inventory, _ = json.Marshal(p.Inventory)
	cols.menuExecution, _ = json.Marshal(p.MenuExecution)
	cols.documents, _ = json.Marshal(p.Documents)
	cols.activityLog, _ = json.Marshal(p.ActivityLog)
	cols.breakdown, _ = json.Marshal(p.ReadinessBreakdown)
	cols.snapshot, _ = json.Marshal(p.BookingSnapshot)
	cols.warnings, _ = json.Marshal(p.ChangeWarnings)
	return cols
}

func scanPlan(row pgx.Row) (Plan, error) {
	var (
		p    Plan
		cols planJSON
	)
	err := row.Scan(
		&p.ID, &p.TenantID, &p.BookingID, &p.DJVendorID, &p.DecorVendorID, &p.CateringVendorID,
		&cols.customVendors, &cols.staff, &p.TotalStaffCharges, &cols.timeline, &cols.inventory, &p.SetupNotes,
		&cols.menuExecution, &cols.documents, &cols.activityLog, &p.ReadinessScore, &cols.breakdown,
		&cols.snapshot, &p.BookingChanged, &cols.warnings, &p.Notes, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return Plan{}, err
	}
	_ = json.Unmarshal(cols.customVendors, &p.CustomVendors)
	_ = json.Unmarshal(cols.staff, &p.StaffAssignments)
	_ = json.Unmarshal(cols.timeline, &p.TimelineTasks)
	_ = json.Unmarshal(cols.inventory, &p.Inventory)
	_ = json.Unmarshal(cols.menuExecution, &p.MenuExecution)
	_ = json.Unmarshal(cols.documents, &p.Documents)
	_ = json.Unmarshal(cols.activityLog, &p.ActivityLog)
	_ = json.Unmarshal(cols.breakdown, &p.ReadinessBreakdown)
	_ = json.Unmarshal(cols.snapshot, &p.BookingSnapshot)
	_ = json.Unmarshal(cols.warnings, &p.ChangeWarnings)
	return p, nil
}
