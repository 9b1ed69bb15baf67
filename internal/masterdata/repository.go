package masterdata

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository defines catalog data access.
type Repository interface {
	CreateHall(ctx context.Context, h Hall) error
	GetHall(ctx context.Context, tenantID, id string) (Hall, error)
	ListHalls(ctx context.Context, tenantID string) ([]Hall, error)

	CreateMenuItem(ctx context.Context, m MenuItem) error
	ListMenuItems(ctx context.Context, tenantID string) ([]MenuItem, error)
	// MenuItemsByIDs returns active items matching the ids and addon flag.
	// Unknown ids are simply absent from the result.
	MenuItemsByIDs(ctx context.Context, tenantID string, ids []string, isAddon bool) ([]MenuItem, error)

	CreateCustomer(ctx context.Context, c Customer) error
	GetCustomer(ctx context.Context, tenantID, id string) (Customer, error)
	ListCustomers(ctx context.Context, tenantID string) ([]Customer, error)
}

var _ Repository = (*pgRepository)(nil)

type pgRepository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs a PostgreSQL-backed repository.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &pgRepository{pool: pool}
}

func (r *pgRepository) CreateHall(ctx context.Context, h Hall) error {
	amenities, _ := json.Marshal(h.Amenities)
	_, err := r.pool.Exec(ctx, `
		INSERT INTO halls (id, tenant_id, name, capacity, description, amenities, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		h.ID, h.TenantID, h.Name, h.Capacity, h.Description, amenities, h.IsActive, h.CreatedAt)
	return err
}

func (r *pgRepository) GetHall(ctx context.Context, tenantID, id string) (Hall, error) {
	var (
		h         Hall
		amenities []byte
	)
	err := r.pool.QueryRow(ctx, `SELECT id, tenant_id, name, capacity, description, amenities, is_active, created_at
		FROM halls WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&h.ID, &h.TenantID, &h.Name, &h.Capacity, &h.Description, &amenities, &h.IsActive, &h.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Hall{}, ErrNotFound
	}
	if err != nil {
		return Hall{}, err
	}
	_ = json.Unmarshal(amenities, &h.Amenities)
	return h, nil
}

func (r *pgRepository) ListHalls(ctx context.Context, tenantID string) ([]Hall, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tenant_id, name, capacity, description, amenities, is_active, created_at
		FROM halls WHERE tenant_id = $1 AND is_active ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Hall
	for rows.Next() {
		var (
			h         Hall
			amenities []byte
		)
		if err := rows.Scan(&h.ID, &h.TenantID, &h.Name, &h.Capacity, &h.Description, &amenities, &h.IsActive, &h.CreatedAt); err != nil {
			return nil, err
		}
		_ = json.Unmarshal(amenities, &h.Amenities)
		out = append(out, h)
	}
	return out, rows.Err()
}

func (r *pgRepository) CreateMenuItem(ctx context.Context, m MenuItem) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO menu_items (id, tenant_id, name, category, price, pricing_type, description, is_addon, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.TenantID, m.Name, m.Category, m.Price, m.PricingType, m.Description, m.IsAddon, m.IsActive, m.CreatedAt)
	return err
}

func (r *pgRepository) ListMenuItems(ctx context.Context, tenantID string) ([]MenuItem, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tenant_id, name, category, price, pricing_type, description, is_addon, is_active, created_at
		FROM menu_items WHERE tenant_id = $1 AND is_active ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

func (r *pgRepository) MenuItemsByIDs(ctx context.Context, tenantID string, ids []string, isAddon bool) ([]MenuItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, `SELECT id, tenant_id, name, category, price, pricing_type, description, is_addon, is_active, created_at
		FROM menu_items WHERE tenant_id = $1 AND id = ANY($2) AND is_addon = $3 AND is_active`, tenantID, ids, isAddon)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectMenuItems(rows)
}

func collectMenuItems(rows pgx.Rows) ([]MenuItem, error) {
	var out []MenuItem
	for rows.Next() {
		var m MenuItem
		if err := rows.Scan(&m.ID, &m.TenantID, &m.Name, &m.Category, &m.Price, &m.PricingType, &m.Description, &m.IsAddon, &m.IsActive, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *pgRepository) CreateCustomer(ctx context.Context, c Customer) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO customers (id, tenant_id, name, email, phone, address, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.TenantID, c.Name, c.Email, c.Phone, c.Address, c.CreatedAt)
	return err
}

func (r *pgRepository) GetCustomer(ctx context.Context, tenantID, id string) (Customer, error) {
	var c Customer
	err := r.pool.QueryRow(ctx, `SELECT id, tenant_id, name, email, phone, address, created_at
		FROM customers WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Customer{}, ErrNotFound
	}
	return c, err
}

func (r *pgRepository) ListCustomers(ctx context.Context, tenantID string) ([]Customer, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, tenant_id, name, email, phone, address, created_at
		FROM customers WHERE tenant_id = $1 ORDER BY name`, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Customer
	for rows.Next() {
		var c Customer
		if err := rows.Scan(&c.ID, &c.TenantID, &c.Name, &c.Email, &c.Phone, &c.Address, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
