package masterdata

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/utsav-erp/utsav-erp/internal/pricing"
	"github.com/utsav-erp/utsav-erp/internal/shared"
)

// ErrNotFound indicates a catalog entity is absent or outside the tenant.
var ErrNotFound = errors.New("masterdata: not found")

// Service exposes catalog operations.
type Service struct {
	repo Repository
}

// NewService constructs a Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateHall registers a hall for the current tenant.
func (s *Service) CreateHall(ctx context.Context, input CreateHallInput) (Hall, error) {
	hall := Hall{
		ID:          uuid.NewString(),
		TenantID:    shared.TenantFromContext(ctx),
		Name:        input.Name,
		Capacity:    input.Capacity,
		Description: input.Description,
		Amenities:   input.Amenities,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateHall(ctx, hall); err != nil {
		return Hall{}, err
	}
	return hall, nil
}

// GetHall fetches one hall.
func (s *Service) GetHall(ctx context.Context, id string) (Hall, error) {
	return s.repo.GetHall(ctx, shared.TenantFromContext(ctx), id)
}

// ListHalls lists the tenant's active halls.
func (s *Service) ListHalls(ctx context.Context) ([]Hall, error) {
	return s.repo.ListHalls(ctx, shared.TenantFromContext(ctx))
}

// CreateMenuItem registers a menu item or add-on.
func (s *Service) CreateMenuItem(ctx context.Context, input CreateMenuItemInput) (MenuItem, error) {
	pricingType := input.PricingType
	if pricingType == "" {
		pricingType = pricing.PricingPerPlate
	}
	item := MenuItem{
		ID:          uuid.NewString(),
		TenantID:    shared.TenantFromContext(ctx),
		Name:        input.Name,
		Category:    input.Category,
		Price:       input.Price,
		PricingType: pricingType,
		Description: input.Description,
		IsAddon:     input.IsAddon,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.repo.CreateMenuItem(ctx, item); err != nil {
		return MenuItem{}, err
	}
	return item, nil
}

// ListMenuItems lists the tenant's active menu items and add-ons.
func (s *Service) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	return s.repo.ListMenuItems(ctx, shared.TenantFromContext(ctx))
}

// PricedItems resolves menu-item ids into calculator inputs. Ids that do
// not exist (or belong to another tenant) contribute nothing.
func (s *Service) PricedItems(ctx context.Context, ids []string, isAddon bool) ([]pricing.PricedItem, error) {
	items, err := s.repo.MenuItemsByIDs(ctx, shared.TenantFromContext(ctx), ids, isAddon)
	if err != nil {
		return nil, err
	}
	out := make([]pricing.PricedItem, 0, len(items))
	for _, item := range items {
		out = append(out, pricing.PricedItem{
			ID:          item.ID,
			Price:       item.Price,
			PricingType: item.PricingType,
		})
	}
	return out, nil
}

// CreateCustomer registers a customer.
func (s *Service) CreateCustomer(ctx context.Context, input CreateCustomerInput) (Customer, error) {
	customer := Customer{
		ID:        uuid.NewString(),
		TenantID:  shared.TenantFromContext(ctx),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     input.Phone,
		Address:   input.Address,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.CreateCustomer(ctx, customer); err != nil {
		return Customer{}, err
	}
	return customer, nil
}

// GetCustomer fetches one customer.
func (s *Service) GetCustomer(ctx context.Context, id string) (Customer, error) {
	return s.repo.GetCustomer(ctx, shared.TenantFromContext(ctx), id)
}

// ListCustomers lists the tenant's customers.
func (s *Service) ListCustomers(ctx context.Context) ([]Customer, error) {
	return s.repo.ListCustomers(ctx, shared.TenantFromContext(ctx))
}
