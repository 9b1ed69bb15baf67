package dashboard

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/utsav-erp/utsav-erp/internal/shared"
)

const (
	recentLimit = 5
	chartMonths = 6
)

// Service assembles dashboard aggregates, fanning independent queries out in
// parallel and caching assembled blocks.
type Service struct {
	repo  Repository
	cache *Cache
	now   func() time.Time
}

// NewService constructs a Service. Cache may be nil.
func NewService(repo Repository, cache *Cache) *Service {
	return &Service{repo: repo, cache: cache, now: func() time.Time { return time.Now().UTC() }}
}

// Invalidate drops every cached aggregate. Booking writers call this after
// anything that moves the numbers.
func (s *Service) Invalidate(ctx context.Context) error {
	return s.cache.Bump(ctx)
}

// Stats returns the headline block for the current tenant.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	tenantID := shared.TenantFromContext(ctx)
	key, err := s.cache.BuildKey(ctx, "dashboard", "stats", tenantID)
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	err = s.cache.FetchJSON(ctx, key, &stats, func(ctx context.Context) (any, error) {
		return s.loadStats(ctx, tenantID)
	})
	return stats, err
}

func (s *Service) loadStats(ctx context.Context, tenantID string) (Stats, error) {
	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	today := now.Format("2006-01-02")

	var stats Stats
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.repo.CountBookingsSince(ctx, tenantID, monthStart)
		stats.TotalBookings = n
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountUpcoming(ctx, tenantID, today)
		stats.UpcomingEvents = n
		return err
	})
	g.Go(func() error {
		revenue, err := s.repo.RevenueBetween(ctx, tenantID, monthStart, monthStart.AddDate(0, 1, 0))
		stats.MonthlyRevenue = revenue
		return err
	})
	g.Go(func() error {
		n, err := s.repo.CountPendingPayments(ctx, tenantID)
		stats.PendingPayments = n
		return err
	})
	g.Go(func() error {
		recent, err := s.repo.RecentBookings(ctx, tenantID, recentLimit)
		stats.RecentBookings = recent
		return err
	})
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}
	if stats.RecentBookings == nil {
		stats.RecentBookings = []RecentBooking{}
	}
	return stats, nil
}

// RevenueChart returns advances received per month for the last six months,
// oldest first.
func (s *Service) RevenueChart(ctx context.Context) ([]MonthRevenue, error) {
	tenantID := shared.TenantFromContext(ctx)
	key, err := s.cache.BuildKey(ctx, "dashboard", "revenue", tenantID)
	if err != nil {
		return nil, err
	}

	var chart []MonthRevenue
	err = s.cache.FetchJSON(ctx, key, &chart, func(ctx context.Context) (any, error) {
		return s.loadRevenueChart(ctx, tenantID)
	})
	return chart, err
}

func (s *Service) loadRevenueChart(ctx context.Context, tenantID string) ([]MonthRevenue, error) {
	now := s.now()
	out := make([]MonthRevenue, chartMonths)

	g, ctx := errgroup.WithContext(ctx)
	for i := 0; i < chartMonths; i++ {
		i := i
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, -i, 0)
		g.Go(func() error {
			revenue, err := s.repo.RevenueBetween(ctx, tenantID, monthStart, monthStart.AddDate(0, 1, 0))
			out[chartMonths-1-i] = MonthRevenue{Month: monthStart.Format("Jan"), Revenue: revenue}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// EventDistribution returns booking counts by event type.
func (s *Service) EventDistribution(ctx context.Context) ([]EventTypeCount, error) {
	tenantID := shared.TenantFromContext(ctx)
	key, err := s.cache.BuildKey(ctx, "dashboard", "events", tenantID)
	if err != nil {
		return nil, err
	}

	var dist []EventTypeCount
	err = s.cache.FetchJSON(ctx, key, &dist, func(ctx context.Context) (any, error) {
		return s.repo.EventDistribution(ctx, tenantID)
	})
	return dist, err
}
