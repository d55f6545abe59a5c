package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio-backend/internal/domains/analytics"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"

	"github.com/google/uuid"
)

const maxUserAgent = 512

type analyticsService struct {
	repo       analytics.Repository
	portfolios analytics.PortfolioFinder
	clock      plan.Clock
}

func NewAnalyticsService(repo analytics.Repository, portfolios analytics.PortfolioFinder, clock plan.Clock) analytics.Service {
	return &analyticsService{repo: repo, portfolios: portfolios, clock: clock}
}

// Track appends one event for the portfolio served under slug.
func (s *analyticsService) Track(ctx context.Context, slug string, req analytics.TrackRequest, v analytics.Visitor) error {
	if err := req.Validate(); err != nil {
		return shared.Reject(shared.ErrInvalidPatch, "", err)
	}

	p, err := s.portfolios.FindBySlug(ctx, slug)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return shared.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}

	return s.repo.Append(ctx, &analytics.Event{
		PortfolioID: p.ID,
		Type:        req.Type,
		Target:      req.Target,
		Depth:       req.Depth,
		IPAddress:   v.IP,
		UserAgent:   truncate(v.UserAgent, maxUserAgent),
		Referrer:    truncate(v.Referrer, maxUserAgent),
		DeviceClass: utils.DeviceClass(v.UserAgent),
		OccurredAt:  s.clock.Now(),
	})
}

// Summary aggregates the last days of events for the owner.
func (s *analyticsService) Summary(ctx context.Context, portfolioID, requester uuid.UUID, days int) (*analytics.Summary, error) {
	p, err := s.portfolios.FindByID(ctx, portfolioID)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if p.AccountID != requester {
		return nil, shared.ErrUnauthorized
	}

	if days <= 0 {
		days = analytics.DefaultSummaryDays
	}
	if days > analytics.MaxSummaryDays {
		days = analytics.MaxSummaryDays
	}
	since := s.clock.Now().Add(-time.Duration(days) * 24 * time.Hour)

	counts, err := s.repo.Counts(ctx, p.ID, since)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.DailyViews(ctx, p.ID, since)
	if err != nil {
		return nil, err
	}
	if daily == nil {
		daily = []analytics.DailyCount{}
	}

	summary := &analytics.Summary{
		PortfolioID: p.ID,
		Since:       since,
		Days:        days,
		Totals: map[analytics.EventType]int64{
			analytics.EventPageView:    0,
			analytics.EventClick:       0,
			analytics.EventScrollDepth: 0,
		},
		Devices: map[string]int64{},
		Daily:   daily,
	}
	for _, c := range counts {
		summary.Totals[c.EventType] += c.Total
		summary.Devices[c.DeviceClass] += c.Total
	}
	return summary, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
