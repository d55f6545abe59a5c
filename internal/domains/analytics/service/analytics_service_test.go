package service

import (
	"context"
	"testing"
	"time"

	"folio-backend/internal/domains/analytics"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 6, 15, 10, 0, 0, 0, time.UTC)

type memRepo struct {
	events []analytics.Event
	since  time.Time
}

func (m *memRepo) Append(_ context.Context, e *analytics.Event) error {
	m.events = append(m.events, *e)
	return nil
}

func (m *memRepo) Counts(_ context.Context, id uuid.UUID, since time.Time) ([]analytics.Count, error) {
	m.since = since
	agg := map[[2]string]int64{}
	for _, e := range m.events {
		if e.PortfolioID == id && !e.OccurredAt.Before(since) {
			agg[[2]string{string(e.Type), e.DeviceClass}]++
		}
	}
	var out []analytics.Count
	for k, n := range agg {
		out = append(out, analytics.Count{EventType: analytics.EventType(k[0]), DeviceClass: k[1], Total: n})
	}
	return out, nil
}

func (m *memRepo) DailyViews(context.Context, uuid.UUID, time.Time) ([]analytics.DailyCount, error) {
	return nil, nil
}

type finder map[uuid.UUID]*portfolio.Portfolio

func (f finder) FindByID(_ context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	if p, ok := f[id]; ok {
		return p, nil
	}
	return nil, portfolio.ErrPortfolioNotFound
}

func (f finder) FindBySlug(_ context.Context, slug string) (*portfolio.Portfolio, error) {
	for _, p := range f {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, portfolio.ErrPortfolioNotFound
}

const (
	iphoneUA  = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15 Mobile/15E148"
	desktopUA = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36"
)

func TestTrackAndSummary(t *testing.T) {
	owner := uuid.New()
	p := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner, Slug: "jane"}
	repo := &memRepo{}
	svc := NewAnalyticsService(repo, finder{p.ID: p}, plan.FixedClock{T: now})
	ctx := context.Background()

	depth := 75
	require.NoError(t, svc.Track(ctx, "jane", analytics.TrackRequest{Type: analytics.EventPageView}, analytics.Visitor{IP: "203.0.113.9", UserAgent: iphoneUA}))
	require.NoError(t, svc.Track(ctx, "jane", analytics.TrackRequest{Type: analytics.EventPageView}, analytics.Visitor{UserAgent: desktopUA}))
	require.NoError(t, svc.Track(ctx, "jane", analytics.TrackRequest{Type: analytics.EventClick, Target: "github"}, analytics.Visitor{UserAgent: desktopUA}))
	require.NoError(t, svc.Track(ctx, "jane", analytics.TrackRequest{Type: analytics.EventScrollDepth, Depth: &depth}, analytics.Visitor{UserAgent: iphoneUA}))

	require.Len(t, repo.events, 4)
	assert.Equal(t, "mobile", repo.events[0].DeviceClass)
	assert.Equal(t, "203.0.113.9", repo.events[0].IPAddress)

	summary, err := svc.Summary(ctx, p.ID, owner, 7)
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.Totals[analytics.EventPageView])
	assert.Equal(t, int64(1), summary.Totals[analytics.EventClick])
	assert.Equal(t, int64(1), summary.Totals[analytics.EventScrollDepth])
	assert.Equal(t, int64(2), summary.Devices["mobile"])
	assert.Equal(t, int64(2), summary.Devices["desktop"])
	assert.Equal(t, now.Add(-7*24*time.Hour), repo.since)
	assert.NotNil(t, summary.Daily)
}

func TestTrack_Validation(t *testing.T) {
	p := &portfolio.Portfolio{ID: uuid.New(), Slug: "jane"}
	svc := NewAnalyticsService(&memRepo{}, finder{p.ID: p}, plan.FixedClock{T: now})
	ctx := context.Background()

	tooDeep, zero := 140, 0
	for name, req := range map[string]analytics.TrackRequest{
		"unknown type":         {Type: "hover"},
		"depth out of range":   {Type: analytics.EventScrollDepth, Depth: &tooDeep},
		"scroll without depth": {Type: analytics.EventScrollDepth},
		"depth on page view":   {Type: analytics.EventPageView, Depth: &zero},
	} {
		err := svc.Track(ctx, "jane", req, analytics.Visitor{})
		assert.ErrorIs(t, err, shared.ErrInvalidPatch, name)
	}

	assert.NoError(t, svc.Track(ctx, "jane", analytics.TrackRequest{Type: analytics.EventScrollDepth, Depth: &zero}, analytics.Visitor{}))
	assert.ErrorIs(t, svc.Track(ctx, "nobody", analytics.TrackRequest{Type: analytics.EventPageView}, analytics.Visitor{}), shared.ErrNotFound)
}

func TestSummary_OwnerOnlyAndDayBounds(t *testing.T) {
	owner := uuid.New()
	p := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner, Slug: "jane"}
	repo := &memRepo{}
	svc := NewAnalyticsService(repo, finder{p.ID: p}, plan.FixedClock{T: now})

	_, err := svc.Summary(context.Background(), p.ID, uuid.New(), 30)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	s, err := svc.Summary(context.Background(), p.ID, owner, 5000)
	require.NoError(t, err)
	assert.Equal(t, analytics.MaxSummaryDays, s.Days)

	s, err = svc.Summary(context.Background(), p.ID, owner, 0)
	require.NoError(t, err)
	assert.Equal(t, analytics.DefaultSummaryDays, s.Days)
}
