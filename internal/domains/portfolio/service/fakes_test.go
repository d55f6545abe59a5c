package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

// ========================================
// PORTFOLIO STORE
// ========================================

type fakeRepo struct {
	mu     sync.Mutex
	byID   map[uuid.UUID]*portfolio.Portfolio
	writes int
}

func newFakeRepo(list ...*portfolio.Portfolio) *fakeRepo {
	r := &fakeRepo{byID: map[uuid.UUID]*portfolio.Portfolio{}}
	for _, p := range list {
		r.byID[p.ID] = clone(p)
	}
	return r
}

func clone(p *portfolio.Portfolio) *portfolio.Portfolio {
	raw, _ := json.Marshal(p)
	var out portfolio.Portfolio
	_ = json.Unmarshal(raw, &out)
	return &out
}

func (r *fakeRepo) Create(_ context.Context, p *portfolio.Portfolio) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.byID {
		if existing.Slug == p.Slug {
			return shared.Reject(shared.ErrSlugTaken, "slug", nil)
		}
	}
	r.writes++
	p.CreatedAt, p.UpdatedAt = now, now
	r.byID[p.ID] = clone(p)
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, portfolio.ErrPortfolioNotFound
	}
	return clone(p), nil
}

func (r *fakeRepo) find(match func(*portfolio.Portfolio) bool) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.byID {
		if match(p) {
			return clone(p), nil
		}
	}
	return nil, portfolio.ErrPortfolioNotFound
}

func (r *fakeRepo) FindBySlug(_ context.Context, slug string) (*portfolio.Portfolio, error) {
	return r.find(func(p *portfolio.Portfolio) bool { return p.Slug == slug })
}

func (r *fakeRepo) FindByVerifiedDomain(_ context.Context, domain string) (*portfolio.Portfolio, error) {
	return r.find(func(p *portfolio.Portfolio) bool { return p.DomainVerified && p.Domain() == domain })
}

func (r *fakeRepo) ListByAccount(_ context.Context, accountID uuid.UUID) ([]*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*portfolio.Portfolio
	for _, p := range r.byID {
		if p.AccountID == accountID {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *fakeRepo) SlugTaken(_ context.Context, slug string, excludeID uuid.UUID) (bool, error) {
	_, err := r.find(func(p *portfolio.Portfolio) bool { return p.Slug == slug && p.ID != excludeID })
	return err == nil, nil
}

func (r *fakeRepo) DomainTaken(_ context.Context, domain string, excludeID uuid.UUID) (bool, error) {
	_, err := r.find(func(p *portfolio.Portfolio) bool { return p.Domain() == domain && p.ID != excludeID })
	return err == nil, nil
}

func (r *fakeRepo) ApplyUpdate(_ context.Context, id uuid.UUID, u portfolio.Update) (*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.byID[id]
	if !ok {
		return nil, portfolio.ErrPortfolioNotFound
	}
	p := u.Patch
	next := clone(cur)

	set := func(dst *string, set bool, v string) {
		if set {
			*dst = v
		}
	}
	set(&next.Slug, p.Slug.Set, p.Slug.Value)
	set(&next.Title, p.Title.Set, p.Title.Value)
	set(&next.Subtitle, p.Subtitle.Set, p.Subtitle.Value)
	set(&next.Description, p.Description.Set, p.Description.Value)
	set(&next.ContactEmail, p.ContactEmail.Set, p.ContactEmail.Value)
	set(&next.Phone, p.Phone.Set, p.Phone.Value)
	set(&next.Location, p.Location.Set, p.Location.Value)
	set(&next.AvatarURL, p.AvatarURL.Set, p.AvatarURL.Value)
	set(&next.CoverURL, p.CoverURL.Set, p.CoverURL.Value)
	set(&next.ResumeURL, p.ResumeURL.Set, p.ResumeURL.Value)
	set(&next.Font, p.Font.Set, p.Font.Value)
	if p.CustomDomain.Set {
		next.CustomDomain = nil
		if p.CustomDomain.Value != "" {
			d := p.CustomDomain.Value
			next.CustomDomain = &d
		}
	}
	if u.ResetDomainVerification {
		next.DomainVerified = false
	}
	if p.Theme.Set {
		next.Theme = p.Theme.Value
	}
	if p.SocialLinks.Set {
		next.SocialLinks = p.SocialLinks.Value
	}
	next.Sections = p.SectionsPatch.Merge(next.Sections)

	r.writes++
	r.byID[id] = next
	return clone(next), nil
}

func (r *fakeRepo) MarkDomainVerified(_ context.Context, id uuid.UUID, domain string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok || p.Domain() != domain {
		return false, nil
	}
	r.writes++
	p.DomainVerified = true
	return true, nil
}

func (r *fakeRepo) MarkRouted(_ context.Context, id uuid.UUID, domain string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.byID[id]; ok && p.Domain() == domain {
		d := domain
		p.RoutedDomain = &d
	}
	return nil
}

func (r *fakeRepo) ListUnrouted(_ context.Context, limit int) ([]*portfolio.Portfolio, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*portfolio.Portfolio
	for _, p := range r.byID {
		if p.DomainVerified && p.Domain() != "" && p.Routed() != p.Domain() && len(out) < limit {
			out = append(out, clone(p))
		}
	}
	return out, nil
}

func (r *fakeRepo) stored(id uuid.UUID) *portfolio.Portfolio {
	r.mu.Lock()
	defer r.mu.Unlock()
	return clone(r.byID[id])
}

// ========================================
// ACCOUNTS
// ========================================

type fakeAccounts map[uuid.UUID]*account.Account

func (f fakeAccounts) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	a, ok := f[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func freeAccount() *account.Account {
	return &account.Account{ID: uuid.New(), Email: "free@example.com", Username: "free", Plan: plan.Free}
}

func proAccount() *account.Account {
	end := now.Add(30 * 24 * time.Hour)
	return &account.Account{ID: uuid.New(), Email: "pro@example.com", Username: "pro", Plan: plan.Pro, SubscriptionEnd: &end}
}

// ========================================
// CACHE
// ========================================

type fakeCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string][]byte{}}
}

func (c *fakeCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *fakeCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = raw
	return nil
}

func (c *fakeCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
		c.deleted = append(c.deleted, k)
	}
	return nil
}

func (c *fakeCache) Ping(context.Context) error { return nil }

// ========================================
// DNS / ROUTING / QUEUE
// ========================================

type fakeResolver struct {
	records map[string][]string
	err     error
	calls   int
}

func (r *fakeResolver) LookupTXT(_ context.Context, host string) ([]string, error) {
	r.calls++
	if r.err != nil {
		return nil, r.err
	}
	return r.records[host], nil
}

type fakeRouting struct {
	err        error
	registered []string
}

func (f *fakeRouting) RegisterDomain(_ context.Context, domain string) error {
	if f.err != nil {
		return f.err
	}
	f.registered = append(f.registered, domain)
	return nil
}

func (f *fakeRouting) Name() string { return "fake" }

type enqueued struct {
	PortfolioID string
	Domain      string
	Delay       time.Duration
}

type fakeEnqueuer struct {
	tasks []enqueued
	err   error
}

func (f *fakeEnqueuer) EnqueueRegisterRouting(_ context.Context, portfolioID, domain string, delay time.Duration) error {
	if f.err != nil {
		return f.err
	}
	f.tasks = append(f.tasks, enqueued{portfolioID, domain, delay})
	return nil
}

var errUnreachable = errors.New("connection refused")
