package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublic_BySlugUsesEffectivePlanForTheme(t *testing.T) {
	owner := proAccount()
	page := &portfolio.Portfolio{
		ID:        uuid.New(),
		AccountID: owner.ID,
		Slug:      "jane",
		Theme:     portfolio.ThemeFlames,
		Font:      "lora",
		Sections:  content.Sections{Skills: []content.Skill{{Name: "Go"}}},
	}
	accounts := fakeAccounts{owner.ID: owner}
	c := newFakeCache()
	svc := NewPublicService(newFakeRepo(page), accounts, c, plan.FixedClock{T: now}, time.Minute)

	out, err := svc.BySlug(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, portfolio.ThemeFlames, out.Theme)
	assert.Equal(t, plan.Pro, out.Plan)
	assert.Len(t, out.Skills, 1)

	// The subscription lapses while the record is still cached.
	ended := now.Add(-time.Second)
	accounts[owner.ID].SubscriptionEnd = &ended

	out, err = svc.BySlug(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, portfolio.BaselineTheme, out.Theme)
	assert.Equal(t, plan.Free, out.Plan)
}

func TestPublic_ServesFromCache(t *testing.T) {
	owner := freeAccount()
	page := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner.ID, Slug: "jane", Title: "Jane"}
	repo := newFakeRepo(page)
	c := newFakeCache()
	svc := NewPublicService(repo, fakeAccounts{owner.ID: owner}, c, plan.FixedClock{T: now}, time.Minute)

	_, err := svc.BySlug(context.Background(), "jane")
	require.NoError(t, err)

	delete(repo.byID, page.ID)

	out, err := svc.BySlug(context.Background(), "jane")
	require.NoError(t, err)
	assert.Equal(t, "Jane", out.Title)
}

func TestPublic_ByDomainOnlyVerified(t *testing.T) {
	owner := proAccount()
	domain := "jane.dev"
	page := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner.ID, Slug: "jane", CustomDomain: &domain}
	repo := newFakeRepo(page)
	svc := NewPublicService(repo, fakeAccounts{owner.ID: owner}, newFakeCache(), plan.FixedClock{T: now}, time.Minute)

	_, err := svc.ByDomain(context.Background(), "jane.dev")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	repo.byID[page.ID].DomainVerified = true

	out, err := svc.ByDomain(context.Background(), "JANE.dev")
	require.NoError(t, err)
	assert.Equal(t, "jane.dev", out.CustomDomain)
}

func TestPublic_UnknownSlug(t *testing.T) {
	svc := NewPublicService(newFakeRepo(), fakeAccounts{}, newFakeCache(), plan.FixedClock{T: now}, time.Minute)

	_, err := svc.BySlug(context.Background(), "nobody")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = svc.BySlug(context.Background(), "Not Valid")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestPublic_ConcurrentReadsAgree(t *testing.T) {
	owner := freeAccount()
	page := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner.ID, Slug: "jane", Title: "Jane"}
	svc := NewPublicService(newFakeRepo(page), fakeAccounts{owner.ID: owner}, newFakeCache(), plan.FixedClock{T: now}, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := svc.BySlug(context.Background(), "jane")
			assert.NoError(t, err)
			assert.Equal(t, "Jane", out.Title)
		}()
	}
	wg.Wait()
}

// blockingRepo holds FindBySlug until release is closed and records the
// context state the load saw.
type blockingRepo struct {
	*fakeRepo
	started chan struct{}
	release chan struct{}
	seen    error
}

func (r *blockingRepo) FindBySlug(ctx context.Context, slug string) (*portfolio.Portfolio, error) {
	close(r.started)
	select {
	case <-r.release:
	case <-ctx.Done():
	}
	r.seen = ctx.Err()
	if r.seen != nil {
		return nil, r.seen
	}
	return r.fakeRepo.FindBySlug(ctx, slug)
}

func TestPublic_SharedLoadSurvivesFirstCallerCancel(t *testing.T) {
	owner := freeAccount()
	page := &portfolio.Portfolio{ID: uuid.New(), AccountID: owner.ID, Slug: "jane", Title: "Jane"}
	repo := &blockingRepo{fakeRepo: newFakeRepo(page), started: make(chan struct{}), release: make(chan struct{})}
	svc := NewPublicService(repo, fakeAccounts{owner.ID: owner}, newFakeCache(), plan.FixedClock{T: now}, time.Minute)

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.BySlug(firstCtx, "jane")
		firstErr <- err
	}()
	<-repo.started

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.BySlug(context.Background(), "jane")
		secondErr <- err
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	time.Sleep(20 * time.Millisecond)
	close(repo.release)

	assert.NoError(t, <-secondErr)
	<-firstErr
	assert.NoError(t, repo.seen)
}
