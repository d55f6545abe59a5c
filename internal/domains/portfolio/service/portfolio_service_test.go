package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type guardFixture struct {
	repo    *fakeRepo
	cache   *fakeCache
	svc     portfolio.Service
	owner   *account.Account
	page    *portfolio.Portfolio
	other   *portfolio.Portfolio
	outside *account.Account
}

func newGuardFixture(t *testing.T, owner *account.Account) *guardFixture {
	t.Helper()

	outside := freeAccount()
	page := &portfolio.Portfolio{
		ID:        uuid.New(),
		AccountID: owner.ID,
		Slug:      "jane",
		Title:     "Jane Doe",
		Subtitle:  "Designer",
		Location:  "Lisbon",
		Theme:     portfolio.ThemeMinimal,
		Font:      "inter",
		Sections: content.Sections{
			Projects: []content.Project{
				{Title: "Atlas", Tags: []string{"go", "maps"}},
				{Title: "Beacon", Description: "status pages"},
			},
			Skills: []content.Skill{{Name: "Go", Level: "expert"}},
		},
	}
	other := &portfolio.Portfolio{
		ID:        uuid.New(),
		AccountID: outside.ID,
		Slug:      "taken-slug",
		Theme:     portfolio.ThemeMinimal,
		Font:      "inter",
	}

	repo := newFakeRepo(page, other)
	c := newFakeCache()
	accounts := fakeAccounts{owner.ID: owner, outside.ID: outside}

	return &guardFixture{
		repo:    repo,
		cache:   c,
		svc:     NewPortfolioService(repo, accounts, c, plan.FixedClock{T: now}),
		owner:   owner,
		page:    page,
		other:   other,
		outside: outside,
	}
}

func decodePatch(t *testing.T, raw string) portfolio.PortfolioPatch {
	t.Helper()
	var p portfolio.PortfolioPatch
	require.NoError(t, json.Unmarshal([]byte(raw), &p))
	return p
}

func (f *guardFixture) apply(t *testing.T, raw string) (*portfolio.Portfolio, error) {
	t.Helper()
	return f.svc.ApplyPatch(context.Background(), f.page.ID, decodePatch(t, raw), f.owner.ID)
}

// ========================================
// MERGE
// ========================================

func TestApplyPatch_MergesOnlySentFields(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	updated, err := f.apply(t, `{"title":"Jane D.","phone":"+351 555"}`)
	require.NoError(t, err)

	assert.Equal(t, "Jane D.", updated.Title)
	assert.Equal(t, "+351 555", updated.Phone)
	assert.Equal(t, "Designer", updated.Subtitle)
	assert.Equal(t, "Lisbon", updated.Location)
	assert.Equal(t, "jane", updated.Slug)
	assert.Equal(t, f.page.Projects, updated.Projects)
	assert.Equal(t, 1, f.repo.writes)
}

func TestApplyPatch_ExplicitNullClearsField(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	updated, err := f.apply(t, `{"subtitle":null}`)
	require.NoError(t, err)
	assert.Empty(t, updated.Subtitle)
	assert.Equal(t, "Jane Doe", updated.Title)
}

// ========================================
// AUTHORIZATION
// ========================================

func TestApplyPatch_RejectsNonOwnerBeforeAnyCheck(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.svc.ApplyPatch(context.Background(), f.page.ID, decodePatch(t, `{"slug":"Bad Slug"}`), f.outside.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)
	assert.Zero(t, f.repo.writes)
}

func TestApplyPatch_UnknownPortfolio(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.svc.ApplyPatch(context.Background(), uuid.New(), decodePatch(t, `{"title":"x"}`), f.owner.ID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ========================================
// SLUG RULES
// ========================================

func TestApplyPatch_InvalidSlugFormat(t *testing.T) {
	for _, slug := range []string{"", "My-Slug", "has space", "under_score", "dots.here", "émoji", "slash/x"} {
		t.Run(slug, func(t *testing.T) {
			f := newGuardFixture(t, proAccount())

			raw, _ := json.Marshal(map[string]string{"slug": slug})
			_, err := f.apply(t, string(raw))

			assert.ErrorIs(t, err, shared.ErrInvalidSlugFormat)
			assert.Zero(t, f.repo.writes)
			assert.Equal(t, "jane", f.repo.stored(f.page.ID).Slug)
		})
	}
}

func TestApplyPatch_NullSlugIsInvalidFormat(t *testing.T) {
	f := newGuardFixture(t, proAccount())

	_, err := f.apply(t, `{"slug":null}`)

	assert.ErrorIs(t, err, shared.ErrInvalidSlugFormat)
	assert.Zero(t, f.repo.writes)
	assert.Equal(t, "jane", f.repo.stored(f.page.ID).Slug)
}

func TestApplyPatch_ReservedSlug(t *testing.T) {
	for _, slug := range []string{"admin", "api", "dashboard", "login", "www"} {
		t.Run(slug, func(t *testing.T) {
			f := newGuardFixture(t, proAccount())

			_, err := f.apply(t, `{"slug":"`+slug+`"}`)
			assert.ErrorIs(t, err, shared.ErrReservedSlug)
			assert.Zero(t, f.repo.writes)
		})
	}
}

func TestApplyPatch_SlugTakenByAnotherPortfolio(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.apply(t, `{"slug":"taken-slug"}`)

	require.ErrorIs(t, err, shared.ErrSlugTaken)
	r, ok := shared.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "slug", r.Field)
	assert.Zero(t, f.repo.writes)
}

func TestApplyPatch_OwnSlugIsNotACollision(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	updated, err := f.apply(t, `{"slug":"jane","title":"Same slug"}`)
	require.NoError(t, err)
	assert.Equal(t, "jane", updated.Slug)
	assert.Equal(t, "Same slug", updated.Title)
}

func TestApplyPatch_SlugChangeInvalidatesBothCacheKeys(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.apply(t, `{"slug":"jane-doe"}`)
	require.NoError(t, err)
	assert.Contains(t, f.cache.deleted, portfolio.CacheKeySlug("jane"))
	assert.Contains(t, f.cache.deleted, portfolio.CacheKeySlug("jane-doe"))
}

// ========================================
// PLAN GATE
// ========================================

func TestApplyPatch_FreePlanIdenticalSectionsPass(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.apply(t, `{
		"projects":[{"title":"Atlas","tags":["go","maps"]},{"title":"Beacon","description":"status pages"}],
		"skills":[{"name":"Go","level":"expert"}],
		"experience":[],
		"seoMeta":{}
	}`)
	assert.NoError(t, err)
}

func TestApplyPatch_FreePlanSectionChangesRejected(t *testing.T) {
	tests := []struct {
		name    string
		patch   string
		section string
	}{
		{"add project", `{"projects":[{"title":"Atlas","tags":["go","maps"]},{"title":"Beacon","description":"status pages"},{"title":"Comet"}]}`, "projects"},
		{"remove project", `{"projects":[{"title":"Atlas","tags":["go","maps"]}]}`, "projects"},
		{"reorder projects", `{"projects":[{"title":"Beacon","description":"status pages"},{"title":"Atlas","tags":["go","maps"]}]}`, "projects"},
		{"nested tag change", `{"projects":[{"title":"Atlas","tags":["go"]},{"title":"Beacon","description":"status pages"}]}`, "projects"},
		{"skill level", `{"skills":[{"name":"Go","level":"advanced"}]}`, "skills"},
		{"experience entry", `{"experience":[{"company":"Acme","role":"Engineer"}]}`, "experience"},
		{"seo title", `{"seoMeta":{"title":"Jane"}}`, "seoMeta"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGuardFixture(t, freeAccount())

			_, err := f.apply(t, tt.patch)

			require.ErrorIs(t, err, shared.ErrUpgradeRequired)
			r, _ := shared.AsRejection(err)
			assert.Equal(t, tt.section, r.Field)
			assert.Zero(t, f.repo.writes)
		})
	}
}

func TestApplyPatch_ExpiredProIsGatedAsFree(t *testing.T) {
	owner := proAccount()
	ended := now.Add(-24 * time.Hour)
	owner.SubscriptionEnd = &ended
	f := newGuardFixture(t, owner)

	_, err := f.apply(t, `{"skills":[]}`)
	assert.ErrorIs(t, err, shared.ErrUpgradeRequired)
}

func TestApplyPatch_ProPlanEditsSections(t *testing.T) {
	f := newGuardFixture(t, proAccount())

	updated, err := f.apply(t, `{"projects":[{"title":"Comet"}],"seoMeta":{"title":"Jane Doe"}}`)
	require.NoError(t, err)
	require.Len(t, updated.Projects, 1)
	assert.Equal(t, "Comet", updated.Projects[0].Title)
	assert.Equal(t, "Jane Doe", updated.SEOMeta.Title)
	assert.Equal(t, f.page.Skills, updated.Skills)
}

// ========================================
// THEME GATE
// ========================================

func TestApplyPatch_ThemeGate(t *testing.T) {
	t.Run("free cannot pick pro theme", func(t *testing.T) {
		f := newGuardFixture(t, freeAccount())
		_, err := f.apply(t, `{"theme":"flames"}`)
		assert.ErrorIs(t, err, shared.ErrPlanRestrictsTheme)
		assert.Zero(t, f.repo.writes)
	})

	t.Run("free can keep baseline", func(t *testing.T) {
		f := newGuardFixture(t, freeAccount())
		_, err := f.apply(t, `{"theme":"minimal"}`)
		assert.NoError(t, err)
	})

	t.Run("free may resend stored pro theme", func(t *testing.T) {
		f := newGuardFixture(t, freeAccount())
		f.repo.byID[f.page.ID].Theme = portfolio.ThemeModern
		_, err := f.apply(t, `{"theme":"modern","title":"kept"}`)
		assert.NoError(t, err)
	})

	t.Run("pro picks any theme", func(t *testing.T) {
		f := newGuardFixture(t, proAccount())
		updated, err := f.apply(t, `{"theme":"flames"}`)
		require.NoError(t, err)
		assert.Equal(t, portfolio.ThemeFlames, updated.Theme)
	})
}

// ========================================
// CUSTOM DOMAIN
// ========================================

func TestApplyPatch_DomainChangeResetsVerificationInSameWrite(t *testing.T) {
	f := newGuardFixture(t, proAccount())
	stored := f.repo.byID[f.page.ID]
	domain := "a.com"
	stored.CustomDomain = &domain
	stored.DomainVerified = true

	updated, err := f.apply(t, `{"customDomain":"b.com","title":"Moved","location":"Porto"}`)
	require.NoError(t, err)

	assert.Equal(t, "b.com", updated.Domain())
	assert.False(t, updated.DomainVerified)
	assert.Equal(t, "Moved", updated.Title)
	assert.Equal(t, "Porto", updated.Location)
	assert.Equal(t, 1, f.repo.writes)
	assert.Contains(t, f.cache.deleted, portfolio.CacheKeyDomain("a.com"))
}

func TestApplyPatch_SameDomainKeepsVerification(t *testing.T) {
	f := newGuardFixture(t, proAccount())
	stored := f.repo.byID[f.page.ID]
	domain := "a.com"
	stored.CustomDomain = &domain
	stored.DomainVerified = true

	updated, err := f.apply(t, `{"customDomain":"https://A.com/"}`)
	require.NoError(t, err)
	assert.Equal(t, "a.com", updated.Domain())
	assert.True(t, updated.DomainVerified)
}

func TestApplyPatch_ClearDomain(t *testing.T) {
	f := newGuardFixture(t, proAccount())
	stored := f.repo.byID[f.page.ID]
	domain := "a.com"
	stored.CustomDomain = &domain
	stored.DomainVerified = true

	updated, err := f.apply(t, `{"customDomain":""}`)
	require.NoError(t, err)
	assert.Nil(t, updated.CustomDomain)
	assert.False(t, updated.DomainVerified)
}

func TestApplyPatch_DomainTaken(t *testing.T) {
	f := newGuardFixture(t, proAccount())
	domain := "shared.dev"
	f.repo.byID[f.other.ID].CustomDomain = &domain

	_, err := f.apply(t, `{"customDomain":"Shared.dev"}`)
	assert.ErrorIs(t, err, shared.ErrDomainTaken)
	assert.Zero(t, f.repo.writes)
}

func TestApplyPatch_InvalidDomain(t *testing.T) {
	f := newGuardFixture(t, proAccount())

	_, err := f.apply(t, `{"customDomain":"not a domain"}`)
	assert.ErrorIs(t, err, shared.ErrInvalidPatch)
}

// ========================================
// VALIDATION
// ========================================

func TestApplyPatch_InvalidValues(t *testing.T) {
	for name, raw := range map[string]string{
		"unknown theme":  `{"theme":"neon"}`,
		"unknown font":   `{"font":"comic-sans"}`,
		"bad avatar url": `{"avatarUrl":"not a url"}`,
		"bad email":      `{"contactEmail":"nope"}`,
		"empty slug":     `{"slug":""}`,
		"project title":  `{"projects":[{"title":""}]}`,
	} {
		t.Run(name, func(t *testing.T) {
			f := newGuardFixture(t, proAccount())
			_, err := f.apply(t, raw)
			assert.ErrorIs(t, err, shared.ErrInvalidPatch)
			assert.Zero(t, f.repo.writes)
		})
	}
}

// ========================================
// CREATE / READ
// ========================================

func TestCreate(t *testing.T) {
	f := newGuardFixture(t, freeAccount())
	ctx := context.Background()

	p, err := f.svc.Create(ctx, f.owner.ID, portfolio.CreatePortfolioRequest{Slug: "jane-2", Title: "Second"})
	require.NoError(t, err)
	assert.Equal(t, portfolio.BaselineTheme, p.Theme)
	assert.Equal(t, portfolio.DefaultFont, p.Font)

	_, err = f.svc.Create(ctx, f.owner.ID, portfolio.CreatePortfolioRequest{Slug: "billing"})
	assert.ErrorIs(t, err, shared.ErrReservedSlug)

	_, err = f.svc.Create(ctx, f.owner.ID, portfolio.CreatePortfolioRequest{Slug: "taken-slug"})
	assert.ErrorIs(t, err, shared.ErrSlugTaken)

	derived, err := f.svc.Create(ctx, f.owner.ID, portfolio.CreatePortfolioRequest{Title: "Jane's  Photo Work!"})
	require.NoError(t, err)
	assert.Equal(t, "janes-photo-work", derived.Slug)

	_, err = f.svc.Create(ctx, f.owner.ID, portfolio.CreatePortfolioRequest{})
	assert.ErrorIs(t, err, shared.ErrInvalidPatch)

	list, err := f.svc.ListMine(ctx, f.owner.ID)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestGet_OwnerOnly(t *testing.T) {
	f := newGuardFixture(t, freeAccount())

	_, err := f.svc.Get(context.Background(), f.outside.ID, f.page.ID)
	assert.ErrorIs(t, err, shared.ErrUnauthorized)

	p, err := f.svc.Get(context.Background(), f.owner.ID, f.page.ID)
	require.NoError(t, err)
	assert.Equal(t, "jane", p.Slug)
}
