package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*account.Account
	expired  []uuid.UUID
	writes   int
}

func newFakeRepo(accounts ...*account.Account) *fakeRepo {
	r := &fakeRepo{accounts: map[uuid.UUID]*account.Account{}}
	for _, a := range accounts {
		cp := *a
		r.accounts[a.ID] = &cp
	}
	return r
}

func (r *fakeRepo) Create(_ context.Context, a *account.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a.CreatedAt = now
	cp := *a
	r.accounts[a.ID] = &cp
	r.writes++
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) FindByEmail(_ context.Context, email string) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if strings.EqualFold(a.Email, email) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, account.ErrAccountNotFound
}

func (r *fakeRepo) UsernameTaken(_ context.Context, username string, excludeID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.ID != excludeID && strings.EqualFold(a.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeRepo) ApplyPatch(_ context.Context, id uuid.UUID, patch account.AccountPatch) (*account.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[id]
	if !ok {
		return nil, account.ErrAccountNotFound
	}
	if patch.Name.Set {
		a.Name = patch.Name.Value
	}
	if patch.Username.Set {
		a.Username = patch.Username.Value
	}
	if patch.Bio.Set {
		a.Bio = patch.Bio.Value
	}
	a.Sections = patch.SectionsPatch.Merge(a.Sections)
	r.writes++
	cp := *a
	return &cp, nil
}

func (r *fakeRepo) ExpirePlan(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[id]
	if a.Plan == plan.Free {
		return nil
	}
	a.Plan, a.BillingPeriod = plan.Free, nil
	r.expired = append(r.expired, id)
	r.writes++
	return nil
}

func (r *fakeRepo) SetPlanState(_ context.Context, id uuid.UUID, state account.PlanState) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a := r.accounts[id]
	a.Plan, a.BillingPeriod, a.SubscriptionEnd = state.Plan, state.BillingPeriod, state.SubscriptionEnd
	r.writes++
	return nil
}

func (r *fakeRepo) IncrementStorage(_ context.Context, id uuid.UUID, delta int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.accounts[id].StorageUsed += delta
	return r.accounts[id].StorageUsed, nil
}

func (r *fakeRepo) stored(id uuid.UUID) *account.Account {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *r.accounts[id]
	return &cp
}

type fakeTokens struct{}

func (fakeTokens) GenerateAccessToken(accountID, _ string) (string, time.Time, error) {
	return "token-" + accountID, now.Add(time.Hour), nil
}

var quotas = plan.Quotas{Free: 10 << 20, Pro: 1 << 30}

func newService(repo *fakeRepo) account.Service {
	return NewAccountService(repo, fakeTokens{}, plan.FixedClock{T: now}, Config{Quotas: quotas, BcryptCost: bcrypt.MinCost})
}

func proUntil(end time.Time) *account.Account {
	period := plan.Monthly
	return &account.Account{
		ID:              uuid.New(),
		Email:           "pro@example.com",
		Username:        "pro_user",
		Plan:            plan.Pro,
		BillingPeriod:   &period,
		SubscriptionEnd: &end,
	}
}

func freeAcct() *account.Account {
	return &account.Account{
		ID:       uuid.New(),
		Email:    "free@example.com",
		Username: "free_user",
		Plan:     plan.Free,
		Sections: content.Sections{Skills: []content.Skill{{Name: "Go"}}},
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func TestRegisterAndLogin(t *testing.T) {
	repo := newFakeRepo()
	svc := newService(repo)
	ctx := context.Background()

	dto, err := svc.Register(ctx, account.RegisterRequest{
		Email:    " Jane@Example.com ",
		Username: "jane",
		Password: "correct-horse",
		Name:     "Jane",
	})
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", dto.Email)
	assert.Equal(t, plan.Free, dto.Plan)
	assert.Equal(t, plan.Free, dto.EffectivePlan)
	assert.Equal(t, quotas.Free, dto.Entitlements.StorageQuota)

	resp, err := svc.Login(ctx, account.LoginRequest{Email: "jane@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, "token-"+dto.ID.String(), resp.AccessToken)

	_, err = svc.Login(ctx, account.LoginRequest{Email: "jane@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Login(ctx, account.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)
}

func TestRegister_Conflicts(t *testing.T) {
	existing := freeAcct()
	svc := newService(newFakeRepo(existing))

	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email: existing.Email, Username: "someone_else", Password: "long-enough",
	})
	assert.ErrorIs(t, err, shared.ErrEmailTaken)

	_, err = svc.Register(context.Background(), account.RegisterRequest{
		Email: "new@example.com", Username: "FREE_USER", Password: "long-enough",
	})
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
	r, ok := shared.AsRejection(err)
	require.True(t, ok)
	assert.Equal(t, "username", r.Field)
}

func TestRegister_InvalidInput(t *testing.T) {
	svc := newService(newFakeRepo())
	_, err := svc.Register(context.Background(), account.RegisterRequest{
		Email: "not-an-email", Username: "x", Password: "short",
	})
	assert.ErrorIs(t, err, shared.ErrInvalidPatch)
}

// ========================================
// PROFILE PATCH
// ========================================

func TestApplyPatch_UsernameTaken(t *testing.T) {
	me, other := freeAcct(), proUntil(now.Add(time.Hour))
	repo := newFakeRepo(me, other)
	svc := newService(repo)

	_, err := svc.ApplyPatch(context.Background(), me.ID, account.AccountPatch{Username: content.Some("Pro_User")})
	assert.ErrorIs(t, err, shared.ErrUsernameTaken)
	assert.Zero(t, repo.writes)

	// Keeping one's own name is not a conflict.
	dto, err := svc.ApplyPatch(context.Background(), me.ID, account.AccountPatch{
		Username: content.Some(me.Username),
		Name:     content.Some("Renamed"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", dto.Name)
}

func TestApplyPatch_ProtectedSectionsOnFreePlan(t *testing.T) {
	me := freeAcct()
	repo := newFakeRepo(me)
	svc := newService(repo)

	_, err := svc.ApplyPatch(context.Background(), me.ID, account.AccountPatch{
		SectionsPatch: content.SectionsPatch{Skills: content.Some([]content.Skill{{Name: "Rust"}})},
	})
	assert.ErrorIs(t, err, shared.ErrUpgradeRequired)
	r, _ := shared.AsRejection(err)
	assert.Equal(t, "skills", r.Field)
	assert.Zero(t, repo.writes)

	// Resending the stored value is not a change.
	_, err = svc.ApplyPatch(context.Background(), me.ID, account.AccountPatch{
		Bio:           content.Some("hello"),
		SectionsPatch: content.SectionsPatch{Skills: content.Some([]content.Skill{{Name: "Go"}})},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", repo.stored(me.ID).Bio)
}

func TestApplyPatch_ExpiredProIsGatedAsFree(t *testing.T) {
	me := proUntil(now)
	repo := newFakeRepo(me)
	svc := newService(repo)

	_, err := svc.ApplyPatch(context.Background(), me.ID, account.AccountPatch{
		SectionsPatch: content.SectionsPatch{SEOMeta: content.Some(content.SEOMeta{Title: "Me"})},
	})
	assert.ErrorIs(t, err, shared.ErrUpgradeRequired)

	active := proUntil(now.Add(time.Second))
	repo = newFakeRepo(active)
	svc = newService(repo)
	dto, err := svc.ApplyPatch(context.Background(), active.ID, account.AccountPatch{
		SectionsPatch: content.SectionsPatch{SEOMeta: content.Some(content.SEOMeta{Title: "Me"})},
	})
	require.NoError(t, err)
	assert.Equal(t, "Me", dto.SEOMeta.Title)
}

func TestApplyPatch_UnknownAccount(t *testing.T) {
	svc := newService(newFakeRepo())
	_, err := svc.ApplyPatch(context.Background(), uuid.New(), account.AccountPatch{Name: content.Some("x")})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ========================================
// PLAN STATE
// ========================================

func TestDetectExpiry(t *testing.T) {
	t.Run("lapsed pro is downgraded and keeps its end date", func(t *testing.T) {
		end := now.Add(-time.Minute)
		a := proUntil(end)
		repo := newFakeRepo(a)
		svc := newService(repo)

		require.NoError(t, svc.DetectExpiry(context.Background(), a))
		assert.Equal(t, plan.Free, a.Plan)
		assert.Nil(t, a.BillingPeriod)
		assert.Equal(t, []uuid.UUID{a.ID}, repo.expired)
		assert.Equal(t, end, *repo.stored(a.ID).SubscriptionEnd)
	})

	t.Run("end equal to now counts as lapsed", func(t *testing.T) {
		a := proUntil(now)
		repo := newFakeRepo(a)
		require.NoError(t, newService(repo).DetectExpiry(context.Background(), a))
		assert.Len(t, repo.expired, 1)
	})

	t.Run("active pro and free accounts are untouched", func(t *testing.T) {
		active, free := proUntil(now.Add(time.Hour)), freeAcct()
		repo := newFakeRepo(active, free)
		svc := newService(repo)

		require.NoError(t, svc.DetectExpiry(context.Background(), active))
		require.NoError(t, svc.DetectExpiry(context.Background(), free))
		assert.Empty(t, repo.expired)
		assert.Zero(t, repo.writes)
	})
}

func TestGrantAndRevokePlan(t *testing.T) {
	a := freeAcct()
	repo := newFakeRepo(a)
	svc := newService(repo)
	ctx := context.Background()

	dto, err := svc.GrantPlan(ctx, account.GrantRequest{Email: a.Email, Period: plan.Annual})
	require.NoError(t, err)
	assert.Equal(t, plan.Pro, dto.EffectivePlan)
	assert.Equal(t, now.AddDate(1, 0, 0), *dto.SubscriptionEnd)
	assert.True(t, dto.Entitlements.CustomDomain)

	past := now.Add(-time.Hour)
	_, err = svc.GrantPlan(ctx, account.GrantRequest{Email: a.Email, Period: plan.Monthly, Until: &past})
	assert.Error(t, err)

	_, err = svc.GrantPlan(ctx, account.GrantRequest{Email: a.Email, Period: "weekly"})
	assert.Error(t, err)

	dto, err = svc.RevokePlan(ctx, a.Email)
	require.NoError(t, err)
	assert.Equal(t, plan.Free, dto.Plan)
	assert.Equal(t, plan.Free, dto.EffectivePlan)
	assert.NotNil(t, repo.stored(a.ID).SubscriptionEnd)
}
