package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// TokenIssuer signs access tokens. Implemented by *jwt.Manager.
type TokenIssuer interface {
	GenerateAccessToken(accountID, email string) (string, time.Time, error)
}

type Config struct {
	Quotas     plan.Quotas
	BcryptCost int
}

type accountService struct {
	repo   account.Repository
	tokens TokenIssuer
	clock  plan.Clock
	cfg    Config
}

func NewAccountService(repo account.Repository, tokens TokenIssuer, clock plan.Clock, cfg Config) account.Service {
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = 12
	}
	return &accountService{repo: repo, tokens: tokens, clock: clock, cfg: cfg}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *accountService) Register(ctx context.Context, req account.RegisterRequest) (*account.AccountDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.Reject(shared.ErrInvalidPatch, "", err)
	}

	// Fast path; the unique indexes decide under concurrency.
	if _, err := s.repo.FindByEmail(ctx, req.Email); err == nil {
		return nil, shared.Reject(shared.ErrEmailTaken, "email", nil)
	} else if !errors.Is(err, account.ErrAccountNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}

	taken, err := s.repo.UsernameTaken(ctx, req.Username, uuid.Nil)
	if err != nil {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if taken {
		return nil, shared.Reject(shared.ErrUsernameTaken, "username", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	a := &account.Account{
		ID:           uuid.New(),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Username:     req.Username,
		PasswordHash: string(hash),
		Name:         req.Name,
		Plan:         plan.Free,
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}

	log.Info().Str("account_id", a.ID.String()).Msg("account registered")

	dto := account.ToDTO(a, s.clock.Now(), s.cfg.Quotas)
	return &dto, nil
}

func (s *accountService) Login(ctx context.Context, req account.LoginRequest) (*account.LoginResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, shared.Reject(shared.ErrInvalidCredentials, "", nil)
	}

	a, err := s.repo.FindByEmail(ctx, req.Email)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, shared.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find account: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, shared.ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.GenerateAccessToken(a.ID.String(), a.Email)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	return &account.LoginResponse{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		Account:     account.ToDTO(a, s.clock.Now(), s.cfg.Quotas),
	}, nil
}

// ========================================
// PROFILE
// ========================================

func (s *accountService) GetProfile(ctx context.Context, accountID uuid.UUID) (*account.AccountDTO, error) {
	a, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}
	dto := account.ToDTO(a, s.clock.Now(), s.cfg.Quotas)
	return &dto, nil
}

// ApplyPatch validates, checks username uniqueness, gates the protected
// sections on the effective plan, then writes once. Rejections write nothing.
func (s *accountService) ApplyPatch(ctx context.Context, accountID uuid.UUID, patch account.AccountPatch) (*account.AccountDTO, error) {
	current, err := s.load(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, shared.Reject(shared.ErrInvalidPatch, "", err)
	}

	if patch.Username.Set && patch.Username.Value != current.Username {
		taken, err := s.repo.UsernameTaken(ctx, patch.Username.Value, current.ID)
		if err != nil {
			return nil, fmt.Errorf("check username: %w", err)
		}
		if taken {
			return nil, shared.Reject(shared.ErrUsernameTaken, "username", nil)
		}
	}

	now := s.clock.Now()
	if plan.ResolveFor(current, now) == plan.Free {
		if section, changed := patch.SectionsPatch.FirstChange(current.Sections); changed {
			return nil, shared.Reject(shared.ErrUpgradeRequired, section, nil)
		}
	}

	updated, err := s.repo.ApplyPatch(ctx, current.ID, patch)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("update account: %w", err)
	}

	dto := account.ToDTO(updated, now, s.cfg.Quotas)
	return &dto, nil
}

// ========================================
// PLAN STATE
// ========================================

// DetectExpiry persists the downgrade of a lapsed pro plan and mirrors it
// on a. Authorization never depends on it having run.
func (s *accountService) DetectExpiry(ctx context.Context, a *account.Account) error {
	if !plan.Expired(a, s.clock.Now()) {
		return nil
	}
	if err := s.repo.ExpirePlan(ctx, a.ID); err != nil {
		return err
	}

	log.Info().
		Str("account_id", a.ID.String()).
		Interface("subscription_end", a.SubscriptionEnd).
		Msg("pro plan expired, downgraded to free")

	a.Plan = plan.Free
	a.BillingPeriod = nil
	return nil
}

func (s *accountService) GrantPlan(ctx context.Context, req account.GrantRequest) (*account.AccountDTO, error) {
	if !req.Period.Valid() {
		return nil, fmt.Errorf("invalid billing period %q", req.Period)
	}
	a, err := s.repo.FindByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	until := req.Period.Length(now)
	if req.Until != nil {
		until = *req.Until
	}
	if !until.After(now) {
		return nil, fmt.Errorf("grant end %s is not in the future", until.Format(time.RFC3339))
	}

	period := req.Period
	state := account.PlanState{Plan: plan.Pro, BillingPeriod: &period, SubscriptionEnd: &until}
	if err := s.repo.SetPlanState(ctx, a.ID, state); err != nil {
		return nil, err
	}

	a.Plan, a.BillingPeriod, a.SubscriptionEnd = state.Plan, state.BillingPeriod, state.SubscriptionEnd
	dto := account.ToDTO(a, now, s.cfg.Quotas)
	return &dto, nil
}

func (s *accountService) RevokePlan(ctx context.Context, email string) (*account.AccountDTO, error) {
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	state := account.PlanState{Plan: plan.Free, SubscriptionEnd: a.SubscriptionEnd}
	if err := s.repo.SetPlanState(ctx, a.ID, state); err != nil {
		return nil, err
	}

	a.Plan, a.BillingPeriod = plan.Free, nil
	dto := account.ToDTO(a, s.clock.Now(), s.cfg.Quotas)
	return &dto, nil
}

func (s *accountService) FindByEmail(ctx context.Context, email string) (*account.AccountDTO, error) {
	a, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	dto := account.ToDTO(a, s.clock.Now(), s.cfg.Quotas)
	return &dto, nil
}

func (s *accountService) load(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	a, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}
	return a, nil
}
