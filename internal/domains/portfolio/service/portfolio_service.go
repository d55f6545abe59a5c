package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"
	"folio-backend/pkg/cache"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type portfolioService struct {
	repo     portfolio.Repository
	accounts portfolio.AccountReader
	cache    cache.Cache
	clock    plan.Clock
}

func NewPortfolioService(
	repo portfolio.Repository,
	accounts portfolio.AccountReader,
	c cache.Cache,
	clock plan.Clock,
) portfolio.Service {
	return &portfolioService{repo: repo, accounts: accounts, cache: c, clock: clock}
}

// ========================================
// OWNER READS
// ========================================

// Create claims a slug for a new page. Without an explicit slug one is
// derived from the title.
func (s *portfolioService) Create(ctx context.Context, accountID uuid.UUID, req portfolio.CreatePortfolioRequest) (*portfolio.Portfolio, error) {
	if req.Slug == "" {
		req.Slug = utils.GenerateSlug(req.Title)
	}
	if err := req.Validate(); err != nil {
		return nil, shared.Reject(shared.ErrInvalidPatch, "", err)
	}
	if err := s.checkSlug(ctx, req.Slug, uuid.Nil); err != nil {
		return nil, err
	}

	p := &portfolio.Portfolio{
		ID:        uuid.New(),
		AccountID: accountID,
		Slug:      req.Slug,
		Title:     req.Title,
		Theme:     portfolio.BaselineTheme,
		Font:      portfolio.DefaultFont,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if _, ok := shared.AsRejection(err); ok {
			return nil, err
		}
		return nil, fmt.Errorf("create portfolio: %w", err)
	}

	log.Info().
		Str("portfolio_id", p.ID.String()).
		Str("account_id", accountID.String()).
		Str("slug", p.Slug).
		Msg("portfolio created")
	return p, nil
}

func (s *portfolioService) Get(ctx context.Context, accountID, portfolioID uuid.UUID) (*portfolio.Portfolio, error) {
	return loadOwned(ctx, s.repo, portfolioID, accountID)
}

func (s *portfolioService) ListMine(ctx context.Context, accountID uuid.UUID) ([]*portfolio.Portfolio, error) {
	list, err := s.repo.ListByAccount(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("list portfolios: %w", err)
	}
	if list == nil {
		list = []*portfolio.Portfolio{}
	}
	return list, nil
}

// ========================================
// CONTENT UPDATE GUARD
// ========================================

// ApplyPatch accepts or rejects one partial update. Every gate runs before
// the single write, so a rejection leaves the record untouched.
func (s *portfolioService) ApplyPatch(ctx context.Context, portfolioID uuid.UUID, patch portfolio.PortfolioPatch, requester uuid.UUID) (*portfolio.Portfolio, error) {
	current, err := loadOwned(ctx, s.repo, portfolioID, requester)
	if err != nil {
		return nil, err
	}

	if err := patch.Validate(); err != nil {
		return nil, shared.Reject(shared.ErrInvalidPatch, "", err)
	}

	if patch.Slug.Set && patch.Slug.Value != current.Slug {
		if err := s.checkSlug(ctx, patch.Slug.Value, current.ID); err != nil {
			return nil, err
		}
	}

	update := portfolio.Update{Patch: patch}
	if patch.CustomDomain.Set {
		domain, err := s.checkDomain(ctx, patch.CustomDomain.Value, current.ID)
		if err != nil {
			return nil, err
		}
		update.Patch.CustomDomain.Value = domain
		update.ResetDomainVerification = domain != current.Domain()
	}

	owner, err := s.accounts.FindByID(ctx, current.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	tier := plan.ResolveFor(owner, s.clock.Now())

	if tier == plan.Free {
		if section, changed := patch.SectionsPatch.FirstChange(current.Sections); changed {
			return nil, shared.Reject(shared.ErrUpgradeRequired, section, nil)
		}
		if patch.Theme.Set && patch.Theme.Value != current.Theme && patch.Theme.Value != portfolio.BaselineTheme {
			return nil, shared.Reject(shared.ErrPlanRestrictsTheme, "theme", nil)
		}
	}

	updated, err := s.repo.ApplyUpdate(ctx, current.ID, update)
	if err != nil {
		if _, ok := shared.AsRejection(err); ok {
			return nil, err
		}
		if errors.Is(err, portfolio.ErrPortfolioNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, fmt.Errorf("update portfolio: %w", err)
	}

	if update.ResetDomainVerification {
		log.Info().
			Str("portfolio_id", current.ID.String()).
			Str("old_domain", current.Domain()).
			Str("domain", updated.Domain()).
			Msg("custom domain changed, verification reset")
	}

	s.invalidate(ctx, current, updated)
	return updated, nil
}

// ========================================
// HELPERS
// ========================================

// loadOwned maps a miss to NOT_FOUND and a foreign owner to UNAUTHORIZED.
func loadOwned(ctx context.Context, repo portfolio.Repository, portfolioID, requester uuid.UUID) (*portfolio.Portfolio, error) {
	p, err := repo.FindByID(ctx, portfolioID)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load portfolio: %w", err)
	}
	if p.AccountID != requester {
		return nil, shared.ErrUnauthorized
	}
	return p, nil
}

// checkSlug runs format, reserved and uniqueness checks in that order.
func (s *portfolioService) checkSlug(ctx context.Context, slug string, excludeID uuid.UUID) error {
	if !utils.IsValidSlug(slug) {
		return shared.Reject(shared.ErrInvalidSlugFormat, "slug", nil)
	}
	if utils.IsReservedSlug(slug) {
		return shared.Reject(shared.ErrReservedSlug, "slug", nil)
	}
	taken, err := s.repo.SlugTaken(ctx, slug, excludeID)
	if err != nil {
		return fmt.Errorf("check slug: %w", err)
	}
	if taken {
		return shared.Reject(shared.ErrSlugTaken, "slug", nil)
	}
	return nil
}

// checkDomain normalises raw and checks it is free. An empty value clears
// the domain and needs no checks.
func (s *portfolioService) checkDomain(ctx context.Context, raw string, excludeID uuid.UUID) (string, error) {
	domain := utils.NormalizeDomain(raw)
	if strings.TrimSpace(raw) == "" {
		return "", nil
	}
	if err := validation.Validate(domain, validation.Required, is.Domain, validation.Length(3, 253)); err != nil {
		return "", shared.Reject(shared.ErrInvalidPatch, "customDomain", err)
	}
	taken, err := s.repo.DomainTaken(ctx, domain, excludeID)
	if err != nil {
		return "", fmt.Errorf("check domain: %w", err)
	}
	if taken {
		return "", shared.Reject(shared.ErrDomainTaken, "customDomain", nil)
	}
	return domain, nil
}

// invalidate drops public cache entries for both the old and new routes.
func (s *portfolioService) invalidate(ctx context.Context, before, after *portfolio.Portfolio) {
	if s.cache == nil {
		return
	}
	keys := []string{portfolio.CacheKeySlug(before.Slug), portfolio.CacheKeySlug(after.Slug)}
	for _, d := range []string{before.Domain(), after.Domain()} {
		if d != "" {
			keys = append(keys, portfolio.CacheKeyDomain(d))
		}
	}
	if err := s.cache.Delete(ctx, keys...); err != nil {
		log.Warn().Err(err).Str("portfolio_id", after.ID.String()).Msg("failed to invalidate public cache")
	}
}
