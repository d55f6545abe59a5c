package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"
	"folio-backend/pkg/cache"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

const sharedLoadTimeout = 5 * time.Second

type publicService struct {
	repo     portfolio.Repository
	accounts portfolio.AccountReader
	cache    cache.Cache
	clock    plan.Clock
	ttl      time.Duration
	group    singleflight.Group
}

// NewPublicService serves pages to the theme renderer. Records are cached;
// the owner's plan is resolved on every request.
func NewPublicService(
	repo portfolio.Repository,
	accounts portfolio.AccountReader,
	c cache.Cache,
	clock plan.Clock,
	ttl time.Duration,
) portfolio.PublicService {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &publicService{repo: repo, accounts: accounts, cache: c, clock: clock, ttl: ttl}
}

func (s *publicService) BySlug(ctx context.Context, slug string) (*portfolio.PublicPortfolio, error) {
	if !utils.IsValidSlug(slug) {
		return nil, shared.ErrNotFound
	}
	return s.render(ctx, portfolio.CacheKeySlug(slug), func(ctx context.Context) (*portfolio.Portfolio, error) {
		return s.repo.FindBySlug(ctx, slug)
	})
}

// ByDomain only serves portfolios whose domain is verified.
func (s *publicService) ByDomain(ctx context.Context, domain string) (*portfolio.PublicPortfolio, error) {
	domain = utils.NormalizeDomain(domain)
	if domain == "" {
		return nil, shared.ErrNotFound
	}
	return s.render(ctx, portfolio.CacheKeyDomain(domain), func(ctx context.Context) (*portfolio.Portfolio, error) {
		return s.repo.FindByVerifiedDomain(ctx, domain)
	})
}

func (s *publicService) render(ctx context.Context, key string, load func(context.Context) (*portfolio.Portfolio, error)) (*portfolio.PublicPortfolio, error) {
	p, err := s.fetch(ctx, key, load)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	owner, err := s.accounts.FindByID(ctx, p.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}

	out := portfolio.ToPublic(p, plan.ResolveFor(owner, s.clock.Now()))
	return &out, nil
}

// fetch reads through the cache. Concurrent misses on one key share a
// single store query.
func (s *publicService) fetch(ctx context.Context, key string, load func(context.Context) (*portfolio.Portfolio, error)) (*portfolio.Portfolio, error) {
	if s.cache != nil {
		var cached portfolio.Portfolio
		found, err := s.cache.Get(ctx, key, &cached)
		if err != nil {
			log.Warn().Err(err).Str("key", key).Msg("public cache read failed")
		}
		if found {
			return &cached, nil
		}
	}

	v, err, _ := s.group.Do(key, func() (interface{}, error) {
		// Waiters share this load; it must outlive the first caller.
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedLoadTimeout)
		defer cancel()

		p, err := load(loadCtx)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if err := s.cache.Set(loadCtx, key, p, s.ttl); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("public cache write failed")
			}
		}
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*portfolio.Portfolio), nil
}
