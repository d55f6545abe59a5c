package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"
	"folio-backend/pkg/cache"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type DomainConfig struct {
	VerificationPrefix string
	TXTHostPrefix      string
	RetryDelay         time.Duration
}

type domainService struct {
	repo     portfolio.Repository
	accounts portfolio.AccountReader
	resolver portfolio.TXTResolver
	routing  portfolio.RoutingProvider
	retries  portfolio.RoutingRetryEnqueuer
	cache    cache.Cache
	clock    plan.Clock
	cfg      DomainConfig
}

func NewDomainService(
	repo portfolio.Repository,
	accounts portfolio.AccountReader,
	resolver portfolio.TXTResolver,
	routing portfolio.RoutingProvider,
	retries portfolio.RoutingRetryEnqueuer,
	c cache.Cache,
	clock plan.Clock,
	cfg DomainConfig,
) portfolio.DomainService {
	if cfg.VerificationPrefix == "" {
		cfg.VerificationPrefix = "folio-verify"
	}
	if cfg.TXTHostPrefix == "" {
		cfg.TXTHostPrefix = "_verify"
	}
	if cfg.RetryDelay == 0 {
		cfg.RetryDelay = time.Minute
	}
	return &domainService{
		repo:     repo,
		accounts: accounts,
		resolver: resolver,
		routing:  routing,
		retries:  retries,
		cache:    c,
		clock:    clock,
		cfg:      cfg,
	}
}

// token is the challenge value expected in the TXT record.
func (s *domainService) token(portfolioID uuid.UUID) string {
	return s.cfg.VerificationPrefix + "-" + portfolioID.String()
}

func (s *domainService) instructions(p *portfolio.Portfolio, domain string) *portfolio.Instructions {
	host := s.cfg.TXTHostPrefix + "." + domain
	token := s.token(p.ID)
	return &portfolio.Instructions{
		Host:    host,
		Type:    "TXT",
		Value:   token,
		Message: fmt.Sprintf("Add a TXT record on %s with the value %s, then verify again. DNS changes can take a while to propagate.", host, token),
	}
}

// ========================================
// INSTRUCTIONS
// ========================================

func (s *domainService) Instructions(ctx context.Context, portfolioID, requester uuid.UUID) (*portfolio.DomainStatus, error) {
	p, err := loadOwned(ctx, s.repo, portfolioID, requester)
	if err != nil {
		return nil, err
	}
	domain := p.Domain()
	if domain == "" {
		return nil, shared.Reject(shared.ErrDomainNotSet, "customDomain", nil)
	}

	status := &portfolio.DomainStatus{
		Domain:   domain,
		Verified: p.DomainVerified,
		Routed:   p.DomainVerified && p.Routed() == domain,
	}
	if !p.DomainVerified {
		status.Instructions = s.instructions(p, domain)
	}
	return status, nil
}

// ========================================
// VERIFY
// ========================================

// Verify proves control of the stored custom domain through a TXT record.
// A failed or erroring lookup is an expected outcome and returns
// instructions instead of an error.
func (s *domainService) Verify(ctx context.Context, portfolioID uuid.UUID, requested string, requester uuid.UUID) (*portfolio.VerifyResult, error) {
	p, err := loadOwned(ctx, s.repo, portfolioID, requester)
	if err != nil {
		return nil, err
	}

	owner, err := s.accounts.FindByID(ctx, p.AccountID)
	if err != nil {
		return nil, fmt.Errorf("load owner: %w", err)
	}
	if plan.ResolveFor(owner, s.clock.Now()) != plan.Pro {
		return nil, shared.Reject(shared.ErrPlanRequired, "customDomain", nil)
	}

	domain := p.Domain()
	if domain == "" {
		return nil, shared.Reject(shared.ErrDomainNotSet, "customDomain", nil)
	}
	if requested != "" && utils.NormalizeDomain(requested) != domain {
		return nil, shared.Reject(shared.ErrDomainMismatch, "domain", nil)
	}

	logger := log.With().
		Str("portfolio_id", p.ID.String()).
		Str("domain", domain).
		Logger()

	host := s.cfg.TXTHostPrefix + "." + domain
	records, err := s.resolver.LookupTXT(ctx, host)
	if err != nil {
		logger.Info().Err(err).Msg("TXT lookup failed")
	}
	if err != nil || !containsToken(records, s.token(p.ID)) {
		return &portfolio.VerifyResult{
			Domain:       domain,
			Verified:     p.DomainVerified,
			Instructions: s.instructions(p, domain),
		}, nil
	}

	if !p.DomainVerified {
		ok, err := s.repo.MarkDomainVerified(ctx, p.ID, domain)
		if err != nil {
			return nil, fmt.Errorf("mark verified: %w", err)
		}
		if !ok {
			return nil, shared.Reject(shared.ErrDomainMismatch, "domain", portfolio.ErrDomainChanged)
		}
		logger.Info().Msg("custom domain verified")
		s.invalidate(ctx, p.Slug, domain)
	}

	result := &portfolio.VerifyResult{
		Domain:   domain,
		Verified: true,
		Routing:  &portfolio.RoutingStatus{Provider: s.routing.Name()},
	}

	if p.Routed() == domain {
		result.Routing.Registered = true
		return result, nil
	}

	if err := s.register(ctx, p.ID, domain); err != nil {
		logger.Error().Err(err).Str("provider", s.routing.Name()).Msg("routing registration failed")
		result.Routing.Error = err.Error()

		if qerr := s.retries.EnqueueRegisterRouting(ctx, p.ID.String(), domain, s.cfg.RetryDelay); qerr != nil {
			logger.Error().Err(qerr).Msg("failed to schedule routing retry")
		} else {
			result.Routing.RetryScheduled = true
		}
		return result, nil
	}

	result.Routing.Registered = true
	return result, nil
}

// ========================================
// ROUTING
// ========================================

// RegisterRouting is run by the worker. It is a no-op when the domain has
// since changed, lost verification, or is already routed.
func (s *domainService) RegisterRouting(ctx context.Context, portfolioID uuid.UUID, domain string) error {
	p, err := s.repo.FindByID(ctx, portfolioID)
	if errors.Is(err, portfolio.ErrPortfolioNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load portfolio: %w", err)
	}
	if !p.DomainVerified || p.Domain() != domain || p.Routed() == domain {
		log.Debug().
			Str("portfolio_id", portfolioID.String()).
			Str("domain", domain).
			Msg("routing registration no longer needed")
		return nil
	}
	return s.register(ctx, p.ID, domain)
}

func (s *domainService) register(ctx context.Context, id uuid.UUID, domain string) error {
	if err := s.routing.RegisterDomain(ctx, domain); err != nil {
		return err
	}
	if err := s.repo.MarkRouted(ctx, id, domain); err != nil {
		return fmt.Errorf("mark routed: %w", err)
	}
	log.Info().
		Str("portfolio_id", id.String()).
		Str("domain", domain).
		Str("provider", s.routing.Name()).
		Msg("domain registered with routing provider")
	return nil
}

// EnqueueUnrouted schedules registration for verified domains that never
// reached the routing provider. Returns how many tasks were enqueued.
func (s *domainService) EnqueueUnrouted(ctx context.Context, limit int) (int, error) {
	list, err := s.repo.ListUnrouted(ctx, limit)
	if err != nil {
		return 0, fmt.Errorf("list unrouted: %w", err)
	}

	enqueued := 0
	for _, p := range list {
		if err := s.retries.EnqueueRegisterRouting(ctx, p.ID.String(), p.Domain(), 0); err != nil {
			log.Error().Err(err).Str("portfolio_id", p.ID.String()).Msg("failed to enqueue routing registration")
			continue
		}
		enqueued++
	}
	return enqueued, nil
}

// ========================================
// HELPERS
// ========================================

func (s *domainService) invalidate(ctx context.Context, slug, domain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, portfolio.CacheKeySlug(slug), portfolio.CacheKeyDomain(domain)); err != nil {
		log.Warn().Err(err).Str("domain", domain).Msg("failed to invalidate public cache")
	}
}

// containsToken reports whether any record carries token. Providers may
// split long records into quoted chunks, which LookupTXT already joins.
func containsToken(records []string, token string) bool {
	for _, r := range records {
		if strings.Contains(strings.TrimSpace(r), token) {
			return true
		}
	}
	return false
}
