package portfolio

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the portfolio store. Unique index violations surface as
// SLUG_TAKEN / DOMAIN_TAKEN rejections.
type Repository interface {
	Create(ctx context.Context, p *Portfolio) error

	// Lookups return ErrPortfolioNotFound on a miss.
	FindByID(ctx context.Context, id uuid.UUID) (*Portfolio, error)
	FindBySlug(ctx context.Context, slug string) (*Portfolio, error)
	FindByVerifiedDomain(ctx context.Context, domain string) (*Portfolio, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]*Portfolio, error)

	// Uniqueness fast paths; excludeID is never reported as a collision.
	SlugTaken(ctx context.Context, slug string, excludeID uuid.UUID) (bool, error)
	DomainTaken(ctx context.Context, domain string, excludeID uuid.UUID) (bool, error)

	// ApplyUpdate writes one partial UPDATE and returns the stored row.
	ApplyUpdate(ctx context.Context, id uuid.UUID, u Update) (*Portfolio, error)

	// MarkDomainVerified sets domain_verified only while custom_domain
	// still equals domain. Returns false when the domain moved on.
	MarkDomainVerified(ctx context.Context, id uuid.UUID, domain string) (bool, error)

	// MarkRouted records a successful routing registration for domain.
	MarkRouted(ctx context.Context, id uuid.UUID, domain string) error

	// ListUnrouted returns verified portfolios whose routed domain lags
	// behind their custom domain.
	ListUnrouted(ctx context.Context, limit int) ([]*Portfolio, error)
}
