package portfolio

import (
	"context"
	"time"

	"folio-backend/internal/domains/account"

	"github.com/google/uuid"
)

// Service is the content update guard plus owner reads.
type Service interface {
	Create(ctx context.Context, accountID uuid.UUID, req CreatePortfolioRequest) (*Portfolio, error)
	Get(ctx context.Context, accountID, portfolioID uuid.UUID) (*Portfolio, error)
	ListMine(ctx context.Context, accountID uuid.UUID) ([]*Portfolio, error)
	ApplyPatch(ctx context.Context, portfolioID uuid.UUID, patch PortfolioPatch, requester uuid.UUID) (*Portfolio, error)
}

// DomainService proves custom domain control and provisions routing.
type DomainService interface {
	Instructions(ctx context.Context, portfolioID, requester uuid.UUID) (*DomainStatus, error)
	Verify(ctx context.Context, portfolioID uuid.UUID, domain string, requester uuid.UUID) (*VerifyResult, error)

	// RegisterRouting is the retry path run by the worker.
	RegisterRouting(ctx context.Context, portfolioID uuid.UUID, domain string) error
	EnqueueUnrouted(ctx context.Context, limit int) (int, error)
}

type PublicService interface {
	BySlug(ctx context.Context, slug string) (*PublicPortfolio, error)
	ByDomain(ctx context.Context, domain string) (*PublicPortfolio, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

// AccountReader loads the owning account for plan decisions.
type AccountReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
}

// TXTResolver looks up DNS TXT records.
type TXTResolver interface {
	LookupTXT(ctx context.Context, host string) ([]string, error)
}

// RoutingProvider attaches a domain to the hosting edge.
type RoutingProvider interface {
	RegisterDomain(ctx context.Context, domain string) error
	Name() string
}

// RoutingRetryEnqueuer schedules a background registration attempt.
type RoutingRetryEnqueuer interface {
	EnqueueRegisterRouting(ctx context.Context, portfolioID, domain string, delay time.Duration) error
}
