package analytics

import (
	"context"

	"folio-backend/internal/domains/portfolio"

	"github.com/google/uuid"
)

type Service interface {
	Track(ctx context.Context, slug string, req TrackRequest, v Visitor) error
	Summary(ctx context.Context, portfolioID, requester uuid.UUID, days int) (*Summary, error)
}

// PortfolioFinder resolves the tracked and summarised portfolios.
type PortfolioFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*portfolio.Portfolio, error)
	FindBySlug(ctx context.Context, slug string) (*portfolio.Portfolio, error)
}
