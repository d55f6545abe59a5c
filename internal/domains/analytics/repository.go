package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository is append-only.
type Repository interface {
	Append(ctx context.Context, e *Event) error
	Counts(ctx context.Context, portfolioID uuid.UUID, since time.Time) ([]Count, error)
	DailyViews(ctx context.Context, portfolioID uuid.UUID, since time.Time) ([]DailyCount, error)
}
