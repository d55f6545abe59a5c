package upload

import (
	"context"
	"time"

	"folio-backend/internal/domains/account"

	"github.com/google/uuid"
)

// Result describes one stored image and the account's usage after it.
type Result struct {
	ID           uuid.UUID `json:"id"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnailUrl"`
	ContentType  string    `json:"contentType"`
	Bytes        int64     `json:"bytes"`
	StorageUsed  int64     `json:"storageUsed"`
	StorageQuota int64     `json:"storageQuota"`
	CreatedAt    time.Time `json:"createdAt"`
}

type Service interface {
	Upload(ctx context.Context, accountID uuid.UUID, filename string, data []byte) (*Result, error)
}

// =====================================================
// COLLABORATORS
// =====================================================

type AccountStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error)
	IncrementStorage(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}

// ExpiryDetector persists the downgrade of a lapsed plan.
type ExpiryDetector interface {
	DetectExpiry(ctx context.Context, a *account.Account) error
}

type ObjectStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

type ImageProcessor interface {
	ValidateImage(data []byte) (string, error)
	Thumbnail(data []byte) ([]byte, error)
}
