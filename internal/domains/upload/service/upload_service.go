package service

import (
	"context"
	"errors"
	"fmt"
	"path"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/upload"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type uploadService struct {
	accounts upload.AccountStore
	expiry   upload.ExpiryDetector
	objects  upload.ObjectStore
	images   upload.ImageProcessor
	quotas   plan.Quotas
	clock    plan.Clock
}

func NewUploadService(
	accounts upload.AccountStore,
	expiry upload.ExpiryDetector,
	objects upload.ObjectStore,
	images upload.ImageProcessor,
	quotas plan.Quotas,
	clock plan.Clock,
) upload.Service {
	return &uploadService{
		accounts: accounts,
		expiry:   expiry,
		objects:  objects,
		images:   images,
		quotas:   quotas,
		clock:    clock,
	}
}

// Upload stores an image and its thumbnail and charges both against the
// account's quota. The counter only grows; a failure after the objects
// are written leaves them uncharged.
func (s *uploadService) Upload(ctx context.Context, accountID uuid.UUID, filename string, data []byte) (*upload.Result, error) {
	a, err := s.accounts.FindByID(ctx, accountID)
	if errors.Is(err, account.ErrAccountNotFound) {
		return nil, shared.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load account: %w", err)
	}

	if err := s.expiry.DetectExpiry(ctx, a); err != nil {
		log.Warn().Err(err).Str("account_id", a.ID.String()).Msg("plan expiry check failed")
	}

	format, err := s.images.ValidateImage(data)
	if err != nil {
		return nil, shared.Reject(shared.ErrInvalidUpload, "file", err)
	}
	thumb, err := s.images.Thumbnail(data)
	if err != nil {
		return nil, shared.Reject(shared.ErrInvalidUpload, "file", err)
	}

	now := s.clock.Now()
	limits := plan.Entitlements(plan.ResolveFor(a, now), s.quotas)
	size := int64(len(data) + len(thumb))
	if a.StorageUsed+size > limits.StorageQuota {
		return nil, shared.Reject(shared.ErrStorageQuotaExceeded, "file",
			fmt.Errorf("used %d + %d bytes exceeds %d", a.StorageUsed, size, limits.StorageQuota))
	}

	id := uuid.New()
	prefix := path.Join("accounts", a.ID.String(), id.String())
	contentType := "image/" + format

	url, err := s.objects.Upload(ctx, path.Join(prefix, "original."+extension(format)), data, contentType)
	if err != nil {
		return nil, fmt.Errorf("store original: %w", err)
	}
	thumbURL, err := s.objects.Upload(ctx, path.Join(prefix, "thumb.jpg"), thumb, "image/jpeg")
	if err != nil {
		return nil, fmt.Errorf("store thumbnail: %w", err)
	}

	used, err := s.accounts.IncrementStorage(ctx, a.ID, size)
	if err != nil {
		return nil, fmt.Errorf("charge storage: %w", err)
	}

	log.Info().
		Str("account_id", a.ID.String()).
		Str("upload_id", id.String()).
		Str("filename", filename).
		Int64("bytes", size).
		Int64("storage_used", used).
		Msg("image uploaded")

	return &upload.Result{
		ID:           id,
		URL:          url,
		ThumbnailURL: thumbURL,
		ContentType:  contentType,
		Bytes:        size,
		StorageUsed:  used,
		StorageQuota: limits.StorageQuota,
		CreatedAt:    now,
	}, nil
}

func extension(format string) string {
	if format == "jpeg" {
		return "jpg"
	}
	return format
}
