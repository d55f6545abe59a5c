package account

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the account store. Unique index violations surface as
// shared rejections (EMAIL_TAKEN, USERNAME_TAKEN).
type Repository interface {
	Create(ctx context.Context, a *Account) error

	// Lookups return ErrAccountNotFound on a miss.
	FindByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// UsernameTaken is case-insensitive and ignores excludeID.
	UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)

	// ApplyPatch writes the sent fields in one UPDATE and returns the row.
	ApplyPatch(ctx context.Context, id uuid.UUID, patch AccountPatch) (*Account, error)

	// ExpirePlan sets plan=free and billing_period=NULL while keeping
	// subscription_end. No-op when the stored plan is already free.
	ExpirePlan(ctx context.Context, id uuid.UUID) error

	SetPlanState(ctx context.Context, id uuid.UUID, state PlanState) error

	// IncrementStorage adds delta bytes and returns the new total.
	IncrementStorage(ctx context.Context, id uuid.UUID, delta int64) (int64, error)
}
