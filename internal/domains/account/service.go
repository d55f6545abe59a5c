package account

import (
	"context"

	"github.com/google/uuid"
)

type Service interface {
	// Authentication
	Register(ctx context.Context, req RegisterRequest) (*AccountDTO, error)
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)

	// Profile
	GetProfile(ctx context.Context, accountID uuid.UUID) (*AccountDTO, error)
	ApplyPatch(ctx context.Context, accountID uuid.UUID, patch AccountPatch) (*AccountDTO, error)

	// Plan state
	DetectExpiry(ctx context.Context, a *Account) error
	GrantPlan(ctx context.Context, req GrantRequest) (*AccountDTO, error)
	RevokePlan(ctx context.Context, email string) (*AccountDTO, error)
	FindByEmail(ctx context.Context, email string) (*AccountDTO, error)
}
