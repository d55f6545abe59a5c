package billing

import (
	"context"

	"folio-backend/internal/domains/account"

	"github.com/google/uuid"
)

type Repository interface {
	// ResolveAccount finds the account by id first, then by stored
	// billing customer id. Returns ErrAccountUnresolved on a miss.
	ResolveAccount(ctx context.Context, accountID *uuid.UUID, customerID string) (uuid.UUID, error)

	// Apply records the event and writes the plan state in one
	// transaction. A repeated event returns ErrEventAlreadyProcessed and
	// writes nothing.
	Apply(ctx context.Context, event Event, state *account.PlanState) error
}
