package repository

import (
	"context"
	"errors"
	"fmt"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/billing"
	"folio-backend/internal/infrastructure/database"
	pkgdb "folio-backend/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) billing.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) ResolveAccount(ctx context.Context, accountID *uuid.UUID, customerID string) (uuid.UUID, error) {
	query := `
		SELECT id FROM accounts
		WHERE ($1::uuid IS NOT NULL AND id = $1)
		   OR ($2 <> '' AND billing_customer_id = $2)
		ORDER BY (id = $1) DESC NULLS LAST
		LIMIT 1
	`
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, query, accountID, customerID).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, billing.ErrAccountUnresolved
	}
	if err != nil {
		return uuid.Nil, fmt.Errorf("resolve account: %w", err)
	}
	return id, nil
}

// Apply inserts the idempotency row first, so a concurrent redelivery
// fails on the unique constraint before touching the account.
func (r *postgresRepository) Apply(ctx context.Context, event billing.Event, state *account.PlanState) error {
	return pkgdb.WithTransaction(ctx, r.pool, func(tx pgx.Tx) error {
		insert := `
			INSERT INTO billing_events (id, provider, event_id, event_type, account_id, amount, currency)
			VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		`
		_, err := tx.Exec(ctx, insert,
			event.ID, event.Provider, event.EventID, event.EventType,
			event.AccountID, event.Amount, event.Currency,
		)
		if constraint, ok := database.IsUniqueViolation(err); ok && constraint == database.ConstraintBillingEvent {
			return billing.ErrEventAlreadyProcessed
		}
		if err != nil {
			return fmt.Errorf("insert billing event: %w", err)
		}

		if state == nil || event.AccountID == nil {
			return nil
		}

		update := `
			UPDATE accounts
			SET plan = $2,
				billing_period = $3,
				subscription_end = COALESCE($4, subscription_end),
				billing_customer_id = COALESCE($5, billing_customer_id),
				updated_at = NOW()
			WHERE id = $1
		`
		tag, err := tx.Exec(ctx, update,
			*event.AccountID, state.Plan, state.BillingPeriod, state.SubscriptionEnd, state.BillingCustomerID,
		)
		if err != nil {
			return fmt.Errorf("update plan state: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return account.ErrAccountNotFound
		}
		return nil
	})
}
