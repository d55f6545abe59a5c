package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/content"
	"folio-backend/internal/infrastructure/database"
	"folio-backend/internal/shared"
	"folio-backend/internal/shared/utils"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const accountColumns = `
	id, email, username, password_hash, name,
	plan, billing_period, subscription_end, storage_used, billing_customer_id,
	bio, projects, experience, skills, seo_meta,
	created_at, updated_at`

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) account.Repository {
	return &postgresRepository{pool: pool}
}

// ========================================
// BASIC CRUD
// ========================================

func (r *postgresRepository) Create(ctx context.Context, a *account.Account) error {
	query := `
		INSERT INTO accounts (
			id, email, username, password_hash, name, plan
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at
	`

	err := r.pool.QueryRow(ctx, query,
		a.ID, a.Email, a.Username, a.PasswordHash, a.Name, a.Plan,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}
	return nil
}

func (r *postgresRepository) FindByID(ctx context.Context, id uuid.UUID) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE id = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, id))
}

func (r *postgresRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE email = $1`
	return r.scanOne(r.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (r *postgresRepository) UsernameTaken(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM accounts WHERE lower(username) = lower($1) AND id <> $2)`

	var taken bool
	if err := r.pool.QueryRow(ctx, query, username, excludeID).Scan(&taken); err != nil {
		return false, fmt.Errorf("check username: %w", err)
	}
	return taken, nil
}

// ApplyPatch builds one UPDATE from the sent fields.
func (r *postgresRepository) ApplyPatch(ctx context.Context, id uuid.UUID, patch account.AccountPatch) (*account.Account, error) {
	b := utils.NewUpdateBuilder()
	if patch.Name.Set {
		b.Set("name", patch.Name.Value)
	}
	if patch.Username.Set {
		b.Set("username", patch.Username.Value)
	}
	if patch.Bio.Set {
		b.Set("bio", patch.Bio.Value)
	}
	setSections(b, patch.SectionsPatch)

	if b.Empty() {
		return r.FindByID(ctx, id)
	}
	b.SetRaw("updated_at = NOW()")

	query, args := b.Build("accounts", "id", id, accountColumns)
	a, err := r.scanOne(r.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapUniqueViolation(err)
	}
	return a, nil
}

func (r *postgresRepository) ExpirePlan(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE accounts
		SET plan = 'free', billing_period = NULL, updated_at = NOW()
		WHERE id = $1 AND plan = 'pro'
	`
	if _, err := r.pool.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("expire plan: %w", err)
	}
	return nil
}

func (r *postgresRepository) SetPlanState(ctx context.Context, id uuid.UUID, state account.PlanState) error {
	query := `
		UPDATE accounts
		SET plan = $2,
			billing_period = $3,
			subscription_end = $4,
			billing_customer_id = COALESCE($5, billing_customer_id),
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, state.Plan, state.BillingPeriod, state.SubscriptionEnd, state.BillingCustomerID)
	if err != nil {
		return fmt.Errorf("set plan state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

func (r *postgresRepository) IncrementStorage(ctx context.Context, id uuid.UUID, delta int64) (int64, error) {
	query := `
		UPDATE accounts
		SET storage_used = storage_used + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING storage_used
	`
	var total int64
	err := r.pool.QueryRow(ctx, query, id, delta).Scan(&total)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, account.ErrAccountNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("increment storage: %w", err)
	}
	return total, nil
}

// ========================================
// HELPERS
// ========================================

func (r *postgresRepository) scanOne(row pgx.Row) (*account.Account, error) {
	var a account.Account
	err := row.Scan(
		&a.ID, &a.Email, &a.Username, &a.PasswordHash, &a.Name,
		&a.Plan, &a.BillingPeriod, &a.SubscriptionEnd, &a.StorageUsed, &a.BillingCustomerID,
		&a.Bio, &a.Projects, &a.Experience, &a.Skills, &a.SEOMeta,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, account.ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func setSections(b *utils.UpdateBuilder, p content.SectionsPatch) {
	if p.Projects.Set {
		b.Set("projects", nonNil(p.Projects.Value))
	}
	if p.Experience.Set {
		b.Set("experience", nonNil(p.Experience.Value))
	}
	if p.Skills.Set {
		b.Set("skills", nonNil(p.Skills.Value))
	}
	if p.SEOMeta.Set {
		b.Set("seo_meta", p.SEOMeta.Value)
	}
}

// nonNil keeps jsonb columns as [] instead of SQL NULL.
func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

func mapUniqueViolation(err error) error {
	constraint, ok := database.IsUniqueViolation(err)
	if !ok {
		return err
	}
	switch constraint {
	case database.ConstraintAccountEmail:
		return shared.Reject(shared.ErrEmailTaken, "email", err)
	case database.ConstraintAccountUsername:
		return shared.Reject(shared.ErrUsernameTaken, "username", err)
	}
	return err
}

