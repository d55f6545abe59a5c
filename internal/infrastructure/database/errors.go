package database

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Unique index names from migrations. Repositories map them to rejections.
const (
	ConstraintPortfolioSlug   = "portfolios_slug_key"
	ConstraintPortfolioDomain = "portfolios_custom_domain_key"
	ConstraintAccountEmail    = "accounts_email_key"
	ConstraintAccountUsername = "accounts_username_lower_key"
	ConstraintBillingEvent    = "billing_events_provider_event_id_key"
)

// IsUniqueViolation reports whether err is a unique_violation and returns
// the violated constraint name.
func IsUniqueViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return "", false
	}
	if pq.ErrorCode(pgErr.Code).Name() != "unique_violation" {
		return "", false
	}
	return pgErr.ConstraintName, true
}
