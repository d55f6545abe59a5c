package account

import (
	"time"

	"folio-backend/internal/domains/content"
	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
)

// Account owns portfolios and carries the stored plan state. Effective
// plan is always derived, never stored.
type Account struct {
	ID                uuid.UUID
	Email             string
	Username          string
	PasswordHash      string
	Name              string
	Plan              plan.Plan
	BillingPeriod     *plan.BillingPeriod
	SubscriptionEnd   *time.Time
	StorageUsed       int64
	BillingCustomerID *string

	// Inline content from single-portfolio accounts.
	Bio string
	content.Sections

	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a *Account) StoredPlan() plan.Plan { return a.Plan }

func (a *Account) SubscriptionExpiry() *time.Time { return a.SubscriptionEnd }

// PlanState is the full set of plan fields written by billing and operators.
type PlanState struct {
	Plan              plan.Plan
	BillingPeriod     *plan.BillingPeriod
	SubscriptionEnd   *time.Time
	BillingCustomerID *string
}
