package billing

import (
	"time"

	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Provider string

const (
	ProviderStripe   Provider = "stripe"
	ProviderRazorpay Provider = "razorpay"
)

// Action is what a provider event means for the account's plan.
type Action string

const (
	ActionActivate   Action = "activate"
	ActionDeactivate Action = "deactivate"
	ActionIgnore     Action = "ignore"
)

// Notification is a verified provider event reduced to what the plan
// state needs.
type Notification struct {
	Provider  Provider
	EventID   string
	EventType string
	Action    Action

	// AccountID comes from checkout metadata; CustomerID is the provider's
	// customer reference. Either locates the account.
	AccountID  *uuid.UUID
	CustomerID string

	Period    plan.BillingPeriod
	PeriodEnd time.Time

	Amount   decimal.Decimal
	Currency string
}

// Event is the stored idempotency record for one delivery.
type Event struct {
	ID        uuid.UUID
	Provider  Provider
	EventID   string
	EventType string
	AccountID *uuid.UUID
	Amount    *decimal.Decimal
	Currency  string
}

// Outcome is returned to the provider and logged.
type Outcome struct {
	EventID   string     `json:"eventId"`
	EventType string     `json:"eventType"`
	Action    Action     `json:"action"`
	AccountID *uuid.UUID `json:"accountId,omitempty"`
	Duplicate bool       `json:"duplicate,omitempty"`
}
