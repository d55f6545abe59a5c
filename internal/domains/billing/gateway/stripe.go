package gateway

import (
	"encoding/json"
	"fmt"
	"time"

	"folio-backend/internal/domains/billing"
	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/webhook"
)

// =====================================================
// STRIPE WEBHOOK VERIFICATION
// =====================================================

type StripeVerifier struct {
	secret string
}

func NewStripeVerifier(secret string) *StripeVerifier {
	return &StripeVerifier{secret: secret}
}

// Parse verifies the Stripe-Signature header and maps subscription events.
// Other event types come back with ActionIgnore.
func (v *StripeVerifier) Parse(payload []byte, signature string) (*billing.Notification, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: stripe webhook secret not configured", billing.ErrInvalidSignature)
	}

	event, err := webhook.ConstructEventWithOptions(payload, signature, v.secret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrInvalidSignature, err)
	}

	n := &billing.Notification{
		Provider:  billing.ProviderStripe,
		EventID:   event.ID,
		EventType: string(event.Type),
		Action:    billing.ActionIgnore,
	}

	switch event.Type {
	case stripe.EventTypeCustomerSubscriptionCreated,
		stripe.EventTypeCustomerSubscriptionUpdated,
		stripe.EventTypeCustomerSubscriptionDeleted:
	default:
		return n, nil
	}

	if event.Data == nil {
		return nil, billing.ErrMalformedPayload
	}
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrMalformedPayload, err)
	}

	if sub.Customer != nil {
		n.CustomerID = sub.Customer.ID
	}
	if raw, ok := sub.Metadata["account_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			n.AccountID = &id
		}
	}

	if event.Type == stripe.EventTypeCustomerSubscriptionDeleted || !stripeEntitled(sub.Status) {
		n.Action = billing.ActionDeactivate
		return n, nil
	}

	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return nil, fmt.Errorf("%w: subscription %s has no items", billing.ErrMalformedPayload, sub.ID)
	}
	item := sub.Items.Data[0]
	if item.CurrentPeriodEnd == 0 {
		return nil, fmt.Errorf("%w: subscription %s has no period end", billing.ErrMalformedPayload, sub.ID)
	}

	n.Action = billing.ActionActivate
	n.PeriodEnd = time.Unix(item.CurrentPeriodEnd, 0).UTC()
	n.Period = plan.Monthly
	if item.Price != nil {
		if item.Price.Recurring != nil && item.Price.Recurring.Interval == stripe.PriceRecurringIntervalYear {
			n.Period = plan.Annual
		}
		n.Amount = decimal.New(item.Price.UnitAmount, -2)
		n.Currency = string(item.Price.Currency)
	}
	return n, nil
}

// stripeEntitled lists the statuses that keep the pro plan until the
// current period ends.
func stripeEntitled(status stripe.SubscriptionStatus) bool {
	switch status {
	case stripe.SubscriptionStatusActive,
		stripe.SubscriptionStatusTrialing,
		stripe.SubscriptionStatusPastDue:
		return true
	}
	return false
}
