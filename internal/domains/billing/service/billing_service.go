package service

import (
	"context"
	"errors"
	"fmt"

	"folio-backend/internal/domains/account"
	"folio-backend/internal/domains/billing"
	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type billingService struct {
	repo     billing.Repository
	stripe   billing.Verifier
	razorpay billing.Verifier
}

func NewBillingService(repo billing.Repository, stripe, razorpay billing.Verifier) billing.Service {
	return &billingService{repo: repo, stripe: stripe, razorpay: razorpay}
}

func (s *billingService) HandleStripe(ctx context.Context, payload []byte, signature string) (*billing.Outcome, error) {
	n, err := s.stripe.Parse(payload, signature)
	if err != nil {
		return nil, err
	}
	return s.apply(ctx, n)
}

func (s *billingService) HandleRazorpay(ctx context.Context, payload []byte, signature, eventID string) (*billing.Outcome, error) {
	n, err := s.razorpay.Parse(payload, signature)
	if err != nil {
		return nil, err
	}
	if eventID != "" {
		n.EventID = eventID
	}
	return s.apply(ctx, n)
}

// apply turns a verified notification into a plan state change. Unknown
// event types and unmatched accounts are acknowledged without writes so
// the provider stops redelivering them.
func (s *billingService) apply(ctx context.Context, n *billing.Notification) (*billing.Outcome, error) {
	out := &billing.Outcome{EventID: n.EventID, EventType: n.EventType, Action: n.Action}

	logger := log.With().
		Str("provider", string(n.Provider)).
		Str("event_id", n.EventID).
		Str("event_type", n.EventType).
		Logger()

	if n.Action == billing.ActionIgnore {
		logger.Debug().Msg("billing event ignored")
		return out, nil
	}

	accountID, err := s.repo.ResolveAccount(ctx, n.AccountID, n.CustomerID)
	if errors.Is(err, billing.ErrAccountUnresolved) {
		logger.Warn().Str("customer_id", n.CustomerID).Msg("billing event for unknown account")
		out.Action = billing.ActionIgnore
		return out, nil
	}
	if err != nil {
		return nil, err
	}
	out.AccountID = &accountID

	event := billing.Event{
		ID:        uuid.New(),
		Provider:  n.Provider,
		EventID:   n.EventID,
		EventType: n.EventType,
		AccountID: &accountID,
		Currency:  n.Currency,
	}
	if !n.Amount.IsZero() {
		amount := n.Amount
		event.Amount = &amount
	}

	err = s.repo.Apply(ctx, event, planState(n))
	if errors.Is(err, billing.ErrEventAlreadyProcessed) {
		logger.Info().Msg("duplicate billing event acknowledged")
		out.Duplicate = true
		return out, nil
	}
	if err != nil {
		return nil, fmt.Errorf("apply billing event: %w", err)
	}

	e := logger.Info().Str("account_id", accountID.String()).Str("action", string(n.Action))
	if n.Action == billing.ActionActivate {
		e = e.Time("subscription_end", n.PeriodEnd).Str("period", string(n.Period))
	}
	if !n.Amount.IsZero() {
		e = e.Str("amount", n.Amount.StringFixed(2)).Str("currency", n.Currency)
	}
	e.Msg("plan state updated from billing event")

	return out, nil
}

// planState builds the stored plan fields for n. A deactivation keeps the
// subscription end on record.
func planState(n *billing.Notification) *account.PlanState {
	state := &account.PlanState{Plan: plan.Free}
	if n.CustomerID != "" {
		customer := n.CustomerID
		state.BillingCustomerID = &customer
	}
	if n.Action != billing.ActionActivate {
		return state
	}

	period, end := n.Period, n.PeriodEnd
	state.Plan = plan.Pro
	state.BillingPeriod = &period
	state.SubscriptionEnd = &end
	return state
}
