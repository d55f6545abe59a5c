package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"folio-backend/internal/domains/billing"
	"folio-backend/internal/domains/plan"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// =====================================================
// RAZORPAY WEBHOOK VERIFICATION
// =====================================================

// annualThreshold separates monthly from annual cycles when the
// subscription notes do not name the period.
const annualThreshold = 300 * 24 * time.Hour

type RazorpayVerifier struct {
	secret string
}

func NewRazorpayVerifier(secret string) *RazorpayVerifier {
	return &RazorpayVerifier{secret: secret}
}

type razorpayEvent struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Subscription *struct {
			Entity razorpaySubscription `json:"entity"`
		} `json:"subscription"`
		Payment *struct {
			Entity razorpayPayment `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type razorpaySubscription struct {
	ID           string            `json:"id"`
	CustomerID   string            `json:"customer_id"`
	Status       string            `json:"status"`
	CurrentStart int64             `json:"current_start"`
	CurrentEnd   int64             `json:"current_end"`
	Notes        map[string]string `json:"notes"`
}

type razorpayPayment struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"` // paise
	Currency string `json:"currency"`
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// Parse verifies X-Razorpay-Signature over the raw body and maps
// subscription lifecycle events. The event id is derived from the body;
// callers override it with the X-Razorpay-Event-Id header when present.
func (v *RazorpayVerifier) Parse(payload []byte, signature string) (*billing.Notification, error) {
	if v.secret == "" {
		return nil, fmt.Errorf("%w: razorpay webhook secret not configured", billing.ErrInvalidSignature)
	}
	expected := Sign(payload, v.secret)
	if !hmac.Equal([]byte(expected), []byte(strings.ToLower(strings.TrimSpace(signature)))) {
		return nil, billing.ErrInvalidSignature
	}

	var evt razorpayEvent
	if err := json.Unmarshal(payload, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", billing.ErrMalformedPayload, err)
	}

	n := &billing.Notification{
		Provider:  billing.ProviderRazorpay,
		EventType: evt.Event,
		Action:    billing.ActionIgnore,
	}

	switch evt.Event {
	case "subscription.activated", "subscription.charged":
		n.Action = billing.ActionActivate
	case "subscription.cancelled", "subscription.halted", "subscription.completed":
		n.Action = billing.ActionDeactivate
	default:
		n.EventID = fmt.Sprintf("%s:%d", evt.Event, evt.CreatedAt)
		return n, nil
	}

	if evt.Payload.Subscription == nil {
		return nil, fmt.Errorf("%w: %s without subscription entity", billing.ErrMalformedPayload, evt.Event)
	}
	sub := evt.Payload.Subscription.Entity

	n.EventID = fmt.Sprintf("%s:%s:%d", sub.ID, evt.Event, evt.CreatedAt)
	n.CustomerID = sub.CustomerID
	if raw, ok := sub.Notes["account_id"]; ok {
		if id, err := uuid.Parse(raw); err == nil {
			n.AccountID = &id
		}
	}

	if evt.Payload.Payment != nil {
		pay := evt.Payload.Payment.Entity
		n.Amount = decimal.New(pay.Amount, -2)
		n.Currency = pay.Currency
	}

	if n.Action == billing.ActionDeactivate {
		return n, nil
	}

	if sub.CurrentEnd == 0 {
		return nil, fmt.Errorf("%w: subscription %s has no current_end", billing.ErrMalformedPayload, sub.ID)
	}
	n.PeriodEnd = time.Unix(sub.CurrentEnd, 0).UTC()
	n.Period = razorpayPeriod(sub)
	return n, nil
}

func razorpayPeriod(sub razorpaySubscription) plan.BillingPeriod {
	if p := plan.BillingPeriod(sub.Notes["period"]); p.Valid() {
		return p
	}
	if sub.CurrentStart > 0 && time.Duration(sub.CurrentEnd-sub.CurrentStart)*time.Second >= annualThreshold {
		return plan.Annual
	}
	return plan.Monthly
}
