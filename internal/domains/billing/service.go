package billing

import "context"

type Service interface {
	HandleStripe(ctx context.Context, payload []byte, signature string) (*Outcome, error)
	HandleRazorpay(ctx context.Context, payload []byte, signature, eventID string) (*Outcome, error)
}

// Verifier checks a delivery signature and decodes the event.
type Verifier interface {
	Parse(payload []byte, signature string) (*Notification, error)
}
