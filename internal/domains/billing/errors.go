package billing

import "errors"

var (
	ErrInvalidSignature      = errors.New("invalid webhook signature")
	ErrMalformedPayload      = errors.New("malformed webhook payload")
	ErrEventAlreadyProcessed = errors.New("webhook event already processed")
	ErrAccountUnresolved     = errors.New("no account matches the billing event")
)
