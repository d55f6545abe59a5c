package routing

import (
	"context"

	"github.com/rs/zerolog/log"
)

// NoopProvider accepts every registration. Used in development.
type NoopProvider struct{}

func (NoopProvider) Name() string { return "noop" }

func (NoopProvider) RegisterDomain(_ context.Context, domain string) error {
	log.Debug().Str("domain", domain).Msg("[ROUTING] noop registration")
	return nil
}
