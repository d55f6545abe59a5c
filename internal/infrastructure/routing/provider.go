package routing

import (
	"context"
	"fmt"

	"folio-backend/internal/config"
)

// Provider attaches a verified custom domain to the hosting edge.
type Provider interface {
	RegisterDomain(ctx context.Context, domain string) error
	Name() string
}

// NewProvider picks the provider configured in ROUTING_PROVIDER.
func NewProvider(cfg config.RoutingConfig) (Provider, error) {
	switch cfg.Provider {
	case "vercel":
		return NewVercelClient(cfg), nil
	case "noop", "":
		return NoopProvider{}, nil
	default:
		return nil, fmt.Errorf("unknown routing provider %q", cfg.Provider)
	}
}
