package main

import (
	"github.com/hibiken/asynq"

	portfolioJob "folio-backend/internal/domains/portfolio/job"
	"folio-backend/internal/shared"
	"folio-backend/pkg/container"
)

// HandlerRegistry holds all job handlers
type HandlerRegistry struct {
	registerRouting *portfolioJob.RegisterRoutingHandler
	sweepUnrouted   *portfolioJob.SweepUnroutedHandler
}

func initializeHandlers(c *container.Container) *HandlerRegistry {
	return &HandlerRegistry{
		registerRouting: portfolioJob.NewRegisterRoutingHandler(c.DomainService),
		sweepUnrouted:   portfolioJob.NewSweepUnroutedHandler(c.DomainService),
	}
}

// RegisterHandlers registers all handlers with the mux
func (h *HandlerRegistry) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(shared.TypeRegisterRouting, h.registerRouting.ProcessTask)
	mux.HandleFunc(shared.TypeSweepUnrouted, h.sweepUnrouted.ProcessTask)
}
