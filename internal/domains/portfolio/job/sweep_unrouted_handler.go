package job

import (
	"context"
	"fmt"

	"folio-backend/internal/domains/portfolio"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

const sweepBatchSize = 200

// SweepUnroutedHandler is the periodic safety net for verified domains
// whose inline registration and retries never succeeded.
type SweepUnroutedHandler struct {
	domains portfolio.DomainService
}

func NewSweepUnroutedHandler(domains portfolio.DomainService) *SweepUnroutedHandler {
	return &SweepUnroutedHandler{domains: domains}
}

func (h *SweepUnroutedHandler) ProcessTask(ctx context.Context, _ *asynq.Task) error {
	log.Info().Msg("Starting SweepUnrouted job")

	n, err := h.domains.EnqueueUnrouted(ctx, sweepBatchSize)
	if err != nil {
		return fmt.Errorf("sweep unrouted: %w", err)
	}

	log.Info().Int("enqueued", n).Msg("Completed SweepUnrouted job")
	return nil
}
