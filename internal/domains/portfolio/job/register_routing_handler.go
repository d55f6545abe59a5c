package job

import (
	"context"
	"encoding/json"
	"fmt"

	"folio-backend/internal/domains/portfolio"
	"folio-backend/internal/shared"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// RegisterRoutingHandler retries attaching a verified domain to the routing
// provider. Returning an error lets asynq back off and retry.
type RegisterRoutingHandler struct {
	domains portfolio.DomainService
}

func NewRegisterRoutingHandler(domains portfolio.DomainService) *RegisterRoutingHandler {
	return &RegisterRoutingHandler{domains: domains}
}

func (h *RegisterRoutingHandler) ProcessTask(ctx context.Context, task *asynq.Task) error {
	var payload shared.RegisterRoutingPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		log.Error().Err(err).Msg("Failed to unmarshal RegisterRouting payload")
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}

	portfolioID, err := uuid.Parse(payload.PortfolioID)
	if err != nil {
		return fmt.Errorf("parse portfolio id: %w: %w", err, asynq.SkipRetry)
	}

	if err := h.domains.RegisterRouting(ctx, portfolioID, payload.Domain); err != nil {
		log.Warn().
			Err(err).
			Str("portfolio_id", payload.PortfolioID).
			Str("domain", payload.Domain).
			Msg("Routing registration attempt failed")
		return fmt.Errorf("register routing: %w", err)
	}
	return nil
}
