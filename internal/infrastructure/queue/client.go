package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"folio-backend/internal/shared"

	"github.com/hibiken/asynq"
)

// TaskEnqueuer wraps the asynq client with typed enqueue helpers.
type TaskEnqueuer struct {
	client *asynq.Client
}

func NewTaskEnqueuer(client *asynq.Client) *TaskEnqueuer {
	return &TaskEnqueuer{client: client}
}

// EnqueueRegisterRouting schedules a routing registration retry. The task
// id is derived from portfolio and domain so duplicates collapse.
func (e *TaskEnqueuer) EnqueueRegisterRouting(ctx context.Context, portfolioID, domain string, delay time.Duration) error {
	payload, err := json.Marshal(shared.RegisterRoutingPayload{
		PortfolioID: portfolioID,
		Domain:      domain,
	})
	if err != nil {
		return fmt.Errorf("marshal routing payload: %w", err)
	}

	task := asynq.NewTask(shared.TypeRegisterRouting, payload)
	_, err = e.client.EnqueueContext(ctx, task,
		asynq.Queue(shared.QueueDomain),
		asynq.MaxRetry(8),
		asynq.ProcessIn(delay),
		asynq.TaskID(fmt.Sprintf("routing:%s:%s", portfolioID, domain)),
		asynq.Retention(time.Hour),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue routing task: %w", err)
	}
	return nil
}
