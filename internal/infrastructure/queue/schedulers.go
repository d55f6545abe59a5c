package queue

import (
	"encoding/json"
	"time"

	"folio-backend/internal/shared"
	"folio-backend/pkg/logger"

	"github.com/hibiken/asynq"
)

type Scheduler struct {
	scheduler *asynq.Scheduler
}

func NewScheduler(redisOpt asynq.RedisClientOpt) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)
	return &Scheduler{scheduler: scheduler}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerSweepUnroutedJob()
}

// ================================================
// Sweep unrouted verified domains (every 15 minutes)
// ================================================
// Picks up verified domains whose routing registration never succeeded,
// including the ones whose retry task ran out of attempts.
func (s *Scheduler) registerSweepUnroutedJob() error {
	payload, err := json.Marshal(shared.SweepUnroutedPayload{})
	if err != nil {
		return err
	}

	task := asynq.NewTask(shared.TypeSweepUnrouted, payload)

	_, err = s.scheduler.Register(
		"*/15 * * * *",
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(5*time.Minute),
		asynq.Unique(14*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register SweepUnrouted job", err)
		return err
	}

	logger.Info("Registered SweepUnrouted: every 15 minutes", map[string]interface{}{})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Run()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
