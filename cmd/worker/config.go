package main

import (
	"os"
	"strconv"

	"folio-backend/internal/config"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Config holds the worker-only settings; everything else comes from the
// shared application config.
type Config struct {
	Redis       asynq.RedisClientOpt
	Concurrency int
	HealthAddr  string
}

func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		Redis: asynq.RedisClientOpt{
			Addr:     app.Redis.Host,
			Password: app.Redis.Password,
			DB:       app.Redis.DB,
		},
		Concurrency: 10,
		HealthAddr:  ":9999",
	}
	if v, err := strconv.Atoi(os.Getenv("WORKER_CONCURRENCY")); err == nil && v > 0 {
		cfg.Concurrency = v
	}
	if v := os.Getenv("WORKER_HEALTH_ADDR"); v != "" {
		cfg.HealthAddr = v
	}

	log.Info().
		Str("redis", cfg.Redis.Addr).
		Int("concurrency", cfg.Concurrency).
		Msg("[Config] worker configured")
	return cfg
}
