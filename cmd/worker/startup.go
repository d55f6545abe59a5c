package main

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"folio-backend/pkg/container"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// startServices checks the worker's dependencies and exposes a small
// health endpoint for the orchestrator.
func startServices(ctx context.Context, c *container.Container, cfg *Config) error {
	checks := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"redis", c.Redis.HealthCheck},
		{"database", c.DB.HealthCheck},
	}

	for _, check := range checks {
		checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		err := check.fn(checkCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("%s check failed: %w", check.name, err)
		}
		log.Info().Str("check", check.name).Msg("[Startup] ok")
	}

	go startHealthCheckServer(c, cfg.HealthAddr)
	return nil
}

func startHealthCheckServer(c *container.Container, addr string) {
	router := gin.New()
	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "UP", "service": "folio-worker", "routing": c.Routing.Name()})
	})
	router.GET("/ready", func(ctx *gin.Context) {
		if err := c.Redis.HealthCheck(ctx.Request.Context()); err != nil {
			ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "NOT_READY"})
			return
		}
		ctx.JSON(http.StatusOK, gin.H{"status": "READY"})
	})

	log.Info().Str("addr", addr).Msg("[Health] listening")
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Error().Err(err).Msg("[Health] server stopped")
	}
}
