package repository

import (
	"context"
	"fmt"
	"time"

	"folio-backend/internal/domains/analytics"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type postgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) analytics.Repository {
	return &postgresRepository{pool: pool}
}

func (r *postgresRepository) Append(ctx context.Context, e *analytics.Event) error {
	query := `
		INSERT INTO analytics_events (
			portfolio_id, event_type, target, depth,
			ip_address, user_agent, referrer, device_class, occurred_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		e.PortfolioID, e.Type, e.Target, e.Depth,
		e.IPAddress, e.UserAgent, e.Referrer, e.DeviceClass, e.OccurredAt,
	)
	if err != nil {
		return fmt.Errorf("append analytics event: %w", err)
	}
	return nil
}

func (r *postgresRepository) Counts(ctx context.Context, portfolioID uuid.UUID, since time.Time) ([]analytics.Count, error) {
	query := `
		SELECT event_type, device_class, COUNT(*)
		FROM analytics_events
		WHERE portfolio_id = $1 AND occurred_at >= $2
		GROUP BY event_type, device_class
	`
	rows, err := r.pool.Query(ctx, query, portfolioID, since)
	if err != nil {
		return nil, fmt.Errorf("count analytics events: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.Count, error) {
		var c analytics.Count
		err := row.Scan(&c.EventType, &c.DeviceClass, &c.Total)
		return c, err
	})
}

func (r *postgresRepository) DailyViews(ctx context.Context, portfolioID uuid.UUID, since time.Time) ([]analytics.DailyCount, error) {
	query := `
		SELECT date_trunc('day', occurred_at AT TIME ZONE 'UTC') AS day, COUNT(*)
		FROM analytics_events
		WHERE portfolio_id = $1 AND occurred_at >= $2 AND event_type = 'page_view'
		GROUP BY day
		ORDER BY day
	`
	rows, err := r.pool.Query(ctx, query, portfolioID, since)
	if err != nil {
		return nil, fmt.Errorf("daily analytics views: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (analytics.DailyCount, error) {
		var d analytics.DailyCount
		err := row.Scan(&d.Day, &d.Views)
		return d, err
	})
}
