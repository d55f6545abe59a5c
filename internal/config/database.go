package config

import (
	"folio-backend/internal/infrastructure/database"
)

// DBConfig maps the Database section onto the pool settings used by
// database.PostgresDB.
func (c *Config) DBConfig() *database.DBConfig {
	d := c.Database
	if d.MaxRetries < 1 {
		d.MaxRetries = 1
	}
	return &database.DBConfig{
		Host:              d.Host,
		Port:              d.Port,
		Username:          d.User,
		Password:          d.Password,
		DBName:            d.Database,
		SSLMode:           d.SSLMode,
		MaxConns:          int32(d.MaxConns),
		MinConns:          int32(d.MinConns),
		MaxConnLifetime:   d.MaxConnLifetime,
		MaxConnIdleTime:   d.MaxConnIdleTime,
		HealthCheckPeriod: d.HealthCheckPeriod,
		MaxRetries:        d.MaxRetries,
		RetryDelay:        d.RetryDelay,
		ConnectTimeout:    d.ConnectTimeout,
	}
}
