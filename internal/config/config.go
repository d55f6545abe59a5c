package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	Storage   StorageConfig
	Domain    DomainConfig
	Routing   RoutingConfig
	Billing   BillingConfig
	RateLimit RateLimitConfig
	Cache     CacheConfig
}

type AppConfig struct {
	Name          string
	Environment   string // development, staging, production
	Port          string
	Version       string
	LogLevel      string
	PublicBaseURL string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
	SSLMode  string
	MaxConns int
	MinConns int

	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	MaxRetries        int
	RetryDelay        time.Duration
	ConnectTimeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret            string
	AccessTokenExpiry int // minutes
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// StorageConfig sets per-plan upload quotas in bytes.
type StorageConfig struct {
	FreeQuotaBytes int64
	ProQuotaBytes  int64
	MaxUploadBytes int64
}

// =====================================================
// DOMAIN VERIFICATION
// =====================================================

type DomainConfig struct {
	VerificationPrefix string        // token = <prefix>-<portfolioId>
	TXTHostPrefix      string        // lookup host = <prefix>.<domain>
	DNSServer          string        // optional "host:port" override
	LookupTimeout      time.Duration // per TXT lookup
}

type RoutingConfig struct {
	Provider  string // vercel, noop
	APIURL    string
	Token     string
	ProjectID string
	TeamID    string
	Timeout   time.Duration
}

type BillingConfig struct {
	StripeWebhookSecret   string
	RazorpayWebhookSecret string
}

type RateLimitConfig struct {
	VerifyPerSecond float64
	VerifyBurst     int
}

type CacheConfig struct {
	PublicTTL time.Duration
}

// Load reads config from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:          getEnv("APP_NAME", "Folio API"),
			Environment:   getEnv("APP_ENV", "development"),
			Port:          getEnv("APP_PORT", "8080"),
			Version:       getEnv("APP_VERSION", "1.0.0"),
			LogLevel:      getEnv("LOG_LEVEL", "info"),
			PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "folio"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvInt("DB_MAX_CONNS", 25),
			MinConns: getEnvInt("DB_MIN_CONNS", 5),

			MaxConnLifetime:   getEnvDuration("DB_MAX_CONN_LIFETIME", 5*time.Minute),
			MaxConnIdleTime:   getEnvDuration("DB_MAX_CONN_IDLE_TIME", time.Minute),
			HealthCheckPeriod: getEnvDuration("DB_HEALTH_CHECK_PERIOD", time.Minute),
			MaxRetries:        getEnvInt("DB_MAX_RETRIES", 5),
			RetryDelay:        getEnvDuration("DB_RETRY_DELAY", time.Second),
			ConnectTimeout:    getEnvDuration("DB_CONNECT_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenExpiry: getEnvInt("JWT_ACCESS_EXPIRY", 60),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "folio"),
			UseSSL:    getEnvBool("MINIO_USE_SSL", false),
		},
		Storage: StorageConfig{
			FreeQuotaBytes: getEnvInt64("STORAGE_FREE_QUOTA_BYTES", 25<<20),
			ProQuotaBytes:  getEnvInt64("STORAGE_PRO_QUOTA_BYTES", 1<<30),
			MaxUploadBytes: getEnvInt64("STORAGE_MAX_UPLOAD_BYTES", 10<<20),
		},
		Domain: DomainConfig{
			VerificationPrefix: getEnv("DOMAIN_VERIFICATION_PREFIX", "folio-verify"),
			TXTHostPrefix:      getEnv("DOMAIN_TXT_HOST_PREFIX", "_verify"),
			DNSServer:          getEnv("DOMAIN_DNS_SERVER", ""),
			LookupTimeout:      getEnvDuration("DOMAIN_LOOKUP_TIMEOUT", 5*time.Second),
		},
		Routing: RoutingConfig{
			Provider:  strings.ToLower(getEnv("ROUTING_PROVIDER", "noop")),
			APIURL:    getEnv("ROUTING_API_URL", "https://api.vercel.com"),
			Token:     getEnv("ROUTING_TOKEN", ""),
			ProjectID: getEnv("ROUTING_PROJECT_ID", ""),
			TeamID:    getEnv("ROUTING_TEAM_ID", ""),
			Timeout:   getEnvDuration("ROUTING_TIMEOUT", 10*time.Second),
		},
		Billing: BillingConfig{
			StripeWebhookSecret:   getEnv("STRIPE_WEBHOOK_SECRET", ""),
			RazorpayWebhookSecret: getEnv("RAZORPAY_WEBHOOK_SECRET", ""),
		},
		RateLimit: RateLimitConfig{
			VerifyPerSecond: getEnvFloat("RATE_LIMIT_VERIFY_RPS", 0.2),
			VerifyBurst:     getEnvInt("RATE_LIMIT_VERIFY_BURST", 3),
		},
		Cache: CacheConfig{
			PublicTTL: getEnvDuration("CACHE_PUBLIC_TTL", 5*time.Minute),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate refuses unsafe production settings.
func (c *Config) Validate() error {
	if c.Routing.Provider != "vercel" && c.Routing.Provider != "noop" {
		return fmt.Errorf("ROUTING_PROVIDER must be vercel or noop, got %q", c.Routing.Provider)
	}
	if c.Database.MinConns > c.Database.MaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) exceeds DB_MAX_CONNS (%d)", c.Database.MinConns, c.Database.MaxConns)
	}
	if c.Storage.FreeQuotaBytes <= 0 || c.Storage.ProQuotaBytes < c.Storage.FreeQuotaBytes {
		return fmt.Errorf("storage quotas must be positive and pro >= free")
	}

	if c.App.Environment == "production" {
		if c.JWT.Secret == defaultJWTSecret {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
		if c.Routing.Provider == "vercel" && (c.Routing.Token == "" || c.Routing.ProjectID == "") {
			return fmt.Errorf("ROUTING_TOKEN and ROUTING_PROJECT_ID are required for the vercel provider")
		}

		if c.Billing.StripeWebhookSecret == "" {
			log.Warn().Msg("STRIPE_WEBHOOK_SECRET not set - Stripe webhooks will be rejected")
		}
		if c.Billing.RazorpayWebhookSecret == "" {
			log.Warn().Msg("RAZORPAY_WEBHOOK_SECRET not set - Razorpay webhooks will be rejected")
		}
	}

	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvInt64(key string, defaultValue int64) int64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseInt(valueStr, 10, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
