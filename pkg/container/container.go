package container

import (
	"context"
	"fmt"
	"time"

	"folio-backend/internal/config"
	"folio-backend/internal/domains/account"
	accountHandler "folio-backend/internal/domains/account/handler"
	accountRepo "folio-backend/internal/domains/account/repository"
	accountService "folio-backend/internal/domains/account/service"
	"folio-backend/internal/domains/analytics"
	analyticsHandler "folio-backend/internal/domains/analytics/handler"
	analyticsRepo "folio-backend/internal/domains/analytics/repository"
	analyticsService "folio-backend/internal/domains/analytics/service"
	"folio-backend/internal/domains/billing"
	"folio-backend/internal/domains/billing/gateway"
	billingHandler "folio-backend/internal/domains/billing/handler"
	billingRepo "folio-backend/internal/domains/billing/repository"
	billingService "folio-backend/internal/domains/billing/service"
	"folio-backend/internal/domains/plan"
	"folio-backend/internal/domains/portfolio"
	portfolioHandler "folio-backend/internal/domains/portfolio/handler"
	portfolioRepo "folio-backend/internal/domains/portfolio/repository"
	portfolioService "folio-backend/internal/domains/portfolio/service"
	"folio-backend/internal/domains/upload"
	uploadHandler "folio-backend/internal/domains/upload/handler"
	uploadService "folio-backend/internal/domains/upload/service"
	"folio-backend/internal/infrastructure/cache"
	"folio-backend/internal/infrastructure/database"
	"folio-backend/internal/infrastructure/dns"
	"folio-backend/internal/infrastructure/queue"
	"folio-backend/internal/infrastructure/routing"
	"folio-backend/internal/infrastructure/storage"
	"folio-backend/internal/shared/middleware"
	"folio-backend/pkg/jwt"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"
)

// Container owns every long lived dependency of the process. Layers are
// built in order: infrastructure, repositories, services, handlers.
type Container struct {
	Config *config.Config
	Clock  plan.Clock

	// Infrastructure
	DB          *database.PostgresDB
	Redis       *cache.RedisClient
	Cache       *cache.RedisCache
	Storage     *storage.MinIOStorage
	Images      *storage.ImageProcessor
	AsynqClient *asynq.Client
	Tasks       *queue.TaskEnqueuer
	Resolver    *dns.Resolver
	Routing     routing.Provider
	JWTManager  *jwt.Manager
	VerifyLimit *middleware.IPRateLimiter

	// Repositories
	AccountRepo   account.Repository
	PortfolioRepo portfolio.Repository
	BillingRepo   billing.Repository
	AnalyticsRepo analytics.Repository

	// Services
	AccountService   account.Service
	PortfolioService portfolio.Service
	DomainService    portfolio.DomainService
	PublicService    portfolio.PublicService
	BillingService   billing.Service
	UploadService    upload.Service
	AnalyticsService analytics.Service

	// Handlers
	AccountHandler   *accountHandler.AccountHandler
	PortfolioHandler *portfolioHandler.PortfolioHandler
	DomainHandler    *portfolioHandler.DomainHandler
	PublicHandler    *portfolioHandler.PublicHandler
	WebhookHandler   *billingHandler.WebhookHandler
	UploadHandler    *uploadHandler.UploadHandler
	AnalyticsHandler *analyticsHandler.AnalyticsHandler
}

// NewContainer loads config, connects to Postgres, Redis and MinIO, runs
// pending migrations and wires every layer.
func NewContainer(ctx context.Context) (*Container, error) {
	c := &Container{Clock: plan.SystemClock{}}

	// ========================================
	// STEP 1: CONFIG
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg

	// ========================================
	// STEP 2: DATABASE
	// ========================================
	c.DB = database.NewPostgresDB(cfg.DBConfig())

	connectCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if err := c.DB.Connect(connectCtx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := c.DB.HealthCheck(connectCtx); err != nil {
		c.Close()
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	if err := c.DB.Migrate(ctx); err != nil {
		c.Close()
		return nil, err
	}
	log.Info().Msg("[CONTAINER] database ready")

	if err := c.initInfrastructure(ctx); err != nil {
		c.Close()
		return nil, err
	}

	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Info().Str("routing", c.Routing.Name()).Msg("[CONTAINER] initialized")
	return c, nil
}

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config

	// ========================================
	// STEP 3: REDIS
	// ========================================
	c.Redis = cache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		// Public pages fall through to Postgres on cache errors.
		log.Warn().Err(err).Msg("[CONTAINER] redis unavailable, serving without cache")
	}
	c.Cache = cache.NewRedisCache(c.Redis.Client, "folio:")

	c.AsynqClient = asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	c.Tasks = queue.NewTaskEnqueuer(c.AsynqClient)

	// ========================================
	// STEP 4: OBJECT STORAGE
	// ========================================
	objects, err := storage.NewMinIOStorage(ctx, cfg.MinIO)
	if err != nil {
		return fmt.Errorf("failed to init object storage: %w", err)
	}
	c.Storage = objects
	c.Images = storage.NewImageProcessor(cfg.Storage.MaxUploadBytes)

	// ========================================
	// STEP 5: DOMAINS
	// ========================================
	c.Resolver = dns.NewResolver(cfg.Domain.DNSServer, cfg.Domain.LookupTimeout)
	provider, err := routing.NewProvider(cfg.Routing)
	if err != nil {
		return fmt.Errorf("failed to init routing provider: %w", err)
	}
	c.Routing = provider

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, time.Duration(cfg.JWT.AccessTokenExpiry)*time.Minute)
	c.VerifyLimit = middleware.NewIPRateLimiter(cfg.RateLimit.VerifyPerSecond, cfg.RateLimit.VerifyBurst)
	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.AccountRepo = accountRepo.NewPostgresRepository(pool)
	c.PortfolioRepo = portfolioRepo.NewPostgresRepository(pool)
	c.BillingRepo = billingRepo.NewPostgresRepository(pool)
	c.AnalyticsRepo = analyticsRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	cfg := c.Config
	quotas := plan.Quotas{Free: cfg.Storage.FreeQuotaBytes, Pro: cfg.Storage.ProQuotaBytes}

	c.AccountService = accountService.NewAccountService(
		c.AccountRepo,
		c.JWTManager,
		c.Clock,
		accountService.Config{Quotas: quotas},
	)

	c.PortfolioService = portfolioService.NewPortfolioService(
		c.PortfolioRepo,
		c.AccountRepo,
		c.Cache,
		c.Clock,
	)

	c.DomainService = portfolioService.NewDomainService(
		c.PortfolioRepo,
		c.AccountRepo,
		c.Resolver,
		c.Routing,
		c.Tasks,
		c.Cache,
		c.Clock,
		portfolioService.DomainConfig{
			VerificationPrefix: cfg.Domain.VerificationPrefix,
			TXTHostPrefix:      cfg.Domain.TXTHostPrefix,
		},
	)

	c.PublicService = portfolioService.NewPublicService(
		c.PortfolioRepo,
		c.AccountRepo,
		c.Cache,
		c.Clock,
		cfg.Cache.PublicTTL,
	)

	c.BillingService = billingService.NewBillingService(
		c.BillingRepo,
		gateway.NewStripeVerifier(cfg.Billing.StripeWebhookSecret),
		gateway.NewRazorpayVerifier(cfg.Billing.RazorpayWebhookSecret),
	)

	c.UploadService = uploadService.NewUploadService(
		c.AccountRepo,
		c.AccountService,
		c.Storage,
		c.Images,
		quotas,
		c.Clock,
	)

	c.AnalyticsService = analyticsService.NewAnalyticsService(c.AnalyticsRepo, c.PortfolioRepo, c.Clock)
}

func (c *Container) initHandlers() {
	c.AccountHandler = accountHandler.NewAccountHandler(c.AccountService)
	c.PortfolioHandler = portfolioHandler.NewPortfolioHandler(c.PortfolioService)
	c.DomainHandler = portfolioHandler.NewDomainHandler(c.DomainService)
	c.PublicHandler = portfolioHandler.NewPublicHandler(c.PublicService)
	c.WebhookHandler = billingHandler.NewWebhookHandler(c.BillingService)
	c.UploadHandler = uploadHandler.NewUploadHandler(c.UploadService, c.Config.Storage.MaxUploadBytes)
	c.AnalyticsHandler = analyticsHandler.NewAnalyticsHandler(c.AnalyticsService)
}

// Close releases connections in reverse order. Safe on a partially built
// container.
func (c *Container) Close() {
	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close asynq client")
		}
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Warn().Err(err).Msg("[CONTAINER] failed to close redis")
		}
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
	log.Info().Msg("[CONTAINER] resources released")
}
