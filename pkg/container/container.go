package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hibiken/asynq"
	"github.com/shopspring/decimal"

	"course-payments/internal/config"
	courseRepo "course-payments/internal/domains/course/repository"
	enrollmentRepo "course-payments/internal/domains/enrollment/repository"
	enrollmentService "course-payments/internal/domains/enrollment/service"
	"course-payments/internal/domains/payment/gateway"
	"course-payments/internal/domains/payment/gateway/mock"
	"course-payments/internal/domains/payment/gateway/paystack"
	paymentHandler "course-payments/internal/domains/payment/handler"
	paymentRepo "course-payments/internal/domains/payment/repository"
	paymentService "course-payments/internal/domains/payment/service"
	userRepo "course-payments/internal/domains/user/repository"
	infraCache "course-payments/internal/infrastructure/cache"
	"course-payments/internal/infrastructure/database"
	"course-payments/internal/infrastructure/lms"
	"course-payments/internal/infrastructure/messaging"
	"course-payments/internal/infrastructure/notifier"
	"course-payments/internal/infrastructure/queue"
	"course-payments/pkg/cache"
	"course-payments/pkg/jwt"
)

const (
	cacheKeyPrefix = "course-payments"
	accessTokenTTL = 15 * time.Minute
)

// ========================================
// CONTAINER STRUCT
// ========================================

// Container is the root of the dependency graph, shared by cmd/api and cmd/worker.
type Container struct {
	// ========================================
	// INFRASTRUCTURE LAYER
	// ========================================
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *infraCache.RedisClient
	Cache       cache.Cache
	JWTManager  *jwt.Manager
	AsynqClient *asynq.Client
	Tasks       *queue.TaskClient
	Gateway     gateway.GatewayClient
	Kafka       *messaging.Producer // nil when disabled

	// ========================================
	// REPOSITORY LAYER
	// ========================================
	UserRepo       userRepo.Repository
	CourseRepo     courseRepo.Repository
	EnrollmentRepo enrollmentRepo.Repository
	PaymentRepo    paymentRepo.PaymentRepository

	// ========================================
	// SERVICE LAYER
	// ========================================
	EnrollmentService enrollmentService.EnrollmentService
	PaymentService    paymentService.PaymentService

	// ========================================
	// HANDLER LAYER
	// ========================================
	PaymentHandler *paymentHandler.PaymentHandler
}

// NewContainer builds the graph in dependency order:
// config, infrastructure, repositories, services, handlers.
func NewContainer() (*Container, error) {
	log.Println("Initializing DI Container...")

	c := &Container{}

	// ========================================
	// STEP 1: LOAD CONFIGURATION
	// ========================================
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Printf("Config loaded (Environment: %s)", cfg.App.Environment)

	// ========================================
	// STEP 2: INITIALIZE DATABASE
	// ========================================
	db := database.NewPostgresDB(cfg.ToDBConfig())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db
	log.Println("Database connected")

	// ========================================
	// STEP 3: INITIALIZE REDIS, CACHE AND QUEUE CLIENT
	// ========================================
	c.Redis = infraCache.NewRedisClient(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	if err := c.Redis.Connect(ctx); err != nil {
		// The cache degrades to misses; the queue client reports its own errors per enqueue.
		log.Printf("Redis connection failed (non-critical): %v", err)
	}
	c.Cache = infraCache.NewRedisCache(c.Redis.Client, cacheKeyPrefix)

	c.AsynqClient = asynq.NewClient(RedisClientOpt(cfg))
	c.Tasks = queue.NewTaskClient(c.AsynqClient)

	c.JWTManager = jwt.NewManager(cfg.JWT.Secret, accessTokenTTL)

	// ========================================
	// STEP 4: EXTERNAL INTEGRATIONS
	// ========================================
	if err := c.initIntegrations(); err != nil {
		return nil, fmt.Errorf("failed to init integrations: %w", err)
	}

	// ========================================
	// STEP 5..7: REPOSITORIES, SERVICES, HANDLERS
	// ========================================
	c.initRepositories()
	c.initServices()
	c.initHandlers()

	log.Println("DI Container initialized successfully")
	return c, nil
}

// RedisClientOpt is the asynq connection shared by the client, the server and the scheduler.
func RedisClientOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Redis.Host,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// ========================================
// PRIVATE INITIALIZATION METHODS
// ========================================

func (c *Container) initIntegrations() error {
	cfg := c.Config

	if cfg.Payment.UseMockGateway {
		secret := cfg.Paystack.SecretKey
		if secret == "" {
			secret = "mock_secret"
		}
		c.Gateway = mock.NewGateway(secret, cfg.Paystack.CallbackURL)
		log.Println("Using mock payment gateway")
	} else {
		client, err := paystack.NewClient(&paystack.Config{
			SecretKey: cfg.Paystack.SecretKey,
			BaseURL:   cfg.Paystack.BaseURL,
			Timeout:   cfg.Paystack.Timeout,
		})
		if err != nil {
			return err
		}
		c.Gateway = client
	}

	if cfg.Kafka.Enabled {
		producer, err := messaging.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			return err
		}
		c.Kafka = producer
	}

	return nil
}

func (c *Container) initRepositories() {
	pool := c.DB.Pool

	c.UserRepo = userRepo.NewPostgresRepository(pool, c.Cache)
	c.CourseRepo = courseRepo.NewPostgresRepository(pool)
	c.EnrollmentRepo = enrollmentRepo.NewPostgresRepository(pool)
	c.PaymentRepo = paymentRepo.NewPaymentRepository(pool)

	if g, ok := c.Gateway.(*mock.Gateway); ok {
		g.UseLedger(func(ctx context.Context, reference string) (decimal.Decimal, string, bool) {
			p, err := c.PaymentRepo.GetByReference(ctx, reference)
			if err != nil {
				return decimal.Zero, "", false
			}
			return p.Amount, p.Currency, true
		})
	}
}

func (c *Container) initServices() {
	cfg := c.Config

	c.EnrollmentService = enrollmentService.NewEnrollmentService(c.EnrollmentRepo)

	var publisher notifier.EventPublisher
	if c.Kafka != nil {
		publisher = c.Kafka
	}

	deps := paymentService.Dependencies{
		Payments:    c.PaymentRepo,
		Enrollments: c.EnrollmentService,
		Courses:     c.CourseRepo,
		Users:       c.UserRepo,
		Gateway:     c.Gateway,
		Scheduler:   c.Tasks,
		Notifier:    notifier.NewPaymentNotifier(c.Tasks, publisher),
		Cache:       c.Cache,
	}
	if cfg.LMS.Enabled {
		deps.LMS = lms.NewClient(lms.Config{
			BaseURL: cfg.LMS.BaseURL,
			Token:   cfg.LMS.Token,
			Timeout: cfg.LMS.Timeout,
		})
	}

	c.PaymentService = paymentService.NewPaymentService(deps, paymentService.Config{
		Currency:          cfg.Payment.Currency,
		CallbackURL:       cfg.Paystack.CallbackURL,
		BackupVerifyDelay: cfg.Payment.BackupVerifyDelay,
		PendingStatusTTL:  cfg.Payment.PendingStatusTTL,
		TerminalStatusTTL: cfg.Payment.TerminalStatusTTL,
		StatsTTL:          cfg.Payment.StatsTTL,
	})
}

func (c *Container) initHandlers() {
	c.PaymentHandler = paymentHandler.NewPaymentHandler(c.PaymentService)
}

// Cleanup releases connections on shutdown.
func (c *Container) Cleanup() {
	log.Println("Cleaning up container resources...")

	if c.Kafka != nil {
		if err := c.Kafka.Close(); err != nil {
			log.Printf("Failed to close Kafka producer: %v", err)
		}
	}

	if c.AsynqClient != nil {
		if err := c.AsynqClient.Close(); err != nil {
			log.Printf("Failed to close asynq client: %v", err)
		}
	}

	if c.DB != nil {
		if err := c.DB.Close(); err != nil {
			log.Printf("Failed to close database: %v", err)
		}
	}

	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			log.Printf("Failed to close Redis: %v", err)
		} else {
			log.Println("Redis connections closed")
		}
	}

	log.Println("Container cleanup completed")
}
