package service

import (
	"time"

	"course-payments/internal/domains/payment/gateway"
	"course-payments/internal/domains/payment/model"
	repo "course-payments/internal/domains/payment/repository"
	"course-payments/pkg/cache"
)

// Config holds the tunables of the payment pipeline.
type Config struct {
	Currency          string
	CallbackURL       string
	BackupVerifyDelay time.Duration
	PendingStatusTTL  time.Duration
	TerminalStatusTTL time.Duration
	StatsTTL          time.Duration
}

func (c *Config) applyDefaults() {
	if c.Currency == "" {
		c.Currency = model.DefaultCurrency
	}
	if c.BackupVerifyDelay <= 0 {
		c.BackupVerifyDelay = model.DefaultBackupVerifyDelay
	}
	if c.PendingStatusTTL <= 0 {
		c.PendingStatusTTL = model.DefaultPendingStatusTTL
	}
	if c.TerminalStatusTTL <= 0 {
		c.TerminalStatusTTL = model.DefaultTerminalStatusTTL
	}
	if c.StatsTTL <= 0 {
		c.StatsTTL = model.DefaultStatsTTL
	}
}

// Dependencies groups the collaborators of the payment service.
// LMS may be nil; Clock defaults to time.Now.
type Dependencies struct {
	Payments    repo.PaymentRepository
	Enrollments EnrollmentCollaborator
	Courses     CourseLookup
	Users       UserLookup
	Gateway     gateway.GatewayClient
	Scheduler   TaskScheduler
	Notifier    Notifier
	Cache       cache.Cache
	LMS         LMSChecker
	Clock       func() time.Time
}

// =====================================================
// PAYMENT SERVICE IMPLEMENTATION
// =====================================================
type paymentService struct {
	paymentRepo repo.PaymentRepository
	enrollments EnrollmentCollaborator
	courses     CourseLookup
	users       UserLookup

	gateway   gateway.GatewayClient
	scheduler TaskScheduler
	notifier  Notifier
	lms       LMSChecker

	statusCache *StatusCache
	cache       cache.Cache

	cfg Config
	now func() time.Time
}

func NewPaymentService(deps Dependencies, cfg Config) PaymentService {
	cfg.applyDefaults()

	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}

	return &paymentService{
		paymentRepo: deps.Payments,
		enrollments: deps.Enrollments,
		courses:     deps.Courses,
		users:       deps.Users,
		gateway:     deps.Gateway,
		scheduler:   deps.Scheduler,
		notifier:    deps.Notifier,
		lms:         deps.LMS,
		statusCache: NewStatusCache(deps.Cache, cfg.PendingStatusTTL, cfg.TerminalStatusTTL),
		cache:       deps.Cache,
		cfg:         cfg,
		now:         clock,
	}
}

func (s *paymentService) utcNow() time.Time {
	return s.now().UTC()
}
