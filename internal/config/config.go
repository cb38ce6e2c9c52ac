package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the whole application configuration, populated from environment variables.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Email    EmailConfig
	Paystack PaystackConfig
	Payment  PaymentConfig
	LMS      LMSConfig
	Kafka    KafkaConfig
	Worker   WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
	CORSOrigins []string
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
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type EmailConfig struct {
	SMTPHost string
	SMTPPort string
	Username string
	Password string
	From     string
}

// =====================================================
// PAYSTACK CONFIGURATION
// =====================================================

type PaystackConfig struct {
	SecretKey   string        // also the HMAC-SHA512 webhook key
	BaseURL     string        // https://api.paystack.co
	CallbackURL string        // frontend page the customer returns to
	Timeout     time.Duration // per request
}

// PaymentConfig tunes the reconciliation pipeline.
type PaymentConfig struct {
	Currency          string
	BackupVerifyDelay time.Duration
	PendingStatusTTL  time.Duration
	TerminalStatusTTL time.Duration
	StatsTTL          time.Duration
	StaleSweepLimit   int
	UseMockGateway    bool
}

type LMSConfig struct {
	Enabled bool
	BaseURL string
	Token   string
	Timeout time.Duration
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type WorkerConfig struct {
	Concurrency int
	HealthPort  string
}

// Load reads config from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Course Payments API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			CORSOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: loadDatabase(),
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Email: EmailConfig{
			SMTPHost: getEnv("SMTP_HOST", "localhost"),
			SMTPPort: getEnv("SMTP_PORT", "1025"),
			Username: getEnv("SMTP_USERNAME", ""),
			Password: getEnv("SMTP_PASSWORD", ""),
			From:     getEnv("EMAIL_FROM", "payments@courses.local"),
		},
		Paystack: PaystackConfig{
			SecretKey:   getEnv("PAYSTACK_SECRET_KEY", ""),
			BaseURL:     getEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			CallbackURL: getEnv("PAYSTACK_CALLBACK_URL", "http://localhost:3000/payments/callback"),
			Timeout:     getEnvDuration("PAYSTACK_TIMEOUT", 30*time.Second),
		},
		Payment: PaymentConfig{
			Currency:          getEnv("PAYMENT_CURRENCY", "GHS"),
			BackupVerifyDelay: getEnvDuration("PAYMENT_BACKUP_VERIFY_DELAY", 5*time.Minute),
			PendingStatusTTL:  getEnvDuration("PAYMENT_PENDING_STATUS_TTL", 60*time.Second),
			TerminalStatusTTL: getEnvDuration("PAYMENT_TERMINAL_STATUS_TTL", time.Hour),
			StatsTTL:          getEnvDuration("PAYMENT_STATS_TTL", 10*time.Minute),
			StaleSweepLimit:   getEnvInt("PAYMENT_STALE_SWEEP_LIMIT", 100),
			UseMockGateway:    getEnvBool("PAYMENT_USE_MOCK_GATEWAY", false),
		},
		LMS: LMSConfig{
			Enabled: getEnvBool("LMS_ENABLED", false),
			BaseURL: getEnv("LMS_BASE_URL", ""),
			Token:   getEnv("LMS_TOKEN", ""),
			Timeout: getEnvDuration("LMS_TIMEOUT", 5*time.Second),
		},
		Kafka: KafkaConfig{
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			Topic:   getEnv("KAFKA_PAYMENT_TOPIC", "payment.success"),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 20),
			HealthPort:  getEnv("WORKER_HEALTH_PORT", "9999"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func loadDatabase() DatabaseConfig {
	return DatabaseConfig{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Database: getEnv("DB_NAME", "course_payments"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		MaxConns: getEnvInt("DB_MAX_CONNS", 25),
		MinConns: getEnvInt("DB_MIN_CONNS", 5),
	}
}

// Validate rejects configurations the service cannot run with.
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET must be set")
	}
	if c.Database.Host == "" || c.Database.Database == "" {
		return fmt.Errorf("DB_HOST and DB_NAME must be set")
	}
	if !c.Payment.UseMockGateway && c.Paystack.SecretKey == "" {
		return fmt.Errorf("PAYSTACK_SECRET_KEY must be set unless PAYMENT_USE_MOCK_GATEWAY=true")
	}
	if c.App.Environment == "production" {
		if c.Payment.UseMockGateway {
			return fmt.Errorf("mock gateway is not allowed in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}
	if c.LMS.Enabled && c.LMS.BaseURL == "" {
		return fmt.Errorf("LMS_BASE_URL must be set when LMS_ENABLED=true")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("KAFKA_BROKERS must be set when KAFKA_ENABLED=true")
	}

	return nil
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

func getEnvList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
