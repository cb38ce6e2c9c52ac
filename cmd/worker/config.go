package main

import (
	"log"

	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"

	"course-payments/internal/config"
	"course-payments/pkg/container"
)

// Config holds the worker settings derived from the application config
type Config struct {
	RedisOpt        asynq.RedisClientOpt
	Concurrency     int
	HealthPort      string
	StaleSweepLimit int
	Email           config.EmailConfig
}

// loadEnv loads .env for local runs; the container reads the environment itself
func loadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Println("[Config] No .env file found, using system environment variables")
	}
}

func workerConfig(cfg *config.Config) *Config {
	wc := &Config{
		RedisOpt:        container.RedisClientOpt(cfg),
		Concurrency:     cfg.Worker.Concurrency,
		HealthPort:      cfg.Worker.HealthPort,
		StaleSweepLimit: cfg.Payment.StaleSweepLimit,
		Email:           cfg.Email,
	}

	log.Printf("[Config] Redis: %s, SMTP: %s:%s, concurrency: %d",
		wc.RedisOpt.Addr, wc.Email.SMTPHost, wc.Email.SMTPPort, wc.Concurrency)

	return wc
}
