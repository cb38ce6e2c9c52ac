package paystack

import (
	"fmt"
	"time"
)

const DefaultBaseURL = "https://api.paystack.co"

type Config struct {
	SecretKey string
	BaseURL   string
	Timeout   time.Duration
}

func (c *Config) Validate() error {
	if c.SecretKey == "" {
		return fmt.Errorf("paystack secret key is required")
	}
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	return nil
}
