package paystack

import (
	"context"
	"fmt"
	"time"

	"course-payments/internal/domains/payment/gateway"
	"course-payments/pkg/logger"

	"github.com/go-resty/resty/v2"
)

// =====================================================
// PAYSTACK CLIENT
// =====================================================

type Client struct {
	config *Config
	http   *resty.Client
}

func NewClient(config *Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid paystack config: %w", err)
	}

	httpClient := resty.New().
		SetBaseURL(config.BaseURL).
		SetAuthToken(config.SecretKey).
		SetTimeout(config.Timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{config: config, http: httpClient}, nil
}

var _ gateway.GatewayClient = (*Client)(nil)

// CreateTransaction calls POST /transaction/initialize.
func (c *Client) CreateTransaction(ctx context.Context, req gateway.CreateTransactionRequest) (*gateway.CreateTransactionResponse, error) {
	if req.Reference == "" {
		return nil, fmt.Errorf("reference is required")
	}
	if req.Email == "" {
		return nil, fmt.Errorf("customer email is required")
	}
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive")
	}

	var result apiResponse[initializeData]
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(initializeRequest{
			Email:       req.Email,
			Amount:      ToSubunits(req.Amount),
			Currency:    req.Currency,
			Reference:   req.Reference,
			CallbackURL: req.CallbackURL,
			Metadata:    req.Metadata,
		}).
		SetResult(&result).
		SetError(&apiErr).
		Post("/transaction/initialize")
	if err != nil {
		return nil, fmt.Errorf("paystack initialize request: %w", err)
	}

	if resp.IsError() || !result.Status {
		logger.Warn("paystack initialize rejected", map[string]interface{}{
			"reference":   req.Reference,
			"http_status": resp.StatusCode(),
			"message":     firstNonEmpty(apiErr.Message, result.Message),
		})
		return nil, fmt.Errorf("paystack initialize failed: status %d: %s",
			resp.StatusCode(), firstNonEmpty(apiErr.Message, result.Message))
	}

	return &gateway.CreateTransactionResponse{
		AuthorizationURL: result.Data.AuthorizationURL,
		AccessCode:       result.Data.AccessCode,
		Reference:        firstNonEmpty(result.Data.Reference, req.Reference),
	}, nil
}

// VerifyTransaction calls GET /transaction/verify/{reference}.
func (c *Client) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyTransactionResponse, error) {
	if reference == "" {
		return nil, fmt.Errorf("reference is required")
	}

	var result apiResponse[verifyData]
	var apiErr apiError

	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("reference", reference).
		SetResult(&result).
		SetError(&apiErr).
		Get("/transaction/verify/{reference}")
	if err != nil {
		return nil, fmt.Errorf("paystack verify request: %w", err)
	}

	if resp.IsError() || !result.Status {
		return nil, fmt.Errorf("paystack verify failed: status %d: %s",
			resp.StatusCode(), firstNonEmpty(apiErr.Message, result.Message))
	}

	out := &gateway.VerifyTransactionResponse{
		Reference:       firstNonEmpty(result.Data.Reference, reference),
		Status:          result.Data.Status,
		Amount:          FromSubunits(result.Data.Amount),
		Currency:        result.Data.Currency,
		Channel:         result.Data.Channel,
		GatewayResponse: result.Data.GatewayResponse,
	}

	if result.Data.PaidAt != "" {
		if paidAt, err := time.Parse(time.RFC3339, result.Data.PaidAt); err == nil {
			out.PaidAt = &paidAt
		}
	}

	return out, nil
}

// ValidateSignature checks x-paystack-signature, HMAC-SHA512 keyed by the secret key.
func (c *Client) ValidateSignature(payload []byte, signature string) bool {
	return VerifySignature(payload, signature, c.config.SecretKey)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
