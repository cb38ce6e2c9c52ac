package mock

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"

	"course-payments/internal/domains/payment/gateway"
	"course-payments/internal/domains/payment/gateway/paystack"
)

// =====================================================
// MOCK GATEWAY (local development and tests)
// =====================================================

// Gateway is an in-memory GatewayClient. Every created transaction verifies as
// DefaultStatus unless overridden with SetStatus.
type Gateway struct {
	secret        string
	checkoutURL   string
	DefaultStatus string

	mu       sync.Mutex
	statuses map[string]string
	amounts  map[string]gateway.CreateTransactionRequest

	createErr error
	verifyErr error
	// verifyDelay widens race windows in tests.
	verifyDelay time.Duration

	// ledger resolves charges for transactions created by another process.
	ledger Ledger

	createCalls atomic.Int32
	verifyCalls atomic.Int32
}

func NewGateway(secret, checkoutURL string) *Gateway {
	if checkoutURL == "" {
		checkoutURL = "https://checkout.mock.local"
	}
	return &Gateway{
		secret:        secret,
		checkoutURL:   checkoutURL,
		DefaultStatus: gateway.TransactionStatusSuccess,
		statuses:      make(map[string]string),
		amounts:       make(map[string]gateway.CreateTransactionRequest),
	}
}

var _ gateway.GatewayClient = (*Gateway)(nil)

// Ledger reports the amount and currency a reference was created with.
type Ledger func(ctx context.Context, reference string) (decimal.Decimal, string, bool)

// UseLedger lets a worker's mock settle transactions the API's mock created.
func (g *Gateway) UseLedger(l Ledger) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ledger = l
}

func (g *Gateway) CreateTransaction(ctx context.Context, req gateway.CreateTransactionRequest) (*gateway.CreateTransactionResponse, error) {
	g.createCalls.Add(1)
	if g.createErr != nil {
		return nil, g.createErr
	}

	g.mu.Lock()
	g.amounts[req.Reference] = req
	g.mu.Unlock()

	return &gateway.CreateTransactionResponse{
		AuthorizationURL: fmt.Sprintf("%s/%s", g.checkoutURL, req.Reference),
		AccessCode:       "mock_" + req.Reference,
		Reference:        req.Reference,
	}, nil
}

func (g *Gateway) VerifyTransaction(ctx context.Context, reference string) (*gateway.VerifyTransactionResponse, error) {
	g.verifyCalls.Add(1)
	if g.verifyDelay > 0 {
		select {
		case <-time.After(g.verifyDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if g.verifyErr != nil {
		return nil, g.verifyErr
	}

	g.mu.Lock()
	status, ok := g.statuses[reference]
	if !ok {
		status = g.DefaultStatus
	}
	req, known := g.amounts[reference]
	ledger := g.ledger
	g.mu.Unlock()

	if !known && ledger != nil {
		if amount, currency, ok := ledger(ctx, reference); ok {
			req.Amount, req.Currency = amount, currency
		}
	}

	out := &gateway.VerifyTransactionResponse{
		Reference:       reference,
		Status:          status,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Channel:         "card",
		GatewayResponse: "Mock " + status,
	}
	if status == gateway.TransactionStatusSuccess {
		now := time.Now().UTC()
		out.PaidAt = &now
	}
	return out, nil
}

func (g *Gateway) ValidateSignature(payload []byte, signature string) bool {
	return paystack.VerifySignature(payload, signature, g.secret)
}

// Sign produces the signature a real provider would send for payload.
func (g *Gateway) Sign(payload []byte) string {
	return paystack.GenerateSignature(payload, g.secret)
}

func (g *Gateway) SetStatus(reference, status string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.statuses[reference] = status
}

// SetCharged makes the gateway report a different settled amount and currency for reference.
func (g *Gateway) SetCharged(reference string, amount decimal.Decimal, currency string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	req := g.amounts[reference]
	req.Amount = amount
	req.Currency = currency
	g.amounts[reference] = req
}

func (g *Gateway) FailCreate(err error) { g.createErr = err }
func (g *Gateway) FailVerify(err error) { g.verifyErr = err }

func (g *Gateway) SlowVerify(d time.Duration) { g.verifyDelay = d }

func (g *Gateway) CreateCalls() int { return int(g.createCalls.Load()) }
func (g *Gateway) VerifyCalls() int { return int(g.verifyCalls.Load()) }
