package mock

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"course-payments/internal/domains/payment/gateway"
)

func TestGateway_CreateThenVerify(t *testing.T) {
	g := NewGateway("mock_secret", "")

	created, err := g.CreateTransaction(context.Background(), gateway.CreateTransactionRequest{
		Reference: "ref_1",
		Amount:    decimal.NewFromInt(500),
		Currency:  "GHS",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://checkout.mock.local/ref_1", created.AuthorizationURL)
	assert.Equal(t, "mock_ref_1", created.AccessCode)

	verified, err := g.VerifyTransaction(context.Background(), "ref_1")
	require.NoError(t, err)
	assert.True(t, verified.IsSuccess())
	assert.True(t, decimal.NewFromInt(500).Equal(verified.Amount))
	assert.NotNil(t, verified.PaidAt)

	assert.Equal(t, 1, g.CreateCalls())
	assert.Equal(t, 1, g.VerifyCalls())
}

func TestGateway_SetStatus(t *testing.T) {
	g := NewGateway("mock_secret", "")
	g.SetStatus("ref_1", gateway.TransactionStatusFailed)

	verified, err := g.VerifyTransaction(context.Background(), "ref_1")

	require.NoError(t, err)
	assert.True(t, verified.IsFailed())
	assert.Nil(t, verified.PaidAt)
}

func TestGateway_Failures(t *testing.T) {
	g := NewGateway("mock_secret", "")
	g.FailCreate(errors.New("down"))
	g.FailVerify(errors.New("down"))

	_, err := g.CreateTransaction(context.Background(), gateway.CreateTransactionRequest{Reference: "ref_1"})
	assert.Error(t, err)

	_, err = g.VerifyTransaction(context.Background(), "ref_1")
	assert.Error(t, err)
}

func TestGateway_SlowVerifyHonoursContext(t *testing.T) {
	g := NewGateway("mock_secret", "")
	g.SlowVerify(time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.VerifyTransaction(ctx, "ref_1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestGateway_Signature(t *testing.T) {
	g := NewGateway("mock_secret", "")
	body := []byte(`{"event":"charge.success"}`)

	assert.True(t, g.ValidateSignature(body, g.Sign(body)))
	assert.False(t, g.ValidateSignature(body, "bogus"))
}

func TestGateway_SetCharged(t *testing.T) {
	g := NewGateway("mock_secret", "")
	_, err := g.CreateTransaction(context.Background(), gateway.CreateTransactionRequest{
		Reference: "ref_1",
		Amount:    decimal.NewFromInt(500),
		Currency:  "GHS",
	})
	require.NoError(t, err)

	g.SetCharged("ref_1", decimal.NewFromInt(5), "NGN")

	out, err := g.VerifyTransaction(context.Background(), "ref_1")
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(5).Equal(out.Amount))
	assert.Equal(t, "NGN", out.Currency)
}

func TestGateway_LedgerResolvesForeignReferences(t *testing.T) {
	g := NewGateway("mock_secret", "")
	g.UseLedger(func(ctx context.Context, reference string) (decimal.Decimal, string, bool) {
		if reference != "ref_api" {
			return decimal.Zero, "", false
		}
		return decimal.RequireFromString("120.50"), "GHS", true
	})

	out, err := g.VerifyTransaction(context.Background(), "ref_api")
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("120.50").Equal(out.Amount))
	assert.Equal(t, "GHS", out.Currency)

	unknown, err := g.VerifyTransaction(context.Background(), "ref_nowhere")
	require.NoError(t, err)
	assert.True(t, unknown.Amount.IsZero())
}
