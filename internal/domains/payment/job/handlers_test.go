package job

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared"
)

type mockPayments struct {
	mock.Mock
}

func (m *mockPayments) HandleWebhookEvent(ctx context.Context, event string, data json.RawMessage) error {
	return m.Called(ctx, event, data).Error(0)
}

func (m *mockPayments) VerifyPayment(ctx context.Context, reference string) (*model.VerifyPaymentResponse, error) {
	args := m.Called(ctx, reference)
	out, _ := args.Get(0).(*model.VerifyPaymentResponse)
	return out, args.Error(1)
}

func (m *mockPayments) CompleteFreeEnrollment(ctx context.Context, payload model.CompleteEnrollmentPayload) error {
	return m.Called(ctx, payload).Error(0)
}

func (m *mockPayments) ReconcileStalePayments(ctx context.Context, limit int) (int, error) {
	args := m.Called(ctx, limit)
	return args.Int(0), args.Error(1)
}

func newTask(t *testing.T, taskType string, payload interface{}) *asynq.Task {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return asynq.NewTask(taskType, raw)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		skipRetry bool
	}{
		{"nil", nil, false},
		{"not found", model.NewNotFoundError("payment", "ref_x"), true},
		{"validation", model.NewValidationError("bad"), true},
		{"gateway", model.NewGatewayError("verify", errors.New("timeout")), false},
		{"conflict", model.NewConflictError("dup"), false},
		{"plain", errors.New("db down"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := classify(tt.err, map[string]interface{}{"reference": "ref_x"})

			if tt.err == nil {
				assert.NoError(t, got)
				return
			}
			require.Error(t, got)
			assert.Equal(t, tt.skipRetry, errors.Is(got, asynq.SkipRetry))
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestMergeFields_DoesNotMutate(t *testing.T) {
	base := map[string]interface{}{"reference": "ref_1"}

	out := mergeFields(base, "status", "success")

	assert.Len(t, base, 1)
	assert.Equal(t, "success", out["status"])
	assert.Equal(t, "ref_1", out["reference"])
}

func TestWebhookHandler(t *testing.T) {
	svc := &mockPayments{}
	data := json.RawMessage(`{"reference":"ref_1"}`)
	svc.On("HandleWebhookEvent", mock.Anything, model.EventChargeSuccess, data).Return(nil)

	h := NewWebhookHandler(svc)
	err := h.ProcessTask(context.Background(), newTask(t, shared.TypePaymentWebhook,
		model.WebhookTaskPayload{Event: model.EventChargeSuccess, Data: data}))

	require.NoError(t, err)
	svc.AssertExpectations(t)
}

func TestWebhookHandler_UnknownReferenceIsNotRetried(t *testing.T) {
	svc := &mockPayments{}
	svc.On("HandleWebhookEvent", mock.Anything, mock.Anything, mock.Anything).
		Return(model.NewNotFoundError("payment", "ref_missing"))

	err := NewWebhookHandler(svc).ProcessTask(context.Background(), newTask(t, shared.TypePaymentWebhook,
		model.WebhookTaskPayload{Event: model.EventChargeSuccess, Data: json.RawMessage(`{}`)}))

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestHandlers_BadPayloadSkipsRetry(t *testing.T) {
	svc := &mockPayments{}
	bad := []byte(`{not json`)

	tests := map[string]asynq.Handler{
		"webhook":  NewWebhookHandler(svc),
		"verify":   NewVerifyPaymentHandler(svc),
		"complete": NewCompleteEnrollmentHandler(svc),
		"sweep":    NewReconcileStaleHandler(svc, 50),
	}
	for name, h := range tests {
		t.Run(name, func(t *testing.T) {
			err := h.ProcessTask(context.Background(), asynq.NewTask("any", bad))
			assert.ErrorIs(t, err, asynq.SkipRetry)
		})
	}
	assert.Empty(t, svc.Calls)
}

func TestVerifyPaymentHandler(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		svc := &mockPayments{}
		svc.On("VerifyPayment", mock.Anything, "ref_1").
			Return(&model.VerifyPaymentResponse{Status: model.PaymentStatusSuccess}, nil)

		err := NewVerifyPaymentHandler(svc).ProcessTask(context.Background(), newTask(t, shared.TypePaymentVerify,
			model.VerifyPaymentPayload{Reference: "ref_1", Trigger: model.TriggerBackup}))

		require.NoError(t, err)
	})

	t.Run("gateway down is retried", func(t *testing.T) {
		svc := &mockPayments{}
		svc.On("VerifyPayment", mock.Anything, "ref_1").
			Return(nil, model.NewGatewayError("verify", errors.New("503")))

		err := NewVerifyPaymentHandler(svc).ProcessTask(context.Background(), newTask(t, shared.TypePaymentVerify,
			model.VerifyPaymentPayload{Reference: "ref_1", Trigger: model.TriggerSweep}))

		require.Error(t, err)
		assert.NotErrorIs(t, err, asynq.SkipRetry)
	})
}

func TestCompleteEnrollmentHandler(t *testing.T) {
	payload := model.CompleteEnrollmentPayload{Reference: "free_1"}
	svc := &mockPayments{}
	svc.On("CompleteFreeEnrollment", mock.Anything, payload).Return(errors.New("db down"))

	err := NewCompleteEnrollmentHandler(svc).ProcessTask(context.Background(),
		newTask(t, shared.TypePaymentCompleteEnroll, payload))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestReconcileStaleHandler(t *testing.T) {
	t.Run("empty payload uses default limit", func(t *testing.T) {
		svc := &mockPayments{}
		svc.On("ReconcileStalePayments", mock.Anything, 50).Return(3, nil)

		err := NewReconcileStaleHandler(svc, 50).ProcessTask(context.Background(),
			asynq.NewTask(shared.TypePaymentReconcileStale, nil))

		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("payload limit wins", func(t *testing.T) {
		svc := &mockPayments{}
		svc.On("ReconcileStalePayments", mock.Anything, 10).Return(0, nil)

		err := NewReconcileStaleHandler(svc, 50).ProcessTask(context.Background(),
			newTask(t, shared.TypePaymentReconcileStale, model.ReconcileStalePayload{Limit: 10}))

		require.NoError(t, err)
		svc.AssertExpectations(t)
	})

	t.Run("error is returned", func(t *testing.T) {
		svc := &mockPayments{}
		svc.On("ReconcileStalePayments", mock.Anything, 50).Return(0, errors.New("db down"))

		err := NewReconcileStaleHandler(svc, 50).ProcessTask(context.Background(),
			asynq.NewTask(shared.TypePaymentReconcileStale, nil))

		assert.Error(t, err)
	})
}
