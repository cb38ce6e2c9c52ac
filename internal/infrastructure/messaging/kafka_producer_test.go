package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/IBM/sarama"
	"github.com/IBM/sarama/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type paymentEvent struct {
	Reference string `json:"reference"`
	Amount    string `json:"amount"`
}

func newMockProducer(t *testing.T) *mocks.SyncProducer {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	return mocks.NewSyncProducer(t, cfg)
}

func TestPublish(t *testing.T) {
	sp := newMockProducer(t)
	sp.ExpectSendMessageWithCheckerFunctionAndSucceed(func(val []byte) error {
		var got paymentEvent
		if err := json.Unmarshal(val, &got); err != nil {
			return err
		}
		if got.Reference != "ref_1" {
			return errors.New("unexpected reference " + got.Reference)
		}
		return nil
	})

	p := NewProducerWith(sp, "payments.success")

	require.NoError(t, p.Publish(context.Background(), "ref_1", paymentEvent{Reference: "ref_1", Amount: "500.00"}))
	require.NoError(t, p.Close())
}

func TestPublish_BrokerError(t *testing.T) {
	sp := newMockProducer(t)
	sp.ExpectSendMessageAndFail(sarama.ErrNotLeaderForPartition)

	p := NewProducerWith(sp, "payments.success")

	err := p.Publish(context.Background(), "ref_1", paymentEvent{Reference: "ref_1"})
	assert.ErrorIs(t, err, sarama.ErrNotLeaderForPartition)
	require.NoError(t, p.Close())
}

func TestPublish_CancelledContext(t *testing.T) {
	sp := newMockProducer(t)
	p := NewProducerWith(sp, "payments.success")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, p.Publish(ctx, "ref_1", paymentEvent{}), context.Canceled)
	require.NoError(t, p.Close())
}

func TestPublish_UnencodableEvent(t *testing.T) {
	sp := newMockProducer(t)
	p := NewProducerWith(sp, "payments.success")

	assert.Error(t, p.Publish(context.Background(), "ref_1", make(chan int)))
	require.NoError(t, p.Close())
}
