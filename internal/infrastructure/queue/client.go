package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"course-payments/internal/shared"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

// taskQueues routes each task type to a queue; unknown types go to the default queue.
var taskQueues = map[string]string{
	shared.TypePaymentWebhook:        shared.QueueCritical,
	shared.TypePaymentVerify:         shared.QueueCritical,
	shared.TypePaymentCompleteEnroll: shared.QueueDefault,
	shared.TypePaymentReconcileStale: shared.QueueLow,
	shared.TypeSendReceiptEmail:      shared.QueueLow,
}

const defaultMaxRetry = 5

// Enqueuer is the subset of *asynq.Client used here.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// TaskClient schedules payment tasks on asynq.
type TaskClient struct {
	client Enqueuer
}

func NewTaskClient(client Enqueuer) *TaskClient {
	return &TaskClient{client: client}
}

func (c *TaskClient) Enqueue(ctx context.Context, taskType string, payload interface{}) error {
	return c.enqueue(ctx, taskType, payload)
}

// EnqueueIn schedules the task after delay. If asynq still holds a task under taskID
// (scheduled, retrying or archived) the call counts as success, so callers that need
// a fresh attempt must use a fresh id.
func (c *TaskClient) EnqueueIn(ctx context.Context, taskType string, payload interface{}, delay time.Duration, taskID string) error {
	var opts []asynq.Option
	if delay > 0 {
		opts = append(opts, asynq.ProcessIn(delay))
	}
	if taskID != "" {
		opts = append(opts, asynq.TaskID(taskID))
	}
	return c.enqueue(ctx, taskType, payload, opts...)
}

func (c *TaskClient) enqueue(ctx context.Context, taskType string, payload interface{}, extra ...asynq.Option) error {
	task, err := utils.MarshalTask(taskType, payload)
	if err != nil {
		return err
	}

	queue, ok := taskQueues[taskType]
	if !ok {
		queue = shared.QueueDefault
	}
	opts := append([]asynq.Option{
		asynq.Queue(queue),
		asynq.MaxRetry(defaultMaxRetry),
	}, extra...)

	info, err := c.client.EnqueueContext(ctx, task, opts...)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			logger.Debug("task already queued", map[string]interface{}{"type": taskType})
			return nil
		}
		return fmt.Errorf("enqueue %s: %w", taskType, err)
	}

	logger.Debug("task enqueued", map[string]interface{}{
		"type":  taskType,
		"id":    info.ID,
		"queue": info.Queue,
	})
	return nil
}
