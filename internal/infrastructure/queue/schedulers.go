package queue

import (
	"time"

	"github.com/hibiken/asynq"

	"course-payments/internal/domains/payment/model"
	"course-payments/internal/shared"
	"course-payments/internal/shared/utils"
	"course-payments/pkg/logger"
)

// ReconcileStaleCron sweeps pending payments every 10 minutes.
const ReconcileStaleCron = "*/10 * * * *"

type Scheduler struct {
	scheduler  *asynq.Scheduler
	sweepLimit int
}

func NewScheduler(redisOpt asynq.RedisClientOpt, sweepLimit int) *Scheduler {
	scheduler := asynq.NewScheduler(
		redisOpt,
		&asynq.SchedulerOpts{
			Location: time.UTC,
			LogLevel: asynq.InfoLevel,
		},
	)

	return &Scheduler{
		scheduler:  scheduler,
		sweepLimit: sweepLimit,
	}
}

func (s *Scheduler) RegisterJobs() error {
	return s.registerReconcileStaleJob()
}

// ================================================
// Reconcile stale pending payments (every 10 min)
// ================================================
func (s *Scheduler) registerReconcileStaleJob() error {
	task, err := utils.MarshalTask(shared.TypePaymentReconcileStale, model.ReconcileStalePayload{Limit: s.sweepLimit})
	if err != nil {
		return err
	}

	entryID, err := s.scheduler.Register(
		ReconcileStaleCron,
		task,
		asynq.Queue(shared.QueueLow),
		asynq.MaxRetry(1),
		asynq.Timeout(2*time.Minute),
	)
	if err != nil {
		logger.Error("Failed to register ReconcileStale job", err)
		return err
	}

	logger.Info("Registered ReconcileStale job", map[string]interface{}{
		"entry_id": entryID,
		"schedule": ReconcileStaleCron,
	})
	return nil
}

func (s *Scheduler) Start() error {
	return s.scheduler.Start()
}

func (s *Scheduler) Shutdown() {
	s.scheduler.Shutdown()
}
