package tasks

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/listing-studio/engine/internal/services"
	appErr "github.com/listing-studio/engine/pkg/errors"
	"github.com/listing-studio/engine/pkg/logger"
)

const TypeLandingGenerate = "landing:generate"

// NewLandingTask builds the task for one prepared landing. The job records its own
// failure, so the task is never retried.
func NewLandingTask(job services.LandingJob) (*asynq.Task, error) {
	payload, err := json.Marshal(job)
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "marshal landing payload failed")
	}
	return asynq.NewTask(TypeLandingGenerate, payload, asynq.MaxRetry(0)), nil
}

// Enqueuer queues landing jobs on asynq.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	return &Enqueuer{client: client}
}

var _ services.LandingEnqueuer = (*Enqueuer)(nil)

func (q *Enqueuer) EnqueueLanding(ctx context.Context, job services.LandingJob) error {
	task, err := NewLandingTask(job)
	if err != nil {
		return err
	}
	info, err := q.client.EnqueueContext(ctx, task)
	if err != nil {
		logger.L().Warn("enqueue landing task failed", zap.String("landing_id", job.LandingID), zap.Error(err))
		return err
	}
	logger.L().Info("landing task enqueued", zap.String("landing_id", job.LandingID), zap.String("task_id", info.ID), zap.String("queue", info.Queue))
	return nil
}

// LandingTaskHandler runs queued landing jobs on the blocking transport.
type LandingTaskHandler struct {
	landings services.LandingService
}

func NewLandingTaskHandler(landings services.LandingService) *LandingTaskHandler {
	return &LandingTaskHandler{landings: landings}
}

func (h *LandingTaskHandler) HandleGenerate(ctx context.Context, t *asynq.Task) error {
	var job services.LandingJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		logger.L().Error("invalid landing task payload", zap.Error(err))
		return fmt.Errorf("decode landing payload: %v: %w", err, asynq.SkipRetry)
	}
	if job.LandingID == "" {
		logger.L().Error("landing task without landing id")
		return fmt.Errorf("landing task without landing id: %w", asynq.SkipRetry)
	}

	logger.L().Info("handling landing task", zap.String("landing_id", job.LandingID))
	out := h.landings.Run(ctx, job, services.TransportBlocking, nil)
	if out.Kind == services.OutcomeFailed {
		return fmt.Errorf("landing %s failed: %v: %w", job.LandingID, out.Err, asynq.SkipRetry)
	}
	return nil
}

// Register mounts the landing handlers on mux.
func (h *LandingTaskHandler) Register(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeLandingGenerate, h.HandleGenerate)
}
