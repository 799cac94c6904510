package dispatch

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"submate/internal/config"
	"submate/internal/logging"
	"submate/internal/queue"
	"submate/internal/services"
	"submate/internal/tasks"
)

// WorkerStore is the queue surface a worker pool needs.
type WorkerStore interface {
	ClaimNext(ctx context.Context) (*queue.Job, error)
	Complete(ctx context.Context, id, result string) error
	MarkSkipped(ctx context.Context, id, reason string) error
	Fail(ctx context.Context, id, message string, retryDelay time.Duration) (*queue.Job, error)
	FailPermanently(ctx context.Context, id, message string) (*queue.Job, error)
}

// Worker drains the durable queue with a fixed pool of goroutines. Each
// claimed job is dispatched through the task registry; its outcome decides
// whether the job completes, retries, or is marked skipped. Failures that
// cannot heal on retry fail immediately regardless of remaining attempts.
type Worker struct {
	store        WorkerStore
	registry     tasks.Registry
	workers      int
	pollInterval time.Duration
	retryDelay   time.Duration
	logger       *slog.Logger
}

// NewWorker builds a worker pool from queue configuration.
func NewWorker(store WorkerStore, registry tasks.Registry, cfg config.Queue, logger *slog.Logger) *Worker {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	pollInterval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	retryDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if retryDelay <= 0 {
		retryDelay = time.Minute
	}
	return &Worker{
		store:        store,
		registry:     registry,
		workers:      workers,
		pollInterval: pollInterval,
		retryDelay:   retryDelay,
		logger:       logging.WithComponent(logger, "worker"),
	}
}

// Run processes jobs until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i := 0; i < w.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			w.loop(ctx, id)
		}(i)
	}
	wg.Wait()
	return ctx.Err()
}

// RunOnce claims and processes at most one job. Returns false when the
// queue had nothing eligible.
func (w *Worker) RunOnce(ctx context.Context) (bool, error) {
	job, err := w.store.ClaimNext(ctx)
	if err != nil {
		return false, err
	}
	if job == nil {
		return false, nil
	}
	w.process(ctx, job)
	return true, nil
}

func (w *Worker) loop(ctx context.Context, id int) {
	logger := w.logger.With(slog.Int("worker", id))
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		job, err := w.store.ClaimNext(ctx)
		if err != nil {
			logger.Error("claim job", logging.Error(err))
		} else if job != nil {
			w.process(ctx, job)
			continue
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *Worker) process(ctx context.Context, job *queue.Job) {
	logger := w.logger.With(
		slog.String(logging.FieldJobID, job.ID),
		slog.String(logging.FieldTask, job.TaskName))
	ctx = services.WithJobID(services.WithTaskName(ctx, job.TaskName), job.ID)

	outcome, err := w.executeJob(ctx, job)
	switch {
	case err != nil:
		if skipErr, ok := tasks.AsSkip(err); ok {
			logger.Info("job skipped", slog.String(logging.FieldReason, skipErr.Reason.String()))
			if markErr := w.store.MarkSkipped(ctx, job.ID, skipErr.Reason.String()); markErr != nil {
				logger.Error("mark job skipped", logging.Error(markErr))
			}
			return
		}
		w.fail(ctx, job, err.Error(), services.Retryable(err), logger)
	case !outcome.Success:
		w.fail(ctx, job, outcome.Error, true, logger)
	default:
		encoded, encErr := outcome.Encode()
		if encErr != nil {
			// Re-encoding the same outcome fails identically every attempt.
			w.fail(ctx, job, encErr.Error(), false, logger)
			return
		}
		if err := w.store.Complete(ctx, job.ID, encoded); err != nil {
			logger.Error("complete job", logging.Error(err))
			return
		}
		logger.Info("job completed")
	}
}

func (w *Worker) executeJob(ctx context.Context, job *queue.Job) (*tasks.Outcome, error) {
	task, err := w.registry.New(job.TaskName)
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "worker", "dispatch", "resolve task", err)
	}
	params, err := tasks.DecodeParams(job.Params)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "worker", "dispatch", "decode job params", err)
	}
	return task.Execute(ctx, params)
}

func (w *Worker) fail(ctx context.Context, job *queue.Job, message string, retryable bool, logger *slog.Logger) {
	if !retryable {
		if _, err := w.store.FailPermanently(ctx, job.ID, message); err != nil {
			logger.Error("record job failure", logging.Error(err))
			return
		}
		logger.Error("job failed permanently", slog.String("error", message))
		return
	}

	updated, err := w.store.Fail(ctx, job.ID, message, w.retryDelay)
	if err != nil {
		logger.Error("record job failure", logging.Error(err))
		return
	}
	if updated.Status == queue.StatusPending {
		logger.Warn("job failed, will retry",
			slog.Int("attempt", updated.Attempts),
			slog.Int("max_attempts", updated.MaxAttempts),
			slog.String("error", message))
		return
	}
	logger.Error("job failed permanently", slog.String("error", message))
}
