package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"submate/internal/config"
	"submate/internal/logging"
	"submate/internal/queue"
	"submate/internal/skip"
	"submate/internal/tasks"
)

// Backend is the durable queue surface the dispatcher needs. *queue.Store
// is the production implementation.
type Backend interface {
	Enqueue(ctx context.Context, req queue.NewJob) (*queue.Job, error)
	FindActiveByIdentity(ctx context.Context, identity string) (*queue.Job, error)
	Get(ctx context.Context, id string) (*queue.Job, error)
	Wait(ctx context.Context, id string, pollInterval time.Duration) (*queue.Job, error)
	Cancel(ctx context.Context, id string) error
	CancelAll(ctx context.Context) (int, error)
	Clear(ctx context.Context, statuses ...queue.Status) (int, error)
	Counts(ctx context.Context) (map[queue.Status]int, error)
	List(ctx context.Context, statuses ...queue.Status) ([]*queue.Job, error)
}

// EnqueueOptions controls how a submission runs.
type EnqueueOptions struct {
	// Immediate executes on the calling goroutine, bypassing the queue
	// entirely.
	Immediate bool
	// Blocking waits for the queued job to finish and carries its outcome
	// back, making the call equivalent to Immediate for the caller.
	Blocking bool
	// Deduplicate reuses an active job with the same identity instead of
	// enqueueing a duplicate.
	Deduplicate bool
}

// Handle describes a submission's fate.
type Handle struct {
	// JobID is empty for immediate executions.
	JobID string
	// Outcome is set for immediate and blocking submissions.
	Outcome *tasks.Outcome
	// Deduplicated reports that an existing active job was reused.
	Deduplicated bool
}

// Stats summarizes queue pressure.
type Stats struct {
	Pending   int
	Scheduled int
}

// Dispatcher turns named task submissions into inline executions or
// durable queue jobs.
type Dispatcher struct {
	registry     tasks.Registry
	backend      Backend
	maxAttempts  int
	pollInterval time.Duration
	logger       *slog.Logger
}

// NewDispatcher wires a dispatcher over the task registry and queue
// backend.
func NewDispatcher(registry tasks.Registry, backend Backend, cfg config.Queue, logger *slog.Logger) *Dispatcher {
	pollInterval := time.Duration(cfg.PollIntervalMS) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Dispatcher{
		registry:     registry,
		backend:      backend,
		maxAttempts:  maxAttempts,
		pollInterval: pollInterval,
		logger:       logging.WithComponent(logger, "dispatch"),
	}
}

// Enqueue validates and submits a task. Validation failures and skip
// signals surface as errors; execution failures arrive inside the handle's
// Outcome so queued and immediate paths look alike to callers.
func (d *Dispatcher) Enqueue(ctx context.Context, taskName string, params tasks.Params, opts EnqueueOptions) (*Handle, error) {
	task, err := d.registry.New(taskName)
	if err != nil {
		return nil, err
	}
	if err := task.ValidateInput(params); err != nil {
		return nil, err
	}
	identity := task.Identity(params)

	if opts.Immediate {
		outcome, err := task.Execute(ctx, params)
		if err != nil {
			return nil, err
		}
		return &Handle{Outcome: outcome}, nil
	}

	if opts.Deduplicate {
		existing, err := d.backend.FindActiveByIdentity(ctx, identity)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			d.logger.Debug("reusing active job",
				slog.String(logging.FieldTask, taskName),
				slog.String(logging.FieldJobID, existing.ID))
			return d.finishEnqueue(ctx, existing, opts, true)
		}
	}

	payload, err := params.Encode()
	if err != nil {
		return nil, err
	}
	job, err := d.backend.Enqueue(ctx, queue.NewJob{
		TaskName:    taskName,
		Identity:    identity,
		Params:      payload,
		MaxAttempts: d.maxAttempts,
	})
	if err != nil {
		return nil, err
	}
	d.logger.Info("job enqueued",
		slog.String(logging.FieldTask, taskName),
		slog.String(logging.FieldJobID, job.ID))

	return d.finishEnqueue(ctx, job, opts, false)
}

func (d *Dispatcher) finishEnqueue(ctx context.Context, job *queue.Job, opts EnqueueOptions, deduplicated bool) (*Handle, error) {
	handle := &Handle{JobID: job.ID, Deduplicated: deduplicated}
	if !opts.Blocking {
		return handle, nil
	}

	done, err := d.backend.Wait(ctx, job.ID, d.pollInterval)
	if err != nil {
		return nil, err
	}
	outcome, err := OutcomeFromJob(done)
	if err != nil {
		return nil, err
	}
	handle.Outcome = outcome
	return handle, nil
}

// OutcomeFromJob reconstructs a terminal job's outcome the way an
// immediate execution would have returned it. Skipped jobs surface as
// *tasks.SkipError.
func OutcomeFromJob(job *queue.Job) (*tasks.Outcome, error) {
	switch job.Status {
	case queue.StatusCompleted:
		var outcome tasks.Outcome
		if err := json.Unmarshal([]byte(job.Result), &outcome); err != nil {
			return nil, fmt.Errorf("decode job result: %w", err)
		}
		return &outcome, nil
	case queue.StatusSkipped:
		params, err := tasks.DecodeParams(job.Params)
		if err != nil {
			return nil, err
		}
		return nil, &tasks.SkipError{
			Path:   params.String(tasks.ParamFilePath),
			Reason: skip.Reason(job.SkipReason),
		}
	case queue.StatusFailed:
		return &tasks.Outcome{Success: false, Error: job.Error}, nil
	case queue.StatusCancelled:
		return nil, fmt.Errorf("job %s was cancelled", job.ID)
	default:
		return nil, fmt.Errorf("job %s is not terminal (%s)", job.ID, job.Status)
	}
}

// Size returns the number of pending jobs.
func (d *Dispatcher) Size(ctx context.Context) (int, error) {
	counts, err := d.backend.Counts(ctx)
	if err != nil {
		return 0, err
	}
	return counts[queue.StatusPending], nil
}

// Stats returns pending and scheduled (retry-delayed) counts.
func (d *Dispatcher) Stats(ctx context.Context) (Stats, error) {
	jobs, err := d.backend.List(ctx, queue.StatusPending)
	if err != nil {
		return Stats{}, err
	}
	stats := Stats{Pending: len(jobs)}
	now := time.Now()
	for _, job := range jobs {
		if job.NotBefore.After(now) {
			stats.Scheduled++
		}
	}
	return stats, nil
}

// Cancel revokes one pending job. Best effort: running jobs are not
// interrupted.
func (d *Dispatcher) Cancel(ctx context.Context, id string) error {
	return d.backend.Cancel(ctx, id)
}

// CancelAll revokes every pending job.
func (d *Dispatcher) CancelAll(ctx context.Context) (int, error) {
	return d.backend.CancelAll(ctx)
}

// Clear drops all jobs and returns how many were removed.
func (d *Dispatcher) Clear(ctx context.Context) (int, error) {
	return d.backend.Clear(ctx)
}
