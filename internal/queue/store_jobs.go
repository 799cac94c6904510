package queue

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

const jobColumns = "id, task_name, identity, params, status, attempts, max_attempts, error, skip_reason, result, created_at, updated_at, not_before"

func scanJob(row interface{ Scan(...any) error }) (*Job, error) {
	var (
		job                             Job
		createdAt, updatedAt, notBefore string
	)
	err := row.Scan(&job.ID, &job.TaskName, &job.Identity, &job.Params, &job.Status,
		&job.Attempts, &job.MaxAttempts, &job.Error, &job.SkipReason, &job.Result,
		&createdAt, &updatedAt, &notBefore)
	if err != nil {
		return nil, err
	}
	job.CreatedAt = decodeTime(createdAt)
	job.UpdatedAt = decodeTime(updatedAt)
	job.NotBefore = decodeTime(notBefore)
	return &job, nil
}

// Enqueue persists a new pending job and returns it.
func (s *Store) Enqueue(ctx context.Context, req NewJob) (*Job, error) {
	ctx = ensureContext(ctx)
	if strings.TrimSpace(req.TaskName) == "" {
		return nil, errors.New("enqueue: task name required")
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	now := time.Now()
	job := &Job{
		ID:          uuid.NewString(),
		TaskName:    req.TaskName,
		Identity:    req.Identity,
		Params:      req.Params,
		Status:      StatusPending,
		MaxAttempts: maxAttempts,
		CreatedAt:   now,
		UpdatedAt:   now,
		NotBefore:   now,
	}

	_, err := s.execWithRetry(ctx,
		"INSERT INTO jobs ("+jobColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		job.ID, job.TaskName, job.Identity, job.Params, job.Status,
		job.Attempts, job.MaxAttempts, job.Error, job.SkipReason, job.Result,
		encodeTime(job.CreatedAt), encodeTime(job.UpdatedAt), encodeTime(job.NotBefore))
	if err != nil {
		return nil, fmt.Errorf("enqueue job: %w", err)
	}
	return job, nil
}

// Get returns the job with the given id.
func (s *Store) Get(ctx context.Context, id string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// FindActiveByIdentity returns the newest non-terminal job with the given
// identity, or nil when none exists.
func (s *Store) FindActiveByIdentity(ctx context.Context, identity string) (*Job, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM jobs WHERE identity = ? AND status IN (?, ?) ORDER BY created_at DESC LIMIT 1",
		identity, StatusPending, StatusRunning)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find job by identity: %w", err)
	}
	return job, nil
}

// ClaimNext atomically moves the oldest eligible pending job to running and
// returns it. Returns nil when nothing is ready.
func (s *Store) ClaimNext(ctx context.Context) (*Job, error) {
	ctx = ensureContext(ctx)

	var claimed *Job
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin claim tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		now := time.Now()
		row := tx.QueryRowContext(ctx,
			"SELECT "+jobColumns+" FROM jobs WHERE status = ? AND not_before <= ? ORDER BY created_at LIMIT 1",
			StatusPending, encodeTime(now))
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			claimed = nil
			return nil
		}
		if err != nil {
			return fmt.Errorf("select pending job: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE jobs SET status = ?, attempts = attempts + 1, updated_at = ? WHERE id = ? AND status = ?",
			StatusRunning, encodeTime(now), job.ID, StatusPending)
		if err != nil {
			return fmt.Errorf("claim job: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("claim job: %w", err)
		}
		if affected != 1 {
			// Lost the race; the caller polls again.
			claimed = nil
			return tx.Commit()
		}

		job.Status = StatusRunning
		job.Attempts++
		job.UpdatedAt = now
		claimed = job
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return claimed, nil
}

// Complete marks a running job as completed with its result document.
func (s *Store) Complete(ctx context.Context, id, result string) error {
	return s.finish(ctx, id, StatusCompleted, "", "", result)
}

// MarkSkipped records that the job's work was intentionally not done.
func (s *Store) MarkSkipped(ctx context.Context, id, reason string) error {
	return s.finish(ctx, id, StatusSkipped, "", reason, "")
}

func (s *Store) finish(ctx context.Context, id string, status Status, errMessage, skipReason, result string) error {
	res, err := s.execWithRetry(ensureContext(ctx),
		"UPDATE jobs SET status = ?, error = ?, skip_reason = ?, result = ?, updated_at = ? WHERE id = ?",
		status, errMessage, skipReason, result, encodeTime(time.Now()), id)
	if err != nil {
		return fmt.Errorf("mark job %s: %w", status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark job %s: %w", status, err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Fail records a failed attempt. While attempts remain the job returns to
// pending with a retry delay; otherwise it is failed for good.
func (s *Store) Fail(ctx context.Context, id, message string, retryDelay time.Duration) (*Job, error) {
	ctx = ensureContext(ctx)

	var updated *Job
	err := retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin fail tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		row := tx.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
		job, err := scanJob(row)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		if err != nil {
			return fmt.Errorf("load job: %w", err)
		}

		now := time.Now()
		if job.Attempts < job.MaxAttempts {
			job.Status = StatusPending
			job.NotBefore = now.Add(retryDelay)
		} else {
			job.Status = StatusFailed
		}
		job.Error = message
		job.UpdatedAt = now

		_, err = tx.ExecContext(ctx,
			"UPDATE jobs SET status = ?, error = ?, updated_at = ?, not_before = ? WHERE id = ?",
			job.Status, job.Error, encodeTime(job.UpdatedAt), encodeTime(job.NotBefore), job.ID)
		if err != nil {
			return fmt.Errorf("record failure: %w", err)
		}
		updated = job
		return tx.Commit()
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// FailPermanently marks the job failed regardless of remaining attempts.
// Used for failures that cannot heal on retry, such as bad input.
func (s *Store) FailPermanently(ctx context.Context, id, message string) (*Job, error) {
	ctx = ensureContext(ctx)
	if err := s.finish(ctx, id, StatusFailed, message, "", ""); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Cancel marks a pending job cancelled. Running jobs cannot be cancelled.
func (s *Store) Cancel(ctx context.Context, id string) error {
	res, err := s.execWithRetry(ensureContext(ctx),
		"UPDATE jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		StatusCancelled, encodeTime(time.Now()), id, StatusPending)
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("cancel job: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: no pending job %s", ErrNotFound, id)
	}
	return nil
}

// CancelAll cancels every pending job and returns how many were affected.
func (s *Store) CancelAll(ctx context.Context) (int, error) {
	res, err := s.execWithRetry(ensureContext(ctx),
		"UPDATE jobs SET status = ?, updated_at = ? WHERE status = ?",
		StatusCancelled, encodeTime(time.Now()), StatusPending)
	if err != nil {
		return 0, fmt.Errorf("cancel all: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("cancel all: %w", err)
	}
	return int(affected), nil
}

// Clear deletes jobs in the given statuses, or every job when none are
// given. Returns the number of deleted rows.
func (s *Store) Clear(ctx context.Context, statuses ...Status) (int, error) {
	ctx = ensureContext(ctx)

	query := "DELETE FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			if !status.Valid() {
				return 0, fmt.Errorf("clear: unknown status %q", status)
			}
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear jobs: %w", err)
	}
	return int(affected), nil
}

// Counts returns the number of jobs per status.
func (s *Store) Counts(ctx context.Context) (map[Status]int, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(1) FROM jobs GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("count jobs: %w", err)
	}
	defer rows.Close()

	counts := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var (
			status Status
			count  int
		)
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("scan counts: %w", err)
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// List returns jobs, newest first, optionally filtered by status.
func (s *Store) List(ctx context.Context, statuses ...Status) ([]*Job, error) {
	ctx = ensureContext(ctx)

	query := "SELECT " + jobColumns + " FROM jobs"
	args := make([]any, 0, len(statuses))
	if len(statuses) > 0 {
		placeholders := make([]string, len(statuses))
		for i, status := range statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		query += " WHERE status IN (" + strings.Join(placeholders, ", ") + ")"
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// Wait polls until the job reaches a terminal status or the context ends.
func (s *Store) Wait(ctx context.Context, id string, pollInterval time.Duration) (*Job, error) {
	ctx = ensureContext(ctx)
	if pollInterval <= 0 {
		pollInterval = 250 * time.Millisecond
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		job, err := s.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		if job.Status.IsTerminal() {
			return job, nil
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}
