package queue

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenPath(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestEnqueueAndGet(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, err := store.Enqueue(ctx, NewJob{
		TaskName:    "transcribe",
		Identity:    "abc123",
		Params:      `{"path":"/media/movie.mkv"}`,
		MaxAttempts: 3,
	})
	if err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if job.ID == "" {
		t.Error("job id must be set")
	}
	if job.Status != StatusPending {
		t.Errorf("status = %s", job.Status)
	}

	loaded, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if loaded.TaskName != "transcribe" || loaded.Identity != "abc123" {
		t.Errorf("loaded job = %+v", loaded)
	}
}

func TestEnqueueRequiresTaskName(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.Enqueue(context.Background(), NewJob{}); err == nil {
		t.Fatal("expected error for empty task name")
	}
}

func TestGetMissing(t *testing.T) {
	store := newTestStore(t)
	_, err := store.Get(context.Background(), "nope")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestClaimNextOrderAndAttempts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})
	time.Sleep(2 * time.Millisecond)
	second, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})

	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed == nil || claimed.ID != first.ID {
		t.Fatalf("expected oldest job first, got %+v", claimed)
	}
	if claimed.Status != StatusRunning || claimed.Attempts != 1 {
		t.Errorf("claimed job = %+v", claimed)
	}

	claimed, err = store.ClaimNext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if claimed == nil || claimed.ID != second.ID {
		t.Fatalf("expected second job, got %+v", claimed)
	}

	claimed, err = store.ClaimNext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if claimed != nil {
		t.Fatalf("queue should be drained, got %+v", claimed)
	}
}

func TestCompleteAndWait(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 1})
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete(ctx, job.ID, `{"subtitle":"/media/movie.eng.srt"}`); err != nil {
		t.Fatal(err)
	}

	done, err := store.Wait(ctx, job.ID, 5*time.Millisecond)
	if err != nil {
		t.Fatal(err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("status = %s", done.Status)
	}
	if done.Result == "" {
		t.Error("result must be stored")
	}
}

func TestFailRetriesThenFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 2})

	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}
	failed, err := store.Fail(ctx, job.ID, "boom", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != StatusPending {
		t.Fatalf("first failure should requeue, got %s", failed.Status)
	}
	if !failed.NotBefore.After(time.Now().Add(30 * time.Minute)) {
		t.Error("retry delay not applied")
	}

	// Not eligible until the delay passes.
	if claimed, err := store.ClaimNext(ctx); err != nil || claimed != nil {
		t.Fatalf("delayed job must not be claimable, got %+v err %v", claimed, err)
	}

	// Make it eligible again and exhaust attempts.
	if _, err := store.execWithRetry(ctx,
		"UPDATE jobs SET not_before = ? WHERE id = ?", encodeTime(time.Now().Add(-time.Second)), job.ID); err != nil {
		t.Fatal(err)
	}
	if claimed, err := store.ClaimNext(ctx); err != nil || claimed == nil {
		t.Fatalf("job should be claimable, got %+v err %v", claimed, err)
	}
	failed, err = store.Fail(ctx, job.ID, "boom again", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("attempts exhausted, expected failed, got %s", failed.Status)
	}
	if failed.Error != "boom again" {
		t.Errorf("error = %q", failed.Error)
	}
}

func TestFailPermanentlyIgnoresRemainingAttempts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}

	failed, err := store.FailPermanently(ctx, job.ID, "bad input")
	if err != nil {
		t.Fatal(err)
	}
	if failed.Status != StatusFailed {
		t.Fatalf("status = %s", failed.Status)
	}
	if failed.Attempts != 1 {
		t.Errorf("attempts = %d", failed.Attempts)
	}
	if failed.Error != "bad input" {
		t.Errorf("error = %q", failed.Error)
	}
	if claimed, err := store.ClaimNext(ctx); err != nil || claimed != nil {
		t.Fatalf("failed job must not be claimable, got %+v err %v", claimed, err)
	}
}

func TestMarkSkipped(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.MarkSkipped(ctx, job.ID, "target_subtitle_exists"); err != nil {
		t.Fatal(err)
	}

	loaded, _ := store.Get(ctx, job.ID)
	if loaded.Status != StatusSkipped || loaded.SkipReason != "target_subtitle_exists" {
		t.Errorf("job = %+v", loaded)
	}
}

func TestCancelOnlyPending(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	pending, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})
	running, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3})

	// Claim the first enqueued job so the second stays pending.
	claimed, err := store.ClaimNext(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if claimed.ID == pending.ID {
		pending, running = running, pending
	}

	if err := store.Cancel(ctx, pending.ID); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	if err := store.Cancel(ctx, running.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("running job must not be cancellable, got %v", err)
	}
}

func TestCancelAllAndCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 3}); err != nil {
			t.Fatal(err)
		}
	}
	cancelled, err := store.CancelAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if cancelled != 3 {
		t.Errorf("cancelled %d, want 3", cancelled)
	}

	counts, err := store.Counts(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts[StatusCancelled] != 3 || counts[StatusPending] != 0 {
		t.Errorf("counts = %v", counts)
	}
}

func TestClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", MaxAttempts: 1})
	if _, err := store.Enqueue(ctx, NewJob{TaskName: "detect", MaxAttempts: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete(ctx, job.ID, "{}"); err != nil {
		t.Fatal(err)
	}

	deleted, err := store.Clear(ctx, StatusCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d, want 1", deleted)
	}

	deleted, err = store.Clear(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if deleted != 1 {
		t.Errorf("deleted %d remaining, want 1", deleted)
	}
}

func TestFindActiveByIdentity(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	found, err := store.FindActiveByIdentity(ctx, "abc")
	if err != nil || found != nil {
		t.Fatalf("expected no match, got %+v err %v", found, err)
	}

	job, _ := store.Enqueue(ctx, NewJob{TaskName: "transcribe", Identity: "abc", MaxAttempts: 1})
	found, err = store.FindActiveByIdentity(ctx, "abc")
	if err != nil {
		t.Fatal(err)
	}
	if found == nil || found.ID != job.ID {
		t.Fatalf("expected job %s, got %+v", job.ID, found)
	}

	// Terminal jobs do not count as active.
	if _, err := store.ClaimNext(ctx); err != nil {
		t.Fatal(err)
	}
	if err := store.Complete(ctx, job.ID, "{}"); err != nil {
		t.Fatal(err)
	}
	found, err = store.FindActiveByIdentity(ctx, "abc")
	if err != nil || found != nil {
		t.Fatalf("completed job must not match, got %+v err %v", found, err)
	}
}

func TestSchemaMismatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "queue.db")

	store, err := OpenPath(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.execWithRetry(context.Background(), "UPDATE schema_version SET version = 99"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	if _, err := OpenPath(path); !errors.Is(err, ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}
