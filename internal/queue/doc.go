// Package queue provides durable job persistence backed by SQLite.
//
// Jobs move pending -> running -> {completed, failed, skipped}; pending jobs
// can also be cancelled. A failed attempt with retries remaining returns the
// job to pending with a not-before delay instead of failing it outright.
package queue
