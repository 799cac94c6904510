package queue

import "time"

// Status represents the lifecycle of a queued job.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
	StatusCancelled Status = "cancelled"
)

var allStatuses = []Status{
	StatusPending,
	StatusRunning,
	StatusCompleted,
	StatusFailed,
	StatusSkipped,
	StatusCancelled,
}

// AllStatuses returns the known statuses in lifecycle order.
func AllStatuses() []Status {
	statuses := make([]Status, len(allStatuses))
	copy(statuses, allStatuses)
	return statuses
}

var terminalStatuses = map[Status]struct{}{
	StatusCompleted: {},
	StatusFailed:    {},
	StatusSkipped:   {},
	StatusCancelled: {},
}

// IsTerminal reports whether the status ends a job's lifecycle.
func (s Status) IsTerminal() bool {
	_, ok := terminalStatuses[s]
	return ok
}

// Valid reports whether the status is one of the known values.
func (s Status) Valid() bool {
	for _, status := range allStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Job is one persisted unit of work.
type Job struct {
	ID          string
	TaskName    string
	Identity    string
	Params      string // JSON document
	Status      Status
	Attempts    int
	MaxAttempts int
	Error       string
	SkipReason  string
	Result      string // JSON document, set on completion
	CreatedAt   time.Time
	UpdatedAt   time.Time
	NotBefore   time.Time
}

// NewJob describes a job to enqueue.
type NewJob struct {
	TaskName    string
	Identity    string
	Params      string
	MaxAttempts int
}
