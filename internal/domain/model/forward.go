package model

import "time"

// ForwardMode selects how target message ids are enumerated.
type ForwardMode string

const (
	// ForwardAll scans the source history (bounded) newest-first.
	ForwardAll ForwardMode = "all"
	// ForwardRange enumerates [FromID, ToID] ascending.
	ForwardRange ForwardMode = "range"
)

// ForwardRequest carries the three collected dialog answers plus the
// resolved range. Built once, never partially executed.
type ForwardRequest struct {
	UserID        int64
	SourceGroupID int64
	TopicID       *int
	DestinationID int64
	Mode          ForwardMode
	FromID        int
	ToID          int
}

// ForwardReport accumulates the outcome of one run. Counters only ever
// increase.
type ForwardReport struct {
	Attempted int
	Succeeded int
	Failed    int
	LastMsgID int
	Truncated bool
}

// ForwardRunStatus is the terminal state of a persisted run record.
type ForwardRunStatus string

const (
	RunCompleted ForwardRunStatus = "completed"
	RunAborted   ForwardRunStatus = "aborted"
)

// ForwardRun is the audit record persisted after a run finishes.
type ForwardRun struct {
	ID            string
	RunID         string
	UserID        int64
	SourceGroupID int64
	TopicID       *int
	DestinationID int64
	Mode          ForwardMode
	Succeeded     int
	Failed        int
	Status        ForwardRunStatus
	StartedAt     time.Time
	FinishedAt    time.Time
}
