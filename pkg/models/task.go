package models

import "time"

// WorkerStatus represents the current state of a research worker.
type WorkerStatus string

const (
	// WorkerStatusPending indicates the worker has not started.
	WorkerStatusPending WorkerStatus = "pending"
	// WorkerStatusDeciding indicates the worker is choosing its next action.
	WorkerStatusDeciding WorkerStatus = "deciding"
	// WorkerStatusActing indicates the worker is executing tool calls.
	WorkerStatusActing WorkerStatus = "acting"
	// WorkerStatusCompressing indicates the worker is distilling its transcript.
	WorkerStatusCompressing WorkerStatus = "compressing"
	// WorkerStatusDone indicates the worker finished.
	WorkerStatusDone WorkerStatus = "done"
	// WorkerStatusFailed indicates the worker encountered an error.
	WorkerStatusFailed WorkerStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s WorkerStatus) Valid() bool {
	switch s {
	case WorkerStatusPending, WorkerStatusDeciding, WorkerStatusActing,
		WorkerStatusCompressing, WorkerStatusDone, WorkerStatusFailed:
		return true
	default:
		return false
	}
}

// WorkerTask is a single delegated research assignment. The supervisor
// produces these; each one is handed to exactly one worker.
type WorkerTask struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Topic is the self-contained research question. It must carry all
	// context the worker needs: workers never see the supervisor's
	// conversation or sibling tasks.
	Topic string `json:"topic"`
	// Instructions are optional supervisor hints (scope limits, sources
	// to prefer). May be empty.
	Instructions string `json:"instructions,omitempty"`
	// Round is the supervisor iteration that dispatched this task,
	// starting at 1.
	Round int `json:"round"`
	// Slot is the task's position within its round. Dispatch order, not
	// completion order, determines where the task's notes land.
	Slot int `json:"slot"`
	// CreatedAt is when the supervisor produced the task.
	CreatedAt time.Time `json:"created_at"`
}

// WorkerReport is what a finished worker hands back to the supervisor.
type WorkerReport struct {
	// TaskID identifies the task this report answers.
	TaskID string `json:"task_id"`
	// Status is the worker's terminal status (done or failed).
	Status WorkerStatus `json:"status"`
	// Findings is the compressed research note, citations included.
	// On failure it holds an error placeholder, never the empty string.
	Findings string `json:"findings"`
	// RawNotes is the unprocessed transcript text, one joined string,
	// kept for auditability.
	RawNotes string `json:"raw_notes"`
	// ToolCalls is how many tool invocations the worker spent.
	ToolCalls int `json:"tool_calls"`
	// Err holds the failure cause when Status is failed.
	Err error `json:"-"`
}
