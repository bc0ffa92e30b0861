package engine

import (
	"log"
	"time"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventRunStarted indicates a research run has started.
	EventRunStarted EventType = "run_started"
	// EventRoundStarted indicates the supervisor dispatched a round of workers.
	EventRoundStarted EventType = "round_started"
	// EventSupervisorThinking indicates the supervisor recorded a reflection.
	EventSupervisorThinking EventType = "supervisor_thinking"
	// EventWorkerStarted indicates a worker began researching its topic.
	EventWorkerStarted EventType = "worker_started"
	// EventWorkerToolCall indicates a worker invoked a tool.
	EventWorkerToolCall EventType = "worker_tool_call"
	// EventWorkerCompleted indicates a worker finished with findings.
	EventWorkerCompleted EventType = "worker_completed"
	// EventWorkerFailed indicates a worker failed; its slot gets a placeholder note.
	EventWorkerFailed EventType = "worker_failed"
	// EventRoundCompleted indicates all workers of a round joined.
	EventRoundCompleted EventType = "round_completed"
	// EventRunCompleted indicates the run finished.
	EventRunCompleted EventType = "run_completed"
)

// Event is emitted by the engine as a run progresses. Consumed by the TUI
// and the headless progress printer.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// RunID identifies the run.
	RunID string
	// TaskID identifies the related worker task, if applicable.
	TaskID string
	// Topic is the related research topic, if applicable.
	Topic string
	// Round is the supervisor round, starting at 1.
	Round int
	// Slot is the worker's position within its round.
	Slot int
	// Tool is the invoked tool name for tool-call events.
	Tool string
	// Message provides additional context.
	Message string
	// Error contains failure details for failure events.
	Error error
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

const eventBufferSize = 256

// emitter fans events out to a buffered channel. Slow consumers drop
// events rather than stall the run.
type emitter struct {
	ch chan Event
}

func newEmitter() *emitter {
	return &emitter{ch: make(chan Event, eventBufferSize)}
}

func (e *emitter) emit(event Event) {
	event.Timestamp = time.Now()
	select {
	case e.ch <- event:
	default:
		log.Printf("[engine] event channel full, dropping %s", event.Type)
	}
}

func (e *emitter) close() {
	close(e.ch)
}
