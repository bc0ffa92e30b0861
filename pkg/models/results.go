package models

import "time"

// InsufficientFindingsNote is substituted when a run ends with no usable
// worker findings, so downstream consumers never see an empty collection.
const InsufficientFindingsNote = "No sufficient findings were gathered for this brief. " +
	"The research run ended before any worker produced usable evidence."

// ResearchResults is the final output of a research run. It is always
// well-formed: Notes is never empty (a marker note is substituted when no
// worker produced findings) and RawNotes parallels the workers that ran.
type ResearchResults struct {
	// RunID is the unique identifier for the run.
	RunID string `json:"run_id"`
	// Brief is the research brief the run investigated.
	Brief string `json:"brief"`
	// Notes are the compressed findings in dispatch order, one entry per
	// completed worker (or the insufficient-findings marker).
	Notes []string `json:"notes"`
	// RawNotes are the unprocessed worker transcripts in dispatch order,
	// kept for audit. May be empty when no worker ran.
	RawNotes []string `json:"raw_notes"`
	// Iterations is how many supervisor decision turns the run consumed.
	Iterations int `json:"iterations"`
	// WorkersRun is the total number of workers dispatched.
	WorkersRun int `json:"workers_run"`
	// Truncated is true when the run ended on budget exhaustion or
	// cancellation rather than an explicit completion signal.
	Truncated bool `json:"truncated"`
	// StartedAt and FinishedAt bound the run.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	// InputTokens and OutputTokens aggregate model usage across the run.
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// HasFindings reports whether any note carries real evidence, as opposed
// to the insufficient-findings marker.
func (r *ResearchResults) HasFindings() bool {
	for _, n := range r.Notes {
		if n != "" && n != InsufficientFindingsNote {
			return true
		}
	}
	return false
}
