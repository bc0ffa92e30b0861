// Package engine implements the research orchestration core: a supervisor
// that decomposes a brief into parallel worker rounds, bounded tool-calling
// workers, and compression of transcripts into citable findings.
package engine

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/internal/state"
	"github.com/jpark-labs/lexscout/internal/tools"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// Defaults mirror the service's research budgets: three parallel workers,
// six supervisor decision turns, five tool calls per worker.
const (
	DefaultMaxWorkers    = 3
	DefaultMaxIterations = 6
	DefaultToolBudget    = 5
)

// Config contains the required dependencies for an Engine.
type Config struct {
	// Reasoner drives every model call the engine makes.
	Reasoner llm.Reasoner
	// Registry is the closed worker capability set.
	Registry *tools.Registry
}

// Option configures an Engine. Use With* functions to create Options.
type Option func(*engineOptions)

type engineOptions struct {
	maxWorkers    int
	maxIterations int
	toolBudget    int
	runTimeout    time.Duration
	store         *state.Store
	tracker       *llm.TokenTracker
}

// WithMaxWorkers sets the maximum parallel delegations per round.
func WithMaxWorkers(n int) Option {
	return func(o *engineOptions) { o.maxWorkers = n }
}

// WithMaxIterations sets the supervisor decision-turn budget.
func WithMaxIterations(n int) Option {
	return func(o *engineOptions) { o.maxIterations = n }
}

// WithToolBudget sets the per-worker tool-call ceiling.
func WithToolBudget(n int) Option {
	return func(o *engineOptions) { o.toolBudget = n }
}

// WithRunTimeout bounds the whole run. Zero means no timeout.
func WithRunTimeout(d time.Duration) Option {
	return func(o *engineOptions) { o.runTimeout = d }
}

// WithStore enables run persistence. A nil store disables it.
func WithStore(s *state.Store) Option {
	return func(o *engineOptions) { o.store = s }
}

// WithTokenTracker reports aggregate token usage on the run results.
func WithTokenTracker(t *llm.TokenTracker) Option {
	return func(o *engineOptions) { o.tracker = t }
}

// Engine runs research briefs to completion.
type Engine struct {
	reasoner llm.Reasoner
	registry *tools.Registry
	opts     engineOptions
	events   *emitter
}

// New creates an Engine. Reasoner and Registry are required.
func New(cfg Config, opts ...Option) (*Engine, error) {
	if cfg.Reasoner == nil {
		return nil, fmt.Errorf("engine requires a reasoner")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("engine requires a tool registry")
	}

	options := engineOptions{
		maxWorkers:    DefaultMaxWorkers,
		maxIterations: DefaultMaxIterations,
		toolBudget:    DefaultToolBudget,
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.maxWorkers < 1 {
		return nil, fmt.Errorf("max workers must be at least 1, got %d", options.maxWorkers)
	}
	if options.maxIterations < 1 {
		return nil, fmt.Errorf("max iterations must be at least 1, got %d", options.maxIterations)
	}
	if options.toolBudget < 1 {
		return nil, fmt.Errorf("tool budget must be at least 1, got %d", options.toolBudget)
	}

	return &Engine{
		reasoner: cfg.Reasoner,
		registry: cfg.Registry,
		opts:     options,
		events:   newEmitter(),
	}, nil
}

// Events returns the engine's event stream. The channel closes when Run
// returns.
func (e *Engine) Events() <-chan Event {
	return e.events.ch
}

// Run researches the brief to completion. The returned results are always
// non-nil and well-formed: notes are never empty (a marker note stands in
// when no worker produced findings) and partial notes survive failures and
// cancellation.
func (e *Engine) Run(ctx context.Context, brief string) (*models.ResearchResults, error) {
	defer e.events.close()

	runID := uuid.New().String()[:8]
	results := &models.ResearchResults{
		RunID:     runID,
		Brief:     brief,
		StartedAt: time.Now(),
	}

	if brief == "" {
		results.Notes = []string{models.InsufficientFindingsNote}
		results.FinishedAt = time.Now()
		return results, fmt.Errorf("research brief is empty")
	}

	if e.opts.runTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.opts.runTimeout)
		defer cancel()
	}

	e.events.emit(Event{Type: EventRunStarted, RunID: runID, Message: brief})
	log.Printf("[engine] run %s started (workers=%d iterations=%d budget=%d)",
		runID, e.opts.maxWorkers, e.opts.maxIterations, e.opts.toolBudget)

	var startIn, startOut int64
	if e.opts.tracker != nil {
		startIn, startOut = e.opts.tracker.Total()
	}

	sup := &supervisor{
		reasoner:      e.reasoner,
		registry:      e.registry,
		maxWorkers:    e.opts.maxWorkers,
		maxIterations: e.opts.maxIterations,
		toolBudget:    e.opts.toolBudget,
		events:        e.events,
		runID:         runID,
	}
	supRes := sup.run(ctx, brief)

	results.Notes = supRes.notes
	results.RawNotes = supRes.rawNotes
	results.Iterations = supRes.iterations
	results.WorkersRun = supRes.workersRun
	results.Truncated = supRes.truncated
	results.FinishedAt = time.Now()

	if len(results.Notes) == 0 {
		results.Notes = []string{models.InsufficientFindingsNote}
	}
	if e.opts.tracker != nil {
		endIn, endOut := e.opts.tracker.Total()
		results.InputTokens = endIn - startIn
		results.OutputTokens = endOut - startOut
	}

	if e.opts.store != nil {
		if err := e.opts.store.SaveRun(results); err != nil {
			log.Printf("[engine] failed to persist run %s: %v", runID, err)
		}
	}

	e.events.emit(Event{
		Type:    EventRunCompleted,
		RunID:   runID,
		Message: fmt.Sprintf("%d workers, %d iterations", results.WorkersRun, results.Iterations),
	})
	log.Printf("[engine] run %s finished: %d notes, %d iterations, truncated=%v",
		runID, len(results.Notes), results.Iterations, results.Truncated)

	if err := ctx.Err(); err != nil {
		return results, fmt.Errorf("run interrupted: %w", err)
	}
	return results, nil
}
