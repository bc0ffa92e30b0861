package engine

import (
	"context"
	"fmt"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/internal/tools"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// overflowObservation answers ConductResearch calls beyond the per-round
// worker cap.
const overflowObservation = "Error: Did not run this research as you have already exceeded " +
	"the maximum number of concurrent research units. Please try again with fewer research units."

// malformedCallObservation answers unrecognized or malformed tool calls.
const malformedCallObservation = "Error: unrecognized or malformed tool call."

// supervisorResult is what the supervisor loop hands back to the engine.
type supervisorResult struct {
	notes      []string
	rawNotes   []string
	iterations int
	workersRun int
	truncated  bool
}

// supervisor owns the top-level decision loop: it reads the brief, thinks,
// delegates rounds of workers, and decides when research is complete. It
// is the only component that sees the whole conversation.
type supervisor struct {
	reasoner      llm.Reasoner
	registry      *tools.Registry
	maxWorkers    int
	maxIterations int
	toolBudget    int
	events        *emitter
	runID         string
}

// run drives the supervisor until completion, budget exhaustion, or
// cancellation. Notes accumulate in dispatch order and are never revised
// after a round joins.
func (s *supervisor) run(ctx context.Context, brief string) supervisorResult {
	res := supervisorResult{}
	turns := []llm.Turn{{Role: llm.RoleUser, Text: brief}}
	system := supervisorSystemPrompt(s.maxWorkers, s.maxIterations)
	specs := supervisorToolSpecs(s.maxWorkers)
	round := 0

	for {
		if ctx.Err() != nil {
			res.truncated = true
			return res
		}

		// Budget gate fires before the decision turn: at the cap the run
		// freezes without spending another step.
		if res.iterations >= s.maxIterations {
			res.truncated = true
			return res
		}

		step, err := s.reasoner.Step(ctx, llm.StepRequest{
			System: system,
			Turns:  turns,
			Tools:  specs,
		})
		if err != nil {
			// A failed decision turn freezes the run with what we have.
			log.Printf("[supervisor] reasoning step failed, ending run: %v", err)
			res.truncated = true
			return res
		}

		// One decision turn, one increment. Think turns count too.
		res.iterations++

		d := parseDecision(step, round+1)

		if d.kind == DecisionComplete {
			return res
		}

		if d.kind == DecisionThink {
			turns = s.appendTurn(turns, step, d, nil)
			continue
		}

		// Delegate. Cap the round at maxWorkers; overflow calls are
		// answered with an error observation, not queued.
		round++
		dispatch := d.tasks
		if len(dispatch) > s.maxWorkers {
			dispatch = dispatch[:s.maxWorkers]
		}

		s.events.emit(Event{
			Type:    EventRoundStarted,
			RunID:   s.runID,
			Round:   round,
			Message: fmt.Sprintf("dispatching %d workers", len(dispatch)),
		})
		log.Printf("[supervisor] round %d: dispatching %d of %d requested tasks", round, len(dispatch), len(d.tasks))

		reports := s.dispatchRound(ctx, dispatch)

		if ctx.Err() != nil {
			// Cancelled mid-round: the in-flight round contributes
			// nothing; completed rounds stand.
			res.truncated = true
			return res
		}

		for i, report := range reports {
			task := dispatch[i]
			if report.Status == models.WorkerStatusFailed {
				s.events.emit(Event{
					Type: EventWorkerFailed, RunID: s.runID, TaskID: task.ID,
					Topic: task.Topic, Round: round, Slot: i, Error: report.Err,
				})
				log.Printf("[supervisor] worker %s failed: %v", task.ID, report.Err)
			} else {
				s.events.emit(Event{
					Type: EventWorkerCompleted, RunID: s.runID, TaskID: task.ID,
					Topic: task.Topic, Round: round, Slot: i,
				})
			}
			// Findings merge in dispatch order, placeholder or not.
			res.notes = append(res.notes, report.Findings)
			if report.RawNotes != "" {
				res.rawNotes = append(res.rawNotes, report.RawNotes)
			}
			res.workersRun++
		}

		s.events.emit(Event{Type: EventRoundCompleted, RunID: s.runID, Round: round})

		turns = s.appendTurn(turns, step, d, reports)
	}
}

// dispatchRound runs the round's workers concurrently and returns their
// reports indexed by dispatch slot. Worker goroutines never return errors;
// failures live inside the reports, so the join barrier always completes.
func (s *supervisor) dispatchRound(ctx context.Context, dispatch []models.WorkerTask) []models.WorkerReport {
	reports := make([]models.WorkerReport, len(dispatch))

	g, gctx := errgroup.WithContext(ctx)
	for i, task := range dispatch {
		s.events.emit(Event{
			Type: EventWorkerStarted, RunID: s.runID, TaskID: task.ID,
			Topic: task.Topic, Round: task.Round, Slot: i,
		})

		i, task := i, task
		g.Go(func() error {
			w := newWorker(s.reasoner, s.registry, s.toolBudget, s.events, s.runID)
			reports[i] = w.run(gctx, task)
			return nil
		})
	}
	_ = g.Wait()

	return reports
}

// appendTurn closes the supervisor's turn in the transcript: the assistant
// message with its tool calls, then one result per call in request order.
func (s *supervisor) appendTurn(turns []llm.Turn, step *llm.StepResult, d decision, reports []models.WorkerReport) []llm.Turn {
	resultByCall := make(map[string]llm.ToolResult, len(step.ToolCalls))

	for i, call := range d.research {
		switch {
		case i < len(reports):
			resultByCall[call.ID] = llm.ToolResult{CallID: call.ID, Content: reports[i].Findings}
		default:
			resultByCall[call.ID] = llm.ToolResult{CallID: call.ID, Content: overflowObservation, IsError: true}
		}
	}

	for _, call := range d.thinks {
		reflection, ok := parseReflection(call)
		if !ok {
			resultByCall[call.ID] = llm.ToolResult{CallID: call.ID, Content: malformedCallObservation, IsError: true}
			continue
		}
		s.events.emit(Event{Type: EventSupervisorThinking, RunID: s.runID, Message: reflection})
		resultByCall[call.ID] = llm.ToolResult{CallID: call.ID, Content: "Reflection recorded: " + reflection}
	}

	for _, call := range d.invalid {
		resultByCall[call.ID] = llm.ToolResult{CallID: call.ID, Content: malformedCallObservation, IsError: true}
	}

	results := make([]llm.ToolResult, 0, len(step.ToolCalls))
	for _, call := range step.ToolCalls {
		if result, ok := resultByCall[call.ID]; ok {
			results = append(results, result)
		}
	}

	turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Text: step.Text, ToolCalls: step.ToolCalls})
	if len(results) > 0 {
		turns = append(turns, llm.Turn{Role: llm.RoleUser, ToolResults: results})
	}
	return turns
}
