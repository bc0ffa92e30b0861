package engine

import (
	"context"
	"fmt"
	"log"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/internal/tools"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// budgetExhaustedObservation answers tool calls requested past the
// per-worker ceiling. Each such call still gets its own result so the
// transcript stays well-formed.
const budgetExhaustedObservation = "Tool call budget exhausted. Do not request more tools; " +
	"synthesize your findings from the information already gathered."

// worker runs one bounded decide-act loop for a single task and compresses
// the transcript into findings. Workers are isolated: they see only their
// own task, never the brief or sibling work.
type worker struct {
	reasoner llm.Reasoner
	registry *tools.Registry
	invoker  *tools.Invoker
	budget   int
	events   *emitter
	runID    string
}

func newWorker(reasoner llm.Reasoner, registry *tools.Registry, budget int, events *emitter, runID string) *worker {
	return &worker{
		reasoner: reasoner,
		registry: registry,
		invoker:  tools.NewInvoker(registry),
		budget:   budget,
		events:   events,
		runID:    runID,
	}
}

// run executes the worker loop to completion. It always returns a report;
// failures are carried in the report, not as a second return value, so a
// failed worker cannot abort its siblings.
func (w *worker) run(ctx context.Context, task models.WorkerTask) models.WorkerReport {
	turns := []llm.Turn{{Role: llm.RoleUser, Text: taskPrompt(task)}}
	used := 0
	system := workerSystemPrompt(w.budget)
	specs := w.registry.Specs()

	for {
		if ctx.Err() != nil {
			return w.failedReport(task, turns, used, ctx.Err())
		}

		step, err := w.reasoner.Step(ctx, llm.StepRequest{
			System: system,
			Turns:  turns,
			Tools:  specs,
		})
		if err != nil {
			// Reasoning failure ends the loop; compress whatever exists.
			log.Printf("[worker] %s reasoning step failed: %v", task.ID, err)
			break
		}

		if len(step.ToolCalls) == 0 {
			if !step.EndTurn {
				// Stopped at the token cap, not a clean end of turn. The
				// partial text still feeds compression.
				log.Printf("[worker] %s reply cut off before end of turn", task.ID)
			}
			if step.Text != "" {
				turns = append(turns, llm.Turn{Role: llm.RoleAssistant, Text: step.Text})
			}
			break
		}

		results, fatal := w.executeRound(ctx, task, step.ToolCalls, &used)
		turns = append(turns,
			llm.Turn{Role: llm.RoleAssistant, Text: step.Text, ToolCalls: step.ToolCalls},
			llm.Turn{Role: llm.RoleUser, ToolResults: results},
		)

		if fatal != nil {
			return w.failedReport(task, turns, used, fatal)
		}
		if ctx.Err() != nil {
			return w.failedReport(task, turns, used, ctx.Err())
		}
		if used >= w.budget {
			break
		}
	}

	findings := w.compress(ctx, task, turns)
	return models.WorkerReport{
		TaskID:    task.ID,
		Status:    models.WorkerStatusDone,
		Findings:  findings,
		RawNotes:  joinTranscript(turns),
		ToolCalls: used,
	}
}

// executeRound runs one round of sibling tool calls concurrently and
// returns results matched to requests by call ID, in request order. Calls
// past the budget are answered with an exhaustion observation instead of
// being executed. A non-nil fatal error means the model requested a tool
// outside the registry, which is a contract violation.
func (w *worker) executeRound(ctx context.Context, task models.WorkerTask, calls []llm.ToolCall, used *int) ([]llm.ToolResult, error) {
	results := make([]llm.ToolResult, len(calls))
	fatals := make([]error, len(calls))

	g, gctx := errgroup.WithContext(ctx)
	for i, call := range calls {
		if *used >= w.budget {
			results[i] = llm.ToolResult{
				CallID:  call.ID,
				Content: budgetExhaustedObservation,
				IsError: true,
			}
			continue
		}
		*used++

		w.events.emit(Event{
			Type:   EventWorkerToolCall,
			RunID:  w.runID,
			TaskID: task.ID,
			Topic:  task.Topic,
			Round:  task.Round,
			Slot:   task.Slot,
			Tool:   call.Name,
		})

		i, call := i, call
		g.Go(func() error {
			result, err := w.invoker.Invoke(gctx, call)
			if err != nil {
				// Unknown tool. Captured per slot so the join always
				// completes and sibling results are not lost.
				fatals[i] = err
				results[i] = llm.ToolResult{CallID: call.ID, Content: err.Error(), IsError: true}
				return nil
			}
			results[i] = result
			return nil
		})
	}

	// Goroutines always return nil; Wait is a pure join barrier.
	_ = g.Wait()

	for _, err := range fatals {
		if err != nil {
			return results, err
		}
	}
	return results, nil
}

// compress distills the transcript into citable findings. Evidence is
// preserved verbatim; think-tool reflections stay out of the findings but
// remain in the raw notes. On failure the placeholder note is returned so
// the supervisor always receives something well-formed.
func (w *worker) compress(ctx context.Context, task models.WorkerTask, turns []llm.Turn) string {
	compressTurns := append(append([]llm.Turn{}, turns...), llm.Turn{
		Role: llm.RoleUser,
		Text: compressHumanPrompt(task.Topic),
	})

	step, err := w.reasoner.Step(ctx, llm.StepRequest{
		System:    compressSystemPrompt(),
		Turns:     compressTurns,
		MaxTokens: 16384,
	})
	if err != nil || strings.TrimSpace(step.Text) == "" {
		if err != nil {
			log.Printf("[worker] %s compression failed: %v", task.ID, err)
		}
		return compressFailureNote
	}

	return parseFindings(step.Text).Render()
}

func (w *worker) failedReport(task models.WorkerTask, turns []llm.Turn, used int, cause error) models.WorkerReport {
	return models.WorkerReport{
		TaskID:    task.ID,
		Status:    models.WorkerStatusFailed,
		Findings:  fmt.Sprintf("Error: research on %q failed: %v", task.Topic, cause),
		RawNotes:  joinTranscript(turns),
		ToolCalls: used,
		Err:       cause,
	}
}

func taskPrompt(task models.WorkerTask) string {
	if task.Instructions == "" {
		return task.Topic
	}
	return task.Topic + "\n\nAdditional instructions: " + task.Instructions
}

// joinTranscript flattens assistant text and tool observations into one
// raw-notes string, reflections included.
func joinTranscript(turns []llm.Turn) string {
	var parts []string
	for _, turn := range turns {
		if turn.Role == llm.RoleAssistant && turn.Text != "" {
			parts = append(parts, turn.Text)
		}
		for _, res := range turn.ToolResults {
			parts = append(parts, res.Content)
		}
	}
	return strings.Join(parts, "\n")
}
