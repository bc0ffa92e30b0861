package engine

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/pkg/models"
)

// DecisionKind classifies a supervisor turn.
type DecisionKind string

const (
	// DecisionThink records reflections and continues deciding.
	DecisionThink DecisionKind = "think"
	// DecisionDelegate dispatches worker tasks.
	DecisionDelegate DecisionKind = "delegate"
	// DecisionComplete ends the run. Also the fallback for turns with no
	// actions or only malformed output.
	DecisionComplete DecisionKind = "complete"
)

// decision is the parsed form of one supervisor turn. Every tool call the
// model made is retained in exactly one bucket so the transcript can be
// closed with a result per call.
type decision struct {
	kind DecisionKind
	// tasks are the valid delegations, in call order. research[i] is the
	// tool call that produced tasks[i].
	tasks    []models.WorkerTask
	research []llm.ToolCall
	// thinks are think_tool calls, answered inline by the supervisor.
	thinks []llm.ToolCall
	// completes are ResearchComplete calls.
	completes []llm.ToolCall
	// invalid are malformed or unrecognized calls; each gets an error
	// observation if the transcript continues.
	invalid []llm.ToolCall
}

type conductResearchArgs struct {
	ResearchTopic string `json:"research_topic"`
	Instructions  string `json:"instructions"`
}

type thinkArgs struct {
	Reflection string `json:"reflection"`
}

// parseDecision classifies the supervisor's tool calls for one turn.
// A turn with no tool calls, or with nothing valid in it, is a completion:
// the safe interpretation of silence and of malformed output alike.
func parseDecision(step *llm.StepResult, round int) decision {
	d := decision{}

	for _, call := range step.ToolCalls {
		switch call.Name {
		case researchCompleteToolName:
			d.completes = append(d.completes, call)

		case conductResearchToolName:
			var args conductResearchArgs
			if err := json.Unmarshal(call.Input, &args); err != nil || strings.TrimSpace(args.ResearchTopic) == "" {
				d.invalid = append(d.invalid, call)
				continue
			}
			d.research = append(d.research, call)
			d.tasks = append(d.tasks, models.WorkerTask{
				ID:           uuid.New().String()[:8],
				Topic:        strings.TrimSpace(args.ResearchTopic),
				Instructions: strings.TrimSpace(args.Instructions),
				Round:        round,
				Slot:         len(d.tasks),
				CreatedAt:    time.Now(),
			})

		case thinkToolName:
			d.thinks = append(d.thinks, call)

		default:
			d.invalid = append(d.invalid, call)
		}
	}

	switch {
	case len(d.completes) > 0:
		d.kind = DecisionComplete
	case len(d.tasks) > 0:
		d.kind = DecisionDelegate
	case len(d.thinks) > 0:
		d.kind = DecisionThink
	default:
		d.kind = DecisionComplete
	}

	return d
}

// parseReflection extracts the reflection text from a think_tool call.
func parseReflection(call llm.ToolCall) (string, bool) {
	var args thinkArgs
	if err := json.Unmarshal(call.Input, &args); err != nil || args.Reflection == "" {
		return "", false
	}
	return args.Reflection, true
}
