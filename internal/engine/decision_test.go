package engine

import (
	"testing"

	"github.com/jpark-labs/lexscout/internal/llm"
)

func TestParseDecision(t *testing.T) {
	tests := []struct {
		name      string
		step      *llm.StepResult
		wantKind  DecisionKind
		wantTasks int
	}{
		{
			name:     "no tool calls means complete",
			step:     endTurnStep("I believe we are done"),
			wantKind: DecisionComplete,
		},
		{
			name:     "explicit completion",
			step:     toolCallStep(completeCall()),
			wantKind: DecisionComplete,
		},
		{
			name:      "single delegation",
			step:      toolCallStep(conductCall("deposit priority rules")),
			wantKind:  DecisionDelegate,
			wantTasks: 1,
		},
		{
			name: "parallel delegations",
			step: toolCallStep(
				conductCall("deposit priority rules"),
				conductCall("registered owner verification"),
				conductCall("precedents on deposit fraud"),
			),
			wantKind:  DecisionDelegate,
			wantTasks: 3,
		},
		{
			name:     "think only",
			step:     toolCallStep(thinkCall("plan the rounds")),
			wantKind: DecisionThink,
		},
		{
			name: "completion wins over delegation",
			step: toolCallStep(
				conductCall("one more topic"),
				completeCall(),
			),
			wantKind:  DecisionComplete,
			wantTasks: 1,
		},
		{
			name: "delegation wins over think",
			step: toolCallStep(
				thinkCall("splitting into subtopics"),
				conductCall("statute lookup"),
			),
			wantKind:  DecisionDelegate,
			wantTasks: 1,
		},
		{
			name: "malformed delegation falls back to complete",
			step: toolCallStep(
				llm.ToolCall{ID: "x1", Name: conductResearchToolName, Input: []byte(`{"research_topic": ""}`)},
			),
			wantKind: DecisionComplete,
		},
		{
			name: "unparseable json falls back to complete",
			step: toolCallStep(
				llm.ToolCall{ID: "x2", Name: conductResearchToolName, Input: []byte(`not json`)},
			),
			wantKind: DecisionComplete,
		},
		{
			name: "unknown tool falls back to complete",
			step: toolCallStep(
				llm.ToolCall{ID: "x3", Name: "LaunchRockets", Input: []byte(`{}`)},
			),
			wantKind: DecisionComplete,
		},
		{
			name: "valid delegation survives a malformed sibling",
			step: toolCallStep(
				llm.ToolCall{ID: "x4", Name: conductResearchToolName, Input: []byte(`broken`)},
				conductCall("valid topic"),
			),
			wantKind:  DecisionDelegate,
			wantTasks: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			d := parseDecision(tc.step, 1)
			if d.kind != tc.wantKind {
				t.Errorf("kind = %q, want %q", d.kind, tc.wantKind)
			}
			if len(d.tasks) != tc.wantTasks {
				t.Errorf("tasks = %d, want %d", len(d.tasks), tc.wantTasks)
			}
		})
	}
}

func TestParseDecision_TaskFields(t *testing.T) {
	step := toolCallStep(
		llm.ToolCall{ID: "c1", Name: conductResearchToolName, Input: []byte(
			`{"research_topic": "  deposit priority rules  ", "instructions": "prefer statutes"}`)},
		conductCall("second topic"),
	)

	d := parseDecision(step, 4)
	if len(d.tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(d.tasks))
	}

	first := d.tasks[0]
	if first.Topic != "deposit priority rules" {
		t.Errorf("Topic = %q, want trimmed topic", first.Topic)
	}
	if first.Instructions != "prefer statutes" {
		t.Errorf("Instructions = %q", first.Instructions)
	}
	if first.Round != 4 {
		t.Errorf("Round = %d, want 4", first.Round)
	}
	if first.Slot != 0 || d.tasks[1].Slot != 1 {
		t.Errorf("Slots = %d, %d; want 0, 1", first.Slot, d.tasks[1].Slot)
	}
	if first.ID == "" || first.ID == d.tasks[1].ID {
		t.Errorf("task IDs must be unique and non-empty: %q, %q", first.ID, d.tasks[1].ID)
	}
}

func TestParseReflection(t *testing.T) {
	if got, ok := parseReflection(thinkCall("assess results")); !ok || got != "assess results" {
		t.Errorf("parseReflection = %q, %v", got, ok)
	}

	if _, ok := parseReflection(llm.ToolCall{Name: thinkToolName, Input: []byte(`{}`)}); ok {
		t.Error("empty reflection should not parse")
	}
	if _, ok := parseReflection(llm.ToolCall{Name: thinkToolName, Input: []byte(`bad`)}); ok {
		t.Error("malformed reflection should not parse")
	}
}
