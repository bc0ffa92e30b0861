package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jpark-labs/lexscout/internal/llm"
)

// thinkTool records a strategic reflection. The observation feeds the
// worker's next decision but is excluded from compressed findings.
type thinkTool struct{}

// NewThinkTool returns the reflection capability.
func NewThinkTool() Tool {
	return &thinkTool{}
}

func (t *thinkTool) Name() string { return ThinkToolName }

func (t *thinkTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name: t.Name(),
		Description: "Record a strategic reflection on research progress. Use after each search " +
			"to analyze what was found, what is still missing, and whether enough evidence " +
			"exists to answer comprehensively. Does not retrieve anything.",
		Properties: map[string]interface{}{
			"reflection": map[string]interface{}{
				"type":        "string",
				"description": "Analysis of current findings, remaining gaps, and the next step",
			},
		},
		Required: []string{"reflection"},
	}
}

func (t *thinkTool) Invoke(_ context.Context, input json.RawMessage) (string, error) {
	var params struct {
		Reflection string `json:"reflection"`
	}
	if err := json.Unmarshal(input, &params); err != nil {
		return "", fmt.Errorf("invalid parameters: %w", err)
	}
	if params.Reflection == "" {
		return "", fmt.Errorf("reflection is required")
	}
	return fmt.Sprintf("Reflection recorded: %s", params.Reflection), nil
}
