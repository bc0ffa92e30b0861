package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
)

// Reasoner is the single reasoning step the engine's state machines drive.
// Each Step is one model call over a caller-held transcript; the caller
// decides what to do with the returned text and tool-call requests.
type Reasoner interface {
	Step(ctx context.Context, req StepRequest) (*StepResult, error)
}

// Role identifies the author of a transcript turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ToolCall is one tool invocation requested by the model.
type ToolCall struct {
	// ID is the model-assigned call identifier. Results are matched back
	// to requests by this ID.
	ID string
	// Name is the requested tool name.
	Name string
	// Input is the raw JSON arguments.
	Input json.RawMessage
}

// ToolResult answers one ToolCall.
type ToolResult struct {
	// CallID must equal the ID of the request it answers.
	CallID string
	// Content is the observation text.
	Content string
	// IsError marks the observation as a capability failure.
	IsError bool
}

// Turn is one entry in a conversation transcript. Assistant turns may
// carry tool calls; user turns may carry the matching tool results.
type Turn struct {
	Role        Role
	Text        string
	ToolCalls   []ToolCall
	ToolResults []ToolResult
}

// ToolSpec describes one tool offered to the model for a step.
type ToolSpec struct {
	Name        string
	Description string
	Properties  map[string]interface{}
	Required    []string
}

// StepRequest is the input to one reasoning step.
type StepRequest struct {
	// System is the system prompt for this step.
	System string
	// Turns is the transcript so far. Must end with a user turn.
	Turns []Turn
	// Tools are the capabilities offered for this step. May be empty.
	Tools []ToolSpec
	// MaxTokens caps the response size; 0 means the default.
	MaxTokens int64
}

// StepResult is the model's output for one step.
type StepResult struct {
	// Text is the concatenated text content of the response.
	Text string
	// ToolCalls are the tool invocations the model requested, in order.
	// Empty when the model ended its turn with text only.
	ToolCalls []ToolCall
	// EndTurn is true when the model stopped without requesting tools.
	EndTurn bool
	// InputTokens and OutputTokens report usage for this call.
	InputTokens  int64
	OutputTokens int64
}

const defaultStepMaxTokens = 8192

// Step makes one Messages call and returns the parsed response.
func (c *Client) Step(ctx context.Context, req StepRequest) (*StepResult, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = defaultStepMaxTokens
	}

	messages, err := buildMessages(req.Turns)
	if err != nil {
		return nil, err
	}

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if req.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.System}}
	}
	if len(req.Tools) > 0 {
		params.Tools = buildToolParams(req.Tools)
	}

	resp, err := c.inner.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("API call failed: %w", err)
	}

	c.tracker.Add(resp.Usage.InputTokens, resp.Usage.OutputTokens)

	result := &StepResult{
		InputTokens:  resp.Usage.InputTokens,
		OutputTokens: resp.Usage.OutputTokens,
	}

	for _, block := range resp.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			result.Text += variant.Text
		case anthropic.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, ToolCall{
				ID:    variant.ID,
				Name:  variant.Name,
				Input: variant.Input,
			})
		}
	}

	result.EndTurn = resp.StopReason == anthropic.StopReasonEndTurn && len(result.ToolCalls) == 0

	return result, nil
}

// buildMessages converts a transcript into SDK message params.
func buildMessages(turns []Turn) ([]anthropic.MessageParam, error) {
	messages := make([]anthropic.MessageParam, 0, len(turns))
	for i, turn := range turns {
		var blocks []anthropic.ContentBlockParamUnion
		if turn.Text != "" {
			blocks = append(blocks, anthropic.NewTextBlock(turn.Text))
		}

		switch turn.Role {
		case RoleAssistant:
			for _, call := range turn.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, call.Input, call.Name))
			}
			if len(blocks) == 0 {
				return nil, fmt.Errorf("empty assistant turn at index %d", i)
			}
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		case RoleUser:
			for _, res := range turn.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(res.CallID, res.Content, res.IsError))
			}
			if len(blocks) == 0 {
				return nil, fmt.Errorf("empty user turn at index %d", i)
			}
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		default:
			return nil, fmt.Errorf("unknown turn role %q at index %d", turn.Role, i)
		}
	}
	if len(messages) == 0 {
		return nil, fmt.Errorf("transcript has no turns")
	}
	return messages, nil
}

// buildToolParams converts tool specs into SDK tool definitions.
func buildToolParams(specs []ToolSpec) []anthropic.ToolUnionParam {
	tools := make([]anthropic.ToolUnionParam, 0, len(specs))
	for _, spec := range specs {
		props := spec.Properties
		if props == nil {
			props = map[string]interface{}{}
		}
		tools = append(tools, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        spec.Name,
				Description: anthropic.String(spec.Description),
				InputSchema: anthropic.ToolInputSchemaParam{
					Properties: props,
					Required:   spec.Required,
				},
			},
		})
	}
	return tools
}

// Complete makes a single text-only call with no tools. Used by the scope
// and report stages, which want one prompt in and one document out.
func (c *Client) Complete(ctx context.Context, system, user string) (string, error) {
	result, err := c.Step(ctx, StepRequest{
		System:    system,
		Turns:     []Turn{{Role: RoleUser, Text: user}},
		MaxTokens: 4096,
	})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}
