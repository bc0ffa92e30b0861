// Package tools provides the closed capability set research workers can
// call: web, statute, and case-law search, identity verification, and the
// think tool. The registry is populated once at startup; there is no
// runtime registration.
package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jpark-labs/lexscout/internal/llm"
)

// ThinkToolName identifies the reflection tool. Observations from it are
// kept in raw notes but excluded from compressed findings.
const ThinkToolName = "think_tool"

// ErrUnknownTool indicates a request for a tool that was never registered.
// This is a contract violation, not a capability failure.
var ErrUnknownTool = errors.New("unknown tool")

// Tool is one capability a worker can invoke.
type Tool interface {
	// Name returns the tool's registered name.
	Name() string
	// Spec returns the schema offered to the model.
	Spec() llm.ToolSpec
	// Invoke executes the tool. A returned error is a capability
	// failure; the invoker converts it into an error observation.
	Invoke(ctx context.Context, input json.RawMessage) (string, error)
}

// Registry holds the fixed tool set. Populated at construction; lookups
// only after that.
type Registry struct {
	order []string
	tools map[string]Tool
}

// NewRegistry builds a registry from the given tools. Duplicate names are
// a construction error.
func NewRegistry(toolList ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(toolList))}
	for _, t := range toolList {
		name := t.Name()
		if name == "" {
			return nil, fmt.Errorf("tool with empty name")
		}
		if _, exists := r.tools[name]; exists {
			return nil, fmt.Errorf("duplicate tool name %q", name)
		}
		r.tools[name] = t
		r.order = append(r.order, name)
	}
	return r, nil
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Specs returns the tool schemas in registration order, ready to offer to
// the model.
func (r *Registry) Specs() []llm.ToolSpec {
	specs := make([]llm.ToolSpec, 0, len(r.order))
	for _, name := range r.order {
		specs = append(specs, r.tools[name].Spec())
	}
	return specs
}

// Invoker dispatches tool calls against a registry. Capability failures
// become error observations; only an unregistered tool name surfaces as an
// error, since that means the model was offered a tool we cannot serve.
type Invoker struct {
	registry *Registry
}

// NewInvoker creates an invoker over the given registry.
func NewInvoker(registry *Registry) *Invoker {
	return &Invoker{registry: registry}
}

// Invoke executes one tool call and returns the observation matched to the
// call ID. The returned error is non-nil only for ErrUnknownTool.
func (inv *Invoker) Invoke(ctx context.Context, call llm.ToolCall) (llm.ToolResult, error) {
	tool, ok := inv.registry.Get(call.Name)
	if !ok {
		return llm.ToolResult{}, fmt.Errorf("%w: %q", ErrUnknownTool, call.Name)
	}

	content, err := tool.Invoke(ctx, call.Input)
	if err != nil {
		return llm.ToolResult{
			CallID:  call.ID,
			Content: fmt.Sprintf("Tool %s failed: %v", call.Name, err),
			IsError: true,
		}, nil
	}

	return llm.ToolResult{CallID: call.ID, Content: content}, nil
}
