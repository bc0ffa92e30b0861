package engine

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jpark-labs/lexscout/internal/llm"
	"github.com/jpark-labs/lexscout/internal/tools"
)

// fakeReasoner routes steps by the tool set offered: supervisor steps see
// ConductResearch, worker steps see the research registry, compression
// steps see no tools. Supervisor steps are scripted in order; worker and
// compression behavior are injectable functions shared by all workers.
type fakeReasoner struct {
	mu sync.Mutex

	supervisorSteps []scriptedStep
	supervisorIdx   int

	workerStep   func(req llm.StepRequest) (*llm.StepResult, error)
	compressStep func(req llm.StepRequest) (*llm.StepResult, error)
}

type scriptedStep struct {
	result *llm.StepResult
	err    error
}

func (f *fakeReasoner) Step(_ context.Context, req llm.StepRequest) (*llm.StepResult, error) {
	if len(req.Tools) > 0 && req.Tools[0].Name == conductResearchToolName {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.supervisorIdx >= len(f.supervisorSteps) {
			return nil, fmt.Errorf("fake reasoner: no supervisor step %d scripted", f.supervisorIdx)
		}
		step := f.supervisorSteps[f.supervisorIdx]
		f.supervisorIdx++
		return step.result, step.err
	}

	if len(req.Tools) > 0 {
		if f.workerStep == nil {
			return endTurnStep("no findings"), nil
		}
		return f.workerStep(req)
	}

	if f.compressStep == nil {
		return endTurnStep("compressed findings"), nil
	}
	return f.compressStep(req)
}

func endTurnStep(text string) *llm.StepResult {
	return &llm.StepResult{Text: text, EndTurn: true}
}

func toolCallStep(calls ...llm.ToolCall) *llm.StepResult {
	return &llm.StepResult{ToolCalls: calls}
}

var callSeq int
var callSeqMu sync.Mutex

func nextCallID() string {
	callSeqMu.Lock()
	defer callSeqMu.Unlock()
	callSeq++
	return fmt.Sprintf("call_%d", callSeq)
}

func conductCall(topic string) llm.ToolCall {
	args, _ := json.Marshal(map[string]string{"research_topic": topic})
	return llm.ToolCall{ID: nextCallID(), Name: conductResearchToolName, Input: args}
}

func completeCall() llm.ToolCall {
	return llm.ToolCall{ID: nextCallID(), Name: researchCompleteToolName, Input: []byte(`{}`)}
}

func thinkCall(reflection string) llm.ToolCall {
	args, _ := json.Marshal(map[string]string{"reflection": reflection})
	return llm.ToolCall{ID: nextCallID(), Name: thinkToolName, Input: args}
}

func searchCall(name, query string) llm.ToolCall {
	args, _ := json.Marshal(map[string]string{"query": query})
	return llm.ToolCall{ID: nextCallID(), Name: name, Input: args}
}

// stubTool is a canned worker capability.
type stubTool struct {
	name    string
	content string
	err     error
	mu      sync.Mutex
	calls   int
}

func (s *stubTool) Name() string { return s.name }

func (s *stubTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{
		Name:        s.name,
		Description: "stub",
		Properties: map[string]interface{}{
			"query": map[string]interface{}{"type": "string"},
		},
		Required: []string{"query"},
	}
}

func (s *stubTool) Invoke(context.Context, json.RawMessage) (string, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	return s.content, s.err
}

func (s *stubTool) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func testRegistry(toolList ...tools.Tool) *tools.Registry {
	if len(toolList) == 0 {
		toolList = []tools.Tool{
			&stubTool{name: "web_search", content: "search observation"},
			&stubTool{name: tools.ThinkToolName, content: "Reflection recorded"},
		}
	}
	reg, err := tools.NewRegistry(toolList...)
	if err != nil {
		panic(err)
	}
	return reg
}

// drainEvents consumes an engine's event stream in the background so the
// emitter never blocks, returning a collector for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []Event
	done   chan struct{}
}

func collectEvents(ch <-chan Event) *eventLog {
	el := &eventLog{done: make(chan struct{})}
	go func() {
		for ev := range ch {
			el.mu.Lock()
			el.events = append(el.events, ev)
			el.mu.Unlock()
		}
		close(el.done)
	}()
	return el
}

func (el *eventLog) wait() []Event {
	<-el.done
	el.mu.Lock()
	defer el.mu.Unlock()
	return el.events
}

func (el *eventLog) count(t EventType) int {
	n := 0
	for _, ev := range el.wait() {
		if ev.Type == t {
			n++
		}
	}
	return n
}
