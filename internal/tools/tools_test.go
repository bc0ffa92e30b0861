package tools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jpark-labs/lexscout/internal/llm"
)

// fakeTool is a minimal capability for registry and invoker tests.
type fakeTool struct {
	name    string
	content string
	err     error
}

func (f *fakeTool) Name() string { return f.name }

func (f *fakeTool) Spec() llm.ToolSpec {
	return llm.ToolSpec{Name: f.name, Description: "fake"}
}

func (f *fakeTool) Invoke(context.Context, json.RawMessage) (string, error) {
	return f.content, f.err
}

func TestNewRegistry_DuplicateName(t *testing.T) {
	_, err := NewRegistry(&fakeTool{name: "a"}, &fakeTool{name: "a"})
	if err == nil {
		t.Fatal("expected error for duplicate tool name")
	}
}

func TestNewRegistry_EmptyName(t *testing.T) {
	_, err := NewRegistry(&fakeTool{name: ""})
	if err == nil {
		t.Fatal("expected error for empty tool name")
	}
}

func TestRegistry_SpecsOrder(t *testing.T) {
	reg, err := NewRegistry(&fakeTool{name: "b"}, &fakeTool{name: "a"}, &fakeTool{name: "c"})
	if err != nil {
		t.Fatalf("NewRegistry failed: %v", err)
	}

	specs := reg.Specs()
	want := []string{"b", "a", "c"}
	if len(specs) != len(want) {
		t.Fatalf("expected %d specs, got %d", len(want), len(specs))
	}
	for i, name := range want {
		if specs[i].Name != name {
			t.Errorf("specs[%d].Name = %q, want %q (registration order)", i, specs[i].Name, name)
		}
	}
}

func TestInvoker_UnknownToolIsFatal(t *testing.T) {
	reg, _ := NewRegistry(&fakeTool{name: "known"})
	inv := NewInvoker(reg)

	_, err := inv.Invoke(context.Background(), llm.ToolCall{ID: "c1", Name: "mystery"})
	if err == nil {
		t.Fatal("expected error for unknown tool")
	}
	if !errors.Is(err, ErrUnknownTool) {
		t.Errorf("expected ErrUnknownTool, got %v", err)
	}
}

func TestInvoker_CapabilityFailureBecomesObservation(t *testing.T) {
	reg, _ := NewRegistry(&fakeTool{name: "flaky", err: fmt.Errorf("network down")})
	inv := NewInvoker(reg)

	result, err := inv.Invoke(context.Background(), llm.ToolCall{ID: "c1", Name: "flaky"})
	if err != nil {
		t.Fatalf("capability failure must not surface as error, got %v", err)
	}
	if !result.IsError {
		t.Error("expected IsError observation")
	}
	if result.CallID != "c1" {
		t.Errorf("CallID = %q, want %q", result.CallID, "c1")
	}
	if !strings.Contains(result.Content, "network down") {
		t.Errorf("observation should carry the failure cause, got %q", result.Content)
	}
}

func TestInvoker_Success(t *testing.T) {
	reg, _ := NewRegistry(&fakeTool{name: "ok", content: "observation text"})
	inv := NewInvoker(reg)

	result, err := inv.Invoke(context.Background(), llm.ToolCall{ID: "c2", Name: "ok"})
	if err != nil {
		t.Fatalf("Invoke failed: %v", err)
	}
	if result.IsError {
		t.Error("unexpected IsError")
	}
	if result.Content != "observation text" {
		t.Errorf("Content = %q, want %q", result.Content, "observation text")
	}
	if result.CallID != "c2" {
		t.Errorf("CallID = %q, want %q", result.CallID, "c2")
	}
}

func TestNewResearchRegistry_FixedSet(t *testing.T) {
	reg, err := NewResearchRegistry(NewTavilyClient("key"))
	if err != nil {
		t.Fatalf("NewResearchRegistry failed: %v", err)
	}

	want := []string{"web_search", "statute_search", "case_law_search", "verify_identity_assumptions", "think_tool"}
	got := reg.Names()
	if len(got) != len(want) {
		t.Fatalf("expected %d tools, got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("tool[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
