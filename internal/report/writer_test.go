package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
)

type fakeCompleter struct {
	response string
	err      error
	lastUser string
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, error) {
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func TestWrite(t *testing.T) {
	llm := &fakeCompleter{response: "# 임대차 계약 위험 분석\n\n## 보증금 위험\n..."}
	w := NewWriter(llm)

	notes := []string{
		"Deposit priority findings [1].\n\n### Sources\n[1] Act §8: https://law.go.kr/8",
		"Ownership verification findings.",
	}

	report, err := w.Write(context.Background(), "보증금 위험을 분석해줘", notes)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !strings.HasPrefix(report, "# 임대차 계약 위험 분석") {
		t.Errorf("report = %q", report)
	}

	// Brief and every note must reach the prompt.
	for _, want := range []string{"보증금 위험을 분석해줘", "Deposit priority findings", "Ownership verification findings"} {
		if !strings.Contains(llm.lastUser, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestWrite_EmptyBrief(t *testing.T) {
	w := NewWriter(&fakeCompleter{response: "ignored"})
	if _, err := w.Write(context.Background(), "   ", nil); err == nil {
		t.Error("expected error for empty brief")
	}
}

func TestWrite_CompleterError(t *testing.T) {
	w := NewWriter(&fakeCompleter{err: fmt.Errorf("model unavailable")})
	if _, err := w.Write(context.Background(), "brief", nil); err == nil {
		t.Error("expected error")
	}
}

func TestWrite_EmptyResponse(t *testing.T) {
	w := NewWriter(&fakeCompleter{response: "  \n "})
	if _, err := w.Write(context.Background(), "brief", []string{"note"}); err == nil {
		t.Error("expected error for empty report")
	}
}

func TestWrite_NoNotes(t *testing.T) {
	llm := &fakeCompleter{response: "# Report\n\nNo findings were gathered."}
	w := NewWriter(llm)

	report, err := w.Write(context.Background(), "brief", nil)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if report == "" {
		t.Error("report is empty")
	}
	if !strings.Contains(llm.lastUser, "<Findings>\n\n</Findings>") {
		t.Errorf("empty findings block malformed: %q", llm.lastUser)
	}
}
