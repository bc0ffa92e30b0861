// Package scope implements the intake phase of a legal review: deciding
// whether the user gave enough to start, and turning the conversation plus
// parsed document facts into a single standalone research brief.
package scope

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Completer makes a single text completion. Satisfied by llm.Client.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// DocumentFact holds the extracted facts from one parsed document.
type DocumentFact struct {
	FileName     string `json:"file_name"`
	DocumentType string `json:"document_type"`
	Summary      string `json:"summary"`
}

// Scoper runs the clarification gate and brief planning.
type Scoper struct {
	llm Completer
}

// NewScoper creates a Scoper backed by the given completer.
func NewScoper(llm Completer) *Scoper {
	return &Scoper{llm: llm}
}

func todayStr() string {
	return time.Now().Format("Mon Jan 2, 2006")
}

func renderConversation(messages []string) string {
	if len(messages) == 0 {
		return "(no messages)"
	}
	return strings.Join(messages, "\n")
}

func renderDocuments(facts []DocumentFact) string {
	if len(facts) == 0 {
		return "(no documents)"
	}
	var b strings.Builder
	for i, f := range facts {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "File: %s\nType: %s\n%s", f.FileName, f.DocumentType, f.Summary)
	}
	return b.String()
}

// extractJSONObject pulls the outermost JSON object out of a model
// response that may wrap it in prose or markdown fences.
func extractJSONObject(response string) (string, error) {
	start := strings.Index(response, "{")
	end := strings.LastIndex(response, "}")
	if start == -1 || end == -1 || end <= start {
		preview := response
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		return "", fmt.Errorf("no JSON object found in response (got %d chars): %q", len(response), preview)
	}
	return response[start : end+1], nil
}
