// Package report turns the accumulated research notes into the final
// review document handed back to the user.
package report

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

// Writer generates the final report from the brief and the notes.
type Writer struct {
	llm Completer
}

// NewWriter creates a report Writer backed by the given completer.
func NewWriter(llm Completer) *Writer {
	return &Writer{llm: llm}
}

const writerSystemPrompt = `Based on all the research conducted, create a comprehensive, well-structured answer to the overall research brief.

CRITICAL: write the answer in the same language as the research brief. The user will only understand the answer if it is written in their own language.

The answer must:
1. Be well-organized with proper headings (# for title, ## for sections, ### for subsections).
2. Include specific facts and insights from the research.
3. Reference relevant sources using [Title](URL) format.
4. Provide a balanced, thorough analysis. Be as comprehensive as possible and include all information relevant to the overall research question. Readers expect detailed, comprehensive answers.
5. Include a "Sources" section at the end with all referenced links.

Structure the report however best fits the question: a comparison, a list, an overview with one section per concept, or a single section when that suffices. Sections should be cohesive and make sense for the reader.

For each section:
- Use simple, clear language.
- Use ## for section titles (Markdown format).
- Never refer to yourself as the writer. This is a professional report without self-referential language or commentary.
- Each section should be as long as necessary to deeply answer the question with the gathered information.
- Use bullet points when appropriate, but write in paragraph form by default.`

// Write produces the final report for the brief from the merged research
// notes. An empty note set still yields a report stating what is missing.
func (w *Writer) Write(ctx context.Context, brief string, notes []string) (string, error) {
	if strings.TrimSpace(brief) == "" {
		return "", fmt.Errorf("empty research brief")
	}

	findings := strings.Join(notes, "\n")

	user := fmt.Sprintf(`<Research Brief>
%s
</Research Brief>

Today's date is %s.

Here are the findings from the research that was conducted:
<Findings>
%s
</Findings>

Create the detailed answer to the overall research brief.`,
		brief, time.Now().Format("Mon Jan 2, 2006"), findings)

	report, err := w.llm.Complete(ctx, writerSystemPrompt, user)
	if err != nil {
		return "", fmt.Errorf("report generation: %w", err)
	}

	report = strings.TrimSpace(report)
	if report == "" {
		return "", fmt.Errorf("model returned an empty report")
	}

	return report, nil
}
