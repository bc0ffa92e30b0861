package engine

import (
	"strings"
	"testing"
)

func TestParseFindings_ContiguousRenumbering(t *testing.T) {
	// The model numbered with gaps; the source list must come out 1..n
	// and inline markers must follow.
	text := `The deposit enjoys priority repayment [2]. A mismatch voids protection [7].

### Sources
[2] Housing Lease Protection Act §8: https://law.go.kr/8
[7] Supreme Court 2015Da12345: https://glaw.scourt.go.kr/case/1`

	f := parseFindings(text)

	if len(f.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(f.Sources))
	}
	for i, src := range f.Sources {
		if src.Number != i+1 {
			t.Errorf("source %d has number %d, want %d", i, src.Number, i+1)
		}
	}
	if f.Sources[0].Title != "Housing Lease Protection Act §8" {
		t.Errorf("Title = %q", f.Sources[0].Title)
	}
	if f.Sources[0].URL != "https://law.go.kr/8" {
		t.Errorf("URL = %q", f.Sources[0].URL)
	}

	if !strings.Contains(f.Body, "priority repayment [1]") {
		t.Errorf("inline [2] not remapped to [1]: %q", f.Body)
	}
	if !strings.Contains(f.Body, "voids protection [2]") {
		t.Errorf("inline [7] not remapped to [2]: %q", f.Body)
	}
}

func TestParseFindings_NoSourcesSection(t *testing.T) {
	f := parseFindings("plain findings with no citations")
	if len(f.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(f.Sources))
	}
	if f.Body != "plain findings with no citations" {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestParseFindings_DuplicateNumbersKeepFirst(t *testing.T) {
	text := `Fact [1]. Other fact [3].

### Sources
[1] First: https://a
[1] Shadowed: https://b
[3] Third: https://c`

	f := parseFindings(text)
	if len(f.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(f.Sources))
	}
	if f.Sources[0].Title != "First" || f.Sources[1].Title != "Third" {
		t.Errorf("sources = %+v", f.Sources)
	}
	if !strings.Contains(f.Body, "Other fact [2]") {
		t.Errorf("inline [3] not remapped to [2]: %q", f.Body)
	}
}

func TestParseFindings_DanglingInlineMarkerUntouched(t *testing.T) {
	text := `Cited [1] and dangling [9].

### Sources
[1] Only source: https://a`

	f := parseFindings(text)
	if !strings.Contains(f.Body, "[9]") {
		t.Errorf("dangling marker should be left alone: %q", f.Body)
	}
}

func TestParseFindings_SourceWithoutURL(t *testing.T) {
	text := `Fact [1].

### Sources
[1] Registry extract supplied by the user`

	f := parseFindings(text)
	if len(f.Sources) != 1 {
		t.Fatalf("expected 1 source, got %d", len(f.Sources))
	}
	if f.Sources[0].URL != "" {
		t.Errorf("URL = %q, want empty", f.Sources[0].URL)
	}
	if f.Sources[0].Title != "Registry extract supplied by the user" {
		t.Errorf("Title = %q", f.Sources[0].Title)
	}
}

func TestParseFindings_TitleContainingColon(t *testing.T) {
	text := `Fact [1].

### Sources
[1] Act §3: scope of application: https://law.go.kr/3`

	f := parseFindings(text)
	if f.Sources[0].Title != "Act §3: scope of application" {
		t.Errorf("Title = %q", f.Sources[0].Title)
	}
	if f.Sources[0].URL != "https://law.go.kr/3" {
		t.Errorf("URL = %q", f.Sources[0].URL)
	}
}

func TestParseFindings_EmptySourcesBlock(t *testing.T) {
	text := "Findings text.\n\n### Sources\nnothing parseable here"
	f := parseFindings(text)
	if len(f.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(f.Sources))
	}
	// Unparseable block: the whole text stands as the body.
	if !strings.Contains(f.Body, "Findings text.") {
		t.Errorf("Body = %q", f.Body)
	}
}

func TestSplitSources_LastHeadingWins(t *testing.T) {
	text := "The report quotes a heading: ### Sources in prose. Real one follows.\n\n### Sources\n[1] A: https://a"
	_, block := splitSources(text)
	if !strings.Contains(block, "[1] A: https://a") {
		t.Errorf("block = %q", block)
	}
	if strings.Contains(block, "Real one follows") {
		t.Errorf("split at the wrong heading: %q", block)
	}
}
