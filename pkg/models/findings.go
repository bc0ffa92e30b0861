package models

import "fmt"

// Source is one cited reference inside a compressed finding.
type Source struct {
	// Number is the citation index, contiguous from 1 within a finding.
	Number int `json:"number"`
	// Title is the human-readable source title.
	Title string `json:"title"`
	// URL is the source location. May be empty for offline sources
	// (e.g. registry extracts supplied by the user).
	URL string `json:"url,omitempty"`
}

// String renders the source as a numbered reference line.
func (s Source) String() string {
	if s.URL == "" {
		return fmt.Sprintf("[%d] %s", s.Number, s.Title)
	}
	return fmt.Sprintf("[%d] %s: %s", s.Number, s.Title, s.URL)
}

// CompressedFindings is the distilled output of one worker: the findings
// body with inline [n] citation markers plus the source list they refer to.
type CompressedFindings struct {
	// Body is the findings text. Inline citation markers [n] refer to
	// entries in Sources by Number.
	Body string `json:"body"`
	// Sources are the cited references, numbered contiguously from 1.
	Sources []Source `json:"sources"`
}

// Render produces the canonical note text: body followed by a Sources
// section listing every reference.
func (f CompressedFindings) Render() string {
	if len(f.Sources) == 0 {
		return f.Body
	}
	out := f.Body + "\n\n### Sources\n"
	for _, src := range f.Sources {
		out += src.String() + "\n"
	}
	return out
}
