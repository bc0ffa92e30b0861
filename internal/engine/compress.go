package engine

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/jpark-labs/lexscout/pkg/models"
)

// compressFailureNote is the placeholder finding when compression fails.
// Raw notes still carry the evidence.
const compressFailureNote = "Error synthesizing research report"

const sourcesHeading = "### Sources"

var (
	sourceLineRe     = regexp.MustCompile(`^\[(\d+)\]\s*(.+)$`)
	inlineCitationRe = regexp.MustCompile(`\[(\d+)\]`)
)

// parseFindings splits compressor output into body and source list, then
// renumbers citations so they are contiguous from 1 in listed order. The
// model is asked to number sequentially; this enforces it mechanically.
func parseFindings(text string) models.CompressedFindings {
	body, sourcesBlock := splitSources(text)
	if sourcesBlock == "" {
		return models.CompressedFindings{Body: strings.TrimSpace(text)}
	}

	var sources []models.Source
	remap := make(map[int]int)

	for _, line := range strings.Split(sourcesBlock, "\n") {
		line = strings.TrimSpace(line)
		m := sourceLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		oldNum, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if _, dup := remap[oldNum]; dup {
			continue
		}

		title, url := splitSourceEntry(m[2])
		newNum := len(sources) + 1
		remap[oldNum] = newNum
		sources = append(sources, models.Source{Number: newNum, Title: title, URL: url})
	}

	if len(sources) == 0 {
		return models.CompressedFindings{Body: strings.TrimSpace(text)}
	}

	body = inlineCitationRe.ReplaceAllStringFunc(body, func(marker string) string {
		m := inlineCitationRe.FindStringSubmatch(marker)
		old, err := strconv.Atoi(m[1])
		if err != nil {
			return marker
		}
		if newNum, ok := remap[old]; ok {
			return fmt.Sprintf("[%d]", newNum)
		}
		// Dangling marker with no source entry; leave it alone.
		return marker
	})

	return models.CompressedFindings{Body: strings.TrimSpace(body), Sources: sources}
}

// splitSources separates the findings body from the sources block. The
// last occurrence of the heading wins, in case the body quotes one.
func splitSources(text string) (body, sourcesBlock string) {
	idx := strings.LastIndex(text, sourcesHeading)
	if idx < 0 {
		return text, ""
	}
	return text[:idx], text[idx+len(sourcesHeading):]
}

// splitSourceEntry splits "Title: URL" on the separator before the URL.
// Titles may themselves contain colons, so split at the scheme.
func splitSourceEntry(entry string) (title, url string) {
	entry = strings.TrimSpace(entry)
	for _, scheme := range []string{"http://", "https://"} {
		if idx := strings.Index(entry, scheme); idx >= 0 {
			title = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(entry[:idx]), ":"))
			url = strings.TrimSpace(entry[idx:])
			return title, url
		}
	}
	return entry, ""
}
