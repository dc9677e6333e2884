// Package merge folds freshly generated descriptive text into previously
// stored text without losing hand-written content.
//
// Generated text is wrapped in a pair of sentinel markers. On the next run
// only the span between the markers is replaced; anything written before or
// after it survives. Text without markers is kept and the fresh block is
// appended below a horizontal rule, unless it looks like the output of an
// older, unmarked generator.
package merge

import "strings"

// Separator goes between preserved hand-written text and a fresh block.
const Separator = "\n\n---\n\n"

// Markers is a pair of sentinel strings plus the fingerprint of the
// unmarked legacy format of the same text class.
type Markers struct {
	Start string
	End   string

	// Legacy reports whether unmarked text was produced by an older
	// generator. Best effort only: hand-written text that happens to match
	// a fingerprint is replaced.
	Legacy func(text string) bool
}

// CollectionMarkers delimit the collection-level description.
var CollectionMarkers = Markers{
	Start:  "<!-- AUTO-GENERATED START -->",
	End:    "<!-- AUTO-GENERATED END -->",
	Legacy: legacyCollection,
}

// RequestMarkers delimit the per-request description.
var RequestMarkers = Markers{
	Start:  "<!-- AUTO-GENERATED-REQUEST START -->",
	End:    "<!-- AUTO-GENERATED-REQUEST END -->",
	Legacy: legacyRequest,
}

// Wrap surrounds body with the marker pair.
func (m Markers) Wrap(body string) string {
	return m.Start + "\n" + body + m.End
}

// Contains reports whether text carries both markers.
func (m Markers) Contains(text string) bool {
	return strings.Contains(text, m.Start) && strings.Contains(text, m.End)
}

// Generated merges fresh generated text into existing text.
func Generated(existing, fresh string, m Markers) string {
	switch {
	case existing == "":
		return fresh
	case fresh == "":
		return existing
	case existing == fresh:
		return existing
	}

	if m.Contains(existing) {
		before, rest, _ := strings.Cut(existing, m.Start)
		// an end marker that only appears before the start marker closes nothing
		_, after, _ := strings.Cut(rest, m.End)
		before = strings.TrimSpace(before)
		after = strings.TrimSpace(after)

		var b strings.Builder
		if before != "" {
			b.WriteString(before)
			b.WriteString("\n\n")
		}
		b.WriteString(fresh)
		if after != "" {
			b.WriteString("\n\n")
			b.WriteString(after)
		}
		return b.String()
	}

	if m.Legacy != nil && m.Legacy(existing) {
		return fresh
	}

	return existing + Separator + fresh
}

func legacyCollection(text string) bool {
	return strings.HasPrefix(text, "# API Collection Documentation") ||
		strings.Contains(text, "This collection contains") ||
		strings.Contains(text, "Auto-generated on")
}

var legacyRequestPrefixes = []string{"# GET ", "# POST ", "# PUT ", "# DELETE "}

var legacyRequestSections = []string{
	"## Query Parameters",
	"## Request Body",
	"## Responses",
	"**Controller:**",
}

func legacyRequest(text string) bool {
	for _, p := range legacyRequestPrefixes {
		if strings.HasPrefix(text, p) {
			return true
		}
	}
	for _, s := range legacyRequestSections {
		if strings.Contains(text, s) {
			return true
		}
	}
	return false
}
