package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/clauserisk/internal/model"
)

// headerPattern matches a numbered line that could be a section heading,
// e.g. "2. SERVICES", "3.1 GOVERNING LAW" or "2.1 Payment Terms".
// The heading text is captured; it must not end like a sentence.
var headerPattern = regexp.MustCompile(`^\d+(?:\.\d+)*\.?\s+([A-Z][^.!?;]*)$`)

// headingMinorWords may stay lower-case inside a title-case heading
var headingMinorWords = map[string]bool{
	"a": true, "an": true, "and": true, "as": true, "at": true, "by": true,
	"for": true, "in": true, "of": true, "on": true, "or": true, "the": true,
	"to": true, "with": true,
}

// ClauseExtractor splits document text into clauses
type ClauseExtractor struct {
	header *regexp.Regexp
}

// NewClauseExtractor creates a new clause extractor
func NewClauseExtractor() *ClauseExtractor {
	return &ClauseExtractor{header: headerPattern}
}

// Extract splits text into ordered, trimmed, non-empty clauses.
// A numbered heading line is fused with the content line that follows it.
func (e *ClauseExtractor) Extract(text string) []model.Clause {
	lines := splitLines(text)

	var clauses []model.Clause
	for i := 0; i < len(lines); i++ {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}

		// Only fuse across a single line break into real content
		if e.IsHeader(line) && i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if next != "" && !e.IsHeader(next) {
				line = line + " " + next
				i++
			}
		}

		clauses = append(clauses, model.Clause{
			Index: len(clauses),
			Text:  line,
		})
	}

	return clauses
}

// IsHeader reports whether a trimmed line is a bare numbered heading
func (e *ClauseExtractor) IsHeader(line string) bool {
	m := e.header.FindStringSubmatch(line)
	if m == nil {
		return false
	}
	return isHeading(m[1])
}

// isHeading reports whether every significant word is capitalised, so
// "Limitation of Liability" is a heading and "The parties agree" is not
func isHeading(text string) bool {
	for _, word := range strings.Fields(text) {
		word = strings.TrimLeft(word, `("'`)
		if word == "" || headingMinorWords[strings.ToLower(word)] {
			continue
		}
		r, _ := utf8.DecodeRuneInString(word)
		if unicode.IsLower(r) {
			return false
		}
	}
	return true
}

// Segment splits text into clauses using the default extractor
func Segment(text string) []model.Clause {
	return NewClauseExtractor().Extract(text)
}

// splitLines normalizes CRLF and CR line endings and splits on line breaks
func splitLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Split(text, "\n")
}
