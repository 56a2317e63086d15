package pipeline

import (
	"regexp"
	"strings"

	pkgerrors "github.com/quickmart/shelfsync/pkg/errors"
)

// tagPattern matches markup tags embedded in feed descriptions. Non-greedy
// by construction: a tag never spans another tag's brackets.
var tagPattern = regexp.MustCompile(`<[^<>]*>`)

// Extractor pulls a normalized "<number> <unit>" package token out of
// free-text descriptions, matching against a configured unit vocabulary.
type Extractor struct {
	pattern *regexp.Regexp
}

// NewExtractor compiles an extractor for the given unit vocabulary
// (e.g. GR, ML, KG, GRS). Matching is case-insensitive and word-bounded.
func NewExtractor(units []string) (*Extractor, error) {
	if len(units) == 0 {
		return nil, pkgerrors.NewConfigError("package extractor", "unit vocabulary must not be empty", nil)
	}
	quoted := make([]string, len(units))
	for i, u := range units {
		quoted[i] = regexp.QuoteMeta(strings.ToLower(u))
	}
	pattern, err := regexp.Compile(`(?i)\b(\d+(?:\.\d+)?)\s*(` + strings.Join(quoted, "|") + `)\b`)
	if err != nil {
		return nil, pkgerrors.NewConfigError("package extractor", "cannot compile unit pattern", err)
	}
	return &Extractor{pattern: pattern}, nil
}

// StripTags removes markup tags from a description verbatim.
func StripTags(s string) string {
	return tagPattern.ReplaceAllString(s, "")
}

// Extract strips markup from a description and returns the first package
// token as "<number> <unit>", or the empty string when nothing matches.
// The result is always a string, never a missing-value sentinel: downstream
// consumers assume a string type.
func (e *Extractor) Extract(description string) string {
	clean := tagPattern.ReplaceAllString(description, "")
	m := e.pattern.FindStringSubmatch(clean)
	if m == nil {
		return ""
	}
	return m[1] + " " + m[2]
}
