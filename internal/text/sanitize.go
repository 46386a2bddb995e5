// Package text provides string cleanup primitives for free-form model output:
// code fence stripping, JSON object recovery, and sentence-aware truncation.
package text

import (
	"encoding/json"
	"regexp"
	"strings"
)

// MaxQueryLength bounds a synthesized search query.
const MaxQueryLength = 1000

var (
	leadingFenceRegex  = regexp.MustCompile("^```[a-zA-Z0-9_+-]*[ \t]*\r?\n?") // Matches an opening fence with an optional language tag.
	trailingFenceRegex = regexp.MustCompile("\r?\n?[ \t]*```$")                // Matches a closing fence at the end of the text.
)

// StripCodeFences removes a code fence wrapping the whole text, if present.
// Surrounding whitespace is trimmed first; fences inside the text are left
// untouched.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFenceRegex.ReplaceAllString(s, "")
	s = trailingFenceRegex.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// RecoverJSONObject extracts a JSON object from noisy model output. It first
// tries the fence-stripped text as-is, then the substring between the first
// "{" and the last "}". Returns nil when neither attempt yields an object;
// bare arrays and scalars are rejected.
func RecoverJSONObject(s string) map[string]any {
	cleaned := StripCodeFences(s)
	if obj := parseJSONObject(cleaned); obj != nil {
		return obj
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end <= start {
		return nil
	}
	return parseJSONObject(cleaned[start : end+1])
}

func parseJSONObject(s string) map[string]any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	return obj
}

// TruncateToSentence trims s and, when it exceeds maxLen characters, cuts it
// at maxLen and then back to the rightmost sentence terminator (".", "!" or
// "?") within the cut. When no terminator exists the hard cut is returned.
func TruncateToSentence(s string, maxLen int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}

	cut := string(runes[:maxLen])
	last := strings.LastIndexAny(cut, ".!?")
	if last == -1 {
		return cut
	}
	return cut[:last+1]
}
