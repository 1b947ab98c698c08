// Package generation handles the untrusted text boundary with the generation
// provider: recovering JSON from free-form responses, normalizing follow-up
// question schemas, and assembling prompts.
package generation

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// maxSnippetBytes bounds the response excerpt attached to format errors.
const maxSnippetBytes = 240

// ExtractJSON decodes a JSON document embedded somewhere in raw provider text
// into dst. Providers wrap JSON in prose, markdown fences, or both, and
// occasionally emit smart quotes and trailing commas.
//
// Recovery strategies are tried in order: direct parse, fenced-block parse,
// brace-balanced substring scan. Each candidate is retried once after
// normalization. When every strategy fails the error is a generation_format
// AppError carrying a bounded snippet; dst is never partially populated.
func ExtractJSON(raw string, dst any) error {
	candidates := []string{strings.TrimSpace(raw)}
	if fenced, ok := fencedBlock(raw); ok {
		candidates = append(candidates, fenced)
	}
	if scanned, ok := balancedSubstring(raw); ok {
		candidates = append(candidates, scanned)
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		if tryDecode(candidate, dst) {
			return nil
		}
		if tryDecode(normalize(candidate), dst) {
			return nil
		}
	}

	return apperrors.GenerationFormat("no parseable JSON in provider response", Snippet(raw))
}

// tryDecode decodes into a throwaway copy first so a failed attempt cannot
// leave partial output in dst.
func tryDecode(candidate string, dst any) bool {
	var probe json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &probe); err != nil {
		return false
	}
	return json.Unmarshal(probe, dst) == nil
}

// fencedBlock returns the contents of the first markdown code fence,
// preferring a ```json fence when one exists.
func fencedBlock(raw string) (string, bool) {
	for _, marker := range []string{"```json", "```"} {
		start := strings.Index(raw, marker)
		if start < 0 {
			continue
		}
		rest := raw[start+len(marker):]
		end := strings.Index(rest, "```")
		if end < 0 {
			continue
		}
		body := strings.TrimSpace(rest[:end])
		if body != "" {
			return body, true
		}
	}
	return "", false
}

// balancedSubstring scans for the first brace- or bracket-balanced region,
// tracking string literals so braces inside values do not break the count.
func balancedSubstring(raw string) (string, bool) {
	start := strings.IndexAny(raw, "{[")
	if start < 0 {
		return "", false
	}
	open := raw[start]
	var close byte = '}'
	if open == '[' {
		close = ']'
	}

	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(raw); i++ {
		c := raw[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
			// literal content
		case c == open:
			depth++
		case c == close:
			depth--
			if depth == 0 {
				return raw[start : i+1], true
			}
		}
	}
	return "", false
}

// smartQuoteFolds maps typographic quotes back to their ASCII forms.
var smartQuoteFolds = strings.NewReplacer(
	"“", `"`, // left double
	"”", `"`, // right double
	"‘", "'", // left single
	"’", "'", // right single
)

// normalize folds smart quotes and strips trailing commas before closing
// braces/brackets, the two malformations seen most often in provider output.
func normalize(candidate string) string {
	folded := smartQuoteFolds.Replace(candidate)

	var b strings.Builder
	b.Grow(len(folded))
	inString := false
	escaped := false
	for i := 0; i < len(folded); i++ {
		c := folded[i]
		switch {
		case escaped:
			escaped = false
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case c == ',' && !inString:
			if next := nextNonSpace(folded, i+1); next == '}' || next == ']' {
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func nextNonSpace(s string, from int) byte {
	for i := from; i < len(s); i++ {
		switch s[i] {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return s[i]
		}
	}
	return 0
}

// Snippet bounds raw provider text for inclusion in errors and audit detail.
func Snippet(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if len(trimmed) <= maxSnippetBytes {
		return trimmed
	}
	cut := trimmed[:maxSnippetBytes]
	// avoid splitting a UTF-8 sequence
	for len(cut) > 0 {
		r, size := utf8.DecodeLastRuneInString(cut)
		if r != utf8.RuneError || size > 1 {
			break
		}
		cut = cut[:len(cut)-1]
	}
	return cut + "…"
}
