package generation

import (
	"strings"
)

// reportEnvelope covers the structured shapes providers return report content
// in; plain text is also accepted.
type reportEnvelope struct {
	Report  string `json:"report"`
	Content string `json:"content"`
	Text    string `json:"text"`
}

// DegradedPlaceholder is substituted when a succeeded result carries no
// usable report content, so the job completes instead of sticking.
const DegradedPlaceholder = "[Report generation returned no usable content. " +
	"This placeholder was substituted automatically; please regenerate or edit the report.]"

// ParseReportResult interprets a terminal succeeded result as report content.
// JSON envelopes ({"report"|"content"|"text": ...}) are unwrapped; any other
// non-empty text is taken verbatim. An empty or unusable result yields the
// degraded placeholder with degraded=true — parse failure never blocks
// completion (the job must not stick on a succeeded result).
func ParseReportResult(raw string) (content string, degraded bool) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return DegradedPlaceholder, true
	}

	var envelope reportEnvelope
	if err := ExtractJSON(trimmed, &envelope); err == nil {
		for _, candidate := range []string{envelope.Report, envelope.Content, envelope.Text} {
			if s := strings.TrimSpace(candidate); s != "" {
				return s, false
			}
		}
		// Parsed as JSON but no recognized content field. Treating the raw
		// JSON as the report would leak the envelope, so degrade instead —
		// unless the result only looked like JSON incidentally.
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			return DegradedPlaceholder, true
		}
	}

	return trimmed, false
}
