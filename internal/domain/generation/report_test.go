package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseReportResult(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		want         string
		wantDegraded bool
	}{
		{name: "plain text", raw: "# Discovery Report\n\nFindings...", want: "# Discovery Report\n\nFindings..."},
		{name: "report envelope", raw: `{"report": "# Report body"}`, want: "# Report body"},
		{name: "content envelope", raw: `{"content": "body text"}`, want: "body text"},
		{name: "text envelope", raw: `{"text": "body text"}`, want: "body text"},
		{name: "empty result", raw: "   ", want: DegradedPlaceholder, wantDegraded: true},
		{name: "json without content field", raw: `{"status": "done"}`, want: DegradedPlaceholder, wantDegraded: true},
		{name: "empty envelope value", raw: `{"report": "  "}`, want: DegradedPlaceholder, wantDegraded: true},
		{name: "markdown that embeds json", raw: "The summary {\"x\": 1} is above.", want: "The summary {\"x\": 1} is above."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, degraded := ParseReportResult(tt.raw)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantDegraded, degraded)
		})
	}
}
