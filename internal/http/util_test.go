package httpx

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLimitOffset(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 50, wantOffset: 0},
		{name: "explicit values", query: "?limit=10&offset=20", wantLimit: 10, wantOffset: 20},
		{name: "limit clamped to max", query: "?limit=5000", wantLimit: 1000},
		{name: "limit floor is one", query: "?limit=0", wantLimit: 1},
		{name: "negative offset reset", query: "?offset=-5", wantLimit: 50, wantOffset: 0},
		{name: "garbage falls back to defaults", query: "?limit=abc&offset=xyz", wantLimit: 50, wantOffset: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/api/jobs"+tt.query, nil)
			limit, offset := ParseLimitOffset(r, 50, 1000)
			assert.Equal(t, tt.wantLimit, limit)
			assert.Equal(t, tt.wantOffset, offset)
		})
	}
}
