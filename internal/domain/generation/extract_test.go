package generation

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

func TestExtractJSON(t *testing.T) {
	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	tests := []struct {
		name string
		raw  string
		want payload
	}{
		{
			name: "plain json",
			raw:  `{"name":"Acme","count":3}`,
			want: payload{Name: "Acme", Count: 3},
		},
		{
			name: "json fence",
			raw:  "Here you go:\n```json\n{\"name\":\"Acme\",\"count\":3}\n```\nLet me know!",
			want: payload{Name: "Acme", Count: 3},
		},
		{
			name: "bare fence",
			raw:  "```\n{\"name\":\"Acme\",\"count\":3}\n```",
			want: payload{Name: "Acme", Count: 3},
		},
		{
			name: "json buried in prose",
			raw:  `Sure! The result is {"name":"Acme","count":3} as requested.`,
			want: payload{Name: "Acme", Count: 3},
		},
		{
			name: "brace inside string value",
			raw:  `prefix {"name":"Ac{me}","count":3} suffix`,
			want: payload{Name: "Ac{me}", Count: 3},
		},
		{
			name: "smart quotes",
			raw:  `{“name”:“Acme”,“count”:3}`,
			want: payload{Name: "Acme", Count: 3},
		},
		{
			name: "trailing comma",
			raw:  `{"name":"Acme","count":3,}`,
			want: payload{Name: "Acme", Count: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got payload
			require.NoError(t, ExtractJSON(tt.raw, &got))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractJSON_Array(t *testing.T) {
	var got []int
	require.NoError(t, ExtractJSON("the values are [1, 2, 3] apparently", &got))
	assert.Equal(t, []int{1, 2, 3}, got)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	var got map[string]any
	err := ExtractJSON("I could not produce the requested output.", &got)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationFormat(err))
	assert.Contains(t, apperrors.GetSnippet(err), "could not produce")
}

func TestExtractJSON_UnbalancedBraces(t *testing.T) {
	var got map[string]any
	err := ExtractJSON(`{"name":"Acme"`, &got)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationFormat(err))
}

func TestExtractJSON_DstUntouchedOnFailure(t *testing.T) {
	got := map[string]any{"keep": "me"}
	err := ExtractJSON("no json here", &got)
	require.Error(t, err)
	assert.Equal(t, map[string]any{"keep": "me"}, got)
}

func TestSnippet(t *testing.T) {
	short := "  short response  "
	assert.Equal(t, "short response", Snippet(short))

	long := strings.Repeat("a", 500)
	got := Snippet(long)
	assert.LessOrEqual(t, len(got), maxSnippetBytes+len("…"))
	assert.True(t, strings.HasSuffix(got, "…"))
}

func TestSnippet_DoesNotSplitUTF8(t *testing.T) {
	// Both boundary parities matter: a cut inside a multi-byte rune, and a
	// cut landing exactly after one, must each yield valid UTF-8.
	for _, long := range []string{
		strings.Repeat("é", 300),
		"x" + strings.Repeat("é", 300),
		strings.Repeat("日", 200),
	} {
		got := Snippet(long)
		assert.True(t, strings.HasSuffix(got, "…"))
		assert.True(t, utf8.ValidString(got))
		for _, r := range got {
			assert.NotEqual(t, '�', r)
		}
	}
}
