package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeFieldKind(t *testing.T) {
	tests := []struct {
		raw  string
		want FieldKind
	}{
		{"text", FieldKindText},
		{"string", FieldKindText},
		{"TEXTAREA", FieldKindParagraph},
		{"long-text", FieldKindParagraph},
		{"select", FieldKindSingleChoice},
		{"Dropdown", FieldKindSingleChoice},
		{"radio", FieldKindSingleChoice},
		{"multi-select", FieldKindMultiChoice},
		{"checkboxes", FieldKindMultiChoice},
		{"range", FieldKindSlider},
		{"scale", FieldKindSlider},
		{"integer", FieldKindNumber},
		{"date", FieldKindDate},
		{"daterange", FieldKindDateRange},
		{"yes_no", FieldKindBoolean},
		{"  toggle  ", FieldKindBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			kind, err := NormalizeFieldKind(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, kind)
		})
	}
}

func TestNormalizeFieldKind_Unknown(t *testing.T) {
	_, err := NormalizeFieldKind("hologram")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "hologram")

	_, err = NormalizeFieldKind("")
	assert.Error(t, err)
}

func TestDynamicQuestion_Validate(t *testing.T) {
	min, max := 1.0, 10.0
	bad := 10.0

	tests := []struct {
		name    string
		q       DynamicQuestion
		wantErr string
	}{
		{name: "valid text", q: DynamicQuestion{ID: "q1", Label: "Company?", Kind: FieldKindText}},
		{name: "missing id", q: DynamicQuestion{Label: "x", Kind: FieldKindText}, wantErr: "id is required"},
		{name: "missing label", q: DynamicQuestion{ID: "q1", Kind: FieldKindText}, wantErr: "label is required"},
		{name: "invalid kind", q: DynamicQuestion{ID: "q1", Label: "x", Kind: "hologram"}, wantErr: "invalid question kind"},
		{
			name:    "choice without options",
			q:       DynamicQuestion{ID: "q1", Label: "x", Kind: FieldKindSingleChoice},
			wantErr: "require options",
		},
		{
			name: "choice with options",
			q:    DynamicQuestion{ID: "q1", Label: "x", Kind: FieldKindMultiChoice, Options: []string{"a", "b"}},
		},
		{
			name:    "slider without bounds",
			q:       DynamicQuestion{ID: "q1", Label: "x", Kind: FieldKindSlider},
			wantErr: "requires min and max",
		},
		{
			name:    "slider min above max",
			q:       DynamicQuestion{ID: "q1", Label: "x", Kind: FieldKindSlider, Min: &bad, Max: &min},
			wantErr: "min must be below max",
		},
		{
			name: "valid slider",
			q:    DynamicQuestion{ID: "q1", Label: "x", Kind: FieldKindSlider, Min: &min, Max: &max},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.q.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
