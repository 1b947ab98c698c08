package generation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

func TestParseQuestionSchema(t *testing.T) {
	raw := "```json\n" + `{
		"questions": [
			{"id": "budget", "label": "What is the budget?", "kind": "number", "required": true},
			{"name": "region", "question": "Which regions?", "type": "multi-select", "options": ["NA", "EU"]},
			{"label": "Timeline", "kind": "daterange"}
		]
	}` + "\n```"

	questions, err := ParseQuestionSchema(raw)
	require.NoError(t, err)
	require.Len(t, questions, 3)

	assert.Equal(t, "budget", questions[0].ID)
	assert.Equal(t, model.FieldKindNumber, questions[0].Kind)
	assert.True(t, questions[0].Required)

	// name doubles as id and label source; alias kinds fold to canonical.
	assert.Equal(t, "region", questions[1].ID)
	assert.Equal(t, "Which regions?", questions[1].Label)
	assert.Equal(t, model.FieldKindMultiChoice, questions[1].Kind)
	assert.Equal(t, []string{"NA", "EU"}, questions[1].Options)

	// missing id falls back to positional.
	assert.Equal(t, "q3", questions[2].ID)
	assert.Equal(t, model.FieldKindDateRange, questions[2].Kind)
}

func TestParseQuestionSchema_FieldsAlias(t *testing.T) {
	raw := `{"fields": [{"id": "q1", "label": "Company?", "type": "text"}]}`

	questions, err := ParseQuestionSchema(raw)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.Equal(t, model.FieldKindText, questions[0].Kind)
}

func TestParseQuestionSchema_ObjectOptions(t *testing.T) {
	raw := `{"questions": [{
		"id": "size",
		"label": "Company size?",
		"kind": "select",
		"options": [{"label": "Small", "value": "s"}, {"value": "large"}, 50]
	}]}`

	questions, err := ParseQuestionSchema(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"Small", "large", "50"}, questions[0].Options)
}

func TestParseQuestionSchema_AllOrNothing(t *testing.T) {
	// One unknown kind rejects the entire schema.
	raw := `{"questions": [
		{"id": "q1", "label": "Fine", "kind": "text"},
		{"id": "q2", "label": "Broken", "kind": "hologram"}
	]}`

	_, err := ParseQuestionSchema(raw)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationFormat(err))
}

func TestParseQuestionSchema_Empty(t *testing.T) {
	_, err := ParseQuestionSchema(`{"questions": []}`)
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationFormat(err))

	_, err = ParseQuestionSchema("no structure at all")
	require.Error(t, err)
	assert.True(t, apperrors.IsGenerationFormat(err))
}

func TestParseQuestionSchema_SliderBounds(t *testing.T) {
	raw := `{"questions": [{"id": "q1", "label": "Scale?", "kind": "slider", "min": 1, "max": 10, "step": 1}]}`

	questions, err := ParseQuestionSchema(raw)
	require.NoError(t, err)
	require.NotNil(t, questions[0].Min)
	require.NotNil(t, questions[0].Max)
	assert.Equal(t, 1.0, *questions[0].Min)
	assert.Equal(t, 10.0, *questions[0].Max)

	_, err = ParseQuestionSchema(`{"questions": [{"id": "q1", "label": "Scale?", "kind": "slider"}]}`)
	assert.Error(t, err)
}
