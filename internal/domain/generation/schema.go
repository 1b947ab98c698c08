package generation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/draftforge/discovery-engine/internal/domain/model"
	apperrors "github.com/draftforge/discovery-engine/internal/errors"
)

// rawField mirrors the loose descriptor shapes providers emit. Both "type"
// and "kind" spellings are accepted; options may be strings or objects with a
// label/value field.
type rawField struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Label    string   `json:"label"`
	Question string   `json:"question"`
	Type     string   `json:"type"`
	Kind     string   `json:"kind"`
	Options  []any    `json:"options"`
	Min      *float64 `json:"min"`
	Max      *float64 `json:"max"`
	Step     *float64 `json:"step"`
	Required bool     `json:"required"`
}

type questionSchema struct {
	Questions []rawField `json:"questions"`
	Fields    []rawField `json:"fields"`
}

// ParseQuestionSchema extracts and normalizes a follow-up question schema
// from raw provider text. The result is all-or-nothing: a single unknown
// field kind or structurally invalid descriptor rejects the whole response
// with a generation_format error.
func ParseQuestionSchema(raw string) ([]model.DynamicQuestion, error) {
	var schema questionSchema
	if err := ExtractJSON(raw, &schema); err != nil {
		return nil, err
	}

	fields := schema.Questions
	if len(fields) == 0 {
		fields = schema.Fields
	}
	if len(fields) == 0 {
		return nil, apperrors.GenerationFormat("provider response contains no questions", Snippet(raw))
	}

	questions := make([]model.DynamicQuestion, 0, len(fields))
	for i, f := range fields {
		q, err := normalizeField(i, f)
		if err != nil {
			return nil, apperrors.GenerationFormatWrap(err, "invalid question descriptor", Snippet(raw))
		}
		questions = append(questions, q)
	}
	return questions, nil
}

func normalizeField(index int, f rawField) (model.DynamicQuestion, error) {
	rawKind := f.Kind
	if rawKind == "" {
		rawKind = f.Type
	}
	kind, err := model.NormalizeFieldKind(rawKind)
	if err != nil {
		return model.DynamicQuestion{}, err
	}

	label := firstNonEmpty(f.Label, f.Question, f.Name)
	id := firstNonEmpty(f.ID, f.Name)
	if id == "" {
		id = "q" + strconv.Itoa(index+1)
	}

	q := model.DynamicQuestion{
		ID:       id,
		Label:    label,
		Kind:     kind,
		Min:      f.Min,
		Max:      f.Max,
		Step:     f.Step,
		Required: f.Required,
	}
	if len(f.Options) > 0 {
		q.Options, err = normalizeOptions(f.Options)
		if err != nil {
			return model.DynamicQuestion{}, fmt.Errorf("question %s: %w", id, err)
		}
	}
	if err := q.Validate(); err != nil {
		return model.DynamicQuestion{}, err
	}
	return q, nil
}

// normalizeOptions accepts plain strings, numbers, or {label|value|name: ...}
// objects and flattens them to display strings.
func normalizeOptions(raw []any) ([]string, error) {
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		switch t := item.(type) {
		case string:
			if s := strings.TrimSpace(t); s != "" {
				out = append(out, s)
			}
		case float64:
			out = append(out, strconv.FormatFloat(t, 'f', -1, 64))
		case map[string]any:
			s := firstNonEmpty(stringField(t, "label"), stringField(t, "value"), stringField(t, "name"))
			if s == "" {
				return nil, fmt.Errorf("option object missing label")
			}
			out = append(out, s)
		default:
			return nil, fmt.Errorf("unsupported option type %T", item)
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("options list is empty after normalization")
	}
	return out, nil
}

func stringField(m map[string]any, key string) string {
	if v, ok := m[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if s := strings.TrimSpace(v); s != "" {
			return s
		}
	}
	return ""
}
