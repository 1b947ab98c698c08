package model

import (
	"errors"
	"fmt"
	"strings"
)

// FieldKind is the closed set of input kinds a dynamic question may use.
// Provider output is normalized into this set; unknown kinds are rejected.
type FieldKind string

const (
	// FieldKindText is a single-line text input.
	FieldKindText FieldKind = "text"
	// FieldKindParagraph is a multi-line text input.
	FieldKindParagraph FieldKind = "paragraph"
	// FieldKindSingleChoice selects one option.
	FieldKindSingleChoice FieldKind = "single_choice"
	// FieldKindMultiChoice selects any number of options.
	FieldKindMultiChoice FieldKind = "multi_choice"
	// FieldKindSlider is a bounded numeric slider.
	FieldKindSlider FieldKind = "slider"
	// FieldKindNumber is a free numeric input.
	FieldKindNumber FieldKind = "number"
	// FieldKindDate is a single date.
	FieldKindDate FieldKind = "date"
	// FieldKindDateRange is a start/end date pair.
	FieldKindDateRange FieldKind = "date_range"
	// FieldKindBoolean is a yes/no toggle.
	FieldKindBoolean FieldKind = "boolean"
)

// Valid returns true if the FieldKind is in the closed set.
func (k FieldKind) Valid() bool {
	switch k {
	case FieldKindText, FieldKindParagraph, FieldKindSingleChoice, FieldKindMultiChoice,
		FieldKindSlider, FieldKindNumber, FieldKindDate, FieldKindDateRange, FieldKindBoolean:
		return true
	}
	return false
}

// fieldKindAliases maps the spellings providers have been observed to emit
// onto the canonical kinds.
var fieldKindAliases = map[string]FieldKind{
	"text":          FieldKindText,
	"string":        FieldKindText,
	"input":         FieldKindText,
	"paragraph":     FieldKindParagraph,
	"textarea":      FieldKindParagraph,
	"longtext":      FieldKindParagraph,
	"long_text":     FieldKindParagraph,
	"single_choice": FieldKindSingleChoice,
	"singlechoice":  FieldKindSingleChoice,
	"select":        FieldKindSingleChoice,
	"radio":         FieldKindSingleChoice,
	"dropdown":      FieldKindSingleChoice,
	"multi_choice":  FieldKindMultiChoice,
	"multichoice":   FieldKindMultiChoice,
	"multiselect":   FieldKindMultiChoice,
	"multi_select":  FieldKindMultiChoice,
	"checkbox":      FieldKindMultiChoice,
	"checkboxes":    FieldKindMultiChoice,
	"slider":        FieldKindSlider,
	"range":         FieldKindSlider,
	"scale":         FieldKindSlider,
	"number":        FieldKindNumber,
	"numeric":       FieldKindNumber,
	"integer":       FieldKindNumber,
	"date":          FieldKindDate,
	"date_range":    FieldKindDateRange,
	"daterange":     FieldKindDateRange,
	"boolean":       FieldKindBoolean,
	"bool":          FieldKindBoolean,
	"yesno":         FieldKindBoolean,
	"yes_no":        FieldKindBoolean,
	"toggle":        FieldKindBoolean,
}

// NormalizeFieldKind folds a raw provider kind into the closed set.
func NormalizeFieldKind(raw string) (FieldKind, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.ReplaceAll(key, "-", "_")
	if kind, ok := fieldKindAliases[key]; ok {
		return kind, nil
	}
	return "", fmt.Errorf("unknown field kind %q", raw)
}

// DynamicQuestion is a follow-up input field generated from prior answers.
// The list on a job is ordered and immutable once generated; only the answer
// map changes afterwards.
type DynamicQuestion struct {
	ID       string    `json:"id"`
	Label    string    `json:"label"`
	Kind     FieldKind `json:"kind"`
	Options  []string  `json:"options,omitempty"`
	Min      *float64  `json:"min,omitempty"`
	Max      *float64  `json:"max,omitempty"`
	Step     *float64  `json:"step,omitempty"`
	Required bool      `json:"required"`
}

// Validate checks structural validity of a normalized question.
func (q *DynamicQuestion) Validate() error {
	if strings.TrimSpace(q.ID) == "" {
		return errors.New("question id is required")
	}
	if strings.TrimSpace(q.Label) == "" {
		return errors.New("question label is required")
	}
	if !q.Kind.Valid() {
		return fmt.Errorf("invalid question kind %q", q.Kind)
	}
	switch q.Kind {
	case FieldKindSingleChoice, FieldKindMultiChoice:
		if len(q.Options) == 0 {
			return fmt.Errorf("question %s: choice kinds require options", q.ID)
		}
	case FieldKindSlider:
		if q.Min == nil || q.Max == nil {
			return fmt.Errorf("question %s: slider requires min and max", q.ID)
		}
		if *q.Min >= *q.Max {
			return fmt.Errorf("question %s: slider min must be below max", q.ID)
		}
	}
	return nil
}
