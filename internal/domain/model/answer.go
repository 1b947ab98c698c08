package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// AnswerKind discriminates the value stored in an AnswerValue.
type AnswerKind string

const (
	// AnswerKindString holds free text.
	AnswerKindString AnswerKind = "string"
	// AnswerKindNumber holds a numeric value (stored as float64).
	AnswerKindNumber AnswerKind = "number"
	// AnswerKindBool holds a boolean.
	AnswerKindBool AnswerKind = "bool"
	// AnswerKindList holds an ordered list of values.
	AnswerKindList AnswerKind = "list"
	// AnswerKindObject holds a nested string-keyed map of values.
	AnswerKindObject AnswerKind = "object"
)

// AnswerValue is a tagged union over the primitive, list, and object values a
// stage answer may carry. The field catalog is itself data, so answers cannot
// be statically typed; the union keeps them structured without forcing a schema.
type AnswerValue struct {
	Kind   AnswerKind
	Str    string
	Num    float64
	Bool   bool
	List   []AnswerValue
	Object map[string]AnswerValue
}

// AnswerMap is a string-keyed answer document for a single stage.
type AnswerMap map[string]AnswerValue

// StringAnswer constructs a string-valued answer.
func StringAnswer(s string) AnswerValue {
	return AnswerValue{Kind: AnswerKindString, Str: s}
}

// NumberAnswer constructs a numeric answer.
func NumberAnswer(n float64) AnswerValue {
	return AnswerValue{Kind: AnswerKindNumber, Num: n}
}

// BoolAnswer constructs a boolean answer.
func BoolAnswer(b bool) AnswerValue {
	return AnswerValue{Kind: AnswerKindBool, Bool: b}
}

// ListAnswer constructs a list answer.
func ListAnswer(items ...AnswerValue) AnswerValue {
	return AnswerValue{Kind: AnswerKindList, List: items}
}

// ObjectAnswer constructs an object answer.
func ObjectAnswer(fields map[string]AnswerValue) AnswerValue {
	return AnswerValue{Kind: AnswerKindObject, Object: fields}
}

// MarshalJSON emits the underlying value without the discriminator; the wire
// format stays plain JSON so exported bundles remain readable.
func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case AnswerKindString:
		return json.Marshal(v.Str)
	case AnswerKindNumber:
		if math.IsNaN(v.Num) || math.IsInf(v.Num, 0) {
			return nil, fmt.Errorf("cannot encode non-finite number answer")
		}
		return json.Marshal(v.Num)
	case AnswerKindBool:
		return json.Marshal(v.Bool)
	case AnswerKindList:
		if v.List == nil {
			return []byte("[]"), nil
		}
		return json.Marshal(v.List)
	case AnswerKindObject:
		if v.Object == nil {
			return []byte("{}"), nil
		}
		return json.Marshal(v.Object)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON sniffs the JSON value type and populates the matching arm.
// Nulls decode to an empty string answer so callers never see a zero Kind
// round-tripped through storage.
func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	av, err := answerFromAny(raw)
	if err != nil {
		return err
	}
	*v = av
	return nil
}

func answerFromAny(raw any) (AnswerValue, error) {
	switch t := raw.(type) {
	case nil:
		return StringAnswer(""), nil
	case string:
		return StringAnswer(t), nil
	case bool:
		return BoolAnswer(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return AnswerValue{}, fmt.Errorf("decode number answer %q: %w", t.String(), err)
		}
		return NumberAnswer(f), nil
	case float64:
		return NumberAnswer(t), nil
	case []any:
		list := make([]AnswerValue, 0, len(t))
		for _, item := range t {
			av, err := answerFromAny(item)
			if err != nil {
				return AnswerValue{}, err
			}
			list = append(list, av)
		}
		return AnswerValue{Kind: AnswerKindList, List: list}, nil
	case map[string]any:
		obj := make(map[string]AnswerValue, len(t))
		for k, item := range t {
			av, err := answerFromAny(item)
			if err != nil {
				return AnswerValue{}, err
			}
			obj[k] = av
		}
		return AnswerValue{Kind: AnswerKindObject, Object: obj}, nil
	default:
		return AnswerValue{}, fmt.Errorf("unsupported answer value type %T", raw)
	}
}

// Document converts the map into a plain any-typed document suitable for
// JMESPath evaluation and prompt templating.
func (m AnswerMap) Document() map[string]any {
	doc := make(map[string]any, len(m))
	for k, v := range m {
		doc[k] = v.anyValue()
	}
	return doc
}

func (v AnswerValue) anyValue() any {
	switch v.Kind {
	case AnswerKindString:
		return v.Str
	case AnswerKindNumber:
		return v.Num
	case AnswerKindBool:
		return v.Bool
	case AnswerKindList:
		out := make([]any, len(v.List))
		for i, item := range v.List {
			out[i] = item.anyValue()
		}
		return out
	case AnswerKindObject:
		out := make(map[string]any, len(v.Object))
		for k, item := range v.Object {
			out[k] = item.anyValue()
		}
		return out
	default:
		return nil
	}
}

// Text renders the value as display text for prompt assembly.
func (v AnswerValue) Text() string {
	switch v.Kind {
	case AnswerKindString:
		return v.Str
	case AnswerKindNumber:
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case AnswerKindBool:
		return strconv.FormatBool(v.Bool)
	case AnswerKindList, AnswerKindObject:
		data, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(data)
	default:
		return ""
	}
}
