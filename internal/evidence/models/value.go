package models

import (
	"bytes"
	"encoding/json"

	dErrors "evidentia/pkg/domain-errors"
)

// ValueKind tags a FieldValue.
type ValueKind string

const (
	ValueKindAbsent ValueKind = "absent"
	ValueKindText   ValueKind = "text"
	ValueKindInt    ValueKind = "int"
)

// FieldValue is the tagged value carried by revisions: absent, text or int.
// JSON form: null, {"text":"..."} or {"int":n}.
type FieldValue struct {
	kind ValueKind
	text string
	num  int
}

func Absent() FieldValue       { return FieldValue{kind: ValueKindAbsent} }
func Text(s string) FieldValue { return FieldValue{kind: ValueKindText, text: s} }
func Int(n int) FieldValue     { return FieldValue{kind: ValueKindInt, num: n} }

func (v FieldValue) IsAbsent() bool { return v.Kind() == ValueKindAbsent }

func (v FieldValue) Kind() ValueKind {
	if v.kind == "" {
		return ValueKindAbsent
	}
	return v.kind
}

func (v FieldValue) Text() (string, bool) { return v.text, v.kind == ValueKindText }
func (v FieldValue) Int() (int, bool)     { return v.num, v.kind == ValueKindInt }

// Equal compares kind and payload; the zero value equals Absent().
func (v FieldValue) Equal(o FieldValue) bool {
	if v.Kind() != o.Kind() {
		return false
	}
	switch v.Kind() {
	case ValueKindText:
		return v.text == o.text
	case ValueKindInt:
		return v.num == o.num
	}
	return true
}

type fieldValueJSON struct {
	Text *string `json:"text,omitempty"`
	Int  *int    `json:"int,omitempty"`
}

func (v FieldValue) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case ValueKindText:
		return json.Marshal(fieldValueJSON{Text: &v.text})
	case ValueKindInt:
		return json.Marshal(fieldValueJSON{Int: &v.num})
	}
	return []byte("null"), nil
}

func (v *FieldValue) UnmarshalJSON(b []byte) error {
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		*v = Absent()
		return nil
	}
	var raw fieldValueJSON
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "malformed field value")
	}
	switch {
	case raw.Text != nil && raw.Int != nil:
		return dErrors.New(dErrors.CodeValidation, "field value must carry exactly one of text or int")
	case raw.Text != nil:
		*v = Text(*raw.Text)
	case raw.Int != nil:
		*v = Int(*raw.Int)
	default:
		return dErrors.New(dErrors.CodeValidation, "field value must carry text or int; use null for absent")
	}
	return nil
}
