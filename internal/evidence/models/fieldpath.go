package models

import (
	"strings"

	dErrors "evidentia/pkg/domain-errors"
	pstrings "evidentia/pkg/platform/strings"
)

type pathKind int

const (
	pathUnknown pathKind = iota
	pathNotes
	pathOverallSeverity
	pathSymptomSeverity
	pathActivityImpact
	pathActivityDuration
	pathRetroReason
	pathRetroNote
)

const (
	notesPath          = "notes"
	overallSeverityKey = "overallSeverity"
	retroReasonPath    = "retrospectiveContext.reason"
	retroNotePath      = "retrospectiveContext.note"
	symptomsPrefix     = "symptoms["
	activitiesPrefix   = "activities["
	severitySuffix     = "].severity"
	impactSuffix       = "].impact"
	durationSuffix     = "].durationMinutes"
	maxEntryNameLength = 64
)

// FieldPath names one revisable field of a record. The set is closed: paths are
// built by the constructors below or by ParseFieldPath, which rejects anything
// outside the known record shape.
type FieldPath struct {
	kind pathKind
	name string
}

func NotesPath() FieldPath           { return FieldPath{kind: pathNotes} }
func OverallSeverityPath() FieldPath { return FieldPath{kind: pathOverallSeverity} }
func RetroReasonPath() FieldPath     { return FieldPath{kind: pathRetroReason} }
func RetroNotePath() FieldPath       { return FieldPath{kind: pathRetroNote} }

func SymptomSeverityPath(name string) FieldPath {
	return FieldPath{kind: pathSymptomSeverity, name: pstrings.NormalizeName(name)}
}

func ActivityImpactPath(name string) FieldPath {
	return FieldPath{kind: pathActivityImpact, name: pstrings.NormalizeName(name)}
}

func ActivityDurationPath(name string) FieldPath {
	return FieldPath{kind: pathActivityDuration, name: pstrings.NormalizeName(name)}
}

// ParseFieldPath parses the wire form of a field path.
func ParseFieldPath(s string) (FieldPath, error) {
	switch s {
	case notesPath:
		return NotesPath(), nil
	case overallSeverityKey:
		return OverallSeverityPath(), nil
	case retroReasonPath:
		return RetroReasonPath(), nil
	case retroNotePath:
		return RetroNotePath(), nil
	}

	if rest, ok := strings.CutPrefix(s, symptomsPrefix); ok {
		if name, ok := strings.CutSuffix(rest, severitySuffix); ok {
			return entryPath(pathSymptomSeverity, name, s)
		}
	}
	if rest, ok := strings.CutPrefix(s, activitiesPrefix); ok {
		if name, ok := strings.CutSuffix(rest, impactSuffix); ok {
			return entryPath(pathActivityImpact, name, s)
		}
		if name, ok := strings.CutSuffix(rest, durationSuffix); ok {
			return entryPath(pathActivityDuration, name, s)
		}
	}
	return FieldPath{}, dErrors.Newf(dErrors.CodeValidation, "unknown field path %q", s)
}

func entryPath(kind pathKind, name, raw string) (FieldPath, error) {
	if err := validateEntryName(name); err != nil {
		return FieldPath{}, dErrors.Wrap(err, dErrors.CodeValidation, "invalid field path "+raw)
	}
	return FieldPath{kind: kind, name: pstrings.NormalizeName(name)}, nil
}

func validateEntryName(name string) error {
	n := pstrings.NormalizeName(name)
	if n == "" {
		return dErrors.New(dErrors.CodeValidation, "entry name cannot be empty")
	}
	if len(n) > maxEntryNameLength {
		return dErrors.New(dErrors.CodeValidation, "entry name too long")
	}
	if strings.ContainsAny(n, "[]") {
		return dErrors.New(dErrors.CodeValidation, "entry name cannot contain brackets")
	}
	return nil
}

// String renders the wire form.
func (p FieldPath) String() string {
	switch p.kind {
	case pathNotes:
		return notesPath
	case pathOverallSeverity:
		return overallSeverityKey
	case pathRetroReason:
		return retroReasonPath
	case pathRetroNote:
		return retroNotePath
	case pathSymptomSeverity:
		return symptomsPrefix + p.name + severitySuffix
	case pathActivityImpact:
		return activitiesPrefix + p.name + impactSuffix
	case pathActivityDuration:
		return activitiesPrefix + p.name + durationSuffix
	}
	return ""
}

func (p FieldPath) IsZero() bool { return p.kind == pathUnknown }

// IsRetrospective reports whether the path addresses the retrospective context.
// Those fields are amended only through revisions.
func (p FieldPath) IsRetrospective() bool {
	return p.kind == pathRetroReason || p.kind == pathRetroNote
}

// Kind is the value kind the path holds.
func (p FieldPath) Kind() ValueKind {
	switch p.kind {
	case pathNotes, pathRetroReason, pathRetroNote:
		return ValueKindText
	case pathOverallSeverity, pathSymptomSeverity, pathActivityImpact, pathActivityDuration:
		return ValueKindInt
	}
	return ValueKindAbsent
}

// EntryName is the symptom/activity name for entry paths, empty otherwise.
func (p FieldPath) EntryName() string { return p.name }

func (p FieldPath) MarshalText() ([]byte, error) {
	if p.IsZero() {
		return nil, dErrors.New(dErrors.CodeValidation, "field path is empty")
	}
	return []byte(p.String()), nil
}

func (p *FieldPath) UnmarshalText(b []byte) error {
	parsed, err := ParseFieldPath(string(b))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// CheckValue validates v against the kind and range the path allows.
// Absent is accepted for every path; it clears an optional field.
func (p FieldPath) CheckValue(v FieldValue) error {
	if p.IsZero() {
		return dErrors.New(dErrors.CodeValidation, "field path is required")
	}
	if v.Kind() == ValueKindAbsent {
		return nil
	}
	if v.Kind() != p.Kind() {
		return dErrors.Newf(dErrors.CodeValidation, "%s expects a %s value, got %s", p, p.Kind(), v.Kind())
	}
	switch p.kind {
	case pathOverallSeverity, pathSymptomSeverity, pathActivityImpact:
		n, _ := v.Int()
		return checkScale(n, p.String())
	case pathActivityDuration:
		n, _ := v.Int()
		if n < 0 {
			return dErrors.Newf(dErrors.CodeValidation, "%s cannot be negative", p)
		}
	case pathRetroReason:
		s, _ := v.Text()
		if !RetroReason(s).IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown retrospective reason %q", s)
		}
	}
	return nil
}
