package models

import (
	"slices"
	"strings"

	dErrors "evidentia/pkg/domain-errors"
	pstrings "evidentia/pkg/platform/strings"
)

// RecordType identifies the shape of a record's payload.
type RecordType string

const (
	RecordTypeDailyLog    RecordType = "daily_log"
	RecordTypeActivityLog RecordType = "activity_log"
)

var validRecordTypes = map[RecordType]bool{
	RecordTypeDailyLog:    true,
	RecordTypeActivityLog: true,
}

// ParseRecordType constructs a RecordType from external input.
func ParseRecordType(s string) (RecordType, error) {
	t := RecordType(strings.TrimSpace(s))
	if t == "" {
		return "", dErrors.New(dErrors.CodeValidation, "record_type is required")
	}
	if !t.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown record_type %q", s)
	}
	return t, nil
}

func (t RecordType) IsValid() bool { return validRecordTypes[t] }

const (
	minScale       = 0
	maxScale       = 10
	maxNotesLength = 10_000
)

// SymptomEntry is one symptom observed on the record's logical date.
// Severity 0 means the symptom was checked and absent.
type SymptomEntry struct {
	Name     string `json:"name"`
	Severity int    `json:"severity"`
}

// ActivityEntry is one activity undertaken on the logical date and its impact.
type ActivityEntry struct {
	Name            string `json:"name"`
	DurationMinutes int    `json:"duration_minutes"`
	Impact          int    `json:"impact"`
}

// Payload is the domain content of a record. The engine treats it as opaque
// except through FieldPath reads and writes.
type Payload struct {
	RecordType      RecordType      `json:"record_type"`
	Notes           string          `json:"notes,omitempty"`
	OverallSeverity *int            `json:"overall_severity,omitempty"`
	Symptoms        []SymptomEntry  `json:"symptoms,omitempty"`
	Activities      []ActivityEntry `json:"activities,omitempty"`
}

// Normalize trims and lowercases entry names so path lookups are stable, and
// collapses empty lists to nil so stored and decoded payloads compare equal.
func (p Payload) Normalize() Payload {
	out := p.Clone()
	if len(out.Symptoms) == 0 {
		out.Symptoms = nil
	}
	if len(out.Activities) == 0 {
		out.Activities = nil
	}
	for i := range out.Symptoms {
		out.Symptoms[i].Name = pstrings.NormalizeName(out.Symptoms[i].Name)
	}
	for i := range out.Activities {
		out.Activities[i].Name = pstrings.NormalizeName(out.Activities[i].Name)
	}
	return out
}

// Validate enforces the payload shape. Call on normalized payloads.
func (p Payload) Validate() error {
	if !p.RecordType.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown record_type %q", p.RecordType)
	}
	if len(p.Notes) > maxNotesLength {
		return dErrors.New(dErrors.CodeValidation, "notes too long")
	}
	if p.OverallSeverity != nil {
		if err := checkScale(*p.OverallSeverity, "overall_severity"); err != nil {
			return err
		}
	}
	seen := make(map[string]bool, len(p.Symptoms))
	for _, s := range p.Symptoms {
		if err := validateEntryName(s.Name); err != nil {
			return err
		}
		if seen[s.Name] {
			return dErrors.Newf(dErrors.CodeValidation, "duplicate symptom %q", s.Name)
		}
		seen[s.Name] = true
		if err := checkScale(s.Severity, "symptom severity"); err != nil {
			return err
		}
	}
	seen = make(map[string]bool, len(p.Activities))
	for _, a := range p.Activities {
		if err := validateEntryName(a.Name); err != nil {
			return err
		}
		if seen[a.Name] {
			return dErrors.Newf(dErrors.CodeValidation, "duplicate activity %q", a.Name)
		}
		seen[a.Name] = true
		if a.DurationMinutes < 0 {
			return dErrors.New(dErrors.CodeValidation, "activity duration cannot be negative")
		}
		if err := checkScale(a.Impact, "activity impact"); err != nil {
			return err
		}
	}
	return nil
}

func checkScale(n int, field string) error {
	if n < minScale || n > maxScale {
		return dErrors.Newf(dErrors.CodeValidation, "%s must be between %d and %d", field, minScale, maxScale)
	}
	return nil
}

// Clone returns a deep copy.
func (p Payload) Clone() Payload {
	out := p
	if p.OverallSeverity != nil {
		v := *p.OverallSeverity
		out.OverallSeverity = &v
	}
	out.Symptoms = slices.Clone(p.Symptoms)
	out.Activities = slices.Clone(p.Activities)
	return out
}

// Symptom returns the entry for name, if present.
func (p Payload) Symptom(name string) (SymptomEntry, bool) {
	name = pstrings.NormalizeName(name)
	for _, s := range p.Symptoms {
		if s.Name == name {
			return s, true
		}
	}
	return SymptomEntry{}, false
}

// Activity returns the entry for name, if present.
func (p Payload) Activity(name string) (ActivityEntry, bool) {
	name = pstrings.NormalizeName(name)
	for _, a := range p.Activities {
		if a.Name == name {
			return a, true
		}
	}
	return ActivityEntry{}, false
}

// Value reads the field at path. Retrospective paths are not part of the payload
// and read as absent here.
func (p Payload) Value(path FieldPath) FieldValue {
	switch path.kind {
	case pathNotes:
		if p.Notes == "" {
			return Absent()
		}
		return Text(p.Notes)
	case pathOverallSeverity:
		if p.OverallSeverity == nil {
			return Absent()
		}
		return Int(*p.OverallSeverity)
	case pathSymptomSeverity:
		if s, ok := p.Symptom(path.name); ok {
			return Int(s.Severity)
		}
	case pathActivityImpact:
		if a, ok := p.Activity(path.name); ok {
			return Int(a.Impact)
		}
	case pathActivityDuration:
		if a, ok := p.Activity(path.name); ok {
			return Int(a.DurationMinutes)
		}
	}
	return Absent()
}

// With returns a copy of p with the field at path set to v. Absent clears the
// field; for entry paths it removes the whole entry. Setting an attribute of a
// missing activity creates the entry with its other attributes zero.
// The caller validates v with FieldPath.CheckValue first.
func (p Payload) With(path FieldPath, v FieldValue) Payload {
	out := p.Clone()
	n, _ := v.Int()
	switch path.kind {
	case pathNotes:
		out.Notes, _ = v.Text()
	case pathOverallSeverity:
		if v.IsAbsent() {
			out.OverallSeverity = nil
		} else {
			out.OverallSeverity = &n
		}
	case pathSymptomSeverity:
		idx := slices.IndexFunc(out.Symptoms, func(s SymptomEntry) bool { return s.Name == path.name })
		switch {
		case v.IsAbsent() && idx >= 0:
			out.Symptoms = slices.Delete(out.Symptoms, idx, idx+1)
		case v.IsAbsent():
		case idx >= 0:
			out.Symptoms[idx].Severity = n
		default:
			out.Symptoms = append(out.Symptoms, SymptomEntry{Name: path.name, Severity: n})
		}
	case pathActivityImpact, pathActivityDuration:
		idx := slices.IndexFunc(out.Activities, func(a ActivityEntry) bool { return a.Name == path.name })
		if v.IsAbsent() {
			if idx >= 0 {
				out.Activities = slices.Delete(out.Activities, idx, idx+1)
			}
			return out
		}
		if idx < 0 {
			out.Activities = append(out.Activities, ActivityEntry{Name: path.name})
			idx = len(out.Activities) - 1
		}
		if path.kind == pathActivityImpact {
			out.Activities[idx].Impact = n
		} else {
			out.Activities[idx].DurationMinutes = n
		}
	}
	return out
}
