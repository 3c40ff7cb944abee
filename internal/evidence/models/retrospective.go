package models

import (
	"time"

	"cloud.google.com/go/civil"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// RetroReason categorises why a record was captured after its logical date.
type RetroReason string

const (
	RetroReasonForgot                 RetroReason = "forgot"
	RetroReasonTooUnwell              RetroReason = "too_unwell"
	RetroReasonNoAccess               RetroReason = "no_access"
	RetroReasonReconstructedFromNotes RetroReason = "reconstructed_from_notes"
	RetroReasonOther                  RetroReason = "other"
)

var validRetroReasons = map[RetroReason]bool{
	RetroReasonForgot:                 true,
	RetroReasonTooUnwell:              true,
	RetroReasonNoAccess:               true,
	RetroReasonReconstructedFromNotes: true,
	RetroReasonOther:                  true,
}

func (r RetroReason) IsValid() bool { return validRetroReasons[r] }

// RetrospectiveContext records how late a record was captured. It is attached
// once at creation and never removed; reason and note change only through
// revisions.
type RetrospectiveContext struct {
	DaysDelayed int         `json:"days_delayed"`
	FlaggedAt   time.Time   `json:"flagged_at"`
	Reason      RetroReason `json:"reason,omitempty"`
	Note        string      `json:"note,omitempty"`
}

// RetroInput is the optional reason and note a caller may supply at creation.
type RetroInput struct {
	Reason RetroReason
	Note   string
}

func (in RetroInput) isEmpty() bool { return in.Reason == "" && in.Note == "" }

// DaysDelayed is the number of calendar days between the logical date and the
// UTC date of createdAt. It is derivable for every record whether or not a
// RetrospectiveContext exists.
func DaysDelayed(logicalDate civil.Date, createdAt time.Time) int {
	return domain.DaysBetween(logicalDate, domain.DateOf(createdAt))
}

// ComputeRetrospective derives the context for a record captured at capture.
// It returns nil when the record describes the capture date itself and fails
// with CodeInvalidLogicalDate when the logical date lies in the future.
func ComputeRetrospective(logicalDate civil.Date, capture time.Time, in RetroInput) (*RetrospectiveContext, error) {
	days := DaysDelayed(logicalDate, capture)
	if days < 0 {
		return nil, dErrors.Newf(dErrors.CodeInvalidLogicalDate,
			"logical date %s is after capture date %s", logicalDate, domain.DateOf(capture))
	}
	if in.Reason != "" && !in.Reason.IsValid() {
		return nil, dErrors.Newf(dErrors.CodeValidation, "unknown retrospective reason %q", in.Reason)
	}
	if days == 0 {
		if !in.isEmpty() {
			return nil, dErrors.New(dErrors.CodeValidation, "retrospective reason given for a same-day record")
		}
		return nil, nil
	}
	return &RetrospectiveContext{
		DaysDelayed: days,
		FlaggedAt:   capture.UTC(),
		Reason:      in.Reason,
		Note:        in.Note,
	}, nil
}

// Clone returns a copy, or nil for nil.
func (c *RetrospectiveContext) Clone() *RetrospectiveContext {
	if c == nil {
		return nil
	}
	out := *c
	return &out
}

// Value reads a retrospective field path.
func (c *RetrospectiveContext) Value(path FieldPath) FieldValue {
	if c == nil {
		return Absent()
	}
	switch path.kind {
	case pathRetroReason:
		if c.Reason != "" {
			return Text(string(c.Reason))
		}
	case pathRetroNote:
		if c.Note != "" {
			return Text(c.Note)
		}
	}
	return Absent()
}

// With returns a copy with the retrospective field at path set to v.
func (c *RetrospectiveContext) With(path FieldPath, v FieldValue) *RetrospectiveContext {
	out := c.Clone()
	if out == nil {
		return nil
	}
	s, _ := v.Text()
	switch path.kind {
	case pathRetroReason:
		out.Reason = RetroReason(s)
	case pathRetroNote:
		out.Note = s
	}
	return out
}
