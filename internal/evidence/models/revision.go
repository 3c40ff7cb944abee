package models

import (
	"strings"
	"time"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// ReasonCategory is the closed set of reasons a finalized record may be revised.
type ReasonCategory string

const (
	ReasonCorrection       ReasonCategory = "correction"
	ReasonClarification    ReasonCategory = "clarification"
	ReasonAdditionalDetail ReasonCategory = "additional_detail"
	ReasonErrorFix         ReasonCategory = "error_fix"
)

var validReasonCategories = map[ReasonCategory]bool{
	ReasonCorrection:       true,
	ReasonClarification:    true,
	ReasonAdditionalDetail: true,
	ReasonErrorFix:         true,
}

// ParseReasonCategory constructs a ReasonCategory from external input.
// A missing or unknown category is a validation error.
func ParseReasonCategory(s string) (ReasonCategory, error) {
	c := ReasonCategory(strings.TrimSpace(s))
	if c == "" {
		return "", dErrors.New(dErrors.CodeValidation, "reason_category is required")
	}
	if !c.IsValid() {
		return "", dErrors.Newf(dErrors.CodeValidation, "unknown reason_category %q", s)
	}
	return c, nil
}

func (c ReasonCategory) IsValid() bool { return validReasonCategories[c] }

const maxReasonNoteLength = 2_000

// Revision is one append-only ledger entry describing a post-finalization change
// to one field. Stores expose no update or delete for it.
type Revision struct {
	ID                domain.RevisionID `json:"id"`
	RecordID          domain.RecordID   `json:"record_id"`
	Sequence          int               `json:"sequence"`
	FieldPath         FieldPath         `json:"field_path"`
	OriginalValue     FieldValue        `json:"original_value"`
	UpdatedValue      FieldValue        `json:"updated_value"`
	ReasonCategory    ReasonCategory    `json:"reason_category"`
	ReasonNote        string            `json:"reason_note,omitempty"`
	RevisionTimestamp time.Time         `json:"revision_timestamp"`
}

// RevisionRequest is the caller-supplied part of a revision.
type RevisionRequest struct {
	Path     FieldPath
	NewValue FieldValue
	Category ReasonCategory
	Note     string
}

// Validate checks the request without reference to any record.
func (r RevisionRequest) Validate() error {
	if r.Category == "" {
		return dErrors.New(dErrors.CodeValidation, "reason_category is required")
	}
	if !r.Category.IsValid() {
		return dErrors.Newf(dErrors.CodeValidation, "unknown reason_category %q", r.Category)
	}
	if len(r.Note) > maxReasonNoteLength {
		return dErrors.New(dErrors.CodeValidation, "reason_note too long")
	}
	return r.Path.CheckValue(r.NewValue)
}
