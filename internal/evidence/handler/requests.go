package handler

import (
	"strings"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// CreateRecordRequest is the body of POST /profiles/{profileID}/records.
type CreateRecordRequest struct {
	LogicalDate         string         `json:"logical_date"`
	Payload             models.Payload `json:"payload"`
	RetrospectiveReason string         `json:"retrospective_reason,omitempty"`
	RetrospectiveNote   string         `json:"retrospective_note,omitempty"`

	logicalDate civil.Date
}

// Validate parses the logical date. Payload rules are enforced by the model.
func (r *CreateRecordRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	d, err := domain.ParseDate(strings.TrimSpace(r.LogicalDate))
	if err != nil {
		return dErrors.New(dErrors.CodeValidation, "logical_date must be YYYY-MM-DD")
	}
	r.logicalDate = d
	r.RetrospectiveReason = strings.TrimSpace(r.RetrospectiveReason)
	return nil
}

func (r *CreateRecordRequest) retro() models.RetroInput {
	return models.RetroInput{
		Reason: models.RetroReason(r.RetrospectiveReason),
		Note:   strings.TrimSpace(r.RetrospectiveNote),
	}
}

// UpdateFieldRequest is the body of PATCH /profiles/{profileID}/records/{recordID}.
type UpdateFieldRequest struct {
	FieldPath string            `json:"field_path"`
	Value     models.FieldValue `json:"value"`

	path models.FieldPath
}

func (r *UpdateFieldRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	p, err := models.ParseFieldPath(strings.TrimSpace(r.FieldPath))
	if err != nil {
		return err
	}
	r.path = p
	return nil
}

// ReplacePayloadRequest is the body of PUT /profiles/{profileID}/records/{recordID}/payload.
type ReplacePayloadRequest struct {
	Payload models.Payload `json:"payload"`
}

func (r *ReplacePayloadRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	return nil
}

// AppendRevisionRequest is the body of POST .../records/{recordID}/revisions.
type AppendRevisionRequest struct {
	FieldPath      string            `json:"field_path"`
	NewValue       models.FieldValue `json:"new_value"`
	ReasonCategory string            `json:"reason_category"`
	ReasonNote     string            `json:"reason_note,omitempty"`

	parsed models.RevisionRequest
}

func (r *AppendRevisionRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	p, err := models.ParseFieldPath(strings.TrimSpace(r.FieldPath))
	if err != nil {
		return err
	}
	category, err := models.ParseReasonCategory(strings.TrimSpace(r.ReasonCategory))
	if err != nil {
		return err
	}
	r.parsed = models.RevisionRequest{
		Path:     p,
		NewValue: r.NewValue,
		Category: category,
		Note:     strings.TrimSpace(r.ReasonNote),
	}
	return r.parsed.Validate()
}

// ExplainGapRequest is the body of POST /profiles/{profileID}/gap-explanations.
type ExplainGapRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
	Note      string `json:"note,omitempty"`

	span domain.DateRange
}

func (r *ExplainGapRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	span, err := parseRange(r.StartDate, r.EndDate)
	if err != nil {
		return err
	}
	if span == (domain.DateRange{}) {
		return dErrors.New(dErrors.CodeValidation, "start_date and end_date are required")
	}
	r.span = span
	return nil
}

// BuildPackRequest is the body of POST /profiles/{profileID}/packs.
type BuildPackRequest struct {
	StartDate   string   `json:"start_date"`
	EndDate     string   `json:"end_date"`
	RecordTypes []string `json:"record_types,omitempty"`

	criteria pack.Criteria
}

func (r *BuildPackRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	span, err := parseRange(r.StartDate, r.EndDate)
	if err != nil {
		return err
	}
	types := make([]models.RecordType, 0, len(r.RecordTypes))
	for _, raw := range r.RecordTypes {
		t, err := models.ParseRecordType(strings.TrimSpace(raw))
		if err != nil {
			return err
		}
		types = append(types, t)
	}
	r.criteria = pack.Criteria{Range: span, RecordTypes: types}.Normalize()
	return r.criteria.Validate()
}

// VerifyPackRequest is the body of POST .../packs/{packID}/verify.
type VerifyPackRequest struct {
	Token string `json:"token"`
}

func (r *VerifyPackRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	r.Token = strings.TrimSpace(r.Token)
	if r.Token == "" {
		return dErrors.New(dErrors.CodeValidation, "token is required")
	}
	return nil
}

// TrackingRequest is the body of PUT /profiles/{profileID}/settings/evidence-tracking.
type TrackingRequest struct {
	Enabled *bool `json:"enabled"`
}

func (r *TrackingRequest) Validate() error {
	if r == nil || r.Enabled == nil {
		return dErrors.New(dErrors.CodeValidation, "enabled is required")
	}
	return nil
}

// parseRange parses an optional inclusive date range. Both bounds or neither.
func parseRange(start, end string) (domain.DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" && end == "" {
		return domain.DateRange{}, nil
	}
	if start == "" || end == "" {
		return domain.DateRange{}, dErrors.New(dErrors.CodeValidation, "start and end must be given together")
	}
	s, err := domain.ParseDate(start)
	if err != nil {
		return domain.DateRange{}, err
	}
	e, err := domain.ParseDate(end)
	if err != nil {
		return domain.DateRange{}, err
	}
	r := domain.DateRange{Start: s, End: e}
	if err := r.Validate(); err != nil {
		return domain.DateRange{}, err
	}
	return r, nil
}
