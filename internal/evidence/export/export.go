// Package export defines the structured DTOs handed to renderers (CSV, JSON,
// PDF). Every record field is carried verbatim. Absent optional fields are
// omitted or null, never a placeholder, and days_delayed is always present.
package export

import (
	"time"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// Record is the export shape of an evidence record. Payload holds the base
// payload as finalized; EffectivePayload folds in revisions and is set only
// when the record has been revised.
type Record struct {
	ID                   domain.RecordID              `json:"id"`
	ProfileID            domain.ProfileID             `json:"profile_id"`
	LogicalDate          civil.Date                   `json:"logical_date"`
	CreatedAt            time.Time                    `json:"created_at"`
	EvidenceTimestamp    *time.Time                   `json:"evidence_timestamp"`
	Lifecycle            models.Lifecycle             `json:"lifecycle"`
	Finalized            bool                         `json:"finalized"`
	FinalizedAt          *time.Time                   `json:"finalized_at"`
	FinalizedBy          *domain.ProfileID            `json:"finalized_by"`
	DaysDelayed          int                          `json:"days_delayed"`
	RetrospectiveContext *models.RetrospectiveContext `json:"retrospective_context"`
	RevisionIDs          []domain.RevisionID          `json:"revision_ids"`
	Payload              models.Payload               `json:"payload"`
	EffectivePayload     *models.Payload              `json:"effective_payload,omitempty"`
	EffectiveRetro       *models.RetrospectiveContext `json:"effective_retrospective_context,omitempty"`
	Seal                 models.Seal                  `json:"seal"`
}

// FromRecord exports a record without ledger context.
func FromRecord(r models.EvidenceRecord) Record {
	ids := r.RevisionIDs()
	if ids == nil {
		ids = []domain.RevisionID{}
	}
	return Record{
		ID:                   r.ID(),
		ProfileID:            r.ProfileID(),
		LogicalDate:          r.LogicalDate(),
		CreatedAt:            r.CreatedAt(),
		EvidenceTimestamp:    r.EvidenceTimestamp(),
		Lifecycle:            r.Lifecycle(),
		Finalized:            r.IsFinalized(),
		FinalizedAt:          r.FinalizedAt(),
		FinalizedBy:          r.FinalizedBy(),
		DaysDelayed:          r.DaysDelayed(),
		RetrospectiveContext: r.RetrospectiveContext(),
		RevisionIDs:          ids,
		Payload:              r.Payload(),
		Seal:                 r.Seal(),
	}
}

// FromView exports a record with its effective values.
func FromView(v models.RecordView) Record {
	out := FromRecord(v.Record())
	if v.IsRevised() {
		eff := v.EffectivePayload()
		out.EffectivePayload = &eff
		out.EffectiveRetro = v.EffectiveRetrospective()
	}
	return out
}

// ToRecord rebuilds and verifies the record an export describes. Derived
// fields that disagree with the creation facts are an integrity violation.
func (d Record) ToRecord() (models.EvidenceRecord, error) {
	r, err := models.Rehydrate(models.RecordState{
		ID:                d.ID,
		ProfileID:         d.ProfileID,
		LogicalDate:       d.LogicalDate,
		CreatedAt:         d.CreatedAt,
		EvidenceTimestamp: d.EvidenceTimestamp,
		Finalized:         d.Finalized,
		FinalizedAt:       d.FinalizedAt,
		FinalizedBy:       d.FinalizedBy,
		Retrospective:     d.RetrospectiveContext,
		RevisionIDs:       d.RevisionIDs,
		Payload:           d.Payload,
		Seal:              d.Seal,
	})
	if err != nil {
		return models.EvidenceRecord{}, err
	}
	if r.DaysDelayed() != d.DaysDelayed || r.Lifecycle() != d.Lifecycle {
		return models.EvidenceRecord{}, dErrors.Newf(dErrors.CodeIntegrityViolation,
			"record %s: exported derived fields disagree with creation facts", d.ID)
	}
	return r, nil
}

// Revision is the export shape of a ledger entry.
type Revision = models.Revision

// Pack is the export shape of a submission pack.
type Pack = pack.State

// FromPack exports a pack.
func FromPack(p pack.Pack) Pack { return p.ToState() }

// Gap is the export shape of a detected gap with its explanations.
type Gap struct {
	ProfileID    domain.ProfileID   `json:"profile_id"`
	StartDate    civil.Date         `json:"start_date"`
	EndDate      civil.Date         `json:"end_date"`
	LengthDays   int                `json:"length_days"`
	Explanations []gaps.Explanation `json:"explanations"`
}

// FromGaps exports annotated gaps. Unexplained gaps carry an empty list.
func FromGaps(in []gaps.Annotated) []Gap {
	out := make([]Gap, len(in))
	for i, a := range in {
		ex := a.Explanations
		if ex == nil {
			ex = []gaps.Explanation{}
		}
		out[i] = Gap{
			ProfileID:    a.Gap.ProfileID,
			StartDate:    a.Gap.StartDate,
			EndDate:      a.Gap.EndDate,
			LengthDays:   a.Gap.LengthDays,
			Explanations: ex,
		}
	}
	return out
}

// Bundle is a full export of one profile: records with their ledgers, gaps and
// the listed integrity failures.
type Bundle struct {
	ProfileID         domain.ProfileID        `json:"profile_id"`
	GeneratedAt       time.Time               `json:"generated_at"`
	Records           []Record                `json:"records"`
	Revisions         []Revision              `json:"revisions"`
	Gaps              []Gap                   `json:"gaps"`
	IntegrityFailures []pack.IntegrityFailure `json:"integrity_failures"`
}
