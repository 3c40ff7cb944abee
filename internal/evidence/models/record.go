package models

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/clock"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// Lifecycle is the record's position in the Draft → Finalized state machine.
type Lifecycle string

const (
	LifecycleDraft     Lifecycle = "draft"
	LifecycleFinalized Lifecycle = "finalized"
)

func (l Lifecycle) IsValid() bool {
	return l == LifecycleDraft || l == LifecycleFinalized
}

// Precision is the resolution at which instants are captured. Every supported
// store round-trips it exactly, which keeps seals stable.
const Precision = time.Microsecond

// EvidenceRecord is an immutable record value. Fields are read through accessors
// and changed only by transition methods that return a new value.
//
// Invariants:
//   - evidenceTimestamp is set at most once, at creation, and never changes
//   - finalized goes false → true at most once; finalizedAt/finalizedBy are set together with it
//   - while Draft the payload may be overwritten in place
//   - once Finalized the payload changes only through the revision ledger
//   - retrospectiveContext is attached at creation only and never removed
//   - revisionIDs only grow
type EvidenceRecord struct {
	id                domain.RecordID
	profileID         domain.ProfileID
	logicalDate       civil.Date
	createdAt         time.Time
	evidenceTimestamp *time.Time
	finalizedAt       *time.Time
	finalizedBy       *domain.ProfileID
	retro             *RetrospectiveContext
	revisionIDs       []domain.RevisionID
	payload           Payload
	seal              Seal
}

// NewRecordParams carries everything needed to create a record. There is no
// timestamp field: CapturedAt comes from the service clock.
type NewRecordParams struct {
	ID          domain.RecordID
	ProfileID   domain.ProfileID
	LogicalDate civil.Date
	Payload     Payload
	CapturedAt  time.Time
	Tracking    bool
	Retro       RetroInput
}

// NewRecord creates a Draft record. The capture instant becomes createdAt and,
// when tracking is active, the evidence timestamp. Backdating metadata is
// computed here and nowhere else.
func NewRecord(p NewRecordParams) (EvidenceRecord, error) {
	if p.ID.IsNil() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeInvariantViolation, "record id is required")
	}
	if p.ProfileID.IsNil() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	if domain.IsZeroDate(p.LogicalDate) {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeValidation, "logical_date is required")
	}
	if !p.LogicalDate.IsValid() {
		return EvidenceRecord{}, dErrors.Newf(dErrors.CodeValidation, "logical_date %s is not a calendar date", p.LogicalDate)
	}
	if p.CapturedAt.IsZero() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeInvariantViolation, "capture instant is required")
	}
	payload := p.Payload.Normalize()
	if err := payload.Validate(); err != nil {
		return EvidenceRecord{}, err
	}

	captured := p.CapturedAt.UTC().Truncate(Precision)
	retro, err := ComputeRetrospective(p.LogicalDate, captured, p.Retro)
	if err != nil {
		return EvidenceRecord{}, err
	}

	r := EvidenceRecord{
		id:                p.ID,
		profileID:         p.ProfileID,
		logicalDate:       p.LogicalDate,
		createdAt:         captured,
		evidenceTimestamp: clock.Capture(captured, p.Tracking),
		retro:             retro,
		payload:           payload,
	}
	r.seal = r.computeSeal()
	return r, nil
}

func (r EvidenceRecord) computeSeal() Seal {
	return computeSeal(sealInput{
		id:                r.id,
		profileID:         r.profileID,
		logicalDate:       r.logicalDate,
		createdAt:         r.createdAt,
		evidenceTimestamp: r.evidenceTimestamp,
		retro:             r.retro,
	})
}

func (r EvidenceRecord) ID() domain.RecordID         { return r.id }
func (r EvidenceRecord) ProfileID() domain.ProfileID { return r.profileID }
func (r EvidenceRecord) LogicalDate() civil.Date     { return r.logicalDate }
func (r EvidenceRecord) CreatedAt() time.Time        { return r.createdAt }
func (r EvidenceRecord) Seal() Seal                  { return r.seal }
func (r EvidenceRecord) IsFinalized() bool           { return r.finalizedAt != nil }
func (r EvidenceRecord) RecordType() RecordType      { return r.payload.RecordType }

// EvidenceTimestamp is nil for records created while tracking was inactive.
func (r EvidenceRecord) EvidenceTimestamp() *time.Time { return copyTime(r.evidenceTimestamp) }

func (r EvidenceRecord) FinalizedAt() *time.Time { return copyTime(r.finalizedAt) }

func (r EvidenceRecord) FinalizedBy() *domain.ProfileID {
	if r.finalizedBy == nil {
		return nil
	}
	v := *r.finalizedBy
	return &v
}

// Lifecycle reports the current state.
func (r EvidenceRecord) Lifecycle() Lifecycle {
	if r.IsFinalized() {
		return LifecycleFinalized
	}
	return LifecycleDraft
}

// RetrospectiveContext returns a copy of the context attached at creation.
// Amendments live in the revision ledger; see RecordView.EffectiveRetrospective.
func (r EvidenceRecord) RetrospectiveContext() *RetrospectiveContext { return r.retro.Clone() }

// RevisionIDs returns the ledger order of revisions applied to this record.
func (r EvidenceRecord) RevisionIDs() []domain.RevisionID { return slices.Clone(r.revisionIDs) }

// Payload returns a copy of the base payload: the live draft while Draft, the
// finalized original once Finalized.
func (r EvidenceRecord) Payload() Payload { return r.payload.Clone() }

// DaysDelayed is always derivable from logicalDate and createdAt.
func (r EvidenceRecord) DaysDelayed() int { return DaysDelayed(r.logicalDate, r.createdAt) }

// Finalize moves a Draft record to Finalized. A second call fails with
// CodeAlreadyFinalized and leaves finalizedAt untouched.
func (r EvidenceRecord) Finalize(actor domain.ProfileID, now time.Time) (EvidenceRecord, error) {
	if r.IsFinalized() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeAlreadyFinalized, "record is already finalized")
	}
	if actor.IsNil() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeValidation, "finalizing actor is required")
	}
	if now.IsZero() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeInvariantViolation, "finalization time is required")
	}
	out := r.clone()
	at := now.UTC().Truncate(Precision)
	out.finalizedAt = &at
	out.finalizedBy = &actor
	return out, nil
}

// UpdateField overwrites one payload field in place. Only legal while Draft.
func (r EvidenceRecord) UpdateField(path FieldPath, v FieldValue) (EvidenceRecord, error) {
	if err := r.CanEdit(); err != nil {
		return EvidenceRecord{}, err
	}
	if path.IsRetrospective() {
		return EvidenceRecord{}, dErrors.New(dErrors.CodeValidation,
			"retrospective context cannot be overwritten; it is amended by revision after finalization")
	}
	if err := path.CheckValue(v); err != nil {
		return EvidenceRecord{}, err
	}
	out := r.clone()
	out.payload = out.payload.With(path, v).Normalize()
	return out, nil
}

// ReplacePayload overwrites the whole payload. Only legal while Draft.
func (r EvidenceRecord) ReplacePayload(p Payload) (EvidenceRecord, error) {
	if err := r.CanEdit(); err != nil {
		return EvidenceRecord{}, err
	}
	p = p.Normalize()
	if err := p.Validate(); err != nil {
		return EvidenceRecord{}, err
	}
	out := r.clone()
	out.payload = p
	return out, nil
}

// CanEdit fails with CodeEditBlocked for finalized records.
func (r EvidenceRecord) CanEdit() error {
	if r.IsFinalized() {
		return dErrors.New(dErrors.CodeEditBlocked, "finalized records cannot be edited directly; append a revision")
	}
	return nil
}

// CanDelete fails with CodeDeleteBlocked for finalized records.
func (r EvidenceRecord) CanDelete() error {
	if r.IsFinalized() {
		return dErrors.New(dErrors.CodeDeleteBlocked, "finalized records cannot be deleted")
	}
	return nil
}

func (r EvidenceRecord) withRevision(id domain.RevisionID) EvidenceRecord {
	out := r.clone()
	out.revisionIDs = append(out.revisionIDs, id)
	return out
}

func (r EvidenceRecord) clone() EvidenceRecord {
	out := r
	out.evidenceTimestamp = copyTime(r.evidenceTimestamp)
	out.finalizedAt = copyTime(r.finalizedAt)
	out.finalizedBy = r.FinalizedBy()
	out.retro = r.retro.Clone()
	out.revisionIDs = slices.Clone(r.revisionIDs)
	out.payload = r.payload.Clone()
	return out
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
