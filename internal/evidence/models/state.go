package models

import (
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// RecordState is the persistence shape of an EvidenceRecord. Stores read and
// write it; the service turns it back into a record only through Rehydrate.
type RecordState struct {
	ID                domain.RecordID
	ProfileID         domain.ProfileID
	LogicalDate       civil.Date
	CreatedAt         time.Time
	EvidenceTimestamp *time.Time
	Finalized         bool
	FinalizedAt       *time.Time
	FinalizedBy       *domain.ProfileID
	Retrospective     *RetrospectiveContext
	RevisionIDs       []domain.RevisionID
	Payload           Payload
	Seal              Seal
}

// Lifecycle reports the state the row claims to be in.
func (s RecordState) Lifecycle() Lifecycle {
	if s.Finalized {
		return LifecycleFinalized
	}
	return LifecycleDraft
}

// Clone returns a deep copy.
func (s RecordState) Clone() RecordState {
	out := s
	out.EvidenceTimestamp = copyTime(s.EvidenceTimestamp)
	out.FinalizedAt = copyTime(s.FinalizedAt)
	if s.FinalizedBy != nil {
		v := *s.FinalizedBy
		out.FinalizedBy = &v
	}
	out.Retrospective = s.Retrospective.Clone()
	out.RevisionIDs = slices.Clone(s.RevisionIDs)
	out.Payload = s.Payload.Clone()
	return out
}

// ToState exports the record for persistence.
func (r EvidenceRecord) ToState() RecordState {
	return RecordState{
		ID:                r.id,
		ProfileID:         r.profileID,
		LogicalDate:       r.logicalDate,
		CreatedAt:         r.createdAt,
		EvidenceTimestamp: copyTime(r.evidenceTimestamp),
		Finalized:         r.IsFinalized(),
		FinalizedAt:       copyTime(r.finalizedAt),
		FinalizedBy:       r.FinalizedBy(),
		Retrospective:     r.retro.Clone(),
		RevisionIDs:       slices.Clone(r.revisionIDs),
		Payload:           r.payload.Clone(),
		Seal:              r.seal,
	}
}

// Rehydrate rebuilds a record from stored state and verifies its immutable
// invariants. Any violation is a CodeIntegrityViolation scoped to this record.
func Rehydrate(s RecordState) (EvidenceRecord, error) {
	fail := func(msg string) (EvidenceRecord, error) {
		return EvidenceRecord{}, dErrors.Newf(dErrors.CodeIntegrityViolation, "record %s: %s", s.ID, msg)
	}
	if s.ID.IsNil() || s.ProfileID.IsNil() {
		return fail("missing identity")
	}
	if domain.IsZeroDate(s.LogicalDate) || !s.LogicalDate.IsValid() {
		return fail("invalid logical date")
	}
	if s.Finalized != (s.FinalizedAt != nil) || s.Finalized != (s.FinalizedBy != nil) {
		return fail("finalized, finalized_at and finalized_by disagree")
	}
	if s.Retrospective != nil {
		if s.Retrospective.DaysDelayed != DaysDelayed(s.LogicalDate, s.CreatedAt) || s.Retrospective.DaysDelayed <= 0 {
			return fail("retrospective days_delayed does not match logical date and created_at")
		}
	} else if DaysDelayed(s.LogicalDate, s.CreatedAt) != 0 {
		return fail("backdated record is missing its retrospective context")
	}
	seen := make(map[domain.RevisionID]bool, len(s.RevisionIDs))
	for _, id := range s.RevisionIDs {
		if seen[id] {
			return fail("duplicate revision id " + id.String())
		}
		seen[id] = true
	}
	if len(s.RevisionIDs) > 0 && !s.Finalized {
		return fail("draft record carries revisions")
	}

	r := EvidenceRecord{
		id:                s.ID,
		profileID:         s.ProfileID,
		logicalDate:       s.LogicalDate,
		createdAt:         s.CreatedAt.UTC(),
		evidenceTimestamp: utcPtr(s.EvidenceTimestamp),
		finalizedAt:       utcPtr(s.FinalizedAt),
		retro:             s.Retrospective.Clone(),
		revisionIDs:       slices.Clone(s.RevisionIDs),
		payload:           s.Payload.Clone(),
		seal:              s.Seal,
	}
	if s.FinalizedBy != nil {
		v := *s.FinalizedBy
		r.finalizedBy = &v
	}
	if r.retro != nil {
		r.retro.FlaggedAt = r.retro.FlaggedAt.UTC()
	}
	if got := r.computeSeal(); got != s.Seal {
		return fail("seal mismatch: creation facts were altered after capture")
	}
	return r, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
