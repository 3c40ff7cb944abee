package models

import (
	"fmt"
	"slices"
	"time"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// Ledger is the ordered revision chain of one record.
type Ledger struct {
	recordID  domain.RecordID
	revisions []Revision
}

// NewLedger builds a ledger from stored revisions, ordered by sequence.
// It does not validate; call Verify against the owning record.
func NewLedger(recordID domain.RecordID, revisions []Revision) Ledger {
	revs := slices.Clone(revisions)
	slices.SortStableFunc(revs, func(a, b Revision) int { return a.Sequence - b.Sequence })
	return Ledger{recordID: recordID, revisions: revs}
}

func (l Ledger) RecordID() domain.RecordID { return l.recordID }
func (l Ledger) Len() int                  { return len(l.revisions) }
func (l Ledger) Revisions() []Revision     { return slices.Clone(l.revisions) }

// NextSequence is the sequence the next appended revision receives.
func (l Ledger) NextSequence() int { return len(l.revisions) + 1 }

// ForPath returns the revisions of one field in sequence order.
func (l Ledger) ForPath(path FieldPath) []Revision {
	var out []Revision
	for _, r := range l.revisions {
		if r.FieldPath == path {
			out = append(out, r)
		}
	}
	return out
}

// Verify checks the chain against its record:
// sequences are 1..N with no gaps or duplicates, every revision belongs to the
// record, timestamps never decrease, and ids match the record's revisionIDs.
func (l Ledger) Verify(record EvidenceRecord) error {
	fail := func(format string, args ...any) error {
		return dErrors.Newf(dErrors.CodeIntegrityViolation, "record %s ledger: %s", record.ID(), fmt.Sprintf(format, args...))
	}
	if l.recordID != record.ID() {
		return fail("ledger belongs to record %s", l.recordID)
	}
	ids := record.RevisionIDs()
	if len(ids) != len(l.revisions) {
		return fail("record lists %d revisions, ledger holds %d", len(ids), len(l.revisions))
	}
	var prev time.Time
	for i, r := range l.revisions {
		if r.RecordID != record.ID() {
			return fail("revision %s belongs to record %s", r.ID, r.RecordID)
		}
		if r.Sequence != i+1 {
			return fail("expected sequence %d, found %d", i+1, r.Sequence)
		}
		if r.ID != ids[i] {
			return fail("sequence %d is revision %s, record lists %s", r.Sequence, r.ID, ids[i])
		}
		if r.RevisionTimestamp.Before(prev) {
			return fail("sequence %d timestamp precedes sequence %d", r.Sequence, r.Sequence-1)
		}
		if !r.ReasonCategory.IsValid() || r.FieldPath.IsZero() {
			return fail("sequence %d is malformed", r.Sequence)
		}
		prev = r.RevisionTimestamp
	}
	if len(l.revisions) > 0 && !record.IsFinalized() {
		return fail("draft record has revisions")
	}
	return nil
}

// EffectivePayload folds every payload revision, in sequence order, over the
// finalized base payload. The base is not modified.
func (l Ledger) EffectivePayload(base Payload) Payload {
	out := base.Clone()
	for _, r := range l.revisions {
		if !r.FieldPath.IsRetrospective() {
			out = out.With(r.FieldPath, r.UpdatedValue)
		}
	}
	return out
}

// EffectiveRetrospective folds retrospective revisions over the context attached
// at creation.
func (l Ledger) EffectiveRetrospective(base *RetrospectiveContext) *RetrospectiveContext {
	out := base.Clone()
	for _, r := range l.revisions {
		if r.FieldPath.IsRetrospective() {
			out = out.With(r.FieldPath, r.UpdatedValue)
		}
	}
	return out
}

// EffectiveValue is the current value of one field after all revisions. It
// reads from the same fold as EffectivePayload, since a revision on one path
// can change another: clearing an activity attribute removes the whole entry.
func (l Ledger) EffectiveValue(record EvidenceRecord, path FieldPath) FieldValue {
	if path.IsRetrospective() {
		return l.EffectiveRetrospective(record.retro).Value(path)
	}
	return l.EffectivePayload(record.payload).Value(path)
}

// AppendRevision appends one revision to a finalized record's ledger.
//
// It fails with CodeRevisionOnDraft for drafts and CodeValidation for a missing
// or unknown category, an unknown path or a value of the wrong kind. On failure
// nothing is allocated: the next call receives the same sequence.
//
// originalValue is the field's effective value at call time, so consecutive
// revisions of one field form an unbroken chain. The timestamp never precedes
// the previous revision's.
func AppendRevision(
	record EvidenceRecord,
	ledger Ledger,
	req RevisionRequest,
	id domain.RevisionID,
	now time.Time,
) (EvidenceRecord, Ledger, Revision, error) {
	if !record.IsFinalized() {
		return EvidenceRecord{}, Ledger{}, Revision{}, dErrors.New(dErrors.CodeRevisionOnDraft,
			"draft records are edited directly; revisions apply to finalized records only")
	}
	if err := req.Validate(); err != nil {
		return EvidenceRecord{}, Ledger{}, Revision{}, err
	}
	if req.Path.IsRetrospective() && record.retro == nil {
		return EvidenceRecord{}, Ledger{}, Revision{}, dErrors.New(dErrors.CodeValidation,
			"record has no retrospective context to amend")
	}
	if id.IsNil() {
		return EvidenceRecord{}, Ledger{}, Revision{}, dErrors.New(dErrors.CodeInvariantViolation, "revision id is required")
	}
	if err := ledger.Verify(record); err != nil {
		return EvidenceRecord{}, Ledger{}, Revision{}, err
	}

	ts := now.UTC().Truncate(Precision)
	if n := len(ledger.revisions); n > 0 && ts.Before(ledger.revisions[n-1].RevisionTimestamp) {
		ts = ledger.revisions[n-1].RevisionTimestamp
	}

	rev := Revision{
		ID:                id,
		RecordID:          record.ID(),
		Sequence:          ledger.NextSequence(),
		FieldPath:         req.Path,
		OriginalValue:     ledger.EffectiveValue(record, req.Path),
		UpdatedValue:      req.NewValue,
		ReasonCategory:    req.Category,
		ReasonNote:        req.Note,
		RevisionTimestamp: ts,
	}
	next := Ledger{recordID: ledger.recordID, revisions: append(slices.Clone(ledger.revisions), rev)}
	return record.withRevision(id), next, rev, nil
}
