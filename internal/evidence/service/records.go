package service

import (
	"context"
	"errors"

	"cloud.google.com/go/civil"
	"go.opentelemetry.io/otel/attribute"

	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	"evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/sentinel"
)

// CreateRecordRequest is the caller's part of a new record. The capture
// instant is never supplied by the caller.
type CreateRecordRequest struct {
	ProfileID   domain.ProfileID
	LogicalDate civil.Date
	Payload     models.Payload
	Retro       models.RetroInput
}

// CreateRecord captures a new Draft record. The evidence timestamp is stamped
// when the profile has evidence tracking on; backdated records get their
// retrospective context here and only here.
func (s *Service) CreateRecord(ctx context.Context, req CreateRecordRequest) (_ models.EvidenceRecord, err error) {
	ctx, span := s.startSpan(ctx, "CreateRecord", attribute.String("profile_id", req.ProfileID.String()))
	defer func() { s.finish(span, "create_record", err) }()

	if req.ProfileID.IsNil() {
		return models.EvidenceRecord{}, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	tracking, err := s.trackingFor(ctx, req.ProfileID)
	if err != nil {
		return models.EvidenceRecord{}, err
	}

	r, err := models.NewRecord(models.NewRecordParams{
		ID:          domain.NewRecordID(),
		ProfileID:   req.ProfileID,
		LogicalDate: req.LogicalDate,
		Payload:     req.Payload,
		CapturedAt:  s.clock.Now(),
		Tracking:    tracking,
		Retro:       req.Retro,
	})
	if err != nil {
		return models.EvidenceRecord{}, err
	}
	if err := s.records.Put(ctx, r.ToState()); err != nil {
		return models.EvidenceRecord{}, translate(err, "record")
	}
	s.metrics.ObserveDaysDelayed(r.DaysDelayed())

	if err := s.logAudit(ctx, audit.EventRecordCreated, r.ProfileID(), r.ID().String(),
		"logical_date", r.LogicalDate().String(),
		"days_delayed", r.DaysDelayed(),
		"evidence_tracking", tracking,
	); err != nil {
		return models.EvidenceRecord{}, err
	}
	return r, nil
}

// GetRecord returns the verified record together with its ledger.
func (s *Service) GetRecord(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (_ models.RecordView, err error) {
	ctx, span := s.startSpan(ctx, "GetRecord", attribute.String("record_id", recordID.String()))
	defer func() { s.finish(span, "get_record", err) }()
	return s.loadView(ctx, profileID, recordID)
}

// ListRevisions returns a record's verified ledger in sequence order.
func (s *Service) ListRevisions(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) ([]models.Revision, error) {
	v, err := s.GetRecord(ctx, profileID, recordID)
	if err != nil {
		return nil, err
	}
	return v.Ledger().Revisions(), nil
}

// UpdateField overwrites one payload field of a Draft record. Finalized
// records fail with CodeEditBlocked.
func (s *Service) UpdateField(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, path models.FieldPath, value models.FieldValue) (models.EvidenceRecord, error) {
	return s.editDraft(ctx, "update_field", profileID, recordID, func(r models.EvidenceRecord) (models.EvidenceRecord, error) {
		return r.UpdateField(path, value)
	})
}

// ReplacePayload overwrites the whole payload of a Draft record.
func (s *Service) ReplacePayload(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, payload models.Payload) (models.EvidenceRecord, error) {
	return s.editDraft(ctx, "replace_payload", profileID, recordID, func(r models.EvidenceRecord) (models.EvidenceRecord, error) {
		return r.ReplacePayload(payload)
	})
}

func (s *Service) editDraft(
	ctx context.Context,
	operation string,
	profileID domain.ProfileID,
	recordID domain.RecordID,
	edit func(models.EvidenceRecord) (models.EvidenceRecord, error),
) (out models.EvidenceRecord, err error) {
	ctx, span := s.startSpan(ctx, operation, attribute.String("record_id", recordID.String()))
	defer func() { s.finish(span, operation, err) }()

	err = s.withRecordLock(ctx, recordID, func() error {
		r, err := s.loadRecord(ctx, profileID, recordID)
		if err != nil {
			return err
		}
		next, err := edit(r)
		if err != nil {
			return err
		}
		if err := s.records.Put(ctx, next.ToState()); err != nil {
			switch {
			case errors.Is(err, sentinel.ErrInvalidState):
				return dErrors.New(dErrors.CodeEditBlocked, "finalized records cannot be edited directly; append a revision")
			case errors.Is(err, sentinel.ErrStateMismatch):
				return dErrors.New(dErrors.CodeConflict, "record changed while it was being edited")
			}
			return translate(err, "record")
		}
		out = next
		return nil
	})
	if err != nil {
		return models.EvidenceRecord{}, err
	}
	_ = s.logAudit(ctx, audit.EventRecordUpdated, profileID, recordID.String(), "operation", operation)
	return out, nil
}

// Finalize moves a Draft record to Finalized on behalf of actor. Only one
// caller can win; every later call fails with CodeAlreadyFinalized and the
// stored finalizedAt is never touched again.
func (s *Service) Finalize(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, actor domain.ProfileID) (out models.EvidenceRecord, err error) {
	ctx, span := s.startSpan(ctx, "Finalize", attribute.String("record_id", recordID.String()))
	defer func() { s.finish(span, "finalize", err) }()

	err = s.withRecordLock(ctx, recordID, func() error {
		r, err := s.loadRecord(ctx, profileID, recordID)
		if err != nil {
			return err
		}
		next, err := r.Finalize(actor, s.clock.Now())
		if err != nil {
			return err
		}
		if err := s.records.CompareAndSetFinalized(ctx, recordID, models.LifecycleDraft, next.ToState()); err != nil {
			if errors.Is(err, sentinel.ErrStateMismatch) {
				return s.explainLostFinalize(ctx, profileID, recordID)
			}
			return translate(err, "record")
		}
		out = next
		return nil
	})
	if err != nil {
		return models.EvidenceRecord{}, err
	}

	if err := s.logAudit(ctx, audit.EventRecordFinalized, profileID, recordID.String(),
		"finalized_by", actor,
		"finalized_at", out.FinalizedAt(),
	); err != nil {
		return models.EvidenceRecord{}, err
	}
	return out, nil
}

// explainLostFinalize turns a failed compare-and-set into the error the loser
// should see.
func (s *Service) explainLostFinalize(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) error {
	st, err := s.records.Get(ctx, profileID, recordID)
	if err != nil {
		return translate(err, "record")
	}
	if st.Finalized {
		return dErrors.New(dErrors.CodeAlreadyFinalized, "record is already finalized")
	}
	return dErrors.New(dErrors.CodeConflict, "record changed while it was being finalized")
}

// DeleteRecord removes a Draft record. Finalized records fail with
// CodeDeleteBlocked.
func (s *Service) DeleteRecord(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (err error) {
	ctx, span := s.startSpan(ctx, "DeleteRecord", attribute.String("record_id", recordID.String()))
	defer func() { s.finish(span, "delete_record", err) }()

	err = s.withRecordLock(ctx, recordID, func() error {
		r, err := s.loadRecord(ctx, profileID, recordID)
		if err != nil {
			return err
		}
		if err := r.CanDelete(); err != nil {
			return err
		}
		if err := s.records.Delete(ctx, profileID, recordID); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeDeleteBlocked, "finalized records cannot be deleted")
			}
			return translate(err, "record")
		}
		return nil
	})
	if err != nil {
		return err
	}
	return s.logAudit(ctx, audit.EventRecordDeleted, profileID, recordID.String())
}

// AppendRevision records a post-finalization change to one field. The
// sequence is allocated under the record lock and the store rejects a
// duplicate, so concurrent appenders never share a number and a failed
// attempt never consumes one.
func (s *Service) AppendRevision(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID, req models.RevisionRequest) (rev models.Revision, err error) {
	ctx, span := s.startSpan(ctx, "AppendRevision",
		attribute.String("record_id", recordID.String()),
		attribute.String("field_path", req.Path.String()),
	)
	defer func() { s.finish(span, "append_revision", err) }()

	err = s.withRecordLock(ctx, recordID, func() error {
		r, err := s.loadRecord(ctx, profileID, recordID)
		if err != nil {
			return err
		}
		revs, err := s.records.ListRevisions(ctx, recordID)
		if err != nil {
			return translate(err, "revisions")
		}
		_, _, next, err := models.AppendRevision(r, models.NewLedger(recordID, revs), req, domain.NewRevisionID(), s.clock.Now())
		if err != nil {
			if dErrors.HasCode(err, dErrors.CodeIntegrityViolation) {
				s.reportIntegrity(ctx, profileID, recordID, err)
			}
			return err
		}
		if err := s.records.AppendRevision(ctx, next); err != nil {
			if errors.Is(err, sentinel.ErrInvalidState) {
				return dErrors.New(dErrors.CodeRevisionOnDraft,
					"draft records are edited directly; revisions apply to finalized records only")
			}
			return translate(err, "revision")
		}
		rev = next
		return nil
	})
	if err != nil {
		return models.Revision{}, err
	}

	if err := s.logAudit(ctx, audit.EventRevisionAdded, profileID, rev.ID.String(),
		"record_id", recordID,
		"sequence", rev.Sequence,
		"field_path", rev.FieldPath.String(),
		"reason_category", string(rev.ReasonCategory),
	); err != nil {
		return models.Revision{}, err
	}
	return rev, nil
}
