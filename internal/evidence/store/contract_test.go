package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	"evidentia/pkg/platform/sentinel"
)

type evidenceStore interface {
	Get(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordState, error)
	ListByProfile(ctx context.Context, profileID domain.ProfileID) ([]models.RecordState, error)
	Put(ctx context.Context, st models.RecordState) error
	Delete(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) error
	CompareAndSetFinalized(ctx context.Context, recordID domain.RecordID, expected models.Lifecycle, next models.RecordState) error
	AppendRevision(ctx context.Context, rev models.Revision) error
	ListRevisions(ctx context.Context, recordID domain.RecordID) ([]models.Revision, error)
	ListRevisionsByProfile(ctx context.Context, profileID domain.ProfileID) (map[domain.RecordID][]models.Revision, error)
	Snapshot(ctx context.Context, profileID domain.ProfileID) (Snapshot, error)
	CreatePack(ctx context.Context, p pack.Pack) error
	GetPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error)
	ListPacks(ctx context.Context, profileID domain.ProfileID) ([]pack.Pack, error)
	EvidenceTracking(ctx context.Context, profileID domain.ProfileID) (bool, error)
	SetEvidenceTracking(ctx context.Context, profileID domain.ProfileID, enabled bool) error
	CreateExplanation(ctx context.Context, e gaps.Explanation) error
	ListExplanations(ctx context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error)
}

var (
	_ evidenceStore = (*MemoryStore)(nil)
	_ evidenceStore = (*SQLStore)(nil)
)

var (
	captureAt = time.Date(2026, 2, 5, 9, 30, 0, 123456000, time.UTC)
	today     = civil.Date{Year: 2026, Month: 2, Day: 5}
)

// ContractSuite runs the same behavioural checks against every store.
type ContractSuite struct {
	suite.Suite
	newStore func(t *testing.T) evidenceStore
	store    evidenceStore
	ctx      context.Context
	profile  domain.ProfileID
}

func (s *ContractSuite) SetupTest() {
	s.store = s.newStore(s.T())
	s.ctx = context.Background()
	s.profile = domain.NewProfileID()
}

func severity(n int) *int { return &n }

func (s *ContractSuite) draft(logical civil.Date) models.EvidenceRecord {
	return s.draftFor(s.profile, logical)
}

func (s *ContractSuite) draftFor(profile domain.ProfileID, logical civil.Date) models.EvidenceRecord {
	var retro models.RetroInput
	if logical != today {
		retro = models.RetroInput{Reason: models.RetroReasonForgot, Note: "late entry"}
	}
	r, err := models.NewRecord(models.NewRecordParams{
		ID:          domain.NewRecordID(),
		ProfileID:   profile,
		LogicalDate: logical,
		Payload: models.Payload{
			RecordType:      models.RecordTypeDailyLog,
			Notes:           "stiff",
			OverallSeverity: severity(5),
			Symptoms:        []models.SymptomEntry{{Name: "pain", Severity: 6}},
			Activities:      []models.ActivityEntry{{Name: "walking", DurationMinutes: 15, Impact: 3}},
		},
		CapturedAt: captureAt,
		Tracking:   true,
		Retro:      retro,
	})
	s.Require().NoError(err)
	return r
}

func (s *ContractSuite) finalized(logical civil.Date) models.EvidenceRecord {
	r := s.draft(logical)
	s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
	f, err := r.Finalize(s.profile, captureAt.Add(time.Hour))
	s.Require().NoError(err)
	s.Require().NoError(s.store.CompareAndSetFinalized(s.ctx, r.ID(), models.LifecycleDraft, f.ToState()))
	return f
}

func (s *ContractSuite) revise(r models.EvidenceRecord, ledger models.Ledger, v int) (models.EvidenceRecord, models.Ledger, models.Revision) {
	next, led, rev, err := models.AppendRevision(r, ledger, models.RevisionRequest{
		Path:     models.SymptomSeverityPath("pain"),
		NewValue: models.Int(v),
		Category: models.ReasonCorrection,
	}, domain.NewRevisionID(), captureAt.Add(2*time.Hour))
	s.Require().NoError(err)
	return next, led, rev
}

func (s *ContractSuite) assertSameRecord(want models.EvidenceRecord, got models.RecordState) {
	back, err := models.Rehydrate(got)
	s.Require().NoError(err, "stored state must verify")
	s.Equal(want.ID(), back.ID())
	s.Equal(want.Seal(), back.Seal())
	s.Equal(want.LogicalDate(), back.LogicalDate())
	s.True(want.CreatedAt().Equal(back.CreatedAt()))
	s.Equal(want.Payload(), back.Payload())
	s.Equal(want.RetrospectiveContext(), back.RetrospectiveContext())
	s.Equal(want.Lifecycle(), back.Lifecycle())
	s.Equal(want.RevisionIDs(), back.RevisionIDs())
}

func (s *ContractSuite) TestDraftRoundTrip() {
	s.Run("same-day draft", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		got, err := s.store.Get(s.ctx, s.profile, r.ID())
		s.Require().NoError(err)
		s.assertSameRecord(r, got)
		s.Require().NotNil(got.EvidenceTimestamp)
		s.True(got.EvidenceTimestamp.Equal(captureAt))
	})

	s.Run("backdated draft keeps its retrospective context", func() {
		r := s.draft(civil.Date{Year: 2026, Month: 2, Day: 2})
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		got, err := s.store.Get(s.ctx, s.profile, r.ID())
		s.Require().NoError(err)
		s.assertSameRecord(r, got)
		s.Require().NotNil(got.Retrospective)
		s.Equal(3, got.Retrospective.DaysDelayed)
	})

	s.Run("other profile cannot read the record", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		_, err := s.store.Get(s.ctx, domain.NewProfileID(), r.ID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ContractSuite) TestPutGuards() {
	s.Run("draft payload can be overwritten", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		edited, err := r.UpdateField(models.NotesPath(), models.Text("better by noon"))
		s.Require().NoError(err)
		s.Require().NoError(s.store.Put(s.ctx, edited.ToState()))
		got, err := s.store.Get(s.ctx, s.profile, r.ID())
		s.Require().NoError(err)
		s.Equal("better by noon", got.Payload.Notes)
	})

	s.Run("changing sealed facts is a state mismatch", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		tampered := r.ToState()
		tampered.Seal = "forged"
		s.ErrorIs(s.store.Put(s.ctx, tampered), sentinel.ErrStateMismatch)
	})

	s.Run("finalized input is refused", func() {
		r := s.draft(today)
		f, err := r.Finalize(s.profile, captureAt)
		s.Require().NoError(err)
		s.ErrorIs(s.store.Put(s.ctx, f.ToState()), sentinel.ErrInvalidState)
	})

	s.Run("stored finalized row cannot be overwritten or deleted", func() {
		f := s.finalized(today)
		st := f.ToState()
		st.Finalized, st.FinalizedAt, st.FinalizedBy = false, nil, nil
		st.Payload.Notes = "rewritten"
		s.ErrorIs(s.store.Put(s.ctx, st), sentinel.ErrInvalidState)
		s.ErrorIs(s.store.Delete(s.ctx, s.profile, f.ID()), sentinel.ErrInvalidState)

		got, err := s.store.Get(s.ctx, s.profile, f.ID())
		s.Require().NoError(err)
		s.Equal("stiff", got.Payload.Notes)
	})
}

func (s *ContractSuite) TestDelete() {
	r := s.draft(today)
	s.Require().NoError(s.store.Put(s.ctx, r.ToState()))

	s.ErrorIs(s.store.Delete(s.ctx, domain.NewProfileID(), r.ID()), sentinel.ErrNotFound)
	s.Require().NoError(s.store.Delete(s.ctx, s.profile, r.ID()))
	_, err := s.store.Get(s.ctx, s.profile, r.ID())
	s.ErrorIs(err, sentinel.ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, s.profile, r.ID()), sentinel.ErrNotFound)
}

func (s *ContractSuite) TestCompareAndSetFinalized() {
	s.Run("draft becomes finalized", func() {
		f := s.finalized(today)
		got, err := s.store.Get(s.ctx, s.profile, f.ID())
		s.Require().NoError(err)
		s.assertSameRecord(f, got)
		s.Require().NotNil(got.FinalizedAt)
		s.True(got.FinalizedAt.Equal(*f.FinalizedAt()))
		s.Require().NotNil(got.FinalizedBy)
		s.Equal(s.profile, *got.FinalizedBy)
	})

	s.Run("second finalization loses", func() {
		f := s.finalized(today)
		s.ErrorIs(s.store.CompareAndSetFinalized(s.ctx, f.ID(), models.LifecycleDraft, f.ToState()), sentinel.ErrStateMismatch)
	})

	s.Run("unknown record", func() {
		f, err := s.draft(today).Finalize(s.profile, captureAt)
		s.Require().NoError(err)
		s.ErrorIs(s.store.CompareAndSetFinalized(s.ctx, f.ID(), models.LifecycleDraft, f.ToState()), sentinel.ErrNotFound)
	})

	s.Run("concurrent finalizers have exactly one winner", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		const workers = 8
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				f, err := r.Finalize(s.profile, captureAt.Add(time.Duration(i)*time.Second))
				if err != nil {
					return
				}
				if s.store.CompareAndSetFinalized(s.ctx, r.ID(), models.LifecycleDraft, f.ToState()) == nil {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
	})
}

func (s *ContractSuite) TestAppendRevision() {
	s.Run("drafts have no ledger", func() {
		r := s.draft(today)
		s.Require().NoError(s.store.Put(s.ctx, r.ToState()))
		f, err := r.Finalize(s.profile, captureAt)
		s.Require().NoError(err)
		_, _, rev := s.revise(f, models.NewLedger(f.ID(), nil), 2)
		s.ErrorIs(s.store.AppendRevision(s.ctx, rev), sentinel.ErrInvalidState)
	})

	s.Run("unknown record", func() {
		f, err := s.draft(today).Finalize(s.profile, captureAt)
		s.Require().NoError(err)
		_, _, rev := s.revise(f, models.NewLedger(f.ID(), nil), 2)
		s.ErrorIs(s.store.AppendRevision(s.ctx, rev), sentinel.ErrNotFound)
	})

	s.Run("sequences are contiguous and unique", func() {
		f := s.finalized(today)
		led := models.NewLedger(f.ID(), nil)
		f, led, first := s.revise(f, led, 2)
		s.Require().NoError(s.store.AppendRevision(s.ctx, first))
		s.ErrorIs(s.store.AppendRevision(s.ctx, first), sentinel.ErrConflict)

		skipped := first
		skipped.ID = domain.NewRevisionID()
		skipped.Sequence = 3
		s.ErrorIs(s.store.AppendRevision(s.ctx, skipped), sentinel.ErrConflict)

		f, _, second := s.revise(f, led, 4)
		s.Require().NoError(s.store.AppendRevision(s.ctx, second))

		revs, err := s.store.ListRevisions(s.ctx, f.ID())
		s.Require().NoError(err)
		s.Require().Len(revs, 2)
		s.Equal(first.ID, revs[0].ID)
		s.Equal(second.ID, revs[1].ID)
		s.True(revs[0].OriginalValue.Equal(models.Int(6)))
		s.True(revs[1].UpdatedValue.Equal(models.Int(4)))
		s.Equal(models.SymptomSeverityPath("pain"), revs[1].FieldPath)

		got, err := s.store.Get(s.ctx, s.profile, f.ID())
		s.Require().NoError(err)
		s.assertSameRecord(f, got)

		rec, err := models.Rehydrate(got)
		s.Require().NoError(err)
		s.Require().NoError(models.NewLedger(f.ID(), revs).Verify(rec))
	})

	s.Run("concurrent appenders never share a sequence", func() {
		f := s.finalized(today)
		const workers = 8
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, _, rev, err := models.AppendRevision(f, models.NewLedger(f.ID(), nil), models.RevisionRequest{
					Path:     models.OverallSeverityPath(),
					NewValue: models.Int(i),
					Category: models.ReasonCorrection,
				}, domain.NewRevisionID(), captureAt.Add(2*time.Hour))
				if err != nil {
					return
				}
				if s.store.AppendRevision(s.ctx, rev) == nil {
					wins.Add(1)
				}
			}(i)
		}
		wg.Wait()
		s.Equal(int32(1), wins.Load())
		revs, err := s.store.ListRevisions(s.ctx, f.ID())
		s.Require().NoError(err)
		s.Len(revs, 1)
	})

	s.Run("listing an unknown record", func() {
		_, err := s.store.ListRevisions(s.ctx, domain.NewRecordID())
		s.ErrorIs(err, sentinel.ErrNotFound)
	})
}

func (s *ContractSuite) TestSnapshot() {
	late := s.finalized(civil.Date{Year: 2026, Month: 2, Day: 3})
	early := s.draft(civil.Date{Year: 2026, Month: 2, Day: 1})
	s.Require().NoError(s.store.Put(s.ctx, early.ToState()))
	late, _, rev := s.revise(late, models.NewLedger(late.ID(), nil), 1)
	s.Require().NoError(s.store.AppendRevision(s.ctx, rev))

	other := s.draftFor(domain.NewProfileID(), today)
	s.Require().NoError(s.store.Put(s.ctx, other.ToState()))

	snap, err := s.store.Snapshot(s.ctx, s.profile)
	s.Require().NoError(err)
	s.Require().Len(snap.Records, 2)
	s.Equal(early.ID(), snap.Records[0].ID)
	s.Equal(late.ID(), snap.Records[1].ID)
	s.Equal([]domain.RevisionID{rev.ID}, snap.Records[1].RevisionIDs)
	s.Require().Len(snap.Revisions[late.ID()], 1)
	s.Empty(snap.Revisions[early.ID()])

	listed, err := s.store.ListByProfile(s.ctx, s.profile)
	s.Require().NoError(err)
	s.Equal(snap.Records, listed)
}

func (s *ContractSuite) TestPacks() {
	f := s.finalized(civil.Date{Year: 2026, Month: 2, Day: 3})
	view, err := models.NewView(f, models.NewLedger(f.ID(), nil))
	s.Require().NoError(err)
	p, err := pack.Build(pack.BuildParams{
		ID:        domain.NewPackID(),
		ProfileID: s.profile,
		Criteria: pack.Criteria{Range: domain.DateRange{
			Start: civil.Date{Year: 2026, Month: 2, Day: 1},
			End:   civil.Date{Year: 2026, Month: 2, Day: 5},
		}},
		Views: []models.RecordView{view},
		Now:   captureAt.Add(3 * time.Hour),
	})
	s.Require().NoError(err)

	s.Require().NoError(s.store.CreatePack(s.ctx, p))
	s.ErrorIs(s.store.CreatePack(s.ctx, p), sentinel.ErrConflict)

	got, err := s.store.GetPack(s.ctx, s.profile, p.ID())
	s.Require().NoError(err)
	s.Equal(p.ToState(), got.ToState())

	_, err = s.store.GetPack(s.ctx, domain.NewProfileID(), p.ID())
	s.ErrorIs(err, sentinel.ErrNotFound)

	listed, err := s.store.ListPacks(s.ctx, s.profile)
	s.Require().NoError(err)
	s.Require().Len(listed, 1)
	s.Equal(p.ID(), listed[0].ID())
}

func (s *ContractSuite) TestEvidenceTracking() {
	_, err := s.store.EvidenceTracking(s.ctx, s.profile)
	s.ErrorIs(err, sentinel.ErrNotFound)

	s.Require().NoError(s.store.SetEvidenceTracking(s.ctx, s.profile, true))
	on, err := s.store.EvidenceTracking(s.ctx, s.profile)
	s.Require().NoError(err)
	s.True(on)

	s.Require().NoError(s.store.SetEvidenceTracking(s.ctx, s.profile, false))
	on, err = s.store.EvidenceTracking(s.ctx, s.profile)
	s.Require().NoError(err)
	s.False(on)
}

func (s *ContractSuite) TestExplanations() {
	mk := func(start, end civil.Date) gaps.Explanation {
		e, err := gaps.NewExplanation(domain.NewExplanationID(), s.profile, start, end, "hospital stay", "", captureAt)
		s.Require().NoError(err)
		return e
	}
	later := mk(civil.Date{Year: 2026, Month: 1, Day: 20}, civil.Date{Year: 2026, Month: 1, Day: 25})
	earlier := mk(civil.Date{Year: 2026, Month: 1, Day: 2}, civil.Date{Year: 2026, Month: 1, Day: 6})
	s.Require().NoError(s.store.CreateExplanation(s.ctx, later))
	s.Require().NoError(s.store.CreateExplanation(s.ctx, earlier))
	s.ErrorIs(s.store.CreateExplanation(s.ctx, earlier), sentinel.ErrConflict)

	got, err := s.store.ListExplanations(s.ctx, s.profile)
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal(earlier.ID, got[0].ID)
	s.Equal(earlier.StartDate, got[0].StartDate)
	s.Equal(earlier.EndDate, got[0].EndDate)
	s.Equal("hospital stay", got[0].Reason)
	s.True(earlier.CreatedAt.Equal(got[0].CreatedAt))
	s.Equal(later.ID, got[1].ID)

	none, err := s.store.ListExplanations(s.ctx, domain.NewProfileID())
	s.Require().NoError(err)
	s.Empty(none)
}
