package models

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

var (
	testCapture = time.Date(2026, 2, 5, 10, 15, 0, 0, time.UTC)
	testToday   = civil.Date{Year: 2026, Month: 2, Day: 5}
)

func intPtr(n int) *int { return &n }

func dailyPayload() Payload {
	return Payload{
		RecordType:      RecordTypeDailyLog,
		Notes:           "bad morning",
		OverallSeverity: intPtr(6),
		Symptoms: []SymptomEntry{
			{Name: "Fatigue", Severity: 7},
			{Name: "headache", Severity: 0},
		},
		Activities: []ActivityEntry{{Name: "walking", DurationMinutes: 20, Impact: 4}},
	}
}

func newTestRecord(t testing.TB, logical civil.Date, tracking bool, retro RetroInput) EvidenceRecord {
	t.Helper()
	r, err := NewRecord(NewRecordParams{
		ID:          domain.NewRecordID(),
		ProfileID:   domain.NewProfileID(),
		LogicalDate: logical,
		Payload:     dailyPayload(),
		CapturedAt:  testCapture,
		Tracking:    tracking,
		Retro:       retro,
	})
	if err != nil {
		t.Fatalf("new record: %v", err)
	}
	return r
}

type RecordSuite struct {
	suite.Suite
}

func TestRecordSuite(t *testing.T) {
	suite.Run(t, new(RecordSuite))
}

func (s *RecordSuite) TestNewRecord() {
	s.Run("same-day record with tracking active", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		s.Equal(LifecycleDraft, r.Lifecycle())
		s.Require().NotNil(r.EvidenceTimestamp())
		s.True(r.EvidenceTimestamp().Equal(testCapture))
		s.True(r.CreatedAt().Equal(testCapture))
		s.Nil(r.RetrospectiveContext())
		s.Zero(r.DaysDelayed())
		s.NotEmpty(r.Seal())
	})

	s.Run("tracking inactive leaves evidence timestamp absent", func() {
		r := newTestRecord(s.T(), testToday, false, RetroInput{})
		s.Nil(r.EvidenceTimestamp())
		s.True(r.CreatedAt().Equal(testCapture))
	})

	s.Run("backdated record carries retrospective context", func() {
		r := newTestRecord(s.T(), civil.Date{Year: 2026, Month: 2, Day: 1}, true,
			RetroInput{Reason: RetroReasonTooUnwell, Note: "hospital"})
		ctx := r.RetrospectiveContext()
		s.Require().NotNil(ctx)
		s.Equal(4, ctx.DaysDelayed)
		s.True(ctx.FlaggedAt.Equal(testCapture))
		s.Equal(RetroReasonTooUnwell, ctx.Reason)
		s.Equal("hospital", ctx.Note)
		s.Equal(4, r.DaysDelayed())
	})

	s.Run("backdated without reason still flagged", func() {
		r := newTestRecord(s.T(), civil.Date{Year: 2026, Month: 2, Day: 4}, false, RetroInput{})
		s.Require().NotNil(r.RetrospectiveContext())
		s.Equal(1, r.RetrospectiveContext().DaysDelayed)
		s.Empty(r.RetrospectiveContext().Reason)
	})

	s.Run("future logical date rejected", func() {
		_, err := NewRecord(NewRecordParams{
			ID:          domain.NewRecordID(),
			ProfileID:   domain.NewProfileID(),
			LogicalDate: civil.Date{Year: 2026, Month: 2, Day: 6},
			Payload:     dailyPayload(),
			CapturedAt:  testCapture,
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidLogicalDate))
	})

	s.Run("retrospective reason on same-day record rejected", func() {
		_, err := NewRecord(NewRecordParams{
			ID:          domain.NewRecordID(),
			ProfileID:   domain.NewProfileID(),
			LogicalDate: testToday,
			Payload:     dailyPayload(),
			CapturedAt:  testCapture,
			Retro:       RetroInput{Reason: RetroReasonForgot},
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("missing capture instant is an invariant violation", func() {
		_, err := NewRecord(NewRecordParams{
			ID:          domain.NewRecordID(),
			ProfileID:   domain.NewProfileID(),
			LogicalDate: testToday,
			Payload:     dailyPayload(),
		})
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	s.Run("invalid payload rejected", func() {
		p := dailyPayload()
		p.Symptoms = append(p.Symptoms, SymptomEntry{Name: "FATIGUE", Severity: 2})
		_, err := NewRecord(NewRecordParams{
			ID:          domain.NewRecordID(),
			ProfileID:   domain.NewProfileID(),
			LogicalDate: testToday,
			Payload:     p,
			CapturedAt:  testCapture,
		})
		s.Require().Error(err)
		s.Contains(err.Error(), "duplicate symptom")
	})

	s.Run("capture instant truncated to storage precision", func() {
		r, err := NewRecord(NewRecordParams{
			ID:          domain.NewRecordID(),
			ProfileID:   domain.NewProfileID(),
			LogicalDate: testToday,
			Payload:     dailyPayload(),
			CapturedAt:  testCapture.Add(1234 * time.Nanosecond),
			Tracking:    true,
		})
		s.Require().NoError(err)
		s.Equal(testCapture.Add(time.Microsecond), r.CreatedAt())
	})
}

func (s *RecordSuite) TestDraftEditing() {
	s.Run("update field while draft", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		updated, err := r.UpdateField(SymptomSeverityPath("Fatigue"), Int(3))
		s.Require().NoError(err)
		s.Equal(Int(3), updated.Payload().Value(SymptomSeverityPath("fatigue")))
		s.Equal(Int(7), r.Payload().Value(SymptomSeverityPath("fatigue")), "original value untouched")
		s.Equal(r.EvidenceTimestamp(), updated.EvidenceTimestamp())
		s.Equal(r.Seal(), updated.Seal())
	})

	s.Run("retrospective path not writable in draft", func() {
		r := newTestRecord(s.T(), civil.Date{Year: 2026, Month: 2, Day: 1}, true, RetroInput{})
		_, err := r.UpdateField(RetroReasonPath(), Text(string(RetroReasonForgot)))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("out of range value rejected", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		_, err := r.UpdateField(OverallSeverityPath(), Int(11))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("replace payload while draft", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		updated, err := r.ReplacePayload(Payload{RecordType: RecordTypeActivityLog})
		s.Require().NoError(err)
		s.Equal(RecordTypeActivityLog, updated.RecordType())
		s.Empty(updated.Payload().Symptoms)
	})

	s.Run("draft can be deleted", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		s.NoError(r.CanDelete())
	})
}

func (s *RecordSuite) TestFinalize() {
	actor := domain.NewProfileID()
	at := testCapture.Add(time.Hour)

	s.Run("draft becomes finalized", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		f, err := r.Finalize(actor, at)
		s.Require().NoError(err)
		s.True(f.IsFinalized())
		s.Equal(LifecycleFinalized, f.Lifecycle())
		s.Equal(at, *f.FinalizedAt())
		s.Equal(actor, *f.FinalizedBy())
		s.False(r.IsFinalized(), "receiver untouched")
	})

	s.Run("second finalize rejected and finalizedAt preserved", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		f, err := r.Finalize(actor, at)
		s.Require().NoError(err)

		_, err = f.Finalize(actor, at.Add(time.Hour))
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeAlreadyFinalized))
		s.Equal(at, *f.FinalizedAt())
	})

	s.Run("finalized record blocks direct edits and deletion", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		f, err := r.Finalize(actor, at)
		s.Require().NoError(err)

		_, err = f.UpdateField(NotesPath(), Text("changed"))
		s.True(dErrors.HasCode(err, dErrors.CodeEditBlocked))

		_, err = f.UpdateField(RetroNotePath(), Text("changed"))
		s.True(dErrors.HasCode(err, dErrors.CodeEditBlocked), "lifecycle check precedes path check")

		_, err = f.ReplacePayload(dailyPayload())
		s.True(dErrors.HasCode(err, dErrors.CodeEditBlocked))

		s.True(dErrors.HasCode(f.CanDelete(), dErrors.CodeDeleteBlocked))
	})

	s.Run("nil actor rejected", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		_, err := r.Finalize(domain.ProfileID{}, at)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}

func (s *RecordSuite) TestRehydrate() {
	backdated := func() EvidenceRecord {
		r := newTestRecord(s.T(), civil.Date{Year: 2026, Month: 2, Day: 1}, true, RetroInput{Reason: RetroReasonForgot})
		f, err := r.Finalize(r.ProfileID(), testCapture.Add(time.Minute))
		s.Require().NoError(err)
		return f
	}

	s.Run("round trip preserves the record", func() {
		r := backdated()
		got, err := Rehydrate(r.ToState())
		s.Require().NoError(err)
		s.Equal(r.ToState(), got.ToState())
	})

	s.Run("altered evidence timestamp detected", func() {
		st := backdated().ToState()
		moved := st.EvidenceTimestamp.Add(-48 * time.Hour)
		st.EvidenceTimestamp = &moved
		_, err := Rehydrate(st)
		s.Require().Error(err)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("removed retrospective context detected", func() {
		st := backdated().ToState()
		st.Retrospective = nil
		_, err := Rehydrate(st)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("rewritten days delayed detected", func() {
		st := backdated().ToState()
		st.Retrospective.DaysDelayed = 1
		_, err := Rehydrate(st)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("rewritten creation reason detected", func() {
		st := backdated().ToState()
		st.Retrospective.Reason = RetroReasonTooUnwell
		_, err := Rehydrate(st)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("finalized flag without finalizedAt detected", func() {
		st := backdated().ToState()
		st.FinalizedAt = nil
		_, err := Rehydrate(st)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("draft carrying revisions detected", func() {
		st := newTestRecord(s.T(), testToday, true, RetroInput{}).ToState()
		st.RevisionIDs = []domain.RevisionID{domain.NewRevisionID()}
		_, err := Rehydrate(st)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("payload edits in draft do not disturb seal", func() {
		r := newTestRecord(s.T(), testToday, true, RetroInput{})
		r, err := r.UpdateField(NotesPath(), Text("rewritten"))
		s.Require().NoError(err)
		_, err = Rehydrate(r.ToState())
		s.NoError(err)
	})
}
