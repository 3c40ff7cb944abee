package pack

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

var buildTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func day(d int) civil.Date { return civil.Date{Year: 2026, Month: 2, Day: d} }

type PackSuite struct {
	suite.Suite
	profile domain.ProfileID
	views   []models.RecordView
}

func TestPackSuite(t *testing.T) {
	suite.Run(t, new(PackSuite))
}

func (s *PackSuite) SetupTest() {
	s.profile = domain.NewProfileID()
	s.views = []models.RecordView{
		s.view(day(10), models.RecordTypeDailyLog, 6),
		s.view(day(2), models.RecordTypeDailyLog, 4),
		s.view(day(5), models.RecordTypeActivityLog, 2),
		s.view(day(25), models.RecordTypeDailyLog, 9),
	}
}

func (s *PackSuite) view(date civil.Date, rt models.RecordType, severity int) models.RecordView {
	r, err := models.NewRecord(models.NewRecordParams{
		ID:          domain.NewRecordID(),
		ProfileID:   s.profile,
		LogicalDate: date,
		Payload: models.Payload{
			RecordType: rt,
			Symptoms:   []models.SymptomEntry{{Name: "pain", Severity: severity}},
		},
		CapturedAt: buildTime,
		Tracking:   true,
	})
	s.Require().NoError(err)
	v, err := models.NewView(r, models.NewLedger(r.ID(), nil))
	s.Require().NoError(err)
	return v
}

func (s *PackSuite) build(c Criteria) Pack {
	p, err := Build(BuildParams{
		ID:        domain.NewPackID(),
		ProfileID: s.profile,
		Criteria:  c,
		Views:     s.views,
		Now:       buildTime,
	})
	s.Require().NoError(err)
	return p
}

func (s *PackSuite) TestBuild() {
	s.Run("selects by date range and record type", func() {
		p := s.build(Criteria{
			Range:       domain.DateRange{Start: day(1), End: day(14)},
			RecordTypes: []models.RecordType{models.RecordTypeDailyLog},
		})
		s.Equal([]domain.RecordID{s.views[1].Record().ID(), s.views[0].Record().ID()}, p.RecordIDs())
		s.Equal(s.profile, p.ProfileID())
		s.Equal(buildTime, p.CreatedAt())
		s.NotEmpty(p.Statistics())
		s.Empty(p.IntegrityFailures())
	})

	s.Run("empty type set selects every type", func() {
		p := s.build(Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}})
		s.Len(p.RecordIDs(), 4)
	})

	s.Run("statistics cover only selected records", func() {
		p := s.build(Criteria{Range: domain.DateRange{Start: day(1), End: day(7)}})
		documented := p.Statistics()[0]
		s.Equal("timeline.documented_days", documented.Key)
		s.Equal(2.0, *documented.Value)
		s.ElementsMatch(p.RecordIDs(), documented.SourceRecordIDs)
	})

	s.Run("identical criteria yield a distinct pack", func() {
		c := Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}}
		a, b := s.build(c), s.build(c)
		s.NotEqual(a.ID(), b.ID())
		s.Equal(a.RecordIDs(), b.RecordIDs())
	})

	s.Run("integrity failures listed explicitly", func() {
		failed := domain.NewRecordID()
		p, err := Build(BuildParams{
			ID:        domain.NewPackID(),
			ProfileID: s.profile,
			Criteria:  Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}},
			Views:     s.views,
			Failures:  []IntegrityFailure{{RecordID: failed, Reason: "seal mismatch"}},
			Now:       buildTime,
		})
		s.Require().NoError(err)
		s.Equal([]IntegrityFailure{{RecordID: failed, Reason: "seal mismatch"}}, p.IntegrityFailures())
		s.NotContains(p.RecordIDs(), failed)
	})

	s.Run("integrity failures outside the range are not listed", func() {
		inside := IntegrityFailure{RecordID: domain.NewRecordID(), LogicalDate: day(5), Reason: "seal mismatch"}
		outside := IntegrityFailure{RecordID: domain.NewRecordID(), LogicalDate: day(20), Reason: "seal mismatch"}
		undated := IntegrityFailure{RecordID: domain.NewRecordID(), Reason: "unreadable logical date"}
		p, err := Build(BuildParams{
			ID:        domain.NewPackID(),
			ProfileID: s.profile,
			Criteria:  Criteria{Range: domain.DateRange{Start: day(1), End: day(10)}},
			Views:     s.views,
			Failures:  []IntegrityFailure{inside, outside, undated},
			Now:       buildTime,
		})
		s.Require().NoError(err)
		s.Equal([]IntegrityFailure{inside, undated}, p.IntegrityFailures())
	})
}

func (s *PackSuite) TestBuildRejections() {
	s.Run("inverted range", func() {
		_, err := Build(BuildParams{
			ID: domain.NewPackID(), ProfileID: s.profile, Now: buildTime,
			Criteria: Criteria{Range: domain.DateRange{Start: day(9), End: day(1)}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown record type", func() {
		_, err := Build(BuildParams{
			ID: domain.NewPackID(), ProfileID: s.profile, Now: buildTime,
			Criteria: Criteria{
				Range:       domain.DateRange{Start: day(1), End: day(9)},
				RecordTypes: []models.RecordType{"sleep_log"},
			},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("record from another profile", func() {
		other := domain.NewProfileID()
		_, err := Build(BuildParams{
			ID: domain.NewPackID(), ProfileID: other, Now: buildTime, Views: s.views,
			Criteria: Criteria{Range: domain.DateRange{Start: day(1), End: day(9)}},
		})
		s.True(dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func (s *PackSuite) TestImmutability() {
	p := s.build(Criteria{
		Range:       domain.DateRange{Start: day(1), End: day(28)},
		RecordTypes: []models.RecordType{models.RecordTypeDailyLog, " daily_log "},
	})
	before := p.ToState()

	ids := p.RecordIDs()
	ids[0] = domain.NewRecordID()
	crit := p.Criteria()
	crit.RecordTypes[0] = models.RecordTypeActivityLog
	statistics := p.Statistics()
	*statistics[0].Value = 999
	statistics[0].SourceRecordIDs[0] = domain.NewRecordID()

	s.Equal(before, p.ToState())
	s.Equal([]models.RecordType{models.RecordTypeDailyLog}, p.Criteria().RecordTypes, "types normalized at build")
}

func (s *PackSuite) TestJSONRoundTrip() {
	p := s.build(Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}})

	raw, err := json.Marshal(p)
	s.Require().NoError(err)
	s.Contains(string(raw), `"integrity_failures":[]`)
	s.NotContains(string(raw), `"record_types"`, "absent type filter stays absent")

	var back Pack
	s.Require().NoError(json.Unmarshal(raw, &back))
	s.Equal(p.ToState(), back.ToState())
}

func (s *PackSuite) TestSigner() {
	signer, err := NewSigner(strings.Repeat("k", 32), "evidentia")
	s.Require().NoError(err)
	p := s.build(Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}})

	token, err := signer.Sign(p, buildTime)
	s.Require().NoError(err)

	s.Run("verifies its own pack", func() {
		claims, err := signer.Verify(token, p)
		s.Require().NoError(err)
		s.Equal(p.ID().String(), claims.ID)
		s.Equal(4, claims.RecordCount)
	})

	s.Run("rejects a different pack", func() {
		other := s.build(Criteria{Range: domain.DateRange{Start: day(1), End: day(28)}})
		_, err := signer.Verify(token, other)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("rejects a tampered pack", func() {
		st := p.ToState()
		st.RecordIDs = st.RecordIDs[1:]
		tampered, err := Restore(st)
		s.Require().NoError(err)
		_, err = signer.Verify(token, tampered)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("rejects another key", func() {
		otherSigner, err := NewSigner(strings.Repeat("x", 32), "evidentia")
		s.Require().NoError(err)
		_, err = otherSigner.Verify(token, p)
		s.True(dErrors.HasCode(err, dErrors.CodeIntegrityViolation))
	})

	s.Run("short key refused", func() {
		_, err := NewSigner("short", "evidentia")
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
