package stats

import (
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
)

var capture = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func day(d int) civil.Date { return civil.Date{Year: 2026, Month: 2, Day: d} }

func intPtr(n int) *int { return &n }

type fixture struct {
	t       *testing.T
	profile domain.ProfileID
}

func newFixture(t *testing.T) *fixture {
	return &fixture{t: t, profile: domain.NewProfileID()}
}

func (f *fixture) view(date civil.Date, p models.Payload) models.RecordView {
	f.t.Helper()
	r, err := models.NewRecord(models.NewRecordParams{
		ID:          domain.NewRecordID(),
		ProfileID:   f.profile,
		LogicalDate: date,
		Payload:     p,
		CapturedAt:  capture,
		Tracking:    true,
	})
	require.NoError(f.t, err)
	v, err := models.NewView(r, models.NewLedger(r.ID(), nil))
	require.NoError(f.t, err)
	return v
}

func (f *fixture) symptomLog(date civil.Date, name string, severity int) models.RecordView {
	return f.view(date, models.Payload{
		RecordType: models.RecordTypeDailyLog,
		Symptoms:   []models.SymptomEntry{{Name: name, Severity: severity}},
	})
}

func ids(views ...models.RecordView) []domain.RecordID {
	out := make([]domain.RecordID, len(views))
	for i, v := range views {
		out[i] = v.Record().ID()
	}
	return out
}

func TestRounding(t *testing.T) {
	avg, ok := averageRounded([]int{4, 5})
	require.True(t, ok)
	assert.EqualValues(t, 5, avg, ".5 rounds up")

	avg, _ = averageRounded([]int{4, 4, 5})
	assert.EqualValues(t, 4, avg)

	pct, ok := percentTenths(3, 7)
	require.True(t, ok)
	assert.EqualValues(t, 429, pct, "3/7 is 42.857…%")

	pct, _ = percentTenths(1, 8)
	assert.EqualValues(t, 125, pct, "12.5% is exact")

	pct, _ = percentTenths(1, 16)
	assert.EqualValues(t, 63, pct, "6.25% rounds half away from zero")

	assert.EqualValues(t, -3, roundDiv(-5, 2))
	assert.EqualValues(t, 3, roundDiv(5, 2))

	_, ok = averageRounded(nil)
	assert.False(t, ok)
	_, ok = percentTenths(0, 0)
	assert.False(t, ok)
}

func TestSymptomStatistics(t *testing.T) {
	f := newFixture(t)
	a := f.symptomLog(day(1), "fatigue", 5)
	b := f.symptomLog(day(2), "fatigue", 0)
	c := f.symptomLog(day(3), "Fatigue", 7)
	d := f.view(day(4), models.Payload{RecordType: models.RecordTypeActivityLog})
	views := []models.RecordView{a, b, c, d}

	t.Run("days with symptom exclude zero severity", func(t *testing.T) {
		got := DaysWithSymptom(views, "fatigue")
		require.True(t, got.Defined())
		assert.Equal(t, 2.0, *got.Value)
		assert.ElementsMatch(t, ids(a, c), got.SourceRecordIDs)
	})

	t.Run("average includes zero severity but not absent symptom", func(t *testing.T) {
		got := AverageSymptomSeverity(views, "fatigue")
		assert.Equal(t, 4.0, *got.Value)
		assert.ElementsMatch(t, ids(a, b, c), got.SourceRecordIDs)
		assert.Equal(t, UnitSeverity, got.Unit)
		assert.NotEmpty(t, got.Method)
	})

	t.Run("percentage over documented days", func(t *testing.T) {
		got := SymptomDayPercentage(views, "fatigue")
		assert.Equal(t, 50.0, *got.Value)
	})

	t.Run("same logical date counted once", func(t *testing.T) {
		dup := f.symptomLog(day(1), "fatigue", 3)
		got := DaysWithSymptom(append(views, dup), "fatigue")
		assert.Equal(t, 2.0, *got.Value)
		assert.Len(t, got.SourceRecordIDs, 3, "every contributing record is traceable")
	})

	t.Run("input order does not matter", func(t *testing.T) {
		forward := AverageSymptomSeverity(views, "fatigue")
		backward := AverageSymptomSeverity([]models.RecordView{d, c, b, a}, "fatigue")
		assert.Equal(t, forward, backward)
	})
}

func TestEmptyInput(t *testing.T) {
	for _, r := range []Result{
		AverageSymptomSeverity(nil, "fatigue"),
		SymptomDayPercentage(nil, "fatigue"),
		AverageOverallSeverity(nil),
		AverageActivityImpact(nil, "walking"),
		AverageDaysDelayed(nil),
		CoveragePercentage(nil, domain.DateRange{}),
	} {
		assert.False(t, r.Defined(), r.Key)
		assert.NotNil(t, r.SourceRecordIDs, r.Key)
		assert.Empty(t, r.SourceRecordIDs, r.Key)
	}
	for _, r := range []Result{
		DaysWithSymptom(nil, "fatigue"),
		DaysWithActivity(nil, "walking"),
		DocumentedDays(nil),
		BackdatedRecordCount(nil),
		RevisedRecordCount(nil),
		FinalizedRecordCount(nil),
	} {
		require.True(t, r.Defined(), r.Key)
		assert.Zero(t, *r.Value, r.Key)
		assert.Empty(t, r.SourceRecordIDs, r.Key)
	}
	assert.NotEmpty(t, Summarize(nil, domain.DateRange{}))
}

func TestTimelineStatistics(t *testing.T) {
	f := newFixture(t)
	views := []models.RecordView{
		f.symptomLog(day(1), "pain", 2),
		f.symptomLog(day(2), "pain", 2),
		f.symptomLog(day(5), "pain", 2),
		f.symptomLog(day(27), "pain", 2),
	}

	t.Run("coverage over inclusive window", func(t *testing.T) {
		got := CoveragePercentage(views, domain.DateRange{Start: day(1), End: day(7)})
		assert.Equal(t, 42.9, *got.Value)
		assert.Len(t, got.SourceRecordIDs, 3, "record outside window excluded")
	})

	t.Run("backdated counts from creation facts", func(t *testing.T) {
		got := BackdatedRecordCount(views)
		assert.Equal(t, 4.0, *got.Value, "captured on 2026-03-01")

		avg := AverageDaysDelayed(views)
		// 28, 27, 24, 2 days late
		assert.Equal(t, 20.0, *avg.Value)
	})
}

func TestActivityAndOverallStatistics(t *testing.T) {
	f := newFixture(t)
	walk := func(date civil.Date, minutes, impact int) models.RecordView {
		return f.view(date, models.Payload{
			RecordType:      models.RecordTypeActivityLog,
			OverallSeverity: intPtr(impact),
			Activities:      []models.ActivityEntry{{Name: "walking", DurationMinutes: minutes, Impact: impact}},
		})
	}
	views := []models.RecordView{walk(day(1), 30, 3), walk(day(2), 0, 6), walk(day(3), 15, 6)}

	assert.Equal(t, 3.0, *DaysWithActivity(views, "walking").Value)
	assert.Equal(t, 5.0, *AverageActivityImpact(views, "walking").Value)
	assert.Equal(t, 5.0, *AverageOverallSeverity(views).Value)
	assert.Equal(t, 0.0, *FinalizedRecordCount(views).Value)

	t.Run("days with activity follow impact, not duration", func(t *testing.T) {
		long := walk(day(4), 30, 0)
		short := walk(day(5), 0, 6)

		got := DaysWithActivity([]models.RecordView{long, short}, "walking")
		assert.Equal(t, 1.0, *got.Value)
		assert.Equal(t, []domain.RecordID{short.Record().ID()}, got.SourceRecordIDs)
		assert.Equal(t, "distinct logical dates with impact > 0", got.Method)
	})
}

func TestStatisticsReadEffectivePayload(t *testing.T) {
	f := newFixture(t)
	base := f.symptomLog(day(1), "pain", 8)
	r, err := base.Record().Finalize(f.profile, capture)
	require.NoError(t, err)
	r, led, _, err := models.AppendRevision(r, models.NewLedger(r.ID(), nil), models.RevisionRequest{
		Path:     models.SymptomSeverityPath("pain"),
		NewValue: models.Int(0),
		Category: models.ReasonCorrection,
	}, domain.NewRevisionID(), capture.Add(time.Hour))
	require.NoError(t, err)
	view, err := models.NewView(r, led)
	require.NoError(t, err)

	views := []models.RecordView{view}
	assert.Equal(t, 0.0, *DaysWithSymptom(views, "pain").Value)
	assert.Equal(t, 1.0, *RevisedRecordCount(views).Value)
	assert.Equal(t, 1.0, *FinalizedRecordCount(views).Value)
}

func TestSummarizeOrder(t *testing.T) {
	f := newFixture(t)
	views := []models.RecordView{
		f.view(day(1), models.Payload{
			RecordType: models.RecordTypeDailyLog,
			Symptoms:   []models.SymptomEntry{{Name: "nausea", Severity: 1}, {Name: "fatigue", Severity: 2}},
			Activities: []models.ActivityEntry{{Name: "walking", DurationMinutes: 10, Impact: 1}},
		}),
	}
	got := Summarize(views, domain.DateRange{})
	keys := make([]string, len(got))
	for i, r := range got {
		keys[i] = r.Key
	}
	assert.Equal(t, []string{
		"timeline.documented_days",
		"timeline.coverage_percentage",
		"overall.average_severity",
		"integrity.finalized_records",
		"integrity.revised_records",
		"integrity.backdated_records",
		"integrity.average_days_delayed",
		"symptom.fatigue.average_severity",
		"symptom.fatigue.days",
		"symptom.fatigue.day_percentage",
		"symptom.nausea.average_severity",
		"symptom.nausea.days",
		"symptom.nausea.day_percentage",
		"activity.walking.days",
		"activity.walking.average_impact",
	}, keys)
	assert.Equal(t, 100.0, *got[1].Value, "window defaults to the record span")
}
