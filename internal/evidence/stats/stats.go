// Package stats computes aggregate metrics over a profile's records.
//
// Every function is pure: the same record set yields the same result, with no
// dependence on call time or input order. Each Result lists the exact records
// that contributed to it. Values are read from the effective payload, after
// revisions. Empty input yields an explicit undefined or zero result.
package stats

import (
	"bytes"
	"slices"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
	pstrings "evidentia/pkg/platform/strings"
)

// Unit names what a Result's value measures.
type Unit string

const (
	UnitSeverity Unit = "severity_0_10"
	UnitImpact   Unit = "impact_0_10"
	UnitDays     Unit = "days"
	UnitPercent  Unit = "percent"
	UnitRecords  Unit = "records"
)

// Result is one statistic. Value is nil when the statistic is undefined for
// the input, e.g. an average over no values.
type Result struct {
	Key             string            `json:"key"`
	Value           *float64          `json:"value"`
	Unit            Unit              `json:"unit"`
	SourceRecordIDs []domain.RecordID `json:"source_record_ids"`
	Method          string            `json:"method"`
}

// Defined reports whether the statistic has a value.
func (r Result) Defined() bool { return r.Value != nil }

// Clone returns a deep copy.
func (r Result) Clone() Result {
	out := r
	if r.Value != nil {
		v := *r.Value
		out.Value = &v
	}
	out.SourceRecordIDs = slices.Clone(r.SourceRecordIDs)
	if out.SourceRecordIDs == nil {
		out.SourceRecordIDs = []domain.RecordID{}
	}
	return out
}

type sample struct {
	id      domain.RecordID
	date    civil.Date
	payload models.Payload
	record  models.EvidenceRecord
	revised bool
}

func samplesOf(views []models.RecordView) []sample {
	out := make([]sample, len(views))
	for i, v := range views {
		out[i] = sample{
			id:      v.Record().ID(),
			date:    v.Record().LogicalDate(),
			payload: v.EffectivePayload(),
			record:  v.Record(),
			revised: v.IsRevised(),
		}
	}
	return out
}

func result(key string, unit Unit, method string, value *float64, sources []domain.RecordID) Result {
	ids := slices.Clone(sources)
	slices.SortFunc(ids, func(a, b domain.RecordID) int { return bytes.Compare(a[:], b[:]) })
	ids = slices.Compact(ids)
	if ids == nil {
		ids = []domain.RecordID{}
	}
	return Result{Key: key, Value: value, Unit: unit, SourceRecordIDs: ids, Method: method}
}

func integer(n int64) *float64 {
	v := float64(n)
	return &v
}

func tenths(n int64) *float64 {
	v := float64(n) / 10
	return &v
}

func count(n int) *float64 { return integer(int64(n)) }

func distinctDays(dates []civil.Date) int {
	set := make(map[civil.Date]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return len(set)
}

// AverageSymptomSeverity is the mean severity of name over every record that
// lists the symptom, zero severities included.
func AverageSymptomSeverity(views []models.RecordView, name string) Result {
	var values []int
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if e, ok := s.payload.Symptom(name); ok {
			values = append(values, e.Severity)
			sources = append(sources, s.id)
		}
	}
	avg, ok := averageRounded(values)
	var v *float64
	if ok {
		v = integer(avg)
	}
	return result("symptom."+key(name)+".average_severity", UnitSeverity,
		"mean severity over records listing the symptom, rounded half away from zero", v, sources)
}

// DaysWithSymptom counts distinct logical dates on which the symptom was
// recorded with severity above zero.
func DaysWithSymptom(views []models.RecordView, name string) Result {
	dates, sources := symptomDays(samplesOf(views), name)
	return result("symptom."+key(name)+".days", UnitDays,
		"distinct logical dates with severity > 0", count(distinctDays(dates)), sources)
}

// SymptomDayPercentage is DaysWithSymptom over DocumentedDays.
func SymptomDayPercentage(views []models.RecordView, name string) Result {
	ss := samplesOf(views)
	dates, sources := symptomDays(ss, name)
	all := make([]civil.Date, len(ss))
	for i, s := range ss {
		all[i] = s.date
	}
	var v *float64
	if pct, ok := percentTenths(distinctDays(dates), distinctDays(all)); ok {
		v = tenths(pct)
	}
	return result("symptom."+key(name)+".day_percentage", UnitPercent,
		"days with severity > 0 / documented days × 100, one decimal", v, sources)
}

func symptomDays(ss []sample, name string) ([]civil.Date, []domain.RecordID) {
	var dates []civil.Date
	var sources []domain.RecordID
	for _, s := range ss {
		if e, ok := s.payload.Symptom(name); ok && e.Severity > 0 {
			dates = append(dates, s.date)
			sources = append(sources, s.id)
		}
	}
	return dates, sources
}

// AverageOverallSeverity is the mean overall severity over records that set it.
func AverageOverallSeverity(views []models.RecordView) Result {
	var values []int
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if s.payload.OverallSeverity != nil {
			values = append(values, *s.payload.OverallSeverity)
			sources = append(sources, s.id)
		}
	}
	var v *float64
	if avg, ok := averageRounded(values); ok {
		v = integer(avg)
	}
	return result("overall.average_severity", UnitSeverity,
		"mean overall severity over records that set it, rounded half away from zero", v, sources)
}

// DaysWithActivity counts distinct logical dates on which the activity was
// recorded with an impact above zero. Duration plays no part.
func DaysWithActivity(views []models.RecordView, name string) Result {
	var dates []civil.Date
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if e, ok := s.payload.Activity(name); ok && e.Impact > 0 {
			dates = append(dates, s.date)
			sources = append(sources, s.id)
		}
	}
	return result("activity."+key(name)+".days", UnitDays,
		"distinct logical dates with impact > 0", count(distinctDays(dates)), sources)
}

// AverageActivityImpact is the mean impact of the activity over records listing it.
func AverageActivityImpact(views []models.RecordView, name string) Result {
	var values []int
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if e, ok := s.payload.Activity(name); ok {
			values = append(values, e.Impact)
			sources = append(sources, s.id)
		}
	}
	var v *float64
	if avg, ok := averageRounded(values); ok {
		v = integer(avg)
	}
	return result("activity."+key(name)+".average_impact", UnitImpact,
		"mean impact over records listing the activity, rounded half away from zero", v, sources)
}

// DocumentedDays counts distinct logical dates with at least one record.
func DocumentedDays(views []models.RecordView) Result {
	ss := samplesOf(views)
	dates := make([]civil.Date, len(ss))
	sources := make([]domain.RecordID, len(ss))
	for i, s := range ss {
		dates[i], sources[i] = s.date, s.id
	}
	return result("timeline.documented_days", UnitDays,
		"distinct logical dates with at least one record", count(distinctDays(dates)), sources)
}

// CoveragePercentage is documented days inside window over the window's
// inclusive length. Records outside the window do not contribute.
func CoveragePercentage(views []models.RecordView, window domain.DateRange) Result {
	var dates []civil.Date
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if window.Contains(s.date) {
			dates = append(dates, s.date)
			sources = append(sources, s.id)
		}
	}
	var v *float64
	if window.Validate() == nil {
		if pct, ok := percentTenths(distinctDays(dates), window.Days()); ok {
			v = tenths(pct)
		}
	}
	return result("timeline.coverage_percentage", UnitPercent,
		"documented days in window / inclusive window length × 100, one decimal", v, sources)
}

// BackdatedRecordCount counts records captured after their logical date.
func BackdatedRecordCount(views []models.RecordView) Result {
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if s.record.DaysDelayed() > 0 {
			sources = append(sources, s.id)
		}
	}
	return result("integrity.backdated_records", UnitRecords,
		"records with days_delayed > 0", count(len(sources)), sources)
}

// AverageDaysDelayed is the mean delay over backdated records only.
func AverageDaysDelayed(views []models.RecordView) Result {
	var values []int
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if d := s.record.DaysDelayed(); d > 0 {
			values = append(values, d)
			sources = append(sources, s.id)
		}
	}
	var v *float64
	if avg, ok := averageRounded(values); ok {
		v = integer(avg)
	}
	return result("integrity.average_days_delayed", UnitDays,
		"mean days_delayed over backdated records, rounded half away from zero", v, sources)
}

// RevisedRecordCount counts records with at least one revision.
func RevisedRecordCount(views []models.RecordView) Result {
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if s.revised {
			sources = append(sources, s.id)
		}
	}
	return result("integrity.revised_records", UnitRecords,
		"records with at least one revision", count(len(sources)), sources)
}

// FinalizedRecordCount counts finalized records.
func FinalizedRecordCount(views []models.RecordView) Result {
	var sources []domain.RecordID
	for _, s := range samplesOf(views) {
		if s.record.IsFinalized() {
			sources = append(sources, s.id)
		}
	}
	return result("integrity.finalized_records", UnitRecords,
		"records in the finalized state", count(len(sources)), sources)
}

// Summarize computes the fixed statistic set stored in submission packs:
// timeline and integrity figures first, then per-symptom and per-activity
// figures in name order. A zero window is replaced by the span of the records.
func Summarize(views []models.RecordView, window domain.DateRange) []Result {
	if window == (domain.DateRange{}) {
		window = spanOf(views)
	}
	out := []Result{
		DocumentedDays(views),
		CoveragePercentage(views, window),
		AverageOverallSeverity(views),
		FinalizedRecordCount(views),
		RevisedRecordCount(views),
		BackdatedRecordCount(views),
		AverageDaysDelayed(views),
	}
	symptoms, activities := entryNames(views)
	for _, name := range symptoms {
		out = append(out,
			AverageSymptomSeverity(views, name),
			DaysWithSymptom(views, name),
			SymptomDayPercentage(views, name),
		)
	}
	for _, name := range activities {
		out = append(out,
			DaysWithActivity(views, name),
			AverageActivityImpact(views, name),
		)
	}
	return out
}

func spanOf(views []models.RecordView) domain.DateRange {
	var r domain.DateRange
	for i, v := range views {
		d := v.Record().LogicalDate()
		if i == 0 || d.Before(r.Start) {
			r.Start = d
		}
		if i == 0 || d.After(r.End) {
			r.End = d
		}
	}
	return r
}

func entryNames(views []models.RecordView) (symptoms, activities []string) {
	seenS, seenA := map[string]bool{}, map[string]bool{}
	for _, s := range samplesOf(views) {
		for _, e := range s.payload.Symptoms {
			if !seenS[e.Name] {
				seenS[e.Name] = true
				symptoms = append(symptoms, e.Name)
			}
		}
		for _, e := range s.payload.Activities {
			if !seenA[e.Name] {
				seenA[e.Name] = true
				activities = append(activities, e.Name)
			}
		}
	}
	slices.Sort(symptoms)
	slices.Sort(activities)
	return symptoms, activities
}

func key(name string) string { return pstrings.NormalizeName(name) }
