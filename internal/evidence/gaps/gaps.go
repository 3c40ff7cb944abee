// Package gaps finds under-documented calendar-day spans in a profile's record
// timeline.
//
// Gaps are derived on every call and never stored. An explanation can be
// attached to a gap but never hides it.
package gaps

import (
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// DefaultThreshold is the minimum number of missing days that counts as a gap.
const DefaultThreshold = 3

// Gap is a run of consecutive calendar days with no record. StartDate and
// EndDate are both inclusive.
type Gap struct {
	ProfileID  domain.ProfileID `json:"profile_id"`
	StartDate  civil.Date       `json:"start_date"`
	EndDate    civil.Date       `json:"end_date"`
	LengthDays int              `json:"length_days"`
}

// Overlaps reports whether the gap shares at least one day with start..end.
func (g Gap) Overlaps(start, end civil.Date) bool {
	return !start.After(g.EndDate) && !end.Before(g.StartDate)
}

// Detector applies a fixed threshold.
type Detector struct {
	threshold int
}

// NewDetector fails for thresholds below one day.
func NewDetector(threshold int) (*Detector, error) {
	if threshold < 1 {
		return nil, dErrors.Newf(dErrors.CodeValidation, "gap threshold must be at least 1 day, got %d", threshold)
	}
	return &Detector{threshold: threshold}, nil
}

func (d *Detector) Threshold() int { return d.threshold }

// Detect scans logical dates in calendar order. For each consecutive pair
// a, b with b−a−1 ≥ threshold it emits the gap a+1..b−1. Input order and
// duplicate dates do not matter.
func (d *Detector) Detect(profileID domain.ProfileID, dates []civil.Date) []Gap {
	sorted := sortedUnique(dates)
	var out []Gap
	for i := 1; i < len(sorted); i++ {
		if g, ok := d.between(profileID, sorted[i-1], sorted[i]); ok {
			out = append(out, g)
		}
	}
	return out
}

// DetectInRange is Detect bounded to the inclusive window start..end. Days
// before the first and after the last record inside the window are also
// reported when they reach the threshold. Dates outside the window are ignored.
func (d *Detector) DetectInRange(profileID domain.ProfileID, dates []civil.Date, start, end civil.Date) ([]Gap, error) {
	if end.Before(start) {
		return nil, dErrors.Newf(dErrors.CodeValidation, "range end %s precedes start %s", end, start)
	}
	inside := make([]civil.Date, 0, len(dates))
	for _, dt := range dates {
		if !dt.Before(start) && !dt.After(end) {
			inside = append(inside, dt)
		}
	}
	// Sentinels one day outside the window turn leading and trailing spans into
	// ordinary between-record gaps.
	bounded := append(sortedUnique(inside), start.AddDays(-1), end.AddDays(1))
	return d.Detect(profileID, bounded), nil
}

func (d *Detector) between(profileID domain.ProfileID, a, b civil.Date) (Gap, bool) {
	missing := domain.DaysBetween(a, b) - 1
	if missing < d.threshold {
		return Gap{}, false
	}
	return Gap{
		ProfileID:  profileID,
		StartDate:  a.AddDays(1),
		EndDate:    b.AddDays(-1),
		LengthDays: missing,
	}, true
}

func sortedUnique(dates []civil.Date) []civil.Date {
	out := slices.Clone(dates)
	slices.SortFunc(out, domain.CompareDates)
	return slices.Compact(out)
}

// LogicalDates extracts the logical date of each record.
func LogicalDates(views []models.RecordView) []civil.Date {
	out := make([]civil.Date, len(views))
	for i, v := range views {
		out[i] = v.Record().LogicalDate()
	}
	return out
}

const (
	maxExplanationReason = 200
	maxExplanationNote   = 2_000
)

// Explanation is a user-authored account of why a span has no records.
type Explanation struct {
	ID        domain.ExplanationID `json:"id"`
	ProfileID domain.ProfileID     `json:"profile_id"`
	StartDate civil.Date           `json:"start_date"`
	EndDate   civil.Date           `json:"end_date"`
	Reason    string               `json:"reason"`
	Note      string               `json:"note,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

// NewExplanation validates and builds an explanation.
func NewExplanation(id domain.ExplanationID, profileID domain.ProfileID, start, end civil.Date, reason, note string, now time.Time) (Explanation, error) {
	reason = strings.TrimSpace(reason)
	switch {
	case profileID.IsNil():
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	case domain.IsZeroDate(start) || domain.IsZeroDate(end):
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "start_date and end_date are required")
	case end.Before(start):
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "end_date precedes start_date")
	case reason == "":
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "reason is required")
	case len(reason) > maxExplanationReason:
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "reason too long")
	case len(note) > maxExplanationNote:
		return Explanation{}, dErrors.New(dErrors.CodeValidation, "note too long")
	}
	return Explanation{
		ID:        id,
		ProfileID: profileID,
		StartDate: start,
		EndDate:   end,
		Reason:    reason,
		Note:      note,
		CreatedAt: now.UTC().Truncate(models.Precision),
	}, nil
}

// Annotated is a gap together with every explanation overlapping it.
type Annotated struct {
	Gap          Gap           `json:"gap"`
	Explanations []Explanation `json:"explanations,omitempty"`
}

// Annotate pairs each gap with its overlapping explanations. Every input gap
// appears in the output, in order, whether explained or not.
func Annotate(gaps []Gap, explanations []Explanation) []Annotated {
	out := make([]Annotated, len(gaps))
	for i, g := range gaps {
		out[i].Gap = g
		for _, e := range explanations {
			if e.ProfileID == g.ProfileID && g.Overlaps(e.StartDate, e.EndDate) {
				out[i].Explanations = append(out[i].Explanations, e)
			}
		}
	}
	return out
}
