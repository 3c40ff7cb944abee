package domain

import (
	"time"

	"cloud.google.com/go/civil"

	dErrors "evidentia/pkg/domain-errors"
)

// DateOf returns the UTC calendar date of an instant. All day arithmetic in the
// engine happens on these dates, never on elapsed hours.
func DateOf(t time.Time) civil.Date {
	return civil.DateOf(t.UTC())
}

// ParseDate parses an ISO-8601 calendar date (YYYY-MM-DD).
func ParseDate(s string) (civil.Date, error) {
	if s == "" {
		return civil.Date{}, dErrors.New(dErrors.CodeValidation, "date is required")
	}
	d, err := civil.ParseDate(s)
	if err != nil {
		return civil.Date{}, dErrors.Wrap(err, dErrors.CodeValidation, "date must be YYYY-MM-DD")
	}
	return d, nil
}

// IsZeroDate reports whether d is the unset civil.Date.
func IsZeroDate(d civil.Date) bool {
	return d == civil.Date{}
}

// DaysBetween returns to − from in whole calendar days.
func DaysBetween(from, to civil.Date) int {
	return to.DaysSince(from)
}

// InclusiveSpan counts the days in start..end including both endpoints.
// Returns 0 when end precedes start.
func InclusiveSpan(start, end civil.Date) int {
	n := end.DaysSince(start) + 1
	if n < 0 {
		return 0
	}
	return n
}

// CompareDates orders two dates for slices.SortFunc.
func CompareDates(a, b civil.Date) int {
	switch {
	case a.Before(b):
		return -1
	case a.After(b):
		return 1
	}
	return 0
}

// DateRange is an inclusive span of calendar dates.
type DateRange struct {
	Start civil.Date `json:"start"`
	End   civil.Date `json:"end"`
}

// Validate requires both endpoints and Start ≤ End.
func (r DateRange) Validate() error {
	if IsZeroDate(r.Start) || IsZeroDate(r.End) {
		return dErrors.New(dErrors.CodeValidation, "date range requires start and end")
	}
	if !r.Start.IsValid() || !r.End.IsValid() {
		return dErrors.New(dErrors.CodeValidation, "date range endpoints must be calendar dates")
	}
	if r.End.Before(r.Start) {
		return dErrors.Newf(dErrors.CodeValidation, "date range end %s precedes start %s", r.End, r.Start)
	}
	return nil
}

// Contains reports whether d lies within the range, endpoints included.
func (r DateRange) Contains(d civil.Date) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Days is the inclusive length of the range.
func (r DateRange) Days() int { return InclusiveSpan(r.Start, r.End) }

func (r DateRange) String() string { return r.Start.String() + ".." + r.End.String() }
