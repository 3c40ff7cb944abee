package pack

import (
	"bytes"
	"slices"
	"time"

	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/stats"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
)

// BuildParams is the input to Build. Views must be one consistent snapshot of
// the profile's records; Failures lists records of that snapshot that could
// not be verified. Build keeps only the failures dated inside the criteria
// range, plus those with no usable date.
type BuildParams struct {
	ID        domain.PackID
	ProfileID domain.ProfileID
	Criteria  Criteria
	Views     []models.RecordView
	Failures  []IntegrityFailure
	Now       time.Time
}

// Build selects the records matching the criteria, computes the statistics
// snapshot over them and freezes both into a new Pack. Record ids are ordered
// by logical date, then id. The pack references records; it never copies them.
func Build(p BuildParams) (Pack, error) {
	if p.ID.IsNil() {
		return Pack{}, dErrors.New(dErrors.CodeInvariantViolation, "pack id is required")
	}
	if p.ProfileID.IsNil() {
		return Pack{}, dErrors.New(dErrors.CodeValidation, "profile_id is required")
	}
	criteria := p.Criteria.Normalize()
	if err := criteria.Validate(); err != nil {
		return Pack{}, err
	}

	var selected []models.RecordView
	for _, v := range p.Views {
		r := v.Record()
		if r.ProfileID() != p.ProfileID {
			return Pack{}, dErrors.Newf(dErrors.CodeInvariantViolation, "record %s belongs to another profile", r.ID())
		}
		if criteria.Matches(r) {
			selected = append(selected, v)
		}
	}
	slices.SortFunc(selected, func(a, b models.RecordView) int {
		if c := domain.CompareDates(a.Record().LogicalDate(), b.Record().LogicalDate()); c != 0 {
			return c
		}
		ai, bi := a.Record().ID(), b.Record().ID()
		return bytes.Compare(ai[:], bi[:])
	})

	ids := make([]domain.RecordID, len(selected))
	for i, v := range selected {
		ids[i] = v.Record().ID()
	}
	failures := []IntegrityFailure{}
	for _, f := range p.Failures {
		if criteria.coversFailure(f) {
			failures = append(failures, f)
		}
	}

	return Pack{
		id:                p.ID,
		profileID:         p.ProfileID,
		createdAt:         p.Now.UTC().Truncate(models.Precision),
		criteria:          criteria,
		recordIDs:         ids,
		statistics:        stats.Summarize(selected, criteria.Range),
		integrityFailures: failures,
	}, nil
}

// coversFailure matches a failed record by its stored date alone: its payload
// is untrusted, so record types are not consulted. A failure without a usable
// date is always listed.
func (c Criteria) coversFailure(f IntegrityFailure) bool {
	if domain.IsZeroDate(f.LogicalDate) || !f.LogicalDate.IsValid() {
		return true
	}
	return c.Range.Contains(f.LogicalDate)
}
