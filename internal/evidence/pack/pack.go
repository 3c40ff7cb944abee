// Package pack builds submission packs: immutable, reference-only snapshots of
// a profile's records and the statistics derived from them.
//
// A Pack has no setters. Accessors return copies, so nothing reachable from a
// built pack can change its record ids, criteria or statistics. Rebuilding
// always yields a new pack with a new id.
package pack

import (
	"encoding/json"
	"slices"
	"time"

	"cloud.google.com/go/civil"

	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/stats"
	"evidentia/pkg/domain"
	dErrors "evidentia/pkg/domain-errors"
	pstrings "evidentia/pkg/platform/strings"
)

// Criteria selects the records a pack references.
// An empty RecordTypes set selects every record type.
type Criteria struct {
	Range       domain.DateRange    `json:"date_range"`
	RecordTypes []models.RecordType `json:"record_types,omitempty"`
}

// Normalize dedupes record types and orders them.
func (c Criteria) Normalize() Criteria {
	out := c
	out.RecordTypes = pstrings.DedupeAndTrim(c.RecordTypes)
	slices.Sort(out.RecordTypes)
	if len(out.RecordTypes) == 0 {
		out.RecordTypes = nil
	}
	return out
}

func (c Criteria) Validate() error {
	if err := c.Range.Validate(); err != nil {
		return err
	}
	for _, t := range c.RecordTypes {
		if !t.IsValid() {
			return dErrors.Newf(dErrors.CodeValidation, "unknown record_type %q", t)
		}
	}
	return nil
}

// Matches reports whether a record falls inside the criteria.
func (c Criteria) Matches(r models.EvidenceRecord) bool {
	if !c.Range.Contains(r.LogicalDate()) {
		return false
	}
	return len(c.RecordTypes) == 0 || slices.Contains(c.RecordTypes, r.RecordType())
}

func (c Criteria) clone() Criteria {
	out := c
	out.RecordTypes = slices.Clone(c.RecordTypes)
	return out
}

// IntegrityFailure names a record left out of a pack because it failed
// verification when the pack was built. LogicalDate is the date as stored,
// which verification could not vouch for; it is zero when the stored date is
// unusable.
type IntegrityFailure struct {
	RecordID    domain.RecordID `json:"record_id"`
	LogicalDate civil.Date      `json:"logical_date,omitzero"`
	Reason      string          `json:"reason"`
}

// Pack is an immutable submission pack.
type Pack struct {
	id                domain.PackID
	profileID         domain.ProfileID
	createdAt         time.Time
	criteria          Criteria
	recordIDs         []domain.RecordID
	statistics        []stats.Result
	integrityFailures []IntegrityFailure
}

func (p Pack) ID() domain.PackID            { return p.id }
func (p Pack) ProfileID() domain.ProfileID  { return p.profileID }
func (p Pack) CreatedAt() time.Time         { return p.createdAt }
func (p Pack) Criteria() Criteria           { return p.criteria.clone() }
func (p Pack) RecordIDs() []domain.RecordID { return slices.Clone(p.recordIDs) }

// IntegrityFailures lists records excluded because they failed verification.
func (p Pack) IntegrityFailures() []IntegrityFailure { return slices.Clone(p.integrityFailures) }

// Statistics returns a deep copy of the snapshot taken at build time.
func (p Pack) Statistics() []stats.Result {
	out := make([]stats.Result, len(p.statistics))
	for i, r := range p.statistics {
		out[i] = r.Clone()
	}
	return out
}

// State is the persistence and wire shape of a pack.
type State struct {
	ID                domain.PackID      `json:"id"`
	ProfileID         domain.ProfileID   `json:"profile_id"`
	CreatedAt         time.Time          `json:"created_at"`
	Criteria          Criteria           `json:"filter_criteria"`
	RecordIDs         []domain.RecordID  `json:"record_ids"`
	Statistics        []stats.Result     `json:"generated_statistics"`
	IntegrityFailures []IntegrityFailure `json:"integrity_failures"`
}

// ToState exports a deep copy.
func (p Pack) ToState() State {
	failures := p.IntegrityFailures()
	if failures == nil {
		failures = []IntegrityFailure{}
	}
	ids := p.RecordIDs()
	if ids == nil {
		ids = []domain.RecordID{}
	}
	return State{
		ID:                p.id,
		ProfileID:         p.profileID,
		CreatedAt:         p.createdAt,
		Criteria:          p.Criteria(),
		RecordIDs:         ids,
		Statistics:        p.Statistics(),
		IntegrityFailures: failures,
	}
}

// Restore rebuilds a pack read back from storage.
func Restore(s State) (Pack, error) {
	if s.ID.IsNil() || s.ProfileID.IsNil() {
		return Pack{}, dErrors.New(dErrors.CodeIntegrityViolation, "stored pack is missing its identity")
	}
	if err := s.Criteria.Validate(); err != nil {
		return Pack{}, dErrors.Wrap(err, dErrors.CodeIntegrityViolation, "stored pack criteria are invalid")
	}
	p := Pack{
		id:                s.ID,
		profileID:         s.ProfileID,
		createdAt:         s.CreatedAt.UTC(),
		criteria:          s.Criteria.clone(),
		recordIDs:         slices.Clone(s.RecordIDs),
		integrityFailures: slices.Clone(s.IntegrityFailures),
	}
	if p.recordIDs == nil {
		p.recordIDs = []domain.RecordID{}
	}
	if p.integrityFailures == nil {
		p.integrityFailures = []IntegrityFailure{}
	}
	p.statistics = make([]stats.Result, len(s.Statistics))
	for i, r := range s.Statistics {
		p.statistics[i] = r.Clone()
	}
	return p, nil
}

func (p Pack) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.ToState())
}

func (p *Pack) UnmarshalJSON(b []byte) error {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return dErrors.Wrap(err, dErrors.CodeValidation, "malformed pack")
	}
	restored, err := Restore(s)
	if err != nil {
		return err
	}
	*p = restored
	return nil
}
