// Package store persists evidence records, revision ledgers, submission packs,
// profile settings and gap explanations.
//
// Two implementations share one contract: MemoryStore for tests and single-process
// use, SQLStore for PostgreSQL (server) and SQLite (on-device). Both enforce the
// lifecycle at the storage boundary: finalized rows cannot be overwritten or
// deleted, finalization is a compare-and-set, and revision sequences are unique
// per record. Stores report infrastructure facts through pkg/platform/sentinel;
// the service translates them into domain errors.
package store

import (
	"evidentia/internal/evidence/models"
	"evidentia/pkg/domain"
)

// Snapshot is a consistent read of one profile: every record and every
// revision as of a single instant. Revisions are keyed by record and ordered
// by sequence.
type Snapshot struct {
	Records   []models.RecordState
	Revisions map[domain.RecordID][]models.Revision
}
