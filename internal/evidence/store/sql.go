package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"evidentia/internal/evidence/gaps"
	"evidentia/internal/evidence/models"
	"evidentia/internal/evidence/pack"
	"evidentia/pkg/domain"
	"evidentia/pkg/platform/sentinel"
	"evidentia/pkg/platform/tx"
)

// SQLStore persists evidence in PostgreSQL or SQLite through database/sql.
// Methods join a transaction carried in ctx (pkg/platform/tx) when present.
type SQLStore struct {
	db *sql.DB
	d  dialect
}

// NewSQL wraps an open database. driver is DriverPostgres or DriverSQLite.
func NewSQL(db *sql.DB, driver string) (*SQLStore, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, err
	}
	return &SQLStore{db: db, d: d}, nil
}

// Migrate applies the embedded schema. Every statement is idempotent.
func (s *SQLStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.d.schema); err != nil {
		return fmt.Errorf("migrate %s schema: %w", s.d.name, err)
	}
	return nil
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *SQLStore) q(ctx context.Context) querier {
	if t, ok := tx.From(ctx); ok {
		return t
	}
	return s.db
}

func (s *SQLStore) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.q(ctx).ExecContext(ctx, s.d.rebind(query), args...)
}

func (s *SQLStore) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.q(ctx).QueryContext(ctx, s.d.rebind(query), args...)
}

func (s *SQLStore) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return s.q(ctx).QueryRowContext(ctx, s.d.rebind(query), args...)
}

const recordColumns = `id, profile_id, logical_date, created_at, evidence_timestamp, finalized,
	finalized_at, finalized_by, retrospective, payload, seal`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (models.RecordState, error) {
	var (
		id, profileID         uuid.UUID
		finalizedBy           uuid.NullUUID
		logical               dateCol
		createdAt, evidenceTS timeCol
		finalizedAt           timeCol
		finalized             bool
		retroRaw, payloadRaw  []byte
		seal                  string
	)
	if err := row.Scan(&id, &profileID, &logical, &createdAt, &evidenceTS, &finalized,
		&finalizedAt, &finalizedBy, &retroRaw, &payloadRaw, &seal); err != nil {
		return models.RecordState{}, err
	}
	st := models.RecordState{
		ID:                domain.RecordID(id),
		ProfileID:         domain.ProfileID(profileID),
		LogicalDate:       logical.Date,
		CreatedAt:         createdAt.Time,
		EvidenceTimestamp: evidenceTS.ptr(),
		Finalized:         finalized,
		FinalizedAt:       finalizedAt.ptr(),
		Seal:              models.Seal(seal),
	}
	if finalizedBy.Valid {
		by := domain.ProfileID(finalizedBy.UUID)
		st.FinalizedBy = &by
	}
	if len(retroRaw) > 0 && string(retroRaw) != "null" {
		var retro models.RetrospectiveContext
		if err := json.Unmarshal(retroRaw, &retro); err != nil {
			return models.RecordState{}, fmt.Errorf("decode retrospective: %w", err)
		}
		st.Retrospective = &retro
	}
	if err := json.Unmarshal(payloadRaw, &st.Payload); err != nil {
		return models.RecordState{}, fmt.Errorf("decode payload: %w", err)
	}
	st.Payload = st.Payload.Normalize()
	return st, nil
}

func (s *SQLStore) Get(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) (models.RecordState, error) {
	st, err := scanRecord(s.queryRow(ctx,
		`SELECT `+recordColumns+` FROM evidence_records WHERE id = ? AND profile_id = ?`,
		recordID.String(), profileID.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RecordState{}, sentinel.ErrNotFound
		}
		return models.RecordState{}, fmt.Errorf("get record: %w", err)
	}
	ids, err := s.revisionIDs(ctx, recordID)
	if err != nil {
		return models.RecordState{}, err
	}
	st.RevisionIDs = ids
	return st, nil
}

func (s *SQLStore) revisionIDs(ctx context.Context, recordID domain.RecordID) ([]domain.RevisionID, error) {
	rows, err := s.query(ctx,
		`SELECT id FROM evidence_revisions WHERE record_id = ? ORDER BY sequence`, recordID.String())
	if err != nil {
		return nil, fmt.Errorf("list revision ids: %w", err)
	}
	defer rows.Close()
	var out []domain.RevisionID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan revision id: %w", err)
		}
		out = append(out, domain.RevisionID(id))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revision ids: %w", err)
	}
	return out, nil
}

func (s *SQLStore) ListByProfile(ctx context.Context, profileID domain.ProfileID) ([]models.RecordState, error) {
	records, err := s.listRecords(ctx, profileID)
	if err != nil {
		return nil, err
	}
	revisions, err := s.ListRevisionsByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	attachRevisionIDs(records, revisions)
	return records, nil
}

func attachRevisionIDs(records []models.RecordState, revisions map[domain.RecordID][]models.Revision) {
	for i := range records {
		for _, r := range revisions[records[i].ID] {
			records[i].RevisionIDs = append(records[i].RevisionIDs, r.ID)
		}
	}
}

func (s *SQLStore) listRecords(ctx context.Context, profileID domain.ProfileID) ([]models.RecordState, error) {
	rows, err := s.query(ctx,
		`SELECT `+recordColumns+` FROM evidence_records WHERE profile_id = ? ORDER BY logical_date, id`,
		profileID.String())
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	var out []models.RecordState
	for rows.Next() {
		st, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

type storedHead struct {
	profileID domain.ProfileID
	finalized bool
	seal      models.Seal
}

// head reads the lifecycle columns of one record, locking the row on
// PostgreSQL. Must run inside a transaction.
func (s *SQLStore) head(ctx context.Context, recordID domain.RecordID) (storedHead, error) {
	var (
		profileID uuid.UUID
		h         storedHead
		seal      string
	)
	err := s.queryRow(ctx,
		`SELECT profile_id, finalized, seal FROM evidence_records WHERE id = ?`+s.d.lockRow,
		recordID.String()).Scan(&profileID, &h.finalized, &seal)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return storedHead{}, sentinel.ErrNotFound
		}
		return storedHead{}, fmt.Errorf("read record head: %w", err)
	}
	h.profileID = domain.ProfileID(profileID)
	h.seal = models.Seal(seal)
	return h, nil
}

func encodeRecord(st models.RecordState) (retro, payload []byte, err error) {
	if st.Retrospective != nil {
		if retro, err = json.Marshal(st.Retrospective); err != nil {
			return nil, nil, fmt.Errorf("encode retrospective: %w", err)
		}
	}
	if payload, err = json.Marshal(st.Payload.Normalize()); err != nil {
		return nil, nil, fmt.Errorf("encode payload: %w", err)
	}
	return retro, payload, nil
}

// Put inserts a draft or overwrites a stored draft's payload. It refuses
// finalized input, a stored finalized row, and any change to sealed facts.
func (s *SQLStore) Put(ctx context.Context, st models.RecordState) error {
	if st.Finalized {
		return sentinel.ErrInvalidState
	}
	retro, payload, err := encodeRecord(st)
	if err != nil {
		return err
	}
	return tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		h, err := s.head(ctx, st.ID)
		switch {
		case errors.Is(err, sentinel.ErrNotFound):
			_, err = s.exec(ctx, `INSERT INTO evidence_records (`+recordColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				st.ID.String(), st.ProfileID.String(), dateParam(st.LogicalDate),
				s.d.timeParam(st.CreatedAt), s.optTime(st.EvidenceTimestamp), false,
				nil, nil, nullableJSON(retro), payload, string(st.Seal))
			if err != nil {
				if s.d.isUnique(err) {
					return sentinel.ErrConflict
				}
				return fmt.Errorf("insert record: %w", err)
			}
			return nil
		case err != nil:
			return err
		case h.finalized:
			return sentinel.ErrInvalidState
		case h.seal != st.Seal || h.profileID != st.ProfileID:
			return sentinel.ErrStateMismatch
		}
		_, err = s.exec(ctx,
			`UPDATE evidence_records SET payload = ? WHERE id = ? AND finalized = ?`,
			payload, st.ID.String(), false)
		if err != nil {
			return fmt.Errorf("update record: %w", err)
		}
		return nil
	})
}

func nullableJSON(b []byte) any {
	if b == nil {
		return nil
	}
	return b
}

func (s *SQLStore) optTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return s.d.timeParam(*t)
}

// Delete removes a draft and refuses finalized rows.
func (s *SQLStore) Delete(ctx context.Context, profileID domain.ProfileID, recordID domain.RecordID) error {
	return tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		h, err := s.head(ctx, recordID)
		if err != nil {
			return err
		}
		if h.profileID != profileID {
			return sentinel.ErrNotFound
		}
		if h.finalized {
			return sentinel.ErrInvalidState
		}
		if _, err := s.exec(ctx,
			`DELETE FROM evidence_records WHERE id = ? AND finalized = ?`, recordID.String(), false); err != nil {
			return fmt.Errorf("delete record: %w", err)
		}
		return nil
	})
}

// CompareAndSetFinalized writes next only when the stored lifecycle equals
// expected and the seal is unchanged; otherwise sentinel.ErrStateMismatch.
func (s *SQLStore) CompareAndSetFinalized(ctx context.Context, recordID domain.RecordID, expected models.Lifecycle, next models.RecordState) error {
	if !next.Finalized || next.ID != recordID || next.FinalizedAt == nil || next.FinalizedBy == nil {
		return sentinel.ErrInvalidState
	}
	_, payload, err := encodeRecord(next)
	if err != nil {
		return err
	}
	return tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		h, err := s.head(ctx, recordID)
		if err != nil {
			return err
		}
		if h.profileID != next.ProfileID {
			return sentinel.ErrNotFound
		}
		current := models.LifecycleDraft
		if h.finalized {
			current = models.LifecycleFinalized
		}
		if current != expected || h.seal != next.Seal {
			return sentinel.ErrStateMismatch
		}
		res, err := s.exec(ctx, `UPDATE evidence_records
			SET finalized = ?, finalized_at = ?, finalized_by = ?, payload = ?
			WHERE id = ? AND finalized = ? AND seal = ?`,
			true, s.d.timeParam(*next.FinalizedAt), next.FinalizedBy.String(), payload,
			recordID.String(), h.finalized, string(next.Seal))
		if err != nil {
			return fmt.Errorf("finalize record: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return sentinel.ErrStateMismatch
		}
		return nil
	})
}

// AppendRevision inserts rev as the next ledger entry. A sequence other than
// one past the stored last, or a reused id, is sentinel.ErrConflict.
func (s *SQLStore) AppendRevision(ctx context.Context, rev models.Revision) error {
	original, err := json.Marshal(rev.OriginalValue)
	if err != nil {
		return fmt.Errorf("encode original value: %w", err)
	}
	updated, err := json.Marshal(rev.UpdatedValue)
	if err != nil {
		return fmt.Errorf("encode updated value: %w", err)
	}
	return tx.Run(ctx, s.db, nil, func(ctx context.Context) error {
		h, err := s.head(ctx, rev.RecordID)
		if err != nil {
			return err
		}
		if !h.finalized {
			return sentinel.ErrInvalidState
		}
		var last int
		if err := s.queryRow(ctx,
			`SELECT COALESCE(MAX(sequence), 0) FROM evidence_revisions WHERE record_id = ?`,
			rev.RecordID.String()).Scan(&last); err != nil {
			return fmt.Errorf("read ledger head: %w", err)
		}
		if rev.Sequence != last+1 {
			return sentinel.ErrConflict
		}
		_, err = s.exec(ctx, `INSERT INTO evidence_revisions
			(id, record_id, sequence, field_path, original_value, updated_value,
			 reason_category, reason_note, revision_timestamp)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rev.ID.String(), rev.RecordID.String(), rev.Sequence, rev.FieldPath.String(),
			original, updated, string(rev.ReasonCategory), rev.ReasonNote,
			s.d.timeParam(rev.RevisionTimestamp))
		if err != nil {
			if s.d.isUnique(err) {
				return sentinel.ErrConflict
			}
			return fmt.Errorf("insert revision: %w", err)
		}
		return nil
	})
}

const revisionColumns = `r.id, r.record_id, r.sequence, r.field_path, r.original_value, r.updated_value,
	r.reason_category, r.reason_note, r.revision_timestamp`

func scanRevision(row rowScanner) (models.Revision, error) {
	var (
		id, recordID      uuid.UUID
		sequence          int
		path, category    string
		note              string
		original, updated []byte
		ts                timeCol
	)
	if err := row.Scan(&id, &recordID, &sequence, &path, &original, &updated, &category, &note, &ts); err != nil {
		return models.Revision{}, err
	}
	fp, err := models.ParseFieldPath(path)
	if err != nil {
		return models.Revision{}, fmt.Errorf("stored field path %q: %w", path, err)
	}
	rev := models.Revision{
		ID:                domain.RevisionID(id),
		RecordID:          domain.RecordID(recordID),
		Sequence:          sequence,
		FieldPath:         fp,
		ReasonCategory:    models.ReasonCategory(category),
		ReasonNote:        note,
		RevisionTimestamp: ts.Time,
	}
	if err := json.Unmarshal(original, &rev.OriginalValue); err != nil {
		return models.Revision{}, fmt.Errorf("decode original value: %w", err)
	}
	if err := json.Unmarshal(updated, &rev.UpdatedValue); err != nil {
		return models.Revision{}, fmt.Errorf("decode updated value: %w", err)
	}
	return rev, nil
}

func (s *SQLStore) ListRevisions(ctx context.Context, recordID domain.RecordID) ([]models.Revision, error) {
	var exists int
	err := s.queryRow(ctx, `SELECT 1 FROM evidence_records WHERE id = ?`, recordID.String()).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("check record: %w", err)
	}
	rows, err := s.query(ctx,
		`SELECT `+revisionColumns+` FROM evidence_revisions r WHERE r.record_id = ? ORDER BY r.sequence`,
		recordID.String())
	if err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	defer rows.Close()
	var out []models.Revision
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out = append(out, rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list revisions: %w", err)
	}
	return out, nil
}

func (s *SQLStore) ListRevisionsByProfile(ctx context.Context, profileID domain.ProfileID) (map[domain.RecordID][]models.Revision, error) {
	rows, err := s.query(ctx, `SELECT `+revisionColumns+`
		FROM evidence_revisions r JOIN evidence_records e ON e.id = r.record_id
		WHERE e.profile_id = ? ORDER BY r.record_id, r.sequence`, profileID.String())
	if err != nil {
		return nil, fmt.Errorf("list profile revisions: %w", err)
	}
	defer rows.Close()
	out := make(map[domain.RecordID][]models.Revision)
	for rows.Next() {
		rev, err := scanRevision(rows)
		if err != nil {
			return nil, fmt.Errorf("scan revision: %w", err)
		}
		out[rev.RecordID] = append(out[rev.RecordID], rev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list profile revisions: %w", err)
	}
	return out, nil
}

// Snapshot reads records and revisions in one transaction. PostgreSQL runs
// it REPEATABLE READ so both reads see the same instant.
func (s *SQLStore) Snapshot(ctx context.Context, profileID domain.ProfileID) (Snapshot, error) {
	var snap Snapshot
	err := tx.Run(ctx, s.db, s.d.snapshotTx, func(ctx context.Context) error {
		records, err := s.listRecords(ctx, profileID)
		if err != nil {
			return err
		}
		revisions, err := s.ListRevisionsByProfile(ctx, profileID)
		if err != nil {
			return err
		}
		attachRevisionIDs(records, revisions)
		snap = Snapshot{Records: records, Revisions: revisions}
		return nil
	})
	return snap, err
}

// CreatePack inserts a pack. The table rejects updates and deletes.
func (s *SQLStore) CreatePack(ctx context.Context, p pack.Pack) error {
	body, err := json.Marshal(p.ToState())
	if err != nil {
		return fmt.Errorf("encode pack: %w", err)
	}
	_, err = s.exec(ctx,
		`INSERT INTO submission_packs (id, profile_id, created_at, body) VALUES (?, ?, ?, ?)`,
		p.ID().String(), p.ProfileID().String(), s.d.timeParam(p.CreatedAt()), body)
	if err != nil {
		if s.d.isUnique(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert pack: %w", err)
	}
	return nil
}

func decodePack(body []byte) (pack.Pack, error) {
	var st pack.State
	if err := json.Unmarshal(body, &st); err != nil {
		return pack.Pack{}, fmt.Errorf("decode pack: %w", err)
	}
	return pack.Restore(st)
}

func (s *SQLStore) GetPack(ctx context.Context, profileID domain.ProfileID, packID domain.PackID) (pack.Pack, error) {
	var body []byte
	err := s.queryRow(ctx,
		`SELECT body FROM submission_packs WHERE id = ? AND profile_id = ?`,
		packID.String(), profileID.String()).Scan(&body)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return pack.Pack{}, sentinel.ErrNotFound
		}
		return pack.Pack{}, fmt.Errorf("get pack: %w", err)
	}
	return decodePack(body)
}

func (s *SQLStore) ListPacks(ctx context.Context, profileID domain.ProfileID) ([]pack.Pack, error) {
	rows, err := s.query(ctx,
		`SELECT body FROM submission_packs WHERE profile_id = ? ORDER BY id`, profileID.String())
	if err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	defer rows.Close()
	var out []pack.Pack
	for rows.Next() {
		var body []byte
		if err := rows.Scan(&body); err != nil {
			return nil, fmt.Errorf("scan pack: %w", err)
		}
		p, err := decodePack(body)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list packs: %w", err)
	}
	return out, nil
}

// EvidenceTracking returns sentinel.ErrNotFound when the profile never set it.
func (s *SQLStore) EvidenceTracking(ctx context.Context, profileID domain.ProfileID) (bool, error) {
	var enabled bool
	err := s.queryRow(ctx,
		`SELECT evidence_tracking FROM profile_settings WHERE profile_id = ?`,
		profileID.String()).Scan(&enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, sentinel.ErrNotFound
		}
		return false, fmt.Errorf("get evidence tracking: %w", err)
	}
	return enabled, nil
}

func (s *SQLStore) SetEvidenceTracking(ctx context.Context, profileID domain.ProfileID, enabled bool) error {
	_, err := s.exec(ctx, `INSERT INTO profile_settings (profile_id, evidence_tracking) VALUES (?, ?)
		ON CONFLICT (profile_id) DO UPDATE SET evidence_tracking = excluded.evidence_tracking`,
		profileID.String(), enabled)
	if err != nil {
		return fmt.Errorf("set evidence tracking: %w", err)
	}
	return nil
}

func (s *SQLStore) CreateExplanation(ctx context.Context, e gaps.Explanation) error {
	_, err := s.exec(ctx, `INSERT INTO gap_explanations
		(id, profile_id, start_date, end_date, reason, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID.String(), e.ProfileID.String(), dateParam(e.StartDate), dateParam(e.EndDate),
		e.Reason, e.Note, s.d.timeParam(e.CreatedAt))
	if err != nil {
		if s.d.isUnique(err) {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("insert gap explanation: %w", err)
	}
	return nil
}

func (s *SQLStore) ListExplanations(ctx context.Context, profileID domain.ProfileID) ([]gaps.Explanation, error) {
	rows, err := s.query(ctx, `SELECT id, profile_id, start_date, end_date, reason, note, created_at
		FROM gap_explanations WHERE profile_id = ? ORDER BY start_date, created_at`, profileID.String())
	if err != nil {
		return nil, fmt.Errorf("list gap explanations: %w", err)
	}
	defer rows.Close()
	var out []gaps.Explanation
	for rows.Next() {
		var (
			id, owner  uuid.UUID
			start, end dateCol
			created    timeCol
			e          gaps.Explanation
		)
		if err := rows.Scan(&id, &owner, &start, &end, &e.Reason, &e.Note, &created); err != nil {
			return nil, fmt.Errorf("scan gap explanation: %w", err)
		}
		e.ID = domain.ExplanationID(id)
		e.ProfileID = domain.ProfileID(owner)
		e.StartDate, e.EndDate = start.Date, end.Date
		e.CreatedAt = created.Time
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list gap explanations: %w", err)
	}
	return out, nil
}
