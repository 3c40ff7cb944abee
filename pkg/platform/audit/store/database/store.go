// Package database persists audit events in the evidence database. It serves
// two roles: the primary audit store when no Kafka brokers are configured,
// and the materialised read side the audit sink fills from the Kafka topic.
package database

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"evidentia/pkg/domain"
	audit "evidentia/pkg/platform/audit"
	txcontext "evidentia/pkg/platform/tx"
)

// Supported drivers. Names match the evidence store's.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS audit_events (
	id          TEXT PRIMARY KEY,
	category    TEXT NOT NULL,
	occurred_at TEXT NOT NULL,
	profile_id  TEXT NOT NULL,
	subject     TEXT NOT NULL,
	action      TEXT NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	decision    TEXT NOT NULL DEFAULT '',
	request_id  TEXT NOT NULL DEFAULT '',
	actor_id    TEXT NOT NULL DEFAULT '',
	client_ip   TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS audit_events_profile_action ON audit_events (profile_id, action);
`

// Store implements audit.Store on PostgreSQL or SQLite. Ids are UUIDv7, so
// ordering by id is append order.
type Store struct {
	db       *sql.DB
	numbered bool
	now      func() time.Time
}

// New wraps an open database. Call Migrate before the first Append.
func New(db *sql.DB, driver string) (*Store, error) {
	switch driver {
	case DriverPostgres:
		return &Store{db: db, numbered: true, now: time.Now}, nil
	case DriverSQLite:
		return &Store{db: db, now: time.Now}, nil
	}
	return nil, fmt.Errorf("unsupported audit driver %q", driver)
}

// Migrate creates the audit table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate audit schema: %w", err)
	}
	return nil
}

type dbExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func (s *Store) execer(ctx context.Context) dbExecutor {
	if tx, ok := txcontext.From(ctx); ok {
		return tx
	}
	return s.db
}

func (s *Store) rebind(q string) string {
	if !s.numbered {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Append writes event under a fresh id. It joins a transaction carried in ctx,
// so an audit row commits or rolls back with the change it describes.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generate audit event id: %w", err)
	}
	return s.AppendWithID(ctx, id, event)
}

// AppendWithID inserts event under eventID. Duplicate ids are ignored, so the
// sink can replay a Kafka partition safely.
func (s *Store) AppendWithID(ctx context.Context, eventID uuid.UUID, event audit.Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	if event.Category == "" {
		event.Category = audit.AuditEvent(event.Action).Category()
	}
	query := s.rebind(`
		INSERT INTO audit_events (
			id, category, occurred_at, profile_id, subject, action,
			reason, decision, request_id, actor_id, client_ip
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO NOTHING`)
	_, err := s.execer(ctx).ExecContext(ctx, query,
		eventID.String(),
		string(event.Category),
		event.Timestamp.UTC().Format(time.RFC3339Nano),
		event.ProfileID.String(),
		event.Subject,
		event.Action,
		event.Reason,
		event.Decision,
		event.RequestID,
		event.ActorID,
		event.ClientIP,
	)
	if err != nil {
		return fmt.Errorf("insert audit event: %w", err)
	}
	return nil
}

// ListByProfile returns a profile's events in append order.
func (s *Store) ListByProfile(ctx context.Context, profileID domain.ProfileID) ([]audit.Event, error) {
	return s.list(ctx, `WHERE profile_id = ?`, profileID.String())
}

// ListByAction filters a profile's events to one action.
func (s *Store) ListByAction(ctx context.Context, profileID domain.ProfileID, action audit.AuditEvent) ([]audit.Event, error) {
	return s.list(ctx, `WHERE profile_id = ? AND action = ?`, profileID.String(), string(action))
}

func (s *Store) list(ctx context.Context, where string, args ...any) ([]audit.Event, error) {
	query := s.rebind(`
		SELECT category, occurred_at, profile_id, subject, action,
			reason, decision, request_id, actor_id, client_ip
		FROM audit_events ` + where + `
		ORDER BY id`)
	rows, err := s.execer(ctx).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit events: %w", err)
	}
	defer rows.Close()

	var events []audit.Event
	for rows.Next() {
		var (
			e                   audit.Event
			category, at, owner string
		)
		if err := rows.Scan(&category, &at, &owner, &e.Subject, &e.Action,
			&e.Reason, &e.Decision, &e.RequestID, &e.ActorID, &e.ClientIP); err != nil {
			return nil, fmt.Errorf("scan audit event: %w", err)
		}
		e.Category = audit.EventCategory(category)
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, at); err != nil {
			return nil, fmt.Errorf("parse audit timestamp: %w", err)
		}
		if e.ProfileID, err = domain.ParseProfileID(owner); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit events: %w", err)
	}
	return events, nil
}
