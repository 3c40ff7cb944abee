package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func newSQLiteStore(t *testing.T) evidenceStore {
	t.Helper()
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, "file:"+filepath.Join(t.TempDir(), "evidence.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	st, err := NewSQL(db, DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))
	require.NoError(t, st.Migrate(ctx), "migrations are idempotent")
	return st
}

func TestSQLiteStore(t *testing.T) {
	suite.Run(t, &ContractSuite{newStore: newSQLiteStore})
}

func TestSQLiteAppendOnlyTriggers(t *testing.T) {
	ctx := context.Background()
	db, err := Open(ctx, DriverSQLite, "file:"+filepath.Join(t.TempDir(), "triggers.db"))
	require.NoError(t, err)
	defer db.Close()
	st, err := NewSQL(db, DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(ctx))

	_, err = db.ExecContext(ctx, `INSERT INTO submission_packs (id, profile_id, created_at, body) VALUES ('p', 'u', 't', '{}')`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `DELETE FROM submission_packs WHERE id = 'p'`)
	require.ErrorContains(t, err, "insert-only")
	_, err = db.ExecContext(ctx, `UPDATE submission_packs SET body = '[]' WHERE id = 'p'`)
	require.ErrorContains(t, err, "insert-only")
}

func TestRebind(t *testing.T) {
	require.Equal(t, "SELECT a FROM t WHERE x = $1 AND y = $2", postgresDialect.rebind("SELECT a FROM t WHERE x = ? AND y = ?"))
	require.Equal(t, "x = ?", sqliteDialect.rebind("x = ?"))
}

func TestNewSQLRejectsUnknownDriver(t *testing.T) {
	_, err := NewSQL(nil, "oracle")
	require.Error(t, err)
}
