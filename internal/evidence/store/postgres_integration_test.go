//go:build integration

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"evidentia/pkg/testutil/containers"
)

func TestPostgresStore(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	pg := containers.GetManager().GetPostgres(t)
	st, err := NewSQL(pg.DB, DriverPostgres)
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))

	suite.Run(t, &ContractSuite{newStore: func(*testing.T) evidenceStore {
		// Packs and revisions are insert-only, so every test writes under a
		// fresh profile instead of truncating.
		return st
	}})
}
