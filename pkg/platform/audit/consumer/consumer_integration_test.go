//go:build integration

package consumer

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"evidentia/pkg/domain"
	audit "evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/audit/store/database"
	"evidentia/pkg/platform/audit/store/kafka"
	"evidentia/pkg/testutil/containers"
)

func TestSinkDrainsTopicIntoDatabase(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	broker := containers.GetManager().GetRedpanda(t).Broker
	const topic = "evidentia.audit.sink"
	require.NoError(t, kafka.EnsureTopic(ctx, []string{broker}, topic, 1, 1))

	producer, err := kafka.New([]string{broker}, topic)
	require.NoError(t, err)
	defer producer.Close()

	profile := domain.NewProfileID()
	require.NoError(t, producer.Append(ctx, audit.ComplianceEvent{
		ProfileID: profile, Subject: "rec-1", Action: audit.EventRecordFinalized,
	}.ToEvent()))
	require.NoError(t, producer.Append(ctx, audit.SecurityEvent{
		ProfileID: profile, Subject: "rec-1", Action: audit.EventIntegrityViolation, Severity: audit.SeverityCritical,
	}.ToEvent()))

	db, err := sql.Open("sqlite", "file:"+filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()
	sink, err := database.New(db, database.DriverSQLite)
	require.NoError(t, err)
	require.NoError(t, sink.Migrate(ctx))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	c, err := New([]string{broker}, topic, "evidentia-sink-test", NewStoreRouter(sink, logger), logger)
	require.NoError(t, err)
	defer c.Close()

	runCtx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- c.Run(runCtx) }()

	require.Eventually(t, func() bool {
		events, err := sink.ListByProfile(ctx, profile)
		return err == nil && len(events) == 2
	}, 45*time.Second, 200*time.Millisecond)

	stop()
	require.NoError(t, <-done)
}
