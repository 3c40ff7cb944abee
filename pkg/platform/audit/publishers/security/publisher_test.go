package security

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"evidentia/pkg/domain"
	audit "evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/audit/store/memory"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestPublisherDrainsOnClose(t *testing.T) {
	store := memory.NewInMemoryStore()
	pub := New(store)
	profile := domain.NewProfileID()

	for range 10 {
		pub.Emit(context.Background(), audit.SecurityEvent{
			ProfileID: profile,
			Subject:   "record-1",
			Action:    audit.EventIntegrityViolation,
			Reason:    "seal mismatch",
		})
	}
	require.NoError(t, pub.Close())
	require.NoError(t, pub.Close(), "close is idempotent")

	events, err := store.ListByProfile(context.Background(), profile)
	require.NoError(t, err)
	require.Len(t, events, 10)
	assert.Equal(t, audit.CategorySecurity, events[0].Category)
	assert.Equal(t, string(audit.SeverityWarning), events[0].Decision)
}

func TestRingBufferDropsOldest(t *testing.T) {
	b := NewRingBuffer(2)
	assert.False(t, b.Enqueue(audit.SecurityEvent{Subject: "a"}))
	assert.False(t, b.Enqueue(audit.SecurityEvent{Subject: "b"}))
	assert.True(t, b.Enqueue(audit.SecurityEvent{Subject: "c"}))

	got := b.DequeueBatch(10)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].Subject)
	assert.Equal(t, "c", got[1].Subject)
	assert.Equal(t, int64(1), b.Dropped())
	assert.Zero(t, b.Len())
}
