package ops

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evidentia/pkg/domain"
	audit "evidentia/pkg/platform/audit"
	"evidentia/pkg/platform/audit/store/memory"
)

type flakyStore struct {
	fail  atomic.Bool
	calls atomic.Int32
}

func (s *flakyStore) Append(context.Context, audit.Event) error {
	s.calls.Add(1)
	if s.fail.Load() {
		return errors.New("store down")
	}
	return nil
}

func TestTrack(t *testing.T) {
	ctx := context.Background()
	profile := domain.NewProfileID()

	t.Run("persists operations events", func(t *testing.T) {
		store := memory.NewInMemoryStore()
		m := NewMetrics(prometheus.NewRegistry())
		pub := New(store, WithMetrics(m))

		pub.Track(ctx, audit.OpsEvent{ProfileID: profile, Subject: "pack-1", Action: audit.EventPackSigned})

		events, err := store.ListByProfile(ctx, profile)
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, audit.CategoryOperations, events[0].Category)
		assert.False(t, events[0].Timestamp.IsZero())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Tracked))
	})

	t.Run("sampled out events never reach the store", func(t *testing.T) {
		store := &flakyStore{}
		m := NewMetrics(prometheus.NewRegistry())
		sampler := NewSampler(1)
		sampler.SetRate(audit.EventRecordUpdated, 0)
		pub := New(store, WithMetrics(m), WithSampler(sampler))

		pub.Track(ctx, audit.OpsEvent{ProfileID: profile, Action: audit.EventRecordUpdated})
		pub.Track(ctx, audit.OpsEvent{ProfileID: profile, Action: audit.EventGapExplained})

		assert.Equal(t, int32(1), store.calls.Load())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.Sampled))
	})

	t.Run("open circuit skips the store until cooldown", func(t *testing.T) {
		now := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
		clock := func() time.Time { return now }
		store := &flakyStore{}
		store.fail.Store(true)
		m := NewMetrics(prometheus.NewRegistry())
		pub := New(store, WithMetrics(m), WithClock(clock),
			WithCircuitBreaker(NewCircuitBreaker(2, time.Minute, clock)))

		for range 4 {
			pub.Track(ctx, audit.OpsEvent{ProfileID: profile, Action: audit.EventGapExplained})
		}
		assert.Equal(t, int32(2), store.calls.Load())
		assert.Equal(t, 2.0, testutil.ToFloat64(m.CircuitBreakerDropped))
		assert.Equal(t, 1.0, testutil.ToFloat64(m.CircuitBreakerState))

		now = now.Add(2 * time.Minute)
		store.fail.Store(false)
		pub.Track(ctx, audit.OpsEvent{ProfileID: profile, Action: audit.EventGapExplained})
		assert.Equal(t, int32(3), store.calls.Load())
		assert.Zero(t, testutil.ToFloat64(m.CircuitBreakerState))
	})
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(3, time.Minute, func() time.Time { return now })

	for range 3 {
		cb.RecordFailure()
	}
	require.True(t, cb.IsOpen())
	assert.False(t, cb.Allow())

	now = now.Add(61 * time.Second)
	assert.True(t, cb.Allow())
	cb.RecordFailure()
	assert.True(t, cb.IsOpen(), "one failure while half-open reopens the circuit")
}

func TestSamplerClamps(t *testing.T) {
	s := NewSampler(7)
	assert.True(t, s.ShouldSample(audit.EventPackSigned))
	s.SetRate(audit.EventPackSigned, -1)
	assert.False(t, s.ShouldSample(audit.EventPackSigned))

	s.draw = func() float64 { return 0.4 }
	s.SetRate(audit.EventGapExplained, 0.5)
	assert.True(t, s.ShouldSample(audit.EventGapExplained))
	s.draw = func() float64 { return 0.6 }
	assert.False(t, s.ShouldSample(audit.EventGapExplained))
}
