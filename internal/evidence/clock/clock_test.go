package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture(t *testing.T) {
	now := time.Date(2026, 2, 5, 9, 30, 0, 0, time.FixedZone("EST", -5*3600))

	t.Run("tracking active stamps UTC instant", func(t *testing.T) {
		ts := Capture(now, true)
		require.NotNil(t, ts)
		assert.Equal(t, time.UTC, ts.Location())
		assert.True(t, ts.Equal(now))
	})

	t.Run("tracking inactive leaves field absent", func(t *testing.T) {
		assert.Nil(t, Capture(now, false))
	})

	t.Run("captured value is a copy", func(t *testing.T) {
		a := Capture(now, true)
		b := Capture(now, true)
		*a = a.Add(time.Hour)
		assert.False(t, a.Equal(*b))
	})
}

func TestClocks(t *testing.T) {
	fixed := Fixed(time.Date(2026, 1, 1, 0, 0, 0, 0, time.FixedZone("X", 7200)))
	assert.Equal(t, time.UTC, fixed.Now().Location())
	assert.Equal(t, fixed.Now(), fixed.Now())

	assert.Equal(t, time.UTC, System{}.Now().Location())
}
