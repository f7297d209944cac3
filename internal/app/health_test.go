package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

func TestRotationCheck(t *testing.T) {
	h := newHarness(t, seedState("A", "B"))
	_, err := h.rotator.Launch(context.Background())
	require.NoError(t, err)

	check := &RotationCheck{Rotator: h.rotator, Clock: h.clock, Grace: 3 * time.Minute}

	assert.Equal(t, "rotation", check.Name())
	assert.True(t, check.Optional())

	t.Run("not yet due", func(t *testing.T) {
		assert.NoError(t, check.Check(context.Background()))
	})

	t.Run("due within grace", func(t *testing.T) {
		h.clock.Advance(time.Hour + 2*time.Minute)
		assert.NoError(t, check.Check(context.Background()))
	})

	t.Run("overdue past grace", func(t *testing.T) {
		h.clock.Advance(5 * time.Minute)

		err := check.Check(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "rotation overdue by 7m0s")
	})

	t.Run("a tick clears it", func(t *testing.T) {
		_, _, err := h.rotator.Tick(context.Background())
		require.NoError(t, err)

		assert.NoError(t, check.Check(context.Background()))
	})
}

func TestRotationCheck_NoQuotes(t *testing.T) {
	h := newHarness(t, domain.EmptyState())
	_, err := h.rotator.Launch(context.Background())
	require.NoError(t, err)

	h.clock.Advance(100 * time.Hour)

	check := &RotationCheck{Rotator: h.rotator, Clock: h.clock}

	assert.NoError(t, check.Check(context.Background()))
}
