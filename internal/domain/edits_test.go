package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(quotes ...string) RotationState {
	return RotationState{
		Quotes:         quotes,
		RotationHours:  1,
		Style:          DefaultDisplayStyle(),
		CurrentIndex:   intPtr(0),
		LastRotationAt: at(0),
	}
}

func TestAddQuote(t *testing.T) {
	t.Run("first quote selects it and arms the window", func(t *testing.T) {
		now := t0.Add(time.Minute)

		s, err := AddQuote(EmptyState(), "  Stay hungry  ", now)

		require.NoError(t, err)
		assert.Equal(t, []string{"Stay hungry"}, s.Quotes)
		require.NotNil(t, s.CurrentIndex)
		assert.Equal(t, 0, *s.CurrentIndex)
		require.NotNil(t, s.LastRotationAt)
		assert.True(t, s.LastRotationAt.Equal(now))
	})

	t.Run("appending keeps selection and anchor", func(t *testing.T) {
		state := seeded("A", "B")
		state.CurrentIndex = intPtr(1)

		s, err := AddQuote(state, "C", t0.Add(time.Hour))

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, s.Quotes)
		assert.Equal(t, 1, *s.CurrentIndex)
		assert.True(t, s.LastRotationAt.Equal(t0))
	})

	t.Run("duplicates are allowed", func(t *testing.T) {
		s, err := AddQuote(seeded("A"), "A", t0)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "A"}, s.Quotes)
	})

	t.Run("blank text rejected", func(t *testing.T) {
		state := seeded("A")

		s, err := AddQuote(state, " \t\n", t0)

		require.Error(t, err)
		assert.True(t, IsValidation(err))
		assert.True(t, s.Equal(state))
	})

	t.Run("input slice not aliased", func(t *testing.T) {
		quotes := make([]string, 1, 4)
		quotes[0] = "A"
		state := seeded()
		state.Quotes = quotes

		_, err := AddQuote(state, "B", t0)

		require.NoError(t, err)
		assert.Equal(t, "", quotes[:2][1])
	})
}

func TestEditQuote(t *testing.T) {
	t.Run("replaces text and restarts window", func(t *testing.T) {
		now := t0.Add(20 * time.Minute)

		s, err := EditQuote(seeded("A", "B"), 1, "  Bee ", now)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "Bee"}, s.Quotes)
		assert.Equal(t, 0, *s.CurrentIndex)
		assert.True(t, s.LastRotationAt.Equal(now))
	})

	t.Run("out of range index", func(t *testing.T) {
		for _, idx := range []int{-1, 2, 100} {
			_, err := EditQuote(seeded("A", "B"), idx, "x", t0)

			require.Error(t, err)
			assert.True(t, IsNotFound(err), "index %d", idx)
		}
	})

	t.Run("blank text rejected", func(t *testing.T) {
		_, err := EditQuote(seeded("A"), 0, "", t0)

		assert.True(t, IsValidation(err))
	})
}

func TestRemoveQuote(t *testing.T) {
	tests := []struct {
		name          string
		quotes        []string
		current       int
		remove        int
		expected      []string
		expectedIndex int
	}{
		{name: "before selection shifts index down", quotes: []string{"A", "B", "C"}, current: 2, remove: 0, expected: []string{"B", "C"}, expectedIndex: 1},
		{name: "after selection keeps index", quotes: []string{"A", "B", "C"}, current: 0, remove: 2, expected: []string{"A", "B"}, expectedIndex: 0},
		{name: "selected middle selects successor", quotes: []string{"A", "B", "C"}, current: 1, remove: 1, expected: []string{"A", "C"}, expectedIndex: 1},
		{name: "selected last selects new last", quotes: []string{"A", "B", "C"}, current: 2, remove: 2, expected: []string{"A", "B"}, expectedIndex: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := seeded(tt.quotes...)
			state.CurrentIndex = intPtr(tt.current)
			now := t0.Add(time.Minute)

			s, err := RemoveQuote(state, tt.remove, now)

			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Quotes)
			require.NotNil(t, s.CurrentIndex)
			assert.Equal(t, tt.expectedIndex, *s.CurrentIndex)
			assert.True(t, s.LastRotationAt.Equal(now))
		})
	}

	t.Run("removing the only quote empties the state", func(t *testing.T) {
		s, err := RemoveQuote(seeded("A"), 0, t0)

		require.NoError(t, err)
		assert.Empty(t, s.Quotes)
		assert.NotNil(t, s.Quotes)
		assert.Nil(t, s.CurrentIndex)
		assert.Nil(t, s.LastRotationAt)
	})

	t.Run("out of range index", func(t *testing.T) {
		state := seeded("A")

		s, err := RemoveQuote(state, 1, t0)

		assert.True(t, IsNotFound(err))
		assert.True(t, s.Equal(state))
	})

	t.Run("input not mutated", func(t *testing.T) {
		state := seeded("A", "B", "C")

		_, err := RemoveQuote(state, 0, t0)

		require.NoError(t, err)
		assert.Equal(t, []string{"A", "B", "C"}, state.Quotes)
	})
}

func TestSetRotationInterval(t *testing.T) {
	t.Run("sets interval and restarts window", func(t *testing.T) {
		now := t0.Add(3 * time.Minute)

		s, err := SetRotationInterval(seeded("A"), 2, 15, now)

		require.NoError(t, err)
		assert.Equal(t, 2, s.RotationHours)
		assert.Equal(t, 15, s.RotationMinutes)
		assert.True(t, s.LastRotationAt.Equal(now))
	})

	t.Run("out of range values are clamped", func(t *testing.T) {
		s, err := SetRotationInterval(seeded("A"), 400, 90, t0)

		require.NoError(t, err)
		assert.Equal(t, MaxRotationHours, s.RotationHours)
		assert.Equal(t, MaxRotationMinutes, s.RotationMinutes)
	})

	t.Run("zero interval rejected", func(t *testing.T) {
		state := seeded("A")

		s, err := SetRotationInterval(state, 0, 0, t0)

		assert.True(t, IsValidation(err))
		assert.True(t, s.Equal(state))
	})

	t.Run("negative values clamp to zero and are rejected", func(t *testing.T) {
		_, err := SetRotationInterval(seeded("A"), -5, -5, t0)

		assert.True(t, IsValidation(err))
	})

	t.Run("empty list keeps no anchor", func(t *testing.T) {
		s, err := SetRotationInterval(EmptyState(), 0, 30, t0)

		require.NoError(t, err)
		assert.Equal(t, 30, s.RotationMinutes)
		assert.Nil(t, s.LastRotationAt)
	})
}

func TestSetDisplayStyle(t *testing.T) {
	t.Run("valid style applied", func(t *testing.T) {
		style := DisplayStyle{Font: FontSerif, TextSize: TextSizeLarge, Color: ColorIndigo, Bold: true}

		s, err := SetDisplayStyle(seeded("A"), style)

		require.NoError(t, err)
		assert.Equal(t, style, s.Style)
		assert.True(t, s.LastRotationAt.Equal(t0), "style changes never touch rotation")
	})

	t.Run("unknown presets rejected", func(t *testing.T) {
		tests := []struct {
			name  string
			style DisplayStyle
			field string
		}{
			{name: "font", style: DisplayStyle{Font: "comic", TextSize: TextSizeSmall, Color: ColorRed}, field: "font"},
			{name: "size", style: DisplayStyle{Font: FontSerif, TextSize: 14, Color: ColorRed}, field: "textSize"},
			{name: "color", style: DisplayStyle{Font: FontSerif, TextSize: TextSizeSmall, Color: "magenta"}, field: "color"},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := SetDisplayStyle(seeded("A"), tt.style)

				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, tt.field, verr.Field)
			})
		}
	})
}
