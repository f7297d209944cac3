package domain

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_NoQuotes(t *testing.T) {
	v := Render(EmptyState())

	assert.False(t, v.HasQuote)
	assert.False(t, v.CanAdvance)
	assert.Equal(t, NoQuotesTitle, v.Title)
	assert.Equal(t, NoQuotesDetail, v.Detail)
	assert.Nil(t, v.Index)
	assert.Nil(t, v.NextRotationAt)
}

func TestRender_CurrentQuote(t *testing.T) {
	state := seeded("A", "B")
	state.CurrentIndex = intPtr(1)
	state.RotationMinutes = 30

	v := Render(state)

	assert.True(t, v.HasQuote)
	assert.True(t, v.CanAdvance)
	assert.Equal(t, "B", v.Quote)
	assert.Equal(t, "B", v.Title)
	assert.Equal(t, "B", v.Detail)
	assert.Equal(t, 2, v.QuoteCount)
	require.NotNil(t, v.NextRotationAt)
	assert.True(t, v.NextRotationAt.Equal(t0.Add(90*time.Minute)))
}

func TestRender_NormalizesFirst(t *testing.T) {
	state := seeded("A", "B", "C")
	state.CurrentIndex = intPtr(4)

	v := Render(state)

	require.NotNil(t, v.Index)
	assert.Equal(t, 1, *v.Index)
	assert.Equal(t, "B", v.Quote)
}

func TestTruncateTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "short unchanged", input: "Be kind", expected: "Be kind"},
		{name: "exact length unchanged", input: strings.Repeat("a", MaxTitleRunes), expected: strings.Repeat("a", MaxTitleRunes)},
		{name: "long truncated", input: strings.Repeat("a", MaxTitleRunes+1), expected: strings.Repeat("a", MaxTitleRunes) + "…"},
		{name: "multibyte counted as runes", input: strings.Repeat("é", 60), expected: strings.Repeat("é", MaxTitleRunes) + "…"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TruncateTitle(tt.input)

			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
		})
	}
}
