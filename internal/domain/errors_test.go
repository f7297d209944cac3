package domain

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors_AreDistinct(t *testing.T) {
	sentinels := []error{
		ErrNotFound,
		ErrValidation,
		ErrUnavailable,
	}

	for i, a := range sentinels {
		for j, b := range sentinels {
			if i != j {
				assert.NotErrorIs(t, a, b,
					"sentinels should be distinct: %v vs %v", a, b)
			}
		}
	}
}

func TestNotFoundError(t *testing.T) {
	tests := []struct {
		name        string
		entity      string
		id          string
		expectedMsg string
	}{
		{
			name:        "with entity and ID",
			entity:      "quote",
			id:          "3",
			expectedMsg: "quote 3 not found",
		},
		{
			name:        "with entity only",
			entity:      "state",
			id:          "",
			expectedMsg: "state not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewNotFoundError(tt.entity, tt.id)

			assert.Equal(t, tt.expectedMsg, err.Error())
			require.ErrorIs(t, err, ErrNotFound)

			var notFound *NotFoundError
			require.ErrorAs(t, err, &notFound)
			assert.Equal(t, tt.entity, notFound.Entity)
			assert.Equal(t, tt.id, notFound.ID)
		})
	}
}

func TestValidationError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		expectedMsg string
	}{
		{
			name:        "with field",
			err:         NewValidationError("text", "cannot be empty"),
			expectedMsg: "invalid text: cannot be empty",
		},
		{
			name:        "without field",
			err:         NewValidationError("", "interval must be positive"),
			expectedMsg: "interval must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedMsg, tt.err.Error())
			assert.True(t, IsValidation(tt.err))
			assert.False(t, IsNotFound(tt.err))
		})
	}
}

func TestValidationErrorWithValue(t *testing.T) {
	err := NewValidationErrorWithValue("fontPreset", "unknown preset", "comic")

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "comic", validationErr.Value)
	assert.Equal(t, "fontPreset", validationErr.Field)
	assert.Equal(t, "invalid fontPreset: unknown preset (got comic)", err.Error())
}

func TestUnavailableError(t *testing.T) {
	assert.Equal(t, "state store unavailable: disk full",
		NewUnavailableError("state store", "disk full").Error())
	assert.Equal(t, "nats unavailable",
		NewUnavailableError("nats", "").Error())
}

func TestIsHelpers_WrappedErrors(t *testing.T) {
	wrapped := fmt.Errorf("saving state: %w", NewUnavailableError("file", "read-only"))

	assert.True(t, IsUnavailable(wrapped))
	assert.False(t, IsValidation(wrapped))
	assert.False(t, IsNotFound(wrapped))
	assert.True(t, IsNotFound(fmt.Errorf("get: %w", ErrNotFound)))
}
