package domain

import (
	"slices"
	"strconv"
	"strings"
	"time"
)

// AddQuote appends text to the list. Adding the first quote selects it and
// starts the rotation window at now.
func AddQuote(state RotationState, text string, now time.Time) (RotationState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return state, NewValidationError("text", "cannot be empty")
	}

	next := state.Normalize()
	next.Quotes = append(next.Quotes, text)

	if next.CurrentIndex == nil {
		next.CurrentIndex = intPtr(0)
		next.LastRotationAt = timePtr(now)
	}

	return next.Normalize(), nil
}

// EditQuote replaces the quote at index and restarts the rotation window.
func EditQuote(state RotationState, index int, text string, now time.Time) (RotationState, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return state, NewValidationError("text", "cannot be empty")
	}

	next := state.Normalize()
	if index < 0 || index >= len(next.Quotes) {
		return state, NewNotFoundError("quote", strconv.Itoa(index))
	}

	next.Quotes[index] = text
	next.LastRotationAt = timePtr(now)

	return next.Normalize(), nil
}

// RemoveQuote deletes the quote at index. The selection keeps pointing at the
// same quote when an earlier one is removed; removing the selected quote
// selects its successor, or the new last quote when it was last.
func RemoveQuote(state RotationState, index int, now time.Time) (RotationState, error) {
	next := state.Normalize()
	if index < 0 || index >= len(next.Quotes) {
		return state, NewNotFoundError("quote", strconv.Itoa(index))
	}

	next.Quotes = slices.Delete(next.Quotes, index, index+1)

	if len(next.Quotes) == 0 {
		next.CurrentIndex = nil
		next.LastRotationAt = nil

		return next.Normalize(), nil
	}

	current := *next.CurrentIndex
	switch {
	case index < current:
		current--
	case index == current:
		current = min(current, len(next.Quotes)-1)
	}

	next.CurrentIndex = intPtr(current)
	next.LastRotationAt = timePtr(now)

	return next.Normalize(), nil
}

// SetRotationInterval changes the interval and restarts the rotation window.
// A request that clamps to 0h0m is rejected instead of silently becoming the
// default.
func SetRotationInterval(state RotationState, hours, minutes int, now time.Time) (RotationState, error) {
	hours, minutes = ClampInterval(hours, minutes)
	if hours == 0 && minutes == 0 {
		return state, NewValidationError("interval", "must be greater than zero")
	}

	next := state.Normalize()
	next.RotationHours = hours
	next.RotationMinutes = minutes

	if len(next.Quotes) > 0 {
		next.LastRotationAt = timePtr(now)
	}

	return next.Normalize(), nil
}

// SetDisplayStyle replaces the display style.
func SetDisplayStyle(state RotationState, style DisplayStyle) (RotationState, error) {
	if err := style.Validate(); err != nil {
		return state, err
	}

	next := state.Normalize()
	next.Style = style

	return next.Normalize(), nil
}
