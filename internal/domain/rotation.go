package domain

import "time"

// ApplyRotationIfNeeded is the scheduled tick. It advances the selection by
// as many positions as whole intervals elapsed since the anchor, so a host
// that slept through three intervals moves three quotes forward in one tick.
// The new anchor is the last elapsed interval boundary, not now, which keeps
// windows from drifting under irregular ticks.
//
// A state without an anchor gets one at now and is not advanced.
//
// changed reports whether the result differs structurally from the input
// as given, before normalization.
func ApplyRotationIfNeeded(state RotationState, now time.Time) (RotationState, bool) {
	next := state.Normalize()

	if len(next.Quotes) == 0 {
		return next, !next.Equal(state)
	}

	interval := next.IntervalSeconds()
	if interval <= 0 {
		return next, !next.Equal(state)
	}

	if next.LastRotationAt == nil {
		next.LastRotationAt = timePtr(now)
		return next, !next.Equal(state)
	}

	anchor := *next.LastRotationAt

	// Whole seconds, not a Duration: anchors centuries off must not saturate.
	elapsed := now.Unix() - anchor.Unix()
	if now.Nanosecond() < anchor.Nanosecond() {
		elapsed--
	}

	if elapsed < interval {
		return next, !next.Equal(state)
	}

	steps := max(elapsed/interval, 1)
	count := int64(len(next.Quotes))

	next.CurrentIndex = intPtr(int((int64(*next.CurrentIndex) + steps%count) % count))
	next.LastRotationAt = timePtr(time.Unix(anchor.Unix()+steps*interval, int64(anchor.Nanosecond())).In(anchor.Location()))

	return next, !next.Equal(state)
}

// ForceNextQuote is the manual advance: exactly one position forward and the
// anchor moved to now, regardless of time left in the current window.
func ForceNextQuote(state RotationState, now time.Time) (RotationState, bool) {
	next := state.Normalize()

	if len(next.Quotes) == 0 {
		return next, !next.Equal(state)
	}

	current := -1
	if next.CurrentIndex != nil {
		current = *next.CurrentIndex
	}

	next.CurrentIndex = intPtr((current + 1) % len(next.Quotes))
	next.LastRotationAt = timePtr(now)

	return next, !next.Equal(state)
}
