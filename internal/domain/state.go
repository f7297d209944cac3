package domain

import (
	"slices"
	"time"
)

// Rotation interval bounds and defaults.
const (
	DefaultRotationHours   = 6
	DefaultRotationMinutes = 0

	MinRotationHours   = 0
	MaxRotationHours   = 168
	MinRotationMinutes = 0
	MaxRotationMinutes = 59
)

// RotationState is the persisted record of the quote list, the rotation
// interval, the current selection and the anchor of the current interval
// window.
//
// Values are passed and returned by value; operations never mutate the
// receiver's slices in place. CurrentIndex and LastRotationAt are nil iff
// Quotes is empty once the state has been normalized.
type RotationState struct {
	Quotes          []string
	RotationHours   int
	RotationMinutes int
	Style           DisplayStyle
	CurrentIndex    *int
	LastRotationAt  *time.Time
}

// EmptyState returns the canonical state used at first launch and whenever
// stored data cannot be read.
func EmptyState() RotationState {
	return RotationState{
		Quotes:          []string{},
		RotationHours:   DefaultRotationHours,
		RotationMinutes: DefaultRotationMinutes,
		Style:           DefaultDisplayStyle(),
	}
}

// ClampInterval clamps hours and minutes independently to their ranges.
func ClampInterval(hours, minutes int) (int, int) {
	return min(max(hours, MinRotationHours), MaxRotationHours),
		min(max(minutes, MinRotationMinutes), MaxRotationMinutes)
}

// IntervalSeconds is the rotation interval collapsed to seconds.
func (s RotationState) IntervalSeconds() int64 {
	return int64(s.RotationHours)*3600 + int64(s.RotationMinutes)*60
}

// Interval is IntervalSeconds as a duration.
func (s RotationState) Interval() time.Duration {
	return time.Duration(s.IntervalSeconds()) * time.Second
}

// CurrentQuote returns the selected quote, if any.
func (s RotationState) CurrentQuote() (string, bool) {
	if s.CurrentIndex == nil {
		return "", false
	}

	i := *s.CurrentIndex
	if i < 0 || i >= len(s.Quotes) {
		return "", false
	}

	return s.Quotes[i], true
}

// Normalize repairs s so that every invariant of the data model holds:
//
//  1. hours and minutes are clamped to their ranges;
//  2. a 0h0m interval is replaced by the default interval;
//  3. an empty list has no index and no anchor;
//  4. a non-empty list has an index in [0, len), wrapped by modulo, or 0 when absent.
//
// Normalize is pure, total and idempotent.
func (s RotationState) Normalize() RotationState {
	out := s.clone()

	out.RotationHours, out.RotationMinutes = ClampInterval(out.RotationHours, out.RotationMinutes)
	if out.IntervalSeconds() == 0 {
		out.RotationHours = DefaultRotationHours
		out.RotationMinutes = DefaultRotationMinutes
	}

	out.Style = out.Style.Normalize()

	if len(out.Quotes) == 0 {
		out.Quotes = []string{}
		out.CurrentIndex = nil
		out.LastRotationAt = nil

		return out
	}

	index := 0
	if out.CurrentIndex != nil {
		index = wrapIndex(*out.CurrentIndex, len(out.Quotes))
	}

	out.CurrentIndex = &index

	return out
}

// Equal reports structural equality: list contents, interval, style, index
// and anchor. Timestamps compare by instant, not by location or monotonic
// reading.
func (s RotationState) Equal(o RotationState) bool {
	if !slices.Equal(s.Quotes, o.Quotes) ||
		s.RotationHours != o.RotationHours ||
		s.RotationMinutes != o.RotationMinutes ||
		s.Style != o.Style {
		return false
	}

	if (s.CurrentIndex == nil) != (o.CurrentIndex == nil) {
		return false
	}

	if s.CurrentIndex != nil && *s.CurrentIndex != *o.CurrentIndex {
		return false
	}

	if (s.LastRotationAt == nil) != (o.LastRotationAt == nil) {
		return false
	}

	return s.LastRotationAt == nil || s.LastRotationAt.Equal(*o.LastRotationAt)
}

// LaunchState prepares the state adopted at process start. The stored state
// is normalized; a non-empty list then gets a random selection drawn from
// intn over [0, len) and an anchor at now, so every restart shows a fresh
// quote. intn may return any integer; it is wrapped into range.
func LaunchState(stored RotationState, now time.Time, intn func(n int) int) RotationState {
	state := stored.Normalize()
	if len(state.Quotes) == 0 {
		return state
	}

	index := wrapIndex(intn(len(state.Quotes)), len(state.Quotes))
	state.CurrentIndex = &index
	state.LastRotationAt = timePtr(now)

	return state
}

// clone copies s deeply enough that edits on the copy never alias s.
func (s RotationState) clone() RotationState {
	out := s
	out.Quotes = slices.Clone(s.Quotes)

	if s.CurrentIndex != nil {
		i := *s.CurrentIndex
		out.CurrentIndex = &i
	}

	if s.LastRotationAt != nil {
		out.LastRotationAt = timePtr(*s.LastRotationAt)
	}

	return out
}

func wrapIndex(index, count int) int {
	if count <= 0 {
		return 0
	}

	return ((index % count) + count) % count
}

func intPtr(i int) *int {
	return &i
}

func timePtr(t time.Time) *time.Time {
	return &t
}
