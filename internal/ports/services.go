// Package ports defines the contracts between the rotation core and the
// infrastructure around it. Adapters implement these interfaces; the
// application layer only ever sees the interfaces.
//
// Conventions:
//   - context.Context is the first parameter of anything that may block
//   - values crossing a port are domain types, never wire or driver types
//   - errors are domain errors (domain.ErrNotFound, domain.ErrUnavailable)
package ports

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// StateRepository is the persistence gateway for the single rotation state.
//
// Load never fails: a missing, unreadable or undecodable record yields
// domain.EmptyState(). Loaded states are normalized.
type StateRepository interface {
	Load(ctx context.Context) domain.RotationState

	// LoadStrict is Load without the fallback: an unreadable or undecodable
	// record is returned as an error. A missing record is still the empty
	// state.
	LoadStrict(ctx context.Context) (domain.RotationState, error)

	// Save normalizes and stores state. A state that cannot be encoded
	// removes the stored record instead, so the next Load starts empty.
	// Returns domain.ErrUnavailable when the backing store rejects the write.
	Save(ctx context.Context, state domain.RotationState) error
}

// BlobStore is a string-keyed byte store. It backs the StateRepository.
type BlobStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}

// BlobWatcher is implemented by blob stores that can report changes made
// outside this process.
type BlobWatcher interface {
	// Watch calls fn after key is changed externally, until ctx is done.
	Watch(ctx context.Context, key string, fn func()) error
}

// Clock supplies wall-clock time.
type Clock interface {
	Now() time.Time
}

// RandomSource supplies the launch-time random selection.
type RandomSource interface {
	// IntN returns a value in [0, n). n is always positive.
	IntN(n int) int
}

// EventPublisher delivers notifications about state changes to
// presentation clients.
type EventPublisher interface {
	// Publish sends an event to the configured destination.
	// Returns domain.ErrUnavailable if the messaging system is unreachable.
	Publish(ctx context.Context, event Event) error
}

// Event is a notification that can be published.
type Event interface {
	// EventType returns the type identifier used for routing.
	EventType() string

	// Payload returns the event data for serialization.
	Payload() any
}
