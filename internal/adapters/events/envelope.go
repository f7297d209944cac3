// Package events delivers state-change notifications to presentation
// clients: the process log, a NATS subject, or several sinks at once.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// Envelope is the serialized form of an event on the wire.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}

// NewEnvelope wraps event with a fresh identifier.
func NewEnvelope(event ports.Event, now time.Time) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       event.EventType(),
		OccurredAt: now.UTC(),
		Payload:    event.Payload(),
	}
}

// Marshal encodes the envelope as JSON.
func (e Envelope) Marshal() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal %s event: %w", e.Type, err)
	}

	return data, nil
}
