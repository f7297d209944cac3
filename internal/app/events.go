package app

import (
	"context"
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// EventQuoteChanged is published after every adopted state change.
const EventQuoteChanged = "quote.changed"

// QuoteChanged notifies presentation clients that the state changed.
type QuoteChanged struct {
	Trigger metrics.Trigger
	View    domain.View
	At      time.Time
}

func newQuoteChanged(trigger metrics.Trigger, state domain.RotationState, at time.Time) QuoteChanged {
	return QuoteChanged{Trigger: trigger, View: domain.Render(state), At: at}
}

// EventType implements ports.Event.
func (e QuoteChanged) EventType() string { return EventQuoteChanged }

// Payload implements ports.Event.
func (e QuoteChanged) Payload() any {
	return QuoteChangedPayload{
		Trigger:        string(e.Trigger),
		Quote:          e.View.Quote,
		HasQuote:       e.View.HasQuote,
		Title:          e.View.Title,
		Index:          e.View.Index,
		QuoteCount:     e.View.QuoteCount,
		CanAdvance:     e.View.CanAdvance,
		NextRotationAt: e.View.NextRotationAt,
		ChangedAt:      e.At.UTC(),
	}
}

// QuoteChangedPayload is the serialized body of a QuoteChanged event.
type QuoteChangedPayload struct {
	Trigger        string     `json:"trigger"`
	Quote          string     `json:"quote,omitempty"`
	HasQuote       bool       `json:"hasQuote"`
	Title          string     `json:"title"`
	Index          *int       `json:"index"`
	QuoteCount     int        `json:"quoteCount"`
	CanAdvance     bool       `json:"canAdvance"`
	NextRotationAt *time.Time `json:"nextRotationAt,omitempty"`
	ChangedAt      time.Time  `json:"changedAt"`
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, ports.Event) error { return nil }
