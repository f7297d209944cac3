package events

import (
	"context"
	"errors"

	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// Fanout publishes every event to all of its publishers. A failing
// publisher does not stop delivery to the rest; the failures are joined.
type Fanout []ports.EventPublisher

// Publish implements ports.EventPublisher.
func (f Fanout) Publish(ctx context.Context, event ports.Event) error {
	var errs []error

	for _, p := range f {
		if p == nil {
			continue
		}

		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
