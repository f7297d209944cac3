package app

import (
	"context"
	"fmt"
	"time"

	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// RotationCheck reports the daemon as degraded when a due rotation has not
// happened within Grace, which means the ticker has stalled.
type RotationCheck struct {
	Rotator *Rotator
	Clock   ports.Clock
	Grace   time.Duration
}

var _ ports.OptionalChecker = (*RotationCheck)(nil)

// Name implements ports.HealthChecker.
func (c *RotationCheck) Name() string { return "rotation" }

// Optional implements ports.OptionalChecker.
func (c *RotationCheck) Optional() bool { return true }

// Check implements ports.HealthChecker.
func (c *RotationCheck) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	next := c.Rotator.View().NextRotationAt
	if next == nil {
		return nil
	}

	clock := c.Clock
	if clock == nil {
		clock = SystemClock{}
	}

	if late := clock.Now().Sub(*next); late > c.Grace {
		return fmt.Errorf("rotation overdue by %s", late.Truncate(time.Second))
	}

	return nil
}
