package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
)

// Every change to the owned state runs the same pipeline:
//
//  1. VALIDATE - reject bad input before the state is touched
//  2. APPLY    - compute the next state with a pure domain transition
//  3. VERIFY   - check the result is already normalized
//  4. PERSIST  - hand the result to the state repository
//  5. PUBLISH  - adopt the result and notify subscribers
//
// An unchanged result stops after VERIFY. A persist failure aborts the
// mutation only in strict mode; otherwise the state is adopted in memory and
// the next successful save catches the store up.

// Step names a pipeline stage.
type Step string

const (
	StepValidate Step = "validate"
	StepApply    Step = "apply"
	StepVerify   Step = "verify"
	StepPersist  Step = "persist"
	StepPublish  Step = "publish"
)

// ErrInvariant is returned when a transition produced a state that is not
// normalized. It indicates a bug, not bad input.
var ErrInvariant = errors.New("state invariant violated")

// ExecutionError records the operation and pipeline step that failed.
type ExecutionError struct {
	Op    string
	Step  Step
	Cause error
}

// Error implements the error interface.
func (e *ExecutionError) Error() string {
	return fmt.Sprintf("%s: %s failed: %v", e.Op, e.Step, e.Cause)
}

// Unwrap exposes the cause, so domain.IsValidation and friends see through.
func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// GetExecutionStep extracts the failing step from err.
func GetExecutionStep(err error) (Step, bool) {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Step, true
	}

	return "", false
}

// mutation describes one state change.
type mutation struct {
	name    string
	trigger metrics.Trigger

	// validate runs before the state is read. Optional.
	validate func() error

	// apply returns the next state and whether it differs from current.
	apply func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error)

	// skipPersist adopts the result without writing it back, for states
	// that were just read from the store.
	skipPersist bool
}

// outcome is what a mutation did.
type outcome struct {
	before  domain.RotationState
	after   domain.RotationState
	changed bool
	at      time.Time
}

// execute runs m against the owned state. Callers hold r.mu.
func (r *Rotator) execute(ctx context.Context, m mutation) (outcome, error) {
	ctx, span := r.tracer.Start(ctx, "Rotator."+m.name,
		trace.WithAttributes(attribute.String("rotation.trigger", string(m.trigger))),
	)
	defer span.End()

	logger := logging.FromContextOr(ctx, r.logger).With(slog.String("operation", m.name))
	start := time.Now()

	fail := func(step Step, err error) (outcome, error) {
		execErr := &ExecutionError{Op: m.name, Step: step, Cause: err}

		span.RecordError(execErr)
		span.SetStatus(codes.Error, execErr.Error())

		level := slog.LevelWarn
		if step == StepVerify || step == StepPersist {
			level = slog.LevelError
		}

		logger.Log(ctx, level, "operation failed", slog.String("step", string(step)), slog.Any("error", err))

		return outcome{}, execErr
	}

	// A request that timed out while waiting for the lock changes nothing.
	if err := ctx.Err(); err != nil {
		return fail(StepValidate, err)
	}

	if m.validate != nil {
		if err := m.validate(); err != nil {
			return fail(StepValidate, err)
		}
	}

	out := outcome{before: r.state, at: r.clock.Now()}

	next, changed, err := m.apply(r.state, out.at)
	if err != nil {
		return fail(StepApply, err)
	}

	if err := verify(next); err != nil {
		return fail(StepVerify, err)
	}

	out.after = next
	out.changed = changed

	span.SetAttributes(
		attribute.Bool("rotation.changed", changed),
		attribute.Int("rotation.quotes", len(next.Quotes)),
	)

	if !changed {
		logger.DebugContext(ctx, "operation completed without change", slog.Duration("duration", time.Since(start)))
		return out, nil
	}

	if !m.skipPersist {
		if err := r.repo.Save(ctx, next); err != nil {
			if r.strict {
				return fail(StepPersist, err)
			}

			span.RecordError(err)
			logger.ErrorContext(ctx, "persisting state failed, keeping it in memory", slog.Any("error", err))
		}
	}

	r.state = next
	r.recordMetrics(m.trigger, out)

	if err := r.publisher.Publish(ctx, newQuoteChanged(m.trigger, next, out.at)); err != nil {
		span.RecordError(err)
		logger.WarnContext(ctx, "publishing change failed", slog.String("step", string(StepPublish)), slog.Any("error", err))
	}

	logger.InfoContext(ctx, "operation completed",
		slog.Duration("duration", time.Since(start)),
		slog.Int("quotes", len(next.Quotes)),
		slog.Any("index", next.CurrentIndex),
	)

	return out, nil
}

// verify checks the normalization invariants hold for s.
func verify(s domain.RotationState) error {
	if !s.Equal(s.Normalize()) {
		return fmt.Errorf("%w: state is not normalized", ErrInvariant)
	}

	return nil
}

func (r *Rotator) recordMetrics(trigger metrics.Trigger, out outcome) {
	r.recorder.SetQuoteCount(len(out.after.Quotes))

	if quoteMoved(out.before, out.after) {
		r.recorder.IncRotation(trigger)
	}

	if trigger != metrics.TriggerScheduled || out.before.LastRotationAt == nil || out.after.LastRotationAt == nil {
		return
	}

	if interval := out.after.Interval(); interval > 0 {
		if steps := int(out.after.LastRotationAt.Sub(*out.before.LastRotationAt) / interval); steps > 0 {
			r.recorder.ObserveRotationSteps(steps)
		}
	}
}

func quoteMoved(before, after domain.RotationState) bool {
	b, bok := before.CurrentQuote()
	a, aok := after.CurrentQuote()

	if bok != aok || b != a {
		return true
	}

	return (before.CurrentIndex == nil) != (after.CurrentIndex == nil) ||
		(before.CurrentIndex != nil && *before.CurrentIndex != *after.CurrentIndex)
}
