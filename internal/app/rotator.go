// Package app owns the single live rotation state and drives it: the
// Rotator serializes every operation on that state, and the Ticker calls it
// on a schedule.
//
// The domain package computes transitions; this package decides when to
// run them and hands the results to persistence and subscribers.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

const instrumentationName = "github.com/jsamuelsen/quote-rotator/internal/app"

// MaxQuoteRunes bounds the length of a single quote.
const MaxQuoteRunes = 2000

// Rotator is the single writer of the rotation state. All methods are safe
// for concurrent use; they run one at a time.
type Rotator struct {
	mu    sync.Mutex
	state domain.RotationState

	repo      ports.StateRepository
	clock     ports.Clock
	random    ports.RandomSource
	publisher ports.EventPublisher
	recorder  metrics.Recorder
	tracer    trace.Tracer
	logger    *slog.Logger

	strict    bool
	randomize bool
}

// RotatorConfig holds the Rotator's collaborators. Repository is required.
type RotatorConfig struct {
	Repository ports.StateRepository
	Clock      ports.Clock
	Random     ports.RandomSource
	Publisher  ports.EventPublisher
	Recorder   metrics.Recorder
	Tracer     trace.Tracer
	Logger     *slog.Logger

	// StrictPersistence fails a mutation whose result could not be saved
	// instead of keeping it in memory. One-shot CLI commands set it.
	StrictPersistence bool

	// RandomizeOnLaunch picks a random quote at Launch. When false, Launch
	// resumes the stored selection and catches up on missed intervals.
	RandomizeOnLaunch bool
}

// NewRotator creates a Rotator holding the empty state. Call Launch to
// adopt the stored one.
func NewRotator(cfg RotatorConfig) *Rotator {
	if cfg.Repository == nil {
		panic("app: RotatorConfig.Repository is required")
	}

	r := &Rotator{
		state:     domain.EmptyState(),
		repo:      cfg.Repository,
		clock:     cfg.Clock,
		random:    cfg.Random,
		publisher: cfg.Publisher,
		recorder:  cfg.Recorder,
		tracer:    cfg.Tracer,
		logger:    cfg.Logger,
		strict:    cfg.StrictPersistence,
		randomize: cfg.RandomizeOnLaunch,
	}

	if r.clock == nil {
		r.clock = SystemClock{}
	}

	if r.random == nil {
		r.random = MathRandom{}
	}

	if r.publisher == nil {
		r.publisher = nopPublisher{}
	}

	if r.recorder == nil {
		r.recorder = metrics.NoopRecorder{}
	}

	if r.tracer == nil {
		r.tracer = otel.Tracer(instrumentationName)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	r.logger = r.logger.With(slog.String("component", "app.Rotator"))

	return r
}

// Launch loads the stored state and prepares it for this process: a random
// quote when randomizing, otherwise the stored one advanced past any
// intervals that elapsed while the process was down.
func (r *Rotator) Launch(ctx context.Context) (domain.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.execute(ctx, mutation{
		name:    "launch",
		trigger: metrics.TriggerLaunch,
		apply: func(_ domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			stored := r.repo.Load(ctx)

			if r.randomize {
				return domain.LaunchState(stored, now, r.random.IntN), true, nil
			}

			next, _ := domain.ApplyRotationIfNeeded(stored, now)

			return next, true, nil
		},
	})
	if err != nil {
		return domain.View{}, err
	}

	return domain.Render(out.after), nil
}

// Tick runs the scheduled rotation check. changed reports whether the
// state moved.
func (r *Rotator) Tick(ctx context.Context) (domain.View, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.execute(ctx, mutation{
		name:    "tick",
		trigger: metrics.TriggerScheduled,
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, changed := domain.ApplyRotationIfNeeded(current, now)
			return next, changed, nil
		},
	})
	if err != nil {
		return domain.View{}, false, err
	}

	return domain.Render(out.after), out.changed, nil
}

// Next advances to the following quote and restarts the interval.
func (r *Rotator) Next(ctx context.Context) (domain.View, error) {
	return r.run(ctx, mutation{
		name:    "next",
		trigger: metrics.TriggerManual,
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, changed := domain.ForceNextQuote(current, now)
			return next, changed, nil
		},
	})
}

// AddQuote appends a quote.
func (r *Rotator) AddQuote(ctx context.Context, text string) (domain.View, error) {
	return r.run(ctx, mutation{
		name:     "add_quote",
		trigger:  metrics.TriggerEdit,
		validate: func() error { return validateQuoteText(text) },
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, err := domain.AddQuote(current, text, now)
			return next, err == nil, err
		},
	})
}

// ImportQuotes appends every non-blank entry of texts in order and returns
// how many were added.
func (r *Rotator) ImportQuotes(ctx context.Context, texts []string) (domain.View, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	added := 0

	out, err := r.execute(ctx, mutation{
		name:    "import_quotes",
		trigger: metrics.TriggerEdit,
		validate: func() error {
			for _, text := range texts {
				if err := validateQuoteText(text); err != nil {
					return err
				}
			}

			return nil
		},
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next := current

			for _, text := range texts {
				candidate, err := domain.AddQuote(next, text, now)
				if domain.IsValidation(err) {
					continue
				}

				if err != nil {
					return current, false, err
				}

				next = candidate
				added++
			}

			return next, added > 0, nil
		},
	})
	if err != nil {
		return domain.View{}, 0, err
	}

	return domain.Render(out.after), added, nil
}

// EditQuote replaces the quote at index.
func (r *Rotator) EditQuote(ctx context.Context, index int, text string) (domain.View, error) {
	return r.run(ctx, mutation{
		name:     "edit_quote",
		trigger:  metrics.TriggerEdit,
		validate: func() error { return validateQuoteText(text) },
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, err := domain.EditQuote(current, index, text, now)
			return next, err == nil, err
		},
	})
}

// RemoveQuote deletes the quote at index.
func (r *Rotator) RemoveQuote(ctx context.Context, index int) (domain.View, error) {
	return r.run(ctx, mutation{
		name:    "remove_quote",
		trigger: metrics.TriggerEdit,
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, err := domain.RemoveQuote(current, index, now)
			return next, err == nil, err
		},
	})
}

// SetInterval changes the rotation interval.
func (r *Rotator) SetInterval(ctx context.Context, hours, minutes int) (domain.View, error) {
	return r.run(ctx, mutation{
		name:    "set_interval",
		trigger: metrics.TriggerEdit,
		apply: func(current domain.RotationState, now time.Time) (domain.RotationState, bool, error) {
			next, err := domain.SetRotationInterval(current, hours, minutes, now)
			return next, err == nil, err
		},
	})
}

// SetStyle changes the display style.
func (r *Rotator) SetStyle(ctx context.Context, style domain.DisplayStyle) (domain.View, error) {
	return r.run(ctx, mutation{
		name:     "set_style",
		trigger:  metrics.TriggerEdit,
		validate: style.Validate,
		apply: func(current domain.RotationState, _ time.Time) (domain.RotationState, bool, error) {
			next, err := domain.SetDisplayStyle(current, style)
			return next, err == nil && !next.Equal(current), err
		},
	})
}

// Reload adopts the stored state, typically after the store was edited by
// another process. It does not write the state back. A record that cannot
// be read or decoded leaves the current state in place.
func (r *Rotator) Reload(ctx context.Context) (domain.View, error) {
	return r.run(ctx, mutation{
		name:        "reload",
		trigger:     metrics.TriggerReload,
		skipPersist: true,
		apply: func(current domain.RotationState, _ time.Time) (domain.RotationState, bool, error) {
			loaded, err := r.repo.LoadStrict(ctx)
			if err != nil {
				return current, false, fmt.Errorf("keeping current state: %w", err)
			}

			return loaded, !loaded.Equal(current), nil
		},
	})
}

// View renders the current state.
func (r *Rotator) View() domain.View {
	r.mu.Lock()
	defer r.mu.Unlock()

	return domain.Render(r.state)
}

// State returns a copy of the current state.
func (r *Rotator) State() domain.RotationState {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.state.Normalize()
}

// Quotes returns a copy of the quote list.
func (r *Rotator) Quotes() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return slices.Clone(r.state.Quotes)
}

func (r *Rotator) run(ctx context.Context, m mutation) (domain.View, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out, err := r.execute(ctx, m)
	if err != nil {
		return domain.View{}, err
	}

	return domain.Render(out.after), nil
}

func validateQuoteText(text string) error {
	if utf8.RuneCountInString(text) > MaxQuoteRunes {
		return domain.NewValidationError("text", "must be at most 2000 characters")
	}

	return nil
}
