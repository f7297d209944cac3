package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// DefaultTickInterval is how often the rotation check runs. The interval
// only bounds how late a rotation can be; catch-up keeps the schedule
// itself exact.
const DefaultTickInterval = time.Minute

// ErrTickerNotStarted is returned by TriggerNow before Start.
var ErrTickerNotStarted = errors.New("ticker not started")

// Ticking is what the Ticker drives. *Rotator implements it.
type Ticking interface {
	Tick(ctx context.Context) (domain.View, bool, error)
}

// Ticker runs Tick on a fixed period and on demand.
type Ticker struct {
	target        Ticking
	clock         ports.Clock
	interval      time.Duration
	wakeThreshold time.Duration
	logger        *slog.Logger

	scheduler gocron.Scheduler

	mu      sync.Mutex
	job     gocron.Job
	lastRun time.Time
	onWake  func(gap time.Duration)
}

// TickerConfig configures NewTicker. Target is required.
type TickerConfig struct {
	Target   Ticking
	Clock    ports.Clock
	Interval time.Duration

	// WakeThreshold is the gap between runs above which the host is
	// assumed to have been asleep. Defaults to twice Interval.
	WakeThreshold time.Duration

	// OnWake is called, before the tick, when a wake is detected.
	OnWake func(gap time.Duration)

	Logger *slog.Logger
}

// NewTicker creates a stopped Ticker.
func NewTicker(cfg TickerConfig) (*Ticker, error) {
	if cfg.Target == nil {
		return nil, errors.New("ticker target is required")
	}

	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create gocron scheduler: %w", err)
	}

	t := &Ticker{
		target:        cfg.Target,
		clock:         cfg.Clock,
		interval:      cfg.Interval,
		wakeThreshold: cfg.WakeThreshold,
		onWake:        cfg.OnWake,
		logger:        cfg.Logger,
		scheduler:     s,
	}

	if t.clock == nil {
		t.clock = SystemClock{}
	}

	if t.interval <= 0 {
		t.interval = DefaultTickInterval
	}

	if t.wakeThreshold <= 0 {
		t.wakeThreshold = 2 * t.interval
	}

	if t.logger == nil {
		t.logger = slog.Default()
	}

	t.logger = t.logger.With(slog.String("component", "app.Ticker"))

	return t, nil
}

// Start schedules the periodic job. Ticks use ctx and stop when it is done.
func (t *Ticker) Start(ctx context.Context) error {
	job, err := t.scheduler.NewJob(
		gocron.DurationJob(t.interval),
		gocron.NewTask(t.run, ctx),
		gocron.WithName("rotation-tick"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create rotation tick job: %w", err)
	}

	t.mu.Lock()
	t.job = job
	t.lastRun = wallNow(t.clock)
	t.mu.Unlock()

	t.logger.InfoContext(ctx, "starting ticker", slog.Duration("interval", t.interval))
	t.scheduler.Start()

	return nil
}

// TriggerNow runs a tick immediately, outside the schedule. Used after
// system wake and for manual "check now" requests.
func (t *Ticker) TriggerNow() error {
	t.mu.Lock()
	job := t.job
	t.mu.Unlock()

	if job == nil {
		return ErrTickerNotStarted
	}

	return job.RunNow()
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (t *Ticker) Stop() error {
	t.logger.Info("stopping ticker")
	return t.scheduler.Shutdown()
}

func (t *Ticker) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	now := wallNow(t.clock)

	t.mu.Lock()
	gap := now.Sub(t.lastRun)
	t.lastRun = now
	t.mu.Unlock()

	if gap > t.wakeThreshold {
		t.logger.InfoContext(ctx, "wake detected, catching up", slog.Duration("gap", gap))

		if t.onWake != nil {
			t.onWake(gap)
		}
	}

	view, changed, err := t.target.Tick(ctx)
	if err != nil {
		t.logger.ErrorContext(ctx, "rotation tick failed", slog.Any("error", err))
		return
	}

	if changed {
		t.logger.DebugContext(ctx, "rotation tick changed state", slog.String("title", view.Title))
	}
}

// wallNow drops the monotonic reading. The monotonic clock does not advance
// while the machine sleeps, so only wall time reveals a suspend.
func wallNow(c ports.Clock) time.Time {
	return c.Now().Round(0)
}
