package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/events"
	"github.com/jsamuelsen/quote-rotator/internal/app"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

// withRotator runs fn against a rotator launched over the stored state.
// One-shot commands resume the stored selection, catching up on missed
// intervals, and fail when a change cannot be saved. stored is the state
// as it was before the launch.
func withRotator(g *Globals, fn func(ctx context.Context, r *app.Rotator, stored domain.RotationState) error) (err error) {
	env, err := loadEnvironment(g, "warn")
	if err != nil {
		return err
	}

	defer func() {
		err = errors.Join(err, env.Close())
	}()

	ctx := context.Background()
	gateway := env.gateway(nil)
	stored := gateway.Load(ctx)

	r := app.NewRotator(app.RotatorConfig{
		Repository:        gateway,
		Publisher:         events.NewLogPublisher(env.logger),
		Logger:            env.logger,
		StrictPersistence: true,
	})

	if _, err := r.Launch(ctx); err != nil {
		return fmt.Errorf("loading state: %w", err)
	}

	return fn(ctx, r, stored)
}

// StatusCmd prints the current quote.
type StatusCmd struct{}

func (c *StatusCmd) Run(g *Globals) error {
	return withRotator(g, func(_ context.Context, r *app.Rotator, _ domain.RotationState) error {
		return newPrinter(g).view(r.View())
	})
}

// NextCmd advances to the following quote.
type NextCmd struct{}

func (c *NextCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		v, err := r.Next(ctx)
		if err != nil {
			return err
		}

		return newPrinter(g).view(v)
	})
}

// TickCmd applies a due rotation. Loading the state already catches up,
// so the result counts as changed when the selection moved since it was
// last saved.
type TickCmd struct{}

func (c *TickCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, stored domain.RotationState) error {
		v, changed, err := r.Tick(ctx)
		if err != nil {
			return err
		}

		moved := !ptrEqual(stored.CurrentIndex, r.State().CurrentIndex)

		return newPrinter(g).tick(v, changed || moved)
	})
}

func ptrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}

	return *a == *b
}

// ListCmd prints every quote with its index.
type ListCmd struct{}

func (c *ListCmd) Run(g *Globals) error {
	return withRotator(g, func(_ context.Context, r *app.Rotator, _ domain.RotationState) error {
		state := r.State()
		return newPrinter(g).quotes(state.Quotes, state.CurrentIndex)
	})
}

// AddCmd appends a quote.
type AddCmd struct {
	Text string `arg:"" help:"Quote text."`
}

func (c *AddCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		v, err := r.AddQuote(ctx, c.Text)
		if err != nil {
			return err
		}

		return newPrinter(g).view(v)
	})
}

// EditCmd replaces a quote.
type EditCmd struct {
	Index int    `arg:"" help:"Index as shown by list."`
	Text  string `arg:"" help:"New quote text."`
}

func (c *EditCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		v, err := r.EditQuote(ctx, c.Index, c.Text)
		if err != nil {
			return err
		}

		return newPrinter(g).view(v)
	})
}

// RemoveCmd deletes a quote.
type RemoveCmd struct {
	Index int `arg:"" help:"Index as shown by list."`
}

func (c *RemoveCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		v, err := r.RemoveQuote(ctx, c.Index)
		if err != nil {
			return err
		}

		return newPrinter(g).view(v)
	})
}

// IntervalCmd sets the rotation interval, or prints the settings when no
// argument is given.
type IntervalCmd struct {
	Hours   int `arg:"" optional:"" default:"-1" help:"Hours, 0 to 168."`
	Minutes int `arg:"" optional:"" help:"Minutes, 0 to 59."`
}

func (c *IntervalCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		if c.Hours == -1 {
			return newPrinter(g).settings(r.View())
		}

		if c.Hours < 0 || c.Hours > domain.MaxRotationHours || c.Minutes < 0 || c.Minutes > domain.MaxRotationMinutes {
			return domain.NewValidationError("interval", fmt.Sprintf("must be within 0-%dh and 0-%dm", domain.MaxRotationHours, domain.MaxRotationMinutes))
		}

		v, err := r.SetInterval(ctx, c.Hours, c.Minutes)
		if err != nil {
			return err
		}

		return newPrinter(g).settings(v)
	})
}

// StyleCmd changes the display style. Unset flags keep their current value.
type StyleCmd struct {
	Font    string `help:"system, rounded, monospaced or serif."`
	Size    int    `help:"Text size: 12, 13 or 15."`
	Color   string `help:"Preset color name such as label, teal or gray."`
	Bold    bool   `help:"Use bold text." xor:"weight"`
	Regular bool   `help:"Use regular weight text." xor:"weight"`
}

func (c *StyleCmd) Run(g *Globals) error {
	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		style := r.View().Style

		if c.Font != "" {
			style.Font = domain.FontPreset(c.Font)
		}

		if c.Size != 0 {
			style.TextSize = domain.TextSizePreset(c.Size)
		}

		if c.Color != "" {
			style.Color = domain.ColorPreset(c.Color)
		}

		switch {
		case c.Bold:
			style.Bold = true
		case c.Regular:
			style.Bold = false
		}

		v, err := r.SetStyle(ctx, style)
		if err != nil {
			return err
		}

		return newPrinter(g).settings(v)
	})
}

// ImportCmd appends quotes read from a file.
type ImportCmd struct {
	File string `arg:"" help:"YAML or JSON list of strings, or a text file with one quote per line. Use - for stdin."`
}

func (c *ImportCmd) Run(g *Globals) error {
	texts, err := readQuoteFile(c.File)
	if err != nil {
		return err
	}

	return withRotator(g, func(ctx context.Context, r *app.Rotator, _ domain.RotationState) error {
		v, added, err := r.ImportQuotes(ctx, texts)
		if err != nil {
			return err
		}

		return newPrinter(g).imported(v, added)
	})
}
