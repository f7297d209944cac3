// Package statestore persists the rotation state as a single blob. It sits
// between the rotation core and a ports.BlobStore and owns the stored
// format.
package statestore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// DefaultKey names the stored blob.
const DefaultKey = "quote_rotator_state_v1"

// Gateway implements ports.StateRepository on top of a BlobStore.
type Gateway struct {
	store    ports.BlobStore
	key      string
	codec    Codec
	recorder metrics.Recorder
	logger   *slog.Logger
}

// GatewayConfig holds the gateway's collaborators. Only Store is required.
type GatewayConfig struct {
	Store    ports.BlobStore
	Key      string
	Codec    Codec
	Recorder metrics.Recorder
	Logger   *slog.Logger
}

// NewGateway creates a Gateway, filling unset fields with defaults.
func NewGateway(cfg GatewayConfig) *Gateway {
	g := &Gateway{
		store:    cfg.Store,
		key:      cfg.Key,
		codec:    cfg.Codec,
		recorder: cfg.Recorder,
		logger:   cfg.Logger,
	}

	if g.key == "" {
		g.key = DefaultKey
	}

	if g.codec == nil {
		g.codec = JSONCodec{}
	}

	if g.recorder == nil {
		g.recorder = metrics.NoopRecorder{}
	}

	if g.logger == nil {
		g.logger = slog.Default()
	}

	g.logger = g.logger.With(slog.String("component", "statestore.Gateway"), slog.String("key", g.key))

	return g
}

// Key returns the blob key the gateway reads and writes.
func (g *Gateway) Key() string { return g.key }

// Load returns the stored state, normalized. Any failure to read or decode
// yields the empty state; the cause is logged, never returned.
func (g *Gateway) Load(ctx context.Context) domain.RotationState {
	state, err := g.LoadStrict(ctx)
	if err == nil {
		return state
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		g.recorder.IncPersistFailure("decode")
		g.logger.WarnContext(ctx, "stored state is corrupt, starting empty",
			slog.Any("error", decodeErr.Err),
			slog.Int("bytes", decodeErr.Size),
		)
	} else {
		g.recorder.IncPersistFailure("load")
		g.logger.WarnContext(ctx, "reading stored state failed, starting empty", slog.Any("error", err))
	}

	return domain.EmptyState()
}

// LoadStrict returns the stored state, normalized, or the read or decode
// error. An absent key is the empty state.
func (g *Gateway) LoadStrict(ctx context.Context) (domain.RotationState, error) {
	data, err := g.store.Get(ctx, g.key)
	if err != nil {
		if domain.IsNotFound(err) {
			return domain.EmptyState(), nil
		}

		return domain.RotationState{}, fmt.Errorf("reading %s: %w", g.key, err)
	}

	state, err := g.codec.Decode(data)
	if err != nil {
		return domain.RotationState{}, &DecodeError{Key: g.key, Size: len(data), Err: err}
	}

	return state.Normalize(), nil
}

// DecodeError is a stored record that is not a valid state.
type DecodeError struct {
	Key  string
	Size int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s (%d bytes): %v", e.Key, e.Size, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Save normalizes and stores state. When encoding fails the stored blob is
// removed, so the next Load starts from the empty state instead of an older
// one; that case is not reported to the caller.
func (g *Gateway) Save(ctx context.Context, state domain.RotationState) error {
	normalized := state.Normalize()

	data, err := g.codec.Encode(normalized)
	if err != nil {
		g.recorder.IncPersistFailure("encode")
		g.logger.ErrorContext(ctx, "encoding state failed, clearing stored state", slog.Any("error", err))

		if delErr := g.store.Delete(ctx, g.key); delErr != nil {
			g.logger.ErrorContext(ctx, "clearing stored state failed", slog.Any("error", delErr))
		}

		return nil
	}

	if err := g.store.Set(ctx, g.key, data); err != nil {
		g.recorder.IncPersistFailure("save")

		return domain.NewUnavailableError("state store", err.Error())
	}

	g.logger.DebugContext(ctx, "state saved",
		slog.Int("quotes", len(normalized.Quotes)),
		slog.Int("bytes", len(data)),
	)

	return nil
}
