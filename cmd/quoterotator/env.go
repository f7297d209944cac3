package main

import (
	"fmt"
	"log/slog"
	"os"

	"golang.org/x/term"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/statestore"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/storage"
	"github.com/jsamuelsen/quote-rotator/internal/platform/config"
	"github.com/jsamuelsen/quote-rotator/internal/platform/logging"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
)

// environment is what every command needs: validated config, a logger and
// the open store.
type environment struct {
	cfg    *config.Config
	logger *slog.Logger
	store  storage.Store
}

// loadEnvironment loads config, sets up logging and opens the store.
// defaultLevel applies when neither --log-level nor the daemon config
// decide; one-shot commands pass "warn" to keep their stderr quiet.
func loadEnvironment(g *Globals, defaultLevel string) (*environment, error) {
	cfg, err := config.LoadDir(g.ConfigDir, g.Profile)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := cfg.Log.Level
	switch {
	case g.LogLevel != "":
		level = g.LogLevel
	case defaultLevel != "":
		level = defaultLevel
	}

	logger := logging.New(&logging.Config{
		Level:   level,
		Format:  logFormat(cfg.Log.Format),
		Service: cfg.App.Name,
		Version: Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	logging.SetDefault(logger)

	store, err := storage.Open(cfg.Storage.Driver, cfg.Storage.Path, logger)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}

	return &environment{cfg: cfg, logger: logger, store: store}, nil
}

// gateway returns the state repository over the environment's store.
func (e *environment) gateway(recorder metrics.Recorder) *statestore.Gateway {
	return statestore.NewGateway(statestore.GatewayConfig{
		Store:    e.store,
		Key:      e.cfg.Storage.Key,
		Recorder: recorder,
		Logger:   e.logger,
	})
}

func (e *environment) Close() error {
	if err := e.store.Close(); err != nil {
		return fmt.Errorf("closing storage: %w", err)
	}

	return nil
}

// logFormat downgrades the colored format when stderr is not a terminal,
// so redirected logs stay free of escape codes.
func logFormat(configured string) string {
	if configured == "pretty" && !term.IsTerminal(int(os.Stderr.Fd())) {
		return "text"
	}

	return configured
}
