package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/events"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/http"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/storage"
	"github.com/jsamuelsen/quote-rotator/internal/app"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/platform/metrics"
	"github.com/jsamuelsen/quote-rotator/internal/platform/telemetry"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

// ServeCmd runs the daemon.
type ServeCmd struct{}

// Run wires the daemon and blocks until SIGINT or SIGTERM.
//
// While running, SIGUSR1 forces an immediate rotation check and SIGHUP
// rereads the stored state. With the file driver, edits made to the state
// file by another process are picked up automatically.
func (s *ServeCmd) Run(g *Globals) (err error) {
	env, err := loadEnvironment(g, "")
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := env.Close(); closeErr != nil {
			env.logger.Error("closing storage", slog.Any("error", closeErr))
		}
	}()

	cfg, logger := env.cfg, env.logger

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting daemon",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
		slog.String("storage", cfg.Storage.Driver),
	)

	// Telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      Version,
		Environment:  cfg.App.Environment,
		SamplingRate: cfg.Telemetry.SamplingRate,
		Insecure:     cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		if shutdownErr := telProvider.Shutdown(context.Background()); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	healthRegistry := ports.NewHealthRegistry()
	if err := healthRegistry.Register(env.store); err != nil {
		return fmt.Errorf("registering storage health check: %w", err)
	}

	recorder := metrics.NewPrometheusRecorder(prometheus.DefaultRegisterer)

	// Publishers: the log, NATS when configured, and websocket subscribers.
	publishers := events.Fanout{events.NewLogPublisher(logger)}

	if cfg.Events.Driver == "nats" {
		natsPublisher, err := events.NewNATSPublisher(events.NATSConfig{
			URL:     cfg.Events.NATSURL,
			Subject: cfg.Events.Subject,
			Name:    cfg.App.Name,
			Logger:  logger,
		})
		if err != nil {
			return err
		}
		defer natsPublisher.Close()

		if err := healthRegistry.Register(natsPublisher); err != nil {
			return fmt.Errorf("registering nats health check: %w", err)
		}

		publishers = append(publishers, natsPublisher)
	}

	var rotator *app.Rotator

	hub := handlers.NewStreamHub(handlers.StreamHubConfig{
		Source:         handlers.ViewSourceFunc(func() domain.View { return rotator.View() }),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         logger,
	})
	defer hub.Close()

	publishers = append(publishers, hub)

	rotator = app.NewRotator(app.RotatorConfig{
		Repository:        env.gateway(recorder),
		Publisher:         publishers,
		Recorder:          recorder,
		Tracer:            telProvider.Tracer(),
		Logger:            logger,
		RandomizeOnLaunch: cfg.Rotation.RandomizeOnLaunch,
	})

	view, err := rotator.Launch(ctx)
	if err != nil {
		return fmt.Errorf("launching rotation: %w", err)
	}

	logger.Info("rotation launched", slog.String("title", view.Title), slog.Int("quotes", view.QuoteCount))

	if err := healthRegistry.Register(&app.RotationCheck{Rotator: rotator, Grace: 3 * cfg.Rotation.TickInterval}); err != nil {
		return fmt.Errorf("registering rotation health check: %w", err)
	}

	ticker, err := app.NewTicker(app.TickerConfig{
		Target:        rotator,
		Interval:      cfg.Rotation.TickInterval,
		WakeThreshold: cfg.Rotation.WakeThreshold,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("creating ticker: %w", err)
	}

	server := http.New(&cfg.Server, logger)
	http.SetupRouter(server.Engine(), http.RouterConfig{
		Logger:        logger,
		ServiceName:   cfg.Telemetry.ServiceName,
		Tracing:       telProvider.Enabled(),
		HealthHandler: handlers.NewHealthHandler(healthRegistry, handlers.NewBuildInfo(Version, Commit, BuildTime), handlers.WithGatherer(prometheus.DefaultGatherer)),
		QuoteHandler:  handlers.NewQuoteHandler(rotator),
		StreamHub:     hub,
		Timeout:       cfg.Server.RequestTimeout,
	})

	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	if err := ticker.Start(ctx); err != nil {
		return err
	}

	group, gctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		for err := range serverErr {
			return err
		}

		return nil
	})

	if fileStore, ok := env.store.(*storage.FileStore); ok {
		group.Go(func() error {
			return fileStore.Watch(gctx, cfg.Storage.Key, func() {
				if _, err := rotator.Reload(gctx); err != nil {
					logger.Error("reloading state failed", slog.Any("error", err))
				}
			})
		})
	}

	group.Go(func() error {
		handleControlSignals(gctx, logger, ticker, rotator)
		return nil
	})

	<-gctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	logger.Info("initiating graceful shutdown", slog.Duration("timeout", cfg.Server.ShutdownTimeout))

	// Stop accepting requests before the ticker, so no request races a
	// stopped scheduler.
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", slog.Any("error", err))
	}

	if err := ticker.Stop(); err != nil {
		logger.Error("ticker shutdown", slog.Any("error", err))
	}

	if err := group.Wait(); err != nil {
		return err
	}

	logger.Info("shutdown complete")

	return nil
}

// handleControlSignals serves SIGUSR1 and SIGHUP until ctx is done.
func handleControlSignals(ctx context.Context, logger *slog.Logger, ticker *app.Ticker, rotator *app.Rotator) {
	if len(controlSignals) == 0 {
		<-ctx.Done()
		return
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, controlSignals...)
	defer signal.Stop(sigs)

	for {
		select {
		case <-ctx.Done():
			return

		case sig := <-sigs:
			logger.Info("received control signal", slog.String("signal", sig.String()))

			switch sig {
			case signalReload:
				if _, err := rotator.Reload(ctx); err != nil {
					logger.Error("reloading state failed", slog.Any("error", err))
				}
			default:
				if err := ticker.TriggerNow(); err != nil {
					logger.Error("triggering tick failed", slog.Any("error", err))
				}
			}
		}
	}
}
