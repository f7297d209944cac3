package benchmark

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	httpAdapter "github.com/jsamuelsen/quote-rotator/internal/adapters/http"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/http/handlers"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/statestore"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/storage"
	"github.com/jsamuelsen/quote-rotator/internal/app"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
	"github.com/jsamuelsen/quote-rotator/internal/ports"
)

func init() {
	// Set Gin to release mode for accurate benchmarks
	gin.SetMode(gin.ReleaseMode)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func stateWithQuotes(n int) domain.RotationState {
	s := domain.EmptyState()
	for i := 0; i < n; i++ {
		s.Quotes = append(s.Quotes, fmt.Sprintf("quote number %d", i))
	}

	idx := 0
	anchor := time.Unix(1_700_000_000, 0)
	s.CurrentIndex = &idx
	s.LastRotationAt = &anchor

	return s
}

// BenchmarkApplyRotationIfNeeded measures the scheduled check, which runs
// every tick whether or not a rotation is due.
func BenchmarkApplyRotationIfNeeded(b *testing.B) {
	for _, size := range []int{1, 100, 1000} {
		b.Run(fmt.Sprintf("quotes=%d", size), func(b *testing.B) {
			state := stateWithQuotes(size)
			now := state.LastRotationAt.Add(25 * time.Hour)

			b.ReportAllocs()

			for i := 0; i < b.N; i++ {
				_, _ = domain.ApplyRotationIfNeeded(state, now)
			}
		})
	}
}

// BenchmarkGatewaySave measures encoding and writing the state per backend.
func BenchmarkGatewaySave(b *testing.B) {
	for _, driver := range []string{storage.DriverMemory, storage.DriverFile, storage.DriverSQLite} {
		b.Run(driver, func(b *testing.B) {
			store, err := storage.Open(driver, filepath.Join(b.TempDir(), "data"), discardLogger())
			if err != nil {
				b.Fatal(err)
			}
			defer store.Close()

			gateway := statestore.NewGateway(statestore.GatewayConfig{Store: store, Logger: discardLogger()})
			state := stateWithQuotes(200)
			ctx := context.Background()

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				if err := gateway.Save(ctx, state); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

// BenchmarkGetCurrentQuote measures the read path through the full
// middleware chain.
func BenchmarkGetCurrentQuote(b *testing.B) {
	gateway := statestore.NewGateway(statestore.GatewayConfig{Store: storage.NewMemoryStore(), Logger: discardLogger()})
	if err := gateway.Save(context.Background(), stateWithQuotes(50)); err != nil {
		b.Fatal(err)
	}

	rotator := app.NewRotator(app.RotatorConfig{Repository: gateway, Logger: discardLogger()})
	if _, err := rotator.Launch(context.Background()); err != nil {
		b.Fatal(err)
	}

	router := gin.New()
	httpAdapter.SetupRouter(router, httpAdapter.RouterConfig{
		Logger:        discardLogger(),
		ServiceName:   "quote-rotator",
		HealthHandler: handlers.NewHealthHandler(ports.NewHealthRegistry(), handlers.NewBuildInfo("1.0.0", "abc123", "2024-01-01T00:00:00Z")),
		QuoteHandler:  handlers.NewQuoteHandler(rotator),
	})

	for _, path := range []string{"/api/v1/quote", "/api/v1/quotes?limit=20", "/-/live"} {
		b.Run(path, func(b *testing.B) {
			req := httptest.NewRequest(http.MethodGet, path, http.NoBody)

			b.ReportAllocs()
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				w := httptest.NewRecorder()
				router.ServeHTTP(w, req)
			}
		})
	}
}

// BenchmarkNext measures a full mutation: validate, apply, persist, publish.
func BenchmarkNext(b *testing.B) {
	gateway := statestore.NewGateway(statestore.GatewayConfig{Store: storage.NewMemoryStore(), Logger: discardLogger()})
	if err := gateway.Save(context.Background(), stateWithQuotes(50)); err != nil {
		b.Fatal(err)
	}

	rotator := app.NewRotator(app.RotatorConfig{Repository: gateway, Logger: discardLogger()})
	ctx := context.Background()

	if _, err := rotator.Launch(ctx); err != nil {
		b.Fatal(err)
	}

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		if _, err := rotator.Next(ctx); err != nil {
			b.Fatal(err)
		}
	}
}
