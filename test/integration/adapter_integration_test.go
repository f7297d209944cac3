//go:build integration

package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-rotator/internal/adapters/statestore"
	"github.com/jsamuelsen/quote-rotator/internal/adapters/storage"
	"github.com/jsamuelsen/quote-rotator/internal/app"
	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

const stateKey = "quote_rotator_state_v1"

func openGateway(t *testing.T, driver, path string) (*statestore.Gateway, storage.Store) {
	t.Helper()

	store, err := storage.Open(driver, path, discardLogger())
	require.NoError(t, err)

	return statestore.NewGateway(statestore.GatewayConfig{Store: store, Key: stateKey, Logger: discardLogger()}), store
}

// TestStorageDrivers_SurviveReopen verifies that a state saved through each
// persistent driver loads back unchanged after the store is reopened.
func TestStorageDrivers_SurviveReopen(t *testing.T) {
	drivers := []string{storage.DriverFile, storage.DriverSQLite}

	for _, driver := range drivers {
		t.Run(driver, func(t *testing.T) {
			dir := t.TempDir()
			clock := &manualClock{now: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)}

			gateway, store := openGateway(t, driver, dir)
			rotator := app.NewRotator(app.RotatorConfig{Repository: gateway, Clock: clock, Logger: discardLogger()})

			ctx := context.Background()
			_, err := rotator.Launch(ctx)
			require.NoError(t, err)

			_, _, err = rotator.ImportQuotes(ctx, []string{"One", "Two", "Three"})
			require.NoError(t, err)
			_, err = rotator.SetInterval(ctx, 1, 30)
			require.NoError(t, err)
			_, err = rotator.Next(ctx)
			require.NoError(t, err)

			want := rotator.State()
			require.NoError(t, store.Close())

			reopened, store2 := openGateway(t, driver, dir)
			t.Cleanup(func() { _ = store2.Close() })

			got := reopened.Load(ctx)

			assert.True(t, want.Equal(got), "want %+v, got %+v", want, got)
			assert.Equal(t, 90*time.Minute, got.Interval())
		})
	}
}

// TestFileStore_CorruptStateStartsEmpty verifies that a damaged state file
// is ignored and the next save replaces it.
func TestFileStore_CorruptStateStartsEmpty(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := storage.NewFileStore(dir, discardLogger())
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fileStore.Path(stateKey), []byte(`{"quotes": [`), 0o600))

	gateway := statestore.NewGateway(statestore.GatewayConfig{Store: fileStore, Key: stateKey, Logger: discardLogger()})
	ctx := context.Background()

	assert.True(t, domain.EmptyState().Equal(gateway.Load(ctx)))

	state, err := domain.AddQuote(domain.EmptyState(), "Recovered", time.Now())
	require.NoError(t, err)
	require.NoError(t, gateway.Save(ctx, state))

	assert.Equal(t, []string{"Recovered"}, gateway.Load(ctx).Quotes)
}

// TestFileStore_WatchReloadsExternalEdits verifies that a state file written
// by another process reaches a running rotator through the watcher.
func TestFileStore_WatchReloadsExternalEdits(t *testing.T) {
	dir := t.TempDir()

	fileStore, err := storage.NewFileStore(dir, discardLogger())
	require.NoError(t, err)

	gateway := statestore.NewGateway(statestore.GatewayConfig{Store: fileStore, Key: stateKey, Logger: discardLogger()})
	rotator := app.NewRotator(app.RotatorConfig{Repository: gateway, Logger: discardLogger()})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	_, err = rotator.AddQuote(ctx, "Local")
	require.NoError(t, err)

	reloads := make(chan error, 16)
	watchDone := make(chan error, 1)
	go func() {
		watchDone <- fileStore.Watch(ctx, stateKey, func() {
			_, err := rotator.Reload(ctx)
			select {
			case reloads <- err:
			default:
			}
		})
	}()

	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)

	external := filepath.Join(dir, "external.tmp")
	require.NoError(t, os.WriteFile(external,
		[]byte(`{"quotes": ["Edited elsewhere", "Second"], "rotationHours": 2, "currentIndex": 1}`), 0o600))
	require.NoError(t, os.Rename(external, fileStore.Path(stateKey)))

	require.Eventually(t, func() bool {
		return rotator.View().Quote == "Second"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 2, rotator.View().RotationHours)

	// A half-saved file from an editor must not wipe the running state.
	require.NoError(t, os.WriteFile(external, []byte(`{"quotes": ["Edited`), 0o600))
	require.NoError(t, os.Rename(external, fileStore.Path(stateKey)))

	deadline := time.After(5 * time.Second)
	for failed := false; !failed; {
		select {
		case err := <-reloads:
			failed = err != nil
		case <-deadline:
			t.Fatal("corrupt write did not trigger a failed reload")
		}
	}

	assert.Equal(t, []string{"Edited elsewhere", "Second"}, rotator.Quotes())
	assert.Equal(t, "Second", rotator.View().Quote)

	cancel()
	require.NoError(t, <-watchDone)
}
