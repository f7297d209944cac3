package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func backends(t *testing.T) map[string]Store {
	t.Helper()

	fileStore, err := NewFileStore(t.TempDir(), discardLogger())
	require.NoError(t, err)

	sqliteStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)

	t.Cleanup(func() { _ = sqliteStore.Close() })

	return map[string]Store{
		DriverMemory: NewMemoryStore(),
		DriverFile:   fileStore,
		DriverSQLite: sqliteStore,
	}
}

func TestStores_Contract(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := store.Get(ctx, "state")
			require.Error(t, err)
			assert.True(t, domain.IsNotFound(err), "missing key must be not found")

			require.NoError(t, store.Set(ctx, "state", []byte(`{"quotes":["A"]}`)))

			got, err := store.Get(ctx, "state")
			require.NoError(t, err)
			assert.JSONEq(t, `{"quotes":["A"]}`, string(got))

			require.NoError(t, store.Set(ctx, "state", []byte(`{"quotes":["B"]}`)))

			got, err = store.Get(ctx, "state")
			require.NoError(t, err)
			assert.JSONEq(t, `{"quotes":["B"]}`, string(got))

			require.NoError(t, store.Delete(ctx, "state"))
			require.NoError(t, store.Delete(ctx, "state"), "deleting a missing key is not an error")

			_, err = store.Get(ctx, "state")
			assert.True(t, domain.IsNotFound(err))

			require.NoError(t, store.Check(ctx))
			assert.NotEmpty(t, store.Name())
		})
	}
}

func TestStores_KeysAreIndependent(t *testing.T) {
	for name, store := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			require.NoError(t, store.Set(ctx, "a", []byte("1")))
			require.NoError(t, store.Set(ctx, "b", []byte("2")))
			require.NoError(t, store.Delete(ctx, "a"))

			got, err := store.Get(ctx, "b")
			require.NoError(t, err)
			assert.Equal(t, []byte("2"), got)
		})
	}
}

func TestMemoryStore_CopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	value := []byte("abc")

	require.NoError(t, store.Set(ctx, "k", value))
	value[0] = 'x'

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("abc"), got)

	got[1] = 'y'
	again, _ := store.Get(ctx, "k")
	assert.Equal(t, []byte("abc"), again)
}

func TestSQLiteStore_InMemory(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("v")))

	got, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, "k", []byte("v")))
	require.NoError(t, first.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer second.Close()

	got, err := second.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestSQLiteStore_CheckFailsAfterClose(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	assert.Error(t, store.Check(context.Background()))
}

func TestFileStore_RejectsPathKeys(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), discardLogger())
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", "a/b", `a\b`} {
		err := store.Set(context.Background(), key, []byte("x"))

		assert.True(t, domain.IsValidation(err), "key %q", key)
	}
}

func TestFileStore_WritesLeaveNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFileStore(dir, discardLogger())
	require.NoError(t, err)

	for i := range 5 {
		require.NoError(t, store.Set(context.Background(), "state", fmt.Appendf(nil, "%d", i)))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestFileStore_WatchReportsExternalEdits(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), discardLogger())
	require.NoError(t, err)

	store.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	done := make(chan error, 1)
	go func() {
		done <- store.Watch(ctx, "state", func() { calls.Add(1) })
	}()

	n := 0
	require.Eventually(t, func() bool {
		n++
		_ = os.WriteFile(store.Path("state"), fmt.Appendf(nil, `{"quotes":["edit %d"]}`, n), 0o644)

		return calls.Load() > 0
	}, 5*time.Second, 50*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Watch did not return after cancel")
	}
}

func TestFileStore_WatchIgnoresOwnWrites(t *testing.T) {
	store, err := NewFileStore(t.TempDir(), discardLogger())
	require.NoError(t, err)

	store.debounce = 20 * time.Millisecond

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32

	go func() { _ = store.Watch(ctx, "state", func() { calls.Add(1) }) }()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, store.Set(ctx, "state", []byte(`{"quotes":["mine"]}`)))

	time.Sleep(200 * time.Millisecond)

	assert.Zero(t, calls.Load())
}

func TestOpen(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		wantErr bool
	}{
		{name: "memory", driver: DriverMemory},
		{name: "file", driver: DriverFile},
		{name: "sqlite", driver: DriverSQLite},
		{name: "unknown", driver: "redis", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := Open(tt.driver, t.TempDir(), discardLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			defer store.Close()

			assert.NoError(t, store.Check(context.Background()))
		})
	}
}
