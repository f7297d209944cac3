package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jsamuelsen/quote-rotator/internal/domain"
)

const (
	fileExt = ".json"

	// DefaultWatchDebounce coalesces the burst of events an editor produces
	// when saving a file.
	DefaultWatchDebounce = 500 * time.Millisecond
)

// FileStore keeps each blob in its own file under a directory. Writes go
// to a temporary file that is renamed over the target, so readers never
// observe a partial blob.
type FileStore struct {
	dir      string
	logger   *slog.Logger
	debounce time.Duration

	mu sync.RWMutex
	// written holds the last bytes this process wrote per key, so Watch can
	// skip events caused by its own writes.
	written map[string][]byte
}

// NewFileStore creates the directory if needed.
func NewFileStore(dir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve storage dir: %w", err)
	}

	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}

	return &FileStore{
		dir:      abs,
		logger:   logger.With(slog.String("component", "storage.file")),
		debounce: DefaultWatchDebounce,
		written:  make(map[string][]byte),
	}, nil
}

// Path returns the file backing key.
func (f *FileStore) Path(key string) string {
	return filepath.Join(f.dir, key+fileExt)
}

// Get reads the blob stored under key.
func (f *FileStore) Get(_ context.Context, key string) ([]byte, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, domain.NewNotFoundError("blob", key)
	}

	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	return data, nil
}

// Set atomically replaces the file for key.
func (f *FileStore) Set(_ context.Context, key string, value []byte) error {
	if err := validKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(f.dir, "."+key+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}

	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, f.Path(key)); err != nil {
		return fmt.Errorf("rename temp file: %w", err)
	}

	f.written[key] = bytes.Clone(value)

	return nil
}

// Delete removes the file for key.
func (f *FileStore) Delete(_ context.Context, key string) error {
	if err := validKey(key); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.written, key)

	if err := os.Remove(f.Path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}

	return nil
}

// Watch calls fn, debounced, whenever the file for key is created, written
// or replaced by another process. It blocks until ctx is done.
func (f *FileStore) Watch(ctx context.Context, key string, fn func()) error {
	if err := validKey(key); err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory; editors and our own Set replace the file by rename.
	if err := watcher.Add(f.dir); err != nil {
		return fmt.Errorf("watch storage dir %s: %w", f.dir, err)
	}

	f.logger.Info("watching state file", slog.String("path", f.Path(key)))

	target := filepath.Base(f.Path(key))

	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Base(event.Name) != target {
				continue
			}

			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}

			if timer != nil {
				timer.Stop()
			}

			timer = time.AfterFunc(f.debounce, func() {
				if ctx.Err() != nil || f.isOwnWrite(key) {
					return
				}

				f.logger.Debug("state file changed externally", slog.String("op", event.Op.String()))
				fn()
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			f.logger.Error("file watcher error", slog.Any("error", err))
		}
	}
}

func (f *FileStore) isOwnWrite(key string) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()

	last, ok := f.written[key]
	if !ok {
		return false
	}

	current, err := os.ReadFile(f.Path(key))
	if err != nil {
		return false
	}

	return bytes.Equal(last, current)
}

// Name implements ports.HealthChecker.
func (f *FileStore) Name() string { return "storage.file" }

// Check verifies the storage directory is still a writable directory.
func (f *FileStore) Check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(f.dir)
	if err != nil {
		return fmt.Errorf("stat storage dir: %w", err)
	}

	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", f.dir)
	}

	probe, err := os.CreateTemp(f.dir, ".health-*")
	if err != nil {
		return fmt.Errorf("storage dir not writable: %w", err)
	}

	_ = probe.Close()

	return os.Remove(probe.Name())
}

// Close is a no-op.
func (f *FileStore) Close() error { return nil }

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return domain.NewValidationErrorWithValue("key", "must be a plain file name", key)
	}

	return nil
}
