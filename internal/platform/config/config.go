// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8787

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultTickInterval is how often the daemon checks whether a rotation is due.
	DefaultTickInterval = time.Minute

	// DefaultStorageKey names the blob holding the rotation state.
	DefaultStorageKey = "quote_rotator_state_v1"

	// DefaultEventsSubject prefixes every NATS subject events are published on.
	DefaultEventsSubject = "quoterotator"

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28
)

// Config is the root configuration structure.
type Config struct {
	App       AppConfig       `koanf:"app"       validate:"required"`
	Server    ServerConfig    `koanf:"server"    validate:"required"`
	Log       LogConfig       `koanf:"log"       validate:"required"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
	Rotation  RotationConfig  `koanf:"rotation"  validate:"required"`
	Storage   StorageConfig   `koanf:"storage"   validate:"required"`
	Events    EventsConfig    `koanf:"events"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	RequestTimeout  time.Duration `koanf:"request_timeout"  validate:"required,min=100ms"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
	AllowedOrigins  []string      `koanf:"allowed_origins"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"        validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"    validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"     validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
	Insecure     bool    `koanf:"insecure"`
}

// RotationConfig controls the background ticker.
type RotationConfig struct {
	TickInterval time.Duration `koanf:"tick_interval" validate:"required,min=1s,max=1h"`

	// WakeThreshold of zero means twice TickInterval. A set value may not
	// be below TickInterval: every run would look like a wake.
	WakeThreshold     time.Duration `koanf:"wake_threshold"      validate:"omitempty,min=1s,gtefield=TickInterval"`
	RandomizeOnLaunch bool          `koanf:"randomize_on_launch"`
}

// StorageConfig selects the blob backend holding the state.
type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=memory file sqlite"`
	Path   string `koanf:"path"   validate:"required_unless=Driver memory"`
	Key    string `koanf:"key"    validate:"required"`
}

// EventsConfig configures change notifications.
type EventsConfig struct {
	Driver  string `koanf:"driver"   validate:"omitempty,oneof=log nats"`
	NATSURL string `koanf:"nats_url" validate:"required_if=Driver nats,omitempty,url"`
	Subject string `koanf:"subject"  validate:"required_if=Driver nats"`
}

// Addr returns the host:port the HTTP server listens on.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	return map[string]any{
		"app.name":        "quote-rotator",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "127.0.0.1",
		"server.read_timeout":     "15s",
		"server.write_timeout":    "15s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.request_timeout":  "5s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "pretty",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/quote-rotator.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "quote-rotator",
		"telemetry.sampling_rate": 1.0,
		"telemetry.insecure":      true,

		"rotation.tick_interval":       DefaultTickInterval.String(),
		"rotation.wake_threshold":      "0s",
		"rotation.randomize_on_launch": true,

		"storage.driver": "file",
		"storage.path":   "./data",
		"storage.key":    DefaultStorageKey,

		"events.driver":   "log",
		"events.nats_url": "",
		"events.subject":  DefaultEventsSubject,
	}
}

// Load loads configuration from the configs directory relative to the
// working directory. See LoadDir.
func Load(profile string) (*Config, error) {
	return LoadDir("configs", profile)
}

// LoadDir loads configuration with the following precedence (highest to lowest):
//  1. Environment variables (APP_ prefix)
//  2. Profile config file ({dir}/{profile}.yaml)
//  3. Base config file ({dir}/base.yaml)
//  4. Default values
func LoadDir(dir, profile string) (*Config, error) {
	k := koanf.New(".")

	// 1. Load defaults
	err := k.Load(confmap.Provider(defaults(), "."), nil)
	if err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	// 2. Load base config file if it exists
	err = loadFileIfExists(k, filepath.Join(dir, "base.yaml"))
	if err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}

	// 3. Load profile config file if it exists
	if profile != "" {
		profilePath := filepath.Join(dir, profile+".yaml")

		err := loadFileIfExists(k, profilePath)
		if err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	// 4. Load environment variables with APP_ prefix
	err = k.Load(env.Provider("APP_", ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	// Unmarshal into Config struct
	var cfg Config

	err = k.Unmarshal("", &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

// envKeys maps the flattened form of every known key (log_file_max_size)
// back to its dotted path, so keys containing underscores survive.
var envKeys = func() map[string]string {
	m := make(map[string]string)
	for key := range defaults() {
		m[strings.ReplaceAll(key, ".", "_")] = key
	}
	m["server_allowed_origins"] = "server.allowed_origins"

	return m
}()

// envKey converts APP_STORAGE_DRIVER to storage.driver.
func envKey(s string) string {
	flat := strings.ToLower(strings.TrimPrefix(s, "APP_"))
	if key, ok := envKeys[flat]; ok {
		return key
	}

	return strings.ReplaceAll(flat, "_", ".")
}

// loadFileIfExists loads a YAML config file if it exists.
// Returns nil if the file doesn't exist, error only for parse/read failures.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil // File doesn't exist, that's fine
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
