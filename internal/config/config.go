// Package config loads and validates application configuration.
//
// Values are layered with koanf: built-in defaults, then an optional YAML
// file, then environment variables. Later layers win.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // sync.timezone must resolve on hosts without zoneinfo

	"github.com/dustin/go-humanize"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// PathEnvVar overrides the config file location.
const PathEnvVar = "CONFIG_PATH"

// DefaultPath is read when PathEnvVar is unset and the file exists.
const DefaultPath = "wonderland.yaml"

// Config holds all configuration values of the device server, the hub and
// the CLI.
type Config struct {
	Server  ServerConfig  `koanf:"server"`
	Log     LogConfig     `koanf:"log"`
	Storage StorageConfig `koanf:"storage"`
	Hub     HubConfig     `koanf:"hub"`
	Sync    SyncConfig    `koanf:"sync"`
	Insight InsightConfig `koanf:"insight"`
	Admin   AdminConfig   `koanf:"admin"`
}

// ServerConfig configures the device HTTP API.
type ServerConfig struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string `koanf:"port"`

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string `koanf:"cors_origins"`

	// MaxBodyBytes caps request bodies. Accepts "1048576" or "1MiB".
	MaxBodyBytes string `koanf:"max_body_bytes"`
}

// LogConfig controls the minimum log level: debug, info, warn or error.
type LogConfig struct {
	Level string `koanf:"level"`
}

// StorageConfig locates the device's badger database. An empty DataDir
// keeps everything in memory.
type StorageConfig struct {
	DataDir string `koanf:"data_dir"`
}

// HubConfig configures the shared sync hub.
type HubConfig struct {
	Port string `koanf:"port"`

	// DatabaseURL is the Postgres connection string. Required by hub and migrate.
	DatabaseURL string `koanf:"database_url"`
}

// SyncConfig seeds the device's sync settings.
type SyncConfig struct {
	// URL is used when the device has no endpoint saved yet.
	URL     string        `koanf:"url"`
	Auto    bool          `koanf:"auto"`
	Timeout time.Duration `koanf:"timeout"`

	// Timezone is the IANA zone pulled timestamps are read in when they are
	// reduced to a calendar day. Defaults to "Asia/Tokyo".
	Timezone string `koanf:"timezone"`
}

// Location returns the loaded Timezone, or nil when it does not resolve.
// Call after Validate.
func (c SyncConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil
	}
	return loc
}

// InsightConfig configures the Gemini client.
type InsightConfig struct {
	APIKey        string        `koanf:"api_key"`
	Model         string        `koanf:"model"`
	Timeout       time.Duration `koanf:"timeout"`
	RatePerMinute int           `koanf:"rate_per_minute"`
}

// AdminConfig holds the shared secrets of the admin gate.
type AdminConfig struct {
	Password  string `koanf:"password"`
	DeletePIN string `koanf:"delete_pin"`
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Port:         "8080",
			CORSOrigins:  []string{"http://localhost:5173"},
			MaxBodyBytes: "1MiB",
		},
		Log:     LogConfig{Level: "info"},
		Storage: StorageConfig{DataDir: "data"},
		Hub:     HubConfig{Port: "8081"},
		Sync:    SyncConfig{Timeout: 15 * time.Second, Timezone: "Asia/Tokyo"},
		Insight: InsightConfig{
			Model:         "gemini-2.5-flash",
			Timeout:       60 * time.Second,
			RatePerMinute: 6,
		},
		Admin: AdminConfig{Password: "2025", DeletePIN: "0124"},
	}
}

// envKeys maps environment variables to koanf paths. Unlisted variables
// are ignored.
var envKeys = map[string]string{
	"PORT":                    "server.port",
	"CORS_ORIGINS":            "server.cors_origins",
	"MAX_BODY_BYTES":          "server.max_body_bytes",
	"LOG_LEVEL":               "log.level",
	"DATA_DIR":                "storage.data_dir",
	"HUB_PORT":                "hub.port",
	"DATABASE_URL":            "hub.database_url",
	"SYNC_URL":                "sync.url",
	"AUTO_SYNC":               "sync.auto",
	"SYNC_TIMEOUT":            "sync.timeout",
	"SYNC_TIMEZONE":           "sync.timezone",
	"GEMINI_API_KEY":          "insight.api_key",
	"GEMINI_MODEL":            "insight.model",
	"INSIGHT_TIMEOUT":         "insight.timeout",
	"INSIGHT_RATE_PER_MINUTE": "insight.rate_per_minute",
	"ADMIN_PASSWORD":          "admin.password",
	"DELETE_PIN":              "admin.delete_pin",
}

// sliceKeys are parsed from comma-separated strings when they come from the
// environment.
var sliceKeys = []string{"server.cors_origins"}

// Load layers defaults, the optional config file and the environment, then
// validates the result. Empty environment variables are treated as unset.
func Load() (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return Config{}, fmt.Errorf("config.Load: defaults: %w", err)
	}

	if path := configPath(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("config.Load: file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config.Load: environment: %w", err)
	}

	if err := splitSlices(k); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config.Load: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Validate checks value ranges and formats. It returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if err := validPort(c.Server.Port); err != nil {
		errs = append(errs, fmt.Errorf("server.port: %w", err))
	}
	if err := validPort(c.Hub.Port); err != nil {
		errs = append(errs, fmt.Errorf("hub.port: %w", err))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}
	if n, err := humanize.ParseBytes(c.Server.MaxBodyBytes); err != nil || n == 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes: invalid size %q", c.Server.MaxBodyBytes))
	}
	if c.Sync.URL != "" {
		if u, err := url.Parse(c.Sync.URL); err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, errors.New("sync.url: must be an absolute http or https URL"))
		}
	}
	if c.Sync.Timeout <= 0 {
		errs = append(errs, errors.New("sync.timeout: must be positive"))
	}
	if c.Sync.Timezone == "" {
		errs = append(errs, errors.New("sync.timezone: must not be empty"))
	} else if _, err := time.LoadLocation(c.Sync.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("sync.timezone: %w", err))
	}
	if c.Insight.Timeout <= 0 {
		errs = append(errs, errors.New("insight.timeout: must be positive"))
	}
	if c.Insight.RatePerMinute < 1 {
		errs = append(errs, errors.New("insight.rate_per_minute: must be at least 1"))
	}
	if c.Admin.Password == "" {
		errs = append(errs, errors.New("admin.password: must not be empty"))
	}
	if c.Admin.DeletePIN == "" {
		errs = append(errs, errors.New("admin.delete_pin: must not be empty"))
	}

	return errors.Join(errs...)
}

// RequireDatabase reports an error naming DATABASE_URL when it is unset.
// The hub and migrate commands need it; the device server does not.
func (c Config) RequireDatabase() error {
	if c.Hub.DatabaseURL == "" {
		return errors.New("required environment variables not set: DATABASE_URL")
	}
	return nil
}

// BodyLimit returns Server.MaxBodyBytes in bytes. Call after Validate.
func (c Config) BodyLimit() int64 {
	n, _ := humanize.ParseBytes(c.Server.MaxBodyBytes)
	return int64(n)
}

func configPath() string {
	path := os.Getenv(PathEnvVar)
	if path == "" {
		path = DefaultPath
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	return path
}

// envKey maps an environment variable name to its koanf path, or "" to skip it.
func envKey(key string) string {
	path, ok := envKeys[key]
	if !ok || os.Getenv(key) == "" {
		return ""
	}
	return path
}

// splitSlices converts comma-separated string values to slices.
// Values that came from YAML are already slices and are left alone.
func splitSlices(k *koanf.Koanf) error {
	for _, path := range sliceKeys {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		if err := k.Set(path, splitCSV(s)); err != nil {
			return fmt.Errorf("set %s: %w", path, err)
		}
	}
	return nil
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func validPort(p string) error {
	n, err := strconv.Atoi(p)
	if err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("invalid port %q", p)
	}
	return nil
}
