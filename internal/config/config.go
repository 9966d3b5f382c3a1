package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	// OpenWeatherAPIKey is the provider credential. Empty or placeholder
	// values leave queries misconfigured rather than failing startup.
	OpenWeatherAPIKey string
	OpenWeatherURL    string
	HTTPTimeout       time.Duration

	// PreferencesDB is the SQLite path for persisted preferences.
	PreferencesDB string

	// In-memory query result cache retention.
	StoreMaxHistory int           // max number of snapshots per city (0 = unlimited)
	StoreMaxAge     time.Duration // max age of snapshots (0 = unlimited)

	// Monitored-location refresher.
	MonitorInterval time.Duration
	MonitorFetch    bool

	LogLevel string
	LogFile  string

	BindAddr string
	Port     string
}

// Addr returns the listen address of the loopback adapter.
func (c *AppConfig) Addr() string {
	return c.BindAddr + ":" + c.Port
}

// Load reads .env (when present) and then the environment.
func Load() (*AppConfig, error) {
	// A missing .env file is normal outside development.
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv builds the configuration from getenv with sensible defaults.
func FromEnv(getenv func(string) string) (*AppConfig, error) {
	cfg := &AppConfig{}

	cfg.OpenWeatherAPIKey = firstNonEmpty(getenv("OPENWEATHERMAP_API_KEY"), getenv("VITE_OPENWEATHERMAP_API_KEY"))
	cfg.OpenWeatherURL = getenv("OPENWEATHERMAP_BASE_URL")

	var err error
	if cfg.HTTPTimeout, err = durationDefault(getenv, "HTTP_TIMEOUT", "10s"); err != nil {
		return nil, err
	}

	cfg.PreferencesDB = getenvDefault(getenv, "PREFERENCES_DB", "weatherscope.db")

	// Store retention.
	cfg.StoreMaxHistory = getenvInt(getenv, "STORE_MAX_HISTORY", 96) // roughly 24h at 15-minute intervals
	if cfg.StoreMaxAge, err = durationDefault(getenv, "STORE_MAX_AGE", "24h"); err != nil {
		return nil, err
	}

	if cfg.MonitorInterval, err = durationDefault(getenv, "MONITOR_INTERVAL", "15m"); err != nil {
		return nil, err
	}
	cfg.MonitorFetch = getenvBool(getenv, "MONITOR_FETCH", false)

	cfg.LogLevel = getenvDefault(getenv, "LOG_LEVEL", "info")
	cfg.LogFile = getenv("LOG_FILE")

	cfg.BindAddr = getenvDefault(getenv, "BIND_ADDR", "127.0.0.1")
	cfg.Port = getenvDefault(getenv, "PORT", "8080")

	return cfg, nil
}

func durationDefault(getenv func(string) string, key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(getenv, key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func getenvDefault(getenv func(string) string, key, def string) string {
	if v := getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(getenv func(string) string, key string, def int) int {
	if v := getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvBool(getenv func(string) string, key string, def bool) bool {
	if v := getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}
