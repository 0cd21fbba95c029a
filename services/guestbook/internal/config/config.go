package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigPath is the default YAML location, overridable via GUESTBOOK_CONFIG.
	ConfigPath = "config.yaml"
	// DotenvPath is loaded before the YAML file. Variables already present in
	// the environment win over the file.
	DotenvPath = ".env"
)

// Store drivers.
const (
	DriverPostgREST = "postgrest"
	DriverPostgres  = "postgres"
	DriverSQLite    = "sqlite"
	DriverMemory    = "memory"
)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                     string   `yaml:"port"`
	LogLevel                 string   `yaml:"logLevel"`
	StoreDriver              string   `yaml:"storeDriver"`
	SupabaseURL              string   `yaml:"supabaseURL"`
	SupabaseKey              string   `yaml:"supabaseKey"`
	DatabaseURL              string   `yaml:"databaseURL"`
	SQLitePath               string   `yaml:"sqlitePath"`
	Table                    string   `yaml:"table"`
	Timezone                 string   `yaml:"timezone"`
	Language                 string   `yaml:"language"`
	StoreTimeout             string   `yaml:"storeTimeout"`
	RedisAddr                string   `yaml:"redisAddr"`
	RedisPassword            string   `yaml:"redisPassword"`
	SubmitRateLimitPerMinute int      `yaml:"submitRateLimitPerMinute"`
	TrustedProxyCIDRs        []string `yaml:"trustedProxyCidrs"`
}

func defaults() FileConfig {
	return FileConfig{
		Port:                     "5001",
		LogLevel:                 "info",
		StoreDriver:              DriverPostgREST,
		Table:                    "MyGuestbook",
		Timezone:                 "CET",
		Language:                 "en",
		StoreTimeout:             "5s",
		SubmitRateLimitPerMinute: 10,
	}
}

// Load reads .env, then the YAML file at path (defaults to config.yaml), then
// environment overrides. A missing YAML file is not an error; the environment
// alone may carry the whole configuration.
func Load(path string) (FileConfig, error) {
	cfg := defaults()
	if err := godotenv.Load(DotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("load %s: %w", DotenvPath, err)
	}
	if v := strings.TrimSpace(os.Getenv("GUESTBOOK_CONFIG")); v != "" {
		path = v
	}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	case errors.Is(err, fs.ErrNotExist):
	default:
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := applyEnv(&cfg); err != nil {
		return cfg, err
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) error {
	setString := func(dst *string, key string) {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			*dst = v
		}
	}
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.StoreDriver, "GUESTBOOK_STORE")
	setString(&cfg.SupabaseURL, "SUPABASE_URL")
	setString(&cfg.SupabaseKey, "SUPABASE_KEY")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.SQLitePath, "GUESTBOOK_SQLITE_PATH")
	setString(&cfg.Table, "GUESTBOOK_TABLE")
	setString(&cfg.Timezone, "GUESTBOOK_TIMEZONE")
	setString(&cfg.Language, "GUESTBOOK_LANGUAGE")
	setString(&cfg.StoreTimeout, "GUESTBOOK_STORE_TIMEOUT")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	if v := strings.TrimSpace(os.Getenv("GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: invalid GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE %q: %w", v, err)
		}
		cfg.SubmitRateLimitPerMinute = n
	}
	if v := os.Getenv("GUESTBOOK_TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
	return nil
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required")
	}
	switch cfg.StoreDriver {
	case DriverPostgREST:
		if strings.TrimSpace(cfg.SupabaseURL) == "" {
			return errors.New("config: supabaseURL is required (set in config.yaml or SUPABASE_URL)")
		}
		if strings.TrimSpace(cfg.SupabaseKey) == "" {
			return errors.New("config: supabaseKey is required (set in config.yaml or SUPABASE_KEY)")
		}
	case DriverPostgres:
		if strings.TrimSpace(cfg.DatabaseURL) == "" {
			return errors.New("config: databaseURL is required for the postgres store (set in config.yaml or DATABASE_URL)")
		}
	case DriverSQLite:
		if strings.TrimSpace(cfg.SQLitePath) == "" {
			return errors.New("config: sqlitePath is required for the sqlite store (set in config.yaml or GUESTBOOK_SQLITE_PATH)")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("config: unknown storeDriver %q (want postgrest, postgres, sqlite or memory)", cfg.StoreDriver)
	}
	if _, err := ParseStoreTimeout(cfg.StoreTimeout); err != nil {
		return err
	}
	if _, err := LoadLocation(cfg.Timezone); err != nil {
		return err
	}
	if cfg.SubmitRateLimitPerMinute < 0 {
		return errors.New("config: submitRateLimitPerMinute must be >= 0")
	}
	return nil
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}

// ParseStoreTimeout parses the per-call store timeout. Empty means 5s.
func ParseStoreTimeout(s string) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return 5 * time.Second, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("config: invalid storeTimeout: %w", err)
	}
	if d <= 0 {
		return 0, errors.New("config: storeTimeout must be positive")
	}
	return d, nil
}

// LoadLocation resolves the display timezone for entry timestamps.
func LoadLocation(name string) (*time.Location, error) {
	if strings.TrimSpace(name) == "" {
		name = "CET"
	}
	loc, err := time.LoadLocation(strings.TrimSpace(name))
	if err != nil {
		return nil, fmt.Errorf("config: invalid timezone %q: %w", name, err)
	}
	return loc, nil
}
