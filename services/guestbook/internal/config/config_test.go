package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var envKeys = []string{
	"GUESTBOOK_CONFIG", "PORT", "LOG_LEVEL", "GUESTBOOK_STORE", "SUPABASE_URL", "SUPABASE_KEY",
	"DATABASE_URL", "GUESTBOOK_SQLITE_PATH", "GUESTBOOK_TABLE", "GUESTBOOK_TIMEZONE",
	"GUESTBOOK_LANGUAGE", "GUESTBOOK_STORE_TIMEOUT", "REDIS_ADDR", "REDIS_PASSWORD",
	"GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE", "GUESTBOOK_TRUSTED_PROXY_CIDRS",
}

// isolateEnv blanks every variable Load reads and moves into an empty
// directory so no stray .env is picked up.
func isolateEnv(t *testing.T) string {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoadFromYAML(t *testing.T) {
	dir := isolateEnv(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
port: "8080"
logLevel: "debug"
storeDriver: "sqlite"
sqlitePath: "data/guestbook.db"
timezone: "Asia/Shanghai"
language: "zh"
storeTimeout: "2s"
submitRateLimitPerMinute: 3
trustedProxyCidrs: ["10.0.0.0/8"]
`)

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "8080" || cfg.LogLevel != "debug" {
		t.Fatalf("unexpected port/logLevel: %q/%q", cfg.Port, cfg.LogLevel)
	}
	if cfg.StoreDriver != DriverSQLite || cfg.SQLitePath != "data/guestbook.db" {
		t.Fatalf("unexpected store settings: %+v", cfg)
	}
	if cfg.Table != "MyGuestbook" {
		t.Fatalf("table default = %q, want MyGuestbook", cfg.Table)
	}
	if cfg.SubmitRateLimitPerMinute != 3 || len(cfg.TrustedProxyCIDRs) != 1 {
		t.Fatalf("unexpected limiter settings: %+v", cfg)
	}
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	dir := isolateEnv(t)
	cfgPath := filepath.Join(dir, "config.yaml")
	writeFile(t, cfgPath, `
port: "8080"
storeDriver: "memory"
`)
	t.Setenv("PORT", "9090")
	t.Setenv("GUESTBOOK_STORE", "PostgREST")
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon")
	t.Setenv("GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE", "0")
	t.Setenv("GUESTBOOK_TRUSTED_PROXY_CIDRS", "10.0.0.0/8, 192.168.0.1 ,")

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Port != "9090" {
		t.Fatalf("port = %q, want 9090", cfg.Port)
	}
	if cfg.StoreDriver != DriverPostgREST {
		t.Fatalf("storeDriver = %q, want postgrest", cfg.StoreDriver)
	}
	if cfg.SubmitRateLimitPerMinute != 0 {
		t.Fatalf("rate limit = %d, want 0", cfg.SubmitRateLimitPerMinute)
	}
	if len(cfg.TrustedProxyCIDRs) != 2 {
		t.Fatalf("trusted proxies = %v", cfg.TrustedProxyCIDRs)
	}
}

func TestLoadReadsDotenv(t *testing.T) {
	dir := isolateEnv(t)
	writeFile(t, filepath.Join(dir, ".env"), "SUPABASE_URL=https://dotenv.supabase.co\nSUPABASE_KEY=from-dotenv\n")
	for _, key := range []string{"SUPABASE_URL", "SUPABASE_KEY"} {
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unsetenv: %v", err)
		}
	}

	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.SupabaseURL != "https://dotenv.supabase.co" || cfg.SupabaseKey != "from-dotenv" {
		t.Fatalf("dotenv values not applied: %+v", cfg)
	}
	if cfg.Port != "5001" || cfg.StoreDriver != DriverPostgREST {
		t.Fatalf("defaults not applied: %+v", cfg)
	}
}

func TestLoadFailsWithoutStoreSecrets(t *testing.T) {
	isolateEnv(t)
	_, err := Load("missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "supabaseURL") {
		t.Fatalf("expected missing supabaseURL error, got %v", err)
	}
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	_, err = Load("missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "supabaseKey") {
		t.Fatalf("expected missing supabaseKey error, got %v", err)
	}
}

func TestLoadRejectsUnparsableRateLimit(t *testing.T) {
	isolateEnv(t)
	t.Setenv("SUPABASE_URL", "https://example.supabase.co")
	t.Setenv("SUPABASE_KEY", "anon-key")
	t.Setenv("GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE", "ten")
	_, err := Load("missing.yaml")
	if err == nil || !strings.Contains(err.Error(), "GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE") {
		t.Fatalf("expected rate limit parse error, got %v", err)
	}

	t.Setenv("GUESTBOOK_SUBMIT_RATE_LIMIT_PER_MINUTE", " 0 ")
	cfg, err := Load("missing.yaml")
	if err != nil {
		t.Fatalf("zero disables the limiter, got %v", err)
	}
	if cfg.SubmitRateLimitPerMinute != 0 {
		t.Fatalf("rate limit = %d, want 0", cfg.SubmitRateLimitPerMinute)
	}
}

func TestValidateConfigRejectsBadValues(t *testing.T) {
	base := defaults()
	base.StoreDriver = DriverMemory

	cases := map[string]func(*FileConfig){
		"unknown driver":   func(c *FileConfig) { c.StoreDriver = "mongo" },
		"postgres no dsn":  func(c *FileConfig) { c.StoreDriver = DriverPostgres },
		"sqlite no path":   func(c *FileConfig) { c.StoreDriver = DriverSQLite },
		"bad timeout":      func(c *FileConfig) { c.StoreTimeout = "soon" },
		"negative timeout": func(c *FileConfig) { c.StoreTimeout = "-1s" },
		"bad timezone":     func(c *FileConfig) { c.Timezone = "Mars/Olympus" },
		"negative limit":   func(c *FileConfig) { c.SubmitRateLimitPerMinute = -1 },
	}
	for name, mutate := range cases {
		cfg := base
		mutate(&cfg)
		if err := validateConfig(cfg); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
	if err := validateConfig(base); err != nil {
		t.Fatalf("base config should be valid: %v", err)
	}
}

func TestParseStoreTimeoutDefault(t *testing.T) {
	d, err := ParseStoreTimeout("")
	if err != nil || d != 5*time.Second {
		t.Fatalf("ParseStoreTimeout(\"\") = %v, %v", d, err)
	}
}
