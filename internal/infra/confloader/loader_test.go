package confloader

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type testConfig struct {
	Server    string        `koanf:"server"`
	DevPort   int           `koanf:"dev_port"`
	Timeout   time.Duration `koanf:"timeout"`
	RateLimit float64       `koanf:"rate_limit"`
	Log       struct {
		Level string `koanf:"level"`
	} `koanf:"log"`
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	return path
}

func TestNewLoader(t *testing.T) {
	l := NewLoader()
	if l == nil {
		t.Fatal("NewLoader() returned nil")
	}
	if l.envPrefix != DefaultEnvPrefix {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, DefaultEnvPrefix)
	}
}

func TestNewLoader_WithOptions(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("TEST_"),
		WithConfigFile("/path/to/config.yaml"),
		WithOptionalFile(),
	)

	if l.envPrefix != "TEST_" {
		t.Errorf("envPrefix = %q, want %q", l.envPrefix, "TEST_")
	}
	if l.filePath != "/path/to/config.yaml" {
		t.Errorf("filePath = %q, want %q", l.filePath, "/path/to/config.yaml")
	}
	if !l.optionalFile {
		t.Error("optionalFile should be true")
	}
}

func TestLoader_LoadFile(t *testing.T) {
	path := writeConfig(t, `
server: "http://bil.example.com/app/"
dev_port: 8000
log:
  level: debug
`)

	l := NewLoader()
	if err := l.LoadFile(path); err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	if got := l.GetString("server"); got != "http://bil.example.com/app/" {
		t.Errorf("server = %q", got)
	}
	if got := l.GetInt("dev_port"); got != 8000 {
		t.Errorf("dev_port = %d, want 8000", got)
	}
	if got := l.GetString("log.level"); got != "debug" {
		t.Errorf("log.level = %q, want debug", got)
	}
}

func TestLoader_LoadFile_NotFound(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile("/nonexistent/config.yaml"); err == nil {
		t.Error("LoadFile() should return error for nonexistent file")
	}
}

func TestLoader_LoadFile_Empty(t *testing.T) {
	l := NewLoader()
	if err := l.LoadFile(""); err != nil {
		t.Errorf("LoadFile(\"\") should not error, got: %v", err)
	}
}

func TestLoader_LoadEnv(t *testing.T) {
	t.Setenv("BIL_SERVER", "http://localhost:8080")
	t.Setenv("BIL_RATE_LIMIT", "2.5")
	t.Setenv("BIL_LOG__LEVEL", "warn")

	l := NewLoader()
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if got := l.GetString("server"); got != "http://localhost:8080" {
		t.Errorf("server = %q", got)
	}
	if got := l.GetString("rate_limit"); got != "2.5" {
		t.Errorf("rate_limit = %q, want 2.5", got)
	}
	if got := l.GetString("log.level"); got != "warn" {
		t.Errorf("log.level = %q, want warn", got)
	}
}

func TestLoader_LoadEnv_CustomPrefix(t *testing.T) {
	t.Setenv("MYAPP_DEV_PORT", "9090")

	l := NewLoader(WithEnvPrefix("MYAPP_"))
	if err := l.LoadEnv(); err != nil {
		t.Fatalf("LoadEnv() error = %v", err)
	}

	if port := l.GetString("dev_port"); port != "9090" {
		t.Errorf("dev_port = %q, want %q", port, "9090")
	}
}

func TestLoader_LoadMap(t *testing.T) {
	l := NewLoader()
	if err := l.LoadMap(map[string]any{"server": "http://h", "dev_port": 7000}); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}

	if got := l.GetString("server"); got != "http://h" {
		t.Errorf("server = %q", got)
	}
	if got := l.GetInt("dev_port"); got != 7000 {
		t.Errorf("dev_port = %d", got)
	}
}

func TestLoader_LoadMap_SkipsNil(t *testing.T) {
	l := NewLoader(
		WithEnvPrefix("BILTEST_"),
		WithDefaults(map[string]any{"server": "http://default", "output": "table"}),
	)
	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	overrides := map[string]any{"server": nil, "output": "json"}
	if err := l.LoadMap(overrides); err != nil {
		t.Fatalf("LoadMap() error = %v", err)
	}
	overrides["output"] = "yaml"

	if got := l.GetString("server"); got != "http://default" {
		t.Errorf("server = %q, nil override should not mask the default", got)
	}
	if got := l.GetString("output"); got != "json" {
		t.Errorf("output = %q, want json", got)
	}
}

func TestMapProvider_ReadBytes(t *testing.T) {
	if _, err := (mapProvider{}).ReadBytes(); !errors.Is(err, errNoBytes) {
		t.Errorf("ReadBytes() error = %v, want errNoBytes", err)
	}
}

func TestLoader_Load_Priority(t *testing.T) {
	path := writeConfig(t, `
server: "http://from-file"
dev_port: 8001
`)
	t.Setenv("BIL_SERVER", "http://from-env")

	var cfg testConfig
	l := NewLoader(
		WithConfigFile(path),
		WithDefaults(map[string]any{"server": "http://default", "dev_port": 8000, "timeout": "30s"}),
	)
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server != "http://from-env" {
		t.Errorf("Server = %q, env should override file", cfg.Server)
	}
	if cfg.DevPort != 8001 {
		t.Errorf("DevPort = %d, file should override default", cfg.DevPort)
	}
	if cfg.Timeout != 30*time.Second {
		t.Errorf("Timeout = %v, want default 30s", cfg.Timeout)
	}

	// Flags are applied last.
	if err := l.LoadMap(map[string]any{"server": "http://from-flag"}); err != nil {
		t.Fatal(err)
	}
	if err := l.Unmarshal(&cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.Server != "http://from-flag" {
		t.Errorf("Server = %q, flag should override env", cfg.Server)
	}
}

func TestLoader_Load_MissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(missing)).Load(&cfg); err == nil {
		t.Error("Load() should fail for a missing required file")
	}
	if err := NewLoader(WithConfigFile(missing), WithOptionalFile()).Load(&cfg); err != nil {
		t.Errorf("Load() with optional file error = %v", err)
	}
}

func TestLoader_Load_InvalidFile(t *testing.T) {
	path := writeConfig(t, "server: [unterminated")

	var cfg testConfig
	if err := NewLoader(WithConfigFile(path), WithOptionalFile()).Load(&cfg); err == nil {
		t.Error("Load() should fail for invalid YAML even when the file is optional")
	}
}

func TestLoader_Unmarshal_WeakTypes(t *testing.T) {
	t.Setenv("BIL_DEV_PORT", "8123")
	t.Setenv("BIL_TIMEOUT", "1m30s")
	t.Setenv("BIL_RATE_LIMIT", "4")

	var cfg testConfig
	if err := NewLoader().Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DevPort != 8123 {
		t.Errorf("DevPort = %d, want 8123", cfg.DevPort)
	}
	if cfg.Timeout != 90*time.Second {
		t.Errorf("Timeout = %v, want 1m30s", cfg.Timeout)
	}
	if cfg.RateLimit != 4 {
		t.Errorf("RateLimit = %v, want 4", cfg.RateLimit)
	}
}

func TestLoader_IsLoaded(t *testing.T) {
	l := NewLoader()
	if l.IsLoaded() {
		t.Error("IsLoaded() should be false before Load()")
	}

	var cfg testConfig
	if err := l.Load(&cfg); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !l.IsLoaded() {
		t.Error("IsLoaded() should be true after Load()")
	}
}

func TestLoader_AllAndKeys(t *testing.T) {
	l := NewLoader()
	_ = l.LoadMap(map[string]any{"server": "http://h", "mode": "production"})

	if len(l.All()) != 2 {
		t.Errorf("All() = %v, want 2 entries", l.All())
	}
	if len(l.Keys()) != 2 {
		t.Errorf("Keys() = %v, want 2 keys", l.Keys())
	}
	if l.Get("mode") != "production" {
		t.Errorf("Get(mode) = %v", l.Get("mode"))
	}
	if l.GetBool("missing") {
		t.Error("GetBool(missing) should be false")
	}
}
