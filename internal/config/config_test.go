package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"cleanstage/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("CLEANSTAGE_STORE_DIR", "")
	t.Setenv("CLEANSTAGE_PROJECT", "")

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantStore := filepath.Join(tempHome, ".local", "share", "cleanstage", "store")
	if cfg.Paths.StoreDir != wantStore {
		t.Fatalf("unexpected store dir: got %q want %q", cfg.Paths.StoreDir, wantStore)
	}
	if cfg.Logging.Format != "auto" {
		t.Fatalf("unexpected log format: %q", cfg.Logging.Format)
	}
	if cfg.Tracker.JobType != "basic_cleaning" {
		t.Fatalf("unexpected job type: %q", cfg.Tracker.JobType)
	}
	if cfg.Cleaning.PriceColumn != "price" || cfg.Cleaning.DateColumn != "last_review" {
		t.Fatalf("unexpected columns: %+v", cfg.Cleaning)
	}
	if cfg.Cleaning.MalformedDates != config.MalformedDatesFail {
		t.Fatalf("expected fail policy by default, got %q", cfg.Cleaning.MalformedDates)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StoreDir, cfg.Paths.WorkDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
	if filepath.Dir(cfg.StoreDBPath()) != cfg.Paths.StoreDir {
		t.Fatalf("registry db outside store dir: %q", cfg.StoreDBPath())
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "cleanstage.toml")

	type payload struct {
		Paths struct {
			StoreDir string `toml:"store_dir"`
		} `toml:"paths"`
		Cleaning struct {
			MalformedDates string   `toml:"malformed_dates"`
			DateLayouts    []string `toml:"date_layouts"`
		} `toml:"cleaning"`
		Logging struct {
			Format string `toml:"format"`
		} `toml:"logging"`
	}
	custom := payload{}
	custom.Paths.StoreDir = filepath.Join(tempDir, "store")
	custom.Cleaning.MalformedDates = " DROP "
	custom.Cleaning.DateLayouts = []string{"02.01.2006", "", "02.01.2006"}
	custom.Logging.Format = "JSON"
	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal custom config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write custom config: %v", err)
	}
	t.Setenv("CLEANSTAGE_STORE_DIR", "")

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected exists to be true")
	}
	if resolved != configPath {
		t.Fatalf("unexpected resolved path: got %q want %q", resolved, configPath)
	}
	if cfg.Paths.StoreDir != custom.Paths.StoreDir {
		t.Fatalf("expected store dir from file, got %q", cfg.Paths.StoreDir)
	}
	if cfg.Cleaning.MalformedDates != config.MalformedDatesDrop {
		t.Fatalf("expected normalized drop policy, got %q", cfg.Cleaning.MalformedDates)
	}
	if len(cfg.Cleaning.DateLayouts) != 1 || cfg.Cleaning.DateLayouts[0] != "02.01.2006" {
		t.Fatalf("expected deduplicated layouts, got %v", cfg.Cleaning.DateLayouts)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected lower-cased format, got %q", cfg.Logging.Format)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "cleanstage.toml")
	if err := os.WriteFile(configPath, []byte("[paths]\nstaging_dir = \"/tmp\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(configPath); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestEnvOverridesStoreDir(t *testing.T) {
	storeDir := filepath.Join(t.TempDir(), "env-store")
	t.Setenv("CLEANSTAGE_STORE_DIR", storeDir)
	t.Setenv("CLEANSTAGE_PROJECT", "env-project")

	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Paths.StoreDir != storeDir {
		t.Fatalf("expected store dir from env, got %q", cfg.Paths.StoreDir)
	}
	if cfg.Tracker.Project != "env-project" {
		t.Fatalf("expected project from env, got %q", cfg.Tracker.Project)
	}
}

func TestCreateSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}

	contents, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(contents), "malformed_dates") {
		t.Fatalf("sample config missing malformed_dates: %s", contents)
	}

	var cfg config.Config
	if err := toml.Unmarshal(contents, &cfg); err != nil {
		t.Fatalf("unmarshal sample: %v", err)
	}
	if !strings.Contains(cfg.Paths.StoreDir, "cleanstage") {
		t.Fatalf("expected store dir to contain cleanstage, got %q", cfg.Paths.StoreDir)
	}
	if _, _, _, err := config.Load(path); err != nil {
		t.Fatalf("sample config does not load: %v", err)
	}
}

func TestValidateDetectsInvalidValues(t *testing.T) {
	cfg := config.Default()
	cfg.Logging.Format = "xml"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log format")
	}

	cfg = config.Default()
	cfg.Logging.Level = "trace"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unsupported log level")
	}

	cfg = config.Default()
	cfg.Cleaning.MalformedDates = "ignore"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown malformed date policy")
	}

	cfg = config.Default()
	cfg.Cleaning.DateColumn = cfg.Cleaning.PriceColumn
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when price and date columns collide")
	}

	cfg = config.Default()
	cfg.Paths.StoreDir = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error when store dir is empty")
	}
}
