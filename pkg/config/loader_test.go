package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoader_LoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")

	cfg, err := NewLoader(WithConfigPaths()).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.App.Name != "maxflow" {
		t.Errorf("expected app name 'maxflow', got %s", cfg.App.Name)
	}
	if cfg.Log.Output != "stderr" {
		t.Errorf("expected log output 'stderr', got %s", cfg.Log.Output)
	}
	if cfg.Report.OutputPath != DefaultOutputPath {
		t.Errorf("expected output path %s, got %s", DefaultOutputPath, cfg.Report.OutputPath)
	}
	if len(cfg.Report.Formats) != 1 || cfg.Report.Formats[0] != "text" {
		t.Errorf("expected formats [text], got %v", cfg.Report.Formats)
	}
	if !cfg.Solver.Verify {
		t.Error("expected solver.verify to default to true")
	}
	if !cfg.Solver.LegacyOrder {
		t.Error("expected solver.legacy_order to default to true")
	}
	if cfg.Solver.MaxVertices != DefaultMaxVertices {
		t.Errorf("expected solver.max_vertices %d, got %d", DefaultMaxVertices, cfg.Solver.MaxVertices)
	}
	if cfg.Cache.DefaultTTL != 24*time.Hour {
		t.Errorf("expected cache ttl 24h, got %v", cfg.Cache.DefaultTTL)
	}
}

func TestLoader_LoadFromFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "maxflow.yaml")

	configContent := `
app:
  environment: production
log:
  level: debug
solver:
  legacy_order: true
  max_rounds: 50
  timeout: 30s
report:
  output_path: out/flow.txt
  formats: [text, csv, xlsx]
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader(WithConfigPaths(configPath))
	cfg, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if loader.ConfigFile() != configPath {
		t.Errorf("expected ConfigFile %s, got %s", configPath, loader.ConfigFile())
	}
	if !cfg.IsProduction() {
		t.Error("expected production environment")
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Log.Level)
	}
	if !cfg.Solver.LegacyOrder || cfg.Solver.MaxRounds != 50 {
		t.Errorf("solver section not applied: %+v", cfg.Solver)
	}
	if cfg.Solver.Timeout != 30*time.Second {
		t.Errorf("expected timeout 30s, got %v", cfg.Solver.Timeout)
	}
	if cfg.Report.OutputPath != "out/flow.txt" {
		t.Errorf("expected output path out/flow.txt, got %s", cfg.Report.OutputPath)
	}
	if strings.Join(cfg.Report.Formats, ",") != "text,csv,xlsx" {
		t.Errorf("unexpected formats %v", cfg.Report.Formats)
	}
}

func TestLoader_ConfigPathEnv(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "custom.yaml")
	if err := os.WriteFile(configPath, []byte("app:\n  name: from-env-path\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("CONFIG_PATH", configPath)

	cfg, err := NewLoader(WithConfigPaths()).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.App.Name != "from-env-path" {
		t.Errorf("expected app name 'from-env-path', got %s", cfg.App.Name)
	}
}

func TestLoader_ConfigPathEnvMissing(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	if _, err := NewLoader().Load(); err == nil {
		t.Error("expected error for missing CONFIG_PATH file")
	}
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MAXFLOW_SOLVER_MAX_ROUNDS", "7")
	t.Setenv("MAXFLOW_SOLVER_PRESERVE_FILE_ORDER", "true")
	t.Setenv("MAXFLOW_REPORT_FORMATS", "text, json ,md")
	t.Setenv("MAXFLOW_CACHE_DEFAULT_TTL", "1h")
	t.Setenv("MAXFLOW_LOG_LEVEL", "warn")

	cfg, err := NewLoader(WithConfigPaths()).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Solver.MaxRounds != 7 {
		t.Errorf("expected max rounds 7, got %d", cfg.Solver.MaxRounds)
	}
	if !cfg.Solver.PreserveFileOrder {
		t.Error("expected preserve_file_order from env")
	}
	if strings.Join(cfg.Report.Formats, ",") != "text,json,md" {
		t.Errorf("unexpected formats %v", cfg.Report.Formats)
	}
	if cfg.Cache.DefaultTTL != time.Hour {
		t.Errorf("expected ttl 1h, got %v", cfg.Cache.DefaultTTL)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected log level warn, got %s", cfg.Log.Level)
	}
}

func TestLoader_Overrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MAXFLOW_REPORT_OUTPUT_PATH", "env.txt")

	cfg, err := NewLoader(
		WithConfigPaths(),
		WithOverrides(map[string]any{"report.output_path": "flag.txt"}),
	).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.Report.OutputPath != "flag.txt" {
		t.Errorf("overrides should win over env, got %s", cfg.Report.OutputPath)
	}
}

func TestLoader_CustomPrefix(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MF_APP_NAME", "prefixed")

	cfg, err := NewLoader(WithConfigPaths(), WithEnvPrefix("MF_")).Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.App.Name != "prefixed" {
		t.Errorf("expected app name 'prefixed', got %s", cfg.App.Name)
	}
}

func TestLoader_InvalidFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	configPath := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(configPath, []byte("app: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := NewLoader(WithConfigPaths(configPath)).Load(); err == nil {
		t.Error("expected parse error")
	}
}

func TestLoad_InvalidEnvValue(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MAXFLOW_LOG_LEVEL", "chatty")

	if _, err := NewLoader(WithConfigPaths()).Load(); err == nil {
		t.Error("expected validation error for log level")
	}
}

func TestEnvToKey(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"solver_max_rounds", "solver.max_rounds"},
		{"report_include_min_cut", "report.include_min_cut"},
		{"database_conn_max_idle_time", "database.conn_max_idle_time"},
		{"log_level", "log.level"},
		{"unknown_key", "unknown.key"},
	}
	for _, tt := range tests {
		if got := envToKey(tt.env); got != tt.want {
			t.Errorf("envToKey(%s) = %s, want %s", tt.env, got, tt.want)
		}
	}
}

func TestSplitAndTrim(t *testing.T) {
	if got := splitAndTrim(""); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
	got := splitAndTrim(" a, ,b ,c")
	if strings.Join(got, "|") != "a|b|c" {
		t.Errorf("unexpected %v", got)
	}
}
