package config

import (
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

const (
	envPrefix    = "MAXFLOW_"
	configEnvVar = "CONFIG_PATH"

	// DefaultOutputPath имя файла отчёта по умолчанию
	DefaultOutputPath = "resultat.txt"

	// DefaultMaxVertices keeps the per-vertex tables of a run within a few
	// hundred megabytes.
	DefaultMaxVertices = 10_000_000
)

// Loader загружает конфигурацию из разных источников
type Loader struct {
	k           *koanf.Koanf
	configPaths []string
	envPrefix   string
	overrides   map[string]any
	usedFile    string
}

// NewLoader создаёт новый загрузчик конфигурации
func NewLoader(opts ...LoaderOption) *Loader {
	l := &Loader{
		k: koanf.New("."),
		configPaths: []string{
			"maxflow.yaml",
			"config/maxflow.yaml",
			"/etc/maxflow/config.yaml",
		},
		envPrefix: envPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// LoaderOption - опция для конфигурации загрузчика
type LoaderOption func(*Loader)

// WithConfigPaths устанавливает пути поиска конфигурации
func WithConfigPaths(paths ...string) LoaderOption {
	return func(l *Loader) {
		l.configPaths = paths
	}
}

// WithEnvPrefix устанавливает префикс переменных окружения
func WithEnvPrefix(prefix string) LoaderOption {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithOverrides задаёт значения с наивысшим приоритетом (флаги командной строки)
func WithOverrides(values map[string]any) LoaderOption {
	return func(l *Loader) {
		l.overrides = values
	}
}

// Load загружает конфигурацию с приоритетом:
// 1. Defaults (самый низкий)
// 2. Config file (yaml), необязателен
// 3. Environment variables
// 4. Overrides (самый высокий)
func (l *Loader) Load() (*Config, error) {
	if err := l.k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if err := l.loadConfigFile(); err != nil {
		return nil, err
	}

	if err := l.loadEnv(); err != nil {
		return nil, fmt.Errorf("failed to load env: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := l.k.Load(confmap.Provider(l.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("failed to apply overrides: %w", err)
		}
	}

	var cfg Config
	if err := l.k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// ConfigFile возвращает путь к прочитанному файлу конфигурации или пустую строку
func (l *Loader) ConfigFile() string {
	return l.usedFile
}

func defaults() map[string]any {
	return map[string]any{
		// App
		"app.name":        "maxflow",
		"app.version":     "1.0.0",
		"app.environment": "development",

		// Log
		"log.level":       "info",
		"log.format":      "text",
		"log.output":      "stderr",
		"log.max_size":    100,
		"log.max_backups": 3,
		"log.max_age":     7,
		"log.compress":    true,

		// Solver
		"solver.legacy_order":        true,
		"solver.preserve_file_order": false,
		"solver.max_rounds":          0,
		"solver.max_vertices":        DefaultMaxVertices,
		"solver.verify":              true,
		"solver.record_paths":        false,
		"solver.timeout":             time.Duration(0),

		// Report
		"report.output_path":     DefaultOutputPath,
		"report.formats":         []string{"text"},
		"report.title":           "Flot maximal",
		"report.include_min_cut": false,
		"report.include_paths":   false,
		"report.summary":         false,

		// Metrics
		"metrics.enabled":       false,
		"metrics.namespace":     "maxflow",
		"metrics.subsystem":     "solver",
		"metrics.textfile_path": "",
		"metrics.push_url":      "",
		"metrics.push_job":      "maxflow",

		// Tracing
		"tracing.enabled":      false,
		"tracing.endpoint":     "localhost:4317",
		"tracing.service_name": "maxflow",
		"tracing.sample_rate":  1.0,

		// Cache
		"cache.enabled":     false,
		"cache.driver":      "memory",
		"cache.host":        "localhost",
		"cache.port":        6379,
		"cache.db":          0,
		"cache.default_ttl": 24 * time.Hour,
		"cache.max_entries": 1000,
		"cache.path":        ".maxflow-cache",
		"cache.refresh":     false,

		// Database
		"database.enabled":            false,
		"database.host":               "localhost",
		"database.port":               5432,
		"database.database":           "maxflow",
		"database.username":           "postgres",
		"database.password":           "",
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     4,
		"database.max_idle_conns":     1,
		"database.conn_max_lifetime":  5 * time.Minute,
		"database.conn_max_idle_time": 5 * time.Minute,
		"database.auto_migrate":       true,
		"database.store_arcs":         false,
	}
}

// loadConfigFile загружает конфигурацию из файла, если он найден
func (l *Loader) loadConfigFile() error {
	if configPath := os.Getenv(configEnvVar); configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return fmt.Errorf("config file %s: %w", configPath, err)
		}
		return l.loadFile(configPath)
	}

	for _, path := range l.configPaths {
		absPath, err := filepath.Abs(path)
		if err != nil {
			continue
		}

		if _, err := os.Stat(absPath); err == nil {
			return l.loadFile(absPath)
		}
	}

	return nil
}

func (l *Loader) loadFile(path string) error {
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	l.usedFile = path
	return nil
}

// loadEnv загружает конфигурацию из переменных окружения.
// MAXFLOW_SOLVER_MAX_ROUNDS maps to solver.max_rounds: the first segment
// names the section, the rest is the key as written in yaml.
func (l *Loader) loadEnv() error {
	return l.k.Load(env.ProviderWithValue(l.envPrefix, ".", func(envKey, value string) (string, any) {
		key := envToKey(strings.ToLower(strings.TrimPrefix(envKey, l.envPrefix)))
		if sliceFields[key] {
			return key, splitAndTrim(value)
		}
		return key, value
	}), nil)
}

// sections are the top-level keys of Config.
var sections = []string{"app", "log", "solver", "report", "metrics", "tracing", "cache", "database"}

func envToKey(name string) string {
	for _, section := range sections {
		if rest, ok := strings.CutPrefix(name, section+"_"); ok {
			return section + "." + rest
		}
	}
	return strings.ReplaceAll(name, "_", ".")
}

// sliceFields - поля, которые должны парситься как слайсы
var sliceFields = map[string]bool{
	"report.formats": true,
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		trimmed := strings.TrimSpace(p)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
