// pkg/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config - главная структура конфигурации
type Config struct {
	App      AppConfig      `koanf:"app"`
	Log      LogConfig      `koanf:"log"`
	Solver   SolverConfig   `koanf:"solver"`
	Report   ReportConfig   `koanf:"report"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Tracing  TracingConfig  `koanf:"tracing"`
	Cache    CacheConfig    `koanf:"cache"`
	Database DatabaseConfig `koanf:"database"`
}

// AppConfig - общие настройки приложения
type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"` // development, staging, production
}

// LogConfig - настройки логирования
type LogConfig struct {
	Level      string `koanf:"level"`       // debug, info, warn, error
	Format     string `koanf:"format"`      // json, text
	Output     string `koanf:"output"`      // stdout, stderr, file, discard
	FilePath   string `koanf:"file_path"`   // путь к файлу логов
	MaxSize    int    `koanf:"max_size"`    // MB
	MaxBackups int    `koanf:"max_backups"` // количество бэкапов
	MaxAge     int    `koanf:"max_age"`     // дней
	Compress   bool   `koanf:"compress"`
}

// SolverConfig - параметры чтения сети и цикла увеличения потока
type SolverConfig struct {
	// LegacyOrder воспроизводит порядок смежности с вставкой в голову списка
	LegacyOrder bool `koanf:"legacy_order"`
	// PreserveFileOrder сохраняет порядок дуг как в файле вместо обратного
	PreserveFileOrder bool          `koanf:"preserve_file_order"`
	MaxRounds         int           `koanf:"max_rounds"`   // 0 - без ограничения
	MaxVertices       int           `koanf:"max_vertices"` // 0 - только жёсткий предел графа
	Verify            bool          `koanf:"verify"`
	RecordPaths       bool          `koanf:"record_paths"`
	Timeout           time.Duration `koanf:"timeout"` // 0 - без ограничения
}

// ReportConfig - настройки отчёта
type ReportConfig struct {
	OutputPath    string   `koanf:"output_path"`
	Formats       []string `koanf:"formats"` // text, csv, json, md, xlsx, pdf, dimacs
	Title         string   `koanf:"title"`
	IncludeMinCut bool     `koanf:"include_min_cut"`
	IncludePaths  bool     `koanf:"include_paths"`
	Summary       bool     `koanf:"summary"` // таблица итогов в stderr
}

// MetricsConfig - настройки Prometheus метрик
type MetricsConfig struct {
	Enabled      bool   `koanf:"enabled"`
	Namespace    string `koanf:"namespace"`
	Subsystem    string `koanf:"subsystem"`
	TextfilePath string `koanf:"textfile_path"` // node_exporter textfile collector
	PushURL      string `koanf:"push_url"`      // Pushgateway, пусто - не отправлять
	PushJob      string `koanf:"push_job"`
}

// TracingConfig - настройки OpenTelemetry
type TracingConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// CacheConfig - настройки кэширования результатов
type CacheConfig struct {
	Enabled    bool          `koanf:"enabled"`
	Driver     string        `koanf:"driver"` // memory, redis, leveldb
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	Password   string        `koanf:"password"`
	DB         int           `koanf:"db"`
	DefaultTTL time.Duration `koanf:"default_ttl"`
	MaxEntries int           `koanf:"max_entries"` // для in-memory
	Path       string        `koanf:"path"`        // каталог для leveldb
	Refresh    bool          `koanf:"refresh"`     // пересчитать, сбросив записи сети
}

// Address возвращает адрес кэша
func (c CacheConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// DatabaseConfig - настройки хранилища истории запусков
type DatabaseConfig struct {
	Enabled         bool          `koanf:"enabled"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	Database        string        `koanf:"database"`
	Username        string        `koanf:"username"`
	Password        string        `koanf:"password"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
	StoreArcs       bool          `koanf:"store_arcs"` // сохранять поток по каждой дуге
}

// DSN возвращает строку подключения в формате URL
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.Username, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

var (
	validLevels  = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	validFormats = map[string]bool{"text": true, "csv": true, "json": true, "md": true, "xlsx": true, "pdf": true, "dimacs": true}
	validDrivers = map[string]bool{"memory": true, "redis": true, "leveldb": true}
)

// Validate проверяет конфигурацию
func (c *Config) Validate() error {
	var errs []string

	if c.App.Name == "" {
		errs = append(errs, "app.name is required")
	}

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if !validLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, fmt.Sprintf("log.level must be one of: debug, info, warn, error, got %s", c.Log.Level))
	}

	if c.Solver.MaxRounds < 0 {
		errs = append(errs, "solver.max_rounds must be non-negative")
	}
	if c.Solver.MaxVertices < 0 {
		errs = append(errs, "solver.max_vertices must be non-negative")
	}
	if c.Solver.Timeout < 0 {
		errs = append(errs, "solver.timeout must be non-negative")
	}

	if c.Report.OutputPath == "" {
		errs = append(errs, "report.output_path is required")
	}
	for _, f := range c.Report.Formats {
		if !validFormats[strings.ToLower(f)] {
			errs = append(errs, fmt.Sprintf("report.formats: unknown format %q", f))
		}
	}

	if c.Cache.Enabled && !validDrivers[c.Cache.Driver] {
		errs = append(errs, fmt.Sprintf("cache.driver must be one of: memory, redis, leveldb, got %s", c.Cache.Driver))
	}

	if c.Tracing.SampleRate < 0 || c.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Sprintf("tracing.sample_rate must be within [0,1], got %v", c.Tracing.SampleRate))
	}

	if c.Database.Enabled && c.Database.Host == "" {
		errs = append(errs, "database.host is required when database is enabled")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return nil
}

// IsDevelopment проверяет режим разработки
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development" || c.App.Environment == "dev"
}

// IsProduction проверяет продакшн режим
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production" || c.App.Environment == "prod"
}
