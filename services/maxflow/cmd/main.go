// Command maxflow computes a maximum flow of a DIMACS network and writes the
// report.
//
//	maxflow [flags] <DIMACS>
//
// The report goes to resultat.txt unless configured otherwise, and the
// command prints
//
//	Résultat écrit dans le fichier <path>
//
// on success. Exit codes: 0 success, 2 invalid input or usage, 3 resource
// limit, 1 anything else.
//
// # Configuration
//
// Settings come from, lowest priority first: built-in defaults, a YAML file
// (CONFIG_PATH, maxflow.yaml, config/maxflow.yaml, /etc/maxflow/config.yaml),
// MAXFLOW_* environment variables, then command-line flags. For example:
//
//	MAXFLOW_LOG_LEVEL=debug
//	MAXFLOW_REPORT_FORMATS=text,json,xlsx
//	MAXFLOW_SOLVER_LEGACY_ORDER=false
//	MAXFLOW_CACHE_ENABLED=true MAXFLOW_CACHE_DRIVER=leveldb
//	MAXFLOW_CACHE_REFRESH=true
//	MAXFLOW_DATABASE_ENABLED=true MAXFLOW_DATABASE_HOST=db
//	MAXFLOW_METRICS_ENABLED=true MAXFLOW_METRICS_TEXTFILE_PATH=/var/lib/node_exporter/maxflow.prom
//	MAXFLOW_TRACING_ENABLED=true MAXFLOW_TRACING_ENDPOINT=otel-collector:4317
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"maxflow/pkg/apperror"
	"maxflow/pkg/cache"
	"maxflow/pkg/config"
	"maxflow/pkg/logger"
	"maxflow/pkg/metrics"
	"maxflow/pkg/telemetry"
	"maxflow/services/maxflow/internal/history"
	"maxflow/services/maxflow/internal/service"
)

const usage = "Usage: maxflow <DIMACS>"

// shutdownTimeout bounds flushing telemetry and pushing metrics.
const shutdownTimeout = 5 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args, os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// run executes the command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)

	err := app.RunContext(ctx, args)
	if err == nil {
		return apperror.ExitOK
	}

	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		if msg := exitErr.Error(); msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return exitErr.ExitCode()
	}

	fmt.Fprintln(stderr, err)
	return apperror.ExitCode(err)
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:            "maxflow",
		Usage:           "compute a maximum flow of a DIMACS network",
		ArgsUsage:       "<DIMACS>",
		Writer:          stdout,
		ErrWriter:       stderr,
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		OnUsageError: func(_ *cli.Context, err error, _ bool) error {
			return cli.Exit(fmt.Sprintf("%v\n%s", err, usage), apperror.ExitInput)
		},
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "YAML configuration file", EnvVars: []string{"CONFIG_PATH"}},
			&cli.StringFlag{Name: "output", Aliases: []string{"o"}, Usage: "report path"},
			&cli.StringSliceFlag{Name: "format", Aliases: []string{"f"}, Usage: "report formats: text, csv, json, md, xlsx, pdf, dimacs"},
			&cli.BoolFlag{Name: "legacy-order", Value: true, Usage: "explore residual arcs in head-insertion order; false uses emission order"},
			&cli.BoolFlag{Name: "preserve-file-order", Usage: "keep arcs in file order within each adjacency list"},
			&cli.IntFlag{Name: "max-rounds", Usage: "abort after this many augmentations (0 = unlimited)"},
			&cli.IntFlag{Name: "max-vertices", Usage: "reject larger networks (0 = only the hard limit)"},
			&cli.DurationFlag{Name: "timeout", Usage: "abort the solve after this long (0 = unlimited)"},
			&cli.BoolFlag{Name: "min-cut", Usage: "include the minimum cut in reports"},
			&cli.BoolFlag{Name: "paths", Usage: "include augmenting paths in reports"},
			&cli.BoolFlag{Name: "summary", Usage: "print a summary table to stderr"},
			&cli.StringFlag{Name: "cache", Usage: "enable the result cache with this driver: memory, redis, leveldb"},
			&cli.BoolFlag{Name: "refresh-cache", Usage: "drop cached results for this network and solve again"},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn, error"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return cli.Exit(usage, apperror.ExitInput)
			}
			return solve(c, c.Args().First())
		},
	}
}

// overrides maps the flags that were set onto configuration keys.
func overrides(c *cli.Context) map[string]any {
	out := make(map[string]any)
	set := func(flag, key string, value any) {
		if c.IsSet(flag) {
			out[key] = value
		}
	}

	set("output", "report.output_path", c.String("output"))
	set("format", "report.formats", c.StringSlice("format"))
	set("legacy-order", "solver.legacy_order", c.Bool("legacy-order"))
	set("preserve-file-order", "solver.preserve_file_order", c.Bool("preserve-file-order"))
	set("max-rounds", "solver.max_rounds", c.Int("max-rounds"))
	set("max-vertices", "solver.max_vertices", c.Int("max-vertices"))
	set("timeout", "solver.timeout", c.Duration("timeout"))
	set("min-cut", "report.include_min_cut", c.Bool("min-cut"))
	set("paths", "report.include_paths", c.Bool("paths"))
	set("summary", "report.summary", c.Bool("summary"))
	set("log-level", "log.level", c.String("log-level"))
	set("refresh-cache", "cache.refresh", c.Bool("refresh-cache"))
	if c.IsSet("cache") {
		out["cache.enabled"] = true
		out["cache.driver"] = c.String("cache")
	}
	return out
}

func solve(c *cli.Context, input string) error {
	ctx := c.Context

	loaderOpts := []config.LoaderOption{config.WithOverrides(overrides(c))}
	if path := c.String("config"); path != "" {
		loaderOpts = append(loaderOpts, config.WithConfigPaths(path))
	}
	cfg, err := config.NewLoader(loaderOpts...).Load()
	if err != nil {
		return cli.Exit(err.Error(), apperror.ExitInput)
	}

	logger.InitWithConfig(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		FilePath:   cfg.Log.FilePath,
		MaxSize:    cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAge:     cfg.Log.MaxAge,
		Compress:   cfg.Log.Compress,
	})

	tp, err := telemetry.Init(ctx, telemetry.Config{
		Enabled:     cfg.Tracing.Enabled,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Version:     cfg.App.Version,
		Environment: cfg.App.Environment,
		SampleRate:  cfg.Tracing.SampleRate,
	})
	if err != nil {
		logger.Warn("failed to init telemetry", "error", err)
	} else {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := tp.Shutdown(shutdownCtx); err != nil {
				logger.Warn("failed to shutdown telemetry", "error", err)
			}
		}()
	}

	opts := []service.Option{}

	if cfg.Metrics.Enabled {
		m := metrics.InitMetrics(cfg.Metrics.Namespace, cfg.Metrics.Subsystem)
		m.SetServiceInfo(cfg.App.Version, cfg.App.Environment)
		opts = append(opts, service.WithMetrics(m))
		defer exportMetrics(m, &cfg.Metrics)
	}

	if cfg.Cache.Enabled {
		base, err := cache.New(cache.FromConfig(&cfg.Cache))
		if err != nil {
			logger.Warn("failed to create cache, continuing without cache", "driver", cfg.Cache.Driver, "error", err)
		} else {
			sc := cache.NewSolverCache(base, cfg.Cache.DefaultTTL)
			defer sc.Close()
			opts = append(opts, service.WithCache(sc))
		}
	}

	if cfg.Database.Enabled {
		store, err := history.Open(ctx, &cfg.Database)
		if err != nil {
			logger.Warn("history store unavailable, run will not be recorded", "error", err)
		} else {
			defer store.Close()
			opts = append(opts, service.WithHistory(store))
		}
	}

	if cfg.Report.Summary {
		opts = append(opts, service.WithSummary(c.App.ErrWriter))
	}

	out, err := service.New(cfg, opts...).Solve(ctx, input)
	if err != nil {
		logger.Debug("solve failed", "input", input, "code", apperror.Code(err), "error", err)
		return cli.Exit(err.Error(), apperror.ExitCode(err))
	}

	for _, o := range out.Outputs {
		fmt.Fprintf(c.App.Writer, "Résultat écrit dans le fichier %s\n", o.Path)
	}
	return nil
}

func exportMetrics(m *metrics.Metrics, cfg *config.MetricsConfig) {
	if err := m.WriteTextfile(cfg.TextfilePath); err != nil {
		logger.Warn("failed to write metrics textfile", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := m.Push(ctx, cfg.PushURL, cfg.PushJob); err != nil {
		logger.Warn("failed to push metrics", "error", err)
	}
}
