// Package service runs one solve: load the DIMACS file, reuse or compute the
// maximum flow, check it, write the reports and record the run.
package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"maxflow/pkg/apperror"
	"maxflow/pkg/cache"
	"maxflow/pkg/config"
	"maxflow/pkg/logger"
	"maxflow/pkg/metrics"
	"maxflow/pkg/telemetry"
	"maxflow/services/maxflow/internal/algorithms"
	"maxflow/services/maxflow/internal/dimacs"
	"maxflow/services/maxflow/internal/graph"
	"maxflow/services/maxflow/internal/history"
	"maxflow/services/maxflow/internal/report"
)

const algorithmName = "edmonds_karp"

// ResultCache stores solved flows by network fingerprint.
type ResultCache interface {
	Get(ctx context.Context, fingerprint, variant string) (*cache.CachedSolveResult, bool, error)
	Set(ctx context.Context, fingerprint, variant string, result *cache.CachedSolveResult, ttl time.Duration) error
	Invalidate(ctx context.Context, fingerprint string) (int64, error)
	Stats(ctx context.Context) (*cache.Stats, error)
}

// Recorder persists finished runs and lists earlier runs of a network.
type Recorder interface {
	Create(ctx context.Context, run *history.Run) error
	ListByNetwork(ctx context.Context, networkHash string, limit int) ([]*history.Run, error)
}

// previousRunsLimit caps the earlier runs shown in the summary.
const previousRunsLimit = 5

// Service solves networks according to a configuration.
type Service struct {
	cfg     *config.Config
	cache   ResultCache
	history Recorder
	metrics *metrics.Metrics
	summary io.Writer
	newID   func() string
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables result reuse.
func WithCache(c ResultCache) Option {
	return func(s *Service) { s.cache = c }
}

// WithHistory records every successful run.
func WithHistory(r Recorder) Option {
	return func(s *Service) { s.history = r }
}

// WithMetrics sets the metrics sink. Nil disables metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

// WithSummary prints a summary table to w after each run.
func WithSummary(w io.Writer) Option {
	return func(s *Service) { s.summary = w }
}

// New creates a service.
func New(cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		cfg:   cfg,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Outcome describes a finished run.
type Outcome struct {
	RunID    string
	Input    string
	Network  *graph.Network
	Result   *algorithms.Result
	Cached   bool
	Outputs  []report.Output
	Warnings []string
	Duration time.Duration

	// Filled only when a summary is printed.
	PreviousRuns []*history.Run
	CacheStats   *cache.Stats
}

// MaxFlow returns the value of the computed flow.
func (o *Outcome) MaxFlow() int64 {
	return o.Result.MaxFlow
}

// Solve runs the whole pipeline for the DIMACS file at input.
//
// Input problems come back as input errors and nothing is written. Cache and
// history failures are logged and do not fail the run.
func (s *Service) Solve(ctx context.Context, input string) (out *Outcome, err error) {
	start := time.Now()
	out = &Outcome{RunID: s.newID(), Input: input}
	log := logger.WithRun(out.RunID).With("input", input)

	ctx, span := telemetry.StartSpan(ctx, "Service.Solve",
		telemetry.WithAttributes(
			attribute.String(telemetry.AttrInputPath, input),
			attribute.String(telemetry.AttrRunID, out.RunID),
		),
	)
	defer span.End()

	defer func() {
		out.Duration = time.Since(start)
		if err != nil {
			telemetry.SetError(ctx, err)
			if apperror.IsInputError(err) {
				s.metrics.RecordInputError(string(apperror.Code(err)))
			}
			s.metrics.RecordSolveOperation(false, out.Duration, 0, 0)
			out = nil
			return
		}
		s.metrics.RecordSolveOperation(true, out.Duration, out.Result.MaxFlow, out.Result.Rounds)
	}()

	net, err := s.load(ctx, log, out)
	if err != nil {
		return out, err
	}
	out.Network = net

	res, cached, err := s.compute(ctx, log, net)
	if err != nil {
		return out, err
	}
	out.Result = res
	out.Cached = cached

	outputs, err := s.writeReports(ctx, out)
	if err != nil {
		return out, err
	}
	out.Outputs = outputs

	out.Duration = time.Since(start)
	if s.summary != nil {
		s.collectSummary(ctx, log, out)
	}
	s.record(ctx, log, out)

	log.Debug("solve finished",
		"max_flow", res.MaxFlow,
		"rounds", res.Rounds,
		"cached", cached,
		"duration", out.Duration,
	)

	if s.summary != nil {
		if err := WriteSummary(s.summary, out); err != nil {
			log.Warn("failed to print summary", "error", err)
		}
	}

	return out, nil
}

func (s *Service) load(ctx context.Context, log *slog.Logger, out *Outcome) (*graph.Network, error) {
	timer := s.metrics.StartTimer("load")
	defer timer.ObserveDuration()

	var net *graph.Network
	err := telemetry.Stage(ctx, "dimacs.load", func(ctx context.Context) error {
		n, stats, err := dimacs.ReadFile(out.Input, dimacs.Options{
			PreserveFileOrder: s.cfg.Solver.PreserveFileOrder,
			MaxVertices:       s.cfg.Solver.MaxVertices,
		})
		if stats != nil {
			out.Warnings = stats.Warnings
			telemetry.SetAttributes(ctx, attribute.Int(telemetry.AttrInputLines, stats.Lines))
		}
		if err != nil {
			return err
		}
		net = n
		telemetry.SetAttributes(ctx, telemetry.GraphAttributes(n.VertexCount(), n.ArcCount(), n.Source(), n.Sink())...)
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, w := range out.Warnings {
		log.Warn("input warning", "detail", w)
	}
	log.Debug("network loaded",
		"vertices", net.VertexCount(),
		"arcs", net.ArcCount(),
		"source", net.Source(),
		"sink", net.Sink(),
	)
	s.metrics.RecordGraphSize(net.VertexCount(), net.ArcCount())
	return net, nil
}

// variant distinguishes cached solutions of one network. Legacy order may
// route flow differently, so it is part of the key.
func (s *Service) variant() string {
	return cache.VariantHash(fmt.Sprintf("legacy_order=%t", s.cfg.Solver.LegacyOrder))
}

// usesCache reports whether cached results can serve this run. Augmenting
// paths are not cached, so runs that report them always solve.
func (s *Service) usesCache() bool {
	return s.cache != nil && !s.cfg.Solver.RecordPaths && !s.cfg.Report.IncludePaths
}

func (s *Service) compute(ctx context.Context, log *slog.Logger, net *graph.Network) (*algorithms.Result, bool, error) {
	fingerprint := net.Fingerprint()
	telemetry.SetAttributes(ctx, attribute.String(telemetry.AttrGraphHash, fingerprint))

	if s.usesCache() {
		if s.cfg.Cache.Refresh {
			s.invalidate(ctx, log, fingerprint)
		} else if res, ok := s.fromCache(ctx, log, net, fingerprint); ok {
			return res, true, nil
		}
	}

	res, err := s.solve(ctx, log, net)
	if err != nil {
		return nil, false, err
	}

	if s.cfg.Solver.Verify {
		if err := s.verify(ctx, net, res.Residual); err != nil {
			return nil, false, err
		}
	}

	if s.usesCache() {
		entry := &cache.CachedSolveResult{
			MaxFlow:           res.MaxFlow,
			Rounds:            res.Rounds,
			Flows:             net.Flows(),
			ComputationTimeMs: float64(res.Duration.Microseconds()) / 1000,
		}
		if res.MinCut != nil {
			entry.CutSourceSide = res.MinCut.SourceSide
			entry.CutArcs = res.MinCut.Arcs
			entry.CutCapacity = res.MinCut.Capacity
		}
		if err := s.cache.Set(ctx, fingerprint, s.variant(), entry, s.cfg.Cache.DefaultTTL); err != nil {
			log.Warn("failed to cache solve result", "error", err)
		}
	}

	return res, false, nil
}

// invalidate drops every cached variant of the network so this run solves
// afresh and stores its own result.
func (s *Service) invalidate(ctx context.Context, log *slog.Logger, fingerprint string) {
	n, err := s.cache.Invalidate(ctx, fingerprint)
	if err != nil {
		log.Warn("cache invalidation failed", "error", err)
		return
	}
	telemetry.AddEvent(ctx, "cache_invalidated", attribute.Int64("entries", n))
	log.Debug("cache invalidated", "entries", n)
}

// fromCache applies a cached flow to net. Entries that no longer fit the
// network or do not verify are ignored.
func (s *Service) fromCache(ctx context.Context, log *slog.Logger, net *graph.Network, fingerprint string) (*algorithms.Result, bool) {
	timer := s.metrics.StartTimer("cache")
	defer timer.ObserveDuration()

	cached, found, err := s.cache.Get(ctx, fingerprint, s.variant())
	if err != nil {
		log.Warn("cache lookup failed", "error", err)
		return nil, false
	}
	s.metrics.RecordCacheLookup(found)
	telemetry.SetAttributes(ctx, attribute.Bool(telemetry.AttrCacheHit, found))
	if !found {
		return nil, false
	}

	if err := net.ApplyFlows(cached.Flows); err != nil {
		log.Warn("cached flows do not fit the network", "error", err)
		return nil, false
	}

	rg, err := graph.NewResidualGraph(net, graph.WithLegacyOrder(s.cfg.Solver.LegacyOrder))
	if err != nil {
		net.ResetFlow()
		return nil, false
	}

	cut := graph.MinCut(rg, net)
	if v := graph.Verify(net, rg); v.HasErrors() || cut.Capacity != cached.MaxFlow {
		log.Warn("cached flow rejected", "violations", len(v.Errors), "cut_capacity", cut.Capacity)
		net.ResetFlow()
		return nil, false
	}

	telemetry.AddEvent(ctx, "cache_hit", attribute.Int64(telemetry.AttrMaxFlow, cached.MaxFlow))
	log.Debug("reusing cached flow", "computed_at", cached.ComputedAt)

	return &algorithms.Result{
		MaxFlow:  cached.MaxFlow,
		Rounds:   cached.Rounds,
		MinCut:   cut,
		Residual: rg,
		State:    algorithms.StateDone,
		Duration: time.Duration(cached.ComputationTimeMs * float64(time.Millisecond)),
	}, true
}

func (s *Service) solve(ctx context.Context, log *slog.Logger, net *graph.Network) (*algorithms.Result, error) {
	timer := s.metrics.StartTimer("algorithm")
	defer timer.ObserveDuration()

	opts := algorithms.DefaultSolverOptions().
		WithMaxRounds(s.cfg.Solver.MaxRounds).
		WithTimeout(s.cfg.Solver.Timeout).
		WithRecordPaths(s.cfg.Solver.RecordPaths || s.cfg.Report.IncludePaths).
		WithLegacyOrder(s.cfg.Solver.LegacyOrder).
		WithObserver(func(a algorithms.Augmentation) {
			log.Debug("augmented", "round", a.Round, "amount", a.Amount, "total", a.Total)
		})

	var res *algorithms.Result
	err := telemetry.Stage(ctx, "algorithm.solve", func(ctx context.Context) error {
		var err error
		res, err = algorithms.EdmondsKarpWithContext(ctx, net, opts)
		if res != nil {
			telemetry.SetAttributes(ctx, telemetry.AlgorithmAttributes(algorithmName, res.Rounds, res.MaxFlow, res.Canceled)...)
		}
		if err != nil {
			return err
		}
		if res.Canceled {
			return apperror.New(apperror.CodeTimeout, "solve canceled before completion").
				WithDetails("rounds", res.Rounds).
				WithDetails("partial_flow", res.MaxFlow)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (s *Service) verify(ctx context.Context, net *graph.Network, rg *graph.ResidualGraph) error {
	return telemetry.Stage(ctx, "flow.verify", func(ctx context.Context) error {
		v := graph.Verify(net, rg)
		telemetry.SetAttributes(ctx, telemetry.ValidationAttributes(len(v.Errors), v.IsValid())...)
		if err := v.Err(); err != nil {
			return apperror.Wrap(err, apperror.Code(err), "computed flow failed verification").
				WithSeverity(apperror.SeverityCritical)
		}
		return nil
	})
}

func (s *Service) writeReports(ctx context.Context, out *Outcome) ([]report.Output, error) {
	timer := s.metrics.StartTimer("report")
	defer timer.ObserveDuration()

	w, err := report.NewWriter(s.cfg.Report.OutputPath, s.cfg.Report.Formats...)
	if err != nil {
		return nil, err
	}

	data := report.NewData(out.Network, out.Result, report.Options{
		Title:         s.cfg.Report.Title,
		RunID:         out.RunID,
		Input:         out.Input,
		IncludeMinCut: s.cfg.Report.IncludeMinCut,
		IncludePaths:  s.cfg.Report.IncludePaths,
	})
	data.Cached = out.Cached

	var outputs []report.Output
	err = telemetry.Stage(ctx, "report.write", func(ctx context.Context) error {
		var err error
		outputs, err = w.Write(ctx, data)
		for _, o := range outputs {
			s.metrics.RecordReport(string(o.Format))
			telemetry.AddEvent(ctx, "report_written",
				attribute.String(telemetry.AttrReportFormat, string(o.Format)),
				attribute.String("path", o.Path),
			)
		}
		return err
	})
	return outputs, err
}

// collectSummary gathers what the summary shows beyond the run itself.
// Lookups run before the current run is recorded, so it is not among the
// previous runs.
func (s *Service) collectSummary(ctx context.Context, log *slog.Logger, out *Outcome) {
	if s.history != nil {
		runs, err := s.history.ListByNetwork(ctx, out.Network.Fingerprint(), previousRunsLimit)
		if err != nil {
			log.Warn("failed to list previous runs", "error", err)
		}
		out.PreviousRuns = runs
	}
	if s.cache != nil {
		stats, err := s.cache.Stats(ctx)
		if err != nil {
			log.Warn("failed to read cache stats", "error", err)
		}
		out.CacheStats = stats
	}
}

func (s *Service) record(ctx context.Context, log *slog.Logger, out *Outcome) {
	if s.history == nil {
		return
	}

	net := out.Network
	run := &history.Run{
		ID:          out.RunID,
		InputPath:   out.Input,
		NetworkHash: net.Fingerprint(),
		Vertices:    net.VertexCount(),
		Arcs:        net.ArcCount(),
		Source:      net.Source(),
		Sink:        net.Sink(),
		MaxFlow:     out.Result.MaxFlow,
		Rounds:      out.Result.Rounds,
		DurationMs:  float64(out.Duration.Microseconds()) / 1000,
		Cached:      out.Cached,
	}
	if s.cfg.Database.StoreArcs {
		net.Each(func(a *graph.Arc) {
			run.ArcFlows = append(run.ArcFlows, history.ArcFlow{
				ArcID: a.ID, From: a.From, To: a.To, Flow: a.Flow, Capacity: a.Capacity,
			})
		})
	}

	if err := s.history.Create(ctx, run); err != nil {
		log.Warn("failed to record run", "error", err)
	}
}
