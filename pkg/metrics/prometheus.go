package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Metrics контейнер метрик одного запуска решателя
type Metrics struct {
	Registry *prometheus.Registry

	// Бизнес-метрики
	SolveOperationsTotal *prometheus.CounterVec
	SolveDuration        *prometheus.HistogramVec
	MaxFlowValue         prometheus.Gauge
	AugmentationRounds   prometheus.Histogram
	GraphVertices        prometheus.Histogram
	GraphArcs            prometheus.Histogram

	// Инфраструктура
	CacheLookupsTotal   *prometheus.CounterVec
	ReportsWrittenTotal *prometheus.CounterVec
	InputErrorsTotal    *prometheus.CounterVec

	// Информация о сервисе
	ServiceInfo *prometheus.GaugeVec
}

var defaultMetrics *Metrics

// InitMetrics создаёт метрики на собственном реестре
func InitMetrics(namespace, subsystem string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(NewRunCollector(namespace, subsystem))

	factory := promauto.With(reg)

	m := &Metrics{
		Registry: reg,

		SolveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_operations_total",
				Help:      "Total number of solve operations",
			},
			[]string{"status"},
		),

		SolveDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Duration of solve phases",
				Buckets:   []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"phase"},
		),

		MaxFlowValue: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "max_flow_value",
				Help:      "Last computed maximum flow value",
			},
		),

		AugmentationRounds: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "augmentation_rounds",
				Help:      "Number of augmenting paths applied per solve",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 10),
			},
		),

		GraphVertices: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_vertices",
				Help:      "Number of vertices in solved networks",
				Buckets:   []float64{10, 50, 100, 500, 1000, 5000, 10000, 50000},
			},
		),

		GraphArcs: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "graph_arcs",
				Help:      "Number of arcs in solved networks",
				Buckets:   []float64{20, 100, 500, 1000, 5000, 10000, 50000, 100000},
			},
		),

		CacheLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "cache_lookups_total",
				Help:      "Result cache lookups",
			},
			[]string{"result"},
		),

		ReportsWrittenTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "reports_written_total",
				Help:      "Reports written, by format",
			},
			[]string{"format"},
		),

		InputErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "input_errors_total",
				Help:      "Rejected inputs, by error code",
			},
			[]string{"code"},
		),

		ServiceInfo: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "service_info",
				Help:      "Service information",
			},
			[]string{"version", "environment"},
		),
	}

	defaultMetrics = m
	return m
}

// Get возвращает глобальные метрики
func Get() *Metrics {
	if defaultMetrics == nil {
		return InitMetrics("maxflow", "")
	}
	return defaultMetrics
}

// RecordSolveOperation записывает итог решения
func (m *Metrics) RecordSolveOperation(success bool, duration time.Duration, maxFlow int64, rounds int) {
	if m == nil {
		return
	}
	status := "success"
	if !success {
		status = "error"
	}

	m.SolveOperationsTotal.WithLabelValues(status).Inc()
	m.SolveDuration.WithLabelValues("solve").Observe(duration.Seconds())
	if success {
		m.MaxFlowValue.Set(float64(maxFlow))
		m.AugmentationRounds.Observe(float64(rounds))
	}
}

// RecordGraphSize записывает размер графа
func (m *Metrics) RecordGraphSize(vertices, arcs int) {
	if m == nil {
		return
	}
	m.GraphVertices.Observe(float64(vertices))
	m.GraphArcs.Observe(float64(arcs))
}

// RecordCacheLookup записывает обращение к кэшу
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookupsTotal.WithLabelValues(result).Inc()
}

// RecordReport записывает выпущенный отчёт
func (m *Metrics) RecordReport(format string) {
	if m == nil {
		return
	}
	m.ReportsWrittenTotal.WithLabelValues(format).Inc()
}

// RecordInputError записывает отклонённый ввод
func (m *Metrics) RecordInputError(code string) {
	if m == nil {
		return
	}
	m.InputErrorsTotal.WithLabelValues(code).Inc()
}

// ObservePhase записывает длительность этапа
func (m *Metrics) ObservePhase(phase string, d time.Duration) {
	if m == nil {
		return
	}
	m.SolveDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetServiceInfo устанавливает информацию о сервисе
func (m *Metrics) SetServiceInfo(version, environment string) {
	if m == nil {
		return
	}
	m.ServiceInfo.WithLabelValues(version, environment).Set(1)
}

// WriteTextfile сохраняет метрики в формате node_exporter textfile collector
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}

// Push отправляет метрики в Pushgateway
func (m *Metrics) Push(ctx context.Context, url, job string) error {
	if m == nil || url == "" {
		return nil
	}
	if err := push.New(url, job).Gatherer(m.Registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
