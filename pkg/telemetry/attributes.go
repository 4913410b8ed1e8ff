package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Стандартные ключи атрибутов
const (
	// Вход
	AttrInputPath  = "input.path"
	AttrInputLines = "input.lines"

	// Сеть
	AttrGraphVertices = "graph.vertices"
	AttrGraphArcs     = "graph.arcs"
	AttrGraphSource   = "graph.source"
	AttrGraphSink     = "graph.sink"
	AttrGraphHash     = "graph.fingerprint"

	// Алгоритм
	AttrAlgorithm = "algorithm.name"
	AttrRounds    = "algorithm.rounds"
	AttrMaxFlow   = "algorithm.max_flow"
	AttrCanceled  = "algorithm.canceled"

	// Проверка
	AttrValidationErrors = "validation.errors"
	AttrValidationPassed = "validation.passed"

	// Инфраструктура
	AttrCacheHit     = "cache.hit"
	AttrReportFormat = "report.format"
	AttrRunID        = "run.id"
	AttrErrorCode    = "error.code"
)

// GraphAttributes возвращает атрибуты сети
func GraphAttributes(vertices, arcs, source, sink int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrGraphVertices, vertices),
		attribute.Int(AttrGraphArcs, arcs),
		attribute.Int(AttrGraphSource, source),
		attribute.Int(AttrGraphSink, sink),
	}
}

// AlgorithmAttributes возвращает атрибуты алгоритма
func AlgorithmAttributes(name string, rounds int, maxFlow int64, canceled bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrAlgorithm, name),
		attribute.Int(AttrRounds, rounds),
		attribute.Int64(AttrMaxFlow, maxFlow),
		attribute.Bool(AttrCanceled, canceled),
	}
}

// ValidationAttributes возвращает атрибуты проверки
func ValidationAttributes(errorsCount int, passed bool) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Int(AttrValidationErrors, errorsCount),
		attribute.Bool(AttrValidationPassed, passed),
	}
}
