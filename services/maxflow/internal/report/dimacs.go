package report

import (
	"bytes"
	"context"
	"fmt"
)

// DIMACSGenerator writes a DIMACS flow solution: comment lines, the
// solution line "s <value>" and one "f <u> <v> <flow>" line per arc.
type DIMACSGenerator struct{}

// NewDIMACSGenerator создаёт новый генератор
func NewDIMACSGenerator() *DIMACSGenerator {
	return &DIMACSGenerator{}
}

// Format возвращает формат генератора
func (g *DIMACSGenerator) Format() Format {
	return FormatDIMACS
}

// Generate генерирует решение в формате DIMACS
func (g *DIMACSGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "c %s\n", data.Title)
	if data.Input != "" {
		fmt.Fprintf(&buf, "c input %s\n", data.Input)
	}
	fmt.Fprintf(&buf, "c vertices %d arcs %d source %d sink %d\n",
		data.Vertices, len(data.Arcs), data.Source, data.Sink)
	fmt.Fprintf(&buf, "s %d\n", data.MaxFlow)
	for _, a := range data.Arcs {
		fmt.Fprintf(&buf, "f %d %d %d\n", a.From, a.To, a.Flow)
	}

	return buf.Bytes(), nil
}
