package report

import (
	"bytes"
	"context"
	"fmt"
)

// TextGenerator writes the plain text report:
//
//	Flot maximal : <value>
//
//	Flux sur les arcs :
//	<u> -> <v> : flux <f> / capacité <c>
//
// Arcs are listed by tail vertex, then in adjacency order.
type TextGenerator struct{}

// NewTextGenerator создаёт новый генератор
func NewTextGenerator() *TextGenerator {
	return &TextGenerator{}
}

// Format возвращает формат генератора
func (g *TextGenerator) Format() Format {
	return FormatText
}

// Generate генерирует текстовый отчёт
func (g *TextGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Flot maximal : %d\n", data.MaxFlow)
	buf.WriteString("\nFlux sur les arcs :\n")
	for _, a := range data.Arcs {
		fmt.Fprintf(&buf, "%d -> %d : flux %d / capacité %d\n", a.From, a.To, a.Flow, a.Capacity)
	}

	return buf.Bytes(), nil
}
