package report

import (
	"context"
	"encoding/json"
	"fmt"
)

// JSONGenerator генератор JSON отчётов
type JSONGenerator struct {
	Indent bool
}

// NewJSONGenerator создаёт новый генератор
func NewJSONGenerator() *JSONGenerator {
	return &JSONGenerator{Indent: true}
}

// Format возвращает формат генератора
func (g *JSONGenerator) Format() Format {
	return FormatJSON
}

// Generate генерирует JSON отчёт
func (g *JSONGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var (
		out []byte
		err error
	)
	if g.Indent {
		out, err = json.MarshalIndent(data, "", "  ")
	} else {
		out, err = json.Marshal(data)
	}
	if err != nil {
		return nil, fmt.Errorf("json marshal error: %w", err)
	}
	return append(out, '\n'), nil
}
