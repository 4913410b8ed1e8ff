package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"
)

// CSVGenerator генератор CSV отчётов
type CSVGenerator struct {
	BaseGenerator
}

// NewCSVGenerator создаёт новый генератор
func NewCSVGenerator() *CSVGenerator {
	return &CSVGenerator{}
}

// Format возвращает формат генератора
func (g *CSVGenerator) Format() Format {
	return FormatCSV
}

// csvWriter обёртка для отслеживания ошибок
type csvWriter struct {
	w   *csv.Writer
	err error
}

func (cw *csvWriter) Write(record []string) {
	if cw.err != nil {
		return
	}
	cw.err = cw.w.Write(record)
}

func (cw *csvWriter) Flush() {
	if cw.err != nil {
		return
	}
	cw.w.Flush()
	cw.err = cw.w.Error()
}

func (cw *csvWriter) Error() error {
	return cw.err
}

// Generate генерирует CSV отчёт
func (g *CSVGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer
	cw := &csvWriter{w: csv.NewWriter(&buf)}

	cw.Write([]string{"Max Flow", i64(data.MaxFlow)})
	cw.Write([]string{"Source", strconv.Itoa(data.Source)})
	cw.Write([]string{"Sink", strconv.Itoa(data.Sink)})
	cw.Write([]string{"Rounds", strconv.Itoa(data.Rounds)})
	cw.Write([]string{})

	cw.Write([]string{"From", "To", "Flow", "Capacity", "Utilization", "Saturated"})
	for _, a := range data.Arcs {
		cw.Write([]string{
			strconv.Itoa(a.From),
			strconv.Itoa(a.To),
			i64(a.Flow),
			i64(a.Capacity),
			fmt.Sprintf("%.4f", g.Utilization(a)),
			strconv.FormatBool(a.Saturated()),
		})
	}

	if data.MinCut != nil {
		cw.Write([]string{})
		cw.Write([]string{"Min Cut Capacity", i64(data.MinCut.Capacity)})
		cw.Write([]string{"Cut From", "Cut To", "Capacity"})
		for _, a := range data.MinCut.Arcs {
			cw.Write([]string{strconv.Itoa(a.From), strconv.Itoa(a.To), i64(a.Capacity)})
		}
	}

	if len(data.Paths) > 0 {
		cw.Write([]string{})
		cw.Write([]string{"Round", "Amount", "Path"})
		for _, p := range data.Paths {
			cw.Write([]string{strconv.Itoa(p.Round), i64(p.Amount), g.FormatVertices(p.Vertices)})
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, fmt.Errorf("csv write error: %w", err)
	}

	return buf.Bytes(), nil
}

func i64(v int64) string {
	return strconv.FormatInt(v, 10)
}
