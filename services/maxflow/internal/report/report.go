// Package report renders solve results.
//
// The text format reproduces the historical report byte for byte; the other
// formats carry the same figures plus optional minimum cut and augmenting
// path sections.
package report

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"maxflow/pkg/apperror"
	"maxflow/services/maxflow/internal/algorithms"
	"maxflow/services/maxflow/internal/graph"
)

// Format identifies a report format.
type Format string

const (
	FormatText     Format = "text"
	FormatCSV      Format = "csv"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatExcel    Format = "xlsx"
	FormatPDF      Format = "pdf"
	FormatDIMACS   Format = "dimacs"
)

// Extension returns the file extension used for the format.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatDIMACS:
		return ".sol"
	default:
		return "." + string(f)
	}
}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case FormatText, FormatCSV, FormatJSON, FormatMarkdown, FormatExcel, FormatPDF, FormatDIMACS:
		return f, nil
	case "markdown":
		return FormatMarkdown, nil
	case "excel":
		return FormatExcel, nil
	default:
		return "", apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported report format %q", s)
	}
}

// ArcFlow is one arc row of a report.
type ArcFlow struct {
	From     int   `json:"from"`
	To       int   `json:"to"`
	Flow     int64 `json:"flow"`
	Capacity int64 `json:"capacity"`
}

// Saturated reports whether the arc carries its full capacity.
func (a ArcFlow) Saturated() bool {
	return a.Capacity > 0 && a.Flow == a.Capacity
}

// CutData describes the minimum cut.
type CutData struct {
	SourceSide []int     `json:"source_side"`
	Arcs       []ArcFlow `json:"arcs"`
	Capacity   int64     `json:"capacity"`
}

// PathData describes one augmentation.
type PathData struct {
	Round    int   `json:"round"`
	Vertices []int `json:"vertices"`
	Amount   int64 `json:"amount"`
}

// Data is everything a generator needs.
type Data struct {
	Title       string    `json:"title"`
	RunID       string    `json:"run_id,omitempty"`
	Input       string    `json:"input,omitempty"`
	GeneratedAt time.Time `json:"generated_at"`

	Vertices int   `json:"vertices"`
	Source   int   `json:"source"`
	Sink     int   `json:"sink"`
	MaxFlow  int64 `json:"max_flow"`
	Rounds   int   `json:"rounds"`

	DurationMs float64 `json:"duration_ms"`
	Cached     bool    `json:"cached"`

	Arcs   []ArcFlow  `json:"arcs"`
	MinCut *CutData   `json:"min_cut,omitempty"`
	Paths  []PathData `json:"paths,omitempty"`
}

// Options selects optional sections.
type Options struct {
	Title         string
	RunID         string
	Input         string
	IncludeMinCut bool
	IncludePaths  bool
}

// NewData collects report data from a solved network. res may carry no
// cut or paths; the matching sections are then left out.
func NewData(net *graph.Network, res *algorithms.Result, opts Options) *Data {
	d := &Data{
		Title:       opts.Title,
		RunID:       opts.RunID,
		Input:       opts.Input,
		GeneratedAt: time.Now(),
		Vertices:    net.VertexCount(),
		Source:      net.Source(),
		Sink:        net.Sink(),
		Arcs:        make([]ArcFlow, 0, net.ArcCount()),
	}
	if d.Title == "" {
		d.Title = "Flot maximal"
	}

	net.Each(func(a *graph.Arc) {
		d.Arcs = append(d.Arcs, arcFlow(a))
	})

	if res == nil {
		d.MaxFlow = graph.Value(net)
		return d
	}

	d.MaxFlow = res.MaxFlow
	d.Rounds = res.Rounds
	d.DurationMs = float64(res.Duration.Microseconds()) / 1000

	if opts.IncludeMinCut && res.MinCut != nil {
		cut := &CutData{
			SourceSide: res.MinCut.SourceSide,
			Capacity:   res.MinCut.Capacity,
		}
		for _, id := range res.MinCut.Arcs {
			cut.Arcs = append(cut.Arcs, arcFlow(net.Arc(id)))
		}
		d.MinCut = cut
	}

	if opts.IncludePaths {
		for _, p := range res.Paths {
			d.Paths = append(d.Paths, PathData{
				Round:    p.Round,
				Vertices: p.Path.Vertices,
				Amount:   p.Amount,
			})
		}
	}

	return d
}

func arcFlow(a *graph.Arc) ArcFlow {
	return ArcFlow{From: a.From, To: a.To, Flow: a.Flow, Capacity: a.Capacity}
}

// Generator renders report data in one format.
type Generator interface {
	Generate(ctx context.Context, data *Data) ([]byte, error)
	Format() Format
}

// New returns the generator for f.
func New(f Format) (Generator, error) {
	switch f {
	case FormatText:
		return NewTextGenerator(), nil
	case FormatCSV:
		return NewCSVGenerator(), nil
	case FormatJSON:
		return NewJSONGenerator(), nil
	case FormatMarkdown:
		return NewMarkdownGenerator(), nil
	case FormatExcel:
		return NewExcelGenerator(), nil
	case FormatPDF:
		return NewPDFGenerator(), nil
	case FormatDIMACS:
		return NewDIMACSGenerator(), nil
	default:
		return nil, apperror.Newf(apperror.CodeUnsupportedFormat, "unsupported report format %q", f)
	}
}

// PathFor returns where a report in format f goes, given the primary
// output path. The text report uses base itself; other formats swap the
// extension.
func PathFor(base string, f Format) string {
	if f == FormatText {
		return base
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + f.Extension()
}

// BaseGenerator базовые утилиты для генераторов
type BaseGenerator struct{}

// FormatDuration форматирует длительность
func (b *BaseGenerator) FormatDuration(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.2f ms", ms)
	}
	return fmt.Sprintf("%.2f s", ms/1000)
}

// FormatTimestamp форматирует время
func (b *BaseGenerator) FormatTimestamp(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}

// FormatVertices форматирует последовательность вершин
func (b *BaseGenerator) FormatVertices(vs []int) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%d", v)
	}
	return strings.Join(parts, " -> ")
}

// Utilization возвращает долю использования пропускной способности
func (b *BaseGenerator) Utilization(a ArcFlow) float64 {
	if a.Capacity == 0 {
		return 0
	}
	return float64(a.Flow) / float64(a.Capacity)
}

// FormatPercent форматирует процент
func (b *BaseGenerator) FormatPercent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}
