package report

import (
	"bytes"
	"context"
	"fmt"
)

// MarkdownGenerator генератор Markdown отчётов
type MarkdownGenerator struct {
	BaseGenerator
}

// NewMarkdownGenerator создаёт новый генератор
func NewMarkdownGenerator() *MarkdownGenerator {
	return &MarkdownGenerator{}
}

// Format возвращает формат генератора
func (g *MarkdownGenerator) Format() Format {
	return FormatMarkdown
}

// Generate генерирует Markdown отчёт
func (g *MarkdownGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	var buf bytes.Buffer

	g.writeHeader(&buf, data)
	g.writeSummary(&buf, data)
	g.writeArcs(&buf, data)
	if data.MinCut != nil {
		g.writeMinCut(&buf, data.MinCut)
	}
	if len(data.Paths) > 0 {
		g.writePaths(&buf, data.Paths)
	}

	buf.WriteString("---\n\n")
	buf.WriteString(fmt.Sprintf("*Generated %s*\n", g.FormatTimestamp(data.GeneratedAt)))

	return buf.Bytes(), nil
}

func (g *MarkdownGenerator) writeHeader(buf *bytes.Buffer, data *Data) {
	buf.WriteString(fmt.Sprintf("# %s\n\n", data.Title))
	if data.Input != "" {
		buf.WriteString(fmt.Sprintf("**Input:** `%s`\n\n", data.Input))
	}
	if data.RunID != "" {
		buf.WriteString(fmt.Sprintf("**Run:** `%s`\n\n", data.RunID))
	}
}

func (g *MarkdownGenerator) writeSummary(buf *bytes.Buffer, data *Data) {
	buf.WriteString("## Summary\n\n")
	buf.WriteString("| Metric | Value |\n")
	buf.WriteString("|--------|-------|\n")
	buf.WriteString(fmt.Sprintf("| Max Flow | **%d** |\n", data.MaxFlow))
	buf.WriteString(fmt.Sprintf("| Vertices | %d |\n", data.Vertices))
	buf.WriteString(fmt.Sprintf("| Arcs | %d |\n", len(data.Arcs)))
	buf.WriteString(fmt.Sprintf("| Source | %d |\n", data.Source))
	buf.WriteString(fmt.Sprintf("| Sink | %d |\n", data.Sink))
	buf.WriteString(fmt.Sprintf("| Rounds | %d |\n", data.Rounds))
	buf.WriteString(fmt.Sprintf("| Time | %s |\n", g.FormatDuration(data.DurationMs)))
	if data.Cached {
		buf.WriteString("| Cached | yes |\n")
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeArcs(buf *bytes.Buffer, data *Data) {
	buf.WriteString("## Arc Flows\n\n")
	if len(data.Arcs) == 0 {
		buf.WriteString("_No arcs._\n\n")
		return
	}
	buf.WriteString("| From | To | Flow | Capacity | Utilization |\n")
	buf.WriteString("|------|----|------|----------|-------------|\n")
	for _, a := range data.Arcs {
		flow := fmt.Sprintf("%d", a.Flow)
		if a.Saturated() {
			flow = "**" + flow + "**"
		}
		buf.WriteString(fmt.Sprintf("| %d | %d | %s | %d | %s |\n",
			a.From, a.To, flow, a.Capacity, g.FormatPercent(g.Utilization(a))))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writeMinCut(buf *bytes.Buffer, cut *CutData) {
	buf.WriteString("## Minimum Cut\n\n")
	buf.WriteString(fmt.Sprintf("Capacity: **%d**\n\n", cut.Capacity))
	buf.WriteString(fmt.Sprintf("Source side: %v\n\n", cut.SourceSide))
	if len(cut.Arcs) == 0 {
		return
	}
	buf.WriteString("| From | To | Capacity |\n")
	buf.WriteString("|------|----|----------|\n")
	for _, a := range cut.Arcs {
		buf.WriteString(fmt.Sprintf("| %d | %d | %d |\n", a.From, a.To, a.Capacity))
	}
	buf.WriteString("\n")
}

func (g *MarkdownGenerator) writePaths(buf *bytes.Buffer, paths []PathData) {
	buf.WriteString("## Augmenting Paths\n\n")
	buf.WriteString("| Round | Amount | Path |\n")
	buf.WriteString("|-------|--------|------|\n")
	for _, p := range paths {
		buf.WriteString(fmt.Sprintf("| %d | %d | %s |\n", p.Round, p.Amount, g.FormatVertices(p.Vertices)))
	}
	buf.WriteString("\n")
}
