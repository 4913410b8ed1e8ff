package report

import (
	"context"
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/border"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// maxPDFRows ограничивает размер таблиц в PDF
const maxPDFRows = 40

// PDFGenerator генератор PDF отчётов
type PDFGenerator struct {
	BaseGenerator
}

// NewPDFGenerator создаёт новый генератор
func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

// Format возвращает формат генератора
func (g *PDFGenerator) Format() Format {
	return FormatPDF
}

// Стили
var (
	// Цвета
	primaryColor   = &props.Color{Red: 52, Green: 152, Blue: 219}  // #3498db
	headerBgColor  = &props.Color{Red: 44, Green: 62, Blue: 80}    // #2c3e50
	lightGrayColor = &props.Color{Red: 236, Green: 240, Blue: 241} // #ecf0f1
	darkGrayColor  = &props.Color{Red: 127, Green: 140, Blue: 141} // #7f8c8d

	titleStyle = props.Text{
		Size:  24,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: headerBgColor,
	}

	h2Style = props.Text{
		Size:  16,
		Style: fontstyle.Bold,
		Color: headerBgColor,
		Top:   5,
	}

	smallStyle = props.Text{
		Size:  8,
		Color: darkGrayColor,
	}

	metricValueStyle = props.Text{
		Size:  20,
		Style: fontstyle.Bold,
		Align: align.Center,
		Color: primaryColor,
	}

	metricLabelStyle = props.Text{
		Size:  9,
		Align: align.Center,
		Color: darkGrayColor,
	}

	tableHeaderStyle = &props.Cell{
		BackgroundColor: primaryColor,
	}

	tableHeaderTextStyle = props.Text{
		Size:  9,
		Style: fontstyle.Bold,
		Color: &props.Color{Red: 255, Green: 255, Blue: 255},
		Align: align.Center,
	}

	tableCellStyle = &props.Cell{
		BorderType:  border.Bottom,
		BorderColor: lightGrayColor,
	}

	tableCellTextStyle = props.Text{
		Size:  9,
		Align: align.Center,
	}
)

// Generate генерирует PDF отчёт
func (g *PDFGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()

	m := maroto.New(cfg)

	g.addHeader(m, data)

	g.addSection(m, "Network")
	g.addMetricCards(m, []metricCard{
		{Label: "Vertices", Value: fmt.Sprintf("%d", data.Vertices)},
		{Label: "Arcs", Value: fmt.Sprintf("%d", len(data.Arcs))},
		{Label: "Source", Value: fmt.Sprintf("%d", data.Source)},
		{Label: "Sink", Value: fmt.Sprintf("%d", data.Sink)},
	})

	g.addSection(m, "Result")
	g.addMetricCards(m, []metricCard{
		{Label: "Maximum Flow", Value: fmt.Sprintf("%d", data.MaxFlow), Highlight: true},
		{Label: "Rounds", Value: fmt.Sprintf("%d", data.Rounds)},
		{Label: "Computation Time", Value: g.FormatDuration(data.DurationMs)},
	})

	if len(data.Arcs) > 0 {
		g.addSection(m, "Arc Flows")
		g.addArcTable(m, data.Arcs)
	}

	if data.MinCut != nil {
		g.addSection(m, fmt.Sprintf("Minimum Cut (capacity %d)", data.MinCut.Capacity))
		g.addArcTable(m, data.MinCut.Arcs)
	}

	if len(data.Paths) > 0 {
		g.addSection(m, "Augmenting Paths")
		g.addPathTable(m, data.Paths)
	}

	g.addFooter(m, data)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	return doc.GetBytes(), nil
}

func (g *PDFGenerator) addHeader(m core.Maroto, data *Data) {
	m.AddRow(15,
		text.NewCol(12, data.Title, titleStyle),
	)

	m.AddRow(5,
		line.NewCol(12),
	)

	if data.Input != "" {
		m.AddRow(6,
			text.NewCol(12, fmt.Sprintf("Input: %s", data.Input), smallStyle),
		)
	}

	m.AddRow(8) // Отступ
}

type metricCard struct {
	Label     string
	Value     string
	Highlight bool
}

func (g *PDFGenerator) addMetricCards(m core.Maroto, cards []metricCard) {
	if len(cards) == 0 {
		return
	}

	colSize := 12 / len(cards)

	var cols []core.Col
	for _, card := range cards {
		valueStyle := metricValueStyle
		if !card.Highlight {
			valueStyle.Size = 14
		}

		cols = append(cols,
			col.New(colSize).Add(
				text.New(card.Value, valueStyle),
				text.New(card.Label, metricLabelStyle),
			),
		)
	}

	m.AddRow(20, cols...)
}

func (g *PDFGenerator) addSection(m core.Maroto, title string) {
	m.AddRow(10,
		text.NewCol(12, title, h2Style),
	)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: primaryColor}),
	)
	m.AddRow(5)
}

func (g *PDFGenerator) addArcTable(m core.Maroto, arcs []ArcFlow) {
	m.AddRow(8,
		text.NewCol(3, "From", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(3, "To", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Flow", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Capacity", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Utilization", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for i, a := range arcs {
		if i >= maxPDFRows {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(arcs)-maxPDFRows), smallStyle),
			)
			break
		}

		m.AddRow(6,
			text.NewCol(3, fmt.Sprintf("%d", a.From), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(3, fmt.Sprintf("%d", a.To), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", a.Flow), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", a.Capacity), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, g.FormatPercent(g.Utilization(a)), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addPathTable(m core.Maroto, paths []PathData) {
	m.AddRow(8,
		text.NewCol(2, "Round", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(2, "Amount", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
		text.NewCol(8, "Path", tableHeaderTextStyle).WithStyle(tableHeaderStyle),
	)

	for i, p := range paths {
		if i >= maxPDFRows {
			m.AddRow(6,
				text.NewCol(12, fmt.Sprintf("... and %d more rows", len(paths)-maxPDFRows), smallStyle),
			)
			break
		}

		m.AddRow(6,
			text.NewCol(2, fmt.Sprintf("%d", p.Round), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(2, fmt.Sprintf("%d", p.Amount), tableCellTextStyle).WithStyle(tableCellStyle),
			text.NewCol(8, g.FormatVertices(p.Vertices), tableCellTextStyle).WithStyle(tableCellStyle),
		)
	}
}

func (g *PDFGenerator) addFooter(m core.Maroto, data *Data) {
	m.AddRow(10)
	m.AddRow(2,
		line.NewCol(12, props.Line{Color: lightGrayColor}),
	)
	m.AddRow(6,
		text.NewCol(12,
			fmt.Sprintf("Generated by maxflow | %s", g.FormatTimestamp(data.GeneratedAt)),
			props.Text{Size: 8, Color: darkGrayColor, Align: align.Center},
		),
	)
}
