package report

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// ExcelGenerator генератор Excel отчётов
type ExcelGenerator struct {
	BaseGenerator
}

// NewExcelGenerator создаёт новый генератор
func NewExcelGenerator() *ExcelGenerator {
	return &ExcelGenerator{}
}

// Format возвращает формат генератора
func (g *ExcelGenerator) Format() Format {
	return FormatExcel
}

// Generate генерирует Excel отчёт
func (g *ExcelGenerator) Generate(ctx context.Context, data *Data) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("excel style error: %w", err)
	}

	if _, err := f.NewSheet(sheetSummary); err != nil {
		return nil, err
	}
	// Удаляем дефолтный лист
	f.DeleteSheet("Sheet1")

	g.writeSummary(f, data, headerStyle)
	g.writeArcs(f, data, headerStyle)
	if data.MinCut != nil {
		g.writeMinCut(f, data.MinCut, headerStyle)
	}
	if len(data.Paths) > 0 {
		g.writePaths(f, data.Paths, headerStyle)
	}

	// Записываем в буфер
	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

const (
	sheetSummary = "Summary"
	sheetArcs    = "Arc Flows"
	sheetMinCut  = "Min Cut"
	sheetPaths   = "Paths"
)

func (g *ExcelGenerator) writeSummary(f *excelize.File, data *Data, headerStyle int) {
	row := 1

	f.SetCellValue(sheetSummary, cellAddr("A", row), data.Title)
	f.MergeCell(sheetSummary, cellAddr("A", row), cellAddr("B", row))
	row += 2

	f.SetCellValue(sheetSummary, cellAddr("A", row), "Metric")
	f.SetCellValue(sheetSummary, cellAddr("B", row), "Value")
	f.SetCellStyle(sheetSummary, cellAddr("A", row), cellAddr("B", row), headerStyle)
	row++

	rows := []struct {
		key   string
		value any
	}{
		{"Max Flow", data.MaxFlow},
		{"Vertices", data.Vertices},
		{"Arcs", len(data.Arcs)},
		{"Source", data.Source},
		{"Sink", data.Sink},
		{"Rounds", data.Rounds},
		{"Computation Time (ms)", data.DurationMs},
		{"Input", data.Input},
		{"Generated", g.FormatTimestamp(data.GeneratedAt)},
	}
	for _, r := range rows {
		f.SetCellValue(sheetSummary, cellAddr("A", row), r.key)
		f.SetCellValue(sheetSummary, cellAddr("B", row), r.value)
		row++
	}

	f.SetColWidth(sheetSummary, "A", "B", 24)
}

func (g *ExcelGenerator) writeArcs(f *excelize.File, data *Data, headerStyle int) {
	f.NewSheet(sheetArcs)

	headers := []string{"From", "To", "Flow", "Capacity", "Utilization"}
	for i, h := range headers {
		f.SetCellValue(sheetArcs, cellAddr(string(rune('A'+i)), 1), h)
	}
	f.SetCellStyle(sheetArcs, "A1", "E1", headerStyle)

	for i, a := range data.Arcs {
		row := i + 2
		f.SetCellValue(sheetArcs, cellAddr("A", row), a.From)
		f.SetCellValue(sheetArcs, cellAddr("B", row), a.To)
		f.SetCellValue(sheetArcs, cellAddr("C", row), a.Flow)
		f.SetCellValue(sheetArcs, cellAddr("D", row), a.Capacity)
		f.SetCellValue(sheetArcs, cellAddr("E", row), g.Utilization(a))
	}

	f.SetColWidth(sheetArcs, "A", "E", 14)
}

func (g *ExcelGenerator) writeMinCut(f *excelize.File, cut *CutData, headerStyle int) {
	f.NewSheet(sheetMinCut)

	f.SetCellValue(sheetMinCut, "A1", "Cut Capacity")
	f.SetCellValue(sheetMinCut, "B1", cut.Capacity)

	f.SetCellValue(sheetMinCut, "A3", "From")
	f.SetCellValue(sheetMinCut, "B3", "To")
	f.SetCellValue(sheetMinCut, "C3", "Capacity")
	f.SetCellStyle(sheetMinCut, "A3", "C3", headerStyle)

	for i, a := range cut.Arcs {
		row := i + 4
		f.SetCellValue(sheetMinCut, cellAddr("A", row), a.From)
		f.SetCellValue(sheetMinCut, cellAddr("B", row), a.To)
		f.SetCellValue(sheetMinCut, cellAddr("C", row), a.Capacity)
	}
}

func (g *ExcelGenerator) writePaths(f *excelize.File, paths []PathData, headerStyle int) {
	f.NewSheet(sheetPaths)

	f.SetCellValue(sheetPaths, "A1", "Round")
	f.SetCellValue(sheetPaths, "B1", "Amount")
	f.SetCellValue(sheetPaths, "C1", "Path")
	f.SetCellStyle(sheetPaths, "A1", "C1", headerStyle)

	for i, p := range paths {
		row := i + 2
		f.SetCellValue(sheetPaths, cellAddr("A", row), p.Round)
		f.SetCellValue(sheetPaths, cellAddr("B", row), p.Amount)
		f.SetCellValue(sheetPaths, cellAddr("C", row), g.FormatVertices(p.Vertices))
	}

	f.SetColWidth(sheetPaths, "C", "C", 40)
}

// cellAddr формирует адрес ячейки
func cellAddr(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
