package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"maxflow/pkg/apperror"
	"maxflow/services/maxflow/internal/algorithms"
	"maxflow/services/maxflow/internal/graph"
)

const expectedText = "Flot maximal : 5\n" +
	"\n" +
	"Flux sur les arcs :\n" +
	"1 -> 2 : flux 3 / capacité 3\n" +
	"1 -> 3 : flux 2 / capacité 2\n" +
	"2 -> 4 : flux 3 / capacité 3\n" +
	"3 -> 4 : flux 2 / capacité 2\n"

func solved(t *testing.T) (*graph.Network, *algorithms.Result) {
	t.Helper()
	net, err := graph.NewNetwork(4)
	require.NoError(t, err)
	require.NoError(t, net.SetSource(1))
	require.NoError(t, net.SetSink(4))
	for _, a := range [][3]int64{{1, 2, 3}, {1, 3, 2}, {2, 4, 3}, {3, 4, 2}} {
		_, err := net.AddArc(int(a[0]), int(a[1]), a[2])
		require.NoError(t, err)
	}
	res, err := algorithms.EdmondsKarp(net, algorithms.DefaultSolverOptions().WithRecordPaths(true))
	require.NoError(t, err)
	return net, res
}

func sampleData(t *testing.T) *Data {
	t.Helper()
	net, res := solved(t)
	return NewData(net, res, Options{
		Title:         "Test Report",
		Input:         "net.dimacs",
		IncludeMinCut: true,
		IncludePaths:  true,
	})
}

func TestNewData(t *testing.T) {
	data := sampleData(t)

	assert.Equal(t, int64(5), data.MaxFlow)
	assert.Equal(t, 2, data.Rounds)
	assert.Equal(t, 4, data.Vertices)
	require.Len(t, data.Arcs, 4)
	assert.Equal(t, ArcFlow{From: 1, To: 2, Flow: 3, Capacity: 3}, data.Arcs[0])
	assert.True(t, data.Arcs[0].Saturated())

	require.NotNil(t, data.MinCut)
	assert.Equal(t, int64(5), data.MinCut.Capacity)
	assert.Equal(t, []int{1}, data.MinCut.SourceSide)
	assert.Len(t, data.MinCut.Arcs, 2)

	require.Len(t, data.Paths, 2)
	assert.Equal(t, []int{1, 2, 4}, data.Paths[0].Vertices)
}

func TestNewData_OptionalSections(t *testing.T) {
	net, res := solved(t)
	data := NewData(net, res, Options{})

	assert.Equal(t, "Flot maximal", data.Title)
	assert.Nil(t, data.MinCut)
	assert.Empty(t, data.Paths)

	data = NewData(net, nil, Options{})
	assert.Equal(t, int64(5), data.MaxFlow)
	assert.Equal(t, 0, data.Rounds)
}

func TestTextGenerator(t *testing.T) {
	out, err := NewTextGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)
	assert.Equal(t, expectedText, string(out))
}

func TestTextGenerator_NoArcs(t *testing.T) {
	out, err := NewTextGenerator().Generate(context.Background(), &Data{})
	require.NoError(t, err)
	assert.Equal(t, "Flot maximal : 0\n\nFlux sur les arcs :\n", string(out))
}

func TestDIMACSGenerator(t *testing.T) {
	out, err := NewDIMACSGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "c input net.dimacs\n")
	assert.Contains(t, s, "s 5\nf 1 2 3\nf 1 3 2\nf 2 4 3\nf 3 4 2\n")
}

func TestCSVGenerator(t *testing.T) {
	out, err := NewCSVGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)

	r := csv.NewReader(bytes.NewReader(out))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	require.NoError(t, err)

	assert.Equal(t, []string{"Max Flow", "5"}, records[0])
	assert.Contains(t, records, []string{"From", "To", "Flow", "Capacity", "Utilization", "Saturated"})
	assert.Contains(t, records, []string{"1", "2", "3", "3", "1.0000", "true"})
	assert.Contains(t, records, []string{"Min Cut Capacity", "5"})
	assert.Contains(t, records, []string{"1", "3", "1 -> 2 -> 4"})
}

func TestJSONGenerator(t *testing.T) {
	out, err := NewJSONGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)

	var decoded Data
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, int64(5), decoded.MaxFlow)
	assert.Equal(t, "Test Report", decoded.Title)
	assert.Len(t, decoded.Arcs, 4)
	require.NotNil(t, decoded.MinCut)
	assert.Equal(t, int64(5), decoded.MinCut.Capacity)
}

func TestMarkdownGenerator(t *testing.T) {
	out, err := NewMarkdownGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)

	md := string(out)
	assert.True(t, strings.HasPrefix(md, "# Test Report\n"))
	assert.Contains(t, md, "| Max Flow | **5** |")
	assert.Contains(t, md, "| 1 | 2 | **3** | 3 | 100.00% |")
	assert.Contains(t, md, "## Minimum Cut")
	assert.Contains(t, md, "| 1 | 3 | 1 -> 2 -> 4 |")
}

func TestExcelGenerator(t *testing.T) {
	out, err := NewExcelGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)
	require.True(t, len(out) > 2 && out[0] == 'P' && out[1] == 'K', "expected XLSX (ZIP) signature")

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Summary", "Arc Flows", "Min Cut", "Paths"}, f.GetSheetList())

	v, err := f.GetCellValue("Summary", "B4")
	require.NoError(t, err)
	assert.Equal(t, "5", v)

	v, err = f.GetCellValue("Arc Flows", "C2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestPDFGenerator(t *testing.T) {
	out, err := NewPDFGenerator().Generate(context.Background(), sampleData(t))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "text", want: FormatText},
		{in: " CSV ", want: FormatCSV},
		{in: "markdown", want: FormatMarkdown},
		{in: "excel", want: FormatExcel},
		{in: "dimacs", want: FormatDIMACS},
		{in: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.True(t, apperror.Is(err, apperror.CodeUnsupportedFormat))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)

			gen, err := New(got)
			require.NoError(t, err)
			assert.Equal(t, got, gen.Format())
		})
	}
}

func TestPathFor(t *testing.T) {
	assert.Equal(t, "resultat.txt", PathFor("resultat.txt", FormatText))
	assert.Equal(t, "out/resultat.csv", PathFor("out/resultat.txt", FormatCSV))
	assert.Equal(t, "report.xlsx", PathFor("report", FormatExcel))
	assert.Equal(t, "report.sol", PathFor("report.out", FormatDIMACS))
}

func TestWriter_Write(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "resultat.txt")

	w, err := NewWriter(base, "text", "json", "text")
	require.NoError(t, err)
	assert.Equal(t, []Format{FormatText, FormatJSON}, w.Formats())

	outputs, err := w.Write(context.Background(), sampleData(t))
	require.NoError(t, err)
	require.Len(t, outputs, 2)
	assert.Equal(t, base, outputs[0].Path)
	assert.Equal(t, filepath.Join(dir, "resultat.json"), outputs[1].Path)

	content, err := os.ReadFile(base)
	require.NoError(t, err)
	assert.Equal(t, expectedText, string(content))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 2, "no temporary files left behind")
}

func TestWriter_Errors(t *testing.T) {
	_, err := NewWriter("")
	assert.True(t, apperror.Is(err, apperror.CodeInvalidArgument))

	_, err = NewWriter("out.txt", "docx")
	assert.True(t, apperror.Is(err, apperror.CodeUnsupportedFormat))

	w, err := NewWriter(filepath.Join(t.TempDir(), "missing", "out.txt"))
	require.NoError(t, err)
	_, err = w.Write(context.Background(), sampleData(t))
	assert.True(t, apperror.Is(err, apperror.CodeReportFailed))
	assert.Equal(t, apperror.ExitFailure, apperror.ExitCode(err))
}

func TestWriter_Write_NothingOnFailure(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "resultat.txt")
	// a directory where the JSON report should go makes the second rename fail
	require.NoError(t, os.Mkdir(filepath.Join(dir, "resultat.json"), 0o755))

	w, err := NewWriter(base, "text", "json")
	require.NoError(t, err)

	outputs, err := w.Write(context.Background(), sampleData(t))
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeReportFailed))
	assert.Empty(t, outputs)

	_, statErr := os.Stat(base)
	assert.True(t, os.IsNotExist(statErr), "text report must not survive a failed write")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "only the blocking directory remains")
	assert.Equal(t, "resultat.json", entries[0].Name())
}

func TestWriter_Write_CanceledLeavesNothing(t *testing.T) {
	dir := t.TempDir()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	w, err := NewWriter(filepath.Join(dir, "resultat.txt"), "text", "csv")
	require.NoError(t, err)

	_, err = w.Write(ctx, sampleData(t))
	assert.True(t, apperror.Is(err, apperror.CodeTimeout))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestWriteFile_Replaces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resultat.txt")
	require.NoError(t, os.WriteFile(path, []byte("old content that is longer"), 0o644))

	require.NoError(t, WriteFile(path, []byte("new")))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "new", string(content))
}
