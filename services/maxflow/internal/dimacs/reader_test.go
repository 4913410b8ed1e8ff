package dimacs

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"maxflow/pkg/apperror"
	"maxflow/services/maxflow/internal/graph"
)

const sample = `c sample network
p max 4 5
n 1 s
n 4 t
a 1 2 3
a 1 3 2
a 2 3 1
a 2 4 2
a 3 4 3
`

func outArcs(net *graph.Network, u int) [][2]int64 {
	var out [][2]int64
	for _, id := range net.OutArcs(u) {
		a := net.Arc(id)
		out = append(out, [2]int64{int64(a.To), a.Capacity})
	}
	return out
}

func TestParse_ReverseFileOrder(t *testing.T) {
	net, stats, err := Parse(strings.NewReader(sample), Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, net.VertexCount())
	assert.Equal(t, 1, net.Source())
	assert.Equal(t, 4, net.Sink())
	assert.Equal(t, 5, net.ArcCount())
	assert.Equal(t, 5, net.DeclaredArcs())

	// later lines come first
	assert.Equal(t, [][2]int64{{3, 2}, {2, 3}}, outArcs(net, 1))
	assert.Equal(t, [][2]int64{{4, 2}, {3, 1}}, outArcs(net, 2))

	assert.Equal(t, "max", stats.ProblemTag)
	assert.Equal(t, 9, stats.Lines)
	assert.Equal(t, 1, stats.Comments)
	assert.Equal(t, 5, stats.ArcLines)
	assert.Empty(t, stats.Warnings)
}

func TestParse_PreserveFileOrder(t *testing.T) {
	net, _, err := Parse(strings.NewReader(sample), Options{PreserveFileOrder: true})
	require.NoError(t, err)

	assert.Equal(t, [][2]int64{{2, 3}, {3, 2}}, outArcs(net, 1))
	assert.Equal(t, [][2]int64{{3, 1}, {4, 2}}, outArcs(net, 2))
}

func TestParse_Lenient(t *testing.T) {
	input := `
c arcs may precede the problem line
a 1 2 7
x unknown line kind
p max 2 3
p max 9 9
n 1 s
n 2 t
n 2 q

`
	net, stats, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)

	assert.Equal(t, 2, net.VertexCount())
	assert.Equal(t, 1, net.ArcCount())
	assert.Equal(t, 3, stats.Skipped)
	require.Len(t, stats.Warnings, 3)
	assert.Contains(t, stats.Warnings[0], "additional problem line")
	assert.Contains(t, stats.Warnings[1], "designation")
	assert.Contains(t, stats.Warnings[2], "declares 3 arcs, read 1")
}

func TestParse_LastDesignationWins(t *testing.T) {
	input := "p max 3 0\nn 1 s\nn 2 s\nn 3 t\n"
	net, _, err := Parse(strings.NewReader(input), Options{})
	require.NoError(t, err)
	assert.Equal(t, 2, net.Source())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  apperror.ErrorCode
		line  int
	}{
		{name: "empty", input: "", code: apperror.CodeInvalidHeader},
		{name: "comments_only", input: "c nothing\n", code: apperror.CodeInvalidHeader},
		{name: "zero_vertices", input: "p max 0 0\n", code: apperror.CodeInvalidHeader, line: 1},
		{name: "negative_vertices", input: "p max -2 0\n", code: apperror.CodeInvalidHeader, line: 1},
		{name: "short_problem_line", input: "p max 4\n", code: apperror.CodeInvalidHeader, line: 1},
		{name: "non_numeric_problem", input: "p max four 1\n", code: apperror.CodeInvalidHeader, line: 1},
		{name: "missing_sink", input: "p max 2 1\nn 1 s\na 1 2 5\n", code: apperror.CodeInvalidSink},
		{name: "missing_source", input: "p max 2 1\nn 2 t\na 1 2 5\n", code: apperror.CodeInvalidSource},
		{name: "source_out_of_range", input: "p max 2 0\nn 3 s\nn 2 t\n", code: apperror.CodeInvalidSource, line: 2},
		{name: "sink_out_of_range", input: "p max 2 0\nn 1 s\nn 0 t\n", code: apperror.CodeInvalidSink, line: 3},
		{name: "source_equals_sink", input: "p max 2 0\nn 1 s\nn 1 t\n", code: apperror.CodeSourceEqualsSink},
		{name: "dangling_arc", input: "p max 2 1\nn 1 s\nn 2 t\na 1 5 1\n", code: apperror.CodeDanglingArc, line: 4},
		{name: "negative_capacity", input: "p max 2 1\nn 1 s\nn 2 t\na 1 2 -4\n", code: apperror.CodeNegativeCapacity, line: 4},
		{name: "malformed_arc", input: "p max 2 1\nn 1 s\nn 2 t\na 1 2\n", code: apperror.CodeInvalidInput, line: 4},
		{name: "non_numeric_arc", input: "p max 2 1\nn 1 s\nn 2 t\na 1 2 lots\n", code: apperror.CodeInvalidInput, line: 4},
		{name: "malformed_designation", input: "p max 2 0\nn one s\n", code: apperror.CodeInvalidInput, line: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net, _, err := Parse(strings.NewReader(tt.input), Options{})
			require.Error(t, err)
			assert.Nil(t, net)
			assert.True(t, apperror.Is(err, tt.code), "got %v", err)
			assert.True(t, apperror.IsInputError(err))

			if tt.line > 0 {
				var appErr *apperror.Error
				require.ErrorAs(t, err, &appErr)
				assert.Equal(t, tt.line, appErr.Details["line"])
			}
		})
	}
}

func TestParse_MaxVertices(t *testing.T) {
	_, _, err := Parse(strings.NewReader(sample), Options{MaxVertices: 3})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeResourceExhausted))
	assert.Equal(t, apperror.ExitResource, apperror.ExitCode(err))

	_, _, err = Parse(strings.NewReader(sample), Options{MaxVertices: 4})
	assert.NoError(t, err)
}

func TestParse_VertexCountAboveHardLimit(t *testing.T) {
	inputs := []string{
		"p max 9223372036854775807 0\nn 1 s\nn 2 t\n",
		"p max 2147483648 0\nn 1 s\nn 2 t\n",
	}
	for _, input := range inputs {
		net, _, err := Parse(strings.NewReader(input), Options{})
		require.Error(t, err)
		assert.Nil(t, net)
		assert.True(t, apperror.Is(err, apperror.CodeResourceExhausted), "got %v", err)
		assert.Equal(t, apperror.ExitResource, apperror.ExitCode(err))
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "net.dimacs")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	net, _, err := ReadFile(path, Options{})
	require.NoError(t, err)
	assert.Equal(t, 5, net.ArcCount())

	_, _, err = ReadFile(filepath.Join(t.TempDir(), "missing.dimacs"), Options{})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.CodeFileUnreadable))
	assert.Equal(t, apperror.ExitInput, apperror.ExitCode(err))
}
