// Package dimacs reads maximum flow problems in the DIMACS edge-list format.
//
// Recognised lines:
//
//	c <text>          comment
//	p <tag> <n> <m>   problem line; the first one wins, vertices are 1..n,
//	                  m is informational
//	n <id> s|t        designates the source (s) or sink (t)
//	a <u> <v> <cap>   arc u→v with capacity cap
//
// Blank lines and lines of any other kind are skipped. By default every arc
// is placed in front of the arcs already read for its tail vertex, so
// adjacency lists come out in reverse file order.
package dimacs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"maxflow/pkg/apperror"
	"maxflow/services/maxflow/internal/graph"
)

// maxLineBytes bounds a single input line.
const maxLineBytes = 1 << 20

// Options configures reading.
type Options struct {
	// PreserveFileOrder keeps arcs in file order within each adjacency list.
	PreserveFileOrder bool

	// MaxVertices rejects problems declaring more vertices. Zero means no limit.
	MaxVertices int
}

// Stats describes what was read.
type Stats struct {
	Lines        int
	Comments     int
	ArcLines     int
	Skipped      int
	ProblemTag   string
	Vertices     int
	DeclaredArcs int

	// Warnings lists non-fatal oddities: extra problem lines, unknown
	// designations, a declared arc count that does not match.
	Warnings []string
}

func (s *Stats) warnf(format string, args ...any) {
	s.Warnings = append(s.Warnings, fmt.Sprintf(format, args...))
}

type arcLine struct {
	line int
	u, v int
	c    int64
}

type designation struct {
	line int
	id   int
	kind byte
}

// ReadFile opens path and parses it.
func ReadFile(path string, opts Options) (*graph.Network, *Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, apperror.Wrap(err, apperror.CodeFileUnreadable, "cannot open input").
			WithDetails("path", path)
	}
	defer f.Close()

	return Parse(f, opts)
}

// Parse reads a DIMACS problem from r and builds the network.
//
// Every failure is an *apperror.Error with an input error code, carrying the
// offending line number in its details where one exists.
func Parse(r io.Reader, opts Options) (*graph.Network, *Stats, error) {
	stats := &Stats{}

	var (
		haveProblem bool
		arcs        []arcLine
		terminals   []designation
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	for sc.Scan() {
		stats.Lines++
		lineNo := stats.Lines

		line := strings.TrimSpace(sc.Text())
		if line == "" {
			stats.Skipped++
			continue
		}

		switch line[0] {
		case 'c':
			stats.Comments++

		case 'p':
			if haveProblem {
				stats.warnf("line %d: additional problem line ignored", lineNo)
				continue
			}
			tag, n, m, err := parseProblem(line, lineNo)
			if err != nil {
				return nil, stats, err
			}
			haveProblem = true
			stats.ProblemTag = tag
			stats.Vertices = n
			stats.DeclaredArcs = m

		case 'n':
			d, ok, err := parseDesignation(line, lineNo)
			if err != nil {
				return nil, stats, err
			}
			if !ok {
				stats.warnf("line %d: designation %q ignored", lineNo, line)
				continue
			}
			terminals = append(terminals, d)

		case 'a':
			a, err := parseArc(line, lineNo)
			if err != nil {
				return nil, stats, err
			}
			stats.ArcLines++
			arcs = append(arcs, a)

		default:
			stats.Skipped++
		}
	}
	if err := sc.Err(); err != nil {
		return nil, stats, apperror.Wrap(err, apperror.CodeFileUnreadable, "failed reading input")
	}

	if !haveProblem {
		return nil, stats, apperror.New(apperror.CodeInvalidHeader, "missing problem line")
	}
	if opts.MaxVertices > 0 && stats.Vertices > opts.MaxVertices {
		return nil, stats, apperror.Newf(apperror.CodeResourceExhausted,
			"problem declares %d vertices, limit is %d", stats.Vertices, opts.MaxVertices)
	}

	net, err := graph.NewNetwork(stats.Vertices)
	if err != nil {
		return nil, stats, err
	}
	net.SetDeclaredArcs(stats.DeclaredArcs)

	for _, d := range terminals {
		var err error
		if d.kind == 's' {
			err = net.SetSource(d.id)
		} else {
			err = net.SetSink(d.id)
		}
		if err != nil {
			return nil, stats, withLine(err, d.line)
		}
	}

	for _, a := range arcs {
		if _, err := net.AddArc(a.u, a.v, a.c); err != nil {
			return nil, stats, withLine(err, a.line)
		}
	}

	if err := net.Validate(); err != nil {
		return nil, stats, err
	}

	if !opts.PreserveFileOrder {
		net.ReverseAdjacency()
	}

	if stats.DeclaredArcs != stats.ArcLines {
		stats.warnf("problem line declares %d arcs, read %d", stats.DeclaredArcs, stats.ArcLines)
	}

	return net, stats, nil
}

func parseProblem(line string, lineNo int) (string, int, int, error) {
	f := strings.Fields(line)
	if len(f) < 4 || f[0] != "p" {
		return "", 0, 0, malformed(apperror.CodeInvalidHeader, lineNo, line)
	}
	n, err := strconv.Atoi(f[2])
	if err != nil {
		return "", 0, 0, malformed(apperror.CodeInvalidHeader, lineNo, line)
	}
	m, err := strconv.Atoi(f[3])
	if err != nil {
		return "", 0, 0, malformed(apperror.CodeInvalidHeader, lineNo, line)
	}
	if n <= 0 {
		return "", 0, 0, apperror.Newf(apperror.CodeInvalidHeader, "vertex count must be positive, got %d", n).
			WithDetails("line", lineNo)
	}
	return f[1], n, m, nil
}

// parseDesignation returns ok=false for well-formed lines that designate
// neither source nor sink.
func parseDesignation(line string, lineNo int) (designation, bool, error) {
	f := strings.Fields(line)
	if len(f) < 3 || f[0] != "n" {
		return designation{}, false, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	id, err := strconv.Atoi(f[1])
	if err != nil {
		return designation{}, false, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	switch f[2] {
	case "s", "t":
		return designation{line: lineNo, id: id, kind: f[2][0]}, true, nil
	default:
		return designation{}, false, nil
	}
}

func parseArc(line string, lineNo int) (arcLine, error) {
	f := strings.Fields(line)
	if len(f) < 4 || f[0] != "a" {
		return arcLine{}, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	u, err := strconv.Atoi(f[1])
	if err != nil {
		return arcLine{}, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	v, err := strconv.Atoi(f[2])
	if err != nil {
		return arcLine{}, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	c, err := strconv.ParseInt(f[3], 10, 64)
	if err != nil {
		return arcLine{}, malformed(apperror.CodeInvalidInput, lineNo, line)
	}
	return arcLine{line: lineNo, u: u, v: v, c: c}, nil
}

func malformed(code apperror.ErrorCode, lineNo int, line string) error {
	return apperror.Newf(code, "line %d: malformed %q", lineNo, line).
		WithDetails("line", lineNo)
}

func withLine(err error, lineNo int) error {
	if appErr, ok := err.(*apperror.Error); ok {
		return appErr.WithDetails("line", lineNo)
	}
	return err
}
