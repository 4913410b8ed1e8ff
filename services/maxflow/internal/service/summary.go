package service

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// maxSummaryArcs caps the arc rows printed in the summary.
const maxSummaryArcs = 20

// WriteSummary prints run figures and the busiest arcs as tables.
func WriteSummary(w io.Writer, out *Outcome) error {
	if out == nil || out.Network == nil || out.Result == nil {
		return fmt.Errorf("summary: incomplete outcome")
	}
	net, res := out.Network, out.Result

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.SetTitle("Flot maximal")
	t.AppendRows([]table.Row{
		{"Run", out.RunID},
		{"Input", out.Input},
		{"Vertices", net.VertexCount()},
		{"Arcs", net.ArcCount()},
		{"Source -> Sink", fmt.Sprintf("%d -> %d", net.Source(), net.Sink())},
		{"Max flow", res.MaxFlow},
		{"Rounds", res.Rounds},
		{"Cached", out.Cached},
		{"Duration", out.Duration.Round(time.Microsecond)},
	})
	if res.MinCut != nil {
		t.AppendRow(table.Row{"Min cut arcs", len(res.MinCut.Arcs)})
	}
	for _, o := range out.Outputs {
		t.AppendRow(table.Row{"Report " + string(o.Format), o.Path})
	}
	if st := out.CacheStats; st != nil {
		t.AppendRow(table.Row{"Cache " + st.Backend, fmt.Sprintf("%d keys, hit rate %.0f%%", st.TotalKeys, st.HitRate*100)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Colors: text.Colors{text.Bold}},
	})
	t.Render()

	arcs := table.NewWriter()
	arcs.SetOutputMirror(w)
	arcs.SetStyle(table.StyleLight)
	arcs.AppendHeader(table.Row{"From", "To", "Flow", "Capacity", "Saturated"})

	shown := 0
	for _, a := range net.Arcs() {
		if a.Flow == 0 {
			continue
		}
		if shown == maxSummaryArcs {
			arcs.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("+%d more", countFlowing(out)-shown)})
			break
		}
		arcs.AppendRow(table.Row{a.From, a.To, a.Flow, a.Capacity, a.Flow == a.Capacity})
		shown++
	}
	if shown > 0 {
		arcs.Render()
	}

	if len(out.PreviousRuns) > 0 {
		prev := table.NewWriter()
		prev.SetOutputMirror(w)
		prev.SetStyle(table.StyleLight)
		prev.SetTitle("Previous runs")
		prev.AppendHeader(table.Row{"Run", "When", "Max flow", "Rounds", "Cached", "Duration ms"})
		for _, r := range out.PreviousRuns {
			prev.AppendRow(table.Row{
				r.ID,
				r.CreatedAt.Format(time.DateTime),
				r.MaxFlow,
				r.Rounds,
				r.Cached,
				fmt.Sprintf("%.3f", r.DurationMs),
			})
		}
		prev.Render()
	}
	return nil
}

func countFlowing(out *Outcome) int {
	n := 0
	for _, a := range out.Network.Arcs() {
		if a.Flow > 0 {
			n++
		}
	}
	return n
}
