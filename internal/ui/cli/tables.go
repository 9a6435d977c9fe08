package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/janpfeifer/gametree/internal/searchers"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
)

// Table renders rows under the given headers. Every column but the first is right-aligned.
func (ui *UI) Table(headers []string, rows [][]string) string {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case col == 0:
				return cellStyle
			}
			return numberStyle
		})
	if ui.color {
		t = t.BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("8")))
	}
	return t.String()
}

// statsRow is one counter of searchers.Stats.
type statsRow struct {
	name     string
	get      func(s searchers.Stats) int
	optional bool
}

var statsRows = func() []statsRow {
	rows := []statsRow{
		{name: "searches", get: func(s searchers.Stats) int { return s.Searches }},
		{name: "evals", get: func(s searchers.Stats) int { return s.Evals }},
		{name: "prunes", get: func(s searchers.Stats) int { return s.Prunes }},
	}
	for layer := range searchers.NumLayers {
		rows = append(rows,
			statsRow{name: fmt.Sprintf("evals %s", layer), optional: true,
				get: func(s searchers.Stats) int { return s.Layers[layer].Evals }},
			statsRow{name: fmt.Sprintf("prunes %s", layer), optional: true,
				get: func(s searchers.Stats) int { return s.Layers[layer].Prunes }})
	}
	return append(rows,
		statsRow{name: "lookahead nodes", optional: true, get: func(s searchers.Stats) int { return s.LookaheadNodes }},
		statsRow{name: "lookahead prunes", optional: true, get: func(s searchers.Stats) int { return s.LookaheadPrunes }},
		statsRow{name: "cache hits", optional: true, get: func(s searchers.Stats) int { return s.CacheHits }},
		statsRow{name: "cache stores", optional: true, get: func(s searchers.Stats) int { return s.CacheStores }},
		statsRow{name: "draw short-circuits", optional: true, get: func(s searchers.Stats) int { return s.DrawShortCircuits }},
	)
}()

// StatsTable renders the counters of several searchers side by side, one column per name.
// Optional counters (cutoff layers, cache, draws) are only included if any of the searchers used them.
func (ui *UI) StatsTable(names []string, stats []searchers.Stats) string {
	headers := append([]string{"counter"}, names...)
	var rows [][]string
	for _, sr := range statsRows {
		row := make([]string, 0, len(stats)+1)
		row = append(row, sr.name)
		used := false
		for _, s := range stats {
			value := sr.get(s)
			used = used || value != 0
			row = append(row, strconv.Itoa(value))
		}
		if sr.optional && !used {
			continue
		}
		rows = append(rows, row)
	}
	return ui.Table(headers, rows)
}
