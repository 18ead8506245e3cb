package main

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"takesort/internal/pipeline"
	"takesort/internal/report"
)

const summaryElapsedPrecision = 10 * time.Millisecond

// renderSummary formats the run outcome as a table: headline totals first,
// then one row per recorded event kind.
func renderSummary(summary *pipeline.Summary) string {
	tw := table.NewWriter()
	if isatty.IsTerminal(os.Stdout.Fd()) {
		tw.SetStyle(table.StyleRounded)
	} else {
		tw.SetStyle(table.StyleLight)
	}
	tw.AppendHeader(table.Row{"Result", "Count"})

	tw.AppendRow(table.Row{"Files scanned", summary.Scanned})
	tw.AppendRow(table.Row{"Files placed", summary.Placed})
	tw.AppendRow(table.Row{"Duplicates skipped", summary.Duplicates})
	if summary.AlreadyPlaced > 0 {
		tw.AppendRow(table.Row{"Already placed", summary.AlreadyPlaced})
	}

	kinds := make([]report.Kind, 0, len(summary.Counts))
	for kind := range summary.Counts {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })

	appended := false
	for _, kind := range kinds {
		switch kind {
		case report.DuplicateSkipped, report.AlreadyPlaced:
			continue
		}
		if !appended {
			tw.AppendSeparator()
			appended = true
		}
		tw.AppendRow(table.Row{string(kind), summary.Counts[kind]})
	}

	tw.AppendFooter(table.Row{"Elapsed", summary.Elapsed.Round(summaryElapsedPrecision)})
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignLeft},
		{Number: 2, Align: text.AlignRight, AlignHeader: text.AlignLeft},
	})

	out := tw.Render()
	if summary.Warnings > 0 {
		out += fmt.Sprintf("\n%d warning(s) recorded; see the log for details.", summary.Warnings)
	}
	return out
}
