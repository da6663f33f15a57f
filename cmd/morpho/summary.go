package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/project8/morpho"
)

// renderSummary formats the outcome of each processor as a terminal table
func renderSummary(records []morpho.RunRecord) string {
	w := table.NewWriter()
	w.SetStyle(table.StyleLight)
	w.Style().Format.Footer = text.FormatDefault
	w.AppendHeader(table.Row{"#", "Processor", "Status", "Duration", "Deleted", "Error"})

	var total time.Duration
	for i, r := range records {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		w.AppendRow(table.Row{i + 1, r.Processor, r.Status, r.Duration.Round(time.Microsecond), r.Deleted, errText})
		total += r.Duration
	}
	w.AppendFooter(table.Row{"", "", "", total.Round(time.Microsecond), "", fmt.Sprintf("%d processors", len(records))})
	w.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 6, WidthMax: 60},
	})
	return w.Render()
}
