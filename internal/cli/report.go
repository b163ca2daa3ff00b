package cli

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"uirunner/internal/pipeline"
	ustrings "uirunner/pkg/strings"
)

// RenderReport writes one row per stage and a footer with the total time
// spent. Failed stages carry a one-line error summary.
func RenderReport(w io.Writer, stages []pipeline.Stage) {
	if len(stages) == 0 {
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{
		text.FgHiCyan.Sprint("STAGE"),
		text.FgHiCyan.Sprint("STATUS"),
		text.FgHiCyan.Sprint("DURATION"),
		text.FgHiCyan.Sprint("ERROR"),
	})

	var total time.Duration
	for _, s := range stages {
		total += s.Duration
		duration := "-"
		if s.Status != pipeline.StatusSkipped {
			duration = formatDuration(s.Duration)
		}
		var summary string
		if s.Err != nil {
			summary = ustrings.Summarize(s.Err.Error(), ustrings.DefaultSummaryLen)
		}
		t.AppendRow(table.Row{s.Name, formatStatus(s.Status), duration, summary})
	}
	t.AppendFooter(table.Row{"", "total", formatDuration(total), ""})
	t.Render()
}

func formatStatus(status pipeline.StageStatus) string {
	switch status {
	case pipeline.StatusPassed:
		return text.FgGreen.Sprint("✅ " + string(status))
	case pipeline.StatusFailed:
		return text.FgRed.Sprint("❌ " + string(status))
	default:
		return text.FgYellow.Sprint("⏭ " + string(status))
	}
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	return d.Round(100 * time.Millisecond).String()
}
