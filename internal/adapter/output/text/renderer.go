// Package text renders gate reports for a terminal.
package text

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// Renderer writes a human-readable report. Color is applied only when
// enabled; callers typically tie that to stdout being a TTY.
type Renderer struct {
	out      io.Writer
	colorize bool
}

// NewRenderer creates a renderer writing to out.
func NewRenderer(out io.Writer, colorize bool) *Renderer {
	return &Renderer{out: out, colorize: colorize}
}

// Render prints each in-diff finding followed by a one-line summary.
func (r *Renderer) Render(report domain.Report) error {
	location := color.New(color.FgCyan, color.Bold)
	tool := color.New(color.Faint)
	success := color.New(color.FgGreen, color.Bold)
	failure := color.New(color.FgRed, color.Bold)
	if !r.colorize {
		for _, c := range []*color.Color{location, tool, success, failure} {
			c.DisableColor()
		}
	}

	for _, finding := range report.Findings {
		fmt.Fprintf(r.out, "%s %s\n",
			location.Sprint(renderSpan(finding)),
			tool.Sprintf("[%s]", finding.Tool))
		fmt.Fprintf(r.out, "  %s\n", finding.Message)
	}

	if report.Clean() {
		_, err := fmt.Fprintln(r.out, success.Sprintf(
			"No lint findings in your diff against %s, you're good to go!", report.BaseRef))
		return err
	}
	_, err := fmt.Fprintln(r.out, failure.Sprintf(
		"%d lint finding(s) introduced relative to %s", len(report.Findings), report.BaseRef))
	return err
}

func renderSpan(finding domain.Finding) string {
	if finding.LineStart == finding.LineEnd {
		return fmt.Sprintf("%s:%d", finding.File, finding.LineStart)
	}
	return fmt.Sprintf("%s:%d-%d", finding.File, finding.LineStart, finding.LineEnd)
}
