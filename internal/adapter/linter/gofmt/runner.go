// Package gofmt collects formatting findings by diffing files against their
// gofmt-formatted form.
//
// "gofmt -d" emits one unified diff per unformatted file. Each hunk becomes a
// single finding whose range covers the old-side span, since the old side is
// the file as it exists in the checkout.
package gofmt

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bkyoung/lint-scout/internal/diff"
	"github.com/bkyoung/lint-scout/internal/domain"
)

// ToolName identifies this collector in findings and reports.
const ToolName = "gofmt"

// Runner invokes gofmt over a working directory.
type Runner struct {
	workDir string
}

// NewRunner creates a gofmt runner rooted at workDir.
func NewRunner(workDir string) *Runner {
	return &Runner{workDir: workDir}
}

// Name implements the findings-source port.
func (r *Runner) Name() string {
	return ToolName
}

// Findings runs gofmt -d once and converts its diff output into findings.
// gofmt exits zero even when files need formatting; a non-zero exit means
// the tool itself failed.
func (r *Runner) Findings(ctx context.Context) ([]domain.Finding, error) {
	cmd := exec.CommandContext(ctx, "gofmt", "-d", ".")
	cmd.Dir = r.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("gofmt: %w", ctx.Err())
		}
		return nil, &domain.ExternalToolError{
			Tool:   ToolName,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return parse(stdout.String()), nil
}

// parse scans gofmt's diff stream. gofmt headers name the file directly
// ("--- path.orig" / "+++ path") rather than using git's a/ and b/ prefixes,
// so the scan tracks the current file itself and reuses the hunk-header
// grammar for the spans.
func parse(output string) []domain.Finding {
	var findings []domain.Finding
	current := ""

	for _, line := range strings.Split(output, "\n") {
		switch {
		case strings.HasPrefix(line, "diff "):
			current = ""

		case strings.HasPrefix(line, "+++ "):
			path := strings.TrimPrefix(line, "+++ ")
			if idx := strings.IndexByte(path, '\t'); idx >= 0 {
				path = path[:idx]
			}
			current = strings.TrimPrefix(path, "./")

		case strings.HasPrefix(line, "@@"):
			if current == "" {
				continue
			}
			hunk, ok := diff.ParseHunkHeader(line)
			if !ok {
				continue
			}
			end := hunk.OldStart + hunk.OldLines - 1
			if end < hunk.OldStart {
				end = hunk.OldStart
			}
			findings = append(findings, domain.NewFinding(domain.FindingInput{
				Tool:      ToolName,
				File:      current,
				LineStart: hunk.OldStart,
				LineEnd:   end,
				Message:   formatMessage(current, hunk.OldStart, end),
			}))
		}
	}
	return findings
}

func formatMessage(path string, start, end int) string {
	if start == end {
		return fmt.Sprintf("%s is not gofmt-formatted at line %d", path, start)
	}
	return fmt.Sprintf("%s is not gofmt-formatted between lines %d and %d", path, start, end)
}
