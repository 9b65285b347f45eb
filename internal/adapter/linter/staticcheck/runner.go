// Package staticcheck collects findings from the staticcheck linter.
//
// staticcheck emits one JSON object per reported problem when run with
// "-f json"; lines that do not decode as finding records are skipped, since
// the stream legitimately mixes in compiler noise.
package staticcheck

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// ToolName identifies this collector in findings and reports.
const ToolName = "staticcheck"

// Config is the immutable invocation configuration, constructed once and
// passed by value.
type Config struct {
	Checks []string // e.g. ["all"] or ["ST1000", "SA4006"]; empty uses the tool default
	Tests  bool     // also lint _test.go files
}

// Runner invokes staticcheck over a working directory.
type Runner struct {
	workDir string
	cfg     Config
}

// NewRunner creates a staticcheck runner rooted at workDir.
func NewRunner(workDir string, cfg Config) *Runner {
	return &Runner{workDir: workDir, cfg: cfg}
}

// Name implements the findings-source port.
func (r *Runner) Name() string {
	return ToolName
}

// record mirrors staticcheck's JSON output schema.
type record struct {
	Code     string   `json:"code"`
	Severity string   `json:"severity"`
	Location position `json:"location"`
	End      position `json:"end"`
	Message  string   `json:"message"`
}

type position struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// Findings runs staticcheck once and decodes its output.
//
// staticcheck exits 1 when it reports problems; that is a successful run.
// A non-zero exit with nothing decodable is an ExternalToolError carrying
// the captured stderr.
func (r *Runner) Findings(ctx context.Context) ([]domain.Finding, error) {
	cmd := exec.CommandContext(ctx, "staticcheck", r.commandArgs()...)
	cmd.Dir = r.workDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if ctx.Err() != nil {
		return nil, fmt.Errorf("staticcheck: %w", ctx.Err())
	}

	findings := parse(stdout.String())
	if runErr != nil && len(findings) == 0 && stdout.Len() == 0 {
		return nil, &domain.ExternalToolError{
			Tool:   ToolName,
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    runErr,
		}
	}
	return findings, nil
}

func (r *Runner) commandArgs() []string {
	args := []string{"-f", "json"}
	if len(r.cfg.Checks) > 0 {
		args = append(args, "-checks", strings.Join(r.cfg.Checks, ","))
	}
	if r.cfg.Tests {
		args = append(args, "-tests")
	}
	return append(args, "./...")
}

// parse decodes the JSON-per-line stream into findings. Undecodable lines
// and records without a location are skipped silently.
func parse(output string) []domain.Finding {
	var findings []domain.Finding
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "{") {
			continue
		}
		var rec record
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			continue
		}
		if rec.Location.File == "" || rec.Location.Line <= 0 {
			continue
		}
		end := rec.End.Line
		if end < rec.Location.Line {
			end = rec.Location.Line
		}
		findings = append(findings, domain.NewFinding(domain.FindingInput{
			Tool:      ToolName,
			File:      rec.Location.File,
			LineStart: rec.Location.Line,
			LineEnd:   end,
			Message:   fmt.Sprintf("%s: %s", rec.Code, rec.Message),
		}))
	}
	return findings
}
