// Package scout orchestrates the gate pipeline: diff extraction, finding
// collection, and the diff-to-finding intersection.
package scout

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/bkyoung/lint-scout/internal/diff"
	"github.com/bkyoung/lint-scout/internal/domain"
	"github.com/bkyoung/lint-scout/internal/intersect"
)

// ErrDirty signals that findings remain inside the diff; the process exits
// non-zero without treating it as an infrastructure failure.
var ErrDirty = errors.New("lint findings present in diff")

// GitEngine abstracts version-control operations for the gate.
type GitEngine interface {
	// MergeBase returns the most recent common ancestor of HEAD and branch.
	MergeBase(ctx context.Context, branch string) (string, error)

	// Diff returns unified diff text between a commit and HEAD, optionally
	// including uncommitted working-tree changes.
	Diff(ctx context.Context, fromHash string, includeWorkingTree bool) (string, error)

	// CurrentBranch returns the name of the checked-out branch.
	CurrentBranch(ctx context.Context) (string, error)
}

// FindingsSource abstracts a lint tool invocation. Sources run exactly once
// per gate run and already decompose multi-span messages into one finding
// per span.
type FindingsSource interface {
	Name() string
	Findings(ctx context.Context) ([]domain.Finding, error)
}

// ReportWriter persists a report artifact to disk and returns its path.
type ReportWriter interface {
	Write(ctx context.Context, artifact domain.ReportArtifact) (string, error)
}

// Store defines the outbound port for persisting run history.
type Store interface {
	SaveRun(ctx context.Context, run RunRecord, findings []domain.Finding) error
	Close() error
}

// Logger defines the logging port. A nil logger disables logging.
type Logger interface {
	LogDebug(ctx context.Context, message string, fields map[string]interface{})
	LogInfo(ctx context.Context, message string, fields map[string]interface{})
	LogError(ctx context.Context, message string, fields map[string]interface{})
}

// RunRecord captures one gate execution for the history store.
type RunRecord struct {
	RunID      string
	Timestamp  time.Time
	Repository string
	BaseRef    string
	TargetRef  string
	MergeBase  string
	Total      int
	InDiff     int
}

// Request carries the per-run parameters. Branch and verbosity arrive here
// explicitly; the intersection engine itself reads no configuration.
type Request struct {
	Branch             string
	Repository         string
	OutputDir          string
	IncludeUncommitted bool
}

// Result is the outcome of a gate run.
type Result struct {
	Report        domain.Report
	ArtifactPaths []string
}

// Deps captures the collaborators for the gater.
type Deps struct {
	Git     GitEngine
	Sources []FindingsSource
	Writers []ReportWriter
	Store   Store
	Logger  Logger
	Trace   intersect.TraceSink
	Now     func() time.Time
}

// Gater wires the pipeline stages together. Execution is single-threaded and
// fail-fast: each external call happens exactly once, and any upstream error
// aborts the run.
type Gater struct {
	deps Deps
}

// NewGater constructs a Gater from its dependencies.
func NewGater(deps Deps) *Gater {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &Gater{deps: deps}
}

// Run executes the full gate pipeline and returns the filtered report.
// Findings remaining in the diff do not make Run fail; callers consult
// Report.Clean to choose an exit status.
func (g *Gater) Run(ctx context.Context, req Request) (Result, error) {
	mergeBase, err := g.deps.Git.MergeBase(ctx, req.Branch)
	if err != nil {
		return Result{}, err
	}
	g.logInfo(ctx, "resolved merge base", map[string]interface{}{
		"branch":    req.Branch,
		"mergeBase": mergeBase,
	})

	diffText, err := g.deps.Git.Diff(ctx, mergeBase, req.IncludeUncommitted)
	if err != nil {
		return Result{}, err
	}

	changes, parseErrs := diff.ParseChangeSet(diffText)
	for _, parseErr := range parseErrs {
		// File-scoped: the offending file is dropped, the run continues.
		g.logError(ctx, "skipping file with malformed diff", map[string]interface{}{
			"error": parseErr.Error(),
		})
	}
	g.logInfo(ctx, "built change set", map[string]interface{}{
		"files": len(changes),
		"lines": changes.TotalLines(),
	})

	var findings []domain.Finding
	for _, source := range g.deps.Sources {
		collected, err := source.Findings(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("collect %s findings: %w", source.Name(), err)
		}
		g.logInfo(ctx, "collected findings", map[string]interface{}{
			"tool":  source.Name(),
			"count": len(collected),
		})
		findings = append(findings, collected...)
	}

	filtered := intersect.Filter(changes, findings, g.deps.Trace)

	target, err := g.deps.Git.CurrentBranch(ctx)
	if err != nil {
		// Detached HEAD is fine for reporting purposes.
		target = "HEAD"
	}

	report := domain.Report{
		Repository: req.Repository,
		BaseRef:    req.Branch,
		TargetRef:  target,
		MergeBase:  mergeBase,
		Total:      len(findings),
		Findings:   filtered,
	}

	result := Result{Report: report}
	for _, writer := range g.deps.Writers {
		path, err := writer.Write(ctx, domain.ReportArtifact{
			OutputDir:  req.OutputDir,
			Repository: req.Repository,
			TargetRef:  target,
			Report:     report,
		})
		if err != nil {
			return Result{}, fmt.Errorf("write report artifact: %w", err)
		}
		result.ArtifactPaths = append(result.ArtifactPaths, path)
	}

	if g.deps.Store != nil {
		run := RunRecord{
			RunID:      runID(req.Repository, req.Branch, target, g.deps.Now()),
			Timestamp:  g.deps.Now(),
			Repository: req.Repository,
			BaseRef:    req.Branch,
			TargetRef:  target,
			MergeBase:  mergeBase,
			Total:      len(findings),
			InDiff:     len(filtered),
		}
		if err := g.deps.Store.SaveRun(ctx, run, filtered); err != nil {
			// History is best-effort; a full gate result beats a saved one.
			g.logError(ctx, "failed to save run history", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	return result, nil
}

func runID(repository, baseRef, targetRef string, now time.Time) string {
	payload := fmt.Sprintf("%s|%s|%s|%d", repository, baseRef, targetRef, now.UnixNano())
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:8])
}

func (g *Gater) logInfo(ctx context.Context, message string, fields map[string]interface{}) {
	if g.deps.Logger != nil {
		g.deps.Logger.LogInfo(ctx, message, fields)
	}
}

func (g *Gater) logError(ctx context.Context, message string, fields map[string]interface{}) {
	if g.deps.Logger != nil {
		g.deps.Logger.LogError(ctx, message, fields)
	}
}
