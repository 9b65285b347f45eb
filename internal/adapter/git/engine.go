// Package git implements the version-control port backed by go-git.
package git

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"

	goGit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// Engine resolves merge bases and produces unified diff text for the gate
// pipeline. All failures at this layer are fatal to the run: a partial diff
// has no useful meaning.
type Engine struct {
	repoDir string
}

// NewEngine constructs a Git engine for the provided repository directory.
func NewEngine(repoDir string) *Engine {
	return &Engine{repoDir: repoDir}
}

// MergeBase returns the hash of the most recent common ancestor of HEAD and
// the given branch.
func (e *Engine) MergeBase(ctx context.Context, branch string) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}

	head, err := repo.Head()
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve HEAD", Err: err}
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve HEAD commit", Err: err}
	}

	branchCommit, err := resolveCommit(repo, branch)
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve branch", Ref: branch, Err: err}
	}

	bases, err := headCommit.MergeBase(branchCommit)
	if err != nil {
		return "", &domain.ConfigurationError{Op: "merge base with", Ref: branch, Err: err}
	}
	if len(bases) == 0 {
		return "", &domain.ConfigurationError{
			Op:  "merge base with",
			Ref: branch,
			Err: fmt.Errorf("no common ancestor with HEAD"),
		}
	}
	return bases[0].Hash.String(), nil
}

// Diff returns the unified diff text between a commit and HEAD. When
// includeWorkingTree is set, uncommitted changes are diffed as well by
// shelling out to the git binary, since go-git diffs commits only.
func (e *Engine) Diff(ctx context.Context, fromHash string, includeWorkingTree bool) (string, error) {
	if includeWorkingTree {
		return runGitCommand(ctx, e.repoDir, "diff", fromHash)
	}

	repo, err := e.open()
	if err != nil {
		return "", err
	}

	fromCommit, err := repo.CommitObject(plumbing.NewHash(fromHash))
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve commit", Ref: fromHash, Err: err}
	}

	head, err := repo.Head()
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve HEAD", Err: err}
	}
	headCommit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve HEAD commit", Err: err}
	}

	patch, err := fromCommit.PatchContext(ctx, headCommit)
	if err != nil {
		return "", fmt.Errorf("compute patch: %w", err)
	}
	return patch.String(), nil
}

// CurrentBranch returns the name of the checked-out branch.
func (e *Engine) CurrentBranch(ctx context.Context) (string, error) {
	repo, err := e.open()
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", &domain.ConfigurationError{Op: "resolve HEAD", Err: err}
	}
	name := head.Name()
	if name.IsBranch() {
		return name.Short(), nil
	}
	return "", &domain.ConfigurationError{Op: "resolve HEAD", Err: fmt.Errorf("detached HEAD")}
}

func (e *Engine) open() (*goGit.Repository, error) {
	repo, err := goGit.PlainOpenWithOptions(e.repoDir, &goGit.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, &domain.ConfigurationError{Op: "open repository", Ref: e.repoDir, Err: err}
	}
	return repo, nil
}

func resolveCommit(repo *goGit.Repository, ref string) (*object.Commit, error) {
	candidates := []string{
		ref,
		fmt.Sprintf("refs/heads/%s", ref),
		fmt.Sprintf("refs/remotes/origin/%s", ref),
	}

	var lastErr error
	for _, candidate := range candidates {
		name := plumbing.Revision(candidate)
		hash, err := repo.ResolveRevision(name)
		if err != nil {
			lastErr = err
			continue
		}
		return repo.CommitObject(*hash)
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, fmt.Errorf("unable to resolve ref %s", ref)
}

func runGitCommand(ctx context.Context, repoDir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", repoDir}, args...)
	cmd := exec.CommandContext(ctx, "git", fullArgs...)
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return "", fmt.Errorf("git %v: %w", args, ctx.Err())
		}
		return "", &domain.ExternalToolError{
			Tool:   "git",
			Stderr: strings.TrimSpace(stderr.String()),
			Err:    fmt.Errorf("git %v: %w", args, err),
		}
	}
	return stdout.String(), nil
}
