package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// LineSet is an unordered set of 1-based line numbers within a single file.
type LineSet map[int]struct{}

// Add records a line number. Non-positive lines are ignored.
func (s LineSet) Add(line int) {
	if line <= 0 {
		return
	}
	s[line] = struct{}{}
}

// Contains reports whether the set holds the given line.
func (s LineSet) Contains(line int) bool {
	_, ok := s[line]
	return ok
}

// AnyInRange reports whether any line L in the set satisfies start <= L <= end.
func (s LineSet) AnyInRange(start, end int) bool {
	// Iterate whichever side is smaller: a short range beats a large set.
	if end-start+1 < len(s) {
		for line := start; line <= end; line++ {
			if s.Contains(line) {
				return true
			}
		}
		return false
	}
	for line := range s {
		if line >= start && line <= end {
			return true
		}
	}
	return false
}

// Lines returns the set in ascending order.
func (s LineSet) Lines() []int {
	lines := make([]int, 0, len(s))
	for line := range s {
		lines = append(lines, line)
	}
	sort.Ints(lines)
	return lines
}

// ChangeSet maps repository-relative, slash-separated file paths to the set
// of line numbers introduced or modified relative to the merge base.
// It is built once per run and never mutated afterwards.
type ChangeSet map[string]LineSet

// Record adds a changed line for a file, creating the entry if needed.
func (c ChangeSet) Record(path string, line int) {
	set, ok := c[path]
	if !ok {
		set = LineSet{}
		c[path] = set
	}
	set.Add(line)
}

// Files returns the tracked paths in ascending order.
func (c ChangeSet) Files() []string {
	files := make([]string, 0, len(c))
	for path := range c {
		files = append(files, path)
	}
	sort.Strings(files)
	return files
}

// TotalLines returns the number of changed lines across all files.
func (c ChangeSet) TotalLines() int {
	total := 0
	for _, set := range c {
		total += len(set)
	}
	return total
}

// Finding represents a single issue reported by a lint tool.
// LineStart and LineEnd are 1-based and inclusive; LineStart <= LineEnd.
// A tool message covering multiple spans is decomposed into one Finding per
// span before it reaches the intersection engine.
type Finding struct {
	ID        string `json:"id"`
	Tool      string `json:"tool"`
	File      string `json:"file"`
	LineStart int    `json:"lineStart"`
	LineEnd   int    `json:"lineEnd"`
	Message   string `json:"message"`
}

// FindingInput captures the information required to create a Finding.
type FindingInput struct {
	Tool      string
	File      string
	LineStart int
	LineEnd   int
	Message   string
}

// NewFinding constructs a Finding with a deterministic ID.
func NewFinding(input FindingInput) Finding {
	return Finding{
		ID:        hashFinding(input),
		Tool:      input.Tool,
		File:      input.File,
		LineStart: input.LineStart,
		LineEnd:   input.LineEnd,
		Message:   input.Message,
	}
}

func hashFinding(input FindingInput) string {
	payload := fmt.Sprintf("%s|%s|%d|%d|%s",
		input.Tool,
		input.File,
		input.LineStart,
		input.LineEnd,
		input.Message,
	)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// Report is the rendered outcome of a gate run.
type Report struct {
	Repository string    `json:"repository"`
	BaseRef    string    `json:"baseRef"`
	TargetRef  string    `json:"targetRef"`
	MergeBase  string    `json:"mergeBase"`
	Total      int       `json:"totalFindings"`
	Findings   []Finding `json:"findings"`
}

// Clean reports whether the gate passed with no in-diff findings.
func (r Report) Clean() bool {
	return len(r.Findings) == 0
}

// ReportArtifact encapsulates the inputs for persisting a report to disk.
type ReportArtifact struct {
	OutputDir  string
	Repository string
	TargetRef  string
	Report     Report
}
