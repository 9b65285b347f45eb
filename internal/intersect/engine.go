// Package intersect matches lint findings against per-file changed-line sets.
//
// The engine is a pure function over immutable inputs: it never mutates the
// change set or the findings, performs no I/O, and repeated calls on the same
// inputs return the same output. Diagnostics are emitted through an optional
// TraceSink so the matching logic stays independently testable.
package intersect

import (
	"strings"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// Decision explains why a single finding was kept or dropped.
type Decision struct {
	Finding    domain.Finding
	Kept       bool
	MatchedKey string // change-set key the path resolved to, if any
	Reason     string
}

// Decision reasons.
const (
	ReasonInDiff    = "range overlaps changed lines"
	ReasonNoOverlap = "range outside changed lines"
	ReasonNoPath    = "no changed file matches path"
	ReasonBadRecord = "invalid line range"
)

// TraceSink receives one Decision per finding. Implementations must not
// assume they can influence the filtered result.
type TraceSink interface {
	Decision(d Decision)
}

// Filter returns, in input order, exactly the findings whose path resolves to
// a change-set entry and whose inclusive line range overlaps that entry's
// changed lines. sink may be nil.
func Filter(changes domain.ChangeSet, findings []domain.Finding, sink TraceSink) []domain.Finding {
	kept := make([]domain.Finding, 0, len(findings))
	for _, finding := range findings {
		decision := decide(changes, finding)
		if sink != nil {
			sink.Decision(decision)
		}
		if decision.Kept {
			kept = append(kept, finding)
		}
	}
	return kept
}

func decide(changes domain.ChangeSet, finding domain.Finding) Decision {
	if finding.LineStart <= 0 || finding.LineEnd < finding.LineStart {
		return Decision{Finding: finding, Reason: ReasonBadRecord}
	}

	key, set, ok := resolvePath(changes, finding.File)
	if !ok {
		return Decision{Finding: finding, Reason: ReasonNoPath}
	}

	if set.AnyInRange(finding.LineStart, finding.LineEnd) {
		return Decision{Finding: finding, Kept: true, MatchedKey: key, Reason: ReasonInDiff}
	}
	return Decision{Finding: finding, MatchedKey: key, Reason: ReasonNoOverlap}
}

// resolvePath finds the change-set key a finding path refers to. Lint tools
// report paths relative to the sub-project they ran in, while change-set keys
// are repository-relative, so the two rarely compare equal. They match when
// one is a component-boundary suffix of the other after normalization.
// When several keys match, the longest shared suffix wins.
func resolvePath(changes domain.ChangeSet, file string) (string, domain.LineSet, bool) {
	path := NormalizePath(file)
	if path == "" {
		return "", nil, false
	}

	if set, ok := changes[path]; ok {
		return path, set, true
	}

	var (
		bestKey string
		bestSet domain.LineSet
		found   bool
	)
	for key, set := range changes {
		if !pathsMatch(path, key) {
			continue
		}
		// Prefer the more specific candidate; ties broken lexicographically
		// so the result does not depend on map iteration order.
		if !found || len(key) > len(bestKey) || (len(key) == len(bestKey) && key < bestKey) {
			bestKey, bestSet, found = key, set, true
		}
	}
	return bestKey, bestSet, found
}

// pathsMatch reports whether one path is a /-component-boundary suffix of the
// other: "src/lib.go" matches "crate-a/src/lib.go", but "lib.go" does not
// match "other/nolib.go".
func pathsMatch(a, b string) bool {
	return hasComponentSuffix(a, b) || hasComponentSuffix(b, a)
}

func hasComponentSuffix(long, suffix string) bool {
	if !strings.HasSuffix(long, suffix) {
		return false
	}
	if len(long) == len(suffix) {
		return true
	}
	return long[len(long)-len(suffix)-1] == '/'
}

// NormalizePath canonicalizes a reported path: separators become forward
// slashes and leading "./" segments are dropped. Case is preserved.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for strings.HasPrefix(path, "./") {
		path = path[2:]
	}
	return strings.TrimPrefix(path, "/")
}
