package diff

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/bkyoung/lint-scout/internal/domain"
)

// Hunk describes one @@ region of a file patch.
type Hunk struct {
	OldStart int // Starting line in the old file
	OldLines int // Number of old-file lines covered
	NewStart int // Starting line in the new file
	NewLines int // Number of new-file lines covered
	Added    []int
}

// FilePatch collects the hunks of a single file in a multi-file diff.
type FilePatch struct {
	Path    string
	Deleted bool
	Hunks   []Hunk
}

// hunkHeaderRe matches "@@ -oldStart[,oldLen] +newStart[,newLen] @@".
// Git omits the ",len" part when a side covers exactly one line.
var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// Parse scans a multi-file unified diff and returns one FilePatch per file,
// plus any file-scoped parse errors. A hunk header that fails the grammar
// discards the whole offending file; remaining files parse normally.
func Parse(diffText string) ([]FilePatch, []error) {
	var (
		patches   []FilePatch
		parseErrs []error

		current *FilePatch
		skip    bool // current file poisoned by a malformed hunk header
		newLine int
		inHunk  bool
	)

	flush := func() {
		if current != nil && !skip {
			patches = append(patches, *current)
		}
		current = nil
		skip = false
		inHunk = false
	}

	for _, line := range strings.Split(diffText, "\n") {
		switch {
		case strings.HasPrefix(line, "diff --git "):
			flush()

		case strings.HasPrefix(line, "--- "):
			// The old-side header opens a file section when the diff omits
			// the "diff --git" line. For deleted files it is the only header
			// carrying the path.
			path, ok := headerPath(line, "--- ", "a/")
			if !ok && line != "--- /dev/null" {
				break // removed body line or metadata, not a header
			}
			if inHunk {
				flush()
			}
			if ok && current == nil {
				current = &FilePatch{Path: path}
			}
			inHunk = false

		case strings.HasPrefix(line, "+++ "):
			path, ok := headerPath(line, "+++ ", "b/")
			if !ok && line != "+++ /dev/null" {
				break
			}
			if ok {
				if current == nil {
					current = &FilePatch{}
				}
				current.Path = path
			} else if current != nil {
				// "+++ /dev/null": the file was deleted. It keeps its old
				// path from the "---" header but contributes no entry.
				current.Deleted = true
			}
			inHunk = false

		case strings.HasPrefix(line, "@@"):
			if current == nil || skip {
				continue
			}
			hunk, ok := ParseHunkHeader(line)
			if !ok {
				parseErrs = append(parseErrs, &domain.MalformedDiffError{
					Path:   current.Path,
					Header: line,
				})
				skip = true
				continue
			}
			current.Hunks = append(current.Hunks, hunk)
			newLine = hunk.NewStart
			inHunk = true

		default:
			if current == nil || skip || !inHunk || len(current.Hunks) == 0 {
				continue // diff metadata outside any hunk
			}
			if line == "" {
				continue
			}
			hunk := &current.Hunks[len(current.Hunks)-1]
			switch line[0] {
			case '+':
				hunk.Added = append(hunk.Added, newLine)
				newLine++
			case ' ':
				newLine++
			case '-':
				// Removals never advance the new-side counter.
			default:
				// "\ No newline at end of file" and similar markers.
			}
		}
	}
	flush()

	return patches, parseErrs
}

// ChangeSet reduces parsed file patches to the per-file changed-line sets
// consumed by the intersection engine. Deleted files contribute nothing.
func ChangeSet(patches []FilePatch) domain.ChangeSet {
	changes := domain.ChangeSet{}
	for _, patch := range patches {
		if patch.Deleted || patch.Path == "" {
			continue
		}
		for _, hunk := range patch.Hunks {
			for _, line := range hunk.Added {
				changes.Record(patch.Path, line)
			}
		}
	}
	return changes
}

// ParseChangeSet is the common Parse+ChangeSet composition.
func ParseChangeSet(diffText string) (domain.ChangeSet, []error) {
	patches, parseErrs := Parse(diffText)
	return ChangeSet(patches), parseErrs
}

// headerPath extracts the path from a "--- a/path" or "+++ b/path" header.
// Returns ok=false for /dev/null or anything not matching the grammar
// (removed body lines can also start with "---").
func headerPath(line, marker, prefix string) (string, bool) {
	rest := strings.TrimPrefix(line, marker)
	// "git diff" can append a tab and metadata after the path.
	if idx := strings.IndexByte(rest, '\t'); idx >= 0 {
		rest = rest[:idx]
	}
	if rest == "/dev/null" {
		return "", false
	}
	if !strings.HasPrefix(rest, prefix) {
		return "", false
	}
	rest = strings.TrimPrefix(rest, prefix)
	if rest == "" {
		return "", false
	}
	return rest, true
}

// ParseHunkHeader validates a single "@@" line against the grammar and
// returns its ranges. Collectors that consume non-git diff emitters (gofmt)
// reuse it for their own scanning.
func ParseHunkHeader(line string) (Hunk, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return Hunk{}, false
	}
	return Hunk{
		OldStart: atoiDefault(m[1], 0),
		OldLines: atoiDefault(m[2], 1),
		NewStart: atoiDefault(m[3], 0),
		NewLines: atoiDefault(m[4], 1),
	}, true
}

func atoiDefault(s string, def int) int {
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
