package domain

import (
	"fmt"
	"strings"
)

// ConfigurationError indicates the run cannot start: an unknown branch,
// no merge base between the refs, or the working directory is not a
// repository. Always fatal.
type ConfigurationError struct {
	Op  string
	Ref string
	Err error
}

func (e *ConfigurationError) Error() string {
	if e.Ref != "" {
		return fmt.Sprintf("%s %q: %v", e.Op, e.Ref, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}

// ExternalToolError indicates an external process (version control or a lint
// tool) exited non-zero or produced undecodable output. The captured stderr
// is kept for diagnosis. Always fatal.
type ExternalToolError struct {
	Tool   string
	Stderr string
	Err    error
}

func (e *ExternalToolError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Tool, e.Err)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

func (e *ExternalToolError) Unwrap() error {
	return e.Err
}

// MalformedDiffError indicates a hunk header that does not match the unified
// diff grammar. It is file-scoped: parsing of the offending file stops, but
// entries already built for other files remain valid.
type MalformedDiffError struct {
	Path   string
	Header string
}

func (e *MalformedDiffError) Error() string {
	return fmt.Sprintf("malformed hunk header %q in %s", e.Header, e.Path)
}
