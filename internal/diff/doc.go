// Package diff parses unified diff output into per-file changed-line sets.
//
// The primary consumer is the gate pipeline, which needs to know, for every
// file in a checkout, exactly which new-side line numbers were introduced or
// modified relative to the merge base. Only added lines count as changed:
// a removed line no longer exists in the current file, so no finding can be
// reported against it.
//
// Hunk headers are validated against the unified diff grammar. A header that
// fails validation poisons only the file it belongs to; entries parsed for
// other files survive.
package diff
