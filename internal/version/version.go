// Package version exposes the build-time version of the binary.
package version

// version is set at build time via
// -ldflags "-X github.com/bkyoung/lint-scout/internal/version.version=vX.Y.Z".
var version = "v0.0.0"

// Value returns the version string embedded at build time.
func Value() string {
	return version
}
