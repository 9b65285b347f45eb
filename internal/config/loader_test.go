package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandEnvString(t *testing.T) {
	// Set test environment variables
	os.Setenv("TEST_BRANCH", "develop")
	os.Setenv("TEST_PATH", "/path/to/data")
	defer os.Unsetenv("TEST_BRANCH")
	defer os.Unsetenv("TEST_PATH")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand ${VAR} syntax",
			input:    "${TEST_BRANCH}",
			expected: "develop",
		},
		{
			name:     "expand $VAR syntax",
			input:    "$TEST_BRANCH",
			expected: "develop",
		},
		{
			name:     "expand in middle of string",
			input:    "refs/heads/${TEST_BRANCH}",
			expected: "refs/heads/develop",
		},
		{
			name:     "expand multiple variables",
			input:    "${TEST_BRANCH}:${TEST_PATH}",
			expected: "develop:/path/to/data",
		},
		{
			name:     "leave non-existent var unchanged",
			input:    "${NONEXISTENT_VAR}",
			expected: "${NONEXISTENT_VAR}",
		},
		{
			name:     "handle empty string",
			input:    "",
			expected: "",
		},
		{
			name:     "handle string without variables",
			input:    "plain-text",
			expected: "plain-text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandEnvString(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	os.Setenv("REPO_DIR", "/work/repo")
	os.Setenv("OUTPUT_DIR", "/custom/output")
	defer os.Unsetenv("REPO_DIR")
	defer os.Unsetenv("OUTPUT_DIR")

	cfg := Config{
		Git: GitConfig{
			RepositoryDir: "${REPO_DIR}",
		},
		Output: OutputConfig{
			Directory: "${OUTPUT_DIR}",
		},
	}

	expanded := expandEnvVars(cfg)

	assert.Equal(t, "/work/repo", expanded.Git.RepositoryDir)
	assert.Equal(t, "/custom/output", expanded.Output.Directory)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(LoaderOptions{ConfigPaths: []string{t.TempDir()}})
	require.NoError(t, err)

	assert.Equal(t, "master", cfg.Git.Branch)
	assert.True(t, cfg.Linters.Staticcheck.Enabled)
	assert.True(t, cfg.Linters.Gofmt.Enabled)
	assert.Equal(t, "out", cfg.Output.Directory)
	assert.Equal(t, []string{"json"}, cfg.Output.Formats)
	assert.True(t, cfg.Store.Enabled)
	assert.NotEmpty(t, cfg.Store.Path)
	assert.Equal(t, "info", cfg.Observability.Logging.Level)
	assert.Equal(t, "human", cfg.Observability.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	content := `
git:
  branch: main
linters:
  staticcheck:
    enabled: true
    checks:
      - SA1000
      - ST1005
    tests: true
output:
  directory: reports
  formats:
    - json
    - sarif
store:
  enabled: true
  path: /tmp/scout-test.db
observability:
  logging:
    enabled: true
    level: debug
    format: json
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scout.yaml"), []byte(content), 0o644))

	cfg, err := Load(LoaderOptions{ConfigPaths: []string{dir}})
	require.NoError(t, err)

	assert.Equal(t, "main", cfg.Git.Branch)
	assert.Equal(t, []string{"SA1000", "ST1005"}, cfg.Linters.Staticcheck.Checks)
	assert.True(t, cfg.Linters.Staticcheck.Tests)
	assert.Equal(t, "reports", cfg.Output.Directory)
	assert.Equal(t, []string{"json", "sarif"}, cfg.Output.Formats)
	assert.Equal(t, "/tmp/scout-test.db", cfg.Store.Path)
	assert.Equal(t, "debug", cfg.Observability.Logging.Level)
	assert.Equal(t, "json", cfg.Observability.Logging.Format)
}

func TestMerge_OverlayWins(t *testing.T) {
	base := Config{
		Git:    GitConfig{RepositoryDir: ".", Branch: "master"},
		Output: OutputConfig{Directory: "out", Formats: []string{"json"}},
	}
	overlay := Config{
		Git:    GitConfig{Branch: "main"},
		Output: OutputConfig{Formats: []string{"sarif"}},
	}

	merged := Merge(base, overlay)

	assert.Equal(t, ".", merged.Git.RepositoryDir)
	assert.Equal(t, "main", merged.Git.Branch)
	assert.Equal(t, "out", merged.Output.Directory)
	assert.Equal(t, []string{"sarif"}, merged.Output.Formats)
}
