package config

// Config represents the full application configuration.
type Config struct {
	Git           GitConfig           `yaml:"git"`
	Linters       LintersConfig       `yaml:"linters"`
	Output        OutputConfig        `yaml:"output"`
	Store         StoreConfig         `yaml:"store"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type GitConfig struct {
	RepositoryDir string `yaml:"repositoryDir"`
	Branch        string `yaml:"branch"`
}

// LintersConfig configures the findings sources that feed the gate.
type LintersConfig struct {
	Staticcheck StaticcheckConfig `yaml:"staticcheck"`
	Gofmt       GofmtConfig       `yaml:"gofmt"`
}

// StaticcheckConfig configures the staticcheck source.
type StaticcheckConfig struct {
	Enabled bool     `yaml:"enabled"`
	Checks  []string `yaml:"checks"`
	Tests   bool     `yaml:"tests"`
}

// GofmtConfig configures the gofmt formatting source.
type GofmtConfig struct {
	Enabled bool `yaml:"enabled"`
}

// OutputConfig configures report artifacts. Formats selects which
// writers run; "json" and "sarif" are recognised.
type OutputConfig struct {
	Directory string   `yaml:"directory"`
	Formats   []string `yaml:"formats"`
}

// StoreConfig configures the run-history persistence layer.
type StoreConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// ObservabilityConfig configures logging.
type ObservabilityConfig struct {
	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig configures diagnostic logging.
type LoggingConfig struct {
	Enabled bool   `yaml:"enabled"`
	Level   string `yaml:"level"`  // debug, info, error
	Format  string `yaml:"format"` // json, human
}

// Merge combines multiple configuration instances, prioritising the latter ones.
func Merge(configs ...Config) Config {
	result := Config{}
	for _, cfg := range configs {
		result = merge(result, cfg)
	}
	return result
}

func merge(base, overlay Config) Config {
	result := base

	result.Git = chooseGit(base.Git, overlay.Git)
	result.Linters = chooseLinters(base.Linters, overlay.Linters)
	result.Output = chooseOutput(base.Output, overlay.Output)
	result.Store = chooseStore(base.Store, overlay.Store)
	result.Observability = chooseObservability(base.Observability, overlay.Observability)

	return result
}

func chooseGit(base, overlay GitConfig) GitConfig {
	result := base
	if overlay.RepositoryDir != "" {
		result.RepositoryDir = overlay.RepositoryDir
	}
	if overlay.Branch != "" {
		result.Branch = overlay.Branch
	}
	return result
}

func chooseLinters(base, overlay LintersConfig) LintersConfig {
	result := base
	if overlay.Staticcheck.Enabled || len(overlay.Staticcheck.Checks) > 0 || overlay.Staticcheck.Tests {
		result.Staticcheck = overlay.Staticcheck
	}
	if overlay.Gofmt.Enabled {
		result.Gofmt = overlay.Gofmt
	}
	return result
}

func chooseOutput(base, overlay OutputConfig) OutputConfig {
	result := base
	if overlay.Directory != "" {
		result.Directory = overlay.Directory
	}
	if len(overlay.Formats) > 0 {
		result.Formats = overlay.Formats
	}
	return result
}

func chooseStore(base, overlay StoreConfig) StoreConfig {
	if overlay.Enabled || overlay.Path != "" {
		return overlay
	}
	return base
}

func chooseObservability(base, overlay ObservabilityConfig) ObservabilityConfig {
	result := base
	if overlay.Logging.Enabled || overlay.Logging.Level != "" || overlay.Logging.Format != "" {
		result.Logging = overlay.Logging
	}
	return result
}
