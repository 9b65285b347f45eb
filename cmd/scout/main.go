package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/bkyoung/lint-scout/internal/adapter/cli"
	"github.com/bkyoung/lint-scout/internal/adapter/git"
	"github.com/bkyoung/lint-scout/internal/adapter/linter/gofmt"
	"github.com/bkyoung/lint-scout/internal/adapter/linter/staticcheck"
	"github.com/bkyoung/lint-scout/internal/adapter/observability"
	jsonwriter "github.com/bkyoung/lint-scout/internal/adapter/output/json"
	"github.com/bkyoung/lint-scout/internal/adapter/output/sarif"
	"github.com/bkyoung/lint-scout/internal/adapter/output/text"
	"github.com/bkyoung/lint-scout/internal/adapter/store/sqlite"
	"github.com/bkyoung/lint-scout/internal/config"
	"github.com/bkyoung/lint-scout/internal/usecase/scout"
	"github.com/bkyoung/lint-scout/internal/version"
)

// Compile-time port compliance checks.
var (
	_ scout.GitEngine      = (*git.Engine)(nil)
	_ scout.FindingsSource = (*staticcheck.Runner)(nil)
	_ scout.FindingsSource = (*gofmt.Runner)(nil)
	_ scout.ReportWriter   = (*jsonwriter.Writer)(nil)
	_ scout.ReportWriter   = (*sarif.Writer)(nil)
	_ scout.Store          = (*sqlite.Store)(nil)
	_ cli.Gater            = (*scout.Gater)(nil)
	_ cli.ReportRenderer   = (*text.Renderer)(nil)
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, scout.ErrDirty) {
			os.Exit(1)
		}
		log.Println(err)
		os.Exit(1)
	}
}

func run() error {
	// Create cancellable context with signal handling for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load(config.LoaderOptions{
		ConfigPaths: defaultConfigPaths(),
		FileName:    "scout",
		EnvPrefix:   "SCOUT",
	})
	if err != nil {
		return fmt.Errorf("config load failed: %w", err)
	}

	repoDir := cfg.Git.RepositoryDir
	if repoDir == "" {
		repoDir = "."
	}

	repoName := repositoryName(repoDir)
	gitEngine := git.NewEngine(repoDir)

	sources := buildSources(repoDir, cfg.Linters)
	writers := buildWriters(cfg.Output)

	logger, tracer := buildObservability(cfg.Observability)

	var runStore scout.Store
	if cfg.Store.Enabled {
		storeDir := filepath.Dir(cfg.Store.Path)
		if err := os.MkdirAll(storeDir, 0755); err != nil {
			log.Printf("warning: failed to create store directory: %v", err)
		} else {
			sqliteStore, err := sqlite.NewStore(cfg.Store.Path)
			if err != nil {
				log.Printf("warning: failed to initialize store: %v", err)
			} else {
				runStore = sqliteStore
				defer runStore.Close()
			}
		}
	}

	deps := scout.Deps{
		Git:     gitEngine,
		Sources: sources,
		Writers: writers,
		Store:   runStore,
	}
	// Avoid storing typed nils behind the ports when logging is disabled.
	if logger != nil {
		deps.Logger = logger
		deps.Trace = tracer
	}

	gater := scout.NewGater(deps)

	renderer := text.NewRenderer(os.Stdout, scout.IsOutputTerminal())

	root := cli.NewRootCommand(cli.Dependencies{
		Gater:         gater,
		Renderer:      renderer,
		DefaultBranch: cfg.Git.Branch,
		DefaultOutput: cfg.Output.Directory,
		DefaultRepo:   repoName,
		Version:       version.Value(),
		OnVerbose: func() {
			if logger != nil {
				logger.SetLevel(observability.LogLevelDebug)
			}
		},
	})

	if err := root.ExecuteContext(ctx); err != nil {
		if errors.Is(err, cli.ErrVersionRequested) {
			return nil
		}
		if errors.Is(err, scout.ErrDirty) {
			return err
		}
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func buildSources(repoDir string, cfg config.LintersConfig) []scout.FindingsSource {
	var sources []scout.FindingsSource
	if cfg.Staticcheck.Enabled {
		sources = append(sources, staticcheck.NewRunner(repoDir, staticcheck.Config{
			Checks: cfg.Staticcheck.Checks,
			Tests:  cfg.Staticcheck.Tests,
		}))
	}
	if cfg.Gofmt.Enabled {
		sources = append(sources, gofmt.NewRunner(repoDir))
	}
	return sources
}

func buildWriters(cfg config.OutputConfig) []scout.ReportWriter {
	// Timestamp function for deterministic output file naming
	nowFunc := func() string {
		return time.Now().UTC().Format("20060102T150405Z")
	}

	var writers []scout.ReportWriter
	for _, format := range cfg.Formats {
		switch format {
		case "json":
			writers = append(writers, jsonwriter.NewWriter(nowFunc))
		case "sarif":
			writers = append(writers, sarif.NewWriter(nowFunc))
		default:
			log.Printf("warning: unknown output format %q, skipping", format)
		}
	}
	return writers
}

func buildObservability(cfg config.ObservabilityConfig) (*observability.DefaultLogger, *observability.DecisionTracer) {
	if !cfg.Logging.Enabled {
		return nil, nil
	}

	logLevel := observability.LogLevelInfo
	switch cfg.Logging.Level {
	case "debug":
		logLevel = observability.LogLevelDebug
	case "error":
		logLevel = observability.LogLevelError
	}

	logFormat := observability.LogFormatHuman
	if cfg.Logging.Format == "json" {
		logFormat = observability.LogFormatJSON
	}

	logger := observability.NewDefaultLogger(logLevel, logFormat)
	return logger, observability.NewDecisionTracer(logger)
}

func repositoryName(repoDir string) string {
	abs, err := filepath.Abs(repoDir)
	if err != nil {
		return "unknown"
	}
	return filepath.Base(abs)
}

func defaultConfigPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "scout"))
	}
	return paths
}
