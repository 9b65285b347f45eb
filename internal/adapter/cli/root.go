package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/bkyoung/lint-scout/internal/domain"
	"github.com/bkyoung/lint-scout/internal/usecase/scout"
)

// ErrVersionRequested indicates the user requested the CLI version and no further work should be done.
var ErrVersionRequested = errors.New("version requested")

// Gater defines the dependency required to run the check command.
type Gater interface {
	Run(ctx context.Context, req scout.Request) (scout.Result, error)
}

// ReportRenderer presents the final report to the user.
type ReportRenderer interface {
	Render(report domain.Report) error
}

// Arguments encapsulates IO writers injected from the host process.
type Arguments struct {
	OutWriter io.Writer
	ErrWriter io.Writer
}

// Dependencies captures the collaborators for the CLI.
type Dependencies struct {
	Gater         Gater
	Renderer      ReportRenderer
	Args          Arguments
	DefaultBranch string
	DefaultOutput string
	DefaultRepo   string
	Version       string

	// OnVerbose is invoked before the check runs when --verbose is set,
	// so the host can raise the log level.
	OnVerbose func()
}

// NewRootCommand constructs the root Cobra command.
func NewRootCommand(deps Dependencies) *cobra.Command {
	versionString := deps.Version
	if versionString == "" {
		versionString = "v0.0.0"
	}

	root := &cobra.Command{
		Use:   "scout",
		Short: "Lint gate for changed lines",
		Long:  "scout runs linters over a checkout and reports only the findings that touch lines changed relative to a base branch.",
	}
	root.SilenceUsage = true
	root.SilenceErrors = true

	outWriter := deps.Args.OutWriter
	if outWriter == nil {
		outWriter = os.Stdout
	}
	errWriter := deps.Args.ErrWriter
	if errWriter == nil {
		errWriter = os.Stderr
	}
	root.SetOut(outWriter)
	root.SetErr(errWriter)

	root.AddCommand(checkCommand(deps))

	var showVersion bool
	root.PersistentFlags().BoolVar(&showVersion, "version", false, "Show version and exit")
	versionHandler := func(cmd *cobra.Command, args []string) error {
		if showVersion {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), versionString)
			return ErrVersionRequested
		}
		return nil
	}
	root.PersistentPreRunE = versionHandler
	root.PreRunE = versionHandler
	root.RunE = func(cmd *cobra.Command, args []string) error {
		if err := versionHandler(cmd, args); err != nil {
			return err
		}
		return cmd.Help()
	}

	return root
}

func checkCommand(deps Dependencies) *cobra.Command {
	var branch string
	var outputDir string
	var repository string
	var includeUncommitted bool
	var noFail bool
	var verbose bool

	defaultBranch := deps.DefaultBranch
	if defaultBranch == "" {
		defaultBranch = "master"
	}
	defaultOutput := deps.DefaultOutput
	if defaultOutput == "" {
		defaultOutput = "out"
	}

	cmd := &cobra.Command{
		Use:   "check [branch]",
		Short: "Gate lint findings on the diff against a base branch",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				branch = args[0]
			}
			if verbose && deps.OnVerbose != nil {
				deps.OnVerbose()
			}

			result, err := deps.Gater.Run(cmd.Context(), scout.Request{
				Branch:             branch,
				Repository:         repository,
				OutputDir:          outputDir,
				IncludeUncommitted: includeUncommitted,
			})
			if err != nil {
				return err
			}

			if deps.Renderer != nil {
				if err := deps.Renderer.Render(result.Report); err != nil {
					return fmt.Errorf("render report: %w", err)
				}
			}

			if !result.Report.Clean() && !noFail {
				return scout.ErrDirty
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&branch, "branch", "b", defaultBranch, "Base branch to diff against (overridden by positional argument)")
	cmd.Flags().StringVar(&outputDir, "output", defaultOutput, "Directory to write report artifacts")
	cmd.Flags().StringVar(&repository, "repository", deps.DefaultRepo, "Optional repository name override")
	cmd.Flags().BoolVar(&includeUncommitted, "include-uncommitted", true, "Include uncommitted changes in the diff")
	cmd.Flags().BoolVar(&noFail, "no-fail", false, "Exit successfully even when findings intersect the diff")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	return cmd
}
