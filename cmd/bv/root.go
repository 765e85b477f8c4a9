// SPDX-License-Identifier: MPL-2.0

// Command bv packages and publishes automation projects.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"

	"bv-cli/internal/config"
	"bv-cli/internal/issue"
	"bv-cli/pkg/project"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
	// BuildDate is the build timestamp (set via -ldflags).
	BuildDate = "unknown"

	// verbose enables verbose output
	verbose bool
	// cfgFile allows specifying a custom config file
	cfgFile string

	// appConfig is the loaded application configuration.
	appConfig *config.Config

	// rootCmd represents the base command when called without any subcommands
	rootCmd = &cobra.Command{
		Use:   "bv",
		Short: "Package and publish automation projects",
		Long: TitleStyle.Render("bv") + SubtitleStyle.Render(" - Package and publish automation projects") + `

bv turns a project directory described by a bvproject.yaml manifest
into a versioned, reproducible .bvpackage artifact. It manages the
project's entrypoints, validates that they resolve to real Python
functions, and publishes artifacts into a local directory tree
organized by name and version.

` + SubtitleStyle.Render("Quick Start:") + `
  1. Run 'bv init' in a project directory to scaffold it
  2. Register entrypoints with 'bv entry add'
  3. Build an artifact with 'bv build'
  4. Publish it with 'bv publish'

` + SubtitleStyle.Render("Examples:") + `
  bv init billing-agent       Initialize the current directory
  bv validate                 Check the project and its entrypoints
  bv build --dry-run          Show the artifact path without building
  bv publish --minor          Bump the minor version and publish`,
	}
)

func init() {
	cobra.OnInitialize(initRootConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/bv/config.cue)")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(entryCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(envCmd)
	rootCmd.AddCommand(configCmd)
}

// getVersionString returns a formatted version string for display.
func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s, built: %s)", Version, Commit, BuildDate)
}

// Execute runs the root command through fang for styled help and errors.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(getVersionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			os.Exit(exitErr.Code)
		}
		os.Exit(1)
	}
}

// initRootConfig loads the application configuration and applies
// config-driven defaults that flags did not set.
func initRootConfig() {
	cfg, err := config.NewProvider().Load(context.Background(), config.LoadOptions{
		ConfigFilePath: cfgFile,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, WarningStyle.Render("Warning: ")+formatErrorForDisplay(err, verbose))
		cfg = config.DefaultConfig()
	}
	appConfig = cfg

	if !verbose {
		verbose = cfg.UI.Verbose
	}
	applyLogLevel()
}

// formatErrorForDisplay formats an error for user display.
// If the error is an ActionableError, it uses the Format method.
// In verbose mode, shows the full error chain.
func formatErrorForDisplay(err error, verboseMode bool) string {
	var ae *issue.ActionableError
	if errors.As(err, &ae) {
		return ae.Format(verboseMode)
	}
	return err.Error()
}

// loadedProject bundles the manifest and the directory it was found in.
type loadedProject struct {
	Root       string
	ConfigPath string
	Registry   *project.Registry
}

// loadProject opens the project in the current working directory.
func loadProject() (*loadedProject, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to determine working directory: %w", err)
	}
	return loadProjectAt(cwd)
}

// loadProjectAt opens the project rooted at dir.
func loadProjectAt(dir string) (*loadedProject, error) {
	configPath := filepath.Join(dir, project.ConfigFileName)
	reg, err := project.OpenRegistry(configPath)
	if err != nil {
		var notFound *project.ConfigNotFoundError
		if errors.As(err, &notFound) {
			return nil, issue.WrapResource(err, "load project", dir).
				Suggest("Run this command from a project directory").
				Suggest("Run 'bv init' to create a new project")
		}
		return nil, err
	}
	return &loadedProject{Root: dir, ConfigPath: configPath, Registry: reg}, nil
}
