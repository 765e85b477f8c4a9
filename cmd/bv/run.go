// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"bv-cli/pkg/project"
	"bv-cli/pkg/pysrc"
	"bv-cli/pkg/runner"
	"bv-cli/pkg/venv"
)

var (
	runInput string

	// runCmd executes a project entrypoint
	runCmd = &cobra.Command{
		Use:   "run [entrypoint]",
		Short: "Run a project entrypoint in the virtual environment",
		Long: `Run a project entrypoint in the virtual environment.

Without an argument the default entrypoint is executed. Input is passed
as a JSON object and delivered according to the function's signature: a
function without parameters receives nothing, a function with a
required first parameter receives the input dict, and a function whose
parameters all have defaults receives the input only when given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runRun,
	}
)

func init() {
	runCmd.Flags().StringVar(&runInput, "input", "", "JSON object passed to the entrypoint")
}

func runRun(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	cfg := proj.Registry.Config()

	var entry project.EntryPoint
	if len(args) > 0 {
		entry, err = proj.Registry.Get(args[0])
	} else {
		entry, err = cfg.DefaultEntrypoint()
	}
	if err != nil {
		return err
	}

	var input map[string]any
	if runInput != "" {
		if err := json.Unmarshal([]byte(runInput), &input); err != nil {
			return fmt.Errorf("failed to parse --input as a JSON object: %w", err)
		}
	}

	manager := venv.NewManager(filepath.Join(proj.Root, cfg.VenvDir))
	if err := manager.Ensure(cmd.Context(), false, appConfig.Python.String()); err != nil {
		return err
	}

	r := runner.New(manager, pysrc.NewResolver(proj.Root))
	if err := r.Run(cmd.Context(), runner.Request{
		Entrypoint:  entry,
		ProjectRoot: proj.Root,
		Input:       input,
	}); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return nil
}
