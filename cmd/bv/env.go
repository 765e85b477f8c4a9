// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bv-cli/pkg/project"
	"bv-cli/pkg/venv"
)

var (
	// envCmd groups virtual-environment operations
	envCmd = &cobra.Command{
		Use:   "env",
		Short: "Manage the project virtual environment",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	// envSyncCmd installs the declared dependencies into the environment
	envSyncCmd = &cobra.Command{
		Use:   "sync",
		Short: "Install the dependencies declared in pyproject.toml",
		Long: `Install the dependencies declared in pyproject.toml into the project
virtual environment. The environment must already exist; 'bv init --venv'
creates it. Run 'bv build' afterwards so the artifact's dependency lock
picks up the change.`,
		Args: cobra.NoArgs,
		RunE: runEnvSync,
	}
)

func init() {
	envCmd.AddCommand(envSyncCmd)
}

func runEnvSync(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	cfg := proj.Registry.Config()

	py, err := project.LoadPyProject(filepath.Join(proj.Root, project.PyProjectFileName))
	if err != nil {
		return err
	}

	manager := venv.NewManager(filepath.Join(proj.Root, cfg.VenvDir))
	if len(py.Project.Dependencies) == 0 {
		fmt.Printf("%s No dependencies declared in %s\n", SuccessStyle.Render("✓"), project.PyProjectFileName)
		return nil
	}

	logger.Debug("syncing environment", "dir", manager.Dir(), "dependencies", len(py.Project.Dependencies))
	if err := manager.Install(cmd.Context(), py.Project.Dependencies, ""); err != nil {
		return err
	}

	fmt.Printf("%s Installed %d dependencies into %s\n",
		SuccessStyle.Render("✓"), len(py.Project.Dependencies), manager.Dir())
	return nil
}
