// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/project"
	"bv-cli/pkg/venv"
)

var (
	initWithVenv bool

	// initCmd scaffolds a project in the current directory
	initCmd = &cobra.Command{
		Use:   "init [name]",
		Short: "Initialize a project in the current directory",
		Long: `Initialize a project in the current directory with a starter manifest,
a sample entrypoint, and the contract files every artifact must carry.

The project name defaults to the name of the current directory. Pass
--venv to also create the virtual environment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runInit,
	}
)

func init() {
	initCmd.Flags().BoolVar(&initWithVenv, "venv", false, "create the virtual environment after scaffolding")
}

const starterSource = `def main(input=None):
    """Starter entrypoint. Replace with your own logic."""
    data = input or {}
    name = str(data.get("name", "World"))
    return {"result": f"Hello {name}"}
`

func runInit(cmd *cobra.Command, args []string) error {
	root, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to resolve current directory: %w", err)
	}
	name := filepath.Base(root)
	if len(args) > 0 {
		name = args[0]
	}

	configPath := filepath.Join(root, project.ConfigFileName)
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("project already initialized: %s exists; remove it to re-initialize", project.ConfigFileName)
	}

	cfg := &project.ProjectConfig{
		Name:    name,
		Version: "0.0.0",
		VenvDir: project.DefaultVenvDir,
		Entrypoints: []project.EntryPoint{
			{Name: "main", Command: "main:main", Default: true},
		},
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	starter := &project.PyProject{
		Project: project.PyProjectSection{
			RequiresPython: ">=3.11",
			Dependencies:   []string{},
		},
	}
	pyproject, err := starter.Encode()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Join(root, bvpack.DistDir), 0o755); err != nil {
		return fmt.Errorf("failed to create the dist directory: %w", err)
	}

	// Track what was written so a failed init never leaves a partial
	// scaffold behind.
	var created []string
	fail := func(err error) error {
		for _, path := range created {
			_ = os.Remove(path)
		}
		return err
	}

	if err := cfg.Save(configPath); err != nil {
		return fail(err)
	}
	created = append(created, configPath)

	if err := project.WriteEntrypointIndex(root, cfg); err != nil {
		return fail(err)
	}
	created = append(created, filepath.Join(root, project.IndexFileName))

	for _, file := range []struct {
		name    string
		content []byte
	}{
		{"main.py", []byte(starterSource)},
		{bvpack.BindingsFileName, []byte("{}\n")},
		{project.PyProjectFileName, pyproject},
	} {
		path := filepath.Join(root, file.name)
		if err := os.WriteFile(path, file.content, 0o644); err != nil {
			return fail(fmt.Errorf("failed to write %s: %w", file.name, err))
		}
		created = append(created, path)
	}

	if initWithVenv {
		manager := venv.NewManager(filepath.Join(root, cfg.VenvDir))
		preexisting := manager.Exists()
		if err := manager.Create(cmd.Context(), appConfig.Python.String()); err != nil {
			if !preexisting {
				_ = os.RemoveAll(manager.Dir())
			}
			return fail(fmt.Errorf("failed to create virtual environment: %w", err))
		}
	}

	fmt.Printf("%s Initialized %s in %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(name), root)
	fmt.Println()
	fmt.Println(SubtitleStyle.Render("Next steps:"))
	if !initWithVenv {
		fmt.Println("  1. Create the virtual environment (bv init --venv does this for you)")
	}
	fmt.Println("  2. Edit main.py and register more entrypoints with 'bv entry add'")
	fmt.Println("  3. Run 'bv build' to produce an artifact")

	return nil
}
