// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/venv"
)

var (
	buildOutput   string
	buildIncludes []string
	buildDryRun   bool

	// buildCmd produces a .bvpackage artifact from the project
	buildCmd = &cobra.Command{
		Use:   "build",
		Short: "Build a .bvpackage artifact from the project",
		Long: `Build a .bvpackage artifact from the project.

The archive contains the project's Python sources, the manifest and
entrypoint index, a manifest.json derived from the project config, and
a requirements.lock capturing the pinned dependency set of the virtual
environment. Building the same content twice produces byte-identical
archives.`,
		Args: cobra.NoArgs,
		RunE: runBuild,
	}
)

func init() {
	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "artifact output path (default dist/<name>-<version>.bvpackage)")
	buildCmd.Flags().StringArrayVar(&buildIncludes, "include", nil, "extra file or directory to package, relative to the project root")
	buildCmd.Flags().BoolVar(&buildDryRun, "dry-run", false, "print the artifact path without building")
}

func runBuild(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	cfg := proj.Registry.Config()

	// Every entrypoint must resolve before anything is packaged. A
	// structurally valid archive around an unrunnable entrypoint is
	// worse than no archive.
	if errs := proj.Registry.ValidateImportability(proj.Root); len(errs) > 0 {
		fmt.Println(ErrorStyle.Render(fmt.Sprintf("%d problem(s) found:", len(errs))))
		for _, e := range errs {
			fmt.Println("  " + e.Error())
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("entrypoint validation failed")}
	}

	// The dependency lock comes from the project environment. A missing
	// environment fails the build rather than producing an artifact with
	// an empty lock.
	var freezer bvpack.Freezer
	if !buildDryRun {
		manager := venv.NewManager(filepath.Join(proj.Root, cfg.VenvDir))
		if err := manager.Ensure(cmd.Context(), false, appConfig.Python.String()); err != nil {
			return err
		}
		freezer = manager
	}

	logger.Debug("building artifact", "name", cfg.Name, "version", cfg.Version)
	out, err := bvpack.NewBuilder(freezer).Build(cmd.Context(), bvpack.BuildOptions{
		Config:      cfg,
		ProjectRoot: proj.Root,
		Includes:    buildIncludes,
		OutputPath:  buildOutput,
		DryRun:      buildDryRun,
	})
	if err != nil {
		return err
	}

	if buildDryRun {
		fmt.Println(out)
		return nil
	}

	fmt.Printf("%s Built %s\n", SuccessStyle.Render("✓"), CmdStyle.Render(out))
	return nil
}
