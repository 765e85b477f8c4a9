// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/project"
)

var (
	// validateCmd checks the project and its entrypoints
	validateCmd = &cobra.Command{
		Use:   "validate",
		Short: "Validate the project manifest and entrypoints",
		Long: `Validate the project manifest and entrypoints.

Checks that the manifest parses and satisfies its schema, that the
version is a valid semantic version, and that every registered
entrypoint resolves to an importable module and function. All problems
are reported in one pass.`,
		Args: cobra.NoArgs,
		RunE: runValidate,
	}

	// validatePackageCmd checks a built artifact against the package contract
	validatePackageCmd = &cobra.Command{
		Use:   "package <artifact>",
		Short: "Validate a built artifact against the package contract",
		Args:  cobra.ExactArgs(1),
		RunE:  runValidatePackage,
	}
)

func init() {
	validateCmd.AddCommand(validatePackageCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	cfg := proj.Registry.Config()

	var problems []string

	if _, err := cfg.ValidateSemver(); err != nil {
		problems = append(problems, fmt.Sprintf("version: %v", err))
	}

	for _, err := range proj.Registry.ValidateImportability(proj.Root) {
		problems = append(problems, err.Error())
	}

	// Warnings do not fail validation.
	var warnings []string
	pyPath := filepath.Join(proj.Root, project.PyProjectFileName)
	if py, err := project.LoadPyProject(pyPath); err != nil {
		problems = append(problems, fmt.Sprintf("%s: %v", project.PyProjectFileName, err))
	} else {
		warnings = py.Lint()
	}

	for _, warning := range warnings {
		fmt.Println(WarningStyle.Render("warning: ") + warning)
	}

	if len(problems) > 0 {
		fmt.Println(ErrorStyle.Render(fmt.Sprintf("%d problem(s) found:", len(problems))))
		for _, problem := range problems {
			fmt.Println("  " + problem)
		}
		return &ExitError{Code: 1, Err: fmt.Errorf("project validation failed")}
	}

	fmt.Printf("%s Project %s is valid (%d entrypoints)\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(cfg.Name), len(cfg.Entrypoints))
	return nil
}

func runValidatePackage(cmd *cobra.Command, args []string) error {
	// Cross-check against the local manifest when one is present.
	expect := bvpack.Expectation{}
	if proj, err := loadProject(); err == nil {
		expect.Name = proj.Registry.Config().Name
	}

	info, err := bvpack.Validate(args[0], expect)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s version %s (%d entrypoints)\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(info.Name), info.Version, len(info.EntryPoints))
	return nil
}
