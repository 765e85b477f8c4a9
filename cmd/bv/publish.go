// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/publish"
	"bv-cli/pkg/semver"
	"bv-cli/pkg/venv"
)

var (
	publishMajor     bool
	publishMinor     bool
	publishPatch     bool
	publishBump      string
	publishMove      bool
	publishOverwrite bool
	publishDryRun    bool
	publishDir       string

	// publishCmd bumps the version, builds, and places the artifact
	publishCmd = &cobra.Command{
		Use:   "publish [artifact]",
		Short: "Bump the project version, build, and publish the artifact",
		Long: `Bump the project version, build, and publish the artifact.

Without an argument the project version is bumped (patch by default),
the manifest is persisted, a fresh artifact is built, and the result is
placed under <publish_dir>/<name>/<version>/. With an artifact path the
existing file is validated and published as-is, without a bump.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPublish,
	}
)

func init() {
	publishCmd.Flags().BoolVar(&publishMajor, "major", false, "bump the major version")
	publishCmd.Flags().BoolVar(&publishMinor, "minor", false, "bump the minor version")
	publishCmd.Flags().BoolVar(&publishPatch, "patch", false, "bump the patch version (default)")
	publishCmd.Flags().StringVar(&publishBump, "bump", "", "bump level: major, minor, or patch")
	publishCmd.MarkFlagsMutuallyExclusive("major", "minor", "patch", "bump")

	publishCmd.Flags().BoolVar(&publishMove, "move", false, "remove the source artifact after publishing")
	publishCmd.Flags().BoolVar(&publishOverwrite, "overwrite", false, "replace an already-published artifact")
	publishCmd.Flags().BoolVar(&publishDryRun, "dry-run", false, "print the destination without publishing")
	publishCmd.Flags().StringVar(&publishDir, "publish-dir", "", "publish directory (default from configuration)")
}

func bumpLevel() (semver.BumpLevel, error) {
	switch {
	case publishMajor:
		return semver.BumpMajor, nil
	case publishMinor:
		return semver.BumpMinor, nil
	case publishPatch:
		return semver.BumpPatch, nil
	}
	// --bump takes a named level; empty means patch.
	return semver.ParseBumpLevel(publishBump)
}

func runPublish(cmd *cobra.Command, args []string) error {
	proj, err := loadProject()
	if err != nil {
		return err
	}
	cfg := proj.Registry.Config()

	bump, err := bumpLevel()
	if err != nil {
		return err
	}

	dir := publishDir
	if dir == "" {
		dir = appConfig.PublishDir.String()
	}

	opts := publish.Options{
		Config:      cfg,
		ConfigPath:  proj.ConfigPath,
		ProjectRoot: proj.Root,
		Bump:        bump,
		Overwrite:   publishOverwrite,
		Move:        publishMove,
		DryRun:      publishDryRun,
	}

	var freezer bvpack.Freezer
	if len(args) > 0 {
		opts.ArtifactPath = args[0]
	} else if !publishDryRun {
		manager := venv.NewManager(filepath.Join(proj.Root, cfg.VenvDir))
		if err := manager.Ensure(cmd.Context(), false, appConfig.Python.String()); err != nil {
			return err
		}
		freezer = manager
	}

	logger.Debug("publishing", "name", cfg.Name, "bump", bump, "dir", dir)
	result, err := publish.NewOrchestrator(bvpack.NewBuilder(freezer), dir).
		Publish(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if publishDryRun {
		fmt.Println(result.Destination)
		return nil
	}

	fmt.Printf("%s Published %s version %s\n",
		SuccessStyle.Render("✓"), CmdStyle.Render(cfg.Name), result.Version)
	fmt.Println("  " + SubtitleStyle.Render(result.Destination))
	return nil
}
