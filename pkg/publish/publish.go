// SPDX-License-Identifier: MPL-2.0

// Package publish moves versioned artifacts into a local publish
// directory, bumping and persisting the project version first so that
// the published artifact always matches the on-disk manifest.
package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/project"
	"bv-cli/pkg/semver"
)

// Options configures a single publish run.
type Options struct {
	// Config is the loaded project manifest. Required.
	Config *project.ProjectConfig

	// ConfigPath is where the bumped manifest is persisted. Required
	// unless ArtifactPath is set.
	ConfigPath string

	// ProjectRoot is the directory the artifact is built from.
	ProjectRoot string

	// ArtifactPath names a pre-built artifact to publish as-is. When
	// set, no version bump happens and nothing is built.
	ArtifactPath string

	// Bump selects which version component to increment. The zero
	// value bumps the patch component.
	Bump semver.BumpLevel

	// Includes are extra paths packaged into a freshly built artifact.
	Includes []string

	// Overwrite replaces an already-published artifact instead of
	// failing with ArtifactExistsError.
	Overwrite bool

	// Move removes the source artifact after it has been placed at the
	// destination.
	Move bool

	// DryRun computes the destination without persisting, building, or
	// copying anything.
	DryRun bool
}

// Result describes what a publish run did, or would do under DryRun.
type Result struct {
	// Version is the version the artifact was published under.
	Version string

	// Source is the artifact that was (or would be) placed.
	Source string

	// Destination is the final path under the publish directory.
	Destination string

	// Bumped reports whether the project version was incremented.
	Bumped bool
}

// Orchestrator coordinates version bump, build, and placement.
type Orchestrator struct {
	builder    *bvpack.Builder
	publishDir string
}

func NewOrchestrator(builder *bvpack.Builder, publishDir string) *Orchestrator {
	return &Orchestrator{builder: builder, publishDir: publishDir}
}

// Publish runs one publish cycle. With Options.ArtifactPath set it
// validates and places an existing artifact; otherwise it bumps the
// project version, persists the manifest, builds, and places the
// result. The manifest is persisted before the build so a build
// failure never leaves a published artifact ahead of the manifest.
//
// Either way the project's entrypoints are checked for importability
// first; an unrunnable project never publishes.
func (o *Orchestrator) Publish(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("publish requires a loaded project config")
	}
	registry := project.NewRegistry(opts.ConfigPath, opts.Config)
	if errs := registry.ValidateImportability(opts.ProjectRoot); len(errs) > 0 {
		return nil, fmt.Errorf("entrypoint validation failed: %w", errors.Join(errs...))
	}
	if opts.ArtifactPath != "" {
		return o.publishExisting(opts)
	}
	return o.publishFresh(ctx, opts)
}

func (o *Orchestrator) publishExisting(opts Options) (*Result, error) {
	if !strings.HasSuffix(opts.ArtifactPath, bvpack.ArtifactSuffix) {
		return nil, &NotAnArtifactError{Path: opts.ArtifactPath}
	}
	if _, err := os.Stat(opts.ArtifactPath); err != nil {
		return nil, &SourceArtifactMissingError{Path: opts.ArtifactPath}
	}

	info, err := bvpack.Validate(opts.ArtifactPath, bvpack.Expectation{Name: opts.Config.Name})
	if err != nil {
		return nil, fmt.Errorf("failed to validate artifact %s: %w", opts.ArtifactPath, err)
	}

	result := &Result{
		Version:     info.Version,
		Source:      opts.ArtifactPath,
		Destination: o.destination(info.Name, info.Version, filepath.Base(opts.ArtifactPath)),
	}
	if opts.DryRun {
		return result, nil
	}
	if err := o.place(opts.ArtifactPath, result.Destination, opts.Overwrite, opts.Move); err != nil {
		return nil, err
	}
	return result, nil
}

func (o *Orchestrator) publishFresh(ctx context.Context, opts Options) (*Result, error) {
	cfg := opts.Config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	current, err := cfg.ValidateSemver()
	if err != nil {
		return nil, err
	}
	next, err := current.Bump(opts.Bump)
	if err != nil {
		return nil, err
	}

	fileName := bvpack.ArtifactFileName(cfg.Name, next.String())
	result := &Result{
		Version:     next.String(),
		Source:      filepath.Join(opts.ProjectRoot, bvpack.DistDir, fileName),
		Destination: o.destination(cfg.Name, next.String(), fileName),
		Bumped:      true,
	}
	if opts.DryRun {
		return result, nil
	}

	// Refuse early rather than after a bump and build.
	if !opts.Overwrite {
		if _, err := os.Stat(result.Destination); err == nil {
			return nil, &ArtifactExistsError{Path: result.Destination}
		}
	}

	cfg.Version = next.String()
	if err := cfg.Save(opts.ConfigPath); err != nil {
		return nil, err
	}
	if err := project.WriteEntrypointIndex(filepath.Dir(opts.ConfigPath), cfg); err != nil {
		return nil, err
	}

	built, err := o.builder.Build(ctx, bvpack.BuildOptions{
		Config:      cfg,
		ProjectRoot: opts.ProjectRoot,
		Includes:    opts.Includes,
	})
	if err != nil {
		return nil, err
	}
	result.Source = built

	if err := o.place(built, result.Destination, opts.Overwrite, opts.Move); err != nil {
		return nil, err
	}
	return result, nil
}

// destination is <publish_dir>/<name>/<version>/<file>.
func (o *Orchestrator) destination(name, version, fileName string) string {
	return filepath.Join(o.publishDir, name, version, fileName)
}

// place copies source into destination atomically, then optionally
// removes the source. The source is only removed after the destination
// rename has succeeded.
func (o *Orchestrator) place(source, destination string, overwrite, move bool) error {
	if !overwrite {
		if _, err := os.Stat(destination); err == nil {
			return &ArtifactExistsError{Path: destination}
		}
	}
	if err := os.MkdirAll(filepath.Dir(destination), 0o755); err != nil {
		return fmt.Errorf("failed to create publish directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(destination), ".publish-*")
	if err != nil {
		return fmt.Errorf("failed to stage artifact: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	src, err := os.Open(source)
	if err != nil {
		tmp.Close()
		return fmt.Errorf("failed to open artifact %s: %w", source, err)
	}
	_, copyErr := io.Copy(tmp, src)
	src.Close()
	if closeErr := tmp.Close(); copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		return fmt.Errorf("failed to copy artifact to %s: %w", destination, copyErr)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("failed to set artifact permissions: %w", err)
	}
	if err := os.Rename(tmpName, destination); err != nil {
		return fmt.Errorf("failed to place artifact at %s: %w", destination, err)
	}

	if move {
		if err := os.Remove(source); err != nil {
			return fmt.Errorf("failed to remove source artifact %s: %w", source, err)
		}
	}
	return nil
}
