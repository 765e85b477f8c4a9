// SPDX-License-Identifier: MPL-2.0

package bvpack

import (
	"archive/zip"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"bv-cli/pkg/project"
)

// archiveEpoch is the fixed timestamp stamped on every archive entry.
// Wall-clock time must never leak into an artifact or determinism is lost.
var archiveEpoch = time.Unix(0, 0).UTC()

// Freezer supplies the resolved dependency list embedded as
// requirements.lock. It is the package's only view of the virtual
// environment.
type Freezer interface {
	Freeze(ctx context.Context) ([]string, error)
}

// BuildOptions are the inputs of one build invocation.
type BuildOptions struct {
	// Config is the loaded project manifest. Build never mutates it.
	Config *project.ProjectConfig
	// ProjectRoot is the directory all relative paths resolve against.
	ProjectRoot string
	// Includes are extra project-relative paths (files or directories)
	// added to the archive.
	Includes []string
	// OutputPath overrides the default dist/<name>-<version>.bvpackage
	// location.
	OutputPath string
	// DryRun computes the output path without writing anything.
	DryRun bool
}

// BuildPlan is the ephemeral file set computed for one build call: the
// archive-relative path of every entry mapped to its source file, plus the
// content generated in memory (manifest, lock listing).
type BuildPlan struct {
	// Files maps archive paths (forward slashes) to source paths on disk.
	Files map[string]string
	// Generated maps archive paths to in-memory content.
	Generated map[string][]byte
	// OutputPath is where the artifact will be written.
	OutputPath string
}

// Builder constructs .bvpackage artifacts.
type Builder struct {
	freezer Freezer
}

// NewBuilder creates a builder that obtains dependency locks from freezer.
// A nil freezer skips the requirements.lock entry, for projects without a
// managed environment.
func NewBuilder(freezer Freezer) *Builder {
	return &Builder{freezer: freezer}
}

// OutputPath computes the artifact path a build would use, applying the
// default dist location and forcing the .bvpackage suffix. Exposed so dry
// runs and publish previews agree with real builds by construction.
func OutputPath(opts BuildOptions) string {
	out := opts.OutputPath
	if out == "" {
		out = DefaultOutputPath(opts.ProjectRoot, opts.Config.Name, opts.Config.Version)
	} else if !strings.HasSuffix(out, ArtifactSuffix) {
		out += ArtifactSuffix
	}
	return out
}

// Build computes the file set, embeds the manifest and the dependency
// lock, and writes the deterministic archive. On success the artifact is
// self-checked against the contract with the live config's identity.
//
// Determinism: entries are sorted by archive path, stamped with a fixed
// timestamp and mode, and named with forward slashes, so two builds over
// identical content produce byte-identical archives.
func (b *Builder) Build(ctx context.Context, opts BuildOptions) (string, error) {
	outputPath := OutputPath(opts)
	if opts.DryRun {
		return outputPath, nil
	}

	plan, err := b.Plan(ctx, opts)
	if err != nil {
		return "", err
	}

	if err := writeArchive(outputPath, plan); err != nil {
		return "", err
	}

	// Self-check: the artifact must satisfy the contract and match the
	// identity it was built from.
	if _, err := Validate(outputPath, Expectation{Name: opts.Config.Name, Version: opts.Config.Version}); err != nil {
		_ = os.Remove(outputPath)
		return "", fmt.Errorf("built package failed its contract check: %w", err)
	}

	return outputPath, nil
}

// Plan computes the build plan without writing the archive.
func (b *Builder) Plan(ctx context.Context, opts BuildOptions) (*BuildPlan, error) {
	cfg := opts.Config
	root := opts.ProjectRoot

	plan := &BuildPlan{
		Files:      make(map[string]string),
		Generated:  make(map[string][]byte),
		OutputPath: OutputPath(opts),
	}

	// Importable source tree: every .py file, with excluded directories
	// (and the configured venv dir) pruned anywhere in the tree.
	if err := collectSources(root, cfg.VenvDir, plan.Files); err != nil {
		return nil, err
	}

	// Contract files. bindings.json is optional.
	for _, name := range RequiredFiles {
		src := filepath.Join(root, name)
		if _, err := os.Stat(src); err != nil {
			return nil, fmt.Errorf("required project file %q is missing: %w", name, err)
		}
		plan.Files[name] = src
	}
	if src := filepath.Join(root, BindingsFileName); fileExists(src) {
		plan.Files[BindingsFileName] = src
	}

	// Entrypoint workdirs travel with the package.
	for _, entry := range cfg.Entrypoints {
		if entry.Workdir == "" {
			continue
		}
		if err := collectTree(root, filepath.FromSlash(entry.Workdir), cfg.VenvDir, plan.Files); err != nil {
			return nil, fmt.Errorf("entrypoint %q: %w", entry.Name, err)
		}
	}

	// Extra includes, each resolved relative to the project root.
	for _, include := range opts.Includes {
		rel := filepath.FromSlash(include)
		if !fileOrDirExists(filepath.Join(root, rel)) {
			return nil, &IncludeNotFoundError{Path: include}
		}
		if err := collectTree(root, rel, cfg.VenvDir, plan.Files); err != nil {
			return nil, err
		}
	}

	// Embedded manifest.
	manifest, err := NewManifest(cfg).Encode()
	if err != nil {
		return nil, err
	}
	plan.Generated[ManifestFileName] = manifest

	// Dependency lock from the external collaborator.
	if b.freezer != nil {
		lines, err := b.freezer.Freeze(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to capture dependency lock: %w", err)
		}
		plan.Generated[LockFileName] = []byte(strings.Join(lines, "\n") + "\n")
	}

	// A project file must never shadow a generated entry; silently
	// packaging either one would corrupt the artifact.
	for name := range plan.Generated {
		if _, clash := plan.Files[name]; clash {
			return nil, &ReservedPathError{Path: name}
		}
	}

	return plan, nil
}

// collectSources walks the project tree adding every .py file, pruning
// excluded directories anywhere.
func collectSources(root, venvDir string, files map[string]string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if path == root {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedDir(d.Name()) || rel == filepath.Clean(venvDir) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(d.Name(), ".py") {
			files[filepath.ToSlash(rel)] = path
		}
		return nil
	})
}

// collectTree adds every file under the project-relative directory (or the
// single file) rel, pruning excluded directories.
func collectTree(root, rel, venvDir string, files map[string]string) error {
	full := filepath.Join(root, rel)
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("path %q does not exist in the project", filepath.ToSlash(rel))
	}

	if !info.IsDir() {
		files[filepath.ToSlash(rel)] = full
		return nil
	}

	return filepath.WalkDir(full, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		entryRel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != full && (excludedDir(d.Name()) || entryRel == filepath.Clean(venvDir)) {
				return filepath.SkipDir
			}
			return nil
		}
		files[filepath.ToSlash(entryRel)] = path
		return nil
	})
}

// writeArchive writes the plan to a temporary file next to the output path
// and atomically renames it into place, so a failed build never leaves a
// half-written artifact behind.
func writeArchive(outputPath string, plan *BuildPlan) error {
	dir := filepath.Dir(outputPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".bvpackage-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary archive: %w", err)
	}
	tmpPath := tmp.Name()

	if err := writeEntries(tmp, plan); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to finalize archive: %w", err)
	}

	if err := os.Rename(tmpPath, outputPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to move archive into place: %w", err)
	}
	return nil
}

func writeEntries(w io.Writer, plan *BuildPlan) error {
	// Plan guarantees the two sets are disjoint.
	names := make([]string, 0, len(plan.Files)+len(plan.Generated))
	for name := range plan.Files {
		names = append(names, name)
	}
	for name := range plan.Generated {
		names = append(names, name)
	}
	sort.Strings(names)

	zw := zip.NewWriter(w)
	for _, name := range names {
		header := &zip.FileHeader{
			Name:     name,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		header.SetMode(0o644)

		entry, err := zw.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("failed to create archive entry %q: %w", name, err)
		}

		if src, ok := plan.Files[name]; ok {
			if err := copyFile(entry, src); err != nil {
				return fmt.Errorf("failed to write archive entry %q: %w", name, err)
			}
			continue
		}
		if _, err := entry.Write(plan.Generated[name]); err != nil {
			return fmt.Errorf("failed to write archive entry %q: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	return nil
}

func copyFile(dst io.Writer, src string) error {
	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(dst, f)
	return err
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func fileOrDirExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
