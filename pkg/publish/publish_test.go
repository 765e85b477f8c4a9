// SPDX-License-Identifier: MPL-2.0

package publish

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"bv-cli/pkg/bvpack"
	"bv-cli/pkg/project"
	"bv-cli/pkg/semver"
)

type noDeps struct{}

func (noDeps) Freeze(ctx context.Context) ([]string, error) { return nil, nil }

// newPublishProject scaffolds a buildable project and returns its root,
// config path, and loaded config.
func newPublishProject(t *testing.T) (root, configPath string, cfg *project.ProjectConfig) {
	t.Helper()
	root = t.TempDir()

	files := map[string]string{
		project.ConfigFileName:    "name: demo\nversion: 1.2.3\nentrypoints:\n  - {name: main, command: \"main:main\", default: true}\n",
		project.IndexFileName:     `{"entryPoints": []}` + "\n",
		project.PyProjectFileName: "[project]\n",
		"main.py":                 "def main(input=None):\n    pass\n",
	}
	for rel, content := range files {
		if err := os.WriteFile(filepath.Join(root, rel), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	configPath = filepath.Join(root, project.ConfigFileName)
	cfg, err := project.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	return root, configPath, cfg
}

func newOrchestrator(t *testing.T) (*Orchestrator, string) {
	t.Helper()
	publishDir := t.TempDir()
	return NewOrchestrator(bvpack.NewBuilder(noDeps{}), publishDir), publishDir
}

func TestPublishBumpsPersistsAndPlaces(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	result, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	if result.Version != "1.2.4" {
		t.Errorf("published version = %s, want 1.2.4", result.Version)
	}
	if !result.Bumped {
		t.Error("result did not report a bump")
	}
	want := filepath.Join(publishDir, "demo", "1.2.4", "demo-1.2.4.bvpackage")
	if result.Destination != want {
		t.Errorf("destination = %s, want %s", result.Destination, want)
	}
	if _, err := os.Stat(result.Destination); err != nil {
		t.Errorf("published artifact missing: %v", err)
	}

	// The manifest on disk carries the bumped version.
	reloaded, err := project.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Version != "1.2.4" {
		t.Errorf("persisted version = %s, want 1.2.4", reloaded.Version)
	}

	// The published artifact passes contract validation.
	if _, err := bvpack.Validate(result.Destination, bvpack.Expectation{Name: "demo", Version: "1.2.4"}); err != nil {
		t.Errorf("published artifact failed validation: %v", err)
	}
}

func TestPublishBumpLevels(t *testing.T) {
	tests := []struct {
		level semver.BumpLevel
		want  string
	}{
		{semver.BumpPatch, "1.2.4"},
		{semver.BumpMinor, "1.3.0"},
		{semver.BumpMajor, "2.0.0"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			root, configPath, cfg := newPublishProject(t)
			orch, _ := newOrchestrator(t)

			result, err := orch.Publish(context.Background(), Options{
				Config:      cfg,
				ConfigPath:  configPath,
				ProjectRoot: root,
				Bump:        tt.level,
			})
			if err != nil {
				t.Fatal(err)
			}
			if result.Version != tt.want {
				t.Errorf("version = %s, want %s", result.Version, tt.want)
			}
		})
	}
}

func TestPublishDryRun(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	result, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
		DryRun:      true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if result.Version != "1.2.4" {
		t.Errorf("dry run version = %s", result.Version)
	}

	// Nothing persisted, built, or placed.
	reloaded, err := project.Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Version != "1.2.3" {
		t.Errorf("dry run persisted version %s", reloaded.Version)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); err == nil {
		t.Error("dry run built an artifact")
	}
	if _, err := os.Stat(filepath.Join(publishDir, "demo")); err == nil {
		t.Error("dry run wrote to the publish directory")
	}
}

func TestPublishRefusesExistingDestination(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	occupied := filepath.Join(publishDir, "demo", "1.2.4")
	if err := os.MkdirAll(occupied, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(occupied, "demo-1.2.4.bvpackage"), []byte("already here"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
	})
	var exists *ArtifactExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("Publish returned %v, want *ArtifactExistsError", err)
	}

	// The refusal happened before any version bump was persisted.
	reloaded, loadErr := project.Load(configPath)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if reloaded.Version != "1.2.3" {
		t.Errorf("refused publish still persisted version %s", reloaded.Version)
	}
}

func TestPublishOverwrite(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	occupied := filepath.Join(publishDir, "demo", "1.2.4")
	if err := os.MkdirAll(occupied, 0o755); err != nil {
		t.Fatal(err)
	}
	stale := filepath.Join(occupied, "demo-1.2.4.bvpackage")
	if err := os.WriteFile(stale, []byte("stale"), 0o644); err != nil {
		t.Fatal(err)
	}

	result, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
		Overwrite:   true,
	})
	if err != nil {
		t.Fatalf("overwrite publish failed: %v", err)
	}
	if _, err := bvpack.Validate(result.Destination, bvpack.Expectation{Name: "demo"}); err != nil {
		t.Errorf("overwritten artifact is not a valid package: %v", err)
	}
}

func TestPublishMoveRemovesSource(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, _ := newOrchestrator(t)

	result, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
		Move:        true,
	})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(result.Source); err == nil {
		t.Error("move publish left the source artifact behind")
	}
	if _, err := os.Stat(result.Destination); err != nil {
		t.Errorf("destination missing after move: %v", err)
	}
}

func TestPublishExistingArtifact(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	// Build an artifact first, then publish it as-is.
	builder := bvpack.NewBuilder(noDeps{})
	artifact, err := builder.Build(context.Background(), bvpack.BuildOptions{
		Config:      cfg,
		ProjectRoot: root,
	})
	if err != nil {
		t.Fatal(err)
	}

	result, err := orch.Publish(context.Background(), Options{
		Config:       cfg,
		ConfigPath:   configPath,
		ProjectRoot:  root,
		ArtifactPath: artifact,
	})
	if err != nil {
		t.Fatalf("Publish failed: %v", err)
	}

	// No bump for a pre-built artifact.
	if result.Bumped {
		t.Error("pre-built publish reported a bump")
	}
	if result.Version != "1.2.3" {
		t.Errorf("version = %s, want 1.2.3", result.Version)
	}
	want := filepath.Join(publishDir, "demo", "1.2.3", "demo-1.2.3.bvpackage")
	if result.Destination != want {
		t.Errorf("destination = %s, want %s", result.Destination, want)
	}
	if _, err := os.Stat(want); err != nil {
		t.Errorf("published artifact missing: %v", err)
	}
}

func TestPublishExistingArtifactMissing(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, _ := newOrchestrator(t)

	_, err := orch.Publish(context.Background(), Options{
		Config:       cfg,
		ConfigPath:   configPath,
		ProjectRoot:  root,
		ArtifactPath: filepath.Join(root, "dist", "nope.bvpackage"),
	})
	var missing *SourceArtifactMissingError
	if !errors.As(err, &missing) {
		t.Fatalf("Publish returned %v, want *SourceArtifactMissingError", err)
	}
}

func TestPublishExistingArtifactWrongProject(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, _ := newOrchestrator(t)

	builder := bvpack.NewBuilder(noDeps{})
	artifact, err := builder.Build(context.Background(), bvpack.BuildOptions{
		Config:      cfg,
		ProjectRoot: root,
	})
	if err != nil {
		t.Fatal(err)
	}

	other := *cfg
	other.Name = "something-else"
	_, err = orch.Publish(context.Background(), Options{
		Config:       &other,
		ConfigPath:   configPath,
		ProjectRoot:  root,
		ArtifactPath: artifact,
	})
	var mismatch *bvpack.NameMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("Publish returned %v, want *NameMismatchError", err)
	}
}

func TestPublishRejectsUnimportableEntrypoint(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, publishDir := newOrchestrator(t)

	cfg.Entrypoints[0].Command = "ghost:main"

	_, err := orch.Publish(context.Background(), Options{
		Config:      cfg,
		ConfigPath:  configPath,
		ProjectRoot: root,
	})
	var importErr *project.ImportValidationError
	if !errors.As(err, &importErr) {
		t.Fatalf("Publish returned %v, want *ImportValidationError", err)
	}

	// Nothing was bumped, built, or placed.
	reloaded, loadErr := project.Load(configPath)
	if loadErr != nil {
		t.Fatal(loadErr)
	}
	if reloaded.Version != "1.2.3" {
		t.Errorf("rejected publish persisted version %s", reloaded.Version)
	}
	if _, err := os.Stat(filepath.Join(root, "dist")); err == nil {
		t.Error("rejected publish built an artifact")
	}
	if _, err := os.Stat(filepath.Join(publishDir, "demo")); err == nil {
		t.Error("rejected publish wrote to the publish directory")
	}
}

func TestPublishExistingArtifactWrongSuffix(t *testing.T) {
	root, configPath, cfg := newPublishProject(t)
	orch, _ := newOrchestrator(t)

	stray := filepath.Join(root, "demo-1.2.3.zip")
	if err := os.WriteFile(stray, []byte("not a package"), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := orch.Publish(context.Background(), Options{
		Config:       cfg,
		ConfigPath:   configPath,
		ProjectRoot:  root,
		ArtifactPath: stray,
	})
	var wrongSuffix *NotAnArtifactError
	if !errors.As(err, &wrongSuffix) {
		t.Fatalf("Publish returned %v, want *NotAnArtifactError", err)
	}
}
