// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
)

func newTestRegistry(t *testing.T) (*Registry, string) {
	t.Helper()
	path := writeManifest(t, validManifest)
	reg, err := OpenRegistry(path)
	if err != nil {
		t.Fatal(err)
	}
	return reg, path
}

func TestRegistryAdd(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Add("report", "reports:generate", "", false); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Entrypoints) != 3 {
		t.Fatalf("entrypoints = %d, want 3", len(reloaded.Entrypoints))
	}
	if reloaded.Entrypoints[2].Name != "report" {
		t.Errorf("insertion order broken: %v", reloaded.Entrypoints)
	}
	// The previous default is untouched.
	if !reloaded.Entrypoints[0].Default {
		t.Error("default moved without setDefault")
	}
}

func TestRegistryAddDuplicate(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.Add("main", "other:run", "", false)
	var dup *DuplicateNameError
	if !errors.As(err, &dup) {
		t.Fatalf("Add returned %v, want *DuplicateNameError", err)
	}
}

func TestRegistryAddBadCommand(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Add("bad", "no-colon-here", "", false); err == nil {
		t.Fatal("Add accepted malformed command")
	}

	// Nothing was persisted.
	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(reloaded.Entrypoints) != 2 {
		t.Errorf("failed Add mutated the manifest: %v", reloaded.Entrypoints)
	}
}

func TestRegistryAddSetDefault(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Add("report", "reports:generate", "", true); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range reloaded.Entrypoints {
		if entry.Default != (entry.Name == "report") {
			t.Errorf("entry %q default = %v", entry.Name, entry.Default)
		}
	}
}

func TestRegistrySetDefault(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.SetDefault("billing"); err != nil {
		t.Fatalf("SetDefault failed: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	entry, err := reloaded.DefaultEntrypoint()
	if err != nil {
		t.Fatal(err)
	}
	if entry.Name != "billing" {
		t.Errorf("default = %q, want billing", entry.Name)
	}
}

func TestRegistrySetDefaultMissing(t *testing.T) {
	reg, _ := newTestRegistry(t)

	err := reg.SetDefault("ghost")
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("SetDefault returned %v, want *NotFoundError", err)
	}
}

func TestRegistryMutationRegeneratesIndex(t *testing.T) {
	reg, path := newTestRegistry(t)

	if err := reg.Add("report", "reports.monthly:generate", "", false); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(filepath.Join(filepath.Dir(path), IndexFileName))
	if err != nil {
		t.Fatalf("index not regenerated: %v", err)
	}
	var idx EntrypointIndex
	if err := json.Unmarshal(data, &idx); err != nil {
		t.Fatalf("index is not valid JSON: %v", err)
	}
	if len(idx.EntryPoints) != 3 {
		t.Fatalf("index entries = %d, want 3", len(idx.EntryPoints))
	}
	last := idx.EntryPoints[2]
	if last.FilePath != "reports/monthly.py" || last.Function != "generate" || last.Type != "agent" {
		t.Errorf("index entry = %+v", last)
	}
}

func TestValidateImportabilityCollectsAllFailures(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, ConfigFileName)
	manifest := `name: demo
version: 0.1.0
entrypoints:
  - {name: good, command: "main:run", default: true}
  - {name: missing-module, command: "ghost:run"}
  - {name: missing-function, command: "main:absent"}
  - {name: bad-workdir, command: "main:run", workdir: nowhere}
`
	if err := os.WriteFile(path, []byte(manifest), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "main.py"), []byte("def run(data=None):\n    return data\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg, err := OpenRegistry(path)
	if err != nil {
		t.Fatal(err)
	}

	errs := reg.ValidateImportability(root)
	if len(errs) != 3 {
		t.Fatalf("errors = %d (%v), want 3 collected failures", len(errs), errs)
	}
	names := map[string]bool{}
	for _, e := range errs {
		var ive *ImportValidationError
		if !errors.As(e, &ive) {
			t.Fatalf("error %v is not *ImportValidationError", e)
		}
		names[ive.Entrypoint] = true
	}
	for _, want := range []string{"missing-module", "missing-function", "bad-workdir"} {
		if !names[want] {
			t.Errorf("no failure reported for %q", want)
		}
	}
	if names["good"] {
		t.Error("valid entrypoint reported as failure")
	}
}

func TestPyProjectLint(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, PyProjectFileName)
	content := "[project]\nname = \"sneaky\"\nversion = \"9.9.9\"\nrequires-python = \">=3.11\"\ndependencies = [\"requests==2.32.0\"]\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPyProject(path)
	if err != nil {
		t.Fatalf("LoadPyProject failed: %v", err)
	}
	warnings := p.Lint()
	if len(warnings) != 2 {
		t.Errorf("warnings = %v, want name and version flagged", warnings)
	}
	if len(p.Project.Dependencies) != 1 || p.Project.Dependencies[0] != "requests==2.32.0" {
		t.Errorf("dependencies = %v", p.Project.Dependencies)
	}
}
