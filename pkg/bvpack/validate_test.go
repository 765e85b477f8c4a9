// SPDX-License-Identifier: MPL-2.0

package bvpack

import (
	"archive/zip"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// writeArchiveFixture builds a zip from the given name->content map.
func writeArchiveFixture(t *testing.T, entries map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fixture.bvpackage")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	w := zip.NewWriter(f)
	for name, content := range entries {
		entry, err := w.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := entry.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	return path
}

const validManifestJSON = `{
  "name": "demo",
  "version": "1.2.3",
  "entryPoints": [
    {"name": "main", "command": "main:main", "default": true}
  ]
}`

func validEntries() map[string]string {
	return map[string]string{
		"bvproject.yaml":    "name: demo\nversion: 1.2.3\n",
		"entry-points.json": `{"entryPoints": []}`,
		"pyproject.toml":    "[project]\n",
		"manifest.json":     validManifestJSON,
		"requirements.lock": "requests==2.32.0\n",
		"main.py":           "def main():\n    pass\n",
	}
}

func TestValidateAcceptsCompliantArchive(t *testing.T) {
	path := writeArchiveFixture(t, validEntries())

	info, err := Validate(path, Expectation{Name: "demo", Version: "1.2.3"})
	if err != nil {
		t.Fatalf("Validate rejected a compliant archive: %v", err)
	}
	if info.Name != "demo" || info.Version != "1.2.3" {
		t.Errorf("info = %+v", info)
	}
	if len(info.EntryPoints) != 1 || info.EntryPoints[0].Name != "main" {
		t.Errorf("entry points = %+v", info.EntryPoints)
	}
}

func TestValidateMissingRequiredFile(t *testing.T) {
	entries := validEntries()
	delete(entries, "pyproject.toml")
	path := writeArchiveFixture(t, entries)

	_, err := Validate(path, Expectation{})
	var missing *MissingRequiredFileError
	if !errors.As(err, &missing) {
		t.Fatalf("Validate returned %v, want *MissingRequiredFileError", err)
	}
	if missing.File != "pyproject.toml" {
		t.Errorf("missing file = %s", missing.File)
	}
}

func TestValidateForbiddenContent(t *testing.T) {
	tests := []struct {
		name    string
		entry   string
		segment string
	}{
		{"venv at root", ".venv/bin/python", ".venv"},
		{"venv nested", "foo/.venv/bar", ".venv"},
		{"pycache nested", "pkg/__pycache__/mod.pyc", "__pycache__"},
		{"git dir", ".git/HEAD", ".git"},
		{"dist dir", "dist/demo-1.0.0.bvpackage", "dist"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries := validEntries()
			entries[tt.entry] = "contraband"
			path := writeArchiveFixture(t, entries)

			_, err := Validate(path, Expectation{})
			var forbidden *ForbiddenContentError
			if !errors.As(err, &forbidden) {
				t.Fatalf("Validate returned %v, want *ForbiddenContentError", err)
			}
			if forbidden.Segment != tt.segment {
				t.Errorf("segment = %s, want %s", forbidden.Segment, tt.segment)
			}
		})
	}
}

func TestValidateManifestMismatch(t *testing.T) {
	path := writeArchiveFixture(t, validEntries())

	_, err := Validate(path, Expectation{Name: "other", Version: "1.2.3"})
	var nameErr *NameMismatchError
	if !errors.As(err, &nameErr) {
		t.Fatalf("Validate returned %v, want *NameMismatchError", err)
	}

	_, err = Validate(path, Expectation{Name: "demo", Version: "9.9.9"})
	var versionErr *VersionMismatchError
	if !errors.As(err, &versionErr) {
		t.Fatalf("Validate returned %v, want *VersionMismatchError", err)
	}
}

func TestValidatePartialExpectation(t *testing.T) {
	path := writeArchiveFixture(t, validEntries())

	// Empty fields are not checked.
	if _, err := Validate(path, Expectation{}); err != nil {
		t.Errorf("unconstrained validation failed: %v", err)
	}
	if _, err := Validate(path, Expectation{Name: "demo"}); err != nil {
		t.Errorf("name-only validation failed: %v", err)
	}
}

func TestValidateMalformedManifest(t *testing.T) {
	entries := validEntries()
	entries["manifest.json"] = `{"name": ""}`
	path := writeArchiveFixture(t, entries)

	if _, err := Validate(path, Expectation{}); err == nil {
		t.Fatal("Validate accepted a manifest without name and version")
	}
}

func TestValidateMissingArchive(t *testing.T) {
	if _, err := Validate(filepath.Join(t.TempDir(), "nope.bvpackage"), Expectation{}); err == nil {
		t.Fatal("Validate accepted a missing archive")
	}
}

func TestValidateNonSemverManifestVersion(t *testing.T) {
	entries := validEntries()
	entries["manifest.json"] = `{
  "name": "demo",
  "version": "v1.2",
  "entryPoints": [
    {"name": "main", "command": "main:main", "default": true}
  ]
}`
	path := writeArchiveFixture(t, entries)

	_, err := Validate(path, Expectation{})
	if err == nil {
		t.Fatal("Validate accepted a manifest with a non-SemVer version")
	}
	if !strings.Contains(err.Error(), "semantic version") {
		t.Errorf("error = %v, want a semantic version complaint", err)
	}
}
