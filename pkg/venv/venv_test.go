// SPDX-License-Identifier: MPL-2.0

package venv

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

func TestExists(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(filepath.Join(dir, ".venv"))

	if m.Exists() {
		t.Error("Exists() = true for absent environment")
	}

	bin := "bin"
	if runtime.GOOS == "windows" {
		bin = "Scripts"
	}
	if err := os.MkdirAll(filepath.Join(dir, ".venv", bin), 0o755); err != nil {
		t.Fatal(err)
	}
	if !m.Exists() {
		t.Error("Exists() = false for created environment")
	}
}

func TestEnsureMissingWithoutCreate(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".venv"))
	err := m.Ensure(context.Background(), false, "")
	if err == nil {
		t.Fatal("Ensure succeeded for a missing environment")
	}
	if !strings.Contains(err.Error(), "bv init") {
		t.Errorf("error %q does not point the user at bv init", err)
	}
}

func TestFreezeMissingEnvironment(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), ".venv"))
	if _, err := m.Freeze(context.Background()); err == nil {
		t.Error("Freeze succeeded without an environment")
	}
}

func TestPythonPath(t *testing.T) {
	m := NewManager(filepath.Join("proj", ".venv"))
	got := m.PythonPath()
	if runtime.GOOS == "windows" {
		if !strings.HasSuffix(got, filepath.Join("Scripts", "python.exe")) {
			t.Errorf("PythonPath() = %q", got)
		}
	} else {
		if !strings.HasSuffix(got, filepath.Join("bin", "python")) {
			t.Errorf("PythonPath() = %q", got)
		}
	}
}
