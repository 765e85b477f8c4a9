// SPDX-License-Identifier: MPL-2.0

// Package venv manages a project's Python virtual environment.
//
// The packaging core treats the environment as a black box: the only
// contract it consumes is Freeze, which produces the resolved dependency
// list ("package==version" lines) embedded into artifacts as
// requirements.lock. Creation and installation exist for project
// bootstrap and are always explicit, never implicit side effects.
package venv

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Manager operates on one virtual environment directory.
type Manager struct {
	dir string
}

// NewManager creates a manager for the environment at dir.
func NewManager(dir string) *Manager {
	return &Manager{dir: dir}
}

// Dir returns the environment directory.
func (m *Manager) Dir() string { return m.dir }

// Exists reports whether the environment has been created.
func (m *Manager) Exists() bool {
	info, err := os.Stat(filepath.Join(m.dir, binDir()))
	return err == nil && info.IsDir()
}

// PythonPath returns the interpreter path inside the environment.
func (m *Manager) PythonPath() string {
	name := "python"
	if runtime.GOOS == "windows" {
		name = "python.exe"
	}
	return filepath.Join(m.dir, binDir(), name)
}

// Create builds the environment with the given base interpreter ("python3"
// when empty) and bootstraps pip inside it.
func (m *Manager) Create(ctx context.Context, pythonExecutable string) error {
	if pythonExecutable == "" {
		pythonExecutable = "python3"
	}
	if err := os.MkdirAll(filepath.Dir(m.dir), 0o755); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}

	cmd := exec.CommandContext(ctx, pythonExecutable, "-m", "venv", m.dir, "--without-pip")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to create virtual environment: %w: %s", err, strings.TrimSpace(string(out)))
	}

	if _, err := m.run(ctx, "-m", "ensurepip", "--upgrade"); err != nil {
		return err
	}
	if _, err := m.run(ctx, "-m", "pip", "install", "--upgrade", "pip"); err != nil {
		return err
	}
	return nil
}

// Ensure verifies the environment exists, optionally creating it.
func (m *Manager) Ensure(ctx context.Context, createIfMissing bool, pythonExecutable string) error {
	if m.Exists() {
		return nil
	}
	if !createIfMissing {
		return fmt.Errorf("virtual environment not found at %s; run 'bv init --venv' to create it", m.dir)
	}
	return m.Create(ctx, pythonExecutable)
}

// Install installs requirements inside the environment. Installation is
// explicit only; nothing here is triggered by build or publish.
func (m *Manager) Install(ctx context.Context, requirements []string, requirementsFile string) error {
	if err := m.Ensure(ctx, false, ""); err != nil {
		return err
	}
	if requirementsFile != "" {
		if _, err := m.run(ctx, "-m", "pip", "install", "-r", requirementsFile); err != nil {
			return err
		}
	}
	if len(requirements) > 0 {
		args := append([]string{"-m", "pip", "install"}, requirements...)
		if _, err := m.run(ctx, args...); err != nil {
			return err
		}
	}
	return nil
}

// Freeze captures the environment's resolved dependency list as ordered
// "package==version" lines. This is the dependency-lock contract the
// package builder consumes.
func (m *Manager) Freeze(ctx context.Context) ([]string, error) {
	if err := m.Ensure(ctx, false, ""); err != nil {
		return nil, err
	}
	out, err := m.run(ctx, "-m", "pip", "freeze")
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimRight(line, "\r")
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines, nil
}

// run executes the environment's interpreter with args and returns stdout.
func (m *Manager) run(ctx context.Context, args ...string) (string, error) {
	python := m.PythonPath()
	if _, err := os.Stat(python); err != nil {
		return "", fmt.Errorf("python interpreter not found in virtual environment: %s", python)
	}

	cmd := exec.CommandContext(ctx, python, args...)
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %s: %w: %s", python, strings.Join(args, " "), err, strings.TrimSpace(stderr.String()))
	}
	return stdout.String(), nil
}

func binDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}
