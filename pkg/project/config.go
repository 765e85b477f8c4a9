// SPDX-License-Identifier: MPL-2.0

// Package project models the bvproject.yaml manifest: the typed project
// configuration, its entrypoints, the entrypoint registry, and the
// machine-readable entry-points.json index derived from it.
//
// The manifest is the single source of truth for a project's name, version
// and entrypoints. It is loaded into a ProjectConfig, mutated only through
// explicit registry or version operations, and persisted back atomically on
// every mutation. Fields the loader does not interpret survive a
// load/save round trip.
package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"bv-cli/pkg/semver"
)

const (
	// ConfigFileName is the canonical manifest file name.
	ConfigFileName = "bvproject.yaml"
	// DefaultVenvDir is the virtual-environment directory used when the
	// manifest does not name one.
	DefaultVenvDir = ".venv"
)

// OrchestratorConfig is the optional remote platform section of the
// manifest. The core never talks to the orchestrator; the URL is carried
// for the surrounding tooling.
type OrchestratorConfig struct {
	URL string `yaml:"url,omitempty"`
}

// ProjectConfig is the typed model of bvproject.yaml.
type ProjectConfig struct {
	Name         string              `yaml:"name"`
	Version      string              `yaml:"version"`
	Entrypoints  []EntryPoint        `yaml:"entrypoints"`
	VenvDir      string              `yaml:"venv_dir,omitempty"`
	Orchestrator *OrchestratorConfig `yaml:"orchestrator,omitempty"`

	// Extra preserves manifest fields this tool does not interpret, so a
	// load/save round trip never drops them.
	Extra map[string]any `yaml:",inline"`
}

// Load reads and validates the manifest at path.
// It returns *ConfigNotFoundError when the file is absent, *ParseError on
// malformed YAML, and *SchemaError when required fields or entrypoint
// invariants are violated.
func Load(path string) (*ProjectConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &ConfigNotFoundError{Path: path}
		}
		return nil, fmt.Errorf("failed to read project config: %w", err)
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, &ParseError{Path: path, Cause: err}
	}

	if cfg.VenvDir == "" {
		cfg.VenvDir = DefaultVenvDir
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save persists the config back to path atomically: the full document is
// written to a temporary file in the same directory and renamed into
// place, so a crash mid-write never leaves a truncated manifest.
func (c *ProjectConfig) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to encode project config: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project config: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace project config: %w", err)
	}
	return nil
}

// Validate checks required fields and the entrypoint invariants: at least
// one entrypoint, unique names, valid command syntax, and exactly one
// default. All problems are collected into a single *SchemaError.
func (c *ProjectConfig) Validate() error {
	var problems []string

	if c.Name == "" {
		problems = append(problems, "name is required")
	}
	if c.Version == "" {
		problems = append(problems, "version is required")
	}

	if len(c.Entrypoints) == 0 {
		problems = append(problems, "at least one entrypoint is required")
	} else {
		seen := make(map[string]bool, len(c.Entrypoints))
		defaults := 0
		for i, entry := range c.Entrypoints {
			label := entry.Name
			if label == "" {
				label = fmt.Sprintf("entrypoints[%d]", i)
				problems = append(problems, label+": name is required")
			} else if seen[label] {
				problems = append(problems, fmt.Sprintf("duplicate entrypoint name %q", label))
			}
			seen[label] = true

			if entry.Command == "" {
				problems = append(problems, fmt.Sprintf("entrypoint %q: command is required", label))
			} else if _, _, err := entry.CommandParts(); err != nil {
				problems = append(problems, fmt.Sprintf("entrypoint %q: %v", label, err))
			}

			if entry.Default {
				defaults++
			}
		}
		switch {
		case defaults == 0:
			problems = append(problems, "one entrypoint must be marked default")
		case defaults > 1:
			problems = append(problems, "only one entrypoint may be marked default")
		}
	}

	if len(problems) > 0 {
		return &SchemaError{Problems: problems}
	}
	return nil
}

// ValidateSemver re-validates the version field through the semver parser
// and returns the parsed value. A malformed version surfaces as the
// parser's *semver.FormatError, never as a panic.
func (c *ProjectConfig) ValidateSemver() (semver.Version, error) {
	return semver.Parse(c.Version)
}

// DefaultEntrypoint returns the entrypoint marked default.
func (c *ProjectConfig) DefaultEntrypoint() (EntryPoint, error) {
	for _, entry := range c.Entrypoints {
		if entry.Default {
			return entry, nil
		}
	}
	return EntryPoint{}, errors.New("no default entrypoint is defined")
}

// Entrypoint looks up an entrypoint by name.
func (c *ProjectConfig) Entrypoint(name string) (EntryPoint, error) {
	for _, entry := range c.Entrypoints {
		if entry.Name == name {
			return entry, nil
		}
	}
	return EntryPoint{}, &NotFoundError{Name: name}
}
