// SPDX-License-Identifier: MPL-2.0

package bvpack

import (
	"fmt"

	json "github.com/goccy/go-json"

	"bv-cli/pkg/project"
	"bv-cli/pkg/semver"
)

// ManifestEntry is one entrypoint record inside the package manifest. It
// mirrors the project manifest's entrypoints section.
type ManifestEntry struct {
	Name    string `json:"name"`
	Command string `json:"command"`
	Workdir string `json:"workdir,omitempty"`
	Default bool   `json:"default,omitempty"`
}

// Manifest is the package's embedded identity record (manifest.json). The
// validator treats it as ground truth for a closed artifact, independent of
// any live project directory.
type Manifest struct {
	Name        string          `json:"name"`
	Version     string          `json:"version"`
	EntryPoints []ManifestEntry `json:"entryPoints"`
}

// NewManifest derives the package manifest from a project config.
func NewManifest(cfg *project.ProjectConfig) *Manifest {
	m := &Manifest{
		Name:        cfg.Name,
		Version:     cfg.Version,
		EntryPoints: make([]ManifestEntry, 0, len(cfg.Entrypoints)),
	}
	for _, entry := range cfg.Entrypoints {
		m.EntryPoints = append(m.EntryPoints, ManifestEntry{
			Name:    entry.Name,
			Command: entry.Command,
			Workdir: entry.Workdir,
			Default: entry.Default,
		})
	}
	return m
}

// Encode renders the manifest as indented JSON with a trailing newline.
// The encoding is deterministic: struct field order is fixed.
func (m *Manifest) Encode() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode package manifest: %w", err)
	}
	return append(data, '\n'), nil
}

// decodeManifest parses manifest.json bytes and checks the structural
// minimum: non-empty name, a semantic version, and an entrypoint list
// with name and command present on every entry.
func decodeManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("invalid package manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("package manifest is missing the project name")
	}
	if m.Version == "" {
		return nil, fmt.Errorf("package manifest is missing the project version")
	}
	if !semver.IsValid(m.Version) {
		return nil, fmt.Errorf("package manifest version %q is not a semantic version", m.Version)
	}
	if len(m.EntryPoints) == 0 {
		return nil, fmt.Errorf("package manifest has no entrypoints")
	}
	for i, entry := range m.EntryPoints {
		if entry.Name == "" || entry.Command == "" {
			return nil, fmt.Errorf("package manifest entrypoint %d is missing name or command", i)
		}
	}
	return &m, nil
}
