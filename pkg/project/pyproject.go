// SPDX-License-Identifier: MPL-2.0

package project

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// PyProjectFileName is the dependency manifest file name.
const PyProjectFileName = "pyproject.toml"

// PyProject models the dependency manifest. The project section is
// restricted to a dependency list; the project's identity lives in
// bvproject.yaml only.
type PyProject struct {
	Project PyProjectSection `toml:"project"`
}

// PyProjectSection is the [project] table of pyproject.toml.
type PyProjectSection struct {
	// Name and Version are decoded only so their presence can be
	// flagged: the dependency manifest must not carry them.
	Name    string `toml:"name,omitempty"`
	Version string `toml:"version,omitempty"`

	RequiresPython string   `toml:"requires-python,omitempty"`
	Dependencies   []string `toml:"dependencies"`
}

// LoadPyProject reads and decodes the dependency manifest at path.
func LoadPyProject(path string) (*PyProject, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("dependency manifest not found at %s", path)
		}
		return nil, fmt.Errorf("failed to read dependency manifest: %w", err)
	}

	var p PyProject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("invalid dependency manifest %s: %w", path, err)
	}
	return &p, nil
}

// Lint reports dependency-manifest fields that belong in bvproject.yaml
// instead. These are warnings for the surrounding tool, not hard errors of
// the packaging core.
func (p *PyProject) Lint() []string {
	var warnings []string
	if p.Project.Name != "" {
		warnings = append(warnings, fmt.Sprintf("%s carries a project name (%q); the project name belongs in %s", PyProjectFileName, p.Project.Name, ConfigFileName))
	}
	if p.Project.Version != "" {
		warnings = append(warnings, fmt.Sprintf("%s carries a project version (%q); the version belongs in %s", PyProjectFileName, p.Project.Version, ConfigFileName))
	}
	return warnings
}

// Encode renders the dependency manifest back to TOML.
func (p *PyProject) Encode() ([]byte, error) {
	data, err := toml.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode dependency manifest: %w", err)
	}
	return data, nil
}
