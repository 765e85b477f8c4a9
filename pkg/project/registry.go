// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"

	"bv-cli/pkg/pysrc"
)

// Registry manages the entrypoints of a single project manifest. Every
// mutation is persisted to the manifest immediately and the generated
// entry-points.json index is rewritten alongside it, so the machine index
// never drifts from the manifest.
type Registry struct {
	configPath string
	cfg        *ProjectConfig
}

// OpenRegistry loads the manifest at configPath and wraps it in a Registry.
func OpenRegistry(configPath string) (*Registry, error) {
	cfg, err := Load(configPath)
	if err != nil {
		return nil, err
	}
	return &Registry{configPath: configPath, cfg: cfg}, nil
}

// NewRegistry wraps an already-loaded config. The config must have been
// loaded from configPath.
func NewRegistry(configPath string, cfg *ProjectConfig) *Registry {
	return &Registry{configPath: configPath, cfg: cfg}
}

// Config exposes the wrapped project config.
func (r *Registry) Config() *ProjectConfig { return r.cfg }

// Add appends a new entrypoint. It fails with *DuplicateNameError when the
// name is taken and validates the command syntax before touching the
// manifest. With setDefault, the default flag moves to the new entry,
// preserving the exactly-one-default invariant.
func (r *Registry) Add(name, command, workdir string, setDefault bool) error {
	if name == "" {
		return fmt.Errorf("entrypoint name is required")
	}
	for _, entry := range r.cfg.Entrypoints {
		if entry.Name == name {
			return &DuplicateNameError{Name: name}
		}
	}

	entry := EntryPoint{Name: name, Command: command, Workdir: workdir, Default: setDefault}
	if _, _, err := entry.CommandParts(); err != nil {
		return err
	}

	if setDefault {
		for i := range r.cfg.Entrypoints {
			r.cfg.Entrypoints[i].Default = false
		}
	}
	r.cfg.Entrypoints = append(r.cfg.Entrypoints, entry)

	return r.persist()
}

// SetDefault marks the named entrypoint as default and unsets the flag
// everywhere else. Fails with *NotFoundError when the name is absent.
func (r *Registry) SetDefault(name string) error {
	found := false
	for i := range r.cfg.Entrypoints {
		if r.cfg.Entrypoints[i].Name == name {
			found = true
		}
	}
	if !found {
		return &NotFoundError{Name: name}
	}

	for i := range r.cfg.Entrypoints {
		r.cfg.Entrypoints[i].Default = r.cfg.Entrypoints[i].Name == name
	}
	return r.persist()
}

// List returns the entrypoints in insertion order. The slice is a copy;
// mutating it does not affect the registry.
func (r *Registry) List() []EntryPoint {
	out := make([]EntryPoint, len(r.cfg.Entrypoints))
	copy(out, r.cfg.Entrypoints)
	return out
}

// Get looks up a single entrypoint by name.
func (r *Registry) Get(name string) (EntryPoint, error) {
	return r.cfg.Entrypoint(name)
}

// ValidateImportability checks every entrypoint against the project tree:
// the command's module must resolve to a source file under projectRoot, the
// function must exist at the top level of that module, and the workdir, if
// set, must exist. The function is never invoked. Validation does not stop
// at the first failure; one *ImportValidationError is returned per
// offending entry so the caller can report everything at once.
func (r *Registry) ValidateImportability(projectRoot string) []error {
	var errs []error

	// The resolver is scoped to this call; no ambient search-path state.
	resolver := pysrc.NewResolver(projectRoot)

	for _, entry := range r.cfg.Entrypoints {
		module, function, err := entry.CommandParts()
		if err != nil {
			errs = append(errs, &ImportValidationError{Entrypoint: entry.Name, Reason: err.Error()})
			continue
		}

		if _, err := resolver.Inspect(module, function); err != nil {
			errs = append(errs, &ImportValidationError{Entrypoint: entry.Name, Reason: err.Error()})
		}

		if entry.Workdir != "" {
			workdir := filepath.Join(projectRoot, filepath.FromSlash(entry.Workdir))
			if info, err := os.Stat(workdir); err != nil || !info.IsDir() {
				errs = append(errs, &ImportValidationError{
					Entrypoint: entry.Name,
					Reason:     fmt.Sprintf("workdir %q does not exist under %s", entry.Workdir, projectRoot),
				})
			}
		}
	}

	return errs
}

// persist writes the manifest and regenerates the entrypoint index next to
// it.
func (r *Registry) persist() error {
	if err := r.cfg.Save(r.configPath); err != nil {
		return err
	}
	return WriteEntrypointIndex(filepath.Dir(r.configPath), r.cfg)
}
