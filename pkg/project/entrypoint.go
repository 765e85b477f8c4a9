// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"strings"

	"bv-cli/pkg/pysrc"
)

// EntryPoint is a named invocation target exposed by a project. The command
// has the form "module:function" where module is a dotted path importable
// from the project root.
type EntryPoint struct {
	// Name uniquely identifies the entrypoint within the project.
	Name string `yaml:"name"`
	// Command is the "module:function" target.
	Command string `yaml:"command"`
	// Workdir is an optional working directory, relative to the project
	// root, used when the entrypoint runs.
	Workdir string `yaml:"workdir,omitempty"`
	// Default marks the entrypoint selected when none is named.
	// Exactly one entrypoint per project carries it.
	Default bool `yaml:"default,omitempty"`
}

// CommandParts splits the entrypoint command into its module and function
// parts, validating the "module:function" syntax. This is purely a
// syntactic check; import resolution happens separately.
func (e EntryPoint) CommandParts() (module, function string, err error) {
	module, function, ok := strings.Cut(e.Command, ":")
	if !ok {
		return "", "", fmt.Errorf("command %q must be in 'module:function' format", e.Command)
	}
	if module == "" || function == "" {
		return "", "", fmt.Errorf("command %q must include both module and function", e.Command)
	}
	if !pysrc.ValidModuleName(module) {
		return "", "", fmt.Errorf("command %q has an invalid module name %q", e.Command, module)
	}
	return module, function, nil
}

// SourceFile returns the project-relative path of the file the command's
// module part names, using forward slashes ("tasks.billing" →
// "tasks/billing.py"). It does not consult the filesystem, so package
// modules resolved through __init__.py are not distinguished here.
func (e EntryPoint) SourceFile() (string, error) {
	module, _, err := e.CommandParts()
	if err != nil {
		return "", err
	}
	return strings.ReplaceAll(module, ".", "/") + ".py", nil
}
