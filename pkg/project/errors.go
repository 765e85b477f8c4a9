// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"strings"
)

// ConfigNotFoundError reports a missing project manifest file.
type ConfigNotFoundError struct {
	// Path is the manifest path that was looked up.
	Path string
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("project config not found at %s", e.Path)
}

// ParseError reports a manifest file with malformed syntax.
type ParseError struct {
	// Path is the manifest path.
	Path string
	// Cause is the decoder error.
	Cause error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid project config %s: %v", e.Path, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

// SchemaError reports required fields that are missing or entrypoint
// invariants that are violated. All problems found in one pass are
// collected so the user can fix them together.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid project config: " + strings.Join(e.Problems, "; ")
}

// DuplicateNameError reports an attempt to add an entrypoint whose name is
// already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("entrypoint %q already exists", e.Name)
}

// NotFoundError reports a reference to an entrypoint that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("entrypoint %q not found", e.Name)
}

// ImportValidationError reports a single entrypoint whose import target
// could not be resolved. Validation never stops at the first failure;
// callers receive one of these per offending entry.
type ImportValidationError struct {
	// Entrypoint is the name of the offending entry.
	Entrypoint string
	// Reason describes why resolution failed.
	Reason string
}

func (e *ImportValidationError) Error() string {
	return fmt.Sprintf("entrypoint %q: %s", e.Entrypoint, e.Reason)
}
