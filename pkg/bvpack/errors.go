// SPDX-License-Identifier: MPL-2.0

package bvpack

import "fmt"

// IncludeNotFoundError reports an extra include path that does not exist
// under the project root.
type IncludeNotFoundError struct {
	// Path is the project-relative include that was requested.
	Path string
}

func (e *IncludeNotFoundError) Error() string {
	return fmt.Sprintf("include path %q does not exist in the project", e.Path)
}

// MissingRequiredFileError reports an artifact lacking one of the
// contract's required root entries.
type MissingRequiredFileError struct {
	// File is the missing required entry.
	File string
}

func (e *MissingRequiredFileError) Error() string {
	return fmt.Sprintf("package is missing required file %q", e.File)
}

// ForbiddenContentError reports an artifact entry containing a forbidden
// path segment at any depth.
type ForbiddenContentError struct {
	// Path is the offending archive entry.
	Path string
	// Segment is the forbidden segment that matched.
	Segment string
}

func (e *ForbiddenContentError) Error() string {
	return fmt.Sprintf("package contains forbidden content %q (segment %q)", e.Path, e.Segment)
}

// NameMismatchError reports a package whose embedded manifest names a
// different project than expected.
type NameMismatchError struct {
	Expected string
	Actual   string
}

func (e *NameMismatchError) Error() string {
	return fmt.Sprintf("package name mismatch: expected %q, found %q", e.Expected, e.Actual)
}

// VersionMismatchError reports a package whose embedded manifest carries a
// different version than expected.
type VersionMismatchError struct {
	Expected string
	Actual   string
}

func (e *VersionMismatchError) Error() string {
	return fmt.Sprintf("package version mismatch: expected %q, found %q", e.Expected, e.Actual)
}

// ReservedPathError reports a project file whose archive path collides
// with an entry the builder generates itself (manifest.json,
// requirements.lock).
type ReservedPathError struct {
	Path string
}

func (e *ReservedPathError) Error() string {
	return fmt.Sprintf("project file %q collides with a generated archive entry", e.Path)
}
