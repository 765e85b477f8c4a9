// SPDX-License-Identifier: MPL-2.0

// Package bvpack implements the .bvpackage artifact format: the
// deterministic package builder and the structural contract validator.
//
// An artifact is a zip-compatible archive. The contract requires
// bvproject.yaml, entry-points.json and pyproject.toml at the archive
// root, allows bindings.json and requirements.lock, and forbids the path
// segments .venv, __pycache__, .git and dist at any depth. The builder
// guarantees byte-identical output for identical inputs so downstream
// consumers can content-address artifacts and reproduce CI builds.
package bvpack

import (
	"fmt"
	"path/filepath"
	"strings"

	"bv-cli/pkg/project"
)

const (
	// ArtifactSuffix is the file extension of built packages.
	ArtifactSuffix = ".bvpackage"

	// ManifestFileName is the embedded package manifest.
	ManifestFileName = "manifest.json"

	// LockFileName is the embedded dependency lock listing.
	LockFileName = "requirements.lock"

	// BindingsFileName is the optional bindings description.
	BindingsFileName = "bindings.json"

	// DistDir is the default output directory for built artifacts,
	// relative to the project root.
	DistDir = "dist"
)

// RequiredFiles are the entries every artifact must carry at its root.
var RequiredFiles = []string{
	project.ConfigFileName,
	project.IndexFileName,
	project.PyProjectFileName,
}

// ForbiddenSegments are path segments that must not appear anywhere in an
// artifact, at any depth.
var ForbiddenSegments = []string{".venv", "__pycache__", ".git", DistDir}

// ArtifactFileName returns the canonical artifact file name for a project
// identity, e.g. "demo-1.2.3.bvpackage".
func ArtifactFileName(name, version string) string {
	return fmt.Sprintf("%s-%s%s", name, version, ArtifactSuffix)
}

// DefaultOutputPath returns the default artifact location for a project:
// <projectRoot>/dist/<name>-<version>.bvpackage.
func DefaultOutputPath(projectRoot, name, version string) string {
	return filepath.Join(projectRoot, DistDir, ArtifactFileName(name, version))
}

// forbiddenSegment returns the first forbidden segment found in the given
// slash-separated archive path, or "" when the path is clean.
func forbiddenSegment(archivePath string) string {
	for _, segment := range strings.Split(archivePath, "/") {
		for _, forbidden := range ForbiddenSegments {
			if segment == forbidden {
				return forbidden
			}
		}
	}
	return ""
}

// excludedDir reports whether a directory name is pruned from the build
// file set. The same names are forbidden inside artifacts, which keeps the
// builder and the validator agreeing by construction.
func excludedDir(name string) bool {
	return forbiddenSegment(name) != ""
}
