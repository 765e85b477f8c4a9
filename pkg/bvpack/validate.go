// SPDX-License-Identifier: MPL-2.0

package bvpack

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
)

// PackageInfo is the identity a valid artifact declares about itself.
type PackageInfo struct {
	Name        string
	Version     string
	EntryPoints []ManifestEntry
}

// Expectation carries externally-known identity to cross-check against the
// archived manifest. Empty fields are not checked.
type Expectation struct {
	Name    string
	Version string
}

// Validate opens an artifact and checks it against the structural
// contract. It is a pure function of the archive bytes: no live project
// directory is consulted.
//
// Checks, in order: every entry path is scanned for forbidden segments at
// any depth, the required root entries must be present, the embedded
// manifest must parse and be structurally complete, and the manifest
// identity must match any supplied expectation.
func Validate(archivePath string, expect Expectation) (*PackageInfo, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open package %s: %w", archivePath, err)
	}
	defer r.Close()

	entries := make(map[string]*zip.File, len(r.File))
	for _, f := range r.File {
		name := strings.TrimSuffix(f.Name, "/")
		if segment := forbiddenSegment(name); segment != "" {
			return nil, &ForbiddenContentError{Path: f.Name, Segment: segment}
		}
		entries[name] = f
	}

	for _, required := range RequiredFiles {
		if _, ok := entries[required]; !ok {
			return nil, &MissingRequiredFileError{File: required}
		}
	}

	manifestFile, ok := entries[ManifestFileName]
	if !ok {
		return nil, &MissingRequiredFileError{File: ManifestFileName}
	}
	data, err := readEntry(manifestFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read package manifest: %w", err)
	}
	manifest, err := decodeManifest(data)
	if err != nil {
		return nil, err
	}

	if expect.Name != "" && manifest.Name != expect.Name {
		return nil, &NameMismatchError{Expected: expect.Name, Actual: manifest.Name}
	}
	if expect.Version != "" && manifest.Version != expect.Version {
		return nil, &VersionMismatchError{Expected: expect.Version, Actual: manifest.Version}
	}

	return &PackageInfo{
		Name:        manifest.Name,
		Version:     manifest.Version,
		EntryPoints: manifest.EntryPoints,
	}, nil
}

func readEntry(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
