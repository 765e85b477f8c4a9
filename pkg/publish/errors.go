// SPDX-License-Identifier: MPL-2.0

package publish

import "fmt"

// ArtifactExistsError signals that the destination already holds an
// artifact for this name and version and overwriting was not requested.
type ArtifactExistsError struct {
	Path string
}

func (e *ArtifactExistsError) Error() string {
	return fmt.Sprintf("artifact already published at %s", e.Path)
}

// SourceArtifactMissingError signals that the caller supplied a
// pre-built artifact path that does not exist on disk.
type SourceArtifactMissingError struct {
	Path string
}

func (e *SourceArtifactMissingError) Error() string {
	return fmt.Sprintf("artifact %s does not exist", e.Path)
}

// NotAnArtifactError signals that the caller supplied a pre-built file
// without the .bvpackage suffix.
type NotAnArtifactError struct {
	Path string
}

func (e *NotAnArtifactError) Error() string {
	return fmt.Sprintf("%s is not a .bvpackage artifact", e.Path)
}
