// SPDX-License-Identifier: MPL-2.0

package project

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// IndexFileName is the generated entrypoint index consumed by the remote
// platform and by the package contract.
const IndexFileName = "entry-points.json"

// IndexEntry is one entry of entry-points.json. The shape mirrors the
// manifest's entrypoints section in a stable machine-readable form.
type IndexEntry struct {
	Name     string `json:"name"`
	FilePath string `json:"filePath"`
	Function string `json:"function"`
	Type     string `json:"type"`
	Default  bool   `json:"default"`
}

// EntrypointIndex is the document model of entry-points.json.
type EntrypointIndex struct {
	EntryPoints []IndexEntry `json:"entryPoints"`
}

// BuildEntrypointIndex derives the index document from the manifest's
// entrypoints, in insertion order.
func BuildEntrypointIndex(cfg *ProjectConfig) (*EntrypointIndex, error) {
	idx := &EntrypointIndex{EntryPoints: make([]IndexEntry, 0, len(cfg.Entrypoints))}
	for _, entry := range cfg.Entrypoints {
		filePath, err := entry.SourceFile()
		if err != nil {
			return nil, fmt.Errorf("entrypoint %q: %w", entry.Name, err)
		}
		_, function, err := entry.CommandParts()
		if err != nil {
			return nil, fmt.Errorf("entrypoint %q: %w", entry.Name, err)
		}
		idx.EntryPoints = append(idx.EntryPoints, IndexEntry{
			Name:     entry.Name,
			FilePath: filePath,
			Function: function,
			Type:     "agent",
			Default:  entry.Default,
		})
	}
	return idx, nil
}

// WriteEntrypointIndex regenerates entry-points.json in dir from the
// manifest. The write is atomic (temp file + rename).
func WriteEntrypointIndex(dir string, cfg *ProjectConfig) error {
	idx, err := BuildEntrypointIndex(cfg)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(idx, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode entrypoint index: %w", err)
	}
	data = append(data, '\n')

	path := filepath.Join(dir, IndexFileName)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write entrypoint index: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace entrypoint index: %w", err)
	}
	return nil
}
