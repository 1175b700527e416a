package batch

import (
	"encoding/json"
	"fmt"
	"os"
)

// ManifestEntry is one file written by an export.
type ManifestEntry struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

// Manifest describes the output of one export. It never records times so
// repeated exports of the same scene produce identical manifests.
type Manifest struct {
	Scene       string          `json:"scene"`
	Root        string          `json:"root"`
	Split       bool            `json:"split"`
	Files       []ManifestEntry `json:"files"`
	Diagnostics []string        `json:"diagnostics"`
}

// WriteManifest writes m as indented JSON.
func WriteManifest(path string, m Manifest) error {
	if m.Files == nil {
		m.Files = []ManifestEntry{}
	}
	if m.Diagnostics == nil {
		m.Diagnostics = []string{}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("batch: encode manifest: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("batch: write manifest %s: %w", path, err)
	}
	return nil
}
