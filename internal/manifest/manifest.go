// Package manifest records what a build consumed and produced. The manifest
// is written next to the site as .docsite-manifest.json; the next build
// reads it back to report which documents changed.
package manifest

import (
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// FileName is the manifest's name inside the output directory.
const FileName = ".docsite-manifest.json"

// BuildManifest represents a complete record of a build's inputs, plan, and outputs.
type BuildManifest struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Generator string    `json:"generator"`
	Inputs    Inputs    `json:"inputs"`
	Plan      Plan      `json:"plan"`
	Plugins   Plugins   `json:"plugins"`
	Outputs   Outputs   `json:"outputs"`
	Status    string    `json:"status"`
	Duration  int64     `json:"duration_ms"`
}

// Inputs captures all inputs to the build.
type Inputs struct {
	GitCommit   string          `json:"git_commit,omitempty"`
	GitBranch   string          `json:"git_branch,omitempty"`
	ConfigHash  string          `json:"config_hash"`
	ContentHash string          `json:"content_hash"`
	Documents   []DocumentInput `json:"documents"`
}

// DocumentInput is one discovered document.
type DocumentInput struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
}

// Plan captures how the build was configured to run.
type Plan struct {
	Theme       string            `json:"theme"`
	Engines     map[string]string `json:"engines"`
	Collections map[string]int    `json:"collections"`
}

// PluginVersion represents a versioned plugin used during a build.
type PluginVersion struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Type    string `json:"type"`
}

// Plugins captures all plugins used during the build.
type Plugins struct {
	Theme *PluginVersion `json:"theme,omitempty"`
}

// Outputs captures all outputs from the build.
type Outputs struct {
	Pages       []string `json:"pages"`
	Assets      int      `json:"assets"`
	SearchIndex string   `json:"search_index,omitempty"`
	Sitemap     string   `json:"sitemap,omitempty"`
}

// ToJSON serializes the manifest to JSON.
func (m *BuildManifest) ToJSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal manifest: %w", err)
	}
	return data, nil
}

// FromJSON deserializes a manifest from JSON.
func FromJSON(data []byte) (*BuildManifest, error) {
	var m BuildManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("unmarshal manifest: %w", err)
	}
	return &m, nil
}

// Hash computes a deterministic hash of the manifest's inputs, plan, and plugins.
// Two builds with the same hash consumed identical content and configuration.
func (m *BuildManifest) Hash() (string, error) {
	hashInput := struct {
		ConfigHash  string         `json:"config_hash"`
		ContentHash string         `json:"content_hash"`
		Plan        Plan           `json:"plan"`
		Theme       *PluginVersion `json:"theme"`
	}{
		ConfigHash:  m.Inputs.ConfigHash,
		ContentHash: m.Inputs.ContentHash,
		Plan:        m.Plan,
		Theme:       m.Plugins.Theme,
	}

	data, err := json.Marshal(hashInput)
	if err != nil {
		return "", fmt.Errorf("marshal for hash: %w", err)
	}

	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash), nil
}

// Fingerprints returns path → fingerprint for the recorded documents.
func (m *BuildManifest) Fingerprints() map[string]string {
	out := make(map[string]string, len(m.Inputs.Documents))
	for _, d := range m.Inputs.Documents {
		out[d.Path] = d.Fingerprint
	}
	return out
}

// Write stores the manifest in dir.
func Write(dir string, m *BuildManifest) error {
	data, err := m.ToJSON()
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, FileName), data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// Read loads the manifest from dir. A missing manifest returns (nil, nil).
func Read(dir string) (*BuildManifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, FileName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil //nolint:nilnil // no previous build
		}
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return FromJSON(data)
}
