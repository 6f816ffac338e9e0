package manifest

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleManifest() *BuildManifest {
	return &BuildManifest{
		ID:        "build-123",
		Timestamp: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		Generator: "docsite dev",
		Inputs: Inputs{
			GitCommit:   "abc123",
			ConfigHash:  "config-hash",
			ContentHash: "content-hash",
			Documents: []DocumentInput{
				{Path: "docs/index.md", Fingerprint: "f1"},
				{Path: "docs/deployment/aws.md", Fingerprint: "f2"},
			},
		},
		Plan: Plan{
			Theme:       "govuk",
			Engines:     map[string]string{"markdown": "gotmpl"},
			Collections: map[string]int{"deployment": 1},
		},
		Plugins: Plugins{Theme: &PluginVersion{Name: "govuk", Version: "v1.0.0", Type: "theme"}},
		Outputs: Outputs{Pages: []string{"index.html"}, Assets: 3, SearchIndex: "search.json"},
		Status:  "success",
	}
}

func TestManifestRoundTrip(t *testing.T) {
	m := sampleManifest()
	data, err := m.ToJSON()
	require.NoError(t, err)

	restored, err := FromJSON(data)
	require.NoError(t, err)
	assert.Equal(t, m.ID, restored.ID)
	assert.Equal(t, m.Inputs.Documents, restored.Inputs.Documents)
	assert.Equal(t, "v1.0.0", restored.Plugins.Theme.Version)

	_, err = FromJSON([]byte("{not json"))
	require.Error(t, err)
}

func TestManifestHashIgnoresOutputsAndIdentity(t *testing.T) {
	a := sampleManifest()
	b := sampleManifest()
	b.ID = "other"
	b.Timestamp = time.Now()
	b.Outputs.Assets = 99

	ha, err := a.Hash()
	require.NoError(t, err)
	hb, err := b.Hash()
	require.NoError(t, err)
	assert.Equal(t, ha, hb)

	b.Inputs.ContentHash = "changed"
	hc, err := b.Hash()
	require.NoError(t, err)
	assert.NotEqual(t, ha, hc)
}

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()

	missing, err := Read(dir)
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, Write(dir, sampleManifest()))
	_, err = os.Stat(filepath.Join(dir, FileName))
	require.NoError(t, err)

	got, err := Read(dir)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, map[string]string{"docs/index.md": "f1", "docs/deployment/aws.md": "f2"}, got.Fingerprints())
}
