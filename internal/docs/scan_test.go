package docs

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	derrors "github.com/uktrade/docsite/internal/docs/errors"
)

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func paths(documents []*Document) []string {
	out := make([]string, 0, len(documents))
	for _, d := range documents {
		out = append(out, d.Path)
	}
	return out
}

func TestScan_DiscoversPagesInLexicalOrder(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/index.md":                      "# Home\n",
		"docs/deployment.md":                 "---\norder: 2\n---\n# Deployment\n",
		"docs/deployment/b.md":               "b",
		"docs/deployment/a.md":               "a",
		"docs/development/assets/diagram.png": "png",
		"docs/.hidden.md":                    "hidden",
		"docs/.git/config.md":                "nope",
		"docs/node_modules/pkg/readme.md":    "nope",
		"docs/_site/index.md":                "output",
		"docs/search.html":                   "<p>{{ .Page.Title }}</p>",
		"README.md":                          "outside input",
	})

	documents, err := Scan(context.Background(), ScanOptions{Root: root, Input: "docs", Skip: []string{"docs/_site"}})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"docs/deployment/a.md",
		"docs/deployment/b.md",
		"docs/deployment.md",
		"docs/index.md",
		"docs/search.html",
	}, paths(documents))
}

func TestScan_ResolvesMetadata(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/data-ingestion.md":      "---\norder: 3\n---\nBody\n",
		"docs/deployment/index.md":    "---\ntitle: Deploying Data Workspace\n---\n",
		"docs/custom.md":              "---\npermalink: /elsewhere/page.html\n---\n",
		"docs/hidden-from-output.md":  "---\npermalink: false\n---\n",
	})

	documents, err := Scan(context.Background(), ScanOptions{Root: root, Input: "docs"})
	require.NoError(t, err)
	byPath := map[string]*Document{}
	for _, d := range documents {
		byPath[d.Path] = d
	}

	ingest := byPath["docs/data-ingestion.md"]
	require.NotNil(t, ingest)
	assert.Equal(t, "data-ingestion.md", ingest.InputPath)
	assert.Equal(t, "Data Ingestion", ingest.Title)
	assert.Equal(t, "/data-ingestion/", ingest.URL)
	assert.Equal(t, "data-ingestion/index.html", ingest.OutputPath)
	assert.Equal(t, 3, ingest.Data["order"])
	assert.Equal(t, []byte("Body\n"), ingest.Body)
	assert.NotEmpty(t, ingest.Fingerprint)
	assert.Equal(t, KindMarkdown, ingest.Kind)

	index := byPath["docs/deployment/index.md"]
	assert.Equal(t, "Deploying Data Workspace", index.Title)
	assert.Equal(t, "/deployment/", index.URL)
	assert.Equal(t, "deployment/index.html", index.OutputPath)

	custom := byPath["docs/custom.md"]
	assert.Equal(t, "/elsewhere/page.html", custom.URL)
	assert.Equal(t, "elsewhere/page.html", custom.OutputPath)

	hidden := byPath["docs/hidden-from-output.md"]
	assert.False(t, hidden.Written())
}

func TestScan_EmptyInputDirectory(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "docs"), 0o755))

	documents, err := Scan(context.Background(), ScanOptions{Root: root, Input: "docs"})
	require.NoError(t, err)
	assert.Empty(t, documents)
}

func TestScan_MissingInputDirectory(t *testing.T) {
	_, err := Scan(context.Background(), ScanOptions{Root: t.TempDir(), Input: "docs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, derrors.ErrInputDirNotFound))
}

func TestScan_MalformedFrontMatterNamesThePath(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"docs/broken.md": "---\ntitle: x\n"})

	_, err := Scan(context.Background(), ScanOptions{Root: root, Input: "docs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, derrors.ErrFrontMatter))
	assert.Contains(t, err.Error(), "docs/broken.md")
}

func TestScan_OutputCollision(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"docs/a.md":       "",
		"docs/a/index.md": "",
	})

	_, err := Scan(context.Background(), ScanOptions{Root: root, Input: "docs"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, derrors.ErrOutputCollision))
}

func TestScan_CanceledContext(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{"docs/a.md": ""})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, ScanOptions{Root: root, Input: "docs"})
	require.ErrorIs(t, err, context.Canceled)
}
