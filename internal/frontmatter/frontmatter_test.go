package frontmatter

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplit_NoFrontmatter_ReturnsBodyOnly(t *testing.T) {
	input := []byte("# Title\n\nHello\n")

	raw, body, had, err := Split(input)
	require.NoError(t, err)
	require.False(t, had)
	require.Empty(t, raw)
	require.Equal(t, input, body)
}

func TestSplit_YAMLFrontmatter_SplitsFrontmatterAndBody(t *testing.T) {
	raw, body, had, err := Split([]byte("---\norder: 2\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("order: 2\n"), raw)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_CRLF(t *testing.T) {
	raw, body, had, err := Split([]byte("---\r\ntitle: x\r\n---\r\n# Title\r\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\r\n"), raw)
	require.Equal(t, []byte("# Title\r\n"), body)
}

func TestSplit_EmptyBlock(t *testing.T) {
	raw, body, had, err := Split([]byte("---\n---\n# Title\n"))
	require.NoError(t, err)
	require.True(t, had)
	require.Empty(t, raw)
	require.Equal(t, []byte("# Title\n"), body)
}

func TestSplit_ClosingDelimiterAtEOF(t *testing.T) {
	raw, body, had, err := Split([]byte("---\ntitle: x\n---"))
	require.NoError(t, err)
	require.True(t, had)
	require.Equal(t, []byte("title: x\n"), raw)
	require.Empty(t, body)
}

func TestSplit_MissingClosingDelimiter_ReturnsError(t *testing.T) {
	_, _, had, err := Split([]byte("---\nkey: value\n# Title\n"))
	require.Error(t, err)
	require.False(t, had)
	require.True(t, errors.Is(err, ErrMissingClosingDelimiter))
}

func TestParse_DecodesFields(t *testing.T) {
	m, err := Parse([]byte("---\ntitle: Deploying\norder: 3\n---\nBody\n"))
	require.NoError(t, err)
	require.True(t, m.Had)
	require.Equal(t, "Deploying", m.Fields["title"])
	require.Equal(t, 3, m.Fields["order"])
	require.Equal(t, []byte("Body\n"), m.Body)
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("---\ntitle: [unclosed\n---\nBody\n"))
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrInvalidYAML))
}

func TestParse_NoFrontmatterYieldsEmptyFields(t *testing.T) {
	m, err := Parse([]byte("plain"))
	require.NoError(t, err)
	require.False(t, m.Had)
	require.NotNil(t, m.Fields)
	require.Empty(t, m.Fields)
}

func TestSerializeYAML_SortsKeys(t *testing.T) {
	out, err := SerializeYAML(map[string]any{"title": "x", "order": 1, "layout": "page"})
	require.NoError(t, err)
	require.Equal(t, "layout: page\norder: 1\ntitle: x\n", string(out))

	empty, err := SerializeYAML(nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
