package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_BuildsClassifiedError(t *testing.T) {
	cause := stderrors.New("no such file")
	err := FileSystemError("passthrough source not found").
		WithContext("source", "docs/CNAME").
		WithCause(cause).
		Build()

	assert.Equal(t, CategoryFileSystem, err.Category())
	assert.Equal(t, SeverityFatal, err.Severity())
	assert.Equal(t, "passthrough source not found", err.Message())
	assert.True(t, stderrors.Is(err, cause))
	assert.Equal(t, "[filesystem:fatal] passthrough source not found (source=docs/CNAME): no such file", err.Error())

	v, ok := err.Context().GetString("source")
	require.True(t, ok)
	assert.Equal(t, "docs/CNAME", v)
}

func TestAsClassified_FindsWrappedError(t *testing.T) {
	inner := ConfigError("collection name is required").Build()
	wrapped := fmt.Errorf("load config: %w", inner)

	got, ok := AsClassified(wrapped)
	require.True(t, ok)
	assert.Same(t, inner, got)
	assert.True(t, HasCategory(wrapped, CategoryConfig))
	assert.Equal(t, CategoryInternal, GetCategory(stderrors.New("plain")))
}

func TestIs_MatchesCategoryAndMessage(t *testing.T) {
	a := BuildError("render failed").WithContext("path", "a.md").Build()
	b := BuildError("render failed").Build()
	c := TemplateError("render failed").Build()

	assert.True(t, stderrors.Is(a, b))
	assert.False(t, stderrors.Is(a, c))
}

func TestRetryHints(t *testing.T) {
	assert.True(t, NetworkError("publish failed").Build().CanRetry())
	assert.False(t, ConfigError("bad").Build().CanRetry())
	assert.True(t, ValidationError("bad").Build().IsFatal())
	assert.False(t, HistoryError("write failed").Build().IsFatal())
}

func TestErrorContext_Merge(t *testing.T) {
	a := ErrorContext{"a": 1, "b": 2}
	b := ErrorContext{"b": 3}
	m := a.Merge(b)
	assert.Equal(t, ErrorContext{"a": 1, "b": 3}, m)
	assert.Equal(t, 2, a["b"], "merge must not mutate the receiver")
}
