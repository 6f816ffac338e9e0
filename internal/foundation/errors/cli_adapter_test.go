package errors

import (
	"bytes"
	stderrors "errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCLIErrorAdapter_ExitCodeFor(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.Default())

	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"nil error", nil, 0},
		{"validation", ValidationError("invalid input").Build(), 2},
		{"not found", NotFoundError("no such build").Build(), 4},
		{"config", ConfigError("bad config").Build(), 7},
		{"network", NetworkError("nats down").Build(), 8},
		{"filesystem", FileSystemError("missing asset").Build(), 11},
		{"template", TemplateError("bad layout").Build(), 11},
		{"runtime", RuntimeError("server").Build(), 12},
		{"internal", InternalError("bug").Build(), 10},
		{"unclassified", stderrors.New("unknown"), 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, adapter.ExitCodeFor(tt.err))
		})
	}
}

func TestCLIErrorAdapter_FormatError(t *testing.T) {
	quiet := NewCLIErrorAdapter(false, slog.Default())
	verbose := NewCLIErrorAdapter(true, slog.Default())
	err := FileSystemError("passthrough source not found").
		WithContext("source", "docs/CNAME").
		WithCause(stderrors.New("stat docs/CNAME: no such file")).
		Build()

	assert.Equal(t, "Error: [filesystem:fatal] passthrough source not found (source=docs/CNAME)", quiet.FormatError(err))
	assert.Contains(t, verbose.FormatError(err), "no such file")
	assert.Equal(t, "Internal error occurred (use -v for details)", quiet.FormatError(InternalError("x").Build()))
	assert.Equal(t, "", quiet.FormatError(nil))
}

func TestCLIErrorAdapter_HandleError(t *testing.T) {
	var out bytes.Buffer
	adapter := NewCLIErrorAdapter(false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	adapter.out = &out
	code := -1
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("collection name is required").Build())

	assert.Equal(t, 7, code)
	assert.Contains(t, out.String(), "collection name is required")
}
