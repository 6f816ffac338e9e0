package passthrough

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/uktrade/docsite/internal/logfields"
)

// Result summarises a copy run.
type Result struct {
	Files int
	Bytes int64
}

func (r *Result) add(o Result) {
	r.Files += o.Files
	r.Bytes += o.Bytes
}

// Copier resolves mappings against a project root and writes into an output directory.
type Copier struct {
	Root   string // Project root sources are relative to
	Input  string // Input directory relative to Root; plain sources under it drop this prefix
	Output string // Output directory (absolute or relative to the working directory)
}

// Copy copies every mapping in registration order. The first missing source
// or filesystem failure stops the run.
func (c *Copier) Copy(ctx context.Context, r *Registry) (Result, error) {
	var total Result
	for _, m := range r.Mappings() {
		if err := ctx.Err(); err != nil {
			return total, err
		}
		if err := m.Validate(); err != nil {
			return total, err
		}
		res, err := c.copyMapping(ctx, m)
		if err != nil {
			return total, err
		}
		slog.Debug("Passthrough copied",
			logfields.Source(m.Source),
			logfields.Destination(c.destination(m)),
			logfields.Count(res.Files))
		total.add(res)
	}
	return total, nil
}

func (c *Copier) copyMapping(ctx context.Context, m Mapping) (Result, error) {
	src := cleanRel(m.Source)
	if m.IsGlob() {
		return c.copyGlob(ctx, m, src)
	}

	full := filepath.Join(c.Root, filepath.FromSlash(src))
	info, err := os.Stat(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Result{}, fmt.Errorf("%w: %s", ErrSourceNotFound, m.Source)
		}
		return Result{}, fmt.Errorf("%w: %s: %w", ErrCopyFailed, m.Source, err)
	}

	dst := filepath.Join(c.Output, filepath.FromSlash(c.destination(m)))
	if info.IsDir() {
		return copyDir(ctx, os.DirFS(full), dst)
	}
	n, err := copyFile(full, dst, info.Mode())
	if err != nil {
		return Result{}, err
	}
	return Result{Files: 1, Bytes: n}, nil
}

// copyGlob copies each match to destination/<path below the glob's static prefix>.
func (c *Copier) copyGlob(ctx context.Context, m Mapping, pattern string) (Result, error) {
	matches, err := doublestar.Glob(os.DirFS(c.Root), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrInvalidMapping, m.Source, err)
	}
	if len(matches) == 0 {
		return Result{}, fmt.Errorf("%w: glob %s matched no files", ErrSourceNotFound, m.Source)
	}

	base := globBase(pattern)
	destRoot := c.destination(m)
	var res Result
	for _, match := range matches {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel := strings.TrimPrefix(strings.TrimPrefix(match, base), "/")
		if base == "." {
			rel = match
		}
		full := filepath.Join(c.Root, filepath.FromSlash(match))
		info, err := os.Stat(full)
		if err != nil {
			return res, fmt.Errorf("%w: %s: %w", ErrCopyFailed, match, err)
		}
		dst := filepath.Join(c.Output, filepath.FromSlash(path.Join(destRoot, rel)))
		n, err := copyFile(full, dst, info.Mode())
		if err != nil {
			return res, err
		}
		res.add(Result{Files: 1, Bytes: n})
	}
	return res, nil
}

// destination resolves where a mapping lands, relative to the output directory.
// Without an explicit destination a source under the input directory drops
// that prefix ("docs/assets" → "assets"); other sources keep their path.
func (c *Copier) destination(m Mapping) string {
	if m.Destination != "" {
		return cleanRel(m.Destination)
	}
	src := cleanRel(m.Source)
	if m.IsGlob() {
		src = globBase(src)
	}
	input := cleanRel(c.Input)
	if input != "" && input != "." {
		if src == input {
			return "."
		}
		if strings.HasPrefix(src, input+"/") {
			return strings.TrimPrefix(src, input+"/")
		}
	}
	return src
}

// CopyFS copies an entire filesystem (e.g. a theme's embedded assets) into dst.
func CopyFS(ctx context.Context, fsys fs.FS, dst string) (Result, error) {
	return copyDir(ctx, fsys, dst)
}

func copyDir(ctx context.Context, fsys fs.FS, dst string) (Result, error) {
	var res Result
	err := fs.WalkDir(fsys, ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(p))
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		in, err := fsys.Open(p)
		if err != nil {
			return err
		}
		defer func() { _ = in.Close() }()
		n, err := writeFile(in, target, 0o644)
		if err != nil {
			return err
		}
		res.add(Result{Files: 1, Bytes: n})
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrCopyFailed) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return res, err
		}
		return res, fmt.Errorf("%w: %s: %w", ErrCopyFailed, dst, err)
	}
	return res, nil
}

func copyFile(src, dst string, mode fs.FileMode) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCopyFailed, src, err)
	}
	defer func() { _ = in.Close() }()
	return writeFile(in, dst, mode.Perm())
}

func writeFile(r io.Reader, dst string, perm fs.FileMode) (int64, error) {
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCopyFailed, dst, err)
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm|0o200)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", ErrCopyFailed, dst, err)
	}
	n, err := io.Copy(out, r)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return n, fmt.Errorf("%w: %s: %w", ErrCopyFailed, dst, err)
	}
	return n, nil
}
