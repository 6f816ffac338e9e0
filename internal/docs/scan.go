package docs

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/inful/mdfp"

	derrors "github.com/uktrade/docsite/internal/docs/errors"
	"github.com/uktrade/docsite/internal/frontmatter"
	"github.com/uktrade/docsite/internal/logfields"
)

// ScanOptions configures a discovery pass.
type ScanOptions struct {
	Root  string   // Project root; Document.Path is relative to it
	Input string   // Input directory relative to Root (e.g. "docs")
	Skip  []string // Directories to skip, relative to Root (output, layouts)
}

// ignoredDirs are never descended into.
var ignoredDirs = map[string]struct{}{
	"node_modules": {},
}

// Scan walks the input directory and returns every page in lexical path
// order. That order is the discovery order collections rely on for stable ties.
func Scan(ctx context.Context, opts ScanOptions) ([]*Document, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve project root: %w", err)
	}
	inputDir := filepath.Join(root, filepath.FromSlash(opts.Input))
	st, err := os.Stat(inputDir)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", derrors.ErrInputDirNotFound, inputDir)
	}

	skip := make(map[string]struct{}, len(opts.Skip))
	for _, s := range opts.Skip {
		if s == "" {
			continue
		}
		abs := s
		if !filepath.IsAbs(abs) {
			abs = filepath.Join(root, filepath.FromSlash(s))
		}
		skip[filepath.Clean(abs)] = struct{}{}
	}

	var documents []*Document
	walkErr := filepath.WalkDir(inputDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() {
			if p == inputDir {
				return nil
			}
			if strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			if _, ok := ignoredDirs[d.Name()]; ok {
				return filepath.SkipDir
			}
			if _, ok := skip[filepath.Clean(p)]; ok {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		kind, ok := pageKind(d.Name())
		if !ok {
			return nil
		}

		doc, err := load(root, inputDir, p, kind)
		if err != nil {
			return err
		}
		documents = append(documents, doc)
		slog.Debug("Discovered document", logfields.Path(doc.Path), logfields.URL(doc.URL))
		return nil
	})
	if walkErr != nil {
		if errors.Is(walkErr, context.Canceled) || errors.Is(walkErr, context.DeadlineExceeded) {
			return nil, walkErr
		}
		if isDocError(walkErr) {
			return nil, walkErr
		}
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, inputDir, walkErr)
	}

	if err := checkCollisions(documents); err != nil {
		return nil, err
	}

	slog.Info("Documents discovered", logfields.Path(opts.Input), logfields.Count(len(documents)))
	return documents, nil
}

// load reads one page and resolves its metadata.
func load(root, inputDir, file string, kind Kind) (*Document, error) {
	content, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFileReadFailed, file, err)
	}
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, file, err)
	}
	inRel, err := filepath.Rel(inputDir, file)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrWalkFailed, file, err)
	}

	doc := &Document{
		Path:       filepath.ToSlash(rel),
		InputPath:  filepath.ToSlash(inRel),
		SourceFile: file,
		Kind:       kind,
	}

	matter, err := frontmatter.Parse(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontMatter, doc.Path, err)
	}
	doc.Data = matter.Fields
	doc.Body = matter.Body

	if err := doc.SetPermalink(doc.Data["permalink"]); err != nil {
		return nil, err
	}
	doc.Title = doc.String("title")
	if doc.Title == "" {
		doc.Title = titleFromPath(doc.InputPath)
	}
	doc.Fingerprint, err = Fingerprint(doc.Data, doc.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", derrors.ErrFrontMatter, doc.Path, err)
	}
	return doc, nil
}

// Fingerprint hashes the canonical front matter and body. A stored
// `fingerprint` field is excluded so the value is stable across rewrites.
func Fingerprint(fields map[string]any, body []byte) (string, error) {
	hashed := make(map[string]any, len(fields))
	for k, v := range fields {
		if k == mdfp.FingerprintField {
			continue
		}
		hashed[k] = v
	}
	serialized, err := frontmatter.SerializeYAML(hashed)
	if err != nil {
		return "", err
	}
	fm := strings.TrimSuffix(string(serialized), "\n")
	return mdfp.CalculateFingerprintFromParts(fm, string(body)), nil
}

func pageKind(name string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return KindMarkdown, true
	case ".html":
		return KindHTML, true
	default:
		return "", false
	}
}

func checkCollisions(documents []*Document) error {
	seen := make(map[string]string, len(documents))
	for _, d := range documents {
		if !d.Written() {
			continue
		}
		if other, ok := seen[d.OutputPath]; ok {
			return fmt.Errorf("%w: %s and %s both write %s", derrors.ErrOutputCollision, other, d.Path, d.OutputPath)
		}
		seen[d.OutputPath] = d.Path
	}
	return nil
}

func isDocError(err error) bool {
	return errors.Is(err, derrors.ErrFileReadFailed) ||
		errors.Is(err, derrors.ErrFrontMatter) ||
		errors.Is(err, derrors.ErrInvalidPermalink)
}
