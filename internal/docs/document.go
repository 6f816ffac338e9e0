package docs

import (
	"fmt"
	"path"
	"strings"

	derrors "github.com/uktrade/docsite/internal/docs/errors"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Kind distinguishes Markdown pages from HTML template pages.
type Kind string

const (
	KindMarkdown Kind = "markdown"
	KindHTML     Kind = "html"
)

// Document is a discovered page.
type Document struct {
	Path        string         // Slash path relative to the project root, e.g. "docs/deployment/aws.md"; globs match against it
	InputPath   string         // Slash path relative to the input directory, e.g. "deployment/aws.md"
	SourceFile  string         // Absolute filesystem path
	Kind        Kind           // Page flavour, decides the render path
	Data        map[string]any // Front matter fields
	Body        []byte         // Content after front matter
	Title       string         // Front matter title, or a title derived from the file name
	URL         string         // Public URL, e.g. "/deployment/aws/"
	OutputPath  string         // Slash path relative to the output directory; empty when the page is not written
	Fingerprint string         // Content fingerprint (front matter + body)
}

// Stem returns the file name without extension.
func (d *Document) Stem() string {
	base := path.Base(d.InputPath)
	return strings.TrimSuffix(base, path.Ext(base))
}

// Dir returns the input-relative directory, "" for the input root.
func (d *Document) Dir() string {
	dir := path.Dir(d.InputPath)
	if dir == "." {
		return ""
	}
	return dir
}

// String returns the front matter value for key when it is a string.
func (d *Document) String(key string) string {
	if d.Data == nil {
		return ""
	}
	s, _ := d.Data[key].(string)
	return s
}

// Layout returns the front matter layout, "" when unset.
func (d *Document) Layout() string { return d.String("layout") }

// Description returns the front matter description, "" when unset.
func (d *Document) Description() string { return d.String("description") }

// Written reports whether the page produces an output file.
func (d *Document) Written() bool { return d.OutputPath != "" }

// SetPermalink resolves URL and OutputPath. A nil value derives them from
// InputPath; `false` keeps the page out of the output while leaving it in
// collections; a string is used verbatim.
func (d *Document) SetPermalink(value any) error {
	switch v := value.(type) {
	case nil:
		d.URL, d.OutputPath = defaultPermalink(d.InputPath)
		return nil
	case bool:
		if v {
			return fmt.Errorf("%w: %s: permalink true is not supported", derrors.ErrInvalidPermalink, d.Path)
		}
		d.URL, d.OutputPath = "", ""
		return nil
	case string:
		url, out, err := explicitPermalink(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", derrors.ErrInvalidPermalink, d.Path, err)
		}
		d.URL, d.OutputPath = url, out
		return nil
	default:
		return fmt.Errorf("%w: %s: unsupported permalink type %T", derrors.ErrInvalidPermalink, d.Path, value)
	}
}

// defaultPermalink maps "a/b.md" to "/a/b/" and "a/index.md" to "/a/".
func defaultPermalink(inputPath string) (url, out string) {
	dir := path.Dir(inputPath)
	stem := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	parts := make([]string, 0, 2)
	if dir != "." {
		parts = append(parts, dir)
	}
	if stem != "index" {
		parts = append(parts, stem)
	}
	if len(parts) == 0 {
		return "/", "index.html"
	}
	p := path.Join(parts...)
	return "/" + p + "/", p + "/index.html"
}

func explicitPermalink(raw string) (url, out string, err error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", "", fmt.Errorf("empty permalink")
	}
	cleaned := path.Clean("/" + raw)
	if strings.Contains(raw, "..") {
		return "", "", fmt.Errorf("permalink %q escapes the output directory", raw)
	}
	if strings.HasSuffix(raw, "/") || cleaned == "/" {
		if cleaned == "/" {
			return "/", "index.html", nil
		}
		return cleaned + "/", strings.TrimPrefix(cleaned, "/") + "/index.html", nil
	}
	if path.Ext(cleaned) == "" {
		// Extensionless permalinks are served as directories.
		return cleaned + "/", strings.TrimPrefix(cleaned, "/") + "/index.html", nil
	}
	return cleaned, strings.TrimPrefix(cleaned, "/"), nil
}

// titleFromPath derives a human title from the file name, falling back to
// the directory name for index pages.
func titleFromPath(inputPath string) string {
	stem := strings.TrimSuffix(path.Base(inputPath), path.Ext(inputPath))
	if stem == "index" {
		dir := path.Dir(inputPath)
		if dir == "." {
			return "Home"
		}
		stem = path.Base(dir)
	}
	words := strings.NewReplacer("-", " ", "_", " ").Replace(stem)
	// Casers carry state, so each call gets its own.
	return cases.Title(language.BritishEnglish).String(words)
}
