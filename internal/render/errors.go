package render

import "errors"

var (
	// ErrUnknownEngine indicates an engine name other than gotmpl or none.
	ErrUnknownEngine = errors.New("unknown template engine")

	// ErrTemplate indicates a page or front-matter template failed to parse or execute.
	ErrTemplate = errors.New("template error")

	// ErrLayoutNotFound indicates a page selected a layout that does not exist.
	ErrLayoutNotFound = errors.New("layout not found")

	// ErrNoLayouts indicates a layouts filesystem without any *.html layout.
	ErrNoLayouts = errors.New("no layouts found")
)
