// Package errors provides sentinel errors for document discovery.
package errors

import "errors"

var (
	// ErrInputDirNotFound indicates the configured input directory does not exist.
	ErrInputDirNotFound = errors.New("input directory not found")

	// ErrWalkFailed indicates filesystem traversal of the input directory failed.
	ErrWalkFailed = errors.New("input directory walk failed")

	// ErrFileReadFailed indicates reading a discovered page failed.
	ErrFileReadFailed = errors.New("document read failed")

	// ErrFrontMatter indicates a page carried malformed front matter.
	ErrFrontMatter = errors.New("malformed front matter")

	// ErrInvalidPermalink indicates a permalink value could not be turned into an output path.
	ErrInvalidPermalink = errors.New("invalid permalink")

	// ErrOutputCollision indicates two pages resolved to the same output file.
	ErrOutputCollision = errors.New("output path collision")
)
