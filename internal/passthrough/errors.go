package passthrough

import "errors"

var (
	// ErrInvalidMapping indicates a mapping that can never be copied.
	ErrInvalidMapping = errors.New("invalid passthrough mapping")

	// ErrSourceNotFound indicates a source path does not exist or a glob matched nothing.
	ErrSourceNotFound = errors.New("passthrough source not found")

	// ErrCopyFailed indicates a filesystem failure while copying.
	ErrCopyFailed = errors.New("passthrough copy failed")
)
