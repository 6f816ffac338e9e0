// Package errors provides the classified error type used across docsite.
//
// Packages wrap low-level failures with fmt.Errorf and %w internally, then
// classify them at their public boundary so the CLI can pick an exit code
// and a log level without string matching:
//
//	return errors.FileSystemError("passthrough source not found").
//		WithContext("source", m.Source).
//		WithCause(err).
//		Build()
//
// Key pieces:
//   - ErrorCategory: config, validation, discovery, template, filesystem, ...
//   - ErrorSeverity: fatal, error, warning, info
//   - RetryStrategy: whether retrying could help
//   - ErrorBuilder: fluent construction
//   - CLIErrorAdapter: exit codes and user-facing formatting
package errors
