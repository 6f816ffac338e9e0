// Package site runs a complete documentation build.
//
// A build executes a fixed sequence of stages against one configuration:
//
//	prepare_output → discover → collections → render → search → passthrough → manifest
//
// Each stage is timed through metrics.Recorder and reported in the Report.
// The first failing stage aborts the build with a classified error naming
// the stage and, where one exists, the offending path.
package site
