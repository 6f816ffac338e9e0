package site

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/metrics"
)

// Stage is a discrete unit of work in the site build.
type Stage func(ctx context.Context, bs *buildState) error

// StageName is a strongly-typed identifier for a build stage.
type StageName string

// Canonical stage names.
const (
	StagePrepareOutput StageName = "prepare_output"
	StageDiscover      StageName = "discover"
	StageCollections   StageName = "collections"
	StageRender        StageName = "render"
	StageSearch        StageName = "search"
	StagePassthrough   StageName = "passthrough"
	StageManifest      StageName = "manifest"
)

// StageDef pairs a stage name with its executing function.
type StageDef struct {
	Name StageName
	Fn   Stage
}

// StageError records which stage failed.
type StageError struct {
	Stage StageName
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("stage %s: %v", e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

// runStages executes stages in order, recording timing and stopping on the first error.
func runStages(ctx context.Context, bs *buildState, stages []StageDef) error {
	for _, st := range stages {
		if err := ctx.Err(); err != nil {
			bs.recorder.IncStageResult(string(st.Name), metrics.ResultCanceled)
			return &StageError{Stage: st.Name, Err: err}
		}
		t0 := time.Now()
		err := st.Fn(ctx, bs)
		dur := time.Since(t0)
		bs.report.StageDurations[st.Name] = dur
		bs.recorder.ObserveStageDuration(string(st.Name), dur)

		if err != nil {
			result := metrics.ResultFatal
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result = metrics.ResultCanceled
			}
			bs.recorder.IncStageResult(string(st.Name), result)
			return &StageError{Stage: st.Name, Err: err}
		}
		bs.recorder.IncStageResult(string(st.Name), metrics.ResultSuccess)
		slog.Debug("Stage complete", logfields.BuildID(bs.report.BuildID), logfields.Stage(string(st.Name)), logfields.Duration(dur))
	}
	return nil
}
