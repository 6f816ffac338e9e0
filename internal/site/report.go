package site

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/uktrade/docsite/internal/history"
	"github.com/uktrade/docsite/internal/notify"
)

// Outcome is the final state of a build.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Changes lists documents that differ from the previous build's manifest.
type Changes struct {
	Added    []string
	Removed  []string
	Modified []string
}

// Count returns the number of changed documents.
func (c Changes) Count() int { return len(c.Added) + len(c.Removed) + len(c.Modified) }

// Report captures the result of one build.
type Report struct {
	BuildID         string
	Start           time.Time
	End             time.Time
	Outcome         Outcome
	Documents       int
	Pages           int
	Assets          int
	SearchEntries   int
	Collections     map[string]int
	CollectionOrder []string
	StageDurations  map[StageName]time.Duration
	GitCommit       string
	GitBranch       string
	Changes         Changes
	FirstBuild      bool // No manifest from a previous build was found
	Err             error
}

func newReport(id string) *Report {
	return &Report{
		BuildID:        id,
		Start:          time.Now(),
		Collections:    map[string]int{},
		StageDurations: map[StageName]time.Duration{},
	}
}

// Duration is the wall time of the build.
func (r *Report) Duration() time.Duration {
	if r.End.IsZero() {
		return time.Since(r.Start)
	}
	return r.End.Sub(r.Start)
}

func (r *Report) errorText() string {
	if r.Err == nil {
		return ""
	}
	return r.Err.Error()
}

// Record converts the report for the history store.
func (r *Report) Record() history.Record {
	return history.Record{
		BuildID:     r.BuildID,
		StartedAt:   r.Start,
		Duration:    r.Duration(),
		Outcome:     string(r.Outcome),
		Pages:       r.Pages,
		Assets:      r.Assets,
		Collections: maps.Clone(r.Collections),
		GitCommit:   r.GitCommit,
		GitBranch:   r.GitBranch,
		Error:       r.errorText(),
	}
}

// Event converts the report for notification.
func (r *Report) Event() notify.BuildEvent {
	return notify.BuildEvent{
		BuildID:     r.BuildID,
		Outcome:     string(r.Outcome),
		StartedAt:   r.Start,
		DurationMS:  r.Duration().Milliseconds(),
		Pages:       r.Pages,
		Assets:      r.Assets,
		Collections: maps.Clone(r.Collections),
		GitCommit:   r.GitCommit,
		Error:       r.errorText(),
	}
}

// Summary is a one-line human readable description.
func (r *Report) Summary() string {
	parts := []string{
		fmt.Sprintf("%d pages", r.Pages),
		fmt.Sprintf("%d assets", r.Assets),
		fmt.Sprintf("%d collections", len(r.Collections)),
	}
	if !r.FirstBuild {
		parts = append(parts, fmt.Sprintf("%d changed", r.Changes.Count()))
	}
	return fmt.Sprintf("%s in %s (%s)", r.Outcome, r.Duration().Round(time.Millisecond), strings.Join(parts, ", "))
}

// StageNames returns the stages that ran, sorted by name.
func (r *Report) StageNames() []StageName {
	names := slices.Collect(maps.Keys(r.StageDurations))
	slices.Sort(names)
	return names
}
