package preview

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/uktrade/docsite/internal/logfields"
	"github.com/uktrade/docsite/internal/site"
)

// Rebuild triggers recorded in metrics.
const (
	TriggerWatch    = "watch"
	TriggerSchedule = "schedule"
)

// Builder runs one site build.
type Builder interface {
	Build(ctx context.Context) (*site.Report, error)
}

// Rebuilder debounces rebuild requests and runs builds one at a time. A
// request arriving while a build runs is kept as the single pending build.
type Rebuilder struct {
	builder  Builder
	delay    time.Duration
	onResult func(trigger string, report *site.Report, err error)

	mu      sync.Mutex
	timer   *time.Timer
	trigger string
	pending chan string
}

// NewRebuilder creates a rebuilder that waits delay after the last request.
// onResult is called after every build.
func NewRebuilder(b Builder, delay time.Duration, onResult func(string, *site.Report, error)) *Rebuilder {
	if onResult == nil {
		onResult = func(string, *site.Report, error) {}
	}
	return &Rebuilder{
		builder:  b,
		delay:    delay,
		onResult: onResult,
		pending:  make(chan string, 1),
	}
}

// Request schedules a rebuild after the quiet period.
func (r *Rebuilder) Request(trigger string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trigger = trigger
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.delay, r.fire)
}

// RequestNow schedules a rebuild without waiting for the quiet period.
func (r *Rebuilder) RequestNow(trigger string) {
	r.mu.Lock()
	r.trigger = trigger
	r.mu.Unlock()
	r.fire()
}

func (r *Rebuilder) fire() {
	r.mu.Lock()
	trigger := r.trigger
	r.mu.Unlock()
	select {
	case r.pending <- trigger:
	default:
		// A build is already pending; it will pick up this change.
	}
}

// Run processes rebuild requests until ctx is done.
func (r *Rebuilder) Run(ctx context.Context) {
	defer func() {
		r.mu.Lock()
		if r.timer != nil {
			r.timer.Stop()
		}
		r.mu.Unlock()
	}()
	for {
		select {
		case <-ctx.Done():
			return
		case trigger := <-r.pending:
			slog.Info("Change detected; rebuilding site", logfields.Event(trigger))
			report, err := r.builder.Build(ctx)
			r.onResult(trigger, report, err)
		}
	}
}
