// Package progress publishes batch progress events. Reporting never fails the
// batch: reporters log their own problems and carry on.
package progress

import (
	"context"
	"sync/atomic"

	"github.com/specialistvlad/proteindiff/internal/ctxlog"
)

// Kind names an event.
type Kind string

const (
	DesignStarted  Kind = "design_started"
	StepCompleted  Kind = "step_completed"
	DesignSkipped  Kind = "design_skipped"
	DesignFinished Kind = "design_finished"
)

// Event is a single progress notification.
type Event struct {
	Kind        Kind
	RunID       string
	DesignIndex int
	Timestep    int
	Step        int
	Steps       int
	Path        string
	Seconds     float64
}

// Fields renders the event as a flat map for transports.
func (e Event) Fields() map[string]any {
	return map[string]any{
		"kind":         string(e.Kind),
		"run_id":       e.RunID,
		"design_index": e.DesignIndex,
		"timestep":     e.Timestep,
		"step":         e.Step,
		"steps":        e.Steps,
		"path":         e.Path,
		"seconds":      e.Seconds,
	}
}

// Reporter receives progress events.
type Reporter interface {
	Report(ctx context.Context, e Event)
}

// Multi fans an event out to every reporter in order.
type Multi []Reporter

// Report implements Reporter.
func (m Multi) Report(ctx context.Context, e Event) {
	for _, r := range m {
		r.Report(ctx, e)
	}
}

// LogReporter writes events to the context logger at debug level.
type LogReporter struct{}

// Report implements Reporter.
func (LogReporter) Report(ctx context.Context, e Event) {
	logger := ctxlog.FromContext(ctx)
	switch e.Kind {
	case StepCompleted:
		logger.Debug("Step completed.", "design", e.DesignIndex, "t", e.Timestep, "step", e.Step+1, "of", e.Steps)
	default:
		logger.Debug("Progress event.", "kind", e.Kind, "design", e.DesignIndex, "path", e.Path)
	}
}

// Status is a point-in-time view of a Tracker.
type Status struct {
	RunID         string `json:"run_id"`
	Completed     int64  `json:"completed"`
	Skipped       int64  `json:"skipped"`
	CurrentDesign int64  `json:"current_design"`
	CurrentStep   int64  `json:"current_step"`
	Steps         int64  `json:"steps"`
}

// Tracker keeps counters other goroutines can read while the batch runs.
type Tracker struct {
	runID         atomic.Value
	completed     atomic.Int64
	skipped       atomic.Int64
	currentDesign atomic.Int64
	currentStep   atomic.Int64
	steps         atomic.Int64
}

// NewTracker returns a tracker with no design in flight.
func NewTracker() *Tracker {
	t := &Tracker{}
	t.runID.Store("")
	t.currentDesign.Store(-1)
	return t
}

// Report implements Reporter.
func (t *Tracker) Report(_ context.Context, e Event) {
	t.runID.Store(e.RunID)
	switch e.Kind {
	case DesignStarted:
		t.currentDesign.Store(int64(e.DesignIndex))
		t.currentStep.Store(0)
		t.steps.Store(int64(e.Steps))
	case StepCompleted:
		t.currentStep.Store(int64(e.Step + 1))
	case DesignSkipped:
		t.skipped.Add(1)
	case DesignFinished:
		t.completed.Add(1)
		t.currentDesign.Store(-1)
	}
}

// Snapshot reads the counters.
func (t *Tracker) Snapshot() Status {
	return Status{
		RunID:         t.runID.Load().(string),
		Completed:     t.completed.Load(),
		Skipped:       t.skipped.Load(),
		CurrentDesign: t.currentDesign.Load(),
		CurrentStep:   t.currentStep.Load(),
		Steps:         t.steps.Load(),
	}
}
