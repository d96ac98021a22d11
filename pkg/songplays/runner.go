package songplays

import (
	"context"
	"time"
)

// Runner is the main interface for executing the pipeline.
// Implementations validate the configuration, build the ordered plan, ask for
// approval before destructive phases, and execute steps one at a time.
type Runner interface {
	// Run executes the selected phases and reports per-step results.
	// On failure the report holds the steps that completed before the error.
	Run(ctx context.Context, config RunConfig) (*RunReport, error)
}

// StepInfo identifies a plan step for progress reporting.
type StepInfo struct {
	ID    string // e.g. "load:staging_events"
	Phase Phase
	Table string
	Index int // zero-based position in the executed order
	Total int
}

// StepResult is the outcome of one executed step.
type StepResult struct {
	StepInfo
	Rows     int64 // rows affected or loaded; -1 when the engine does not report it
	Duration time.Duration
}

// RunReport summarises a run.
type RunReport struct {
	RunID    string
	Steps    []StepResult
	Duration time.Duration
}

// RowsFor returns the rows reported by the step with the given ID.
func (r *RunReport) RowsFor(id string) (int64, bool) {
	if r == nil {
		return 0, false
	}
	for _, s := range r.Steps {
		if s.ID == id {
			return s.Rows, true
		}
	}
	return 0, false
}

// ProgressObserver receives step events while a run executes.
// Calls happen on the run goroutine in plan order.
type ProgressObserver interface {
	PlanReady(steps []StepInfo)
	StepStarted(step StepInfo)
	StepFinished(result StepResult, err error)
}
