// Package stage defines the shared contract between the workflow
// manager and the pipeline stages.
package stage

import (
	"context"

	"aircheck/internal/content"
)

// Handler describes what the workflow manager needs from each stage.
type Handler interface {
	// Run processes the batch sequentially; item failures are recorded
	// in the Result, not returned. The error return is reserved for
	// fatal conditions that must stop the run.
	Run(ctx context.Context, items []content.WorkItem) (Result, error)
	HealthCheck(ctx context.Context) Health
}

// Health summarizes the readiness of a pipeline stage.
type Health struct {
	Name   string
	Ready  bool
	Detail string
}

// Healthy constructs a ready Health record.
func Healthy(name string) Health {
	return Health{Name: name, Ready: true}
}

// Unhealthy constructs an unhealthy Health record with context detail.
func Unhealthy(name, detail string) Health {
	return Health{Name: name, Ready: false, Detail: detail}
}

// ItemFailure records one item that could not be processed. The rest
// of the batch keeps going.
type ItemFailure struct {
	Item content.WorkItem
	Err  error
}

// Result aggregates the outcome of a stage pass over the batch.
type Result struct {
	Processed int
	Skipped   int
	Failures  []ItemFailure
}

// Failed returns how many items failed during the pass.
func (r Result) Failed() int {
	return len(r.Failures)
}
