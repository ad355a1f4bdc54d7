package dag

import (
	"time"

	"github.com/google/uuid"
)

// Node statuses reported after an execution.
const (
	StatusCompleted = "completed"
	StatusSkipped   = "skipped"
	StatusFailed    = "failed"
)

// Report holds the outcome of a pipeline execution.
type Report struct {
	// RunID uniquely identifies this execution.
	RunID string
	// Pipeline is the executed pipeline's name.
	Pipeline string
	// StartedAt is the wall-clock start of the run.
	StartedAt time.Time
	// Duration is the total run time.
	Duration time.Duration
	// Nodes maps node names to their individual outcomes.
	Nodes map[string]NodeReport
}

// NodeReport holds the outcome of a single node.
type NodeReport struct {
	Name     string
	Status   string
	Duration time.Duration
	Err      error
}

func newReport(pipeline string) *Report {
	return &Report{
		RunID:     uuid.NewString(),
		Pipeline:  pipeline,
		StartedAt: time.Now(),
		Nodes:     make(map[string]NodeReport),
	}
}

// record is nil-safe so plain Execute runs skip reporting entirely.
func (r *Report) record(name, status string, d time.Duration, err error) {
	if r == nil {
		return
	}
	r.Nodes[name] = NodeReport{Name: name, Status: status, Duration: d, Err: err}
}

func (r *Report) finish(d time.Duration) {
	if r == nil {
		return
	}
	r.Duration = d
}
