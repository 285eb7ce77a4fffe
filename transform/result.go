package transform

import "github.com/google/uuid"

// Status is the coarse outcome a run reports to its orchestrator.
type Status string

const (
	// StatusNoData means no raw input was present; the run exited
	// cleanly with no side effects.
	StatusNoData Status = "NO_DATA"
	// StatusSuccess means the consolidated artifact was written.
	// Relocation failures may still be listed in MoveFailed.
	StatusSuccess Status = "SUCCESS"
	// StatusError means the run failed before its artifact was
	// durable; re-invoking the whole run is safe.
	StatusError Status = "ERROR"
)

// Result is the per-run report: enough metadata for an orchestrator to
// decide on retry. The pipeline itself never retries.
type Result struct {
	RunID  uuid.UUID `json:"run_id"`
	Status Status    `json:"status"`

	Rows   int    `json:"rows,omitempty"`
	Output string `json:"output,omitempty"`

	Moved     int    `json:"moved,omitempty"`
	MovedFrom string `json:"moved_from,omitempty"`
	MovedTo   string `json:"moved_to,omitempty"`
	// MoveFailed lists raw inputs that could not be relocated after a
	// successful write; they stay in the ingest area and will be
	// reprocessed next run.
	MoveFailed []string `json:"move_failed,omitempty"`

	// TriggeredRun is set when this run kicked off the predict run.
	TriggeredRun string `json:"triggered_run,omitempty"`

	Message string `json:"message,omitempty"`
}

func newResult(status Status) Result {
	return Result{RunID: uuid.New(), Status: status}
}

func noData(message string) Result {
	r := newResult(StatusNoData)
	r.Message = message
	return r
}

func errorResult(err error) Result {
	r := newResult(StatusError)
	r.Message = err.Error()
	return r
}
