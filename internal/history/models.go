package history

import "time"

// Run statuses.
const (
	StatusRunning     = "running"
	StatusCompleted   = "completed"
	StatusFailed      = "failed"
	StatusInterrupted = "interrupted"
)

// Run is one batch invocation.
type Run struct {
	ID         string    `json:"id"`
	SourceDir  string    `json:"source_dir"`
	Engine     string    `json:"engine"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
	Written    int       `json:"written"`
	Skipped    int       `json:"skipped"`
	Failed     int       `json:"failed"`
	Error      string    `json:"error,omitempty"`
}

// Duration returns the wall time of a finished run, or zero while running.
func (r Run) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Item is the outcome for one media file.
type Item struct {
	RunID      string        `json:"run_id"`
	SourcePath string        `json:"source_path"`
	OutputPath string        `json:"output_path,omitempty"`
	Outcome    string        `json:"outcome"`
	Detail     string        `json:"detail,omitempty"`
	Duration   time.Duration `json:"duration_ns"`
	RecordedAt time.Time     `json:"recorded_at"`
}

// Totals closes a run.
type Totals struct {
	Status  string
	Written int
	Skipped int
	Failed  int
	Error   string
}
