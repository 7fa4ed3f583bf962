package model

import "time"

// RunKind identifies which pipeline entry point a run used.
type RunKind string

const (
	RunKindSearch  RunKind = "search"
	RunKindURL     RunKind = "url"
	RunKindCompany RunKind = "company"
)

// RunStatus represents the current state of a scrape run.
type RunStatus string

const (
	RunStatusQueued     RunStatus = "queued"
	RunStatusScrolling  RunStatus = "scrolling"
	RunStatusExtracting RunStatus = "extracting"
	RunStatusJobs       RunStatus = "jobs"
	RunStatusExporting  RunStatus = "exporting"
	RunStatusComplete   RunStatus = "complete"
	RunStatusFailed     RunStatus = "failed"
)

// RunInput captures what a run was asked to do.
type RunInput struct {
	Params       *SearchParams `json:"params,omitempty"`
	URL          string        `json:"url,omitempty"`
	Slug         string        `json:"slug,omitempty"`
	IncludeJobs  bool          `json:"include_jobs"`
	MaxCompanies int           `json:"max_companies,omitempty"`
}

// Run is one recorded invocation of the pipeline.
type Run struct {
	ID        string     `json:"id"`
	Kind      RunKind    `json:"kind"`
	Input     RunInput   `json:"input"`
	Status    RunStatus  `json:"status"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// RunResult holds the outcome of a run.
type RunResult struct {
	Companies  int      `json:"companies"`
	Jobs       int      `json:"jobs"`
	Scrolls    int      `json:"scrolls"`
	StopReason string   `json:"stop_reason,omitempty"`
	Files      []string `json:"files,omitempty"`
	DurationMs int64    `json:"duration_ms"`
	Error      string   `json:"error,omitempty"`
}

// RunRecords are the cleaned records a run produced.
type RunRecords struct {
	Companies []Company `json:"companies"`
	Jobs      []Job     `json:"jobs"`
}
