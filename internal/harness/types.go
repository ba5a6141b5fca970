package harness

import (
	"time"

	"github.com/roach88/kanjidex/internal/pipeline"
	"github.com/roach88/kanjidex/internal/record"
)

// Result is the outcome of a scenario run.
type Result struct {
	// Pass indicates overall success: the expected error (if any) occurred
	// and every assertion held.
	Pass bool `json:"pass"`

	// Errors contains assertion failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Records is the dataset the run produced.
	Records []record.Record `json:"records"`

	Stats pipeline.Stats `json:"stats"`
	RunID string         `json:"run_id"`

	// ErrorCode is the pipeline error code of a failed run.
	ErrorCode string `json:"error_code,omitempty"`

	// Cache is the last snapshot saved to the backend, nil if none was.
	Cache map[string]int `json:"cache,omitempty"`

	// Saves counts backend saves.
	Saves int `json:"saves"`

	// Sleeps lists every sleep requested, retries included.
	Sleeps []time.Duration `json:"sleeps,omitempty"`
}

// NewResult creates a new passing result.
// Used as the starting point for scenario execution.
func NewResult() *Result {
	return &Result{
		Pass:    true,
		Errors:  []string{},
		Records: []record.Record{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}
