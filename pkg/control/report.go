package control

import (
	"os"
	"time"

	json "github.com/goccy/go-json"
	"github.com/juju/errors"

	"github.com/pingcap/tipocket-sqllab/pkg/core"
	"github.com/pingcap/tipocket-sqllab/pkg/metrics"
)

// Status is the outcome of a case.
type Status string

// Statuses
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// Result is the outcome of one case on one node.
type Result struct {
	Case     string           `json:"case"`
	Node     string           `json:"node"`
	Status   Status           `json:"status"`
	Kind     core.FailureKind `json:"kind,omitempty"`
	Error    string           `json:"error,omitempty"`
	Duration time.Duration    `json:"duration"`
}

// Report is the outcome of a run.
type Report struct {
	RunID   string           `json:"run_id"`
	Start   time.Time        `json:"start"`
	End     time.Time        `json:"end"`
	Results []Result         `json:"results"`
	Steps   *metrics.Summary `json:"steps,omitempty"`
}

func (r *Report) count(s Status) int {
	n := 0
	for _, res := range r.Results {
		if res.Status == s {
			n++
		}
	}
	return n
}

// Passed returns the number of passed cases.
func (r *Report) Passed() int { return r.count(StatusPassed) }

// Failed returns the number of failed cases.
func (r *Report) Failed() int { return r.count(StatusFailed) }

// Skipped returns the number of skipped cases.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// OK reports whether no case failed.
func (r *Report) OK() bool { return r.Failed() == 0 }

// WriteFile writes the report as indented JSON.
func (r *Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(os.WriteFile(path, data, 0644))
}

// ReadReport reads a report written by WriteFile.
func ReadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Annotatef(err, "decode report %s", path)
	}
	return &r, nil
}
