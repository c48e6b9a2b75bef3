package entities

import "time"

// CaseStatus represents the status of a scenario case
type CaseStatus string

const (
	CaseStatusPassed  CaseStatus = "passed"
	CaseStatusFailed  CaseStatus = "failed"
	CaseStatusAborted CaseStatus = "aborted"
)

// CaseResult records one executed scenario case.
type CaseResult struct {
	Name     string        `json:"name"`
	Status   CaseStatus    `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// RunReport is the outcome of one suite run.
type RunReport struct {
	ID         string       `json:"id"`
	Driver     string       `json:"driver"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Results    []CaseResult `json:"results"`
}

// Totals returns the total, passed and failed counts.
func (r RunReport) Totals() (total, passed, failed int) {
	for _, res := range r.Results {
		total++
		if res.Status == CaseStatusPassed {
			passed++
		} else {
			failed++
		}
	}
	return total, passed, failed
}
