// Package analysis drives the classification pipeline end to end:
// job submission, bounded fan-out over utterances, the aggregation
// barrier, metric derivation and job-based async status.
package analysis

import (
	"fmt"
	"time"

	"lectio/internal/matrix"
	"lectio/internal/metrics"
	"lectio/internal/transcript"
)

// Status is the lifecycle state of an analysis job.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
)

// transitions is the legal state machine. Terminal states have no
// outgoing edges, which is what makes them absorbing: a worker that
// drained after cancellation cannot flip the job back.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusFailed},
	StatusProcessing: {StatusCompleted, StatusFailed, StatusCancelled},
}

// CanTransition reports whether s -> to is a legal edge.
func (s Status) CanTransition(to Status) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// Terminal reports whether the status has no outgoing edges.
func (s Status) Terminal() bool {
	return len(transitions[s]) == 0
}

// UtteranceError records one utterance that could not be classified.
type UtteranceError struct {
	UtteranceID string `json:"utterance_id"`
	Message     string `json:"message"`
}

// Counts summarizes classification completeness. Nothing is hidden:
// every utterance lands in exactly one of classified or unclassified,
// and low-confidence ones are additionally counted for review.
type Counts struct {
	Classified    int `json:"classified"`
	Unclassified  int `json:"unclassified"`
	LowConfidence int `json:"low_confidence"`
}

// Statistics is the derived summary attached to a completed result.
type Statistics struct {
	TotalUtterances       int                  `json:"total_utterances"`
	TopCombinations       []matrix.Combination `json:"top_combinations"`
	EducationalComplexity metrics.Metrics      `json:"educational_complexity"`
}

// Result is the full payload of a finished analysis.
type Result struct {
	Matrix     *matrix.Matrix `json:"matrix"`
	Statistics Statistics     `json:"statistics"`
	Counts     Counts         `json:"counts"`
}

// Progress tracks a running job.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Job is the record of one analysis. Snapshots returned by the
// orchestrator are clones; the live record mutates only under the job
// store lock.
type Job struct {
	ID         string           `json:"analysis_id"`
	Status     Status           `json:"status"`
	Message    string           `json:"message,omitempty"`
	Progress   Progress         `json:"progress"`
	Result     *Result          `json:"result,omitempty"`
	Errors     []UtteranceError `json:"errors,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
	StartedAt  time.Time        `json:"started_at,omitzero"`
	FinishedAt time.Time        `json:"finished_at,omitzero"`

	utterances []transcript.Utterance
}

// Clone returns a snapshot safe to hand outside the store lock. Result
// and utterances are immutable once set, so sharing them is fine; the
// error slice is copied because the worker appends to it.
func (j *Job) Clone() *Job {
	c := *j
	if len(j.Errors) > 0 {
		c.Errors = make([]UtteranceError, len(j.Errors))
		copy(c.Errors, j.Errors)
	}
	return &c
}

// Utterances returns the job's input sequence.
func (j *Job) Utterances() []transcript.Utterance {
	return j.utterances
}

// JobValidationError rejects a malformed submission synchronously,
// before any job record exists.
type JobValidationError struct {
	Err error
}

func (e *JobValidationError) Error() string {
	return fmt.Sprintf("invalid submission: %v", e.Err)
}

func (e *JobValidationError) Unwrap() error {
	return e.Err
}

// OrchestrationTimeout reports that a job exceeded its wall-clock
// budget. The job moves to failed; partial results are preserved when
// any utterance resolved in time.
type OrchestrationTimeout struct {
	JobID  string
	Budget time.Duration
}

func (e *OrchestrationTimeout) Error() string {
	return fmt.Sprintf("analysis %s exceeded %s wall-clock budget", e.JobID, e.Budget)
}
