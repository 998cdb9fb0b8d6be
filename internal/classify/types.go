// Package classify implements checklist-guided utterance classification:
// one billable model call per vote, N redundant votes per utterance and
// dimension, majority-vote consensus on top. Stage and Level are
// single-label; Context is decided by independent yes/no votes per
// candidate label, which keeps per-label confidence visible.
package classify

import (
	"fmt"

	"lectio/internal/taxonomy"
)

// Vote is one run's raw decision for one utterance/dimension.
type Vote struct {
	// Run indexes the vote within its consensus round, 0..N-1.
	Run int

	// Label is the chosen label for single-label dimensions.
	Label string

	// Match is the decision of a binary context check.
	Match bool

	// Err is set when the call failed after retries. A failed vote still
	// counts against N in the agreement ratio.
	Err error
}

// ConsensusResult is the resolved outcome of one consensus round.
type ConsensusResult struct {
	Dimension taxonomy.Dimension `json:"dimension"`

	// Label is the winning label for single-label dimensions.
	Label string `json:"label,omitempty"`

	// Labels is the included set for the multi-label context dimension,
	// in canonical order. May be empty.
	Labels []string `json:"labels,omitempty"`

	// Votes tallies collected votes per label. For context this counts
	// yes votes per candidate.
	Votes map[string]int `json:"votes"`

	// FailedVotes counts calls that errored after retries.
	FailedVotes int `json:"failed_votes,omitempty"`

	// AgreementRatio is always computed over exactly N votes. For
	// context it is the mean decisive share across candidates.
	AgreementRatio float64 `json:"agreement_ratio"`

	// LowConfidence marks a round where no label reached the majority
	// threshold. The surfaced label is the deterministic plurality pick,
	// flagged for human review rather than defaulted silently.
	LowConfidence bool `json:"low_confidence"`
}

// Assignment is the full classification of one utterance.
type Assignment struct {
	UtteranceID string             `json:"utterance_id"`
	Stage       taxonomy.Stage     `json:"stage"`
	Contexts    []taxonomy.Context `json:"contexts"`
	Level       taxonomy.Level     `json:"level"`

	// LowConfidence is set when any dimension's round was low confidence.
	LowConfidence bool `json:"low_confidence,omitempty"`

	StageResult   *ConsensusResult `json:"stage_result,omitempty"`
	ContextResult *ConsensusResult `json:"context_result,omitempty"`
	LevelResult   *ConsensusResult `json:"level_result,omitempty"`
}

// ClassificationError reports that an utterance could not be classified
// on a dimension: every vote failed after retries, or the model output
// was permanently unparsable. Non-fatal to the job; the utterance
// degrades to unclassified.
type ClassificationError struct {
	UtteranceID string
	Dimension   taxonomy.Dimension
	Err         error
}

func (e *ClassificationError) Error() string {
	return fmt.Sprintf("classify utterance %q on %s: %v", e.UtteranceID, e.Dimension, e.Err)
}

func (e *ClassificationError) Unwrap() error {
	return e.Err
}
