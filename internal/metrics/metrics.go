// Package metrics derives the educational-complexity scalars from
// classified utterances. Pure functions of the ordered assignment
// sequence: no I/O, fully deterministic, every result in [0,1].
package metrics

import (
	"math"

	"lectio/internal/classify"
	"lectio/internal/taxonomy"
)

// Metrics is the derived scalar set.
type Metrics struct {
	// CognitiveDiversity is the share of utterances above the recall
	// tier: (L2 + L3) / total.
	CognitiveDiversity float64 `json:"cognitive_diversity"`

	// InstructionalVariety is the normalized Shannon entropy of the
	// observed context-label distribution.
	InstructionalVariety float64 `json:"instructional_variety"`

	// ProgressionQuality scores how rarely the lesson moves backward
	// against the introduction -> development -> closing sequence.
	ProgressionQuality float64 `json:"progression_quality"`

	// OverallComplexity is the weighted average of the three.
	OverallComplexity float64 `json:"overall_complexity"`
}

// Weights tunes the overall composite. Zero-value weights are treated
// as equal weighting.
type Weights struct {
	Diversity   float64 `json:"diversity"`
	Variety     float64 `json:"variety"`
	Progression float64 `json:"progression"`
}

// DefaultWeights weighs the three components equally.
func DefaultWeights() Weights {
	return Weights{Diversity: 1, Variety: 1, Progression: 1}
}

// Compute derives all metrics from the classified sequence in input
// order. An empty sequence yields zero diversity and variety and a
// perfect progression score (no transitions, nothing out of order).
func Compute(assignments []*classify.Assignment, w Weights) Metrics {
	m := Metrics{
		CognitiveDiversity:   cognitiveDiversity(assignments),
		InstructionalVariety: instructionalVariety(assignments),
		ProgressionQuality:   progressionQuality(assignments),
	}
	m.OverallComplexity = overall(m, w)
	return m
}

func cognitiveDiversity(assignments []*classify.Assignment) float64 {
	if len(assignments) == 0 {
		return 0
	}
	upper := 0
	for _, a := range assignments {
		if a.Level == taxonomy.LevelL2 || a.Level == taxonomy.LevelL3 {
			upper++
		}
	}
	return clamp(float64(upper) / float64(len(assignments)))
}

// instructionalVariety is the Shannon entropy of context-label
// occurrences, with an explicit "none" bucket for utterances holding no
// context, normalized by log2 of the votable vocabulary size. The none
// bucket can push raw entropy past the divisor, so the result is
// clamped.
func instructionalVariety(assignments []*classify.Assignment) float64 {
	if len(assignments) == 0 {
		return 0
	}

	counts := make(map[taxonomy.Context]int)
	total := 0
	for _, a := range assignments {
		if len(a.Contexts) == 0 {
			counts[taxonomy.ContextNone]++
			total++
			continue
		}
		for _, c := range a.Contexts {
			counts[c]++
			total++
		}
	}
	if total == 0 {
		return 0
	}

	entropy := 0.0
	for _, n := range counts {
		if n == 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log2(p)
	}

	divisor := math.Log2(float64(len(taxonomy.Contexts())))
	return clamp(entropy / divisor)
}

// progressionQuality walks adjacent stage transitions in input order
// and penalizes backward moves. Zero transitions score 1: a lesson
// cannot be out of order with itself.
func progressionQuality(assignments []*classify.Assignment) float64 {
	transitions := 0
	backward := 0
	prev := -1
	for _, a := range assignments {
		idx := taxonomy.StageIndex(a.Stage)
		if idx < 0 {
			continue
		}
		if prev >= 0 {
			transitions++
			if idx < prev {
				backward++
			}
		}
		prev = idx
	}
	if transitions == 0 {
		return 1
	}
	return clamp(1 - float64(backward)/float64(transitions))
}

func overall(m Metrics, w Weights) float64 {
	sum := w.Diversity + w.Variety + w.Progression
	if sum <= 0 {
		w = DefaultWeights()
		sum = w.Diversity + w.Variety + w.Progression
	}
	weighted := m.CognitiveDiversity*w.Diversity +
		m.InstructionalVariety*w.Variety +
		m.ProgressionQuality*w.Progression
	return clamp(weighted / sum)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
