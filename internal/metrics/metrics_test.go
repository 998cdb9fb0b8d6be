package metrics

import (
	"math"
	"testing"

	"lectio/internal/classify"
	"lectio/internal/taxonomy"
)

func assign(stage taxonomy.Stage, contexts []taxonomy.Context, level taxonomy.Level) *classify.Assignment {
	return &classify.Assignment{
		UtteranceID: "u",
		Stage:       stage,
		Contexts:    contexts,
		Level:       level,
	}
}

func TestCognitiveDiversity(t *testing.T) {
	tests := []struct {
		name   string
		levels []taxonomy.Level
		want   float64
	}{
		{"all L1", []taxonomy.Level{taxonomy.LevelL1, taxonomy.LevelL1, taxonomy.LevelL1}, 0},
		{"all upper", []taxonomy.Level{taxonomy.LevelL2, taxonomy.LevelL3}, 1},
		{"half", []taxonomy.Level{taxonomy.LevelL1, taxonomy.LevelL3}, 0.5},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var as []*classify.Assignment
			for _, l := range tt.levels {
				as = append(as, assign(taxonomy.StageDevelopment, nil, l))
			}
			got := Compute(as, DefaultWeights()).CognitiveDiversity
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("CognitiveDiversity = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestInstructionalVarietySingleLabelIsZero(t *testing.T) {
	// Every utterance shares one context label: no variety.
	as := []*classify.Assignment{
		assign(taxonomy.StageIntroduction, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageDevelopment, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageClosing, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
	}
	got := Compute(as, DefaultWeights()).InstructionalVariety
	if got != 0 {
		t.Errorf("InstructionalVariety = %v, want 0", got)
	}
}

func TestInstructionalVarietyUniformIsOne(t *testing.T) {
	// One occurrence of each votable label, none bucket unused: the
	// distribution is uniform over the full vocabulary.
	var as []*classify.Assignment
	for _, c := range taxonomy.Contexts() {
		as = append(as, assign(taxonomy.StageDevelopment, []taxonomy.Context{c}, taxonomy.LevelL2))
	}
	got := Compute(as, DefaultWeights()).InstructionalVariety
	if math.Abs(got-1) > 1e-9 {
		t.Errorf("InstructionalVariety = %v, want 1", got)
	}
}

func TestInstructionalVarietyCountsNoneBucket(t *testing.T) {
	withNone := []*classify.Assignment{
		assign(taxonomy.StageDevelopment, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageDevelopment, nil, taxonomy.LevelL1),
	}
	uniform := []*classify.Assignment{
		assign(taxonomy.StageDevelopment, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageDevelopment, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
	}

	got := Compute(withNone, DefaultWeights()).InstructionalVariety
	flat := Compute(uniform, DefaultWeights()).InstructionalVariety
	if got <= flat {
		t.Errorf("empty context set must add variety: with none = %v, single label = %v", got, flat)
	}
}

func TestProgressionQuality(t *testing.T) {
	tests := []struct {
		name   string
		stages []taxonomy.Stage
		want   float64
	}{
		{
			name:   "canonical order",
			stages: []taxonomy.Stage{taxonomy.StageIntroduction, taxonomy.StageDevelopment, taxonomy.StageClosing},
			want:   1,
		},
		{
			name:   "one backward move",
			stages: []taxonomy.Stage{taxonomy.StageIntroduction, taxonomy.StageClosing, taxonomy.StageDevelopment},
			want:   0.5,
		},
		{
			name:   "fully reversed",
			stages: []taxonomy.Stage{taxonomy.StageClosing, taxonomy.StageDevelopment, taxonomy.StageIntroduction},
			want:   0,
		},
		{
			name:   "repeats are not backward",
			stages: []taxonomy.Stage{taxonomy.StageDevelopment, taxonomy.StageDevelopment, taxonomy.StageDevelopment},
			want:   1,
		},
		{
			name:   "single utterance",
			stages: []taxonomy.Stage{taxonomy.StageClosing},
			want:   1,
		},
		{
			name:   "empty",
			stages: nil,
			want:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var as []*classify.Assignment
			for _, s := range tt.stages {
				as = append(as, assign(s, nil, taxonomy.LevelL1))
			}
			got := Compute(as, DefaultWeights()).ProgressionQuality
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ProgressionQuality = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverallComplexityWeights(t *testing.T) {
	as := []*classify.Assignment{
		assign(taxonomy.StageIntroduction, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL2),
		assign(taxonomy.StageDevelopment, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
	}

	equal := Compute(as, DefaultWeights())
	wantEqual := (equal.CognitiveDiversity + equal.InstructionalVariety + equal.ProgressionQuality) / 3
	if math.Abs(equal.OverallComplexity-wantEqual) > 1e-9 {
		t.Errorf("OverallComplexity = %v, want equal-weight mean %v", equal.OverallComplexity, wantEqual)
	}

	// All weight on progression (which is 1 here) pushes the composite
	// to 1 regardless of the other components.
	skewed := Compute(as, Weights{Progression: 1})
	if math.Abs(skewed.OverallComplexity-1) > 1e-9 {
		t.Errorf("progression-only OverallComplexity = %v, want 1", skewed.OverallComplexity)
	}

	// Zero-value weights fall back to equal weighting.
	zero := Compute(as, Weights{})
	if math.Abs(zero.OverallComplexity-wantEqual) > 1e-9 {
		t.Errorf("zero-weight OverallComplexity = %v, want %v", zero.OverallComplexity, wantEqual)
	}
}

func TestScenarioAllIntroductionExplanationL1(t *testing.T) {
	as := []*classify.Assignment{
		assign(taxonomy.StageIntroduction, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageIntroduction, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
		assign(taxonomy.StageIntroduction, []taxonomy.Context{taxonomy.ContextExplanation}, taxonomy.LevelL1),
	}
	m := Compute(as, DefaultWeights())
	if m.CognitiveDiversity != 0 {
		t.Errorf("CognitiveDiversity = %v, want 0", m.CognitiveDiversity)
	}
	if m.InstructionalVariety != 0 {
		t.Errorf("InstructionalVariety = %v, want 0", m.InstructionalVariety)
	}
	if m.ProgressionQuality != 1 {
		t.Errorf("ProgressionQuality = %v, want 1", m.ProgressionQuality)
	}
}
