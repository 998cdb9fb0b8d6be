// Package matrix aggregates classified utterances into the 3D
// stage×context×level frequency structure and its visualization
// projections. Axis orders come from the taxonomy package and never
// change between runs, so charts built on this output do not jitter.
package matrix

import (
	"sort"

	"lectio/internal/classify"
	"lectio/internal/taxonomy"
)

// Entry is one utterance's position in the cube.
type Entry struct {
	UtteranceID   string   `json:"utterance_id"`
	Stage         string   `json:"stage"`
	Contexts      []string `json:"contexts"`
	Level         string   `json:"level"`
	LowConfidence bool     `json:"low_confidence,omitempty"`
}

// Dimensions names the axes in canonical order. The context axis
// carries the synthetic "none" column last.
type Dimensions struct {
	Stage   []string `json:"stage"`
	Context []string `json:"context"`
	Level   []string `json:"level"`
}

// Heatmap is one level's stage×context grid. Rows follow the stage
// axis, columns the context axis, both as listed in Dimensions.
type Heatmap struct {
	Level string  `json:"level"`
	Cells [][]int `json:"cells"`
}

// Combination is one (stage, context, level) cell ranked for the
// top-combinations view.
type Combination struct {
	Stage   string  `json:"stage"`
	Context string  `json:"context"`
	Level   string  `json:"level"`
	Count   int     `json:"count"`
	Percent float64 `json:"percent"`
}

// Distributions are flat per-axis label counts, directly chartable.
type Distributions struct {
	Stage   map[string]int `json:"stage"`
	Context map[string]int `json:"context"`
	Level   map[string]int `json:"level"`
}

// Matrix is the sparse cube plus its derived projections.
type Matrix struct {
	Dimensions Dimensions `json:"dimensions"`

	// Data is the flat per-utterance assignment list in input order.
	Data []Entry `json:"data"`

	// Counts nests stage -> context -> level -> count. An utterance is
	// counted once per context it holds; an empty context set counts
	// under "none", so slicing by stage or level alone always sums back
	// to Total.
	Counts map[string]map[string]map[string]int `json:"counts"`

	// HeatmapData holds one stage×context grid per level, keyed by the
	// level label.
	HeatmapData map[string]Heatmap `json:"heatmap_data"`

	// Total is the number of classified utterances aggregated.
	Total int `json:"total"`
}

// contextColumns is the context axis: votable labels plus "none" last.
func contextColumns() []string {
	labels := taxonomy.Labels(taxonomy.DimensionContext)
	return append(labels, string(taxonomy.ContextNone))
}

// Build aggregates assignments into the cube. Deterministic: the same
// input produces identical output, including iteration-order-sensitive
// projections.
func Build(assignments []*classify.Assignment) *Matrix {
	stages := taxonomy.Labels(taxonomy.DimensionStage)
	contexts := contextColumns()
	levels := taxonomy.Labels(taxonomy.DimensionLevel)

	m := &Matrix{
		Dimensions: Dimensions{
			Stage:   stages,
			Context: contexts,
			Level:   levels,
		},
		Data:        make([]Entry, 0, len(assignments)),
		Counts:      make(map[string]map[string]map[string]int),
		HeatmapData: make(map[string]Heatmap, len(levels)),
		Total:       len(assignments),
	}

	stageIdx := indexOf(stages)
	contextIdx := indexOf(contexts)
	levelIdx := indexOf(levels)

	grids := make(map[string][][]int, len(levels))
	for _, level := range levels {
		grid := make([][]int, len(stages))
		for i := range grid {
			grid[i] = make([]int, len(contexts))
		}
		grids[level] = grid
	}

	for _, a := range assignments {
		ctxLabels := entryContexts(a)

		m.Data = append(m.Data, Entry{
			UtteranceID:   a.UtteranceID,
			Stage:         string(a.Stage),
			Contexts:      ctxLabels,
			Level:         string(a.Level),
			LowConfidence: a.LowConfidence,
		})

		stage := string(a.Stage)
		level := string(a.Level)
		cells := ctxLabels
		if len(cells) == 0 {
			cells = []string{string(taxonomy.ContextNone)}
		}
		for _, ctx := range cells {
			bump(m.Counts, stage, ctx, level)
			si, ok1 := stageIdx[stage]
			ci, ok2 := contextIdx[ctx]
			if ok1 && ok2 {
				if _, ok := levelIdx[level]; ok {
					grids[level][si][ci]++
				}
			}
		}
	}

	for _, level := range levels {
		m.HeatmapData[level] = Heatmap{Level: level, Cells: grids[level]}
	}
	return m
}

// TopCombinations ranks cells by count descending; ties break by
// canonical stage, then context, then level order, so the list is
// stable across runs. Percent is of Total (utterances, not cells: a
// multi-context utterance contributes to several combinations, so
// percentages can sum past 100).
func (m *Matrix) TopCombinations(k int) []Combination {
	stageIdx := indexOf(m.Dimensions.Stage)
	contextIdx := indexOf(m.Dimensions.Context)
	levelIdx := indexOf(m.Dimensions.Level)

	var combos []Combination
	for stage, byCtx := range m.Counts {
		for ctx, byLevel := range byCtx {
			for level, count := range byLevel {
				if count == 0 {
					continue
				}
				pct := 0.0
				if m.Total > 0 {
					pct = float64(count) / float64(m.Total) * 100
				}
				combos = append(combos, Combination{
					Stage:   stage,
					Context: ctx,
					Level:   level,
					Count:   count,
					Percent: pct,
				})
			}
		}
	}

	sort.Slice(combos, func(i, j int) bool {
		a, b := combos[i], combos[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if stageIdx[a.Stage] != stageIdx[b.Stage] {
			return stageIdx[a.Stage] < stageIdx[b.Stage]
		}
		if contextIdx[a.Context] != contextIdx[b.Context] {
			return contextIdx[a.Context] < contextIdx[b.Context]
		}
		return levelIdx[a.Level] < levelIdx[b.Level]
	})

	if k > 0 && len(combos) > k {
		combos = combos[:k]
	}
	return combos
}

// Distributions flattens the cube into per-axis label counts. Stage and
// level counts sum to Total; context counts may exceed it because one
// utterance can hold several contexts.
func (m *Matrix) Distributions() Distributions {
	d := Distributions{
		Stage:   make(map[string]int, len(m.Dimensions.Stage)),
		Context: make(map[string]int, len(m.Dimensions.Context)),
		Level:   make(map[string]int, len(m.Dimensions.Level)),
	}
	for _, label := range m.Dimensions.Stage {
		d.Stage[label] = 0
	}
	for _, label := range m.Dimensions.Context {
		d.Context[label] = 0
	}
	for _, label := range m.Dimensions.Level {
		d.Level[label] = 0
	}

	for _, e := range m.Data {
		d.Stage[e.Stage]++
		d.Level[e.Level]++
		if len(e.Contexts) == 0 {
			d.Context[string(taxonomy.ContextNone)]++
			continue
		}
		for _, c := range e.Contexts {
			d.Context[c]++
		}
	}
	return d
}

func entryContexts(a *classify.Assignment) []string {
	out := make([]string, 0, len(a.Contexts))
	for _, c := range a.Contexts {
		out = append(out, string(c))
	}
	return out
}

func bump(counts map[string]map[string]map[string]int, stage, ctx, level string) {
	byCtx, ok := counts[stage]
	if !ok {
		byCtx = make(map[string]map[string]int)
		counts[stage] = byCtx
	}
	byLevel, ok := byCtx[ctx]
	if !ok {
		byLevel = make(map[string]int)
		byCtx[ctx] = byLevel
	}
	byLevel[level]++
}

func indexOf(labels []string) map[string]int {
	idx := make(map[string]int, len(labels))
	for i, l := range labels {
		idx[l] = i
	}
	return idx
}
