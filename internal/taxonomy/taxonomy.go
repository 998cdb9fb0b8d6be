// Package taxonomy fixes the label vocabulary for the three analytical
// dimensions: instructional stage, pedagogical context, cognitive level.
// Orders here are canonical: aggregation, tie-breaking and rendering all
// depend on them staying stable.
package taxonomy

// Dimension identifies one of the three classification axes.
type Dimension string

const (
	DimensionStage   Dimension = "stage"
	DimensionContext Dimension = "context"
	DimensionLevel   Dimension = "level"
)

// Dimensions returns all dimensions in canonical order.
func Dimensions() []Dimension {
	return []Dimension{DimensionStage, DimensionContext, DimensionLevel}
}

// ParseDimension returns the dimension for s, or false if unknown.
func ParseDimension(s string) (Dimension, bool) {
	switch Dimension(s) {
	case DimensionStage, DimensionContext, DimensionLevel:
		return Dimension(s), true
	}
	return "", false
}

// Stage is the instructional phase of a lesson. Single-label.
type Stage string

const (
	StageIntroduction Stage = "introduction"
	StageDevelopment  Stage = "development"
	StageClosing      Stage = "closing"
)

// Stages returns the stages in lesson order. The order doubles as the
// tie-break priority and the forward direction for progression scoring.
func Stages() []Stage {
	return []Stage{StageIntroduction, StageDevelopment, StageClosing}
}

// ParseStage returns the stage for s, or false if unknown.
func ParseStage(s string) (Stage, bool) {
	switch Stage(s) {
	case StageIntroduction, StageDevelopment, StageClosing:
		return Stage(s), true
	}
	return "", false
}

// StageIndex returns the position of s in lesson order, or -1.
func StageIndex(s Stage) int {
	for i, st := range Stages() {
		if st == s {
			return i
		}
	}
	return -1
}

// Context is a pedagogical function of an utterance. Multi-label: an
// utterance may hold zero, one or several contexts.
type Context string

const (
	ContextExplanation  Context = "explanation"
	ContextQuestion     Context = "question"
	ContextFeedback     Context = "feedback"
	ContextFacilitation Context = "facilitation"
	ContextManagement   Context = "management"

	// ContextNone is the aggregation bucket for utterances whose context
	// set came back empty. It is never voted on and never appears in a
	// checklist.
	ContextNone Context = "none"
)

// Contexts returns the votable context labels in canonical order.
// ContextNone is excluded; aggregation appends it last.
func Contexts() []Context {
	return []Context{
		ContextExplanation,
		ContextQuestion,
		ContextFeedback,
		ContextFacilitation,
		ContextManagement,
	}
}

// ParseContext returns the votable context for s, or false if unknown.
func ParseContext(s string) (Context, bool) {
	switch Context(s) {
	case ContextExplanation, ContextQuestion, ContextFeedback,
		ContextFacilitation, ContextManagement:
		return Context(s), true
	}
	return "", false
}

// ContextIndex returns the position of c in canonical order, with
// ContextNone ranked after all votable labels. Unknown contexts return -1.
func ContextIndex(c Context) int {
	for i, ctx := range Contexts() {
		if ctx == c {
			return i
		}
	}
	if c == ContextNone {
		return len(Contexts())
	}
	return -1
}

// Level is the cognitive demand tier of an utterance. Single-label.
type Level string

const (
	LevelL1 Level = "L1" // recall, understand
	LevelL2 Level = "L2" // apply, analyze
	LevelL3 Level = "L3" // synthesize, evaluate
)

// Levels returns the levels from lowest to highest demand.
func Levels() []Level {
	return []Level{LevelL1, LevelL2, LevelL3}
}

// ParseLevel returns the level for s, or false if unknown.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelL1, LevelL2, LevelL3:
		return Level(s), true
	}
	return "", false
}

// LevelIndex returns the position of l from lowest demand, or -1.
func LevelIndex(l Level) int {
	for i, lv := range Levels() {
		if lv == l {
			return i
		}
	}
	return -1
}

// Labels returns the votable label strings for a dimension in canonical
// order. Unknown dimensions return nil.
func Labels(d Dimension) []string {
	switch d {
	case DimensionStage:
		out := make([]string, 0, len(Stages()))
		for _, s := range Stages() {
			out = append(out, string(s))
		}
		return out
	case DimensionContext:
		out := make([]string, 0, len(Contexts()))
		for _, c := range Contexts() {
			out = append(out, string(c))
		}
		return out
	case DimensionLevel:
		out := make([]string, 0, len(Levels()))
		for _, l := range Levels() {
			out = append(out, string(l))
		}
		return out
	}
	return nil
}
