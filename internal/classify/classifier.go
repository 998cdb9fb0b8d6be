package classify

import (
	"context"

	"golang.org/x/sync/errgroup"

	"lectio/internal/checklist"
	"lectio/internal/llm"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

// Pipeline classifies one utterance on all three dimensions. The
// dimensions run concurrently; every underlying model call still
// acquires the shared gate, so nesting never multiplies in-flight
// calls past the limit.
type Pipeline struct {
	voter *Voter
}

// NewPipeline wires a client and voter over the given provider,
// checklist repository and gate.
func NewPipeline(provider llm.Provider, repo *checklist.Repository, gate *Gate, cfg Config) *Pipeline {
	client := NewClient(provider, repo, cfg)
	return &Pipeline{voter: NewVoter(client, gate, cfg.Votes)}
}

// Voter exposes the underlying voter, mainly for tests.
func (p *Pipeline) Voter() *Voter {
	return p.voter
}

// Classify resolves stage, context set and level for one utterance.
// A dimension that fails outright cancels the sibling dimensions (their
// remaining calls would be spent on an utterance that is already
// unclassified) and the error surfaces as *ClassificationError.
func (p *Pipeline) Classify(ctx context.Context, u transcript.Utterance) (*Assignment, error) {
	var stage, contexts, level *ConsensusResult

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		res, err := p.voter.ResolveLabel(ctx, u, taxonomy.DimensionStage)
		if err != nil {
			return err
		}
		stage = res
		return nil
	})
	g.Go(func() error {
		res, err := p.voter.ResolveSet(ctx, u)
		if err != nil {
			return err
		}
		contexts = res
		return nil
	})
	g.Go(func() error {
		res, err := p.voter.ResolveLabel(ctx, u, taxonomy.DimensionLevel)
		if err != nil {
			return err
		}
		level = res
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st, _ := taxonomy.ParseStage(stage.Label)
	lv, _ := taxonomy.ParseLevel(level.Label)
	ctxLabels := make([]taxonomy.Context, 0, len(contexts.Labels))
	for _, l := range contexts.Labels {
		if c, ok := taxonomy.ParseContext(l); ok {
			ctxLabels = append(ctxLabels, c)
		}
	}

	return &Assignment{
		UtteranceID:   u.ID,
		Stage:         st,
		Contexts:      ctxLabels,
		Level:         lv,
		LowConfidence: stage.LowConfidence || contexts.LowConfidence || level.LowConfidence,
		StageResult:   stage,
		ContextResult: contexts,
		LevelResult:   level,
	}, nil
}
