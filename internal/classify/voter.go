package classify

import (
	"context"
	"fmt"
	"sync"

	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

// tally is the vote accumulator for one single-label consensus round.
// It is the round's state machine: pending until the first vote
// arrives, collecting while votes land from concurrent goroutines, and
// finished by resolve into resolved, low-confidence or failed. All
// mutation happens under mu.
type tally struct {
	mu        sync.Mutex
	n         int
	collected map[string]int
	failed    int
	lastErr   error
}

func newTally(n int) *tally {
	return &tally{
		n:         n,
		collected: make(map[string]int, 4),
	}
}

func (t *tally) add(v Vote) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if v.Err != nil {
		t.failed++
		t.lastErr = v.Err
		return
	}
	t.collected[v.Label]++
}

// majorityThreshold is the votes a label needs to win outright: ⌈N/2⌉
// of the ORIGINAL N. Failed votes still count against N, so enough
// failures make the threshold unreachable and force a low-confidence
// plurality result.
func majorityThreshold(n int) int {
	return (n + 1) / 2
}

// resolve finishes a single-label round. The winner is the label with
// the most votes; among equals the earlier label in canonical order
// wins, which keeps ties deterministic (earlier stage, lower level). A
// winner below the majority threshold, or a shared top count, flags
// low confidence. A round with zero collected votes fails.
func (t *tally) resolve(dim taxonomy.Dimension) (*ConsensusResult, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	successes := 0
	for _, v := range t.collected {
		successes += v
	}
	if successes == 0 {
		if t.lastErr != nil {
			return nil, fmt.Errorf("all %d votes failed: %w", t.n, t.lastErr)
		}
		return nil, fmt.Errorf("all %d votes failed", t.n)
	}

	best := ""
	bestVotes := 0
	tied := false
	for _, label := range taxonomy.Labels(dim) {
		v := t.collected[label]
		if v > bestVotes {
			best = label
			bestVotes = v
			tied = false
		} else if v == bestVotes && v > 0 && best != label {
			tied = true
		}
	}

	low := tied || bestVotes < majorityThreshold(t.n)

	votes := make(map[string]int, len(t.collected))
	for k, v := range t.collected {
		votes[k] = v
	}

	return &ConsensusResult{
		Dimension:      dim,
		Label:          best,
		Votes:          votes,
		FailedVotes:    t.failed,
		AgreementRatio: float64(bestVotes) / float64(t.n),
		LowConfidence:  low,
	}, nil
}

// Voter runs consensus rounds: N independent classification calls per
// utterance/dimension, dispatched concurrently through the shared gate.
type Voter struct {
	client *Client
	gate   *Gate
	n      int
}

// NewVoter creates a voter. n <= 0 falls back to the client config's
// vote count.
func NewVoter(client *Client, gate *Gate, n int) *Voter {
	if n <= 0 {
		n = client.cfg.Votes
	}
	if n <= 0 {
		n = DefaultConfig().Votes
	}
	return &Voter{client: client, gate: gate, n: n}
}

// Votes reports N.
func (v *Voter) Votes() int {
	return v.n
}

// ResolveLabel runs one single-label consensus round for dim.
func (v *Voter) ResolveLabel(ctx context.Context, u transcript.Utterance, dim taxonomy.Dimension) (*ConsensusResult, error) {
	t := newTally(v.n)

	var wg sync.WaitGroup
	for run := 0; run < v.n; run++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			vote := Vote{Run: run}

			if err := v.gate.Acquire(ctx); err != nil {
				vote.Err = err
				t.add(vote)
				return
			}
			defer v.gate.Release()

			vote.Label, vote.Err = v.client.ClassifyLabel(ctx, u, dim)
			t.add(vote)
		}()
	}
	wg.Wait()

	res, err := t.resolve(dim)
	if err != nil {
		return nil, &ClassificationError{UtteranceID: u.ID, Dimension: dim, Err: err}
	}
	return res, nil
}

// ResolveSet runs the multi-label context round: every candidate label
// gets its own N independent yes/no votes, and is included iff yes
// votes reach the majority threshold. One candidate's calls never
// influence another's; the decomposition is what yields per-label
// confidence.
func (v *Voter) ResolveSet(ctx context.Context, u transcript.Utterance) (*ConsensusResult, error) {
	labels := taxonomy.Labels(taxonomy.DimensionContext)

	type candidateTally struct {
		yes    int
		no     int
		failed int
		err    error
	}
	tallies := make([]candidateTally, len(labels))
	var mu sync.Mutex

	var wg sync.WaitGroup
	for i, label := range labels {
		for run := 0; run < v.n; run++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := v.gate.Acquire(ctx); err != nil {
					mu.Lock()
					tallies[i].failed++
					tallies[i].err = err
					mu.Unlock()
					return
				}
				defer v.gate.Release()

				match, err := v.client.CheckContext(ctx, u, label)
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					tallies[i].failed++
					tallies[i].err = err
				case match:
					tallies[i].yes++
				default:
					tallies[i].no++
				}
			}()
		}
	}
	wg.Wait()

	threshold := majorityThreshold(v.n)
	votes := make(map[string]int, len(labels))
	var included []string
	low := false
	failed := 0
	successes := 0
	decisiveSum := 0.0
	var lastErr error

	for i, label := range labels {
		ct := tallies[i]
		votes[label] = ct.yes
		failed += ct.failed
		successes += ct.yes + ct.no
		if ct.err != nil {
			lastErr = ct.err
		}

		if ct.yes >= threshold {
			included = append(included, label)
		}
		// A candidate is decisive when either side reached the
		// threshold; anything else means failures ate the margin.
		if ct.yes < threshold && ct.no < threshold {
			low = true
		}
		decisive := ct.yes
		if ct.no > decisive {
			decisive = ct.no
		}
		decisiveSum += float64(decisive) / float64(v.n)
	}

	if successes == 0 {
		err := fmt.Errorf("all %d context votes failed", len(labels)*v.n)
		if lastErr != nil {
			err = fmt.Errorf("all %d context votes failed: %w", len(labels)*v.n, lastErr)
		}
		return nil, &ClassificationError{UtteranceID: u.ID, Dimension: taxonomy.DimensionContext, Err: err}
	}

	return &ConsensusResult{
		Dimension:      taxonomy.DimensionContext,
		Labels:         included,
		Votes:          votes,
		FailedVotes:    failed,
		AgreementRatio: decisiveSum / float64(len(labels)),
		LowConfidence:  low,
	}, nil
}
