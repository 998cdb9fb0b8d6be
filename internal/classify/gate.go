package classify

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency bounds in-flight model calls when no limit is given.
const DefaultConcurrency = 8

// Gate is the single concurrency limit for outbound model calls. Both
// fan-out levels — utterances and the N votes within one dimension —
// acquire the same gate, so total in-flight calls never exceed the limit
// regardless of how the work is nested.
type Gate struct {
	sem *semaphore.Weighted
}

// NewGate creates a gate admitting at most limit concurrent calls.
func NewGate(limit int) *Gate {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	return &Gate{sem: semaphore.NewWeighted(int64(limit))}
}

// Acquire blocks until a slot is free or ctx is done.
func (g *Gate) Acquire(ctx context.Context) error {
	return g.sem.Acquire(ctx, 1)
}

// Release frees a slot taken by Acquire.
func (g *Gate) Release() {
	g.sem.Release(1)
}
