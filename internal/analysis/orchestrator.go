package analysis

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"lectio/internal/classify"
	"lectio/internal/jobs"
	"lectio/internal/matrix"
	"lectio/internal/metrics"
	"lectio/internal/transcript"
)

// ErrNotFound reports a job id that is unknown or already evicted.
var ErrNotFound = errors.New("analysis not found")

// ErrClosed rejects submissions after Close.
var ErrClosed = errors.New("orchestrator closed")

// Classifier resolves one utterance on all three dimensions.
type Classifier interface {
	Classify(ctx context.Context, u transcript.Utterance) (*classify.Assignment, error)
}

// Config tunes the orchestrator.
type Config struct {
	// Concurrency bounds the utterance-level fan-out. The model-call
	// gate below it enforces the global in-flight limit; this just
	// keeps the number of simultaneously open consensus rounds sane.
	Concurrency int

	// Budget is the wall-clock limit per job. Zero disables it.
	Budget time.Duration

	// TopK is how many top combinations a result carries.
	TopK int

	// Weights feed the overall complexity composite.
	Weights metrics.Weights

	// JobTTL and SweepEvery configure the result cache.
	JobTTL     time.Duration
	SweepEvery time.Duration
}

// DefaultConfig returns the defaults used by the CLI and server.
func DefaultConfig() Config {
	return Config{
		Concurrency: classify.DefaultConcurrency,
		Budget:      10 * time.Minute,
		TopK:        10,
		Weights:     metrics.DefaultWeights(),
		JobTTL:      jobs.DefaultTTL,
		SweepEvery:  time.Minute,
	}
}

// Orchestrator owns the job table and the worker goroutines. All job
// mutation flows through the store's locked Update; workers and
// Cancel never race on state.
type Orchestrator struct {
	classifier Classifier
	cfg        Config
	log        *zap.Logger
	store      *jobs.Store[*Job]

	mu      sync.Mutex
	closed  bool
	workers sync.WaitGroup
}

// New creates an orchestrator. logger may be nil.
func New(classifier Classifier, cfg Config, logger *zap.Logger) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = classify.DefaultConcurrency
	}
	if cfg.TopK <= 0 {
		cfg.TopK = DefaultConfig().TopK
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{
		classifier: classifier,
		cfg:        cfg,
		log:        logger,
		store:      jobs.New[*Job](cfg.JobTTL, cfg.SweepEvery),
	}
}

// Submit validates the utterance sequence and starts an async job.
// Malformed input fails synchronously with *JobValidationError and no
// job record is created.
func (o *Orchestrator) Submit(ctx context.Context, utterances []transcript.Utterance) (*Job, error) {
	if err := transcript.Validate(utterances); err != nil {
		return nil, &JobValidationError{Err: err}
	}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil, ErrClosed
	}

	job := &Job{
		ID:         uuid.NewString(),
		Status:     StatusPending,
		Progress:   Progress{Total: len(utterances)},
		CreatedAt:  time.Now(),
		utterances: utterances,
	}
	o.store.Put(job.ID, job)

	o.workers.Add(1)
	o.mu.Unlock()

	o.log.Info("analysis submitted",
		zap.String("analysis_id", job.ID),
		zap.Int("utterances", len(utterances)))

	go o.run(job.ID, utterances)

	return job.Clone(), nil
}

// Get returns a snapshot of the job, or ErrNotFound after eviction.
func (o *Orchestrator) Get(id string) (*Job, error) {
	var snapshot *Job
	ok := o.store.View(id, func(j *Job) {
		snapshot = j.Clone()
	})
	if !ok {
		return nil, ErrNotFound
	}
	return snapshot, nil
}

// Cancel moves a pending or processing job to cancelled immediately.
// Dispatch stops at the next utterance boundary; in-flight calls drain
// rather than being hard-aborted, since their cost is already incurred.
// Cancelling a terminal job is a no-op.
func (o *Orchestrator) Cancel(id string) error {
	err := o.store.Update(id, func(j *Job) error {
		if j.Status.Terminal() {
			return nil
		}
		j.Status = StatusCancelled
		j.Message = "cancelled by request"
		j.FinishedAt = time.Now()
		return nil
	})
	if errors.Is(err, jobs.ErrNotFound) {
		return ErrNotFound
	}
	if err == nil {
		o.log.Info("analysis cancelled", zap.String("analysis_id", id))
	}
	return err
}

// Wait polls until the job reaches a terminal state or ctx is done.
func (o *Orchestrator) Wait(ctx context.Context, id string) (*Job, error) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		job, err := o.Get(id)
		if err != nil {
			return nil, err
		}
		if job.Status.Terminal() {
			return job, nil
		}

		select {
		case <-ctx.Done():
			return job, ctx.Err()
		case <-ticker.C:
		}
	}
}

// Close stops accepting submissions and waits for running workers to
// drain, then shuts the job store down.
func (o *Orchestrator) Close() {
	o.mu.Lock()
	o.closed = true
	o.mu.Unlock()

	o.workers.Wait()
	o.store.Close()
}

// run is the per-job worker.
func (o *Orchestrator) run(id string, utterances []transcript.Utterance) {
	defer o.workers.Done()

	ctx := context.Background()
	if o.cfg.Budget > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.cfg.Budget)
		defer cancel()
	}

	// pending -> processing. Fails only if Cancel won the race.
	err := o.store.Update(id, func(j *Job) error {
		if !j.Status.CanTransition(StatusProcessing) {
			return fmt.Errorf("job is %s", j.Status)
		}
		j.Status = StatusProcessing
		j.StartedAt = time.Now()
		return nil
	})
	if err != nil {
		o.log.Info("analysis never started", zap.String("analysis_id", id), zap.Error(err))
		return
	}

	// Fan out over utterances. Slots are indexed so no ordering is
	// imposed on completion; the barrier below is g.Wait.
	assignments := make([]*classify.Assignment, len(utterances))
	uttErrs := make([]error, len(utterances))

	g := &errgroup.Group{}
	g.SetLimit(o.cfg.Concurrency)

	for i, u := range utterances {
		if o.cancelled(id) {
			break
		}
		g.Go(func() error {
			a, err := o.classifier.Classify(ctx, u)
			if err != nil {
				uttErrs[i] = err
				o.log.Warn("utterance unclassified",
					zap.String("analysis_id", id),
					zap.String("utterance_id", u.ID),
					zap.Error(err))
			} else {
				assignments[i] = a
			}

			// Progress bumps serialize through the store lock.
			_ = o.store.Update(id, func(j *Job) error {
				j.Progress.Done++
				return nil
			})
			return nil
		})
	}
	_ = g.Wait() // aggregation barrier

	result, counts := o.assemble(utterances, assignments)

	timedOut := ctx.Err() != nil
	finalErr := o.store.Update(id, func(j *Job) error {
		for i, err := range uttErrs {
			if err != nil {
				j.Errors = append(j.Errors, UtteranceError{
					UtteranceID: utterances[i].ID,
					Message:     err.Error(),
				})
			}
		}

		// Terminal states absorb: a cancelled job keeps its state and
		// simply never receives the completed transition.
		switch {
		case timedOut && j.Status.CanTransition(StatusFailed):
			j.Status = StatusFailed
			j.Message = (&OrchestrationTimeout{JobID: id, Budget: o.cfg.Budget}).Error()
			j.Result = result // partial, when anything resolved in time
			j.FinishedAt = time.Now()
		case j.Status.CanTransition(StatusCompleted):
			j.Status = StatusCompleted
			j.Result = result
			j.FinishedAt = time.Now()
		}
		return nil
	})
	if finalErr != nil {
		o.log.Warn("analysis finished after eviction", zap.String("analysis_id", id), zap.Error(finalErr))
		return
	}

	o.log.Info("analysis finished",
		zap.String("analysis_id", id),
		zap.Int("classified", counts.Classified),
		zap.Int("unclassified", counts.Unclassified),
		zap.Int("low_confidence", counts.LowConfidence),
		zap.Bool("timed_out", timedOut))
}

// assemble runs the pure post-barrier steps: matrix build, metric
// derivation, completeness counts.
func (o *Orchestrator) assemble(utterances []transcript.Utterance, assignments []*classify.Assignment) (*Result, Counts) {
	classified := make([]*classify.Assignment, 0, len(assignments))
	var counts Counts
	for i := range utterances {
		switch {
		case assignments[i] != nil:
			classified = append(classified, assignments[i])
			counts.Classified++
			if assignments[i].LowConfidence {
				counts.LowConfidence++
			}
		default:
			// Covers both classification failures and utterances never
			// dispatched before cancellation or timeout.
			counts.Unclassified++
		}
	}

	m := matrix.Build(classified)
	return &Result{
		Matrix: m,
		Statistics: Statistics{
			TotalUtterances:       len(utterances),
			TopCombinations:       m.TopCombinations(o.cfg.TopK),
			EducationalComplexity: metrics.Compute(classified, o.cfg.Weights),
		},
		Counts: counts,
	}, counts
}

// cancelled reports whether the job has been moved to cancelled.
func (o *Orchestrator) cancelled(id string) bool {
	cancelled := false
	o.store.View(id, func(j *Job) {
		cancelled = j.Status == StatusCancelled
	})
	return cancelled
}
