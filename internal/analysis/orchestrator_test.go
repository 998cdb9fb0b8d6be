package analysis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"

	"lectio/internal/checklist"
	"lectio/internal/classify"
	"lectio/internal/llm"
	"lectio/internal/taxonomy"
	"lectio/internal/transcript"
)

func testUtterances(n int) []transcript.Utterance {
	us := make([]transcript.Utterance, n)
	for i := range us {
		us[i] = transcript.Utterance{
			ID:        fmt.Sprintf("u-%04d", i+1),
			Text:      fmt.Sprintf("Let's look at example %d together.", i+1),
			Timestamp: float64(i) * 5,
		}
	}
	return us
}

// fakeClassifier scripts per-utterance outcomes without model calls.
type fakeClassifier struct {
	assign  func(u transcript.Utterance) (*classify.Assignment, error)
	block   chan struct{} // when set, Classify waits here first
	started atomic.Int32
}

func (f *fakeClassifier) Classify(ctx context.Context, u transcript.Utterance) (*classify.Assignment, error) {
	f.started.Add(1)
	if f.block != nil {
		select {
		case <-f.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.assign != nil {
		return f.assign(u)
	}
	return &classify.Assignment{
		UtteranceID: u.ID,
		Stage:       taxonomy.StageIntroduction,
		Contexts:    []taxonomy.Context{taxonomy.ContextExplanation},
		Level:       taxonomy.LevelL1,
	}, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SweepEvery = 0 // no background sweeper in tests
	return cfg
}

func TestSubmitEmptyIsValidationError(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	o := New(&fakeClassifier{}, testConfig(), nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), nil)
	if job != nil {
		t.Errorf("job = %+v, want nil", job)
	}
	var vErr *JobValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *JobValidationError", err)
	}
}

func TestSubmitMalformedIsValidationError(t *testing.T) {
	o := New(&fakeClassifier{}, testConfig(), nil)
	defer o.Close()

	_, err := o.Submit(context.Background(), []transcript.Utterance{
		{ID: "u-1", Text: "   "},
	})
	var vErr *JobValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("error type = %T, want *JobValidationError", err)
	}
}

func TestJobCompletes(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	o := New(&fakeClassifier{}, testConfig(), nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), testUtterances(3))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if job.Status != StatusPending {
		t.Errorf("initial status = %s, want pending", job.Status)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := o.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if done.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	if done.Result == nil {
		t.Fatal("completed job has no result")
	}

	// All three scripted into the same cell.
	got := done.Result.Matrix.Counts["introduction"]["explanation"]["L1"]
	if got != 3 {
		t.Errorf(`Counts["introduction"]["explanation"]["L1"] = %d, want 3`, got)
	}
	if d := done.Result.Statistics.EducationalComplexity.CognitiveDiversity; d != 0 {
		t.Errorf("CognitiveDiversity = %v, want 0", d)
	}
	if done.Result.Counts.Classified != 3 || done.Result.Counts.Unclassified != 0 {
		t.Errorf("Counts = %+v", done.Result.Counts)
	}
	if done.Progress.Done != 3 {
		t.Errorf("Progress.Done = %d, want 3", done.Progress.Done)
	}
}

func TestUnclassifiedUtteranceDoesNotFailJob(t *testing.T) {
	fc := &fakeClassifier{
		assign: func(u transcript.Utterance) (*classify.Assignment, error) {
			if u.ID == "u-0002" {
				return nil, &classify.ClassificationError{
					UtteranceID: u.ID,
					Dimension:   taxonomy.DimensionStage,
					Err:         errors.New("all 3 votes failed"),
				}
			}
			return &classify.Assignment{
				UtteranceID: u.ID,
				Stage:       taxonomy.StageDevelopment,
				Contexts:    []taxonomy.Context{taxonomy.ContextQuestion},
				Level:       taxonomy.LevelL2,
			}, nil
		},
	}
	o := New(fc, testConfig(), nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), testUtterances(3))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := o.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if done.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed despite one failure", done.Status)
	}
	if done.Result.Counts.Classified != 2 || done.Result.Counts.Unclassified != 1 {
		t.Errorf("Counts = %+v", done.Result.Counts)
	}
	if len(done.Errors) != 1 || done.Errors[0].UtteranceID != "u-0002" {
		t.Errorf("Errors = %+v", done.Errors)
	}
	if done.Result.Matrix.Total != 2 {
		t.Errorf("Matrix.Total = %d, want 2 classified", done.Result.Matrix.Total)
	}
}

func TestCancelIsTerminal(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	block := make(chan struct{})
	fc := &fakeClassifier{block: block}
	o := New(fc, testConfig(), nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), testUtterances(4))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}

	// Let at least one classification start, then cancel.
	deadline := time.Now().Add(time.Second)
	for fc.started.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if err := o.Cancel(job.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}

	got, err := o.Get(job.ID)
	if err != nil {
		t.Fatalf("Get after cancel: %v", err)
	}
	if got.Status != StatusCancelled {
		t.Fatalf("status = %s, want cancelled immediately", got.Status)
	}

	// Drain in-flight work; the worker's completion transition must be
	// absorbed by the terminal state.
	close(block)
	time.Sleep(50 * time.Millisecond)

	for range 3 {
		got, err = o.Get(job.ID)
		if err != nil {
			t.Fatalf("Get: %v", err)
		}
		if got.Status != StatusCancelled {
			t.Fatalf("status reverted to %s after drain", got.Status)
		}
		time.Sleep(10 * time.Millisecond)
	}

	// Cancelling a terminal job is a no-op, not an error.
	if err := o.Cancel(job.ID); err != nil {
		t.Errorf("Cancel on terminal job: %v", err)
	}
}

func TestBudgetMovesJobToFailed(t *testing.T) {
	cfg := testConfig()
	cfg.Budget = 30 * time.Millisecond

	fc := &fakeClassifier{
		assign: func(u transcript.Utterance) (*classify.Assignment, error) {
			if u.ID == "u-0001" {
				return &classify.Assignment{
					UtteranceID: u.ID,
					Stage:       taxonomy.StageIntroduction,
					Level:       taxonomy.LevelL1,
				}, nil
			}
			time.Sleep(200 * time.Millisecond)
			return nil, context.DeadlineExceeded
		},
	}
	o := New(fc, cfg, nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), testUtterances(2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done, err := o.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if done.Status != StatusFailed {
		t.Fatalf("status = %s, want failed", done.Status)
	}
	if !strings.Contains(done.Message, "wall-clock budget") {
		t.Errorf("Message = %q, want timeout explanation", done.Message)
	}
	// Partial output survives: one utterance resolved in time.
	if done.Result == nil || done.Result.Counts.Classified != 1 {
		t.Errorf("partial result = %+v", done.Result)
	}
}

func TestGetUnknownIsNotFound(t *testing.T) {
	o := New(&fakeClassifier{}, testConfig(), nil)
	defer o.Close()

	if _, err := o.Get("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get = %v, want ErrNotFound", err)
	}
	if err := o.Cancel("nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cancel = %v, want ErrNotFound", err)
	}
}

func TestSubmitAfterCloseRejected(t *testing.T) {
	o := New(&fakeClassifier{}, testConfig(), nil)
	o.Close()

	if _, err := o.Submit(context.Background(), testUtterances(1)); !errors.Is(err, ErrClosed) {
		t.Errorf("Submit after Close = %v, want ErrClosed", err)
	}
}

// End to end against the real pipeline with a scripted provider: the
// orchestrator, voter and client compose without a single live call.
func TestEndToEndWithMockProvider(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreTopFunction("go.opencensus.io/stats/view.(*worker).start"))

	provider := &llm.MockProvider{
		Handler: func(req llm.Request) (*llm.Response, error) {
			var content string
			switch req.Schema.Name {
			case "classify-stage":
				content = `{"label":"development"}`
			case "classify-level":
				content = `{"label":"L2"}`
			case "context-check":
				match := strings.Contains(req.Messages[0].Content, "Function in question: question")
				content = fmt.Sprintf(`{"match":%v}`, match)
			}
			return &llm.Response{
				Content:    json.RawMessage(content),
				Model:      "mock",
				StopReason: llm.StopEnd,
			}, nil
		},
	}
	pipeline := classify.NewPipeline(provider, checklist.NewRepository(), classify.NewGate(4), classify.DefaultConfig())

	o := New(pipeline, testConfig(), nil)
	defer o.Close()

	job, err := o.Submit(context.Background(), testUtterances(2))
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	done, err := o.Wait(ctx, job.ID)
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}

	if done.Status != StatusCompleted {
		t.Fatalf("status = %s, want completed", done.Status)
	}
	if got := done.Result.Matrix.Counts["development"]["question"]["L2"]; got != 2 {
		t.Errorf(`Counts["development"]["question"]["L2"] = %d, want 2`, got)
	}
	// Per utterance: 3 stage votes + 3 level votes + 5 labels x 3
	// context votes = 21 calls.
	if provider.CallCount() != 42 {
		t.Errorf("CallCount = %d, want 42", provider.CallCount())
	}
}
