package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"radsweep-hq/radsweep/pkg/accounting"
	"radsweep-hq/radsweep/pkg/retention"
)

type recordingRecorder struct {
	mu       sync.Mutex
	outcomes []*Outcome
}

func (r *recordingRecorder) RecordRun(outcome *Outcome) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.outcomes = append(r.outcomes, outcome)
}

func (r *recordingRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.outcomes)
}

// stubJob is a Job with a canned run function.
type stubJob struct {
	name string
	run  func(ctx context.Context) (*retention.Result, error)
}

func (j *stubJob) Name() string        { return j.name }
func (j *stubJob) Description() string { return "stub" }
func (j *stubJob) Params() []ParamSpec { return nil }
func (j *stubJob) Run(ctx context.Context, _ Params) (*retention.Result, error) {
	return j.run(ctx)
}

func TestRunner_Success(t *testing.T) {
	registry, _ := newTestRegistry(t)
	recorder := &recordingRecorder{}
	runner := NewRunner(registry, &RunnerConfig{Recorder: recorder})

	outcome := runner.Run(context.Background(), "delete_old_auth_attempts", Params{"age_threshold_days": "30"})

	if !outcome.Succeeded() {
		t.Fatalf("outcome failed: %s", outcome.Error)
	}
	if _, err := uuid.Parse(outcome.RunID); err != nil {
		t.Errorf("RunID %q is not a UUID: %v", outcome.RunID, err)
	}
	if outcome.Affected() != 0 {
		t.Errorf("Affected() = %d, want 0", outcome.Affected())
	}
	if outcome.ErrorKind != KindNone {
		t.Errorf("ErrorKind = %q, want none", outcome.ErrorKind)
	}
	if recorder.count() != 1 {
		t.Errorf("recorder saw %d runs, want 1", recorder.count())
	}
	if runner.History().Last("delete_old_auth_attempts") != outcome {
		t.Error("History().Last() did not return the outcome")
	}
}

func TestRunner_FailureKinds(t *testing.T) {
	registry, store := newTestRegistry(t)
	runner := NewRunner(registry, nil)

	outcome := runner.Run(context.Background(), "no_such_job", nil)
	if outcome.Succeeded() || outcome.ErrorKind != KindUnknownJob {
		t.Errorf("unknown job: status %s kind %s", outcome.Status, outcome.ErrorKind)
	}

	outcome = runner.Run(context.Background(), "cleanup_stale_sessions", Params{"age_threshold_days": "-2"})
	if outcome.ErrorKind != KindInvalidArgument {
		t.Errorf("invalid argument: kind %s", outcome.ErrorKind)
	}

	store.FailWith(errors.New("connection refused"))
	outcome = runner.Run(context.Background(), "cleanup_stale_sessions", nil)
	if outcome.ErrorKind != KindStoreUnavailable {
		t.Errorf("store failure: kind %s", outcome.ErrorKind)
	}
	if !errors.Is(outcome.Err, accounting.ErrStoreUnavailable) {
		t.Errorf("Err = %v, want ErrStoreUnavailable", outcome.Err)
	}
	if outcome.Summary() == "" {
		t.Error("Summary() is empty for a failed run")
	}
}

func TestRunner_UnknownJobNotIndexed(t *testing.T) {
	registry, _ := newTestRegistry(t)
	recorder := &recordingRecorder{}
	runner := NewRunner(registry, &RunnerConfig{Recorder: recorder})

	for i := 0; i < 5; i++ {
		outcome := runner.Run(context.Background(), fmt.Sprintf("bogus-%d", i), nil)
		if outcome.ErrorKind != KindUnknownJob {
			t.Fatalf("kind = %s, want unknown_job", outcome.ErrorKind)
		}
	}

	if recorder.count() != 0 {
		t.Errorf("recorder saw %d runs, want 0", recorder.count())
	}
	if last := runner.History().Last("bogus-0"); last != nil {
		t.Errorf("Last(bogus-0) = %+v, want nil", last)
	}
	if got := len(runner.History().Recent(0)); got != 5 {
		t.Errorf("history holds %d outcomes, want 5", got)
	}
}

func TestRunner_RecoversPanic(t *testing.T) {
	registry := &Registry{jobs: make(map[string]Job)}
	registry.Register(&stubJob{name: "boom", run: func(context.Context) (*retention.Result, error) {
		panic("unexpected nil")
	}})

	runner := NewRunner(registry, nil)
	outcome := runner.Run(context.Background(), "boom", nil)

	if outcome.Succeeded() {
		t.Fatal("panicking job reported success")
	}
	if outcome.ErrorKind != KindInternal {
		t.Errorf("ErrorKind = %q, want internal", outcome.ErrorKind)
	}
}

func TestRunner_Timeout(t *testing.T) {
	registry := &Registry{jobs: make(map[string]Job)}
	registry.Register(&stubJob{name: "slow", run: func(ctx context.Context) (*retention.Result, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}})

	runner := NewRunner(registry, &RunnerConfig{Timeout: 20 * time.Millisecond})
	outcome := runner.Run(context.Background(), "slow", nil)

	if outcome.ErrorKind != KindTimeout {
		t.Errorf("ErrorKind = %q, want timeout", outcome.ErrorKind)
	}
}

func TestHistory(t *testing.T) {
	h := NewHistory(2)

	h.Add(&Outcome{RunID: "1", Job: "a"})
	h.Add(&Outcome{RunID: "2", Job: "b"})
	h.Add(&Outcome{RunID: "3", Job: "a"})

	recent := h.Recent(0)
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d outcomes, want 2", len(recent))
	}
	if recent[0].RunID != "3" || recent[1].RunID != "2" {
		t.Errorf("Recent() order = %s,%s, want 3,2", recent[0].RunID, recent[1].RunID)
	}
	if h.Last("a").RunID != "3" {
		t.Errorf("Last(a) = %s, want 3", h.Last("a").RunID)
	}
	if h.Last("missing") != nil {
		t.Error("Last(missing) should be nil")
	}
	if got := h.Recent(1); len(got) != 1 || got[0].RunID != "3" {
		t.Errorf("Recent(1) = %v", got)
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, KindNone},
		{"invalid", retention.NewInvalidArgumentError("x", "y", "z"), KindInvalidArgument},
		{"store", accounting.NewStorageError("memory", "ping", errors.New("down")), KindStoreUnavailable},
		{"store timeout", accounting.NewStorageError("sqlite", "delete_sessions", context.DeadlineExceeded), KindTimeout},
		{"other", errors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.err); got != tt.want {
				t.Errorf("Classify() = %q, want %q", got, tt.want)
			}
		})
	}
}
