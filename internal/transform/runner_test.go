package transform

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

// fakeTransformer runs a scripted function per call and records the
// batches it received.
type fakeTransformer struct {
	mu    sync.Mutex
	calls int
	fn    func(req Request) (*Response, error)
}

func (f *fakeTransformer) Transform(ctx context.Context, req Request) (*Response, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return f.fn(req)
}

func echoTransformer() *fakeTransformer {
	return &fakeTransformer{fn: func(req Request) (*Response, error) {
		resp := &Response{Usage: Usage{InputTokens: 10, OutputTokens: 5, Requests: 1}}
		for _, it := range req.Items {
			resp.Items = append(resp.Items, ResultItem{ID: it.ID, Text: strings.ToUpper(it.Text)})
		}
		return resp, nil
	}}
}

func makeItems(n int) []Item {
	items := make([]Item, n)
	for i := range items {
		items[i] = Item{ID: fmt.Sprintf("%d", i+1), Text: fmt.Sprintf("text %d", i+1)}
	}
	return items
}

func TestSplitBatches(t *testing.T) {
	tests := []struct {
		n, count  int
		wantSizes []int
	}{
		{10, 1, []int{10}},
		{10, 3, []int{3, 3, 4}},
		{10, 10, []int{1, 1, 1, 1, 1, 1, 1, 1, 1, 1}},
		{3, 7, []int{1, 1, 1}},
		{5, 0, []int{5}},
		{4, 2, []int{2, 2}},
	}

	for _, tt := range tests {
		batches := splitBatches(makeItems(tt.n), tt.count)
		if len(batches) != len(tt.wantSizes) {
			t.Errorf("splitBatches(%d, %d): got %d batches, want %d",
				tt.n, tt.count, len(batches), len(tt.wantSizes))
			continue
		}
		next := 1
		for i, b := range batches {
			if len(b) != tt.wantSizes[i] {
				t.Errorf("splitBatches(%d, %d): batch %d size %d, want %d",
					tt.n, tt.count, i, len(b), tt.wantSizes[i])
			}
			for _, it := range b {
				if want := fmt.Sprintf("%d", next); it.ID != want {
					t.Errorf("splitBatches(%d, %d): id %q out of order, want %q",
						tt.n, tt.count, it.ID, want)
				}
				next++
			}
		}
	}
}

func TestRunnerPreservesSourceOrder(t *testing.T) {
	for _, batchCount := range []int{1, 2, 3, 10} {
		t.Run(fmt.Sprintf("batches=%d", batchCount), func(t *testing.T) {
			items := makeItems(10)
			runner := NewRunner(echoTransformer(), RunnerConfig{BatchCount: batchCount})

			result, err := runner.Run(context.Background(), "upcase", items)
			if err != nil {
				t.Fatalf("Run error: %v", err)
			}
			if result.State != StateSucceeded {
				t.Errorf("state = %s, want %s", result.State, StateSucceeded)
			}
			if len(result.Items) != 10 {
				t.Fatalf("got %d items, want 10", len(result.Items))
			}
			for i, it := range result.Items {
				if want := fmt.Sprintf("%d", i+1); it.ID != want {
					t.Errorf("item %d id = %q, want %q", i, it.ID, want)
				}
				if want := fmt.Sprintf("TEXT %d", i+1); it.Text != want {
					t.Errorf("item %d text = %q, want %q", i, it.Text, want)
				}
			}
			wantBatches := batchCount
			if wantBatches < 1 {
				wantBatches = 1
			}
			if wantBatches > 10 {
				wantBatches = 10
			}
			if result.Batches != wantBatches {
				t.Errorf("batches = %d, want %d", result.Batches, wantBatches)
			}
			if result.Usage.Requests != wantBatches {
				t.Errorf("usage requests = %d, want %d", result.Usage.Requests, wantBatches)
			}
		})
	}
}

func TestRunnerEmptyItems(t *testing.T) {
	fake := echoTransformer()
	runner := NewRunner(fake, RunnerConfig{BatchCount: 3})

	result, err := runner.Run(context.Background(), "noop", nil)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.State != StateSucceeded || result.Batches != 0 {
		t.Errorf("result = %+v", result)
	}
	if fake.calls != 0 {
		t.Errorf("transformer called %d times for empty input", fake.calls)
	}
}

func TestRunnerProgressMonotonic(t *testing.T) {
	var pcts []float64
	runner := NewRunner(echoTransformer(), RunnerConfig{
		BatchCount: 4,
		OnProgress: func(completed, total int, pct float64) {
			pcts = append(pcts, pct)
		},
	})

	if _, err := runner.Run(context.Background(), "upcase", makeItems(8)); err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if len(pcts) != 5 {
		t.Fatalf("got %d progress reports, want 5", len(pcts))
	}
	if pcts[0] != 0.15 {
		t.Errorf("first report = %v, want 0.15", pcts[0])
	}
	if last := pcts[len(pcts)-1]; last != 0.85 {
		t.Errorf("final report = %v, want 0.85", last)
	}
	for i := 1; i < len(pcts); i++ {
		if pcts[i] < pcts[i-1] {
			t.Errorf("progress regressed: %v after %v", pcts[i], pcts[i-1])
		}
	}
}

// a failing batch fails the run but keeps the usage accounting from
// batches that already succeeded
func TestRunnerFailureKeepsUsage(t *testing.T) {
	gate := make(chan struct{})
	fake := &fakeTransformer{fn: func(req Request) (*Response, error) {
		if req.Items[0].ID == "1" {
			resp := &Response{
				Usage: Usage{InputTokens: 10, OutputTokens: 5, Requests: 1},
			}
			for _, it := range req.Items {
				resp.Items = append(resp.Items, ResultItem{ID: it.ID, Text: it.Text})
			}
			close(gate)
			return resp, nil
		}
		<-gate
		return nil, &ProviderError{Provider: ProviderOpenAI, Kind: KindServerError}
	}}

	runner := NewRunner(fake, RunnerConfig{BatchCount: 2})
	result, err := runner.Run(context.Background(), "noop", makeItems(4))

	if err == nil {
		t.Fatal("expected run error")
	}
	if result.State != StateFailed {
		t.Errorf("state = %s, want %s", result.State, StateFailed)
	}
	if !strings.Contains(err.Error(), "batch 2 failed") {
		t.Errorf("error should name the failing batch: %v", err)
	}
	var pe *ProviderError
	if !errors.As(err, &pe) || pe.Kind != KindServerError {
		t.Errorf("error should unwrap to the provider error: %v", err)
	}
	if errors.Is(err, context.Canceled) {
		t.Error("a hard failure must not look like a cancellation")
	}
	if result.Usage.InputTokens != 10 || result.Usage.Requests != 1 {
		t.Errorf("usage = %+v, want the succeeded batch preserved", result.Usage)
	}
	if len(result.Items) != 0 {
		t.Errorf("failed run returned %d items, want none applied", len(result.Items))
	}
}

func TestRunnerCancelledDistinctFromFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(echoTransformer(), RunnerConfig{BatchCount: 2})
	result, err := runner.Run(ctx, "noop", makeItems(4))

	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled run should wrap context.Canceled: %v", err)
	}
	if result.State != StateCancelled {
		t.Errorf("state = %s, want %s", result.State, StateCancelled)
	}
	if len(result.Items) != 0 {
		t.Errorf("cancelled run returned %d items, want none applied", len(result.Items))
	}
}

func TestRunnerRejectsUnknownIDs(t *testing.T) {
	fake := &fakeTransformer{fn: func(req Request) (*Response, error) {
		return &Response{
			Items: []ResultItem{{ID: "999", Text: "invented"}},
			Usage: Usage{Requests: 1},
		}, nil
	}}

	runner := NewRunner(fake, RunnerConfig{})
	result, err := runner.Run(context.Background(), "noop", makeItems(3))

	if err == nil {
		t.Fatal("expected error for unknown cue id")
	}
	var ce *ContentError
	if !errors.As(err, &ce) {
		t.Fatalf("expected ContentError, got %T: %v", err, err)
	}
	if !strings.Contains(ce.Reason, "999") {
		t.Errorf("reason should name the unknown id: %q", ce.Reason)
	}
	if result.State != StateFailed {
		t.Errorf("state = %s, want %s", result.State, StateFailed)
	}
}

func TestRunnerToleratesMissingIDs(t *testing.T) {
	// dropped cues surface later as validation findings, not here
	fake := &fakeTransformer{fn: func(req Request) (*Response, error) {
		return &Response{
			Items: []ResultItem{{ID: req.Items[0].ID, Text: "only the first"}},
			Usage: Usage{Requests: 1},
		}, nil
	}}

	runner := NewRunner(fake, RunnerConfig{})
	result, err := runner.Run(context.Background(), "noop", makeItems(3))

	if err != nil {
		t.Fatalf("Run error: %v", err)
	}
	if result.State != StateSucceeded {
		t.Errorf("state = %s", result.State)
	}
	if len(result.Items) != 1 {
		t.Errorf("got %d items, want 1", len(result.Items))
	}
}
