package transform

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// State names the phase a transform run is in.
type State string

const (
	StateIdle        State = "idle"
	StateBatching    State = "batching"
	StateDispatching State = "dispatching"
	StateSucceeded   State = "succeeded"
	StateFailed      State = "failed"
	StateCancelled   State = "cancelled"
)

// Batch work occupies the middle of the progress scale; the envelope
// edges are reserved for parse and reconstruct work around the run.
const (
	progressFloor   = 0.15
	progressCeiling = 0.85
)

// RunnerConfig controls batching and reporting for a Runner.
type RunnerConfig struct {
	// BatchCount is the number of contiguous batches the items are
	// split into, all dispatched concurrently. Values below 1 mean a
	// single batch.
	BatchCount int
	// Timeout bounds each batch call. Zero disables the per call
	// timeout and leaves only ctx.
	Timeout time.Duration
	// OnProgress, when set, receives completed batch counts and the
	// scaled percentage. Calls are serialized and monotonic.
	OnProgress func(completed, total int, pct float64)
}

// Runner fans a cue set out over concurrent transform batches and
// recombines results in source order.
type Runner struct {
	transformer Transformer
	cfg         RunnerConfig
}

func NewRunner(transformer Transformer, cfg RunnerConfig) *Runner {
	return &Runner{transformer: transformer, cfg: cfg}
}

// RunResult carries the outcome of one run. Usage covers succeeded
// batches even when the run as a whole failed or was cancelled.
type RunResult struct {
	State   State
	Items   []ResultItem
	Usage   Usage
	Batches int
}

// Run transforms items and returns them in source order. Batches are
// disjoint slices dispatched concurrently; the first hard failure
// cancels the rest and fails the run. A cancelled parent context
// yields StateCancelled and an error wrapping context.Canceled, with
// no partial output.
func (r *Runner) Run(
	ctx context.Context,
	instructions string,
	items []Item,
) (*RunResult, error) {
	result := &RunResult{State: StateIdle}
	if len(items) == 0 {
		result.State = StateSucceeded
		return result, nil
	}

	result.State = StateBatching
	batches := splitBatches(items, r.cfg.BatchCount)
	result.Batches = len(batches)

	result.State = StateDispatching
	r.reportProgress(0, len(batches))

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	type outcome struct {
		resp *Response
		err  error
	}
	outcomes := make([]outcome, len(batches))

	var (
		mu        sync.Mutex
		completed int
	)

	var wg sync.WaitGroup
	for i, batch := range batches {
		wg.Go(func() {
			resp, err := r.runBatch(runCtx, instructions, batch)
			outcomes[i] = outcome{resp: resp, err: err}
			if err != nil {
				cancelRun()
				return
			}
			mu.Lock()
			completed++
			r.reportProgress(completed, len(batches))
			mu.Unlock()
		})
	}
	wg.Wait()

	var firstErr error
	for i, oc := range outcomes {
		if oc.err == nil {
			result.Usage.InputTokens += oc.resp.Usage.InputTokens
			result.Usage.OutputTokens += oc.resp.Usage.OutputTokens
			result.Usage.Requests += oc.resp.Usage.Requests
			continue
		}
		if firstErr == nil && !errors.Is(oc.err, context.Canceled) {
			firstErr = fmt.Errorf("batch %d failed: %w", i+1, oc.err)
		}
	}

	if ctx.Err() != nil {
		result.State = StateCancelled
		return result, fmt.Errorf("transform run cancelled: %w", ctx.Err())
	}
	if firstErr != nil {
		result.State = StateFailed
		return result, firstErr
	}

	for _, oc := range outcomes {
		result.Items = append(result.Items, oc.resp.Items...)
	}
	result.State = StateSucceeded
	return result, nil
}

func (r *Runner) runBatch(
	ctx context.Context,
	instructions string,
	batch []Item,
) (*Response, error) {
	if r.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.Timeout)
		defer cancel()
	}

	resp, err := r.transformer.Transform(ctx, Request{
		Instructions: instructions,
		Items:        batch,
	})
	if err != nil {
		return nil, err
	}
	if err := validateBatchIDs(batch, resp.Items); err != nil {
		return nil, err
	}
	return resp, nil
}

// validateBatchIDs rejects a response naming cue ids outside its
// batch: the model invented, duplicated into, or leaked cues across
// batch boundaries. Missing ids are tolerated here and surface later
// as validation findings with the original text kept.
func validateBatchIDs(batch []Item, results []ResultItem) error {
	known := make(map[string]bool, len(batch))
	for _, it := range batch {
		known[it.ID] = true
	}
	for _, res := range results {
		if !known[res.ID] {
			return &ContentError{
				Reason: fmt.Sprintf("response contains unknown cue id %q", res.ID),
			}
		}
	}
	return nil
}

// splitBatches cuts items into count contiguous, non-empty slices
// covering the input in order.
func splitBatches(items []Item, count int) [][]Item {
	if count < 1 {
		count = 1
	}
	if count > len(items) {
		count = len(items)
	}
	batches := make([][]Item, 0, count)
	for i := 0; i < count; i++ {
		lo := i * len(items) / count
		hi := (i + 1) * len(items) / count
		batches = append(batches, items[lo:hi])
	}
	return batches
}

func (r *Runner) reportProgress(completed, total int) {
	if r.cfg.OnProgress == nil {
		return
	}
	pct := progressFloor
	if total > 0 {
		pct += (progressCeiling - progressFloor) * float64(completed) / float64(total)
	}
	r.cfg.OnProgress(completed, total, pct)
}
