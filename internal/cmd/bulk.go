package cmd

import (
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// DefaultConcurrency is the default number of concurrent workers
const DefaultConcurrency = 5

// BulkResult is the outcome of one operation in a bulk run.
type BulkResult struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	Data    any    `json:"data,omitempty"`
}

// runBulkOperation runs operation for every ID with at most concurrency in
// flight. Results keep the order of ids. IDs not started before ctx is
// canceled are reported as failed with the context error.
func runBulkOperation[T any](
	ctx context.Context,
	ids []string,
	concurrency int64,
	progress bool,
	errOut io.Writer,
	operation func(ctx context.Context, id string) (T, error),
) []BulkResult {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}
	if errOut == nil {
		errOut = io.Discard
	}

	sem := semaphore.NewWeighted(concurrency)
	results := make([]BulkResult, len(ids))
	total := len(ids)
	var done int64
	var progressMu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range ids {
		results[i] = BulkResult{ID: id}
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				results[i].Error = err.Error()
				return nil
			}
			defer sem.Release(1)
			if err := ctx.Err(); err != nil {
				results[i].Error = err.Error()
				return nil
			}

			data, err := operation(ctx, id)
			if err != nil {
				results[i].Error = err.Error()
			} else {
				results[i].Success = true
				results[i].Data = data
			}

			if progress {
				current := atomic.AddInt64(&done, 1)
				progressMu.Lock()
				_, _ = fmt.Fprintf(errOut, "\rProcessed %d/%d", current, total)
				progressMu.Unlock()
			}
			// individual failures never cancel the group
			return nil
		})
	}
	_ = g.Wait()

	if progress && total > 0 {
		_, _ = fmt.Fprintln(errOut)
	}
	return results
}

// countResults returns success and failure counts from bulk results
func countResults(results []BulkResult) (success, failure int) {
	for _, r := range results {
		if r.Success {
			success++
		} else {
			failure++
		}
	}
	return
}

// printBulkResults reports a bulk run and returns an error when any item failed.
func printBulkResults(cmd *cobra.Command, action string, results []BulkResult) error {
	success, failure := countResults(results)
	if isJSON(cmd) {
		if err := printJSON(cmd, map[string]any{
			"results":   results,
			"succeeded": success,
			"failed":    failure,
		}); err != nil {
			return err
		}
	} else {
		f := newFormatter(cmd)
		f.StartTable([]string{"ID", "RESULT"})
		for _, r := range results {
			outcome := action
			if !r.Success {
				outcome = "error: " + r.Error
			}
			f.Row(r.ID, outcome)
		}
		if err := f.EndTable(); err != nil {
			return err
		}
	}
	if failure > 0 {
		return &handledError{
			err:      fmt.Errorf("%d of %d operations failed", failure, len(results)),
			exitCode: exitGeneric,
		}
	}
	return nil
}
