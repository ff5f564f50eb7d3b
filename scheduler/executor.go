package scheduler

import (
	"fmt"

	"github.com/launix-de/shipyard/borrow"
	"github.com/launix-de/shipyard/storage"
)

// runWorkload executes w's plan batch by batch against all. Between
// batches there's a hard synchronization barrier (spec.md §4.5): the
// next batch is never started if the previous one produced an error.
// Within a parallel batch every member is waited for even if one already
// failed, since a batch member that's already running is never
// pre-empted; a batch run sequentially stops at its first failing member.
func runWorkload(w *Workload, all *storage.AllStorages, parallel bool) error {
	for _, batch := range w.Parallel {
		if err := runBatch(w, batch, all, parallel); err != nil {
			return err
		}
	}
	return nil
}

func runBatch(w *Workload, batch []int, all *storage.AllStorages, parallel bool) error {
	if !parallel || len(batch) == 1 {
		for _, idx := range batch {
			if err := w.Systems[idx].Invoke(all); err != nil {
				return err
			}
		}
		return nil
	}
	return runBatchParallel(w, batch, all)
}

// runBatchParallel fans batch members out across goroutines and collects
// the first error, grounded directly on the teacher's
// storage/compute.go ComputeColumn: a buffered error channel sized to the
// fan-out, gls.Go per member so the borrow-thread tag of the caller
// (set by world.World.RunWorkload/RunDefault) propagates into each system's invocation, and
// a drain loop that waits for every member regardless of earlier
// failures before returning the first one (spec.md §4.5: "already-started
// systems complete").
func runBatchParallel(w *Workload, batch []int, all *storage.AllStorages) error {
	done := make(chan error, len(batch))
	for _, idx := range batch {
		idx := idx
		borrow.Go(func() {
			defer func() {
				if r := recover(); r != nil {
					done <- fmt.Errorf("%s: %w", w.Systems[idx].Name(), storage.Recover(r).(storage.PanicError))
				}
			}()
			done <- w.Systems[idx].Invoke(all)
		})
	}
	var first error
	for range batch {
		if err := <-done; err != nil && first == nil {
			first = err
		}
	}
	return first
}
