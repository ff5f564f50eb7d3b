// Package scheduler compiles an ordered list of systems into parallel
// execution batches under the borrow-conflict discipline of view.Conflicts,
// and dispatches those batches (spec.md §4.5).
package scheduler

import (
	"github.com/launix-de/shipyard/system"
	"github.com/launix-de/shipyard/view"
)

// Workload is a named, ordered list of compiled systems plus its derived
// batch plan: Sequential preserves program order, Parallel groups system
// indices that can run concurrently without a borrow conflict.
type Workload struct {
	Name       string
	Systems    []system.Runnable
	Sequential []int
	Parallel   [][]int
}

// Build compiles systems (in program order) into a Workload, running the
// greedy left-to-right batch-packing algorithm of spec.md §4.5: a new
// batch starts whenever the next system's descriptor set conflicts with
// anything already in the current batch, or the next system itself
// declares an AllStoragesMut descriptor (which conflicts with everything,
// including an empty batch turning into a singleton of just that system).
func Build(name string, systems []system.Runnable) *Workload {
	w := &Workload{Name: name, Systems: systems}
	w.Sequential = make([]int, len(systems))
	for i := range systems {
		w.Sequential[i] = i
	}

	var batch []int
	var batchDescriptors []view.Descriptor
	for i, sys := range systems {
		ds := sys.Descriptors()
		if len(batch) > 0 && conflictsWithAny(ds, batchDescriptors) {
			w.Parallel = append(w.Parallel, batch)
			batch = nil
			batchDescriptors = nil
		}
		batch = append(batch, i)
		batchDescriptors = append(batchDescriptors, ds...)
	}
	if len(batch) > 0 {
		w.Parallel = append(w.Parallel, batch)
	}
	return w
}

func conflictsWithAny(candidate, existing []view.Descriptor) bool {
	for _, c := range candidate {
		for _, e := range existing {
			if view.Conflicts(c, e) {
				return true
			}
		}
	}
	return false
}
