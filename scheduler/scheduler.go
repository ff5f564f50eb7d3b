package scheduler

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/btree"
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/system"
)

// ErrWorkloadNotFound is returned by RunWorkload/SetDefault for an
// unregistered workload name.
var ErrWorkloadNotFound = errors.New("scheduler: workload not found")

type workloadEntry struct {
	name string
}

// Scheduler owns the installed workloads and the default workload name.
// Guarded by a plain mutex rather than a BorrowCell: workload
// installation/lookup is an administrative path, not a hot borrow the
// conflict model needs to reason about (spec.md §4.5's state machine is
// Building -> Installed, never concurrent with itself by construction).
//
// The workload set is additionally indexed in a google/btree BTreeG so
// Inspect can walk installed workloads in a stable, deterministic
// (alphabetical) order -- grounded on the teacher's one BTreeG use,
// storage/index.go's `btree.NewG[indexPair]` delta index, generalized
// from "ordered row keys" to "ordered workload names".
type Scheduler struct {
	mu     sync.Mutex
	byName map[string]*Workload
	order  *btree.BTreeG[workloadEntry]
	dflt   string
}

// New returns an empty scheduler with no default workload set.
func New() *Scheduler {
	return &Scheduler{
		byName: make(map[string]*Workload),
		order: btree.NewG(32, func(a, b workloadEntry) bool {
			return a.name < b.name
		}),
	}
}

// Install compiles systems into a workload and installs it under name,
// replacing any previous workload with that name (spec.md §4.5: "Building
// -> Installed, never uninstalled; replaceable").
func (s *Scheduler) Install(name string, systems []system.Runnable) *Workload {
	w := Build(name, systems)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName[name] = w
	s.order.ReplaceOrInsert(workloadEntry{name: name})
	if s.dflt == "" {
		s.dflt = name
	}
	return w
}

// Lookup returns the installed workload for name.
func (s *Scheduler) Lookup(name string) (*Workload, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.byName[name]
	return w, ok
}

// SetDefault sets the default workload name, failing if name isn't installed.
func (s *Scheduler) SetDefault(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byName[name]; !ok {
		return fmt.Errorf("%w: %s", ErrWorkloadNotFound, name)
	}
	s.dflt = name
	return nil
}

// Default returns the default workload name, or "" if none is set.
func (s *Scheduler) Default() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dflt
}

// Names returns every installed workload name in alphabetical order.
func (s *Scheduler) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, s.order.Len())
	s.order.Ascend(func(item workloadEntry) bool {
		names = append(names, item.name)
		return true
	})
	return names
}

// Run executes name's compiled plan against all, batch by batch, honoring
// the synchronization barrier of spec.md §4.5: batch j+1 never starts
// until every member of batch j has completed, and the first error across
// any batch aborts the remaining batches.
func (s *Scheduler) Run(name string, all *storage.AllStorages, parallel bool) error {
	w, ok := s.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrWorkloadNotFound, name)
	}
	return runWorkload(w, all, parallel)
}

// RunDefault runs the default workload, failing if none is set.
func (s *Scheduler) RunDefault(all *storage.AllStorages, parallel bool) error {
	name := s.Default()
	if name == "" {
		return fmt.Errorf("%w: no default workload set", ErrWorkloadNotFound)
	}
	return s.Run(name, all, parallel)
}
