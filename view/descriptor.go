// Package view provides typed handles over a live storage borrow, and the
// static BorrowDescriptor metadata the scheduler compiles batches from
// without ever constructing a view (spec.md §4.3).
package view

import "github.com/launix-de/shipyard/storage"

// Mutability is whether a view needs shared or exclusive access.
type Mutability uint8

const (
	Shared Mutability = iota
	Exclusive
)

func (m Mutability) String() string {
	if m == Exclusive {
		return "Exclusive"
	}
	return "Shared"
}

// Thread is whether a view's borrow must happen on the tagged owning
// goroutine lineage (spec.md's RequiresMainThread, generalized per
// SPEC_FULL.md's thread-affinity section away from "the" main thread to
// "a" pinned goroutine lineage).
type Thread uint8

const (
	Any Thread = iota
	RequiresOwningThread
)

// Descriptor is the static triple a system exposes without acquiring
// anything: what storage it touches, how, and under what thread
// constraint. The scheduler batches purely from these.
type Descriptor struct {
	// Storage is the target slot's id. Ignored when AllStorages is true.
	Storage storage.Id
	// AllStorages marks a descriptor over the whole registry rather than
	// one slot (AllStoragesViewMut). A descriptor with AllStorages set and
	// Mutability Exclusive conflicts with every other descriptor in the
	// same batch, per spec.md §4.1.
	AllStorages bool
	Mutability  Mutability
	Thread      Thread
}

// Conflicts reports whether a and b cannot be borrowed within the same
// parallel batch (spec.md §4.5's packing relation).
func Conflicts(a, b Descriptor) bool {
	if a.AllStorages && a.Mutability == Exclusive {
		return true
	}
	if b.AllStorages && b.Mutability == Exclusive {
		return true
	}
	if a.AllStorages || b.AllStorages {
		// Two shared AllStorages-registry touches (e.g. two ordinary
		// views, each of which shared-borrows the registry to look up
		// its slot) never conflict with each other.
		return false
	}
	if a.RequiresOwning() && b.RequiresOwning() {
		// Only one pinned-thread slot per batch: two owning-thread
		// descriptors can't run concurrently even over different storages,
		// since a batch's members all run under the same propagated owner
		// tag (spec.md §4.5).
		return true
	}
	if a.Storage != b.Storage {
		return false
	}
	if a.Mutability == Exclusive || b.Mutability == Exclusive {
		return true
	}
	return false
}

// RequiresOwning reports whether this descriptor can only be satisfied on
// the tagged owning goroutine lineage.
func (d Descriptor) RequiresOwning() bool { return d.Thread == RequiresOwningThread }
