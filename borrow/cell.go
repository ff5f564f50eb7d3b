package borrow

import "sync/atomic"

// Policy expresses a storage's thread requirement. It mirrors spec.md's
// Send/Sync capability set collapsed to the two bits that actually gate a
// borrow decision: whether shared access must happen on the owning
// goroutine lineage, and whether exclusive access must.
type Policy uint8

const (
	// Unpinned storages (Send) may be borrowed, shared or exclusive, from any goroutine.
	Unpinned Policy = iota
	// SyncOnly storages (!Send, Sync) allow shared borrows from anywhere but
	// restrict exclusive borrows to the owning goroutine lineage.
	SyncOnly
	// PinnedBoth storages (!Send, !Sync) restrict both shared and exclusive
	// borrows to the owning goroutine lineage.
	PinnedBoth
)

// maxShared bounds the shared-borrow counter; chosen well below int32's
// range so overflow can never be confused with a legitimate count.
const maxShared = 1<<30 - 1

// Cell is the interior-mutability primitive every storage slot is built
// on: an atomically-updated borrow counter plus an optional thread-owner
// check. -1 means exclusively borrowed, 0 means free, k>0 means k live
// shared borrows.
type Cell[T any] struct {
	value   T
	counter atomic.Int32
	policy  Policy
	owner   OwnerTag
}

// NewCell wraps value for borrow-checked access. For a pinned policy the
// cell remembers whichever owner tag is active on the calling goroutine
// at construction time (see RunTagged); if none is active the cell is
// still created, but since no goroutine will ever present that identity
// again, every future owner-checked borrow against it (any borrow of a
// PinnedBoth cell, an exclusive borrow of a SyncOnly cell) fails
// WrongThread -- callers are
// expected to create pinned storages from within a World-guarded call.
func NewCell[T any](value T, policy Policy) *Cell[T] {
	c := &Cell[T]{value: value, policy: policy}
	if policy != Unpinned {
		if tag, ok := CurrentTag(); ok {
			c.owner = tag
		} else {
			c.owner = NewOwnerTag()
		}
	}
	return c
}

func (c *Cell[T]) onOwningThread() bool {
	tag, ok := CurrentTag()
	return ok && tag == c.owner
}

// Guard is a live shared borrow. Release must be called exactly once.
type Guard[T any] struct {
	cell *Cell[T]
}

// Get returns the borrowed value. Valid until Release.
func (g Guard[T]) Get() *T { return &g.cell.value }

// Release ends the shared borrow.
func (g Guard[T]) Release() { g.cell.releaseShared() }

// MutGuard is a live exclusive borrow. Release must be called exactly once.
type MutGuard[T any] struct {
	cell *Cell[T]
}

// Get returns the borrowed value for mutation. Valid until Release.
func (g MutGuard[T]) Get() *T { return &g.cell.value }

// Release ends the exclusive borrow.
func (g MutGuard[T]) Release() { g.cell.releaseExclusive() }

// TryBorrow acquires a shared borrow, failing fast rather than blocking.
func (c *Cell[T]) TryBorrow() (Guard[T], error) {
	if c.policy == PinnedBoth && !c.onOwningThread() {
		return Guard[T]{}, Error{Kind: WrongThread}
	}
	for {
		cur := c.counter.Load()
		if cur == -1 {
			return Guard[T]{}, Error{Kind: Unique}
		}
		if cur >= maxShared {
			return Guard[T]{}, Error{Kind: CountOverflow}
		}
		if c.counter.CompareAndSwap(cur, cur+1) {
			return Guard[T]{cell: c}, nil
		}
	}
}

// TryBorrowMut acquires an exclusive borrow, failing fast rather than blocking.
func (c *Cell[T]) TryBorrowMut() (MutGuard[T], error) {
	if c.policy != Unpinned && !c.onOwningThread() {
		return MutGuard[T]{}, Error{Kind: WrongThread}
	}
	for {
		cur := c.counter.Load()
		if cur > 0 {
			return MutGuard[T]{}, Error{Kind: Shared}
		}
		if cur == -1 {
			return MutGuard[T]{}, Error{Kind: Unique}
		}
		if c.counter.CompareAndSwap(0, -1) {
			return MutGuard[T]{cell: c}, nil
		}
	}
}

func (c *Cell[T]) releaseShared() {
	for {
		cur := c.counter.Load()
		if cur <= 0 {
			panic("borrow: releasing a shared guard on a cell with no shared borrows outstanding")
		}
		if c.counter.CompareAndSwap(cur, cur-1) {
			return
		}
	}
}

func (c *Cell[T]) releaseExclusive() {
	if !c.counter.CompareAndSwap(-1, 0) {
		panic("borrow: releasing an exclusive guard on a cell that isn't exclusively borrowed")
	}
}

// Policy reports the cell's thread policy, for diagnostics.
func (c *Cell[T]) Policy() Policy { return c.policy }

// Owner reports the cell's owner tag. Meaningless when Policy is Unpinned.
func (c *Cell[T]) Owner() OwnerTag { return c.owner }
