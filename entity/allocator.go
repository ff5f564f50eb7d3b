package entity

import (
	NonLockingReadMap "github.com/launix-de/NonLockingReadMap"
	"github.com/launix-de/shipyard/storage"
)

// StorageID is the stable Custom identity AllStorages uses for the
// allocator's dedicated slot (spec.md §4.2: "AllStorages ... owns entity
// id allocator via a dedicated slot").
var StorageID = storage.Custom(0)

// Allocator hands out and reclaims entity ids. Mutation (Create/Kill)
// is expected to happen only while the caller holds AllStorages'
// exclusive borrow of this slot; IsAlive is safe to call under a shared
// borrow because the alive bitmap (NonBlockingBitMap, a teacher
// dependency from third_party/NonLockingReadMap) is itself lock-free.
type Allocator struct {
	alive       NonLockingReadMap.NonBlockingBitMap
	generations []uint32
	free        []uint32
}

// NewAllocator returns an allocator, ready to mint entity 0.
func NewAllocator() *Allocator {
	return &Allocator{}
}

// Create mints a fresh entity id, reusing a dead index (with its
// generation bumped) when one is available.
func (a *Allocator) Create() ID {
	if n := len(a.free); n > 0 {
		idx := a.free[n-1]
		a.free = a.free[:n-1]
		a.alive.Set(idx, true)
		return New(idx, a.generations[idx])
	}
	idx := uint32(len(a.generations))
	a.generations = append(a.generations, 0)
	a.alive.Set(idx, true)
	return New(idx, 0)
}

// Kill retires id, making its index available for reuse under a bumped
// generation. Reports whether id was actually alive.
func (a *Allocator) Kill(id ID) bool {
	idx := id.Index()
	if !a.isAliveIndex(idx, id.Generation()) {
		return false
	}
	a.alive.Set(idx, false)
	a.generations[idx]++
	a.free = append(a.free, idx)
	return true
}

// IsAlive reports whether id is still live (same index, same generation, alive bit set).
func (a *Allocator) IsAlive(id ID) bool {
	return a.isAliveIndex(id.Index(), id.Generation())
}

func (a *Allocator) isAliveIndex(idx, generation uint32) bool {
	return int(idx) < len(a.generations) && a.generations[idx] == generation && a.alive.Get(idx)
}

// Count returns the number of currently-alive entities.
func (a *Allocator) Count() int {
	return int(a.alive.Count())
}

// --- storage.UnknownStorage ---

// Delete kills the entity, per spec.md's UnknownStorage::delete(id).
func (a *Allocator) Delete(raw uint64) bool { return a.Kill(FromRaw(raw)) }

// Strip is Delete without the removed/not-removed distinction.
func (a *Allocator) Strip(raw uint64) { a.Kill(FromRaw(raw)) }

// Clear resets the allocator to empty; every previously-issued id becomes
// unrecognizable (IsAlive false) rather than colliding with a future one.
func (a *Allocator) Clear() {
	a.alive.Reset()
	a.free = a.free[:0]
	for idx := range a.generations {
		a.generations[idx]++
		a.free = append(a.free, uint32(idx))
	}
}
