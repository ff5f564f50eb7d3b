package storage

import (
	"github.com/google/uuid"
	"github.com/launix-de/shipyard/borrow"
)

// ThreadRequirement is storage.Id's companion: how a slot's owning
// BorrowCell is allowed to be accessed across goroutines. It's a direct
// re-export of borrow.Policy under the spec's vocabulary.
type ThreadRequirement = borrow.Policy

const (
	// ReqAny storages (Send) borrow shared or exclusive from any goroutine.
	ReqAny = borrow.Unpinned
	// ReqSyncOnly storages (Sync, !Send) borrow shared from anywhere,
	// exclusive only from the owning goroutine lineage.
	ReqSyncOnly = borrow.SyncOnly
	// ReqPinned storages (!Send, !Sync) borrow shared or exclusive only
	// from the owning goroutine lineage.
	ReqPinned = borrow.PinnedBoth
)

// Slot owns one type-erased storage behind a BorrowCell. Once inserted
// into a registry its Id and ThreadRequirement never change; the storage
// value itself may mutate (components added/removed) or, for a unique
// storage, be drained to empty by RemoveUnique.
type Slot struct {
	id        Id
	cell      *borrow.Cell[UnknownStorage]
	threadReq ThreadRequirement
	origin    uuid.UUID
}

func newSlot(id Id, value UnknownStorage, req ThreadRequirement) *Slot {
	return &Slot{
		id:        id,
		cell:      borrow.NewCell[UnknownStorage](value, req),
		threadReq: req,
		origin:    newOrigin(),
	}
}

// Id returns the slot's stable identity.
func (s *Slot) Id() Id { return s.id }

// ThreadRequirement returns the thread policy fixed at creation.
func (s *Slot) ThreadRequirement() ThreadRequirement { return s.threadReq }

// Origin returns the debug creation-origin id, for error messages.
func (s *Slot) Origin() uuid.UUID { return s.origin }

// TryBorrow acquires shared access to the live storage value. Returns
// MissingStorage if the slot has been drained (RemoveUnique) and is
// present-but-empty.
func (s *Slot) TryBorrow() (borrow.Guard[UnknownStorage], error) {
	g, err := s.cell.TryBorrow()
	if err != nil {
		return g, err
	}
	if *g.Get() == nil {
		g.Release()
		return borrow.Guard[UnknownStorage]{}, MissingStorageError{Name: s.id.Name()}
	}
	return g, nil
}

// TryBorrowMut acquires exclusive access to the live storage value. Same
// MissingStorage behavior as TryBorrow for a drained slot.
func (s *Slot) TryBorrowMut() (borrow.MutGuard[UnknownStorage], error) {
	g, err := s.cell.TryBorrowMut()
	if err != nil {
		return g, err
	}
	if *g.Get() == nil {
		g.Release()
		return borrow.MutGuard[UnknownStorage]{}, MissingStorageError{Name: s.id.Name()}
	}
	return g, nil
}

// drain exclusively borrows the slot, extracts its value, and leaves the
// slot present-but-empty so the Id stays resolvable and a later AddUnique
// of the same type reuses it -- see original_source/src/world/mod.rs's
// remove_unique / try_remove_unique.
func (s *Slot) drain() (UnknownStorage, error) {
	g, err := s.cell.TryBorrowMut()
	if err != nil {
		return nil, err
	}
	defer g.Release()
	v := *g.Get()
	if v == nil {
		return nil, MissingStorageError{Name: s.id.Name()}
	}
	*g.Get() = nil
	return v, nil
}

// --- NonLockingReadMap.KeyGetter[string] + Sizable implementation ---

// GetKey satisfies NonLockingReadMap.KeyGetter.
func (s Slot) GetKey() string { return s.id.key() }

// ComputeSize satisfies NonLockingReadMap.Sizable with a rough estimate;
// exact accounting isn't meaningful for a type-erased interface value.
func (s Slot) ComputeSize() uint { return 64 }
