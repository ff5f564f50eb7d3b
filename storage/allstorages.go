package storage

import (
	NonLockingReadMap "github.com/launix-de/NonLockingReadMap"
	"github.com/launix-de/shipyard/borrow"
)

type registry = NonLockingReadMap.NonLockingReadMap[Slot, string]

// ExclusiveGuard is the guard type TryBorrowExclusive returns, exported as
// an alias so other packages (view.AllStoragesViewMut) can hold one
// without needing to name the unexported registry element type.
type ExclusiveGuard = borrow.MutGuard[*registry]

// SharedGuard is TryBorrowShared's guard type, exported for the same reason.
type SharedGuard = borrow.Guard[*registry]

// AllStorages is the dynamic mapping from StorageId to a type-erased
// storage cell, per spec.md §4.2. The slot map itself is guarded by a
// BorrowCell: ordinary storage access only needs it shared, an exclusive
// view over the whole registry (AllStoragesViewMut in the view package)
// needs it exclusive.
//
// Backed by NonLockingReadMap (third_party/NonLockingReadMap, a teacher
// dependency) rather than a plain mutex-guarded map or sync.Map: storage
// lookups happen on every system borrow while storage creation happens
// once per component/unique type, which is exactly the "read often,
// write seldom" contract that map was built for.
type AllStorages struct {
	cell *borrow.Cell[*registry]
}

// New creates an empty registry.
func New() *AllStorages {
	m := NonLockingReadMap.New[Slot, string]()
	return &AllStorages{cell: borrow.NewCell[*registry](&m, borrow.Unpinned)}
}

// Factory builds a fresh UnknownStorage value the first time its Id is requested.
type Factory func() UnknownStorage

// GetOrCreate returns the slot for id, creating it via factory under req
// if it doesn't exist yet. Per the Open Question in spec.md §9, insertion
// only needs the registry's shared borrow: NonLockingReadMap's own
// CAS-retry Set already serializes concurrent writers, so no separate
// lock is needed here.
func (a *AllStorages) GetOrCreate(id Id, factory Factory, req ThreadRequirement) (*Slot, error) {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return nil, wrapGetStorage(err)
	}
	defer g.Release()
	m := *g.Get()

	if existing := m.Get(id.key()); existing != nil {
		return existing, nil
	}
	slot := newSlot(id, factory(), req)
	m.Set(slot)
	return slot, nil
}

// Lookup returns the slot for id without creating it.
func (a *AllStorages) Lookup(id Id) (*Slot, bool) {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return nil, false
	}
	defer g.Release()
	m := *g.Get()
	slot := m.Get(id.key())
	return slot, slot != nil
}

// CustomStorageByID returns the slot registered under Custom(id), if any.
func (a *AllStorages) CustomStorageByID(id uint64) (*Slot, bool) {
	return a.Lookup(Custom(id))
}

// AddUnique installs value as a unique storage of its own type, creating
// the slot if absent or replacing the value held in the existing slot
// (whose ThreadRequirement is kept). Fails if the registry itself can't be
// shared-borrowed, or if an existing slot can't be exclusively borrowed.
func AddUnique[T any](a *AllStorages, value T, req ThreadRequirement) error {
	id := OfType[T]()
	g, err := a.cell.TryBorrow()
	if err != nil {
		return wrapGetStorage(err)
	}
	defer g.Release()
	m := *g.Get()

	if existing := m.Get(id.key()); existing != nil {
		mg, err := existing.cell.TryBorrowMut()
		if err != nil {
			return wrapGetStorage(err)
		}
		*mg.Get() = &uniqueBox[T]{value: value}
		mg.Release()
		return nil
	}
	slot := newSlot(id, &uniqueBox[T]{value: value}, req)
	m.Set(slot)
	return nil
}

// UniqueBox is the capability a unique-storage view needs: read/write
// access to the single boxed value, independent of the concrete box type
// used internally.
type UniqueBox[T any] interface {
	Value() T
	SetValue(T)
}

func (u *uniqueBox[T]) Value() T     { return u.value }
func (u *uniqueBox[T]) SetValue(v T) { u.value = v }

// RemoveUnique drains the T unique storage, leaving its slot
// present-but-empty (see storage/slot.go's drain, and
// original_source/src/world/mod.rs's remove_unique).
func RemoveUnique[T any](a *AllStorages) (T, error) {
	var zero T
	id := OfType[T]()
	g, err := a.cell.TryBorrow()
	if err != nil {
		return zero, UniqueRemoveError{AllStoragesBorrow: asBorrowError(err), Name: id.Name()}
	}
	m := *g.Get()
	slot := m.Get(id.key())
	g.Release()
	if slot == nil {
		return zero, UniqueRemoveError{Missing: &MissingStorageError{Name: id.Name()}, Name: id.Name()}
	}
	v, err := slot.drain()
	if err != nil {
		if be, ok := err.(borrow.Error); ok {
			return zero, UniqueRemoveError{StorageBorrow: &be, Name: id.Name()}
		}
		if me, ok := err.(MissingStorageError); ok {
			return zero, UniqueRemoveError{Missing: &me, Name: id.Name()}
		}
		return zero, UniqueRemoveError{Name: id.Name()}
	}
	box := v.(*uniqueBox[T])
	return box.value, nil
}

func asBorrowError(err error) *borrow.Error {
	if be, ok := err.(borrow.Error); ok {
		return &be
	}
	return nil
}

// uniqueBox adapts a plain value T to UnknownStorage so it can live in a
// Slot like any component storage; a unique has no per-entity structure,
// so Delete/Strip/Clear are no-ops.
type uniqueBox[T any] struct {
	value T
}

func (u *uniqueBox[T]) Delete(uint64) bool { return false }
func (u *uniqueBox[T]) Strip(uint64)       {}
func (u *uniqueBox[T]) Clear()             {}

// DeleteEntity calls Delete(id) on every slot's storage, continuing past
// slots that can't be exclusively borrowed right now (reported as
// BusyError for that slot only, per spec.md §4.2). Returns true if any
// storage actually removed something for id.
func (a *AllStorages) DeleteEntity(id uint64) (bool, []error) {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return false, []error{wrapGetStorage(err)}
	}
	defer g.Release()
	return deleteEntityIn(*g.Get(), id)
}

// DeleteEntityLocked is DeleteEntity for a caller that already holds the
// registry's ExclusiveGuard (view.AllStoragesViewMut) -- it must not
// re-acquire the registry borrow, since the cell is already held
// exclusively by the caller.
func DeleteEntityLocked(g ExclusiveGuard, id uint64) (bool, []error) {
	return deleteEntityIn(*g.Get(), id)
}

func deleteEntityIn(m *registry, id uint64) (bool, []error) {
	var errs []error
	deleted := false
	for _, slot := range m.GetAll() {
		mg, err := slot.cell.TryBorrowMut()
		if err != nil {
			errs = append(errs, BusyError{Name: slot.id.Name()})
			continue
		}
		if v := *mg.Get(); v != nil {
			if v.Delete(id) {
				deleted = true
			}
		}
		mg.Release()
	}
	return deleted, errs
}

// Strip is DeleteEntity without tracking whether anything was removed.
func (a *AllStorages) Strip(id uint64) []error {
	_, errs := a.DeleteEntity(id)
	return errs
}

// StripLocked is Strip for a caller already holding the ExclusiveGuard.
func StripLocked(g ExclusiveGuard, id uint64) []error {
	_, errs := DeleteEntityLocked(g, id)
	return errs
}

// ClearAll calls Clear() on every slot's storage, continuing past slots
// that can't be exclusively borrowed right now.
func (a *AllStorages) ClearAll() []error {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return []error{wrapGetStorage(err)}
	}
	defer g.Release()
	return clearAllIn(*g.Get())
}

// ClearAllLocked is ClearAll for a caller already holding the ExclusiveGuard.
func ClearAllLocked(g ExclusiveGuard) []error {
	return clearAllIn(*g.Get())
}

func clearAllIn(m *registry) []error {
	var errs []error
	for _, slot := range m.GetAll() {
		mg, err := slot.cell.TryBorrowMut()
		if err != nil {
			errs = append(errs, BusyError{Name: slot.id.Name()})
			continue
		}
		if v := *mg.Get(); v != nil {
			v.Clear()
		}
		mg.Release()
	}
	return errs
}

// Retain strips entity id's component from every slot except those whose
// storage id appears in keepIDs, continuing past slots that can't be
// exclusively borrowed right now (reported as BusyError for that slot
// only, same continue-on-failure contract as DeleteEntity/Strip/ClearAll).
// Mirrors original_source's retain/retain_storage: "deletes all components
// of an entity except the ones passed in keep_set".
func (a *AllStorages) Retain(id uint64, keepIDs []Id) []error {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return []error{wrapGetStorage(err)}
	}
	defer g.Release()
	return retainIn(*g.Get(), id, keepIDs)
}

// RetainLocked is Retain for a caller already holding the ExclusiveGuard.
func RetainLocked(g ExclusiveGuard, id uint64, keepIDs []Id) []error {
	return retainIn(*g.Get(), id, keepIDs)
}

func retainIn(m *registry, id uint64, keepIDs []Id) []error {
	keep := make(map[Id]bool, len(keepIDs))
	for _, k := range keepIDs {
		keep[k] = true
	}
	var errs []error
	for _, slot := range m.GetAll() {
		if keep[slot.id] {
			continue
		}
		mg, err := slot.cell.TryBorrowMut()
		if err != nil {
			errs = append(errs, BusyError{Name: slot.id.Name()})
			continue
		}
		if v := *mg.Get(); v != nil {
			v.Strip(id)
		}
		mg.Release()
	}
	return errs
}

// Slots returns every currently registered slot, for diagnostics (world.Inspect).
func (a *AllStorages) Slots() ([]*Slot, error) {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return nil, wrapGetStorage(err)
	}
	defer g.Release()
	return (*g.Get()).GetAll(), nil
}

// SlotsLocked is Slots for a caller already holding the ExclusiveGuard.
func SlotsLocked(g ExclusiveGuard) []*Slot {
	return (*g.Get()).GetAll()
}

// TryBorrowExclusive acquires the whole-registry exclusive borrow backing
// AllStoragesViewMut: incompatible with every other borrow in the same batch.
func (a *AllStorages) TryBorrowExclusive() (borrow.MutGuard[*registry], error) {
	g, err := a.cell.TryBorrowMut()
	if err != nil {
		return g, wrapGetStorage(err)
	}
	return g, nil
}

// TryBorrowShared acquires the registry's shared borrow backing ordinary
// view acquisition.
func (a *AllStorages) TryBorrowShared() (borrow.Guard[*registry], error) {
	g, err := a.cell.TryBorrow()
	if err != nil {
		return g, wrapGetStorage(err)
	}
	return g, nil
}
