package view

import (
	"github.com/launix-de/shipyard/borrow"
	"github.com/launix-de/shipyard/component"
	"github.com/launix-de/shipyard/entity"
	"github.com/launix-de/shipyard/storage"
)

// Acquirer is how a view type advertises its BorrowDescriptor without
// constructing anything (spec.md §4.3a), and how it actually acquires the
// live borrow (§4.3b). System composes these; the scheduler only ever
// calls Descriptors.
type Acquirer[V any] interface {
	Descriptors() []Descriptor
	// TryBorrow acquires the view and returns a release func to call
	// (in LIFO order across a tuple) once the caller is done.
	TryBorrow(all *storage.AllStorages) (V, func(), error)
}

// --- component views ---

// ComponentView is a live shared borrow of T's component storage.
type ComponentView[T any] struct {
	guard borrow.Guard[storage.UnknownStorage]
	data  *component.Storage[T]
}

func (v *ComponentView[T]) Get(id entity.ID) (T, bool) { return v.data.Get(id) }
func (v *ComponentView[T]) Has(id entity.ID) bool      { return v.data.Has(id) }
func (v *ComponentView[T]) Len() int                   { return v.data.Len() }
func (v *ComponentView[T]) All(yield func(entity.ID, T) bool) { v.data.All(yield) }

// ComponentViewMut is a live exclusive borrow of T's component storage.
type ComponentViewMut[T any] struct {
	guard borrow.MutGuard[storage.UnknownStorage]
	data  *component.Storage[T]
}

func (v *ComponentViewMut[T]) Get(id entity.ID) (T, bool) { return v.data.Get(id) }
func (v *ComponentViewMut[T]) Set(id entity.ID, value T)  { v.data.Set(id, value) }
func (v *ComponentViewMut[T]) Remove(id entity.ID) bool   { return v.data.Remove(id) }
func (v *ComponentViewMut[T]) Len() int                   { return v.data.Len() }
func (v *ComponentViewMut[T]) All(yield func(entity.ID, T) bool) { v.data.All(yield) }

type componentAcquirer[T any] struct {
	req    storage.ThreadRequirement
	thread Thread
}

func newComponentStorage[T any]() storage.UnknownStorage { return component.New[T]() }

// Component builds the Acquirer for a shared view over T's component storage.
func Component[T any]() Acquirer[*ComponentView[T]] {
	return componentAcquirer[T]{req: storage.ReqAny, thread: Any}
}

// ComponentNonSend builds the Acquirer for a shared view whose storage, if
// newly created, is pinned SyncOnly (spec.md §4.3's NonSend wrapper).
func ComponentNonSend[T any]() Acquirer[*ComponentView[T]] {
	return componentAcquirer[T]{req: storage.ReqSyncOnly, thread: RequiresOwningThread}
}

func (c componentAcquirer[T]) Descriptors() []Descriptor {
	return []Descriptor{{Storage: storage.OfType[T](), Mutability: Shared, Thread: c.thread}}
}

func (c componentAcquirer[T]) TryBorrow(all *storage.AllStorages) (*ComponentView[T], func(), error) {
	id := storage.OfType[T]()
	slot, err := all.GetOrCreate(id, newComponentStorage[T], c.req)
	if err != nil {
		return nil, nil, err
	}
	g, err := slot.TryBorrow()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	data, ok := (*g.Get()).(*component.Storage[T])
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	v := &ComponentView[T]{guard: g, data: data}
	return v, v.guard.Release, nil
}

type componentAcquirerMut[T any] struct {
	req    storage.ThreadRequirement
	thread Thread
}

// ComponentMut builds the Acquirer for an exclusive view over T's component storage.
func ComponentMut[T any]() Acquirer[*ComponentViewMut[T]] {
	return componentAcquirerMut[T]{req: storage.ReqAny, thread: Any}
}

// ComponentMutNonSend is ComponentMut pinned SyncOnly if newly created.
func ComponentMutNonSend[T any]() Acquirer[*ComponentViewMut[T]] {
	return componentAcquirerMut[T]{req: storage.ReqSyncOnly, thread: RequiresOwningThread}
}

// ComponentMutNonSendSync is ComponentMut fully pinned (NonSendSync) if newly created.
func ComponentMutNonSendSync[T any]() Acquirer[*ComponentViewMut[T]] {
	return componentAcquirerMut[T]{req: storage.ReqPinned, thread: RequiresOwningThread}
}

func (c componentAcquirerMut[T]) Descriptors() []Descriptor {
	return []Descriptor{{Storage: storage.OfType[T](), Mutability: Exclusive, Thread: c.thread}}
}

func (c componentAcquirerMut[T]) TryBorrow(all *storage.AllStorages) (*ComponentViewMut[T], func(), error) {
	id := storage.OfType[T]()
	slot, err := all.GetOrCreate(id, newComponentStorage[T], c.req)
	if err != nil {
		return nil, nil, err
	}
	g, err := slot.TryBorrowMut()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	data, ok := (*g.Get()).(*component.Storage[T])
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	v := &ComponentViewMut[T]{guard: g, data: data}
	return v, v.guard.Release, nil
}

// --- entity allocator views ---

// EntitiesView is a live shared borrow of the entity allocator.
type EntitiesView struct {
	guard borrow.Guard[storage.UnknownStorage]
	alloc *entity.Allocator
}

func (v *EntitiesView) IsAlive(id entity.ID) bool { return v.alloc.IsAlive(id) }
func (v *EntitiesView) Count() int                { return v.alloc.Count() }

// EntitiesViewMut is a live exclusive borrow of the entity allocator.
type EntitiesViewMut struct {
	guard borrow.MutGuard[storage.UnknownStorage]
	alloc *entity.Allocator
}

func (v *EntitiesViewMut) Create() entity.ID      { return v.alloc.Create() }
func (v *EntitiesViewMut) Kill(id entity.ID) bool { return v.alloc.Kill(id) }
func (v *EntitiesViewMut) IsAlive(id entity.ID) bool { return v.alloc.IsAlive(id) }
func (v *EntitiesViewMut) Count() int              { return v.alloc.Count() }

func newEntityAllocator() storage.UnknownStorage { return entity.NewAllocator() }

type entitiesAcquirer struct{}

// Entities builds the Acquirer for a shared view of the entity allocator.
func Entities() Acquirer[*EntitiesView] { return entitiesAcquirer{} }

func (entitiesAcquirer) Descriptors() []Descriptor {
	return []Descriptor{{Storage: entity.StorageID, Mutability: Shared, Thread: Any}}
}

func (entitiesAcquirer) TryBorrow(all *storage.AllStorages) (*EntitiesView, func(), error) {
	slot, err := all.GetOrCreate(entity.StorageID, newEntityAllocator, storage.ReqAny)
	if err != nil {
		return nil, nil, err
	}
	g, err := slot.TryBorrow()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	alloc, ok := (*g.Get()).(*entity.Allocator)
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: entity.StorageID.Name()}}
	}
	v := &EntitiesView{guard: g, alloc: alloc}
	return v, v.guard.Release, nil
}

type entitiesAcquirerMut struct{}

// EntitiesMut builds the Acquirer for an exclusive view of the entity allocator.
func EntitiesMut() Acquirer[*EntitiesViewMut] { return entitiesAcquirerMut{} }

func (entitiesAcquirerMut) Descriptors() []Descriptor {
	return []Descriptor{{Storage: entity.StorageID, Mutability: Exclusive, Thread: Any}}
}

func (entitiesAcquirerMut) TryBorrow(all *storage.AllStorages) (*EntitiesViewMut, func(), error) {
	slot, err := all.GetOrCreate(entity.StorageID, newEntityAllocator, storage.ReqAny)
	if err != nil {
		return nil, nil, err
	}
	g, err := slot.TryBorrowMut()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	alloc, ok := (*g.Get()).(*entity.Allocator)
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: entity.StorageID.Name()}}
	}
	v := &EntitiesViewMut{guard: g, alloc: alloc}
	return v, v.guard.Release, nil
}

// --- unique storage views ---

// UniqueView is a live shared borrow of a single-value unique storage.
// Unlike component views, a unique is never auto-created: the slot must
// already exist via storage.AddUnique, or TryBorrow fails MissingStorage.
type UniqueView[T any] struct {
	guard borrow.Guard[storage.UnknownStorage]
	box   *uniqueHolder[T]
}

func (v *UniqueView[T]) Get() T { return v.box.value }

// UniqueViewMut is a live exclusive borrow of a unique storage.
type UniqueViewMut[T any] struct {
	guard borrow.MutGuard[storage.UnknownStorage]
	box   *uniqueHolder[T]
}

func (v *UniqueViewMut[T]) Get() T        { return v.box.value }
func (v *UniqueViewMut[T]) Set(value T)   { v.box.value = value }

// uniqueHolder holds a copy of the value read from the stored box through
// storage.UniqueBox; UniqueViewMut's release func writes it back with
// SetValue.
type uniqueHolder[T any] struct {
	value T
}

type uniqueAcquirer[T any] struct{}

// Unique builds the Acquirer for a shared view of T's unique storage.
func Unique[T any]() Acquirer[*UniqueView[T]] { return uniqueAcquirer[T]{} }

func (uniqueAcquirer[T]) Descriptors() []Descriptor {
	return []Descriptor{{Storage: storage.OfType[T](), Mutability: Shared, Thread: Any}}
}

func (uniqueAcquirer[T]) TryBorrow(all *storage.AllStorages) (*UniqueView[T], func(), error) {
	id := storage.OfType[T]()
	slot, ok := all.Lookup(id)
	if !ok {
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	g, err := slot.TryBorrow()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	box, ok := (*g.Get()).(storage.UniqueBox[T])
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	v := &UniqueView[T]{guard: g, box: &uniqueHolder[T]{value: box.Value()}}
	return v, v.guard.Release, nil
}

type uniqueAcquirerMut[T any] struct{}

// UniqueMut builds the Acquirer for an exclusive view of T's unique storage.
func UniqueMut[T any]() Acquirer[*UniqueViewMut[T]] { return uniqueAcquirerMut[T]{} }

func (uniqueAcquirerMut[T]) Descriptors() []Descriptor {
	return []Descriptor{{Storage: storage.OfType[T](), Mutability: Exclusive, Thread: Any}}
}

func (uniqueAcquirerMut[T]) TryBorrow(all *storage.AllStorages) (*UniqueViewMut[T], func(), error) {
	id := storage.OfType[T]()
	slot, ok := all.Lookup(id)
	if !ok {
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	g, err := slot.TryBorrowMut()
	if err != nil {
		return nil, nil, storage.WrapGetStorage(err)
	}
	box, ok := (*g.Get()).(storage.UniqueBox[T])
	if !ok {
		g.Release()
		return nil, nil, storage.GetStorageError{Missing: &storage.MissingStorageError{Name: id.Name()}}
	}
	holder := &uniqueHolder[T]{value: box.Value()}
	v := &UniqueViewMut[T]{guard: g, box: holder}
	return v, func() {
		box.SetValue(holder.value)
		g.Release()
	}, nil
}

// --- exclusive whole-registry view ---

// AllStoragesViewMut is an exclusive view over the registry itself: no
// other view (of any storage) may coexist with it in the same batch, per
// spec.md §4.1/§4.3.
type AllStoragesViewMut struct {
	all   *storage.AllStorages
	guard storage.ExclusiveGuard
}

func (v *AllStoragesViewMut) DeleteEntity(id entity.ID) bool {
	deleted, _ := storage.DeleteEntityLocked(v.guard, id.Raw())
	return deleted
}

func (v *AllStoragesViewMut) Strip(id entity.ID) []error {
	return storage.StripLocked(v.guard, id.Raw())
}

func (v *AllStoragesViewMut) ClearAll() []error {
	return storage.ClearAllLocked(v.guard)
}

// Retain strips id's component from every storage except the ones named
// in keepIDs.
func (v *AllStoragesViewMut) Retain(id entity.ID, keepIDs []storage.Id) []error {
	return storage.RetainLocked(v.guard, id.Raw(), keepIDs)
}

func (v *AllStoragesViewMut) Slots() []*storage.Slot {
	return storage.SlotsLocked(v.guard)
}

type allStoragesAcquirerMut struct{}

// AllStoragesMut builds the Acquirer for the whole-registry exclusive view.
func AllStoragesMut() Acquirer[*AllStoragesViewMut] { return allStoragesAcquirerMut{} }

func (allStoragesAcquirerMut) Descriptors() []Descriptor {
	return []Descriptor{{AllStorages: true, Mutability: Exclusive, Thread: Any}}
}

func (allStoragesAcquirerMut) TryBorrow(all *storage.AllStorages) (*AllStoragesViewMut, func(), error) {
	g, err := all.TryBorrowExclusive()
	if err != nil {
		return nil, nil, err
	}
	v := &AllStoragesViewMut{all: all, guard: g}
	return v, func() { v.guard.Release() }, nil
}
