package view

import (
	"testing"

	"github.com/launix-de/shipyard/entity"
	"github.com/launix-de/shipyard/storage"
)

type position struct{ x, y int }
type velocity struct{ dx, dy int }

func TestComponentViewAutoCreatesAndRoundTrips(t *testing.T) {
	all := storage.New()
	acq := ComponentMut[position]()
	v, release, err := acq.TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow: %v", err)
	}
	id := entity.New(0, 0)
	v.Set(id, position{1, 2})
	release()

	acq2 := Component[position]()
	v2, release2, err := acq2.TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow (2nd): %v", err)
	}
	defer release2()
	got, ok := v2.Get(id)
	if !ok || got != (position{1, 2}) {
		t.Fatalf("Get = %v, %v", got, ok)
	}
}

func TestComponentExclusiveExcludesConcurrentShared(t *testing.T) {
	all := storage.New()
	mut, relMut, err := ComponentMut[position]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow mut: %v", err)
	}
	_ = mut
	defer relMut()

	_, _, err = Component[position]().TryBorrow(all)
	if err == nil {
		t.Fatalf("expected shared borrow to fail while exclusive is held")
	}
}

func TestUniqueViewRequiresPriorAdd(t *testing.T) {
	all := storage.New()
	_, _, err := Unique[int]().TryBorrow(all)
	if err == nil {
		t.Fatalf("expected MissingStorage before AddUnique")
	}

	if err := storage.AddUnique(all, 42, storage.ReqAny); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}
	uv, release, err := Unique[int]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow unique: %v", err)
	}
	defer release()
	if uv.Get() != 42 {
		t.Fatalf("Get = %d, want 42", uv.Get())
	}
}

func TestUniqueViewMutWritesBackOnRelease(t *testing.T) {
	all := storage.New()
	if err := storage.AddUnique(all, 1, storage.ReqAny); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}
	umv, release, err := UniqueMut[int]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow mut: %v", err)
	}
	umv.Set(99)
	release()

	uv, release2, err := Unique[int]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow shared: %v", err)
	}
	defer release2()
	if uv.Get() != 99 {
		t.Fatalf("Get = %d, want 99 (write should survive release)", uv.Get())
	}
}

func TestOptionalCollapsesMissingStorage(t *testing.T) {
	all := storage.New()
	opt, release, err := WrapOptional(Unique[int]()).TryBorrow(all)
	if err != nil {
		t.Fatalf("Optional should swallow MissingStorage, got %v", err)
	}
	defer release()
	if opt.Ok {
		t.Fatalf("expected Ok=false for a never-added unique")
	}
}

func TestTuple2AllOrNothingReleasesFirstOnSecondFailure(t *testing.T) {
	all := storage.New()
	mut, relMut, err := ComponentMut[velocity]().TryBorrow(all)
	if err != nil {
		t.Fatalf("seed exclusive borrow: %v", err)
	}

	_, _, err = Tuple2[*ComponentView[position], *ComponentView[velocity]](
		Component[position](), Component[velocity](),
	).TryBorrow(all)
	if err == nil {
		t.Fatalf("expected the velocity half of the tuple to fail while exclusive is held")
	}
	relMut()

	// Now both halves should succeed cleanly, proving the first half's
	// guard wasn't left dangling by the earlier failed attempt.
	pair, release, err := Tuple2[*ComponentView[position], *ComponentView[velocity]](
		Component[position](), Component[velocity](),
	).TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow after release: %v", err)
	}
	defer release()
	_ = pair
}

func TestDescriptorsConcatenateInOrder(t *testing.T) {
	acq := Tuple2[*ComponentView[position], *ComponentViewMut[velocity]](
		Component[position](), ComponentMut[velocity](),
	)
	ds := acq.Descriptors()
	if len(ds) != 2 {
		t.Fatalf("len(Descriptors()) = %d, want 2", len(ds))
	}
	if ds[0].Mutability != Shared || ds[1].Mutability != Exclusive {
		t.Fatalf("descriptor order/mutability mismatch: %+v", ds)
	}
}

func TestAllStoragesMutConflictsWithEverything(t *testing.T) {
	a := Descriptor{AllStorages: true, Mutability: Exclusive}
	b := Descriptor{Storage: storage.OfType[position](), Mutability: Shared}
	if !Conflicts(a, b) {
		t.Fatalf("AllStoragesMut should conflict with any other descriptor")
	}
}

func TestAllStoragesViewMutRetainKeepsOnlyNamedStorages(t *testing.T) {
	all := storage.New()
	id := entity.New(0, 0)

	posAcq, relPos, err := ComponentMut[position]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow position: %v", err)
	}
	posAcq.Set(id, position{1, 2})
	relPos()

	velAcq, relVel, err := ComponentMut[velocity]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow velocity: %v", err)
	}
	velAcq.Set(id, velocity{3, 4})
	relVel()

	asv, release, err := AllStoragesMut().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow AllStoragesMut: %v", err)
	}
	errs := asv.Retain(id, []storage.Id{storage.OfType[position]()})
	release()
	if len(errs) != 0 {
		t.Fatalf("Retain errors: %v", errs)
	}

	posView, relPos2, err := Component[position]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow position (2): %v", err)
	}
	defer relPos2()
	if _, ok := posView.Get(id); !ok {
		t.Fatalf("position should survive Retain([position])")
	}

	velView, relVel2, err := Component[velocity]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow velocity (2): %v", err)
	}
	defer relVel2()
	if _, ok := velView.Get(id); ok {
		t.Fatalf("velocity should be stripped by Retain([position])")
	}
}

func TestTwoOwningThreadDescriptorsConflictAcrossDifferentStorages(t *testing.T) {
	a := Descriptor{Storage: storage.OfType[position](), Mutability: Exclusive, Thread: RequiresOwningThread}
	b := Descriptor{Storage: storage.OfType[velocity](), Mutability: Exclusive, Thread: RequiresOwningThread}
	if !Conflicts(a, b) {
		t.Fatalf("two RequiresOwningThread descriptors should conflict even over different storages")
	}
}
