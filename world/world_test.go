package world

import (
	"errors"
	"sync"
	"testing"

	"github.com/launix-de/shipyard/borrow"
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/system"
	"github.com/launix-de/shipyard/view"
)

// TestScenarioS4 is spec.md §8's S4: add a unique u32=0, run a system
// that increments it, run a reader asserting 1; after RemoveUnique, the
// same writer returns GetStorage(MissingStorage).
func TestScenarioS4(t *testing.T) {
	w := NewDefault()
	if err := AddUnique(w, uint32(0), storage.ReqAny); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}

	increment := system.New("increment", view.UniqueMut[uint32](), func(v *view.UniqueViewMut[uint32]) error {
		v.Set(v.Get() + 1)
		return nil
	})
	if err := Run(w, increment); err != nil {
		t.Fatalf("Run(increment): %v", err)
	}

	read := system.New("read", view.Unique[uint32](), func(v *view.UniqueView[uint32]) error {
		if v.Get() != 1 {
			t.Fatalf("unique value = %d, want 1", v.Get())
		}
		return nil
	})
	if err := Run(w, read); err != nil {
		t.Fatalf("Run(read): %v", err)
	}

	if _, err := RemoveUnique[uint32](w); err != nil {
		t.Fatalf("RemoveUnique: %v", err)
	}

	err := Run(w, increment)
	var re system.RunError
	if !errors.As(err, &re) || re.GetStorage == nil {
		t.Fatalf("expected GetStorage(MissingStorage) after RemoveUnique, got %v", err)
	}
	var missing storage.MissingStorageError
	if !errors.As(re.GetStorage, &missing) {
		t.Fatalf("expected MissingStorageError, got %v", re.GetStorage)
	}
}

// TestScenarioS5 is spec.md §8's S5: a NonSend-pinned unique, attempted
// from a different goroutine, yields WrongThread rather than succeeding.
func TestScenarioS5(t *testing.T) {
	w := NewDefault()
	if err := AddUnique(w, 7, storage.ReqSyncOnly); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}

	// Exclusive borrow from the creating (World-tagged) goroutine succeeds.
	removeAttempt := system.New("remove", view.UniqueMut[int](), func(v *view.UniqueViewMut[int]) error {
		return nil
	})
	if err := Run(w, removeAttempt); err != nil {
		t.Fatalf("exclusive borrow on the owning lineage should succeed, got %v", err)
	}

	var wg sync.WaitGroup
	var foreignErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		// A bare goroutine, not routed through World.tagged/borrow.Go,
		// carries no owner tag at all -- it must fail WrongThread against
		// a SyncOnly cell's exclusive borrow, same as a mismatched tag.
		_, _, err := view.UniqueMut[int]().TryBorrow(rawAllStorages(w))
		foreignErr = err
	}()
	wg.Wait()

	var gse storage.GetStorageError
	if !errors.As(foreignErr, &gse) || gse.Borrow == nil {
		t.Fatalf("expected GetStorage(Borrow(WrongThread)) from a foreign goroutine, got %v", foreignErr)
	}
	if !errors.Is(*gse.Borrow, borrow.Error{Kind: borrow.WrongThread}) {
		t.Fatalf("expected WrongThread, got %v", gse.Borrow)
	}
}

func rawAllStorages(w *World) *storage.AllStorages { return w.all }

func TestBorrowAndReleaseRoundTrip(t *testing.T) {
	w := NewDefault()
	ev, release, err := Borrow(w, view.EntitiesMut())
	if err != nil {
		t.Fatalf("Borrow: %v", err)
	}
	id := ev.Create()
	release()

	ev2, release2, err := Borrow(w, view.Entities())
	if err != nil {
		t.Fatalf("Borrow (shared): %v", err)
	}
	defer release2()
	if !ev2.IsAlive(id) {
		t.Fatalf("entity created in the first borrow should be alive in the second")
	}
}

func TestRunWorkloadAndDefault(t *testing.T) {
	w := NewDefault()
	var ran bool
	s := system.New("mark", view.Entities(), func(*view.EntitiesView) error {
		ran = true
		return nil
	})
	w.BuildWorkload("main", []system.Runnable{s})
	if err := w.RunDefault(); err != nil {
		t.Fatalf("RunDefault: %v", err)
	}
	if !ran {
		t.Fatalf("workload's system never ran")
	}

	if err := w.SetDefaultWorkload("missing"); err == nil {
		t.Fatalf("SetDefaultWorkload on an unknown name should fail")
	}
	if err := w.RunWorkload("main"); err != nil {
		t.Fatalf("RunWorkload: %v", err)
	}
}

func TestRunWithDataThreadsValueIntoSystemBody(t *testing.T) {
	w := NewDefault()
	if err := AddUnique(w, 0, storage.ReqAny); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}

	add := system.NewWithData("add", view.UniqueMut[int](), func(v *view.UniqueViewMut[int], delta int) error {
		v.Set(v.Get() + delta)
		return nil
	})
	if err := RunWithData(w, add, 7); err != nil {
		t.Fatalf("RunWithData: %v", err)
	}

	read := system.New("read", view.Unique[int](), func(v *view.UniqueView[int]) error {
		if v.Get() != 7 {
			t.Fatalf("unique value = %d, want 7", v.Get())
		}
		return nil
	})
	if err := Run(w, read); err != nil {
		t.Fatalf("Run(read): %v", err)
	}
}

func TestInspectReportsStoragesAndWorkloads(t *testing.T) {
	w := NewDefault()
	if err := AddUnique(w, "hello", storage.ReqAny); err != nil {
		t.Fatalf("AddUnique: %v", err)
	}
	w.BuildWorkload("w1", nil)

	snap := w.Inspect()
	if snap.DefaultWorkload != "w1" {
		t.Fatalf("DefaultWorkload = %q, want %q", snap.DefaultWorkload, "w1")
	}
	if len(snap.Storages) != 1 {
		t.Fatalf("expected 1 storage slot, got %d", len(snap.Storages))
	}
}

func TestSanitizePanicStripsStackWhenBacktraceDisabled(t *testing.T) {
	w := New(Settings{EnableParallel: false, Backtrace: false})
	panics := system.New("boom", view.Entities(), func(*view.EntitiesView) error {
		panic("kaboom")
	})
	err := Run(w, panics)
	var re system.RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected RunError, got %v", err)
	}
	pe, ok := re.User.(storage.PanicError)
	if !ok {
		t.Fatalf("expected PanicError, got %T", re.User)
	}
	if pe.Stack != "" {
		t.Fatalf("expected Stack to be stripped when Backtrace is disabled")
	}
}
