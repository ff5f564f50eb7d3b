package system

import (
	"errors"
	"testing"

	"github.com/launix-de/shipyard/entity"
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/view"
)

type health struct{ hp int }

func TestInvokeRunsBodyAndReleases(t *testing.T) {
	all := storage.New()
	id := entity.New(0, 0)

	seed := New("seed", view.ComponentMut[health](), func(v *view.ComponentViewMut[health]) error {
		v.Set(id, health{hp: 10})
		return nil
	})
	if err := seed.Invoke(all); err != nil {
		t.Fatalf("Invoke(seed): %v", err)
	}

	read := New("read", view.Component[health](), func(v *view.ComponentView[health]) error {
		got, ok := v.Get(id)
		if !ok || got.hp != 10 {
			t.Fatalf("unexpected component state %v %v", got, ok)
		}
		return nil
	})
	if err := read.Invoke(all); err != nil {
		t.Fatalf("Invoke(read): %v", err)
	}
}

func TestInvokeWrapsUserError(t *testing.T) {
	all := storage.New()
	boom := errors.New("boom")
	s := New("failing", view.Component[health](), func(v *view.ComponentView[health]) error {
		return boom
	})
	err := s.Invoke(all)
	var re RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected RunError, got %T: %v", err, err)
	}
	if !errors.Is(re.User, boom) {
		t.Fatalf("RunError.User = %v, want %v", re.User, boom)
	}
	if re.Name != "failing" {
		t.Fatalf("RunError.Name = %q", re.Name)
	}
}

func TestInvokeRecoversPanic(t *testing.T) {
	all := storage.New()
	s := New("panics", view.Component[health](), func(v *view.ComponentView[health]) error {
		panic("kaboom")
	})
	err := s.Invoke(all)
	var re RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected RunError from recovered panic, got %T: %v", err, err)
	}
	var pe storage.PanicError
	if !errors.As(re.User, &pe) {
		t.Fatalf("expected RunError.User to be a PanicError, got %T", re.User)
	}
}

func TestInvokeWrapsGetStorageError(t *testing.T) {
	all := storage.New()
	mut, release, err := view.ComponentMut[health]().TryBorrow(all)
	if err != nil {
		t.Fatalf("seed exclusive borrow: %v", err)
	}
	_ = mut
	defer release()

	s := New("blocked", view.Component[health](), func(v *view.ComponentView[health]) error {
		t.Fatalf("body should never run when the view can't be acquired")
		return nil
	})
	err = s.Invoke(all)
	var re RunError
	if !errors.As(err, &re) {
		t.Fatalf("expected RunError, got %T: %v", err, err)
	}
	if re.GetStorage == nil {
		t.Fatalf("expected GetStorage to be set")
	}
}

func TestRunnableInterfaceSatisfiedByAnySystem(t *testing.T) {
	var _ Runnable = New("x", view.Entities(), func(v *view.EntitiesView) error { return nil })
}

func TestDataSystemInvokeWithDataThreadsValueThrough(t *testing.T) {
	all := storage.New()
	id := entity.New(0, 0)
	var seen int

	s := NewWithData("heal", view.ComponentMut[health](), func(v *view.ComponentViewMut[health], amount int) error {
		cur, _ := v.Get(id)
		cur.hp += amount
		v.Set(id, cur)
		seen = amount
		return nil
	})
	if err := s.InvokeWithData(all, 5); err != nil {
		t.Fatalf("InvokeWithData: %v", err)
	}
	if seen != 5 {
		t.Fatalf("data = %d, want 5", seen)
	}

	read, release, err := view.ComponentMut[health]().TryBorrow(all)
	if err != nil {
		t.Fatalf("TryBorrow: %v", err)
	}
	defer release()
	got, ok := read.Get(id)
	if !ok || got.hp != 5 {
		t.Fatalf("component after InvokeWithData = %v, %v", got, ok)
	}
}
