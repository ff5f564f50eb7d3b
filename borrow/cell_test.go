package borrow

import (
	"sync"
	"testing"
)

// assertKind checks that err is a borrow Error of the expected kind.
func assertKind(t *testing.T, err error, want Kind, ctx string) {
	t.Helper()
	berr, ok := err.(Error)
	if !ok {
		t.Fatalf("%s: expected borrow.Error, got %T (%v)", ctx, err, err)
	}
	if berr.Kind != want {
		t.Errorf("%s: expected kind %v, got %v", ctx, want, berr.Kind)
	}
}

func TestSharedBorrowsCoexist(t *testing.T) {
	c := NewCell(42, Unpinned)
	g1, err := c.TryBorrow()
	if err != nil {
		t.Fatalf("first shared borrow: %v", err)
	}
	g2, err := c.TryBorrow()
	if err != nil {
		t.Fatalf("second shared borrow: %v", err)
	}
	if *g1.Get() != 42 || *g2.Get() != 42 {
		t.Fatalf("unexpected values")
	}
	g1.Release()
	g2.Release()
}

func TestExclusiveExcludesShared(t *testing.T) {
	c := NewCell(0, Unpinned)
	mg, err := c.TryBorrowMut()
	if err != nil {
		t.Fatalf("exclusive borrow: %v", err)
	}
	_, err = c.TryBorrow()
	assertKind(t, err, Unique, "shared while exclusive held")
	mg.Release()
	g, err := c.TryBorrow()
	if err != nil {
		t.Fatalf("shared after release: %v", err)
	}
	g.Release()
}

func TestSharedExcludesExclusive(t *testing.T) {
	c := NewCell(0, Unpinned)
	g, err := c.TryBorrow()
	if err != nil {
		t.Fatalf("shared borrow: %v", err)
	}
	_, err = c.TryBorrowMut()
	assertKind(t, err, Shared, "exclusive while shared held")
	g.Release()
	mg, err := c.TryBorrowMut()
	if err != nil {
		t.Fatalf("exclusive after release: %v", err)
	}
	mg.Release()
}

// TestConcurrentExclusiveBorrowsExactlyOneWins covers S6: of many
// concurrent try_borrow_mut calls, exactly one succeeds.
func TestConcurrentExclusiveBorrowsExactlyOneWins(t *testing.T) {
	c := NewCell(0, Unpinned)
	const n = 64
	var wg sync.WaitGroup
	var successes int32
	var mu sync.Mutex
	var winner MutGuard[int]
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			g, err := c.TryBorrowMut()
			if err == nil {
				mu.Lock()
				successes++
				winner = g
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	if successes != 1 {
		t.Fatalf("expected exactly one successful exclusive borrow, got %d", successes)
	}
	winner.Release()
}

func TestPinnedBothRejectsOffThreadBorrow(t *testing.T) {
	var c *Cell[int]
	done := make(chan struct{})
	RunTagged(NewOwnerTag(), func() {
		c = NewCell(7, PinnedBoth)
		close(done)
	})
	<-done

	// same-thread (no tag at all now, since we're outside RunTagged) access fails
	_, err := c.TryBorrow()
	assertKind(t, err, WrongThread, "shared borrow without matching tag")
	_, err = c.TryBorrowMut()
	assertKind(t, err, WrongThread, "exclusive borrow without matching tag")
}

func TestSyncOnlyAllowsSharedFromAnywhereButExclusiveOnlyOnOwner(t *testing.T) {
	var c *Cell[int]
	tag := NewOwnerTag()
	RunTagged(tag, func() {
		c = NewCell(1, SyncOnly)
	})

	// shared borrow from an untagged goroutine succeeds
	g, err := c.TryBorrow()
	if err != nil {
		t.Fatalf("shared borrow on SyncOnly cell from foreign goroutine: %v", err)
	}
	g.Release()

	// exclusive borrow from an untagged goroutine fails
	_, err = c.TryBorrowMut()
	assertKind(t, err, WrongThread, "exclusive borrow on SyncOnly cell from foreign goroutine")

	// exclusive borrow from the owning tag succeeds
	RunTagged(tag, func() {
		mg, err := c.TryBorrowMut()
		if err != nil {
			t.Fatalf("exclusive borrow on SyncOnly cell from owner: %v", err)
		}
		mg.Release()
	})
}

func TestReleaseSharedPanicsWhenNotBorrowed(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic releasing a shared guard with no borrows outstanding")
		}
	}()
	c := NewCell(0, Unpinned)
	Guard[int]{cell: c}.Release()
}
