// Package world provides the World facade: owns AllStorages and a
// Scheduler, exposes one-shot view borrowing and system/workload
// execution (spec.md §4.6), and wraps every public entrypoint in a fixed
// per-World goroutine-owner tag so the borrow package's thread-affinity
// model (borrow.PinnedBoth / borrow.SyncOnly) has a consistent identity
// to check against across the whole call tree, including anything a
// system spawns further via borrow.Go.
package world

import (
	"errors"

	"github.com/launix-de/shipyard/borrow"
	"github.com/launix-de/shipyard/scheduler"
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/system"
	"github.com/launix-de/shipyard/view"
)

// World owns the storage registry and the workload scheduler. Safe for
// concurrent use: all mutation goes through BorrowCell-guarded storages,
// never through a World-level lock.
type World struct {
	all       *storage.AllStorages
	scheduler *scheduler.Scheduler
	settings  Settings
	owner     borrow.OwnerTag
}

// New builds an empty World under the given settings. New mints the
// OwnerTag every pinned storage this World ever creates will be checked
// against, so two Worlds never share thread-affinity identity even if
// their goroutines happen to overlap.
func New(settings Settings) *World {
	return &World{
		all:       storage.New(),
		scheduler: scheduler.New(),
		settings:  settings,
		owner:     borrow.NewOwnerTag(),
	}
}

// NewDefault builds a World under DefaultSettings().
func NewDefault() *World {
	return New(DefaultSettings())
}

// Settings returns the World's ambient configuration.
func (w *World) Settings() Settings { return w.settings }

// tagged runs fn with this World's OwnerTag active for the whole call
// tree, so PinnedBoth/SyncOnly storages created during fn see a
// consistent owner regardless of which goroutine actually called in.
func (w *World) tagged(fn func()) {
	borrow.RunTagged(w.owner, fn)
}

// AddUnique installs value as a unique storage, creating its slot or
// replacing the value in the existing one. A free function, not a method: Go methods can't carry
// their own type parameters, so World's generic entrypoints (AddUnique,
// RemoveUnique, Borrow, Run) all live at package scope taking *World.
func AddUnique[T any](w *World, value T, req storage.ThreadRequirement) (err error) {
	w.tagged(func() {
		err = storage.AddUnique(w.all, value, req)
	})
	return err
}

// RemoveUnique drains T's unique storage (spec.md §4.2's remove_unique).
// After this succeeds, a later Borrow of UniqueView[T] returns
// MissingStorage, per invariant 5 in spec.md §8.
func RemoveUnique[T any](w *World) (v T, err error) {
	w.tagged(func() {
		v, err = storage.RemoveUnique[T](w.all)
	})
	return v, err
}

// Borrow acquires view V with World's owner tag active, so thread-gated
// views (NonSend/NonSync/NonSendSync storages) see a consistent owning
// goroutine lineage regardless of which goroutine called Borrow.
func Borrow[V any](w *World, acq view.Acquirer[V]) (v V, release func(), err error) {
	w.tagged(func() {
		v, release, err = acq.TryBorrow(w.all)
	})
	return v, release, err
}

// Run invokes sys once, under World's owner tag.
func Run[V any](w *World, sys *system.System[V]) (err error) {
	w.tagged(func() {
		err = sanitizePanic(w, sys.Invoke(w.all))
	})
	return err
}

// RunWithData invokes a data-carrying system once with data, under
// World's owner tag (spec.md §6's run_with_data).
func RunWithData[V any, D any](w *World, sys *system.DataSystem[V, D], data D) (err error) {
	w.tagged(func() {
		err = sanitizePanic(w, sys.InvokeWithData(w.all, data))
	})
	return err
}

// BuildWorkload compiles systems into a named, installed workload.
func (w *World) BuildWorkload(name string, systems []system.Runnable) {
	w.scheduler.Install(name, systems)
}

// SetDefaultWorkload sets the default workload name.
func (w *World) SetDefaultWorkload(name string) error {
	return w.scheduler.SetDefault(name)
}

// RunWorkload runs the named workload, dispatching parallel batches when
// Settings().EnableParallel is true.
func (w *World) RunWorkload(name string) (err error) {
	w.tagged(func() {
		err = sanitizePanic(w, w.scheduler.Run(name, w.all, w.settings.EnableParallel))
	})
	return err
}

// RunDefault runs the default workload.
func (w *World) RunDefault() (err error) {
	w.tagged(func() {
		err = sanitizePanic(w, w.scheduler.RunDefault(w.all, w.settings.EnableParallel))
	})
	return err
}

// sanitizePanic strips the recovered stack trace from a RunError's
// PanicError when Settings.Backtrace is off, matching the teacher's
// scm.SettingsHaveGoodBacktraces toggle (storage/settings.go).
func sanitizePanic(w *World, err error) error {
	if err == nil || w.settings.Backtrace {
		return err
	}
	var re system.RunError
	if errors.As(err, &re) {
		if pe, ok := re.User.(storage.PanicError); ok {
			pe.Stack = ""
			re.User = pe
			return re
		}
	}
	return err
}
