// Package system wraps a user function together with the view tuple it
// declares, producing the invoker/descriptor record spec.md §4.4 asks
// registration to build.
package system

import (
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/view"
)

// RunError is returned by Invoke: either the view tuple couldn't be
// acquired, or the user function itself panicked or returned an error.
type RunError struct {
	Name       string
	GetStorage error
	User       error
}

func (e RunError) Error() string {
	if e.GetStorage != nil {
		return e.Name + ": " + e.GetStorage.Error()
	}
	return e.Name + ": " + e.User.Error()
}

func (e RunError) Unwrap() error {
	if e.GetStorage != nil {
		return e.GetStorage
	}
	return e.User
}

// System wraps a user function of one acquired view tuple V, producing a
// typed error on either the acquire step or the user step, with panics
// converted to errors so a single failing system never brings down a
// whole batch (see storage.PanicError).
type System[V any] struct {
	name  string
	views view.Acquirer[V]
	body  func(V) error
}

// New builds a named system from its view acquirer and body.
func New[V any](name string, views view.Acquirer[V], body func(V) error) *System[V] {
	return &System[V]{name: name, views: views, body: body}
}

// Name is the debug-assigned name a RunError is tagged with.
func (s *System[V]) Name() string { return s.name }

// Descriptors returns the concatenated BorrowDescriptor set the
// scheduler batches on, without acquiring anything.
func (s *System[V]) Descriptors() []view.Descriptor { return s.views.Descriptors() }

// Invoke acquires the view tuple, runs the body, and releases, wrapping
// both panics and returned errors into a RunError tagged with the
// system's name (spec.md §4.4's invoker contract).
func (s *System[V]) Invoke(all *storage.AllStorages) (err error) {
	v, release, gerr := s.views.TryBorrow(all)
	if gerr != nil {
		return RunError{Name: s.name, GetStorage: gerr}
	}
	defer func() {
		release()
		if r := recover(); r != nil {
			err = RunError{Name: s.name, User: storage.Recover(r)}
		}
	}()
	if uerr := s.body(v); uerr != nil {
		return RunError{Name: s.name, User: uerr}
	}
	return nil
}

// Runnable is the type-erased capability the scheduler needs: a name,
// its static descriptors, and an invoker. Every *System[V] satisfies it
// regardless of V.
type Runnable interface {
	Name() string
	Descriptors() []view.Descriptor
	Invoke(all *storage.AllStorages) error
}

// DataSystem is a System whose body additionally receives a caller-supplied
// value of type D on every invocation (spec.md §4.4's optional Data
// argument, run one-shot via World's RunWithData rather than scheduled
// into a workload, since the data must be supplied fresh each call).
type DataSystem[V any, D any] struct {
	name  string
	views view.Acquirer[V]
	body  func(V, D) error
}

// NewWithData builds a named data-carrying system from its view acquirer and body.
func NewWithData[V any, D any](name string, views view.Acquirer[V], body func(V, D) error) *DataSystem[V, D] {
	return &DataSystem[V, D]{name: name, views: views, body: body}
}

// Name is the debug-assigned name a RunError is tagged with.
func (s *DataSystem[V, D]) Name() string { return s.name }

// Descriptors returns the concatenated BorrowDescriptor set.
func (s *DataSystem[V, D]) Descriptors() []view.Descriptor { return s.views.Descriptors() }

// InvokeWithData acquires the view tuple, runs the body with data, and
// releases, under the same panic/error wrapping contract as Invoke.
func (s *DataSystem[V, D]) InvokeWithData(all *storage.AllStorages, data D) (err error) {
	v, release, gerr := s.views.TryBorrow(all)
	if gerr != nil {
		return RunError{Name: s.name, GetStorage: gerr}
	}
	defer func() {
		release()
		if r := recover(); r != nil {
			err = RunError{Name: s.name, User: storage.Recover(r)}
		}
	}()
	if uerr := s.body(v, data); uerr != nil {
		return RunError{Name: s.name, User: uerr}
	}
	return nil
}
