package view

import (
	"errors"

	"github.com/launix-de/shipyard/storage"
)

// Optional wraps a held view in the None/Some sense: MissingStorage
// collapses to a nil Value rather than propagating, everything else
// still propagates (spec.md §4.3).
type Optional[V any] struct {
	Value V
	Ok    bool
}

type optionalAcquirer[V any] struct {
	inner Acquirer[V]
}

// WrapOptional builds the Acquirer for Optional[V] from V's own Acquirer.
func WrapOptional[V any](inner Acquirer[V]) Acquirer[Optional[V]] {
	return optionalAcquirer[V]{inner: inner}
}

func (o optionalAcquirer[V]) Descriptors() []Descriptor { return o.inner.Descriptors() }

func (o optionalAcquirer[V]) TryBorrow(all *storage.AllStorages) (Optional[V], func(), error) {
	v, release, err := o.inner.TryBorrow(all)
	if err == nil {
		return Optional[V]{Value: v, Ok: true}, release, nil
	}
	if isMissingStorage(err) {
		return Optional[V]{}, func() {}, nil
	}
	return Optional[V]{}, nil, err
}

func isMissingStorage(err error) bool {
	var missing storage.MissingStorageError
	if errors.As(err, &missing) {
		return true
	}
	var gse storage.GetStorageError
	if errors.As(err, &gse) {
		return gse.Missing != nil
	}
	return false
}
