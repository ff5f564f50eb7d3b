// Package component provides the minimal sparse-set component column
// spec.md §1 names as an assumed external collaborator: dense payload
// array plus a sparse entity-index lookup, O(1) insert/get/remove. It
// deliberately isn't the gold-plated columnar storage the teacher builds
// for SQL tables (see DESIGN.md) -- just enough for AllStorages to hold
// something concrete per component type.
package component

import "github.com/launix-de/shipyard/entity"

// Storage is a sparse set mapping live entity ids to a T value.
type Storage[T any] struct {
	sparse []int32 // by entity index; -1 means absent
	dense  []T
	ids    []entity.ID // ids[i] is the entity owning dense[i]
}

// New returns an empty component storage for T.
func New[T any]() *Storage[T] {
	return &Storage[T]{}
}

func (s *Storage[T]) ensure(n uint32) {
	for uint32(len(s.sparse)) < n {
		s.sparse = append(s.sparse, -1)
	}
}

// Set inserts or overwrites the component for id.
func (s *Storage[T]) Set(id entity.ID, value T) {
	idx := id.Index()
	s.ensure(idx + 1)
	if s.sparse[idx] >= 0 {
		s.dense[s.sparse[idx]] = value
		return
	}
	s.sparse[idx] = int32(len(s.dense))
	s.dense = append(s.dense, value)
	s.ids = append(s.ids, id)
}

// Get returns the component for id and whether it's present.
func (s *Storage[T]) Get(id entity.ID) (T, bool) {
	idx := id.Index()
	if int(idx) >= len(s.sparse) || s.sparse[idx] < 0 {
		var zero T
		return zero, false
	}
	return s.dense[s.sparse[idx]], true
}

// Has reports whether id has a component here.
func (s *Storage[T]) Has(id entity.ID) bool {
	idx := id.Index()
	return int(idx) < len(s.sparse) && s.sparse[idx] >= 0
}

// Remove deletes the component for id, swapping the last dense element
// into its place to keep the dense array packed. Reports whether
// anything was removed.
func (s *Storage[T]) Remove(id entity.ID) bool {
	idx := id.Index()
	if int(idx) >= len(s.sparse) || s.sparse[idx] < 0 {
		return false
	}
	di := s.sparse[idx]
	last := int32(len(s.dense) - 1)
	if di != last {
		s.dense[di] = s.dense[last]
		moved := s.ids[last]
		s.ids[di] = moved
		s.sparse[moved.Index()] = di
	}
	s.dense = s.dense[:last]
	s.ids = s.ids[:last]
	s.sparse[idx] = -1
	return true
}

// Len returns the number of entities currently holding this component.
func (s *Storage[T]) Len() int { return len(s.dense) }

// All iterates every (entity, value) pair in dense order. Safe to use as
// a range-over-func iterator: `for id, v := range storage.All`.
func (s *Storage[T]) All(yield func(entity.ID, T) bool) {
	for i, id := range s.ids {
		if !yield(id, s.dense[i]) {
			return
		}
	}
}

// --- storage.UnknownStorage ---

// Delete removes the component for the entity encoded by raw.
func (s *Storage[T]) Delete(raw uint64) bool { return s.Remove(entity.FromRaw(raw)) }

// Strip is Delete without the removed/not-removed distinction.
func (s *Storage[T]) Strip(raw uint64) { s.Remove(entity.FromRaw(raw)) }

// Clear empties the storage.
func (s *Storage[T]) Clear() {
	s.sparse = nil
	s.dense = nil
	s.ids = nil
}
