// Package entity provides the dense-index/generation entity identifier and
// its allocator. Per spec.md §1 the full entity id lifecycle (bulk
// insertion helpers, cross-entity bookkeeping) is an external collaborator;
// this package implements only the minimal allocator AllStorages needs to
// own a dedicated entity slot.
package entity

import "fmt"

// ID is an opaque 64-bit identifier: a dense index in the low 32 bits and
// a generation counter in the high 32 bits. A dead ID never compares
// equal to a live one reusing the same index, because Kill bumps the
// generation before the index is handed out again.
type ID uint64

// New builds an ID from an index and generation. Exported mainly for
// tests and for external collaborators reconstructing ids (e.g. after
// deserialization).
func New(index, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(index))
}

// Index returns the dense slot index.
func (id ID) Index() uint32 { return uint32(id) }

// Generation returns the generation counter.
func (id ID) Generation() uint32 { return uint32(id >> 32) }

// Raw returns the bit-packed id, the representation storage.UnknownStorage
// methods take (so storage doesn't need to import this package).
func (id ID) Raw() uint64 { return uint64(id) }

// FromRaw is the inverse of Raw.
func FromRaw(raw uint64) ID { return ID(raw) }

func (id ID) String() string {
	return fmt.Sprintf("Entity(%d#%d)", id.Index(), id.Generation())
}
