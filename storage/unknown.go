package storage

// UnknownStorage is the type-erased capability set every storage (component
// column or unique value) must expose, per spec.md §1. Downcasting back to
// the concrete type ("any_cast"/"any_cast_mut" in the spec) is done with an
// ordinary Go type assertion against the live value returned from a
// borrowed slot -- that's the idiomatic Go stand-in for the spec's
// explicit cast operations, so this interface only needs the hooks
// AllStorages itself calls generically.
type UnknownStorage interface {
	// Delete removes the component for entity id, if any. Reports whether
	// anything was removed.
	Delete(id uint64) bool
	// Strip is Delete without the removed/not-removed distinction, used
	// when AllStorages iterates every slot for an entity.
	Strip(id uint64)
	// Clear empties the storage entirely.
	Clear()
}
