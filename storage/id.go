package storage

import (
	"fmt"
	"reflect"
)

// Id is a stable identity for one storage slot: either a component/unique
// storage keyed by its Go type, or a user-chosen Custom identity that
// stays stable across processes (spec.md §6: "StorageId::Custom(u64) is
// the stable identity key ... and must be preserved across any external
// serialization adapter").
type Id struct {
	typ      reflect.Type
	custom   uint64
	isCustom bool
}

// OfType builds the Id for component/unique storage T.
func OfType[T any]() Id {
	var zero T
	return Id{typ: reflect.TypeOf(zero)}
}

// Custom builds a user-chosen stable storage identity.
func Custom(id uint64) Id {
	return Id{isCustom: true, custom: id}
}

// IsCustom reports whether this id was built with Custom rather than OfType.
func (id Id) IsCustom() bool { return id.isCustom }

// CustomValue returns the underlying u64 for a Custom id; 0 if OfType.
func (id Id) CustomValue() uint64 { return id.custom }

// key is the ordered string this id sorts and compares by inside the
// registry's NonLockingReadMap (which requires an Ordered key type).
func (id Id) key() string {
	if id.isCustom {
		return fmt.Sprintf("custom:%020d", id.custom)
	}
	return "type:" + id.typ.String()
}

// Name is a human-readable label for error messages: the Go type's name
// for OfType ids ("uint32"), "custom:<n>" for Custom ids ("custom:7").
func (id Id) Name() string {
	if id.isCustom {
		return fmt.Sprintf("custom:%d", id.custom)
	}
	return id.typ.String()
}

func (id Id) String() string { return id.Name() }
