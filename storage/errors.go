package storage

import "github.com/launix-de/shipyard/borrow"

// MissingStorageError reports a borrow against a storage that was never
// created, or a unique storage that has been drained by RemoveUnique.
type MissingStorageError struct {
	Name string
}

func (e MissingStorageError) Error() string {
	return "missing storage: " + e.Name
}

// BusyError reports that AllStorages couldn't exclusively borrow a slot
// during a bulk operation (delete_entity/strip/retain/clear); the bulk
// operation reports this for the offending slot and continues with the
// rest, per spec.md §4.2.
type BusyError struct {
	Name string
}

func (e BusyError) Error() string {
	return "storage busy: " + e.Name
}

// GetStorageError is returned when a view fails to acquire its storage.
type GetStorageError struct {
	// Borrow is set when the failure came from the BorrowCell itself.
	Borrow *borrow.Error
	// Missing is set when the storage doesn't exist (or was drained).
	Missing *MissingStorageError
	// Busy is set when a bulk operation couldn't exclusively borrow this slot.
	Busy *BusyError
}

func (e GetStorageError) Error() string {
	switch {
	case e.Borrow != nil:
		return "get storage: " + e.Borrow.Error()
	case e.Missing != nil:
		return "get storage: " + e.Missing.Error()
	case e.Busy != nil:
		return "get storage: " + e.Busy.Error()
	default:
		return "get storage: unknown failure"
	}
}

func (e GetStorageError) Unwrap() error {
	switch {
	case e.Borrow != nil:
		return *e.Borrow
	case e.Missing != nil:
		return *e.Missing
	case e.Busy != nil:
		return *e.Busy
	default:
		return nil
	}
}

// wrapGetStorage classifies err (from a Slot/AllStorages borrow attempt)
// into a GetStorageError.
func wrapGetStorage(err error) error {
	return WrapGetStorage(err)
}

// WrapGetStorage classifies err (from a Slot.TryBorrow/TryBorrowMut call)
// into a GetStorageError, per spec.md §7's GetStorage::{Borrow,
// MissingStorage, StorageBusy}. Exported so the view package's Acquirer
// implementations -- which call Slot methods directly rather than going
// through an AllStorages method -- classify failures the same way.
func WrapGetStorage(err error) error {
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case borrow.Error:
		return GetStorageError{Borrow: &e}
	case MissingStorageError:
		return GetStorageError{Missing: &e}
	case BusyError:
		return GetStorageError{Busy: &e}
	default:
		return err
	}
}

// UniqueRemoveError reports why RemoveUnique failed.
type UniqueRemoveError struct {
	// AllStoragesBorrow is set when the registry itself couldn't be borrowed.
	AllStoragesBorrow *borrow.Error
	// StorageBorrow is set when the registry was fine but the slot couldn't be drained.
	StorageBorrow *borrow.Error
	// Missing is set when the unique storage doesn't exist (already removed, or never added).
	Missing *MissingStorageError
	Name    string
}

func (e UniqueRemoveError) Error() string {
	switch {
	case e.AllStoragesBorrow != nil:
		return "remove unique " + e.Name + ": all-storages " + e.AllStoragesBorrow.Error()
	case e.StorageBorrow != nil:
		return "remove unique " + e.Name + ": " + e.StorageBorrow.Error()
	case e.Missing != nil:
		return "remove unique " + e.Name + ": " + e.Missing.Error()
	default:
		return "remove unique " + e.Name + ": unknown failure"
	}
}
