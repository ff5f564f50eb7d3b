package storage

import (
	"fmt"
	"runtime/debug"
)

// PanicError wraps a recovered panic from user system code as an
// ordinary error, so the scheduler's typed-error propagation never has to
// special-case unwinding. Grounded on the teacher's scanError
// (storage/scan.go in the teacher repo): capture recover()'s value plus a
// stack trace, nothing else.
type PanicError struct {
	Value any
	Stack string
}

func (e PanicError) Error() string {
	return fmt.Sprintf("panic: %v\n%s", e.Value, e.Stack)
}

// Recover turns a just-recovered panic value into a PanicError. Call as
// `if r := recover(); r != nil { err = storage.Recover(r) }`.
func Recover(r any) error {
	return PanicError{Value: r, Stack: string(debug.Stack())}
}
