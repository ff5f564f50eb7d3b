package borrow

import (
	"sync/atomic"

	"github.com/jtolds/gls"
)

// Thread affinity is expressed as goroutine tags rather than OS threads:
// World wraps each public entry point in RunTagged with its own fixed
// OwnerTag, so the whole call tree (and anything spawned from it with Go)
// carries that tag. A pinned storage remembers the tag active when it was
// created; any owner-checked borrow (see Policy) attempted without a
// matching active tag -- notably
// from a goroutine the caller spawned directly with `go`, bypassing World
// -- is rejected with WrongThread. This mirrors how the teacher threads
// backtrace context through goroutines with gls.Go in
// storage/compute.go and storage/partition.go, generalized from
// "carry a stack trace" to "carry an owner identity".
var tagManager = gls.NewContextManager()

const tagKey = "borrow.thread"

var tagCounter uint64

// OwnerTag identifies one logical owning call tree.
type OwnerTag uint64

// NewOwnerTag allocates a fresh, never-reused tag value.
func NewOwnerTag() OwnerTag {
	return OwnerTag(atomic.AddUint64(&tagCounter, 1))
}

// CurrentTag returns the tag active on the calling goroutine, if any.
func CurrentTag() (OwnerTag, bool) {
	v, ok := tagManager.GetValue(tagKey)
	if !ok {
		return 0, false
	}
	return v.(OwnerTag), true
}

// RunTagged runs fn with tag bound as the active owner tag for the
// duration of the call (and any goroutine fn spawns via Go).
func RunTagged(tag OwnerTag, fn func()) {
	tagManager.SetValues(gls.Values{tagKey: tag}, fn)
}

// Go spawns fn in a new goroutine, propagating the calling goroutine's
// active owner tag so pinned borrows keep working inside worker pools.
func Go(fn func()) {
	gls.Go(fn)
}
