package storage

import (
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Creation-origin ids stamp each StorageSlot for debug/error-reporting
// purposes only -- never used as a lookup key. Reused near-verbatim from
// the teacher's fast UUID generator (storage/fast_uuid.go): a low-entropy
// UUIDv4-shaped value that avoids a crypto/rand syscall on every storage
// creation, which is fine since nothing security-sensitive depends on it.
var originCounter uint64 = uint64(time.Now().UnixNano())

func newOrigin() uuid.UUID {
	ctr := atomic.AddUint64(&originCounter, 1)
	now := uint64(time.Now().UnixNano())
	var b [16]byte
	binary.LittleEndian.PutUint64(b[0:8], ctr)
	binary.LittleEndian.PutUint64(b[8:16], ctr^now^(now<<17))
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return uuid.UUID(b)
}
