package world

import (
	"fmt"
	"runtime"
	"strings"
)

// MemStats reports a one-line memory usage summary, kept close to
// verbatim from the teacher's storage/storage.go PrintMemUsage.
func MemStats() string {
	runtime.GC()
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Alloc = %v MiB\tTotalAlloc = %v MiB\tSys = %v MiB\tNumGC = %v",
		bToMb(m.Alloc), bToMb(m.TotalAlloc), bToMb(m.Sys), m.NumGC))
	return b.String()
}

func bToMb(b uint64) uint64 {
	return b / 1024 / 1024
}
