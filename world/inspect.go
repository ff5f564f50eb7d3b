package world

import "github.com/launix-de/shipyard/storage"

// StorageInfo is one slot's diagnostic snapshot.
type StorageInfo struct {
	Name              string
	ThreadRequirement storage.ThreadRequirement
	Origin            string
}

// Snapshot is a point-in-time diagnostic view of a World, for a REPL or
// dashboard to print -- never used by the scheduler or any system.
type Snapshot struct {
	Storages        []StorageInfo
	Workloads       []string
	DefaultWorkload string
}

// Inspect takes a diagnostic snapshot of w. Best-effort: individual slots
// are listed without being borrowed, and if the registry itself can't
// currently be shared-borrowed (e.g. an AllStoragesViewMut is live) the
// snapshot carries no storages, only the workload names and default.
func (w *World) Inspect() Snapshot {
	slots, err := w.all.Slots()
	snap := Snapshot{
		Workloads:       w.scheduler.Names(),
		DefaultWorkload: w.scheduler.Default(),
	}
	if err != nil {
		return snap
	}
	for _, s := range slots {
		snap.Storages = append(snap.Storages, StorageInfo{
			Name:              s.Id().Name(),
			ThreadRequirement: s.ThreadRequirement(),
			Origin:            s.Origin().String(),
		})
	}
	return snap
}
