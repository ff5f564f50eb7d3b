package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"

	"github.com/launix-de/shipyard/entity"
	"github.com/launix-de/shipyard/storage"
	"github.com/launix-de/shipyard/system"
	"github.com/launix-de/shipyard/view"
	"github.com/launix-de/shipyard/world"
)

const prompt = "\033[32mshipyard>\033[0m "

type position struct{ x, y int }
type velocity struct{ dx, dy int }

// demoWorld builds a small World with position/velocity component
// storages, a tick counter unique, three seeded entities, and a "main"
// workload (integrate then tick) so `workloads`/`run main` have
// something to show off.
func demoWorld() *world.World {
	w := world.NewDefault()

	if err := world.AddUnique(w, uint64(0), storage.ReqAny); err != nil {
		panic(err)
	}

	if pv, release, err := world.Borrow(w, view.Tuple3[*view.EntitiesViewMut, *view.ComponentViewMut[position], *view.ComponentViewMut[velocity]](
		view.EntitiesMut(), view.ComponentMut[position](), view.ComponentMut[velocity](),
	)); err == nil {
		for i := 0; i < 3; i++ {
			id := pv.A.Create()
			pv.B.Set(id, position{x: i, y: 0})
			pv.C.Set(id, velocity{dx: 1, dy: i})
		}
		release()
	}

	integrate := system.New("integrate", view.Tuple2[*view.ComponentViewMut[position], *view.ComponentView[velocity]](
		view.ComponentMut[position](), view.Component[velocity](),
	), func(v view.Pair2[*view.ComponentViewMut[position], *view.ComponentView[velocity]]) error {
		var moved []entity.ID
		var next []position
		v.A.All(func(id entity.ID, pos position) bool {
			if vel, ok := v.B.Get(id); ok {
				pos.x += vel.dx
				pos.y += vel.dy
			}
			moved = append(moved, id)
			next = append(next, pos)
			return true
		})
		for i, id := range moved {
			v.A.Set(id, next[i])
		}
		return nil
	})

	tick := system.New("tick", view.UniqueMut[uint64](), func(v *view.UniqueViewMut[uint64]) error {
		v.Set(v.Get() + 1)
		return nil
	})

	w.BuildWorkload("main", []system.Runnable{integrate, tick})
	return w
}

func main() {
	w := demoWorld()

	l, err := readline.NewEx(&readline.Config{
		Prompt:            prompt,
		HistoryFile:       ".shipyard-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		panic(err)
	}
	defer l.Close()
	l.CaptureExitSignal()

	fmt.Println("shipyard ECS demo shell. Try: workloads | run <name> | storages | stat | quit")
	for {
		line, err := l.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			panic(err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !dispatch(w, line) {
			break
		}
	}
}

func dispatch(w *world.World, line string) bool {
	fields := strings.Fields(line)
	switch fields[0] {
	case "quit", "exit":
		return false
	case "workloads":
		snap := w.Inspect()
		for _, name := range snap.Workloads {
			marker := "  "
			if name == snap.DefaultWorkload {
				marker = "* "
			}
			fmt.Println(marker + name)
		}
	case "run":
		if len(fields) < 2 {
			fmt.Println("usage: run <workload>")
			return true
		}
		if err := w.RunWorkload(fields[1]); err != nil {
			fmt.Println("error:", err)
		} else {
			fmt.Println("ok")
		}
	case "storages":
		for _, s := range w.Inspect().Storages {
			fmt.Printf("%-24s thread=%v origin=%s\n", s.Name, s.ThreadRequirement, s.Origin)
		}
	case "stat":
		fmt.Println(world.MemStats())
	default:
		fmt.Println("unknown command:", fields[0])
	}
	return true
}
