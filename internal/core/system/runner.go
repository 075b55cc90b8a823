package system

import (
	"sort"
	"time"
)

// Runner executes systems in phase order each tick. Systems of the same
// phase run in registration order.
type Runner struct {
	systems []System
	sorted  bool
	ticks   uint64
}

func NewRunner() *Runner {
	return &Runner{
		systems: make([]System, 0, 8),
	}
}

func (r *Runner) Register(s System) {
	r.systems = append(r.systems, s)
	r.sorted = false
}

// Tick runs every system once and returns the number of the tick that ran,
// starting at 1.
func (r *Runner) Tick(dt time.Duration) uint64 {
	r.ensureSorted()
	r.ticks++
	for _, s := range r.systems {
		s.Update(dt)
	}
	return r.ticks
}

// Ticks returns the number of completed or running ticks.
func (r *Runner) Ticks() uint64 { return r.ticks }

func (r *Runner) Len() int { return len(r.systems) }

func (r *Runner) ensureSorted() {
	if !r.sorted {
		sort.SliceStable(r.systems, func(i, j int) bool {
			return r.systems[i].Phase() < r.systems[j].Phase()
		})
		r.sorted = true
	}
}
