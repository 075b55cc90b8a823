package actor

import (
	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/uid"
)

// State is a point-in-time view of one actor.
type State struct {
	ID          uid.ID
	Template    string
	Components  []string
	Position    event.Vec3
	HasPosition bool
	Velocity    event.Vec3
	HasVelocity bool
	Zombie      bool
}

// Snapshot captures every member in membership order.
func (s *Set) Snapshot() []State {
	out := make([]State, 0, len(s.actors))
	s.Each(func(a *Actor) {
		st := State{
			ID:         a.ID(),
			Template:   a.template,
			Components: make([]string, 0, len(a.components)),
			Zombie:     a.zombie,
		}
		for _, c := range a.components {
			st.Components = append(st.Components, c.TypeName())
		}
		st.Position, st.HasPosition = a.Position()
		st.Velocity, st.HasVelocity = a.Velocity()
		out = append(out, st)
	})
	return out
}
