package actor

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/message"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/core/uid"
	"github.com/actorbus/engine/internal/scripting"
)

// Templates resolves a template name into component specs. The returned
// specs belong to the caller.
type Templates interface {
	Resolve(name string) ([]component.Spec, error)
}

// Owner is the simulation context a Set belongs to.
type Owner interface {
	Components() *component.Registry
	Templates() Templates
	Scripts() *scripting.Engine
	Logger() *zap.Logger
}

// SpawnRequest describes one actor to build.
type SpawnRequest struct {
	Template string
	Specs    []component.Spec
	Position event.Vec3
	Velocity event.Vec3
}

// Set is a scope whose children are actors. It owns actor creation, the
// deferred spawn queue and end-of-tick zombie reclamation.
//
// The scope's child list is the single record of membership and order; the
// actors map is a typed view kept in step by adopt and release only.
type Set struct {
	*scope.Scope
	owner  Owner
	actors map[uid.ID]*Actor
	queue  []SpawnRequest
	debug  bool
	log    *zap.Logger
}

// NewSet creates a set under parent.
func NewSet(parent *scope.Scope, owner Owner) *Set {
	log := owner.Logger()
	if log == nil {
		log = zap.NewNop()
	}
	s := &Set{
		Scope:  parent.Tree().NewScope(),
		owner:  owner,
		actors: make(map[uid.ID]*Actor, 256),
		queue:  make([]SpawnRequest, 0, 16),
		log:    log,
	}
	parent.RegisterSubscriber(s.Subscriber)
	h := s.Handler()
	message.On(h, func(event.EnableDebugDisplay) { s.debug = true })
	message.On(h, func(event.DisableDebugDisplay) { s.debug = false })
	return s
}

// component.Context

func (s *Set) Components() *component.Registry { return s.owner.Components() }
func (s *Set) Scripts() *scripting.Engine      { return s.owner.Scripts() }
func (s *Set) Logger() *zap.Logger             { return s.log }

// Create allocates an empty actor and makes it a member immediately.
func (s *Set) Create() (uid.ID, *Actor) {
	a := newActor(s.Tree().NewScope())
	s.adopt(a)
	return a.ID(), a
}

// Spawn queues an actor built from specs. It is created after the current
// update pass and first updated on the next tick. Unknown component types
// are rejected here, at the requesting site.
func (s *Set) Spawn(specs []component.Spec, pos, vel event.Vec3) error {
	return s.enqueue(SpawnRequest{Specs: specs, Position: pos, Velocity: vel})
}

// SpawnTemplate queues an actor built from a named template.
func (s *Set) SpawnTemplate(name string, pos, vel event.Vec3) error {
	specs, err := s.owner.Templates().Resolve(name)
	if err != nil {
		return fmt.Errorf("spawn %q: %w", name, err)
	}
	return s.enqueue(SpawnRequest{Template: name, Specs: specs, Position: pos, Velocity: vel})
}

func (s *Set) enqueue(req SpawnRequest) error {
	if err := s.Components().Check(req.Specs); err != nil {
		return fmt.Errorf("spawn: %w", err)
	}
	specs := make([]component.Spec, len(req.Specs))
	for i, spec := range req.Specs {
		specs[i] = spec.Clone()
	}
	req.Specs = specs
	s.queue = append(s.queue, req)
	return nil
}

// Pending returns the number of queued spawn requests.
func (s *Set) Pending() int {
	return len(s.queue)
}

// Load builds actors immediately. It is meant for level setup outside the
// tick; the first failure aborts and leaves no half-built actor behind.
func (s *Set) Load(reqs []SpawnRequest) error {
	for i, req := range reqs {
		if _, err := s.build(req); err != nil {
			return fmt.Errorf("load actor %d (%s): %w", i, describe(req), err)
		}
	}
	return nil
}

// Update runs one tick: every member actor is updated, then the spawn queue
// is drained, then zombies are reclaimed. Spawn failures are reported
// together; the rest of the queue is still processed.
func (s *Set) Update(dt time.Duration) error {
	for _, id := range s.Children() {
		a, ok := s.actors[id]
		if !ok {
			continue
		}
		a.fresh = false
		a.Update(dt)
	}
	err := s.drainSpawnQueue()
	s.ReapZombieActors()
	return err
}

func (s *Set) drainSpawnQueue() error {
	if len(s.queue) == 0 {
		return nil
	}
	queue := s.queue
	s.queue = make([]SpawnRequest, 0, cap(queue))

	var errs []error
	for _, req := range queue {
		a, err := s.build(req)
		if err != nil {
			s.log.Error("spawn failed", zap.String("actor", describe(req)), zap.Error(err))
			errs = append(errs, fmt.Errorf("spawn %s: %w", describe(req), err))
			continue
		}
		a.fresh = true
		s.log.Debug("actor spawned",
			zap.Uint64("id", uint64(a.ID())),
			zap.String("template", a.template),
		)
		s.SendToGlobalScope(event.ActorSpawned{ID: a.ID(), Template: a.template, Position: req.Position})
	}
	return errors.Join(errs...)
}

func (s *Set) build(req SpawnRequest) (*Actor, error) {
	id, a := s.Create()
	a.template = req.Template
	if err := a.Load(req.Specs, req.Position, req.Velocity, s); err != nil {
		s.release(id)
		return nil, err
	}
	if s.debug {
		a.Receive(event.EnableDebugDisplay{})
	}
	return a, nil
}

// ReapZombieActors drops every zombie that has been updated at least once
// and returns how many were dropped.
func (s *Set) ReapZombieActors() int {
	n := 0
	for _, id := range s.Children() {
		a, ok := s.actors[id]
		if !ok || !a.zombie || a.fresh {
			continue
		}
		s.release(id)
		n++
		s.log.Debug("actor reaped", zap.Uint64("id", uint64(id)))
		s.SendToGlobalScope(event.ActorReaped{ID: id})
	}
	return n
}

// Destroy tells every actor to delete itself, so components can let go of
// external resources, then drops them all along with pending spawns.
func (s *Set) Destroy() {
	for _, id := range s.Children() {
		if a, ok := s.actors[id]; ok {
			a.Receive(event.DeleteActor{ID: id})
		}
	}
	s.Clear()
}

// Clear drops every actor and pending spawn without notifying anyone.
func (s *Set) Clear() {
	for _, id := range s.Children() {
		if _, ok := s.actors[id]; ok {
			s.release(id)
		}
	}
	s.queue = s.queue[:0]
}

// Get returns a member actor. Asking for a non-member is a programming error.
func (s *Set) Get(id uid.ID) *Actor {
	if !s.IsMember(id) {
		panic(fmt.Sprintf("actor: %d is not a member of set %d", id, s.ID()))
	}
	return s.actors[id]
}

func (s *Set) IsMember(id uid.ID) bool {
	if id == uid.Invalid {
		return false
	}
	_, ok := s.actors[id]
	return ok && s.IsSubscriber(id)
}

// Size returns the number of member actors, zombies included.
func (s *Set) Size() int {
	return len(s.actors)
}

// Each calls fn for every member in membership order.
func (s *Set) Each(fn func(*Actor)) {
	for _, id := range s.Children() {
		if a, ok := s.actors[id]; ok {
			fn(a)
		}
	}
}

// SetDebugDisplay toggles diagnostic output for the set and every actor.
func (s *Set) SetDebugDisplay(on bool) {
	if on {
		s.Receive(event.EnableDebugDisplay{})
		return
	}
	s.Receive(event.DisableDebugDisplay{})
}

func (s *Set) DebugDisplay() bool { return s.debug }

func (s *Set) adopt(a *Actor) {
	s.RegisterSubscriber(a.Subscriber)
	s.actors[a.ID()] = a
}

func (s *Set) release(id uid.ID) {
	s.RemoveSubscriber(id)
	delete(s.actors, id)
	s.Tree().Release(id)
}

func describe(req SpawnRequest) string {
	if req.Template != "" {
		return req.Template
	}
	return fmt.Sprintf("%d components", len(req.Specs))
}
