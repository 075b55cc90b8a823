package sim

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/actor"
	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
	"github.com/actorbus/engine/internal/core/scope"
	"github.com/actorbus/engine/internal/data"
	"github.com/actorbus/engine/internal/scripting"
)

var errNoTemplates = errors.New("no template table loaded")

// World owns one scope tree: the global root scope, the actor set hanging
// off it and everything the actors' components need.
// Accessed only from the game loop goroutine; no locks.
type World struct {
	tree      *scope.Tree
	root      *scope.Scope
	actors    *actor.Set
	registry  *component.Registry
	templates *data.TemplateTable
	scripts   *scripting.Engine
	log       *zap.Logger
}

// Deps are the shared tables a World is built from. Registry defaults to the
// built-in components; Templates and Scripts are optional.
type Deps struct {
	Registry  *component.Registry
	Templates *data.TemplateTable
	Scripts   *scripting.Engine
	Log       *zap.Logger
}

func NewWorld(d Deps) *World {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Registry == nil {
		d.Registry = component.NewBuiltinRegistry()
	}
	tree := scope.NewTree(d.Log)
	w := &World{
		tree:      tree,
		root:      tree.NewScope(),
		registry:  d.Registry,
		templates: d.Templates,
		scripts:   d.Scripts,
		log:       d.Log,
	}
	w.actors = actor.NewSet(w.root, w)
	return w
}

// actor.Owner

func (w *World) Components() *component.Registry { return w.registry }
func (w *World) Scripts() *scripting.Engine      { return w.scripts }
func (w *World) Logger() *zap.Logger             { return w.log }

func (w *World) Templates() actor.Templates {
	if w.templates == nil {
		return missingTemplates{}
	}
	return w.templates
}

type missingTemplates struct{}

func (missingTemplates) Resolve(name string) ([]component.Spec, error) {
	return nil, fmt.Errorf("template %q: %w", name, errNoTemplates)
}

func (w *World) Tree() *scope.Tree  { return w.tree }
func (w *World) Root() *scope.Scope { return w.root }
func (w *World) Actors() *actor.Set { return w.actors }

// CheckTemplates verifies that every template only names registered
// component types, so a typo fails at startup instead of at first spawn.
func (w *World) CheckTemplates() error {
	if w.templates == nil {
		return nil
	}
	for _, name := range w.templates.Names() {
		if err := w.registry.Check(w.templates.Get(name).Components); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
	}
	return nil
}

// LoadLevel builds every placement of lvl immediately.
func (w *World) LoadLevel(lvl *data.Level) error {
	if w.templates == nil {
		return fmt.Errorf("load level: %w", errNoTemplates)
	}
	placed, err := lvl.Resolve(w.templates)
	if err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	reqs := make([]actor.SpawnRequest, len(placed))
	for i, p := range placed {
		reqs[i] = actor.SpawnRequest{
			Template: p.Template,
			Specs:    p.Specs,
			Position: p.Position,
			Velocity: p.Velocity,
		}
	}
	if err := w.actors.Load(reqs); err != nil {
		return fmt.Errorf("load level: %w", err)
	}
	w.log.Info("level loaded", zap.String("name", lvl.Name), zap.Int("actors", len(reqs)))
	return nil
}

// Spawn queues an actor from a named template at pos.
func (w *World) Spawn(template string, pos, vel event.Vec3) error {
	return w.actors.SpawnTemplate(template, pos, vel)
}

// Update advances the world by one tick.
func (w *World) Update(dt time.Duration) error {
	return w.actors.Update(dt)
}

// SetDebugDisplay broadcasts the toggle from the root so every subscriber,
// not only the actors, sees it.
func (w *World) SetDebugDisplay(on bool) {
	if on {
		w.root.Receive(event.EnableDebugDisplay{})
		return
	}
	w.root.Receive(event.DisableDebugDisplay{})
}

func (w *World) DebugDisplay() bool { return w.actors.DebugDisplay() }

// Shutdown tells every actor to delete itself and drops them.
func (w *World) Shutdown() {
	w.actors.Destroy()
}
