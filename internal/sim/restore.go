package sim

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/actorbus/engine/internal/actor"
	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/uid"
	"github.com/actorbus/engine/internal/persist"
)

// Restore rebuilds the actors of snap from their templates and returns how
// many were built. Zombies and actors without a template are skipped. A
// saved position or velocity replaces the template's transform config so the
// actor resumes where it was, not offset from it.
//
// Restored actors get new ids; numbering resumes past the highest id in snap
// so ids never repeat across runs.
func (w *World) Restore(snap persist.Snapshot) (int, error) {
	w.tree.IDs().SetStart(uid.ID(snap.MaxID()))
	if w.templates == nil {
		return 0, fmt.Errorf("restore: %w", errNoTemplates)
	}

	reqs := make([]actor.SpawnRequest, 0, len(snap.Actors))
	skipped := 0
	for _, row := range snap.Actors {
		if row.Zombie || row.Template == "" {
			skipped++
			continue
		}
		specs, err := w.templates.Resolve(row.Template)
		if err != nil {
			return 0, fmt.Errorf("restore actor %d: %w", row.ID, err)
		}
		req := actor.SpawnRequest{Template: row.Template, Specs: specs}
		if row.Position != nil {
			req.Position = *row.Position
			dropTransformKey(specs, "position")
		}
		if row.Velocity != nil {
			req.Velocity = *row.Velocity
			dropTransformKey(specs, "velocity")
		}
		reqs = append(reqs, req)
	}
	if err := w.actors.Load(reqs); err != nil {
		return 0, fmt.Errorf("restore: %w", err)
	}
	w.log.Info("snapshot restored",
		zap.Uint64("tick", snap.Tick),
		zap.Int("actors", len(reqs)),
		zap.Int("skipped", skipped),
	)
	return len(reqs), nil
}

// dropTransformKey removes key from every transform config in specs. specs
// must be private copies.
func dropTransformKey(specs []component.Spec, key string) {
	for i := range specs {
		if specs[i].Type == component.TransformType {
			delete(specs[i].Config, key)
		}
	}
}
