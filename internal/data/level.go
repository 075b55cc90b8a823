package data

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/core/event"
)

// Placement puts one or more actors of a template into a level.
type Placement struct {
	Template string                      `yaml:"template"`
	Position []float64                   `yaml:"position"`
	Velocity []float64                   `yaml:"velocity"`
	Count    int                         `yaml:"count"`   // default 1
	Spacing  []float64                   `yaml:"spacing"` // offset between copies
	Override map[string]component.Config `yaml:"overrides"`
	Extra    []component.Spec            `yaml:"extra"`
}

// Level is a list of placements loaded from YAML.
type Level struct {
	Name       string      `yaml:"name"`
	Placements []Placement `yaml:"placements"`
}

// Resolved is one actor ready to be built: the template's specs with the
// placement's overrides merged in and its extra specs appended.
type Resolved struct {
	Template string
	Specs    []component.Spec
	Position event.Vec3
	Velocity event.Vec3
}

// LoadLevel loads a level from a YAML file.
func LoadLevel(path string) (*Level, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read level: %w", err)
	}
	return ParseLevel(raw)
}

// ParseLevel validates and decodes a level document.
func ParseLevel(raw []byte) (*Level, error) {
	if err := validate(levelSchema, raw, "level"); err != nil {
		return nil, err
	}
	var l Level
	if err := yaml.Unmarshal(raw, &l); err != nil {
		return nil, fmt.Errorf("parse level: %w", err)
	}
	return &l, nil
}

// Resolve expands every placement against tt. An override for a component
// type the template does not carry is an error.
func (l *Level) Resolve(tt *TemplateTable) ([]Resolved, error) {
	out := make([]Resolved, 0, len(l.Placements))
	for i := range l.Placements {
		p := &l.Placements[i]
		specs, err := p.specs(tt)
		if err != nil {
			return nil, fmt.Errorf("placement %d (%s): %w", i, p.Template, err)
		}
		n := p.Count
		if n <= 0 {
			n = 1
		}
		base, step, vel := vec(p.Position), vec(p.Spacing), vec(p.Velocity)
		for k := 0; k < n; k++ {
			own := specs
			if k > 0 {
				own = make([]component.Spec, len(specs))
				for j, s := range specs {
					own[j] = s.Clone()
				}
			}
			out = append(out, Resolved{
				Template: p.Template,
				Specs:    own,
				Position: base.Add(step.Scale(float64(k))),
				Velocity: vel,
			})
		}
	}
	return out, nil
}

func (p *Placement) specs(tt *TemplateTable) ([]component.Spec, error) {
	specs, err := tt.Resolve(p.Template)
	if err != nil {
		return nil, err
	}
	for typ, cfg := range p.Override {
		found := false
		for i := range specs {
			if specs[i].Type == typ {
				specs[i].Config = specs[i].Config.Merge(cfg)
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("override for %q: template has no such component", typ)
		}
	}
	for _, s := range p.Extra {
		specs = append(specs, s.Clone())
	}
	return specs, nil
}

func vec(xs []float64) event.Vec3 {
	if len(xs) < 3 {
		return event.Vec3{}
	}
	return event.Vec3{X: xs[0], Y: xs[1], Z: xs[2]}
}
