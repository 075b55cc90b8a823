// datacheck validates actor templates and a level against the schemas and
// the built-in component registry, then prints the resolved placements.
//
// Usage:
//
//	go run ./cmd/datacheck [-templates path] [-level path] [-dump]
package main

import (
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/actorbus/engine/internal/component"
	"github.com/actorbus/engine/internal/data"
)

type placementYAML struct {
	Template   string           `yaml:"template"`
	Position   [3]float64       `yaml:"position,flow"`
	Velocity   [3]float64       `yaml:"velocity,flow"`
	Components []component.Spec `yaml:"components"`
}

func main() {
	tplPath := flag.String("templates", "data/yaml/templates.yaml", "actor templates file")
	lvlPath := flag.String("level", "data/yaml/level.yaml", "level file; empty to skip")
	dump := flag.Bool("dump", false, "print resolved placements as YAML")
	flag.Parse()

	if err := check(*tplPath, *lvlPath, *dump); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func check(tplPath, lvlPath string, dump bool) error {
	tt, err := data.LoadTemplateTable(tplPath)
	if err != nil {
		return err
	}
	reg := component.NewBuiltinRegistry()
	for _, name := range tt.Names() {
		if err := reg.Check(tt.Get(name).Components); err != nil {
			return fmt.Errorf("template %q: %w", name, err)
		}
	}
	fmt.Printf("%s: %d templates ok\n", tplPath, tt.Count())

	if lvlPath == "" {
		return nil
	}
	lvl, err := data.LoadLevel(lvlPath)
	if err != nil {
		return err
	}
	placed, err := lvl.Resolve(tt)
	if err != nil {
		return err
	}
	for i, p := range placed {
		if err := reg.Check(p.Specs); err != nil {
			return fmt.Errorf("placement %d (%s): %w", i, p.Template, err)
		}
	}
	fmt.Printf("%s: %d placements resolve to %d actors\n", lvlPath, len(lvl.Placements), len(placed))

	if !dump {
		return nil
	}
	out := make([]placementYAML, len(placed))
	for i, p := range placed {
		out[i] = placementYAML{
			Template:   p.Template,
			Position:   [3]float64{p.Position.X, p.Position.Y, p.Position.Z},
			Velocity:   [3]float64{p.Velocity.X, p.Velocity.Y, p.Velocity.Z},
			Components: p.Specs,
		}
	}
	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(out)
}
