package data

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/actorbus/engine/internal/component"
)

// Template is a named, reusable list of component specs.
type Template struct {
	Name        string           `yaml:"-"`
	Description string           `yaml:"description"`
	Components  []component.Spec `yaml:"components"`
}

type templateFile struct {
	Templates map[string]*Template `yaml:"templates"`
}

// TemplateTable holds all actor templates indexed by name.
type TemplateTable struct {
	templates map[string]*Template
}

// LoadTemplateTable loads actor templates from a YAML file.
func LoadTemplateTable(path string) (*TemplateTable, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	return ParseTemplates(raw)
}

// ParseTemplates validates and decodes a templates document.
func ParseTemplates(raw []byte) (*TemplateTable, error) {
	if err := validate(templatesSchema, raw, "templates"); err != nil {
		return nil, err
	}
	var f templateFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	t := &TemplateTable{templates: make(map[string]*Template, len(f.Templates))}
	for name, tpl := range f.Templates {
		tpl.Name = name
		t.templates[name] = tpl
	}
	return t, nil
}

// Get returns a template by name, or nil if not found.
func (t *TemplateTable) Get(name string) *Template {
	return t.templates[name]
}

// Resolve returns a private copy of a template's specs.
func (t *TemplateTable) Resolve(name string) ([]component.Spec, error) {
	tpl, ok := t.templates[name]
	if !ok {
		return nil, fmt.Errorf("unknown template %q", name)
	}
	specs := make([]component.Spec, len(tpl.Components))
	for i, s := range tpl.Components {
		specs[i] = s.Clone()
	}
	return specs, nil
}

// Names returns the template names in sorted order.
func (t *TemplateTable) Names() []string {
	out := make([]string, 0, len(t.templates))
	for name := range t.templates {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Count returns the number of loaded templates.
func (t *TemplateTable) Count() int {
	return len(t.templates)
}
