package data

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

var (
	//go:embed schemas/templates.schema.json
	templatesSchemaSrc string
	//go:embed schemas/level.schema.json
	levelSchemaSrc string

	templatesSchema = jsonschema.MustCompileString("templates.schema.json", templatesSchemaSrc)
	levelSchema     = jsonschema.MustCompileString("level.schema.json", levelSchemaSrc)
)

// validate checks a YAML document against schema. The document is brought
// into its JSON shape first since the validator only understands JSON values.
func validate(schema *jsonschema.Schema, raw []byte, what string) error {
	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("parse %s: %w", what, err)
	}
	js, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("parse %s: %w", what, err)
	}
	var v any
	if err := json.Unmarshal(js, &v); err != nil {
		return fmt.Errorf("parse %s: %w", what, err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("invalid %s: %w", what, err)
	}
	return nil
}
