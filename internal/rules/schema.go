package rules

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// archetypeSchema validates one archetype (or variant) object. Conditions and
// variants are only required to be objects here: a bad condition fails safe at
// evaluation time and a bad variant is validated and skipped on its own.
const archetypeSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["Name", "Conditions"],
	"properties": {
		"Name": {"type": "string", "minLength": 1},
		"IncludeColorInName": {"type": "boolean"},
		"Conditions": {"type": "array", "items": {"type": "object"}},
		"Variants": {"type": "array", "items": {"type": "object"}}
	}
}`

// fallbackSchema validates one fallback object.
const fallbackSchema = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["Name", "SignatureCards"],
	"properties": {
		"Name": {"type": "string", "minLength": 1},
		"SignatureCards": {
			"type": "array",
			"minItems": 1,
			"items": {"type": "string"}
		}
	}
}`

var (
	schemasOnce sync.Once
	schemas     map[string]*jsonschema.Schema
	schemasErr  error
)

// compiledSchema returns a compiled schema by name, compiling all of them on
// first use.
func compiledSchema(name string) (*jsonschema.Schema, error) {
	schemasOnce.Do(func() {
		schemas = make(map[string]*jsonschema.Schema, 2)
		for schemaName, def := range map[string]string{
			"archetype": archetypeSchema,
			"fallback":  fallbackSchema,
		} {
			doc, err := jsonschema.UnmarshalJSON(strings.NewReader(def))
			if err != nil {
				schemasErr = fmt.Errorf("parse %s schema: %w", schemaName, err)
				return
			}

			c := jsonschema.NewCompiler()
			url := fmt.Sprintf("schema://%s.json", schemaName)
			if err := c.AddResource(url, doc); err != nil {
				schemasErr = fmt.Errorf("add %s schema: %w", schemaName, err)
				return
			}
			compiled, err := c.Compile(url)
			if err != nil {
				schemasErr = fmt.Errorf("compile %s schema: %w", schemaName, err)
				return
			}
			schemas[schemaName] = compiled
		}
	})
	if schemasErr != nil {
		return nil, schemasErr
	}
	schema, ok := schemas[name]
	if !ok {
		return nil, fmt.Errorf("unknown schema %q", name)
	}
	return schema, nil
}

// validateDefinition checks a raw JSON definition against the named schema.
func validateDefinition(name string, raw json.RawMessage) error {
	schema, err := compiledSchema(name)
	if err != nil {
		return err
	}

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(string(raw)))
	if err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}
