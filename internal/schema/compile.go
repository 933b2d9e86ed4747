package schema

import (
	"encoding/json"
	"fmt"
	"sync"

	gjsonschema "github.com/google/jsonschema-go/jsonschema"
)

var resolvedSchemaCache sync.Map

// Compiled is a resolved schema ready to validate option values.
type Compiled struct {
	fragment Fragment
	resolved *gjsonschema.Resolved
}

// Compile parses f as a JSON Schema and resolves it.
// Identical fragments share one resolved schema.
func Compile(f Fragment) (*Compiled, error) {
	norm, err := normalize(f)
	if err != nil {
		return nil, err
	}
	// encoding/json sorts map keys, so the encoding is canonical.
	data, err := json.Marshal(norm)
	if err != nil {
		return nil, fmt.Errorf("marshal schema: %w", err)
	}

	resolved, err := resolveSchema(data)
	if err != nil {
		return nil, err
	}
	return &Compiled{fragment: Fragment(norm), resolved: resolved}, nil
}

func resolveSchema(schemaData []byte) (*gjsonschema.Resolved, error) {
	if cached, ok := resolvedSchemaCache.Load(string(schemaData)); ok {
		if resolved, ok := cached.(*gjsonschema.Resolved); ok {
			return resolved, nil
		}
	}

	var parsedSchema gjsonschema.Schema
	if err := json.Unmarshal(schemaData, &parsedSchema); err != nil {
		return nil, fmt.Errorf("parse schema: %w", err)
	}

	resolved, err := parsedSchema.Resolve(nil)
	if err != nil {
		return nil, fmt.Errorf("resolve schema: %w", err)
	}
	resolvedSchemaCache.Store(string(schemaData), resolved)
	return resolved, nil
}

// Fragment returns a copy of the schema this validator was compiled from.
func (c *Compiled) Fragment() Fragment {
	return c.fragment.Clone()
}

// Validate checks value against the schema. The value is converted to its
// JSON form first, so typed Go structs validate through their json tags.
// Object keys holding null are treated as unset.
func (c *Compiled) Validate(value any) error {
	jsonValue, err := toJSONValue(value)
	if err != nil {
		return fmt.Errorf("convert options to JSON value: %w", err)
	}
	if err := c.resolved.Validate(jsonValue); err != nil {
		return fmt.Errorf("options schema validation failed: %w", err)
	}
	return nil
}

func toJSONValue(value any) (any, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return dropNulls(out), nil
}

func dropNulls(v any) any {
	switch t := v.(type) {
	case map[string]any:
		for k, e := range t {
			if e == nil {
				delete(t, k)
				continue
			}
			t[k] = dropNulls(e)
		}
		return t
	case []any:
		for i, e := range t {
			t[i] = dropNulls(e)
		}
		return t
	default:
		return v
	}
}
