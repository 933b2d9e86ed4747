package schema

// Object returns a closed object schema with the given properties.
func Object(properties map[string]Fragment, required ...string) Fragment {
	props := make(map[string]any, len(properties))
	for name, p := range properties {
		props[name] = map[string]any(p)
	}
	f := Fragment{
		"type":                 "object",
		"properties":           props,
		"additionalProperties": false,
	}
	if len(required) > 0 {
		req := make([]any, len(required))
		for i, r := range required {
			req[i] = r
		}
		f["required"] = req
	}
	return f
}

// Boolean returns a boolean schema.
func Boolean() Fragment {
	return Fragment{"type": "boolean"}
}

// String returns a string schema.
func String() Fragment {
	return Fragment{"type": "string"}
}

// Enum returns a string schema restricted to values.
func Enum(values ...string) Fragment {
	enum := make([]any, len(values))
	for i, v := range values {
		enum[i] = v
	}
	return Fragment{"type": "string", "enum": enum}
}

// StringOrStrings accepts a single string or an array of strings.
func StringOrStrings() Fragment {
	return Fragment{
		"type":  []any{"string", "array"},
		"items": map[string]any{"type": "string"},
	}
}
