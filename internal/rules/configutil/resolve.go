// Package configutil provides utilities for rule option resolution.
package configutil

import (
	"fmt"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// Resolve merges user options over defaults and unmarshals to typed config.
// If opts is nil or empty, returns defaults unchanged.
//
// Option structs carry `koanf` tags naming their keys. Keys whose value is
// nil are treated as unset. Decoding is weakly typed, so a single string is
// accepted where a string slice is expected.
func Resolve[T any](opts map[string]any, defaults T) (T, error) {
	opts = dropNil(opts)
	if len(opts) == 0 {
		return defaults, nil
	}

	k := koanf.New(".")
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return defaults, fmt.Errorf("load default options: %w", err)
	}
	if err := k.Load(confmap.Provider(opts, "."), nil); err != nil {
		return defaults, fmt.Errorf("load options: %w", err)
	}

	var result T
	if err := Decode(k.Raw(), &result); err != nil {
		return defaults, err
	}
	return result, nil
}

// Decode decodes a generic options map into out using the same rules as
// Resolve: `koanf` tags, weak typing and text unmarshalers.
func Decode(in map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.TextUnmarshallerHookFunc(),
		WeaklyTypedInput: true,
		TagName:          "koanf",
		Result:           out,
	})
	if err != nil {
		return fmt.Errorf("create options decoder: %w", err)
	}
	if err := dec.Decode(in); err != nil {
		return fmt.Errorf("decode options: %w", err)
	}
	return nil
}

func dropNil(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		switch t := v.(type) {
		case nil:
			continue
		case map[string]any:
			out[k] = dropNil(t)
		default:
			out[k] = v
		}
	}
	return out
}
