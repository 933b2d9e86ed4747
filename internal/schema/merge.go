// Package schema composes and validates the JSON Schemas that describe rule options.
//
// Rules assemble their option schema from reusable fragments (for example
// "allowLocalMutation" and "ignorePattern"). Merge combines fragments with a
// total, associative deep merge; Compile turns the result into a validator.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"
)

// Fragment is a JSON-Schema-shaped description of one option family.
// Values must be JSON-compatible (maps, slices, strings, numbers, booleans, nil).
type Fragment map[string]any

// ErrConflict is the sentinel matched by every *ConflictError.
var ErrConflict = errors.New("schema conflict")

// ConflictError reports two fragments that disagree about the same key path.
// It is a rule-authoring bug and is surfaced when the rule is loaded.
type ConflictError struct {
	// Path is the key path where the fragments disagree.
	Path []string
	// Left and Right are the conflicting values, in merge order.
	Left, Right any
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("schema conflict at %q: %s vs %s", strings.Join(e.Path, "."), describe(e.Left), describe(e.Right))
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// Merge deep-merges fragments left to right.
//
//   - objects merge key by key, recursively;
//   - arrays are concatenated and de-duplicated by value, first occurrence wins;
//   - other leaves are right-biased: later fragments override earlier ones;
//   - values of different JSON kinds at one path, or two different JSON-Schema
//     "type" declarations, fail with *ConflictError.
//
// Merge never mutates its inputs and the result shares no memory with them.
// Merging with no fragments yields an empty fragment.
func Merge(fragments ...Fragment) (Fragment, error) {
	out := map[string]any{}
	for i, f := range fragments {
		norm, err := normalize(f)
		if err != nil {
			return nil, fmt.Errorf("fragment %d: %w", i, err)
		}
		out, err = mergeObjects(nil, out, norm)
		if err != nil {
			return nil, err
		}
	}
	return Fragment(out), nil
}

// MustMerge is like Merge but panics on conflict.
// Intended for package-level option fragments whose inputs are constants.
func MustMerge(fragments ...Fragment) Fragment {
	f, err := Merge(fragments...)
	if err != nil {
		panic(err)
	}
	return f
}

func mergeObjects(path []string, left, right map[string]any) (map[string]any, error) {
	keys := make([]string, 0, len(right))
	for k := range right {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		rv := right[k]
		lv, exists := left[k]
		if !exists {
			left[k] = rv
			continue
		}
		keyPath := append(slices.Clone(path), k)
		if k == "type" && isTypeDecl(lv) && isTypeDecl(rv) {
			if !sameTypeDecl(lv, rv) {
				return nil, &ConflictError{Path: keyPath, Left: lv, Right: rv}
			}
			continue
		}
		merged, err := mergeValues(keyPath, lv, rv)
		if err != nil {
			return nil, err
		}
		left[k] = merged
	}
	return left, nil
}

func mergeValues(path []string, left, right any) (any, error) {
	lk, rk := kindOf(left), kindOf(right)
	if lk != rk {
		return nil, &ConflictError{Path: path, Left: left, Right: right}
	}
	switch lk {
	case kindObject:
		return mergeObjects(path, left.(map[string]any), right.(map[string]any))
	case kindArray:
		return dedupe(append(left.([]any), right.([]any)...)), nil
	default:
		return right, nil
	}
}

func dedupe(values []any) []any {
	out := make([]any, 0, len(values))
	for _, v := range values {
		if !slices.ContainsFunc(out, func(seen any) bool { return reflect.DeepEqual(seen, v) }) {
			out = append(out, v)
		}
	}
	return out
}

// isTypeDecl reports whether v looks like the value of a JSON-Schema "type"
// keyword (a string or a list of strings), as opposed to a property named "type".
func isTypeDecl(v any) bool {
	switch t := v.(type) {
	case string:
		return true
	case []any:
		for _, e := range t {
			if _, ok := e.(string); !ok {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sameTypeDecl(a, b any) bool {
	return slices.Equal(typeSet(a), typeSet(b))
}

func typeSet(v any) []string {
	var out []string
	switch t := v.(type) {
	case string:
		out = []string{t}
	case []any:
		for _, e := range t {
			s, _ := e.(string)
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return slices.Compact(out)
}

type valueKind int

const (
	kindNull valueKind = iota
	kindObject
	kindArray
	kindString
	kindBool
	kindNumber
)

func kindOf(v any) valueKind {
	switch v.(type) {
	case map[string]any:
		return kindObject
	case []any:
		return kindArray
	case string:
		return kindString
	case bool:
		return kindBool
	case float64:
		return kindNumber
	default:
		return kindNull
	}
}

func describe(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(data)
}

// normalize deep-copies a fragment into canonical JSON types
// (map[string]any, []any, float64, string, bool, nil).
func normalize(f Fragment) (map[string]any, error) {
	if f == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(map[string]any(f))
	if err != nil {
		return nil, fmt.Errorf("fragment is not JSON-compatible: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Clone returns a deep copy of f in canonical JSON types.
func (f Fragment) Clone() Fragment {
	out, err := normalize(f)
	if err != nil {
		// Fragments that cannot round-trip through JSON are rejected by
		// Compile and Merge; Clone keeps the shallow copy for them.
		cp := make(Fragment, len(f))
		for k, v := range f {
			cp[k] = v
		}
		return cp
	}
	return Fragment(out)
}
