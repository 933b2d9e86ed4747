// Package rules provides the core rule system of the linter: the rule factory,
// the context handlers read, the results they return, and the registry hosts
// load rules into.
//
// A rule is declared once with New, binding its name, metadata, default
// options and one handler per node type. The resulting *Rule is immutable
// and safe for concurrent use; hosts call Visit for every node they walk.
package rules

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/fix"
	"github.com/wharflab/fnlint/internal/rules/configutil"
	"github.com/wharflab/fnlint/internal/schema"
)

// ErrInvalidOptions is returned by ResolveOptions for options that do not
// satisfy the rule's schema.
var ErrInvalidOptions = errors.New("invalid rule options")

type dispatchFunc func(node *ast.Node, in Input, opts any) ([]Descriptor, *TraversalFault)

// Rule is a named, immutable bundle of metadata, default options and
// node-type handlers.
type Rule struct {
	name      string
	meta      Meta
	defaults  any
	schema    *schema.Compiled
	handlers  map[ast.NodeType]dispatchFunc
	nodeTypes []ast.NodeType
	resolve   func(raw map[string]any) (any, error)
}

// New builds a rule.
//
// It fails with *InvalidRuleDefinitionError when the name is empty, the
// metadata is incomplete, a message template is empty or malformed, the
// option schema does not compile, defaults do not satisfy the schema, or a
// handler is nil or registered for a node type hosts do not produce.
//
// Option structs name their keys with `koanf` tags and their JSON form with
// `json` tags; both must agree with the schema's property names.
func New[O any](name string, meta Meta, defaults O, handlers Handlers[O]) (*Rule, error) {
	if strings.TrimSpace(name) == "" {
		return nil, invalid(name, nil, "empty rule name")
	}
	if err := checkMeta(name, meta); err != nil {
		return nil, err
	}

	compiled, err := schema.Compile(meta.Schema)
	if err != nil {
		return nil, invalid(name, err, "option schema does not compile")
	}
	if err := compiled.Validate(defaults); err != nil {
		return nil, invalid(name, err, "default options violate the option schema")
	}
	if err := validateOptions(defaults); err != nil {
		return nil, invalid(name, err, "default options are invalid")
	}

	if len(handlers) == 0 {
		return nil, invalid(name, nil, "no handlers")
	}
	dispatch := make(map[ast.NodeType]dispatchFunc, len(handlers))
	nodeTypes := make([]ast.NodeType, 0, len(handlers))
	for nt, h := range handlers {
		if !nt.Known() {
			return nil, invalid(name, nil, "handler registered for unknown node type %s", nt)
		}
		if h == nil {
			return nil, invalid(name, nil, "nil handler for %s", nt)
		}
		dispatch[nt] = bind(name, h)
		nodeTypes = append(nodeTypes, nt)
	}
	slices.Sort(nodeTypes)

	return &Rule{
		name:      name,
		meta:      meta.clone(),
		defaults:  defaults,
		schema:    compiled,
		handlers:  dispatch,
		nodeTypes: nodeTypes,
		resolve: func(raw map[string]any) (any, error) {
			return configutil.Resolve(raw, defaults)
		},
	}, nil
}

// OptionsValidator is implemented by option structs with constraints the
// option schema cannot express, such as well-formed regular expressions.
type OptionsValidator interface {
	Validate() error
}

func validateOptions(v any) error {
	if val, ok := v.(OptionsValidator); ok {
		return val.Validate()
	}
	return nil
}

// MustNew is like New but panics on error.
func MustNew[O any](name string, meta Meta, defaults O, handlers Handlers[O]) *Rule {
	r, err := New(name, meta, defaults, handlers)
	if err != nil {
		panic(err)
	}
	return r
}

// MergeSchema merges option schema fragments for rule. A conflict between
// fragments is reported as an *InvalidRuleDefinitionError wrapping the
// *schema.ConflictError.
func MergeSchema(rule string, fragments ...schema.Fragment) (schema.Fragment, error) {
	merged, err := schema.Merge(fragments...)
	if err != nil {
		return nil, invalid(rule, err, "option schema fragments conflict")
	}
	return merged, nil
}

func checkMeta(name string, meta Meta) error {
	switch meta.Type {
	case TypeProblem, TypeSuggestion, TypeLayout:
	default:
		return invalid(name, nil, "meta.type %q is not one of problem, suggestion, layout", meta.Type)
	}
	switch meta.Fixable {
	case NotFixable, FixableCode, FixableWhitespace:
	default:
		return invalid(name, nil, "meta.fixable %q is not one of code, whitespace", meta.Fixable)
	}
	if strings.TrimSpace(meta.Docs.Description) == "" {
		return invalid(name, nil, "meta.docs.description is empty")
	}
	if meta.Docs.Recommended < SeverityError || meta.Docs.Recommended > SeverityOff {
		return invalid(name, nil, "meta.docs.recommended is not a severity")
	}
	if len(meta.Messages) == 0 {
		return invalid(name, nil, "meta.messages is empty")
	}
	for id, tmpl := range meta.Messages {
		if strings.TrimSpace(id) == "" {
			return invalid(name, nil, "meta.messages has an empty message id")
		}
		if err := checkTemplate(tmpl); err != nil {
			return invalid(name, err, "message %q", id)
		}
	}
	if meta.Schema == nil {
		return invalid(name, nil, "meta.schema is missing")
	}
	return nil
}

func bind[O any](rule string, h Handler[O]) dispatchFunc {
	return func(node *ast.Node, in Input, opts any) (descriptors []Descriptor, fault *TraversalFault) {
		defer func() {
			if p := recover(); p != nil {
				descriptors, fault = nil, recovered(rule, node, p)
			}
		}()
		o, ok := opts.(O)
		if !ok {
			return nil, &TraversalFault{
				Rule: rule, NodeType: node.Type, Range: node.Range,
				Err: fmt.Errorf("options of type %T, want %T", opts, o),
			}
		}
		res := h(node, Context[O]{
			File:    in.File,
			Source:  in.Source,
			Dialect: in.Dialect,
			Options: o,
		})
		return res.Descriptors, nil
	}
}

// Name returns the rule's unique name.
func (r *Rule) Name() string {
	return r.name
}

// Meta returns a copy of the rule's metadata.
func (r *Rule) Meta() Meta {
	return r.meta.clone()
}

// NodeTypes returns the node types the rule has handlers for, sorted.
func (r *Rule) NodeTypes() []ast.NodeType {
	return slices.Clone(r.nodeTypes)
}

// Handles reports whether the rule has a handler for t.
func (r *Rule) Handles(t ast.NodeType) bool {
	_, ok := r.handlers[t]
	return ok
}

// DefaultOptions returns the rule's default options.
func (r *Rule) DefaultOptions() Options {
	return Options{rule: r.name, value: r.defaults}
}

// ResolveOptions validates raw user options against the rule's schema and
// merges them over the defaults. Nil or empty raw options yield the defaults.
func (r *Rule) ResolveOptions(raw map[string]any) (Options, error) {
	if len(raw) == 0 {
		return r.DefaultOptions(), nil
	}
	if err := r.schema.Validate(raw); err != nil {
		return Options{}, fmt.Errorf("%w for %q: %w", ErrInvalidOptions, r.name, err)
	}
	v, err := r.resolve(raw)
	if err != nil {
		return Options{}, fmt.Errorf("%w for %q: %w", ErrInvalidOptions, r.name, err)
	}
	if err := r.schema.Validate(v); err != nil {
		return Options{}, fmt.Errorf("%w for %q: %w", ErrInvalidOptions, r.name, err)
	}
	if err := validateOptions(v); err != nil {
		return Options{}, fmt.Errorf("%w for %q: %w", ErrInvalidOptions, r.name, err)
	}
	return Options{rule: r.name, value: v}, nil
}

// Visit runs the handler registered for node's type. With no handler it is
// a no-op. Handler panics become a *TraversalFault. A descriptor with an
// unknown message id, or a fix that is inconsistent or not allowed by
// Meta.Fixable, is an *InvalidRuleDefinitionError.
func (r *Rule) Visit(node *ast.Node, in Input) (Report, error) {
	rep := Report{Rule: r.name}
	if node == nil {
		return rep, nil
	}
	h, ok := r.handlers[node.Type]
	if !ok {
		return rep, nil
	}

	opts := in.Options.value
	switch in.Options.rule {
	case "":
		opts = r.defaults
	case r.name:
	default:
		return rep, &TraversalFault{
			Rule: r.name, NodeType: node.Type, Range: node.Range,
			Err: fmt.Errorf("options were resolved for rule %q", in.Options.rule),
		}
	}

	descriptors, fault := h(node, in, opts)
	if fault != nil {
		return rep, fault
	}
	for _, d := range descriptors {
		tmpl, ok := r.meta.Messages[d.MessageID]
		if !ok {
			return Report{Rule: r.name}, invalid(r.name, nil, "reported unknown message id %q", d.MessageID)
		}
		if d.Node == nil {
			d.Node = node
		}
		if d.Fix != nil {
			if r.meta.Fixable == NotFixable {
				return Report{Rule: r.name}, invalid(r.name, nil, "reported a fix but meta.fixable is not set")
			}
			if err := fix.Validate(d.Fix, len(in.Source)); err != nil {
				return Report{Rule: r.name}, invalid(r.name, err, "reported an inconsistent fix")
			}
		}
		rep.Findings = append(rep.Findings, Finding{Descriptor: d, Message: FormatMessage(tmpl, d.Data)})
	}
	return rep, nil
}
