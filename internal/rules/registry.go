package rules

import (
	"fmt"
	"sort"
	"sync"
)

// Builder constructs a rule. Rule packages expose one so that a broken rule
// definition is reported when it is loaded instead of crashing the program.
type Builder func() (*Rule, error)

// Registry manages rule registration and lookup.
type Registry struct {
	mu    sync.RWMutex
	rules map[string]*Rule
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rules: make(map[string]*Rule),
	}
}

// Register adds a rule to the registry.
// Panics if a rule with the same name is already registered.
func (r *Registry) Register(rule *Rule) {
	if err := r.add(rule); err != nil {
		panic(err.Error())
	}
}

func (r *Registry) add(rule *Rule) error {
	if rule == nil {
		return fmt.Errorf("%w: nil rule", ErrInvalidRuleDefinition)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	name := rule.Name()
	if _, exists := r.rules[name]; exists {
		return fmt.Errorf("rule %q already registered", name)
	}
	r.rules[name] = rule
	return nil
}

// Load builds and registers rules. A builder that fails, returns no rule, or
// produces a rule whose name is taken, is skipped and its error returned; the other rules
// still load.
func (r *Registry) Load(builders ...Builder) []error {
	var errs []error
	for _, build := range builders {
		rule, err := build()
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if err := r.add(rule); err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

// Get retrieves a rule by its name.
// Returns nil if no rule is found.
func (r *Registry) Get(name string) *Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.rules[name]
}

// Has returns true if a rule with the given name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.rules[name]
	return exists
}

// All returns all registered rules sorted by name.
func (r *Registry) All() []*Rule {
	return r.filter(func(*Rule) bool { return true })
}

// Names returns all registered rule names sorted alphabetically.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.rules))
	for name := range r.rules {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recommended returns rules that are part of the recommended configuration.
func (r *Registry) Recommended() []*Rule {
	return r.filter(func(rule *Rule) bool {
		return rule.meta.Docs.Recommended != SeverityOff
	})
}

// ByCategory returns rules filtered by docs category.
func (r *Registry) ByCategory(category string) []*Rule {
	return r.filter(func(rule *Rule) bool {
		return rule.meta.Docs.Category == category
	})
}

func (r *Registry) filter(keep func(*Rule) bool) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Rule, 0)
	for _, rule := range r.rules {
		if keep(rule) {
			result = append(result, rule)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].name < result[j].name
	})
	return result
}

// defaultRegistry is the global default registry.
var defaultRegistry = NewRegistry()

// DefaultRegistry returns the global default registry.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds a rule to the default registry.
func Register(rule *Rule) {
	defaultRegistry.Register(rule)
}

// Load builds rules into the default registry.
func Load(builders ...Builder) []error {
	return defaultRegistry.Load(builders...)
}

// Get retrieves a rule from the default registry.
func Get(name string) *Rule {
	return defaultRegistry.Get(name)
}

// All returns all rules from the default registry.
func All() []*Rule {
	return defaultRegistry.All()
}

// Names returns all rule names from the default registry.
func Names() []string {
	return defaultRegistry.Names()
}
