// Package all gathers the builders of every rule package.
//
// Hosts load them into a registry at startup and report the errors of
// rules that fail to build; the remaining rules still load:
//
//	for _, err := range all.Load(rules.DefaultRegistry()) {
//		log.Printf("rules: %v", err)
//	}
package all

import (
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/functional"
)

// Builders returns the builders of every rule.
func Builders() []rules.Builder {
	return functional.Builders()
}

// Load builds every rule into reg.
func Load(reg *rules.Registry) []error {
	return reg.Load(Builders()...)
}
