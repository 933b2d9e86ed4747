package cmd

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/urfave/cli/v3"

	_ "github.com/wharflab/fnlint/internal/dialect/all"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/all"
	"github.com/wharflab/fnlint/internal/version"
)

// NewApp creates the CLI application
func NewApp() *cli.Command {
	return &cli.Command{
		Name:    "fnlint",
		Usage:   "A linter for functional-style JavaScript",
		Version: version.Version(),
		Description: `fnlint checks JavaScript sources for mutation, statements and
object orientation, and can rewrite what it knows how to fix.

Examples:
  fnlint lint src/
  fnlint lint --dialect legacy --format json lib/*.js
  fnlint lint --fix --fix-rule no-let app.js
  fnlint rules --json`,
		Commands: []*cli.Command{
			lintCommand(),
			rulesCommand(),
			versionCommand(),
		},
	}
}

// Execute runs the CLI application
func Execute() error {
	return NewApp().Run(context.Background(), os.Args)
}

// loadRegistry builds every rule into the default registry once per
// process. Rules that fail to build are reported once and left out.
var loadRegistry = sync.OnceValues(func() (*rules.Registry, []error) {
	reg := rules.DefaultRegistry()
	errs := all.Load(reg)
	for _, err := range errs {
		fmt.Fprintf(os.Stderr, "Error: rule definition: %v\n", err)
	}
	return reg, errs
})
