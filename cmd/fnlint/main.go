// Command fnlint lints JavaScript sources for a functional programming style.
package main

import (
	"fmt"
	"os"

	"github.com/wharflab/fnlint/cmd/fnlint/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitConfigError)
	}
}
