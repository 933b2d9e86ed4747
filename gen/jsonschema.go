//go:build ignore

// This program generates the JSON schema for fnlint configuration.
// Run with: go run gen/jsonschema.go > schema.json
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/wharflab/fnlint/internal/engine"
	"github.com/wharflab/fnlint/internal/rules"
	"github.com/wharflab/fnlint/internal/rules/all"
)

func main() {
	reg := rules.NewRegistry()
	if errs := all.Load(reg); len(errs) > 0 {
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Error: rule definition: %v\n", err)
		}
		os.Exit(1)
	}

	schema, err := engine.ConfigSchema(reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error building schema: %v\n", err)
		os.Exit(1)
	}
	schema["$id"] = "https://json.schemastore.org/fnlint.json"
	schema["description"] = "Configuration schema for the fnlint JavaScript linter"
	schema["$comment"] = fmt.Sprintf("Auto-generated on %s. Do not edit manually.",
		time.Now().Format("2006-01-02"))

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling schema: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}
