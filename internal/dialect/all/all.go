// Package all imports every dialect package to register it.
// Import this package with a blank identifier to make dialect.Lookup
// resolve all dialects:
//
//	import _ "github.com/wharflab/fnlint/internal/dialect/all"
package all

import (
	// Dialect packages register themselves in init()
	_ "github.com/wharflab/fnlint/internal/dialect/legacy"
	_ "github.com/wharflab/fnlint/internal/dialect/modern"
)
