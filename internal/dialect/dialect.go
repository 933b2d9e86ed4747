// Package dialect defines the parser contract shared by the supported
// JavaScript language levels.
//
// A dialect turns source text into the neutral tree of package ast. The
// permissive dialect accepts modern syntax; the restricted dialect accepts
// only what a legacy (ES5) target allows. Adapters live in subpackages and
// register themselves; import internal/dialect/all to get every dialect.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/wharflab/fnlint/internal/ast"
)

// Level classifies a dialect by how much syntax it accepts.
type Level int

const (
	// Permissive accepts the current language.
	Permissive Level = iota
	// Restricted accepts only a legacy language level.
	Restricted
)

func (l Level) String() string {
	switch l {
	case Permissive:
		return "permissive"
	case Restricted:
		return "restricted"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Level) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Info is the ambient description of the dialect a file was parsed with.
type Info struct {
	Name  string `json:"name"`
	Level Level  `json:"level"`
}

// Parser parses JavaScript source for one dialect.
// Implementations must be safe for concurrent use.
type Parser interface {
	// Name identifies the dialect, e.g. "modern".
	Name() string
	// Level reports the language level the parser accepts.
	Level() Level
	// Parse parses src. Failures are returned as *ParseError.
	Parse(filename string, src []byte) (*ast.Node, error)
}

// Describe returns the Info of p.
func Describe(p Parser) Info {
	return Info{Name: p.Name(), Level: p.Level()}
}

// ErrParse is the sentinel matched by every *ParseError.
var ErrParse = errors.New("parse error")

// ParseError reports source a dialect cannot parse.
type ParseError struct {
	Dialect string
	File    string
	// Line and Column locate the first problem when the parser reports one
	// (1-based line, 0-based column); zero when unknown.
	Line, Column int
	Message      string
}

func (e *ParseError) Error() string {
	loc := e.File
	if e.Line > 0 {
		loc = fmt.Sprintf("%s:%d:%d", e.File, e.Line, e.Column+1)
	}
	return fmt.Sprintf("%s: %s parse error: %s", loc, e.Dialect, e.Message)
}

func (e *ParseError) Unwrap() error {
	return ErrParse
}

var (
	mu       sync.RWMutex
	registry = map[string]func() Parser{}
	primary  = map[string]bool{}
)

// Register makes a dialect available to Lookup under name and aliases.
// Panics if any name is already taken.
func Register(name string, factory func() Parser, aliases ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range append([]string{name}, aliases...) {
		key := strings.ToLower(n)
		if _, exists := registry[key]; exists {
			panic(fmt.Sprintf("dialect %q already registered", n))
		}
		registry[key] = factory
	}
	primary[strings.ToLower(name)] = true
}

// Lookup returns a new parser for the named dialect (case-insensitive).
func Lookup(name string) (Parser, error) {
	mu.RLock()
	factory, ok := registry[strings.ToLower(name)]
	mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (available: %s)", name, strings.Join(Names(), ", "))
	}
	return factory(), nil
}

// Names returns the primary names of the registered dialects, sorted.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()
	names := make([]string, 0, len(primary))
	for n := range primary {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
