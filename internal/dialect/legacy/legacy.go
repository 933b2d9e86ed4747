// Package legacy is the restricted dialect: ES5 only.
//
// Source first passes a language-level gate (esbuild's transform API with an
// ES5 target), which rejects newer syntax with a precise message. Accepted
// source is then parsed by otto's ES5 parser and mapped onto package ast.
package legacy

import (
	"errors"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
	"github.com/robertkrimen/otto/file"
	"github.com/robertkrimen/otto/parser"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
)

// Name is the dialect's registered name.
const Name = "legacy"

func init() {
	dialect.Register(Name, func() dialect.Parser { return New() }, "restricted", "es5")
}

// Option configures a Parser.
type Option func(*Parser)

// WithTarget sets the language level enforced by the gate.
// otto only understands ES5, so a newer target only changes which
// diagnostics come from esbuild rather than from otto.
func WithTarget(target api.Target) Option {
	return func(p *Parser) {
		p.target = target
	}
}

// Parser parses ES5 JavaScript. It holds no mutable state.
type Parser struct {
	target api.Target
}

var _ dialect.Parser = (*Parser)(nil)

// New returns a legacy dialect parser.
func New(opts ...Option) *Parser {
	p := &Parser{target: api.ES5}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Name() string         { return Name }
func (p *Parser) Level() dialect.Level { return dialect.Restricted }

// Parse gates src, then parses it.
func (p *Parser) Parse(filename string, src []byte) (*ast.Node, error) {
	if err := p.gate(filename, src); err != nil {
		return nil, err
	}

	var fs file.FileSet
	program, err := parser.ParseFile(&fs, filename, src, 0)
	if err != nil {
		return nil, ottoError(filename, err)
	}

	b := newBuilder(src, program.File.Base())
	return b.program(program), nil
}

func (p *Parser) gate(filename string, src []byte) error {
	result := api.Transform(string(src), api.TransformOptions{
		Loader:     api.LoaderJS,
		Target:     p.target,
		Sourcefile: filename,
		LogLevel:   api.LogLevelSilent,
	})
	if len(result.Errors) == 0 {
		return nil
	}

	msg := result.Errors[0]
	perr := &dialect.ParseError{Dialect: Name, File: filename, Message: msg.Text}
	if loc := msg.Location; loc != nil {
		perr.Line = loc.Line
		perr.Column = loc.Column
	}
	if extra := len(result.Errors) - 1; extra > 0 {
		perr.Message = fmt.Sprintf("%s (and %d more errors)", perr.Message, extra)
	}
	return perr
}

// ottoError converts otto's error list; its columns are 1-based.
func ottoError(filename string, err error) error {
	perr := &dialect.ParseError{Dialect: Name, File: filename, Message: err.Error()}

	var list parser.ErrorList
	var single *parser.Error
	switch {
	case errors.As(err, &list) && len(list) > 0:
		single = list[0]
	case errors.As(err, &single):
	}
	if single != nil {
		perr.Line = single.Position.Line
		perr.Column = max(single.Position.Column-1, 0)
		perr.Message = strings.TrimSpace(single.Message)
	}
	return perr
}
