// Package modern is the permissive dialect: current JavaScript parsed with
// tree-sitter.
package modern

import (
	"runtime"
	"sync"

	sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"

	"github.com/wharflab/fnlint/internal/ast"
	"github.com/wharflab/fnlint/internal/dialect"
)

// Name is the dialect's registered name.
const Name = "modern"

func init() {
	dialect.Register(Name, func() dialect.Parser { return New() }, "permissive", "es2024")
}

var (
	languageOnce sync.Once
	language     *sitter.Language
)

func javascript() *sitter.Language {
	languageOnce.Do(func() {
		language = sitter.NewLanguage(tree_sitter_javascript.Language())
	})
	return language
}

// Parser parses modern JavaScript. Native tree-sitter parsers are not safe
// for concurrent use and own C memory, so idle ones wait in a bounded free
// list; a parser returned to a full list is closed.
type Parser struct {
	idle chan *sitter.Parser
}

var _ dialect.Parser = (*Parser)(nil)

// New returns a modern dialect parser keeping up to GOMAXPROCS idle native
// parsers.
func New() *Parser {
	return &Parser{idle: make(chan *sitter.Parser, runtime.GOMAXPROCS(0))}
}

func (p *Parser) acquire() (*sitter.Parser, error) {
	select {
	case tsParser := <-p.idle:
		return tsParser, nil
	default:
	}
	tsParser := sitter.NewParser()
	if err := tsParser.SetLanguage(javascript()); err != nil {
		tsParser.Close()
		return nil, err
	}
	return tsParser, nil
}

func (p *Parser) release(tsParser *sitter.Parser) {
	select {
	case p.idle <- tsParser:
	default:
		tsParser.Close()
	}
}

// Close frees the idle native parsers. Parsing after Close still works;
// parsers are created on demand again.
func (p *Parser) Close() {
	for {
		select {
		case tsParser := <-p.idle:
			tsParser.Close()
		default:
			return
		}
	}
}

func (p *Parser) Name() string         { return Name }
func (p *Parser) Level() dialect.Level { return dialect.Permissive }

// Parse parses src. Any ERROR or MISSING node in the tree makes the whole
// file a parse error.
func (p *Parser) Parse(filename string, src []byte) (*ast.Node, error) {
	tsParser, err := p.acquire()
	if err != nil {
		return nil, &dialect.ParseError{Dialect: Name, File: filename, Message: "tree-sitter setup: " + err.Error()}
	}
	defer p.release(tsParser)

	tree := tsParser.Parse(src, nil)
	if tree == nil {
		return nil, &dialect.ParseError{Dialect: Name, File: filename, Message: "parser returned no tree"}
	}
	defer tree.Close()

	root := tree.RootNode()
	if root.HasError() {
		return nil, syntaxError(filename, root)
	}

	b := builder{src: src}
	return b.program(root), nil
}

// syntaxError locates the first ERROR or MISSING node in source order.
func syntaxError(filename string, root *sitter.Node) error {
	bad := firstError(root)
	if bad == nil {
		bad = root
	}
	pos := bad.StartPosition()
	msg := "unexpected syntax"
	if bad.IsMissing() {
		msg = "missing " + bad.Kind()
	}
	return &dialect.ParseError{
		Dialect: Name,
		File:    filename,
		Line:    int(pos.Row) + 1,
		Column:  int(pos.Column),
		Message: msg,
	}
}

func firstError(n *sitter.Node) *sitter.Node {
	if n.IsError() || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := range n.ChildCount() {
		if child := n.Child(i); child != nil {
			if bad := firstError(child); bad != nil {
				return bad
			}
		}
	}
	return nil
}
