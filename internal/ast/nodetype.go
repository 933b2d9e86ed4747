package ast

import (
	"encoding/json"
	"fmt"
)

// NodeType is the closed set of node tags rules can register handlers for.
//
//nolint:recvcheck // UnmarshalJSON requires pointer receiver per json.Unmarshaler interface
type NodeType uint8

const (
	// Unknown is the zero value; it never appears in a tree and never has a handler.
	Unknown NodeType = iota

	Program
	VariableDeclaration
	VariableDeclarator
	FunctionDeclaration
	FunctionExpression
	ArrowFunctionExpression
	ClassDeclaration
	ExpressionStatement
	BlockStatement
	ReturnStatement
	IfStatement
	ForStatement
	ForInStatement
	ForOfStatement
	WhileStatement
	DoWhileStatement
	ThrowStatement
	AssignmentExpression
	UpdateExpression
	UnaryExpression
	BinaryExpression
	CallExpression
	NewExpression
	MemberExpression
	ThisExpression
	Identifier
	Literal
	ObjectExpression
	ArrayExpression

	nodeTypeCount
)

var nodeTypeNames = [nodeTypeCount]string{
	Unknown:                 "Unknown",
	Program:                 "Program",
	VariableDeclaration:     "VariableDeclaration",
	VariableDeclarator:      "VariableDeclarator",
	FunctionDeclaration:     "FunctionDeclaration",
	FunctionExpression:      "FunctionExpression",
	ArrowFunctionExpression: "ArrowFunctionExpression",
	ClassDeclaration:        "ClassDeclaration",
	ExpressionStatement:     "ExpressionStatement",
	BlockStatement:          "BlockStatement",
	ReturnStatement:         "ReturnStatement",
	IfStatement:             "IfStatement",
	ForStatement:            "ForStatement",
	ForInStatement:          "ForInStatement",
	ForOfStatement:          "ForOfStatement",
	WhileStatement:          "WhileStatement",
	DoWhileStatement:        "DoWhileStatement",
	ThrowStatement:          "ThrowStatement",
	AssignmentExpression:    "AssignmentExpression",
	UpdateExpression:        "UpdateExpression",
	UnaryExpression:         "UnaryExpression",
	BinaryExpression:        "BinaryExpression",
	CallExpression:          "CallExpression",
	NewExpression:           "NewExpression",
	MemberExpression:        "MemberExpression",
	ThisExpression:          "ThisExpression",
	Identifier:              "Identifier",
	Literal:                 "Literal",
	ObjectExpression:        "ObjectExpression",
	ArrayExpression:         "ArrayExpression",
}

var nodeTypesByName = func() map[string]NodeType {
	m := make(map[string]NodeType, nodeTypeCount)
	for t := Program; t < nodeTypeCount; t++ {
		m[nodeTypeNames[t]] = t
	}
	return m
}()

// String returns the ESTree name of the node type.
func (t NodeType) String() string {
	if t >= nodeTypeCount {
		return fmt.Sprintf("NodeType(%d)", uint8(t))
	}
	return nodeTypeNames[t]
}

// Known reports whether t is a real node type (not Unknown, not out of range).
func (t NodeType) Known() bool {
	return t > Unknown && t < nodeTypeCount
}

// ParseNodeType resolves an ESTree node type name.
func ParseNodeType(name string) (NodeType, bool) {
	t, ok := nodeTypesByName[name]
	return t, ok
}

// NodeTypes returns every known node type in declaration order.
func NodeTypes() []NodeType {
	out := make([]NodeType, 0, nodeTypeCount-1)
	for t := Program; t < nodeTypeCount; t++ {
		out = append(out, t)
	}
	return out
}

// MarshalJSON implements json.Marshaler.
func (t NodeType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *NodeType) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, ok := ParseNodeType(s)
	if !ok {
		return fmt.Errorf("unknown node type: %q", s)
	}
	*t = parsed
	return nil
}

// IsFunction reports whether t introduces a function scope.
func (t NodeType) IsFunction() bool {
	return t == FunctionDeclaration || t == FunctionExpression || t == ArrowFunctionExpression
}

// IsLoop reports whether t is a loop statement.
func (t NodeType) IsLoop() bool {
	switch t {
	case ForStatement, ForInStatement, ForOfStatement, WhileStatement, DoWhileStatement:
		return true
	default:
		return false
	}
}
