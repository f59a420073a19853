// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package estree models the subset of the ESTree program tree that the class
// rewriter inspects and synthesizes.
//
// Nodes the rewriter does not interpret are kept verbatim as *Raw values, and
// every interpreted node keeps the JSON keys it does not understand in Extra,
// so a Decode/Encode round trip hands the external code generator the same
// tree it would have received without the rewrite.
package estree

import "encoding/json"

// =============================================================================
// Node Kinds
// =============================================================================

const (
	KindProgram                  = "Program"
	KindIdentifier               = "Identifier"
	KindLiteral                  = "Literal"
	KindMemberExpression         = "MemberExpression"
	KindCallExpression           = "CallExpression"
	KindObjectExpression         = "ObjectExpression"
	KindArrayExpression          = "ArrayExpression"
	KindProperty                 = "Property"
	KindFunctionExpression       = "FunctionExpression"
	KindMethodDefinition         = "MethodDefinition"
	KindPropertyDefinition       = "PropertyDefinition"
	KindClassDeclaration         = "ClassDeclaration"
	KindClassBody                = "ClassBody"
	KindDecorator                = "Decorator"
	KindExpressionStatement      = "ExpressionStatement"
	KindBlockStatement           = "BlockStatement"
	KindReturnStatement          = "ReturnStatement"
	KindExportDefaultDeclaration = "ExportDefaultDeclaration"
	KindExportNamedDeclaration   = "ExportNamedDeclaration"
)

// =============================================================================
// Shared Node Metadata
// =============================================================================

// Span is the source offset range a node was parsed from.
type Span struct {
	Start int
	End   int
}

// Base holds the metadata every node carries.
type Base struct {
	// Span is nil for synthesized nodes and for parsers that emit no offsets.
	Span *Span

	// Extra keeps JSON keys the model does not interpret (loc, range,
	// superClass details, comments, ...) so they survive re-encoding.
	Extra map[string]json.RawMessage
}

func (b *Base) meta() *Base { return b }

// Node is implemented by every tree node.
//
// The kinds declared in this file are the whole set; Decode produces *Raw
// for anything else, so type switches over Node only need a default branch.
type Node interface {
	// Type returns the ESTree "type" tag.
	Type() string
	meta() *Base
}

// Meta returns the shared metadata of n, or nil for a nil node.
func Meta(n Node) *Base {
	if n == nil {
		return nil
	}
	return n.meta()
}

// =============================================================================
// Program and Statements
// =============================================================================

// Program is the root of a parsed module or script.
type Program struct {
	Base
	Body []Node
}

// ExpressionStatement wraps an expression used as a statement.
type ExpressionStatement struct {
	Base
	Expression Node
}

// BlockStatement is a braced statement list.
type BlockStatement struct {
	Base
	Body []Node
}

// ReturnStatement is "return <Argument>". Argument may be nil.
type ReturnStatement struct {
	Base
	Argument Node
}

// ExportDefaultDeclaration is "export default <Declaration>".
type ExportDefaultDeclaration struct {
	Base
	Declaration Node
}

// ExportNamedDeclaration is "export <Declaration>" or
// "export { specifiers } [from Source]".
type ExportNamedDeclaration struct {
	Base
	Declaration Node
	Specifiers  []Node
	Source      Node
}

// =============================================================================
// Classes
// =============================================================================

// ClassDeclaration is a class statement. ID is nil for "export default class {}".
type ClassDeclaration struct {
	Base
	ID         *Identifier
	SuperClass Node
	Body       *ClassBody

	// Decorators is nil when the parser emitted no decorators key.
	Decorators []*Decorator
}

// Name returns the declared class name, or "" for an anonymous class.
func (c *ClassDeclaration) Name() string {
	if c == nil || c.ID == nil {
		return ""
	}
	return c.ID.Name
}

// ClassBody holds the ordered class members.
type ClassBody struct {
	Base
	Body []Node
}

// Decorator is an "@expression" marker on a class or a class member.
type Decorator struct {
	Base
	Expression Node
}

// PropertyDefinition is a class field: "[static] key = value".
type PropertyDefinition struct {
	Base
	Key        Node
	Value      Node
	Computed   bool
	Static     bool
	Decorators []*Decorator
}

// MethodDefinition is a class method, getter or setter.
type MethodDefinition struct {
	Base
	Key        Node
	Value      *FunctionExpression
	Kind       string
	Computed   bool
	Static     bool
	Decorators []*Decorator
}

// =============================================================================
// Expressions
// =============================================================================

// Identifier is a name reference.
type Identifier struct {
	Base
	Name string
}

// Literal is a primitive literal. Value holds a string, json.Number, bool or
// nil; Raw is the source text when the parser provided it.
type Literal struct {
	Base
	Value any
	Raw   string
}

// MemberExpression is "Object.Property" or "Object[Property]".
type MemberExpression struct {
	Base
	Object   Node
	Property Node
	Computed bool
}

// CallExpression is "Callee(Arguments...)".
type CallExpression struct {
	Base
	Callee    Node
	Arguments []Node
}

// ObjectExpression is an object literal.
type ObjectExpression struct {
	Base
	Properties []Node
}

// ArrayExpression is an array literal. Holes are nil elements.
type ArrayExpression struct {
	Base
	Elements []Node
}

// Property is an object literal entry.
type Property struct {
	Base
	Key       Node
	Value     Node
	Kind      string
	Computed  bool
	Method    bool
	Shorthand bool
}

// FunctionExpression is a function literal; also the value of a method.
type FunctionExpression struct {
	Base
	ID        *Identifier
	Params    []Node
	Body      *BlockStatement
	Async     bool
	Generator bool
}

// =============================================================================
// Uninterpreted Nodes
// =============================================================================

// Raw is any node kind the rewriter does not interpret. It is re-encoded
// byte for byte.
type Raw struct {
	Base
	Kind string
	Data json.RawMessage
}

// =============================================================================
// Type Tags
// =============================================================================

func (*Program) Type() string                  { return KindProgram }
func (*ExpressionStatement) Type() string      { return KindExpressionStatement }
func (*BlockStatement) Type() string           { return KindBlockStatement }
func (*ReturnStatement) Type() string          { return KindReturnStatement }
func (*ExportDefaultDeclaration) Type() string { return KindExportDefaultDeclaration }
func (*ExportNamedDeclaration) Type() string   { return KindExportNamedDeclaration }
func (*ClassDeclaration) Type() string         { return KindClassDeclaration }
func (*ClassBody) Type() string                { return KindClassBody }
func (*Decorator) Type() string                { return KindDecorator }
func (*PropertyDefinition) Type() string       { return KindPropertyDefinition }
func (*MethodDefinition) Type() string         { return KindMethodDefinition }
func (*Identifier) Type() string               { return KindIdentifier }
func (*Literal) Type() string                  { return KindLiteral }
func (*MemberExpression) Type() string         { return KindMemberExpression }
func (*CallExpression) Type() string           { return KindCallExpression }
func (*ObjectExpression) Type() string         { return KindObjectExpression }
func (*ArrayExpression) Type() string          { return KindArrayExpression }
func (*Property) Type() string                 { return KindProperty }
func (*FunctionExpression) Type() string       { return KindFunctionExpression }
func (r *Raw) Type() string                    { return r.Kind }
