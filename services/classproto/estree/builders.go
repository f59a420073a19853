// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package estree

// Builders produce the minimal node shapes a code generator needs. They set
// no Span; callers copy positions explicitly when they want them kept.

// NewLiteral builds a literal. value should be a string, json.Number, bool or nil.
func NewLiteral(value any) *Literal {
	return &Literal{Value: value}
}

// NewIdentifier builds a name reference.
func NewIdentifier(name string) *Identifier {
	return &Identifier{Name: name}
}

// NewProperty builds an "init" object literal entry.
func NewProperty(key, value Node) *Property {
	return &Property{Key: key, Value: value, Kind: "init"}
}

// NewMemberExpression builds a non-computed "object.property" access.
func NewMemberExpression(object, property Node) *MemberExpression {
	return &MemberExpression{Object: object, Property: property}
}

// NewObjectExpression builds an object literal.
func NewObjectExpression(properties ...Node) *ObjectExpression {
	if properties == nil {
		properties = []Node{}
	}
	return &ObjectExpression{Properties: properties}
}

// NewArrayExpression builds an array literal.
func NewArrayExpression(elements ...Node) *ArrayExpression {
	if elements == nil {
		elements = []Node{}
	}
	return &ArrayExpression{Elements: elements}
}

// NewCallExpression builds "callee(args...)".
func NewCallExpression(callee Node, args ...Node) *CallExpression {
	if args == nil {
		args = []Node{}
	}
	return &CallExpression{Callee: callee, Arguments: args}
}

// NewFunctionExpression builds a plain (non-async, non-generator) function.
func NewFunctionExpression(id *Identifier, params []Node, body *BlockStatement) *FunctionExpression {
	if params == nil {
		params = []Node{}
	}
	return &FunctionExpression{ID: id, Params: params, Body: body}
}

// NewMethodDefinition builds a non-static class method of the given kind
// ("method", "get", "set").
func NewMethodDefinition(key Node, value *FunctionExpression, kind string) *MethodDefinition {
	return &MethodDefinition{Key: key, Value: value, Kind: kind}
}

// NewExpressionStatement wraps expr as a statement.
func NewExpressionStatement(expr Node) *ExpressionStatement {
	return &ExpressionStatement{Expression: expr}
}

// NewBlockStatement builds a braced statement list.
func NewBlockStatement(body ...Node) *BlockStatement {
	if body == nil {
		body = []Node{}
	}
	return &BlockStatement{Body: body}
}

// NewReturnStatement builds "return argument".
func NewReturnStatement(argument Node) *ReturnStatement {
	return &ReturnStatement{Argument: argument}
}
