// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transform

import (
	"github.com/AleutianAI/classproto/services/classproto/estree"
)

// Constructor name statement:
//
//	Object.defineProperty(Name.prototype.constructor, 'name', { value: 'Name' });
//
// Minifiers rename classes; the statement pins the runtime name.

// nameState classifies what the program already says about a class's
// constructor name.
type nameState int

const (
	nameMissing nameState = iota
	nameMismatch
	nameEqual
)

// findConstructorName returns the first constructor name statement for
// className and whether its descriptor already holds className.
func findConstructorName(body []estree.Node, className string) (*estree.CallExpression, nameState) {
	for _, stmt := range body {
		call, ok := estree.CallTo(stmt, "Object", "defineProperty")
		if !ok || len(call.Arguments) != 3 {
			continue
		}
		if !isConstructorOf(call.Arguments[0], className) || !estree.IsStringLiteral(call.Arguments[1], "name") {
			continue
		}
		if descriptorValueIs(call.Arguments[2], className) {
			return call, nameEqual
		}
		return call, nameMismatch
	}
	return nil, nameMissing
}

// isConstructorOf matches "Name.prototype.constructor".
func isConstructorOf(n estree.Node, className string) bool {
	m, ok := n.(*estree.MemberExpression)
	if !ok || m == nil || m.Computed || !estree.IsIdentifier(m.Property, "constructor") {
		return false
	}
	return estree.IsMember(m.Object, className, "prototype")
}

// descriptorValueIs reports whether n is an object literal with a "value"
// entry holding the string className.
func descriptorValueIs(n estree.Node, className string) bool {
	obj, ok := n.(*estree.ObjectExpression)
	if !ok || obj == nil {
		return false
	}
	for _, entry := range obj.Properties {
		p, ok := entry.(*estree.Property)
		if !ok || p == nil || p.Computed {
			continue
		}
		if !estree.IsIdentifier(p.Key, "value") && !estree.IsStringLiteral(p.Key, "value") {
			continue
		}
		if estree.IsStringLiteral(p.Value, className) {
			return true
		}
	}
	return false
}

func newNameDescriptor(className string) *estree.ObjectExpression {
	return estree.NewObjectExpression(
		estree.NewProperty(estree.NewIdentifier("value"), estree.NewLiteral(className)),
	)
}

func newConstructorNameStatement(className string) *estree.ExpressionStatement {
	constructor := estree.NewMemberExpression(
		estree.NewMemberExpression(estree.NewIdentifier(className), estree.NewIdentifier("prototype")),
		estree.NewIdentifier("constructor"),
	)
	return estree.NewExpressionStatement(
		estree.NewCallExpression(
			estree.NewMemberExpression(estree.NewIdentifier("Object"), estree.NewIdentifier("defineProperty")),
			constructor,
			estree.NewLiteral("name"),
			newNameDescriptor(className),
		),
	)
}

// stampConstructorName makes sure the program pins the runtime name of
// className, inserting after the class statement or after any statement
// already inserted for it. It reports whether the tree changed.
func (r *run) stampConstructorName(className string) bool {
	call, state := findConstructorName(r.program.Body, className)
	switch state {
	case nameEqual:
		return false
	case nameMismatch:
		if !r.t.opts.ReplaceConstructorName {
			return false
		}
		call.Arguments[2] = newNameDescriptor(className)
		statementsTotal.WithLabelValues(statementConstructorName, actionReplaced).Inc()
		return true
	default:
		r.statements.InsertAfter(newConstructorNameStatement(className))
		r.inserted++
		statementsTotal.WithLabelValues(statementConstructorName, actionInserted).Inc()
		return true
	}
}
