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

// Prototype assignment: "Object.assign(Name.prototype, { ... });"

// findPrototypeAssignment returns the object literal of the first top-level
// prototype assignment for className, or nil.
//
// Only statements with exactly two arguments, a non-computed
// "Name.prototype" target and an object literal source match.
func findPrototypeAssignment(body []estree.Node, className string) *estree.ObjectExpression {
	for _, stmt := range body {
		call, ok := estree.CallTo(stmt, "Object", "assign")
		if !ok || len(call.Arguments) != 2 {
			continue
		}
		if !estree.IsMember(call.Arguments[0], className, "prototype") {
			continue
		}
		if obj, ok := call.Arguments[1].(*estree.ObjectExpression); ok && obj != nil {
			return obj
		}
	}
	return nil
}

// newPrototypeAssignment builds the statement that installs entries on the
// prototype of className.
func newPrototypeAssignment(className string, entries []estree.Node) *estree.ExpressionStatement {
	return estree.NewExpressionStatement(
		estree.NewCallExpression(
			estree.NewMemberExpression(estree.NewIdentifier("Object"), estree.NewIdentifier("assign")),
			estree.NewMemberExpression(estree.NewIdentifier(className), estree.NewIdentifier("prototype")),
			estree.NewObjectExpression(entries...),
		),
	)
}

// prototypeEntries converts moved fields into object literal entries,
// keeping key, computed flag and source position. A field without an
// initializer becomes "key: undefined".
func prototypeEntries(fields []*estree.PropertyDefinition) []estree.Node {
	entries := make([]estree.Node, 0, len(fields))
	for _, f := range fields {
		value := f.Value
		if value == nil {
			value = estree.NewIdentifier("undefined")
		}
		p := estree.NewProperty(f.Key, value)
		p.Computed = f.Computed
		copyPosition(&p.Base, &f.Base)
		entries = append(entries, p)
	}
	return entries
}

// placePrototypeEntries appends moved fields to an existing prototype
// assignment, or inserts a new one right after the class statement.
func (r *run) placePrototypeEntries(className string, fields []*estree.PropertyDefinition) {
	entries := prototypeEntries(fields)
	if obj := findPrototypeAssignment(r.program.Body, className); obj != nil {
		obj.Properties = append(obj.Properties, entries...)
		statementsTotal.WithLabelValues(statementPrototype, actionMerged).Inc()
		return
	}
	r.statements.InsertAfter(newPrototypeAssignment(className, entries))
	r.inserted++
	statementsTotal.WithLabelValues(statementPrototype, actionInserted).Inc()
}
