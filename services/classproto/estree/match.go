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

// Shape predicates. All of them treat nil and unexpected kinds as a miss.

// IdentifierName returns the name of an *Identifier node.
func IdentifierName(n Node) (string, bool) {
	id, ok := n.(*Identifier)
	if !ok || id == nil {
		return "", false
	}
	return id.Name, true
}

// IsIdentifier reports whether n is an identifier called name.
func IsIdentifier(n Node, name string) bool {
	got, ok := IdentifierName(n)
	return ok && got == name
}

// IsStringLiteral reports whether n is a string literal equal to value.
func IsStringLiteral(n Node, value string) bool {
	lit, ok := n.(*Literal)
	if !ok || lit == nil {
		return false
	}
	s, ok := lit.Value.(string)
	return ok && s == value
}

// IsMember reports whether n is the non-computed access "object.property"
// where object is an identifier.
func IsMember(n Node, object, property string) bool {
	m, ok := n.(*MemberExpression)
	if !ok || m == nil || m.Computed {
		return false
	}
	return IsIdentifier(m.Object, object) && IsIdentifier(m.Property, property)
}

// CallTo returns the call expression of an expression statement whose callee
// is "object.method".
func CallTo(stmt Node, object, method string) (*CallExpression, bool) {
	es, ok := stmt.(*ExpressionStatement)
	if !ok || es == nil {
		return nil, false
	}
	call, ok := es.Expression.(*CallExpression)
	if !ok || call == nil || !IsMember(call.Callee, object, method) {
		return nil, false
	}
	return call, true
}

// ClassOf returns the class declaration held by a top-level statement: the
// statement itself, the declaration of "export default", or the declaration
// of an "export" without specifiers.
func ClassOf(stmt Node) (*ClassDeclaration, bool) {
	switch s := stmt.(type) {
	case *ClassDeclaration:
		return s, s != nil
	case *ExportDefaultDeclaration:
		decl, ok := s.Declaration.(*ClassDeclaration)
		return decl, ok && decl != nil
	case *ExportNamedDeclaration:
		if len(s.Specifiers) > 0 {
			return nil, false
		}
		decl, ok := s.Declaration.(*ClassDeclaration)
		return decl, ok && decl != nil
	default:
		return nil, false
	}
}
