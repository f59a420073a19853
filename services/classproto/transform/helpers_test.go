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
	"testing"

	"github.com/AleutianAI/classproto/services/classproto/estree"
	"github.com/AleutianAI/classproto/services/classproto/rules"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// Tree Builders
// =============================================================================

func id(name string) *estree.Identifier { return estree.NewIdentifier(name) }

func str(s string) *estree.Literal { return estree.NewLiteral(s) }

// bare builds "@name".
func bare(name string) *estree.Decorator {
	return &estree.Decorator{Expression: id(name)}
}

// called builds "@name(args...)".
func called(name string, args ...estree.Node) *estree.Decorator {
	return &estree.Decorator{Expression: estree.NewCallExpression(id(name), args...)}
}

func decorators(ds ...*estree.Decorator) []*estree.Decorator {
	if ds == nil {
		return []*estree.Decorator{}
	}
	return ds
}

// field builds "name = value" with optional markers.
func field(name string, value estree.Node, ds ...*estree.Decorator) *estree.PropertyDefinition {
	return &estree.PropertyDefinition{Key: id(name), Value: value, Decorators: decorators(ds...)}
}

func staticField(name string, value estree.Node, ds ...*estree.Decorator) *estree.PropertyDefinition {
	f := field(name, value, ds...)
	f.Static = true
	return f
}

// class builds "class name extends Base { members }". An empty name builds
// an anonymous class.
func class(name string, ds []*estree.Decorator, members ...estree.Node) *estree.ClassDeclaration {
	var ident *estree.Identifier
	if name != "" {
		ident = id(name)
	}
	if members == nil {
		members = []estree.Node{}
	}
	return &estree.ClassDeclaration{
		ID:         ident,
		SuperClass: id("Base"),
		Body:       &estree.ClassBody{Body: members},
		Decorators: decorators(ds...),
	}
}

func exportDefault(decl *estree.ClassDeclaration) *estree.ExportDefaultDeclaration {
	return &estree.ExportDefaultDeclaration{Declaration: decl}
}

func exportNamed(decl *estree.ClassDeclaration) *estree.ExportNamedDeclaration {
	return &estree.ExportNamedDeclaration{Declaration: decl, Specifiers: []estree.Node{}}
}

func program(body ...estree.Node) *estree.Program {
	if body == nil {
		body = []estree.Node{}
	}
	return &estree.Program{Body: body}
}

func prototypeAssignment(className string, entries ...estree.Node) estree.Node {
	return newPrototypeAssignment(className, entries)
}

func nameStatement(className, value string) estree.Node {
	stmt := newConstructorNameStatement(className)
	call := stmt.Expression.(*estree.CallExpression)
	call.Arguments[2] = newNameDescriptor(value)
	return stmt
}

// defaultsFor returns DefaultOptions with a single-category table.
func defaultsFor(category string, names ...string) Options {
	opts := DefaultOptions()
	opts.PrototypeProperties = tableOf(category, names...)
	return opts
}

func tableOf(category string, names ...string) rules.Table[string] {
	return rules.TableOf(rules.E(category, names...))
}

// clone deep-copies a program through the codec.
func clone(t *testing.T, p *estree.Program) *estree.Program {
	t.Helper()
	data, err := estree.Encode(p)
	require.NoError(t, err)
	out, err := estree.Decode(data)
	require.NoError(t, err)
	return out
}

// =============================================================================
// Tree Inspection
// =============================================================================

// describe summarizes top-level statements: "class X", "assign X",
// "name X", or the node type.
func describe(p *estree.Program) []string {
	out := make([]string, 0, len(p.Body))
	for _, stmt := range p.Body {
		if decl, ok := estree.ClassOf(stmt); ok {
			out = append(out, "class "+decl.Name())
			continue
		}
		if call, ok := estree.CallTo(stmt, "Object", "assign"); ok {
			target := call.Arguments[0].(*estree.MemberExpression)
			name, _ := estree.IdentifierName(target.Object)
			out = append(out, "assign "+name)
			continue
		}
		if call, ok := estree.CallTo(stmt, "Object", "defineProperty"); ok {
			ctor := call.Arguments[0].(*estree.MemberExpression)
			proto := ctor.Object.(*estree.MemberExpression)
			name, _ := estree.IdentifierName(proto.Object)
			out = append(out, "name "+name)
			continue
		}
		out = append(out, stmt.Type())
	}
	return out
}

// memberNames lists the keys of a class body in order.
func memberNames(decl *estree.ClassDeclaration) []string {
	out := []string{}
	for _, m := range decl.Body.Body {
		switch n := m.(type) {
		case *estree.PropertyDefinition:
			name, _ := estree.IdentifierName(n.Key)
			out = append(out, name)
		case *estree.MethodDefinition:
			name, _ := estree.IdentifierName(n.Key)
			out = append(out, n.Kind+" "+name)
		}
	}
	return out
}

// prototypeKeys lists the entry keys of the canonical prototype assignment
// of className, or nil when there is none.
func prototypeKeys(p *estree.Program, className string) []string {
	obj := findPrototypeAssignment(p.Body, className)
	if obj == nil {
		return nil
	}
	out := []string{}
	for _, entry := range obj.Properties {
		name, _ := estree.IdentifierName(entry.(*estree.Property).Key)
		out = append(out, name)
	}
	return out
}

// prototypeValue returns the value of key in className's prototype assignment.
func prototypeValue(t *testing.T, p *estree.Program, className, key string) estree.Node {
	t.Helper()
	obj := findPrototypeAssignment(p.Body, className)
	require.NotNil(t, obj, "no prototype assignment for %s", className)
	for _, entry := range obj.Properties {
		prop := entry.(*estree.Property)
		if estree.IsIdentifier(prop.Key, key) {
			return prop.Value
		}
	}
	t.Fatalf("prototype of %s has no %q", className, key)
	return nil
}

func decoratorNames(ds []*estree.Decorator) []string {
	out := []string{}
	for _, d := range ds {
		switch e := d.Expression.(type) {
		case *estree.Identifier:
			out = append(out, e.Name)
		case *estree.CallExpression:
			name, _ := estree.IdentifierName(e.Callee)
			out = append(out, name+"()")
		}
	}
	return out
}
