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
	"encoding/json"
	"fmt"

	"github.com/AleutianAI/classproto/services/classproto/estree"
)

// =============================================================================
// Class Marker
// =============================================================================

// classMarker is the outcome of reading a class's decorators.
type classMarker struct {
	// Found is true when the class carries the marker.
	Found bool

	// Category is the category the marker names. CategoryOther when the
	// marker is used bare, called without arguments, or called with
	// anything other than a single literal.
	Category string

	// Removed is true when the marker was stripped from the tree.
	Removed bool
}

// readClassMarker looks for the class marker among decl's decorators. Only
// the first occurrence counts. Recognized shapes are "@marker",
// "@marker()" and "@marker(<literal>)".
func readClassMarker(decl *estree.ClassDeclaration, name string, remove bool) classMarker {
	for c := newCursor(&decl.Decorators); c.Next(); {
		d := c.Current()
		if d == nil {
			continue
		}
		category, ok := classMarkerCategory(d.Expression, name)
		if !ok {
			continue
		}
		m := classMarker{Found: true, Category: category}
		if remove {
			c.Remove()
			m.Removed = true
		}
		return m
	}
	return classMarker{}
}

func classMarkerCategory(expr estree.Node, name string) (string, bool) {
	switch e := expr.(type) {
	case *estree.Identifier:
		if e.Name == name {
			return CategoryOther, true
		}
	case *estree.CallExpression:
		if !estree.IsIdentifier(e.Callee, name) {
			return "", false
		}
		if len(e.Arguments) == 1 {
			if lit, ok := e.Arguments[0].(*estree.Literal); ok {
				return literalLabel(lit), true
			}
		}
		return CategoryOther, true
	}
	return "", false
}

// literalLabel renders a literal the way it reads as an object key.
func literalLabel(lit *estree.Literal) string {
	switch v := lit.Value.(type) {
	case string:
		return v
	case json.Number:
		return v.String()
	case nil:
		return "null"
	default:
		return fmt.Sprint(v)
	}
}

// =============================================================================
// Field Markers
// =============================================================================

// Placement is what a field's markers say about where it lives.
type Placement int

const (
	// PlacementUndetermined means no marker decided.
	PlacementUndetermined Placement = iota

	// PlacementPrototype means the field is forced onto the prototype.
	PlacementPrototype

	// PlacementInstance means the field stays on the instance.
	PlacementInstance
)

// String implements fmt.Stringer.
func (p Placement) String() string {
	switch p {
	case PlacementPrototype:
		return "prototype"
	case PlacementInstance:
		return "instance"
	default:
		return "undetermined"
	}
}

// fieldMarkers names the two field markers and whether to strip them.
type fieldMarkers struct {
	prototype       string
	removePrototype bool
	instance        string
	removeInstance  bool
}

// readFieldMarkers scans a field's decorators in order. Only bare
// identifiers are recognized and the first recognized marker decides.
// If both markers share a name the prototype marker wins. removed reports
// whether the deciding marker was stripped.
func readFieldMarkers(field *estree.PropertyDefinition, markers fieldMarkers) (placement Placement, removed bool) {
	for c := newCursor(&field.Decorators); c.Next(); {
		d := c.Current()
		if d == nil {
			continue
		}
		name, ok := estree.IdentifierName(d.Expression)
		if !ok || name == "" {
			continue
		}
		switch name {
		case markers.prototype:
			if markers.removePrototype {
				c.Remove()
			}
			return PlacementPrototype, markers.removePrototype
		case markers.instance:
			if markers.removeInstance {
				c.Remove()
			}
			return PlacementInstance, markers.removeInstance
		}
	}
	return PlacementUndetermined, false
}
