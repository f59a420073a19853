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
	"slices"

	"github.com/AleutianAI/classproto/services/classproto/estree"
)

// relocation is the outcome of walking one class body.
type relocation struct {
	// Moved holds the removed fields in body order. Empty in getter mode.
	Moved []*estree.PropertyDefinition

	// Getters counts fields rewritten in place as getters.
	Getters int

	// Kept counts fields an instance marker kept on the instance.
	Kept int

	// Updated is true if anything in the class body changed, including a
	// stripped instance marker.
	Updated bool
}

// relocateFields walks the class body and pulls out every non-static field
// that should live on the prototype.
//
// Per field, first match wins:
//  1. prototype marker: move
//  2. instance marker: keep
//  3. identifier key listed in names: move
//  4. ShouldMoveProperty returns true: move
//
// A moved field is removed from the body, or replaced by a getter in
// getter mode.
func (t *Transformer) relocateFields(decl *estree.ClassDeclaration, names []string, program *estree.Program) relocation {
	var out relocation
	if decl.Body == nil {
		return out
	}
	for c := newCursor(&decl.Body.Body); c.Next(); {
		field, ok := c.Current().(*estree.PropertyDefinition)
		if !ok || field == nil || field.Static {
			continue
		}

		placement, removed := readFieldMarkers(field, t.markers)
		switch placement {
		case PlacementInstance:
			out.Kept++
			if removed {
				out.Updated = true
			}
			continue
		case PlacementUndetermined:
			if !t.shouldMove(decl, field, names, program) {
				continue
			}
		}

		if t.opts.ConvertToPropertyGetters {
			c.Replace(getterFor(field))
			out.Getters++
		} else {
			c.Remove()
			out.Moved = append(out.Moved, field)
		}
		out.Updated = true
	}
	return out
}

func (t *Transformer) shouldMove(decl *estree.ClassDeclaration, field *estree.PropertyDefinition, names []string, program *estree.Program) bool {
	if name, ok := fieldName(field); ok && slices.Contains(names, name) {
		return true
	}
	if t.opts.ShouldMoveProperty == nil {
		return false
	}
	return t.opts.ShouldMoveProperty(ShouldMoveInput{Field: field, Class: decl, Program: program})
}

// fieldName returns the key of "name = value". Computed keys have no name.
func fieldName(field *estree.PropertyDefinition) (string, bool) {
	if field.Computed {
		return "", false
	}
	return estree.IdentifierName(field.Key)
}

// getterFor builds "get key() { return value; }" at the field's position.
func getterFor(field *estree.PropertyDefinition) *estree.MethodDefinition {
	fn := estree.NewFunctionExpression(nil, nil,
		estree.NewBlockStatement(estree.NewReturnStatement(field.Value)))
	getter := estree.NewMethodDefinition(field.Key, fn, "get")
	getter.Computed = field.Computed
	copyPosition(&getter.Base, &field.Base)
	return getter
}

// positionKeys are the parser location keys carried from a field to the
// node that replaces it.
var positionKeys = []string{"loc", "range"}

// copyPosition copies the source position of src onto dst.
func copyPosition(dst, src *estree.Base) {
	if src.Span != nil {
		span := *src.Span
		dst.Span = &span
	}
	for _, key := range positionKeys {
		v, ok := src.Extra[key]
		if !ok {
			continue
		}
		if dst.Extra == nil {
			dst.Extra = make(map[string]json.RawMessage, len(positionKeys))
		}
		dst.Extra[key] = v
	}
}
