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
	"slices"

	"github.com/AleutianAI/classproto/services/classproto/estree"
)

// classification is the resolved category of a class and the field names
// that move by name.
type classification struct {
	Category   string
	Resolved   bool
	FieldNames []string

	// Source records which step decided: "marker", "class_type",
	// "callback" or "" when nothing did.
	Source string
}

// classify resolves a class in three steps, stopping at the first that
// yields a category: the class marker, the class-type table, then the
// ClassifyClass callback.
func (t *Transformer) classify(decl *estree.ClassDeclaration, marker classMarker, program *estree.Program) classification {
	var cl classification
	switch {
	case marker.Found:
		cl = classification{Category: marker.Category, Resolved: true, Source: "marker"}
	default:
		if category, ok := t.inferCategory(decl.Name()); ok {
			cl = classification{Category: category, Resolved: true, Source: "class_type"}
		}
	}
	if cl.Resolved {
		cl.FieldNames = t.fieldNamesFor(cl.Category)
	}

	if cl.Resolved || len(cl.FieldNames) > 0 || t.opts.ClassifyClass == nil {
		return cl
	}

	out := t.opts.ClassifyClass(ClassifyInput{
		Class:               decl,
		Category:            cl.Category,
		PrototypeProperties: t.fieldNames.Clone(),
		FieldNames:          slices.Clone(cl.FieldNames),
		Program:             program,
	})
	if out.Category != "" {
		cl.Category = out.Category
		cl.Resolved = true
		cl.Source = "callback"
	}
	if out.FieldNames != nil {
		cl.FieldNames = slices.Clone(out.FieldNames)
		cl.Source = "callback"
	} else if cl.Resolved {
		cl.FieldNames = t.fieldNamesFor(cl.Category)
	}
	return cl
}

// inferCategory returns the first category, in table order, with a matcher
// that accepts name. Anonymous classes never match.
func (t *Transformer) inferCategory(name string) (string, bool) {
	if name == "" {
		return "", false
	}
	for category, matchers := range t.classTypes.All() {
		for _, m := range matchers {
			if m.Match(name, t.opts.MatchClassTypeSuffix) {
				return category, true
			}
		}
	}
	return "", false
}

// fieldNamesFor returns the merged field-name list of a category. Unknown
// categories have none.
func (t *Transformer) fieldNamesFor(category string) []string {
	names, _ := t.fieldNames.Get(category)
	return names
}
