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
	"log/slog"

	"github.com/AleutianAI/classproto/services/classproto/estree"
	"github.com/AleutianAI/classproto/services/classproto/rules"
)

// =============================================================================
// Defaults
// =============================================================================

const (
	// DefaultClassDecorator marks a class for processing.
	DefaultClassDecorator = "propertiesToPrototype"

	// DefaultPrototypeDecorator forces a field onto the prototype.
	DefaultPrototypeDecorator = "prototype"

	// DefaultInstanceDecorator keeps a field on the instance.
	DefaultInstanceDecorator = "instance"

	// CategoryOther is the category of a class marked without an argument.
	CategoryOther = "other"
)

// =============================================================================
// Extension Points
// =============================================================================

// ClassifyInput is what a ClassifyFunc sees.
//
// Tables and lists are private copies. Class and Program are the live tree;
// a ClassifyFunc must treat them as read-only.
type ClassifyInput struct {
	Class               *estree.ClassDeclaration
	Category            string
	PrototypeProperties rules.Table[string]
	FieldNames          []string
	Program             *estree.Program
}

// ClassifyResult overrides the resolved classification. An empty Category
// keeps the previous one; a nil FieldNames re-derives the list from the
// category table. A non-nil empty FieldNames means "move nothing by name".
type ClassifyResult struct {
	Category   string
	FieldNames []string
}

// ClassifyFunc is the last-resort classification hook. It runs only for
// classes that neither a marker nor the class-type table classified.
type ClassifyFunc func(in ClassifyInput) ClassifyResult

// ShouldMoveInput is what a ShouldMoveFunc sees. All nodes are read-only.
type ShouldMoveInput struct {
	Field   *estree.PropertyDefinition
	Class   *estree.ClassDeclaration
	Program *estree.Program
}

// ShouldMoveFunc is the last-resort per-field hook, consulted after markers
// and the field-name list found no reason to move the field.
type ShouldMoveFunc func(in ShouldMoveInput) bool

// =============================================================================
// Options
// =============================================================================

// Options configures a Transformer. Start from DefaultOptions; the zero
// value has no markers and no category table.
type Options struct {
	// PrototypeProperties lists, per category, the field names to move.
	// Default: the embedded table from rules.DefaultPrototypeProperties.
	PrototypeProperties rules.Table[string]

	// AlternativePrototypeProperties replaces same-category entries of
	// PrototypeProperties.
	AlternativePrototypeProperties rules.Table[string]

	// AdditionalPrototypeProperties is appended to same-category entries.
	AdditionalPrototypeProperties rules.Table[string]

	// ClassDecorator names the class marker. Default: "propertiesToPrototype".
	ClassDecorator string

	// RemoveClassDecorator strips the class marker once read. Default: true.
	RemoveClassDecorator bool

	// PrototypeDecorator names the field marker forcing a move. Default: "prototype".
	PrototypeDecorator string

	// RemovePrototypeDecorator strips that marker once read. Default: true.
	RemovePrototypeDecorator bool

	// InstanceDecorator names the field marker forcing a field to stay.
	// Default: "instance".
	InstanceDecorator string

	// RemoveInstanceDecorator strips that marker once read. Default: true.
	RemoveInstanceDecorator bool

	// ConvertToPropertyGetters replaces selected fields with getters that
	// return the initializer instead of moving them. Default: false.
	ConvertToPropertyGetters bool

	// ClassTypes infers a category from the class name for unmarked classes.
	// Categories are tried in table order; the first hit wins.
	ClassTypes rules.Table[rules.Matcher]

	// AlternativeClassTypes replaces same-category entries of ClassTypes.
	AlternativeClassTypes rules.Table[rules.Matcher]

	// AdditionalClassTypes is appended to same-category entries of ClassTypes.
	AdditionalClassTypes rules.Table[rules.Matcher]

	// MatchClassTypeSuffix makes name matchers compare by suffix. Default: false.
	MatchClassTypeSuffix bool

	// ClassifyClass is consulted for classes nothing else classified.
	ClassifyClass ClassifyFunc

	// ShouldMoveProperty decides fields nothing else decided.
	ShouldMoveProperty ShouldMoveFunc

	// EnsureConstructorName adds the constructor name statement. Default: true.
	EnsureConstructorName bool

	// ReplaceConstructorName overwrites an existing constructor name
	// statement whose value differs from the class name. Default: false.
	ReplaceConstructorName bool

	// Logger receives per-class decisions at debug level. Default: slog.Default().
	Logger *slog.Logger
}

// DefaultOptions returns the documented defaults.
func DefaultOptions() Options {
	return Options{
		PrototypeProperties:      rules.DefaultPrototypeProperties(),
		ClassDecorator:           DefaultClassDecorator,
		RemoveClassDecorator:     true,
		PrototypeDecorator:       DefaultPrototypeDecorator,
		RemovePrototypeDecorator: true,
		InstanceDecorator:        DefaultInstanceDecorator,
		RemoveInstanceDecorator:  true,
		EnsureConstructorName:    true,
	}
}
