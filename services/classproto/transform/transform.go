// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package transform moves class fields onto the class prototype.
//
// A field such as
//
//	class Todo extends Model { defaults = { done: false }; }
//
// is removed from the class and installed once on the prototype:
//
//	class Todo extends Model {}
//	Object.assign(Todo.prototype, { defaults: { done: false } });
//	Object.defineProperty(Todo.prototype.constructor, 'name', { value: 'Todo' });
//
// Which fields move is decided by markers (decorators), by per-category
// field-name tables, by class-name inference and by caller hooks. The
// rewrite works in place on an estree.Program and is idempotent.
package transform

import (
	"context"
	"log/slog"

	"github.com/AleutianAI/classproto/services/classproto/estree"
	"github.com/AleutianAI/classproto/services/classproto/rules"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Result reports what a Transform call did.
type Result struct {
	// Updated is true if the tree was modified.
	Updated bool
}

// Transformer applies one set of Options to programs.
//
// Thread Safety: Immutable after construction and safe for concurrent use
// on distinct programs. A single program must not be transformed
// concurrently.
type Transformer struct {
	opts       Options
	fieldNames rules.Table[string]
	classTypes rules.Table[rules.Matcher]
	markers    fieldMarkers
	logger     *slog.Logger
}

// NewTransformer merges the option tables once and returns a Transformer.
//
// Inputs:
//
//	opts - Options, usually starting from DefaultOptions.
//
// Outputs:
//
//	*Transformer - Ready to use. Never nil.
func NewTransformer(opts Options) *Transformer {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transformer{
		opts: opts,
		fieldNames: rules.Merge(opts.PrototypeProperties,
			opts.AlternativePrototypeProperties, opts.AdditionalPrototypeProperties),
		classTypes: rules.Merge(opts.ClassTypes,
			opts.AlternativeClassTypes, opts.AdditionalClassTypes),
		markers: fieldMarkers{
			prototype:       opts.PrototypeDecorator,
			removePrototype: opts.RemovePrototypeDecorator,
			instance:        opts.InstanceDecorator,
			removeInstance:  opts.RemoveInstanceDecorator,
		},
		logger: logger,
	}
}

// Transform is NewTransformer(opts).Transform(ctx, program).
func Transform(ctx context.Context, program *estree.Program, opts Options) Result {
	return NewTransformer(opts).Transform(ctx, program)
}

// FieldNames returns a copy of the merged category table.
func (t *Transformer) FieldNames() rules.Table[string] {
	return t.fieldNames.Clone()
}

// ClassTypes returns a copy of the merged class-type table.
func (t *Transformer) ClassTypes() rules.Table[rules.Matcher] {
	return t.classTypes.Clone()
}

// run is the state of one Transform call.
type run struct {
	t          *Transformer
	program    *estree.Program
	statements *cursor[estree.Node]
	logger     *slog.Logger

	classes  int
	moved    int
	getters  int
	inserted int
	updated  bool
}

// Transform rewrites every top-level class of program in place.
//
// Description:
//
//	Top-level statements are visited in order. A statement holding a class
//	(bare, "export default", or "export" without specifiers) runs, per
//	class: marker reading, classification, field relocation, prototype
//	assignment and constructor name stamping. Statements inserted for a
//	class go right after it, or after earlier insertions for the same
//	class, and are not visited themselves.
//
//	Running Transform again on its own output changes nothing.
//
// Inputs:
//
//	ctx - Carries the trace span. The rewrite is CPU bound and is not
//	      interrupted by cancellation.
//	program - The tree to rewrite. nil is a no-op.
//
// Outputs:
//
//	Result - Updated is true if anything changed.
func (t *Transformer) Transform(ctx context.Context, program *estree.Program) Result {
	ctx, span := otel.Tracer(transformTracerName).Start(ctx, "transform.Transformer.Transform",
		trace.WithAttributes(
			attribute.Bool("convert_to_getters", t.opts.ConvertToPropertyGetters),
			attribute.Bool("ensure_constructor_name", t.opts.EnsureConstructorName),
		),
	)
	defer span.End()

	if program == nil {
		return Result{}
	}

	r := &run{
		t:          t,
		program:    program,
		statements: newCursor(&program.Body),
		logger:     t.logger,
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		r.logger = r.logger.With(slog.String("trace_id", sc.TraceID().String()))
	}

	for r.statements.Next() {
		decl, ok := estree.ClassOf(r.statements.Current())
		if !ok {
			continue
		}
		r.rewriteClass(decl)
	}

	span.SetAttributes(
		attribute.Int("class_count", r.classes),
		attribute.Int("moved_count", r.moved),
		attribute.Int("getter_count", r.getters),
		attribute.Int("inserted_count", r.inserted),
		attribute.Bool("updated", r.updated),
	)
	r.logger.DebugContext(ctx, "transform complete",
		slog.Int("class_count", r.classes),
		slog.Int("moved_count", r.moved),
		slog.Int("getter_count", r.getters),
		slog.Int("inserted_count", r.inserted),
		slog.Bool("updated", r.updated),
	)
	return Result{Updated: r.updated}
}

// rewriteClass runs the per-class pipeline on the class held by the
// current statement.
func (r *run) rewriteClass(decl *estree.ClassDeclaration) {
	t := r.t
	r.classes++

	marker := readClassMarker(decl, t.opts.ClassDecorator, t.opts.RemoveClassDecorator)
	name := decl.Name()
	if name == "" && !t.opts.ConvertToPropertyGetters {
		// Anonymous classes cannot be referenced from a following statement,
		// so only getter mode can relocate their fields.
		if marker.Removed {
			r.updated = true
		}
		recordClassMetrics(outcomeAnonymous, relocation{})
		r.logger.Debug("anonymous class skipped",
			slog.Bool("marker_found", marker.Found),
		)
		return
	}

	cl := t.classify(decl, marker, r.program)
	rel := t.relocateFields(decl, cl.FieldNames, r.program)
	changed := marker.Removed || rel.Updated

	if name != "" {
		if len(rel.Moved) > 0 {
			r.placePrototypeEntries(name, rel.Moved)
			changed = true
		}
		if t.opts.EnsureConstructorName && r.stampConstructorName(name) {
			changed = true
		}
	}

	r.moved += len(rel.Moved)
	r.getters += rel.Getters
	if changed {
		r.updated = true
	}

	outcome := outcomeUnchanged
	switch {
	case name == "":
		outcome = outcomeAnonymous
	case changed:
		outcome = outcomeUpdated
	}
	recordClassMetrics(outcome, rel)

	r.logger.Debug("class processed",
		slog.String("class", name),
		slog.String("category", cl.Category),
		slog.String("classified_by", cl.Source),
		slog.Int("moved_count", len(rel.Moved)),
		slog.Int("getter_count", rel.Getters),
		slog.Int("kept_count", rel.Kept),
		slog.Bool("updated", changed),
	)
}
