// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package rules holds the category tables that drive class rewriting: which
// field names move for a category, and which class names imply a category.
package rules

import (
	"fmt"
	"iter"
	"slices"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Ordered Table
// =============================================================================

// Table maps a category label to an ordered list of values and remembers the
// order categories were first added in.
//
// Description:
//
//	Category order matters for class-type inference: the first category whose
//	matchers hit wins. Replacing an existing key keeps its position; new keys
//	go to the end, the same way a later object spread behaves.
//
// Thread Safety: Not safe for concurrent mutation. Tables held by a
// Transformer are never mutated after construction.
type Table[T any] struct {
	keys    []string
	entries map[string][]T
}

// TableOf builds a table from entries in order.
func TableOf[T any](pairs ...Entry[T]) Table[T] {
	var t Table[T]
	for _, p := range pairs {
		t.Set(p.Key, p.Values)
	}
	return t
}

// Entry is one category row, used to build tables literally.
type Entry[T any] struct {
	Key    string
	Values []T
}

// E is shorthand for an Entry literal.
func E[T any](key string, values ...T) Entry[T] {
	return Entry[T]{Key: key, Values: values}
}

// Len returns the number of categories.
func (t Table[T]) Len() int {
	return len(t.keys)
}

// Keys returns the categories in order.
func (t Table[T]) Keys() []string {
	return slices.Clone(t.keys)
}

// Get returns the values for key.
func (t Table[T]) Get(key string) ([]T, bool) {
	values, ok := t.entries[key]
	return values, ok
}

// All iterates categories in order.
func (t Table[T]) All() iter.Seq2[string, []T] {
	return func(yield func(string, []T) bool) {
		for _, k := range t.keys {
			if !yield(k, t.entries[k]) {
				return
			}
		}
	}
}

// Set replaces the values for key, keeping its position if present.
func (t *Table[T]) Set(key string, values []T) {
	if t.entries == nil {
		t.entries = make(map[string][]T)
	}
	if _, ok := t.entries[key]; !ok {
		t.keys = append(t.keys, key)
	}
	t.entries[key] = slices.Clone(values)
}

// Append concatenates values onto key, creating it when absent.
func (t *Table[T]) Append(key string, values []T) {
	existing, ok := t.entries[key]
	if !ok {
		t.Set(key, values)
		return
	}
	merged := make([]T, 0, len(existing)+len(values))
	merged = append(merged, existing...)
	t.entries[key] = append(merged, values...)
}

// Clone returns a deep copy whose value slices do not alias t.
func (t Table[T]) Clone() Table[T] {
	var out Table[T]
	for k, v := range t.All() {
		out.Set(k, v)
	}
	return out
}

// =============================================================================
// Three-Way Merge
// =============================================================================

// Merge combines a base table with an override table and an additive table.
//
// Description:
//
//	Same-key entries of override replace base entries. Same-key entries of
//	additive are concatenated onto the result of the first step. Keys absent
//	from the earlier tables are appended in the order they appear.
//
// Example:
//
//	base     {model: [a]}
//	override {model: [b]}
//	additive {model: [c]}
//	result   {model: [b, c]}
func Merge[T any](base, override, additive Table[T]) Table[T] {
	out := base.Clone()
	for k, v := range override.All() {
		out.Set(k, v)
	}
	for k, v := range additive.All() {
		out.Append(k, v)
	}
	return out
}

// =============================================================================
// YAML
// =============================================================================

// UnmarshalYAML decodes a mapping keeping document order.
func (t *Table[T]) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: expected a mapping of category to list", node.Line)
	}
	var out Table[T]
	for i := 0; i+1 < len(node.Content); i += 2 {
		keyNode, valueNode := node.Content[i], node.Content[i+1]
		var values []T
		if err := valueNode.Decode(&values); err != nil {
			return fmt.Errorf("category %q: %w", keyNode.Value, err)
		}
		out.Set(keyNode.Value, values)
	}
	*t = out
	return nil
}

// MarshalYAML encodes the table as a mapping in category order.
func (t Table[T]) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for k, v := range t.All() {
		if v == nil {
			v = []T{}
		}
		var valueNode yaml.Node
		if err := valueNode.Encode(v); err != nil {
			return nil, fmt.Errorf("category %q: %w", k, err)
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&valueNode,
		)
	}
	return node, nil
}
