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

import "slices"

// cursor walks a slice that is edited while it is walked.
//
// Adjustment rules, which together guarantee that no element is skipped or
// visited twice:
//   - Remove deletes the current element and steps back one, so the next
//     call to Next lands on the element that followed it.
//   - InsertAfter puts an element right after the current one and steps onto
//     it, so the next call to Next lands on the element that originally
//     followed the current one. Inserted elements are never visited.
//   - Replace swaps the current element in place.
type cursor[T any] struct {
	list  *[]T
	index int
}

func newCursor[T any](list *[]T) *cursor[T] {
	return &cursor[T]{list: list, index: -1}
}

// Next advances and reports whether an element is available.
func (c *cursor[T]) Next() bool {
	c.index++
	return c.index < len(*c.list)
}

// Current returns the element under the cursor.
func (c *cursor[T]) Current() T {
	return (*c.list)[c.index]
}

// Remove deletes the current element and returns it.
func (c *cursor[T]) Remove() T {
	removed := (*c.list)[c.index]
	*c.list = slices.Delete(*c.list, c.index, c.index+1)
	c.index--
	return removed
}

// InsertAfter inserts v after the current element and steps over it.
func (c *cursor[T]) InsertAfter(v T) {
	c.index++
	*c.list = slices.Insert(*c.list, c.index, v)
}

// Replace swaps the current element for v.
func (c *cursor[T]) Replace(v T) {
	(*c.list)[c.index] = v
}
