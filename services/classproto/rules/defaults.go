// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package rules

import (
	_ "embed"
	"fmt"
	"log/slog"
	"sync"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// Embedded Default Prototype Properties
// =============================================================================

//go:embed default_prototype_properties.yaml
var defaultPrototypePropertiesYAML []byte

var (
	cachedPrototypeProperties Table[string]
	prototypePropertiesOnce   sync.Once
	prototypePropertiesErr    error
)

// LoadDefaultPrototypeProperties parses the built-in category table once and
// returns a copy of it.
//
// # Description
//
//	The table lists, per category (model, collection, view, behavior, router,
//	controller, application), the field names that are shared through the
//	prototype by default.
//
// # Outputs
//
//   - Table[string]: A copy the caller may modify.
//   - error: Non-nil if the embedded YAML is malformed.
//
// # Thread Safety
//
// Safe for concurrent use (uses sync.Once internally).
func LoadDefaultPrototypeProperties() (Table[string], error) {
	prototypePropertiesOnce.Do(func() {
		var table Table[string]
		if err := yaml.Unmarshal(defaultPrototypePropertiesYAML, &table); err != nil {
			prototypePropertiesErr = fmt.Errorf("parsing default_prototype_properties.yaml: %w", err)
			return
		}
		cachedPrototypeProperties = table
		slog.Debug("default prototype properties loaded",
			slog.Int("category_count", table.Len()),
		)
	})
	if prototypePropertiesErr != nil {
		return Table[string]{}, prototypePropertiesErr
	}
	return cachedPrototypeProperties.Clone(), nil
}

// DefaultPrototypeProperties is LoadDefaultPrototypeProperties for callers
// that cannot handle an error. The embedded table is covered by tests, so a
// failure here is a build defect and panics.
func DefaultPrototypeProperties() Table[string] {
	table, err := LoadDefaultPrototypeProperties()
	if err != nil {
		panic(err)
	}
	return table
}
