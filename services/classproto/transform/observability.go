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
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// transformTracerName is the OTel tracer name for the rewrite.
const transformTracerName = "classproto.transform"

// Label values.
const (
	outcomeUpdated   = "updated"
	outcomeUnchanged = "unchanged"
	outcomeAnonymous = "anonymous"

	fieldActionMoved  = "moved"
	fieldActionGetter = "getter"
	fieldActionKept   = "kept"

	statementPrototype       = "prototype_assignment"
	statementConstructorName = "constructor_name"

	actionInserted = "inserted"
	actionMerged   = "merged"
	actionReplaced = "replaced"
)

// Package-level Prometheus metrics for the rewrite.
// Auto-registered via promauto so no explicit registry wiring is needed.
var (
	// classesTotal counts class declarations visited.
	//
	// Labels:
	//   - outcome: "updated", "unchanged", "anonymous"
	classesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classproto",
			Subsystem: "transform",
			Name:      "classes_total",
			Help:      "Class declarations visited by the rewrite.",
		},
		[]string{"outcome"},
	)

	// fieldsTotal counts fields the rewrite acted on.
	//
	// Labels:
	//   - action: "moved", "getter", "kept"
	fieldsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classproto",
			Subsystem: "transform",
			Name:      "fields_total",
			Help:      "Class fields moved, turned into getters, or kept by marker.",
		},
		[]string{"action"},
	)

	// statementsTotal counts top-level statements written.
	//
	// Labels:
	//   - kind: "prototype_assignment", "constructor_name"
	//   - action: "inserted", "merged", "replaced"
	statementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "classproto",
			Subsystem: "transform",
			Name:      "statements_total",
			Help:      "Top-level statements inserted, merged into, or replaced.",
		},
		[]string{"kind", "action"},
	)
)

// recordClassMetrics records what happened to one class.
func recordClassMetrics(outcome string, rel relocation) {
	classesTotal.WithLabelValues(outcome).Inc()
	if n := len(rel.Moved); n > 0 {
		fieldsTotal.WithLabelValues(fieldActionMoved).Add(float64(n))
	}
	if rel.Getters > 0 {
		fieldsTotal.WithLabelValues(fieldActionGetter).Add(float64(rel.Getters))
	}
	if rel.Kept > 0 {
		fieldsTotal.WithLabelValues(fieldActionKept).Add(float64(rel.Kept))
	}
}
