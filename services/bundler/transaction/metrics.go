// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package transaction

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// appliesTotal counts Apply calls by terminal outcome. Outcomes are
	// "committed", "rolled_back", and "rejected" (no checkpoint taken).
	appliesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "paws",
		Subsystem: "transaction",
		Name:      "applies_total",
		Help:      "Total bundle apply attempts by outcome",
	}, []string{"outcome"})

	// applyDuration observes end-to-end Apply latency.
	applyDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "paws",
		Subsystem: "transaction",
		Name:      "apply_duration_seconds",
		Help:      "Bundle apply latency",
		Buckets:   prometheus.DefBuckets,
	})

	// restoresTotal counts checkpoint restores, including those taken
	// after a failed commit.
	restoresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paws",
		Subsystem: "transaction",
		Name:      "restores_total",
		Help:      "Total checkpoint restores",
	})
)
