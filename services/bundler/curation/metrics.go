// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package curation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// curationRequests counts Curate invocations with a non-empty
	// candidate set.
	curationRequests = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paws",
		Subsystem: "curation",
		Name:      "requests_total",
		Help:      "Total curation requests",
	})

	// curationFallbacks counts heuristic fallbacks taken when the
	// oracle is unavailable or its reply is unusable.
	curationFallbacks = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "paws",
		Subsystem: "curation",
		Name:      "fallbacks_total",
		Help:      "Total curation fallbacks to the heuristic selection",
	})
)
