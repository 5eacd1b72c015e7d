// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package engine

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	tracer = otel.Tracer("gotbot.engine")
	meter  = otel.Meter("gotbot.engine")
)

// engineMetrics holds lazily initialized instruments.
type engineMetrics struct {
	once       sync.Once
	iterations metric.Int64Counter
	outcomes   metric.Int64Counter
}

// initMetrics lazily initializes metrics. Instrument creation failures are
// logged and the engine continues without that instrument (graceful
// degradation).
func (e *Engine) initMetrics() {
	e.metrics.once.Do(func() {
		var initErrors []string

		var err error
		e.metrics.iterations, err = meter.Int64Counter("engine_iterations_total",
			metric.WithDescription("Number of thought generator calls"),
		)
		if err != nil {
			initErrors = append(initErrors, "iterations: "+err.Error())
		}

		e.metrics.outcomes, err = meter.Int64Counter("engine_sessions_total",
			metric.WithDescription("Completed reasoning sessions by outcome"),
		)
		if err != nil {
			initErrors = append(initErrors, "outcomes: "+err.Error())
		}

		if len(initErrors) > 0 {
			e.logger.Warn("metric initialization incomplete",
				"errors", strings.Join(initErrors, "; "))
		}
	})
}

func (e *Engine) countIteration(ctx context.Context) {
	if e.metrics.iterations == nil {
		return
	}
	e.metrics.iterations.Add(ctx, 1)
}

func (e *Engine) countOutcome(ctx context.Context, state SessionState) {
	if e.metrics.outcomes == nil {
		return
	}
	e.metrics.outcomes.Add(ctx, 1,
		metric.WithAttributes(attribute.String("outcome", string(state))))
}
