// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package guard is the Sink Guard: the explicit facade a caller uses
// in place of the raw filesystem, subprocess, database, template, and
// HTTP operations it wraps.
//
// Go has no mutable module-level bindings to monkey-patch, so there is
// no "install" step that rewrites a global function table. Instead
// NewGuard produces an independent facade bound to one *policy.Policy;
// constructing it any number of times is safe and never composes
// wrappers, which satisfies the installation-idempotence invariant by
// construction rather than by a guard against double-wrapping.
package guard

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/aleutian-labs/sinkguard/internal/flow"
	"github.com/aleutian-labs/sinkguard/internal/policy"
	"github.com/aleutian-labs/sinkguard/internal/validate"
	"github.com/aleutian-labs/sinkguard/pkg/logging"
)

var (
	violationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sinkguard_violations_total",
		Help: "Total validator failures observed at a sink, by sink and effective mode",
	}, []string{"sink", "mode"})

	blockedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sinkguard_blocked_total",
		Help: "Total sink invocations that raised a PolicyViolation",
	}, []string{"sink"})

	enforceLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sinkguard_enforce_latency_seconds",
		Help:    "Latency of the sink enforcement path, excluding the guarded operation itself",
		Buckets: []float64{0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
	})
)

var guardTracer = otel.Tracer("sinkguard.guard")

// Guard evaluates sink invocations against one loaded policy. It is
// safe for concurrent use: the policy is read-only after load, and
// each enforcement call only touches request-scoped flow state.
type Guard struct {
	policy *policy.Policy
	logger *logging.Logger
}

// NewGuard builds a facade bound to p. A nil logger falls back to
// logging.Default(), matching the teacher's convention elsewhere of
// tolerating a nil *Logger at construction time.
func NewGuard(p *policy.Policy, logger *logging.Logger) *Guard {
	if logger == nil {
		logger = logging.Default()
	}
	return &Guard{policy: p, logger: logger}
}

// arg is one extracted string candidate for validation, tagged with
// the validator target it should be checked under when the sink
// declares a per-validator target override (spec.md §9 Open Questions,
// resolved via policy.SinkDef.ValidatorTargets).
type arg struct {
	value    string
	basename string // populated only when a basename form differs from value
}

// enforce runs spec.md §4.5's algorithm for one sink invocation. extra
// is attached to the log record verbatim (e.g. {"basename": ..,
// "full_path": ..} for the open sink).
func (g *Guard) enforce(ctx context.Context, fqn string, extracted []arg, extra map[string]any) error {
	start := time.Now()
	ctx, span := guardTracer.Start(ctx, "sinkguard.enforce", trace.WithAttributes(
		attribute.String("sinkguard.sink", fqn),
	))
	defer span.End()
	defer func() {
		enforceLatency.Observe(time.Since(start).Seconds())
	}()

	flow.Append(ctx, fqn)

	sink := g.policy.SinkForFunction(fqn)
	if sink == nil {
		return nil
	}

	for _, forbidden := range sink.ForbidFunctions {
		if forbidden == fqn {
			msg := fmt.Sprintf("function %s is forbidden", fqn)
			if sink.OnViolation != nil && sink.OnViolation.Message != "" {
				msg = sink.OnViolation.Message
			}
			g.logViolation("blocked", fqn, "", msg, policy.ModeBlock, ctx, extra)
			blockedTotal.WithLabelValues(fqn).Inc()
			span.SetStatus(codes.Error, "blocked: forbidden function")
			return &PolicyViolation{Sink: fqn, Message: msg}
		}
	}

	for _, vid := range sink.Require {
		for _, a := range extracted {
			value := a.value
			if sink.TargetFor(vid) == policy.TargetBasename && a.basename != "" {
				value = a.basename
			}

			ok, reason := validate.Value(g.policy, vid, value)
			if ok {
				continue
			}

			mode := g.policy.EffectiveMode(sink)
			msg := g.policy.EffectiveMessage(sink, vid, reason)
			violationsTotal.WithLabelValues(fqn, string(mode)).Inc()
			g.logViolation("violation", fqn, vid, msg, mode, ctx, extra)

			switch mode {
			case policy.ModeBlock:
				blockedTotal.WithLabelValues(fqn).Inc()
				span.SetStatus(codes.Error, "blocked: validator failure")
				return &PolicyViolation{Sink: fqn, Validator: vid, Message: msg}
			case policy.ModeWarn, policy.ModeSanitize:
				// Sanitize has no transform (spec.md §9); behaves as warn.
				// The first failing (validator, argument) pair still wins
				// per spec.md §5's ordering guarantee, so short-circuit
				// this sink's remaining checks even though we don't block.
				return nil
			}
		}
	}

	return nil
}

// logViolation emits a structured record per spec.md §4.5, enriched
// with a per-violation id and, when the call originated through the
// Request Binder, the request id it minted (spec.md §4.6).
func (g *Guard) logViolation(event, sink, validator, msg string, mode policy.Mode, ctx context.Context, extra map[string]any) {
	args := []any{
		"event", event,
		"ts", float64(time.Now().UnixNano()) / 1e9,
		"violation_id", uuid.NewString(),
		"sink", sink,
		"msg", msg,
		"mode", string(mode),
		"taint_flow", flow.Get(ctx),
	}
	if reqID := flow.RequestID(ctx); reqID != "" {
		args = append(args, "request_id", reqID)
	}
	if validator != "" {
		args = append(args, "validator", validator)
	}
	for k, v := range extra {
		args = append(args, k, v)
	}

	if event == "blocked" || mode == policy.ModeBlock {
		g.logger.Error(fmt.Sprintf("sink %s: %s", sink, msg), args...)
	} else {
		g.logger.Warn(fmt.Sprintf("sink %s: %s", sink, msg), args...)
	}
}
