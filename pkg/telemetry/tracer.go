// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package telemetry registers the OpenTelemetry TracerProvider that
// internal/guard's spans are exported through. Without a registered
// provider, otel.Tracer returns the API's no-op implementation and
// every span call in the guard's enforcement path is a silent no-op.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Init registers a TracerProvider that batches spans to an
// stdouttrace exporter writing newline-delimited JSON to w, tagged
// with serviceName. It returns a shutdown func that flushes and stops
// the provider; callers should defer it.
//
// This mirrors the teacher's NewOTelDiagnosticsTracer
// (cmd/aleutian/internal/diagnostics/tracer.go) — build a resource,
// build a provider over an exporter, call otel.SetTracerProvider —
// substituting stdouttrace for the OTLP/gRPC exporter so the demo and
// CLI don't need a collector running to produce trace output.
func Init(ctx context.Context, serviceName string, w *os.File) (shutdown func(context.Context) error, err error) {
	exporter, err := stdouttrace.New(
		stdouttrace.WithWriter(w),
		stdouttrace.WithoutTimestamps(),
	)
	if err != nil {
		return nil, err
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(provider)

	return provider.Shutdown, nil
}
