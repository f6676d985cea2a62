// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package flow implements the request-scoped flow tracker: an ordered
// list of interception-point labels recording which guard points
// tainted data has traversed.
//
// The Python original carries this state in a contextvars.ContextVar;
// the Go equivalent is a value installed on context.Context. A Gin
// variant (flow_gin.go) installs the same stack onto the request's
// context so gin handlers and the Sink Guard share one implementation
// of the collapse-consecutive-duplicates rule, mirroring how the
// teacher's SetAuthInfo/GetAuthInfo pattern in
// services/orchestrator/middleware/auth.go threads request state
// through context.Context rather than a separate store.
package flow

import "context"

type stackKey struct{}

// stack is the mutable backing store for one request's flow. It is
// never exposed directly; all access goes through Append/Get so the
// collapse-adjacent-duplicates invariant is enforced in one place.
type stack struct {
	labels    []string
	requestID string
}

// Install returns a new context carrying a fresh flow stack seeded
// with "http_request", per spec.md §3's FlowStack lifecycle.
func Install(ctx context.Context) context.Context {
	return context.WithValue(ctx, stackKey{}, &stack{labels: []string{"http_request"}})
}

// InstallEmpty returns a new context carrying a flow stack with no
// seed entry, for non-HTTP callers (e.g. the CLI) that want to choose
// their own first label.
func InstallEmpty(ctx context.Context) context.Context {
	return context.WithValue(ctx, stackKey{}, &stack{})
}

// Append records that tainted data reached the interception point
// named by label. If the stack's current tail already equals label,
// the append is suppressed (consecutive duplicates collapse). Calling
// Append against a context with no installed stack is a silent no-op,
// per spec.md §4.4.
func Append(ctx context.Context, label string) {
	s, ok := ctx.Value(stackKey{}).(*stack)
	if !ok || s == nil {
		return
	}
	if len(s.labels) > 0 && s.labels[len(s.labels)-1] == label {
		return
	}
	s.labels = append(s.labels, label)
}

// Get returns a copy of the current flow stack, or nil if no stack is
// installed on ctx.
func Get(ctx context.Context) []string {
	s, ok := ctx.Value(stackKey{}).(*stack)
	if !ok || s == nil {
		return nil
	}
	out := make([]string, len(s.labels))
	copy(out, s.labels)
	return out
}

// SetRequestID attaches an id (minted by the Request Binder) to the
// flow stack installed on ctx. A no-op if no stack is installed.
func SetRequestID(ctx context.Context, id string) {
	s, ok := ctx.Value(stackKey{}).(*stack)
	if !ok || s == nil {
		return
	}
	s.requestID = id
}

// RequestID returns the id attached by SetRequestID, or "" if none was
// set or no stack is installed on ctx.
func RequestID(ctx context.Context) string {
	s, ok := ctx.Value(stackKey{}).(*stack)
	if !ok || s == nil {
		return ""
	}
	return s.requestID
}
