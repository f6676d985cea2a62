// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package binder implements the Request Binder: a Gin middleware that
// installs a fresh flow-stack on every request, mints a request id,
// and taints the decoded JSON body before handlers see it, mirroring
// original_source/src/sentinel/middleware.py's SentinelMiddleware and
// the teacher's context-key convention in
// services/orchestrator/middleware/auth.go.
package binder

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/aleutian-labs/sinkguard/internal/flow"
	"github.com/aleutian-labs/sinkguard/internal/taint"
)

// taintedJSONKey is the Gin context key handlers read the tainted
// request body from.
const taintedJSONKey = "tainted_json"

// defaultTags is the fixed tag set applied to every string leaf of an
// incoming JSON body, per spec.md §4.6.
var defaultTags = []string{"untrusted", "http"}

// GetTaintedJSON returns the tainted decoding of c's request body, or
// nil if the body was absent, not JSON, or failed to parse.
func GetTaintedJSON(c *gin.Context) any {
	v, ok := c.Get(taintedJSONKey)
	if !ok {
		return nil
	}
	return v
}

// Middleware installs a fresh flow-stack on every request and, for a
// JSON content type, decodes and taints the body. tags overrides the
// default {"untrusted","http"} tag set applied to tainted string
// leaves; omit to use the default.
//
// The binder never aborts the chain: a decode failure leaves the
// tainted body nil and the request proceeds, exactly as spec.md §4.6
// requires ("the binder never raises").
func Middleware(tags ...string) gin.HandlerFunc {
	if len(tags) == 0 {
		tags = defaultTags
	}

	return func(c *gin.Context) {
		flow.InstallGin(c)
		flow.SetRequestID(c.Request.Context(), uuid.NewString())

		if strings.HasPrefix(c.GetHeader("Content-Type"), "application/json") {
			// Tee the body so handlers can still bind it after decoding.
			var buf bytes.Buffer
			tainted := decodeAndTaint(io.TeeReader(c.Request.Body, &buf), tags)
			c.Request.Body = io.NopCloser(&buf)
			if tainted != nil {
				c.Set(taintedJSONKey, tainted)
				flow.AppendGin(c, "middleware:json_parsing")
			}
		}

		c.Next()
	}
}

func decodeAndTaint(body io.Reader, tags []string) any {
	raw, err := io.ReadAll(body)
	if err != nil || len(raw) == 0 {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil
	}

	return taint.Recursive(decoded, tags...)
}
