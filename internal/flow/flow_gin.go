// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package flow

import "github.com/gin-gonic/gin"

// InstallGin seeds c's request context with a fresh flow stack, so
// downstream handlers and the Sink Guard (which only knows about
// context.Context) observe the same stack the Request Binder started.
func InstallGin(c *gin.Context) {
	c.Request = c.Request.WithContext(Install(c.Request.Context()))
}

// AppendGin records label on c's flow stack, collapsing a consecutive
// duplicate. A no-op if InstallGin was never called for this request.
func AppendGin(c *gin.Context, label string) {
	Append(c.Request.Context(), label)
}

// GetGin returns a copy of c's flow stack, or nil if none is installed.
func GetGin(c *gin.Context) []string {
	return Get(c.Request.Context())
}
