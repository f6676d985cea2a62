// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package demo

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"github.com/aleutian-labs/sinkguard/internal/flow"
	"github.com/aleutian-labs/sinkguard/internal/guard"
)

func policyErrorStatus(err error) int {
	var violation *guard.PolicyViolation
	if errors.As(err, &violation) {
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

// uploadRequest mirrors app.py's /upload body: a filename and
// base64-encoded content.
type uploadRequest struct {
	Filename string `json:"filename" binding:"required"`
	Content  string `json:"content" binding:"required"`
}

func (s *Server) handleUpload(c *gin.Context) {
	flow.AppendGin(c, "demo.handleUpload")

	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	content, err := base64.StdEncoding.DecodeString(req.Content)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content is not valid base64"})
		return
	}

	path := filepath.Join(s.uploadDir, req.Filename)
	f, err := s.guard.Open(c.Request.Context(), path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o640)
	if err != nil {
		c.JSON(policyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	if _, err := f.Write(content); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "path": path})
}

type execRequest struct {
	Command string `json:"command" binding:"required"`
}

func (s *Server) handleExec(c *gin.Context) {
	flow.AppendGin(c, "demo.handleExec")

	var req execRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	out, err := s.guard.RunShell(c.Request.Context(), "/bin/sh", req.Command)
	if err != nil {
		c.JSON(policyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "stdout": string(out)})
}

type queryRequest struct {
	Query string `json:"query" binding:"required"`
}

func (s *Server) handleQuery(c *gin.Context) {
	flow.AppendGin(c, "demo.handleQuery")

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	rows, err := s.guard.QueryContext(c.Request.Context(), s.db, req.Query)
	if err != nil {
		c.JSON(policyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer rows.Close()

	results, rowErr := rowsToMaps(rows)
	if rowErr != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": rowErr.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "results": results, "rowcount": len(results)})
}

func rowsToMaps(rows interface {
	Columns() ([]string, error)
	Next() bool
	Scan(...any) error
	Err() error
}) ([]map[string]any, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out []map[string]any
	for rows.Next() {
		values := make([]any, len(cols))
		pointers := make([]any, len(cols))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}
		row := make(map[string]any, len(cols))
		for i, col := range cols {
			row[col] = values[i]
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

type fetchRequest struct {
	URL string `json:"url" binding:"required"`
}

func (s *Server) handleFetch(c *gin.Context) {
	flow.AppendGin(c, "demo.handleFetch")

	var req fetchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	resp, err := s.guard.Get(c.Request.Context(), req.URL)
	if err != nil {
		c.JSON(policyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	c.JSON(http.StatusOK, gin.H{
		"status":         "success",
		"url":            req.URL,
		"status_code":    resp.StatusCode,
		"content_length": len(body),
	})
}

type renderRequest struct {
	Template string         `json:"template" binding:"required"`
	Context  map[string]any `json:"context"`
}

func (s *Server) handleRender(c *gin.Context) {
	flow.AppendGin(c, "demo.handleRender")

	var req renderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON"})
		return
	}

	tmpl, err := guard.NewTemplate("demo", req.Template)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template: " + err.Error()})
		return
	}

	rendered, err := s.guard.RenderTemplate(c.Request.Context(), tmpl, req.Context)
	if err != nil {
		c.JSON(policyErrorStatus(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "success", "rendered": rendered})
}
