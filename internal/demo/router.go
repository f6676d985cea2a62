// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package demo is a worked example HTTP front-end exercising five of
// internal/guard's sinks end to end (file write, shell command, SQL
// query, HTTP GET, template render), supplemented from
// original_source/fastapi_app_example/app.py — the Python demo app the
// guard's original test suite ships alongside the library. It is not a
// recommended production surface; it exists so a reader can see the
// guard catch each attack class over real HTTP requests.
package demo

import (
	"database/sql"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/aleutian-labs/sinkguard/internal/binder"
	"github.com/aleutian-labs/sinkguard/internal/guard"
)

// Server bundles the Gin engine with the guard and database it
// delegates sink calls to.
type Server struct {
	Engine    *gin.Engine
	guard     *guard.Guard
	db        *sql.DB
	uploadDir string
}

// NewServer wires the Request Binder and the five demo endpoints onto
// a fresh gin.Engine, each invoking exactly one internal/guard sink
// method, mirroring the endpoint list in
// original_source/fastapi_app_example/app.py's root listing.
func NewServer(g *guard.Guard, db *sql.DB, uploadDir string) (*Server, error) {
	if err := os.MkdirAll(uploadDir, 0o750); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(binder.Middleware())

	s := &Server{Engine: engine, guard: g, db: db, uploadDir: uploadDir}

	engine.GET("/", s.handleIndex)
	engine.POST("/upload", s.handleUpload)
	engine.POST("/exec", s.handleExec)
	engine.POST("/query", s.handleQuery)
	engine.POST("/fetch", s.handleFetch)
	engine.POST("/render", s.handleRender)

	return s, nil
}

func (s *Server) handleIndex(c *gin.Context) {
	c.JSON(200, gin.H{
		"message": "sinkguard demo API",
		"endpoints": []string{
			"/upload - file write (path traversal protection)",
			"/exec - shell command (shell injection protection)",
			"/query - SQL execute (SQL injection protection)",
			"/fetch - HTTP GET (SSRF protection)",
			"/render - template render (template injection protection)",
		},
	})
}
