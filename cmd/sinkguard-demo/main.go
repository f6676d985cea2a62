// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sinkguard-demo hosts the guarded HTTP front-end directly,
// without the cobra command tree in cmd/sinkguard. It is the minimal
// way to reproduce original_source/fastapi_app_example/app.py's
// behavior: point it at a policy file and an address, nothing else.
package main

import (
	"context"
	"log"
	"os"

	"github.com/aleutian-labs/sinkguard/internal/demo"
	"github.com/aleutian-labs/sinkguard/internal/guard"
	"github.com/aleutian-labs/sinkguard/internal/policy"
	"github.com/aleutian-labs/sinkguard/pkg/logging"
	"github.com/aleutian-labs/sinkguard/pkg/telemetry"
)

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	policyPath := getEnv("SINKGUARD_POLICY", "configs/policy.yaml")
	addr := getEnv("SINKGUARD_ADDR", ":8080")
	uploadDir := getEnv("SINKGUARD_UPLOAD_DIR", "./uploads")

	p, err := policy.Load(policyPath)
	if err != nil {
		log.Fatalf("policy load error: %v", err)
	}

	shutdownTracing, err := telemetry.Init(context.Background(), "sinkguard-demo", os.Stderr)
	if err != nil {
		log.Fatalf("tracing setup error: %v", err)
	}
	defer shutdownTracing(context.Background())

	logger := logging.New(logging.Config{Service: "sinkguard-demo", JSON: true})
	g := guard.NewGuard(p, logger)

	db, err := demo.OpenDemoDB()
	if err != nil {
		log.Fatalf("demo database error: %v", err)
	}
	defer db.Close()

	server, err := demo.NewServer(g, db, uploadDir)
	if err != nil {
		log.Fatalf("server setup error: %v", err)
	}

	logger.Info("sinkguard-demo listening", "addr", addr, "policy", policyPath)
	if err := server.Engine.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
