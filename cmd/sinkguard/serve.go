// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleutian-labs/sinkguard/internal/demo"
	"github.com/aleutian-labs/sinkguard/internal/guard"
	"github.com/aleutian-labs/sinkguard/internal/policy"
	"github.com/aleutian-labs/sinkguard/pkg/logging"
	"github.com/aleutian-labs/sinkguard/pkg/telemetry"
)

var (
	servePolicyPath string
	serveAddr       string
	serveUploadDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host the demo HTTP front-end, guarded by a policy file",
	Run:   runServe,
}

func init() {
	serveCmd.Flags().StringVar(&servePolicyPath, "policy", "configs/policy.yaml", "path to the policy YAML document")
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "address to listen on")
	serveCmd.Flags().StringVar(&serveUploadDir, "upload-dir", "./uploads", "directory backing the /upload endpoint")
}

func runServe(cmd *cobra.Command, args []string) {
	p, err := policy.Load(servePolicyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy load error: %v\n", err)
		os.Exit(exitError)
	}

	shutdownTracing, err := telemetry.Init(context.Background(), "sinkguard-serve", os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "tracing setup error: %v\n", err)
		os.Exit(exitError)
	}
	defer shutdownTracing(context.Background())

	logger := logging.New(logging.Config{Service: "sinkguard-serve"})
	g := guard.NewGuard(p, logger)

	db, err := demo.OpenDemoDB()
	if err != nil {
		fmt.Fprintf(os.Stderr, "demo database error: %v\n", err)
		os.Exit(exitError)
	}
	defer db.Close()

	server, err := demo.NewServer(g, db, serveUploadDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "server setup error: %v\n", err)
		os.Exit(exitError)
	}

	logger.Info("sinkguard demo listening", "addr", serveAddr, "policy", servePolicyPath)
	if err := server.Engine.Run(serveAddr); err != nil {
		fmt.Fprintf(os.Stderr, "server error: %v\n", err)
		os.Exit(exitError)
	}
}
