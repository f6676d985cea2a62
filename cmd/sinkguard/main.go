// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command sinkguard is the operator-facing CLI for authoring and
// testing sink guard policies, and for hosting the demo HTTP front-end.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Exit codes, mirroring the teacher's cmd_policy_check.go convention.
const (
	exitSuccess = 0
	exitFinding = 1
	exitError   = 2
)

var rootCmd = &cobra.Command{
	Use:   "sinkguard",
	Short: "Policy-driven runtime sink guard",
	Long: `sinkguard intercepts dangerous operations (file writes, subprocess
execution, SQL execution, URL fetches, template rendering) and validates
their string arguments against a declarative YAML policy.`,
}

func main() {
	rootCmd.AddCommand(policyCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitError)
	}
}
