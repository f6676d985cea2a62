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
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aleutian-labs/sinkguard/internal/policy"
	"github.com/aleutian-labs/sinkguard/internal/validate"
)

var policyCmd = &cobra.Command{
	Use:   "policy",
	Short: "Inspect and test sink guard policy documents",
}

var policyLintCmd = &cobra.Command{
	Use:   "lint <policy.yaml>",
	Short: "Load a policy document and report load-time errors",
	Args:  cobra.ExactArgs(1),
	Run:   runPolicyLint,
}

var policyCheckCmd = &cobra.Command{
	Use:   "check <policy.yaml> <sink-id> <value>",
	Short: "Run a sink's required validators against one ad-hoc value",
	Args:  cobra.ExactArgs(3),
	Run:   runPolicyCheck,
}

func init() {
	policyCmd.AddCommand(policyLintCmd)
	policyCmd.AddCommand(policyCheckCmd)
}

func runPolicyLint(cmd *cobra.Command, args []string) {
	p, err := policy.Load(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy load error: %v\n", err)
		os.Exit(exitError)
	}

	fmt.Printf("%s: version=%d validators=%d sinks=%d\n", colorize(ansiGreen, "policy OK"), p.Version, len(p.Validators), len(p.Sinks))
	os.Exit(exitSuccess)
}

func runPolicyCheck(cmd *cobra.Command, args []string) {
	policyPath, sinkID, value := args[0], args[1], args[2]

	p, err := policy.Load(policyPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "policy load error: %v\n", err)
		os.Exit(exitError)
	}

	sink, ok := p.Sinks[sinkID]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown sink id: %s\n", sinkID)
		os.Exit(exitError)
	}

	for _, vid := range sink.Require {
		ok, reason := validate.Value(p, vid, value)
		if !ok {
			fmt.Printf("%s: validator %s: %s\n", colorize(ansiRed, "REJECT"), vid, reason)
			os.Exit(exitFinding)
		}
	}

	fmt.Println(colorize(ansiGreen, "OK") + ": value passes all required validators")
	os.Exit(exitSuccess)
}
