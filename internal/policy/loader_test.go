// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import "testing"

func TestParse_MinimalDocument(t *testing.T) {
	p, err := Parse([]byte(`
version: 1
defaults:
  mode: block
validators:
  - id: shell_safe
    type: string
    deny_substrings: [";", "&&", "|"]
sinks:
  - id: run_shell
    function: subprocess.run
    require: [shell_safe]
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Version != 1 {
		t.Fatalf("Version = %d, want 1", p.Version)
	}
	if p.Defaults.Mode != ModeBlock {
		t.Fatalf("Defaults.Mode = %q, want block", p.Defaults.Mode)
	}
	vd, ok := p.Validators["shell_safe"]
	if !ok {
		t.Fatalf("validator shell_safe not found")
	}
	sp, ok := vd.Params.(StringParams)
	if !ok {
		t.Fatalf("shell_safe params type = %T, want StringParams", vd.Params)
	}
	if len(sp.DenySubstrings) != 3 {
		t.Fatalf("DenySubstrings = %v, want 3 entries", sp.DenySubstrings)
	}
	sink := p.SinkForFunction("subprocess.run")
	if sink == nil {
		t.Fatalf("no sink registered for subprocess.run")
	}
	if len(sink.Require) != 1 || sink.Require[0] != "shell_safe" {
		t.Fatalf("sink.Require = %v", sink.Require)
	}
}

func TestParse_MissingDefaultsModeFallsBackToBlock(t *testing.T) {
	p, err := Parse([]byte(`
version: 1
validators: []
sinks: []
`))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Defaults.Mode != "" {
		t.Fatalf("Defaults.Mode = %q, want empty (resolved to block lazily)", p.Defaults.Mode)
	}
	sink := SinkDef{}
	if mode := p.EffectiveMode(&sink); mode != ModeBlock {
		t.Fatalf("EffectiveMode = %q, want block", mode)
	}
}

func TestParse_UnknownTopLevelKeysIgnored(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
some_future_field: {a: 1}
validators: []
sinks: []
`))
	if err != nil {
		t.Fatalf("Parse returned error for forward-compatible document: %v", err)
	}
}

func TestParse_ValidatorMissingIDIsLoadError(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
validators:
  - type: string
sinks: []
`))
	if err == nil {
		t.Fatalf("expected load error for validator missing id")
	}
}

func TestParse_ValidatorUnknownTypeIsLoadError(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
validators:
  - id: x
    type: regexp
sinks: []
`))
	if err == nil {
		t.Fatalf("expected load error for unknown validator type")
	}
}

func TestParse_JSONSchemaWithoutSchemaRefIsLoadError(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
validators:
  - id: body_shape
    type: json_schema
sinks: []
`))
	if err == nil {
		t.Fatalf("expected load error for json_schema validator missing schema_ref")
	}
}

func TestParse_UnknownValidatorAndSinkKeysIgnored(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
validators:
  - id: shell_safe
    type: string
    deny_substrings: [";"]
    future_field: true
sinks:
  - id: run_shell
    function: subprocess.run
    require: [shell_safe]
    future_sink_field: 42
`))
	if err != nil {
		t.Fatalf("Parse returned error for forward-compatible validator/sink keys: %v", err)
	}
}

func TestParse_InvalidOnViolationModeIsLoadError(t *testing.T) {
	_, err := Parse([]byte(`
version: 1
validators: []
sinks:
  - id: run_shell
    function: subprocess.run
    on_violation: {mode: "explode"}
`))
	if err == nil {
		t.Fatalf("expected load error for invalid on_violation mode")
	}
}
