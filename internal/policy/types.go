// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policy holds the in-memory representation of a sink guard
// policy document: validators, sinks, and the default violation mode.
//
// A Policy is built once by Load and is immutable for the remainder of
// the process lifetime; every field is safe to read concurrently
// without synchronization.
package policy

import "fmt"

// Mode is the policy's decision on a failed validation.
type Mode string

const (
	// ModeBlock raises a violation and prevents the guarded call.
	ModeBlock Mode = "block"

	// ModeWarn logs the violation and lets the call proceed.
	ModeWarn Mode = "warn"

	// ModeSanitize is reserved. No sanitization transform is defined;
	// current behavior is identical to ModeWarn.
	ModeSanitize Mode = "sanitize"
)

// ParseMode converts a string into a Mode, falling back to ModeBlock
// for any value that is not one of the three recognized modes.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeBlock, ModeWarn, ModeSanitize:
		return Mode(s)
	default:
		return ModeBlock
	}
}

// TargetKind selects which representation of a path-like argument a
// validator receives: the full path as passed to the sink, or just the
// basename.
//
// The Python original this system is grounded on dispatches on the
// validator-id string literal "safe_filename"; SPEC_FULL.md's Open
// Question resolution replaces that with this explicit per-sink field.
type TargetKind string

const (
	TargetFullPath TargetKind = "fullpath"
	TargetBasename TargetKind = "basename"
)

// StringParams configures the string validator variant.
type StringParams struct {
	MaxLen         *int
	MinLen         *int
	MatchRegex     string
	AllowCharset   string
	DenyRegex      string
	DenySubstrings []string
}

// PathParams configures the path validator variant.
type PathParams struct {
	AllowedRoots       []string
	DenySubdirectories bool
}

// JSONSchemaParams configures the json-schema validator variant.
type JSONSchemaParams struct {
	SchemaRef string
}

// ValidatorType names one of the three validator variants.
type ValidatorType string

const (
	ValidatorString     ValidatorType = "string"
	ValidatorPath       ValidatorType = "path"
	ValidatorJSONSchema ValidatorType = "json_schema"
)

// ValidatorDef is a named, typed validator definition. Params holds one
// of StringParams, PathParams, or JSONSchemaParams depending on Type.
type ValidatorDef struct {
	ID     string
	Type   ValidatorType
	Params any
}

// OnViolation overrides the policy's default mode and message for one
// sink.
type OnViolation struct {
	Mode    Mode
	Message string
}

// SinkDef describes a single guarded operation: the validators that
// must pass for each extracted argument string, an optional violation
// override, and an optional hard-deny list of fully-qualified function
// names that are always blocked regardless of validator outcome.
type SinkDef struct {
	ID              string
	Function        string
	Require         []string
	OnViolation     *OnViolation
	ForbidFunctions []string

	// ValidatorTargets maps a validator id in Require to the argument
	// representation it should see. Entries absent from this map
	// default to TargetFullPath.
	ValidatorTargets map[string]TargetKind
}

// TargetFor returns the TargetKind configured for validatorID on this
// sink, defaulting to TargetFullPath.
func (s *SinkDef) TargetFor(validatorID string) TargetKind {
	if s.ValidatorTargets == nil {
		return TargetFullPath
	}
	if t, ok := s.ValidatorTargets[validatorID]; ok {
		return t
	}
	return TargetFullPath
}

// Defaults holds the policy-wide default violation mode.
type Defaults struct {
	Mode Mode
}

// Policy is the fully parsed, immutable policy document.
type Policy struct {
	Version    int
	Defaults   Defaults
	Validators map[string]ValidatorDef
	Sinks      map[string]SinkDef
}

// SinkForFunction returns the SinkDef whose Function matches fqn, or
// nil if no sink is registered for it. Sinks are few in practice, so a
// direct linear scan (mirroring the Python original's
// get_sink_for_function) is preferred over building an index.
func (p *Policy) SinkForFunction(fqn string) *SinkDef {
	for id := range p.Sinks {
		s := p.Sinks[id]
		if s.Function == fqn {
			return &s
		}
	}
	return nil
}

// EffectiveMode resolves the violation mode that applies when sink s
// fails a validator: the sink's own override if present, else the
// policy-wide default, else ModeBlock.
func (p *Policy) EffectiveMode(s *SinkDef) Mode {
	if s.OnViolation != nil && s.OnViolation.Mode != "" {
		return ParseMode(string(s.OnViolation.Mode))
	}
	if p.Defaults.Mode != "" {
		return ParseMode(string(p.Defaults.Mode))
	}
	return ModeBlock
}

// EffectiveMessage resolves the violation message for sink s failing
// validator vid with reason.
func (p *Policy) EffectiveMessage(s *SinkDef, vid, reason string) string {
	if s.OnViolation != nil && s.OnViolation.Message != "" {
		return s.OnViolation.Message
	}
	return fmt.Sprintf("violation %s: %s", vid, reason)
}
