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

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// docValidate is the shared struct-tag validator instance used to
// reject a malformed top-level document shape before the loader's own
// semantic checks run. Initialized once, following the teacher's
// chatValidate convention (services/orchestrator/datatypes/chat.go).
var docValidate *validator.Validate

func init() {
	docValidate = validator.New()
}

// wireDefaults is the raw shape of the "defaults" block.
type wireDefaults struct {
	Mode string `yaml:"mode" validate:"omitempty,oneof=block warn sanitize"`
}

// wireValidator is the raw shape of one "validators" entry. Unknown
// keys are silently ignored (yaml.v3 default behavior for structs
// without KnownFields); type-specific fields live alongside each
// other and are cherry-picked based on Type.
type wireValidator struct {
	ID   string `yaml:"id" validate:"required"`
	Type string `yaml:"type" validate:"required"`

	// string params
	MaxLen         *int     `yaml:"max_len"`
	MinLen         *int     `yaml:"min_len"`
	MatchRegex     string   `yaml:"match_regex"`
	AllowCharset   string   `yaml:"allow_charset"`
	DenyRegex      string   `yaml:"deny_regex"`
	DenySubstrings []string `yaml:"deny_substrings"`

	// path params
	AllowedRoots       []string `yaml:"allowed_roots"`
	DenySubdirectories bool     `yaml:"deny_subdirectories"`

	// json_schema params
	SchemaRef string `yaml:"schema_ref"`
}

// wireOnViolation is the raw shape of a sink's "on_violation" block.
type wireOnViolation struct {
	Mode    string `yaml:"mode" validate:"omitempty,oneof=block warn sanitize"`
	Message string `yaml:"message"`
}

// wireSink is the raw shape of one "sinks" entry.
type wireSink struct {
	ID               string            `yaml:"id"`
	Function         string            `yaml:"function"`
	Require          []string          `yaml:"require"`
	OnViolation      *wireOnViolation  `yaml:"on_violation"`
	ForbidFunctions  []string          `yaml:"forbid_functions"`
	ValidatorTargets map[string]string `yaml:"validator_targets"`
}

// wireDocument is the raw top-level policy document shape.
type wireDocument struct {
	Version    int             `yaml:"version"`
	Defaults   wireDefaults    `yaml:"defaults"`
	Validators []wireValidator `yaml:"validators"`
	Sinks      []wireSink      `yaml:"sinks" validate:"dive"`
}

// Load reads and parses a YAML policy document from path into an
// immutable Policy. It performs no schema-reference resolution; those
// are resolved lazily by the validator engine on first use.
//
// Load-time errors (spec.md §7): malformed YAML, a validator missing
// id or type, an unknown validator type, or a json_schema validator
// without schema_ref are all returned as wrapped errors and halt
// loading.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("policy: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a YAML policy document already in memory. Load is a
// thin wrapper around Parse for the common file-based case.
func Parse(data []byte) (*Policy, error) {
	var doc wireDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("policy: malformed yaml: %w", err)
	}
	if err := docValidate.Struct(doc); err != nil {
		return nil, fmt.Errorf("policy: invalid document shape: %w", err)
	}

	validators, err := parseValidators(doc.Validators)
	if err != nil {
		return nil, err
	}
	sinks, err := parseSinks(doc.Sinks)
	if err != nil {
		return nil, err
	}

	version := doc.Version
	if version == 0 {
		version = 1
	}

	// An absent defaults.mode stays empty; EffectiveMode resolves it to
	// ModeBlock.
	defaultMode := Mode("")
	if doc.Defaults.Mode != "" {
		defaultMode = ParseMode(doc.Defaults.Mode)
	}

	return &Policy{
		Version:    version,
		Defaults:   Defaults{Mode: defaultMode},
		Validators: validators,
		Sinks:      sinks,
	}, nil
}

func parseValidators(items []wireValidator) (map[string]ValidatorDef, error) {
	out := make(map[string]ValidatorDef, len(items))
	for _, it := range items {
		if it.ID == "" || it.Type == "" {
			return nil, fmt.Errorf("policy: validator missing id or type")
		}

		var params any
		switch ValidatorType(it.Type) {
		case ValidatorString:
			params = StringParams{
				MaxLen:         it.MaxLen,
				MinLen:         it.MinLen,
				MatchRegex:     it.MatchRegex,
				AllowCharset:   it.AllowCharset,
				DenyRegex:      it.DenyRegex,
				DenySubstrings: it.DenySubstrings,
			}
		case ValidatorPath:
			params = PathParams{
				AllowedRoots:       it.AllowedRoots,
				DenySubdirectories: it.DenySubdirectories,
			}
		case ValidatorJSONSchema:
			if it.SchemaRef == "" {
				return nil, fmt.Errorf("policy: validator %q: json_schema requires schema_ref", it.ID)
			}
			params = JSONSchemaParams{SchemaRef: it.SchemaRef}
		default:
			return nil, fmt.Errorf("policy: validator %q: unknown validator type %q", it.ID, it.Type)
		}

		out[it.ID] = ValidatorDef{ID: it.ID, Type: ValidatorType(it.Type), Params: params}
	}
	return out, nil
}

func parseSinks(items []wireSink) (map[string]SinkDef, error) {
	out := make(map[string]SinkDef, len(items))
	for _, it := range items {
		var ov *OnViolation
		if it.OnViolation != nil {
			mode := Mode("")
			if it.OnViolation.Mode != "" {
				mode = ParseMode(it.OnViolation.Mode)
			}
			ov = &OnViolation{Mode: mode, Message: it.OnViolation.Message}
		}

		var targets map[string]TargetKind
		if len(it.ValidatorTargets) > 0 {
			targets = make(map[string]TargetKind, len(it.ValidatorTargets))
			for vid, t := range it.ValidatorTargets {
				targets[vid] = TargetKind(t)
			}
		}

		out[it.ID] = SinkDef{
			ID:               it.ID,
			Function:         it.Function,
			Require:          it.Require,
			OnViolation:      ov,
			ForbidFunctions:  it.ForbidFunctions,
			ValidatorTargets: targets,
		}
	}
	return out, nil
}
