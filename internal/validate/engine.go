// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package validate evaluates a named validator from a loaded policy
// against a value, producing an (ok, reason) pair. It never panics on
// malformed input or unreachable schema references — those collapse
// into a validator rejection, per spec.md §7.
package validate

import (
	"fmt"

	"github.com/aleutian-labs/sinkguard/internal/policy"
)

// Value evaluates validatorID from p against value and returns whether
// it passed, plus a human-readable reason (always "ok" on success).
//
// An unknown validator id is a rejection, not an error: spec.md §7
// requires this fail-closed behavior so a sink naming a validator that
// does not exist in the policy always blocks.
func Value(p *policy.Policy, validatorID string, value any) (bool, string) {
	vdef, ok := p.Validators[validatorID]
	if !ok {
		return false, fmt.Sprintf("unknown validator %s", validatorID)
	}

	switch vdef.Type {
	case policy.ValidatorString:
		params, ok := vdef.Params.(policy.StringParams)
		if !ok {
			return false, fmt.Sprintf("validator %s: malformed string params", validatorID)
		}
		return validateString(fmt.Sprint(value), params)

	case policy.ValidatorPath:
		params, ok := vdef.Params.(policy.PathParams)
		if !ok {
			return false, fmt.Sprintf("validator %s: malformed path params", validatorID)
		}
		return validatePath(fmt.Sprint(value), params)

	case policy.ValidatorJSONSchema:
		params, ok := vdef.Params.(policy.JSONSchemaParams)
		if !ok {
			return false, fmt.Sprintf("validator %s: malformed json_schema params", validatorID)
		}
		return validateJSONSchema(value, params)

	default:
		return false, fmt.Sprintf("unknown validator type %s", vdef.Type)
	}
}
