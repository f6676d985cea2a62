// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package guard

import "fmt"

// PolicyViolation is the single error kind the guard ever originates.
// Every other error surfaced by a Guard method (a failed subprocess, a
// closed database, a malformed URL) passes through untouched, exactly
// as spec.md §6 describes: "a single error kind ... All other
// exceptions from underlying operations pass through untouched."
type PolicyViolation struct {
	Sink      string
	Validator string
	Message   string
}

func (e *PolicyViolation) Error() string {
	if e.Validator == "" {
		return fmt.Sprintf("sinkguard: %s: %s", e.Sink, e.Message)
	}
	return fmt.Sprintf("sinkguard: %s (validator %s): %s", e.Sink, e.Validator, e.Message)
}

// ErrYAMLLoadForbidden is the fixed message for the yaml.load-equivalent
// sink, which is unconditionally blocked rather than evaluated against
// any validator, mirroring the Python original's refusal to expose an
// unsafe YAML entry point at all.
const ErrYAMLLoadForbidden = "LoadYAML is forbidden; use SafeUnmarshalYAML"
