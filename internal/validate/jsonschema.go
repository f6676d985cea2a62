// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package validate

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/sync/singleflight"

	"github.com/aleutian-labs/sinkguard/internal/policy"
)

// schemaCache holds compiled schemas keyed by SchemaRef so repeated
// validations against the same ref (the common case: one validator
// backs many calls) don't recompile on every sink check.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// schemaCompileGroup collapses concurrent first-time compiles of the
// same ref into one jsonschema.Compiler.Compile call, so a burst of
// requests hitting a cold schema doesn't each pay the parse+compile
// cost before the first one finishes populating schemaCache.
var schemaCompileGroup singleflight.Group

func compiledSchema(ref string) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(ref); ok {
		return cached.(*jsonschema.Schema), nil
	}

	result, err, _ := schemaCompileGroup.Do(ref, func() (any, error) {
		if cached, ok := schemaCache.Load(ref); ok {
			return cached.(*jsonschema.Schema), nil
		}
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		schema, err := compiler.Compile(ref)
		if err != nil {
			return nil, err
		}
		schemaCache.Store(ref, schema)
		return schema, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(*jsonschema.Schema), nil
}

// validateJSONSchema checks value against the Draft-7 schema named by
// p.SchemaRef (a file path or URI resolvable by the compiler). A schema
// that fails to load or compile is a validator rejection, not a panic,
// matching the fail-closed posture of spec.md §7.
func validateJSONSchema(value any, p policy.JSONSchemaParams) (bool, string) {
	schema, err := compiledSchema(p.SchemaRef)
	if err != nil {
		return false, fmt.Sprintf("schema %s unavailable: %v", p.SchemaRef, err)
	}

	// jsonschema validates decoded JSON values (map[string]any etc), not
	// Go structs, so a raw string gets a JSON round-trip first when it
	// looks like a JSON document; otherwise it's validated as a bare
	// JSON string scalar.
	instance, err := toJSONInstance(value)
	if err != nil {
		return false, fmt.Sprintf("value is not valid JSON: %v", err)
	}

	if err := schema.Validate(instance); err != nil {
		if verr, ok := err.(*jsonschema.ValidationError); ok {
			return false, firstLeafError(verr)
		}
		return false, err.Error()
	}
	return true, "ok"
}

func toJSONInstance(value any) (any, error) {
	s, isString := value.(string)
	if !isString {
		// Round-trip through JSON so arbitrary Go values (maps from
		// taint.Recursive, slices, structs) match the decoded shapes
		// the schema library expects.
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		var out any
		if err := json.Unmarshal(encoded, &out); err != nil {
			return nil, err
		}
		return out, nil
	}

	var out any
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		// Not a JSON document; validate as a bare string scalar.
		return s, nil
	}
	return out, nil
}

// firstLeafError picks the deepest, most specific validation failure
// out of the tree jsonschema builds, sorted by instance pointer so the
// reported reason is deterministic across runs.
func firstLeafError(verr *jsonschema.ValidationError) string {
	leaves := collectLeaves(verr)
	if len(leaves) == 0 {
		return verr.Error()
	}
	sort.Slice(leaves, func(i, j int) bool {
		return leaves[i].InstancePtr < leaves[j].InstancePtr
	})
	leaf := leaves[0]
	return fmt.Sprintf("%s: %s", leaf.InstancePtr, leaf.Message)
}

func collectLeaves(verr *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(verr.Causes) == 0 {
		return []*jsonschema.ValidationError{verr}
	}
	var out []*jsonschema.ValidationError
	for _, cause := range verr.Causes {
		out = append(out, collectLeaves(cause)...)
	}
	return out
}
