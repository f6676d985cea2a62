// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package taint implements the provenance model: a string-like value
// carrying origin tags that survive concatenation and formatting, plus
// a recursive tainting helper for structured data decoded from JSON.
//
// Go strings cannot be subclassed, so String rides on a wrapper
// struct rather than a string subtype (see SPEC_FULL.md §3.3).
// Consumers that need to branch on taint use IsTainted / Tags rather
// than type assertions against the concrete type, keeping call sites
// agnostic to the wrapper's internal shape.
package taint

import (
	"fmt"
	"sort"
)

// String is a value that behaves like a plain string for observation
// (String, Len) but additionally carries an immutable set of taint
// tags. Once tainted, a value has no "untaint" operation — the tag set
// only grows as it propagates through derivations.
type String struct {
	value string
	tags  map[string]struct{}
}

// New wraps value with the given tags.
func New(value string, tags ...string) String {
	return String{value: value, tags: tagSet(tags)}
}

func tagSet(tags []string) map[string]struct{} {
	if len(tags) == 0 {
		return nil
	}
	s := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		s[t] = struct{}{}
	}
	return s
}

// String returns the underlying string content.
func (t String) String() string { return t.value }

// Len returns the length of the underlying string in bytes, matching
// Go's native len(string) semantics.
func (t String) Len() int { return len(t.value) }

// Tags returns the tag set as a sorted, de-duplicated slice.
func (t String) Tags() []string {
	if len(t.tags) == 0 {
		return nil
	}
	out := make([]string, 0, len(t.tags))
	for tag := range t.tags {
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}

// HasTag reports whether tag is present in t's tag set.
func (t String) HasTag(tag string) bool {
	_, ok := t.tags[tag]
	return ok
}

// union returns the set union of two tag sets.
func union(a, b map[string]struct{}) map[string]struct{} {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(a)+len(b))
	for t := range a {
		out[t] = struct{}{}
	}
	for t := range b {
		out[t] = struct{}{}
	}
	return out
}

// Concat appends other to t, producing a String whose tag set is the
// union of both operands. A plain string operand contributes the
// empty tag set.
func (t String) Concat(other any) String {
	otherVal, otherTags := coerce(other)
	return String{value: t.value + otherVal, tags: union(t.tags, otherTags)}
}

// Format mimics template interpolation: it renders a Printf-free
// concatenation of t's content followed by each argument's string
// form, with the result's tags equal to the union of t's tags and the
// tags of every tainted argument. Plain arguments contribute nothing.
//
// This models spec.md §4.3's "formatting (template interpolation)"
// contract for languages, like Go, where string formatting is not a
// method one can override on a custom string type.
func Format(template String, args ...any) String {
	tags := template.tags
	value := template.value
	for _, a := range args {
		av, at := coerce(a)
		value += av
		tags = union(tags, at)
	}
	return String{value: value, tags: tags}
}

// coerce extracts the string content and tag set of a value that may
// or may not already be a tainted String.
func coerce(v any) (string, map[string]struct{}) {
	switch x := v.(type) {
	case String:
		return x.value, x.tags
	case string:
		return x, nil
	default:
		return fmt.Sprint(x), nil
	}
}

// IsTainted reports whether value is a tainted String.
func IsTainted(value any) bool {
	_, ok := value.(String)
	return ok
}

// Taint attaches tags to value. If value is already a String, the new
// tags are unioned into its existing tag set rather than replacing it.
// Non-string values pass through unchanged.
func Taint(value any, tags ...string) any {
	switch x := value.(type) {
	case string:
		return New(x, tags...)
	case String:
		return String{value: x.value, tags: union(x.tags, tagSet(tags))}
	default:
		return value
	}
}

// Recursive walks lists and maps (the shapes produced by decoding
// JSON into interface{}) and replaces every string leaf with a tainted
// String carrying tags. Non-string leaves are returned unchanged and
// map keys are never tainted, matching spec.md §4.3.
func Recursive(obj any, tags ...string) any {
	switch x := obj.(type) {
	case map[string]any:
		out := make(map[string]any, len(x))
		for k, v := range x {
			out[k] = Recursive(v, tags...)
		}
		return out
	case []any:
		out := make([]any, len(x))
		for i, v := range x {
			out[i] = Recursive(v, tags...)
		}
		return out
	case string:
		return New(x, tags...)
	case String:
		return String{value: x.value, tags: union(x.tags, tagSet(tags))}
	default:
		return obj
	}
}
