// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package taint

import (
	"reflect"
	"testing"
)

func TestConcat_UnionsTags(t *testing.T) {
	a := New("SELECT * FROM t WHERE id=", "untrusted", "http")
	b := New("1", "sql_param")

	got := a.Concat(b)

	want := []string{"http", "sql_param", "untrusted"}
	if !reflect.DeepEqual(got.Tags(), want) {
		t.Fatalf("Tags() = %v, want %v", got.Tags(), want)
	}
	if got.String() != "SELECT * FROM t WHERE id=1" {
		t.Fatalf("String() = %q", got.String())
	}
}

func TestConcat_PlainStringContributesNoTags(t *testing.T) {
	a := New("hello ", "untrusted")
	got := a.Concat("world")
	if !reflect.DeepEqual(got.Tags(), []string{"untrusted"}) {
		t.Fatalf("Tags() = %v", got.Tags())
	}
	if got.String() != "hello world" {
		t.Fatalf("String() = %q", got.String())
	}
}

func TestFormat_UnionsTemplateAndArgTags(t *testing.T) {
	tmpl := New("cmd: ", "untrusted")
	got := Format(tmpl, New("rm -rf", "dangerous"), "--force")

	want := []string{"dangerous", "untrusted"}
	if !reflect.DeepEqual(got.Tags(), want) {
		t.Fatalf("Tags() = %v, want %v", got.Tags(), want)
	}
}

func TestIsTainted(t *testing.T) {
	if IsTainted("plain") {
		t.Fatalf("plain string reported tainted")
	}
	if !IsTainted(New("x", "untrusted")) {
		t.Fatalf("tainted string reported not tainted")
	}
}

func TestRecursive_TaintsStringLeavesOnly(t *testing.T) {
	in := map[string]any{
		"command": "rm -rf /",
		"count":   3,
		"nested": []any{
			"arg1", map[string]any{"path": "/etc/passwd"},
		},
	}

	out := Recursive(in, "untrusted", "http").(map[string]any)

	cmd := out["command"].(String)
	if !reflect.DeepEqual(cmd.Tags(), []string{"http", "untrusted"}) {
		t.Fatalf("command tags = %v", cmd.Tags())
	}
	if out["count"] != 3 {
		t.Fatalf("count leaf mutated: %v", out["count"])
	}

	nested := out["nested"].([]any)
	arg1 := nested[0].(String)
	if arg1.String() != "arg1" {
		t.Fatalf("arg1 value = %q", arg1.String())
	}

	nestedMap := nested[1].(map[string]any)
	path := nestedMap["path"].(String)
	if !reflect.DeepEqual(path.Tags(), []string{"http", "untrusted"}) {
		t.Fatalf("path tags = %v", path.Tags())
	}
}

func TestRecursive_KeysNeverTainted(t *testing.T) {
	in := map[string]any{"user_supplied_key": "value"}
	out := Recursive(in, "untrusted").(map[string]any)
	for k := range out {
		if k != "user_supplied_key" {
			t.Fatalf("unexpected key %q", k)
		}
	}
}

func TestTaint_UnionsWithExistingTags(t *testing.T) {
	once := Taint("x", "a").(String)
	twice := Taint(once, "b").(String)
	if !reflect.DeepEqual(twice.Tags(), []string{"a", "b"}) {
		t.Fatalf("Tags() = %v", twice.Tags())
	}
}
