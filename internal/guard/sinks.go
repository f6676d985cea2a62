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

// FQN constants name the fixed set of guarded operations from spec.md
// §4.5. They are carried over unchanged from the Python original so a
// policy document's sink.function field names the same operation set
// regardless of which language's guard loads it. Go has no
// corresponding subprocess.run/sqlite3.connect/jinja2 standard
// library, so each constant below except FQNURLLibOpen is backed by a
// purpose-built Guard method rather than the named Python callable
// itself; no Guard method enforces under FQNURLLibOpen.
const (
	FQNOpen               = "builtins.open"
	FQNSubprocessRun      = "subprocess.run"
	FQNOSSystem           = "os.system"
	FQNYAMLLoad           = "yaml.load"
	FQNYAMLSafeLoad       = "yaml.safe_load"
	FQNSQLiteExecute      = "sqlite3.Cursor.execute"
	FQNSQLiteExecuteMany  = "sqlite3.Cursor.executemany"
	FQNJinjaRender        = "jinja2.Template.render"
	FQNStringSubstitute   = "string.Template.substitute"
	FQNRequestsGet        = "requests.get"
	FQNRequestsPost       = "requests.post"
	FQNURLLibOpen         = "urllib.request.urlopen"
)

// SinkKind enumerates the kinds of operation the facade guards, in the
// tagged-variant shape spec.md §9 recommends over a bare hashmap keyed
// by string. It is a standalone enumeration with a String form: no
// Guard method returns or records a SinkKind.
type SinkKind int

const (
	KindOpen SinkKind = iota
	KindSubprocess
	KindSQLExec
	KindYAMLLoad
	KindYAMLSafeLoad
	KindTemplateRender
	KindTextTemplateExecute
	KindHTTPGet
	KindHTTPPost
)

func (k SinkKind) String() string {
	switch k {
	case KindOpen:
		return "open"
	case KindSubprocess:
		return "subprocess"
	case KindSQLExec:
		return "sql_exec"
	case KindYAMLLoad:
		return "yaml_load"
	case KindYAMLSafeLoad:
		return "yaml_safe_load"
	case KindTemplateRender:
		return "template_render"
	case KindTextTemplateExecute:
		return "text_template_execute"
	case KindHTTPGet:
		return "http_get"
	case KindHTTPPost:
		return "http_post"
	default:
		return "unknown"
	}
}
