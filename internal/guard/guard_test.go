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

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleutian-labs/sinkguard/internal/flow"
	"github.com/aleutian-labs/sinkguard/internal/policy"
	"github.com/aleutian-labs/sinkguard/pkg/logging"
)

func testGuard(p *policy.Policy) *Guard {
	return NewGuard(p, logging.New(logging.Config{Quiet: true}))
}

// TestRun_ShellInjectionBlocked is spec scenario 1.
func TestRun_ShellInjectionBlocked(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"shell_safe": {
				ID:   "shell_safe",
				Type: policy.ValidatorString,
				Params: policy.StringParams{
					DenySubstrings: []string{";", "&&", "|"},
				},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"run": {ID: "run", Function: FQNOSSystem, Require: []string{"shell_safe"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.RunShell(ctx, "/bin/sh", "echo HACK; rm -rf /")
	require.Error(t, err)

	var violation *PolicyViolation
	require.ErrorAs(t, err, &violation)
	assert.Equal(t, FQNOSSystem, violation.Sink)
}

// TestRun_SafeInputsPass is spec scenario 5.
func TestRun_SafeInputsPass(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"shell_safe": {
				ID:     "shell_safe",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{";", "&&", "|"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"run": {ID: "run", Function: FQNSubprocessRun, Require: []string{"shell_safe"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	out, err := g.Run(ctx, "echo", "hello")
	require.NoError(t, err)
	assert.Contains(t, string(out), "hello")
}

// TestOpen_PathTraversalBlocked is spec scenario 2.
func TestOpen_PathTraversalBlocked(t *testing.T) {
	root := t.TempDir()
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"safe_filename": {
				ID:   "safe_filename",
				Type: policy.ValidatorString,
				Params: policy.StringParams{
					DenySubstrings: []string{"../", "..\\", "/"},
				},
			},
			"path_in_uploads": {
				ID:   "path_in_uploads",
				Type: policy.ValidatorPath,
				Params: policy.PathParams{
					AllowedRoots:       []string{root},
					DenySubdirectories: true,
				},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"open": {
				ID:       "open",
				Function: FQNOpen,
				Require:  []string{"safe_filename", "path_in_uploads"},
				ValidatorTargets: map[string]policy.TargetKind{
					"safe_filename": policy.TargetBasename,
				},
			},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.Open(ctx, root+"/../etc/passwd", os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	require.Error(t, err)
}

// TestOpen_ReadOnlyBypassesGuard covers the write-like mode scoping
// rule: a plain read open never touches the validator pipeline.
func TestOpen_ReadOnlyBypassesGuard(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"safe_filename": {
				ID:     "safe_filename",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{"/"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"open": {ID: "open", Function: FQNOpen, Require: []string{"safe_filename"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.Open(ctx, "/does/not/exist/but/never/validated", os.O_RDONLY, 0)
	require.Error(t, err) // fails at the OS level, not as a PolicyViolation
	var violation *PolicyViolation
	assert.False(t, errors.As(err, &violation))
}

// TestExecContext_SQLInjectionBlocked is spec scenario 3.
func TestExecContext_SQLInjectionBlocked(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"sql_safe": {
				ID:     "sql_safe",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{";", "--", "/*"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"execute": {ID: "execute", Function: FQNSQLiteExecute, Require: []string{"sql_safe"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.ExecContext(ctx, nil, "SELECT * FROM users; DROP TABLE users; --")
	require.Error(t, err)
}

// TestGet_SSRFBlocked is spec scenario 4.
func TestGet_SSRFBlocked(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"url_safe": {
				ID:     "url_safe",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenyRegex: `^(file:|https?://(localhost|127\.|10\.|192\.168\.))`},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"get": {ID: "get", Function: FQNRequestsGet, Require: []string{"url_safe"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.Get(ctx, "http://127.0.0.1:22")
	require.Error(t, err)
	var violation *PolicyViolation
	require.ErrorAs(t, err, &violation)
}

// TestEnforce_WarnModeLogsButProceeds is spec scenario 6.
func TestEnforce_WarnModeLogsButProceeds(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"shell_safe": {
				ID:     "shell_safe",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{";"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"run": {
				ID:          "run",
				Function:    FQNSubprocessRun,
				Require:     []string{"shell_safe"},
				OnViolation: &policy.OnViolation{Mode: policy.ModeWarn},
			},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	out, err := g.Run(ctx, "echo", "danger;zone")
	require.NoError(t, err)
	assert.Contains(t, string(out), "danger")
}

// TestEnforce_FlowStackRecordsSinkTraversal is spec scenario 7's
// non-HTTP analog: flow entries accumulate in declaration order and
// end with the sink name.
func TestEnforce_FlowStackRecordsSinkTraversal(t *testing.T) {
	p := &policy.Policy{Sinks: map[string]policy.SinkDef{
		"run": {ID: "run", Function: FQNSubprocessRun},
	}}
	g := testGuard(p)
	ctx := flow.Install(context.Background())
	flow.Append(ctx, "handlers.HandleExec")

	_, err := g.Run(ctx, "echo", "hi")
	require.NoError(t, err)

	got := flow.Get(ctx)
	require.NotEmpty(t, got)
	assert.Equal(t, "http_request", got[0])
	assert.Equal(t, FQNSubprocessRun, got[len(got)-1])
}

// TestEnforce_UnknownSinkProceedsUnvalidated covers step 2 of the
// enforcement algorithm: a sink with no matching SinkDef proceeds.
func TestEnforce_UnknownSinkProceedsUnvalidated(t *testing.T) {
	p := &policy.Policy{Sinks: map[string]policy.SinkDef{}}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	out, err := g.Run(ctx, "echo", "anything goes")
	require.NoError(t, err)
	assert.Contains(t, string(out), "anything")
}

// TestEnforce_ForbiddenFunctionBlocksRegardlessOfValidators covers
// step 3 of the enforcement algorithm.
func TestEnforce_ForbiddenFunctionBlocksRegardlessOfValidators(t *testing.T) {
	p := &policy.Policy{Sinks: map[string]policy.SinkDef{
		"run": {
			ID:              "run",
			Function:        FQNSubprocessRun,
			ForbidFunctions: []string{FQNSubprocessRun},
		},
	}}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	_, err := g.Run(ctx, "echo", "hello")
	require.Error(t, err)
}

// TestNewGuard_IsIdempotentToConstructRepeatedly covers the
// installation-idempotence invariant: constructing the facade twice
// over the same policy behaves identically to constructing it once.
func TestNewGuard_IsIdempotentToConstructRepeatedly(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"shell_safe": {ID: "shell_safe", Type: policy.ValidatorString, Params: policy.StringParams{DenySubstrings: []string{";"}}},
		},
		Sinks: map[string]policy.SinkDef{
			"run": {ID: "run", Function: FQNOSSystem, Require: []string{"shell_safe"}},
		},
	}

	g1 := testGuard(p)
	g2 := testGuard(p)

	ctx := flow.Install(context.Background())
	_, err1 := g1.RunShell(ctx, "/bin/sh", "a;b")
	_, err2 := g2.RunShell(ctx, "/bin/sh", "a;b")

	require.Error(t, err1)
	require.Error(t, err2)
}

func TestLoadYAML_UnconditionallyBlocked(t *testing.T) {
	g := testGuard(&policy.Policy{})
	ctx := flow.Install(context.Background())

	var out any
	err := g.LoadYAML(ctx, []byte("a: 1"), &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestSafeUnmarshalYAML_NoValidation(t *testing.T) {
	g := testGuard(&policy.Policy{})
	ctx := flow.Install(context.Background())

	var out map[string]any
	err := g.SafeUnmarshalYAML(ctx, []byte("command: 'rm -rf /'"), &out)
	require.NoError(t, err)
	assert.Equal(t, "rm -rf /", out["command"])
}

func TestRenderTemplate_ValidatesSourceAndValues(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"no_script_tags": {
				ID:     "no_script_tags",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{"<script"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"render": {ID: "render", Function: FQNJinjaRender, Require: []string{"no_script_tags"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	tmpl, err := NewTemplate("greeting", "hello {{.Name}}")
	require.NoError(t, err)

	_, err = g.RenderTemplate(ctx, tmpl, map[string]any{"Name": "<script>alert(1)</script>"})
	require.Error(t, err)

	out, err := g.RenderTemplate(ctx, tmpl, map[string]any{"Name": "world"})
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestSubstitute_ValidatesTemplateAndValues(t *testing.T) {
	p := &policy.Policy{
		Validators: map[string]policy.ValidatorDef{
			"sql_safe": {
				ID:     "sql_safe",
				Type:   policy.ValidatorString,
				Params: policy.StringParams{DenySubstrings: []string{";"}},
			},
		},
		Sinks: map[string]policy.SinkDef{
			"substitute": {ID: "substitute", Function: FQNStringSubstitute, Require: []string{"sql_safe"}},
		},
	}
	g := testGuard(p)
	ctx := flow.Install(context.Background())

	tmpl, err := NewTextTemplate("where", "status = {{.Status}}")
	require.NoError(t, err)

	_, err = g.Substitute(ctx, tmpl, map[string]any{"Status": "'shipped'; DROP TABLE orders"})
	require.Error(t, err)
}

func TestExtractBytes_ValidUTF8RoundTrips(t *testing.T) {
	assert.Equal(t, "hello", extractBytes([]byte("hello")))
}

func TestExtractBytes_MalformedSequenceDegradesGracefully(t *testing.T) {
	malformed := []byte{0xff, 0xfe, 0x00}
	got := extractBytes(malformed)
	assert.NotEmpty(t, got)
}
