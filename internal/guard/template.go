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
	"bytes"
	"context"
	"fmt"
	"html/template"
	texttemplate "text/template"
)

// Template pairs a compiled html/template.Template with the source it
// was parsed from. The Python original captures the template source at
// Environment.from_string time and stashes it on the template object
// so the render sink can validate it later; Go's html/template throws
// the source away once parsed, so Template keeps it alongside instead.
type Template struct {
	Source string
	parsed *template.Template
}

// NewTemplate parses source as the jinja2.Template.render-equivalent
// sink's template and stashes the source for later validation.
func NewTemplate(name, source string) (*Template, error) {
	parsed, err := template.New(name).Parse(source)
	if err != nil {
		return nil, err
	}
	return &Template{Source: source, parsed: parsed}, nil
}

// RenderTemplate guards jinja2.Template.render. The template source
// plus every string, int, or float value in data is validated before
// rendering, matching spec.md §4.5's extraction rule.
func (g *Guard) RenderTemplate(ctx context.Context, tmpl *Template, data map[string]any) (string, error) {
	extracted := []arg{{value: tmpl.Source}}
	extracted = append(extracted, scalarArgs(data)...)

	if err := g.enforce(ctx, FQNJinjaRender, extracted, nil); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.parsed.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// TextTemplate is the string.Template.substitute-equivalent: a plain,
// non-escaping text/template.Template with its source retained the
// same way Template retains its html/template source.
type TextTemplate struct {
	Source string
	parsed *texttemplate.Template
}

// NewTextTemplate parses source as a string.Template.substitute-
// equivalent template.
func NewTextTemplate(name, source string) (*TextTemplate, error) {
	parsed, err := texttemplate.New(name).Parse(source)
	if err != nil {
		return nil, err
	}
	return &TextTemplate{Source: source, parsed: parsed}, nil
}

// Substitute guards string.Template.substitute: the template's source
// string plus all substitution values, stringified.
func (g *Guard) Substitute(ctx context.Context, tmpl *TextTemplate, data map[string]any) (string, error) {
	extracted := []arg{{value: tmpl.Source}}
	for _, v := range data {
		extracted = append(extracted, arg{value: fmt.Sprint(v)})
	}

	if err := g.enforce(ctx, FQNStringSubstitute, extracted, nil); err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.parsed.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// scalarArgs extracts the string/int/float top-level values of data,
// stringifying numerics, and leaves nested maps/slices untouched —
// spec.md §4.5 scopes jinja2 extraction to scalar values in the
// top-level mapping, not a recursive walk.
func scalarArgs(data map[string]any) []arg {
	out := make([]arg, 0, len(data))
	for _, v := range data {
		switch val := v.(type) {
		case string:
			out = append(out, arg{value: val})
		case int, int32, int64, float32, float64:
			out = append(out, arg{value: fmt.Sprint(val)})
		}
	}
	return out
}
