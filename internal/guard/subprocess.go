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
	"os/exec"
	"strings"
	"unicode/utf8"
)

// extractBytes decodes b as UTF-8. Well-formed input round-trips
// exactly; each run of malformed bytes is replaced by the replacement
// character U+FFFD rather than failing the sink call outright, so the
// original bytes are not recoverable from the result.
func extractBytes(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), "�")
}

// Run guards subprocess.run. All of name and args are validated; Go's
// os/exec has no single-string shell form, so the argv list already is
// the "flattened" representation the Python original builds by
// flattening one level of list/tuple arguments.
func (g *Guard) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	extracted := make([]arg, 0, len(args)+1)
	extracted = append(extracted, arg{value: name})
	for _, a := range args {
		extracted = append(extracted, arg{value: a})
	}

	if err := g.enforce(ctx, FQNSubprocessRun, extracted, nil); err != nil {
		return nil, err
	}

	return exec.CommandContext(ctx, name, args...).Output()
}

// RunShell guards os.system, whose Go analog is invoking the value
// through the platform shell. The single command string is the only
// extracted argument.
func (g *Guard) RunShell(ctx context.Context, shell string, command string) ([]byte, error) {
	if err := g.enforce(ctx, FQNOSSystem, []arg{{value: command}}, nil); err != nil {
		return nil, err
	}

	return exec.CommandContext(ctx, shell, "-c", command).Output()
}

// RunBytes is Run's counterpart for callers holding []byte arguments
// (e.g. argv assembled from a binary protocol), decoded per
// extractBytes before validation.
func (g *Guard) RunBytes(ctx context.Context, name string, args ...[]byte) ([]byte, error) {
	decoded := make([]string, len(args))
	for i, a := range args {
		decoded[i] = extractBytes(a)
	}
	return g.Run(ctx, name, decoded...)
}
