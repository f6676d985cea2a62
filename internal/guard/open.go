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
	"os"
	"path/filepath"
	"strings"
)

// writeLikeFlags is the set of os.OpenFile flags that correspond to
// Python's "w", "a", "x", "+" modes, the write-like modes spec.md
// §4.5's argument-extraction table scopes the open sink to.
const writeLikeFlags = os.O_WRONLY | os.O_RDWR | os.O_APPEND | os.O_CREATE | os.O_TRUNC | os.O_EXCL

// isBytecodeCachePath mirrors the Python original's bypass for
// interpreter-internal bytecode cache writes. Go has no equivalent
// artifact, but the check is kept for parity with the spec's
// enumerated edge case and so a policy ported from the Python system
// behaves identically if such paths are ever constructed by a caller.
func isBytecodeCachePath(path string) bool {
	return strings.Contains(path, "__pycache__") || strings.HasSuffix(path, ".pyc")
}

// Open guards builtins.open. Read-only opens (flag has none of the
// write-like bits set) bypass validation entirely, matching spec.md
// §4.5's "only on write-like modes" scoping.
func (g *Guard) Open(ctx context.Context, name string, flag int, perm os.FileMode) (*os.File, error) {
	if flag&writeLikeFlags == 0 || isBytecodeCachePath(name) {
		return os.OpenFile(name, flag, perm)
	}

	base := filepath.Base(name)
	if err := g.enforce(ctx, FQNOpen, []arg{{value: name, basename: base}}, map[string]any{
		"basename":  base,
		"full_path": name,
	}); err != nil {
		return nil, err
	}

	return os.OpenFile(name, flag, perm)
}
