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
	"fmt"
	"path/filepath"
	"strings"

	"github.com/aleutian-labs/sinkguard/internal/policy"
)

// canonicalize resolves p to an absolute, symlink-resolved form, the
// Go equivalent of Python's Path(p).resolve(). Unlike Python, a path
// that does not yet exist on disk cannot be symlink-resolved by
// filepath.EvalSymlinks; in that case we fall back to the absolute,
// lexically cleaned form so validation of not-yet-created files (a
// common case for builtins.open in write mode) still works.
func canonicalize(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved, nil
	}
	return filepath.Clean(abs), nil
}

// validatePath implements spec.md §4.2.2: a path is accepted iff it
// has one of the canonical allowed roots as an ancestor path-component
// boundary (never a bare string prefix), with an optional one-level-
// only restriction via DenySubdirectories.
func validatePath(value string, p policy.PathParams) (bool, string) {
	target, err := canonicalize(value)
	if err != nil {
		return false, fmt.Sprintf("path invalid: %v", err)
	}

	roots := make([]string, 0, len(p.AllowedRoots))
	for _, r := range p.AllowedRoots {
		canon, err := canonicalize(r)
		if err != nil {
			continue // malformed roots are silently skipped
		}
		roots = append(roots, canon)
	}
	if len(roots) == 0 {
		return false, "no allowed roots configured"
	}

	for _, root := range roots {
		if !underRoot(target, root) {
			continue
		}
		if p.DenySubdirectories && filepath.Dir(target) != root {
			return false, fmt.Sprintf("subdirectories disallowed under %s", root)
		}
		return true, "ok"
	}

	return false, fmt.Sprintf("path not under allowed roots: %v", p.AllowedRoots)
}

// underRoot reports whether target is root itself or a descendant of
// root, using path-component comparison (via filepath.Rel) rather than
// a naive strings.HasPrefix, so "/tmp/uploads-evil" is never treated
// as under "/tmp/uploads".
func underRoot(target, root string) bool {
	if target == root {
		return true
	}
	rel, err := filepath.Rel(root, target)
	if err != nil {
		return false
	}
	if rel == "." {
		return true
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
