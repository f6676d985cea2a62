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
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/aleutian-labs/sinkguard/internal/policy"
)

// validateString applies the fixed check order from spec.md §4.2.1.
// The first failing check determines the reported reason; all length
// comparisons operate on code points (runes) of the NFC-normalized
// string, matching Python's len() over a normalized str.
func validateString(value string, p policy.StringParams) (bool, string) {
	s := norm.NFC.String(value)
	runeLen := len([]rune(s))

	if p.MaxLen != nil && runeLen > *p.MaxLen {
		return false, fmt.Sprintf("length>%d", *p.MaxLen)
	}
	if p.MinLen != nil && runeLen < *p.MinLen {
		return false, fmt.Sprintf("length<%d", *p.MinLen)
	}
	if p.DenyRegex != "" {
		re, err := regexp.Compile(p.DenyRegex)
		if err != nil || re.MatchString(s) {
			return false, "matches forbidden pattern"
		}
	}
	for _, sub := range p.DenySubstrings {
		if strings.Contains(s, sub) {
			return false, fmt.Sprintf("contains forbidden substring %q", sub)
		}
	}
	if p.AllowCharset != "" {
		re, err := regexp.Compile("^[" + p.AllowCharset + "]+$")
		if err != nil || !re.MatchString(s) {
			return false, "contains disallowed characters"
		}
	}
	if p.MatchRegex != "" {
		re, err := regexp.Compile("^(?:" + p.MatchRegex + ")$")
		if err != nil || !re.MatchString(s) {
			return false, "regex mismatch"
		}
	}
	return true, "ok"
}
