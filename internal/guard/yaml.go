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

	"gopkg.in/yaml.v3"

	"github.com/aleutian-labs/sinkguard/internal/flow"
	"github.com/aleutian-labs/sinkguard/internal/policy"
)

// LoadYAML is the yaml.load-equivalent sink. It is unconditionally
// blocked: the method exists only so a caller who reaches for the
// unsafe entry point is stopped, mirroring the Python original's
// choice to keep yaml.load present but forbidden rather than removing
// it outright.
func (g *Guard) LoadYAML(ctx context.Context, data []byte, out any) error {
	flow.Append(ctx, FQNYAMLLoad)
	g.logViolation("blocked", FQNYAMLLoad, "", ErrYAMLLoadForbidden, policy.ModeBlock, ctx, nil)
	blockedTotal.WithLabelValues(FQNYAMLLoad).Inc()
	return &PolicyViolation{Sink: FQNYAMLLoad, Message: ErrYAMLLoadForbidden}
}

// SafeUnmarshalYAML is the yaml.safe_load-equivalent sink: it decodes
// without any validator pass, matching spec.md §4.5's note that
// yaml.safe_load is "re-routed to safe loading with no validation."
func (g *Guard) SafeUnmarshalYAML(ctx context.Context, data []byte, out any) error {
	flow.Append(ctx, FQNYAMLSafeLoad)
	return yaml.Unmarshal(data, out)
}
