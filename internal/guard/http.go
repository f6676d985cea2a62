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
	"io"
	"net/http"
)

// Get guards requests.get. Only the URL string is validated, per
// spec.md §4.5. The policy is consulted under requests.get only; a sink
// declared for urllib.request.urlopen is not applied here.
func (g *Guard) Get(ctx context.Context, url string) (*http.Response, error) {
	if err := g.enforce(ctx, FQNRequestsGet, []arg{{value: url}}, nil); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return http.DefaultClient.Do(req)
}

// Post guards requests.post. Only the URL string is validated; the
// body is passed through untouched, matching spec.md §4.5's table
// ("the URL argument only").
func (g *Guard) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	if err := g.enforce(ctx, FQNRequestsPost, []arg{{value: url}}, nil); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return http.DefaultClient.Do(req)
}
