// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package sources

import "net/url"

// secretParams are query parameters that must never reach stored
// breadcrumbs.
var secretParams = map[string]struct{}{
	"key":          {},
	"token":        {},
	"api_key":      {},
	"apikey":       {},
	"access_token": {},
	"secret":       {},
}

// RedactURL replaces secret query parameter values with "REDACTED" and
// strips userinfo before the URL is persisted. Unparseable URLs come
// back empty rather than leaking.
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	u.User = nil

	q := u.Query()
	changed := false
	for param := range q {
		if _, secret := secretParams[param]; secret {
			q.Set(param, "REDACTED")
			changed = true
		}
	}
	if changed {
		u.RawQuery = q.Encode()
	}
	return u.String()
}
