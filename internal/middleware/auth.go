// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/logging"
)

// APIKeyHeader is the header clients authenticate with.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware requiring an exact X-API-Key match.
// Mismatch or absence yields 403 with the standard error envelope.
func APIKeyAuth(key string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			presented := r.Header.Get(APIKeyHeader)
			if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) != 1 {
				logging.Ctx(r.Context()).Warn().
					Str("path", r.URL.Path).
					Msg("Request rejected: bad API key")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusForbidden)
				//nolint:errcheck // nothing to do about a failed error write
				json.NewEncoder(w).Encode(map[string]string{
					"error":   "Forbidden",
					"message": "missing or invalid API key",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
