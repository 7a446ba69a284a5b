// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package sources

import (
	"crypto/sha256"
	"encoding/hex"

	"github.com/tomtom215/eventus/internal/slug"
)

// DeriveHostContext resolves the organizer identity for a payload:
// the event's declared organizer first, then the calendar/feed label,
// then a stable slug of the source id. The seed never depends on the
// individual event, so every event an organizer posts on a source maps
// to the same host.
func DeriveHostContext(organizer, label, sourceID string) HostContext {
	seed := organizer
	name := organizer
	if seed == "" {
		seed = label
		name = label
	}
	if seed == "" {
		seed = sourceID
		name = sourceID
	}
	if s := slug.Slugify(seed); s != "" {
		seed = s
	}
	return HostContext{
		HostIDSeed: seed,
		HostName:   name,
		Organizer:  organizer,
	}
}

// HostID builds the collision-resistant host key from a seed and the
// source it was observed on. Raw human names never become keys.
func HostID(hc HostContext, sourceID string) string {
	sum := sha256.Sum256([]byte(sourceID + ":" + hc.HostIDSeed))
	return "host:" + hex.EncodeToString(sum[:])[:12]
}
