// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package store

import (
	"fmt"
	"time"
)

// Key prefixes for every collection. Index keys live under idx: so a
// collection scan never sees them.
const (
	eventKeyPrefix       = "event:"
	seriesKeyPrefix      = "series:"
	categoryKeyPrefix    = "category-doc:"
	proposalKeyPrefix    = "proposal:"
	interactionKeyPrefix = "interaction:"
	pinKeyPrefix         = "pin:"
	bundleStateKeyPrefix = "bundlestate:"

	eventStartIdxPrefix   = "idx:event:start:"
	seriesNextIdxPrefix   = "idx:series:next:"
	categoryHostIdxPrefix = "idx:category:host:"
)

func eventKey(id string) string { return eventKeyPrefix + id }

func eventStartIdxKey(start time.Time, id string) string {
	return eventStartIdxPrefix + tsKey(start) + ":" + id
}

func seriesKey(id string) string { return seriesKeyPrefix + id }

func seriesNextIdxKey(next time.Time, id string) string {
	return seriesNextIdxPrefix + tsKey(next) + ":" + id
}

func categoryKey(id string) string { return categoryKeyPrefix + id }

func categoryHostIdxKey(hostID, categoryID string) string {
	return categoryHostIdxPrefix + hostID + ":" + categoryID
}

func proposalKey(slug string) string { return proposalKeyPrefix + slug }

// interactionKey orders per-user interactions by timestamp so reverse
// prefix iteration yields newest-first.
func interactionKey(userID string, ts time.Time, id string) string {
	return fmt.Sprintf("%s%s:%s:%s", interactionKeyPrefix, userID, tsKey(ts), id)
}

func interactionUserPrefix(userID string) string {
	return interactionKeyPrefix + userID + ":"
}

func pinEventKey(userID, eventID string) string {
	return pinKeyPrefix + userID + ":entry:" + eventID
}

func pinEventPrefix(userID string) string {
	return pinKeyPrefix + userID + ":entry:"
}

func pinSeriesKey(userID, seriesID string) string {
	return pinKeyPrefix + userID + ":series:" + seriesID
}

func pinSeriesPrefix(userID string) string {
	return pinKeyPrefix + userID + ":series:"
}

func bundleStateKey(userID, categoryID string) string {
	return bundleStateKeyPrefix + userID + ":" + categoryID
}
