// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package models

import "time"

// Content types an interaction may reference.
const (
	ContentTypeEvent          = "event"
	ContentTypeCategoryBundle = "event-category-bundle"
	ContentTypeFlashOffer     = "flash-offer"
	ContentTypePoll           = "poll"
	ContentTypeRequest        = "request"
	ContentTypePhoto          = "photo"
	ContentTypeAnnouncement   = "announcement"
)

// KnownContentTypes enumerates every accepted interaction content type.
var KnownContentTypes = map[string]struct{}{
	ContentTypeEvent:          {},
	ContentTypeSeries:         {},
	ContentTypeCategoryBundle: {},
	ContentTypeFlashOffer:     {},
	ContentTypePoll:           {},
	ContentTypeRequest:        {},
	ContentTypePhoto:          {},
	ContentTypeAnnouncement:   {},
}

// Interaction actions.
const (
	ActionViewed        = "viewed"
	ActionLiked         = "liked"
	ActionShared        = "shared"
	ActionBookmarked    = "bookmarked"
	ActionDismissed     = "dismissed"
	ActionNotInterested = "not-interested"
	ActionAttended      = "attended"
	ActionEngaged       = "engaged"
	ActionCommented     = "commented"
)

// ActionWeights are the per-action scalars the profile builder sums.
var ActionWeights = map[string]float64{
	ActionViewed:        0.1,
	ActionLiked:         3,
	ActionShared:        5,
	ActionBookmarked:    4,
	ActionDismissed:     -2,
	ActionNotInterested: -5,
	ActionAttended:      10,
	ActionEngaged:       4,
	ActionCommented:     4,
}

// PositiveActions are the actions whose content vectors feed the user
// embedding centroid.
var PositiveActions = map[string]struct{}{
	ActionLiked:      {},
	ActionBookmarked: {},
	ActionShared:     {},
	ActionAttended:   {},
	ActionEngaged:    {},
}

// InteractionContext captures where and when an interaction happened.
type InteractionContext struct {
	Position  int    `json:"position"`
	SessionID string `json:"sessionId,omitempty"`
	TimeOfDay string `json:"timeOfDay"`
	DayOfWeek string `json:"dayOfWeek"`
}

// UserInteraction is one recorded user action against a content item.
type UserInteraction struct {
	ID          string             `json:"id"`
	UserID      string             `json:"userId"`
	ContentID   string             `json:"contentId"`
	ContentType string             `json:"contentType"`
	Action      string             `json:"action"`
	DwellTime   float64            `json:"dwellTime,omitempty"`
	Timestamp   time.Time          `json:"timestamp"`
	Context     InteractionContext `json:"context"`
	ContentTags []string           `json:"contentTags,omitempty"`
	Metadata    map[string]any     `json:"metadata,omitempty"`
}

// BundleStateRef is the bundle acknowledgement carried in interaction
// metadata for event-category-bundle content.
type BundleStateRef struct {
	CategoryID string `json:"categoryId"`
	Version    int    `json:"version"`
}
