// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

// Package interactions records user interactions and runs their
// post-commit side effects: pin toggles for bookmarks and last-seen
// bumps for category bundles. The batch write commits first; side
// effects fan out through an in-process watermill Pub/Sub afterwards,
// so a slow pin update never blocks the recording path.
package interactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/metrics"
	"github.com/tomtom215/eventus/internal/models"
	"github.com/tomtom215/eventus/internal/store"
	"github.com/tomtom215/eventus/internal/validation"
)

// RecordedTopic carries committed interactions to the fan-out consumer.
const RecordedTopic = "interactions.recorded"

// ErrInvalidBundleMetadata is returned when a bundle interaction lacks
// a well-formed metadata.bundleState. Surfaces as 400.
var ErrInvalidBundleMetadata = errors.New("metadata.bundleState must be provided for event-category-bundle interactions")

// Service records interactions and publishes their side effects.
type Service struct {
	store     *store.Store
	publisher message.Publisher
	location  *time.Location
}

// NewService builds the service.
func NewService(st *store.Store, publisher message.Publisher, loc *time.Location) *Service {
	return &Service{store: st, publisher: publisher, location: loc}
}

// interactionShape declares the validation rules for one record.
type interactionShape struct {
	UserID      string `validate:"required"`
	ContentID   string `validate:"required"`
	ContentType string `validate:"contenttype"`
	Action      string `validate:"action"`
	TimeOfDay   string `validate:"timeofday"`
	DayOfWeek   string `validate:"dayofweek"`
	Position    int    `validate:"min=0"`
}

// RecordInteractions validates the batch, writes it atomically and
// publishes each committed record for fan-out. Returns the assigned
// interaction ids in input order.
func (s *Service) RecordInteractions(ctx context.Context, batch []*models.UserInteraction) ([]string, error) {
	if len(batch) == 0 {
		return nil, fmt.Errorf("empty interaction batch")
	}
	if len(batch) > store.MaxInteractionBatch {
		return nil, fmt.Errorf("interaction batch of %d exceeds maximum %d", len(batch), store.MaxInteractionBatch)
	}

	now := time.Now().UTC()
	ids := make([]string, len(batch))
	for i, in := range batch {
		if err := s.validateOne(in); err != nil {
			return nil, err
		}
		if in.ID == "" {
			in.ID = uuid.New().String()
		}
		if in.Timestamp.IsZero() {
			in.Timestamp = now
		}
		ids[i] = in.ID
	}

	if err := s.store.AppendInteractions(ctx, batch); err != nil {
		return nil, err
	}

	for _, in := range batch {
		metrics.InteractionsRecorded.WithLabelValues(in.Action).Inc()
		if !needsSideEffects(in) {
			continue
		}
		data, err := json.Marshal(in)
		if err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("interaction", in.ID).Msg("Marshal for fan-out failed")
			continue
		}
		if err := s.publisher.Publish(RecordedTopic, message.NewMessage(in.ID, data)); err != nil {
			logging.Ctx(ctx).Error().Err(err).Str("interaction", in.ID).Msg("Fan-out publish failed")
		}
	}
	return ids, nil
}

// validateOne applies the declarative rules plus the bundle metadata
// requirement that cannot be expressed as a struct tag.
func (s *Service) validateOne(in *models.UserInteraction) error {
	shape := interactionShape{
		UserID:      in.UserID,
		ContentID:   in.ContentID,
		ContentType: in.ContentType,
		Action:      in.Action,
		TimeOfDay:   in.Context.TimeOfDay,
		DayOfWeek:   in.Context.DayOfWeek,
		Position:    in.Context.Position,
	}
	if err := validation.ValidateStruct(shape); err != nil {
		return err
	}

	if in.ContentType == models.ContentTypeCategoryBundle {
		if _, err := bundleStateFromMetadata(in.Metadata); err != nil {
			return err
		}
	}
	return nil
}

// needsSideEffects reports whether a record triggers fan-out work.
func needsSideEffects(in *models.UserInteraction) bool {
	if in.ContentType == models.ContentTypeCategoryBundle {
		return true
	}
	if in.Action != models.ActionBookmarked {
		return false
	}
	return in.ContentType == models.ContentTypeEvent || in.ContentType == models.ContentTypeSeries
}

// bundleStateFromMetadata extracts and checks metadata.bundleState.
func bundleStateFromMetadata(metadata map[string]any) (*models.BundleStateRef, error) {
	if metadata == nil {
		return nil, ErrInvalidBundleMetadata
	}
	raw, ok := metadata["bundleState"]
	if !ok {
		return nil, ErrInvalidBundleMetadata
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return nil, ErrInvalidBundleMetadata
	}
	var ref models.BundleStateRef
	if err := json.Unmarshal(data, &ref); err != nil {
		return nil, ErrInvalidBundleMetadata
	}
	if ref.CategoryID == "" || ref.Version < 1 {
		return nil, ErrInvalidBundleMetadata
	}
	return &ref, nil
}

// ProcessSideEffects applies one committed interaction's side effects.
// Called by the fan-out consumer; also usable synchronously in tests.
func (s *Service) ProcessSideEffects(ctx context.Context, in *models.UserInteraction) error {
	switch {
	case in.ContentType == models.ContentTypeCategoryBundle:
		ref, err := bundleStateFromMetadata(in.Metadata)
		if err != nil {
			return err
		}
		return s.store.MarkSeen(ctx, in.UserID, ref.CategoryID, ref.Version)

	case in.Action == models.ActionBookmarked:
		active := true
		if raw, ok := in.Metadata["active"]; ok {
			if b, isBool := raw.(bool); isBool {
				active = b
			}
		}
		return s.ApplyPinToggle(ctx, in.UserID, in.ContentID, in.ContentType, active)
	}
	return nil
}
