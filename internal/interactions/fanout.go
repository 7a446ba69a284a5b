// Eventus - Community Event Ingestion and Personalized Feed Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventus

package interactions

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/eventus/internal/logging"
	"github.com/tomtom215/eventus/internal/models"
)

// Fanout consumes committed interactions and applies their side
// effects. Failures ack anyway: side effects are best-effort
// denormalizations and the interaction record itself is already
// durable.
type Fanout struct {
	service    *Service
	subscriber message.Subscriber
}

// NewFanout builds the consumer.
func NewFanout(service *Service, subscriber message.Subscriber) *Fanout {
	return &Fanout{service: service, subscriber: subscriber}
}

// Serve processes side effects until ctx is cancelled. Implements
// suture.Service.
func (f *Fanout) Serve(ctx context.Context) error {
	messages, err := f.subscriber.Subscribe(ctx, RecordedTopic)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			f.handle(ctx, msg)
		}
	}
}

func (f *Fanout) handle(ctx context.Context, msg *message.Message) {
	defer msg.Ack()

	var in models.UserInteraction
	if err := json.Unmarshal(msg.Payload, &in); err != nil {
		logging.Error().Err(err).Str("message", msg.UUID).Msg("Undecodable fan-out payload, dropping")
		return
	}
	if err := f.service.ProcessSideEffects(ctx, &in); err != nil {
		logging.Error().Err(err).
			Str("interaction", in.ID).
			Str("contentId", in.ContentID).
			Msg("Interaction side effect failed")
	}
}

// String names the service in the supervisor tree.
func (f *Fanout) String() string { return "interaction-fanout" }
