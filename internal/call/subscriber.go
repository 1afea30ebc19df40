package call

import (
	"context"
	"encoding/json"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/events"

	"github.com/menyraclub/menyra/pkg"
)

// EventSubscriber bridges the call events topic into the in-process feed.
type EventSubscriber struct {
	logger     apt.Logger
	subscriber events.Subscriber
	feed       *Feed
}

func NewEventSubscriber(subscriber events.Subscriber, feed *Feed, logger apt.Logger) *EventSubscriber {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	return &EventSubscriber{
		logger:     logger,
		subscriber: subscriber,
		feed:       feed,
	}
}

func (s *EventSubscriber) Start(ctx context.Context) error {
	err := s.subscriber.Subscribe(ctx, pkg.CallEventsTopic, s.handleEvent)
	if err != nil {
		s.logger.Error("cannot subscribe to call events", "error", err)
		return err
	}

	s.logger.Info("subscribed to call events", "topic", pkg.CallEventsTopic)
	return nil
}

func (s *EventSubscriber) handleEvent(ctx context.Context, msg []byte) error {
	var evt pkg.CallEvent
	if err := json.Unmarshal(msg, &evt); err != nil {
		s.logger.Error("cannot unmarshal call event", "error", err)
		return err
	}

	s.logger.Debug("call event received",
		"event_type", evt.EventType,
		"restaurant_id", evt.RestaurantID,
		"table_id", evt.TableID)

	s.feed.Broadcast(evt)
	return nil
}
