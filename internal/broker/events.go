package broker

import (
	"context"
	"encoding/json"
	"fmt"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// EventWriter is the part of Producer the publisher needs.
type EventWriter interface {
	PublishEvent(ctx context.Context, key, eventType string, event interface{}) error
}

// EventPublisher handles publishing domain events
type EventPublisher struct {
	producer EventWriter
}

// NewEventPublisher creates a new event publisher
func NewEventPublisher(producer EventWriter) *EventPublisher {
	return &EventPublisher{producer: producer}
}

// PublishCatalogEvent publishes a catalog change keyed by entity and id
func (ep *EventPublisher) PublishCatalogEvent(ctx context.Context, event *models.CatalogEvent) error {
	key := fmt.Sprintf("%s-%s", event.Entity, event.EntityID)
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// PublishOrderCreated publishes OrderCreated event
func (ep *EventPublisher) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	key := fmt.Sprintf("%s-%s", models.EntityOrder, event.OrderID)
	return ep.producer.PublishEvent(ctx, key, event.EventType, event)
}

// EventHandler handles incoming events
type EventHandler struct {
	onCatalogEvent func(context.Context, *models.CatalogEvent) error
	onOrderCreated func(context.Context, *models.OrderCreatedEvent) error
	logger         *zap.Logger
}

// NewEventHandler creates a new event handler
func NewEventHandler() *EventHandler {
	return &EventHandler{logger: util.GetLogger()}
}

// OnCatalogEvent registers a handler for every catalog event type
func (eh *EventHandler) OnCatalogEvent(handler func(context.Context, *models.CatalogEvent) error) {
	eh.onCatalogEvent = handler
}

// OnOrderCreated registers a handler for OrderCreated events
func (eh *EventHandler) OnOrderCreated(handler func(context.Context, *models.OrderCreatedEvent) error) {
	eh.onOrderCreated = handler
}

// HandleMessage routes messages to appropriate handlers
func (eh *EventHandler) HandleMessage(ctx context.Context, msg kafka.Message) error {
	var baseEvent models.BaseEvent
	if err := json.Unmarshal(msg.Value, &baseEvent); err != nil {
		return fmt.Errorf("failed to unmarshal base event: %w", err)
	}

	eh.logger.Debug("Handling event",
		zap.String("event_type", baseEvent.EventType),
		zap.String("event_id", baseEvent.EventID))
	util.EventsConsumedTotal.WithLabelValues(baseEvent.EventType).Inc()

	switch baseEvent.EventType {
	case models.EventTypeGameCreated, models.EventTypeGameUpdated, models.EventTypeGameDeleted,
		models.EventTypeGenreCreated, models.EventTypeGenreUpdated, models.EventTypeGenreDeleted,
		models.EventTypePlatformCreated, models.EventTypePlatformUpdated, models.EventTypePlatformDeleted,
		models.EventTypePublisherCreated, models.EventTypePublisherUpdated, models.EventTypePublisherDeleted:
		if eh.onCatalogEvent != nil {
			var event models.CatalogEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal catalog event: %w", err)
			}
			return eh.onCatalogEvent(ctx, &event)
		}

	case models.EventTypeOrderCreated:
		if eh.onOrderCreated != nil {
			var event models.OrderCreatedEvent
			if err := json.Unmarshal(msg.Value, &event); err != nil {
				return fmt.Errorf("failed to unmarshal OrderCreated event: %w", err)
			}
			return eh.onOrderCreated(ctx, &event)
		}

	default:
		eh.logger.Debug("Unhandled event type", zap.String("event_type", baseEvent.EventType))
	}

	return nil
}
