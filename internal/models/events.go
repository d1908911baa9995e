package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Event types
const (
	EventTypeGameCreated      = "GAME_CREATED"
	EventTypeGameUpdated      = "GAME_UPDATED"
	EventTypeGameDeleted      = "GAME_DELETED"
	EventTypeGenreCreated     = "GENRE_CREATED"
	EventTypeGenreUpdated     = "GENRE_UPDATED"
	EventTypeGenreDeleted     = "GENRE_DELETED"
	EventTypePlatformCreated  = "PLATFORM_CREATED"
	EventTypePlatformUpdated  = "PLATFORM_UPDATED"
	EventTypePlatformDeleted  = "PLATFORM_DELETED"
	EventTypePublisherCreated = "PUBLISHER_CREATED"
	EventTypePublisherUpdated = "PUBLISHER_UPDATED"
	EventTypePublisherDeleted = "PUBLISHER_DELETED"
	EventTypeOrderCreated     = "ORDER_CREATED"
)

// Entity names carried by catalog events
const (
	EntityGame      = "game"
	EntityGenre     = "genre"
	EntityPlatform  = "platform"
	EntityPublisher = "publisher"
	EntityOrder     = "order"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

func NewBaseEvent(eventType string) BaseEvent {
	return BaseEvent{
		EventID:   uuid.NewString(),
		EventType: eventType,
		Timestamp: time.Now().UTC(),
	}
}

// CatalogEvent is published after a catalog entity is written.
type CatalogEvent struct {
	BaseEvent
	Entity   string `json:"entity"`
	EntityID string `json:"entity_id"`
	Key      string `json:"key,omitempty"`
	Name     string `json:"name,omitempty"`
}

// OrderCreatedEvent is published when a basket order is created.
type OrderCreatedEvent struct {
	BaseEvent
	OrderID    string          `json:"order_id"`
	CustomerID string          `json:"customer_id,omitempty"`
	Total      decimal.Decimal `json:"total"`
	Items      []OrderItemData `json:"items"`
}

// OrderItemData represents item data in events
type OrderItemData struct {
	ProductID string          `json:"product_id"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
