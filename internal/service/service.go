package service

import (
	"context"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// EventPublisher publishes domain events after successful writes.
type EventPublisher interface {
	PublishCatalogEvent(ctx context.Context, event *models.CatalogEvent) error
	PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error
}

// GamesCountCache caches the games count.
type GamesCountCache interface {
	GetGamesCount(ctx context.Context) (count int, ok bool, err error)
	SetGamesCount(ctx context.Context, count int, ttl time.Duration) error
}

// IdempotencyStore remembers responses of create requests by client key
// and serialises requests that share a key.
type IdempotencyStore interface {
	GetIdempotencyKey(ctx context.Context, key string, dest interface{}) (bool, error)
	SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	AcquireLock(ctx context.Context, key string, ttl time.Duration) (token string, ok bool, err error)
	ReleaseLock(ctx context.Context, key, token string) error
}

// idempotencyLockTTL bounds how long a crashed request can block its key.
const idempotencyLockTTL = 30 * time.Second

// CacheConfig holds the TTLs used by services.
type CacheConfig struct {
	GamesCountTTL  time.Duration
	IdempotencyTTL time.Duration
}

// publishCatalog sends a catalog event. Failures are logged and counted,
// never returned.
func publishCatalog(ctx context.Context, events EventPublisher, logger *zap.Logger, eventType, entity, id, key, name string) {
	if events == nil {
		return
	}

	event := &models.CatalogEvent{
		BaseEvent: models.NewBaseEvent(eventType),
		Entity:    entity,
		EntityID:  id,
		Key:       key,
		Name:      name,
	}
	if err := events.PublishCatalogEvent(ctx, event); err != nil {
		util.EventsPublishFailedTotal.WithLabelValues(eventType).Inc()
		logger.Error("Failed to publish catalog event",
			zap.String("event_type", eventType),
			zap.String("entity_id", id),
			zap.Error(err))
	}
}

// lookupIdempotent decodes a remembered response into dest. Cache errors
// count as a miss.
func lookupIdempotent(ctx context.Context, idem IdempotencyStore, logger *zap.Logger, scope, key string, dest interface{}) bool {
	if idem == nil || key == "" {
		return false
	}
	found, err := idem.GetIdempotencyKey(ctx, scope+":"+key, dest)
	if err != nil {
		logger.Warn("Idempotency lookup failed", zap.String("idempotency_key", key), zap.Error(err))
		return false
	}
	if found {
		logger.Info("Duplicate request detected",
			zap.String("scope", scope),
			zap.String("idempotency_key", key))
	}
	return found
}

// claimIdempotent locks scope:key for the rest of the request. A key held
// by another in-flight request yields ErrRequestInProgress. Lock errors
// other than contention are logged and the request proceeds unlocked.
func claimIdempotent(ctx context.Context, idem IdempotencyStore, logger *zap.Logger, scope, key string) (release func(), err error) {
	release = func() {}
	if idem == nil || key == "" {
		return release, nil
	}

	lockKey := scope + ":" + key
	token, ok, err := idem.AcquireLock(ctx, lockKey, idempotencyLockTTL)
	if err != nil {
		logger.Warn("Idempotency lock unavailable", zap.String("idempotency_key", key), zap.Error(err))
		return release, nil
	}
	if !ok {
		logger.Info("Concurrent duplicate request rejected",
			zap.String("scope", scope),
			zap.String("idempotency_key", key))
		return nil, ErrRequestInProgress
	}

	return func() {
		if err := idem.ReleaseLock(context.WithoutCancel(ctx), lockKey, token); err != nil {
			logger.Warn("Failed to release idempotency lock", zap.String("idempotency_key", key), zap.Error(err))
		}
	}, nil
}

func rememberIdempotent(ctx context.Context, idem IdempotencyStore, logger *zap.Logger, scope, key string, value interface{}, ttl time.Duration) {
	if idem == nil || key == "" {
		return
	}
	if err := idem.SetIdempotencyKey(ctx, scope+":"+key, value, ttl); err != nil {
		logger.Warn("Failed to store idempotency key", zap.String("idempotency_key", key), zap.Error(err))
	}
}

// nonEmpty returns nil for an empty string.
func nonEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
