package worker

import (
	"context"

	"gamestore/internal/broker"
	"gamestore/internal/models"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// GamesCountInvalidator drops the cached games count.
type GamesCountInvalidator interface {
	InvalidateGamesCount(ctx context.Context) error
}

// CacheWorker keeps cached catalog aggregates in step with catalog events
type CacheWorker struct {
	consumer     *broker.Consumer
	eventHandler *broker.EventHandler
	cache        GamesCountInvalidator
	logger       *zap.Logger
}

// NewCacheWorker creates a new cache worker
func NewCacheWorker(consumer *broker.Consumer, cache GamesCountInvalidator) *CacheWorker {
	w := &CacheWorker{
		consumer:     consumer,
		eventHandler: broker.NewEventHandler(),
		cache:        cache,
		logger:       util.GetLogger(),
	}
	w.eventHandler.OnCatalogEvent(w.handleCatalogEvent)
	return w
}

// Start consumes until ctx is cancelled
func (w *CacheWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting cache worker")
	return w.consumer.StartConsuming(ctx, w.eventHandler.HandleMessage)
}

// Stop stops the worker
func (w *CacheWorker) Stop() error {
	w.logger.Info("Stopping cache worker")
	return w.consumer.Close()
}

func (w *CacheWorker) handleCatalogEvent(ctx context.Context, event *models.CatalogEvent) error {
	switch event.EventType {
	case models.EventTypeGameCreated, models.EventTypeGameDeleted:
		if err := w.cache.InvalidateGamesCount(ctx); err != nil {
			w.logger.Warn("Failed to invalidate games count",
				zap.String("event_id", event.EventID),
				zap.Error(err))
			return err
		}
		w.logger.Debug("Invalidated games count",
			zap.String("event_type", event.EventType),
			zap.String("game_id", event.EntityID))
	}
	return nil
}
