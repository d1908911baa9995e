package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"gamestore/internal/models"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCache struct {
	invalidations int
	err           error
}

func (f *fakeCache) InvalidateGamesCount(ctx context.Context) error {
	f.invalidations++
	return f.err
}

func catalogMessage(t *testing.T, eventType, entity string) kafka.Message {
	t.Helper()
	value, err := json.Marshal(&models.CatalogEvent{
		BaseEvent: models.NewBaseEvent(eventType),
		Entity:    entity,
		EntityID:  "id-1",
	})
	require.NoError(t, err)
	return kafka.Message{Value: value}
}

func TestCacheWorkerInvalidatesOnGameCreateAndDelete(t *testing.T) {
	cache := &fakeCache{}
	w := NewCacheWorker(nil, cache)
	ctx := context.Background()

	require.NoError(t, w.eventHandler.HandleMessage(ctx, catalogMessage(t, models.EventTypeGameCreated, models.EntityGame)))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, catalogMessage(t, models.EventTypeGameDeleted, models.EntityGame)))
	assert.Equal(t, 2, cache.invalidations)
}

func TestCacheWorkerIgnoresOtherEvents(t *testing.T) {
	cache := &fakeCache{}
	w := NewCacheWorker(nil, cache)
	ctx := context.Background()

	require.NoError(t, w.eventHandler.HandleMessage(ctx, catalogMessage(t, models.EventTypeGameUpdated, models.EntityGame)))
	require.NoError(t, w.eventHandler.HandleMessage(ctx, catalogMessage(t, models.EventTypeGenreCreated, models.EntityGenre)))
	assert.Zero(t, cache.invalidations)
}

func TestCacheWorkerReturnsInvalidationError(t *testing.T) {
	cache := &fakeCache{err: errors.New("redis down")}
	w := NewCacheWorker(nil, cache)

	err := w.eventHandler.HandleMessage(context.Background(), catalogMessage(t, models.EventTypeGameCreated, models.EntityGame))
	assert.EqualError(t, err, "redis down")
}
