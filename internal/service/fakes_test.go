package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gamestore/internal/models"
)

type fakeEvents struct {
	catalog []*models.CatalogEvent
	orders  []*models.OrderCreatedEvent
	err     error
}

func (f *fakeEvents) PublishCatalogEvent(ctx context.Context, event *models.CatalogEvent) error {
	f.catalog = append(f.catalog, event)
	return f.err
}

func (f *fakeEvents) PublishOrderCreated(ctx context.Context, event *models.OrderCreatedEvent) error {
	f.orders = append(f.orders, event)
	return f.err
}

func (f *fakeEvents) types() []string {
	types := make([]string, 0, len(f.catalog))
	for _, e := range f.catalog {
		types = append(types, e.EventType)
	}
	return types
}

type fakeCountCache struct {
	count  int
	cached bool
	sets   int
	ttl    time.Duration
}

func (f *fakeCountCache) GetGamesCount(ctx context.Context) (int, bool, error) {
	return f.count, f.cached, nil
}

func (f *fakeCountCache) SetGamesCount(ctx context.Context, count int, ttl time.Duration) error {
	f.count, f.cached, f.ttl = count, true, ttl
	f.sets++
	return nil
}

type fakeIdempotency struct {
	values   map[string][]byte
	locks    map[string]string
	acquired []string
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{values: map[string][]byte{}, locks: map[string]string{}}
}

// AcquireLock behaves like SET NX.
func (f *fakeIdempotency) AcquireLock(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if _, held := f.locks[key]; held {
		return "", false, nil
	}
	token := fmt.Sprintf("token-%d", len(f.acquired)+1)
	f.locks[key] = token
	f.acquired = append(f.acquired, key)
	return token, true, nil
}

func (f *fakeIdempotency) ReleaseLock(ctx context.Context, key, token string) error {
	if f.locks[key] == token {
		delete(f.locks, key)
	}
	return nil
}

func (f *fakeIdempotency) GetIdempotencyKey(ctx context.Context, key string, dest interface{}) (bool, error) {
	data, ok := f.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (f *fakeIdempotency) SetIdempotencyKey(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = data
	return nil
}

func strPtr(s string) *string { return &s }
