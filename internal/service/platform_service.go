package service

import (
	"context"
	"errors"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// PlatformService handles platform business logic
type PlatformService struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewPlatformService creates a new platform service
func NewPlatformService(store *store.Store, events EventPublisher) *PlatformService {
	return &PlatformService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

func (s *PlatformService) CreatePlatform(ctx context.Context, req *PlatformRequest) (*PlatformFields, error) {
	ctx, span := util.StartSpan(ctx, "PlatformService.CreatePlatform")
	defer span.End()

	if req == nil || req.Platform == nil || req.Platform.Type == "" {
		return nil, newValidationError("platform.type", "type is required")
	}

	platform := models.NewPlatform()
	platform.Type = req.Platform.Type
	if err := s.store.UnitOfWork().Platforms.Create(ctx, platform); err != nil {
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPlatform, "create").Inc()
	s.logger.Info("Platform created", zap.String("platform_id", platform.ID))
	publishCatalog(ctx, s.events, s.logger, models.EventTypePlatformCreated, models.EntityPlatform, platform.ID, "", platform.Type)

	return toPlatformFields(platform), nil
}

// DeletePlatform removes the platform and returns it, or nil if absent.
func (s *PlatformService) DeletePlatform(ctx context.Context, id string) (*PlatformFields, error) {
	ctx, span := util.StartSpan(ctx, "PlatformService.DeletePlatform")
	defer span.End()

	platform, err := s.store.UnitOfWork().Platforms.DeleteByID(ctx, id)
	if err != nil || platform == nil {
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPlatform, "delete").Inc()
	publishCatalog(ctx, s.events, s.logger, models.EventTypePlatformDeleted, models.EntityPlatform, platform.ID, "", platform.Type)

	return toPlatformFields(platform), nil
}

func (s *PlatformService) GetPlatform(ctx context.Context, id string) (*PlatformFields, error) {
	platform, err := s.store.UnitOfWork().Platforms.GetByID(ctx, id)
	if err != nil || platform == nil {
		return nil, err
	}
	return toPlatformFields(platform), nil
}

func (s *PlatformService) ListPlatforms(ctx context.Context) ([]PlatformFields, error) {
	platforms, err := s.store.UnitOfWork().Platforms.List(ctx)
	if err != nil {
		return nil, err
	}
	return toPlatformList(platforms), nil
}

func (s *PlatformService) PlatformsByIDs(ctx context.Context, ids []string) ([]PlatformFields, error) {
	platforms, err := s.store.UnitOfWork().Platforms.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toPlatformList(platforms), nil
}

// UpdatePlatform overwrites the platform type.
func (s *PlatformService) UpdatePlatform(ctx context.Context, req *PlatformRequest) (resp *PlatformFields, err error) {
	ctx, span := util.StartSpan(ctx, "PlatformService.UpdatePlatform")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || req.Platform == nil || req.Platform.ID == "" || req.Platform.Type == "" {
		return nil, newValidationError("platform", "id and type are required")
	}

	var updated *models.Platform
	err = s.store.InTx(ctx, "platform_update", func(uow *store.UnitOfWork) error {
		var err error
		updated, err = uow.Platforms.Update(ctx, &models.Platform{
			ID:      req.Platform.ID,
			Type:    req.Platform.Type,
			Version: req.Platform.Version,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			util.ConcurrencyConflictsTotal.WithLabelValues(models.EntityPlatform).Inc()
		}
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPlatform, "update").Inc()
	publishCatalog(ctx, s.events, s.logger, models.EventTypePlatformUpdated, models.EntityPlatform, updated.ID, "", updated.Type)

	resp = toPlatformFields(updated)
	return resp, nil
}

// GamesByPlatform lists games linked to the platform.
func (s *PlatformService) GamesByPlatform(ctx context.Context, platformID string) ([]GameName, error) {
	games, err := s.store.UnitOfWork().Platforms.GamesByPlatformID(ctx, platformID)
	if err != nil {
		return nil, err
	}
	return toGameNames(games), nil
}

func toPlatformFields(platform *models.Platform) *PlatformFields {
	return &PlatformFields{ID: platform.ID, Type: platform.Type, Version: platform.Version}
}

func toPlatformList(platforms []models.Platform) []PlatformFields {
	result := make([]PlatformFields, 0, len(platforms))
	for i := range platforms {
		result = append(result, *toPlatformFields(&platforms[i]))
	}
	return result
}
