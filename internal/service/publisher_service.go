package service

import (
	"context"
	"errors"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// PublisherService handles publisher business logic
type PublisherService struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewPublisherService creates a new publisher service
func NewPublisherService(store *store.Store, events EventPublisher) *PublisherService {
	return &PublisherService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

func validatePublisher(p *PublisherFields) error {
	if p == nil {
		return newValidationError("publisher", "publisher data is required")
	}
	if p.CompanyName == "" || p.Description == "" || p.HomePage == "" {
		return newValidationError("publisher", "companyName, description and homePage are required")
	}
	return nil
}

func (s *PublisherService) CreatePublisher(ctx context.Context, req *PublisherRequest) (*PublisherFields, error) {
	ctx, span := util.StartSpan(ctx, "PublisherService.CreatePublisher")
	defer span.End()

	if req == nil {
		return nil, newValidationError("publisher", "publisher data is required")
	}
	if err := validatePublisher(req.Publisher); err != nil {
		return nil, err
	}

	publisher := models.NewPublisher()
	publisher.CompanyName = req.Publisher.CompanyName
	publisher.Description = req.Publisher.Description
	publisher.HomePage = req.Publisher.HomePage

	if err := s.store.UnitOfWork().Publishers.Create(ctx, publisher); err != nil {
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPublisher, "create").Inc()
	s.logger.Info("Publisher created", zap.String("publisher_id", publisher.ID))
	publishCatalog(ctx, s.events, s.logger, models.EventTypePublisherCreated, models.EntityPublisher, publisher.ID, "", publisher.CompanyName)

	return toPublisherFields(publisher), nil
}

// DeletePublisher detaches the publisher's games and deletes it. It reports
// whether the publisher existed.
func (s *PublisherService) DeletePublisher(ctx context.Context, id string) (bool, error) {
	ctx, span := util.StartSpan(ctx, "PublisherService.DeletePublisher")
	defer span.End()

	publisher, err := s.store.UnitOfWork().Publishers.DeleteByID(ctx, id)
	if err != nil {
		return false, err
	}
	if publisher == nil {
		return false, nil
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPublisher, "delete").Inc()
	s.logger.Info("Publisher deleted",
		zap.String("publisher_id", id),
		zap.Int("detached_games", len(publisher.Games)))
	publishCatalog(ctx, s.events, s.logger, models.EventTypePublisherDeleted, models.EntityPublisher, publisher.ID, "", publisher.CompanyName)

	return true, nil
}

func (s *PublisherService) ListPublishers(ctx context.Context) ([]PublisherFields, error) {
	publishers, err := s.store.UnitOfWork().Publishers.List(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]PublisherFields, 0, len(publishers))
	for i := range publishers {
		result = append(result, *toPublisherFields(&publishers[i]))
	}
	return result, nil
}

func (s *PublisherService) GetPublisher(ctx context.Context, id string) (*PublisherFields, error) {
	publisher, err := s.store.UnitOfWork().Publishers.GetByID(ctx, id)
	if err != nil || publisher == nil {
		return nil, err
	}
	return toPublisherFields(publisher), nil
}

func (s *PublisherService) GetByCompanyName(ctx context.Context, companyName string) (*PublisherFields, error) {
	publisher, err := s.store.UnitOfWork().Publishers.GetByCompanyName(ctx, companyName)
	if err != nil || publisher == nil {
		return nil, err
	}
	return toPublisherFields(publisher), nil
}

// UpdatePublisher overwrites all three fields. Every field and the id are
// required.
func (s *PublisherService) UpdatePublisher(ctx context.Context, req *PublisherRequest) (resp *PublisherFields, err error) {
	ctx, span := util.StartSpan(ctx, "PublisherService.UpdatePublisher")
	defer func() { util.EndSpan(span, err) }()

	if req == nil {
		return nil, newValidationError("publisher", "publisher data is required")
	}
	if err := validatePublisher(req.Publisher); err != nil {
		return nil, err
	}
	if req.Publisher.ID == "" {
		return nil, newValidationError("publisher.id", "id is required")
	}

	var updated *models.Publisher
	err = s.store.InTx(ctx, "publisher_update", func(uow *store.UnitOfWork) error {
		var err error
		updated, err = uow.Publishers.Update(ctx, &models.Publisher{
			ID:          req.Publisher.ID,
			CompanyName: req.Publisher.CompanyName,
			Description: req.Publisher.Description,
			HomePage:    req.Publisher.HomePage,
			Version:     req.Publisher.Version,
		})
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			util.ConcurrencyConflictsTotal.WithLabelValues(models.EntityPublisher).Inc()
		}
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityPublisher, "update").Inc()
	publishCatalog(ctx, s.events, s.logger, models.EventTypePublisherUpdated, models.EntityPublisher, updated.ID, "", updated.CompanyName)

	resp = toPublisherFields(updated)
	return resp, nil
}

// GamesByCompanyName lists the games of the named publisher.
func (s *PublisherService) GamesByCompanyName(ctx context.Context, companyName string) ([]GameName, error) {
	games, err := s.store.UnitOfWork().Publishers.GamesByCompanyName(ctx, companyName)
	if err != nil {
		return nil, err
	}
	return toGameNames(games), nil
}

func toPublisherFields(publisher *models.Publisher) *PublisherFields {
	return &PublisherFields{
		ID:          publisher.ID,
		CompanyName: publisher.CompanyName,
		Description: publisher.Description,
		HomePage:    publisher.HomePage,
		Version:     publisher.Version,
	}
}
