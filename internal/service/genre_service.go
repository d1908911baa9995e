package service

import (
	"context"
	"errors"
	"fmt"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"go.uber.org/zap"
)

// GenreService handles genre business logic
type GenreService struct {
	store  *store.Store
	events EventPublisher
	logger *zap.Logger
}

// NewGenreService creates a new genre service
func NewGenreService(store *store.Store, events EventPublisher) *GenreService {
	return &GenreService{
		store:  store,
		events: events,
		logger: util.GetLogger(),
	}
}

// CreateGenre creates a genre. An empty parent id means a root genre.
func (s *GenreService) CreateGenre(ctx context.Context, req *GenreRequest) (resp *GenreFields, err error) {
	ctx, span := util.StartSpan(ctx, "GenreService.CreateGenre")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || req.Genre == nil {
		return nil, newValidationError("genre", "genre data is required")
	}
	if req.Genre.Name == "" {
		return nil, newValidationError("genre.name", "name is required")
	}

	genre := models.NewGenre()
	genre.Name = req.Genre.Name
	if req.Genre.ParentGenreID != nil {
		genre.ParentGenreID = nonEmpty(*req.Genre.ParentGenreID)
	}

	err = s.store.InTx(ctx, "genre_create", func(uow *store.UnitOfWork) error {
		return uow.Genres.Create(ctx, genre)
	})
	if errors.Is(err, store.ErrInvalidArgument) {
		return nil, &ValidationError{Field: "genre.parentGenreId", Message: "parent genre does not exist", Err: err}
	}
	if err != nil {
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityGenre, "create").Inc()
	s.logger.Info("Genre created", zap.String("genre_id", genre.ID))
	publishCatalog(ctx, s.events, s.logger, models.EventTypeGenreCreated, models.EntityGenre, genre.ID, "", genre.Name)

	resp = toGenreFields(genre)
	return resp, nil
}

// DeleteGenre removes the genre and returns it, or nil if it did not exist.
func (s *GenreService) DeleteGenre(ctx context.Context, id string) (*GenreFields, error) {
	ctx, span := util.StartSpan(ctx, "GenreService.DeleteGenre")
	defer span.End()

	genre, err := s.store.UnitOfWork().Genres.DeleteByID(ctx, id)
	if err != nil || genre == nil {
		return nil, err
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityGenre, "delete").Inc()
	s.logger.Info("Genre deleted", zap.String("genre_id", id))
	publishCatalog(ctx, s.events, s.logger, models.EventTypeGenreDeleted, models.EntityGenre, genre.ID, "", genre.Name)

	return toGenreFields(genre), nil
}

// GetGenre returns the genre or nil if absent.
func (s *GenreService) GetGenre(ctx context.Context, id string) (*GenreFields, error) {
	genre, err := s.store.UnitOfWork().Genres.GetByID(ctx, id)
	if err != nil || genre == nil {
		return nil, err
	}
	return toGenreFields(genre), nil
}

func (s *GenreService) ListGenres(ctx context.Context) ([]GenreFields, error) {
	genres, err := s.store.UnitOfWork().Genres.List(ctx)
	if err != nil {
		return nil, err
	}
	return toGenreList(genres), nil
}

// GenresByIDs returns the genres among ids that exist.
func (s *GenreService) GenresByIDs(ctx context.Context, ids []string) ([]GenreFields, error) {
	genres, err := s.store.UnitOfWork().Genres.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return toGenreList(genres), nil
}

// UpdateGenre renames the genre and sets or clears its parent.
func (s *GenreService) UpdateGenre(ctx context.Context, req *GenreRequest) (resp *GenreFields, err error) {
	ctx, span := util.StartSpan(ctx, "GenreService.UpdateGenre")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || req.Genre == nil || req.Genre.Name == "" {
		return nil, newValidationError("genre", "genre data and name are required")
	}
	if req.Genre.ID == "" {
		return nil, newValidationError("genre.id", "id is required")
	}

	genre := &models.Genre{
		ID:            req.Genre.ID,
		Name:          req.Genre.Name,
		ParentGenreID: req.Genre.ParentGenreID,
		Version:       req.Genre.Version,
	}

	var updated *models.Genre
	err = s.store.InTx(ctx, "genre_update", func(uow *store.UnitOfWork) error {
		if genre.ParentGenreID != nil && *genre.ParentGenreID != "" {
			parent, err := uow.Genres.GetByID(ctx, *genre.ParentGenreID)
			if err != nil {
				return err
			}
			if parent == nil {
				return newValidationError("genre.parentGenreId", "parent genre %s not found", *genre.ParentGenreID)
			}
		}

		var err error
		updated, err = uow.Genres.Update(ctx, genre)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			util.ConcurrencyConflictsTotal.WithLabelValues(models.EntityGenre).Inc()
		}
		return nil, fmt.Errorf("update genre %s: %w", req.Genre.ID, err)
	}

	util.CatalogWritesTotal.WithLabelValues(models.EntityGenre, "update").Inc()
	publishCatalog(ctx, s.events, s.logger, models.EventTypeGenreUpdated, models.EntityGenre, updated.ID, "", updated.Name)

	resp = toGenreFields(updated)
	return resp, nil
}

// GamesByGenre lists games linked to the genre.
func (s *GenreService) GamesByGenre(ctx context.Context, genreID string) ([]GameName, error) {
	games, err := s.store.UnitOfWork().Genres.GamesByGenreID(ctx, genreID)
	if err != nil {
		return nil, err
	}
	return toGameNames(games), nil
}

// GamesByParent lists games linked to direct children of the genre.
func (s *GenreService) GamesByParent(ctx context.Context, parentID string) ([]GameName, error) {
	games, err := s.store.UnitOfWork().Genres.GamesByParentID(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return toGameNames(games), nil
}

func toGenreFields(genre *models.Genre) *GenreFields {
	return &GenreFields{
		ID:            genre.ID,
		Name:          genre.Name,
		ParentGenreID: genre.ParentGenreID,
		Version:       genre.Version,
	}
}

func toGenreList(genres []models.Genre) []GenreFields {
	result := make([]GenreFields, 0, len(genres))
	for i := range genres {
		result = append(result, *toGenreFields(&genres[i]))
	}
	return result
}

func toGameNames(games []models.Game) []GameName {
	result := make([]GameName, 0, len(games))
	for _, g := range games {
		result = append(result, GameName{ID: g.ID, Name: g.Name})
	}
	return result
}
