package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/util"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const downloadTimeLayout = "2006-01-02-15:04"

// countRouteKey collides with the GET /games/count route.
const countRouteKey = "count"

// maxPrice is the exclusive upper bound of games.price NUMERIC(5,2).
var maxPrice = decimal.NewFromInt(1000)

func validatePrice(price decimal.Decimal) error {
	switch {
	case price.IsNegative():
		return newValidationError("game.price", "price must not be negative")
	case price.GreaterThanOrEqual(maxPrice):
		return newValidationError("game.price", "price must be below %s", maxPrice)
	case !price.Equal(price.Truncate(2)):
		return newValidationError("game.price", "price has more than two decimal places")
	}
	return nil
}

// GameService handles game business logic
type GameService struct {
	store       *store.Store
	events      EventPublisher
	cache       GamesCountCache
	idempotency IdempotencyStore
	ttl         CacheConfig
	logger      *zap.Logger
	now         func() time.Time
}

// NewGameService creates a new game service. events, cache and idempotency
// may be nil.
func NewGameService(
	store *store.Store,
	events EventPublisher,
	cache GamesCountCache,
	idempotency IdempotencyStore,
	ttl CacheConfig,
) *GameService {
	return &GameService{
		store:       store,
		events:      events,
		cache:       cache,
		idempotency: idempotency,
		ttl:         ttl,
		logger:      util.GetLogger(),
		now:         time.Now,
	}
}

// CreateGame creates a game linked to the supplied genres and platforms
// that exist. An unknown publisher id leaves the game without publisher.
func (s *GameService) CreateGame(ctx context.Context, req *GameCreateRequest, idempotencyKey string) (resp *GameFields, err error) {
	ctx, span := util.StartSpan(ctx, "GameService.CreateGame")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || req.Game == nil {
		return nil, newValidationError("game", "game data is required")
	}
	if req.Game.Key == "" {
		return nil, newValidationError("game.key", "key is required")
	}
	if req.Game.Key == countRouteKey {
		return nil, newValidationError("game.key", "key %q is reserved", countRouteKey)
	}
	if req.Game.Name == "" {
		return nil, newValidationError("game.name", "name is required")
	}
	if err := validatePrice(req.Game.Price); err != nil {
		return nil, err
	}

	var cached GameFields
	if lookupIdempotent(ctx, s.idempotency, s.logger, "games:new", idempotencyKey, &cached) {
		return &cached, nil
	}

	release, err := claimIdempotent(ctx, s.idempotency, s.logger, "games:new", idempotencyKey)
	if err != nil {
		return nil, err
	}
	defer release()

	// A duplicate may have completed between the lookup and the lock.
	if lookupIdempotent(ctx, s.idempotency, s.logger, "games:new", idempotencyKey, &cached) {
		return &cached, nil
	}

	game := models.NewGame()
	game.Key = req.Game.Key
	game.Name = req.Game.Name
	game.Description = req.Game.Description
	game.UnitInStock = req.Game.UnitInStock
	game.Price = req.Game.Price
	game.Discontinued = req.Game.Discontinued

	err = s.store.InTx(ctx, "game_create", func(uow *store.UnitOfWork) error {
		existing, err := uow.Games.GetByKey(ctx, game.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			return newValidationError("game.key", "game with key %q already exists", game.Key)
		}

		if req.Publisher != "" {
			publisher, err := uow.Publishers.GetByID(ctx, req.Publisher)
			if err != nil {
				return err
			}
			if publisher != nil {
				game.PublisherID = &publisher.ID
			}
		}

		platforms, err := uow.Platforms.GetByIDs(ctx, req.Platforms)
		if err != nil {
			return err
		}
		for _, p := range platforms {
			game.GamePlatforms = append(game.GamePlatforms, models.GamePlatform{GamesKey: game.Key, PlatformsID: p.ID})
		}

		genres, err := uow.Genres.GetByIDs(ctx, req.Genres)
		if err != nil {
			return err
		}
		for _, g := range genres {
			game.GameGenres = append(game.GameGenres, models.GameGenre{GamesKey: game.Key, GenresID: g.ID})
		}

		return uow.Games.Create(ctx, game)
	})
	if err != nil {
		return nil, err
	}

	util.GamesCreatedTotal.Inc()
	util.CatalogWritesTotal.WithLabelValues(models.EntityGame, "create").Inc()
	s.logger.Info("Game created",
		zap.String("game_id", game.ID),
		zap.String("key", game.Key),
		zap.Int("genres", len(game.GameGenres)),
		zap.Int("platforms", len(game.GamePlatforms)))

	publishCatalog(ctx, s.events, s.logger, models.EventTypeGameCreated, models.EntityGame, game.ID, game.Key, game.Name)

	resp = &GameFields{
		Name:         game.Name,
		Key:          game.Key,
		Description:  game.Description,
		UnitInStock:  game.UnitInStock,
		Price:        game.Price,
		Discontinued: game.Discontinued,
	}
	rememberIdempotent(ctx, s.idempotency, s.logger, "games:new", idempotencyKey, resp, s.ttl.IdempotencyTTL)
	return resp, nil
}

// GetByKey returns the game or nil if absent.
func (s *GameService) GetByKey(ctx context.Context, key string) (*GameModel, error) {
	ctx, span := util.StartSpan(ctx, "GameService.GetByKey", attribute.String("game.key", key))
	defer span.End()

	game, err := s.store.UnitOfWork().Games.GetDetailsByKey(ctx, key)
	if err != nil || game == nil {
		return nil, err
	}
	model := toGameModel(game)
	return &model, nil
}

// GetByID returns the game or nil if absent.
func (s *GameService) GetByID(ctx context.Context, id string) (*GameModel, error) {
	ctx, span := util.StartSpan(ctx, "GameService.GetByID")
	defer span.End()

	game, err := s.store.UnitOfWork().Games.GetDetailsByID(ctx, id)
	if err != nil || game == nil {
		return nil, err
	}
	model := toGameModel(game)
	return &model, nil
}

// ListGames returns every game with genre names and platform types.
func (s *GameService) ListGames(ctx context.Context) ([]GameModel, error) {
	ctx, span := util.StartSpan(ctx, "GameService.ListGames")
	defer span.End()

	games, err := s.store.UnitOfWork().Games.ListWithAssociations(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]GameModel, 0, len(games))
	for i := range games {
		result = append(result, toGameModel(&games[i]))
	}
	return result, nil
}

// UpdateGame applies req to the game addressed by req.Game.ID and returns
// the scalar fields as they were before the update.
func (s *GameService) UpdateGame(ctx context.Context, req *GameUpdateRequest) (before *GameUpdateRequest, err error) {
	ctx, span := util.StartSpan(ctx, "GameService.UpdateGame")
	defer func() { util.EndSpan(span, err) }()

	if req == nil || req.Game == nil {
		return nil, newValidationError("game", "game data is required")
	}
	if req.Game.ID == "" {
		return nil, newValidationError("game.id", "id is required")
	}
	if req.Game.Name == "" {
		return nil, newValidationError("game.name", "name is required")
	}
	if err := validatePrice(req.Game.Price); err != nil {
		return nil, err
	}

	var updated *models.Game
	err = s.store.InTx(ctx, "game_update", func(uow *store.UnitOfWork) error {
		game, err := uow.Games.GetDetailsByID(ctx, req.Game.ID)
		if err != nil {
			return err
		}
		if game == nil {
			return fmt.Errorf("game %s: %w", req.Game.ID, store.ErrNotFound)
		}

		before = &GameUpdateRequest{
			Game: &GameFields{
				Name:         game.Name,
				Description:  game.Description,
				UnitInStock:  game.UnitInStock,
				Price:        game.Price,
				Discontinued: game.Discontinued,
			},
		}

		game.Name = req.Game.Name
		game.Description = req.Game.Description
		game.UnitInStock = req.Game.UnitInStock
		game.Price = req.Game.Price
		game.Discontinued = req.Game.Discontinued
		if req.Game.Version != 0 {
			game.Version = req.Game.Version
		}

		if req.Publisher != nil && *req.Publisher != "" {
			publisher, err := uow.Publishers.GetByID(ctx, *req.Publisher)
			if err != nil {
				return err
			}
			if publisher == nil {
				return newValidationError("publisher", "publisher %s not found", *req.Publisher)
			}
			game.PublisherID = &publisher.ID
		}

		if req.Platforms != nil {
			if err := s.requirePlatforms(ctx, uow, req.Platforms); err != nil {
				return err
			}
		}
		if req.Genres != nil {
			if err := s.requireGenres(ctx, uow, req.Genres); err != nil {
				return err
			}
		}

		updated, err = uow.Games.Update(ctx, game)
		if err != nil {
			return err
		}

		if req.Platforms != nil {
			if err := uow.Games.ReplacePlatforms(ctx, game.Key, req.Platforms); err != nil {
				return err
			}
		}
		if req.Genres != nil {
			if err := uow.Games.ReplaceGenres(ctx, game.Key, req.Genres); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrConcurrencyConflict) {
			util.ConcurrencyConflictsTotal.WithLabelValues(models.EntityGame).Inc()
			s.logger.Warn("Game update conflict", zap.String("game_id", req.Game.ID))
		}
		return nil, err
	}

	util.GamesUpdatedTotal.Inc()
	util.CatalogWritesTotal.WithLabelValues(models.EntityGame, "update").Inc()
	s.logger.Info("Game updated", zap.String("game_id", updated.ID), zap.Int("version", updated.Version))

	publishCatalog(ctx, s.events, s.logger, models.EventTypeGameUpdated, models.EntityGame, updated.ID, updated.Key, updated.Name)
	return before, nil
}

func (s *GameService) requirePlatforms(ctx context.Context, uow *store.UnitOfWork, ids []string) error {
	ids = models.UniqueIDs(ids)
	found, err := uow.Platforms.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return newValidationError("platforms", "unknown platform id in %v", ids)
	}
	return nil
}

func (s *GameService) requireGenres(ctx context.Context, uow *store.UnitOfWork, ids []string) error {
	ids = models.UniqueIDs(ids)
	found, err := uow.Genres.GetByIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return newValidationError("genres", "unknown genre id in %v", ids)
	}
	return nil
}

// DeleteGame reports whether a game with the key existed.
func (s *GameService) DeleteGame(ctx context.Context, key string) (deleted bool, err error) {
	ctx, span := util.StartSpan(ctx, "GameService.DeleteGame", attribute.String("game.key", key))
	defer func() { util.EndSpan(span, err) }()

	game, err := s.store.UnitOfWork().Games.DeleteByKey(ctx, key)
	if err != nil {
		return false, err
	}
	if game == nil {
		return false, nil
	}

	util.GamesDeletedTotal.Inc()
	util.CatalogWritesTotal.WithLabelValues(models.EntityGame, "delete").Inc()
	s.logger.Info("Game deleted", zap.String("game_id", game.ID), zap.String("key", key))

	publishCatalog(ctx, s.events, s.logger, models.EventTypeGameDeleted, models.EntityGame, game.ID, game.Key, game.Name)
	return true, nil
}

// DownloadGame renders the generated text file for the game.
func (s *GameService) DownloadGame(ctx context.Context, key string) (*GameDownload, error) {
	ctx, span := util.StartSpan(ctx, "GameService.DownloadGame", attribute.String("game.key", key))
	defer span.End()

	if key == "" {
		return nil, newValidationError("key", "game key is missing")
	}

	game, err := s.store.UnitOfWork().Games.GetDetailsByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, fmt.Errorf("game with key %q: %w", key, store.ErrNotFound)
	}

	util.GameDownloadsTotal.Inc()
	return &GameDownload{
		Name:         game.Name,
		Key:          game.Key,
		Description:  game.Description,
		UnitInStock:  game.UnitInStock,
		Price:        game.Price,
		Discontinued: game.Discontinued,
		FileName:     fmt.Sprintf("%s_%s.txt", game.Name, s.now().UTC().Format(downloadTimeLayout)),
		FileContent:  []byte("This is an auto generated file for a game: " + game.Name),
	}, nil
}

// PlatformsByGame lists the platforms linked to the game key.
func (s *GameService) PlatformsByGame(ctx context.Context, gameKey string) ([]PlatformRef, error) {
	ctx, span := util.StartSpan(ctx, "GameService.PlatformsByGame")
	defer span.End()

	platforms, err := s.store.UnitOfWork().Games.PlatformsByGame(ctx, gameKey)
	if err != nil {
		return nil, err
	}

	refs := make([]PlatformRef, 0, len(platforms))
	for _, p := range platforms {
		refs = append(refs, PlatformRef{ID: p.ID, Type: p.Type})
	}
	return refs, nil
}

// CountGames returns the number of games, served from cache when possible.
func (s *GameService) CountGames(ctx context.Context) (int, error) {
	ctx, span := util.StartSpan(ctx, "GameService.CountGames")
	defer span.End()

	if s.cache != nil {
		count, ok, err := s.cache.GetGamesCount(ctx)
		if err != nil {
			s.logger.Warn("Games count cache read failed", zap.Error(err))
		}
		if ok {
			util.GamesCountCacheTotal.WithLabelValues("hit").Inc()
			return count, nil
		}
	}
	util.GamesCountCacheTotal.WithLabelValues("miss").Inc()

	count, err := s.store.UnitOfWork().Games.Count(ctx)
	if err != nil {
		return 0, err
	}

	if s.cache != nil {
		if err := s.cache.SetGamesCount(ctx, count, s.ttl.GamesCountTTL); err != nil {
			s.logger.Warn("Games count cache write failed", zap.Error(err))
		}
	}
	return count, nil
}

func toGameModel(game *models.Game) GameModel {
	model := GameModel{
		ID:           game.ID,
		Name:         game.Name,
		Key:          game.Key,
		Description:  game.Description,
		UnitInStock:  game.UnitInStock,
		Price:        game.Price,
		Discontinued: game.Discontinued,
		PublisherID:  game.PublisherID,
		Version:      game.Version,
	}
	for _, gg := range game.GameGenres {
		if gg.Genre != nil && gg.Genre.Name != "" {
			model.Genres = append(model.Genres, gg.Genre.Name)
		}
	}
	for _, gp := range game.GamePlatforms {
		if gp.Platform != nil && gp.Platform.Type != "" {
			model.Platforms = append(model.Platforms, gp.Platform.Type)
		}
	}
	return model
}
