package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"gamestore/internal/models"

	"github.com/jmoiron/sqlx"
)

var gameFields = []string{
	"id", "key", "name", "description", "unit_in_stock",
	"price", "discontinued", "publisher_id", "version",
}

// gameColumns renders the game select list, optionally qualified by alias.
func gameColumns(alias string) string {
	if alias == "" {
		return strings.Join(gameFields, ", ")
	}
	cols := make([]string, len(gameFields))
	for i, f := range gameFields {
		cols[i] = alias + "." + f
	}
	return strings.Join(cols, ", ")
}

type gameGenreRow struct {
	GamesKey      string  `db:"games_key"`
	GenresID      string  `db:"genres_id"`
	Name          string  `db:"name"`
	ParentGenreID *string `db:"parent_genre_id"`
	Version       int     `db:"version"`
}

type gamePlatformRow struct {
	GamesKey    string `db:"games_key"`
	PlatformsID string `db:"platforms_id"`
	Type        string `db:"type"`
	Version     int    `db:"version"`
}

type GameRepository struct {
	db DBTX
}

// Create inserts the game with its genre and platform links.
func (r *GameRepository) Create(ctx context.Context, game *models.Game) error {
	query := `
		INSERT INTO games (id, key, name, description, unit_in_stock, price, discontinued, publisher_id, version)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, 1)`

	_, err := r.db.ExecContext(ctx, query,
		game.ID, game.Key, game.Name, game.Description, game.UnitInStock,
		game.Price, game.Discontinued, game.PublisherID)
	if err != nil {
		return fmt.Errorf("failed to insert game: %w", err)
	}
	game.Version = 1

	if err := r.AddGenres(ctx, game.Key, game.GenreIDs()); err != nil {
		return err
	}
	return r.AddPlatforms(ctx, game.Key, game.PlatformIDs())
}

// AddGenres links genres to the game. Existing links are kept.
func (r *GameRepository) AddGenres(ctx context.Context, gameKey string, genreIDs []string) error {
	for _, id := range models.UniqueIDs(genreIDs) {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO game_genres (games_key, genres_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			gameKey, id)
		if err != nil {
			return fmt.Errorf("failed to link genre %s: %w", id, err)
		}
	}
	return nil
}

// AddPlatforms links platforms to the game. Existing links are kept.
func (r *GameRepository) AddPlatforms(ctx context.Context, gameKey string, platformIDs []string) error {
	for _, id := range models.UniqueIDs(platformIDs) {
		_, err := r.db.ExecContext(ctx,
			"INSERT INTO game_platforms (games_key, platforms_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			gameKey, id)
		if err != nil {
			return fmt.Errorf("failed to link platform %s: %w", id, err)
		}
	}
	return nil
}

// ReplaceGenres makes the game's genre links equal to genreIDs.
func (r *GameRepository) ReplaceGenres(ctx context.Context, gameKey string, genreIDs []string) error {
	var current []string
	err := r.db.SelectContext(ctx, &current,
		"SELECT genres_id FROM game_genres WHERE games_key = $1", gameKey)
	if err != nil {
		return err
	}

	toRemove, toAdd := models.DiffIDs(current, genreIDs)
	for _, id := range toRemove {
		_, err := r.db.ExecContext(ctx,
			"DELETE FROM game_genres WHERE games_key = $1 AND genres_id = $2", gameKey, id)
		if err != nil {
			return fmt.Errorf("failed to unlink genre %s: %w", id, err)
		}
	}
	return r.AddGenres(ctx, gameKey, toAdd)
}

// ReplacePlatforms makes the game's platform links equal to platformIDs.
func (r *GameRepository) ReplacePlatforms(ctx context.Context, gameKey string, platformIDs []string) error {
	var current []string
	err := r.db.SelectContext(ctx, &current,
		"SELECT platforms_id FROM game_platforms WHERE games_key = $1", gameKey)
	if err != nil {
		return err
	}

	toRemove, toAdd := models.DiffIDs(current, platformIDs)
	for _, id := range toRemove {
		_, err := r.db.ExecContext(ctx,
			"DELETE FROM game_platforms WHERE games_key = $1 AND platforms_id = $2", gameKey, id)
		if err != nil {
			return fmt.Errorf("failed to unlink platform %s: %w", id, err)
		}
	}
	return r.AddPlatforms(ctx, gameKey, toAdd)
}

// GetByKey returns the game without associations, or nil if absent.
func (r *GameRepository) GetByKey(ctx context.Context, key string) (*models.Game, error) {
	var game models.Game
	err := r.db.GetContext(ctx, &game,
		"SELECT "+gameColumns("")+" FROM games WHERE key = $1", key)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetByID returns the game without associations, or nil if absent.
func (r *GameRepository) GetByID(ctx context.Context, id string) (*models.Game, error) {
	var game models.Game
	err := r.db.GetContext(ctx, &game,
		"SELECT "+gameColumns("")+" FROM games WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &game, nil
}

// GetDetailsByKey returns the game with its genre and platform links.
func (r *GameRepository) GetDetailsByKey(ctx context.Context, key string) (*models.Game, error) {
	game, err := r.GetByKey(ctx, key)
	if err != nil || game == nil {
		return game, err
	}
	if err := r.loadLinks(ctx, game); err != nil {
		return nil, err
	}
	return game, nil
}

// GetDetailsByID returns the game with its publisher and its genre and
// platform links.
func (r *GameRepository) GetDetailsByID(ctx context.Context, id string) (*models.Game, error) {
	game, err := r.GetByID(ctx, id)
	if err != nil || game == nil {
		return game, err
	}
	if err := r.loadLinks(ctx, game); err != nil {
		return nil, err
	}
	if game.PublisherID != nil {
		var publisher models.Publisher
		err := r.db.GetContext(ctx, &publisher,
			"SELECT "+publisherColumns+" FROM publishers WHERE id = $1", *game.PublisherID)
		if err != nil && err != sql.ErrNoRows {
			return nil, err
		}
		if err == nil {
			game.Publisher = &publisher
		}
	}
	return game, nil
}

// List returns all games ordered by name.
func (r *GameRepository) List(ctx context.Context) ([]models.Game, error) {
	games := []models.Game{}
	err := r.db.SelectContext(ctx, &games,
		"SELECT "+gameColumns("")+" FROM games ORDER BY name, key")
	return games, err
}

// ListWithAssociations returns all games with genre and platform links.
func (r *GameRepository) ListWithAssociations(ctx context.Context) ([]models.Game, error) {
	games, err := r.List(ctx)
	if err != nil || len(games) == 0 {
		return games, err
	}

	keys := make([]string, len(games))
	for i := range games {
		keys[i] = games[i].Key
	}

	genres, err := r.genreLinks(ctx, keys)
	if err != nil {
		return nil, err
	}
	platforms, err := r.platformLinks(ctx, keys)
	if err != nil {
		return nil, err
	}

	for i := range games {
		games[i].GameGenres = genres[games[i].Key]
		games[i].GamePlatforms = platforms[games[i].Key]
	}
	return games, nil
}

// Count returns the number of games.
func (r *GameRepository) Count(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM games")
	return count, err
}

// Update writes scalar fields of the game addressed by ID. The stored
// publisher is replaced only when one is already set. A non-zero
// game.Version must match the stored version.
func (r *GameRepository) Update(ctx context.Context, game *models.Game) (*models.Game, error) {
	var existing models.Game
	err := r.db.GetContext(ctx, &existing,
		"SELECT "+gameColumns("")+" FROM games WHERE id = $1 FOR UPDATE", game.ID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if game.Version != 0 && game.Version != existing.Version {
		return nil, ErrConcurrencyConflict
	}

	existing.Name = game.Name
	existing.Description = game.Description
	existing.UnitInStock = game.UnitInStock
	existing.Price = game.Price
	existing.Discontinued = game.Discontinued
	if existing.PublisherID != nil {
		existing.PublisherID = game.PublisherID
	}

	query := `
		UPDATE games
		SET name = $1, description = $2, unit_in_stock = $3, price = $4,
			discontinued = $5, publisher_id = $6, version = version + 1
		WHERE id = $7 AND version = $8`

	result, err := r.db.ExecContext(ctx, query,
		existing.Name, existing.Description, existing.UnitInStock, existing.Price,
		existing.Discontinued, existing.PublisherID, existing.ID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update game: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}

	existing.Version++
	return &existing, nil
}

// DeleteByKey removes the game and returns it, or nil if it was absent.
// Links go with it through ON DELETE CASCADE.
func (r *GameRepository) DeleteByKey(ctx context.Context, key string) (*models.Game, error) {
	game, err := r.GetByKey(ctx, key)
	if err != nil || game == nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM games WHERE key = $1", key); err != nil {
		return nil, fmt.Errorf("failed to delete game: %w", err)
	}
	return game, nil
}

// PlatformsByGame returns the platforms linked to the game key.
func (r *GameRepository) PlatformsByGame(ctx context.Context, gameKey string) ([]models.Platform, error) {
	query := `
		SELECT p.id, p.type, p.version
		FROM game_platforms gp
		JOIN platforms p ON p.id = gp.platforms_id
		WHERE gp.games_key = $1
		ORDER BY p.type`

	platforms := []models.Platform{}
	err := r.db.SelectContext(ctx, &platforms, query, gameKey)
	return platforms, err
}

// ListPlatforms returns every platform.
func (r *GameRepository) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	platforms := []models.Platform{}
	err := r.db.SelectContext(ctx, &platforms,
		"SELECT "+platformColumns+" FROM platforms ORDER BY type")
	return platforms, err
}

func (r *GameRepository) loadLinks(ctx context.Context, game *models.Game) error {
	genres, err := r.genreLinks(ctx, []string{game.Key})
	if err != nil {
		return err
	}
	platforms, err := r.platformLinks(ctx, []string{game.Key})
	if err != nil {
		return err
	}
	game.GameGenres = genres[game.Key]
	game.GamePlatforms = platforms[game.Key]
	return nil
}

func (r *GameRepository) genreLinks(ctx context.Context, keys []string) (map[string][]models.GameGenre, error) {
	query, args, err := sqlx.In(`
		SELECT gg.games_key, gg.genres_id, g.name, g.parent_genre_id, g.version
		FROM game_genres gg
		JOIN genres g ON g.id = gg.genres_id
		WHERE gg.games_key IN (?)
		ORDER BY g.name`, keys)
	if err != nil {
		return nil, err
	}

	var rows []gameGenreRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	links := make(map[string][]models.GameGenre, len(keys))
	for _, row := range rows {
		links[row.GamesKey] = append(links[row.GamesKey], models.GameGenre{
			GamesKey: row.GamesKey,
			GenresID: row.GenresID,
			Genre: &models.Genre{
				ID:            row.GenresID,
				Name:          row.Name,
				ParentGenreID: row.ParentGenreID,
				Version:       row.Version,
			},
		})
	}
	return links, nil
}

func (r *GameRepository) platformLinks(ctx context.Context, keys []string) (map[string][]models.GamePlatform, error) {
	query, args, err := sqlx.In(`
		SELECT gp.games_key, gp.platforms_id, p.type, p.version
		FROM game_platforms gp
		JOIN platforms p ON p.id = gp.platforms_id
		WHERE gp.games_key IN (?)
		ORDER BY p.type`, keys)
	if err != nil {
		return nil, err
	}

	var rows []gamePlatformRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, err
	}

	links := make(map[string][]models.GamePlatform, len(keys))
	for _, row := range rows {
		links[row.GamesKey] = append(links[row.GamesKey], models.GamePlatform{
			GamesKey:    row.GamesKey,
			PlatformsID: row.PlatformsID,
			Platform: &models.Platform{
				ID:      row.PlatformsID,
				Type:    row.Type,
				Version: row.Version,
			},
		})
	}
	return links, nil
}

// expectOneRow turns a zero-row update into a concurrency conflict.
func expectOneRow(result sql.Result) error {
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConcurrencyConflict
	}
	return nil
}
