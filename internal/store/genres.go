package store

import (
	"context"
	"database/sql"
	"fmt"

	"gamestore/internal/models"

	"github.com/jmoiron/sqlx"
)

const genreColumns = "id, name, parent_genre_id, version"

type GenreRepository struct {
	db DBTX
}

// Create inserts the genre. A parent that does not exist fails with
// ErrInvalidArgument and nothing is written.
func (r *GenreRepository) Create(ctx context.Context, genre *models.Genre) error {
	if genre.ParentGenreID != nil {
		var exists bool
		err := r.db.GetContext(ctx, &exists,
			"SELECT EXISTS (SELECT 1 FROM genres WHERE id = $1)", *genre.ParentGenreID)
		if err != nil {
			return err
		}
		if !exists {
			return fmt.Errorf("parent genre %s: %w", *genre.ParentGenreID, ErrInvalidArgument)
		}
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO genres (id, name, parent_genre_id, version) VALUES ($1, $2, $3, 1)",
		genre.ID, genre.Name, genre.ParentGenreID)
	if err != nil {
		return fmt.Errorf("failed to insert genre: %w", err)
	}
	genre.Version = 1
	return nil
}

// GetByID returns the genre or nil if absent.
func (r *GenreRepository) GetByID(ctx context.Context, id string) (*models.Genre, error) {
	var genre models.Genre
	err := r.db.GetContext(ctx, &genre,
		"SELECT "+genreColumns+" FROM genres WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &genre, nil
}

// GetByIDs returns the genres among ids that exist.
func (r *GenreRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Genre, error) {
	genres := []models.Genre{}
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return genres, nil
	}

	query, args, err := sqlx.In("SELECT "+genreColumns+" FROM genres WHERE id IN (?) ORDER BY name", ids)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &genres, r.db.Rebind(query), args...)
	return genres, err
}

// List returns every genre ordered by name.
func (r *GenreRepository) List(ctx context.Context) ([]models.Genre, error) {
	genres := []models.Genre{}
	err := r.db.SelectContext(ctx, &genres,
		"SELECT "+genreColumns+" FROM genres ORDER BY name")
	return genres, err
}

// Update always overwrites the name. An empty or nil parent clears it.
func (r *GenreRepository) Update(ctx context.Context, genre *models.Genre) (*models.Genre, error) {
	var existing models.Genre
	err := r.db.GetContext(ctx, &existing,
		"SELECT "+genreColumns+" FROM genres WHERE id = $1 FOR UPDATE", genre.ID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if genre.Version != 0 && genre.Version != existing.Version {
		return nil, ErrConcurrencyConflict
	}

	existing.Name = genre.Name
	if genre.ParentGenreID != nil && *genre.ParentGenreID != "" {
		parent := *genre.ParentGenreID
		existing.ParentGenreID = &parent
	} else {
		existing.ParentGenreID = nil
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE genres SET name = $1, parent_genre_id = $2, version = version + 1 WHERE id = $3 AND version = $4",
		existing.Name, existing.ParentGenreID, existing.ID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update genre: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}

	existing.Version++
	return &existing, nil
}

// DeleteByID removes the genre and returns it, or nil if it was absent.
// Children lose their parent and game links are dropped by the schema.
func (r *GenreRepository) DeleteByID(ctx context.Context, id string) (*models.Genre, error) {
	genre, err := r.GetByID(ctx, id)
	if err != nil || genre == nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM genres WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete genre: %w", err)
	}
	return genre, nil
}

// GamesByGenreID returns the games linked to the genre.
func (r *GenreRepository) GamesByGenreID(ctx context.Context, genreID string) ([]models.Game, error) {
	query := `
		SELECT ` + gameColumns("g") + `
		FROM games g
		JOIN game_genres gg ON gg.games_key = g.key
		WHERE gg.genres_id = $1
		ORDER BY g.name`

	games := []models.Game{}
	err := r.db.SelectContext(ctx, &games, query, genreID)
	return games, err
}

// GamesByParentID returns games linked to any direct child of the genre.
// Grandchildren are not included.
func (r *GenreRepository) GamesByParentID(ctx context.Context, parentID string) ([]models.Game, error) {
	query := `
		SELECT DISTINCT ` + gameColumns("g") + `
		FROM games g
		JOIN game_genres gg ON gg.games_key = g.key
		JOIN genres ge ON ge.id = gg.genres_id
		WHERE ge.parent_genre_id = $1
		ORDER BY g.name`

	games := []models.Game{}
	err := r.db.SelectContext(ctx, &games, query, parentID)
	return games, err
}
