package store

import (
	"context"
	"database/sql"
	"fmt"

	"gamestore/internal/models"

	"github.com/jmoiron/sqlx"
)

const platformColumns = "id, type, version"

type PlatformRepository struct {
	db DBTX
}

func (r *PlatformRepository) Create(ctx context.Context, platform *models.Platform) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO platforms (id, type, version) VALUES ($1, $2, 1)",
		platform.ID, platform.Type)
	if err != nil {
		return fmt.Errorf("failed to insert platform: %w", err)
	}
	platform.Version = 1
	return nil
}

func (r *PlatformRepository) GetByID(ctx context.Context, id string) (*models.Platform, error) {
	var platform models.Platform
	err := r.db.GetContext(ctx, &platform,
		"SELECT "+platformColumns+" FROM platforms WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &platform, nil
}

// GetByIDs returns the platforms among ids that exist.
func (r *PlatformRepository) GetByIDs(ctx context.Context, ids []string) ([]models.Platform, error) {
	platforms := []models.Platform{}
	ids = models.UniqueIDs(ids)
	if len(ids) == 0 {
		return platforms, nil
	}

	query, args, err := sqlx.In("SELECT "+platformColumns+" FROM platforms WHERE id IN (?) ORDER BY type", ids)
	if err != nil {
		return nil, err
	}
	err = r.db.SelectContext(ctx, &platforms, r.db.Rebind(query), args...)
	return platforms, err
}

func (r *PlatformRepository) List(ctx context.Context) ([]models.Platform, error) {
	platforms := []models.Platform{}
	err := r.db.SelectContext(ctx, &platforms,
		"SELECT "+platformColumns+" FROM platforms ORDER BY type")
	return platforms, err
}

// Update overwrites the type. A non-zero platform.Version must match.
func (r *PlatformRepository) Update(ctx context.Context, platform *models.Platform) (*models.Platform, error) {
	var existing models.Platform
	err := r.db.GetContext(ctx, &existing,
		"SELECT "+platformColumns+" FROM platforms WHERE id = $1 FOR UPDATE", platform.ID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if platform.Version != 0 && platform.Version != existing.Version {
		return nil, ErrConcurrencyConflict
	}

	existing.Type = platform.Type
	result, err := r.db.ExecContext(ctx,
		"UPDATE platforms SET type = $1, version = version + 1 WHERE id = $2 AND version = $3",
		existing.Type, existing.ID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update platform: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}

	existing.Version++
	return &existing, nil
}

// DeleteByID removes the platform and returns it, or nil if it was absent.
func (r *PlatformRepository) DeleteByID(ctx context.Context, id string) (*models.Platform, error) {
	platform, err := r.GetByID(ctx, id)
	if err != nil || platform == nil {
		return nil, err
	}
	if _, err := r.db.ExecContext(ctx, "DELETE FROM platforms WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete platform: %w", err)
	}
	return platform, nil
}

// GamesByPlatformID returns the games linked to the platform.
func (r *PlatformRepository) GamesByPlatformID(ctx context.Context, platformID string) ([]models.Game, error) {
	query := `
		SELECT ` + gameColumns("g") + `
		FROM games g
		JOIN game_platforms gp ON gp.games_key = g.key
		WHERE gp.platforms_id = $1
		ORDER BY g.name`

	games := []models.Game{}
	err := r.db.SelectContext(ctx, &games, query, platformID)
	return games, err
}
