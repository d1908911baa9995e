package store

import (
	"context"
	"database/sql"
	"fmt"

	"gamestore/internal/models"
)

const publisherColumns = "id, company_name, description, home_page, version"

type PublisherRepository struct {
	db DBTX
}

func (r *PublisherRepository) Create(ctx context.Context, publisher *models.Publisher) error {
	query := `
		INSERT INTO publishers (id, company_name, description, home_page, version)
		VALUES ($1, $2, $3, $4, 1)`

	_, err := r.db.ExecContext(ctx, query,
		publisher.ID, publisher.CompanyName, publisher.Description, publisher.HomePage)
	if err != nil {
		return fmt.Errorf("failed to insert publisher: %w", err)
	}
	publisher.Version = 1
	return nil
}

func (r *PublisherRepository) GetByID(ctx context.Context, id string) (*models.Publisher, error) {
	var publisher models.Publisher
	err := r.db.GetContext(ctx, &publisher,
		"SELECT "+publisherColumns+" FROM publishers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

// GetByCompanyName returns the first publisher with the name, or nil.
func (r *PublisherRepository) GetByCompanyName(ctx context.Context, companyName string) (*models.Publisher, error) {
	var publisher models.Publisher
	err := r.db.GetContext(ctx, &publisher,
		"SELECT "+publisherColumns+" FROM publishers WHERE company_name = $1 ORDER BY id LIMIT 1", companyName)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &publisher, nil
}

func (r *PublisherRepository) List(ctx context.Context) ([]models.Publisher, error) {
	publishers := []models.Publisher{}
	err := r.db.SelectContext(ctx, &publishers,
		"SELECT "+publisherColumns+" FROM publishers ORDER BY company_name")
	return publishers, err
}

// Update overwrites the publisher's fields. A non-zero Version must match.
func (r *PublisherRepository) Update(ctx context.Context, publisher *models.Publisher) (*models.Publisher, error) {
	var existing models.Publisher
	err := r.db.GetContext(ctx, &existing,
		"SELECT "+publisherColumns+" FROM publishers WHERE id = $1 FOR UPDATE", publisher.ID)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if publisher.Version != 0 && publisher.Version != existing.Version {
		return nil, ErrConcurrencyConflict
	}

	existing.CompanyName = publisher.CompanyName
	existing.Description = publisher.Description
	existing.HomePage = publisher.HomePage

	query := `
		UPDATE publishers
		SET company_name = $1, description = $2, home_page = $3, version = version + 1
		WHERE id = $4 AND version = $5`

	result, err := r.db.ExecContext(ctx, query,
		existing.CompanyName, existing.Description, existing.HomePage, existing.ID, existing.Version)
	if err != nil {
		return nil, fmt.Errorf("failed to update publisher: %w", err)
	}
	if err := expectOneRow(result); err != nil {
		return nil, err
	}

	existing.Version++
	return &existing, nil
}

// DeleteByID detaches the publisher's games and then removes the publisher.
// The two statements run separately; on a pool-bound repository a failure
// between them leaves the games detached and the publisher in place.
func (r *PublisherRepository) DeleteByID(ctx context.Context, id string) (*models.Publisher, error) {
	publisher, err := r.GetByID(ctx, id)
	if err != nil || publisher == nil {
		return nil, err
	}

	games := []models.Game{}
	err = r.db.SelectContext(ctx, &games,
		"SELECT "+gameColumns("")+" FROM games WHERE publisher_id = $1 ORDER BY name", id)
	if err != nil {
		return nil, err
	}
	publisher.Games = games

	if len(games) > 0 {
		_, err := r.db.ExecContext(ctx,
			"UPDATE games SET publisher_id = NULL, version = version + 1 WHERE publisher_id = $1", id)
		if err != nil {
			return nil, fmt.Errorf("failed to detach games: %w", err)
		}
	}

	if _, err := r.db.ExecContext(ctx, "DELETE FROM publishers WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to delete publisher: %w", err)
	}
	return publisher, nil
}

// GamesByCompanyName returns the games of every publisher with the name.
func (r *PublisherRepository) GamesByCompanyName(ctx context.Context, companyName string) ([]models.Game, error) {
	query := `
		SELECT ` + gameColumns("g") + `
		FROM games g
		JOIN publishers p ON p.id = g.publisher_id
		WHERE p.company_name = $1
		ORDER BY g.name`

	games := []models.Game{}
	err := r.db.SelectContext(ctx, &games, query, companyName)
	return games, err
}
