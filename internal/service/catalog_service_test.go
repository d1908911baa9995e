package service

import (
	"context"
	"errors"
	"testing"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/store/storetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func TestCreateGenreEmptyParentIsRoot(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewGenreService(st, events)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO genres").
		WithArgs(sqlmock.AnyArg(), "Strategy", nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	genre, err := svc.CreateGenre(context.Background(), &GenreRequest{
		Genre: &GenreFields{Name: "Strategy", ParentGenreID: strPtr("")},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, genre.ID)
	assert.Nil(t, genre.ParentGenreID)
	assert.Equal(t, []string{models.EventTypeGenreCreated}, events.types())
}

func TestCreateGenreUnknownParent(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewGenreService(st, events)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
	mock.ExpectRollback()

	_, err := svc.CreateGenre(context.Background(), &GenreRequest{
		Genre: &GenreFields{Name: "RTS", ParentGenreID: strPtr("ghost")},
	})
	assert.True(t, IsValidation(err))
	assert.True(t, errors.Is(err, store.ErrInvalidArgument))
	assert.Empty(t, events.catalog)
}

func TestUpdateGenreValidation(t *testing.T) {
	st, _ := storetest.New(t)
	svc := NewGenreService(st, nil)

	_, err := svc.UpdateGenre(context.Background(), &GenreRequest{Genre: &GenreFields{ID: "g1"}})
	assert.True(t, IsValidation(err))

	_, err = svc.UpdateGenre(context.Background(), &GenreRequest{Genre: &GenreFields{Name: "RTS"}})
	assert.True(t, IsValidation(err))
}

func TestUpdateGenreUnknownParent(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewGenreService(st, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM genres WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(storetest.GenreColumns))
	mock.ExpectRollback()

	_, err := svc.UpdateGenre(context.Background(), &GenreRequest{
		Genre: &GenreFields{ID: "g1", Name: "RTS", ParentGenreID: strPtr("ghost")},
	})
	assert.True(t, IsValidation(err))
}

func TestUpdateGenreMissingRow(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewGenreService(st, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(storetest.GenreColumns))
	mock.ExpectRollback()

	_, err := svc.UpdateGenre(context.Background(), &GenreRequest{
		Genre: &GenreFields{ID: "g1", Name: "RTS"},
	})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestGamesByParent(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewGenreService(st, nil)

	mock.ExpectQuery("ge.parent_genre_id").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).
			AddRow("id-1", "aoe", "Age of Empires", nil, 1, "9.99", 0, nil, 1))

	games, err := svc.GamesByParent(context.Background(), "strategy")
	require.NoError(t, err)
	assert.Equal(t, []GameName{{ID: "id-1", Name: "Age of Empires"}}, games)
}

func TestCreatePlatform(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewPlatformService(st, events)

	_, err := svc.CreatePlatform(context.Background(), &PlatformRequest{Platform: &PlatformFields{}})
	assert.True(t, IsValidation(err))

	mock.ExpectExec("INSERT INTO platforms").
		WithArgs(sqlmock.AnyArg(), "Console").
		WillReturnResult(sqlmock.NewResult(0, 1))

	platform, err := svc.CreatePlatform(context.Background(), &PlatformRequest{Platform: &PlatformFields{Type: "Console"}})
	require.NoError(t, err)
	assert.Equal(t, "Console", platform.Type)
	assert.Equal(t, 1, platform.Version)
	assert.Equal(t, []string{models.EventTypePlatformCreated}, events.types())
}

func TestUpdatePlatformMissing(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewPlatformService(st, nil)

	mock.ExpectBegin()
	mock.ExpectQuery("FOR UPDATE").WillReturnRows(sqlmock.NewRows(storetest.PlatformColumns))
	mock.ExpectRollback()

	_, err := svc.UpdatePlatform(context.Background(), &PlatformRequest{Platform: &PlatformFields{ID: "p1", Type: "PC"}})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdatePublisherRequiresAllFields(t *testing.T) {
	st, _ := storetest.New(t)
	svc := NewPublisherService(st, nil)

	_, err := svc.UpdatePublisher(context.Background(), &PublisherRequest{
		Publisher: &PublisherFields{ID: "pub-1", CompanyName: "Valve", Description: "Bellevue"},
	})
	assert.True(t, IsValidation(err))

	_, err = svc.UpdatePublisher(context.Background(), &PublisherRequest{
		Publisher: &PublisherFields{CompanyName: "Valve", Description: "Bellevue", HomePage: "valve.com"},
	})
	assert.True(t, IsValidation(err))
}

func TestDeletePublisher(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewPublisherService(st, events)

	mock.ExpectQuery("FROM publishers WHERE id").
		WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns).AddRow("pub-1", "Valve", "Bellevue", "valve.com", 1))
	mock.ExpectQuery("FROM games WHERE publisher_id").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns))
	mock.ExpectExec("DELETE FROM publishers").WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := svc.DeletePublisher(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{models.EventTypePublisherDeleted}, events.types())

	mock.ExpectQuery("FROM publishers WHERE id").WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns))

	deleted, err = svc.DeletePublisher(context.Background(), "pub-1")
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestGamesByCompanyName(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewPublisherService(st, nil)

	mock.ExpectQuery("JOIN publishers p ON p.id = g.publisher_id").
		WithArgs("Valve").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).
			AddRow("id-1", "hl2", "Half-Life 2", nil, 1, "9.99", 0, "pub-1", 1))

	games, err := svc.GamesByCompanyName(context.Background(), "Valve")
	require.NoError(t, err)
	require.Len(t, games, 1)
	assert.Equal(t, "Half-Life 2", games[0].Name)
}

func TestGenresByIDs(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewGenreService(st, nil)

	mock.ExpectQuery("FROM genres WHERE id IN").
		WithArgs("g1", "g2").
		WillReturnRows(sqlmock.NewRows(storetest.GenreColumns).
			AddRow("g1", "Shooter", nil, 1).
			AddRow("g2", "Tactical", "g1", 2))

	genres, err := svc.GenresByIDs(context.Background(), []string{"g1", "g2", "g1"})
	require.NoError(t, err)
	require.Len(t, genres, 2)
	require.NotNil(t, genres[1].ParentGenreID)
	assert.Equal(t, "g1", *genres[1].ParentGenreID)

	genres, err = svc.GenresByIDs(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, genres)
}

func TestPlatformsByIDs(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewPlatformService(st, nil)

	mock.ExpectQuery("FROM platforms WHERE id IN").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(storetest.PlatformColumns).AddRow("p1", "PC", 1))

	platforms, err := svc.PlatformsByIDs(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, []PlatformFields{{ID: "p1", Type: "PC", Version: 1}}, platforms)
}

func TestGetPublisherByID(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewPublisherService(st, nil)

	mock.ExpectQuery("FROM publishers WHERE id").
		WithArgs("pub-1").
		WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns).AddRow("pub-1", "Valve", "Bellevue", "valve.com", 1))
	mock.ExpectQuery("FROM publishers WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns))

	publisher, err := svc.GetPublisher(context.Background(), "pub-1")
	require.NoError(t, err)
	require.NotNil(t, publisher)
	assert.Equal(t, "Valve", publisher.CompanyName)

	publisher, err = svc.GetPublisher(context.Background(), "ghost")
	require.NoError(t, err)
	assert.Nil(t, publisher)
}
