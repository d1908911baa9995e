package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"gamestore/internal/models"
	"gamestore/internal/store"
	"gamestore/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func newGameService(t *testing.T) (*GameService, sqlmock.Sqlmock, *fakeEvents) {
	t.Helper()
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewGameService(st, events, nil, nil, CacheConfig{GamesCountTTL: time.Minute, IdempotencyTTL: time.Hour})
	return svc, mock, events
}

func doomRow() *sqlmock.Rows {
	return sqlmock.NewRows(storetest.GameColumns).
		AddRow("id-1", "doom", "Doom", nil, 5, "19.99", 0, nil, 1)
}

func emptyLinks(mock sqlmock.Sqlmock) {
	mock.ExpectQuery("FROM game_genres gg JOIN genres g").
		WillReturnRows(sqlmock.NewRows([]string{"games_key", "genres_id", "name", "parent_genre_id", "version"}))
	mock.ExpectQuery("FROM game_platforms gp JOIN platforms p").
		WillReturnRows(sqlmock.NewRows([]string{"games_key", "platforms_id", "type", "version"}))
}

func TestCreateGameKeepsOnlyExistingAssociations(t *testing.T) {
	svc, mock, events := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE key = $1")).
		WithArgs("doom").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns))
	mock.ExpectQuery("FROM publishers WHERE id").
		WithArgs("ghost-publisher").
		WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns))
	mock.ExpectQuery("FROM platforms WHERE id IN").
		WithArgs("p1", "p-missing").
		WillReturnRows(sqlmock.NewRows(storetest.PlatformColumns).AddRow("p1", "PC", 1))
	mock.ExpectQuery("FROM genres WHERE id IN").
		WithArgs("g1").
		WillReturnRows(sqlmock.NewRows(storetest.GenreColumns).AddRow("g1", "Shooter", nil, 1))
	mock.ExpectExec("INSERT INTO games").
		WithArgs(sqlmock.AnyArg(), "doom", "Doom", sqlmock.AnyArg(), 5, sqlmock.AnyArg(), 0, nil).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO game_genres").WithArgs("doom", "g1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO game_platforms").WithArgs("doom", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	resp, err := svc.CreateGame(context.Background(), &GameCreateRequest{
		Game:      &GameFields{Key: "doom", Name: "Doom", UnitInStock: 5, Price: decimal.RequireFromString("19.99")},
		Genres:    []string{"g1"},
		Platforms: []string{"p1", "p-missing"},
		Publisher: "ghost-publisher",
	}, "")
	require.NoError(t, err)

	assert.Equal(t, "doom", resp.Key)
	assert.Empty(t, resp.ID)
	assert.Equal(t, []string{models.EventTypeGameCreated}, events.types())
	assert.Equal(t, "doom", events.catalog[0].Key)
}

func TestCreateGameRejectsDuplicateKey(t *testing.T) {
	svc, mock, events := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery("FROM games WHERE key").WillReturnRows(doomRow())
	mock.ExpectRollback()

	_, err := svc.CreateGame(context.Background(), &GameCreateRequest{
		Game: &GameFields{Key: "doom", Name: "Doom"},
	}, "")
	assert.True(t, IsValidation(err))
	assert.Empty(t, events.catalog)
}

func TestCreateGameValidation(t *testing.T) {
	svc, _, _ := newGameService(t)

	_, err := svc.CreateGame(context.Background(), &GameCreateRequest{}, "")
	assert.True(t, IsValidation(err))

	_, err = svc.CreateGame(context.Background(), &GameCreateRequest{Game: &GameFields{Name: "No key"}}, "")
	assert.True(t, IsValidation(err))
}

func TestCreateGameReplaysIdempotentResponse(t *testing.T) {
	svc, _, events := newGameService(t)
	idem := newFakeIdempotency()
	svc.idempotency = idem

	require.NoError(t, idem.SetIdempotencyKey(context.Background(), "games:new:req-1",
		&GameFields{Key: "doom", Name: "Doom"}, time.Hour))

	resp, err := svc.CreateGame(context.Background(), &GameCreateRequest{
		Game: &GameFields{Key: "doom", Name: "Doom"},
	}, "req-1")
	require.NoError(t, err)
	assert.Equal(t, "Doom", resp.Name)
	assert.Empty(t, events.catalog)
}

func TestUpdateGameMissingIsNotFound(t *testing.T) {
	svc, mock, _ := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns))
	mock.ExpectRollback()

	_, err := svc.UpdateGame(context.Background(), &GameUpdateRequest{
		Game: &GameFields{ID: "missing", Name: "x"},
	})
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestUpdateGameUnknownPublisher(t *testing.T) {
	svc, mock, _ := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).WillReturnRows(doomRow())
	emptyLinks(mock)
	mock.ExpectQuery("FROM publishers WHERE id").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(storetest.PublisherColumns))
	mock.ExpectRollback()

	_, err := svc.UpdateGame(context.Background(), &GameUpdateRequest{
		Game:      &GameFields{ID: "id-1", Name: "Doom"},
		Publisher: strPtr("ghost"),
	})
	assert.True(t, IsValidation(err))
}

func TestUpdateGameReturnsSnapshotAndReconcilesPlatforms(t *testing.T) {
	svc, mock, events := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).
		WithArgs("id-1").
		WillReturnRows(doomRow())
	emptyLinks(mock)
	mock.ExpectQuery("FROM platforms WHERE id IN").
		WithArgs("p2").
		WillReturnRows(sqlmock.NewRows(storetest.PlatformColumns).AddRow("p2", "Xbox", 1))
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(doomRow())
	mock.ExpectExec("UPDATE games").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT platforms_id FROM game_platforms").
		WithArgs("doom").
		WillReturnRows(sqlmock.NewRows([]string{"platforms_id"}).AddRow("p1"))
	mock.ExpectExec("DELETE FROM game_platforms").WithArgs("doom", "p1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO game_platforms").WithArgs("doom", "p2").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	before, err := svc.UpdateGame(context.Background(), &GameUpdateRequest{
		Game:      &GameFields{ID: "id-1", Name: "Doom Eternal", UnitInStock: 9, Price: decimal.RequireFromString("59.99")},
		Platforms: []string{"p2"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Doom", before.Game.Name)
	assert.Equal(t, 5, before.Game.UnitInStock)
	assert.True(t, decimal.RequireFromString("19.99").Equal(before.Game.Price))
	assert.Equal(t, []string{models.EventTypeGameUpdated}, events.types())
	assert.Equal(t, "Doom Eternal", events.catalog[0].Name)
}

func TestUpdateGameConflict(t *testing.T) {
	svc, mock, events := newGameService(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE id = $1")).WillReturnRows(doomRow())
	emptyLinks(mock)
	mock.ExpectQuery("FOR UPDATE").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).
			AddRow("id-1", "doom", "Doom", nil, 5, "19.99", 0, nil, 2))
	mock.ExpectRollback()

	_, err := svc.UpdateGame(context.Background(), &GameUpdateRequest{
		Game: &GameFields{ID: "id-1", Name: "Doom"},
	})
	assert.True(t, errors.Is(err, store.ErrConcurrencyConflict))
	assert.Empty(t, events.catalog)
}

func TestDeleteGame(t *testing.T) {
	svc, mock, events := newGameService(t)

	mock.ExpectQuery("FROM games WHERE key").WillReturnRows(doomRow())
	mock.ExpectExec("DELETE FROM games").WillReturnResult(sqlmock.NewResult(0, 1))

	deleted, err := svc.DeleteGame(context.Background(), "doom")
	require.NoError(t, err)
	assert.True(t, deleted)
	assert.Equal(t, []string{models.EventTypeGameDeleted}, events.types())

	mock.ExpectQuery("FROM games WHERE key").WillReturnRows(sqlmock.NewRows(storetest.GameColumns))

	deleted, err = svc.DeleteGame(context.Background(), "doom")
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Len(t, events.catalog, 1)
}

func TestDownloadGame(t *testing.T) {
	svc, mock, _ := newGameService(t)
	svc.now = func() time.Time {
		return time.Date(2024, 5, 1, 15, 45, 0, 0, time.FixedZone("CEST", 2*60*60))
	}

	mock.ExpectQuery("FROM games WHERE key").WithArgs("doom").WillReturnRows(doomRow())
	emptyLinks(mock)

	file, err := svc.DownloadGame(context.Background(), "doom")
	require.NoError(t, err)

	assert.Equal(t, "Doom_2024-05-01-13:45.txt", file.FileName)
	assert.Equal(t, "This is an auto generated file for a game: Doom", string(file.FileContent))
}

func TestDownloadGameErrors(t *testing.T) {
	svc, mock, _ := newGameService(t)

	_, err := svc.DownloadGame(context.Background(), "")
	assert.True(t, IsValidation(err))

	mock.ExpectQuery("FROM games WHERE key").WillReturnRows(sqlmock.NewRows(storetest.GameColumns))

	_, err = svc.DownloadGame(context.Background(), "nope")
	assert.True(t, errors.Is(err, store.ErrNotFound))
}

func TestCountGamesCachesResult(t *testing.T) {
	svc, mock, _ := newGameService(t)
	cache := &fakeCountCache{}
	svc.cache = cache

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM games")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	count, err := svc.CountGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, time.Minute, cache.ttl)

	count, err = svc.CountGames(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, count)
	assert.Equal(t, 1, cache.sets)
}

func TestListGamesResolvesNames(t *testing.T) {
	svc, mock, _ := newGameService(t)

	mock.ExpectQuery("FROM games ORDER BY name").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).
			AddRow("id-1", "doom", "Doom", nil, 5, "19.99", 0, nil, 1).
			AddRow("id-2", "quake", "Quake", nil, 2, "9.99", 0, nil, 1))
	mock.ExpectQuery("FROM game_genres gg JOIN genres g").
		WithArgs("doom", "quake").
		WillReturnRows(sqlmock.NewRows([]string{"games_key", "genres_id", "name", "parent_genre_id", "version"}).
			AddRow("doom", "g1", "Shooter", nil, 1).
			AddRow("quake", "g1", "Shooter", nil, 1))
	mock.ExpectQuery("FROM game_platforms gp JOIN platforms p").
		WithArgs("doom", "quake").
		WillReturnRows(sqlmock.NewRows([]string{"games_key", "platforms_id", "type", "version"}).
			AddRow("doom", "p1", "PC", 1))

	games, err := svc.ListGames(context.Background())
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, []string{"Shooter"}, games[0].Genres)
	assert.Equal(t, []string{"PC"}, games[0].Platforms)
	assert.Nil(t, games[1].Platforms)
}

func TestCreateGameRejectsPriceOutsideColumn(t *testing.T) {
	svc, _, _ := newGameService(t)

	for _, price := range []string{"1000", "123456.789", "19.999", "-1"} {
		t.Run(price, func(t *testing.T) {
			_, err := svc.CreateGame(context.Background(), &GameCreateRequest{
				Game: &GameFields{Key: "doom", Name: "Doom", Price: decimal.RequireFromString(price)},
			}, "")
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
		})
	}
}

func TestValidatePriceAcceptsColumnRange(t *testing.T) {
	for _, price := range []string{"0", "999.99", "19.990", "0.5"} {
		assert.NoError(t, validatePrice(decimal.RequireFromString(price)), price)
	}
}

func TestUpdateGameRejectsPriceOutsideColumn(t *testing.T) {
	svc, _, _ := newGameService(t)

	_, err := svc.UpdateGame(context.Background(), &GameUpdateRequest{
		Game: &GameFields{ID: "id-1", Key: "doom", Name: "Doom", Price: decimal.RequireFromString("123456.789")},
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateGameRejectsReservedCountKey(t *testing.T) {
	svc, _, _ := newGameService(t)

	_, err := svc.CreateGame(context.Background(), &GameCreateRequest{
		Game: &GameFields{Key: "count", Name: "Count"},
	}, "")
	assert.True(t, IsValidation(err))
}

func TestCreateGameRejectsConcurrentDuplicate(t *testing.T) {
	svc, _, events := newGameService(t)
	idem := newFakeIdempotency()
	svc.idempotency = idem
	idem.locks["games:new:req-2"] = "other-request"

	_, err := svc.CreateGame(context.Background(), &GameCreateRequest{
		Game: &GameFields{Key: "doom", Name: "Doom"},
	}, "req-2")
	assert.ErrorIs(t, err, ErrRequestInProgress)
	assert.Empty(t, events.catalog)
	assert.Equal(t, "other-request", idem.locks["games:new:req-2"])
}
