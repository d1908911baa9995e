package service

import (
	"context"
	"regexp"
	"testing"
	"time"

	"gamestore/internal/store/storetest"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

func TestCreateOrderBuildsOneLinePerGame(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewOrderService(st, events, nil, CacheConfig{})
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE key = $1")).
		WithArgs("doom").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).AddRow("id-1", "doom", "Doom", nil, 5, "19.99", 0, nil, 1))
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE key = $1")).
		WithArgs("quake").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).AddRow("id-2", "quake", "Quake", nil, 2, "10.01", 0, nil, 1))
	mock.ExpectExec("INSERT INTO customers").WithArgs("c1").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_details").WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectQuery("INSERT INTO order_details").WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(2))
	mock.ExpectCommit()

	resp, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{
		CustomerID: strPtr("c1"),
		Games:      []string{"doom", "quake"},
	}, "")
	require.NoError(t, err)

	assert.Equal(t, now, resp.OrderDate)
	assert.Nil(t, resp.PaidDate)
	require.Len(t, resp.OrderDetails, 2)
	assert.Equal(t, 1, resp.OrderDetails[0].Quantity)
	assert.True(t, decimal.Zero.Equal(resp.Discount))
	assert.True(t, decimal.RequireFromString("30.00").Equal(resp.Sum), resp.Sum.String())

	require.Len(t, events.orders, 1)
	assert.Equal(t, resp.ID, events.orders[0].OrderID)
	assert.Equal(t, "c1", events.orders[0].CustomerID)
	assert.Len(t, events.orders[0].Items, 2)
}

func TestCreateOrderUnknownGame(t *testing.T) {
	st, mock := storetest.New(t)
	events := &fakeEvents{}
	svc := NewOrderService(st, events, nil, CacheConfig{})

	mock.ExpectBegin()
	mock.ExpectQuery("FROM games WHERE key").WillReturnRows(sqlmock.NewRows(storetest.GameColumns))
	mock.ExpectRollback()

	_, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{Games: []string{"nope"}}, "")
	assert.True(t, IsValidation(err))
	assert.Empty(t, events.orders)

	_, err = svc.CreateOrder(context.Background(), &OrderCreateRequest{}, "")
	assert.True(t, IsValidation(err))
}

func TestCreateOrderIdempotent(t *testing.T) {
	st, _ := storetest.New(t)
	idem := newFakeIdempotency()
	svc := NewOrderService(st, nil, idem, CacheConfig{IdempotencyTTL: time.Hour})

	require.NoError(t, idem.SetIdempotencyKey(context.Background(), "orders:new:req-9",
		&OrderCreateResponse{ID: "o-previous"}, time.Hour))

	resp, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{Games: []string{"doom"}}, "req-9")
	require.NoError(t, err)
	assert.Equal(t, "o-previous", resp.ID)
}

func TestBasketOrdersTakeFirstLine(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewOrderService(st, nil, nil, CacheConfig{})
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE paid_date IS NULL")).
		WillReturnRows(sqlmock.NewRows(storetest.OrderColumns).
			AddRow("o1", now, now, nil, nil).
			AddRow("o2", now, now, nil, nil))
	mock.ExpectQuery("FROM order_details WHERE order_id IN").
		WillReturnRows(sqlmock.NewRows(storetest.DetailColumns).
			AddRow(1, "d1", "w3", "Witcher 3", "39.99", "39.99", 1, "0", "o1").
			AddRow(2, "d2", "cp", "Cyberpunk", "59.99", "59.99", 1, "0", "o1").
			AddRow(3, "d3", "doom", "Doom", "19.99", "19.99", 1, "0", "o1"))

	basket, err := svc.BasketOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, basket, 1)

	assert.Equal(t, "o1", basket[0].ID)
	assert.Equal(t, "w3", *basket[0].ProductID)
	assert.Equal(t, "Witcher 3", *basket[0].ProductName)
	assert.True(t, decimal.RequireFromString("39.99").Equal(basket[0].Sum))
}

func TestPaidOrdersAndDetails(t *testing.T) {
	st, mock := storetest.New(t)
	svc := NewOrderService(st, nil, nil, CacheConfig{})
	now := time.Now().UTC()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE paid_date IS NOT NULL")).
		WillReturnRows(sqlmock.NewRows(storetest.OrderColumns).AddRow("o1", now, now, now, "c1"))
	mock.ExpectQuery("FROM order_details WHERE order_id IN").
		WillReturnRows(sqlmock.NewRows(storetest.DetailColumns).
			AddRow(1, "d1", "w3", "Witcher 3", "39.99", "39.99", 1, "0", "o1"))

	paid, err := svc.PaidOrders(context.Background())
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "c1", *paid[0].CustomerID)
	require.Len(t, paid[0].OrderDetails, 1)
	assert.Equal(t, "d1", paid[0].OrderDetails[0].ID)

	mock.ExpectQuery("FROM orders WHERE id").
		WillReturnRows(sqlmock.NewRows(storetest.OrderColumns))

	details, err := svc.OrderDetails(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, details)
}

func TestCreateOrderRejectsConcurrentDuplicate(t *testing.T) {
	st, _ := storetest.New(t)
	idem := newFakeIdempotency()
	events := &fakeEvents{}
	svc := NewOrderService(st, events, idem, CacheConfig{IdempotencyTTL: time.Hour})
	idem.locks["orders:new:req-7"] = "in-flight"

	_, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{Games: []string{"doom"}}, "req-7")
	assert.ErrorIs(t, err, ErrRequestInProgress)
	assert.Empty(t, events.orders)
}

func TestCreateOrderHoldsLockUntilResponseIsStored(t *testing.T) {
	st, mock := storetest.New(t)
	idem := newFakeIdempotency()
	svc := NewOrderService(st, nil, idem, CacheConfig{IdempotencyTTL: time.Hour})

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("FROM games WHERE key = $1")).
		WithArgs("doom").
		WillReturnRows(sqlmock.NewRows(storetest.GameColumns).AddRow("id-1", "doom", "Doom", nil, 5, "19.99", 0, nil, 1))
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("INSERT INTO order_details").WillReturnRows(sqlmock.NewRows([]string{"seq"}).AddRow(1))
	mock.ExpectCommit()

	first, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{Games: []string{"doom"}}, "req-8")
	require.NoError(t, err)

	assert.Equal(t, []string{"orders:new:req-8"}, idem.acquired)
	assert.Empty(t, idem.locks)
	assert.Contains(t, idem.values, "orders:new:req-8")

	// A retry after completion replays without touching the database.
	second, err := svc.CreateOrder(context.Background(), &OrderCreateRequest{Games: []string{"doom"}}, "req-8")
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Len(t, idem.acquired, 1)
}
