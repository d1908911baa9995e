// Package storetest builds a Store over go-sqlmock for tests in other
// packages.
package storetest

import (
	"testing"

	"gamestore/internal/store"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"
	sqlmock "gopkg.in/DATA-DOG/go-sqlmock.v1"
)

// New returns a Store backed by sqlmock. Unmet expectations fail the test
// at cleanup.
func New(t *testing.T) (*store.Store, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})

	return store.NewWithDB(sqlx.NewDb(db, "postgres")), mock
}

// Columns returned by the store's select lists.
var (
	GameColumns      = []string{"id", "key", "name", "description", "unit_in_stock", "price", "discontinued", "publisher_id", "version"}
	GenreColumns     = []string{"id", "name", "parent_genre_id", "version"}
	PlatformColumns  = []string{"id", "type", "version"}
	PublisherColumns = []string{"id", "company_name", "description", "home_page", "version"}
	OrderColumns     = []string{"id", "order_date", "creation_date", "paid_date", "customer_id"}
	DetailColumns    = []string{"seq", "id", "product_id", "product_name", "sum", "price", "quantity", "discount", "order_id"}
)
