package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"gamestore/internal/util"

	"github.com/jmoiron/sqlx"
)

// UnitOfWork bundles the repositories over one handle. Bound to the pool,
// every statement commits on its own; bound to a transaction, nothing is
// visible to others until Save.
type UnitOfWork struct {
	Games      *GameRepository
	Genres     *GenreRepository
	Platforms  *PlatformRepository
	Publishers *PublisherRepository
	Orders     *OrderRepository

	tx *sqlx.Tx
}

func newUnitOfWork(db DBTX, tx *sqlx.Tx) *UnitOfWork {
	return &UnitOfWork{
		Games:      &GameRepository{db: db},
		Genres:     &GenreRepository{db: db},
		Platforms:  &PlatformRepository{db: db},
		Publishers: &PublisherRepository{db: db},
		Orders:     &OrderRepository{db: db},
		tx:         tx,
	}
}

// UnitOfWork returns repositories bound to the connection pool.
func (s *Store) UnitOfWork() *UnitOfWork {
	return newUnitOfWork(s.db, nil)
}

// Begin opens a transaction and returns repositories bound to it.
func (s *Store) Begin(ctx context.Context) (*UnitOfWork, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	return newUnitOfWork(tx, tx), nil
}

// Save commits pending changes. It is a no-op for pool-bound units.
func (u *UnitOfWork) Save() error {
	if u.tx == nil {
		return nil
	}
	if err := u.tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// Rollback aborts the transaction. Safe to call after Save.
func (u *UnitOfWork) Rollback() error {
	if u.tx == nil {
		return nil
	}
	err := u.tx.Rollback()
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// InTx runs fn inside one transaction and commits if fn succeeds.
func (s *Store) InTx(ctx context.Context, operation string, fn func(uow *UnitOfWork) error) error {
	start := time.Now()
	defer func() {
		util.StoreQueryLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}()

	uow, err := s.Begin(ctx)
	if err != nil {
		return err
	}
	defer uow.Rollback()

	if err := fn(uow); err != nil {
		return err
	}

	return uow.Save()
}
