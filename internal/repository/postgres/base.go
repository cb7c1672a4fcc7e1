package postgres

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// BaseRepository provides common functionality for all repositories
type BaseRepository struct {
	db *sqlx.DB
}

// NewBaseRepository creates a new base repository
func NewBaseRepository(db *sqlx.DB) BaseRepository {
	return BaseRepository{db: db}
}

// GetDB returns the database instance
func (r *BaseRepository) GetDB() *sqlx.DB {
	return r.db
}

// WithTx executes a function within a transaction. The transaction is
// released on every exit path: rollback on error or panic, commit on
// success.
func (r *BaseRepository) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

// exists runs an EXISTS query with the given predicate.
func (r *BaseRepository) exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var found bool
	if err := r.db.GetContext(ctx, &found, query, args...); err != nil {
		return false, err
	}
	return found, nil
}
