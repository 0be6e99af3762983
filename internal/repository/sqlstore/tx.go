package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"goldloan-backend/internal/logger"
	"goldloan-backend/internal/repository"
)

type txManager struct {
	db *sqlx.DB
}

func NewTxManager(db *sqlx.DB) repository.TxManager {
	return &txManager{db: db}
}

// WithinTx commits when fn returns nil and rolls back otherwise. A panic in fn
// rolls back and is re-raised.
func (m *txManager) WithinTx(ctx context.Context, fn func(repo repository.CustomerRepository) error) (err error) {
	tx, err := m.db.BeginTxx(ctx, nil)
	if err != nil {
		return persistence("begin transaction", err)
	}

	defer func() {
		if p := recover(); p != nil {
			rollback(tx)
			panic(p)
		}
	}()

	if err = fn(NewCustomerRepository(tx)); err != nil {
		rollback(tx)
		return err
	}
	if err = tx.Commit(); err != nil {
		return persistence("commit transaction", fmt.Errorf("failed to commit: %w", err))
	}
	return nil
}

func rollback(tx *sqlx.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		logger.Error("Error rolling back transaction", "error", err)
	}
}
