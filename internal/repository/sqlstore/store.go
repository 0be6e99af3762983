package sqlstore

import (
	"github.com/jmoiron/sqlx"

	"goldloan-backend/internal/repository"
)

type Store struct {
	repository.CustomerRepository
	repository.NotificationRepository
	repository.TxManager
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{
		CustomerRepository:     NewCustomerRepository(db),
		NotificationRepository: NewNotificationRepository(db),
		TxManager:              NewTxManager(db),
	}
}
