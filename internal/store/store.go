// Package store holds the persistence adapters. Transactions can live in
// MongoDB or in the SQLite database next to the users table; both satisfy
// TransactionStore.
package store

import (
	"context"
	"errors"

	"finance-tracker/internal/models"
)

// ErrNotFound is returned when a record with the given ID does not exist.
// Malformed IDs are reported the same way.
var ErrNotFound = errors.New("record not found")

// ErrDuplicate is returned when a unique column already holds the value.
var ErrDuplicate = errors.New("duplicate record")

type TransactionStore interface {
	Insert(ctx context.Context, t *models.Transaction) error
	// FindByOwner returns every transaction of owner, newest date first.
	FindByOwner(ctx context.Context, owner string) ([]models.Transaction, error)
	FindByID(ctx context.Context, id string) (*models.Transaction, error)
	UpdateByID(ctx context.Context, id string, f models.TransactionFields) (*models.Transaction, error)
	DeleteByID(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
