// Package repository provides data access layer implementations and interfaces for database operations
package repository

import (
	"context"

	"github.com/amirphl/counter-api/models"
)

// RepositoryContext key for transaction in context
type contextKey string

const TxContextKey contextKey = "tx"

type Repository[T any] interface {
	ByID(ctx context.Context, id uint) (*T, error)
	Save(ctx context.Context, entity *T) error
}

// CountRecordRepository defines operations for count_table rows.
// Lookups return (nil, nil) when the row does not exist.
type CountRecordRepository interface {
	Repository[models.CountRecord]
	Latest(ctx context.Context) (*models.CountRecord, error)
	List(ctx context.Context, limit, offset int) ([]*models.CountRecord, error)
	Patch(ctx context.Context, id uint, patch models.CountRecordPatch) (*models.CountRecord, error)
	IncrementByID(ctx context.Context, id uint, by int64) (*models.CountRecord, error)
	DeleteByID(ctx context.Context, id uint) (bool, error)
}
