package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Repository interface {
	// InsertIfAbsent reports false when (customer_id, read_at) already exists.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, record *ConsumptionRecord) (bool, error)
	// InsertBatch inserts records in one statement, skipping existing
	// (customer_id, read_at) pairs, and returns the number inserted.
	InsertBatch(ctx context.Context, db *gorm.DB, records []ConsumptionRecord) (int64, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]ConsumptionRecord, error)
}
