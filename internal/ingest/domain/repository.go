package domain

import (
	"context"

	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID string
	Before     string
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, batch *UploadBatch) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]UploadBatch, error)
}
