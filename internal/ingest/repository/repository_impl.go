package repository

import (
	"context"

	"github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, batch *domain.UploadBatch) error {
	return db.WithContext(ctx).Create(batch).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.UploadBatch, error) {
	var batches []domain.UploadBatch
	stmt := db.WithContext(ctx).Model(&domain.UploadBatch{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Before != "" {
		stmt = stmt.Where("id < ?", filter.Before)
	}
	err := stmt.
		Order("id desc").
		Limit(page.Limit() + 1).
		Find(&batches).Error
	if err != nil {
		return nil, err
	}
	return batches, nil
}
