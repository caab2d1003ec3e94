package repository

import (
	"context"

	"github.com/smallbiznis/voltbill/internal/consumption/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

var onDuplicateReading = clause.OnConflict{
	Columns:   []clause.Column{{Name: "customer_id"}, {Name: "read_at"}},
	DoNothing: true,
}

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, record *domain.ConsumptionRecord) (bool, error) {
	result := db.WithContext(ctx).Clauses(onDuplicateReading).Create(record)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) InsertBatch(ctx context.Context, db *gorm.DB, records []domain.ConsumptionRecord) (int64, error) {
	if len(records) == 0 {
		return 0, nil
	}
	result := db.WithContext(ctx).Clauses(onDuplicateReading).Create(&records)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]domain.ConsumptionRecord, error) {
	var records []domain.ConsumptionRecord
	stmt := db.WithContext(ctx).
		Model(&domain.ConsumptionRecord{}).
		Where("customer_id = ?", filter.CustomerID)
	if filter.From != nil {
		stmt = stmt.Where("read_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("read_at < ?", *filter.To)
	}
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit)
	}
	if err := stmt.Order("read_at asc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
