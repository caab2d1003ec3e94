package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltbill/internal/bill/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

const billColumns = `id, customer_id, name, email, billing_month, billing_value, billing_consumption, batch_id, created_at`

func (r *repo) InsertIfAbsent(ctx context.Context, db *gorm.DB, bill *domain.Bill) (bool, error) {
	result := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "customer_id"}, {Name: "billing_month"}},
			DoNothing: true,
		}).
		Create(bill)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByCustomerMonth(ctx context.Context, db *gorm.DB, customerID string, month time.Time) (*domain.Bill, error) {
	var bills []domain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE customer_id = ? AND billing_month = ?`,
		customerID,
		month,
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, nil
	}
	return &bills[0], nil
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Bill, error) {
	var bills []domain.Bill
	err := db.WithContext(ctx).Raw(
		`SELECT `+billColumns+` FROM bills WHERE id = ?`,
		id,
	).Scan(&bills).Error
	if err != nil {
		return nil, err
	}
	if len(bills) == 0 {
		return nil, nil
	}
	return &bills[0], nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter, page pagination.Pagination) ([]domain.Bill, error) {
	var bills []domain.Bill
	stmt := db.WithContext(ctx).Model(&domain.Bill{})
	if filter.CustomerID != "" {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.Before != 0 {
		stmt = stmt.Where("id < ?", filter.Before)
	}
	err := stmt.
		Order("id desc").
		Limit(page.Limit() + 1).
		Find(&bills).Error
	if err != nil {
		return nil, err
	}
	return bills, nil
}
