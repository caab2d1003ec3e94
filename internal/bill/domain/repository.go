package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type ListFilter struct {
	CustomerID string
	Before     snowflake.ID
}

type Repository interface {
	// InsertIfAbsent reports false when a bill for (customer_id, billing_month) exists.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, bill *Bill) (bool, error)
	FindByCustomerMonth(ctx context.Context, db *gorm.DB, customerID string, month time.Time) (*Bill, error)
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Bill, error)
	List(ctx context.Context, db *gorm.DB, filter ListFilter, page pagination.Pagination) ([]Bill, error)
}
