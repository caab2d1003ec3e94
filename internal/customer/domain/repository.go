package domain

import (
	"context"

	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertIfAbsent reports false when a customer with the same id exists.
	InsertIfAbsent(ctx context.Context, db *gorm.DB, customer *Customer) (bool, error)
	FindByID(ctx context.Context, db *gorm.DB, customerID string) (*Customer, error)
	List(ctx context.Context, db *gorm.DB, filter ListCustomerFilter, page pagination.Pagination) ([]Customer, error)
}
