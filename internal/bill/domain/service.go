package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

type DeriveRequest struct {
	CustomerID       string
	BatchID          string
	LastTimestamp    time.Time
	TotalValue       float64
	TotalConsumption float64
}

type DeriveResult struct {
	Outcome Outcome `json:"outcome"`
	Bill    *Bill   `json:"bill,omitempty"`
}

type ListBillRequest struct {
	CustomerID string
	PageToken  string
	PageSize   int
}

type ListBillResponse struct {
	pagination.PageInfo
	Bills []Bill `json:"bills"`
}

type Service interface {
	Derive(context.Context, DeriveRequest) (DeriveResult, error)
	List(context.Context, ListBillRequest) (ListBillResponse, error)
	GetByID(context.Context, string) (Bill, error)
	GetByCustomerMonth(ctx context.Context, customerID string, month time.Time) (Bill, error)
}

var (
	ErrInvalidID        = errors.New("invalid_bill_id")
	ErrInvalidCustomer  = errors.New("invalid_customer_id")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrNotFound         = errors.New("bill_not_found")
)
