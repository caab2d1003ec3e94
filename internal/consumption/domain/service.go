package domain

import (
	"context"
	"errors"
	"time"
)

type CreateRequest struct {
	CustomerID  string
	Timestamp   time.Time
	Consumption float64
	Price       float64
}

type BulkCreateRequest struct {
	BatchID string
	Records []ConsumptionRecord
}

type ListRequest struct {
	CustomerID string
	From       *time.Time
	To         *time.Time
	Limit      int
}

type Service interface {
	Create(context.Context, CreateRequest) (ConsumptionRecord, error)
	BulkCreate(context.Context, BulkCreateRequest) (BulkResult, error)
	List(context.Context, ListRequest) ([]ConsumptionRecord, error)
}

var (
	ErrInvalidCustomer  = errors.New("invalid_customer_id")
	ErrInvalidTimestamp = errors.New("invalid_timestamp")
	ErrInvalidValue     = errors.New("invalid_value")
	ErrConflict         = errors.New("consumption_already_exists")
)
