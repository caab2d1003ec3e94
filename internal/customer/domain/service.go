package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltbill/pkg/db/pagination"
)

type CreateCustomerRequest struct {
	CustomerID string
	Name       string
	Email      string
}

type ListCustomerRequest struct {
	PageToken string
	PageSize  int
	Email     string
	Name      string
}

// ListCustomerFilter matches Email exactly and Name case-insensitively
// anywhere in the customer name.
type ListCustomerFilter struct {
	Email string
	Name  string
	After string
}

type ListCustomerResponse struct {
	pagination.PageInfo
	Customers []Customer `json:"customers"`
}

type Service interface {
	Create(context.Context, CreateCustomerRequest) (Customer, error)
	List(context.Context, ListCustomerRequest) (ListCustomerResponse, error)
	GetByID(context.Context, string) (Customer, error)
}

var (
	ErrInvalidID     = errors.New("invalid_customer_id")
	ErrInvalidEmail  = errors.New("invalid_email")
	ErrAlreadyExists = errors.New("customer_already_exists")
	ErrNotFound      = errors.New("customer_not_found")
)
