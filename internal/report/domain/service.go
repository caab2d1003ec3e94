package domain

import (
	"context"
	"errors"

	"github.com/smallbiznis/voltbill/internal/providers/storage"
)

const (
	Title       = "Electricity Bill Report"
	ContentType = "application/pdf"
)

type RenderRequest struct {
	CustomerID         string  `json:"customer_id" binding:"required"`
	Name               string  `json:"name"`
	Email              string  `json:"email" binding:"omitempty,email"`
	BillingMonth       string  `json:"billing_month" binding:"required"`
	BillingConsumption float64 `json:"billing_consumption"`
	BillingValue       float64 `json:"billing_value"`
}

// Report is a rendered and stored bill document.
type Report struct {
	Filename    string         `json:"filename"`
	ContentType string         `json:"content_type"`
	Engine      string         `json:"engine"`
	Object      storage.Object `json:"object"`
	Data        []byte         `json:"-"`
}

type Service interface {
	Render(context.Context, RenderRequest) (Report, error)
	RenderBill(ctx context.Context, billID string) (Report, error)
	Preview(ctx context.Context, billID string) ([]byte, error)
}

var (
	ErrInvalidBillingMonth = errors.New("invalid_billing_month")
	ErrInvalidCustomer     = errors.New("invalid_customer_id")
)
