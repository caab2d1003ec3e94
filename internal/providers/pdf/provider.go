package pdf

import (
	"context"
	"errors"
)

// BillDocument is the fully formatted content of a bill report.
type BillDocument struct {
	Title            string
	CustomerID       string
	Name             string
	Email            string
	BillingMonth     string
	GeneratedDate    string
	TotalConsumption string
	TotalValue       string
}

type Provider interface {
	Engine() string
	RenderBill(ctx context.Context, doc BillDocument) ([]byte, error)
}

var ErrEmptyDocument = errors.New("empty_document")
