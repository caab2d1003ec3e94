package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	"github.com/smallbiznis/voltbill/internal/clock"
	obsmetrics "github.com/smallbiznis/voltbill/internal/observability/metrics"
	"github.com/smallbiznis/voltbill/internal/providers/pdf"
	"github.com/smallbiznis/voltbill/internal/providers/storage"
	"github.com/smallbiznis/voltbill/internal/report/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	Clock    clock.Clock
	Provider pdf.Provider
	Store    storage.Store
	BillSvc  billdomain.Service
	Metrics  *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	clock    clock.Clock
	provider pdf.Provider
	store    storage.Store
	billSvc  billdomain.Service
	metrics  *obsmetrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:      p.Log.Named("report.service"),
		clock:    p.Clock,
		provider: p.Provider,
		store:    p.Store,
		billSvc:  p.BillSvc,
		metrics:  p.Metrics,
	}
}

// Render lays out, prints and stores the bill report described by req.
func (s *Service) Render(ctx context.Context, req domain.RenderRequest) (domain.Report, error) {
	doc, monthKey, err := s.document(req)
	if err != nil {
		return domain.Report{}, err
	}

	start := time.Now()
	data, err := s.provider.RenderBill(ctx, doc)
	if err != nil {
		return domain.Report{}, fmt.Errorf("render bill report: %w", err)
	}
	s.metrics.RecordReportRendered(ctx, s.provider.Engine(), time.Since(start))

	filename := domain.Filename(req.CustomerID, monthKey)
	obj, err := s.store.Put(ctx, filename, data, domain.ContentType)
	if err != nil {
		return domain.Report{}, fmt.Errorf("store bill report: %w", err)
	}

	s.log.Info("bill report rendered",
		zap.String("customer_id", req.CustomerID),
		zap.String("billing_month", monthKey),
		zap.String("engine", s.provider.Engine()),
		zap.String("location", obj.Location),
	)
	return domain.Report{
		Filename:    filename,
		ContentType: domain.ContentType,
		Engine:      s.provider.Engine(),
		Object:      obj,
		Data:        data,
	}, nil
}

func (s *Service) RenderBill(ctx context.Context, billID string) (domain.Report, error) {
	bill, err := s.billSvc.GetByID(ctx, billID)
	if err != nil {
		return domain.Report{}, err
	}
	return s.Render(ctx, requestFromBill(bill))
}

func (s *Service) Preview(ctx context.Context, billID string) ([]byte, error) {
	bill, err := s.billSvc.GetByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	doc, _, err := s.document(requestFromBill(bill))
	if err != nil {
		return nil, err
	}
	return pdf.RenderHTML(doc)
}

func (s *Service) document(req domain.RenderRequest) (pdf.BillDocument, string, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return pdf.BillDocument{}, "", domain.ErrInvalidCustomer
	}
	monthKey, err := domain.MonthKey(req.BillingMonth)
	if err != nil {
		return pdf.BillDocument{}, "", err
	}
	month, err := domain.FormatBillingMonth(monthKey)
	if err != nil {
		return pdf.BillDocument{}, "", err
	}

	return pdf.BillDocument{
		Title:            domain.Title,
		CustomerID:       req.CustomerID,
		Name:             req.Name,
		Email:            req.Email,
		BillingMonth:     month,
		GeneratedDate:    s.clock.Now().Format("2006-01-02"),
		TotalConsumption: domain.FormatConsumption(req.BillingConsumption),
		TotalValue:       domain.FormatValue(req.BillingValue),
	}, monthKey, nil
}

func requestFromBill(bill billdomain.Bill) domain.RenderRequest {
	var name string
	if bill.Name != nil {
		name = *bill.Name
	}
	return domain.RenderRequest{
		CustomerID:         bill.CustomerID,
		Name:               name,
		Email:              bill.Email,
		BillingMonth:       bill.MonthKey(),
		BillingConsumption: bill.BillingConsumption,
		BillingValue:       bill.BillingValue,
	}
}
