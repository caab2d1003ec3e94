package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltbill/internal/bill/domain"
	customerdomain "github.com/smallbiznis/voltbill/internal/customer/domain"
	obsmetrics "github.com/smallbiznis/voltbill/internal/observability/metrics"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB          *gorm.DB
	Log         *zap.Logger
	GenID       *snowflake.Node
	Repo        domain.Repository
	CustomerSvc customerdomain.Service
	Metrics     *obsmetrics.Metrics `optional:"true"`
}

type Service struct {
	db          *gorm.DB
	log         *zap.Logger
	genID       *snowflake.Node
	repo        domain.Repository
	customerSvc customerdomain.Service
	metrics     *obsmetrics.Metrics
	now         func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:          p.DB,
		log:         p.Log.Named("bill.service"),
		genID:       p.GenID,
		repo:        p.Repo,
		customerSvc: p.CustomerSvc,
		metrics:     p.Metrics,
		now:         time.Now,
	}
}

// Derive creates the bill for the month of req.LastTimestamp unless one
// already exists. Existing bills are returned untouched.
func (s *Service) Derive(ctx context.Context, req domain.DeriveRequest) (domain.DeriveResult, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return domain.DeriveResult{}, domain.ErrInvalidCustomer
	}
	if req.LastTimestamp.IsZero() {
		return domain.DeriveResult{}, domain.ErrInvalidTimestamp
	}
	month := domain.BillingMonthOf(req.LastTimestamp)
	log := s.log.With(zap.String("customer_id", customerID), zap.String("billing_month", month.Format("2006-01")))

	customer, err := s.customerSvc.GetByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, customerdomain.ErrNotFound) {
			log.Warn("bill not derived, customer not found")
			s.metrics.RecordBillOutcome(ctx, string(domain.OutcomeCustomerNotFound))
			return domain.DeriveResult{Outcome: domain.OutcomeCustomerNotFound}, nil
		}
		return domain.DeriveResult{}, err
	}

	bill := domain.Bill{
		ID:                 s.genID.Generate(),
		CustomerID:         customer.CustomerID,
		Name:               customer.Name,
		Email:              customer.Email,
		BillingMonth:       month,
		BillingValue:       req.TotalValue,
		BillingConsumption: req.TotalConsumption,
		BatchID:            req.BatchID,
		CreatedAt:          s.now().UTC(),
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, &bill)
	if err != nil {
		return domain.DeriveResult{}, err
	}
	if inserted {
		log.Info("bill created", zap.String("bill_id", bill.ID.String()))
		s.metrics.RecordBillOutcome(ctx, string(domain.OutcomeCreated))
		return domain.DeriveResult{Outcome: domain.OutcomeCreated, Bill: &bill}, nil
	}

	existing, err := s.repo.FindByCustomerMonth(ctx, s.db, customer.CustomerID, month)
	if err != nil {
		return domain.DeriveResult{}, err
	}
	log.Info("bill already exists")
	s.metrics.RecordBillOutcome(ctx, string(domain.OutcomeAlreadyExists))
	return domain.DeriveResult{Outcome: domain.OutcomeAlreadyExists, Bill: existing}, nil
}

func (s *Service) List(ctx context.Context, req domain.ListBillRequest) (domain.ListBillResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	filter := domain.ListFilter{CustomerID: strings.TrimSpace(req.CustomerID)}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListBillResponse{}, err
		}
		before, err := snowflake.ParseString(cursor.ID)
		if err != nil {
			return domain.ListBillResponse{}, pagination.ErrInvalidPageToken
		}
		filter.Before = before
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListBillResponse{}, err
	}
	items, info := pagination.Trim(items, page.Limit(), func(b domain.Bill) pagination.Cursor {
		return pagination.Cursor{ID: b.ID.String(), CreatedAt: b.CreatedAt.Format(time.RFC3339)}
	})
	if items == nil {
		items = []domain.Bill{}
	}
	return domain.ListBillResponse{PageInfo: info, Bills: items}, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (domain.Bill, error) {
	billID, err := snowflake.ParseString(strings.TrimSpace(id))
	if err != nil || billID == 0 {
		return domain.Bill{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, billID)
	if err != nil {
		return domain.Bill{}, err
	}
	if item == nil {
		return domain.Bill{}, domain.ErrNotFound
	}
	return *item, nil
}

func (s *Service) GetByCustomerMonth(ctx context.Context, customerID string, month time.Time) (domain.Bill, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Bill{}, domain.ErrInvalidCustomer
	}

	item, err := s.repo.FindByCustomerMonth(ctx, s.db, customerID, domain.BillingMonthOf(month))
	if err != nil {
		return domain.Bill{}, err
	}
	if item == nil {
		return domain.Bill{}, domain.ErrNotFound
	}
	return *item, nil
}
