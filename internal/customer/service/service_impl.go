package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/smallbiznis/voltbill/internal/customer/domain"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var validate = validator.New()

type Params struct {
	fx.In

	DB   *gorm.DB
	Log  *zap.Logger
	Repo domain.Repository
}

type Service struct {
	db   *gorm.DB
	log  *zap.Logger
	repo domain.Repository
	now  func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:   p.DB,
		log:  p.Log.Named("customer.service"),
		repo: p.Repo,
		now:  time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateCustomerRequest) (domain.Customer, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" || len(customerID) > 64 {
		return domain.Customer{}, domain.ErrInvalidID
	}

	email := strings.TrimSpace(req.Email)
	if err := validate.Var(email, "required,email"); err != nil {
		return domain.Customer{}, domain.ErrInvalidEmail
	}

	customer := domain.Customer{
		CustomerID: customerID,
		Email:      email,
		CreatedAt:  s.now().UTC(),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		customer.Name = &name
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, &customer)
	if err != nil {
		return domain.Customer{}, err
	}
	if !inserted {
		return domain.Customer{}, domain.ErrAlreadyExists
	}

	s.log.Info("customer created", zap.String("customer_id", customerID))
	return customer, nil
}

func (s *Service) List(ctx context.Context, req domain.ListCustomerRequest) (domain.ListCustomerResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	filter := domain.ListCustomerFilter{
		Email: strings.TrimSpace(req.Email),
		Name:  strings.TrimSpace(req.Name),
	}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListCustomerResponse{}, err
		}
		filter.After = cursor.ID
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListCustomerResponse{}, err
	}

	items, info := pagination.Trim(items, page.Limit(), func(c domain.Customer) pagination.Cursor {
		return pagination.Cursor{ID: c.CustomerID}
	})
	if items == nil {
		items = []domain.Customer{}
	}
	return domain.ListCustomerResponse{PageInfo: info, Customers: items}, nil
}

func (s *Service) GetByID(ctx context.Context, customerID string) (domain.Customer, error) {
	customerID = strings.TrimSpace(customerID)
	if customerID == "" {
		return domain.Customer{}, domain.ErrInvalidID
	}

	item, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		return domain.Customer{}, err
	}
	if item == nil {
		return domain.Customer{}, domain.ErrNotFound
	}
	return *item, nil
}
