package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	consumptiondomain "github.com/smallbiznis/voltbill/internal/consumption/domain"
	"github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/internal/ingest/parser"
	obsmetrics "github.com/smallbiznis/voltbill/internal/observability/metrics"
	"github.com/smallbiznis/voltbill/internal/ratelimit"
	"github.com/smallbiznis/voltbill/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// maxStoredIssues bounds the issues persisted per batch; counts stay exact.
const maxStoredIssues = 100

type Params struct {
	fx.In

	DB             *gorm.DB
	Log            *zap.Logger
	Repo           domain.Repository
	Parser         *parser.Parser
	ConsumptionSvc consumptiondomain.Service
	BillSvc        billdomain.Service
	Metrics        *obsmetrics.Metrics      `optional:"true"`
	Limiter        *ratelimit.UploadLimiter `optional:"true"`
}

type Service struct {
	db             *gorm.DB
	log            *zap.Logger
	repo           domain.Repository
	parser         *parser.Parser
	consumptionSvc consumptiondomain.Service
	billSvc        billdomain.Service
	metrics        *obsmetrics.Metrics
	limiter        *ratelimit.UploadLimiter
	now            func() time.Time
}

func New(p Params) domain.Service {
	return &Service{
		db:             p.DB,
		log:            p.Log.Named("ingest.service"),
		repo:           p.Repo,
		parser:         p.Parser,
		consumptionSvc: p.ConsumptionSvc,
		billSvc:        p.BillSvc,
		metrics:        p.Metrics,
		limiter:        p.Limiter,
		now:            time.Now,
	}
}

// Upload runs one export through parsing, bulk insertion and bill derivation.
func (s *Service) Upload(ctx context.Context, req domain.UploadRequest) (domain.UploadResult, error) {
	customerID, err := domain.CustomerIDFromFilename(req.Filename)
	if err != nil {
		s.metrics.RecordUpload(ctx, "rejected")
		return domain.UploadResult{}, err
	}

	release, ok, err := s.limiter.LockCustomer(ctx, customerID)
	if err != nil {
		s.log.Warn("upload lock unavailable", zap.String("customer_id", customerID), zap.Error(err))
	} else if !ok {
		s.metrics.RecordUpload(ctx, "rejected")
		return domain.UploadResult{}, domain.ErrUploadInProgress
	}
	defer release()

	parsed, err := s.parser.Parse(req.Body)
	if err != nil {
		s.metrics.RecordUpload(ctx, "rejected")
		return domain.UploadResult{}, err
	}
	s.metrics.RecordIngestRows(ctx, "skipped", parsed.Skipped)
	s.metrics.RecordIngestRows(ctx, "invalid", parsed.Invalid)
	if len(parsed.Rows) == 0 {
		s.metrics.RecordUpload(ctx, "rejected")
		return domain.UploadResult{}, domain.ErrNoValidRows
	}

	batchID := ulid.Make().String()
	log := s.log.With(
		zap.String("batch_id", batchID),
		zap.String("customer_id", customerID),
	)

	records := make([]consumptiondomain.ConsumptionRecord, 0, len(parsed.Rows))
	for _, row := range parsed.Rows {
		records = append(records, consumptiondomain.ConsumptionRecord{
			CustomerID:  customerID,
			Timestamp:   row.Timestamp,
			Consumption: row.Consumption.InexactFloat64(),
			Price:       row.Price.InexactFloat64(),
		})
	}
	bulk, err := s.consumptionSvc.BulkCreate(ctx, consumptiondomain.BulkCreateRequest{
		BatchID: batchID,
		Records: records,
	})
	if err != nil {
		return domain.UploadResult{}, err
	}
	s.metrics.RecordIngestRows(ctx, "inserted", bulk.Inserted)
	s.metrics.RecordIngestRows(ctx, "duplicate", bulk.Duplicates)
	s.metrics.RecordIngestRows(ctx, "failed", bulk.Failed)

	totalConsumption := parsed.TotalConsumption.InexactFloat64()
	totalPrice := parsed.TotalPrice.InexactFloat64()
	derived, err := s.billSvc.Derive(ctx, billdomain.DeriveRequest{
		CustomerID:       customerID,
		BatchID:          batchID,
		LastTimestamp:    parsed.LastTimestamp,
		TotalValue:       totalPrice,
		TotalConsumption: totalConsumption,
	})
	if err != nil {
		return domain.UploadResult{}, err
	}

	issues := parsed.Issues
	if issues == nil {
		issues = []domain.RowIssue{}
	}
	result := domain.UploadResult{
		BatchID:          batchID,
		CustomerID:       customerID,
		Filename:         filenameOf(req.Filename),
		Parsed:           len(parsed.Rows),
		Skipped:          parsed.Skipped,
		Invalid:          parsed.Invalid,
		Inserted:         bulk.Inserted,
		Duplicates:       bulk.Duplicates,
		Failed:           bulk.Failed,
		TotalConsumption: totalConsumption,
		TotalPrice:       totalPrice,
		BillingMonth:     billdomain.BillingMonthOf(parsed.LastTimestamp).Format("2006-01"),
		BillOutcome:      derived.Outcome,
		Bill:             derived.Bill,
		Issues:           issues,
	}

	if err := s.record(ctx, result); err != nil {
		log.Error("failed to record upload batch", zap.Error(err))
	}
	s.metrics.RecordUpload(ctx, string(derived.Outcome))

	log.Info("upload processed",
		zap.Int("parsed", result.Parsed),
		zap.Int("skipped", result.Skipped),
		zap.Int("invalid", result.Invalid),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("failed", result.Failed),
		zap.String("billing_month", result.BillingMonth),
		zap.String("bill_outcome", string(result.BillOutcome)),
	)
	return result, nil
}

func (s *Service) record(ctx context.Context, result domain.UploadResult) error {
	stored := result.Issues
	if len(stored) > maxStoredIssues {
		stored = stored[:maxStoredIssues]
	}
	issues, err := json.Marshal(stored)
	if err != nil {
		return err
	}

	batch := domain.UploadBatch{
		ID:               result.BatchID,
		CustomerID:       result.CustomerID,
		Filename:         result.Filename,
		Parsed:           result.Parsed,
		Skipped:          result.Skipped,
		Invalid:          result.Invalid,
		Inserted:         result.Inserted,
		Duplicates:       result.Duplicates,
		Failed:           result.Failed,
		TotalConsumption: result.TotalConsumption,
		TotalPrice:       result.TotalPrice,
		BillOutcome:      string(result.BillOutcome),
		Issues:           datatypes.JSON(issues),
		CreatedAt:        s.now().UTC(),
	}
	if result.Bill != nil {
		id := result.Bill.ID
		batch.BillID = &id
	}
	return s.repo.Insert(ctx, s.db, &batch)
}

func (s *Service) List(ctx context.Context, req domain.ListUploadRequest) (domain.ListUploadResponse, error) {
	page := pagination.Pagination{PageToken: req.PageToken, PageSize: req.PageSize}
	filter := domain.ListFilter{CustomerID: strings.TrimSpace(req.CustomerID)}

	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return domain.ListUploadResponse{}, err
		}
		filter.Before = cursor.ID
	}

	items, err := s.repo.List(ctx, s.db, filter, page)
	if err != nil {
		return domain.ListUploadResponse{}, err
	}
	items, info := pagination.Trim(items, page.Limit(), func(b domain.UploadBatch) pagination.Cursor {
		return pagination.Cursor{ID: b.ID, CreatedAt: b.CreatedAt.Format(time.RFC3339)}
	})
	if items == nil {
		items = []domain.UploadBatch{}
	}
	return domain.ListUploadResponse{PageInfo: info, Uploads: items}, nil
}

func filenameOf(name string) string {
	name = strings.ReplaceAll(strings.TrimSpace(name), "\\", "/")
	if i := strings.LastIndex(name, "/"); i >= 0 {
		return name[i+1:]
	}
	return name
}
