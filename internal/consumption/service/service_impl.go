package service

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/voltbill/internal/config"
	"github.com/smallbiznis/voltbill/internal/consumption/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultChunkSize = 500

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
	Cfg   config.Config `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	chunkSize int
	now       func() time.Time
}

func New(p Params) domain.Service {
	chunkSize := p.Cfg.Ingest.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("consumption.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		chunkSize: chunkSize,
		now:       time.Now,
	}
}

func (s *Service) Create(ctx context.Context, req domain.CreateRequest) (domain.ConsumptionRecord, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return domain.ConsumptionRecord{}, domain.ErrInvalidCustomer
	}
	if req.Timestamp.IsZero() {
		return domain.ConsumptionRecord{}, domain.ErrInvalidTimestamp
	}
	if !finite(req.Consumption) || !finite(req.Price) {
		return domain.ConsumptionRecord{}, domain.ErrInvalidValue
	}

	record := domain.ConsumptionRecord{
		ID:          s.genID.Generate(),
		Timestamp:   req.Timestamp.UTC(),
		Consumption: req.Consumption,
		Price:       req.Price,
		CustomerID:  customerID,
		CreatedAt:   s.now().UTC(),
	}

	inserted, err := s.repo.InsertIfAbsent(ctx, s.db, &record)
	if err != nil {
		return domain.ConsumptionRecord{}, err
	}
	if !inserted {
		return domain.ConsumptionRecord{}, domain.ErrConflict
	}
	return record, nil
}

// BulkCreate inserts records chunk by chunk. A failing chunk is logged and
// counted as failed; the remaining chunks are still attempted.
func (s *Service) BulkCreate(ctx context.Context, req domain.BulkCreateRequest) (domain.BulkResult, error) {
	var result domain.BulkResult
	if len(req.Records) == 0 {
		return result, nil
	}

	now := s.now().UTC()
	records := make([]domain.ConsumptionRecord, len(req.Records))
	for i, rec := range req.Records {
		rec.ID = s.genID.Generate()
		rec.Timestamp = rec.Timestamp.UTC()
		rec.BatchID = req.BatchID
		rec.CreatedAt = now
		records[i] = rec
	}

	for start := 0; start < len(records); start += s.chunkSize {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		end := min(start+s.chunkSize, len(records))
		chunk := records[start:end]

		inserted, err := s.repo.InsertBatch(ctx, s.db, chunk)
		if err != nil {
			s.log.Error("bulk insert chunk failed",
				zap.String("batch_id", req.BatchID),
				zap.Int("offset", start),
				zap.Int("rows", len(chunk)),
				zap.Error(err),
			)
			result.Failed += len(chunk)
			continue
		}
		result.Inserted += int(inserted)
		result.Duplicates += len(chunk) - int(inserted)
	}

	s.log.Info("bulk insert finished",
		zap.String("batch_id", req.BatchID),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}

func (s *Service) List(ctx context.Context, req domain.ListRequest) ([]domain.ConsumptionRecord, error) {
	customerID := strings.TrimSpace(req.CustomerID)
	if customerID == "" {
		return nil, domain.ErrInvalidCustomer
	}
	limit := req.Limit
	if limit <= 0 || limit > 5000 {
		limit = 5000
	}
	records, err := s.repo.List(ctx, s.db, domain.ListFilter{
		CustomerID: customerID,
		From:       req.From,
		To:         req.To,
		Limit:      limit,
	})
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []domain.ConsumptionRecord{}
	}
	return records, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
