package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/smallbiznis/voltbill/internal/config"
	"github.com/smallbiznis/voltbill/internal/consumption/domain"
	"github.com/smallbiznis/voltbill/internal/consumption/repository"
	"github.com/smallbiznis/voltbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T, chunkSize int) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedCustomer(t, db, "ABC123", "Ana", "ana@example.com")

	cfg := config.Config{}
	cfg.Ingest.ChunkSize = chunkSize
	svc := New(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: testutil.MustNode(t),
		Repo:  repository.Provide(),
		Cfg:   cfg,
	})
	return svc, db
}

func readings(customerID string, start time.Time, n int) []domain.ConsumptionRecord {
	out := make([]domain.ConsumptionRecord, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.ConsumptionRecord{
			CustomerID:  customerID,
			Timestamp:   start.Add(time.Duration(i) * 15 * time.Minute),
			Consumption: 0.25,
			Price:       0.12,
		})
	}
	return out
}

func TestCreateRejectsDuplicateReading(t *testing.T) {
	svc, db := setupService(t, 0)
	ctx := context.Background()
	req := domain.CreateRequest{
		CustomerID:  "ABC123",
		Timestamp:   time.Date(2024, 5, 1, 0, 15, 0, 0, time.FixedZone("CEST", 2*3600)),
		Consumption: 12.5,
		Price:       0.2,
	}

	first, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.NotZero(t, first.ID)
	assert.Equal(t, time.UTC, first.Timestamp.Location())

	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrConflict)

	// the same instant expressed in another offset is still a duplicate
	req.Timestamp = req.Timestamp.UTC()
	_, err = svc.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrConflict)

	assert.Equal(t, 1, testutil.Count(t, db, "consumption_records"))
}

func TestCreateValidation(t *testing.T) {
	svc, _ := setupService(t, 0)
	ctx := context.Background()

	_, err := svc.Create(ctx, domain.CreateRequest{Timestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Create(ctx, domain.CreateRequest{CustomerID: "ABC123"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestBulkCreateCountsDuplicates(t *testing.T) {
	svc, db := setupService(t, 3)
	ctx := context.Background()
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	result, err := svc.BulkCreate(ctx, domain.BulkCreateRequest{
		BatchID: "batch-1",
		Records: readings("ABC123", start, 7),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BulkResult{Inserted: 7}, result)

	result, err = svc.BulkCreate(ctx, domain.BulkCreateRequest{
		BatchID: "batch-2",
		Records: readings("ABC123", start, 9),
	})
	require.NoError(t, err)
	assert.Equal(t, domain.BulkResult{Inserted: 2, Duplicates: 7}, result)
	assert.Equal(t, 9, testutil.Count(t, db, "consumption_records"))
}

func TestBulkCreateCountsFailedChunks(t *testing.T) {
	svc, db := setupService(t, 2)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	records := readings("ABC123", start, 2)
	records = append(records, readings("UNKNOWN", start, 2)...)

	result, err := svc.BulkCreate(context.Background(), domain.BulkCreateRequest{Records: records})
	require.NoError(t, err)
	assert.Equal(t, domain.BulkResult{Inserted: 2, Failed: 2}, result)
	assert.Equal(t, 2, testutil.Count(t, db, "consumption_records"))
}

func TestListReturnsReadingsInOrder(t *testing.T) {
	svc, _ := setupService(t, 0)
	ctx := context.Background()
	start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.BulkCreate(ctx, domain.BulkCreateRequest{Records: readings("ABC123", start, 4)})
	require.NoError(t, err)

	from := start.Add(15 * time.Minute)
	records, err := svc.List(ctx, domain.ListRequest{CustomerID: "ABC123", From: &from})
	require.NoError(t, err)
	require.Len(t, records, 3)
	for i := 1; i < len(records); i++ {
		assert.True(t, records[i-1].Timestamp.Before(records[i].Timestamp), fmt.Sprintf("row %d out of order", i))
	}
}
