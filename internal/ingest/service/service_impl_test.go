package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	billrepo "github.com/smallbiznis/voltbill/internal/bill/repository"
	billsvc "github.com/smallbiznis/voltbill/internal/bill/service"
	"github.com/smallbiznis/voltbill/internal/config"
	consumptionrepo "github.com/smallbiznis/voltbill/internal/consumption/repository"
	consumptionsvc "github.com/smallbiznis/voltbill/internal/consumption/service"
	customerrepo "github.com/smallbiznis/voltbill/internal/customer/repository"
	customersvc "github.com/smallbiznis/voltbill/internal/customer/service"
	"github.com/smallbiznis/voltbill/internal/ingest/domain"
	"github.com/smallbiznis/voltbill/internal/ingest/parser"
	"github.com/smallbiznis/voltbill/internal/ingest/repository"
	"github.com/smallbiznis/voltbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const exportHeader = "Časovna Značka (CEST/CET);Poraba [kWh];Dinamične Cene [EUR/kWh]\n"

const januaryExport = exportHeader +
	"2024-01-31T23:15:00+01:00;12,5;0,2000\n" +
	"2024-01-31T23:30:00+01:00;;0,1\n" +
	"2024-01-31T23:45:00+01:00;abc;0,1\n" +
	"2024-01-31T23:59:00+01:00;2,5;0,1\n"

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedCustomer(t, db, "ABC123", "Ana Novak", "ana@example.com")

	log := zap.NewNop()
	node := testutil.MustNode(t)
	customers := customersvc.New(customersvc.Params{DB: db, Log: log, Repo: customerrepo.Provide()})
	consumptions := consumptionsvc.New(consumptionsvc.Params{DB: db, Log: log, GenID: node, Repo: consumptionrepo.Provide()})
	bills := billsvc.New(billsvc.Params{DB: db, Log: log, GenID: node, Repo: billrepo.Provide(), CustomerSvc: customers})

	svc := New(Params{
		DB:             db,
		Log:            log,
		Repo:           repository.Provide(),
		Parser:         parser.New(config.NewStaticCSVDialectHolder(config.DefaultCSVDialect()), time.UTC),
		ConsumptionSvc: consumptions,
		BillSvc:        bills,
	})
	return svc, db
}

func TestUploadCreatesBill(t *testing.T) {
	svc, db := setupService(t)

	res, err := svc.Upload(context.Background(), domain.UploadRequest{
		Filename: "naloga-lokacija-ABC123.csv",
		Body:     strings.NewReader(januaryExport),
	})
	require.NoError(t, err)

	assert.Equal(t, "ABC123", res.CustomerID)
	assert.Equal(t, 2, res.Parsed)
	assert.Equal(t, 1, res.Skipped)
	assert.Equal(t, 1, res.Invalid)
	assert.Equal(t, 2, res.Inserted)
	assert.Zero(t, res.Duplicates)
	assert.Zero(t, res.Failed)
	assert.InDelta(t, 15.0, res.TotalConsumption, 1e-9)
	assert.InDelta(t, 2.75, res.TotalPrice, 1e-9)
	assert.Equal(t, "2024-01", res.BillingMonth)
	assert.Equal(t, billdomain.OutcomeCreated, res.BillOutcome)
	require.NotNil(t, res.Bill)
	assert.InDelta(t, 2.75, res.Bill.BillingValue, 1e-9)
	require.Len(t, res.Issues, 1)
	assert.Equal(t, 4, res.Issues[0].Line)

	assert.Equal(t, 2, testutil.Count(t, db, "consumption_records"))
	assert.Equal(t, 1, testutil.Count(t, db, "bills"))
	assert.Equal(t, 1, testutil.Count(t, db, "upload_batches"))
}

func TestUploadTwiceKeepsFirstBill(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	req := func() domain.UploadRequest {
		return domain.UploadRequest{Filename: "naloga-lokacija-ABC123.csv", Body: strings.NewReader(januaryExport)}
	}

	first, err := svc.Upload(ctx, req())
	require.NoError(t, err)
	second, err := svc.Upload(ctx, req())
	require.NoError(t, err)

	assert.Zero(t, second.Inserted)
	assert.Equal(t, 2, second.Duplicates)
	assert.Equal(t, billdomain.OutcomeAlreadyExists, second.BillOutcome)
	require.NotNil(t, second.Bill)
	assert.Equal(t, first.Bill.ID, second.Bill.ID)
	assert.NotEqual(t, first.BatchID, second.BatchID)

	assert.Equal(t, 2, testutil.Count(t, db, "consumption_records"))
	assert.Equal(t, 1, testutil.Count(t, db, "bills"))
	assert.Equal(t, 2, testutil.Count(t, db, "upload_batches"))
}

func TestUploadUnknownCustomer(t *testing.T) {
	svc, db := setupService(t)

	res, err := svc.Upload(context.Background(), domain.UploadRequest{
		Filename: "naloga-lokacija-NOPE.csv",
		Body:     strings.NewReader(januaryExport),
	})
	require.NoError(t, err)
	assert.Equal(t, billdomain.OutcomeCustomerNotFound, res.BillOutcome)
	assert.Nil(t, res.Bill)
	assert.Equal(t, 2, res.Failed)
	assert.Zero(t, res.Inserted)
	assert.Zero(t, testutil.Count(t, db, "bills"))
}

func TestUploadRejectsBadInput(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, domain.UploadRequest{Filename: "ABC123.csv", Body: strings.NewReader(januaryExport)})
	assert.ErrorIs(t, err, domain.ErrInvalidFilename)

	_, err = svc.Upload(ctx, domain.UploadRequest{Filename: "naloga-lokacija-ABC123.csv", Body: strings.NewReader(exportHeader + ";;\n")})
	assert.ErrorIs(t, err, domain.ErrNoValidRows)

	_, err = svc.Upload(ctx, domain.UploadRequest{Filename: "naloga-lokacija-ABC123.csv", Body: strings.NewReader("a;b;c\n1;2;3\n")})
	assert.ErrorIs(t, err, domain.ErrMissingColumns)

	assert.Zero(t, testutil.Count(t, db, "consumption_records"))
	assert.Zero(t, testutil.Count(t, db, "upload_batches"))
}

func TestListUploads(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Upload(ctx, domain.UploadRequest{
		Filename: "/home/ana/naloga-lokacija-ABC123.csv",
		Body:     strings.NewReader(januaryExport),
	})
	require.NoError(t, err)

	list, err := svc.List(ctx, domain.ListUploadRequest{CustomerID: "ABC123"})
	require.NoError(t, err)
	require.Len(t, list.Uploads, 1)

	batch := list.Uploads[0]
	assert.Equal(t, "naloga-lokacija-ABC123.csv", batch.Filename)
	assert.Equal(t, string(billdomain.OutcomeCreated), batch.BillOutcome)
	require.NotNil(t, batch.BillID)

	var issues []domain.RowIssue
	require.NoError(t, json.Unmarshal(batch.Issues, &issues))
	assert.Len(t, issues, 1)
}
