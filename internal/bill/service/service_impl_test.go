package service

import (
	"context"
	"testing"
	"time"

	"github.com/smallbiznis/voltbill/internal/bill/domain"
	"github.com/smallbiznis/voltbill/internal/bill/repository"
	customerrepo "github.com/smallbiznis/voltbill/internal/customer/repository"
	customersvc "github.com/smallbiznis/voltbill/internal/customer/service"
	"github.com/smallbiznis/voltbill/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupService(t *testing.T) (domain.Service, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	testutil.SeedCustomer(t, db, "ABC123", "Ana Novak", "ana@example.com")

	customers := customersvc.New(customersvc.Params{
		DB:   db,
		Log:  zap.NewNop(),
		Repo: customerrepo.Provide(),
	})
	svc := New(Params{
		DB:          db,
		Log:         zap.NewNop(),
		GenID:       testutil.MustNode(t),
		Repo:        repository.Provide(),
		CustomerSvc: customers,
	})
	return svc, db
}

func TestBillingMonthOf(t *testing.T) {
	cest := time.FixedZone("CEST", 2*3600)
	cet := time.FixedZone("CET", 3600)
	cases := []struct {
		name string
		in   time.Time
		want time.Time
	}{
		{"mid month", time.Date(2024, 1, 17, 13, 45, 0, 0, time.UTC), time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"local first minute", time.Date(2024, 5, 1, 0, 15, 0, 0, cest), time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
		{"local date wins over utc date", time.Date(2024, 2, 1, 0, 30, 0, 0, cet), time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		{"last second of year", time.Date(2023, 12, 31, 23, 59, 59, 0, time.UTC), time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := domain.BillingMonthOf(tc.in)
			assert.True(t, tc.want.Equal(got), got.String())
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestDeriveOutcomes(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()
	last := time.Date(2024, 1, 31, 23, 45, 0, 0, time.UTC)

	first, err := svc.Derive(ctx, domain.DeriveRequest{
		CustomerID:       "ABC123",
		LastTimestamp:    last,
		TotalValue:       42.5,
		TotalConsumption: 10,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCreated, first.Outcome)
	require.NotNil(t, first.Bill)
	assert.Equal(t, "2024-01", first.Bill.MonthKey())
	assert.Equal(t, "ana@example.com", first.Bill.Email)
	require.NotNil(t, first.Bill.Name)
	assert.Equal(t, "Ana Novak", *first.Bill.Name)
	assert.InDelta(t, 42.5, first.Bill.BillingValue, 1e-9)

	second, err := svc.Derive(ctx, domain.DeriveRequest{
		CustomerID:       "ABC123",
		LastTimestamp:    time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC),
		TotalValue:       99,
		TotalConsumption: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeAlreadyExists, second.Outcome)
	require.NotNil(t, second.Bill)
	assert.Equal(t, first.Bill.ID, second.Bill.ID)
	assert.InDelta(t, 42.5, second.Bill.BillingValue, 1e-9)
	assert.Equal(t, 1, testutil.Count(t, db, "bills"))

	missing, err := svc.Derive(ctx, domain.DeriveRequest{
		CustomerID:    "NOPE",
		LastTimestamp: last,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeCustomerNotFound, missing.Outcome)
	assert.Nil(t, missing.Bill)
	assert.Equal(t, 1, testutil.Count(t, db, "bills"))
}

func TestDeriveNewMonthCreatesSecondBill(t *testing.T) {
	svc, db := setupService(t)
	ctx := context.Background()

	for _, ts := range []time.Time{
		time.Date(2024, 1, 31, 23, 45, 0, 0, time.UTC),
		time.Date(2024, 2, 29, 23, 45, 0, 0, time.UTC),
	} {
		res, err := svc.Derive(ctx, domain.DeriveRequest{CustomerID: "ABC123", LastTimestamp: ts, TotalValue: 1})
		require.NoError(t, err)
		assert.Equal(t, domain.OutcomeCreated, res.Outcome)
	}
	assert.Equal(t, 2, testutil.Count(t, db, "bills"))

	got, err := svc.GetByCustomerMonth(ctx, "ABC123", time.Date(2024, 2, 15, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2024-02", got.MonthKey())
}

func TestDeriveValidation(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	_, err := svc.Derive(ctx, domain.DeriveRequest{CustomerID: " ", LastTimestamp: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)

	_, err = svc.Derive(ctx, domain.DeriveRequest{CustomerID: "ABC123"})
	assert.ErrorIs(t, err, domain.ErrInvalidTimestamp)
}

func TestGetByIDAndList(t *testing.T) {
	svc, _ := setupService(t)
	ctx := context.Background()

	res, err := svc.Derive(ctx, domain.DeriveRequest{
		CustomerID:    "ABC123",
		LastTimestamp: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
		TotalValue:    3,
	})
	require.NoError(t, err)

	got, err := svc.GetByID(ctx, res.Bill.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "ABC123", got.CustomerID)

	_, err = svc.GetByID(ctx, "not-a-number")
	assert.ErrorIs(t, err, domain.ErrInvalidID)

	_, err = svc.GetByID(ctx, "12345")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := svc.List(ctx, domain.ListBillRequest{CustomerID: "ABC123"})
	require.NoError(t, err)
	require.Len(t, list.Bills, 1)
	assert.False(t, list.HasMore)

	empty, err := svc.List(ctx, domain.ListBillRequest{CustomerID: "OTHER"})
	require.NoError(t, err)
	assert.Empty(t, empty.Bills)
}
