package service

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"

	billdomain "github.com/smallbiznis/voltbill/internal/bill/domain"
	"github.com/smallbiznis/voltbill/internal/clock"
	"github.com/smallbiznis/voltbill/internal/providers/pdf"
	"github.com/smallbiznis/voltbill/internal/providers/storage"
	"github.com/smallbiznis/voltbill/internal/report/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordingProvider struct {
	last pdf.BillDocument
}

func (p *recordingProvider) Engine() string { return "recording" }

func (p *recordingProvider) RenderBill(_ context.Context, doc pdf.BillDocument) ([]byte, error) {
	p.last = doc
	return []byte("%PDF-1.4 test"), nil
}

type billServiceMock struct {
	mock.Mock
	billdomain.Service
}

func (m *billServiceMock) GetByID(ctx context.Context, id string) (billdomain.Bill, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(billdomain.Bill), args.Error(1)
}

func newService(t *testing.T, provider pdf.Provider, bills billdomain.Service) (domain.Service, string) {
	t.Helper()
	dir := filepath.Join(t.TempDir(), "reports")
	svc := New(Params{
		Log:      zap.NewNop(),
		Clock:    clock.NewFakeClock(time.Date(2024, 2, 3, 9, 30, 0, 0, time.UTC)),
		Provider: provider,
		Store:    storage.NewFileSystem(dir, zap.NewNop()),
		BillSvc:  bills,
	})
	return svc, dir
}

func TestRenderFormatsDocument(t *testing.T) {
	provider := &recordingProvider{}
	svc, dir := newService(t, provider, nil)

	report, err := svc.Render(context.Background(), domain.RenderRequest{
		CustomerID:         "ABC123",
		Name:               "Ana Novak",
		Email:              "ana@example.com",
		BillingMonth:       "2024-01-01T00:00:00Z",
		BillingConsumption: 10,
		BillingValue:       42.5,
	})
	require.NoError(t, err)

	assert.Equal(t, "bill_report-abc123_2024-01.pdf", report.Filename)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.Equal(t, filepath.Join(dir, "bill_report-abc123_2024-01.pdf"), report.Object.Location)

	doc := provider.last
	assert.Equal(t, "Electricity Bill Report", doc.Title)
	assert.Equal(t, "January, 2024", doc.BillingMonth)
	assert.Equal(t, "2024-02-03", doc.GeneratedDate)
	assert.Equal(t, "10.00 kW", doc.TotalConsumption)
	assert.Equal(t, "€42.50", doc.TotalValue)
}

func TestRenderWithMaroto(t *testing.T) {
	svc, _ := newService(t, pdf.NewMaroto(), nil)

	report, err := svc.Render(context.Background(), domain.RenderRequest{
		CustomerID:   "ABC123",
		BillingMonth: "2024-01",
		BillingValue: 1,
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(report.Data, []byte("%PDF")))
	assert.Equal(t, "maroto", report.Engine)
}

func TestRenderRejectsInvalidInput(t *testing.T) {
	svc, _ := newService(t, &recordingProvider{}, nil)
	ctx := context.Background()

	_, err := svc.Render(ctx, domain.RenderRequest{CustomerID: "ABC123", BillingMonth: "Jan"})
	assert.ErrorIs(t, err, domain.ErrInvalidBillingMonth)

	_, err = svc.Render(ctx, domain.RenderRequest{CustomerID: " ", BillingMonth: "2024-01"})
	assert.ErrorIs(t, err, domain.ErrInvalidCustomer)
}

func TestRenderBillAndPreview(t *testing.T) {
	name := "Ana Novak"
	bill := billdomain.Bill{
		ID:                 42,
		CustomerID:         "ABC123",
		Name:               &name,
		Email:              "ana@example.com",
		BillingMonth:       time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		BillingValue:       42.5,
		BillingConsumption: 10,
	}
	bills := &billServiceMock{}
	bills.On("GetByID", mock.Anything, "42").Return(bill, nil)
	bills.On("GetByID", mock.Anything, "7").Return(billdomain.Bill{}, billdomain.ErrNotFound)

	provider := &recordingProvider{}
	svc, _ := newService(t, provider, bills)
	ctx := context.Background()

	report, err := svc.RenderBill(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "bill_report-abc123_2024-01.pdf", report.Filename)
	assert.Equal(t, "Ana Novak", provider.last.Name)

	html, err := svc.Preview(ctx, "42")
	require.NoError(t, err)
	assert.Contains(t, string(html), "January, 2024")
	assert.Contains(t, string(html), "€42.50")

	_, err = svc.RenderBill(ctx, "7")
	assert.ErrorIs(t, err, billdomain.ErrNotFound)
	bills.AssertExpectations(t)
}
