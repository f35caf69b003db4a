package service

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/escuela-gastro/procurement-api/internal/models"
	appErrors "github.com/escuela-gastro/procurement-api/pkg/errors"
	"github.com/escuela-gastro/procurement-api/pkg/export"
	"github.com/escuela-gastro/procurement-api/pkg/storage"
)

type exportOrderStub struct {
	orders map[string]*models.Order
}

func (s exportOrderStub) GetByID(ctx context.Context, id string) (*models.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, sql.ErrNoRows
}

type exportSupplierStub struct{}

func (exportSupplierStub) List(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	return []models.Supplier{{ID: "sup-1", Name: "Mercado Central", Active: true}}, nil
}

func completedOrder(id string) *models.Order {
	closed := time.Now()
	return &models.Order{
		ID:         id,
		WeekNumber: 7,
		State:      models.OrderStateCompleted,
		CreatedBy:  "admin",
		Total:      decimal.RequireFromString("61.00"),
		Stages: models.StageSnapshots{
			Final: []models.FinalOrderLine{
				{
					ProductID:   "prod-1",
					ProductName: "Harina",
					Unit:        "kg",
					Quantity:    decimal.RequireFromString("12"),
					SupplierID:  "sup-1",
					UnitPrice:   decimal.RequireFromString("3.00"),
					LineTotal:   decimal.RequireFromString("36.00"),
				},
				{
					ProductID:   "prod-2",
					ProductName: "Azucar",
					Unit:        "kg",
					Quantity:    decimal.RequireFromString("10"),
					SupplierID:  "sup-1",
					UnitPrice:   decimal.RequireFromString("2.50"),
					LineTotal:   decimal.RequireFromString("25.00"),
				},
			},
		},
		ClosedAt: &closed,
	}
}

func newExportServiceForTest(t *testing.T, orders map[string]*models.Order) (*ExportService, *storage.LocalStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewLocalStorage(dir)
	require.NoError(t, err)
	signer := storage.NewSignedURLSigner("secret", time.Hour)
	cfg := ExportConfig{APIPrefix: "/api/v1", ResultTTL: time.Hour}
	svc := NewExportService(exportOrderStub{orders: orders}, exportSupplierStub{}, nil, store, signer, cfg, zap.NewNop(), export.NewCSVExporter(), export.NewPDFExporter())
	return svc, store
}

func TestExportServiceGenerateCSV(t *testing.T) {
	svc, store := newExportServiceForTest(t, map[string]*models.Order{"order-1": completedOrder("order-1")})

	result, err := svc.Generate(context.Background(), "order-1", models.ExportFormatCSV)
	require.NoError(t, err)
	require.NotEmpty(t, result.RelativePath)
	require.Contains(t, result.URL, "/export/")

	path := store.Path(result.RelativePath)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Harina")
	require.Contains(t, string(data), "61.00")
}

func TestExportServiceGeneratePDF(t *testing.T) {
	svc, store := newExportServiceForTest(t, map[string]*models.Order{"order-2": completedOrder("order-2")})

	result, err := svc.Generate(context.Background(), "order-2", models.ExportFormatPDF)
	require.NoError(t, err)
	require.Equal(t, models.ExportFormatPDF, result.Format)

	path := filepath.Clean(store.Path(result.RelativePath))
	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Greater(t, info.Size(), int64(0))
}

func TestExportServiceGenerateUnknownOrder(t *testing.T) {
	svc, _ := newExportServiceForTest(t, nil)
	_, err := svc.Generate(context.Background(), "missing", models.ExportFormatCSV)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceGenerateWithoutFinalLines(t *testing.T) {
	order := completedOrder("order-3")
	order.Stages.Final = nil
	svc, _ := newExportServiceForTest(t, map[string]*models.Order{"order-3": order})

	_, err := svc.Generate(context.Background(), "order-3", models.ExportFormatCSV)
	require.Error(t, err)
	require.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
