package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

func newOrderRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestOrderRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newOrderRepoMock(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	mock.ExpectExec("INSERT INTO orders").WillReturnResult(sqlmock.NewResult(1, 1))

	order := &models.Order{WeekNumber: 7, CreatedBy: "admin-1"}
	require.NoError(t, repo.Create(context.Background(), order))
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, models.OrderStateInProgress, order.State)
	assert.False(t, order.CreatedAt.IsZero())
}

func TestOrderRepositoryGetByIDScansStages(t *testing.T) {
	db, mock, cleanup := newOrderRepoMock(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	stages := []byte(`{"consolidated":[{"productId":"flour","productName":"Harina","unit":"kg","totalRequested":"8","contributingRequestIds":["req-1"],"includesAdditional":false}]}`)
	rows := sqlmock.NewRows([]string{"id", "week_number", "state", "created_by", "comment", "stages", "total", "created_at", "closed_at"}).
		AddRow("order-1", 7, "IN_PROGRESS", "admin-1", nil, stages, "0", time.Now(), nil)
	mock.ExpectQuery("SELECT id, week_number").
		WithArgs("order-1").
		WillReturnRows(rows)

	order, err := repo.GetByID(context.Background(), "order-1")
	require.NoError(t, err)
	require.Len(t, order.Stages.Consolidated, 1)
	assert.Equal(t, "flour", order.Stages.Consolidated[0].ProductID)
	assert.True(t, order.Stages.Consolidated[0].TotalRequested.Equal(decimal.RequireFromString("8")))
}

func TestOrderRepositorySaveStagesStaleOrder(t *testing.T) {
	db, mock, cleanup := newOrderRepoMock(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	mock.ExpectExec("UPDATE orders SET stages").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveStages(context.Background(), "order-1", models.StageSnapshots{})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestOrderRepositoryCloseGuardsState(t *testing.T) {
	db, mock, cleanup := newOrderRepoMock(t)
	defer cleanup()

	repo := NewOrderRepository(db)
	mock.ExpectExec("UPDATE orders SET state").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Close(context.Background(), "order-1", models.OrderStateCompleted, decimal.RequireFromString("21.70"), models.StageSnapshots{}, time.Now().UTC())
	require.NoError(t, err)

	mock.ExpectExec("UPDATE orders SET state").
		WillReturnResult(sqlmock.NewResult(0, 0))
	err = repo.Close(context.Background(), "order-1", models.OrderStateCancelled, decimal.Zero, models.StageSnapshots{}, time.Now().UTC())
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
