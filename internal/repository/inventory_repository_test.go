package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newInventoryRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "sqlmock")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

func TestInventoryRepositoryGetLevels(t *testing.T) {
	db, mock, cleanup := newInventoryRepoMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	rows := sqlmock.NewRows([]string{"id", "stock"}).
		AddRow("flour", "12.5").
		AddRow("milk", "3")
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, stock FROM products WHERE id IN ($1,$2)`)).
		WithArgs("flour", "milk").
		WillReturnRows(rows)

	snapshot, err := repo.GetLevels(context.Background(), []string{"flour", "milk"})
	require.NoError(t, err)
	assert.True(t, snapshot["flour"].Equal(decimal.RequireFromString("12.5")))
	assert.True(t, snapshot["milk"].Equal(decimal.RequireFromString("3")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryAdjustStock(t *testing.T) {
	db, mock, cleanup := newInventoryRepoMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	rows := sqlmock.NewRows([]string{"stock"}).AddRow("7")
	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 AND stock + $1 >= 0 RETURNING stock`)).
		WillReturnRows(rows)

	stock, err := repo.AdjustStock(context.Background(), "flour", decimal.RequireFromString("-3"))
	require.NoError(t, err)
	assert.True(t, stock.Equal(decimal.RequireFromString("7")))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInventoryRepositoryAdjustStockNegativeGuard(t *testing.T) {
	db, mock, cleanup := newInventoryRepoMock(t)
	defer cleanup()
	repo := NewInventoryRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 AND stock + $1 >= 0 RETURNING stock`)).
		WillReturnRows(sqlmock.NewRows([]string{"stock"}))

	_, err := repo.AdjustStock(context.Background(), "flour", decimal.RequireFromString("-50"))
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
