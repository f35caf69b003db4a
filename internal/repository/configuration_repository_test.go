package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

func newConfigurationRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestConfigurationRepositoryListByKeys(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()

	repo := NewConfigurationRepository(db)
	rows := sqlmock.NewRows([]string{"key", "value", "type", "description", "updated_by", "updated_at"}).
		AddRow("current_week_number", "7", "STRING", "desc", "admin", time.Now())
	mock.ExpectQuery("SELECT key, value").
		WithArgs("current_week_number").
		WillReturnRows(rows)

	result, err := repo.ListByKeys(context.Background(), []string{"current_week_number"})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Equal(t, "7", result[0].Value)
}

func TestConfigurationRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("current_week_number", "7", "STRING", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	cfg := &models.Configuration{
		Key:       "current_week_number",
		Value:     "7",
		Type:      models.ConfigurationTypeString,
		UpdatedBy: strPtr("admin"),
	}
	require.NoError(t, repo.Upsert(context.Background(), cfg))
}

func TestConfigurationRepositoryBulkUpsert(t *testing.T) {
	db, mock, cleanup := newConfigurationRepoMock(t)
	defer cleanup()
	repo := NewConfigurationRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("current_week_number", "7", "STRING", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO configurations").
		WithArgs("enable_export_ui", "true", "BOOLEAN", sqlmock.AnyArg(), "admin", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	items := []models.Configuration{
		{Key: "current_week_number", Value: "7", Type: models.ConfigurationTypeString, UpdatedBy: strPtr("admin")},
		{Key: "enable_export_ui", Value: "true", Type: models.ConfigurationTypeBoolean, UpdatedBy: strPtr("admin")},
	}
	require.NoError(t, repo.BulkUpsert(context.Background(), items))
}

func strPtr(value string) *string {
	return &value
}
