package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

func newRequestRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestRequestRepositoryListBuildsFilterClauses(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	rows := sqlmock.NewRows([]string{
		"id", "requester_id", "subject_id", "class_date", "week_number", "lines", "notes", "state",
		"reject_reason", "admin_comment", "order_id", "reviewed_by", "reviewed_at", "created_at", "updated_at",
	}).AddRow(
		"req-1", "teacher-1", "pastry-101", time.Now(), 7, []byte(`[]`), nil, "PENDING",
		nil, nil, nil, nil, nil, time.Now(), time.Now(),
	)
	mock.ExpectQuery(`SELECT .+ FROM requests WHERE state IN \(\$1\) AND week_number = \$2 AND requester_id = \$3 ORDER BY created_at DESC, id DESC LIMIT 50 OFFSET 0`).
		WithArgs("PENDING", 7, "teacher-1").
		WillReturnRows(rows)

	week := 7
	requests, err := repo.List(context.Background(), models.RequestFilter{
		States:      []models.RequestState{models.RequestStatePending},
		WeekNumber:  &week,
		RequesterID: "teacher-1",
	})
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "req-1", requests[0].ID)
	assert.Equal(t, models.RequestStatePending, requests[0].State)
}

func TestRequestRepositoryUpdateContentStateGuard(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(`UPDATE requests`).WillReturnResult(sqlmock.NewResult(0, 0))

	request := &models.Request{
		ID:         "req-1",
		SubjectID:  "pastry-101",
		ClassDate:  time.Now(),
		WeekNumber: 7,
		Lines:      models.RequestLines{},
	}
	err := repo.UpdateContent(context.Background(), request, models.RequestStateAccepted)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositorySetStateConcurrentReview(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(`UPDATE requests SET`).WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SetState(context.Background(), SetStateParams{
		ID:         "req-1",
		From:       models.RequestStatePending,
		To:         models.RequestStateAccepted,
		ReviewedBy: "admin-1",
		ReviewedAt: time.Now().UTC(),
	})
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestRequestRepositoryLinkToOrderNoIDs(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	require.NoError(t, repo.LinkToOrder(context.Background(), nil, "order-1"))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRequestRepositoryLinkToOrderBatchesIDs(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(`UPDATE requests SET order_id = \$1 WHERE id IN \(\$2,\$3\)`).
		WithArgs("order-1", "req-1", "req-2").
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.LinkToOrder(context.Background(), []string{"req-1", "req-2"}, "order-1"))
}

func TestRequestRepositoryDeleteOwnedGuards(t *testing.T) {
	db, mock, cleanup := newRequestRepoMock(t)
	defer cleanup()

	repo := NewRequestRepository(db)
	mock.ExpectExec(`DELETE FROM requests`).
		WithArgs("req-1", "teacher-1", "PENDING").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.DeleteOwned(context.Background(), "req-1", "teacher-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
