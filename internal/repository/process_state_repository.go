package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// ProcessStateRepository persists the singleton procurement process state.
// The table holds exactly one row; every write is compare-and-swap on the
// version column so concurrent admin sessions cannot clobber each other.
type ProcessStateRepository struct {
	db *sqlx.DB
}

// NewProcessStateRepository constructs the repository.
func NewProcessStateRepository(db *sqlx.DB) *ProcessStateRepository {
	return &ProcessStateRepository{db: db}
}

// Read returns the current process state.
func (r *ProcessStateRepository) Read(ctx context.Context) (*models.ProcessState, error) {
	const query = `SELECT active, step, week_number, order_id, version FROM process_state WHERE singleton = TRUE`
	var state models.ProcessState
	if err := r.db.GetContext(ctx, &state, query); err != nil {
		return nil, fmt.Errorf("read process state: %w", err)
	}
	return &state, nil
}

// Write replaces the process state if the persisted version still matches
// expectedVersion. It returns sql.ErrNoRows when another session moved the
// state first; callers surface that as a conflict and retry with fresh state.
func (r *ProcessStateRepository) Write(ctx context.Context, expectedVersion int64, state models.ProcessState) error {
	const query = `UPDATE process_state
SET active = $1, step = $2, week_number = $3, order_id = $4, version = version + 1
WHERE singleton = TRUE AND version = $5`
	result, err := r.db.ExecContext(ctx, query, state.Active, int(state.Step), state.WeekNumber, state.OrderID, expectedVersion)
	if err != nil {
		return fmt.Errorf("write process state: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check process state write rows: %w", err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
