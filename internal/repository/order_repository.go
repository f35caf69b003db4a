package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// OrderRepository persists procurement runs.
type OrderRepository struct {
	db *sqlx.DB
}

// NewOrderRepository constructs the repository.
func NewOrderRepository(db *sqlx.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create inserts a new order in IN_PROGRESS state.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	if order.ID == "" {
		order.ID = uuid.NewString()
	}
	if order.State == "" {
		order.State = models.OrderStateInProgress
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO orders (id, week_number, state, created_by, comment, stages, total, created_at, closed_at)
VALUES (:id, :week_number, :state, :created_by, :comment, :stages, :total, :created_at, :closed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, order); err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

// GetByID fetches an order by identifier.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	const query = `SELECT id, week_number, state, created_by, comment, stages, total, created_at, closed_at
FROM orders WHERE id = $1`
	var order models.Order
	if err := r.db.GetContext(ctx, &order, query, id); err != nil {
		return nil, err
	}
	return &order, nil
}

// List returns orders sorted latest first.
func (r *OrderRepository) List(ctx context.Context, limit, offset int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT id, week_number, state, created_by, comment, stages, total, created_at, closed_at
FROM orders ORDER BY created_at DESC LIMIT $1 OFFSET $2`
	var orders []models.Order
	if err := r.db.SelectContext(ctx, &orders, query, limit, offset); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// SaveStages persists the derived pipeline payloads for an in-progress order
// so the dashboard can resume after a reload. The write is guarded on the
// order still being IN_PROGRESS; sql.ErrNoRows signals a stale run.
func (r *OrderRepository) SaveStages(ctx context.Context, id string, stages models.StageSnapshots) error {
	const query = `UPDATE orders SET stages = $1 WHERE id = $2 AND state = $3`
	result, err := r.db.ExecContext(ctx, query, stages, id, models.OrderStateInProgress)
	if err != nil {
		return fmt.Errorf("save order stages: %w", err)
	}
	return requireRowsAffected(result, "save order stages")
}

// Close transitions an in-progress order into a terminal state. The state
// guard makes the transition idempotent-safe: closing an already closed order
// reports sql.ErrNoRows instead of silently overwriting.
func (r *OrderRepository) Close(ctx context.Context, id string, state models.OrderState, total decimal.Decimal, stages models.StageSnapshots, closedAt time.Time) error {
	const query = `UPDATE orders SET state = $1, total = $2, stages = $3, closed_at = $4
WHERE id = $5 AND state = $6`
	result, err := r.db.ExecContext(ctx, query, state, total, stages, closedAt, id, models.OrderStateInProgress)
	if err != nil {
		return fmt.Errorf("close order: %w", err)
	}
	return requireRowsAffected(result, "close order")
}

func requireRowsAffected(result sql.Result, op string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s rows: %w", op, err)
	}
	if rows == 0 {
		return sql.ErrNoRows
	}
	return nil
}
