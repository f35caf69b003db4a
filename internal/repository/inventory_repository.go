package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// InventoryRepository persists products and their stock levels.
type InventoryRepository struct {
	db *sqlx.DB
}

// NewInventoryRepository constructs the repository.
func NewInventoryRepository(db *sqlx.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

// GetLevels returns the current stock for the given products. Products not in
// the table are absent from the map.
func (r *InventoryRepository) GetLevels(ctx context.Context, productIDs []string) (models.InventorySnapshot, error) {
	if len(productIDs) == 0 {
		return models.InventorySnapshot{}, nil
	}
	placeholders := make([]string, len(productIDs))
	args := make([]interface{}, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT id, stock FROM products WHERE id IN (%s)`, strings.Join(placeholders, ","))
	rows := []struct {
		ID    string          `db:"id"`
		Stock decimal.Decimal `db:"stock"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get stock levels: %w", err)
	}
	snapshot := make(models.InventorySnapshot, len(rows))
	for _, row := range rows {
		snapshot[row.ID] = row.Stock
	}
	return snapshot, nil
}

// GetByID fetches a product.
func (r *InventoryRepository) GetByID(ctx context.Context, id string) (*models.Product, error) {
	const query = `SELECT id, name, unit_of_measure, stock, active, created_at, updated_at FROM products WHERE id = $1`
	var product models.Product
	if err := r.db.GetContext(ctx, &product, query, id); err != nil {
		return nil, err
	}
	return &product, nil
}

// List returns products matching the filter sorted by name.
func (r *InventoryRepository) List(ctx context.Context, filter models.ProductFilter) ([]models.Product, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 2)
	builder.WriteString(`SELECT id, name, unit_of_measure, stock, active, created_at, updated_at FROM products`)

	conditions := make([]string, 0, 2)
	if filter.Search != "" {
		args = append(args, "%"+strings.ToLower(filter.Search)+"%")
		conditions = append(conditions, fmt.Sprintf("LOWER(name) LIKE $%d", len(args)))
	}
	if filter.Active != nil {
		args = append(args, *filter.Active)
		conditions = append(conditions, fmt.Sprintf("active = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	builder.WriteString(" ORDER BY name ASC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 100
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var products []models.Product
	if err := r.db.SelectContext(ctx, &products, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Create inserts a new product.
func (r *InventoryRepository) Create(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if product.CreatedAt.IsZero() {
		product.CreatedAt = now
	}
	product.UpdatedAt = now
	const query = `INSERT INTO products (id, name, unit_of_measure, stock, active, created_at, updated_at)
VALUES (:id, :name, :unit_of_measure, :stock, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, product); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	return nil
}

// AdjustStock applies a relative stock delta and reports the new level. The
// guard keeps stock from going negative; a failed guard surfaces as
// sql.ErrNoRows, same as a missing product.
func (r *InventoryRepository) AdjustStock(ctx context.Context, id string, delta decimal.Decimal) (decimal.Decimal, error) {
	const query = `UPDATE products SET stock = stock + $1, updated_at = $2 WHERE id = $3 AND stock + $1 >= 0 RETURNING stock`
	var stock decimal.Decimal
	if err := r.db.GetContext(ctx, &stock, query, delta, time.Now().UTC(), id); err != nil {
		return decimal.Zero, err
	}
	return stock, nil
}
