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

// SupplierRepository persists suppliers and their product offerings.
type SupplierRepository struct {
	db *sqlx.DB
}

// NewSupplierRepository constructs the repository.
func NewSupplierRepository(db *sqlx.DB) *SupplierRepository {
	return &SupplierRepository{db: db}
}

// GetOfferings returns, per product, all offerings from active suppliers.
func (r *SupplierRepository) GetOfferings(ctx context.Context, productIDs []string) (map[string][]models.SupplierOffer, error) {
	if len(productIDs) == 0 {
		return map[string][]models.SupplierOffer{}, nil
	}
	placeholders := make([]string, len(productIDs))
	args := make([]interface{}, len(productIDs))
	for i, id := range productIDs {
		args[i] = id
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf(`SELECT o.product_id, o.supplier_id, s.name AS supplier_name, o.unit_price, o.available
FROM supplier_offerings o
JOIN suppliers s ON s.id = o.supplier_id
WHERE s.active = TRUE AND o.product_id IN (%s)`, strings.Join(placeholders, ","))
	rows := []struct {
		ProductID    string          `db:"product_id"`
		SupplierID   string          `db:"supplier_id"`
		SupplierName string          `db:"supplier_name"`
		UnitPrice    decimal.Decimal `db:"unit_price"`
		Available    bool            `db:"available"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("get supplier offerings: %w", err)
	}
	offerings := make(map[string][]models.SupplierOffer, len(rows))
	for _, row := range rows {
		offerings[row.ProductID] = append(offerings[row.ProductID], models.SupplierOffer{
			SupplierID:   row.SupplierID,
			SupplierName: row.SupplierName,
			UnitPrice:    row.UnitPrice,
			Available:    row.Available,
		})
	}
	return offerings, nil
}

// GetByID fetches a supplier.
func (r *SupplierRepository) GetByID(ctx context.Context, id string) (*models.Supplier, error) {
	const query = `SELECT id, name, email, phone, active, created_at, updated_at FROM suppliers WHERE id = $1`
	var supplier models.Supplier
	if err := r.db.GetContext(ctx, &supplier, query, id); err != nil {
		return nil, err
	}
	return &supplier, nil
}

// List returns suppliers sorted by name.
func (r *SupplierRepository) List(ctx context.Context, activeOnly bool) ([]models.Supplier, error) {
	query := `SELECT id, name, email, phone, active, created_at, updated_at FROM suppliers`
	if activeOnly {
		query += ` WHERE active = TRUE`
	}
	query += ` ORDER BY name ASC`
	var suppliers []models.Supplier
	if err := r.db.SelectContext(ctx, &suppliers, query); err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

// Create inserts a new supplier.
func (r *SupplierRepository) Create(ctx context.Context, supplier *models.Supplier) error {
	if supplier.ID == "" {
		supplier.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if supplier.CreatedAt.IsZero() {
		supplier.CreatedAt = now
	}
	supplier.UpdatedAt = now
	const query = `INSERT INTO suppliers (id, name, email, phone, active, created_at, updated_at)
VALUES (:id, :name, :email, :phone, :active, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, supplier); err != nil {
		return fmt.Errorf("create supplier: %w", err)
	}
	return nil
}

// UpsertOffering inserts or updates one supplier/product price listing.
func (r *SupplierRepository) UpsertOffering(ctx context.Context, offering *models.SupplierOffering) error {
	if offering.ID == "" {
		offering.ID = uuid.NewString()
	}
	offering.UpdatedAt = time.Now().UTC()
	const query = `INSERT INTO supplier_offerings (id, supplier_id, product_id, unit_price, available, updated_at)
VALUES (:id, :supplier_id, :product_id, :unit_price, :available, :updated_at)
ON CONFLICT (supplier_id, product_id)
DO UPDATE SET unit_price = EXCLUDED.unit_price, available = EXCLUDED.available, updated_at = EXCLUDED.updated_at`
	if _, err := r.db.NamedExecContext(ctx, query, offering); err != nil {
		return fmt.Errorf("upsert supplier offering: %w", err)
	}
	return nil
}
