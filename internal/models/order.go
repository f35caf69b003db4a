package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderState captures the lifecycle of a procurement run.
type OrderState string

const (
	OrderStateInProgress OrderState = "IN_PROGRESS"
	OrderStateCompleted  OrderState = "COMPLETED"
	OrderStateCancelled  OrderState = "CANCELLED"
)

// Order is one execution of the procurement pipeline over a set of requests.
type Order struct {
	ID         string          `db:"id" json:"id"`
	WeekNumber int             `db:"week_number" json:"weekNumber"`
	State      OrderState      `db:"state" json:"state"`
	CreatedBy  string          `db:"created_by" json:"createdBy"`
	Comment    *string         `db:"comment" json:"comment,omitempty"`
	Stages     StageSnapshots  `db:"stages" json:"stages"`
	Total      decimal.Decimal `db:"total" json:"total"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
	ClosedAt   *time.Time      `db:"closed_at" json:"closedAt,omitempty"`
}

// ExportFormat enumerates the purchase order download formats.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

// ConsolidatedLine is the per-product demand total computed from requests.
type ConsolidatedLine struct {
	ProductID          string          `json:"productId"`
	ProductName        string          `json:"productName"`
	TotalRequested     decimal.Decimal `json:"totalRequested"`
	Unit               string          `json:"unit"`
	ContributingIDs    []string        `json:"contributingRequestIds"`
	IncludesAdditional bool            `json:"includesAdditional"`
}

// ReconciliationLine extends a consolidated line with the stock snapshot and
// the operator-editable quantity to order.
type ReconciliationLine struct {
	ConsolidatedLine
	StockOnHand decimal.Decimal `json:"stockOnHand"`
	ToOrder     decimal.Decimal `json:"toOrder"`
}

// SupplierOffer is one supplier's listed price for a product.
type SupplierOffer struct {
	SupplierID   string          `json:"supplierId"`
	SupplierName string          `json:"supplierName,omitempty"`
	UnitPrice    decimal.Decimal `json:"unitPrice"`
	Available    bool            `json:"available"`
}

// QuoteLine holds the ranked offers for one shortfall product. ChosenSupplierID
// is nil when no supplier offers the product; that blocks finalization.
type QuoteLine struct {
	ProductID        string          `json:"productId"`
	ProductName      string          `json:"productName"`
	Unit             string          `json:"unit"`
	QuantityNeeded   decimal.Decimal `json:"quantityNeeded"`
	Offers           []SupplierOffer `json:"offers"`
	ChosenSupplierID *string         `json:"chosenSupplierId"`
}

// FinalOrderLine is one committed purchase line of a completed order.
type FinalOrderLine struct {
	ProductID   string          `json:"productId"`
	ProductName string          `json:"productName"`
	Unit        string          `json:"unit"`
	Quantity    decimal.Decimal `json:"quantity"`
	SupplierID  string          `json:"supplierId"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	LineTotal   decimal.Decimal `json:"lineTotal"`
}

// FinalOrder is the committed outcome of a procurement run.
type FinalOrder struct {
	OrderID          string           `json:"orderId"`
	Lines            []FinalOrderLine `json:"lines"`
	Total            decimal.Decimal  `json:"total"`
	LinkedRequestIDs []string         `json:"linkedRequestIds"`
	ClosedAt         time.Time        `json:"closedAt"`
}

// StageSnapshots persists the derived pipeline payloads so the dashboard can
// resume an in-flight run after a reload. Persisted as JSONB alongside the order.
type StageSnapshots struct {
	Consolidated   []ConsolidatedLine   `json:"consolidated,omitempty"`
	Reconciliation []ReconciliationLine `json:"reconciliation,omitempty"`
	Quotes         []QuoteLine          `json:"quotes,omitempty"`
	Final          []FinalOrderLine     `json:"final,omitempty"`
}

// Value marshals stage snapshots to JSON for persistence.
func (s StageSnapshots) Value() (driver.Value, error) {
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("marshal stage snapshots: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the snapshot struct.
func (s *StageSnapshots) Scan(value interface{}) error {
	if value == nil {
		*s = StageSnapshots{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for StageSnapshots", value)
	}
	if len(data) == 0 {
		*s = StageSnapshots{}
		return nil
	}
	return json.Unmarshal(data, s)
}
