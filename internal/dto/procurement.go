package dto

import (
	"github.com/shopspring/decimal"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// StartProcessRequest opens a procurement run for one academic week.
type StartProcessRequest struct {
	WeekNumber int    `json:"weekNumber" validate:"required,min=1,max=18"`
	Comment    string `json:"comment"`
}

// StartFromSelectionRequest opens a run over hand-picked accepted requests
// instead of a whole week.
type StartFromSelectionRequest struct {
	RequestIDs []string `json:"requestIds" validate:"required,min=1,dive,required"`
	WeekNumber int      `json:"weekNumber" validate:"required,min=1,max=18"`
	Comment    string   `json:"comment"`
}

// ReconciliationOverride replaces the computed toOrder of one line.
type ReconciliationOverride struct {
	ProductID string          `json:"productId" validate:"required"`
	ToOrder   decimal.Decimal `json:"toOrder"`
}

// AcceptReconciliationRequest carries the operator-approved reconciliation.
type AcceptReconciliationRequest struct {
	Overrides []ReconciliationOverride `json:"overrides" validate:"omitempty,dive"`
}

// QuoteSelection overrides the default supplier choice for one product.
type QuoteSelection struct {
	ProductID  string `json:"productId" validate:"required"`
	SupplierID string `json:"supplierId" validate:"required"`
}

// AcceptQuotesRequest carries the operator-approved supplier selections.
type AcceptQuotesRequest struct {
	Selections []QuoteSelection `json:"selections" validate:"omitempty,dive"`
}

// ProcessStatus reports the current pipeline position plus the persisted
// stage payloads so the dashboard can resume after a reload.
type ProcessStatus struct {
	Active          bool                  `json:"active"`
	Step            int                   `json:"step"`
	StepName        string                `json:"stepName"`
	WeekNumber      *int                  `json:"weekNumber,omitempty"`
	OrderID         *string               `json:"orderId,omitempty"`
	Order           *models.Order         `json:"order,omitempty"`
	PendingRequests []models.Request      `json:"pendingRequests,omitempty"`
	Stages          models.StageSnapshots `json:"stages"`
}
