package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// RequestLineInput is one ingredient line in a submitted request.
type RequestLineInput struct {
	ProductID     string          `json:"productId" validate:"required"`
	ProductName   string          `json:"productName" validate:"required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"required"`
	UnitOfMeasure string          `json:"unitOfMeasure" validate:"required"`
	IsAdditional  bool            `json:"isAdditional"`
}

// CreateRequestRequest describes the payload for submitting a request.
type CreateRequestRequest struct {
	SubjectID  string             `json:"subjectId" validate:"required"`
	ClassDate  time.Time          `json:"classDate" validate:"required"`
	WeekNumber int                `json:"weekNumber" validate:"required,min=1,max=18"`
	Lines      []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
	Notes      string             `json:"notes"`
}

// UpdateRequestRequest describes the payload for editing an existing request.
// Edits always send the request back to PENDING.
type UpdateRequestRequest struct {
	SubjectID  string             `json:"subjectId" validate:"required"`
	ClassDate  time.Time          `json:"classDate" validate:"required"`
	WeekNumber int                `json:"weekNumber" validate:"required,min=1,max=18"`
	Lines      []RequestLineInput `json:"lines" validate:"required,min=1,dive"`
	Notes      string             `json:"notes"`
}

// ReviewDecision enumerates the review outcomes for a pending request.
type ReviewDecision string

const (
	ReviewDecisionAccept          ReviewDecision = "ACCEPT"
	ReviewDecisionAcceptWithEdits ReviewDecision = "ACCEPT_WITH_EDITS"
	ReviewDecisionReject          ReviewDecision = "REJECT"
)

// ReviewRequestRequest describes the payload for an admin review decision.
type ReviewRequestRequest struct {
	Decision     ReviewDecision     `json:"decision" validate:"required"`
	RejectReason string             `json:"rejectReason"`
	AdminComment string             `json:"adminComment"`
	Lines        []RequestLineInput `json:"lines" validate:"omitempty,min=1,dive"`
}

// RequestQuery constrains request listings.
type RequestQuery struct {
	States     []string
	WeekNumber *int
	SubjectID  string
	Limit      int
	Offset     int
}
