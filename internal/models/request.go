package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// RequestState captures workflow states for ingredient requests.
type RequestState string

const (
	RequestStatePending          RequestState = "PENDING"
	RequestStateAccepted         RequestState = "ACCEPTED"
	RequestStateAcceptedModified RequestState = "ACCEPTED_MODIFIED"
	RequestStateRejected         RequestState = "REJECTED"
)

// MinWeekNumber and MaxWeekNumber bound the academic weeks requests may target.
const (
	MinWeekNumber = 1
	MaxWeekNumber = 18
)

// RequestLine is one ingredient demand inside a request.
type RequestLine struct {
	ProductID     string          `json:"productId"`
	ProductName   string          `json:"productName"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitOfMeasure string          `json:"unitOfMeasure"`
	IsAdditional  bool            `json:"isAdditional"`
}

// RequestLines stores request lines persisted as JSONB.
type RequestLines []RequestLine

// Value marshals lines to JSON for persistence.
func (l RequestLines) Value() (driver.Value, error) {
	if l == nil {
		l = RequestLines{}
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("marshal request lines: %w", err)
	}
	return data, nil
}

// Scan unmarshals JSON payloads into the line slice.
func (l *RequestLines) Scan(value interface{}) error {
	if value == nil {
		*l = RequestLines{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for RequestLines", value)
	}
	if len(data) == 0 {
		*l = RequestLines{}
		return nil
	}
	return json.Unmarshal(data, l)
}

// Request represents a teacher's ingredient demand submission for one class
// occurrence in one academic week.
type Request struct {
	ID           string       `db:"id" json:"id"`
	RequesterID  string       `db:"requester_id" json:"requesterId"`
	SubjectID    string       `db:"subject_id" json:"subjectId"`
	ClassDate    time.Time    `db:"class_date" json:"classDate"`
	WeekNumber   int          `db:"week_number" json:"weekNumber"`
	Lines        RequestLines `db:"lines" json:"lines"`
	Notes        *string      `db:"notes" json:"notes,omitempty"`
	State        RequestState `db:"state" json:"state"`
	RejectReason *string      `db:"reject_reason" json:"rejectReason,omitempty"`
	AdminComment *string      `db:"admin_comment" json:"adminComment,omitempty"`
	OrderID      *string      `db:"order_id" json:"orderId,omitempty"`
	ReviewedBy   *string      `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewedAt   *time.Time   `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CreatedAt    time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updatedAt"`
}

// RequestFilter constrains request listing queries.
type RequestFilter struct {
	States      []RequestState
	WeekNumber  *int
	RequesterID string
	SubjectID   string
	OrderID     string
	Limit       int
	Offset      int
}
