package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/escuela-gastro/procurement-api/internal/models"
)

// RequestRepository persists ingredient requests.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository constructs the repository.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

const requestColumns = `id, requester_id, subject_id, class_date, week_number, lines, notes, state,
       reject_reason, admin_comment, order_id, reviewed_by, reviewed_at, created_at, updated_at`

// Create inserts a new request row.
func (r *RequestRepository) Create(ctx context.Context, request *models.Request) error {
	if request.ID == "" {
		request.ID = uuid.NewString()
	}
	if request.State == "" {
		request.State = models.RequestStatePending
	}
	now := time.Now().UTC()
	if request.CreatedAt.IsZero() {
		request.CreatedAt = now
	}
	request.UpdatedAt = now
	const query = `INSERT INTO requests
	(id, requester_id, subject_id, class_date, week_number, lines, notes, state, reject_reason, admin_comment, order_id, reviewed_by, reviewed_at, created_at, updated_at)
	VALUES (:id, :requester_id, :subject_id, :class_date, :week_number, :lines, :notes, :state, :reject_reason, :admin_comment, :order_id, :reviewed_by, :reviewed_at, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, request); err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	return nil
}

// GetByID fetches a request by identifier.
func (r *RequestRepository) GetByID(ctx context.Context, id string) (*models.Request, error) {
	query := fmt.Sprintf(`SELECT %s FROM requests WHERE id = $1`, requestColumns)
	var request models.Request
	if err := r.db.GetContext(ctx, &request, query, id); err != nil {
		return nil, err
	}
	return &request, nil
}

// List returns requests matching the filter (sorted latest first).
func (r *RequestRepository) List(ctx context.Context, filter models.RequestFilter) ([]models.Request, error) {
	builder := strings.Builder{}
	args := make([]interface{}, 0, 6)
	builder.WriteString(fmt.Sprintf(`SELECT %s FROM requests`, requestColumns))

	conditions := make([]string, 0, 5)
	if len(filter.States) > 0 {
		placeholders := make([]string, len(filter.States))
		for i, state := range filter.States {
			args = append(args, state)
			placeholders[i] = fmt.Sprintf("$%d", len(args))
		}
		conditions = append(conditions, fmt.Sprintf("state IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.WeekNumber != nil {
		args = append(args, *filter.WeekNumber)
		conditions = append(conditions, fmt.Sprintf("week_number = $%d", len(args)))
	}
	if filter.RequesterID != "" {
		args = append(args, filter.RequesterID)
		conditions = append(conditions, fmt.Sprintf("requester_id = $%d", len(args)))
	}
	if filter.SubjectID != "" {
		args = append(args, filter.SubjectID)
		conditions = append(conditions, fmt.Sprintf("subject_id = $%d", len(args)))
	}
	if filter.OrderID != "" {
		args = append(args, filter.OrderID)
		conditions = append(conditions, fmt.Sprintf("order_id = $%d", len(args)))
	}
	if len(conditions) > 0 {
		builder.WriteString(" WHERE ")
		builder.WriteString(strings.Join(conditions, " AND "))
	}
	// The id tiebreak keeps offset paging stable across equal timestamps.
	builder.WriteString(" ORDER BY created_at DESC, id DESC")

	limit := filter.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	builder.WriteString(fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset))

	var requests []models.Request
	if err := r.db.SelectContext(ctx, &requests, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("list requests: %w", err)
	}
	return requests, nil
}

// UpdateContent replaces the editable fields of a request and forces it back
// to PENDING: an edited request always needs a fresh review. The write is
// guarded on the current state so a concurrent review loses cleanly.
func (r *RequestRepository) UpdateContent(ctx context.Context, request *models.Request, expectedState models.RequestState) error {
	request.UpdatedAt = time.Now().UTC()
	const query = `UPDATE requests
SET subject_id = $1, class_date = $2, week_number = $3, lines = $4, notes = $5,
    state = $6, reject_reason = NULL, admin_comment = NULL, reviewed_by = NULL, reviewed_at = NULL, updated_at = $7
WHERE id = $8 AND state = $9`
	result, err := r.db.ExecContext(ctx, query,
		request.SubjectID, request.ClassDate, request.WeekNumber, request.Lines, request.Notes,
		models.RequestStatePending, request.UpdatedAt, request.ID, expectedState)
	if err != nil {
		return fmt.Errorf("update request: %w", err)
	}
	return requireRowsAffected(result, "update request")
}

// SetStateParams groups the columns written by a review decision.
type SetStateParams struct {
	ID           string
	From         models.RequestState
	To           models.RequestState
	RejectReason *string
	AdminComment *string
	Lines        models.RequestLines
	ReviewedBy   string
	ReviewedAt   time.Time
}

// SetState transitions a request between states with a compare-and-swap on
// the current state. sql.ErrNoRows means the request was already resolved.
func (r *RequestRepository) SetState(ctx context.Context, params SetStateParams) error {
	setParts := []string{
		"state = :state",
		"reject_reason = :reject_reason",
		"admin_comment = :admin_comment",
		"reviewed_by = :reviewed_by",
		"reviewed_at = :reviewed_at",
		"updated_at = :reviewed_at",
	}
	if params.Lines != nil {
		setParts = append(setParts, "lines = :lines")
	}
	query := fmt.Sprintf("UPDATE requests SET %s WHERE id = :id AND state = :from_state", strings.Join(setParts, ", "))
	result, err := r.db.NamedExecContext(ctx, query, map[string]interface{}{
		"id":            params.ID,
		"state":         params.To,
		"from_state":    params.From,
		"reject_reason": params.RejectReason,
		"admin_comment": params.AdminComment,
		"reviewed_by":   params.ReviewedBy,
		"reviewed_at":   params.ReviewedAt,
		"lines":         params.Lines,
	})
	if err != nil {
		return fmt.Errorf("set request state: %w", err)
	}
	return requireRowsAffected(result, "set request state")
}

// LinkToOrder associates the given requests with an order. The write is
// idempotent: re-linking already linked requests is a no-op, which lets the
// caller retry after a partial failure.
func (r *RequestRepository) LinkToOrder(ctx context.Context, ids []string, orderID string) error {
	if len(ids) == 0 {
		return nil
	}
	placeholders := make([]string, len(ids))
	args := make([]interface{}, 0, len(ids)+1)
	args = append(args, orderID)
	for i, id := range ids {
		args = append(args, id)
		placeholders[i] = fmt.Sprintf("$%d", len(args))
	}
	query := fmt.Sprintf(`UPDATE requests SET order_id = $1 WHERE id IN (%s)`, strings.Join(placeholders, ","))
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("link requests to order: %w", err)
	}
	return nil
}

// DeleteOwned removes a request when it still belongs to the requester and is
// PENDING. sql.ErrNoRows means it was already reviewed or is not theirs.
func (r *RequestRepository) DeleteOwned(ctx context.Context, id, requesterID string) error {
	const query = `DELETE FROM requests WHERE id = $1 AND requester_id = $2 AND state = $3`
	result, err := r.db.ExecContext(ctx, query, id, requesterID, models.RequestStatePending)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireRowsAffected(result, "delete request")
}

// DeleteAny removes a request regardless of state. Reserved for the elevated
// admin override; irreversible.
func (r *RequestRepository) DeleteAny(ctx context.Context, id string) error {
	const query = `DELETE FROM requests WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete request: %w", err)
	}
	return requireRowsAffected(result, "delete request")
}
