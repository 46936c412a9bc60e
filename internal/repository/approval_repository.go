package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// ErrApprovalNotFound is returned when an approval request lookup fails.
var ErrApprovalNotFound = errors.New("approval request not found")

// ApprovalRepo persists publish approval requests.  Requests are written
// when a non-publisher asks for a publish and updated exactly once when
// resolved; the summary is stored as JSON alongside the headline columns.
type ApprovalRepo struct{ DB *sql.DB }

func NewApprovalRepo(db *sql.DB) *ApprovalRepo { return &ApprovalRepo{DB: db} }

// Create inserts a new approval request.
func (r *ApprovalRepo) Create(ctx context.Context, req *model.ApprovalRequest) error {
	summary, err := json.Marshal(req.Summary)
	if err != nil {
		return err
	}
	const q = `INSERT INTO approval_requests
	           (id, floor_id, requester_id, approver_id, status, message, priority, lock_draft, summary, notes, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.DB.ExecContext(ctx, q,
		req.ID, req.FloorID, req.RequesterID, req.ApproverID, req.Status,
		req.Message, req.Priority, req.LockDraft, summary, req.Notes, req.CreatedAt)
	return err
}

// Update writes the resolution fields of a request.
func (r *ApprovalRepo) Update(ctx context.Context, req *model.ApprovalRequest) error {
	const q = `UPDATE approval_requests
	           SET status = ?, resolved_by = ?, resolution = ?, resolved_at = ?
	           WHERE id = ?`
	res, err := r.DB.ExecContext(ctx, q, req.Status, req.ResolvedBy, req.Resolution, req.ResolvedAt, req.ID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrApprovalNotFound
	}
	return nil
}

// GetByID fetches one request.
func (r *ApprovalRepo) GetByID(ctx context.Context, id string) (*model.ApprovalRequest, error) {
	const q = `SELECT id, floor_id, requester_id, approver_id, status, message, priority, lock_draft, summary, notes,
	                  resolved_by, resolution, created_at, resolved_at
	           FROM approval_requests WHERE id = ? LIMIT 1`
	req, err := scanApproval(r.DB.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrApprovalNotFound
	}
	return req, err
}

// ListByFloor returns a floor's approval requests, newest first.
func (r *ApprovalRepo) ListByFloor(ctx context.Context, floorID uint64, limit int) ([]*model.ApprovalRequest, error) {
	const q = `SELECT id, floor_id, requester_id, approver_id, status, message, priority, lock_draft, summary, notes,
	                  resolved_by, resolution, created_at, resolved_at
	           FROM approval_requests WHERE floor_id = ? ORDER BY created_at DESC LIMIT ?`
	return r.listApprovals(ctx, q, floorID, limitOrDefault(limit))
}

// ListPendingForApprover returns the open requests waiting on a user,
// oldest first so the queue drains in order.
func (r *ApprovalRepo) ListPendingForApprover(ctx context.Context, approverID uint64, limit int) ([]*model.ApprovalRequest, error) {
	const q = `SELECT id, floor_id, requester_id, approver_id, status, message, priority, lock_draft, summary, notes,
	                  resolved_by, resolution, created_at, resolved_at
	           FROM approval_requests WHERE approver_id = ? AND status = 'pending'
	           ORDER BY created_at LIMIT ?`
	return r.listApprovals(ctx, q, approverID, limitOrDefault(limit))
}

func (r *ApprovalRepo) listApprovals(ctx context.Context, q string, args ...any) ([]*model.ApprovalRequest, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ApprovalRequest
	for rows.Next() {
		req, err := scanApproval(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanApproval(row rowScanner) (*model.ApprovalRequest, error) {
	req := new(model.ApprovalRequest)
	var (
		summary    []byte
		resolvedBy sql.NullInt64
		resolution sql.NullString
		resolvedAt sql.NullTime
	)
	if err := row.Scan(&req.ID, &req.FloorID, &req.RequesterID, &req.ApproverID, &req.Status,
		&req.Message, &req.Priority, &req.LockDraft, &summary, &req.Notes,
		&resolvedBy, &resolution, &req.CreatedAt, &resolvedAt); err != nil {
		return nil, err
	}
	if len(summary) > 0 {
		if err := json.Unmarshal(summary, &req.Summary); err != nil {
			return nil, err
		}
	}
	if resolvedBy.Valid {
		req.ResolvedBy = uint64(resolvedBy.Int64)
	}
	req.Resolution = resolution.String
	if resolvedAt.Valid {
		t := resolvedAt.Time
		req.ResolvedAt = &t
	}
	return req, nil
}

func limitOrDefault(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
