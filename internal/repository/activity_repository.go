package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// ActivityRepo appends to and reads a floor's audit trail.  The trail is
// insert-only; entries are never updated or deleted by the application.
type ActivityRepo struct{ DB *sql.DB }

func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{DB: db} }

// Record appends one entry.
func (r *ActivityRepo) Record(ctx context.Context, entry *model.ActivityEntry) error {
	var summary []byte
	if entry.Summary != nil {
		b, err := json.Marshal(entry.Summary)
		if err != nil {
			return err
		}
		summary = b
	}
	const q = `INSERT INTO floor_activity (floor_id, actor_id, action, details, summary, created_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q,
		entry.FloorID, entry.ActorID, entry.Action, entry.Details, summary, entry.CreatedAt)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	entry.ID = uint64(id)
	return nil
}

// ListByFloor returns the newest entries first.
func (r *ActivityRepo) ListByFloor(ctx context.Context, floorID uint64, limit int) ([]*model.ActivityEntry, error) {
	const q = `SELECT id, floor_id, actor_id, action, details, summary, created_at
	           FROM floor_activity WHERE floor_id = ? ORDER BY id DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, floorID, limitOrDefault(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.ActivityEntry
	for rows.Next() {
		e := new(model.ActivityEntry)
		var (
			details sql.NullString
			summary []byte
		)
		if err := rows.Scan(&e.ID, &e.FloorID, &e.ActorID, &e.Action, &details, &summary, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Details = details.String
		if len(summary) > 0 {
			e.Summary = new(model.ChangesSummary)
			if err := json.Unmarshal(summary, e.Summary); err != nil {
				return nil, err
			}
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
