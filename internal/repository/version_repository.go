package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// VersionRepo persists immutable layout snapshots.  The entity lists are
// stored as JSON columns: versions are written once, read whole and never
// queried field-by-field, so relational decomposition would buy nothing.
// A UNIQUE(floor_id, number) key is the arbiter of version numbering;
// losing the race surfaces as ErrConflict.
type VersionRepo struct{ DB *sql.DB }

func NewVersionRepo(db *sql.DB) *VersionRepo { return &VersionRepo{DB: db} }

// Create inserts a version row.  The caller assigns the number; a
// duplicate (floor_id, number) pair returns ErrConflict so the publish
// pipeline can re-read and retry.
func (r *VersionRepo) Create(ctx context.Context, v *model.Version) error {
	tables, err := json.Marshal(v.Tables)
	if err != nil {
		return err
	}
	sections, err := json.Marshal(v.Sections)
	if err != nil {
		return err
	}
	combos, err := json.Marshal(v.Combos)
	if err != nil {
		return err
	}
	summary, err := json.Marshal(v.Summary)
	if err != nil {
		return err
	}

	const q = `INSERT INTO floor_versions
	           (floor_id, number, published_by, published_at, notes, restored_from, tables, sections, combos, summary)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.DB.ExecContext(ctx, q,
		v.FloorID, v.Number, v.PublishedBy, v.PublishedAt, v.Notes, v.RestoredFrom,
		tables, sections, combos, summary)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByNumber fetches one version of a floor.  A missing version returns
// (nil, nil); the lifecycle maps that to its own not-found error.
func (r *VersionRepo) GetByNumber(ctx context.Context, floorID uint64, number int) (*model.Version, error) {
	const q = `SELECT id, floor_id, number, published_by, published_at, notes, restored_from, tables, sections, combos, summary
	           FROM floor_versions WHERE floor_id = ? AND number = ? LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, q, floorID, number))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// GetLatest fetches the highest-numbered version of a floor, or
// (nil, nil) for a floor that was never published.
func (r *VersionRepo) GetLatest(ctx context.Context, floorID uint64) (*model.Version, error) {
	const q = `SELECT id, floor_id, number, published_by, published_at, notes, restored_from, tables, sections, combos, summary
	           FROM floor_versions WHERE floor_id = ? ORDER BY number DESC LIMIT 1`
	v, err := scanVersion(r.DB.QueryRowContext(ctx, q, floorID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return v, err
}

// ListByFloor returns the version history newest first, without the
// entity payloads: the list view only needs the headline fields.
func (r *VersionRepo) ListByFloor(ctx context.Context, floorID uint64, limit int) ([]*model.Version, error) {
	if limit <= 0 {
		limit = 50
	}
	const q = `SELECT id, floor_id, number, published_by, published_at, notes, restored_from, summary
	           FROM floor_versions WHERE floor_id = ? ORDER BY number DESC LIMIT ?`
	rows, err := r.DB.QueryContext(ctx, q, floorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Version
	for rows.Next() {
		v := new(model.Version)
		var summary []byte
		if err := rows.Scan(&v.ID, &v.FloorID, &v.Number, &v.PublishedBy, &v.PublishedAt, &v.Notes, &v.RestoredFrom, &summary); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(summary, &v.Summary); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

type rowScanner interface{ Scan(dest ...any) error }

func scanVersion(row rowScanner) (*model.Version, error) {
	v := new(model.Version)
	var tables, sections, combos, summary []byte
	if err := row.Scan(&v.ID, &v.FloorID, &v.Number, &v.PublishedBy, &v.PublishedAt, &v.Notes, &v.RestoredFrom,
		&tables, &sections, &combos, &summary); err != nil {
		return nil, err
	}
	for _, pair := range []struct {
		raw []byte
		dst any
	}{
		{tables, &v.Tables},
		{sections, &v.Sections},
		{combos, &v.Combos},
		{summary, &v.Summary},
	} {
		if len(pair.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(pair.raw, pair.dst); err != nil {
			return nil, err
		}
	}
	return v, nil
}
