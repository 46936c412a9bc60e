package repository // repository holds data access logic for domain entities

import (
	"context"      // context is used to manage deadlines and cancellation
	"database/sql" // sql provides DB primitives
	"errors"       // errors package allows sentinel error definitions
	"strings"

	"github.com/iliyamo/restaurant-floor-plan/internal/model"
)

// ErrFloorNotFound is returned when a floor lookup fails.
var ErrFloorNotFound = errors.New("floor not found")

// ErrFloorNameExists is returned when an owner already has a floor with
// the requested name.
var ErrFloorNameExists = errors.New("floor name already exists")

// FloorRepo provides methods to create and retrieve floors.  It embeds a
// database handle to perform queries and commands.
type FloorRepo struct {
	db *sql.DB // db is the underlying database connection
}

// NewFloorRepo constructs a FloorRepo with the given DB handle.
func NewFloorRepo(db *sql.DB) *FloorRepo {
	return &FloorRepo{db: db}
}

// Create inserts a new floor.  Name is unique per owner; a duplicate
// insert surfaces as ErrFloorNameExists.  After insert the ID and
// timestamp fields of the floor are populated from the stored row.
func (r *FloorRepo) Create(ctx context.Context, f *model.Floor) error {
	const qInsert = `INSERT INTO floors (owner_id, name, width, height)
	                 VALUES (?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, qInsert, f.OwnerID, f.Name, f.Width, f.Height)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrFloorNameExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	f.ID = uint64(id)

	const qSelect = `SELECT id, owner_id, name, width, height, current_version, created_at, updated_at
	                 FROM floors WHERE id = ?`
	return r.db.QueryRowContext(ctx, qSelect, f.ID).
		Scan(&f.ID, &f.OwnerID, &f.Name, &f.Width, &f.Height, &f.CurrentVersion, &f.CreatedAt, &f.UpdatedAt)
}

// GetByID retrieves a floor by its ID regardless of owner.  It returns
// ErrFloorNotFound when no row is found.
func (r *FloorRepo) GetByID(ctx context.Context, id uint64) (*model.Floor, error) {
	const q = `SELECT id, owner_id, name, width, height, current_version, created_at, updated_at FROM floors WHERE id = ?`
	var f model.Floor
	err := r.db.QueryRowContext(ctx, q, id).
		Scan(&f.ID, &f.OwnerID, &f.Name, &f.Width, &f.Height, &f.CurrentVersion, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFloorNotFound
		}
		return nil, err
	}
	return &f, nil
}

// ListByOwner returns all floors belonging to an owner, oldest first.
func (r *FloorRepo) ListByOwner(ctx context.Context, ownerID uint64) ([]*model.Floor, error) {
	const q = `SELECT id, owner_id, name, width, height, current_version, created_at, updated_at
               FROM floors
               WHERE owner_id = ?
               ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Floor
	for rows.Next() {
		f := new(model.Floor)
		if err := rows.Scan(&f.ID, &f.OwnerID, &f.Name, &f.Width, &f.Height, &f.CurrentVersion, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateMeta updates a floor's name and dimensions.  Dimensions only grow
// or move through this path; placement validity against new bounds is the
// editor's concern.  Returns sql.ErrNoRows when the floor does not exist.
func (r *FloorRepo) UpdateMeta(ctx context.Context, f *model.Floor) error {
	const q = `UPDATE floors
               SET name = ?, width = ?, height = ?, updated_at = CURRENT_TIMESTAMP
               WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Name, f.Width, f.Height, f.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrFloorNameExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetCurrentVersion advances the floor's published version pointer.
func (r *FloorRepo) SetCurrentVersion(ctx context.Context, floorID uint64, number int) error {
	const q = `UPDATE floors SET current_version = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, number, floorID)
	return err
}

// Delete removes a floor and, through FK cascades, its versions,
// approvals and activity log.
func (r *FloorRepo) Delete(ctx context.Context, id uint64) error {
	const q = `DELETE FROM floors WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrFloorNotFound
	}
	return nil
}
