package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"roomdesk/internal/model"
)

// BuildingRepo manages persistence for buildings. Names are stored
// lower-cased; the service layer normalizes before calling in.
type BuildingRepo struct {
	db *sql.DB
}

// NewBuildingRepo constructs a BuildingRepo with the given DB handle.
func NewBuildingRepo(db *sql.DB) *BuildingRepo { return &BuildingRepo{db: db} }

// Create inserts a new building. The caller must have set a fresh ID.
func (r *BuildingRepo) Create(ctx context.Context, b *model.Building) error {
	const q = `INSERT INTO buildings (id, name, description, address, state) VALUES (?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q, b.ID.String(), b.Name, b.Description, b.Address, b.State); err != nil {
		return err
	}
	const sel = `SELECT created_at FROM buildings WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, b.ID.String()).Scan(&b.CreatedAt)
}

// ExistsByName reports whether a building with the given (lower-cased) name
// exists.
func (r *BuildingRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM buildings WHERE name = ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, name).Scan(&exists)
	return exists, err
}

// ByID retrieves a building by its ID. Returns ErrBuildingNotFound when no
// matching row exists.
func (r *BuildingRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Building, error) {
	const q = `SELECT id, name, description, address, state, created_at FROM buildings WHERE id = ?`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id.String()))
}

// All returns every building ordered by name.
func (r *BuildingRepo) All(ctx context.Context) ([]model.Building, error) {
	const q = `SELECT id, name, description, address, state, created_at FROM buildings ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Building, 0)
	for rows.Next() {
		b, err := scanBuilding(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

// Update rewrites the mutable columns of a building.
func (r *BuildingRepo) Update(ctx context.Context, b *model.Building) error {
	const q = `UPDATE buildings SET name = ?, description = ?, address = ?, state = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, b.Name, b.Description, b.Address, b.State, b.ID.String())
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Zero rows can also mean "no change"; confirm existence before
		// reporting not-found.
		if _, err := r.ByID(ctx, b.ID); err != nil {
			return err
		}
	}
	return nil
}

// Delete removes a building. Rooms referencing it keep the insert-time FK,
// so deleting a building with rooms fails at the driver level; the service
// checks room existence first to produce a friendly error.
func (r *BuildingRepo) Delete(ctx context.Context, id uuid.UUID) error {
	const q = `DELETE FROM buildings WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBuildingNotFound
	}
	return nil
}

func (r *BuildingRepo) scanOne(row *sql.Row) (*model.Building, error) {
	var (
		b     model.Building
		idStr string
	)
	err := row.Scan(&idStr, &b.Name, &b.Description, &b.Address, &b.State, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBuildingNotFound
		}
		return nil, err
	}
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBuilding(rows *sql.Rows) (*model.Building, error) {
	var (
		b     model.Building
		idStr string
	)
	if err := rows.Scan(&idStr, &b.Name, &b.Description, &b.Address, &b.State, &b.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	return &b, nil
}
