package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"roomdesk/internal/model"
)

// RoomRepo manages persistence for rooms and their composition hierarchy.
// The hierarchy is stored as a single parent_room_id column on the child
// side; children are always derived by an indexed query against that column
// rather than kept as a materialized list, so the two directions of the
// relation cannot drift apart.
type RoomRepo struct {
	db *sql.DB
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db *sql.DB) *RoomRepo { return &RoomRepo{db: db} }

// DB exposes the underlying sql.DB so callers can begin transactions that
// span repositories.
func (r *RoomRepo) DB() *sql.DB { return r.db }

const roomColumns = `id, name, building_id, parent_room_id, characteristics, defects, created_at`

// Create inserts a new room. Characteristics and defects are serialized to
// JSON columns; the typed list in the model is authoritative and predicates
// never run inside SQL.
func (r *RoomRepo) Create(ctx context.Context, room *model.Room) error {
	chars, defects, err := encodeTraits(room)
	if err != nil {
		return err
	}
	const q = `INSERT INTO rooms (id, name, building_id, parent_room_id, characteristics, defects) VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := r.db.ExecContext(ctx, q,
		room.ID.String(), room.Name, room.BuildingID.String(), uuidPtr(room.ParentID), chars, defects); err != nil {
		return err
	}
	const sel = `SELECT created_at FROM rooms WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, room.ID.String()).Scan(&room.CreatedAt)
}

// ExistsByName reports whether a room with the given (lower-cased) name
// exists.
func (r *RoomRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM rooms WHERE name = ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, name).Scan(&exists)
	return exists, err
}

// ByID retrieves a room together with its derived child list. Returns
// ErrRoomNotFound when no matching row exists.
func (r *RoomRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = ?`
	rows, err := r.db.QueryContext(ctx, q, id.String())
	if err != nil {
		return nil, err
	}
	room, err := collectOneRoom(rows)
	if err != nil {
		return nil, err
	}
	if room.ComposedOf, err = r.childrenOf(ctx, room.ID); err != nil {
		return nil, err
	}
	return room, nil
}

// childrenOf returns the rooms whose parent_room_id references the given
// room. Children cannot themselves be composites (enforced on mutation), so
// this never recurses.
func (r *RoomRepo) childrenOf(ctx context.Context, parent uuid.UUID) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE parent_room_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, parent.String())
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// ByBuilding returns all rooms of a building ordered by name, without their
// child lists.
func (r *RoomRepo) ByBuilding(ctx context.Context, buildingID uuid.UUID) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE building_id = ? ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, buildingID.String())
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// All returns every room ordered by name, without child lists.
func (r *RoomRepo) All(ctx context.Context) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// FreeBetween returns the rooms that have no allocation intersecting
// [start, end), using the same open-interval predicate as the availability
// check. Characteristic filtering happens in the service on the decoded
// trait lists.
func (r *RoomRepo) FreeBetween(ctx context.Context, start, end time.Time) ([]model.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms r
               WHERE r.id NOT IN (
                   SELECT a.room_id FROM booking_allocations a
                   WHERE a.start_time < ? AND a.end_time > ?)
               ORDER BY r.name`
	rows, err := r.db.QueryContext(ctx, q, end.UTC(), start.UTC())
	if err != nil {
		return nil, err
	}
	return collectRooms(rows)
}

// Update rewrites name, building and traits of a room. Composition is
// mutated separately via AssignChildren/Detach so that the structural guard
// always runs.
func (r *RoomRepo) Update(ctx context.Context, room *model.Room) error {
	chars, defects, err := encodeTraits(room)
	if err != nil {
		return err
	}
	const q = `UPDATE rooms SET name = ?, building_id = ?, characteristics = ?, defects = ? WHERE id = ?`
	_, err = r.db.ExecContext(ctx, q, room.Name, room.BuildingID.String(), chars, defects, room.ID.String())
	return err
}

// AssignChildren points every given child at the parent inside one
// transaction. The service validates the structural invariants (no child
// with a different parent, no grandchildren) before calling; the UPDATE
// still guards with parent_room_id IS NULL so a concurrent assignment
// cannot steal a child.
func (r *RoomRepo) AssignChildren(ctx context.Context, parent uuid.UUID, children []uuid.UUID) error {
	if len(children) == 0 {
		return nil
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const q = `UPDATE rooms SET parent_room_id = ?
               WHERE id = ? AND (parent_room_id IS NULL OR parent_room_id = ?)`
	for _, child := range children {
		res, err := tx.ExecContext(ctx, q, parent.String(), child.String(), parent.String())
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			// Either the child vanished or another composite grabbed it
			// between validation and commit.
			return &CompositionError{ChildID: child}
		}
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DetachChildren clears the parent pointer of every child of the given
// composite. Used when a composite room is deleted: children survive,
// composition does not.
func (r *RoomRepo) DetachChildren(ctx context.Context, tx *sql.Tx, parent uuid.UUID) error {
	const q = `UPDATE rooms SET parent_room_id = NULL WHERE parent_room_id = ?`
	_, err := tx.ExecContext(ctx, q, parent.String())
	return err
}

// Delete removes a room after detaching its children, all in one
// transaction.
func (r *RoomRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if err := r.DetachChildren(ctx, tx, id); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM rooms WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrRoomNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// CompositionError reports a child that could not be attached to a
// composite.
type CompositionError struct {
	ChildID uuid.UUID
}

func (e *CompositionError) Error() string {
	return "room " + e.ChildID.String() + " could not be attached to the composite"
}

func uuidPtr(id *uuid.UUID) any {
	if id == nil {
		return nil
	}
	return id.String()
}

func encodeTraits(room *model.Room) (chars []byte, defects []byte, err error) {
	if chars, err = json.Marshal(room.Characteristics); err != nil {
		return nil, nil, err
	}
	if room.Defects == nil {
		return chars, nil, nil
	}
	if defects, err = json.Marshal(room.Defects); err != nil {
		return nil, nil, err
	}
	return chars, defects, nil
}

// scanRoom decodes one row of roomColumns into a model.Room.
func scanRoom(rows *sql.Rows) (*model.Room, error) {
	var (
		room       model.Room
		idStr      string
		buildingID string
		parentID   sql.NullString
		chars      []byte
		defects    []byte
	)
	if err := rows.Scan(&idStr, &room.Name, &buildingID, &parentID, &chars, &defects, &room.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if room.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if room.BuildingID, err = uuid.Parse(buildingID); err != nil {
		return nil, err
	}
	if parentID.Valid && strings.TrimSpace(parentID.String) != "" {
		pid, err := uuid.Parse(parentID.String)
		if err != nil {
			return nil, err
		}
		room.ParentID = &pid
	}
	if len(chars) > 0 {
		if err := json.Unmarshal(chars, &room.Characteristics); err != nil {
			return nil, err
		}
	}
	if len(defects) > 0 {
		if err := json.Unmarshal(defects, &room.Defects); err != nil {
			return nil, err
		}
	}
	return &room, nil
}

func collectRooms(rows *sql.Rows) ([]model.Room, error) {
	defer rows.Close()
	result := make([]model.Room, 0)
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *room)
	}
	return result, rows.Err()
}

func collectOneRoom(rows *sql.Rows) (*model.Room, error) {
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrRoomNotFound
	}
	room, err := scanRoom(rows)
	if err != nil {
		return nil, err
	}
	return room, rows.Err()
}
