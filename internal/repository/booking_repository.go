package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"roomdesk/internal/model"
)

// BookingRepo manages persistence for bookings and their allocations. It is
// the final enforcement point for cross-request mutual exclusion: two
// overlapping requests for intersecting room sets serialize on room row
// locks inside CreateWithAllocations, so exactly one of them commits.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo constructs a BookingRepo with the given DB handle.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

// DB exposes the underlying sql.DB for callers that need transaction
// control spanning repositories.
func (r *BookingRepo) DB() *sql.DB { return r.db }

// CreateWithAllocations persists a booking plus one allocation per room of
// the expansion set inside a single transaction:
//
//  1. lock the room rows of the set (ordered by id, so concurrent writers
//     with intersecting sets cannot deadlock),
//  2. re-run the open-interval overlap query against booking_allocations,
//  3. insert the booking and bulk-insert the allocations.
//
// A concurrent transaction holding any of the room locks finishes first;
// when it committed an intersecting allocation, step 2 fails here with an
// *OverlapError (matching ErrOverlapping) and nothing is written. The
// pre-flight availability check runs the same query without locks purely
// for error-message quality; this method is the correctness guarantee.
func (r *BookingRepo) CreateWithAllocations(ctx context.Context, booking *model.Booking, roomIDs []uuid.UUID) error {
	if len(roomIDs) == 0 {
		return errors.New("empty expansion set")
	}
	ids := make([]string, len(roomIDs))
	for i, id := range roomIDs {
		ids[i] = id.String()
	}
	sort.Strings(ids) // deterministic lock order

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

	// Step 1: serialize on the rooms of the expansion set.
	lockQ := `SELECT id FROM rooms WHERE id IN (` + placeholders(len(ids)) + `) ORDER BY id FOR UPDATE`
	lockRows, err := tx.QueryContext(ctx, lockQ, toArgs(ids)...)
	if err != nil {
		return err
	}
	locked := 0
	for lockRows.Next() {
		var id string
		if err := lockRows.Scan(&id); err != nil {
			lockRows.Close()
			return err
		}
		locked++
	}
	if err := lockRows.Err(); err != nil {
		lockRows.Close()
		return err
	}
	lockRows.Close()
	if locked != len(ids) {
		return ErrRoomNotFound
	}

	// Step 2: overlap re-check under the locks.
	checkQ := `SELECT a.room_id, r.name
               FROM booking_allocations a
               JOIN rooms r ON r.id = a.room_id
               WHERE a.room_id IN (` + placeholders(len(ids)) + `)
                 AND a.start_time < ? AND a.end_time > ?
               LIMIT 1`
	args := append(toArgs(ids), booking.EndTime.UTC(), booking.StartTime.UTC())
	var conflictID, conflictName string
	err = tx.QueryRowContext(ctx, checkQ, args...).Scan(&conflictID, &conflictName)
	switch {
	case err == nil:
		roomID, parseErr := uuid.Parse(conflictID)
		if parseErr != nil {
			return parseErr
		}
		return &OverlapError{RoomID: roomID, RoomName: conflictName}
	case errors.Is(err, sql.ErrNoRows):
		// free, proceed
	default:
		return err
	}

	// Step 3: booking row plus bulk allocation insert.
	lecturers, groups, err := encodeBookingLists(booking)
	if err != nil {
		return err
	}
	const insertBooking = `INSERT INTO bookings (id, room_id, start_time, end_time, lecturer_ids, student_group_names)
                           VALUES (?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, insertBooking,
		booking.ID.String(), booking.RoomID.String(),
		booking.StartTime.UTC(), booking.EndTime.UTC(), lecturers, groups); err != nil {
		return err
	}

	insertAlloc := `INSERT INTO booking_allocations (booking_id, room_id, start_time, end_time) VALUES `
	allocArgs := make([]any, 0, len(ids)*4)
	for i, id := range ids {
		if i > 0 {
			insertAlloc += ","
		}
		insertAlloc += "(?, ?, ?, ?)"
		allocArgs = append(allocArgs, booking.ID.String(), id, booking.StartTime.UTC(), booking.EndTime.UTC())
	}
	if _, err := tx.ExecContext(ctx, insertAlloc, allocArgs...); err != nil {
		return err
	}

	const sel = `SELECT created_at FROM bookings WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, booking.ID.String()).Scan(&booking.CreatedAt); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// FindOverlapping returns every allocation for the given rooms whose
// interval intersects [start, end). Used by the availability pre-flight; a
// non-empty result means the interval is taken.
func (r *BookingRepo) FindOverlapping(ctx context.Context, roomIDs []uuid.UUID, start, end time.Time) ([]model.Allocation, error) {
	if len(roomIDs) == 0 {
		return nil, nil
	}
	ids := make([]string, len(roomIDs))
	for i, id := range roomIDs {
		ids[i] = id.String()
	}
	q := `SELECT booking_id, room_id, start_time, end_time
          FROM booking_allocations
          WHERE room_id IN (` + placeholders(len(ids)) + `)
            AND start_time < ? AND end_time > ?`
	args := append(toArgs(ids), end.UTC(), start.UTC())
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Allocation
	for rows.Next() {
		var (
			a                 model.Allocation
			bookingID, roomID string
		)
		if err := rows.Scan(&bookingID, &roomID, &a.StartTime, &a.EndTime); err != nil {
			return nil, err
		}
		if a.BookingID, err = uuid.Parse(bookingID); err != nil {
			return nil, err
		}
		if a.RoomID, err = uuid.Parse(roomID); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

// ByID retrieves a booking. Returns ErrBookingNotFound when no row matches.
func (r *BookingRepo) ByID(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	const q = `SELECT id, room_id, start_time, end_time, lecturer_ids, student_group_names, created_at
               FROM bookings WHERE id = ?`
	rows, err := r.db.QueryContext(ctx, q, id.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, ErrBookingNotFound
	}
	return scanBooking(rows)
}

// All returns every booking ordered by start time.
func (r *BookingRepo) All(ctx context.Context) ([]model.Booking, error) {
	const q = `SELECT id, room_id, start_time, end_time, lecturer_ids, student_group_names, created_at
               FROM bookings ORDER BY start_time`
	return r.collect(ctx, q)
}

// ByRoomAndDate returns the bookings whose subject room matches and whose
// interval intersects the given UTC calendar day.
func (r *BookingRepo) ByRoomAndDate(ctx context.Context, roomID uuid.UUID, date time.Time) ([]model.Booking, error) {
	dayStart, dayEnd := dayBounds(date)
	const q = `SELECT id, room_id, start_time, end_time, lecturer_ids, student_group_names, created_at
               FROM bookings
               WHERE room_id = ? AND start_time < ? AND end_time > ?
               ORDER BY start_time`
	return r.collect(ctx, q, roomID.String(), dayEnd, dayStart)
}

// ByBuildingAndDate returns the bookings for any room of the building whose
// interval intersects the given UTC calendar day.
func (r *BookingRepo) ByBuildingAndDate(ctx context.Context, buildingID uuid.UUID, date time.Time) ([]model.Booking, error) {
	dayStart, dayEnd := dayBounds(date)
	const q = `SELECT b.id, b.room_id, b.start_time, b.end_time, b.lecturer_ids, b.student_group_names, b.created_at
               FROM bookings b
               JOIN rooms rm ON rm.id = b.room_id
               WHERE rm.building_id = ? AND b.start_time < ? AND b.end_time > ?
               ORDER BY b.start_time`
	return r.collect(ctx, q, buildingID.String(), dayEnd, dayStart)
}

// DeleteByID removes a booking and all its allocations in one transaction.
// It deliberately ignores composition state: the allocations reference rooms
// by id and cancellation must succeed even when rooms were deleted or
// detached since the booking was made.
func (r *BookingRepo) DeleteByID(ctx context.Context, id uuid.UUID) error {
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

	if _, err := tx.ExecContext(ctx, `DELETE FROM booking_allocations WHERE booking_id = ?`, id.String()); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrBookingNotFound
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// DeleteAllByRoom removes every booking holding an allocation on the given
// room, allocations included. Used by the force-delete path of room
// administration.
func (r *BookingRepo) DeleteAllByRoom(ctx context.Context, roomID uuid.UUID) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	const sel = `SELECT DISTINCT booking_id FROM booking_allocations WHERE room_id = ?`
	rows, err := tx.QueryContext(ctx, sel, roomID.String())
	if err != nil {
		return 0, err
	}
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return 0, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return 0, err
	}
	rows.Close()
	if len(ids) == 0 {
		if err := tx.Commit(); err != nil {
			return 0, err
		}
		committed = true
		return 0, nil
	}

	args := toArgs(ids)
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM booking_allocations WHERE booking_id IN (`+placeholders(len(ids))+`)`, args...); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx,
		`DELETE FROM bookings WHERE id IN (`+placeholders(len(ids))+`)`, args...)
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

// HasCurrentOrFutureAllocation reports whether any allocation for the room
// ends after the given instant. A false result means the room is deletable.
func (r *BookingRepo) HasCurrentOrFutureAllocation(ctx context.Context, roomID uuid.UUID, now time.Time) (bool, error) {
	const q = `SELECT EXISTS(SELECT 1 FROM booking_allocations WHERE room_id = ? AND end_time > ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, roomID.String(), now.UTC()).Scan(&exists)
	return exists, err
}

// DeleteExpired removes every booking whose end instant has passed,
// cascading to allocations, and returns the number of bookings removed.
func (r *BookingRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	if _, err := tx.ExecContext(ctx,
		`DELETE a FROM booking_allocations a JOIN bookings b ON b.id = a.booking_id WHERE b.end_time <= ?`,
		now.UTC()); err != nil {
		return 0, err
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM bookings WHERE end_time <= ?`, now.UTC())
	if err != nil {
		return 0, err
	}
	n, _ := res.RowsAffected()
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	committed = true
	return n, nil
}

func (r *BookingRepo) collect(ctx context.Context, q string, args ...any) ([]model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]model.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *b)
	}
	return result, rows.Err()
}

func scanBooking(rows *sql.Rows) (*model.Booking, error) {
	var (
		b                 model.Booking
		idStr, roomStr    string
		lecturers, groups []byte
	)
	if err := rows.Scan(&idStr, &roomStr, &b.StartTime, &b.EndTime, &lecturers, &groups, &b.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if b.ID, err = uuid.Parse(idStr); err != nil {
		return nil, err
	}
	if b.RoomID, err = uuid.Parse(roomStr); err != nil {
		return nil, err
	}
	if len(lecturers) > 0 {
		if err := json.Unmarshal(lecturers, &b.LecturerIDs); err != nil {
			return nil, err
		}
	}
	if len(groups) > 0 {
		if err := json.Unmarshal(groups, &b.StudentGroupNames); err != nil {
			return nil, err
		}
	}
	b.StartTime = b.StartTime.UTC()
	b.EndTime = b.EndTime.UTC()
	return &b, nil
}

func encodeBookingLists(b *model.Booking) (lecturers []byte, groups []byte, err error) {
	if len(b.LecturerIDs) > 0 {
		if lecturers, err = json.Marshal(b.LecturerIDs); err != nil {
			return nil, nil, err
		}
	}
	if len(b.StudentGroupNames) > 0 {
		if groups, err = json.Marshal(b.StudentGroupNames); err != nil {
			return nil, nil, err
		}
	}
	return lecturers, groups, nil
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

func toArgs(ids []string) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}

// dayBounds returns the half-open UTC day interval containing the given
// instant.
func dayBounds(date time.Time) (time.Time, time.Time) {
	d := date.UTC()
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return start, start.Add(24 * time.Hour)
}
