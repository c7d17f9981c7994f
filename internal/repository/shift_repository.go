package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

// ShiftRepo provides data access to the shifts table. The
// one-open-shift-per-operator rule is backed by a generated column
// unique key, so a concurrent open racing past the application
// pre-check fails with ErrDuplicate instead of creating a second open
// shift.
type ShiftRepo struct {
	db *sql.DB
}

// NewShiftRepo returns a new ShiftRepo bound to the given database.
func NewShiftRepo(db *sql.DB) *ShiftRepo { return &ShiftRepo{db: db} }

const shiftColumns = `id, operator_id, opened_at, closed_at, ticket_count, charge_total_cents, notes, is_active, created_at, updated_at`

func scanShift(row interface{ Scan(...any) error }) (*model.Shift, error) {
	var s model.Shift
	var closedAt sql.NullTime
	var notes sql.NullString
	err := row.Scan(&s.ID, &s.OperatorID, &s.OpenedAt, &closedAt, &s.TicketCount,
		&s.ChargeTotalCents, &notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if closedAt.Valid {
		v := closedAt.Time.UTC()
		s.ClosedAt = &v
	}
	if notes.Valid {
		v := notes.String
		s.Notes = &v
	}
	return &s, nil
}

// Create opens a new shift for an operator. A duplicate on the open
// shift key means the operator already has one open and surfaces as
// ErrDuplicate.
func (r *ShiftRepo) Create(ctx context.Context, s *model.Shift) error {
	const q = `INSERT INTO shifts (operator_id, opened_at, notes, is_active) VALUES (?, ?, ?, 1)`
	res, err := r.db.ExecContext(ctx, q, s.OperatorID, s.OpenedAt.UTC(), s.Notes)
	if isDuplicateKey(err, "uq_shifts_operator_open") {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*s = *created
	return nil
}

// GetByID returns the shift with the given ID or sql.ErrNoRows.
func (r *ShiftRepo) GetByID(ctx context.Context, id uint64) (*model.Shift, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE id = ?`
	return scanShift(r.db.QueryRowContext(ctx, q, id))
}

// GetOpenByOperator returns the operator's open shift, or sql.ErrNoRows
// when none is open.
func (r *ShiftRepo) GetOpenByOperator(ctx context.Context, operatorID uint64) (*model.Shift, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts WHERE operator_id = ? AND closed_at IS NULL`
	return scanShift(r.db.QueryRowContext(ctx, q, operatorID))
}

// List returns all shifts, newest opening first.
func (r *ShiftRepo) List(ctx context.Context) ([]model.Shift, error) {
	const q = `SELECT ` + shiftColumns + ` FROM shifts ORDER BY opened_at DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shifts := make([]model.Shift, 0)
	for rows.Next() {
		s, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shifts, nil
}

// Close finalizes an open shift with the aggregated totals computed by
// the caller. The WHERE clause guards against closing twice; zero rows
// affected reports sql.ErrNoRows.
func (r *ShiftRepo) Close(ctx context.Context, id uint64, closedAt time.Time, ticketCount int, chargeTotalCents int64) (*model.Shift, error) {
	const q = `UPDATE shifts
	           SET closed_at = ?, is_active = 0, ticket_count = ?, charge_total_cents = ?
	           WHERE id = ? AND closed_at IS NULL`
	res, err := r.db.ExecContext(ctx, q, closedAt.UTC(), ticketCount, chargeTotalCents, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, sql.ErrNoRows
	}
	return r.GetByID(ctx, id)
}

// Reopen clears the close timestamp and reactivates the shift. This is
// the administrative override; it does not touch the aggregated totals.
func (r *ShiftRepo) Reopen(ctx context.Context, id uint64) (*model.Shift, error) {
	const q = `UPDATE shifts SET closed_at = NULL, is_active = 1 WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, id); err != nil {
		if isDuplicateKey(err, "uq_shifts_operator_open") {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// ForceClose deactivates the shift and stamps a close time if absent,
// without recomputing totals. Administrative override, not a full close.
func (r *ShiftRepo) ForceClose(ctx context.Context, id uint64, closedAt time.Time) (*model.Shift, error) {
	const q = `UPDATE shifts SET is_active = 0, closed_at = COALESCE(closed_at, ?) WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, closedAt.UTC(), id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}
