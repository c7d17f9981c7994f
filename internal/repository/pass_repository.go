package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

// PassRepo provides data access to the monthly_passes table. Validity
// is answered against a time-windowed query rather than the active
// flag alone, so historical passes for the same plate can be retained.
type PassRepo struct {
	db *sql.DB
}

// NewPassRepo returns a new PassRepo bound to the given database.
func NewPassRepo(db *sql.DB) *PassRepo { return &PassRepo{db: db} }

const passColumns = `id, owner_name, email, plate, starts_at, ends_at, amount_cents, notification_sent, is_active, created_at, updated_at`

func scanPass(row interface{ Scan(...any) error }) (*model.MonthlyPass, error) {
	var p model.MonthlyPass
	var email sql.NullString
	err := row.Scan(&p.ID, &p.OwnerName, &email, &p.Plate, &p.StartsAt, &p.EndsAt,
		&p.AmountCents, &p.NotificationSent, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		p.Email = &v
	}
	return &p, nil
}

// GetValidByPlate returns the active pass covering the plate at the
// given instant, or sql.ErrNoRows. Both window ends are inclusive.
func (r *PassRepo) GetValidByPlate(ctx context.Context, plate string, at time.Time) (*model.MonthlyPass, error) {
	const q = `SELECT ` + passColumns + ` FROM monthly_passes
	           WHERE plate = ? AND is_active = 1 AND starts_at <= ? AND ends_at >= ?
	           LIMIT 1`
	return scanPass(r.db.QueryRowContext(ctx, q, plate, at.UTC(), at.UTC()))
}

// HasValid reports whether an active pass covers the plate at the
// given instant.
func (r *PassRepo) HasValid(ctx context.Context, plate string, at time.Time) (bool, error) {
	return r.hasValidExcluding(ctx, plate, at, 0)
}

// HasValidExcluding is HasValid ignoring one pass ID; used when
// updating a pass so it does not collide with itself.
func (r *PassRepo) HasValidExcluding(ctx context.Context, plate string, at time.Time, excludeID uint64) (bool, error) {
	return r.hasValidExcluding(ctx, plate, at, excludeID)
}

func (r *PassRepo) hasValidExcluding(ctx context.Context, plate string, at time.Time, excludeID uint64) (bool, error) {
	const q = `SELECT EXISTS(
	             SELECT 1 FROM monthly_passes
	             WHERE plate = ? AND is_active = 1 AND starts_at <= ? AND ends_at >= ? AND id <> ?)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, plate, at.UTC(), at.UTC(), excludeID).Scan(&exists)
	return exists, err
}

// GetByID returns the pass with the given ID or sql.ErrNoRows.
func (r *PassRepo) GetByID(ctx context.Context, id uint64) (*model.MonthlyPass, error) {
	const q = `SELECT ` + passColumns + ` FROM monthly_passes WHERE id = ?`
	return scanPass(r.db.QueryRowContext(ctx, q, id))
}

// List returns every pass, soonest expiry first. Inactive passes are
// included for administrative views.
func (r *PassRepo) List(ctx context.Context) ([]model.MonthlyPass, error) {
	const q = `SELECT ` + passColumns + ` FROM monthly_passes ORDER BY ends_at`
	return r.queryPasses(ctx, q)
}

// ListExpiring returns active passes whose window ends inside
// [from, to], soonest first. It feeds the expiry warning flow.
func (r *PassRepo) ListExpiring(ctx context.Context, from, to time.Time) ([]model.MonthlyPass, error) {
	const q = `SELECT ` + passColumns + ` FROM monthly_passes
	           WHERE is_active = 1 AND ends_at >= ? AND ends_at <= ?
	           ORDER BY ends_at`
	return r.queryPasses(ctx, q, from.UTC(), to.UTC())
}

// coveredLocked reports whether an active pass other than excludeID
// currently covers the plate. It takes next-key locks on the plate's
// index range, so a racing insert for the same plate blocks until the
// surrounding transaction finishes.
func coveredLocked(ctx context.Context, tx *sql.Tx, plate string, excludeID uint64) (bool, error) {
	const q = `SELECT COUNT(*) FROM monthly_passes
	           WHERE plate = ? AND is_active = 1
	             AND starts_at <= UTC_TIMESTAMP() AND ends_at >= UTC_TIMESTAMP()
	             AND id <> ?
	           FOR UPDATE`
	var n int
	if err := tx.QueryRowContext(ctx, q, plate, excludeID).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts a new pass. The service checks the no-overlap rule
// first; the insert runs in a transaction that re-checks it under a
// range lock on the plate, so two racing creates cannot both land. A
// lost race surfaces as ErrDuplicate.
func (r *PassRepo) Create(ctx context.Context, p *model.MonthlyPass) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	covered, err := coveredLocked(ctx, tx, p.Plate, 0)
	if err != nil {
		return err
	}
	if covered {
		return ErrDuplicate
	}

	const q = `INSERT INTO monthly_passes (owner_name, email, plate, starts_at, ends_at, amount_cents, is_active)
	           VALUES (?, ?, ?, ?, ?, ?, 1)`
	res, err := tx.ExecContext(ctx, q, p.OwnerName, p.Email, p.Plate, p.StartsAt.UTC(), p.EndsAt.UTC(), p.AmountCents)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*p = *created
	return nil
}

// Update rewrites the editable fields of an existing pass. Moving a
// pass onto another plate races the same way a create does, so the
// write re-checks coverage under the same range lock.
func (r *PassRepo) Update(ctx context.Context, p *model.MonthlyPass) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	covered, err := coveredLocked(ctx, tx, p.Plate, p.ID)
	if err != nil {
		return err
	}
	if covered {
		return ErrDuplicate
	}

	const q = `UPDATE monthly_passes
	           SET owner_name = ?, email = ?, plate = ?, starts_at = ?, ends_at = ?, amount_cents = ?
	           WHERE id = ?`
	if _, err := tx.ExecContext(ctx, q, p.OwnerName, p.Email, p.Plate, p.StartsAt.UTC(), p.EndsAt.UTC(), p.AmountCents, p.ID); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	updated, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	*p = *updated
	return nil
}

// Toggle flips the administrative active flag and returns the updated pass.
func (r *PassRepo) Toggle(ctx context.Context, id uint64) (*model.MonthlyPass, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE monthly_passes SET is_active = NOT is_active WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// MarkNotified records that an expiry warning has been dispatched so
// the pass is not warned about twice.
func (r *PassRepo) MarkNotified(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE monthly_passes SET notification_sent = 1 WHERE id = ?`, id)
	return err
}

// Delete removes a pass permanently. Callers must first verify that no
// ticket references it; passes with billing history are immutable once
// used. A ticket reference racing past that check trips the foreign
// key and surfaces as ErrConflict.
func (r *PassRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM monthly_passes WHERE id = ?`, id)
	if isForeignKeyBlocked(err) {
		return ErrConflict
	}
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *PassRepo) queryPasses(ctx context.Context, q string, args ...any) ([]model.MonthlyPass, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	passes := make([]model.MonthlyPass, 0)
	for rows.Next() {
		p, err := scanPass(rows)
		if err != nil {
			return nil, err
		}
		passes = append(passes, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return passes, nil
}
