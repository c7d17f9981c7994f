package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-lot/internal/model"
)

// RateRepo provides data access to the rates table. At most one rate is
// meant to be active at a time; Activate makes this exclusive by
// deactivating every other rate inside the same transaction instead of
// trusting callers to keep the flag consistent.
type RateRepo struct {
	db *sql.DB
}

// NewRateRepo returns a new RateRepo bound to the given database.
func NewRateRepo(db *sql.DB) *RateRepo { return &RateRepo{db: db} }

const rateColumns = `id, name, hourly_cents, fraction_cents, daily_cap_cents, grace_minutes, is_active, created_at, updated_at`

func scanRate(row interface{ Scan(...any) error }) (*model.Rate, error) {
	var r model.Rate
	var cap sql.NullInt64
	err := row.Scan(&r.ID, &r.Name, &r.HourlyCents, &r.FractionCents, &cap, &r.GraceMinutes, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if cap.Valid {
		v := cap.Int64
		r.DailyCapCents = &v
	}
	return &r, nil
}

// GetActive returns the rate currently in force, or sql.ErrNoRows when
// no rate is active.
func (r *RateRepo) GetActive(ctx context.Context) (*model.Rate, error) {
	const q = `SELECT ` + rateColumns + ` FROM rates WHERE is_active = 1 LIMIT 1`
	return scanRate(r.db.QueryRowContext(ctx, q))
}

// GetByID returns the rate with the given ID regardless of its flag.
func (r *RateRepo) GetByID(ctx context.Context, id uint64) (*model.Rate, error) {
	const q = `SELECT ` + rateColumns + ` FROM rates WHERE id = ?`
	return scanRate(r.db.QueryRowContext(ctx, q, id))
}

// List returns all rates, active first, then by name.
func (r *RateRepo) List(ctx context.Context) ([]model.Rate, error) {
	const q = `SELECT ` + rateColumns + ` FROM rates ORDER BY is_active DESC, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	rates := make([]model.Rate, 0)
	for rows.Next() {
		rate, err := scanRate(rows)
		if err != nil {
			return nil, err
		}
		rates = append(rates, *rate)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return rates, nil
}

// Create inserts a new rate. New rates start inactive; use Activate to
// put one in force.
func (r *RateRepo) Create(ctx context.Context, rate *model.Rate) error {
	const q = `INSERT INTO rates (name, hourly_cents, fraction_cents, daily_cap_cents, grace_minutes, is_active)
	           VALUES (?, ?, ?, ?, ?, 0)`
	res, err := r.db.ExecContext(ctx, q, rate.Name, rate.HourlyCents, rate.FractionCents, rate.DailyCapCents, rate.GraceMinutes)
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
	*rate = *created
	return nil
}

// Update rewrites the schedule fields of an existing rate. The active
// flag is not touched here; activation is its own operation.
func (r *RateRepo) Update(ctx context.Context, rate *model.Rate) error {
	const q = `UPDATE rates SET name = ?, hourly_cents = ?, fraction_cents = ?, daily_cap_cents = ?, grace_minutes = ?
	           WHERE id = ?`
	if _, err := r.db.ExecContext(ctx, q, rate.Name, rate.HourlyCents, rate.FractionCents, rate.DailyCapCents, rate.GraceMinutes, rate.ID); err != nil {
		return err
	}
	// Query back; an absent row surfaces as sql.ErrNoRows here.
	updated, err := r.GetByID(ctx, rate.ID)
	if err != nil {
		return err
	}
	*rate = *updated
	return nil
}

// Activate puts the given rate in force and deactivates every other
// rate in the same transaction, so "the active rate" stays unambiguous
// even when two activations race.
func (r *RateRepo) Activate(ctx context.Context, id uint64) (*model.Rate, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `UPDATE rates SET is_active = 1 WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		// Row may exist with is_active already 1; distinguish from absent.
		var exists bool
		if err := tx.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM rates WHERE id = ?)`, id).Scan(&exists); err != nil {
			return nil, err
		}
		if !exists {
			return nil, sql.ErrNoRows
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE rates SET is_active = 0 WHERE id <> ?`, id); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Deactivate clears the active flag on one rate, leaving no rate in
// force until another is activated.
func (r *RateRepo) Deactivate(ctx context.Context, id uint64) (*model.Rate, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE rates SET is_active = 0 WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes a rate permanently. Callers must first verify that no
// ticket references the rate; rates with billing history are kept and
// deactivated instead. A ticket reference racing past that check trips
// the foreign key and surfaces as ErrConflict.
func (r *RateRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM rates WHERE id = ?`, id)
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
