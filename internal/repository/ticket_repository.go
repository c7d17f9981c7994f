package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

// TicketRepo provides data access to the tickets table. Tickets are the
// central record of the system: one row per vehicle stay, carrying the
// billing outcome and the lifecycle state. The table enforces the
// one-active-ticket-per-plate rule through a generated column unique
// key, so a concurrent open racing past the application pre-check still
// fails with ErrDuplicate. All timestamps are stored in UTC.
type TicketRepo struct {
	db *sql.DB
}

// NewTicketRepo returns a new TicketRepo bound to the given database.
func NewTicketRepo(db *sql.DB) *TicketRepo { return &TicketRepo{db: db} }

const ticketColumns = `id, folio, plate, entry_at, exit_at, kind, charge_cents, stay_minutes,
	paid, active, state, entry_operator_id, exit_operator_id, rate_id, pass_id, created_at, updated_at`

// scanTicket reads one tickets row from a row scanner into a model.Ticket.
func scanTicket(row interface{ Scan(...any) error }) (*model.Ticket, error) {
	var t model.Ticket
	var exitAt sql.NullTime
	var stay sql.NullInt64
	var entryOp, exitOp, rateID, passID sql.NullInt64
	err := row.Scan(
		&t.ID, &t.Folio, &t.Plate, &t.EntryAt, &exitAt, &t.Kind, &t.ChargeCents, &stay,
		&t.Paid, &t.Active, &t.State, &entryOp, &exitOp, &rateID, &passID, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if exitAt.Valid {
		v := exitAt.Time.UTC()
		t.ExitAt = &v
	}
	if stay.Valid {
		v := int(stay.Int64)
		t.StayMinutes = &v
	}
	if entryOp.Valid {
		v := uint64(entryOp.Int64)
		t.EntryOperatorID = &v
	}
	if exitOp.Valid {
		v := uint64(exitOp.Int64)
		t.ExitOperatorID = &v
	}
	if rateID.Valid {
		v := uint64(rateID.Int64)
		t.RateID = &v
	}
	if passID.Valid {
		v := uint64(passID.Int64)
		t.PassID = &v
	}
	return &t, nil
}

// Create inserts a new ACTIVE ticket. The folio is generated here: the
// primary generator is the folios sequence table; when the sequence is
// unavailable a timestamp-derived folio is used instead. A duplicate
// folio (the one documented retry case) is retried once with a fresh
// fallback folio. A duplicate on the active-plate key means another
// ticket for the same plate is already open and surfaces as
// ErrDuplicate. On success the generated ID, folio and timestamps are
// populated on the provided ticket.
func (r *TicketRepo) Create(ctx context.Context, t *model.Ticket) error {
	folio := NextFolio(ctx, r.db)

	const q = `INSERT INTO tickets (folio, plate, entry_at, kind, state, active, entry_operator_id, pass_id)
	           VALUES (?, ?, ?, ?, ?, 1, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, folio, t.Plate, t.EntryAt.UTC(), t.Kind, model.StateActive, t.EntryOperatorID, t.PassID)
	if isDuplicateKey(err, "uq_tickets_folio") {
		// Collision on the folio itself: regenerate once and retry.
		folio = fallbackFolio(time.Now().UTC())
		res, err = r.db.ExecContext(ctx, q, folio, t.Plate, t.EntryAt.UTC(), t.Kind, model.StateActive, t.EntryOperatorID, t.PassID)
	}
	if isDuplicateKey(err, "uq_tickets_plate_active") {
		return ErrDuplicate
	}
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}

	// Query back the full row to populate defaults and timestamps.
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*t = *created
	return nil
}

// GetByID returns the ticket with the given ID or sql.ErrNoRows.
func (r *TicketRepo) GetByID(ctx context.Context, id uint64) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`
	return scanTicket(r.db.QueryRowContext(ctx, q, id))
}

// GetActiveByPlate returns the single ACTIVE ticket for a plate, or
// sql.ErrNoRows when the plate has no open stay.
func (r *TicketRepo) GetActiveByPlate(ctx context.Context, plate string) (*model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets WHERE plate = ? AND state = ? AND active = 1`
	return scanTicket(r.db.QueryRowContext(ctx, q, plate, model.StateActive))
}

// ListActive returns all open tickets ordered by entry time, oldest first.
func (r *TicketRepo) ListActive(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
	           WHERE state = ? AND active = 1 ORDER BY entry_at`
	return r.queryTickets(ctx, q, model.StateActive)
}

// List returns all non-voided tickets, newest entry first.
func (r *TicketRepo) List(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
	           WHERE state <> ? ORDER BY entry_at DESC`
	return r.queryTickets(ctx, q, model.StateVoided)
}

// Close persists the exit of an ACTIVE ticket: exit timestamp, exit
// operator, cached stay duration, charge, billed rate and the
// FINALIZED state. The WHERE clause guards the ACTIVE state so a
// concurrent close of the same ticket affects zero rows and reports
// sql.ErrNoRows instead of double-billing.
func (r *TicketRepo) Close(ctx context.Context, t *model.Ticket) error {
	const q = `UPDATE tickets
	           SET exit_at = ?, exit_operator_id = ?, stay_minutes = ?, charge_cents = ?, rate_id = ?, state = ?
	           WHERE id = ? AND state = ?`
	res, err := r.db.ExecContext(ctx, q,
		t.ExitAt.UTC(), t.ExitOperatorID, t.StayMinutes, t.ChargeCents, t.RateID, t.State,
		t.ID, model.StateActive,
	)
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

// ListZeroChargeGuests returns the reconciliation candidates: guest
// tickets that have an exit timestamp but a zero charge and are not
// yet voided. These are stays that were closed without being billed.
func (r *TicketRepo) ListZeroChargeGuests(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
	           WHERE exit_at IS NOT NULL AND charge_cents = 0 AND kind = ? AND state <> ?
	           ORDER BY id`
	return r.queryTickets(ctx, q, model.KindGuest, model.StateVoided)
}

// ApplyBilling writes the full outcome of one reconciliation decision
// for one ticket in a single statement, so a failure never leaves the
// row with a partially applied field set.
func (r *TicketRepo) ApplyBilling(ctx context.Context, id uint64, chargeCents int64, stayMinutes int, rateID *uint64, state string, active, paid bool) error {
	const q = `UPDATE tickets
	           SET charge_cents = ?, stay_minutes = ?, rate_id = COALESCE(?, rate_id), state = ?, active = ?, paid = ?
	           WHERE id = ?`
	_, err := r.db.ExecContext(ctx, q, chargeCents, stayMinutes, rateID, state, active, paid, id)
	return err
}

// ListPaidInconsistent returns tickets flagged paid although they carry
// no charge or are voided. An invoiced-but-unbillable ticket is
// impossible, so reconciliation clears the flag.
func (r *TicketRepo) ListPaidInconsistent(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
	           WHERE paid = 1 AND (charge_cents = 0 OR state = ?) ORDER BY id`
	return r.queryTickets(ctx, q, model.StateVoided)
}

// ClearPaid resets the paid flag on one ticket.
func (r *TicketRepo) ClearPaid(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tickets SET paid = 0 WHERE id = ?`, id)
	return err
}

// ListClosedUnnormalized returns closed, unpaid, charged tickets whose
// state is neither FINALIZED nor VOIDED. Reconciliation normalizes
// them to FINALIZED.
func (r *TicketRepo) ListClosedUnnormalized(ctx context.Context) ([]model.Ticket, error) {
	const q = `SELECT ` + ticketColumns + ` FROM tickets
	           WHERE exit_at IS NOT NULL AND paid = 0 AND charge_cents > 0
	             AND state NOT IN (?, ?) ORDER BY id`
	return r.queryTickets(ctx, q, model.StateFinalized, model.StateVoided)
}

// MarkFinalized sets one ticket's state to FINALIZED.
func (r *TicketRepo) MarkFinalized(ctx context.Context, id uint64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tickets SET state = ? WHERE id = ?`, model.StateFinalized, id)
	return err
}

// InUseByRate reports whether any ticket references the given rate.
func (r *TicketRepo) InUseByRate(ctx context.Context, rateID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tickets WHERE rate_id = ?)`, rateID).Scan(&exists)
	return exists, err
}

// InUseByPass reports whether any ticket references the given pass.
func (r *TicketRepo) InUseByPass(ctx context.Context, passID uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM tickets WHERE pass_id = ?)`, passID).Scan(&exists)
	return exists, err
}

// AggregateFinalized sums the finalized tickets a given operator opened
// inside [from, to]. Used by the shift ledger on close; totals are
// always derived from ticket rows, never incremented.
func (r *TicketRepo) AggregateFinalized(ctx context.Context, operatorID uint64, from, to time.Time) (int, int64, error) {
	const q = `SELECT COUNT(*), COALESCE(SUM(charge_cents), 0) FROM tickets
	           WHERE entry_operator_id = ? AND entry_at >= ? AND entry_at <= ? AND state = ?`
	var count int
	var total int64
	err := r.db.QueryRowContext(ctx, q, operatorID, from.UTC(), to.UTC(), model.StateFinalized).Scan(&count, &total)
	return count, total, err
}

func (r *TicketRepo) queryTickets(ctx context.Context, q string, args ...any) ([]model.Ticket, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	tickets := make([]model.Ticket, 0)
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		tickets = append(tickets, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tickets, nil
}
