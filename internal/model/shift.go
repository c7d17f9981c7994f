package model

import "time"

// Shift records one operator work session.  While open it has no
// close timestamp; closing it aggregates the finalized tickets the
// operator opened during the session into TicketCount and
// ChargeTotalCents.  Totals are recomputed from ticket rows on close
// rather than incremented as tickets finalize, so they cannot drift
// from the underlying records.
//
// Fields:
//  ID               – primary key identifier.
//  OperatorID       – owning operator.  One open shift per operator.
//  OpenedAt         – when the shift started.
//  ClosedAt         – when the shift ended (nil while open).
//  TicketCount      – finalized tickets opened during the shift.
//  ChargeTotalCents – sum of charges for those tickets, in cents.
//  Notes            – optional free-form remarks.
//  IsActive         – whether the shift is considered open.
type Shift struct {
	ID               uint64     // shifts.id
	OperatorID       uint64     // shifts.operator_id
	OpenedAt         time.Time  // shifts.opened_at
	ClosedAt         *time.Time // shifts.closed_at (nullable)
	TicketCount      int        // shifts.ticket_count
	ChargeTotalCents int64      // shifts.charge_total_cents
	Notes            *string    // shifts.notes (nullable)
	IsActive         bool       // shifts.is_active
	CreatedAt        time.Time  // shifts.created_at
	UpdatedAt        time.Time  // shifts.updated_at
}
