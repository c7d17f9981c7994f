package model

import "time"

// Ticket kinds.  A GUEST ticket is billed against the active rate on
// exit, while a MONTHLY_PASS ticket belongs to a plate covered by a
// current monthly pass and always closes with a zero charge.
const (
	KindGuest       = "GUEST"
	KindMonthlyPass = "MONTHLY_PASS"
)

// Ticket lifecycle states.  A ticket starts ACTIVE, becomes FINALIZED
// when the vehicle exits, and can be VOIDED either on exit or by the
// reconciliation pass.  Reconciliation is the only path allowed to move
// a ticket between FINALIZED and VOIDED.
const (
	StateActive    = "ACTIVE"
	StateFinalized = "FINALIZED"
	StateVoided    = "VOIDED"
)

// Ticket represents one vehicle's parking stay.  It corresponds to a
// row in the `tickets` table.  All monetary amounts are stored in
// cents and all timestamps in UTC.
//
// Fields:
//  ID              – primary key identifier.
//  Folio           – human-facing unique identifier, sortable by creation order.
//  Plate           – vehicle plate.  At most one ACTIVE ticket may exist per plate.
//  EntryAt         – when the vehicle entered.
//  ExitAt          – when the vehicle left (nil while the ticket is ACTIVE).
//  Kind            – GUEST or MONTHLY_PASS.
//  ChargeCents     – amount billed; set only when the ticket is FINALIZED.
//  StayMinutes     – cached stay duration in whole minutes (nil until exit).
//  Paid            – whether the charge has been collected.
//  Active          – soft flag cleared when a ticket is voided.
//  State           – ACTIVE, FINALIZED or VOIDED.
//  EntryOperatorID – operator who opened the ticket (nil after operator deletion).
//  ExitOperatorID  – operator who closed the ticket, if any.
//  RateID          – rate in force when the ticket was billed, if any.
//  PassID          – monthly pass covering the stay, if any.
type Ticket struct {
	ID              uint64     // tickets.id
	Folio           string     // tickets.folio
	Plate           string     // tickets.plate
	EntryAt         time.Time  // tickets.entry_at
	ExitAt          *time.Time // tickets.exit_at (nullable)
	Kind            string     // tickets.kind
	ChargeCents     int64      // tickets.charge_cents
	StayMinutes     *int       // tickets.stay_minutes (nullable)
	Paid            bool       // tickets.paid
	Active          bool       // tickets.active
	State           string     // tickets.state
	EntryOperatorID *uint64    // tickets.entry_operator_id (nullable)
	ExitOperatorID  *uint64    // tickets.exit_operator_id (nullable)
	RateID          *uint64    // tickets.rate_id (nullable)
	PassID          *uint64    // tickets.pass_id (nullable)
	CreatedAt       time.Time  // tickets.created_at
	UpdatedAt       time.Time  // tickets.updated_at
}
