package model

import "time"

// MonthlyPass is a time-windowed subscription that exempts a plate
// from metered billing.  Multiple historical passes may exist for the
// same plate but at most one may be valid at any instant.
//
// Fields:
//  ID               – primary key identifier.
//  OwnerName        – name of the subscription holder.
//  Email            – optional address for pass notifications.
//  Plate            – covered vehicle plate.
//  StartsAt         – first instant of coverage (inclusive).
//  EndsAt           – last instant of coverage (inclusive).
//  AmountCents      – subscription price derived from the window length.
//  NotificationSent – whether an expiry warning has been dispatched.
//  IsActive         – administrative flag; inactive passes never cover a plate.
type MonthlyPass struct {
	ID               uint64    // monthly_passes.id
	OwnerName        string    // monthly_passes.owner_name
	Email            *string   // monthly_passes.email (nullable)
	Plate            string    // monthly_passes.plate
	StartsAt         time.Time // monthly_passes.starts_at
	EndsAt           time.Time // monthly_passes.ends_at
	AmountCents      int64     // monthly_passes.amount_cents
	NotificationSent bool      // monthly_passes.notification_sent
	IsActive         bool      // monthly_passes.is_active
	CreatedAt        time.Time // monthly_passes.created_at
	UpdatedAt        time.Time // monthly_passes.updated_at
}

// Covers reports whether the pass is valid at the given instant.  The
// validity window is inclusive on both ends and an inactive pass never
// covers anything.
func (p *MonthlyPass) Covers(at time.Time) bool {
	if !p.IsActive {
		return false
	}
	return !at.Before(p.StartsAt) && !at.After(p.EndsAt)
}
