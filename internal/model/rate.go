package model

import "time"

// Rate describes a fee schedule used to bill guest tickets.  Billing
// charges HourlyCents per full hour past the grace period plus a
// single FractionCents step for any remainder, capped at
// DailyCapCents when configured.  Exactly one rate is expected to be
// active at a time; activation is an exclusive operation that
// deactivates every other rate.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – descriptive name of the schedule.
//  HourlyCents   – price of one full hour in cents.
//  FractionCents – flat price for a partial hour in cents.
//  DailyCapCents – optional maximum charge per stay (nil means no cap).
//  GraceMinutes  – stays at or under this length are free.
//  IsActive      – whether this is the rate in force.
type Rate struct {
	ID            uint64    // rates.id
	Name          string    // rates.name
	HourlyCents   int64     // rates.hourly_cents
	FractionCents int64     // rates.fraction_cents
	DailyCapCents *int64    // rates.daily_cap_cents (nullable)
	GraceMinutes  int       // rates.grace_minutes
	IsActive      bool      // rates.is_active
	CreatedAt     time.Time // rates.created_at
	UpdatedAt     time.Time // rates.updated_at
}
