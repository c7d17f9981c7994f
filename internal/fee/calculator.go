// Package fee computes parking charges from a rate schedule.  The
// calculation is a pure function of the entry time, exit time and rate
// so it can be exercised on ticket close and re-run verbatim by the
// reconciliation pass.
package fee

import (
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

// StayMinutes returns the whole minutes between entry and exit.
// Fractions of a minute are truncated, matching the stored
// stay_minutes column.  A non-positive interval yields zero.
func StayMinutes(entry, exit time.Time) int {
	m := int(exit.Sub(entry) / time.Minute)
	if m < 0 {
		return 0
	}
	return m
}

// Charge returns the amount in cents owed for a stay between entry and
// exit under the given rate:
//
//	stays at or under the grace period are free;
//	each full hour past the grace period costs HourlyCents;
//	any leftover minutes cost a single FractionCents step;
//	the total never exceeds DailyCapCents when a cap is configured.
//
// There is no proration inside an hour beyond the one fraction step.
func Charge(entry, exit time.Time, r model.Rate) int64 {
	return ChargeForMinutes(StayMinutes(entry, exit), r)
}

// ChargeForMinutes is Charge for a stay already expressed in whole
// minutes.  Reconciliation uses it when a ticket carries a cached
// stay_minutes value.
func ChargeForMinutes(stay int, r model.Rate) int64 {
	if stay <= r.GraceMinutes {
		return 0
	}
	billable := stay - r.GraceMinutes
	fullHours := int64(billable / 60)
	remainder := billable % 60

	amount := fullHours * r.HourlyCents
	if remainder > 0 {
		amount += r.FractionCents
	}
	if r.DailyCapCents != nil && amount > *r.DailyCapCents {
		amount = *r.DailyCapCents
	}
	return amount
}
