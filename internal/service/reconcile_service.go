package service

import (
	"context"
	"log"

	"github.com/iliyamo/parking-lot/internal/fee"
	"github.com/iliyamo/parking-lot/internal/model"
)

// ReconcileService repairs tickets left in an inconsistent billing
// state by earlier failures: closed guest stays that were never
// billed, paid flags on unbillable tickets, closed charged tickets
// stuck outside a terminal state. The pass is idempotent: running it
// again with nothing to repair performs no writes. Each ticket is its
// own atomic unit; one ticket failing is logged and skipped, never
// blocking the rest or leaving that ticket half-written.
type ReconcileService struct {
	tickets TicketStore
	rates   ActiveRateSource
}

// NewReconcileService returns a ReconcileService. rates is normally
// the RateService so the cached active-rate lookup is shared.
func NewReconcileService(tickets TicketStore, rates ActiveRateSource) *ReconcileService {
	return &ReconcileService{tickets: tickets, rates: rates}
}

// Result summarizes one reconciliation pass.
type Result struct {
	Corrected     int `json:"corrected"`      // tickets re-billed or normalized to FINALIZED
	Voided        int `json:"voided"`         // tickets voided (grace period or no active rate)
	UnpaidCleared int `json:"unpaid_cleared"` // paid flags removed from unbillable tickets
}

// Run executes one reconciliation pass. Only a storage outage on the
// candidate queries aborts the pass; individual ticket failures are
// isolated.
func (s *ReconcileService) Run(ctx context.Context) (Result, error) {
	var res Result

	candidates, err := s.tickets.ListZeroChargeGuests(ctx)
	if err != nil {
		return res, err
	}

	rate, err := s.rates.GetActive(ctx)
	if err != nil {
		return res, err
	}
	if rate == nil && len(candidates) > 0 {
		// Fail-safe: with no rate in force nothing can be billed, so
		// every unbilled candidate is voided rather than guessed at.
		log.Printf("reconcile: no active rate, voiding %d zero-charge tickets", len(candidates))
	}

	for _, t := range candidates {
		if t.ExitAt == nil {
			continue // defensive; the candidate query requires an exit
		}

		if rate == nil {
			if err := s.void(ctx, t); err == nil {
				res.Voided++
			}
			continue
		}

		stay := 0
		if t.StayMinutes != nil {
			stay = *t.StayMinutes
		}
		if stay == 0 {
			stay = fee.StayMinutes(t.EntryAt, *t.ExitAt)
		}

		charge := fee.ChargeForMinutes(stay, *rate)
		if charge > 0 {
			rateID := rate.ID
			if err := s.tickets.ApplyBilling(ctx, t.ID, charge, stay, &rateID, model.StateFinalized, true, false); err != nil {
				log.Printf("reconcile: re-billing %s failed: %v", t.Folio, err)
				continue
			}
			log.Printf("reconcile: re-billed %s charge=%d stay=%dm", t.Folio, charge, stay)
			res.Corrected++
		} else {
			// Genuinely inside the grace period: nothing to bill, void.
			if err := s.void(ctx, t); err == nil {
				res.Voided++
			}
		}
	}

	// Paid flags on tickets that carry no charge or are voided: an
	// invoiced-but-unbillable ticket is impossible.
	paidBad, err := s.tickets.ListPaidInconsistent(ctx)
	if err != nil {
		return res, err
	}
	for _, t := range paidBad {
		if err := s.tickets.ClearPaid(ctx, t.ID); err != nil {
			log.Printf("reconcile: clearing paid flag on %s failed: %v", t.Folio, err)
			continue
		}
		res.UnpaidCleared++
	}

	// Closed, unpaid, charged tickets stuck outside a terminal state
	// are normalized to FINALIZED.
	unnormalized, err := s.tickets.ListClosedUnnormalized(ctx)
	if err != nil {
		return res, err
	}
	for _, t := range unnormalized {
		if err := s.tickets.MarkFinalized(ctx, t.ID); err != nil {
			log.Printf("reconcile: finalizing %s failed: %v", t.Folio, err)
			continue
		}
		res.Corrected++
	}

	if res.Corrected+res.Voided+res.UnpaidCleared > 0 {
		log.Printf("reconcile: corrected=%d voided=%d unpaid_cleared=%d", res.Corrected, res.Voided, res.UnpaidCleared)
	}
	return res, nil
}

func (s *ReconcileService) void(ctx context.Context, t model.Ticket) error {
	stay := 0
	if t.StayMinutes != nil {
		stay = *t.StayMinutes
	} else if t.ExitAt != nil {
		stay = fee.StayMinutes(t.EntryAt, *t.ExitAt)
	}
	if err := s.tickets.ApplyBilling(ctx, t.ID, 0, stay, nil, model.StateVoided, false, false); err != nil {
		log.Printf("reconcile: voiding %s failed: %v", t.Folio, err)
		return err
	}
	log.Printf("reconcile: voided %s", t.Folio)
	return nil
}
