package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/iliyamo/parking-lot/internal/fee"
	"github.com/iliyamo/parking-lot/internal/model"
	"github.com/iliyamo/parking-lot/internal/repository"
)

// TicketService owns the ticket lifecycle: ACTIVE on entry, FINALIZED
// or VOIDED on exit. The one-active-ticket-per-plate rule is checked
// here first and enforced again by the tickets unique key, so a lost
// race surfaces as the same domain error as the pre-check.
type TicketService struct {
	tickets   TicketStore
	operators OperatorStore
	passes    PassStore
	rates     ActiveRateSource
	now       func() time.Time
}

// NewTicketService returns a TicketService over the given stores.
// rates is normally the RateService so the cached lookup is shared.
func NewTicketService(tickets TicketStore, operators OperatorStore, passes PassStore, rates ActiveRateSource) *TicketService {
	return &TicketService{
		tickets:   tickets,
		operators: operators,
		passes:    passes,
		rates:     rates,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// NormalizePlate upper-cases and trims a plate so lookups and the
// uniqueness key always see one spelling.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// Open registers a vehicle entry and returns the new ACTIVE ticket.
// It fails with a domain error when the plate already has an open
// ticket, when the operator is missing or inactive, or when kind is
// MONTHLY_PASS and no pass currently covers the plate.
func (s *TicketService) Open(ctx context.Context, plate, kind string, operatorID uint64) (*model.Ticket, error) {
	plate = NormalizePlate(plate)
	if plate == "" {
		return nil, domainErrf("plate is required")
	}
	switch kind {
	case "":
		kind = model.KindGuest
	case model.KindGuest, model.KindMonthlyPass:
	default:
		return nil, domainErrf("unknown ticket kind %q", kind)
	}

	if err := s.requireActiveOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	if _, err := s.tickets.GetActiveByPlate(ctx, plate); err == nil {
		return nil, domainErrf("an active ticket already exists for plate %s", plate)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	now := s.now()
	t := &model.Ticket{
		Plate:           plate,
		EntryAt:         now,
		Kind:            kind,
		State:           model.StateActive,
		Active:          true,
		EntryOperatorID: &operatorID,
	}

	if kind == model.KindMonthlyPass {
		pass, err := s.passes.GetValidByPlate(ctx, plate, now)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrf("no valid monthly pass for plate %s", plate)
		}
		if err != nil {
			return nil, err
		}
		t.PassID = &pass.ID
	}

	if err := s.tickets.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race at the storage layer; same outcome as the pre-check.
			return nil, domainErrf("an active ticket already exists for plate %s", plate)
		}
		return nil, err
	}
	log.Printf("ticket: opened %s plate=%s kind=%s (id=%d)", t.Folio, t.Plate, t.Kind, t.ID)
	return t, nil
}

// Close finalizes an ACTIVE ticket. Guest tickets are billed against
// the currently active rate; pass tickets always close at zero. A
// guest stay within the grace period finalizes with a zero charge;
// it is not voided here, only the reconciliation pass voids.
func (s *TicketService) Close(ctx context.Context, ticketID, operatorID uint64) (*model.Ticket, error) {
	t, err := s.tickets.GetByID(ctx, ticketID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrf("ticket %d does not exist", ticketID)
	}
	if err != nil {
		return nil, err
	}
	if t.State != model.StateActive {
		return nil, domainErrf("ticket %s is not active", t.Folio)
	}

	if err := s.requireActiveOperator(ctx, operatorID); err != nil {
		return nil, err
	}

	exit := s.now()
	stay := fee.StayMinutes(t.EntryAt, exit)
	t.ExitAt = &exit
	t.ExitOperatorID = &operatorID
	t.StayMinutes = &stay
	t.State = model.StateFinalized

	if t.Kind == model.KindGuest {
		rate, err := s.rates.GetActive(ctx)
		if err != nil {
			return nil, err
		}
		if rate != nil {
			t.ChargeCents = fee.ChargeForMinutes(stay, *rate)
			t.RateID = &rate.ID
		}
		// With no rate in force the charge stays zero; the
		// reconciliation pass picks the ticket up later.
	}

	if err := s.tickets.Close(ctx, t); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domainErrf("ticket %s is not active", t.Folio)
		}
		return nil, err
	}
	log.Printf("ticket: closed %s plate=%s stay=%dm charge=%d (id=%d)", t.Folio, t.Plate, stay, t.ChargeCents, t.ID)
	return t, nil
}

// GetActiveByPlate returns the plate's open ticket, or nil when the
// plate is not currently parked.
func (s *TicketService) GetActiveByPlate(ctx context.Context, plate string) (*model.Ticket, error) {
	t, err := s.tickets.GetActiveByPlate(ctx, NormalizePlate(plate))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// ListActive returns all open tickets, oldest entry first.
func (s *TicketService) ListActive(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.ListActive(ctx)
}

// List returns all non-voided tickets, newest entry first.
func (s *TicketService) List(ctx context.Context) ([]model.Ticket, error) {
	return s.tickets.List(ctx)
}

// Get returns one ticket by ID.
func (s *TicketService) Get(ctx context.Context, id uint64) (*model.Ticket, error) {
	return s.tickets.GetByID(ctx, id)
}

func (s *TicketService) requireActiveOperator(ctx context.Context, operatorID uint64) error {
	op, err := s.operators.GetByID(ctx, operatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return domainErrf("operator %d does not exist or is inactive", operatorID)
	}
	if err != nil {
		return err
	}
	if !op.IsActive {
		return domainErrf("operator %d does not exist or is inactive", operatorID)
	}
	return nil
}
