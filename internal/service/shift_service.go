package service

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
	"github.com/iliyamo/parking-lot/internal/repository"
)

// ShiftService manages operator work sessions. Closing a shift derives
// its totals from the finalized tickets the operator opened inside the
// shift window; totals are never incremented ticket by ticket, so they
// cannot drift from the underlying rows.
type ShiftService struct {
	shifts    ShiftStore
	operators OperatorStore
	tickets   TicketStore
	now       func() time.Time
}

// NewShiftService returns a ShiftService over the given stores.
func NewShiftService(shifts ShiftStore, operators OperatorStore, tickets TicketStore) *ShiftService {
	return &ShiftService{
		shifts:    shifts,
		operators: operators,
		tickets:   tickets,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Open starts a new shift for an active operator. An operator has at
// most one open shift; the rule is checked here and enforced again by
// the shifts unique key, so a lost race surfaces as the same domain
// error.
func (s *ShiftService) Open(ctx context.Context, operatorID uint64, notes *string) (*model.Shift, error) {
	op, err := s.operators.GetByID(ctx, operatorID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrf("operator %d does not exist or is inactive", operatorID)
	}
	if err != nil {
		return nil, err
	}
	if !op.IsActive {
		return nil, domainErrf("operator %d does not exist or is inactive", operatorID)
	}

	if _, err := s.shifts.GetOpenByOperator(ctx, operatorID); err == nil {
		return nil, domainErrf("operator %d already has an open shift", operatorID)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	shift := &model.Shift{OperatorID: operatorID, OpenedAt: s.now(), Notes: notes, IsActive: true}
	if err := s.shifts.Create(ctx, shift); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, domainErrf("operator %d already has an open shift", operatorID)
		}
		return nil, err
	}
	log.Printf("shift: opened for operator %d (id=%d)", operatorID, shift.ID)
	return shift, nil
}

// Close ends an open shift and aggregates the finalized tickets its
// operator opened during [opened, closed] into the shift totals.
func (s *ShiftService) Close(ctx context.Context, shiftID uint64) (*model.Shift, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrf("shift %d does not exist", shiftID)
	}
	if err != nil {
		return nil, err
	}
	if shift.ClosedAt != nil {
		return nil, domainErrf("shift %d is already closed", shiftID)
	}

	closedAt := s.now()
	count, total, err := s.tickets.AggregateFinalized(ctx, shift.OperatorID, shift.OpenedAt, closedAt)
	if err != nil {
		return nil, err
	}

	closed, err := s.shifts.Close(ctx, shiftID, closedAt, count, total)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrf("shift %d is already closed", shiftID)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("shift: closed %d tickets=%d total=%d", shiftID, count, total)
	return closed, nil
}

// Toggle is the administrative override: reopening an inactive shift
// clears its close timestamp, force-closing an active one stamps a
// close time without recomputing totals.
func (s *ShiftService) Toggle(ctx context.Context, shiftID uint64) (*model.Shift, error) {
	shift, err := s.shifts.GetByID(ctx, shiftID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domainErrf("shift %d does not exist", shiftID)
	}
	if err != nil {
		return nil, err
	}

	if shift.IsActive {
		forced, err := s.shifts.ForceClose(ctx, shiftID, s.now())
		if err != nil {
			return nil, err
		}
		log.Printf("shift: force-closed %d", shiftID)
		return forced, nil
	}

	reopened, err := s.shifts.Reopen(ctx, shiftID)
	if errors.Is(err, repository.ErrDuplicate) {
		return nil, domainErrf("operator %d already has an open shift", shift.OperatorID)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("shift: reopened %d", shiftID)
	return reopened, nil
}

// Get returns one shift by ID.
func (s *ShiftService) Get(ctx context.Context, id uint64) (*model.Shift, error) {
	return s.shifts.GetByID(ctx, id)
}

// List returns all shifts, newest opening first.
func (s *ShiftService) List(ctx context.Context) ([]model.Shift, error) {
	return s.shifts.List(ctx)
}
