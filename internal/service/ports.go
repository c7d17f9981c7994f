package service

import (
	"context"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
)

// The store interfaces below are the persistence port of the core.
// The repository package implements them over MySQL; tests implement
// them in memory. Lookup methods return sql.ErrNoRows when a row is
// absent, mirroring the repository behavior.

// TicketStore persists tickets.
type TicketStore interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id uint64) (*model.Ticket, error)
	GetActiveByPlate(ctx context.Context, plate string) (*model.Ticket, error)
	ListActive(ctx context.Context) ([]model.Ticket, error)
	List(ctx context.Context) ([]model.Ticket, error)
	Close(ctx context.Context, t *model.Ticket) error

	ListZeroChargeGuests(ctx context.Context) ([]model.Ticket, error)
	ApplyBilling(ctx context.Context, id uint64, chargeCents int64, stayMinutes int, rateID *uint64, state string, active, paid bool) error
	ListPaidInconsistent(ctx context.Context) ([]model.Ticket, error)
	ClearPaid(ctx context.Context, id uint64) error
	ListClosedUnnormalized(ctx context.Context) ([]model.Ticket, error)
	MarkFinalized(ctx context.Context, id uint64) error

	InUseByRate(ctx context.Context, rateID uint64) (bool, error)
	InUseByPass(ctx context.Context, passID uint64) (bool, error)
	AggregateFinalized(ctx context.Context, operatorID uint64, from, to time.Time) (int, int64, error)
}

// RateStore persists rates. GetActive is the hot read: every guest
// close and every reconciliation pass needs the rate in force.
type RateStore interface {
	GetActive(ctx context.Context) (*model.Rate, error)
	GetByID(ctx context.Context, id uint64) (*model.Rate, error)
	List(ctx context.Context) ([]model.Rate, error)
	Create(ctx context.Context, r *model.Rate) error
	Update(ctx context.Context, r *model.Rate) error
	Activate(ctx context.Context, id uint64) (*model.Rate, error)
	Deactivate(ctx context.Context, id uint64) (*model.Rate, error)
	Delete(ctx context.Context, id uint64) error
}

// PassStore persists monthly passes.
type PassStore interface {
	GetByID(ctx context.Context, id uint64) (*model.MonthlyPass, error)
	GetValidByPlate(ctx context.Context, plate string, at time.Time) (*model.MonthlyPass, error)
	HasValid(ctx context.Context, plate string, at time.Time) (bool, error)
	HasValidExcluding(ctx context.Context, plate string, at time.Time, excludeID uint64) (bool, error)
	List(ctx context.Context) ([]model.MonthlyPass, error)
	ListExpiring(ctx context.Context, from, to time.Time) ([]model.MonthlyPass, error)
	Create(ctx context.Context, p *model.MonthlyPass) error
	Update(ctx context.Context, p *model.MonthlyPass) error
	Toggle(ctx context.Context, id uint64) (*model.MonthlyPass, error)
	MarkNotified(ctx context.Context, id uint64) error
	Delete(ctx context.Context, id uint64) error
}

// ShiftStore persists operator shifts.
type ShiftStore interface {
	Create(ctx context.Context, s *model.Shift) error
	GetByID(ctx context.Context, id uint64) (*model.Shift, error)
	GetOpenByOperator(ctx context.Context, operatorID uint64) (*model.Shift, error)
	List(ctx context.Context) ([]model.Shift, error)
	Close(ctx context.Context, id uint64, closedAt time.Time, ticketCount int, chargeTotalCents int64) (*model.Shift, error)
	Reopen(ctx context.Context, id uint64) (*model.Shift, error)
	ForceClose(ctx context.Context, id uint64, closedAt time.Time) (*model.Shift, error)
}

// OperatorStore persists operators.
type OperatorStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Operator, error)
	List(ctx context.Context) ([]model.Operator, error)
	Create(ctx context.Context, o *model.Operator) error
	Update(ctx context.Context, o *model.Operator) error
	Toggle(ctx context.Context, id uint64) (*model.Operator, error)
	Delete(ctx context.Context, id uint64) error
}

// ActiveRateSource yields the rate currently in force, nil when no
// rate is active. RateService implements it with the cache in front;
// ticket close and reconciliation consume it.
type ActiveRateSource interface {
	GetActive(ctx context.Context) (*model.Rate, error)
}

// Notifier is the notification port. Dispatch is best-effort: a
// failure is logged by the caller and never rolls back the mutation
// that triggered it.
type Notifier interface {
	PassCreated(ctx context.Context, p model.MonthlyPass) error
	PassExpiring(ctx context.Context, p model.MonthlyPass) error
}

// RateCache is an optional read-through cache in front of
// RateStore.GetActive. Implementations must treat every method as
// best-effort; a cold or unreachable cache only means a database read.
type RateCache interface {
	GetActive(ctx context.Context) (*model.Rate, bool)
	SetActive(ctx context.Context, r *model.Rate)
	Invalidate(ctx context.Context)
}
