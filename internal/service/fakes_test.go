package service

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
	"github.com/iliyamo/parking-lot/internal/repository"
)

// In-memory store fakes mirroring the repository semantics: lookups
// return sql.ErrNoRows, uniqueness violations return
// repository.ErrDuplicate, and list ordering matches the SQL queries.

type fakeTicketStore struct {
	seq     uint64
	tickets map[uint64]*model.Ticket
}

func newFakeTicketStore() *fakeTicketStore {
	return &fakeTicketStore{tickets: map[uint64]*model.Ticket{}}
}

// seed inserts a ticket as-is, bypassing the uniqueness checks.
func (f *fakeTicketStore) seed(t model.Ticket) *model.Ticket {
	f.seq++
	t.ID = f.seq
	if t.Folio == "" {
		t.Folio = fmt.Sprintf("P-%08d", f.seq)
	}
	cp := t
	f.tickets[t.ID] = &cp
	return &cp
}

func (f *fakeTicketStore) Create(_ context.Context, t *model.Ticket) error {
	for _, existing := range f.tickets {
		if existing.State == model.StateActive && existing.Plate == t.Plate {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	t.ID = f.seq
	t.Folio = fmt.Sprintf("P-%08d", f.seq)
	cp := *t
	f.tickets[t.ID] = &cp
	return nil
}

func (f *fakeTicketStore) GetByID(_ context.Context, id uint64) (*model.Ticket, error) {
	t, ok := f.tickets[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (f *fakeTicketStore) GetActiveByPlate(_ context.Context, plate string) (*model.Ticket, error) {
	for _, t := range f.tickets {
		if t.Plate == plate && t.State == model.StateActive && t.Active {
			cp := *t
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeTicketStore) ListActive(_ context.Context) ([]model.Ticket, error) {
	out := f.collect(func(t *model.Ticket) bool { return t.State == model.StateActive && t.Active })
	sort.Slice(out, func(i, j int) bool { return out[i].EntryAt.Before(out[j].EntryAt) })
	return out, nil
}

func (f *fakeTicketStore) List(_ context.Context) ([]model.Ticket, error) {
	out := f.collect(func(t *model.Ticket) bool { return t.State != model.StateVoided })
	sort.Slice(out, func(i, j int) bool { return out[i].EntryAt.After(out[j].EntryAt) })
	return out, nil
}

func (f *fakeTicketStore) Close(_ context.Context, t *model.Ticket) error {
	existing, ok := f.tickets[t.ID]
	if !ok || existing.State != model.StateActive {
		return sql.ErrNoRows
	}
	cp := *t
	f.tickets[t.ID] = &cp
	return nil
}

func (f *fakeTicketStore) ListZeroChargeGuests(_ context.Context) ([]model.Ticket, error) {
	out := f.collect(func(t *model.Ticket) bool {
		return t.ExitAt != nil && t.ChargeCents == 0 && t.Kind == model.KindGuest && t.State != model.StateVoided
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTicketStore) ApplyBilling(_ context.Context, id uint64, chargeCents int64, stayMinutes int, rateID *uint64, state string, active, paid bool) error {
	t, ok := f.tickets[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.ChargeCents = chargeCents
	stay := stayMinutes
	t.StayMinutes = &stay
	if rateID != nil {
		v := *rateID
		t.RateID = &v
	}
	t.State = state
	t.Active = active
	t.Paid = paid
	return nil
}

func (f *fakeTicketStore) ListPaidInconsistent(_ context.Context) ([]model.Ticket, error) {
	out := f.collect(func(t *model.Ticket) bool {
		return t.Paid && (t.ChargeCents == 0 || t.State == model.StateVoided)
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTicketStore) ClearPaid(_ context.Context, id uint64) error {
	if t, ok := f.tickets[id]; ok {
		t.Paid = false
	}
	return nil
}

func (f *fakeTicketStore) ListClosedUnnormalized(_ context.Context) ([]model.Ticket, error) {
	out := f.collect(func(t *model.Ticket) bool {
		return t.ExitAt != nil && !t.Paid && t.ChargeCents > 0 &&
			t.State != model.StateFinalized && t.State != model.StateVoided
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeTicketStore) MarkFinalized(_ context.Context, id uint64) error {
	if t, ok := f.tickets[id]; ok {
		t.State = model.StateFinalized
	}
	return nil
}

func (f *fakeTicketStore) InUseByRate(_ context.Context, rateID uint64) (bool, error) {
	for _, t := range f.tickets {
		if t.RateID != nil && *t.RateID == rateID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTicketStore) InUseByPass(_ context.Context, passID uint64) (bool, error) {
	for _, t := range f.tickets {
		if t.PassID != nil && *t.PassID == passID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTicketStore) AggregateFinalized(_ context.Context, operatorID uint64, from, to time.Time) (int, int64, error) {
	count := 0
	var total int64
	for _, t := range f.tickets {
		if t.State != model.StateFinalized || t.EntryOperatorID == nil || *t.EntryOperatorID != operatorID {
			continue
		}
		if t.EntryAt.Before(from) || t.EntryAt.After(to) {
			continue
		}
		count++
		total += t.ChargeCents
	}
	return count, total, nil
}

func (f *fakeTicketStore) collect(keep func(*model.Ticket) bool) []model.Ticket {
	out := make([]model.Ticket, 0)
	for _, t := range f.tickets {
		if keep(t) {
			out = append(out, *t)
		}
	}
	return out
}

type fakePassStore struct {
	seq    uint64
	passes map[uint64]*model.MonthlyPass
}

func newFakePassStore() *fakePassStore {
	return &fakePassStore{passes: map[uint64]*model.MonthlyPass{}}
}

func (f *fakePassStore) seed(p model.MonthlyPass) *model.MonthlyPass {
	f.seq++
	p.ID = f.seq
	cp := p
	f.passes[p.ID] = &cp
	return &cp
}

func (f *fakePassStore) GetByID(_ context.Context, id uint64) (*model.MonthlyPass, error) {
	p, ok := f.passes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *p
	return &cp, nil
}

func (f *fakePassStore) GetValidByPlate(_ context.Context, plate string, at time.Time) (*model.MonthlyPass, error) {
	for _, p := range f.passes {
		if p.Plate == plate && p.Covers(at) {
			cp := *p
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakePassStore) HasValid(ctx context.Context, plate string, at time.Time) (bool, error) {
	return f.HasValidExcluding(ctx, plate, at, 0)
}

func (f *fakePassStore) HasValidExcluding(_ context.Context, plate string, at time.Time, excludeID uint64) (bool, error) {
	for _, p := range f.passes {
		if p.ID != excludeID && p.Plate == plate && p.Covers(at) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakePassStore) List(_ context.Context) ([]model.MonthlyPass, error) {
	out := make([]model.MonthlyPass, 0)
	for _, p := range f.passes {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out, nil
}

func (f *fakePassStore) ListExpiring(_ context.Context, from, to time.Time) ([]model.MonthlyPass, error) {
	out := make([]model.MonthlyPass, 0)
	for _, p := range f.passes {
		if p.IsActive && !p.EndsAt.Before(from) && !p.EndsAt.After(to) {
			out = append(out, *p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EndsAt.Before(out[j].EndsAt) })
	return out, nil
}

func (f *fakePassStore) Create(_ context.Context, p *model.MonthlyPass) error {
	f.seq++
	p.ID = f.seq
	p.IsActive = true
	cp := *p
	f.passes[p.ID] = &cp
	return nil
}

func (f *fakePassStore) Update(_ context.Context, p *model.MonthlyPass) error {
	existing, ok := f.passes[p.ID]
	if !ok {
		return sql.ErrNoRows
	}
	p.IsActive = existing.IsActive
	p.NotificationSent = existing.NotificationSent
	cp := *p
	f.passes[p.ID] = &cp
	return nil
}

func (f *fakePassStore) Toggle(_ context.Context, id uint64) (*model.MonthlyPass, error) {
	p, ok := f.passes[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	p.IsActive = !p.IsActive
	cp := *p
	return &cp, nil
}

func (f *fakePassStore) MarkNotified(_ context.Context, id uint64) error {
	p, ok := f.passes[id]
	if !ok {
		return sql.ErrNoRows
	}
	p.NotificationSent = true
	return nil
}

func (f *fakePassStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.passes[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.passes, id)
	return nil
}

type fakeShiftStore struct {
	seq    uint64
	shifts map[uint64]*model.Shift
}

func newFakeShiftStore() *fakeShiftStore {
	return &fakeShiftStore{shifts: map[uint64]*model.Shift{}}
}

func (f *fakeShiftStore) Create(_ context.Context, s *model.Shift) error {
	for _, existing := range f.shifts {
		if existing.OperatorID == s.OperatorID && existing.ClosedAt == nil {
			return repository.ErrDuplicate
		}
	}
	f.seq++
	s.ID = f.seq
	cp := *s
	f.shifts[s.ID] = &cp
	return nil
}

func (f *fakeShiftStore) GetByID(_ context.Context, id uint64) (*model.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *s
	return &cp, nil
}

func (f *fakeShiftStore) GetOpenByOperator(_ context.Context, operatorID uint64) (*model.Shift, error) {
	for _, s := range f.shifts {
		if s.OperatorID == operatorID && s.ClosedAt == nil {
			cp := *s
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeShiftStore) List(_ context.Context) ([]model.Shift, error) {
	out := make([]model.Shift, 0)
	for _, s := range f.shifts {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OpenedAt.After(out[j].OpenedAt) })
	return out, nil
}

func (f *fakeShiftStore) Close(_ context.Context, id uint64, closedAt time.Time, ticketCount int, chargeTotalCents int64) (*model.Shift, error) {
	s, ok := f.shifts[id]
	if !ok || s.ClosedAt != nil {
		return nil, sql.ErrNoRows
	}
	at := closedAt
	s.ClosedAt = &at
	s.TicketCount = ticketCount
	s.ChargeTotalCents = chargeTotalCents
	s.IsActive = false
	cp := *s
	return &cp, nil
}

func (f *fakeShiftStore) Reopen(_ context.Context, id uint64) (*model.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, other := range f.shifts {
		if other.ID != id && other.OperatorID == s.OperatorID && other.ClosedAt == nil {
			return nil, repository.ErrDuplicate
		}
	}
	s.ClosedAt = nil
	s.IsActive = true
	cp := *s
	return &cp, nil
}

func (f *fakeShiftStore) ForceClose(_ context.Context, id uint64, closedAt time.Time) (*model.Shift, error) {
	s, ok := f.shifts[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	if s.ClosedAt == nil {
		at := closedAt
		s.ClosedAt = &at
	}
	s.IsActive = false
	cp := *s
	return &cp, nil
}

type fakeOperatorStore struct {
	seq       uint64
	operators map[uint64]*model.Operator
}

func newFakeOperatorStore() *fakeOperatorStore {
	return &fakeOperatorStore{operators: map[uint64]*model.Operator{}}
}

func (f *fakeOperatorStore) seed(o model.Operator) *model.Operator {
	f.seq++
	o.ID = f.seq
	cp := o
	f.operators[o.ID] = &cp
	return &cp
}

func (f *fakeOperatorStore) GetByID(_ context.Context, id uint64) (*model.Operator, error) {
	o, ok := f.operators[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *o
	return &cp, nil
}

func (f *fakeOperatorStore) List(_ context.Context) ([]model.Operator, error) {
	out := make([]model.Operator, 0)
	for _, o := range f.operators {
		out = append(out, *o)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeOperatorStore) Create(_ context.Context, o *model.Operator) error {
	f.seq++
	o.ID = f.seq
	o.IsActive = true
	cp := *o
	f.operators[o.ID] = &cp
	return nil
}

func (f *fakeOperatorStore) Update(_ context.Context, o *model.Operator) error {
	existing, ok := f.operators[o.ID]
	if !ok || !existing.IsActive {
		return sql.ErrNoRows
	}
	o.IsActive = existing.IsActive
	cp := *o
	f.operators[o.ID] = &cp
	return nil
}

func (f *fakeOperatorStore) Toggle(_ context.Context, id uint64) (*model.Operator, error) {
	o, ok := f.operators[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	o.IsActive = !o.IsActive
	cp := *o
	return &cp, nil
}

func (f *fakeOperatorStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.operators[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.operators, id)
	return nil
}

// fakeRateSource is a fixed ActiveRateSource.
type fakeRateSource struct {
	rate *model.Rate
	err  error
}

func (f *fakeRateSource) GetActive(context.Context) (*model.Rate, error) {
	return f.rate, f.err
}

// fakeNotifier records every dispatch.
type fakeNotifier struct {
	created  []model.MonthlyPass
	expiring []model.MonthlyPass
	err      error
}

func (f *fakeNotifier) PassCreated(_ context.Context, p model.MonthlyPass) error {
	if f.err != nil {
		return f.err
	}
	f.created = append(f.created, p)
	return nil
}

func (f *fakeNotifier) PassExpiring(_ context.Context, p model.MonthlyPass) error {
	if f.err != nil {
		return f.err
	}
	f.expiring = append(f.expiring, p)
	return nil
}
