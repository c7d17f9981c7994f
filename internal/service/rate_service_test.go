package service

import (
	"context"
	"database/sql"
	"sort"
	"testing"

	"github.com/iliyamo/parking-lot/internal/model"
)

// fakeRateStore mirrors the repository's exclusive activation: putting
// one rate in force deactivates every other.
type fakeRateStore struct {
	seq   uint64
	rates map[uint64]*model.Rate
}

func newFakeRateStore() *fakeRateStore {
	return &fakeRateStore{rates: map[uint64]*model.Rate{}}
}

func (f *fakeRateStore) seed(r model.Rate) *model.Rate {
	f.seq++
	r.ID = f.seq
	cp := r
	f.rates[r.ID] = &cp
	return &cp
}

func (f *fakeRateStore) GetActive(context.Context) (*model.Rate, error) {
	for _, r := range f.rates {
		if r.IsActive {
			cp := *r
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeRateStore) GetByID(_ context.Context, id uint64) (*model.Rate, error) {
	r, ok := f.rates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *r
	return &cp, nil
}

func (f *fakeRateStore) List(context.Context) ([]model.Rate, error) {
	out := make([]model.Rate, 0)
	for _, r := range f.rates {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsActive != out[j].IsActive {
			return out[i].IsActive
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (f *fakeRateStore) Create(_ context.Context, r *model.Rate) error {
	f.seq++
	r.ID = f.seq
	r.IsActive = false
	cp := *r
	f.rates[r.ID] = &cp
	return nil
}

func (f *fakeRateStore) Update(_ context.Context, r *model.Rate) error {
	existing, ok := f.rates[r.ID]
	if !ok {
		return sql.ErrNoRows
	}
	r.IsActive = existing.IsActive
	cp := *r
	f.rates[r.ID] = &cp
	return nil
}

func (f *fakeRateStore) Activate(_ context.Context, id uint64) (*model.Rate, error) {
	target, ok := f.rates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	for _, r := range f.rates {
		r.IsActive = r.ID == id
	}
	cp := *target
	return &cp, nil
}

func (f *fakeRateStore) Deactivate(_ context.Context, id uint64) (*model.Rate, error) {
	r, ok := f.rates[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	r.IsActive = false
	cp := *r
	return &cp, nil
}

func (f *fakeRateStore) Delete(_ context.Context, id uint64) error {
	if _, ok := f.rates[id]; !ok {
		return sql.ErrNoRows
	}
	delete(f.rates, id)
	return nil
}

// fakeRateCache is an in-memory RateCache that counts hits.
type fakeRateCache struct {
	rate        *model.Rate
	filled      bool
	hits, fills int
}

func (f *fakeRateCache) GetActive(context.Context) (*model.Rate, bool) {
	if f.filled {
		f.hits++
		return f.rate, true
	}
	return nil, false
}

func (f *fakeRateCache) SetActive(_ context.Context, r *model.Rate) {
	f.rate = r
	f.filled = true
	f.fills++
}

func (f *fakeRateCache) Invalidate(context.Context) {
	f.rate = nil
	f.filled = false
}

func TestRateActivateIsExclusive(t *testing.T) {
	rates := newFakeRateStore()
	svc := NewRateService(rates, newFakeTicketStore(), nil)
	ctx := context.Background()

	a := rates.seed(model.Rate{Name: "day", HourlyCents: 2000, IsActive: true})
	b := rates.seed(model.Rate{Name: "night", HourlyCents: 1000})

	activated, err := svc.Activate(ctx, b.ID)
	if err != nil {
		t.Fatalf("activate: %v", err)
	}
	if !activated.IsActive {
		t.Fatalf("rate not activated")
	}
	old, _ := rates.GetByID(ctx, a.ID)
	if old.IsActive {
		t.Fatalf("previous rate still active")
	}

	got, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if got == nil || got.ID != b.ID {
		t.Fatalf("active = %+v, want rate %d", got, b.ID)
	}
}

func TestRateGetActiveUsesCache(t *testing.T) {
	rates := newFakeRateStore()
	cache := &fakeRateCache{}
	svc := NewRateService(rates, newFakeTicketStore(), cache)
	ctx := context.Background()

	seeded := rates.seed(model.Rate{Name: "day", HourlyCents: 2000, IsActive: true})

	// First read misses and fills, second read is served by the cache.
	for i := 0; i < 2; i++ {
		got, err := svc.GetActive(ctx)
		if err != nil {
			t.Fatalf("get active: %v", err)
		}
		if got == nil || got.ID != seeded.ID {
			t.Fatalf("active = %+v, want rate %d", got, seeded.ID)
		}
	}
	if cache.fills != 1 || cache.hits != 1 {
		t.Fatalf("cache fills=%d hits=%d, want 1/1", cache.fills, cache.hits)
	}

	// A write drops the cached value.
	if _, err := svc.Deactivate(ctx, seeded.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if cache.filled {
		t.Fatalf("cache not invalidated")
	}
	got, err := svc.GetActive(ctx)
	if err != nil {
		t.Fatalf("get active: %v", err)
	}
	if got != nil {
		t.Fatalf("active = %+v, want none", got)
	}
}

func TestRateDeleteBlockedByBilledTickets(t *testing.T) {
	rates := newFakeRateStore()
	tickets := newFakeTicketStore()
	svc := NewRateService(rates, tickets, nil)
	ctx := context.Background()

	used := rates.seed(model.Rate{Name: "day", HourlyCents: 2000})
	tickets.seed(model.Ticket{
		Plate:       "ABC-123",
		EntryAt:     testEntry,
		Kind:        model.KindGuest,
		ChargeCents: 2000,
		State:       model.StateFinalized,
		RateID:      &used.ID,
	})

	if err := svc.Delete(ctx, used.ID); !IsDomain(err) {
		t.Fatalf("want domain error, got %v", err)
	}

	unused := rates.seed(model.Rate{Name: "night", HourlyCents: 1000})
	if err := svc.Delete(ctx, unused.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
}

func TestRateValidation(t *testing.T) {
	svc := NewRateService(newFakeRateStore(), newFakeTicketStore(), nil)
	ctx := context.Background()

	neg := int64(-1)
	cases := []struct {
		name string
		rate model.Rate
	}{
		{"missing name", model.Rate{HourlyCents: 2000}},
		{"negative hourly", model.Rate{Name: "x", HourlyCents: -1}},
		{"negative fraction", model.Rate{Name: "x", FractionCents: -1}},
		{"negative cap", model.Rate{Name: "x", DailyCapCents: &neg}},
		{"negative grace", model.Rate{Name: "x", GraceMinutes: -1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := tc.rate
			if err := svc.Create(ctx, &r); !IsDomain(err) {
				t.Fatalf("want domain error, got %v", err)
			}
		})
	}
}
