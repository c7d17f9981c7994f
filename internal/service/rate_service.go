package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/iliyamo/parking-lot/internal/model"
	"github.com/iliyamo/parking-lot/internal/repository"
)

// RateService manages the fee catalog. Activation is exclusive: putting
// one rate in force deactivates every other, so "the active rate" is
// never ambiguous. The active-rate read goes through an optional cache
// because ticket close and reconciliation hit it constantly.
type RateService struct {
	rates   RateStore
	tickets TicketStore
	cache   RateCache
}

// NewRateService returns a RateService. cache may be nil, in which
// case every read goes to the store.
func NewRateService(rates RateStore, tickets TicketStore, cache RateCache) *RateService {
	return &RateService{rates: rates, tickets: tickets, cache: cache}
}

// GetActive returns the rate currently in force, or nil when no rate
// is active.
func (s *RateService) GetActive(ctx context.Context) (*model.Rate, error) {
	if s.cache != nil {
		if r, ok := s.cache.GetActive(ctx); ok {
			return r, nil
		}
	}
	r, err := s.rates.GetActive(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		s.cache.SetActive(ctx, r)
	}
	return r, nil
}

// Get returns one rate by ID.
func (s *RateService) Get(ctx context.Context, id uint64) (*model.Rate, error) {
	return s.rates.GetByID(ctx, id)
}

// List returns all rates, active first.
func (s *RateService) List(ctx context.Context) ([]model.Rate, error) {
	return s.rates.List(ctx)
}

// Create validates and stores a new, initially inactive rate.
func (s *RateService) Create(ctx context.Context, r *model.Rate) error {
	if err := validateRate(r); err != nil {
		return err
	}
	if err := s.rates.Create(ctx, r); err != nil {
		return err
	}
	log.Printf("rate: created %q (id=%d)", r.Name, r.ID)
	return nil
}

// Update rewrites a rate's schedule and drops the cached active rate,
// since the edited rate may be the one in force.
func (s *RateService) Update(ctx context.Context, r *model.Rate) error {
	if err := validateRate(r); err != nil {
		return err
	}
	if err := s.rates.Update(ctx, r); err != nil {
		return err
	}
	s.invalidate(ctx)
	log.Printf("rate: updated %q (id=%d)", r.Name, r.ID)
	return nil
}

// Activate puts the rate in force, deactivating all others.
func (s *RateService) Activate(ctx context.Context, id uint64) (*model.Rate, error) {
	r, err := s.rates.Activate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("rate: activated %q (id=%d)", r.Name, r.ID)
	return r, nil
}

// Deactivate takes the rate out of force. Until another rate is
// activated, guest tickets close unbilled and reconciliation voids
// zero-charge candidates.
func (s *RateService) Deactivate(ctx context.Context, id uint64) (*model.Rate, error) {
	r, err := s.rates.Deactivate(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	log.Printf("rate: deactivated %q (id=%d)", r.Name, r.ID)
	return r, nil
}

// Delete removes a rate that has never billed a ticket. Rates with
// billing history cannot be deleted; deactivate them instead.
func (s *RateService) Delete(ctx context.Context, id uint64) error {
	used, err := s.tickets.InUseByRate(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domainErrf("rate %d has billed tickets and cannot be deleted; deactivate it instead", id)
	}
	if err := s.rates.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A ticket billed against the rate between check and delete.
			return domainErrf("rate %d has billed tickets and cannot be deleted; deactivate it instead", id)
		}
		return err
	}
	s.invalidate(ctx)
	log.Printf("rate: deleted (id=%d)", id)
	return nil
}

func (s *RateService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}

func validateRate(r *model.Rate) error {
	if r.Name == "" {
		return domainErrf("rate name is required")
	}
	if r.HourlyCents < 0 || r.FractionCents < 0 {
		return domainErrf("rate amounts must not be negative")
	}
	if r.DailyCapCents != nil && *r.DailyCapCents < 0 {
		return domainErrf("daily cap must not be negative")
	}
	if r.GraceMinutes < 0 {
		return domainErrf("grace minutes must not be negative")
	}
	return nil
}
