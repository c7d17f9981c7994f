package service

import (
	"context"
	"errors"
	"log"
	"math"
	"time"

	"github.com/iliyamo/parking-lot/internal/model"
	"github.com/iliyamo/parking-lot/internal/repository"
)

// PassService manages monthly pass subscriptions. At most one pass may
// be valid for a plate at any instant; historical passes are retained.
// Notification dispatch (pass created, pass expiring) is best-effort:
// a publish failure is logged and never rolls back the pass mutation.
type PassService struct {
	passes            PassStore
	tickets           TicketStore
	notifier          Notifier
	monthlyPriceCents int64
	now               func() time.Time
}

// NewPassService returns a PassService. notifier may be nil to disable
// dispatch entirely. monthlyPriceCents is the subscription price per
// 30-day month used to derive pass amounts.
func NewPassService(passes PassStore, tickets TicketStore, notifier Notifier, monthlyPriceCents int64) *PassService {
	return &PassService{
		passes:            passes,
		tickets:           tickets,
		notifier:          notifier,
		monthlyPriceCents: monthlyPriceCents,
		now:               func() time.Time { return time.Now().UTC() },
	}
}

// IsValid reports whether an active pass covers the plate at the given
// instant. The window is inclusive on both ends.
func (s *PassService) IsValid(ctx context.Context, plate string, at time.Time) (bool, error) {
	return s.passes.HasValid(ctx, NormalizePlate(plate), at)
}

// Get returns one pass by ID.
func (s *PassService) Get(ctx context.Context, id uint64) (*model.MonthlyPass, error) {
	return s.passes.GetByID(ctx, id)
}

// List returns every pass, soonest expiry first.
func (s *PassService) List(ctx context.Context) ([]model.MonthlyPass, error) {
	return s.passes.List(ctx)
}

// Create stores a new pass. It fails with a domain error when the
// plate already has a currently valid pass or when the window is
// inverted. The amount is derived from the window length at the
// configured monthly price. When the holder left an email a
// pass-created notification is dispatched best-effort.
func (s *PassService) Create(ctx context.Context, p *model.MonthlyPass) error {
	p.Plate = NormalizePlate(p.Plate)
	if err := validatePassWindow(p); err != nil {
		return err
	}

	valid, err := s.passes.HasValid(ctx, p.Plate, s.now())
	if err != nil {
		return err
	}
	if valid {
		return domainErrf("a valid monthly pass already exists for plate %s", p.Plate)
	}

	p.AmountCents = s.passAmount(p.StartsAt, p.EndsAt)
	if err := s.passes.Create(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			// Lost the race at the storage layer; same outcome as the pre-check.
			return domainErrf("a valid monthly pass already exists for plate %s", p.Plate)
		}
		return err
	}
	log.Printf("pass: created for %s plate=%s until %s (id=%d)", p.OwnerName, p.Plate, p.EndsAt.Format(time.RFC3339), p.ID)

	if s.notifier != nil && p.Email != nil {
		if err := s.notifier.PassCreated(ctx, *p); err != nil {
			log.Printf("pass: created notification for %s failed: %v", p.Plate, err)
		}
	}
	return nil
}

// Update rewrites an existing pass, re-checking the no-overlap rule
// against every other pass for the plate.
func (s *PassService) Update(ctx context.Context, p *model.MonthlyPass) error {
	p.Plate = NormalizePlate(p.Plate)
	if err := validatePassWindow(p); err != nil {
		return err
	}

	current, err := s.passes.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if !current.IsActive {
		return domainErrf("pass %d is inactive and cannot be edited", p.ID)
	}

	valid, err := s.passes.HasValidExcluding(ctx, p.Plate, s.now(), p.ID)
	if err != nil {
		return err
	}
	if valid {
		return domainErrf("a valid monthly pass already exists for plate %s", p.Plate)
	}

	p.AmountCents = s.passAmount(p.StartsAt, p.EndsAt)
	if err := s.passes.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return domainErrf("a valid monthly pass already exists for plate %s", p.Plate)
		}
		return err
	}
	log.Printf("pass: updated plate=%s (id=%d)", p.Plate, p.ID)
	return nil
}

// Toggle flips the administrative active flag.
func (s *PassService) Toggle(ctx context.Context, id uint64) (*model.MonthlyPass, error) {
	return s.passes.Toggle(ctx, id)
}

// Delete removes a pass that no ticket references. A pass with billing
// history is immutable once used.
func (s *PassService) Delete(ctx context.Context, id uint64) error {
	used, err := s.tickets.InUseByPass(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return domainErrf("pass %d has associated tickets and cannot be deleted", id)
	}
	if err := s.passes.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			// A ticket linked to the pass between check and delete.
			return domainErrf("pass %d has associated tickets and cannot be deleted", id)
		}
		return err
	}
	log.Printf("pass: deleted (id=%d)", id)
	return nil
}

// ListExpiring returns active passes ending within the given number of
// days from now.
func (s *PassService) ListExpiring(ctx context.Context, days int) ([]model.MonthlyPass, error) {
	now := s.now()
	return s.passes.ListExpiring(ctx, now, now.AddDate(0, 0, days))
}

// NotifyExpiring dispatches an expiry warning for every pass ending
// within the given number of days that has an email and has not been
// warned yet, then records the dispatch. It runs synchronously on
// demand and returns the number of warnings sent. A failed dispatch is
// logged and retried on the next invocation.
func (s *PassService) NotifyExpiring(ctx context.Context, days int) (int, error) {
	expiring, err := s.ListExpiring(ctx, days)
	if err != nil {
		return 0, err
	}
	sent := 0
	for _, p := range expiring {
		if p.NotificationSent || p.Email == nil || s.notifier == nil {
			continue
		}
		if err := s.notifier.PassExpiring(ctx, p); err != nil {
			log.Printf("pass: expiry warning for %s failed: %v", p.Plate, err)
			continue
		}
		if err := s.passes.MarkNotified(ctx, p.ID); err != nil {
			log.Printf("pass: marking %d notified failed: %v", p.ID, err)
			continue
		}
		sent++
	}
	return sent, nil
}

// passAmount derives the subscription price: one monthly price per
// started 30-day block of the validity window.
func (s *PassService) passAmount(start, end time.Time) int64 {
	days := end.Sub(start).Hours() / 24
	months := int64(math.Ceil(days / 30.0))
	if months < 1 {
		months = 1
	}
	return months * s.monthlyPriceCents
}

func validatePassWindow(p *model.MonthlyPass) error {
	if p.Plate == "" {
		return domainErrf("plate is required")
	}
	if p.OwnerName == "" {
		return domainErrf("owner name is required")
	}
	if !p.StartsAt.Before(p.EndsAt) {
		return domainErrf("pass start date must be before its end date")
	}
	return nil
}
