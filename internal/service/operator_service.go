package service

import (
	"context"
	"database/sql"
	"errors"
	"log"

	"github.com/iliyamo/parking-lot/internal/model"
)

// OperatorService manages the people who open tickets and work shifts.
type OperatorService struct {
	operators OperatorStore
	shifts    ShiftStore
}

// NewOperatorService returns an OperatorService over the given stores.
func NewOperatorService(operators OperatorStore, shifts ShiftStore) *OperatorService {
	return &OperatorService{operators: operators, shifts: shifts}
}

// Get returns one operator by ID.
func (s *OperatorService) Get(ctx context.Context, id uint64) (*model.Operator, error) {
	return s.operators.GetByID(ctx, id)
}

// List returns all operators, active first.
func (s *OperatorService) List(ctx context.Context) ([]model.Operator, error) {
	return s.operators.List(ctx)
}

// Create stores a new active operator.
func (s *OperatorService) Create(ctx context.Context, o *model.Operator) error {
	if o.Name == "" {
		return domainErrf("operator name is required")
	}
	if err := s.operators.Create(ctx, o); err != nil {
		return err
	}
	log.Printf("operator: created %q (id=%d)", o.Name, o.ID)
	return nil
}

// Update rewrites an active operator's details.
func (s *OperatorService) Update(ctx context.Context, o *model.Operator) error {
	if o.Name == "" {
		return domainErrf("operator name is required")
	}
	if err := s.operators.Update(ctx, o); err != nil {
		return err
	}
	log.Printf("operator: updated %q (id=%d)", o.Name, o.ID)
	return nil
}

// Toggle flips the active flag. Deactivation is refused while the
// operator owns an open shift.
func (s *OperatorService) Toggle(ctx context.Context, id uint64) (*model.Operator, error) {
	op, err := s.operators.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if op.IsActive {
		if _, err := s.shifts.GetOpenByOperator(ctx, id); err == nil {
			return nil, domainErrf("operator %d has an open shift and cannot be deactivated", id)
		} else if !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
	}
	return s.operators.Toggle(ctx, id)
}

// Delete removes an operator permanently. Their shifts are removed
// with them; tickets keep existing with operator references cleared.
func (s *OperatorService) Delete(ctx context.Context, id uint64) error {
	if err := s.operators.Delete(ctx, id); err != nil {
		return err
	}
	log.Printf("operator: deleted (id=%d)", id)
	return nil
}
