package model

import "time"

// Operator is a person who opens and closes tickets and works shifts.
// An operator cannot be deactivated while owning an open shift.
// Deleting an operator removes their shifts; tickets keep existing
// with their operator references cleared.
type Operator struct {
	ID        uint64    // operators.id
	Name      string    // operators.name
	Email     *string   // operators.email (nullable)
	IsActive  bool      // operators.is_active
	CreatedAt time.Time // operators.created_at
	UpdatedAt time.Time // operators.updated_at
}
