package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/parking-lot/internal/model"
)

// OperatorRepo provides data access to the operators table.
type OperatorRepo struct {
	db *sql.DB
}

// NewOperatorRepo returns a new OperatorRepo bound to the given database.
func NewOperatorRepo(db *sql.DB) *OperatorRepo { return &OperatorRepo{db: db} }

const operatorColumns = `id, name, email, is_active, created_at, updated_at`

func scanOperator(row interface{ Scan(...any) error }) (*model.Operator, error) {
	var o model.Operator
	var email sql.NullString
	err := row.Scan(&o.ID, &o.Name, &email, &o.IsActive, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if email.Valid {
		v := email.String
		o.Email = &v
	}
	return &o, nil
}

// GetByID returns the operator with the given ID regardless of flag,
// or sql.ErrNoRows.
func (r *OperatorRepo) GetByID(ctx context.Context, id uint64) (*model.Operator, error) {
	const q = `SELECT ` + operatorColumns + ` FROM operators WHERE id = ?`
	return scanOperator(r.db.QueryRowContext(ctx, q, id))
}

// List returns all operators, active first, then by name.
func (r *OperatorRepo) List(ctx context.Context) ([]model.Operator, error) {
	const q = `SELECT ` + operatorColumns + ` FROM operators ORDER BY is_active DESC, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	operators := make([]model.Operator, 0)
	for rows.Next() {
		o, err := scanOperator(rows)
		if err != nil {
			return nil, err
		}
		operators = append(operators, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return operators, nil
}

// Create inserts a new active operator.
func (r *OperatorRepo) Create(ctx context.Context, o *model.Operator) error {
	const q = `INSERT INTO operators (name, email, is_active) VALUES (?, ?, 1)`
	res, err := r.db.ExecContext(ctx, q, o.Name, o.Email)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*o = *created
	return nil
}

// Update rewrites name and email of an active operator. Inactive
// operators are not editable; reactivate first.
func (r *OperatorRepo) Update(ctx context.Context, o *model.Operator) error {
	const q = `UPDATE operators SET name = ?, email = ? WHERE id = ? AND is_active = 1`
	res, err := r.db.ExecContext(ctx, q, o.Name, o.Email, o.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	updated, err := r.GetByID(ctx, o.ID)
	if err != nil {
		return err
	}
	*o = *updated
	return nil
}

// Toggle flips the active flag and returns the updated operator. The
// open-shift guard lives in the service layer.
func (r *OperatorRepo) Toggle(ctx context.Context, id uint64) (*model.Operator, error) {
	if _, err := r.db.ExecContext(ctx, `UPDATE operators SET is_active = NOT is_active WHERE id = ?`, id); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Delete removes an operator permanently. Owned shifts go with it via
// the cascading foreign key; ticket operator references become NULL.
func (r *OperatorRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operators WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
