package employee

import (
	"context"
	"database/sql"
)

//go:generate mockgen -source=employee_repo.go -destination=mock/employee_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, empl *Employee) error
	FindByID(ctx context.Context, id string) (*Employee, error)
	FindByMachineUserID(ctx context.Context, machineUserID string) (*Employee, error)
	FindAll(ctx context.Context) ([]Employee, error)
}

type repository struct {
	db *sql.DB
	tx *sql.Tx
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

const employeeColumns = `
	id::text,
	full_name,
	email,
	machine_user_id,
	active,
	created_at,
	updated_at
`

func (r *repository) Create(ctx context.Context, empl *Employee) error {
	query := `
INSERT INTO employees (id, full_name, email, machine_user_id, active)
VALUES ($1, $2, $3, $4, $5)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		empl.ID, empl.FullName, empl.Email, empl.MachineUserID, empl.Active,
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`
	return scanEmployee(r.queryer().QueryRowContext(ctx, query, id))
}

func (r *repository) FindByMachineUserID(ctx context.Context, machineUserID string) (*Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees WHERE machine_user_id = $1 AND active`
	return scanEmployee(r.queryer().QueryRowContext(ctx, query, machineUserID))
}

func (r *repository) FindAll(ctx context.Context) ([]Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees ORDER BY full_name ASC`
	rows, err := r.queryer().QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []Employee
	for rows.Next() {
		empl, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, *empl)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*Employee, error) {
	var (
		empl Employee
		id   string
	)
	err := row.Scan(
		&id,
		&empl.FullName,
		&empl.Email,
		&empl.MachineUserID,
		&empl.Active,
		&empl.CreatedAt,
		&empl.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := empl.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, err
	}
	return &empl, nil
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

func (r *repository) queryer() interface {
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}
