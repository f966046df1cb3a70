package attendance

import (
	"context"
	"database/sql"
	"time"
)

//go:generate mockgen -source=attendance_repo.go -destination=mock/attendance_repo_mock.go -package=mock
type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *Record) error
	Update(ctx context.Context, rec *Record) error
	FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	FindLatestBefore(ctx context.Context, employeeID string, date time.Time) (*Record, error)
	FindRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error)
	FindAllByDate(ctx context.Context, date time.Time) ([]Record, error)
}

// repository speaks raw SQL over database/sql so that WithTx really does run
// statements on the caller's transaction. Transition read-modify-writes must
// be atomic per record; gorm sessions would bypass the service's *sql.Tx.
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

const recordColumns = `
	id::text,
	employee_id::text,
	record_date,
	status,
	first_check_in,
	last_check_out,
	work_seconds,
	break_seconds,
	last_status_change,
	required_hours,
	hours_shortage,
	cumulative_shortage,
	created_at,
	updated_at
`

func (r *repository) Create(ctx context.Context, rec *Record) error {
	query := `
INSERT INTO attendance_records (
	id, employee_id, record_date, status, first_check_in, last_check_out,
	work_seconds, break_seconds, last_status_change, required_hours,
	hours_shortage, cumulative_shortage
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
`
	_, err := r.execer().ExecContext(
		ctx, query,
		rec.ID, rec.EmployeeID, rec.RecordDate.Format("2006-01-02"), rec.Status,
		rec.FirstCheckIn, rec.LastCheckOut,
		rec.WorkSeconds, rec.BreakSeconds, rec.LastStatusChange,
		rec.RequiredHours, rec.HoursShortage, rec.CumulativeShortage,
	)
	return err
}

func (r *repository) Update(ctx context.Context, rec *Record) error {
	query := `
UPDATE attendance_records
SET
	status = $2,
	first_check_in = $3,
	last_check_out = $4,
	work_seconds = $5,
	break_seconds = $6,
	last_status_change = $7,
	hours_shortage = $8,
	cumulative_shortage = $9,
	updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(
		ctx, query,
		rec.ID, rec.Status, rec.FirstCheckIn, rec.LastCheckOut,
		rec.WorkSeconds, rec.BreakSeconds, rec.LastStatusChange,
		rec.HoursShortage, rec.CumulativeShortage,
	)
	return err
}

func (r *repository) FindByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (*Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM attendance_records
WHERE employee_id = $1 AND record_date = $2
`
	row := r.queryer().QueryRowContext(ctx, query, employeeID, date.Format("2006-01-02"))
	return scanRecord(row)
}

func (r *repository) FindLatestBefore(ctx context.Context, employeeID string, date time.Time) (*Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM attendance_records
WHERE employee_id = $1 AND record_date < $2
ORDER BY record_date DESC
LIMIT 1
`
	row := r.queryer().QueryRowContext(ctx, query, employeeID, date.Format("2006-01-02"))
	return scanRecord(row)
}

func (r *repository) FindRange(ctx context.Context, employeeID string, from, to time.Time) ([]Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM attendance_records
WHERE employee_id = $1 AND record_date BETWEEN $2 AND $3
ORDER BY record_date ASC
`
	rows, err := r.queryer().QueryContext(
		ctx, query,
		employeeID, from.Format("2006-01-02"), to.Format("2006-01-02"),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

func (r *repository) FindAllByDate(ctx context.Context, date time.Time) ([]Record, error) {
	query := `
SELECT ` + recordColumns + `
FROM attendance_records
WHERE record_date = $1
ORDER BY employee_id ASC
`
	rows, err := r.queryer().QueryContext(ctx, query, date.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRecords(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var (
		rec        Record
		id, emplID string
	)
	err := row.Scan(
		&id,
		&emplID,
		&rec.RecordDate,
		&rec.Status,
		&rec.FirstCheckIn,
		&rec.LastCheckOut,
		&rec.WorkSeconds,
		&rec.BreakSeconds,
		&rec.LastStatusChange,
		&rec.RequiredHours,
		&rec.HoursShortage,
		&rec.CumulativeShortage,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := rec.ID.UnmarshalText([]byte(id)); err != nil {
		return nil, err
	}
	if err := rec.EmployeeID.UnmarshalText([]byte(emplID)); err != nil {
		return nil, err
	}
	return &rec, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
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
