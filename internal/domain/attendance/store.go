package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"wagebook/internal/domain/payroll"
)

const foreignKeyViolation = "23503"

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == foreignKeyViolation
}

func (s *Store) ListBranches(ctx context.Context, branchIDs []int64) ([]Branch, error) {
	query := `SELECT id, name, created_at FROM branches`
	args := []any{}
	if branchIDs != nil {
		query += ` WHERE id = ANY($1)`
		args = append(args, branchIDs)
	}
	rows, err := s.DB.Query(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Branch
	for rows.Next() {
		var b Branch
		if err := rows.Scan(&b.ID, &b.Name, &b.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *Store) Branch(ctx context.Context, branchID int64) (Branch, error) {
	var b Branch
	err := s.DB.QueryRow(ctx, "SELECT id, name, created_at FROM branches WHERE id = $1", branchID).Scan(&b.ID, &b.Name, &b.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Branch{}, ErrBranchNotFound
	}
	return b, err
}

func (s *Store) BranchName(ctx context.Context, branchID int64) (string, error) {
	b, err := s.Branch(ctx, branchID)
	if err != nil {
		return "", err
	}
	return b.Name, nil
}

func (s *Store) CreateBranch(ctx context.Context, name string) (Branch, error) {
	return createBranch(ctx, s.DB, name)
}

func createBranch(ctx context.Context, q rowQuerier, name string) (Branch, error) {
	b := Branch{Name: name}
	err := q.QueryRow(ctx, `
    INSERT INTO branches (name) VALUES ($1)
    RETURNING id, created_at
  `, name).Scan(&b.ID, &b.CreatedAt)
	return b, err
}

func (s *Store) CreateBranchWithEmployees(ctx context.Context, name string, employees []EmployeeInput) (Branch, []payroll.Employee, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return Branch{}, nil, err
	}
	defer tx.Rollback(ctx)

	branch, err := createBranch(ctx, tx, name)
	if err != nil {
		return Branch{}, nil, err
	}
	created := make([]payroll.Employee, 0, len(employees))
	for _, in := range employees {
		emp, err := createEmployee(ctx, tx, branch.ID, in)
		if err != nil {
			return Branch{}, nil, err
		}
		created = append(created, emp)
	}
	if err := tx.Commit(ctx); err != nil {
		return Branch{}, nil, err
	}
	return branch, created, nil
}

// DeleteBranch removes the branch; employees and their records go with it
// through ON DELETE CASCADE.
func (s *Store) DeleteBranch(ctx context.Context, branchID int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM branches WHERE id = $1", branchID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrBranchNotFound
	}
	return nil
}

const employeeColumns = `id, branch_id, name, daily_wage, hourly_wage, insurance_deduction`

func scanEmployee(row pgx.Row) (payroll.Employee, error) {
	var e payroll.Employee
	err := row.Scan(&e.ID, &e.BranchID, &e.Name, &e.DailyWage, &e.HourlyWage, &e.InsuranceDeduction)
	if errors.Is(err, pgx.ErrNoRows) {
		return payroll.Employee{}, ErrEmployeeNotFound
	}
	return e, err
}

func (s *Store) ListEmployees(ctx context.Context, branchIDs []int64) ([]payroll.Employee, error) {
	query := `SELECT ` + employeeColumns + ` FROM employees`
	args := []any{}
	if branchIDs != nil {
		query += ` WHERE branch_id = ANY($1)`
		args = append(args, branchIDs)
	}
	rows, err := s.DB.Query(ctx, query+` ORDER BY id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) Employee(ctx context.Context, employeeID int64) (payroll.Employee, error) {
	return scanEmployee(s.DB.QueryRow(ctx, `SELECT `+employeeColumns+` FROM employees WHERE id = $1`, employeeID))
}

func (s *Store) CreateEmployee(ctx context.Context, branchID int64, in EmployeeInput) (payroll.Employee, error) {
	emp, err := createEmployee(ctx, s.DB, branchID, in)
	if isForeignKeyViolation(err) {
		return payroll.Employee{}, ErrBranchNotFound
	}
	return emp, err
}

func createEmployee(ctx context.Context, q rowQuerier, branchID int64, in EmployeeInput) (payroll.Employee, error) {
	emp := in.Wages.employee(0, branchID, in.Name)
	err := q.QueryRow(ctx, `
    INSERT INTO employees (branch_id, name, daily_wage, hourly_wage, insurance_deduction)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, branchID, in.Name, in.DailyWage, in.HourlyWage, in.InsuranceDeduction).Scan(&emp.ID)
	return emp, err
}

func (s *Store) UpdateWages(ctx context.Context, employeeID int64, wages Wages) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE employees SET daily_wage = $1, hourly_wage = $2, insurance_deduction = $3
    WHERE id = $4
  `, wages.DailyWage, wages.HourlyWage, wages.InsuranceDeduction, employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, employeeID int64) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

// SaveManualEntry finds the employee by name within the branch (creating it
// when absent), overwrites its wages and upserts the day's attendance.
func (s *Store) SaveManualEntry(ctx context.Context, branchID int64, name string, wages Wages, entry payroll.AttendanceRecord) (payroll.Employee, payroll.AttendanceRecord, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	}
	defer tx.Rollback(ctx)

	var employeeID int64
	err = tx.QueryRow(ctx, `
    SELECT id FROM employees WHERE branch_id = $1 AND name = $2 ORDER BY id LIMIT 1
  `, branchID, name).Scan(&employeeID)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		emp, err := createEmployee(ctx, tx, branchID, EmployeeInput{Name: name, Wages: wages})
		if err != nil {
			if isForeignKeyViolation(err) {
				err = ErrBranchNotFound
			}
			return payroll.Employee{}, payroll.AttendanceRecord{}, err
		}
		employeeID = emp.ID
	case err != nil:
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	default:
		if _, err := tx.Exec(ctx, `
      UPDATE employees SET daily_wage = $1, hourly_wage = $2, insurance_deduction = $3
      WHERE id = $4
    `, wages.DailyWage, wages.HourlyWage, wages.InsuranceDeduction, employeeID); err != nil {
			return payroll.Employee{}, payroll.AttendanceRecord{}, err
		}
	}

	entry.EmployeeID = employeeID
	rec, err := upsertAttendance(ctx, tx, entry)
	if err != nil {
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	}
	return wages.employee(employeeID, branchID, name), rec, nil
}

const attendanceColumns = `id, employee_id, date, is_absent, hours_worked, late_minutes, COALESCE(arrival, ''), COALESCE(departure, '')`

func scanAttendance(row pgx.Row) (payroll.AttendanceRecord, error) {
	var r payroll.AttendanceRecord
	err := row.Scan(&r.ID, &r.EmployeeID, &r.Date, &r.IsAbsent, &r.HoursWorked, &r.LateMinutes, &r.Arrival, &r.Departure)
	return r, err
}

func (s *Store) queryAttendance(ctx context.Context, sql string, args ...any) ([]payroll.AttendanceRecord, error) {
	rows, err := s.DB.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.AttendanceRecord
	for rows.Next() {
		r, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ListAttendance returns the employee's records newest first. A limit of zero
// returns everything.
func (s *Store) ListAttendance(ctx context.Context, employeeID int64, limit, offset int) ([]payroll.AttendanceRecord, error) {
	var pageLimit *int
	if limit > 0 {
		pageLimit = &limit
	}
	return s.queryAttendance(ctx, `
    SELECT `+attendanceColumns+`
    FROM attendance
    WHERE employee_id = $1
    ORDER BY date DESC, id DESC
    LIMIT $2 OFFSET $3
  `, employeeID, pageLimit, offset)
}

func (s *Store) AttendanceForMonth(ctx context.Context, employeeID int64, period payroll.Period) ([]payroll.AttendanceRecord, error) {
	start := period.Date(1)
	return s.queryAttendance(ctx, `
    SELECT `+attendanceColumns+`
    FROM attendance
    WHERE employee_id = $1 AND date >= $2 AND date < $3
    ORDER BY date, id
  `, employeeID, start, start.AddDate(0, 1, 0))
}

func (s *Store) AttendanceOn(ctx context.Context, employeeIDs []int64, date time.Time) (map[int64]payroll.AttendanceRecord, error) {
	records, err := s.queryAttendance(ctx, `
    SELECT `+attendanceColumns+`
    FROM attendance
    WHERE employee_id = ANY($1) AND date = $2
  `, employeeIDs, date)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]payroll.AttendanceRecord, len(records))
	for _, r := range records {
		out[r.EmployeeID] = r
	}
	return out, nil
}

func (s *Store) UpsertAttendance(ctx context.Context, rec payroll.AttendanceRecord) (payroll.AttendanceRecord, error) {
	out, err := upsertAttendance(ctx, s.DB, rec)
	if isForeignKeyViolation(err) {
		return payroll.AttendanceRecord{}, ErrEmployeeNotFound
	}
	return out, err
}

func upsertAttendance(ctx context.Context, q rowQuerier, rec payroll.AttendanceRecord) (payroll.AttendanceRecord, error) {
	err := q.QueryRow(ctx, `
    INSERT INTO attendance (employee_id, date, is_absent, hours_worked, late_minutes, arrival, departure)
    VALUES ($1,$2,$3,$4,$5,NULLIF($6, ''),NULLIF($7, ''))
    ON CONFLICT (employee_id, date) DO UPDATE
    SET is_absent = EXCLUDED.is_absent,
        hours_worked = EXCLUDED.hours_worked,
        late_minutes = EXCLUDED.late_minutes,
        arrival = EXCLUDED.arrival,
        departure = EXCLUDED.departure
    RETURNING id
  `, rec.EmployeeID, rec.Date, rec.IsAbsent, rec.HoursWorked, rec.LateMinutes, rec.Arrival, rec.Departure).Scan(&rec.ID)
	return rec, err
}

// SaveDaySheet applies all writes in one transaction and returns how many
// records were stored.
func (s *Store) SaveDaySheet(ctx context.Context, writes []SheetWrite) (int, error) {
	tx, err := s.DB.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	saved := 0
	for _, w := range writes {
		rec := w.Record
		if w.UpdateOnly {
			tag, err := tx.Exec(ctx, `
        UPDATE attendance
        SET is_absent = $3, hours_worked = $4, late_minutes = $5, arrival = NULLIF($6, ''), departure = NULLIF($7, '')
        WHERE employee_id = $1 AND date = $2
      `, rec.EmployeeID, rec.Date, rec.IsAbsent, rec.HoursWorked, rec.LateMinutes, rec.Arrival, rec.Departure)
			if err != nil {
				return 0, err
			}
			saved += int(tag.RowsAffected())
			continue
		}
		if _, err := upsertAttendance(ctx, tx, rec); err != nil {
			return 0, err
		}
		saved++
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return saved, nil
}

func (s *Store) Advances(ctx context.Context, employeeID int64) ([]payroll.Advance, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, amount, months, created_at
    FROM advances
    WHERE employee_id = $1
    ORDER BY created_at DESC, id DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []payroll.Advance
	for rows.Next() {
		var a payroll.Advance
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.Amount, &a.Months, &a.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *Store) CreateAdvance(ctx context.Context, employeeID int64, amount float64, months int) (payroll.Advance, error) {
	a := payroll.Advance{EmployeeID: employeeID, Amount: amount, Months: months}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO advances (employee_id, amount, months)
    VALUES ($1,$2,$3)
    RETURNING id, created_at
  `, employeeID, amount, months).Scan(&a.ID, &a.CreatedAt)
	if isForeignKeyViolation(err) {
		return payroll.Advance{}, ErrEmployeeNotFound
	}
	return a, err
}

func (s *Store) Withdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, employee_id, amount, withdrawal_date, created_at
    FROM withdrawals
    WHERE employee_id = $1
    ORDER BY withdrawal_date DESC, id DESC
  `, employeeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Withdrawal
	for rows.Next() {
		var w Withdrawal
		if err := rows.Scan(&w.ID, &w.EmployeeID, &w.Amount, &w.Date, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) CreateWithdrawal(ctx context.Context, employeeID int64, amount float64, date time.Time) (Withdrawal, error) {
	w := Withdrawal{EmployeeID: employeeID, Amount: amount, Date: date}
	err := s.DB.QueryRow(ctx, `
    INSERT INTO withdrawals (employee_id, amount, withdrawal_date)
    VALUES ($1,$2,$3)
    RETURNING id, created_at
  `, employeeID, amount, date).Scan(&w.ID, &w.CreatedAt)
	if isForeignKeyViolation(err) {
		return Withdrawal{}, ErrEmployeeNotFound
	}
	return w, err
}
