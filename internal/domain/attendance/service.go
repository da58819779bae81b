package attendance

import (
	"context"
	"fmt"
	"strings"
	"time"

	"wagebook/internal/domain/auth"
	"wagebook/internal/domain/payroll"
)

const defaultAdvanceMonths = 1

type Service struct {
	Store StoreAPI
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store}
}

func (s *Service) ListBranches(ctx context.Context, scope auth.Scope) ([]Branch, error) {
	filter := scope.BranchFilter()
	if filter != nil && len(filter) == 0 {
		return []Branch{}, nil
	}
	branches, err := s.Store.ListBranches(ctx, filter)
	if err != nil {
		return nil, err
	}
	if branches == nil {
		branches = []Branch{}
	}
	return branches, nil
}

func (s *Service) CreateBranch(ctx context.Context, name string) (Branch, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Branch{}, fmt.Errorf("%w: branch name is required", ErrInvalidInput)
	}
	return s.Store.CreateBranch(ctx, name)
}

// CreateBranchWithEmployees creates the branch and its staff together. Rows
// with a blank name are ignored.
func (s *Service) CreateBranchWithEmployees(ctx context.Context, name string, employees []EmployeeInput) (Branch, []payroll.Employee, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Branch{}, nil, fmt.Errorf("%w: branch name is required", ErrInvalidInput)
	}
	cleaned := make([]EmployeeInput, 0, len(employees))
	for _, in := range employees {
		in.Name = strings.TrimSpace(in.Name)
		if in.Name == "" {
			continue
		}
		if err := validateWages(in.Wages); err != nil {
			return Branch{}, nil, err
		}
		cleaned = append(cleaned, in)
	}
	return s.Store.CreateBranchWithEmployees(ctx, name, cleaned)
}

func (s *Service) DeleteBranch(ctx context.Context, scope auth.Scope, branchID int64) error {
	if !scope.CanAccessBranch(branchID) {
		return ErrForbidden
	}
	return s.Store.DeleteBranch(ctx, branchID)
}

func (s *Service) BranchEmployees(ctx context.Context, scope auth.Scope, branchID int64) (Branch, []payroll.Employee, error) {
	branch, err := s.branchInScope(ctx, scope, branchID)
	if err != nil {
		return Branch{}, nil, err
	}
	employees, err := s.Store.ListEmployees(ctx, []int64{branchID})
	if err != nil {
		return Branch{}, nil, err
	}
	if employees == nil {
		employees = []payroll.Employee{}
	}
	return branch, employees, nil
}

func (s *Service) CreateEmployee(ctx context.Context, scope auth.Scope, branchID int64, in EmployeeInput) (payroll.Employee, error) {
	if _, err := s.branchInScope(ctx, scope, branchID); err != nil {
		return payroll.Employee{}, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return payroll.Employee{}, fmt.Errorf("%w: employee name is required", ErrInvalidInput)
	}
	if err := validateWages(in.Wages); err != nil {
		return payroll.Employee{}, err
	}
	return s.Store.CreateEmployee(ctx, branchID, in)
}

func (s *Service) UpdateWages(ctx context.Context, scope auth.Scope, employeeID int64, wages Wages) (payroll.Employee, error) {
	emp, err := s.employeeInScope(ctx, scope, employeeID)
	if err != nil {
		return payroll.Employee{}, err
	}
	if err := validateWages(wages); err != nil {
		return payroll.Employee{}, err
	}
	if err := s.Store.UpdateWages(ctx, employeeID, wages); err != nil {
		return payroll.Employee{}, err
	}
	return wages.employee(emp.ID, emp.BranchID, emp.Name), nil
}

func (s *Service) DeleteEmployee(ctx context.Context, scope auth.Scope, employeeID int64) error {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return err
	}
	return s.Store.DeleteEmployee(ctx, employeeID)
}

// ManualEntry records a day for an employee identified by name within a
// branch. The employee is created if missing and its wages are overwritten
// with the entered values.
func (s *Service) ManualEntry(ctx context.Context, scope auth.Scope, in ManualEntry) (payroll.Employee, payroll.AttendanceRecord, error) {
	if !scope.CanAccessBranch(in.BranchID) {
		return payroll.Employee{}, payroll.AttendanceRecord{}, ErrForbidden
	}
	name := strings.TrimSpace(in.EmployeeName)
	if name == "" {
		return payroll.Employee{}, payroll.AttendanceRecord{}, fmt.Errorf("%w: employee name is required", ErrInvalidInput)
	}
	if err := validateWages(in.Wages); err != nil {
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	}
	if err := in.Entry.validate(); err != nil {
		return payroll.Employee{}, payroll.AttendanceRecord{}, err
	}
	return s.Store.SaveManualEntry(ctx, in.BranchID, name, in.Wages, in.Entry.record(0))
}

// DaySheet lists every employee of the branch with their record for date, if any.
func (s *Service) DaySheet(ctx context.Context, scope auth.Scope, branchID int64, date time.Time) ([]DaySheetLine, error) {
	_, employees, err := s.BranchEmployees(ctx, scope, branchID)
	if err != nil {
		return nil, err
	}
	existing, err := s.Store.AttendanceOn(ctx, employeeIDs(employees), date)
	if err != nil {
		return nil, err
	}
	lines := make([]DaySheetLine, 0, len(employees))
	for _, emp := range employees {
		line := DaySheetLine{Employee: emp}
		if rec, ok := existing[emp.ID]; ok {
			line.Record = &rec
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// SaveDaySheet stores the rows for one date across a branch. Existing records
// are overwritten; a new record is only created when something was entered.
// Rows for employees outside the branch are rejected.
func (s *Service) SaveDaySheet(ctx context.Context, scope auth.Scope, branchID int64, date time.Time, rows []DaySheetRow) (int, error) {
	if date.IsZero() {
		return 0, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	_, employees, err := s.BranchEmployees(ctx, scope, branchID)
	if err != nil {
		return 0, err
	}
	members := make(map[int64]bool, len(employees))
	for _, emp := range employees {
		members[emp.ID] = true
	}

	writes := make([]SheetWrite, 0, len(rows))
	for _, row := range rows {
		if !members[row.EmployeeID] {
			return 0, fmt.Errorf("%w: employee %d is not in branch %d", ErrInvalidInput, row.EmployeeID, branchID)
		}
		entry := Entry{
			Date:        date,
			Arrival:     row.Arrival,
			Departure:   row.Departure,
			Hours:       row.Hours,
			IsAbsent:    row.IsAbsent,
			LateMinutes: row.LateMinutes,
		}
		if err := entry.validate(); err != nil {
			return 0, err
		}
		rec := entry.record(row.EmployeeID)
		writes = append(writes, SheetWrite{Record: rec, UpdateOnly: !hasData(rec)})
	}
	if len(writes) == 0 {
		return 0, nil
	}
	return s.Store.SaveDaySheet(ctx, writes)
}

func (s *Service) EmployeeAttendance(ctx context.Context, scope auth.Scope, employeeID int64, limit, offset int) ([]payroll.AttendanceRecord, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return nil, err
	}
	records, err := s.Store.ListAttendance(ctx, employeeID, limit, offset)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []payroll.AttendanceRecord{}
	}
	return records, nil
}

func (s *Service) RecordAttendance(ctx context.Context, scope auth.Scope, employeeID int64, entry Entry) (payroll.AttendanceRecord, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return payroll.AttendanceRecord{}, err
	}
	if err := entry.validate(); err != nil {
		return payroll.AttendanceRecord{}, err
	}
	return s.Store.UpsertAttendance(ctx, entry.record(employeeID))
}

func (s *Service) Advances(ctx context.Context, scope auth.Scope, employeeID int64) ([]payroll.Advance, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return nil, err
	}
	advances, err := s.Store.Advances(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if advances == nil {
		advances = []payroll.Advance{}
	}
	return advances, nil
}

// AddAdvance records a loan repaid over Months payrolls; zero months means one.
func (s *Service) AddAdvance(ctx context.Context, scope auth.Scope, employeeID int64, in AdvanceInput) (payroll.Advance, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return payroll.Advance{}, err
	}
	if in.Amount < 0 || in.Months < 0 {
		return payroll.Advance{}, fmt.Errorf("%w: amount and months must not be negative", ErrInvalidInput)
	}
	if in.Months == 0 {
		in.Months = defaultAdvanceMonths
	}
	return s.Store.CreateAdvance(ctx, employeeID, in.Amount, in.Months)
}

func (s *Service) Withdrawals(ctx context.Context, scope auth.Scope, employeeID int64) ([]Withdrawal, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return nil, err
	}
	withdrawals, err := s.Store.Withdrawals(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if withdrawals == nil {
		withdrawals = []Withdrawal{}
	}
	return withdrawals, nil
}

func (s *Service) AddWithdrawal(ctx context.Context, scope auth.Scope, employeeID int64, in WithdrawalInput) (Withdrawal, error) {
	if _, err := s.employeeInScope(ctx, scope, employeeID); err != nil {
		return Withdrawal{}, err
	}
	if in.Amount < 0 {
		return Withdrawal{}, fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}
	if in.Date.IsZero() {
		return Withdrawal{}, fmt.Errorf("%w: withdrawal date is required", ErrInvalidInput)
	}
	return s.Store.CreateWithdrawal(ctx, employeeID, in.Amount, in.Date)
}

func (s *Service) branchInScope(ctx context.Context, scope auth.Scope, branchID int64) (Branch, error) {
	if !scope.CanAccessBranch(branchID) {
		return Branch{}, ErrForbidden
	}
	return s.Store.Branch(ctx, branchID)
}

func (s *Service) employeeInScope(ctx context.Context, scope auth.Scope, employeeID int64) (payroll.Employee, error) {
	emp, err := s.Store.Employee(ctx, employeeID)
	if err != nil {
		return payroll.Employee{}, err
	}
	if !scope.CanAccessBranch(emp.BranchID) {
		return payroll.Employee{}, ErrForbidden
	}
	return emp, nil
}

func validateWages(w Wages) error {
	if err := w.employee(0, 0, "").Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return nil
}

func employeeIDs(employees []payroll.Employee) []int64 {
	ids := make([]int64, len(employees))
	for i, emp := range employees {
		ids[i] = emp.ID
	}
	return ids
}
