package attendance

import (
	"context"
	"time"

	"wagebook/internal/domain/payroll"
)

type StoreAPI interface {
	ListBranches(ctx context.Context, branchIDs []int64) ([]Branch, error)
	Branch(ctx context.Context, branchID int64) (Branch, error)
	BranchName(ctx context.Context, branchID int64) (string, error)
	CreateBranch(ctx context.Context, name string) (Branch, error)
	CreateBranchWithEmployees(ctx context.Context, name string, employees []EmployeeInput) (Branch, []payroll.Employee, error)
	DeleteBranch(ctx context.Context, branchID int64) error

	ListEmployees(ctx context.Context, branchIDs []int64) ([]payroll.Employee, error)
	Employee(ctx context.Context, employeeID int64) (payroll.Employee, error)
	CreateEmployee(ctx context.Context, branchID int64, in EmployeeInput) (payroll.Employee, error)
	UpdateWages(ctx context.Context, employeeID int64, wages Wages) error
	DeleteEmployee(ctx context.Context, employeeID int64) error
	SaveManualEntry(ctx context.Context, branchID int64, name string, wages Wages, entry payroll.AttendanceRecord) (payroll.Employee, payroll.AttendanceRecord, error)

	ListAttendance(ctx context.Context, employeeID int64, limit, offset int) ([]payroll.AttendanceRecord, error)
	AttendanceForMonth(ctx context.Context, employeeID int64, period payroll.Period) ([]payroll.AttendanceRecord, error)
	AttendanceOn(ctx context.Context, employeeIDs []int64, date time.Time) (map[int64]payroll.AttendanceRecord, error)
	UpsertAttendance(ctx context.Context, rec payroll.AttendanceRecord) (payroll.AttendanceRecord, error)
	SaveDaySheet(ctx context.Context, writes []SheetWrite) (int, error)

	Advances(ctx context.Context, employeeID int64) ([]payroll.Advance, error)
	CreateAdvance(ctx context.Context, employeeID int64, amount float64, months int) (payroll.Advance, error)
	Withdrawals(ctx context.Context, employeeID int64) ([]Withdrawal, error)
	CreateWithdrawal(ctx context.Context, employeeID int64, amount float64, date time.Time) (Withdrawal, error)
}

var _ StoreAPI = (*Store)(nil)
