package reports

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"wagebook/internal/domain/attendance"
	"wagebook/internal/domain/auth"
	"wagebook/internal/domain/payroll"
)

// Source is the read side of the record keeper the reports are built from.
type Source interface {
	// ListEmployees returns employees of the given branches, or of every
	// branch when branchIDs is nil.
	ListEmployees(ctx context.Context, branchIDs []int64) ([]payroll.Employee, error)
	Employee(ctx context.Context, employeeID int64) (payroll.Employee, error)
	BranchName(ctx context.Context, branchID int64) (string, error)
	AttendanceForMonth(ctx context.Context, employeeID int64, period payroll.Period) ([]payroll.AttendanceRecord, error)
	Advances(ctx context.Context, employeeID int64) ([]payroll.Advance, error)
}

type Service struct {
	source  Source
	agg     *Aggregator
	workers int
	log     *slog.Logger
}

func NewService(source Source, agg *Aggregator, workers int, logger *slog.Logger) *Service {
	if agg == nil {
		agg = NewAggregator(nil)
	}
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{source: source, agg: agg, workers: workers, log: logger}
}

type employeeData struct {
	attendance map[int64][]payroll.AttendanceRecord
	advances   map[int64][]payroll.Advance
}

func (s *Service) DailyReport(ctx context.Context, scope auth.Scope, branchID *int64, period payroll.Period) ([]DaySummary, error) {
	if err := period.Validate(); err != nil {
		return nil, err
	}
	employees, err := s.scopedEmployees(ctx, scope, branchID)
	if err != nil {
		return nil, err
	}
	data, err := s.load(ctx, employees, period, false)
	if err != nil {
		return nil, err
	}
	return DailySummary(employees, data.attendance, period)
}

func (s *Service) PayrollSheet(ctx context.Context, scope auth.Scope, branchID *int64, period payroll.Period) (PayrollSheet, error) {
	if err := period.Validate(); err != nil {
		return PayrollSheet{}, err
	}
	employees, err := s.scopedEmployees(ctx, scope, branchID)
	if err != nil {
		return PayrollSheet{}, err
	}
	data, err := s.load(ctx, employees, period, true)
	if err != nil {
		return PayrollSheet{}, err
	}
	sheet, err := s.agg.BuildPayrollSheet(employees, data.attendance, data.advances, period)
	if err != nil {
		return PayrollSheet{}, err
	}
	s.logSkipped("payroll sheet", period, sheet.Skipped)
	return sheet, nil
}

func (s *Service) EmployeeReceipt(ctx context.Context, scope auth.Scope, employeeID int64, period payroll.Period) (Receipt, error) {
	if err := period.Validate(); err != nil {
		return Receipt{}, err
	}
	emp, err := s.source.Employee(ctx, employeeID)
	// Scoped users get the same answer for a missing employee and one outside
	// their branches.
	if errors.Is(err, attendance.ErrEmployeeNotFound) && !scope.IsAdmin {
		return Receipt{}, fmt.Errorf("%w: employee %d", ErrEmployeeForbidden, employeeID)
	}
	if err != nil {
		return Receipt{}, err
	}
	if !scope.CanAccessBranch(emp.BranchID) {
		return Receipt{}, fmt.Errorf("%w: employee %d", ErrEmployeeForbidden, employeeID)
	}
	branchName, err := s.source.BranchName(ctx, emp.BranchID)
	if err != nil {
		s.log.Warn("receipt branch lookup failed", "employeeId", employeeID, "branchId", emp.BranchID, "err", err)
		branchName = ""
	}
	data, err := s.load(ctx, []payroll.Employee{emp}, period, true)
	if err != nil {
		return Receipt{}, err
	}
	return s.agg.BuildReceipt(emp, branchName, data.attendance[emp.ID], data.advances[emp.ID], period)
}

func (s *Service) BranchReceipts(ctx context.Context, scope auth.Scope, branchID int64, period payroll.Period) (ReceiptBatch, error) {
	if err := period.Validate(); err != nil {
		return ReceiptBatch{}, err
	}
	employees, err := s.scopedEmployees(ctx, scope, &branchID)
	if err != nil {
		return ReceiptBatch{}, err
	}
	branchName, err := s.source.BranchName(ctx, branchID)
	if err != nil {
		return ReceiptBatch{}, err
	}
	data, err := s.load(ctx, employees, period, true)
	if err != nil {
		return ReceiptBatch{}, err
	}
	batch, err := s.agg.BuildReceipts(employees, map[int64]string{branchID: branchName}, data.attendance, data.advances, period)
	if err != nil {
		return ReceiptBatch{}, err
	}
	s.logSkipped("branch receipts", period, batch.Skipped)
	return batch, nil
}

func (s *Service) scopedEmployees(ctx context.Context, scope auth.Scope, branchID *int64) ([]payroll.Employee, error) {
	if branchID != nil {
		if !scope.CanAccessBranch(*branchID) {
			return nil, fmt.Errorf("%w: branch %d", ErrBranchForbidden, *branchID)
		}
		return s.source.ListEmployees(ctx, []int64{*branchID})
	}
	branches := scope.BranchFilter()
	if branches != nil && len(branches) == 0 {
		return nil, nil
	}
	return s.source.ListEmployees(ctx, branches)
}

// load fetches attendance (and optionally advances) for every employee using a
// bounded number of concurrent lookups.
func (s *Service) load(ctx context.Context, employees []payroll.Employee, period payroll.Period, withAdvances bool) (employeeData, error) {
	attendance := make([][]payroll.AttendanceRecord, len(employees))
	advances := make([][]payroll.Advance, len(employees))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, emp := range employees {
		g.Go(func() error {
			records, err := s.source.AttendanceForMonth(gctx, emp.ID, period)
			if err != nil {
				return fmt.Errorf("attendance for employee %d: %w", emp.ID, err)
			}
			attendance[i] = records
			if !withAdvances {
				return nil
			}
			advs, err := s.source.Advances(gctx, emp.ID)
			if err != nil {
				return fmt.Errorf("advances for employee %d: %w", emp.ID, err)
			}
			advances[i] = advs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return employeeData{}, err
	}

	data := employeeData{
		attendance: make(map[int64][]payroll.AttendanceRecord, len(employees)),
		advances:   make(map[int64][]payroll.Advance, len(employees)),
	}
	for i, emp := range employees {
		data.attendance[emp.ID] = attendance[i]
		data.advances[emp.ID] = advances[i]
	}
	return data, nil
}

func (s *Service) logSkipped(report string, period payroll.Period, skipped []SkippedEmployee) {
	for _, sk := range skipped {
		s.log.Warn("employee excluded from report", "report", report, "period", period.String(), "employeeId", sk.EmployeeID, "err", sk.Err)
	}
}
