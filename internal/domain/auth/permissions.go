package auth

const (
	PermManualEntry      = "view_manual_entry"
	PermViewBranches     = "view_branches"
	PermViewDailyReport  = "view_daily_report"
	PermViewPayroll      = "view_payroll"
	PermViewUsers        = "view_users"
	PermManageAttendance = "manage_attendance"
	PermManageEmployees  = "manage_employees"
	PermManageAdvances   = "manage_advances"
	PermPrintReceipts    = "print_receipts"
	PermDeleteBranch     = "delete_branch"
)

var AllPermissions = []string{
	PermManualEntry,
	PermViewBranches,
	PermViewDailyReport,
	PermViewPayroll,
	PermViewUsers,
	PermManageAttendance,
	PermManageEmployees,
	PermManageAdvances,
	PermPrintReceipts,
	PermDeleteBranch,
}

func IsKnownPermission(perm string) bool {
	for _, known := range AllPermissions {
		if known == perm {
			return true
		}
	}
	return false
}
