package payroll

const (
	// StandardDayHours is the length of a full working day. Hours above it are
	// overtime, hours below it are deducted.
	StandardDayHours = 9.0
	// OvertimeMultiplier scales the hourly wage for overtime hours.
	OvertimeMultiplier = 1.5
	// MinutesPerHour converts accumulated late minutes into billable hours.
	MinutesPerHour = 60.0

	// EarlyWithdrawalDay is the inclusive cutoff of the first installment.
	EarlyWithdrawalDay = 10
	// LateWithdrawalDay is the inclusive cutoff of the second installment,
	// capped at the last day of the month.
	LateWithdrawalDay = 20

	MinYear = 1
	MaxYear = 9999
)
