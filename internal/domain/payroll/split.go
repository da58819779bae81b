package payroll

// Split divides the month into the day-10 installment and the installment that
// accrues from day 11 through day 20 (or the last day of a shorter month).
func Split(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (WithdrawalSplit, error) {
	return defaultCalculator.Split(emp, period, attendance, advances)
}

// SplitThroughMonthEnd is Split with the second installment running to the end
// of the month, so Early+Late equals the full-month net.
func SplitThroughMonthEnd(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (WithdrawalSplit, error) {
	return defaultCalculator.SplitThroughMonthEnd(emp, period, attendance, advances)
}

func (c *Calculator) Split(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (WithdrawalSplit, error) {
	if err := period.Validate(); err != nil {
		return WithdrawalSplit{}, err
	}
	return c.split(emp, period, attendance, advances, min(c.Policy.LateWithdrawalDay, period.LastDay()))
}

func (c *Calculator) SplitThroughMonthEnd(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance) (WithdrawalSplit, error) {
	if err := period.Validate(); err != nil {
		return WithdrawalSplit{}, err
	}
	return c.split(emp, period, attendance, advances, period.LastDay())
}

func (c *Calculator) split(emp Employee, period Period, attendance []AttendanceRecord, advances []Advance, lateDay int) (WithdrawalSplit, error) {
	earlyCutoff := period.Date(min(c.Policy.EarlyWithdrawalDay, period.LastDay()))
	lateCutoff := period.Date(lateDay)

	early, err := c.ComputeThrough(emp, period, attendance, advances, earlyCutoff)
	if err != nil {
		return WithdrawalSplit{}, err
	}
	late, err := c.ComputeThrough(emp, period, attendance, advances, lateCutoff)
	if err != nil {
		return WithdrawalSplit{}, err
	}
	return WithdrawalSplit{
		Early:       early.Net,
		Late:        late.Net - early.Net,
		EarlyCutoff: earlyCutoff,
		LateCutoff:  lateCutoff,
	}, nil
}
