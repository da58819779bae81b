package payroll

import "errors"

var (
	ErrInvalidPeriod           = errors.New("invalid payroll period")
	ErrMalformedWageParameters = errors.New("malformed wage parameters")
)
