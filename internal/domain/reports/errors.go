package reports

import "errors"

var (
	ErrBranchForbidden   = errors.New("branch not accessible")
	ErrEmployeeForbidden = errors.New("employee not accessible")
)
