package attendance

import (
	"fmt"
	"strings"
	"time"

	"wagebook/internal/domain/payroll"
)

const clockLayout = "15:04"

// HoursBetween returns the hours from arrival to departure. A departure
// earlier than the arrival is taken to be on the next day.
func HoursBetween(arrival, departure string) (float64, error) {
	arr, err := time.Parse(clockLayout, strings.TrimSpace(arrival))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, arrival)
	}
	dep, err := time.Parse(clockLayout, strings.TrimSpace(departure))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidTime, departure)
	}
	hours := dep.Sub(arr).Hours()
	if hours < 0 {
		hours += 24
	}
	return hours, nil
}

// ResolveHours derives worked hours from the clock times, falling back to the
// manually entered value when the day is absent or a time is missing or
// unparseable.
func ResolveHours(arrival, departure string, manual float64, absent bool) float64 {
	if absent || arrival == "" || departure == "" {
		return manual
	}
	hours, err := HoursBetween(arrival, departure)
	if err != nil {
		return manual
	}
	return hours
}

func (e Entry) record(employeeID int64) payroll.AttendanceRecord {
	e.Arrival = strings.TrimSpace(e.Arrival)
	e.Departure = strings.TrimSpace(e.Departure)
	return payroll.AttendanceRecord{
		EmployeeID:  employeeID,
		Date:        e.Date,
		IsAbsent:    e.IsAbsent,
		HoursWorked: ResolveHours(e.Arrival, e.Departure, e.Hours, e.IsAbsent),
		LateMinutes: e.LateMinutes,
		Arrival:     e.Arrival,
		Departure:   e.Departure,
	}
}

func (e Entry) validate() error {
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}
	if e.Hours < 0 || e.LateMinutes < 0 {
		return fmt.Errorf("%w: hours and late minutes must not be negative", ErrInvalidInput)
	}
	return nil
}

// hasData reports whether anything was entered for the day.
func hasData(rec payroll.AttendanceRecord) bool {
	return rec.IsAbsent || rec.HoursWorked > 0 || rec.LateMinutes > 0 || rec.Arrival != "" || rec.Departure != ""
}
