package shared

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"wagebook/internal/domain/payroll"
)

const dateLayout = "2006-01-02"

// ParseDate accepts RFC3339 or YYYY-MM-DD and returns the civil date at UTC
// midnight.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return time.Date(parsed.Year(), parsed.Month(), parsed.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse(dateLayout, value)
}

// ParsePeriod reads month and year from the query string. A missing value
// defaults to the month of now.
func ParsePeriod(r *http.Request, now time.Time) (payroll.Period, error) {
	period := payroll.Period{Month: int(now.Month()), Year: now.Year()}
	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			return payroll.Period{}, fmt.Errorf("%w: month %q", payroll.ErrInvalidPeriod, raw)
		}
		period.Month = month
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			return payroll.Period{}, fmt.Errorf("%w: year %q", payroll.ErrInvalidPeriod, raw)
		}
		period.Year = year
	}
	return period, period.Validate()
}

// PathPeriod reads month and year from the named URL parameters.
func PathPeriod(r *http.Request, monthParam, yearParam string) (payroll.Period, error) {
	month, err := strconv.Atoi(chi.URLParam(r, monthParam))
	if err != nil {
		return payroll.Period{}, fmt.Errorf("%w: month %q", payroll.ErrInvalidPeriod, chi.URLParam(r, monthParam))
	}
	year, err := strconv.Atoi(chi.URLParam(r, yearParam))
	if err != nil {
		return payroll.Period{}, fmt.Errorf("%w: year %q", payroll.ErrInvalidPeriod, chi.URLParam(r, yearParam))
	}
	period := payroll.Period{Month: month, Year: year}
	return period, period.Validate()
}

// PathID parses a positive integer URL parameter.
func PathID(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// QueryID parses an optional positive integer query parameter. The second
// result is false when the value is present but malformed.
func QueryID(r *http.Request, name string) (*int64, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, true
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return nil, false
	}
	return &id, true
}

type Pagination struct {
	Limit  int
	Offset int
}

func ParsePagination(r *http.Request, defaultLimit, maxLimit int) Pagination {
	limit := defaultLimit
	offset := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			limit = v
		}
	}
	if raw := r.URL.Query().Get("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v >= 0 {
			offset = v
		}
	}
	if maxLimit > 0 && limit > maxLimit {
		limit = maxLimit
	}
	return Pagination{Limit: limit, Offset: offset}
}
