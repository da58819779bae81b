package metrics

import (
	"sync"
	"sync/atomic"
	"time"
)

type Collector struct {
	totalRequests    uint64
	errorRequests    uint64
	rateLimited      uint64
	totalDurationMs  uint64
	skippedEmployees uint64

	mu      sync.Mutex
	reports map[string]uint64
}

func New() *Collector {
	return &Collector{reports: map[string]uint64{}}
}

func (c *Collector) Record(status int, duration time.Duration) {
	atomic.AddUint64(&c.totalRequests, 1)
	if status >= 500 {
		atomic.AddUint64(&c.errorRequests, 1)
	}
	if status == 429 {
		atomic.AddUint64(&c.rateLimited, 1)
	}
	atomic.AddUint64(&c.totalDurationMs, uint64(duration.Milliseconds()))
}

// RecordReport counts a generated report by kind (e.g. "payroll.csv") and the
// employees that had to be left out of it.
func (c *Collector) RecordReport(kind string, skipped int) {
	c.mu.Lock()
	c.reports[kind]++
	c.mu.Unlock()
	if skipped > 0 {
		atomic.AddUint64(&c.skippedEmployees, uint64(skipped))
	}
}

func (c *Collector) Snapshot() map[string]any {
	total := atomic.LoadUint64(&c.totalRequests)
	errs := atomic.LoadUint64(&c.errorRequests)
	limited := atomic.LoadUint64(&c.rateLimited)
	totalMs := atomic.LoadUint64(&c.totalDurationMs)
	avg := float64(0)
	if total > 0 {
		avg = float64(totalMs) / float64(total)
	}

	c.mu.Lock()
	reports := make(map[string]uint64, len(c.reports))
	for kind, n := range c.reports {
		reports[kind] = n
	}
	c.mu.Unlock()

	return map[string]any{
		"requestsTotal":         total,
		"errorsTotal":           errs,
		"rateLimitedTotal":      limited,
		"avgDurationMs":         avg,
		"totalDurationMs":       totalMs,
		"reportsTotal":          reports,
		"skippedEmployeesTotal": atomic.LoadUint64(&c.skippedEmployees),
	}
}
